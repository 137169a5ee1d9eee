package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aphistic/golf"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Level the level of a log message
type Level int

const (
	// Debug debug level
	Debug Level = iota
	// Info info level
	Info
	// Warn warning level
	Warn
	// Error error level
	Error
	// Alert alert level, always emitted
	Alert
)

var levelNames = map[Level]string{
	Debug: "DEBUG",
	Info:  "INFO",
	Warn:  "WARN",
	Error: "ERROR",
	Alert: "ALERT",
}

// ServiceLogger main type for logging
type ServiceLogger struct {
	name string

	Level    Level
	LevelS   string
	Filename string
	GelfURL  string
	GelfPort int

	mu         sync.Mutex
	out        io.Writer
	file       *lumberjack.Logger
	gelfClient *golf.Client
	gelf       *golf.Logger
}

// Logger the root logger of the service
var Logger = ServiceLogger{
	Level: Info,
	out:   os.Stdout,
}

// New creates a new logger inheriting the root configuration
func New() *ServiceLogger {
	return &ServiceLogger{
		Level: Logger.Level,
		out:   os.Stdout,
	}
}

// WithName names the logger, the name is prepended to every message
func (s *ServiceLogger) WithName(name string) *ServiceLogger {
	s.name = name
	return s
}

// SetLevel sets the log level from the config string
func (s *ServiceLogger) SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		s.Level = Debug
	case "INFO":
		s.Level = Info
	case "WARN":
		s.Level = Warn
	case "ERROR":
		s.Level = Error
	case "ALERT":
		s.Level = Alert
	}
	s.LevelS = levelNames[s.Level]
}

// InitFile initialise the rotating file output. The rotated bundles are
// gzip compressed and later shipped to the object store by the log shipper.
func (s *ServiceLogger) InitFile() {
	if s.Filename == "" {
		return
	}
	// LocalTime keeps the bundle name stamps on the same calendar day the
	// shipper matches against, otherwise a rotation between local midnight
	// and the utc offset is stamped with yesterday's date and never ships
	s.file = &lumberjack.Logger{
		Filename:   s.Filename,
		MaxSize:    10,
		MaxBackups: 7,
		MaxAge:     1,
		Compress:   true,
		LocalTime:  true,
	}
	s.out = io.MultiWriter(os.Stdout, s.file)
}

// InitGelf initialise the gelf connection, if configured
func (s *ServiceLogger) InitGelf() {
	s.InitFile()
	if s.GelfURL == "" {
		return
	}
	c, err := golf.NewClient()
	if err != nil {
		s.Errorf("can't create gelf client: %v", err)
		return
	}
	err = c.Dial(fmt.Sprintf("udp://%s:%d", s.GelfURL, s.GelfPort))
	if err != nil {
		s.Errorf("can't connect to gelf server: %v", err)
		return
	}
	l, err := c.NewLogger()
	if err != nil {
		s.Errorf("can't create gelf logger: %v", err)
		return
	}
	s.gelfClient = c
	s.gelf = l
}

// Close flushes and closes all outputs
func (s *ServiceLogger) Close() {
	if s.gelfClient != nil {
		_ = s.gelfClient.Close()
	}
	if s.file != nil {
		_ = s.file.Close()
	}
}

func (s *ServiceLogger) output(l Level, msg string) {
	if l < s.Level {
		return
	}
	name := s.name
	if name == "" {
		name = "root"
	}
	line := fmt.Sprintf("%s %s [%s] %s", time.Now().Format(time.RFC3339), levelNames[l], name, msg)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, line)
	if s.gelf != nil {
		switch l {
		case Debug:
			_ = s.gelf.Dbg(msg)
		case Info:
			_ = s.gelf.Info(msg)
		case Warn:
			_ = s.gelf.Warn(msg)
		default:
			_ = s.gelf.Err(msg)
		}
	}
}

// Debug logs a message on debug level
func (s *ServiceLogger) Debug(msg string) {
	s.output(Debug, msg)
}

// Debugf logs a formatted message on debug level
func (s *ServiceLogger) Debugf(format string, a ...any) {
	s.output(Debug, fmt.Sprintf(format, a...))
}

// Info logs a message on info level
func (s *ServiceLogger) Info(msg string) {
	s.output(Info, msg)
}

// Infof logs a formatted message on info level
func (s *ServiceLogger) Infof(format string, a ...any) {
	s.output(Info, fmt.Sprintf(format, a...))
}

// Warn logs a message on warn level
func (s *ServiceLogger) Warn(msg string) {
	s.output(Warn, msg)
}

// Warnf logs a formatted message on warn level
func (s *ServiceLogger) Warnf(format string, a ...any) {
	s.output(Warn, fmt.Sprintf(format, a...))
}

// Error logs a message on error level
func (s *ServiceLogger) Error(msg string) {
	s.output(Error, msg)
}

// Errorf logs a formatted message on error level
func (s *ServiceLogger) Errorf(format string, a ...any) {
	s.output(Error, fmt.Sprintf(format, a...))
}

// Alert logs a message on alert level
func (s *ServiceLogger) Alert(msg string) {
	s.output(Alert, msg)
}

// Alertf logs a formatted message on alert level
func (s *ServiceLogger) Alertf(format string, a ...any) {
	s.output(Alert, fmt.Sprintf(format, a...))
}
