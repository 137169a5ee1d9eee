package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/drone/envsubst"
	"gopkg.in/yaml.v3"
)

// Servicename name of the service
const Servicename = "gobackup-service"

// Config our service configuration
type Config struct {
	// port of the http server
	Port int `yaml:"port"`
	// port of the https server
	Sslport int `yaml:"sslport"`
	// this is the url how to connect to this service from outside
	ServiceURL string `yaml:"serviceURL"`

	SecretFile string `yaml:"secretfile"`

	Apikey bool `yaml:"apikey"`

	Logging LoggingConfig `yaml:"logging"`

	HealthCheck HealthCheck `yaml:"healthcheck"`

	Metrics Metrics `yaml:"metrics"`

	OpenTracing OpenTracing `yaml:"opentracing"`

	Backup Backup `yaml:"backup"`

	Storage Storage `yaml:"storage"`
}

// Backup configuration of the dump and lifecycle engine
type Backup struct {
	// RootPath the local directory holding the per granularity dump folders
	RootPath string `yaml:"rootpath"`
	// RemoteRoot the store path all dumps are uploaded below
	RemoteRoot string `yaml:"remoteroot"`
	// PruneSpec cron spec of the rule reconciliation pass
	PruneSpec string `yaml:"prunespec"`

	Database Database `yaml:"database"`

	Granularities []Granularity `yaml:"granularities"`

	Logship Logship `yaml:"logship"`
}

// Granularity one backup series, hour, day or week
type Granularity struct {
	Name string `yaml:"name"`
	// Days the day count of the expiration rule for this series
	Days int `yaml:"days"`
	// cron specs, staggered on purpose: backups fire at minute 58, rule
	// registration at 23:59, local sweeps at 00:01
	BackupSpec   string `yaml:"backupspec"`
	RegisterSpec string `yaml:"registerspec"`
	SweepSpec    string `yaml:"sweepspec"`
}

// Database connection for the dump command
type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// URL the connection url handed to the dump command
func (d Database) URL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s", d.User, d.Password, d.Host, d.Port, d.Name)
}

// Logship configuration of the log bundle shipping
type Logship struct {
	// Folder the local directory holding the rotated log bundles
	Folder string `yaml:"folder"`
	// RemoteRoot the store path all bundles are uploaded below
	RemoteRoot   string `yaml:"remoteroot"`
	Days         int    `yaml:"days"`
	ShipSpec     string `yaml:"shipspec"`
	RegisterSpec string `yaml:"registerspec"`
}

// Storage the S3 compatible object store
type Storage struct {
	Endpoint  string `yaml:"endpoint"`
	Insecure  bool   `yaml:"insecure"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"accesskey"`
	SecretKey string `yaml:"secretkey"`
}

// HealthCheck configuration for the health check system
type HealthCheck struct {
	Period int `yaml:"period"`
	// MinFreeSpace minimal free bytes on the backup root before readiness degrades
	MinFreeSpace uint64 `yaml:"minfreespace"`
}

// LoggingConfig configuration for the gelf logging
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Filename string `yaml:"filename"`

	Gelfurl  string `yaml:"gelf-url"`
	Gelfport int    `yaml:"gelf-port"`
}

// OpenTracing configuration
type OpenTracing struct {
	Host     string `yaml:"host"`
	Endpoint string `yaml:"endpoint"`
}

// Metrics configuration
type Metrics struct {
	Enable bool `yaml:"enable"`
}

// DefaultConfig default configuration, the cron specs reproduce the
// schedule the lifecycle engine was designed against
var DefaultConfig = Config{
	Port:       8000,
	Sslport:    8443,
	ServiceURL: "https://127.0.0.1:8443",
	SecretFile: "",
	Apikey:     true,
	HealthCheck: HealthCheck{
		Period:       30,
		MinFreeSpace: 1024 * 1024 * 1024,
	},
	Logging: LoggingConfig{
		Level:    "INFO",
		Filename: "${configdir}/logging.log",
	},
	Backup: Backup{
		RootPath:   "./backup",
		RemoteRoot: "backup_database",
		PruneSpec:  "30 0 * * *",
		Database: Database{
			Host: "127.0.0.1",
			Port: 5432,
			User: "postgres",
			Name: "postgres",
		},
		Granularities: []Granularity{
			{Name: "hour", Days: 3, BackupSpec: "58 * * * *", RegisterSpec: "59 23 * * *", SweepSpec: "1 0 * * *"},
			{Name: "day", Days: 5, BackupSpec: "58 23 * * *", RegisterSpec: "59 23 * * *", SweepSpec: "1 0 * * *"},
			{Name: "week", Days: 14, BackupSpec: "58 23 * * 0", RegisterSpec: "59 23 * * 0", SweepSpec: "1 0 * * 1"},
		},
		Logship: Logship{
			Folder:       "./logs",
			RemoteRoot:   "logs",
			Days:         4,
			ShipSpec:     "58 23 * * *",
			RegisterSpec: "59 23 * * *",
		},
	},
}

// Granularity looks up the configuration of a single backup series
func (b Backup) Granularity(name string) (Granularity, bool) {
	for _, g := range b.Granularities {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return Granularity{}, false
}

// GetDefaultConfigFolder returning the default configuration folder of the system
func GetDefaultConfigFolder() (string, error) {
	home, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	configFolder := filepath.Join(home, Servicename)
	err = os.MkdirAll(configFolder, os.ModePerm)
	if err != nil {
		return "", err
	}
	return configFolder, nil
}

// ReplaceConfigdir replace the configdir macro
func ReplaceConfigdir(s string) (string, error) {
	if strings.Contains(s, "${configdir}") {
		configFolder, err := GetDefaultConfigFolder()
		if err != nil {
			return "", err
		}
		return strings.Replace(s, "${configdir}", configFolder, -1), nil
	}
	return s, nil
}

var config = Config{}

// File the config file
var File = "${configdir}/service.yaml"

func init() {
	config = DefaultConfig
}

// Get returns loaded config
func Get() Config {
	return config
}

// Load loads the config
func Load() error {
	myFile, err := ReplaceConfigdir(File)
	if err != nil {
		return fmt.Errorf("can't get default config folder: %s", err.Error())
	}
	File = myFile
	_, err = os.Stat(myFile)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(File)
	if err != nil {
		return fmt.Errorf("can't load config file: %s", err.Error())
	}
	dataStr, err := envsubst.EvalEnv(string(data))
	if err != nil {
		return fmt.Errorf("can't substitute config file: %s", err.Error())
	}

	err = yaml.Unmarshal([]byte(dataStr), &config)
	if err != nil {
		return fmt.Errorf("can't unmarshal config file: %s", err.Error())
	}

	return readSecret()
}

func readSecret() error {
	secretFile := config.SecretFile
	if secretFile != "" {
		data, err := os.ReadFile(secretFile)
		if err != nil {
			return fmt.Errorf("can't load secret file: %s", err.Error())
		}
		var secretConfig Config
		err = yaml.Unmarshal(data, &secretConfig)
		if err != nil {
			return fmt.Errorf("can't unmarshal secret file: %s", err.Error())
		}
		// merge secret
		if err := mergo.Map(&config, secretConfig, mergo.WithOverride); err != nil {
			return fmt.Errorf("can't merge secret file: %s", err.Error())
		}
	}
	return nil
}
