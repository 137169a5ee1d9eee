package health

import (
	"fmt"
	"sync"
	"time"

	"github.com/willie68/GoBackupStore/internal/config"
	"github.com/willie68/GoBackupStore/internal/logging"
)

var logger = logging.New().WithName("health")

// Check a single registered self check
type Check interface {
	Name() string
	Check() error
}

// CheckFunc adapts a function to the Check interface
type CheckFunc struct {
	CheckName string
	Fn        func() error
}

// Name the name of the check
func (c CheckFunc) Name() string {
	return c.CheckName
}

// Check runs the check
func (c CheckFunc) Check() error {
	return c.Fn()
}

// SHealth the central health system, running all registered checks
// periodically and caching the result for the readiness endpoint
type SHealth struct {
	period time.Duration
	mu     sync.Mutex
	checks []Check
	ready  bool
	msgs   []string
	last   time.Time
	ticker *time.Ticker
	quit   chan bool
}

// NewHealthSystem creates and starts the health system
func NewHealthSystem(cfn config.HealthCheck) (*SHealth, error) {
	period := cfn.Period
	if period <= 0 {
		period = 30
	}
	s := &SHealth{
		period: time.Duration(period) * time.Second,
		ready:  true,
	}
	s.ticker = time.NewTicker(s.period)
	s.quit = make(chan bool)
	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.doChecks()
			case <-s.quit:
				s.ticker.Stop()
				return
			}
		}
	}()
	return s, nil
}

// Register adds a check to the system and runs it once
func (s *SHealth) Register(c Check) {
	s.mu.Lock()
	s.checks = append(s.checks, c)
	s.mu.Unlock()
	s.doChecks()
}

func (s *SHealth) doChecks() {
	s.mu.Lock()
	checks := make([]Check, len(s.checks))
	copy(checks, s.checks)
	s.mu.Unlock()

	msgs := make([]string, 0)
	for _, c := range checks {
		if err := c.Check(); err != nil {
			msgs = append(msgs, fmt.Sprintf("%s: %v", c.Name(), err))
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = len(msgs) == 0
	s.msgs = msgs
	s.last = time.Now()
	if !s.ready {
		logger.Errorf("health degraded: %v", msgs)
	}
}

// Ready reports the cached readiness state
func (s *SHealth) Ready() (bool, []string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready, s.msgs, s.last
}

// Close stops the periodic checks
func (s *SHealth) Close() {
	s.quit <- true
}
