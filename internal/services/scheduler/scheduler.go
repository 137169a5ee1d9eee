// Package scheduler is the thin cron harness firing the backup and
// lifecycle operations on independent timers. There is no mutual exclusion
// between jobs, the staggering of the configured cron specs is the safety
// mechanism against concurrent rule writes.
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/willie68/GoBackupStore/internal/logging"
)

var logger = logging.New().WithName("scheduler")

// Job a single scheduled operation. Jobs return an error for testability,
// the scheduler logs and swallows it, a failing pass never stops the timers.
type Job func() error

// Scheduler fires the registered jobs on their cron specs
type Scheduler struct {
	cron *cron.Cron
}

// New creates an empty scheduler
func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
	}
}

// AddJob registers a job under a cron spec. The job is wrapped by the
// log-and-suppress boundary.
func (s *Scheduler) AddJob(name, spec string, job Job) error {
	if spec == "" {
		logger.Infof("job %s has no schedule, skipping", name)
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("job %s panicked: %v", name, r)
			}
		}()
		logger.Debugf("job %s firing", name)
		if err := job(); err != nil {
			logger.Errorf("job %s failed: %v", name, err)
		}
	})
	if err != nil {
		return err
	}
	logger.Infof("job %s scheduled: %s", name, spec)
	return nil
}

// Start starts the timers
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the timers and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// NextRun returns the next firing time over all jobs
func (s *Scheduler) NextRun() *time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	for _, e := range entries[1:] {
		if e.Next.Before(next) {
			next = e.Next
		}
	}
	return &next
}
