// Package scheduler triggers recurring daemon runs from a cron expression
// or a fixed interval.
package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/marcus/dispatch/internal/config"
)

// ErrNoSchedule means neither cron nor interval was configured.
var ErrNoSchedule = errors.New("no schedule configured (set schedule.cron or schedule.interval)")

// Scheduler manages a single recurring job.
type Scheduler struct {
	cronExpr string
	interval time.Duration
	job      func()

	cron *cron.Cron
	stop chan struct{}
	done chan struct{}
}

// NewFromConfig validates the schedule configuration and builds a scheduler
// for job. Exactly one of cron or interval must be set.
func NewFromConfig(cfg config.ScheduleConfig, job func()) (*Scheduler, error) {
	if cfg.Cron != "" && cfg.Interval != "" {
		return nil, config.ErrCronAndInterval
	}

	s := &Scheduler{job: job}

	switch {
	case cfg.Cron != "":
		if _, err := cron.ParseStandard(cfg.Cron); err != nil {
			return nil, fmt.Errorf("invalid cron expression %q: %w", cfg.Cron, err)
		}
		s.cronExpr = cfg.Cron
	case cfg.Interval != "":
		d, err := time.ParseDuration(cfg.Interval)
		if err != nil {
			return nil, fmt.Errorf("invalid interval %q: %w", cfg.Interval, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("interval %q must be positive", cfg.Interval)
		}
		s.interval = d
	default:
		return nil, ErrNoSchedule
	}

	return s, nil
}

// CronExpr returns the configured cron expression, if any.
func (s *Scheduler) CronExpr() string { return s.cronExpr }

// Interval returns the configured interval, if any.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Start begins scheduling. It does not block.
func (s *Scheduler) Start() error {
	if s.cronExpr != "" {
		s.cron = cron.New()
		if _, err := s.cron.AddFunc(s.cronExpr, s.job); err != nil {
			return fmt.Errorf("scheduling cron job: %w", err)
		}
		s.cron.Start()
		return nil
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.job()
			case <-s.stop:
				return
			}
		}
	}()
	return nil
}

// Stop halts scheduling and waits for the interval loop, if any, to exit.
// Already-running jobs are not interrupted.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		return
	}
	if s.stop != nil {
		close(s.stop)
		<-s.done
	}
}
