package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/marcus/dispatch/internal/config"
)

func TestNewFromConfig_Cron(t *testing.T) {
	cfg := config.ScheduleConfig{Cron: "0 2 * * *"}

	s, err := NewFromConfig(cfg, func() {})
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	if s.CronExpr() != cfg.Cron {
		t.Errorf("CronExpr() = %q, want %q", s.CronExpr(), cfg.Cron)
	}
	if s.Interval() != 0 {
		t.Errorf("Interval() = %v, want 0", s.Interval())
	}
}

func TestNewFromConfig_Interval(t *testing.T) {
	cfg := config.ScheduleConfig{Interval: "45m"}

	s, err := NewFromConfig(cfg, func() {})
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	if s.Interval() != 45*time.Minute {
		t.Errorf("Interval() = %v, want 45m", s.Interval())
	}
}

func TestNewFromConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ScheduleConfig
		wantErr error
	}{
		{"both set", config.ScheduleConfig{Cron: "0 2 * * *", Interval: "1h"}, config.ErrCronAndInterval},
		{"neither set", config.ScheduleConfig{}, ErrNoSchedule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFromConfig(tt.cfg, func() {}); !errors.Is(err, tt.wantErr) {
				t.Errorf("NewFromConfig() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("invalid cron", func(t *testing.T) {
		if _, err := NewFromConfig(config.ScheduleConfig{Cron: "invalid cron"}, func() {}); err == nil {
			t.Error("NewFromConfig() expected error for invalid cron")
		}
	})

	t.Run("invalid interval", func(t *testing.T) {
		if _, err := NewFromConfig(config.ScheduleConfig{Interval: "soon"}, func() {}); err == nil {
			t.Error("NewFromConfig() expected error for invalid interval")
		}
	})

	t.Run("negative interval", func(t *testing.T) {
		if _, err := NewFromConfig(config.ScheduleConfig{Interval: "-1m"}, func() {}); err == nil {
			t.Error("NewFromConfig() expected error for negative interval")
		}
	})
}

func TestIntervalSchedulerFiresJob(t *testing.T) {
	fired := make(chan struct{}, 1)
	job := func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}

	s, err := NewFromConfig(config.ScheduleConfig{Interval: "10ms"}, job)
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("interval job did not fire")
	}
}

func TestStartStop(t *testing.T) {
	s, err := NewFromConfig(config.ScheduleConfig{Interval: "1h"}, func() {})
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	s.Stop()
}
