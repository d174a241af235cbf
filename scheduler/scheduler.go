// Package scheduler runs the periodic notification sweep
package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"weatherbot.app/config"
	"weatherbot.app/service"
)

// Scheduler drives the notification service on a fixed interval
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    service.NotificationRunner
	interval  time.Duration
}

// NewScheduler creates a scheduler for the notification sweep
func NewScheduler(cfg *config.SchedulerConfig, runner service.NotificationRunner) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		runner:    runner,
		interval:  time.Duration(cfg.NotifyCheckInterval) * time.Minute,
	}
}

// Start schedules the sweep job and starts the scheduler in the background
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 5
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		if err := s.runner.RunDueNotifications(); err != nil {
			slog.Error("notification sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	slog.Info("notification scheduler started", "interval_minutes", minutes)
	return nil
}

// Stop stops the scheduler and cancels future jobs
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
