// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: most-read list
// refresh, login-lockout sweeping and audit log retention.
package scheduler

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Default schedules.
const (
	PopularRefreshSchedule = "*/5 * * * *"
	LoginSweepSchedule     = "*/10 * * * *"
	EventCleanupSchedule   = "0 3 * * *"
)

// DefaultJobTimeout bounds a single job run.
const DefaultJobTimeout = 2 * time.Minute

// Scheduler wraps a cron instance and a registry of named jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	*Registry
}

// New creates a new scheduler instance.
func New(logger *slog.Logger) *Scheduler {
	c := cron.New()
	return &Scheduler{
		cron:     c,
		logger:   logger,
		Registry: newRegistry(c, logger, DefaultJobTimeout),
	}
}

// Start begins running registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
