// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/wordzy/admin-api/internal/metrics"
)

// Sweeper periodically evicts expired records from a Store. Neither backend
// has native TTL support, so both rely on it.
type Sweeper struct {
	store     Store
	scheduler *gocron.Scheduler
	interval  time.Duration
}

// NewSweeper creates a sweeper running at the given interval.
func NewSweeper(store Store, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		store:     store,
		scheduler: gocron.NewScheduler(time.UTC),
		interval:  interval,
	}
}

// Start schedules the sweep and returns immediately.
func (s *Sweeper) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.run); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop halts the scheduler. A sweep in flight finishes.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.store.Sweep(ctx)
	if err != nil {
		slog.Error("reset record sweep failed", "error", err)
		return
	}

	metrics.RecordsSwept.Add(float64(removed))
	if removed > 0 {
		slog.Info("reset record sweep finished", "removed", removed)
	}
}
