// Package retention keeps the append-only messages table bounded by
// purging turns older than a configured age on a cron schedule.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	robfigcron "github.com/robfig/cron/v3"

	"github.com/localhive/localhive/internal/config"
	"github.com/localhive/localhive/internal/store"
)

// Service schedules the message purge.
type Service struct {
	store    store.Store
	schedule string
	maxAge   time.Duration
	cron     *robfigcron.Cron
}

// NewService builds a retention service from config. MaxAgeDays <= 0
// disables purging entirely.
func NewService(st store.Store, cfg config.RetentionConfig) *Service {
	return &Service{
		store:    st,
		schedule: cfg.Schedule,
		maxAge:   time.Duration(cfg.MaxAgeDays) * 24 * time.Hour,
		cron:     robfigcron.New(robfigcron.WithSeconds()),
	}
}

// Start arms the schedule and blocks until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	if s.maxAge <= 0 {
		slog.Info("retention disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	slog.Info("retention started", "schedule", s.schedule, "max_age", s.maxAge)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return ctx.Err()
}

// RunOnce purges immediately, independent of the schedule.
func (s *Service) RunOnce(ctx context.Context) {
	cutoff := time.Now().Add(-s.maxAge)
	n, err := s.store.PurgeMessagesBefore(ctx, cutoff)
	if err != nil {
		slog.Error("retention purge failed", "err", err)
		return
	}
	if n > 0 {
		slog.Info("retention purge", "removed", n, "cutoff", cutoff)
	}
}
