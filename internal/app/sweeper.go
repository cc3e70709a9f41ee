/**
 * @description
 * Cron-driven maintenance jobs: purging expired progress snapshots from the
 * age index and expiring stale organization membership requests.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/eventra/onboarding-service/internal/flow"
)

// ProgressPurger removes snapshots older than the validity window.
type ProgressPurger interface {
	DeleteOlderThan(ctx context.Context, olderThan time.Duration) (int, error)
}

// JoinRequestExpirer marks stale pending membership requests as expired.
type JoinRequestExpirer interface {
	ExpireStaleJoinRequests(ctx context.Context, olderThan time.Duration) (int64, error)
}

// JoinRequestMaxAge is how long a membership request may stay pending
// before the sweeper expires it.
const JoinRequestMaxAge = 30 * 24 * time.Hour

// Sweeper runs the scheduled maintenance jobs.
type Sweeper struct {
	cron     *cron.Cron
	purger   ProgressPurger
	requests JoinRequestExpirer
	logger   *slog.Logger
	schedule string
}

// NewSweeper creates a sweeper with the given cron schedule.
func NewSweeper(purger ProgressPurger, requests JoinRequestExpirer, logger *slog.Logger, schedule string) *Sweeper {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	return &Sweeper{
		cron:     cron.New(cron.WithChain(cron.Recover(cronLogger))),
		purger:   purger,
		requests: requests,
		logger:   logger,
		schedule: schedule,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Sweeper) Start() {
	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		s.logger.Error("failed to schedule maintenance sweep", "error", err)
		return
	}
	s.logger.Info("scheduled maintenance sweep", "schedule", s.schedule)
	s.cron.Start()
}

// Stop gracefully stops the scheduler.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce executes one sweep. Exposed so operators can trigger it manually.
func (s *Sweeper) RunOnce() {
	ctx := context.Background()

	purged, err := s.purger.DeleteOlderThan(ctx, flow.SnapshotTTL)
	if err != nil {
		s.logger.Error("failed to purge expired progress snapshots", "error", err)
	} else if purged > 0 {
		s.logger.Info("purged expired progress snapshots", "count", purged)
	}

	if s.requests == nil {
		return
	}
	expired, err := s.requests.ExpireStaleJoinRequests(ctx, JoinRequestMaxAge)
	if err != nil {
		s.logger.Error("failed to expire stale join requests", "error", err)
	} else if expired > 0 {
		s.logger.Info("expired stale join requests", "count", expired)
	}
}
