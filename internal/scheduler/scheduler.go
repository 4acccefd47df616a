// Package scheduler periodically kicks off background syncs for a fixed
// set of accounts.
package scheduler

import (
	"context"
	"errors"
	"time"

	"golang.org/x/exp/slog"

	"github.com/upreis/reistooq-core-sub019/internal/domain/sync"
)

// Starter starts a background sync for a single account.
type Starter interface {
	StartSync(ctx context.Context, accountID string) error
}

type Config struct {
	Enabled  bool
	Interval time.Duration
	Accounts []string
}

type Scheduler struct {
	starter Starter
	cfg     Config
	log     *slog.Logger
}

func New(starter Starter, cfg Config, log *slog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}

	return &Scheduler{
		starter: starter,
		cfg:     cfg,
		log:     log.With("component", "scheduler"),
	}
}

// Run blocks until ctx is canceled, triggering a sync round every interval.
// The first round fires after one full interval, not immediately.
func (s *Scheduler) Run(ctx context.Context) {
	if !s.cfg.Enabled || len(s.cfg.Accounts) == 0 {
		s.log.Info("periodic sync disabled")
		return
	}

	s.log.Info("periodic sync started",
		"interval", s.cfg.Interval,
		"accounts", len(s.cfg.Accounts))

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("periodic sync stopped")
			return
		case <-ticker.C:
			s.runRound(ctx)
		}
	}
}

func (s *Scheduler) runRound(ctx context.Context) {
	for _, accountID := range s.cfg.Accounts {
		err := s.starter.StartSync(ctx, accountID)
		switch {
		case err == nil:
		case errors.Is(err, sync.ErrSyncRunning):
			// A manual or previous round sync is still in flight; skip.
			s.log.Debug("sync already running", "account_id", accountID)
		default:
			s.log.Error("failed to start sync", "account_id", accountID, "error", err)
		}

		if ctx.Err() != nil {
			return
		}
	}
}
