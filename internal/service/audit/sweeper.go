package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"t2s/internal/domain"
)

const sweepTimeout = time.Minute

// Sweeper deletes query log rows older than the retention window on a daily
// cron.
type Sweeper struct {
	cron          *cron.Cron
	store         domain.AuditStore
	retentionDays int
	logger        *slog.Logger
}

// NewSweeper creates a Sweeper. A non-positive retentionDays disables
// pruning entirely.
func NewSweeper(store domain.AuditStore, retentionDays int, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		cron:          cron.New(),
		store:         store,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Start runs one sweep immediately and schedules a daily one.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.retentionDays <= 0 {
		s.logger.Info("audit retention disabled, keeping all query log rows")
		return nil
	}

	if _, err := s.cron.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		s.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("schedule audit sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("audit retention sweeper started", "retention_days", s.retentionDays)

	s.Sweep(ctx)
	return nil
}

// Stop gracefully stops the cron scheduler.
func (s *Sweeper) Stop() {
	if s.retentionDays <= 0 {
		return
	}
	s.cron.Stop()
	s.logger.Info("audit retention sweeper stopped")
}

// Sweep runs a single retention pass. Failures are logged, not returned:
// pruning is housekeeping and must never take the server down.
func (s *Sweeper) Sweep(ctx context.Context) {
	if s.retentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	deleted, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Warn("audit sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("audit sweep pruned rows", "deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
	}
}
