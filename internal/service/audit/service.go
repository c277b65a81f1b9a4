// Package audit exposes the query log to the rest of the application and
// prunes it on a retention schedule.
package audit

import (
	"context"
	"log/slog"

	"t2s/internal/domain"
)

// displayQuestionRunes caps the question shown in list views. Get returns
// the full text.
const displayQuestionRunes = 30

// Service provides business logic around the append-only query log.
type Service struct {
	store        domain.AuditStore
	historyLimit int
	logger       *slog.Logger
}

// NewService creates a Service. historyLimit is the row count used when a
// caller does not ask for a specific one.
func NewService(store domain.AuditStore, historyLimit int, logger *slog.Logger) *Service {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &Service{
		store:        store,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// Record appends one pipeline attempt. Logging is best-effort: a storage
// failure is logged and swallowed so the caller's outcome never depends on
// audit I/O. Returns the new row id, or 0 when the append failed.
func (s *Service) Record(ctx context.Context, rec *domain.AuditRecord) int64 {
	id, err := s.store.Append(ctx, rec)
	if err != nil {
		s.logger.Warn("audit append failed", "provider", rec.Provider, "error", err)
		return 0
	}
	return id
}

// History returns the most recent attempts, newest first, with each question
// shortened for display.
func (s *Service) History(ctx context.Context, limit int) ([]domain.AuditSummary, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	summaries, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].Question = truncateQuestion(summaries[i].Question)
	}
	return summaries, nil
}

// Entry returns one full record, question untruncated.
func (s *Service) Entry(ctx context.Context, id int64) (*domain.AuditRecord, error) {
	return s.store.Get(ctx, id)
}

// Clear removes every record.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

func truncateQuestion(q string) string {
	runes := []rune(q)
	if len(runes) <= displayQuestionRunes {
		return q
	}
	return string(runes[:displayQuestionRunes]) + "…"
}
