// Package ask orchestrates the question-to-result pipeline: admission,
// schema lookup, prompt construction, generation, the safety gate, limit
// enforcement, execution, and the audit record that closes every attempt.
package ask

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"t2s/internal/config"
	"t2s/internal/domain"
	"t2s/internal/prompt"
	"t2s/internal/ratelimit"
	"t2s/internal/service/audit"
	"t2s/internal/sqlsafety"
)

// Service runs the pipeline. One call handles one question end-to-end with
// no internal fan-out and no automatic retries.
type Service struct {
	cfg     *config.Config
	gen     domain.Generator
	engine  domain.Engine
	limiter *ratelimit.Limiter
	audit   *audit.Service
	logger  *slog.Logger
}

// NewService creates a Service.
func NewService(
	cfg *config.Config,
	gen domain.Generator,
	engine domain.Engine,
	limiter *ratelimit.Limiter,
	auditSvc *audit.Service,
	logger *slog.Logger,
) *Service {
	return &Service{
		cfg:     cfg,
		gen:     gen,
		engine:  engine,
		limiter: limiter,
		audit:   auditSvc,
		logger:  logger,
	}
}

// Ask answers one question. Failure exits are possible before generation
// (InputTooLongError, RateLimitedError), after generation (GenerationError),
// after validation (SafetyError), and after execution (ExecutionError).
// Every path, success or failure, writes exactly one audit record.
//
// On an execution failure the returned result is non-nil and carries the
// SQL stages that were attempted, so callers can show what ran.
func (s *Service) Ask(ctx context.Context, clientKey, question string) (*domain.AskResult, error) {
	question = strings.TrimSpace(question)
	rec := s.newRecord(question)

	if err := s.admit(clientKey, question); err != nil {
		return nil, s.logFailure(ctx, rec, err)
	}

	userPrompt, err := s.buildPrompt(ctx, question)
	if err != nil {
		return nil, s.logFailure(ctx, rec, err)
	}

	raw, err := s.generate(ctx, userPrompt)
	if err != nil {
		return nil, s.logFailure(ctx, rec, err)
	}
	rec.RawSQL = raw
	rec.CleanedSQL = sqlsafety.Extract(raw)

	validated, err := sqlsafety.Validate(rec.CleanedSQL)
	if err != nil {
		return nil, s.logFailure(ctx, rec, err)
	}

	safe := sqlsafety.EnforceLimit(validated, s.cfg.DefaultRowLimit)
	rec.SafeSQL = safe.SQL
	rec.LimitAdded = safe.LimitAdded

	result, execMS, err := s.execute(ctx, safe.SQL)
	if err != nil {
		failErr := s.logFailure(ctx, rec, err)
		return &domain.AskResult{
			Question:   question,
			RawSQL:     rec.RawSQL,
			CleanedSQL: rec.CleanedSQL,
			SafeSQL:    rec.SafeSQL,
			LimitAdded: rec.LimitAdded,
			AuditID:    rec.ID,
		}, failErr
	}

	rowCount := int64(len(result.Rows))
	rec.RowCount = &rowCount
	rec.ExecMS = &execMS
	auditID := s.audit.Record(context.WithoutCancel(ctx), rec)

	s.logger.Info("ask completed",
		"client", clientKey,
		"rows", rowCount,
		"exec_ms", execMS,
		"limit_added", safe.LimitAdded,
	)

	return &domain.AskResult{
		Question:   question,
		RawSQL:     raw,
		CleanedSQL: rec.CleanedSQL,
		SafeSQL:    safe.SQL,
		LimitAdded: safe.LimitAdded,
		Columns:    result.Columns,
		Rows:       result.Rows,
		RowCount:   len(result.Rows),
		ExecMS:     execMS,
		AuditID:    auditID,
	}, nil
}

// AskStream answers one question in streaming mode: admission checks run
// first, then provider chunks are forwarded as they arrive. On completion
// the concatenated text is logged as raw_sql with its extraction as
// cleaned_sql; nothing is validated or executed. If the caller goes away
// mid-stream, the partial buffer is what gets logged.
func (s *Service) AskStream(ctx context.Context, clientKey, question string) (<-chan string, <-chan error) {
	chunks := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(chunks)

		q := strings.TrimSpace(question)
		rec := s.newRecord(q)

		if err := s.admit(clientKey, q); err != nil {
			errc <- s.logFailure(ctx, rec, err)
			return
		}

		userPrompt, err := s.buildPrompt(ctx, q)
		if err != nil {
			errc <- s.logFailure(ctx, rec, err)
			return
		}

		genCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
		defer cancel()
		provChunks, provErrc := s.gen.GenerateStream(genCtx, prompt.System, userPrompt)

		var buf strings.Builder
	forward:
		for chunk := range provChunks {
			buf.WriteString(chunk)
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				// Caller interruption: stop forwarding. The provider sees
				// the same cancellation and winds down on its own.
				break forward
			}
		}
		streamErr := <-provErrc
		if streamErr == nil && ctx.Err() != nil {
			streamErr = domain.ErrGeneration(s.gen.Name(), "stream interrupted: %v", ctx.Err())
		}

		rec.RawSQL = buf.String()
		rec.CleanedSQL = sqlsafety.Extract(rec.RawSQL)
		if streamErr != nil {
			errc <- s.logFailure(ctx, rec, streamErr)
			return
		}
		s.audit.Record(context.WithoutCancel(ctx), rec)
		s.logger.Info("ask stream completed", "client", clientKey, "chars", buf.Len())
	}()

	return chunks, errc
}

// admit applies the pre-generation gates: question length first (an
// over-long question never consumes a rate slot), then the sliding window.
func (s *Service) admit(clientKey, question string) error {
	if n := utf8.RuneCountInString(question); n > s.cfg.MaxInputChars {
		return domain.ErrInputTooLong(n, s.cfg.MaxInputChars)
	}
	allowed, retryAfter := s.limiter.Check(clientKey, s.cfg.RateLimitMax, s.cfg.RateLimitWindow)
	if !allowed {
		return domain.ErrRateLimited(retryAfter)
	}
	return nil
}

func (s *Service) buildPrompt(ctx context.Context, question string) (string, error) {
	schema, err := s.engine.Schema(ctx)
	if err != nil {
		return "", err
	}
	return prompt.BuildUser(question, schema, s.engine.Dialect()), nil
}

func (s *Service) generate(ctx context.Context, userPrompt string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
	defer cancel()
	return s.gen.Generate(genCtx, prompt.System, userPrompt)
}

func (s *Service) execute(ctx context.Context, sqlText string) (*domain.QueryResult, float64, error) {
	execCtx, cancel := context.WithTimeout(ctx, s.cfg.ExecTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.engine.Query(execCtx, sqlText)
	if err != nil {
		return nil, 0, err
	}
	return result, float64(time.Since(start)) / float64(time.Millisecond), nil
}

// logFailure writes the terminal audit record for a failed attempt and
// passes the error through. The audit write is detached from the request
// context so a caller disconnect still reaches the log.
func (s *Service) logFailure(ctx context.Context, rec *domain.AuditRecord, err error) error {
	msg := err.Error()
	rec.Error = &msg
	rec.ID = s.audit.Record(context.WithoutCancel(ctx), rec)
	s.logger.Warn("ask failed", "error", err)
	return err
}

func (s *Service) newRecord(question string) *domain.AuditRecord {
	return &domain.AuditRecord{
		CreatedAt: time.Now(),
		Provider:  s.gen.Name(),
		Model:     s.gen.Model(),
		DBPath:    s.cfg.DBPath,
		Dialect:   s.engine.Dialect(),
		Question:  question,
	}
}
