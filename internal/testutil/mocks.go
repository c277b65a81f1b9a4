// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"time"

	"t2s/internal/domain"
)

// === Generator Mock ===

// GeneratorCall records one prompt pair handed to the mock.
type GeneratorCall struct {
	SystemPrompt string
	UserPrompt   string
	Stream       bool
}

// MockGenerator implements domain.Generator for testing. With no function
// fields set, Generate returns Response/Err and GenerateStream plays
// StreamChunks then StreamErr.
type MockGenerator struct {
	NameStr  string
	ModelStr string

	GenerateFn func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	StreamFn   func(ctx context.Context, systemPrompt, userPrompt string) (<-chan string, <-chan error)

	Response     string
	Err          error
	StreamChunks []string
	StreamErr    error

	Calls []GeneratorCall // collected prompts for assertions
}

func (m *MockGenerator) Name() string {
	if m.NameStr == "" {
		return "mock"
	}
	return m.NameStr
}

func (m *MockGenerator) Model() string {
	if m.ModelStr == "" {
		return "mock-model"
	}
	return m.ModelStr
}

// Generate implements the interface method for testing.
func (m *MockGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.Calls = append(m.Calls, GeneratorCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt})
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, systemPrompt, userPrompt)
	}
	return m.Response, m.Err
}

// GenerateStream implements the interface method for testing.
func (m *MockGenerator) GenerateStream(ctx context.Context, systemPrompt, userPrompt string) (<-chan string, <-chan error) {
	m.Calls = append(m.Calls, GeneratorCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt, Stream: true})
	if m.StreamFn != nil {
		return m.StreamFn(ctx, systemPrompt, userPrompt)
	}

	chunks := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer close(chunks)
		for _, chunk := range m.StreamChunks {
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		if m.StreamErr != nil {
			errc <- m.StreamErr
		}
	}()
	return chunks, errc
}

// LastCall returns the most recent recorded call, or a zero value if none.
func (m *MockGenerator) LastCall() GeneratorCall {
	if len(m.Calls) == 0 {
		return GeneratorCall{}
	}
	return m.Calls[len(m.Calls)-1]
}

// === Engine Mock ===

// MockEngine implements domain.Engine for testing.
type MockEngine struct {
	DialectStr string
	SchemaFn   func(ctx context.Context) (domain.Schema, error)
	QueryFn    func(ctx context.Context, sqlText string) (*domain.QueryResult, error)

	SchemaVal domain.Schema
	Queries   []string // collected SQL handed to Query
}

func (m *MockEngine) Dialect() string {
	if m.DialectStr == "" {
		return "sqlite"
	}
	return m.DialectStr
}

// Schema implements the interface method for testing.
func (m *MockEngine) Schema(ctx context.Context) (domain.Schema, error) {
	if m.SchemaFn != nil {
		return m.SchemaFn(ctx)
	}
	return m.SchemaVal, nil
}

// Query implements the interface method for testing.
func (m *MockEngine) Query(ctx context.Context, sqlText string) (*domain.QueryResult, error) {
	m.Queries = append(m.Queries, sqlText)
	if m.QueryFn != nil {
		return m.QueryFn(ctx, sqlText)
	}
	return &domain.QueryResult{Columns: []string{}, Rows: [][]any{}}, nil
}

func (m *MockEngine) Close() error { return nil }

// === Audit Store Mock ===

// MockAuditStore implements domain.AuditStore for testing. Appended
// records are collected for assertions.
type MockAuditStore struct {
	AppendFn func(ctx context.Context, rec *domain.AuditRecord) (int64, error)

	Records []*domain.AuditRecord
	nextID  int64
}

// Append implements the interface method for testing.
func (m *MockAuditStore) Append(ctx context.Context, rec *domain.AuditRecord) (int64, error) {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, rec)
	}
	m.nextID++
	rec.ID = m.nextID
	m.Records = append(m.Records, rec)
	return m.nextID, nil
}

// ListRecent implements the interface method for testing.
func (m *MockAuditStore) ListRecent(_ context.Context, limit int) ([]domain.AuditSummary, error) {
	var out []domain.AuditSummary
	for i := len(m.Records) - 1; i >= 0 && len(out) < limit; i-- {
		rec := m.Records[i]
		out = append(out, domain.AuditSummary{
			ID:        rec.ID,
			CreatedAt: rec.CreatedAt,
			Question:  rec.Question,
			Provider:  rec.Provider,
			Model:     rec.Model,
			RowCount:  rec.RowCount,
			ExecMS:    rec.ExecMS,
			Error:     rec.Error,
		})
	}
	return out, nil
}

// Get implements the interface method for testing.
func (m *MockAuditStore) Get(_ context.Context, id int64) (*domain.AuditRecord, error) {
	for _, rec := range m.Records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, &domain.NotFoundError{Message: "query log entry not found"}
}

// Clear implements the interface method for testing.
func (m *MockAuditStore) Clear(context.Context) error {
	m.Records = nil
	return nil
}

// DeleteOlderThan implements the interface method for testing.
func (m *MockAuditStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []*domain.AuditRecord
	var deleted int64
	for _, rec := range m.Records {
		if rec.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	m.Records = kept
	return deleted, nil
}

// LastRecord returns the most recently appended record, or nil if none.
func (m *MockAuditStore) LastRecord() *domain.AuditRecord {
	if len(m.Records) == 0 {
		return nil
	}
	return m.Records[len(m.Records)-1]
}

var (
	_ domain.Generator  = (*MockGenerator)(nil)
	_ domain.Engine     = (*MockEngine)(nil)
	_ domain.AuditStore = (*MockAuditStore)(nil)
)
