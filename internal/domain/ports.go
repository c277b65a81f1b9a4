package domain

import (
	"context"
	"time"
)

// Generator produces SQL text from a system/user prompt pair.
// Implemented by provider.Ollama and provider.Groq.
type Generator interface {
	// Name identifies the backend ("ollama", "groq") for audit records.
	Name() string
	// Model identifies the configured model for audit records.
	Model() string
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// GenerateStream yields incremental text fragments on the first channel.
	// The error channel receives at most one value and is closed when the
	// stream ends; a nil-closed error channel means the stream completed.
	GenerateStream(ctx context.Context, systemPrompt, userPrompt string) (<-chan string, <-chan error)
}

// Engine runs queries against the target database over a physically
// read-only connection and introspects its schema.
// Implemented by engine.SQLite and engine.DuckDB.
type Engine interface {
	Dialect() string
	Schema(ctx context.Context) (Schema, error)
	Query(ctx context.Context, sqlText string) (*QueryResult, error)
	Close() error
}

// AuditStore persists pipeline attempt records.
// Implemented by repository.QueryLogRepo.
type AuditStore interface {
	Append(ctx context.Context, rec *AuditRecord) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]AuditSummary, error)
	Get(ctx context.Context, id int64) (*AuditRecord, error)
	Clear(ctx context.Context) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
