package domain

import "time"

// AuditRecord is one row of the append-only query log. Exactly one record is
// written per top-level pipeline attempt, including rejected and rate-limited
// ones, and it is never mutated after insertion.
type AuditRecord struct {
	ID         int64
	CreatedAt  time.Time
	Provider   string
	Model      string
	DBPath     string
	Dialect    string
	Question   string
	RawSQL     string
	CleanedSQL string
	SafeSQL    string
	LimitAdded bool
	RowCount   *int64
	ExecMS     *float64
	Error      *string
}

// AuditSummary is the list-view projection of an AuditRecord. The question is
// truncated for display; Get returns the full record.
type AuditSummary struct {
	ID        int64
	CreatedAt time.Time
	Question  string
	Provider  string
	Model     string
	RowCount  *int64
	ExecMS    *float64
	Error     *string
}
