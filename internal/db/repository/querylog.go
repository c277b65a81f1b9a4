package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"t2s/internal/domain"
)

var _ domain.AuditStore = (*QueryLogRepo)(nil)

// QueryLogRepo implements domain.AuditStore on the audit-store pool pair.
// Appends and deletes go through the single-writer pool; reads go through
// the read pool.
type QueryLogRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewQueryLogRepo creates a new QueryLogRepo. Tests that don't need the
// pool split can pass the same *sql.DB twice.
func NewQueryLogRepo(writeDB, readDB *sql.DB) *QueryLogRepo {
	return &QueryLogRepo{writeDB: writeDB, readDB: readDB}
}

// Append inserts one pipeline attempt record and returns its ID. The
// record is never updated afterwards.
func (r *QueryLogRepo) Append(ctx context.Context, rec *domain.AuditRecord) (int64, error) {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := r.writeDB.ExecContext(ctx,
		`INSERT INTO query_log
		   (created_at, provider, model, db_path, dialect, question,
		    raw_sql, cleaned_sql, safe_sql, limit_added, row_count, exec_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt.UTC().Format(time.RFC3339),
		rec.Provider, rec.Model, rec.DBPath, rec.Dialect, rec.Question,
		nullIfEmpty(rec.RawSQL), nullIfEmpty(rec.CleanedSQL), nullIfEmpty(rec.SafeSQL),
		boolToInt(rec.LimitAdded), rec.RowCount, rec.ExecMS, rec.Error)
	if err != nil {
		return 0, fmt.Errorf("append query log: %w", err)
	}
	return res.LastInsertId()
}

// ListRecent returns up to limit records, newest first, projected for
// display. Questions are returned in full here; truncation is a
// presentation concern.
func (r *QueryLogRepo) ListRecent(ctx context.Context, limit int) ([]domain.AuditSummary, error) {
	rows, err := r.readDB.QueryContext(ctx,
		`SELECT id, created_at, question, provider, model, row_count, exec_ms, error
		   FROM query_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list query log: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var summaries []domain.AuditSummary
	for rows.Next() {
		var (
			s       domain.AuditSummary
			created string
			rowCnt  sql.NullInt64
			execMS  sql.NullFloat64
			errMsg  sql.NullString
		)
		if err := rows.Scan(&s.ID, &created, &s.Question, &s.Provider, &s.Model, &rowCnt, &execMS, &errMsg); err != nil {
			return nil, err
		}
		s.CreatedAt = parseCreatedAt(created)
		s.RowCount = int64Ptr(rowCnt)
		s.ExecMS = float64Ptr(execMS)
		s.Error = strPtr(errMsg)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Get returns the full record for id, question and SQL untruncated.
func (r *QueryLogRepo) Get(ctx context.Context, id int64) (*domain.AuditRecord, error) {
	var (
		rec                   domain.AuditRecord
		created               string
		raw, cleaned, safeSQL sql.NullString
		limitAdded            int64
		rowCnt                sql.NullInt64
		execMS                sql.NullFloat64
		errMsg                sql.NullString
	)
	err := r.readDB.QueryRowContext(ctx,
		`SELECT id, created_at, provider, model, db_path, dialect, question,
		        raw_sql, cleaned_sql, safe_sql, limit_added, row_count, exec_ms, error
		   FROM query_log WHERE id = ?`, id).
		Scan(&rec.ID, &created, &rec.Provider, &rec.Model, &rec.DBPath, &rec.Dialect,
			&rec.Question, &raw, &cleaned, &safeSQL, &limitAdded, &rowCnt, &execMS, &errMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("query log entry %d not found", id)}
	}
	if err != nil {
		return nil, fmt.Errorf("get query log entry: %w", err)
	}

	rec.CreatedAt = parseCreatedAt(created)
	rec.RawSQL = raw.String
	rec.CleanedSQL = cleaned.String
	rec.SafeSQL = safeSQL.String
	rec.LimitAdded = limitAdded != 0
	rec.RowCount = int64Ptr(rowCnt)
	rec.ExecMS = float64Ptr(execMS)
	rec.Error = strPtr(errMsg)
	return &rec, nil
}

// Clear removes every record.
func (r *QueryLogRepo) Clear(ctx context.Context) error {
	if _, err := r.writeDB.ExecContext(ctx, `DELETE FROM query_log`); err != nil {
		return fmt.Errorf("clear query log: %w", err)
	}
	return nil
}

// DeleteOlderThan removes records created before cutoff and reports how
// many went. Timestamps are stored as UTC RFC 3339 text, so the
// comparison is lexicographic.
func (r *QueryLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.writeDB.ExecContext(ctx,
		`DELETE FROM query_log WHERE created_at < ?`, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("prune query log: %w", err)
	}
	return res.RowsAffected()
}
