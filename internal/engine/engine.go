// Package engine executes validated queries against the target database
// over physically read-only connections and introspects its schema.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"t2s/internal/domain"
)

// New opens the engine for the given dialect. The returned engine holds a
// read-only pool: even a statement that slipped past the gate cannot
// write.
func New(dialect, path string) (domain.Engine, error) {
	switch dialect {
	case "sqlite":
		return OpenSQLite(path)
	case "duckdb":
		return OpenDuckDB(path)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
}

// runQuery executes one statement and scans every row into a QueryResult.
// Driver failures surface as domain.ExecutionError.
func runQuery(ctx context.Context, pool *sql.DB, sqlText string) (*domain.QueryResult, error) {
	// Drivers differ on trailing semicolons; the statement is already
	// known to be a single one.
	sqlText = strings.TrimSuffix(strings.TrimSpace(sqlText), ";")

	rows, err := pool.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, execErr(ctx, err)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, execErr(ctx, err)
	}

	result := &domain.QueryResult{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, execErr(ctx, err)
		}
		for i, v := range values {
			values[i] = normalizeValue(v)
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, execErr(ctx, err)
	}
	return result, nil
}

// execErr wraps a driver failure, naming timeouts explicitly.
func execErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.ErrExecution("query timed out: %v", ctxErr)
	}
	return domain.ErrExecution("%v", err)
}

// normalizeValue converts driver-specific scan types into display-stable
// ones. SQLite hands TEXT back as []byte.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
