package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"t2s/internal/domain"
)

var _ domain.Engine = (*SQLite)(nil)

// SQLite runs queries against a SQLite file opened read-only. mode=ro
// rejects writes at the file level and query_only at the connection
// level, independent of what the safety gate admits.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens path read-only and verifies the connection. The file
// must already exist.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000&_query_only=true", path)
	pool, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	pool.SetMaxOpenConns(4)
	pool.SetMaxIdleConns(4)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	return &SQLite{db: pool, path: path}, nil
}

func (e *SQLite) Dialect() string { return "sqlite" }

// Schema lists user tables and their columns, alphabetically, so the
// prompt text built from it is reproducible.
func (e *SQLite) Schema(ctx context.Context) (domain.Schema, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	schema := make(domain.Schema, 0, len(names))
	for _, name := range names {
		cols, err := e.tableColumns(ctx, name)
		if err != nil {
			return nil, err
		}
		schema = append(schema, domain.Table{Name: name, Columns: cols})
	}
	return schema, nil
}

// tableColumns reads column names via PRAGMA table_info. PRAGMA takes no
// bind parameters, so the table name is quote-escaped inline.
func (e *SQLite) tableColumns(ctx context.Context, table string) ([]string, error) {
	quoted := strings.ReplaceAll(table, "'", "''")
	rows, err := e.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info('%s')", quoted))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close() //nolint:errcheck

	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// Query executes one validated statement and buffers the full result.
func (e *SQLite) Query(ctx context.Context, sqlText string) (*domain.QueryResult, error) {
	return runQuery(ctx, e.db, sqlText)
}

func (e *SQLite) Close() error { return e.db.Close() }
