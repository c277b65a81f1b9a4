package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"t2s/internal/domain"
)

var _ domain.Engine = (*DuckDB)(nil)

// DuckDB runs queries against a DuckDB file opened with
// access_mode=read_only.
type DuckDB struct {
	db   *sql.DB
	path string
}

// OpenDuckDB opens path read-only and verifies the connection.
func OpenDuckDB(path string) (*DuckDB, error) {
	pool, err := sql.Open("duckdb", path+"?access_mode=read_only")
	if err != nil {
		return nil, fmt.Errorf("open duckdb %s: %w", path, err)
	}
	pool.SetMaxOpenConns(4)
	pool.SetMaxIdleConns(4)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping duckdb %s: %w", path, err)
	}

	return &DuckDB{db: pool, path: path}, nil
}

func (e *DuckDB) Dialect() string { return "duckdb" }

// Schema lists base tables in the main schema with their columns in
// ordinal order, tables alphabetical.
func (e *DuckDB) Schema(ctx context.Context) (domain.Schema, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT table_name FROM information_schema.tables
		  WHERE table_schema = 'main' AND table_type = 'BASE TABLE'
		  ORDER BY table_name`)
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

func (e *DuckDB) tableColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT column_name FROM information_schema.columns
		  WHERE table_schema = 'main' AND table_name = ?
		  ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close() //nolint:errcheck

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// Query executes one validated statement and buffers the full result.
func (e *DuckDB) Query(ctx context.Context, sqlText string) (*domain.QueryResult, error) {
	return runQuery(ctx, e.db, sqlText)
}

func (e *DuckDB) Close() error { return e.db.Close() }
