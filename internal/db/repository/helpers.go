// Package repository implements the domain audit store over SQLite.
package repository

import (
	"database/sql"
	"time"
)

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// nullIfEmpty maps "" to NULL so absent pipeline stages stay NULL in the
// log instead of empty strings.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func float64Ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func parseCreatedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
