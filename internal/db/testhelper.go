package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestAuditDB opens a migrated audit-store pool pair in t.TempDir()
// and registers cleanup. Tests that don't need the read/write split can
// use writeDB for everything.
func OpenTestAuditDB(t *testing.T) (writeDB, readDB *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "t2s_log.db")

	writeDB, readDB, err := OpenAuditStore(path, 4)
	if err != nil {
		t.Fatalf("open test audit db: %v", err)
	}
	t.Cleanup(func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	})

	return writeDB, readDB
}
