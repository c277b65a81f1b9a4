package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

const studentDDL = `CREATE TABLE STUDENT (
	NAME TEXT,
	CLASS TEXT,
	SECTION TEXT,
	MARKS INTEGER
)`

const studentRows = `INSERT INTO STUDENT VALUES
	('Rifa', '10', 'A', 91),
	('Nabil', '10', 'A', 86),
	('Tania', '9', 'B', 79),
	('Shihab', '8', 'C', 73),
	('Mim', '10', 'B', 88),
	('Hasan', '9', 'A', 82)`

// SeedStudentDB creates the demo STUDENT database at path. An existing
// file is only replaced when force is set.
func SeedStudentDB(path string, force bool) error {
	if _, err := os.Stat(path); err == nil {
		if !force {
			return fmt.Errorf("%s already exists (use force to replace it)", path)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}

	pool, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer pool.Close() //nolint:errcheck

	if _, err := pool.Exec(studentDDL); err != nil {
		return fmt.Errorf("create STUDENT table: %w", err)
	}
	if _, err := pool.Exec(studentRows); err != nil {
		return fmt.Errorf("seed STUDENT rows: %w", err)
	}
	return nil
}
