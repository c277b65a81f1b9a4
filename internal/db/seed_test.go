package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedStudentDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "student.db")

	require.NoError(t, SeedStudentDB(path, false))

	pool, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer pool.Close() //nolint:errcheck

	var count int
	require.NoError(t, pool.QueryRow(`SELECT COUNT(*) FROM STUDENT`).Scan(&count))
	assert.Equal(t, 6, count)

	var name string
	var marks int
	require.NoError(t, pool.QueryRow(
		`SELECT NAME, MARKS FROM STUDENT ORDER BY MARKS DESC LIMIT 1`,
	).Scan(&name, &marks))
	assert.Equal(t, "Rifa", name)
	assert.Equal(t, 91, marks)
}

func TestSeedStudentDB_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "student.db")
	require.NoError(t, SeedStudentDB(path, false))

	err := SeedStudentDB(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestSeedStudentDB_ForceReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "student.db")
	require.NoError(t, SeedStudentDB(path, false))

	pool, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = pool.Exec(`DELETE FROM STUDENT`)
	require.NoError(t, err)
	require.NoError(t, pool.Close())

	require.NoError(t, SeedStudentDB(path, true))

	pool, err = sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer pool.Close() //nolint:errcheck

	var count int
	require.NoError(t, pool.QueryRow(`SELECT COUNT(*) FROM STUDENT`).Scan(&count))
	assert.Equal(t, 6, count)
}
