package engine

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"t2s/internal/domain"
)

// newStudentDB creates a seeded SQLite file and returns its path.
func newStudentDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "student.db")

	pool, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer pool.Close() //nolint:errcheck

	_, err = pool.Exec(`CREATE TABLE STUDENT (NAME TEXT, CLASS TEXT, SECTION TEXT, MARKS INTEGER)`)
	require.NoError(t, err)
	_, err = pool.Exec(`INSERT INTO STUDENT VALUES
		('Rifa', '10', 'A', 91),
		('Nabil', '10', 'A', 86),
		('Tania', '9', 'B', 79),
		('Shihab', '8', 'C', 73),
		('Mim', '10', 'B', 88),
		('Hasan', '9', 'A', 82)`)
	require.NoError(t, err)

	return path
}

func openStudentEngine(t *testing.T) *SQLite {
	t.Helper()
	eng, err := OpenSQLite(newStudentDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func requireExecError(t *testing.T, err error) *domain.ExecutionError {
	t.Helper()
	var ee *domain.ExecutionError
	require.ErrorAs(t, err, &ee)
	return ee
}

func TestSQLite_Schema(t *testing.T) {
	eng := openStudentEngine(t)

	schema, err := eng.Schema(context.Background())
	require.NoError(t, err)
	require.Len(t, schema, 1)
	assert.Equal(t, "STUDENT", schema[0].Name)
	assert.Equal(t, []string{"NAME", "CLASS", "SECTION", "MARKS"}, schema[0].Columns)
}

func TestSQLite_Query(t *testing.T) {
	eng := openStudentEngine(t)

	res, err := eng.Query(context.Background(),
		"SELECT NAME, MARKS FROM STUDENT WHERE MARKS > 85 ORDER BY MARKS DESC LIMIT 100;")
	require.NoError(t, err)

	assert.Equal(t, []string{"NAME", "MARKS"}, res.Columns)
	require.Len(t, res.Rows, 3)
	// TEXT values come back as strings, not []byte.
	assert.Equal(t, "Rifa", res.Rows[0][0])
	assert.Equal(t, int64(91), res.Rows[0][1])
	assert.Equal(t, "Mim", res.Rows[1][0])
	assert.Equal(t, "Nabil", res.Rows[2][0])
}

func TestSQLite_QueryAggregate(t *testing.T) {
	eng := openStudentEngine(t)

	res, err := eng.Query(context.Background(), "SELECT COUNT(*) AS n FROM STUDENT")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(6), res.Rows[0][0])
}

func TestSQLite_EmptyResultKeepsColumns(t *testing.T) {
	eng := openStudentEngine(t)

	res, err := eng.Query(context.Background(), "SELECT * FROM STUDENT WHERE MARKS > 1000")
	require.NoError(t, err)
	assert.Equal(t, []string{"NAME", "CLASS", "SECTION", "MARKS"}, res.Columns)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
}

func TestSQLite_RejectsWrites(t *testing.T) {
	eng := openStudentEngine(t)
	ctx := context.Background()

	for _, stmt := range []string{
		"INSERT INTO STUDENT VALUES ('Zed', '7', 'D', 1)",
		"DELETE FROM STUDENT",
		"UPDATE STUDENT SET MARKS = 0",
		"DROP TABLE STUDENT",
	} {
		_, err := eng.Query(ctx, stmt)
		requireExecError(t, err)
	}

	// Nothing got through.
	res, err := eng.Query(ctx, "SELECT COUNT(*) FROM STUDENT")
	require.NoError(t, err)
	assert.Equal(t, int64(6), res.Rows[0][0])
}

func TestSQLite_ExecutionError(t *testing.T) {
	eng := openStudentEngine(t)

	_, err := eng.Query(context.Background(), "SELECT * FROM no_such_table")
	ee := requireExecError(t, err)
	assert.Contains(t, ee.Message, "no_such_table")
}

func TestSQLite_OpenMissingFile(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
}

func TestNew_UnsupportedDialect(t *testing.T) {
	_, err := New("postgres", "/tmp/x.db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported dialect")
}
