package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCmd_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "student.db")

	out, err := runCLI(t, "seed", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "student database ready at")

	_, statErr := os.Stat(path)
	require.NoError(t, statErr)
}

func TestSeedCmd_RefusesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "student.db")

	_, err := runCLI(t, "seed", "--db", path)
	require.NoError(t, err)

	_, err = runCLI(t, "seed", "--db", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestSeedCmd_ForceReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "student.db")

	_, err := runCLI(t, "seed", "--db", path)
	require.NoError(t, err)

	_, err = runCLI(t, "seed", "--db", path, "--force")
	require.NoError(t, err)
}

func TestSeedCmd_JSONOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "student.db")

	out, err := runCLI(t, "-o", "json", "seed", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "ok"`)
	assert.Contains(t, out, path)
}
