package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"t2s/internal/db"

	_ "github.com/mattn/go-sqlite3"
)

// captureStdout redirects os.Stdout to a pipe and returns a function
// that restores stdout and returns the captured output.
// Uses a goroutine to read concurrently, avoiding pipe buffer deadlocks.
func captureStdout(t *testing.T) func() string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	return func() string {
		_ = w.Close()
		<-done
		os.Stdout = old
		return buf.String()
	}
}

// emptyStdin swaps os.Stdin for a closed pipe so commands that probe for
// piped input see an immediate EOF. Restored via t.Cleanup.
func emptyStdin(t *testing.T) {
	t.Helper()
	old := os.Stdin
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_ = w.Close()
	os.Stdin = r
	t.Cleanup(func() { os.Stdin = old })
}

// seedEnv points the CLI at temp databases and a fake model server. Every
// command under test reloads config from these variables.
func seedEnv(t *testing.T, ollamaURL string) {
	t.Helper()
	dir := t.TempDir()

	studentDB := filepath.Join(dir, "student.db")
	require.NoError(t, db.SeedStudentDB(studentDB, false))

	t.Setenv("T2S_PROVIDER", "ollama")
	t.Setenv("T2S_DB_DIALECT", "sqlite")
	t.Setenv("T2S_DB_PATH", studentDB)
	t.Setenv("T2S_LOG_DB_PATH", filepath.Join(dir, "t2s_log.db"))
	t.Setenv("OLLAMA_BASE_URL", ollamaURL)
	t.Setenv("OLLAMA_MODEL", "llama3.1:8b-instruct")
}

// ollamaFake answers every chat call with the given SQL text, in streaming
// or single-shot shape depending on the request.
func ollamaFake(t *testing.T, sqlText string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Stream bool `json:"stream"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Stream {
			fmt.Fprintf(w, "{\"message\":{\"content\":%q},\"done\":false}\n", sqlText)
			fmt.Fprintln(w, `{"message":{"content":""},"done":true}`)
			return
		}
		fmt.Fprintf(w, "{\"message\":{\"content\":%q},\"done\":true}", sqlText)
	}))
	t.Cleanup(srv.Close)
	return srv
}
