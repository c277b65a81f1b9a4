package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"t2s/internal/config"
	"t2s/internal/db"
	"t2s/internal/engine"

	_ "github.com/mattn/go-sqlite3"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDeps(t *testing.T, cfg *config.Config) Deps {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "student.db")
	require.NoError(t, db.SeedStudentDB(dbPath, false))
	eng, err := engine.New("sqlite", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	writeDB, readDB := db.OpenTestAuditDB(t)

	return Deps{
		Cfg:     cfg,
		Engine:  eng,
		WriteDB: writeDB,
		ReadDB:  readDB,
		Logger:  discardLogger(),
	}
}

func ollamaConfig(baseURL string) *config.Config {
	return &config.Config{
		Provider:        config.ProviderOllama,
		OllamaBaseURL:   baseURL,
		OllamaModel:     "llama3.1:8b-instruct",
		Dialect:         "sqlite",
		HistoryLimit:    20,
		MaxInputChars:   500,
		DefaultRowLimit: 100,
		RateLimitMax:    15,
		RateLimitWindow: time.Minute,
		GenerateTimeout: 5 * time.Second,
		ExecTimeout:     5 * time.Second,
	}
}

func TestNew_WiresPipelineEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message":{"content":"SELECT NAME FROM STUDENT"},"done":true}`)
	}))
	defer srv.Close()

	a, err := New(context.Background(), testDeps(t, ollamaConfig(srv.URL)))
	require.NoError(t, err)
	require.NotNil(t, a.Services.Ask)
	require.NotNil(t, a.Services.Audit)
	require.NotNil(t, a.Sweeper)
	assert.Equal(t, "ollama", a.Gen.Name())
	assert.Equal(t, "llama3.1:8b-instruct", a.Gen.Model())

	result, err := a.Services.Ask.Ask(context.Background(), "wiring-test", "list all names")
	require.NoError(t, err)
	assert.Equal(t, "SELECT NAME FROM STUDENT LIMIT 100;", result.SafeSQL)
	assert.Equal(t, 6, result.RowCount)

	// The audit service must share the same store the pools back.
	summaries, err := a.Services.Audit.History(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, result.AuditID, summaries[0].ID)
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := ollamaConfig("http://localhost:11434")
	cfg.Provider = "mistral"

	_, err := New(context.Background(), testDeps(t, cfg))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNew_GroqWithoutKey(t *testing.T) {
	cfg := ollamaConfig("http://localhost:11434")
	cfg.Provider = config.ProviderGroq
	cfg.GroqAPIKey = ""

	_, err := New(context.Background(), testDeps(t, cfg))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GROQ_API_KEY")
}

func TestNew_ClosedAuditStore(t *testing.T) {
	deps := testDeps(t, ollamaConfig("http://localhost:11434"))
	require.NoError(t, deps.WriteDB.Close())

	_, err := New(context.Background(), deps)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit log database")
}
