package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"t2s/internal/db"
	"t2s/internal/db/repository"
	"t2s/internal/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	writeDB, readDB := db.OpenTestAuditDB(t)
	store := repository.NewQueryLogRepo(writeDB, readDB)
	return NewService(store, 20, discardLogger())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func attemptRecord(question string) *domain.AuditRecord {
	return &domain.AuditRecord{
		Provider: "ollama",
		Model:    "llama3.1:8b-instruct",
		DBPath:   "./data/student.db",
		Dialect:  "sqlite",
		Question: question,
		RawSQL:   "SELECT 1;",
	}
}

func TestRecord_ReturnsID(t *testing.T) {
	svc := newTestService(t)

	id := svc.Record(context.Background(), attemptRecord("how many students?"))
	require.Positive(t, id)

	rec, err := svc.Entry(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "how many students?", rec.Question)
}

// failingStore simulates a broken audit database.
type failingStore struct{}

func (failingStore) Append(context.Context, *domain.AuditRecord) (int64, error) {
	return 0, errors.New("disk full")
}

func (failingStore) ListRecent(context.Context, int) ([]domain.AuditSummary, error) {
	return nil, errors.New("disk full")
}

func (failingStore) Get(context.Context, int64) (*domain.AuditRecord, error) {
	return nil, errors.New("disk full")
}

func (failingStore) Clear(context.Context) error { return errors.New("disk full") }

func (failingStore) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, errors.New("disk full")
}

func TestRecord_SwallowsStoreFailure(t *testing.T) {
	svc := NewService(failingStore{}, 20, discardLogger())

	id := svc.Record(context.Background(), attemptRecord("q"))
	assert.Zero(t, id)
}

func TestHistory_TruncatesLongQuestions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	short := "top students"
	exact := strings.Repeat("x", 30)
	long := "what is the average mark per class and per section overall?"
	multibyte := strings.Repeat("数", 35)

	for _, q := range []string{short, exact, long, multibyte} {
		require.Positive(t, svc.Record(ctx, attemptRecord(q)))
	}

	summaries, err := svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 4)

	byQuestion := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		byQuestion[s.Question] = true
	}
	assert.True(t, byQuestion[short])
	assert.True(t, byQuestion[exact])
	assert.True(t, byQuestion[string([]rune(long)[:30])+"…"])
	assert.True(t, byQuestion[strings.Repeat("数", 30)+"…"])
}

func TestHistory_DefaultLimit(t *testing.T) {
	writeDB, readDB := db.OpenTestAuditDB(t)
	store := repository.NewQueryLogRepo(writeDB, readDB)
	svc := NewService(store, 2, discardLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.Positive(t, svc.Record(ctx, attemptRecord("q")))
	}

	summaries, err := svc.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}

func TestEntry_ReturnsFullQuestion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	long := strings.Repeat("why ", 20)
	id := svc.Record(ctx, attemptRecord(long))
	require.Positive(t, id)

	rec, err := svc.Entry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, long, rec.Question)
}

func TestEntry_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Entry(context.Background(), 9999)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestClear(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.Positive(t, svc.Record(ctx, attemptRecord("q")))
	require.NoError(t, svc.Clear(ctx))

	summaries, err := svc.History(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
