package ask

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"t2s/internal/config"
	"t2s/internal/db"
	"t2s/internal/domain"
	"t2s/internal/engine"
	"t2s/internal/prompt"
	"t2s/internal/ratelimit"
	"t2s/internal/service/audit"
	"t2s/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(dbPath string) *config.Config {
	return &config.Config{
		Provider:        config.ProviderOllama,
		DBPath:          dbPath,
		Dialect:         config.DialectSQLite,
		MaxInputChars:   500,
		DefaultRowLimit: 100,
		RateLimitMax:    15,
		RateLimitWindow: time.Minute,
		GenerateTimeout: 5 * time.Second,
		ExecTimeout:     5 * time.Second,
	}
}

// newTestService wires a Service over a freshly seeded STUDENT database.
func newTestService(t *testing.T, gen domain.Generator) (*Service, *testutil.MockAuditStore) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "student.db")
	require.NoError(t, db.SeedStudentDB(dbPath, false))
	eng, err := engine.New("sqlite", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	store := &testutil.MockAuditStore{}
	auditSvc := audit.NewService(store, 20, discardLogger())
	return NewService(testConfig(dbPath), gen, eng, ratelimit.New(), auditSvc, discardLogger()), store
}

// newMockService wires a Service over a MockEngine for call assertions.
func newMockService(gen domain.Generator, eng domain.Engine) (*Service, *testutil.MockAuditStore) {
	store := &testutil.MockAuditStore{}
	auditSvc := audit.NewService(store, 20, discardLogger())
	return NewService(testConfig("./data/student.db"), gen, eng, ratelimit.New(), auditSvc, discardLogger()), store
}

func studentSchemaEngine() *testutil.MockEngine {
	return &testutil.MockEngine{
		SchemaVal: domain.Schema{{Name: "STUDENT", Columns: []string{"NAME", "CLASS", "SECTION", "MARKS"}}},
	}
}

func TestAsk_EndToEnd(t *testing.T) {
	gen := &testutil.MockGenerator{
		Response: "```sql\nSELECT * FROM STUDENT WHERE CLASS = '10' AND MARKS > 80\n```",
	}
	svc, store := newTestService(t, gen)

	result, err := svc.Ask(context.Background(), "client-a", "Show all students in class 10 with marks above 80")
	require.NoError(t, err)

	assert.Equal(t, gen.Response, result.RawSQL)
	assert.Equal(t, "SELECT * FROM STUDENT WHERE CLASS = '10' AND MARKS > 80", result.CleanedSQL)
	assert.Equal(t, "SELECT * FROM STUDENT WHERE CLASS = '10' AND MARKS > 80 LIMIT 100;", result.SafeSQL)
	assert.True(t, result.LimitAdded)
	assert.Equal(t, []string{"NAME", "CLASS", "SECTION", "MARKS"}, result.Columns)

	require.Equal(t, 3, result.RowCount)
	names := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		names = append(names, row[0].(string))
	}
	assert.ElementsMatch(t, []string{"Rifa", "Nabil", "Mim"}, names)
	assert.Positive(t, result.AuditID)

	// The prompt pair the backend saw.
	call := gen.LastCall()
	assert.Equal(t, prompt.System, call.SystemPrompt)
	assert.Contains(t, call.UserPrompt, "- STUDENT(NAME, CLASS, SECTION, MARKS)")
	assert.Contains(t, call.UserPrompt, "Show all students in class 10 with marks above 80")

	// Exactly one audit record, fully populated.
	require.Len(t, store.Records, 1)
	rec := store.LastRecord()
	assert.Equal(t, result.SafeSQL, rec.SafeSQL)
	assert.True(t, rec.LimitAdded)
	require.NotNil(t, rec.RowCount)
	assert.EqualValues(t, 3, *rec.RowCount)
	require.NotNil(t, rec.ExecMS)
	assert.Nil(t, rec.Error)
	assert.Equal(t, "sqlite", rec.Dialect)
	assert.Equal(t, "mock", rec.Provider)
}

func TestAsk_PreservesExistingLimit(t *testing.T) {
	gen := &testutil.MockGenerator{Response: "SELECT * FROM STUDENT LIMIT 10"}
	svc, _ := newTestService(t, gen)

	result, err := svc.Ask(context.Background(), "client-a", "show students")
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM STUDENT LIMIT 10;", result.SafeSQL)
	assert.False(t, result.LimitAdded)
	assert.Equal(t, 6, result.RowCount)
}

func TestAsk_MultipleStatementsRejected(t *testing.T) {
	gen := &testutil.MockGenerator{Response: "SELECT 1; DROP TABLE STUDENT"}
	svc, store := newTestService(t, gen)

	result, err := svc.Ask(context.Background(), "client-a", "count students")
	assert.Nil(t, result)

	var safetyErr *domain.SafetyError
	require.ErrorAs(t, err, &safetyErr)
	assert.Equal(t, domain.SafetyMultipleStatements, safetyErr.Reason)

	require.Len(t, store.Records, 1)
	rec := store.LastRecord()
	assert.Equal(t, "SELECT 1; DROP TABLE STUDENT", rec.RawSQL)
	assert.Empty(t, rec.SafeSQL)
	assert.Nil(t, rec.RowCount)
	require.NotNil(t, rec.Error)
	assert.Contains(t, *rec.Error, "single SQL statement")

	// Nothing was executed: the table is intact.
	gen.Response = "SELECT COUNT(*) AS n FROM STUDENT"
	followup, err := svc.Ask(context.Background(), "client-a", "count students")
	require.NoError(t, err)
	assert.EqualValues(t, 6, followup.Rows[0][0])
}

func TestAsk_NotReadOnlyRejected(t *testing.T) {
	gen := &testutil.MockGenerator{Response: "DELETE FROM STUDENT"}
	svc, store := newTestService(t, gen)

	_, err := svc.Ask(context.Background(), "client-a", "remove everyone")

	var safetyErr *domain.SafetyError
	require.ErrorAs(t, err, &safetyErr)
	assert.Equal(t, domain.SafetyNotReadOnly, safetyErr.Reason)

	require.Len(t, store.Records, 1)
	rec := store.LastRecord()
	assert.Equal(t, "DELETE FROM STUDENT", rec.CleanedSQL)
	assert.Empty(t, rec.SafeSQL)
}

func TestAsk_EmptyGenerationRejected(t *testing.T) {
	gen := &testutil.MockGenerator{Response: "   "}
	svc, store := newTestService(t, gen)

	_, err := svc.Ask(context.Background(), "client-a", "anything")

	var safetyErr *domain.SafetyError
	require.ErrorAs(t, err, &safetyErr)
	assert.Equal(t, domain.SafetyEmptyInput, safetyErr.Reason)
	require.Len(t, store.Records, 1)
}

func TestAsk_InputTooLong(t *testing.T) {
	gen := &testutil.MockGenerator{Response: "SELECT 1"}
	svc, store := newTestService(t, gen)

	_, err := svc.Ask(context.Background(), "client-a", strings.Repeat("x", 501))

	var tooLong *domain.InputTooLongError
	require.ErrorAs(t, err, &tooLong)
	assert.Equal(t, 501, tooLong.Length)
	assert.Equal(t, 500, tooLong.Max)

	// No backend call was made, but the attempt is still logged.
	assert.Empty(t, gen.Calls)
	require.Len(t, store.Records, 1)
	require.NotNil(t, store.LastRecord().Error)
}

func TestAsk_RateLimited(t *testing.T) {
	gen := &testutil.MockGenerator{Response: "SELECT 1"}
	svc, store := newTestService(t, gen)
	svc.cfg.RateLimitMax = 2

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := svc.Ask(ctx, "client-a", "q")
		require.NoError(t, err)
	}

	_, err := svc.Ask(ctx, "client-a", "q")
	var limited *domain.RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Positive(t, limited.RetryAfter)
	assert.LessOrEqual(t, limited.RetryAfter, time.Minute)

	// Denied attempt made no backend call and still logged one record.
	assert.Len(t, gen.Calls, 2)
	assert.Len(t, store.Records, 3)

	// Another client is unaffected.
	_, err = svc.Ask(ctx, "client-b", "q")
	require.NoError(t, err)
}

func TestAsk_GenerationError(t *testing.T) {
	gen := &testutil.MockGenerator{Err: domain.ErrGeneration("mock", "connection refused")}
	svc, store := newTestService(t, gen)

	_, err := svc.Ask(context.Background(), "client-a", "q")

	var genErr *domain.GenerationError
	require.ErrorAs(t, err, &genErr)
	require.Len(t, store.Records, 1)
	rec := store.LastRecord()
	assert.Empty(t, rec.RawSQL)
	require.NotNil(t, rec.Error)
	assert.Contains(t, *rec.Error, "connection refused")
}

func TestAsk_GenerationTimeout(t *testing.T) {
	gen := &testutil.MockGenerator{
		GenerateFn: func(ctx context.Context, _, _ string) (string, error) {
			<-ctx.Done()
			return "", domain.ErrGeneration("mock", "%v", ctx.Err())
		},
	}
	svc, store := newMockService(gen, studentSchemaEngine())
	svc.cfg.GenerateTimeout = 20 * time.Millisecond

	_, err := svc.Ask(context.Background(), "client-a", "q")

	var genErr *domain.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Message, "deadline")
	require.Len(t, store.Records, 1)
}

func TestAsk_ExecutionErrorReturnsStages(t *testing.T) {
	gen := &testutil.MockGenerator{Response: "SELECT * FROM missing_table"}
	svc, store := newTestService(t, gen)

	result, err := svc.Ask(context.Background(), "client-a", "q")

	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Message, "missing_table")

	// The failed attempt still surfaces the SQL stages it ran.
	require.NotNil(t, result)
	assert.Equal(t, "SELECT * FROM missing_table", result.CleanedSQL)
	assert.Equal(t, "SELECT * FROM missing_table LIMIT 100;", result.SafeSQL)
	assert.True(t, result.LimitAdded)
	assert.Positive(t, result.AuditID)
	assert.Empty(t, result.Rows)

	require.Len(t, store.Records, 1)
	rec := store.LastRecord()
	assert.Equal(t, result.SafeSQL, rec.SafeSQL)
	assert.Nil(t, rec.RowCount)
	require.NotNil(t, rec.Error)
}

func TestAsk_ExecutionTimeout(t *testing.T) {
	eng := studentSchemaEngine()
	eng.QueryFn = func(ctx context.Context, _ string) (*domain.QueryResult, error) {
		<-ctx.Done()
		return nil, domain.ErrExecution("query timed out: %v", ctx.Err())
	}
	gen := &testutil.MockGenerator{Response: "SELECT * FROM STUDENT"}
	svc, store := newMockService(gen, eng)
	svc.cfg.ExecTimeout = 20 * time.Millisecond

	_, err := svc.Ask(context.Background(), "client-a", "q")

	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Message, "timed out")
	require.Len(t, store.Records, 1)
}

func TestAsk_SchemaFailureLogged(t *testing.T) {
	eng := studentSchemaEngine()
	eng.SchemaFn = func(context.Context) (domain.Schema, error) {
		return nil, domain.ErrExecution("read schema: disk I/O error")
	}
	gen := &testutil.MockGenerator{Response: "SELECT 1"}
	svc, store := newMockService(gen, eng)

	_, err := svc.Ask(context.Background(), "client-a", "q")

	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Empty(t, gen.Calls)
	require.Len(t, store.Records, 1)
}

func TestAskStream_ForwardsAndLogs(t *testing.T) {
	eng := studentSchemaEngine()
	gen := &testutil.MockGenerator{StreamChunks: []string{"SELECT ", "* FROM STUDENT", ";"}}
	svc, store := newMockService(gen, eng)

	chunks, errc := svc.AskStream(context.Background(), "client-a", "show students")

	var got []string
	for chunk := range chunks {
		got = append(got, chunk)
	}
	require.NoError(t, <-errc)
	assert.Equal(t, []string{"SELECT ", "* FROM STUDENT", ";"}, got)

	// Logged with the concatenated text; never validated or executed.
	require.Len(t, store.Records, 1)
	rec := store.LastRecord()
	assert.Equal(t, "SELECT * FROM STUDENT;", rec.RawSQL)
	assert.Equal(t, "SELECT * FROM STUDENT;", rec.CleanedSQL)
	assert.Empty(t, rec.SafeSQL)
	assert.Nil(t, rec.RowCount)
	assert.Nil(t, rec.ExecMS)
	assert.Nil(t, rec.Error)
	assert.Empty(t, eng.Queries)
}

func TestAskStream_ExtractsCleanedSQL(t *testing.T) {
	gen := &testutil.MockGenerator{StreamChunks: []string{"```sql\n", "SELECT 1;", "\n```"}}
	svc, store := newMockService(gen, studentSchemaEngine())

	chunks, errc := svc.AskStream(context.Background(), "client-a", "q")
	for range chunks {
	}
	require.NoError(t, <-errc)

	rec := store.LastRecord()
	require.NotNil(t, rec)
	assert.Equal(t, "```sql\nSELECT 1;\n```", rec.RawSQL)
	assert.Equal(t, "SELECT 1;", rec.CleanedSQL)
}

func TestAskStream_RateLimited(t *testing.T) {
	gen := &testutil.MockGenerator{StreamChunks: []string{"SELECT 1;"}}
	svc, store := newMockService(gen, studentSchemaEngine())
	svc.cfg.RateLimitMax = 1

	chunks, errc := svc.AskStream(context.Background(), "client-a", "q")
	for range chunks {
	}
	require.NoError(t, <-errc)

	chunks, errc = svc.AskStream(context.Background(), "client-a", "q")
	var got []string
	for chunk := range chunks {
		got = append(got, chunk)
	}
	err := <-errc

	var limited *domain.RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Empty(t, got)
	assert.Len(t, store.Records, 2)
}

func TestAskStream_ProviderFailureLogsPartial(t *testing.T) {
	gen := &testutil.MockGenerator{
		StreamChunks: []string{"SELECT na"},
		StreamErr:    domain.ErrGeneration("mock", "stream interrupted: connection reset"),
	}
	svc, store := newMockService(gen, studentSchemaEngine())

	chunks, errc := svc.AskStream(context.Background(), "client-a", "q")
	var got []string
	for chunk := range chunks {
		got = append(got, chunk)
	}
	err := <-errc

	var genErr *domain.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, []string{"SELECT na"}, got)

	rec := store.LastRecord()
	require.NotNil(t, rec)
	assert.Equal(t, "SELECT na", rec.RawSQL)
	require.NotNil(t, rec.Error)
	assert.Contains(t, *rec.Error, "connection reset")
}

func TestAskStream_CallerCancelLogsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen := &testutil.MockGenerator{StreamChunks: []string{"SELECT ", "never delivered"}}
	svc, store := newMockService(gen, studentSchemaEngine())

	chunks, errc := svc.AskStream(ctx, "client-a", "q")

	first := <-chunks
	assert.Equal(t, "SELECT ", first)
	cancel()

	for range chunks {
	}
	<-errc

	rec := store.LastRecord()
	require.NotNil(t, rec)
	assert.Contains(t, rec.RawSQL, "SELECT ")
	require.NotNil(t, rec.Error)
}
