package domain

// SafeSQL is the output of the limit enforcer: a single read-only statement
// carrying an outermost LIMIT clause and a terminating semicolon.
type SafeSQL struct {
	SQL        string
	LimitAdded bool
}

// Table describes one user table in the target database.
type Table struct {
	Name    string
	Columns []string
}

// Schema is the ordered set of user tables exposed to the model.
// Order is stable so the prompt text is reproducible.
type Schema []Table

// QueryResult holds the column names and row tuples of an executed query.
type QueryResult struct {
	Columns []string
	Rows    [][]any
}

// AskResult is the success payload of one pipeline run.
type AskResult struct {
	Question   string
	RawSQL     string
	CleanedSQL string
	SafeSQL    string
	LimitAdded bool
	Columns    []string
	Rows       [][]any
	RowCount   int
	ExecMS     float64
	AuditID    int64
}
