package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"t2s/internal/domain"
)

const askClientKey = "cli"

func newAskCmd() *cobra.Command {
	var stream bool

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Turn a question into SQL and run it",
		Long: "Runs one question through the full pipeline: the model writes SQL, the " +
			"safety gate validates it, a row limit is enforced, and the query executes " +
			"against the configured database. The attempt is recorded in the query log " +
			"either way. With --stream the raw model output is printed as it arrives " +
			"and nothing is validated or executed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				question = questionFromStdin()
			}
			if question == "" {
				return fmt.Errorf("provide a question as arguments or via stdin pipe")
			}

			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if stream {
				return runAskStream(cmd.Context(), rt, question)
			}
			return runAsk(cmd, rt, question)
		},
	}
	cmd.Flags().BoolVar(&stream, "stream", false, "Print raw model output as it arrives without executing it")
	return cmd
}

// questionFromStdin reads a piped question; an interactive terminal yields
// nothing so the args-or-pipe error can fire.
func questionFromStdin() string {
	stat, err := os.Stdin.Stat()
	if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
		return ""
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

type askOutput struct {
	Question   string   `json:"question"`
	RawSQL     string   `json:"raw_sql"`
	CleanedSQL string   `json:"cleaned_sql"`
	SafeSQL    string   `json:"safe_sql"`
	LimitAdded bool     `json:"limit_added"`
	Columns    []string `json:"columns"`
	Rows       [][]any  `json:"rows"`
	RowCount   int      `json:"row_count"`
	ExecMS     float64  `json:"exec_ms"`
	AuditID    int64    `json:"audit_id"`
}

func runAsk(cmd *cobra.Command, rt *cliRuntime, question string) error {
	result, err := rt.app.Services.Ask.Ask(cmd.Context(), askClientKey, question)
	if err != nil {
		var execErr *domain.ExecutionError
		if result != nil && errors.As(err, &execErr) {
			fmt.Fprintf(os.Stderr, "attempted SQL: %s\n", result.SafeSQL)
		}
		return err
	}

	if getOutputFormat(cmd) == "json" {
		return printJSON(os.Stdout, askOutput{
			Question:   result.Question,
			RawSQL:     result.RawSQL,
			CleanedSQL: result.CleanedSQL,
			SafeSQL:    result.SafeSQL,
			LimitAdded: result.LimitAdded,
			Columns:    result.Columns,
			Rows:       result.Rows,
			RowCount:   result.RowCount,
			ExecMS:     result.ExecMS,
			AuditID:    result.AuditID,
		})
	}

	fmt.Fprintf(os.Stderr, "SQL: %s", result.SafeSQL)
	if result.LimitAdded {
		fmt.Fprint(os.Stderr, "  (LIMIT added)")
	}
	fmt.Fprintln(os.Stderr)

	printTable(os.Stdout, result.Columns, stringifyRows(result.Rows))
	fmt.Fprintf(os.Stderr, "\n(%d rows in %.1f ms, log entry #%d)\n", result.RowCount, result.ExecMS, result.AuditID)
	return nil
}

func runAskStream(ctx context.Context, rt *cliRuntime, question string) error {
	chunks, errc := rt.app.Services.Ask.AskStream(ctx, askClientKey, question)

	wrote := false
	for chunk := range chunks {
		fmt.Fprint(os.Stdout, chunk)
		wrote = true
	}
	if wrote {
		fmt.Fprintln(os.Stdout)
	}

	if err := <-errc; err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "(raw model output logged; nothing was executed)")
	return nil
}
