package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"t2s/internal/domain"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the query log",
	}
	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryClearCmd())
	return cmd
}

type summaryOutput struct {
	ID        int64    `json:"id"`
	CreatedAt string   `json:"created_at"`
	Question  string   `json:"question"`
	Provider  string   `json:"provider"`
	Model     string   `json:"model"`
	RowCount  *int64   `json:"row_count"`
	ExecMS    *float64 `json:"exec_ms"`
	Error     *string  `json:"error"`
}

func newHistoryListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent query log entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openAuditRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			summaries, err := rt.audit.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				out := make([]summaryOutput, 0, len(summaries))
				for _, s := range summaries {
					out = append(out, summaryOutput{
						ID:        s.ID,
						CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
						Question:  s.Question,
						Provider:  s.Provider,
						Model:     s.Model,
						RowCount:  s.RowCount,
						ExecMS:    s.ExecMS,
						Error:     s.Error,
					})
				}
				return printJSON(os.Stdout, out)
			}

			columns := []string{"id", "asked", "question", "provider", "rows", "status"}
			rows := make([][]string, len(summaries))
			for i, s := range summaries {
				rows[i] = []string{
					strconv.FormatInt(s.ID, 10),
					s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					s.Question,
					s.Provider + "/" + s.Model,
					int64PtrString(s.RowCount),
					summaryStatus(s),
				}
			}
			printTable(os.Stdout, columns, rows)
			fmt.Fprintf(os.Stderr, "\n(%d entries)\n", len(summaries))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries to list (0 uses the configured default)")
	return cmd
}

func summaryStatus(s domain.AuditSummary) string {
	if s.Error != nil {
		return "failed"
	}
	return "ok"
}

type recordOutput struct {
	ID         int64    `json:"id"`
	CreatedAt  string   `json:"created_at"`
	Provider   string   `json:"provider"`
	Model      string   `json:"model"`
	DBPath     string   `json:"db_path"`
	Dialect    string   `json:"dialect"`
	Question   string   `json:"question"`
	RawSQL     string   `json:"raw_sql"`
	CleanedSQL string   `json:"cleaned_sql"`
	SafeSQL    string   `json:"safe_sql"`
	LimitAdded bool     `json:"limit_added"`
	RowCount   *int64   `json:"row_count"`
	ExecMS     *float64 `json:"exec_ms"`
	Error      *string  `json:"error"`
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one query log entry in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id must be an integer, got %q", args[0])
			}

			rt, err := openAuditRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			rec, err := rt.audit.Entry(cmd.Context(), id)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, recordOutput{
					ID:         rec.ID,
					CreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339),
					Provider:   rec.Provider,
					Model:      rec.Model,
					DBPath:     rec.DBPath,
					Dialect:    rec.Dialect,
					Question:   rec.Question,
					RawSQL:     rec.RawSQL,
					CleanedSQL: rec.CleanedSQL,
					SafeSQL:    rec.SafeSQL,
					LimitAdded: rec.LimitAdded,
					RowCount:   rec.RowCount,
					ExecMS:     rec.ExecMS,
					Error:      rec.Error,
				})
			}

			printDetail(os.Stdout, recordFields(rec))
			return nil
		},
	}
}

// recordFields lays out the detail view in pipeline order, skipping stages
// the attempt never reached.
func recordFields(rec *domain.AuditRecord) []detailField {
	fields := []detailField{
		{Key: "id", Value: strconv.FormatInt(rec.ID, 10)},
		{Key: "asked", Value: rec.CreatedAt.Local().Format("2006-01-02 15:04:05")},
		{Key: "provider", Value: rec.Provider + "/" + rec.Model},
		{Key: "database", Value: rec.DBPath + " (" + rec.Dialect + ")"},
		{Key: "question", Value: rec.Question},
	}
	if rec.RawSQL != "" {
		fields = append(fields, detailField{Key: "raw_sql", Value: rec.RawSQL})
	}
	if rec.CleanedSQL != "" {
		fields = append(fields, detailField{Key: "cleaned_sql", Value: rec.CleanedSQL})
	}
	if rec.SafeSQL != "" {
		fields = append(fields, detailField{Key: "safe_sql", Value: rec.SafeSQL})
		fields = append(fields, detailField{Key: "limit_added", Value: strconv.FormatBool(rec.LimitAdded)})
	}
	if rec.RowCount != nil {
		fields = append(fields, detailField{Key: "row_count", Value: strconv.FormatInt(*rec.RowCount, 10)})
	}
	if rec.ExecMS != nil {
		fields = append(fields, detailField{Key: "exec_ms", Value: strconv.FormatFloat(*rec.ExecMS, 'f', 1, 64)})
	}
	if rec.Error != nil {
		fields = append(fields, detailField{Key: "error", Value: *rec.Error})
	}
	return fields
}

func newHistoryClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every query log entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes && !confirmPrompt("Delete every query log entry?") {
				return nil
			}

			rt, err := openAuditRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.audit.Clear(cmd.Context()); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]string{"status": "ok"})
			}
			fmt.Fprintln(os.Stdout, "query log cleared")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
