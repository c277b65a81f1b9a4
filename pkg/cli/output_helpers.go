package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// getOutputFormat returns the effective output format from the root command's persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func validateOutputFormat(output string) error {
	if output != "" && output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
	}
	return nil
}

// printTable writes an aligned table with uppercased headers and two spaces
// between columns. An empty column set produces no output.
func printTable(w io.Writer, columns []string, rows [][]string) {
	if len(columns) == 0 {
		return
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = padRight(strings.ToUpper(col), widths[i])
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(header, "  "), " "))

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i := range columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = padRight(cell, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// printJSON writes v as indented JSON with a trailing newline.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// detailField is one key/value line of a detail view. Fields print in the
// order given, with keys padded so values align.
type detailField struct {
	Key   string
	Value string
}

func printDetail(w io.Writer, fields []detailField) {
	maxKey := 0
	for _, f := range fields {
		if len(f.Key) > maxKey {
			maxKey = len(f.Key)
		}
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%s:%s  %s\n", f.Key, strings.Repeat(" ", maxKey-len(f.Key)), f.Value)
	}
}

func stringifyRows(rows [][]any) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = stringifyCell(v)
		}
	}
	return out
}

func stringifyCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func int64PtrString(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

// confirmPrompt asks on stderr and reads one token from stdin. Anything but
// an explicit yes declines, including a closed or non-interactive stdin.
func confirmPrompt(question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", question)
	var answer string
	_, _ = fmt.Scanln(&answer)
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
