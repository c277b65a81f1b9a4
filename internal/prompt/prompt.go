// Package prompt builds the system and user prompts sent to the
// generation backend.
package prompt

import (
	"fmt"
	"strings"

	"t2s/internal/domain"
)

// System is the fixed instruction block. The pipeline does not trust the
// model to follow it; the safety gate re-checks everything it demands.
const System = `You are an expert data analyst who writes correct SQL.

Hard rules:
- Output ONLY SQL (no markdown, no backticks, no explanations).
- Output exactly ONE statement.
- The statement MUST be a SELECT (read-only).
- The SQL MUST end with a semicolon ';'.
- Use only tables/columns that exist in the provided schema.
- Prefer simple SQL.
`

// FormatSchema renders one "- table(col1, col2)" line per table.
func FormatSchema(schema domain.Schema) string {
	lines := make([]string, 0, len(schema))
	for _, t := range schema {
		lines = append(lines, fmt.Sprintf("- %s(%s)", t.Name, strings.Join(t.Columns, ", ")))
	}
	return strings.Join(lines, "\n")
}

// BuildUser renders the per-question prompt.
func BuildUser(question string, schema domain.Schema, dialect string) string {
	return fmt.Sprintf(`Database dialect: %s

Schema:
%s

Task:
Write ONE SELECT query that answers:
%s

Return ONLY the SQL and end it with a semicolon.
`, dialect, FormatSchema(schema), question)
}
