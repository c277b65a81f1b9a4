package sqlsafety

import (
	"errors"
	"strings"

	"t2s/internal/domain"
	"t2s/internal/sqlparse"
)

// Validate checks that the candidate is exactly one read-only query and
// returns the statement text with trailing semicolons removed. It is a
// pure gate: it accepts or rejects, and never rewrites what it accepts.
func Validate(candidate string) (string, error) {
	if strings.TrimSpace(candidate) == "" {
		return "", domain.ErrSafety(domain.SafetyEmptyInput, "empty SQL produced by provider")
	}

	stripped := stripTrailingSemicolons(candidate)

	// Primary multi-statement defense: a semicolon anywhere before the end
	// means a second statement, regardless of what the parser would make of
	// the text. This intentionally rejects semicolons inside string
	// literals too.
	if strings.ContainsRune(stripped, ';') {
		return "", domain.ErrSafety(domain.SafetyMultipleStatements, "only a single SQL statement is allowed")
	}

	stmt, err := sqlparse.ParseStatement(stripped)
	switch {
	case errors.Is(err, sqlparse.ErrEmpty):
		return "", domain.ErrSafety(domain.SafetyEmptyStatement, "no SQL statement found")
	case errors.Is(err, sqlparse.ErrMultipleStatements):
		return "", domain.ErrSafety(domain.SafetyMultipleStatements, "only a single SQL statement is allowed")
	case err != nil:
		return "", domain.ErrSafety(domain.SafetyParseError, "SQL parse error: %v", err)
	}

	if !isAcceptedQuery(stmt) {
		return "", domain.ErrSafety(domain.SafetyNotReadOnly, "only SELECT queries are allowed, got %s", sqlparse.StatementKind(stmt))
	}

	return stripped, nil
}

// isAcceptedQuery reports whether the statement has one of the accepted
// read-only shapes: a plain SELECT, a WITH whose final body is a SELECT or
// set combination, or a bare set combination. Everything else is rejected,
// including statements whose CTEs or subqueries modify data.
func isAcceptedQuery(stmt sqlparse.Stmt) bool {
	sel, ok := stmt.(*sqlparse.SelectStmt)
	if !ok || sel.Body == nil {
		return false
	}
	if !sqlparse.IsReadOnly(stmt) {
		return false
	}
	if sel.Body.Op != sqlparse.SetOpNone {
		return true
	}
	// A bare VALUES list or a parenthesized query without a set operation
	// is not an accepted shape.
	return sel.Body.Core != nil && len(sel.Body.Core.ValuesRows) == 0
}

// stripTrailingSemicolons removes trailing semicolons and the whitespace
// around them.
func stripTrailingSemicolons(s string) string {
	s = strings.TrimSpace(s)
	for strings.HasSuffix(s, ";") {
		s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	}
	return s
}
