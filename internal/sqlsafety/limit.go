package sqlsafety

import (
	"fmt"
	"regexp"

	"t2s/internal/domain"
)

var (
	// danglingLimitRe matches a bare LIMIT keyword at the end of a
	// statement, the usual artifact of a truncated generation.
	danglingLimitRe = regexp.MustCompile(`(?i)\bLIMIT\s*$`)

	// trailingLimitRe matches a complete outermost LIMIT clause at the end
	// of a statement, with an optional OFFSET or comma form.
	trailingLimitRe = regexp.MustCompile(`(?i)\bLIMIT\s+\d+\s*(?:OFFSET\s+\d+\s*|,\s*\d+\s*)?$`)
)

// EnforceLimit guarantees that a validated statement carries an outermost
// LIMIT clause: it appends LIMIT defaultLimit when none is present and
// repairs a dangling LIMIT left by a truncated generation. An existing
// bound is preserved unchanged. The result always ends with exactly one
// semicolon, and applying EnforceLimit to its own output changes nothing.
func EnforceLimit(sql string, defaultLimit int) domain.SafeSQL {
	text := stripTrailingSemicolons(sql)

	switch {
	case danglingLimitRe.MatchString(text):
		text = danglingLimitRe.ReplaceAllString(text, fmt.Sprintf("LIMIT %d", defaultLimit))
		return domain.SafeSQL{SQL: text + ";", LimitAdded: true}
	case trailingLimitRe.MatchString(text):
		return domain.SafeSQL{SQL: text + ";", LimitAdded: false}
	default:
		return domain.SafeSQL{SQL: fmt.Sprintf("%s LIMIT %d;", text, defaultLimit), LimitAdded: true}
	}
}
