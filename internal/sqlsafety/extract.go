// Package sqlsafety implements the safety gate between model output and
// query execution: candidate extraction from decorated model responses,
// single-statement read-only validation, and result-size bounding.
package sqlsafety

import (
	"regexp"
	"strings"
)

// queryStartRe locates the first read-only query keyword in free text.
var queryStartRe = regexp.MustCompile(`(?i)\b(?:SELECT|WITH)\b`)

// Extract isolates a SQL-looking candidate from a raw model response. It
// strips code fences, a leading "sql:" or "query:" label, and any prose
// before the first SELECT or WITH keyword. It never truncates at
// semicolons: multi-statement detection is the validator's job, and
// truncating here would hide a violation instead of rejecting it.
func Extract(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the opening fence line (optionally tagged: ```sql) and cut
		// at the matching closing fence.
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = s[3:]
		}
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	} else {
		// Prose followed by a fenced block still ends in a closing fence.
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	s = strings.TrimSpace(s)

	for _, label := range []string{"sql:", "query:"} {
		if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
			s = strings.TrimSpace(s[len(label):])
			break
		}
	}

	// Recover SQL embedded after explanatory prose.
	if loc := queryStartRe.FindStringIndex(s); loc != nil && loc[0] > 0 {
		s = s[loc[0]:]
	}

	return strings.TrimSpace(s)
}
