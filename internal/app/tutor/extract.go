package tutor

import (
	"regexp"
	"strings"
)

const (
	sqlMarker = "[SQL_QUERY]"
	debugTag  = "[DEBUG]"
)

var statementPattern = regexp.MustCompile(`(?is)\b(SELECT|UPDATE|INSERT|DELETE)\s+.*?(?:\n\s*\n|\z)`)

// ExtractSQL returns the first statement after the [SQL_QUERY] marker with
// markdown fences removed and {user_id} bound. It reports false when the
// marker is missing or nothing after it looks like SQL.
func ExtractSQL(text string, userID int64) (string, bool) {
	idx := strings.Index(text, sqlMarker)
	if idx < 0 {
		return "", false
	}
	match := statementPattern.FindString(text[idx+len(sqlMarker):])
	if match == "" {
		return "", false
	}
	stmt := strings.NewReplacer("```sql", "", "```SQL", "", "```", "").Replace(match)
	if i := strings.Index(stmt, "\n\n"); i >= 0 {
		stmt = stmt[:i]
	}
	stmt = strings.TrimSpace(stmt)
	if stmt == "" {
		return "", false
	}
	return bindUser(stmt, userID), true
}
