package executor

import (
	"strings"
	"unicode"
)

// RoutingMode selects how statements that touch system tables are detected.
type RoutingMode string

const (
	// RoutingSubstring matches the table names anywhere in the raw text,
	// string literals and comments included.
	RoutingSubstring RoutingMode = "substring"
	// RoutingTokens matches whole identifiers after removing string
	// literals and comments.
	RoutingTokens RoutingMode = "tokens"
)

// SystemTables live in the system database rather than a problem database.
var SystemTables = []string{"submissions", "exercises", "problems"}

var rowReturningKeywords = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"SHOW":     true,
	"DESCRIBE": true,
	"DESC":     true,
	"EXPLAIN":  true,
	"VALUES":   true,
	"PRAGMA":   true,
}

// schemaKeywords start statements that MySQL commits implicitly, even inside
// a transaction.
var schemaKeywords = map[string]bool{
	"CREATE":   true,
	"DROP":     true,
	"ALTER":    true,
	"TRUNCATE": true,
	"RENAME":   true,
	"GRANT":    true,
	"REVOKE":   true,
}

var mutationWords = map[string]bool{
	"insert":  true,
	"update":  true,
	"delete":  true,
	"merge":   true,
	"replace": true,
}

func firstKeyword(sqlText string) string {
	s := strings.TrimLeft(stripLeadingComments(sqlText), " \t\r\n(")
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	if end == -1 {
		end = len(s)
	}
	return strings.ToUpper(s[:end])
}

// IsRowReturning reports whether the statement produces a result set, judged
// by its first keyword. Everything else is executed as a mutation. A WITH
// statement may still modify data; see MayModify.
func IsRowReturning(sqlText string) bool {
	return rowReturningKeywords[firstKeyword(sqlText)]
}

// IsSchemaChange reports whether the statement is DDL or a privilege change.
func IsSchemaChange(sqlText string) bool {
	return schemaKeywords[firstKeyword(sqlText)]
}

// MayModify reports whether the statement can change data: anything that is
// not row-returning, and row-returning text that names a DML keyword outside
// literals and comments (WITH ... DELETE, data-modifying CTEs).
func MayModify(sqlText string) bool {
	if !IsRowReturning(sqlText) {
		return true
	}
	for _, word := range identifiers(stripLiteralsAndComments(sqlText)) {
		if mutationWords[word] {
			return true
		}
	}
	return false
}

// IsMultiStatement reports whether sqlText holds more than one statement.
// Semicolons inside literals and comments and trailing semicolons are
// ignored.
func IsMultiStatement(sqlText string) bool {
	s := strings.TrimRight(stripLiteralsAndComments(sqlText), " \t\r\n;")
	return strings.Contains(s, ";")
}

// ReferencesSystemTables reports whether sqlText should run against the
// system database.
func ReferencesSystemTables(sqlText string, mode RoutingMode) bool {
	if mode == RoutingSubstring {
		lower := strings.ToLower(sqlText)
		for _, t := range SystemTables {
			if strings.Contains(lower, t) {
				return true
			}
		}
		return false
	}

	for _, word := range identifiers(stripLiteralsAndComments(sqlText)) {
		for _, t := range SystemTables {
			if word == t {
				return true
			}
		}
	}
	return false
}

func stripLeadingComments(s string) string {
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		switch {
		case strings.HasPrefix(s, "--"), strings.HasPrefix(s, "#"):
			nl := strings.IndexByte(s, '\n')
			if nl == -1 {
				return ""
			}
			s = s[nl+1:]
		case strings.HasPrefix(s, "/*"):
			end := strings.Index(s[2:], "*/")
			if end == -1 {
				return ""
			}
			s = s[end+4:]
		default:
			return s
		}
	}
}

// stripLiteralsAndComments blanks out single-quoted strings and comments.
// Quoted identifiers ("x", `x`) keep their contents.
func stripLiteralsAndComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'':
			i++
			for i < len(s) {
				if s[i] == '\\' && i+1 < len(s) {
					i += 2
					continue
				}
				if s[i] == '\'' {
					if i+1 < len(s) && s[i+1] == '\'' {
						i += 2
						continue
					}
					break
				}
				i++
			}
			b.WriteByte(' ')
		case c == '-' && i+1 < len(s) && s[i+1] == '-', c == '#':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			b.WriteByte(' ')
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end == -1 {
				i = len(s)
			} else {
				i += end + 3
			}
			b.WriteByte(' ')
		case c == '"' || c == '`':
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func identifiers(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$')
	})
}
