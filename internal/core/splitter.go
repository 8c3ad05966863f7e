package core

import "strings"

// splitStatements splits a script into its semicolon-terminated statements,
// in source order. Semicolons inside string literals, quoted identifiers and
// comments are not separators. Whitespace-only segments are dropped; an
// empty input yields an empty slice.
func splitStatements(sql string) []string {
	var out []string

	s := newSQLScanner(sql)
	start := 0
	for s.i < s.n {
		if s.skipNonSQL() {
			continue
		}
		if s.src[s.i] == ';' {
			out = appendStatement(out, sql[start:s.i])
			s.i++
			start = s.i
			continue
		}
		s.i++
	}
	return appendStatement(out, sql[start:])
}

func appendStatement(out []string, stmt string) []string {
	if trimmed := strings.TrimSpace(stmt); trimmed != "" {
		out = append(out, trimmed)
	}
	return out
}
