package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/coregx/dbx/internal/dialects"
)

// Quoter renders identifiers and literal values for a single dialect.
// The dialect is fixed at construction; there is no shared mutable
// quoting configuration.
type Quoter struct {
	dialect dialects.Dialect
}

// NewQuoter creates a quoter bound to the given dialect.
func NewQuoter(d dialects.Dialect) *Quoter {
	return &Quoter{dialect: d}
}

// QuoteTableName quotes a table reference. Schema-prefixed names like
// "public.customer" have each segment quoted independently. Quoting is
// idempotent.
func (q *Quoter) QuoteTableName(name string) string {
	return q.quoteParts(name, false)
}

// QuoteColumnName quotes a column reference. Qualified names like "t.name"
// have each segment quoted independently; a "*" segment passes through
// unquoted. Quoting is idempotent.
func (q *Quoter) QuoteColumnName(name string) string {
	return q.quoteParts(name, true)
}

func (q *Quoter) quoteParts(name string, allowStar bool) string {
	if !strings.Contains(name, ".") {
		return q.quotePart(name, allowStar)
	}

	parts := strings.Split(name, ".")
	quoted := make([]string, len(parts))
	for i, part := range parts {
		quoted[i] = q.quotePart(part, allowStar)
	}
	return strings.Join(quoted, ".")
}

func (q *Quoter) quotePart(part string, allowStar bool) string {
	part = strings.TrimSpace(part)
	if allowStar && part == "*" {
		return part
	}
	return q.dialect.QuoteIdentifier(part)
}

// checkIdentifier rejects identifiers the dialect cannot escape.
func (q *Quoter) checkIdentifier(name string) error {
	if name == "" {
		return configf("empty identifier")
	}
	if strings.ContainsRune(name, 0) {
		return configf("identifier %q contains an unescapable NUL byte", name)
	}
	return nil
}

// QuoteValue renders a scalar value as a SQL literal. It is used only for
// raw-SQL reconstruction in diagnostics, never for execution; bound
// parameters always go through the driver.
func (q *Quoter) QuoteValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	case string:
		return quoteStringLiteral(val), nil
	case []byte:
		return fmt.Sprintf("X'%X'", val), nil
	case time.Time:
		return quoteStringLiteral(val.Format("2006-01-02 15:04:05")), nil
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprintf("%v", val), nil
	case fmt.Stringer:
		return quoteStringLiteral(val.String()), nil
	default:
		return "", invalidArgf("cannot render value of type %T as a SQL literal", v)
	}
}

func quoteStringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ExpandShorthand rewrites {{tableOrAlias}} into quoted table form and
// [[column]] / [[table.column]] into quoted column form. Shorthand inside
// string literals, quoted identifiers or comments is left untouched; an
// unterminated shorthand token passes through verbatim.
func (q *Quoter) ExpandShorthand(sql string) string {
	if !strings.Contains(sql, "{{") && !strings.Contains(sql, "[[") {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql))

	s := newSQLScanner(sql)
	last := 0
	for s.i < s.n {
		if s.skipNonSQL() {
			continue
		}
		c := sql[s.i]
		if c == '{' && s.peek(1) == '{' {
			if end := strings.Index(sql[s.i+2:], "}}"); end >= 0 {
				b.WriteString(sql[last:s.i])
				b.WriteString(q.QuoteTableName(sql[s.i+2 : s.i+2+end]))
				s.i += end + 4
				last = s.i
				continue
			}
		}
		if c == '[' && s.peek(1) == '[' {
			if end := strings.Index(sql[s.i+2:], "]]"); end >= 0 {
				b.WriteString(sql[last:s.i])
				b.WriteString(q.QuoteColumnName(sql[s.i+2 : s.i+2+end]))
				s.i += end + 4
				last = s.i
				continue
			}
		}
		s.i++
	}
	b.WriteString(sql[last:])
	return b.String()
}
