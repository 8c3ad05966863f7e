package dialects

import (
	"fmt"
	"strings"
)

// SQLiteDialect implements SQLite-specific SQL dialect.
type SQLiteDialect struct{}

func init() {
	RegisterDialect("sqlite", &SQLiteDialect{})
	RegisterDialect("sqlite3", &SQLiteDialect{})
}

// QuoteIdentifier quotes a SQLite identifier using double quotes.
// Already-quoted identifiers are returned unchanged.
func (d *SQLiteDialect) QuoteIdentifier(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Placeholder returns SQLite placeholder format (always "?").
func (d *SQLiteDialect) Placeholder(_ int) string {
	return "?"
}

// UpsertSQL generates SQLite UPSERT syntax using ON CONFLICT.
func (d *SQLiteDialect) UpsertSQL(_ string, conflictColumns, updateCols []string) string {
	quoted := make([]string, len(conflictColumns))
	for i, col := range conflictColumns {
		quoted[i] = d.QuoteIdentifier(col)
	}
	target := strings.Join(quoted, ", ")

	if updateCols == nil {
		// DO NOTHING case
		if target != "" {
			return fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", target)
		}
		return " ON CONFLICT DO NOTHING"
	}

	// DO UPDATE requires an explicit conflict target.
	if target == "" {
		return ""
	}
	updates := make([]string, len(updateCols))
	for i, col := range updateCols {
		q := d.QuoteIdentifier(col)
		updates[i] = fmt.Sprintf("%s = excluded.%s", q, q)
	}

	return fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
		target,
		strings.Join(updates, ", "))
}
