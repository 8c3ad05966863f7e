package dialects

import (
	"fmt"
	"strings"
)

// MySQLDialect implements MySQL-specific SQL dialect.
type MySQLDialect struct{}

// QuoteIdentifier quotes a MySQL identifier using backticks.
// Already-quoted identifiers are returned unchanged.
func (d *MySQLDialect) QuoteIdentifier(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, "`") && strings.HasSuffix(s, "`") {
		return s
	}
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// Placeholder returns MySQL placeholder format (always "?").
func (d *MySQLDialect) Placeholder(_ int) string {
	return "?"
}

// UpsertSQL generates MySQL UPSERT syntax using ON DUPLICATE KEY UPDATE.
// MySQL has no DO NOTHING form; when updateCols is nil the first conflict
// column is assigned to itself, which turns the conflicting insert into a
// no-op update. Without a known conflict column the form is not expressible
// and an empty clause is returned.
func (d *MySQLDialect) UpsertSQL(_ string, conflictColumns, updateCols []string) string {
	if updateCols == nil {
		if len(conflictColumns) == 0 {
			return ""
		}
		col := d.QuoteIdentifier(conflictColumns[0])
		return fmt.Sprintf(" ON DUPLICATE KEY UPDATE %s = %s", col, col)
	}

	updates := make([]string, len(updateCols))
	for i, col := range updateCols {
		quoted := d.QuoteIdentifier(col)
		updates[i] = fmt.Sprintf("%s = VALUES(%s)", quoted, quoted)
	}

	return fmt.Sprintf(" ON DUPLICATE KEY UPDATE %s",
		strings.Join(updates, ", "))
}

func init() {
	RegisterDialect("mysql", &MySQLDialect{})
}
