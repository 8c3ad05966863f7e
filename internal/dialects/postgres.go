package dialects

import (
	"fmt"
	"strings"
)

// PostgresDialect implements PostgreSQL-specific SQL dialect.
type PostgresDialect struct{}

func init() {
	RegisterDialect("postgres", &PostgresDialect{})
	RegisterDialect("postgresql", &PostgresDialect{})
}

// QuoteIdentifier quotes a PostgreSQL identifier using double quotes.
// Already-quoted identifiers are returned unchanged.
func (d *PostgresDialect) QuoteIdentifier(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Placeholder returns PostgreSQL placeholder format ($1, $2, etc.).
func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// UpsertSQL generates PostgreSQL UPSERT syntax using ON CONFLICT.
func (d *PostgresDialect) UpsertSQL(_ string, conflictColumns, updateCols []string) string {
	target := d.conflictTarget(conflictColumns)

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
	return fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
		target,
		d.buildUpdateSet(updateCols),
	)
}

// conflictTarget builds the quoted conflict column list.
func (d *PostgresDialect) conflictTarget(cols []string) string {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = d.QuoteIdentifier(col)
	}
	return strings.Join(quoted, ", ")
}

// buildUpdateSet builds the SET clause for DO UPDATE.
func (d *PostgresDialect) buildUpdateSet(cols []string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		quoted := d.QuoteIdentifier(col)
		parts[i] = fmt.Sprintf("%s = EXCLUDED.%s", quoted, quoted)
	}
	return strings.Join(parts, ", ")
}
