// Package dialects provides database-specific SQL dialect implementations for
// PostgreSQL, MySQL, and SQLite, handling identifier quoting, placeholders, and
// UPSERT conflict clauses.
package dialects

// Dialect defines database-specific behaviors.
type Dialect interface {
	// QuoteIdentifier quotes a single identifier segment. Quoting is
	// idempotent: an already-quoted segment is returned unchanged.
	QuoteIdentifier(string) string
	// Placeholder returns the positional placeholder for the given 1-based index.
	Placeholder(int) string
	// UpsertSQL returns the conflict clause to append to an INSERT statement.
	// Columns are passed unquoted; implementations quote them.
	// A nil updateCols means "do nothing on conflict". An empty return value
	// means the dialect cannot express the requested form.
	UpsertSQL(table string, conflictColumns, updateCols []string) string
}

var dialects = make(map[string]Dialect)

// RegisterDialect registers a database dialect by driver name.
func RegisterDialect(name string, d Dialect) {
	dialects[name] = d
}

// GetDialect retrieves a registered dialect by driver name.
func GetDialect(name string) (Dialect, bool) {
	d, ok := dialects[name]
	return d, ok
}
