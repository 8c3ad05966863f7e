package core

import "context"

// TableSchema describes a table as far as this layer needs it: column names
// and the primary key used as the default upsert conflict target.
type TableSchema struct {
	Name       string
	Columns    []string
	PrimaryKey []string
}

// SchemaProvider is the schema/metadata collaborator. Implementations may
// introspect the database, read migrations, or serve static definitions.
// A nil *TableSchema result means the table is unknown.
type SchemaProvider interface {
	TableSchema(ctx context.Context, table string) (*TableSchema, error)
}

// SchemaMap is a static in-memory SchemaProvider keyed by table name.
type SchemaMap map[string]*TableSchema

// TableSchema returns the registered schema for table, or nil.
func (m SchemaMap) TableSchema(_ context.Context, table string) (*TableSchema, error) {
	return m[table], nil
}
