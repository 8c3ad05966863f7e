package core

import (
	"database/sql"

	"github.com/coregx/dbx/internal/cache"
	"github.com/coregx/dbx/internal/dialects"
	"github.com/coregx/dbx/internal/logger"
	"github.com/coregx/dbx/internal/tracer"
)

// DB represents a database connection with its dialect, statement cache,
// logging and tracing. Connection pooling and transaction lifecycle stay
// with database/sql; this layer owns no shared mutable state beyond the
// statement cache.
type DB struct {
	sqlDB      *sql.DB
	driverName string
	dialect    dialects.Dialect
	quoter     *Quoter
	stmtCache  *cache.StmtCache
	logger     logger.Logger
	sanitizer  *logger.Sanitizer
	tracer     tracer.Tracer
	schema     SchemaProvider
}

// Option is a functional option for configuring DB.
type Option func(*DB)

// WithMaxOpenConns sets the maximum number of open connections.
func WithMaxOpenConns(n int) Option {
	return func(db *DB) {
		db.sqlDB.SetMaxOpenConns(n)
	}
}

// WithMaxIdleConns sets the maximum number of idle connections.
func WithMaxIdleConns(n int) Option {
	return func(db *DB) {
		db.sqlDB.SetMaxIdleConns(n)
	}
}

// WithStmtCacheCapacity sets the prepared statement cache capacity.
func WithStmtCacheCapacity(capacity int) Option {
	return func(db *DB) {
		db.stmtCache = cache.NewStmtCacheWithCapacity(capacity)
	}
}

// WithLogger sets the structured logger used for statement execution logs.
func WithLogger(l logger.Logger) Option {
	return func(db *DB) {
		db.logger = l
	}
}

// WithTracer sets the tracer used for statement execution spans.
func WithTracer(t tracer.Tracer) Option {
	return func(db *DB) {
		db.tracer = t
	}
}

// WithSchemaProvider sets the schema collaborator used to resolve default
// upsert conflict targets.
func WithSchemaProvider(p SchemaProvider) Option {
	return func(db *DB) {
		db.schema = p
	}
}

// Open creates a new DB instance for the given driver and DSN.
// An unregistered driver name is a configuration error.
func Open(driverName, dsn string, opts ...Option) (*DB, error) {
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, configf("open %s connection: %v", driverName, err)
	}
	return WrapDB(sqlDB, driverName, opts...)
}

// WrapDB wraps an externally-owned *sql.DB. The caller keeps ownership of
// the pool; Close only releases this layer's cached statements.
func WrapDB(sqlDB *sql.DB, driverName string, opts ...Option) (*DB, error) {
	dialect, ok := dialects.GetDialect(driverName)
	if !ok {
		return nil, configf("unsupported dialect: %s", driverName)
	}

	db := &DB{
		sqlDB:      sqlDB,
		driverName: driverName,
		dialect:    dialect,
		quoter:     NewQuoter(dialect),
		stmtCache:  cache.NewStmtCache(),
		logger:     &logger.NoopLogger{},
		sanitizer:  logger.NewSanitizer(nil),
		tracer:     &tracer.NoopTracer{},
	}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// Close releases cached statements and closes the underlying connection pool.
func (db *DB) Close() error {
	db.stmtCache.Clear()
	return db.sqlDB.Close()
}

// DriverName returns the driver name the DB was opened with.
func (db *DB) DriverName() string {
	return db.driverName
}

// Quoter returns the dialect-bound quoter.
func (db *DB) Quoter() *Quoter {
	return db.quoter
}

// QuoteSQL expands {{table}} and [[column]] shorthand into dialect quoting.
func (db *DB) QuoteSQL(sql string) string {
	return db.quoter.ExpandShorthand(sql)
}

// NewCommand creates a command for the given SQL text and optional named
// parameters.
func (db *DB) NewCommand(sqlText string, params ...Params) *Command {
	return newCommand(db, sqlText, params...)
}

// StmtCacheStats returns prepared statement cache statistics.
func (db *DB) StmtCacheStats() cache.Stats {
	return db.stmtCache.Stats()
}
