// Package dbx provides a dialect-aware SQL command layer for PostgreSQL,
// MySQL, and SQLite on top of database/sql. It builds parameter-safe SQL
// ({{table}}/[[column]] shorthand, :name placeholders, batch inserts,
// upserts), splits multi-statement scripts, and translates native driver
// failures into a structured error taxonomy, with prepared statement caching
// and OpenTelemetry tracing out of the box.
package dbx

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/coregx/dbx/internal/core"
	"github.com/coregx/dbx/internal/logger"
	"github.com/coregx/dbx/internal/tracer"
)

type (
	// DB represents a database connection with its dialect, statement cache,
	// logging and tracing.
	DB = core.DB
	// Option is a functional option for configuring DB.
	Option = core.Option
	// Command represents one build-then-execute cycle.
	Command = core.Command
	// Result summarizes a non-query execution.
	Result = core.Result
	// Params represents named parameter values for statement binding.
	Params = core.Params
	// Raw wraps a SQL fragment inlined verbatim, bypassing quoting and
	// parameterization.
	Raw = core.Raw
	// Expr is a prebuilt query fragment with its own named parameters.
	Expr = core.Expr
	// UpsertSpec controls the conflict arm of an upsert.
	UpsertSpec = core.UpsertSpec
	// Quoter renders identifiers and literal values for a single dialect.
	Quoter = core.Quoter
	// NullStringMap represents a map of nullable string values scanned from
	// a database row.
	NullStringMap = core.NullStringMap
	// TableSchema describes a table's columns and primary key.
	TableSchema = core.TableSchema
	// SchemaProvider is the schema/metadata collaborator.
	SchemaProvider = core.SchemaProvider
	// SchemaMap is a static in-memory SchemaProvider.
	SchemaMap = core.SchemaMap
	// Error is a structured command failure.
	Error = core.Error
	// ErrorKind classifies a structured Error.
	ErrorKind = core.ErrorKind
)

// Error kinds.
const (
	KindInvalidArgument = core.KindInvalidArgument
	KindConfiguration   = core.KindConfiguration
	KindIntegrity       = core.KindIntegrity
	KindExecution       = core.KindExecution
	KindNotSupported    = core.KindNotSupported
)

// Re-export core functions.
var (
	Open   = core.Open
	WrapDB = core.WrapDB

	WithMaxOpenConns      = core.WithMaxOpenConns
	WithMaxIdleConns      = core.WithMaxIdleConns
	WithStmtCacheCapacity = core.WithStmtCacheCapacity
	WithSchemaProvider    = core.WithSchemaProvider

	NewExpr = core.NewExpr

	IsInvalidArgument = core.IsInvalidArgument
	IsConfiguration   = core.IsConfiguration
	IsIntegrity       = core.IsIntegrity
	IsExecution       = core.IsExecution
	IsNotSupported    = core.IsNotSupported
)

// ErrNoRows is returned when a query that expects rows returns no results.
var ErrNoRows = core.ErrNoRows

// WithSlogLogger configures statement execution logging through a
// log/slog logger.
func WithSlogLogger(l *slog.Logger) Option {
	return core.WithLogger(logger.NewSlogAdapter(l))
}

// WithOtelTracer configures statement execution tracing through an
// OpenTelemetry tracer.
func WithOtelTracer(t trace.Tracer) Option {
	return core.WithTracer(tracer.NewOtelTracer(t))
}
