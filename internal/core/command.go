package core

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/coregx/dbx/internal/tracer"
)

// Command represents one build-then-execute cycle: it accepts SQL text or a
// logical operation plus parameters, lowers them to dialect SQL, executes
// through database/sql, and translates native failures into structured
// errors. A Command is not safe for concurrent use and must not be reused
// while a prior execution is outstanding; it performs no internal locking
// and no retries. After execution the final SQL and parameters remain
// readable for introspection.
type Command struct {
	db        *DB
	text      string
	params    *paramSet
	posArgs   []any
	autoParam int
	err       error

	built      bool
	statements []statement
}

// statement is one executable unit of a command: the shorthand-expanded
// source (kept for raw-SQL reconstruction) and its dialect-ready form.
type statement struct {
	src   string
	sql   string
	slots []paramSlot
}

// Result summarizes a non-query execution.
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

func newCommand(db *DB, sqlText string, params ...Params) *Command {
	c := &Command{
		db:     db,
		text:   sqlText,
		params: newParamSet(),
	}
	for _, p := range params {
		c.params.merge(p)
	}
	return c
}

func (c *Command) quoter() *Quoter {
	return c.db.quoter
}

// fail records the first build error; it is surfaced at execution.
func (c *Command) fail(err error) *Command {
	if c.err == nil {
		c.err = err
	}
	return c
}

// setBuiltSQL installs generated SQL, discarding any previous lowering.
func (c *Command) setBuiltSQL(sqlText string) {
	c.text = sqlText
	c.built = false
	c.statements = nil
}

// SetSQL replaces the command's SQL text, clearing any previous build error.
// Bound parameters are kept.
func (c *Command) SetSQL(sqlText string) *Command {
	c.text = sqlText
	c.built = false
	c.statements = nil
	c.err = nil
	return c
}

// Bind binds a named parameter value. A leading ':' in the name is optional.
func (c *Command) Bind(name string, value any) *Command {
	c.params.bind(name, value)
	return c
}

// BindAll binds a map of named parameter values, later values overriding
// earlier ones on name collision.
func (c *Command) BindAll(params Params) *Command {
	c.params.merge(params)
	return c
}

// BindValues appends values for positional '?' markers, consumed in order.
func (c *Command) BindValues(values ...any) *Command {
	c.posArgs = append(c.posArgs, values...)
	return c
}

// build lowers the SQL text once: query-ref expansion, shorthand expansion,
// statement splitting, and per-statement placeholder rewriting.
func (c *Command) build() error {
	if c.built {
		return nil
	}

	expanded, err := expandQueryRefs(c.text, c.params)
	if err != nil {
		return err
	}
	expanded = c.quoter().ExpandShorthand(expanded)

	parts := splitStatements(expanded)
	c.statements = make([]statement, len(parts))
	for i, part := range parts {
		rewritten, slots := rewritePlaceholders(part, c.db.dialect)
		c.statements[i] = statement{src: part, sql: rewritten, slots: slots}
	}
	c.built = true
	return nil
}

// SQL returns the dialect-ready SQL the command will execute. Statements of
// a script are joined with ";\n". Returns "" when the command failed to build.
func (c *Command) SQL() string {
	if c.err != nil || c.build() != nil {
		return ""
	}
	parts := make([]string, len(c.statements))
	for i, st := range c.statements {
		parts[i] = st.sql
	}
	return strings.Join(parts, ";\n")
}

// RawSQL returns the SQL with parameter values interpolated as literals.
// This form is for diagnostics only and is never executed. Placeholders
// without a bound value remain in template form.
func (c *Command) RawSQL() string {
	if c.build() != nil {
		return c.text
	}
	parts := make([]string, len(c.statements))
	for i := range c.statements {
		parts[i] = c.rawStatement(i)
	}
	return strings.Join(parts, ";\n")
}

// rawStatement interpolates statement i, feeding positional markers from the
// same relative offsets execution would use.
func (c *Command) rawStatement(i int) string {
	offset := 0
	for _, st := range c.statements[:i] {
		for _, slot := range st.slots {
			if slot.name == "" {
				offset++
			}
		}
	}
	pos := &posQueue{values: c.posArgs, next: offset}
	return interpolate(c.statements[i].src, c.params, pos, c.quoter())
}

// Params returns a copy of the bound named parameters.
func (c *Command) Params() Params {
	return c.params.snapshot()
}

// Execute runs the command and returns the combined result. Multi-statement
// scripts run strictly in source order; a failure aborts the remaining
// statements with no rollback (transaction semantics belong to the caller).
func (c *Command) Execute(ctx context.Context) (Result, error) {
	res, rows, err := c.run(ctx, false)
	if rows != nil {
		_ = rows.Close()
	}
	return res, err
}

// QueryAll runs the command and returns all rows of the final statement.
func (c *Command) QueryAll(ctx context.Context) ([]NullStringMap, error) {
	_, rows, err := c.run(ctx, true)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, nil
	}
	defer func() { _ = rows.Close() }()
	return scanRowMaps(rows)
}

// QueryRow runs the command and returns the first row of the final
// statement, or ErrNoRows.
func (c *Command) QueryRow(ctx context.Context) (NullStringMap, error) {
	_, rows, err := c.run(ctx, true)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, ErrNoRows
	}
	defer func() { _ = rows.Close() }()
	return scanRowMap(rows)
}

// QueryScalar runs the command and returns the first column of the first
// row of the final statement, or ErrNoRows. []byte values are returned as
// strings.
func (c *Command) QueryScalar(ctx context.Context) (any, error) {
	_, rows, err := c.run(ctx, true)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, ErrNoRows
	}
	defer func() { _ = rows.Close() }()
	return scanScalar(rows)
}

// run executes all statements sequentially. When wantRows is set, the final
// statement runs as a query and its rows are returned unconsumed.
func (c *Command) run(ctx context.Context, wantRows bool) (Result, *sql.Rows, error) {
	if c.err != nil {
		return Result{}, nil, c.err
	}
	if err := c.build(); err != nil {
		return Result{}, nil, classify(err, c.text)
	}
	if len(c.statements) == 0 {
		return Result{}, nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	spanName := "dbx.command.execute"
	if wantRows {
		spanName = "dbx.command.query"
	}
	ctx, span := c.db.tracer.StartSpan(ctx, spanName)
	defer span.End()

	var total Result
	pos := &posQueue{values: c.posArgs}

	for i, st := range c.statements {
		args, err := resolveParams(st.slots, c.params, pos)
		if err != nil {
			return total, nil, classify(err, c.rawStatement(i))
		}

		last := i == len(c.statements)-1
		if wantRows && last {
			rows, err := c.queryStatement(ctx, span, st, args, i)
			if err != nil {
				return total, nil, err
			}
			return total, rows, nil
		}

		res, err := c.execStatement(ctx, span, st, args, i)
		if err != nil {
			return total, nil, err
		}
		total.RowsAffected += res.RowsAffected
		total.LastInsertID = res.LastInsertID
	}
	return total, nil, nil
}

// execStatement runs one non-query statement, with statement caching for
// single-statement commands.
func (c *Command) execStatement(ctx context.Context, span tracer.Span, st statement, args []any, i int) (Result, error) {
	start := time.Now()

	var res sql.Result
	var err error
	if len(c.statements) == 1 {
		var stmt *sql.Stmt
		stmt, err = c.prepare(ctx, st.sql)
		if err == nil {
			res, err = stmt.ExecContext(ctx, args...)
		}
	} else {
		res, err = c.db.sqlDB.ExecContext(ctx, st.sql, args...)
	}
	elapsed := time.Since(start)

	var out Result
	if res != nil {
		out.RowsAffected, _ = res.RowsAffected()
		out.LastInsertID, _ = res.LastInsertId()
	}
	c.observe(span, st, args, elapsed, out.RowsAffected, err)
	if err != nil {
		return out, classify(err, c.rawStatement(i))
	}
	return out, nil
}

// queryStatement runs one statement as a query and returns its rows.
func (c *Command) queryStatement(ctx context.Context, span tracer.Span, st statement, args []any, i int) (*sql.Rows, error) {
	start := time.Now()

	var rows *sql.Rows
	var err error
	if len(c.statements) == 1 {
		var stmt *sql.Stmt
		stmt, err = c.prepare(ctx, st.sql)
		if err == nil {
			rows, err = stmt.QueryContext(ctx, args...)
		}
	} else {
		rows, err = c.db.sqlDB.QueryContext(ctx, st.sql, args...)
	}
	elapsed := time.Since(start)

	c.observe(span, st, args, elapsed, 0, err)
	if err != nil {
		return nil, classify(err, c.rawStatement(i))
	}
	return rows, nil
}

// prepare returns a prepared statement from the LRU statement cache,
// preparing and caching it on a miss. Cached statements are owned by the
// cache and must not be closed by the caller.
func (c *Command) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	if stmt, ok := c.db.stmtCache.Get(query); ok {
		return stmt, nil
	}

	stmt, err := c.db.sqlDB.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	c.db.stmtCache.Set(query, stmt)
	return stmt, nil
}

// observe records one statement execution in the log and on the span.
func (c *Command) observe(span tracer.Span, st statement, args []any, elapsed time.Duration, rowsAffected int64, err error) {
	maskedParams := c.db.sanitizer.FormatParams(c.db.sanitizer.MaskParams(st.sql, args))

	if err != nil {
		c.db.logger.Error("statement execution failed",
			"sql", st.sql,
			"params", maskedParams,
			"duration_ms", elapsed.Milliseconds(),
			"database", c.db.driverName,
			"error", err,
		)
	} else {
		c.db.logger.Info("statement executed",
			"sql", st.sql,
			"params", maskedParams,
			"duration_ms", elapsed.Milliseconds(),
			"rows_affected", rowsAffected,
			"database", c.db.driverName,
		)
	}

	tracer.AddQueryAttributes(span, &tracer.QueryMetadata{
		SQL:          st.sql,
		Args:         args,
		Duration:     elapsed,
		RowsAffected: rowsAffected,
		Error:        err,
		Database:     c.db.driverName,
		Operation:    tracer.DetectOperation(st.sql),
	})
}
