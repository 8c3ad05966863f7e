package core

import (
	"context"
	"fmt"
	"strings"
)

// Raw wraps a SQL fragment that is inlined verbatim after {{table}} and
// [[column]] shorthand expansion. It bypasses quoting and parameterization;
// use it for values that are really column or table references, where
// encoding them as string literals would change their meaning.
type Raw string

// Expr is a prebuilt query fragment with its own named parameters.
// Binding an *Expr as a parameter value inlines its SQL as a parenthesized
// sub-expression and merges its parameters into the surrounding statement.
type Expr struct {
	SQL    string
	Params Params
}

// NewExpr creates a query expression from SQL text and optional named parameters.
func NewExpr(sql string, params ...Params) *Expr {
	e := &Expr{SQL: sql, Params: Params{}}
	for _, p := range params {
		for k, v := range p {
			e.Params[k] = v
		}
	}
	return e
}

// UpsertSpec controls the conflict arm of an upsert.
type UpsertSpec struct {
	// ConflictColumns are the constraint columns that define a conflict.
	// When empty, the table's primary key from the schema provider is used.
	ConflictColumns []string
	// UpdateColumns are the columns rewritten on conflict. When empty and
	// DoNothing is false, every non-conflict column is updated.
	UpdateColumns []string
	// DoNothing ignores conflicting rows instead of updating them.
	DoNothing bool
}

// nextAutoParam returns the next generated parameter name. Generated names
// are deterministic and collision-free within a command.
func (c *Command) nextAutoParam() string {
	name := fmt.Sprintf("qp%d", c.autoParam)
	c.autoParam++
	return name
}

// Insert builds an INSERT statement. Data is either a column-to-value map or
// an *Expr select query (insert-from-select). Map values of type Raw are
// inlined verbatim; everything else is bound as a parameter. Columns are
// emitted in sorted order for deterministic SQL generation.
func (c *Command) Insert(table string, data any) *Command {
	if err := c.quoter().checkIdentifier(table); err != nil {
		return c.fail(err)
	}

	switch d := data.(type) {
	case Params:
		return c.insertMap(table, d)
	case map[string]any:
		return c.insertMap(table, d)
	case *Expr:
		return c.insertFromSelect(table, d)
	default:
		return c.fail(invalidArgf("Insert expects a column-value map or a select query expression, got %T", data))
	}
}

func (c *Command) insertMap(table string, data Params) *Command {
	keys := sortedKeys(data)
	if len(keys) == 0 {
		return c.fail(invalidArgf("Insert requires at least one column"))
	}

	quoter := c.quoter()
	columns := make([]string, len(keys))
	values := make([]string, len(keys))
	for i, col := range keys {
		if err := quoter.checkIdentifier(col); err != nil {
			return c.fail(err)
		}
		columns[i] = quoter.QuoteColumnName(col)
		cell, err := c.valueToken(data[col])
		if err != nil {
			return c.fail(err)
		}
		values[i] = cell
	}

	c.setBuiltSQL("INSERT INTO " + quoter.QuoteTableName(table) +
		" (" + strings.Join(columns, ", ") + ")" +
		" VALUES (" + strings.Join(values, ", ") + ")")
	return c
}

// insertFromSelect splices a prebuilt select query into an INSERT statement.
// Positional parameters cannot be merged into the surrounding statement's
// own positional sequence, so only enumerated (named) parameters are accepted.
func (c *Command) insertFromSelect(table string, expr *Expr) *Command {
	_, positional := containsPlaceholders(expr.SQL)
	if positional {
		return c.fail(invalidArgf("Expected select query object with enumerated (named) parameters"))
	}

	c.params.merge(expr.Params)
	c.setBuiltSQL("INSERT INTO " + c.quoter().QuoteTableName(table) + " " + strings.TrimSpace(expr.SQL))
	return c
}

// BatchInsert builds a multi-row INSERT statement:
//
//	INSERT INTO table (cols) VALUES (...), (...), ...
//
// Scalar cells become parameters named deterministically by row-major
// position; Raw cells are inlined and excluded from binding. Every row must
// match the column list arity. Zero rows build an empty statement, which
// executes as a no-op.
func (c *Command) BatchInsert(table string, columns []string, rows [][]any) *Command {
	quoter := c.quoter()
	if err := quoter.checkIdentifier(table); err != nil {
		return c.fail(err)
	}
	if len(columns) == 0 {
		return c.fail(invalidArgf("BatchInsert requires at least one column"))
	}

	quotedColumns := make([]string, len(columns))
	for i, col := range columns {
		if err := quoter.checkIdentifier(col); err != nil {
			return c.fail(err)
		}
		quotedColumns[i] = quoter.QuoteColumnName(col)
	}

	if len(rows) == 0 {
		c.setBuiltSQL("")
		return c
	}

	valueClauses := make([]string, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return c.fail(invalidArgf("BatchInsert row %d has %d values, expected %d", i, len(row), len(columns)))
		}
		cells := make([]string, len(row))
		for j, value := range row {
			cell, err := c.valueToken(value)
			if err != nil {
				return c.fail(err)
			}
			cells[j] = cell
		}
		valueClauses[i] = "(" + strings.Join(cells, ", ") + ")"
	}

	c.setBuiltSQL("INSERT INTO " + quoter.QuoteTableName(table) +
		" (" + strings.Join(quotedColumns, ", ") + ") VALUES " +
		strings.Join(valueClauses, ", "))
	return c
}

// valueToken renders one insert cell: Raw fragments are expanded and inlined,
// *Expr values are bound and later spliced as sub-expressions, scalars are
// bound as generated parameters.
func (c *Command) valueToken(value any) (string, error) {
	if raw, ok := value.(Raw); ok {
		expanded := c.quoter().ExpandShorthand(string(raw))
		named, positional := containsPlaceholders(expanded)
		if named || positional {
			return "", notSupportedf("raw SQL value %q contains parameter placeholders", string(raw))
		}
		return expanded, nil
	}

	name := c.nextAutoParam()
	c.params.bind(name, value)
	return ":" + name, nil
}

// Upsert builds an INSERT statement with a dialect conflict clause. The
// update arm rebinds insert values through the dialect's excluded-row syntax
// rather than re-parameterizing, so the same logical values serve both arms.
func (c *Command) Upsert(table string, data Params, spec UpsertSpec) *Command {
	quoter := c.quoter()
	if err := quoter.checkIdentifier(table); err != nil {
		return c.fail(err)
	}
	keys := sortedKeys(data)
	if len(keys) == 0 {
		return c.fail(invalidArgf("Upsert requires at least one column"))
	}

	columns := make([]string, len(keys))
	values := make([]string, len(keys))
	for i, col := range keys {
		if err := quoter.checkIdentifier(col); err != nil {
			return c.fail(err)
		}
		columns[i] = quoter.QuoteColumnName(col)
		cell, err := c.valueToken(data[col])
		if err != nil {
			return c.fail(err)
		}
		values[i] = cell
	}

	conflictColumns, err := c.conflictTarget(table, spec.ConflictColumns)
	if err != nil {
		return c.fail(err)
	}

	var updateCols []string
	if !spec.DoNothing {
		updateCols = spec.UpdateColumns
		if len(updateCols) == 0 {
			updateCols = filterKeys(keys, conflictColumns)
		}
		if len(updateCols) == 0 {
			// Every column is part of the conflict target; nothing to update.
			updateCols = nil
		}
	}

	clause := c.db.dialect.UpsertSQL(table, conflictColumns, updateCols)
	if clause == "" {
		if spec.DoNothing {
			return c.fail(notSupportedf("upsert with DoNothing requires known conflict columns on %s", c.db.driverName))
		}
		return c.fail(configf("upsert on %s requires conflict columns or a schema provider for table %q", c.db.driverName, table))
	}

	c.setBuiltSQL("INSERT INTO " + quoter.QuoteTableName(table) +
		" (" + strings.Join(columns, ", ") + ")" +
		" VALUES (" + strings.Join(values, ", ") + ")" +
		clause)
	return c
}

// conflictTarget resolves the columns that define an upsert conflict:
// the caller-specified set, or the table's declared primary key from the
// schema provider.
func (c *Command) conflictTarget(table string, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	if c.db.schema == nil {
		return nil, nil
	}
	ts, err := c.db.schema.TableSchema(context.Background(), table)
	if err != nil {
		return nil, configf("schema lookup for table %q failed: %v", table, err)
	}
	if ts == nil {
		return nil, nil
	}
	return ts.PrimaryKey, nil
}

// filterKeys returns keys that are not in the exclude list.
func filterKeys(keys, exclude []string) []string {
	excludeMap := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		excludeMap[e] = true
	}

	filtered := make([]string, 0, len(keys))
	for _, k := range keys {
		if !excludeMap[k] {
			filtered = append(filtered, k)
		}
	}
	return filtered
}
