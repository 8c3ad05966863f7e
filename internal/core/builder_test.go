package core

import (
	"context"
	"testing"

	"github.com/coregx/dbx/internal/dialects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDB builds a DB without a live connection; only SQL generation runs.
func newTestDB(t *testing.T, driverName string) *DB {
	t.Helper()
	d, ok := dialects.GetDialect(driverName)
	require.True(t, ok)
	return &DB{
		driverName: driverName,
		dialect:    d,
		quoter:     NewQuoter(d),
	}
}

func TestInsert_Map(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("").Insert("user", Params{"name": "alice", "email": "a@example.com"})
	require.NoError(t, c.err)

	// Columns in sorted order, cells numbered row-major.
	assert.Equal(t, `INSERT INTO "user" ("email", "name") VALUES ($1, $2)`, c.SQL())
	assert.Equal(t, Params{"qp0": "a@example.com", "qp1": "alice"}, c.Params())
}

func TestInsert_RawValue(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("").Insert("log", Params{
		"message":    "started",
		"created_at": Raw("NOW()"),
	})
	require.NoError(t, c.err)

	assert.Equal(t, `INSERT INTO "log" ("created_at", "message") VALUES (NOW(), $1)`, c.SQL())
	assert.Equal(t, Params{"qp0": "started"}, c.Params())
}

func TestInsert_RawValueWithPlaceholder(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("").Insert("log", Params{"v": Raw("COALESCE(:x, 1)")})
	require.Error(t, c.err)
	assert.True(t, IsNotSupported(c.err))
}

func TestInsert_InvalidInput(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("").Insert("user", 42)
	require.Error(t, c.err)
	assert.True(t, IsInvalidArgument(c.err))

	c = db.NewCommand("").Insert("user", Params{})
	require.Error(t, c.err)
	assert.True(t, IsInvalidArgument(c.err))

	c = db.NewCommand("").Insert("", Params{"a": 1})
	require.Error(t, c.err)
}

func TestInsert_FromSelect(t *testing.T) {
	db := newTestDB(t, "postgres")

	expr := NewExpr("SELECT name, email FROM staging WHERE batch = :batch", Params{"batch": 7})
	c := db.NewCommand("").Insert("user", expr)
	require.NoError(t, c.err)

	assert.Equal(t, `INSERT INTO "user" SELECT name, email FROM staging WHERE batch = $1`, c.SQL())
	assert.Equal(t, Params{"batch": 7}, c.Params())
}

func TestInsert_FromSelectPositionalRejected(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("").Insert("user", NewExpr("SELECT name FROM staging WHERE batch = ?"))
	require.Error(t, c.err)
	assert.True(t, IsInvalidArgument(c.err))
	assert.Contains(t, c.err.Error(), "Expected select query object with enumerated (named) parameters")
}

func TestBatchInsert(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("").BatchInsert("user",
		[]string{"name", "age"},
		[][]any{
			{"alice", 30},
			{"bob", 25},
			{"carol", 41},
		})
	require.NoError(t, c.err)

	assert.Equal(t,
		`INSERT INTO "user" ("name", "age") VALUES ($1, $2), ($3, $4), ($5, $6)`,
		c.SQL())
	assert.Equal(t, Params{
		"qp0": "alice", "qp1": 30,
		"qp2": "bob", "qp3": 25,
		"qp4": "carol", "qp5": 41,
	}, c.Params())
}

func TestBatchInsert_MySQLPlaceholders(t *testing.T) {
	db := newTestDB(t, "mysql")

	c := db.NewCommand("").BatchInsert("user",
		[]string{"name"},
		[][]any{{"alice"}, {"bob"}})
	require.NoError(t, c.err)

	assert.Equal(t, "INSERT INTO `user` (`name`) VALUES (?), (?)", c.SQL())
}

func TestBatchInsert_RawCell(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("").BatchInsert("event",
		[]string{"name", "at"},
		[][]any{{"boot", Raw("NOW()")}})
	require.NoError(t, c.err)

	assert.Equal(t, `INSERT INTO "event" ("name", "at") VALUES ($1, NOW())`, c.SQL())
	assert.Equal(t, Params{"qp0": "boot"}, c.Params())
}

func TestBatchInsert_ZeroRows(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("").BatchInsert("user", []string{"name"}, nil)
	require.NoError(t, c.err)
	assert.Equal(t, "", c.SQL())

	// An empty statement list executes as a no-op.
	res, err := c.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

func TestBatchInsert_ArityMismatch(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("").BatchInsert("user",
		[]string{"name", "age"},
		[][]any{
			{"alice", 30},
			{"bob"},
		})
	require.Error(t, c.err)
	assert.True(t, IsInvalidArgument(c.err))
	assert.Contains(t, c.err.Error(), "BatchInsert row 1 has 1 values, expected 2")
}

func TestBatchInsert_NoColumns(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("").BatchInsert("user", nil, [][]any{{1}})
	require.Error(t, c.err)
	assert.True(t, IsInvalidArgument(c.err))
}

func TestUpsert_Postgres(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("").Upsert("user",
		Params{"id": 1, "name": "alice", "email": "a@example.com"},
		UpsertSpec{ConflictColumns: []string{"id"}})
	require.NoError(t, c.err)

	assert.Equal(t,
		`INSERT INTO "user" ("email", "id", "name") VALUES ($1, $2, $3)`+
			` ON CONFLICT ("id") DO UPDATE SET "email" = EXCLUDED."email", "name" = EXCLUDED."name"`,
		c.SQL())
}

func TestUpsert_ExplicitUpdateColumns(t *testing.T) {
	db := newTestDB(t, "sqlite")

	c := db.NewCommand("").Upsert("user",
		Params{"id": 1, "name": "alice", "visits": 1},
		UpsertSpec{ConflictColumns: []string{"id"}, UpdateColumns: []string{"visits"}})
	require.NoError(t, c.err)

	assert.Equal(t,
		`INSERT INTO "user" ("id", "name", "visits") VALUES (?, ?, ?)`+
			` ON CONFLICT ("id") DO UPDATE SET "visits" = excluded."visits"`,
		c.SQL())
}

func TestUpsert_DoNothing(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("").Upsert("user",
		Params{"id": 1, "name": "alice"},
		UpsertSpec{ConflictColumns: []string{"id"}, DoNothing: true})
	require.NoError(t, c.err)

	assert.Equal(t,
		`INSERT INTO "user" ("id", "name") VALUES ($1, $2) ON CONFLICT ("id") DO NOTHING`,
		c.SQL())
}

func TestUpsert_MySQL(t *testing.T) {
	db := newTestDB(t, "mysql")

	c := db.NewCommand("").Upsert("user",
		Params{"id": 1, "name": "alice"},
		UpsertSpec{ConflictColumns: []string{"id"}})
	require.NoError(t, c.err)

	assert.Equal(t,
		"INSERT INTO `user` (`id`, `name`) VALUES (?, ?)"+
			" ON DUPLICATE KEY UPDATE `name` = VALUES(`name`)",
		c.SQL())
}

func TestUpsert_SchemaProviderDefaultConflictTarget(t *testing.T) {
	db := newTestDB(t, "postgres")
	db.schema = SchemaMap{
		"user": {Name: "user", Columns: []string{"id", "name"}, PrimaryKey: []string{"id"}},
	}

	c := db.NewCommand("").Upsert("user", Params{"id": 1, "name": "alice"}, UpsertSpec{})
	require.NoError(t, c.err)

	assert.Equal(t,
		`INSERT INTO "user" ("id", "name") VALUES ($1, $2)`+
			` ON CONFLICT ("id") DO UPDATE SET "name" = EXCLUDED."name"`,
		c.SQL())
}

func TestUpsert_AllColumnsInConflictTarget(t *testing.T) {
	db := newTestDB(t, "postgres")

	// Nothing left to update; degrades to do-nothing.
	c := db.NewCommand("").Upsert("membership",
		Params{"group_id": 1, "user_id": 2},
		UpsertSpec{ConflictColumns: []string{"group_id", "user_id"}})
	require.NoError(t, c.err)

	assert.Equal(t,
		`INSERT INTO "membership" ("group_id", "user_id") VALUES ($1, $2)`+
			` ON CONFLICT ("group_id", "user_id") DO NOTHING`,
		c.SQL())
}

func TestUpsert_UnknownConflictTarget(t *testing.T) {
	t.Run("update without target is a configuration error", func(t *testing.T) {
		db := newTestDB(t, "postgres")
		c := db.NewCommand("").Upsert("user", Params{"id": 1}, UpsertSpec{})
		require.Error(t, c.err)
		assert.True(t, IsConfiguration(c.err))
	})

	t.Run("mysql do-nothing without target is not supported", func(t *testing.T) {
		db := newTestDB(t, "mysql")
		c := db.NewCommand("").Upsert("user", Params{"id": 1}, UpsertSpec{DoNothing: true})
		require.Error(t, c.err)
		assert.True(t, IsNotSupported(c.err))
	})
}

func TestCommand_RawSQL(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("SELECT * FROM {{user}} WHERE [[name]] = :name AND [[age]] > ?").
		Bind("name", "o'brien").
		BindValues(21)

	assert.Equal(t,
		`SELECT * FROM "user" WHERE "name" = 'o''brien' AND "age" > 21`,
		c.RawSQL())
}

func TestCommand_RawSQL_MultiStatementPositionalOffsets(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("UPDATE t SET a = ?; UPDATE t SET b = ?").BindValues(1, 2)

	assert.Equal(t, "UPDATE t SET a = 1;\nUPDATE t SET b = 2", c.RawSQL())
}

func TestCommand_SQLJoinsStatements(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("UPDATE {{t}} SET a = :a; DELETE FROM {{t}} WHERE b = :b")
	assert.Equal(t, "UPDATE \"t\" SET a = $1;\nDELETE FROM \"t\" WHERE b = $1", c.SQL())
}

func TestCommand_SetSQLClearsError(t *testing.T) {
	db := newTestDB(t, "postgres")

	c := db.NewCommand("").Insert("user", 42)
	require.Error(t, c.err)

	c.SetSQL("SELECT 1")
	assert.NoError(t, c.err)
	assert.Equal(t, "SELECT 1", c.SQL())
}
