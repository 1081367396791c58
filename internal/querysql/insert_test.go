package querysql

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fbsql/internal/dialect"
	"github.com/roach88/fbsql/internal/queryir"
)

func TestCompileInsert(t *testing.T) {
	g := grammarFor(t, dialect.ModernFetch)

	sql, args, err := g.CompileInsert(queryir.Table("users"), queryir.Row([]string{"name", "email"}, "x", "x@example.com"))
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("name", "email") VALUES (?, ?)`, sql)
	assert.Equal(t, []any{"x", "x@example.com"}, args)

	sql, args, err = g.CompileInsert(queryir.Table("users"), queryir.Row([]string{"name", "created_at"}, "x", queryir.Expr("CURRENT_TIMESTAMP")))
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("name", "created_at") VALUES (?, CURRENT_TIMESTAMP)`, sql)
	assert.Equal(t, []any{"x"}, args)

	sql, args, err = g.CompileInsert(queryir.Table("users"), queryir.Values{})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" DEFAULT VALUES`, sql)
	assert.Empty(t, args)
}

func TestCompileInsert_MultipleRows(t *testing.T) {
	values := queryir.Values{
		Columns: []string{"a", "b"},
		Rows:    [][]any{{1, 2}, {3, queryir.Expr("0")}},
	}

	sql, args, err := grammarFor(t, dialect.LegacyRows).CompileInsert(queryir.Table("t"), values)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "t" ("a", "b") `+
		`SELECT CAST(? AS TYPE OF COLUMN "t"."a"), CAST(? AS TYPE OF COLUMN "t"."b") FROM RDB$DATABASE `+
		`UNION ALL SELECT CAST(? AS TYPE OF COLUMN "t"."a"), 0 FROM RDB$DATABASE`, sql)
	assert.Equal(t, []any{1, 2, 3}, args)

	_, _, err = grammarFor(t, dialect.LegacyFirstSkip).CompileInsert(queryir.Table("t"), values)
	assert.True(t, errors.Is(err, dialect.ErrUnsupported))
}

func TestCompileInsert_Errors(t *testing.T) {
	g := grammarFor(t, dialect.ModernFetch)

	tests := []struct {
		name   string
		query  *queryir.Query
		values queryir.Values
		code   string
	}{
		{"missing table", &queryir.Query{}, queryir.Row([]string{"a"}, 1), dialect.CodeMissingTable},
		{"no rows", queryir.Table("t"), queryir.Values{Columns: []string{"a"}}, dialect.CodeBadValues},
		{"ragged row", queryir.Table("t"), queryir.Values{Columns: []string{"a", "b"}, Rows: [][]any{{1}}}, dialect.CodeBadValues},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := g.CompileInsert(tt.query, tt.values)
			var cfgErr *dialect.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.code, cfgErr.Code)
		})
	}
}

const wrappedInsert = `EXECUTE BLOCK (
  "name" TYPE OF COLUMN "users"."name" = ?
)
RETURNS ("id" TYPE OF COLUMN "users"."id")
AS
  DECLARE STMT VARCHAR(8191);
BEGIN
  STMT = 'INSERT INTO "users" ("name") VALUES (?) RETURNING "id"';
  EXECUTE STATEMENT (STMT) ("name")
  WITH AUTONOMOUS TRANSACTION
  INTO "id";
  SUSPEND;
END`

func TestCompileInsertGetID_Wrapped(t *testing.T) {
	g := grammarFor(t, dialect.ModernFetch)

	sql, args, err := g.CompileInsertGetID(queryir.Table("users"), queryir.Row([]string{"name"}, "x"), "id", false)
	require.NoError(t, err)
	assert.Equal(t, wrappedInsert, sql)
	assert.Equal(t, []any{"x"}, args)

	assert.Equal(t, 1, strings.Count(sql, "SUSPEND"))
	assert.Equal(t, 2, strings.Count(sql, "TYPE OF COLUMN"))
}

func TestCompileInsertGetID_InTransaction(t *testing.T) {
	g := grammarFor(t, dialect.ModernFetch)

	sql, _, err := g.CompileInsertGetID(queryir.Table("users"), queryir.Row([]string{"name"}, "x"), "", true)
	require.NoError(t, err)
	assert.NotContains(t, sql, "AUTONOMOUS")
	assert.Equal(t, strings.Replace(wrappedInsert, "  WITH AUTONOMOUS TRANSACTION\n", "", 1), sql)
}

func TestCompileInsertGetID_ParametersPerBoundColumn(t *testing.T) {
	g := grammarFor(t, dialect.ModernFetch)

	values := queryir.Row([]string{"name", "email", "created_at"}, "x", "x@example.com", queryir.Expr("CURRENT_TIMESTAMP"))
	sql, args, err := g.CompileInsertGetID(queryir.Table("users"), values, "user_id", false)
	require.NoError(t, err)

	assert.Contains(t, sql, "  \"name\" TYPE OF COLUMN \"users\".\"name\" = ?,\n  \"email\" TYPE OF COLUMN \"users\".\"email\" = ?\n)")
	assert.Contains(t, sql, `RETURNS ("user_id" TYPE OF COLUMN "users"."user_id")`)
	assert.Contains(t, sql, `EXECUTE STATEMENT (STMT) ("name", "email")`)
	assert.Contains(t, sql, `INTO "user_id";`)
	assert.Equal(t, 3, strings.Count(sql, "TYPE OF COLUMN"))
	assert.Equal(t, []any{"x", "x@example.com"}, args)
}

func TestCompileInsertGetID_EscapesEmbeddedStatement(t *testing.T) {
	g := grammarFor(t, dialect.ModernFetch)

	sql, _, err := g.CompileInsertGetID(queryir.Table("users"), queryir.Row([]string{"it's"}, 1), "id", true)
	require.NoError(t, err)
	assert.Contains(t, sql, `STMT = 'INSERT INTO "users" ("it''s") VALUES (?) RETURNING "id"';`)
}

func TestCompileInsertGetID_NoBoundColumns(t *testing.T) {
	g := grammarFor(t, dialect.ModernFetch)

	sql, args, err := g.CompileInsertGetID(queryir.Table("users"), queryir.Values{}, "id", true)
	require.NoError(t, err)
	assert.Equal(t, `EXECUTE BLOCK
RETURNS ("id" TYPE OF COLUMN "users"."id")
AS
  DECLARE STMT VARCHAR(8191);
BEGIN
  STMT = 'INSERT INTO "users" DEFAULT VALUES RETURNING "id"';
  EXECUTE STATEMENT (STMT)
  INTO "id";
  SUSPEND;
END`, sql)
	assert.Empty(t, args)
}

func TestCompileInsertGetID_Variants(t *testing.T) {
	values := queryir.Row([]string{"name"}, "x")

	sql, args, err := grammarFor(t, dialect.LegacyRows).CompileInsertGetID(queryir.Table("users"), values, "", false)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("name") VALUES (?) RETURNING "id"`, sql)
	assert.Equal(t, []any{"x"}, args)

	_, _, err = grammarFor(t, dialect.LegacyFirstSkip).CompileInsertGetID(queryir.Table("users"), values, "", false)
	assert.True(t, errors.Is(err, dialect.ErrUnsupported))

	twoRows := queryir.Values{Columns: []string{"name"}, Rows: [][]any{{"a"}, {"b"}}}
	_, _, err = grammarFor(t, dialect.ModernFetch).CompileInsertGetID(queryir.Table("users"), twoRows, "", false)
	var cfgErr *dialect.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, dialect.CodeBadValues, cfgErr.Code)
}

func TestCompileUpdate(t *testing.T) {
	g := grammarFor(t, dialect.ModernFetch)

	q := queryir.Table("users").Where(queryir.Basic{Column: "id", Operator: "=", Value: 7})
	sql, args, err := g.CompileUpdate(q, []queryir.Assignment{
		{Column: "name", Value: "n"},
		{Column: "updated_at", Value: queryir.Expr("CURRENT_TIMESTAMP")},
	})
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "name" = ?, "updated_at" = CURRENT_TIMESTAMP WHERE "id" = ?`, sql)
	assert.Equal(t, []any{"n", 7}, args)

	_, _, err = g.CompileUpdate(q, nil)
	assert.Error(t, err)
	_, _, err = g.CompileUpdate(&queryir.Query{}, []queryir.Assignment{{Column: "a", Value: 1}})
	assert.Error(t, err)
}

func TestCompileDelete(t *testing.T) {
	g := grammarFor(t, dialect.LegacyRows)

	sql, args, err := g.CompileDelete(queryir.Table("users").Where(queryir.In{Column: "id", Values: []any{1, 2}}))
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "users" WHERE "id" IN (?, ?)`, sql)
	assert.Equal(t, []any{1, 2}, args)

	sql, args, err = g.CompileDelete(queryir.Table("users"))
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "users"`, sql)
	assert.Empty(t, args)

	sql, err = g.CompileTruncate(queryir.Table("users"))
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "users"`, sql)

	_, err = g.CompileTruncate(nil)
	assert.Error(t, err)
}
