package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fbsql/internal/queryir"
)

func TestCompileQuerySelect(t *testing.T) {
	v := compileValue(t, `
		query: active: {
			from:     "users"
			columns:  ["users.id", "users.email"]
			distinct: true
			joins: [
				{type: "left", table: "orders", first: "users.id", second: "orders.user_id"},
				{type: "cross", table: "settings"},
			]
			where: [
				{column: "status", op: "=", value: "active"},
				{isNull: "deleted_at", or: true},
				{nested: [{column: "age", op: ">=", value: 18}, {notNull: "verified_at"}]},
			]
			groups: ["users.id"]
			having: [{raw: "COUNT(*) > ?", bindings: [2]}]
			orders: [{column: "users.email", direction: "desc"}, {raw: "1"}]
			limit:  10
			offset: 20
			lock:   true
			unions: [{query: {from: "admins", columns: ["id", "email"]}, all: true}]
		}
	`, "query.active")

	def, err := CompileQuery(v)
	require.NoError(t, err)
	assert.Equal(t, "active", def.Name)
	assert.Equal(t, OpSelect, def.Op)

	q := def.Query
	assert.Equal(t, "users", q.From)
	assert.True(t, q.Distinct)
	require.Len(t, q.Joins, 2)
	assert.Equal(t, queryir.LeftJoin, q.Joins[0].Type)
	assert.Equal(t, queryir.ColumnCompare{First: "users.id", Operator: "=", Second: "orders.user_id"}, q.Joins[0].On[0].Predicate)
	assert.Empty(t, q.Joins[1].On)

	require.Len(t, q.Wheres, 3)
	assert.Equal(t, queryir.Basic{Column: "status", Operator: "=", Value: "active"}, q.Wheres[0].Predicate)
	assert.Equal(t, queryir.Or, q.Wheres[1].Boolean)
	assert.Equal(t, queryir.Null{Column: "deleted_at"}, q.Wheres[1].Predicate)
	nested, ok := q.Wheres[2].Predicate.(queryir.Nested)
	require.True(t, ok)
	assert.Equal(t, queryir.Null{Column: "verified_at", Not: true}, nested.Wheres[1].Predicate)

	assert.Equal(t, queryir.Raw{SQL: "COUNT(*) > ?", Bindings: []any{int64(2)}}, q.Havings[0].Predicate)
	assert.Equal(t, []queryir.Order{
		{Column: "users.email", Direction: queryir.Desc},
		{Raw: "1"},
	}, q.Orders)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 20, q.Offset)
	assert.Equal(t, queryir.ForUpdate(true), q.Lock)
	require.Len(t, q.Unions, 1)
	assert.True(t, q.Unions[0].All)
	assert.Equal(t, "admins", q.Unions[0].Query.From)
}

func TestCompileQueryPredicates(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want queryir.Predicate
	}{
		{"default operator", `{column: "id", value: 1}`, queryir.Basic{Column: "id", Operator: "=", Value: int64(1)}},
		{"expression value", `{column: "n", op: ">", value: {expr: "m + 1"}}`, queryir.Basic{Column: "n", Operator: ">", Value: queryir.Expr("m + 1")}},
		{"column compare", `{column: "a", op: "<", other: "b"}`, queryir.ColumnCompare{First: "a", Operator: "<", Second: "b"}},
		{"any of", `{column: "id", anyOf: [1, 2]}`, queryir.In{Column: "id", Values: []any{int64(1), int64(2)}}},
		{"none of", `{column: "id", noneOf: [3]}`, queryir.In{Column: "id", Values: []any{int64(3)}, Not: true}},
		{"between", `{column: "n", between: [1, 9]}`, queryir.Between{Column: "n", Low: int64(1), High: int64(9)}},
		{"not between", `{column: "n", notBetween: ["a", "z"]}`, queryir.Between{Column: "n", Low: "a", High: "z", Not: true}},
		{"date part", `{datePart: "year", column: "born", value: 1990}`, queryir.DatePart{Part: "year", Column: "born", Operator: "=", Value: int64(1990)}},
		{"date", `{date: "created_at", op: ">", value: "2024-01-01"}`, queryir.Date{Column: "created_at", Operator: ">", Value: "2024-01-01"}},
		{"null value", `{column: "x", op: "=", value: null}`, queryir.Basic{Column: "x", Operator: "=", Value: nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := CompileQuery(compileValue(t, `query: q: {from: "t", where: [`+tt.src+`]}`, "query.q"))
			require.NoError(t, err)
			require.Len(t, def.Query.Wheres, 1)
			assert.Equal(t, tt.want, def.Query.Wheres[0].Predicate)
		})
	}
}

func TestCompileQuerySubqueries(t *testing.T) {
	def, err := CompileQuery(compileValue(t, `
		query: q: {
			from: "users"
			where: [
				{column: "id", inQuery: {from: "orders", columns: ["user_id"]}},
				{notExists: {from: "bans", where: [{column: "bans.user_id", other: "users.id"}]}},
			]
		}
	`, "query.q"))
	require.NoError(t, err)

	in, ok := def.Query.Wheres[0].Predicate.(queryir.InQuery)
	require.True(t, ok)
	assert.Equal(t, "orders", in.Query.From)
	ex, ok := def.Query.Wheres[1].Predicate.(queryir.Exists)
	require.True(t, ok)
	assert.True(t, ex.Not)
	assert.Equal(t, "bans", ex.Query.From)
}

func TestCompileQueryWrites(t *testing.T) {
	def, err := CompileQuery(compileValue(t, `
		query: add: {
			op:   "insertGetId"
			from: "users"
			values: [
				{email: "a@example.com", active: true},
				{email: "b@example.com", active: false},
			]
			returning:     "user_id"
			inTransaction: true
		}
	`, "query.add"))
	require.NoError(t, err)
	assert.Equal(t, OpInsertGetID, def.Op)
	assert.Equal(t, queryir.Values{
		Columns: []string{"email", "active"},
		Rows:    [][]any{{"a@example.com", true}, {"b@example.com", false}},
	}, def.Values)
	assert.Equal(t, "user_id", def.Returning)
	assert.True(t, def.InTransaction)

	def, err = CompileQuery(compileValue(t, `
		query: bump: {
			op:   "update"
			from: "counters"
			set:  {hits: {expr: "hits + 1"}, touched: "yes"}
			where: [{column: "id", value: 7}]
		}
	`, "query.bump"))
	require.NoError(t, err)
	assert.Equal(t, []queryir.Assignment{
		{Column: "hits", Value: queryir.Expr("hits + 1")},
		{Column: "touched", Value: "yes"},
	}, def.Assignments)
}

func TestCompileQueryRoutines(t *testing.T) {
	def, err := CompileQuery(compileValue(t, `query: p: {op: "procedure", name: "add_user", args: ["x", 1]}`, "query.p"))
	require.NoError(t, err)
	assert.Equal(t, "add_user", def.Routine)
	assert.Equal(t, []any{"x", int64(1)}, def.Args)
	assert.Nil(t, def.Query)

	def, err = CompileQuery(compileValue(t, `query: c: {op: "context", namespace: "USER_SESSION", variable: "tenant"}`, "query.c"))
	require.NoError(t, err)
	assert.Equal(t, "USER_SESSION", def.Namespace)
	assert.Equal(t, "tenant", def.Variable)

	def, err = CompileQuery(compileValue(t, `query: n: {op: "nextValue", from: "users", increment: 5}`, "query.n"))
	require.NoError(t, err)
	assert.Equal(t, "users", def.Query.From)
	assert.Equal(t, 5, def.Increment)
	assert.Empty(t, def.Sequence)
}

func TestCompileQueryErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unknown op", `{op: "merge", from: "t"}`, "unknown operation"},
		{"procedure without name", `{op: "procedure"}`, "requires a name"},
		{"context without variable", `{op: "context", namespace: "SYSTEM"}`, "namespace and variable are required"},
		{"update without set", `{op: "update", from: "t"}`, "at least one assignment"},
		{"ragged rows", `{op: "insert", from: "t", values: [{a: 1}, {b: 2}]}`, "does not match"},
		{"bad operator", `{from: "t", where: [{column: "a", op: "~~", value: 1}]}`, "E101"},
		{"unknown date part", `{from: "t", where: [{datePart: "fortnight", column: "a", value: 1}]}`, "E103"},
		{"bad join", `{from: "t", joins: [{type: "outer", table: "u"}]}`, "E104"},
		{"between arity", `{from: "t", where: [{column: "a", between: [1]}]}`, "exactly two bounds"},
		{"unrecognised predicate", `{from: "t", where: [{op: "="}]}`, "unrecognised predicate"},
		{"object value", `{from: "t", where: [{column: "a", value: {b: 1}}]}`, "expr"},
		{"bad lock", `{from: "t", lock: 3}`, "boolean or a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileQuery(compileValue(t, `query: q: `+tt.src, "query.q"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
