package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fbsql/internal/queryir"
	"github.com/roach88/fbsql/internal/schemair"
)

func compileValue(t *testing.T, src, path string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return v.LookupPath(cue.ParsePath(path))
}

func TestCompileTableBasic(t *testing.T) {
	v := compileValue(t, `
		table: users: {
			identity: true
			columns: [
				{name: "id", type: "increments"},
				{name: "email", type: "string", length: 120, unique: true},
				{name: "score", type: "decimal", total: 10, places: 3, nullable: true},
				{name: "status", type: "enum", allowed: ["active", "banned"], default: "active"},
				{name: "created_at", type: "timestamp", useCurrent: true},
				{name: "name", type: "string", charset: "UTF8", collation: "UNICODE_CI"},
			]
			index: [["email", "status"], {columns: "name", name: "users_by_name"}]
		}
	`, "table.users")

	b, err := CompileTable(v)
	require.NoError(t, err)

	assert.Equal(t, "users", b.Table)
	assert.True(t, b.UseIdentity)
	assert.True(t, b.Creating())

	cols := b.Columns()
	require.Len(t, cols, 6)
	assert.True(t, cols[0].AutoIncrement)
	assert.Equal(t, 120, cols[1].Length)
	assert.True(t, cols[1].UniqueKey)
	assert.Equal(t, schemair.TypeDecimal, cols[2].Type)
	assert.Equal(t, 10, cols[2].Total)
	assert.Equal(t, 3, cols[2].Places)
	assert.True(t, cols[2].AllowNull)
	assert.Equal(t, []string{"active", "banned"}, cols[3].Allowed)
	assert.Equal(t, "active", cols[3].Default)
	assert.True(t, cols[4].CurrentTime)
	assert.Equal(t, "UTF8", cols[5].CharacterSet)
	assert.Equal(t, "UNICODE_CI", cols[5].Collation)

	cmds := b.Commands()
	require.Len(t, cmds, 3)
	assert.Equal(t, schemair.CmdCreate, cmds[0].Name)
	assert.Equal(t, schemair.CmdIndex, cmds[1].Name)
	assert.Equal(t, []string{"email", "status"}, cmds[1].Columns)
	assert.Empty(t, cmds[1].Index)
	assert.Equal(t, []string{"name"}, cmds[2].Columns)
	assert.Equal(t, "users_by_name", cmds[2].Index)
}

func TestCompileTableAlter(t *testing.T) {
	v := compileValue(t, `
		table: orders: {
			action: "alter"
			columns: [{name: "note", type: "text", nullable: true}]
			dropColumns: ["legacy_a", "legacy_b"]
			dropIndex: "orders_old_index"
			foreign: [{
				columns:  "user_id"
				on:       "users"
				onDelete: "cascade"
			}]
		}
	`, "table.orders")

	b, err := CompileTable(v)
	require.NoError(t, err)
	assert.False(t, b.Creating())

	cmds := b.Commands()
	require.Len(t, cmds, 3)
	assert.Equal(t, schemair.CmdDropIndex, cmds[0].Name)
	assert.Equal(t, "orders_old_index", cmds[0].Index)
	assert.Equal(t, schemair.CmdDropColumn, cmds[1].Name)
	assert.Equal(t, []string{"legacy_a", "legacy_b"}, cmds[1].Columns)
	assert.Equal(t, schemair.CmdForeign, cmds[2].Name)
	assert.Equal(t, "users", cmds[2].On)
	assert.Equal(t, "cascade", cmds[2].OnDelete)

	// Columns outside a create are added by expansion.
	assert.Equal(t, schemair.CmdAdd, b.Expand(false)[0].Name)
}

func TestCompileTableActions(t *testing.T) {
	tests := []struct {
		action string
		want   schemair.CommandName
	}{
		{"drop", schemair.CmdDrop},
		{"dropIfExists", schemair.CmdDropIfExists},
		{"create", schemair.CmdCreate},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			v := compileValue(t, `table: t: action: "`+tt.action+`"`, "table.t")
			b, err := CompileTable(v)
			require.NoError(t, err)
			require.Len(t, b.Commands(), 1)
			assert.Equal(t, tt.want, b.Commands()[0].Name)
		})
	}

	v := compileValue(t, `table: t: {action: "rename", to: "t2"}`, "table.t")
	b, err := CompileTable(v)
	require.NoError(t, err)
	assert.Equal(t, "t2", b.Commands()[0].To)
}

func TestCompileTableDefaultExpression(t *testing.T) {
	v := compileValue(t, `
		table: events: columns: [
			{name: "at", type: "timestamp", default: {expr: "CURRENT_TIMESTAMP"}},
			{name: "flag", type: "boolean", default: false},
			{name: "weight", type: "double", default: 1.5},
		]
	`, "table.events")

	b, err := CompileTable(v)
	require.NoError(t, err)
	cols := b.Columns()
	assert.Equal(t, queryir.Expr("CURRENT_TIMESTAMP"), cols[0].Default)
	assert.Equal(t, false, cols[1].Default)
	assert.Equal(t, 1.5, cols[2].Default)
}

func TestCompileTableErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"unknown action", `table: t: action: "truncate"`, "action"},
		{"rename without target", `table: t: action: "rename"`, "to"},
		{"unknown type", `table: t: columns: [{name: "a", type: "money"}]`, "columns.type"},
		{"missing column name", `table: t: columns: [{type: "text"}]`, "columns.name"},
		{"bad length", `table: t: columns: [{name: "a", type: "string", length: "long"}]`, "length"},
		{"empty index", `table: t: index: [{name: "x"}]`, "index"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileTable(compileValue(t, tt.src, "table.t"))
			require.Error(t, err)
			var ce *CompileError
			require.True(t, errors.As(err, &ce), "got %T: %v", err, err)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCompileErrorPosition(t *testing.T) {
	v := cuecontext.New().CompileString(`table: t: {
	action: "nope"
}`, cuecontext.Filename("schema.cue"))
	require.NoError(t, v.Err())

	_, err := CompileTable(v.LookupPath(cue.ParsePath("table.t")))
	require.Error(t, err)
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, ce.Message, "unknown table action")
	if ce.Pos.IsValid() {
		assert.Equal(t, "schema.cue", ce.Pos.Filename())
	}
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "action", Message: "bad"}
	assert.Equal(t, "action: bad", err.Error())
}
