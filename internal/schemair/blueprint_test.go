package schemair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(cmds []*Command) []CommandName {
	out := make([]CommandName, len(cmds))
	for i, c := range cmds {
		out[i] = c.Name
	}
	return out
}

func TestExpand_CreateWithAutoIncrement(t *testing.T) {
	b := New("users", func(b *Blueprint) {
		b.Create()
		b.Increments("id")
		b.Varchar("email", 0).Unique()
	})

	cmds := b.Expand(false)
	assert.Equal(t, []CommandName{CmdCreate, CmdUnique, CmdSequenceForTable, CmdTriggerForAutoincrement}, names(cmds))
	assert.Equal(t, []string{"email"}, cmds[1].Columns)
	assert.Equal(t, []string{"id"}, cmds[3].Columns)
	assert.Equal(t, DefaultStringLength, b.Columns()[1].Length)
}

func TestExpand_IdentitySkipsEmulation(t *testing.T) {
	b := New("users", func(b *Blueprint) {
		b.UseIdentity = true
		b.Create()
		b.Increments("id")
	})
	assert.Equal(t, []CommandName{CmdCreate}, names(b.Expand(true)))

	// A variant without identity columns still gets the emulation.
	assert.Equal(t, []CommandName{CmdCreate, CmdSequenceForTable, CmdTriggerForAutoincrement}, names(b.Expand(false)))
}

func TestExpand_Drop(t *testing.T) {
	drop := New("users", func(b *Blueprint) { b.Drop() })
	assert.Equal(t, []CommandName{CmdDrop, CmdDropSequenceForTable}, names(drop.Expand(false)))
	assert.Equal(t, []CommandName{CmdDrop}, names(drop.Expand(true)))

	dropIfExists := New("users", func(b *Blueprint) { b.DropIfExists() })
	assert.Equal(t, []CommandName{CmdDropIfExists, CmdDropSequenceForTable}, names(dropIfExists.Expand(false)))
}

func TestExpand_AddOutsideCreate(t *testing.T) {
	b := New("users", func(b *Blueprint) {
		b.Integer("age").Nullable().Index()
		b.Foreign("team_id").ReferencesOn("teams", "id").Actions("CASCADE", "")
	})

	cmds := b.Expand(false)
	assert.Equal(t, []CommandName{CmdAdd, CmdForeign, CmdIndex}, names(cmds))
	assert.Equal(t, "teams", cmds[1].On)
	assert.Equal(t, []string{"id"}, cmds[1].References)
	assert.Equal(t, "CASCADE", cmds[1].OnDelete)
	assert.Empty(t, cmds[1].OnUpdate)
}

func TestExpand_DoesNotMutate(t *testing.T) {
	b := New("users", func(b *Blueprint) {
		b.Create()
		b.Increments("id")
	})

	first := names(b.Expand(false))
	second := names(b.Expand(false))
	assert.Equal(t, first, second)
	assert.Len(t, b.Commands(), 1)
}

func TestBlueprint_Commands(t *testing.T) {
	b := New("users", func(b *Blueprint) {
		b.Rename("people")
		b.DropForeign("users_team_id_foreign")
		b.DropColumn("a", "b")
		b.DropPrimary("")
		b.DropUnique("u")
		b.DropIndex("i")
	})

	cmds := b.Commands()
	require.Len(t, cmds, 6)
	assert.Equal(t, "people", cmds[0].To)
	assert.Equal(t, "users_team_id_foreign", cmds[1].Index)
	assert.Equal(t, []string{"a", "b"}, cmds[2].Columns)
	assert.Empty(t, cmds[3].Index)
	assert.False(t, b.Creating())
	assert.False(t, b.Dropping())
}

func TestColumnBuilders(t *testing.T) {
	b := New("t", func(b *Blueprint) {
		b.Decimal("price", 10, 2).DefaultTo(0).Charset("UTF8").Collate("UNICODE_CI")
		b.Enum("state", "a", "b")
		b.Timestamps()
		b.BigIncrements("id")
	})

	cols := b.Columns()
	require.Len(t, cols, 5)
	assert.Equal(t, TypeDecimal, cols[0].Type)
	assert.Equal(t, 10, cols[0].Total)
	assert.Equal(t, 2, cols[0].Places)
	assert.Equal(t, 0, cols[0].Default)
	assert.Equal(t, "UTF8", cols[0].CharacterSet)
	assert.Equal(t, "UNICODE_CI", cols[0].Collation)
	assert.Equal(t, []string{"a", "b"}, cols[1].Allowed)
	assert.True(t, cols[2].AllowNull)
	assert.Equal(t, "updated_at", cols[3].Name)

	auto, ok := b.AutoIncrementColumn()
	require.True(t, ok)
	assert.Equal(t, "id", auto.Name)
	assert.True(t, auto.Type.Serial())
}

func TestTypes(t *testing.T) {
	seen := map[Type]bool{}
	for _, typ := range Types() {
		assert.False(t, seen[typ], "duplicate %s", typ)
		seen[typ] = true

		parsed, err := ParseType(string(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	_, err := ParseType("geometry")
	assert.Error(t, err)
	assert.False(t, TypeString.Serial())
}
