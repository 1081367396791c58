package ir

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name     string
		input    IRValue
		expected string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"empty string", IRString(""), `""`},
		{"int", IRInt(42), "42"},
		{"min int64", IRInt(-9223372036854775808), "-9223372036854775808"},
		{"bool", IRBool(false), "false"},
		{"null", IRNull{}, "null"},
		{"empty array", IRArray{}, "[]"},
		{"empty object", IRObject{}, "{}"},
		{"sorted keys", IRObject{"zebra": IRInt(1), "alpha": IRInt(2)}, `{"alpha":2,"zebra":1}`},
		{"no html escaping", IRString("a<b>&c"), `"a<b>&c"`},
		{"control characters", IRString("a\nb\u0001"), `"a\nb\u0001"`},
		{"quotes and backslashes", IRString(`"\`), `"\"\\"`},
		{"line separator kept literal", IRString("a\u2028b"), "\"a\u2028b\""},
		{"nested", IRArray{IRObject{"b": IRArray{IRNull{}}}}, `[{"b":[null]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestMarshalCanonical_NFC(t *testing.T) {
	composed, err := MarshalCanonical(IRString("caf\u00e9"))
	require.NoError(t, err)
	decomposed, err := MarshalCanonical(IRString("cafe\u0301"))
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// U+FF61 sorts before U+1F600 in UTF-8 but after it in UTF-16.
	obj := IRObject{"\U0001F600": IRInt(1), "\uFF61": IRInt(2), "a": IRInt(3)}
	assert.Equal(t, []string{"a", "\U0001F600", "\uFF61"}, obj.SortedKeys())
}

func TestFromBinding(t *testing.T) {
	id := uuid.MustParse("0190a5a4-7c6b-7d2e-9f1a-1b2c3d4e5f60")
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input any
		want  IRValue
	}{
		{"nil", nil, IRNull{}},
		{"string", "x", IRString("x")},
		{"int", 7, IRInt(7)},
		{"int32", int32(-3), IRInt(-3)},
		{"uint16", uint16(9), IRInt(9)},
		{"bool", true, IRBool(true)},
		{"float", 0.5, IRObject{TagFloat: IRString("0.5")}},
		{"time", ts, IRObject{TagTime: IRString("2024-05-01T12:00:00Z")}},
		{"bytes", []byte{0xde, 0xad}, IRObject{TagBytes: IRString("dead")}},
		{"uuid", id, IRString("0190a5a4-7c6b-7d2e-9f1a-1b2c3d4e5f60")},
		{"list", []any{1, "a"}, IRArray{IRInt(1), IRString("a")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromBinding(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FromBinding(struct{}{})
	assert.Error(t, err)
	_, err = FromBinding(uint64(1 << 63))
	assert.Error(t, err)
}

func TestStatementID(t *testing.T) {
	s := Statement{Seq: 1, Kind: KindQuery, Source: "query:active", SQL: `SELECT * FROM "users" WHERE "id" = ?`, Bindings: []any{1}}

	id1, err := StatementID("run-1", s)
	require.NoError(t, err)
	id2, err := StatementID("run-1", s)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64)

	other := s
	other.Bindings = []any{2}
	assert.NotEqual(t, id1, MustStatementID("run-1", other))
	assert.NotEqual(t, id1, MustStatementID("run-2", s))

	reordered := s
	reordered.Seq = 2
	assert.NotEqual(t, id1, MustStatementID("run-1", reordered))
}

func TestStatementID_BadBinding(t *testing.T) {
	_, err := StatementID("run-1", Statement{SQL: "?", Bindings: []any{make(chan int)}})
	assert.Error(t, err)
}

func TestDefinitionHash(t *testing.T) {
	stmts := []Statement{
		{Seq: 1, Kind: KindSchema, Source: "table:users", SQL: `DROP TABLE "users"`},
	}
	h1, err := DefinitionHash("modern-fetch", stmts)
	require.NoError(t, err)
	h2, err := DefinitionHash("legacy-rows", stmts)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestCanonicalBindings(t *testing.T) {
	s := Statement{Bindings: []any{"a", 1, nil, true}}
	out, err := s.CanonicalBindings()
	require.NoError(t, err)
	assert.Equal(t, `["a",1,null,true]`, out)

	empty, err := Statement{}.CanonicalBindings()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}
