package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func inline(t *testing.T, yamlText string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(yamlText), t.TempDir())
	require.NoError(t, err)
	return s
}

func TestRun_Paging(t *testing.T) {
	result, err := RunWithGolden(t, loadTestScenario(t, "paging"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Outputs, 3)

	// Oldest engine generation first.
	assert.Equal(t, "legacy-first-skip", result.Outputs[0].Variant)
	assert.Equal(t, "modern-fetch", result.Outputs[2].Variant)
	for _, out := range result.Outputs {
		assert.NotEmpty(t, out.RunID)
	}
}

func TestRun_Shop(t *testing.T) {
	result, err := Run(loadTestScenario(t, "shop"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_Deterministic(t *testing.T) {
	s := loadTestScenario(t, "paging")
	r1, err := Run(s)
	require.NoError(t, err)
	r2, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, r1.Outputs, r2.Outputs)
	snap1, err := Snapshot(s.Name, r1)
	require.NoError(t, err)
	snap2, err := Snapshot(s.Name, r2)
	require.NoError(t, err)
	assert.Equal(t, snap1, snap2)
}

func TestRun_InlineSource(t *testing.T) {
	s := inline(t, `
name: prefixed
description: Table prefix reaches derived sequence names
variants: [legacy-rows]
table_prefix: app_
source: |
  query: next: {op: "nextValue", from: "users"}
assertions:
  - type: statement_sql
    source: query:next
    sql: 'SELECT NEXT VALUE FOR "seq_app_users" AS ID FROM RDB$DATABASE'
  - type: statement_count
    source: query:next
    count: 1
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Outputs, 1)
}

func TestRun_EngineVersion(t *testing.T) {
	s := inline(t, `
name: banner
description: A server banner picks the variant
engine_version: WI-V2.5.9.27139 Firebird 2.5
source: |
  query: page: {from: "users", limit: 10}
assertions:
  - type: statement_sql
    source: query:page
    sql: 'SELECT * FROM "users" ROWS 10'
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Outputs, 1)
	assert.Equal(t, "legacy-rows", result.Outputs[0].Variant)
}

func TestRun_CompileError(t *testing.T) {
	s := inline(t, `
name: no_context
description: Context variables do not exist on the oldest engines
variants: [legacy-first-skip, modern-fetch]
source: |
  query: tenant: {op: "context", namespace: "USER_SESSION", variable: "TENANT"}
assertions:
  - type: compile_error
    variant: legacy-first-skip
    contains: query:tenant
  - type: statement_count
    variant: modern-fetch
    source: query:tenant
    count: 1
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	out, ok := result.Output("legacy-first-skip")
	require.True(t, ok)
	assert.Contains(t, out.Error, "not available on legacy-first-skip")
	assert.Empty(t, out.RunID, "failed variants are not journaled")
}

func TestRun_FailingAssertions(t *testing.T) {
	s := inline(t, `
name: failing
description: Every assertion here is wrong
variants: [modern-fetch]
source: |
  query: {
    a: {from: "a", where: [{column: "id", value: 3}]}
    b: {from: "b"}
  }
assertions:
  - type: statement_sql
    source: query:a
    sql: SELECT 1
  - type: statement_order
    sources: [query:b, query:a]
  - type: bindings
    source: query:a
    bindings: [4]
  - type: skipped
    sources: [query:b]
  - type: compile_error
    contains: boom
  - type: journal_count
    source: query:a
    count: 2
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6)
	assert.True(t, strings.HasPrefix(result.Errors[0], "Assertion failed: statement_sql [modern-fetch]"))
	assert.Contains(t, result.Errors[1], "query:b (seq 2) should be before query:a (seq 1)")
	assert.Contains(t, result.Errors[2], "[3]")
}

func TestRun_BadDefinitions(t *testing.T) {
	s := inline(t, `
name: broken
description: Definitions that do not compile are a run error
source: |
  table: t: columns: [{name: "x", type: "money"}]
assertions:
  - type: skipped
`)
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table.t")
}
