package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var harnessScenarios = filepath.Join("..", "harness", "testdata", "scenarios")

const limitScenario = `name: limit
description: A bare LIMIT on the modern grammar
variants: [modern-fetch]
source: |
  query: first_five: {from: "users", limit: 5}
assertions:
  - type: statement_contains
    variant: modern-fetch
    source: query:first_five
    contains: FETCH FIRST 5 ROWS ONLY
`

const wrongScenario = `name: wrong
description: Expects paging the modern grammar does not emit
variants: [modern-fetch]
source: |
  query: first_five: {from: "users", limit: 5}
assertions:
  - type: statement_contains
    variant: modern-fetch
    source: query:first_five
    contains: ROWS 1 TO 5
`

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func runTestCmd(t *testing.T, rootOpts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTestCommandDirectory(t *testing.T) {
	output, err := runTestCmd(t, &RootOptions{Format: "text"}, harnessScenarios)
	require.NoError(t, err)
	assert.Contains(t, output, "✓ paging")
	assert.Contains(t, output, "✓ shop")
	assert.Contains(t, output, "Test Summary: 2 passed, 0 failed, 2 total")
	assert.Contains(t, output, "✓ All scenarios passed")
}

func TestTestCommandFilter(t *testing.T) {
	output, err := runTestCmd(t, &RootOptions{Format: "text"}, harnessScenarios, "--filter", "sh*")
	require.NoError(t, err)
	assert.Contains(t, output, "✓ shop")
	assert.NotContains(t, output, "paging")
	assert.Contains(t, output, "1 total")
}

func TestTestCommandJSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "limit", limitScenario)
	writeScenario(t, dir, "wrong", wrongScenario)

	output, err := runTestCmd(t, &RootOptions{Format: "json"}, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 2)
	assert.True(t, resp.Data.Scenarios[0].Pass)
	assert.False(t, resp.Data.Scenarios[1].Pass)
	assert.Contains(t, resp.Data.Scenarios[1].Errors[0], "statement_contains")
}

func TestTestCommandFailingScenario(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "wrong", wrongScenario)

	output, err := runTestCmd(t, &RootOptions{Format: "text"}, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "✗ wrong")
	assert.Contains(t, output, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommandGolden(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "limit", limitScenario)
	golden := filepath.Join(dir, "golden", "limit.golden")

	output, err := runTestCmd(t, &RootOptions{Format: "text"}, path, "--update")
	require.NoError(t, err)
	assert.Contains(t, output, "✓ limit (golden updated)")

	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario":"limit"`)

	_, err = runTestCmd(t, &RootOptions{Format: "text"}, path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte(`{"scenario":"limit","variants":[]}`), 0o644))
	output, err = runTestCmd(t, &RootOptions{Format: "text"}, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "does not match golden file")
}

func TestTestCommandLoadFailure(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "broken", "name: broken\n")

	output, err := runTestCmd(t, &RootOptions{Format: "text"}, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "✗ broken.yaml")
	assert.Contains(t, output, "failed to load scenario")
}

func TestTestCommandErrors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := runTestCmd(t, &RootOptions{Format: "text"}, filepath.Join(t.TempDir(), "absent"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("no scenarios", func(t *testing.T) {
		output, err := runTestCmd(t, &RootOptions{Format: "text"}, t.TempDir())
		require.NoError(t, err)
		assert.Contains(t, output, "No scenarios found.")
	})

	t.Run("no args", func(t *testing.T) {
		_, err := runTestCmd(t, &RootOptions{Format: "text"})
		require.Error(t, err)
	})
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "paging.golden"),
		goldenFilePath(filepath.Join("scenarios", "paging.yaml"), "paging"))
}
