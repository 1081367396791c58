package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runVersionCmd(t *testing.T, rootOpts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewVersionCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionText(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"1.5.6", "1.5.6 → legacy-first-skip (major 1)"},
		{"2.5.9", "2.5.9 → legacy-rows (major 2)"},
		{"WI-V3.0.10.33601 Firebird 3.0", "→ modern-fetch (major 3)"},
		{"5.0", "5.0 → modern-fetch (major 5)"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			output, err := runVersionCmd(t, &RootOptions{Format: "text"}, tt.version)
			require.NoError(t, err)
			assert.Contains(t, output, tt.want)
		})
	}
}

func TestVersionFeatures(t *testing.T) {
	output, err := runVersionCmd(t, &RootOptions{Format: "text"}, "1.5")
	require.NoError(t, err)
	assert.Contains(t, output, "✗ sequences")
	assert.Contains(t, output, "✗ context variables")

	output, err = runVersionCmd(t, &RootOptions{Format: "text"}, "3.0")
	require.NoError(t, err)
	assert.Contains(t, output, "✓ sequences")
	assert.Contains(t, output, "✓ identity columns")
}

func TestVersionDefaultsToFlag(t *testing.T) {
	output, err := runVersionCmd(t, &RootOptions{Format: "json", EngineVersion: "2.1"})
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   VersionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "2.1", resp.Data.EngineVersion)
	assert.Equal(t, 2, resp.Data.Major)
	assert.Equal(t, "legacy-rows", resp.Data.Variant)
	assert.True(t, resp.Data.Features.ContextVariables)
	assert.False(t, resp.Data.Features.IdentityColumns)
}

func TestVersionInvalid(t *testing.T) {
	output, err := runVersionCmd(t, &RootOptions{Format: "json"}, "unknown")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E204", resp.Error.Code)
}
