package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsCmd_TableOutput(t *testing.T) {
	out, err := runCLI(t, "commands")
	require.NoError(t, err)

	assert.Contains(t, out, "COMMAND")
	assert.Contains(t, out, "ask")
	assert.Contains(t, out, "history list")
	assert.Contains(t, out, "history show")
	assert.Contains(t, out, "history clear")
	assert.Contains(t, out, "seed")
	assert.NotContains(t, out, "completion")
}

func TestCommandsCmd_Filter(t *testing.T) {
	out, err := runCLI(t, "commands", "--filter", "seed")
	require.NoError(t, err)

	assert.Contains(t, out, "seed")
	assert.NotContains(t, out, "history list")
}

func TestCommandsCmd_JSONOutput(t *testing.T) {
	out, err := runCLI(t, "-o", "json", "commands")
	require.NoError(t, err)

	var entries []commandEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.NotEmpty(t, entries)

	byPath := make(map[string]commandEntry)
	for _, e := range entries {
		byPath[e.Path] = e
	}

	seed, ok := byPath["seed"]
	require.True(t, ok, "seed command should be listed")
	flagNames := make(map[string]string)
	for _, f := range seed.Flags {
		flagNames[f.Name] = f.Type
	}
	assert.Equal(t, "string", flagNames["db"])
	assert.Equal(t, "bool", flagNames["force"])

	askEntry, ok := byPath["ask"]
	require.True(t, ok, "ask command should be listed")
	assert.Equal(t, "[question...]", askEntry.Args)
}
