package main

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootHasSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"generate", "catalog", "tui", "version"} {
		assert.Contains(t, names, want)
	}
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
}

func TestCatalogText(t *testing.T) {
	out, _, err := execute(t, "catalog")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "AGENT"))
	assert.Contains(t, lines[1], "OpenAI")
	assert.Contains(t, lines[1], "Allow")
	assert.Contains(t, lines[5], "CCBot")
	assert.Contains(t, lines[5], "Disallow")
}

func TestCatalogMarkdown(t *testing.T) {
	out, _, err := execute(t, "catalog", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "## AI crawler catalog")
	assert.Contains(t, out, "| Google-Extended |")
}

func TestCatalogUnknownFormat(t *testing.T) {
	_, _, err := execute(t, "catalog", "-f", "yaml")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "llmsgen version "+getVersion())
	assert.NotEmpty(t, getCommit())
}

func TestMuteLogging(t *testing.T) {
	ctx := context.Background()
	restore := muteLogging()
	assert.False(t, slog.Default().Enabled(ctx, slog.LevelError))

	restore()
	assert.True(t, slog.Default().Enabled(ctx, slog.LevelError))
}
