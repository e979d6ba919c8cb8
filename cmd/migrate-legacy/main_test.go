package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/storage"
)

func writeDefinition(t *testing.T, vault, name, content string) string {
	t.Helper()
	dir := filepath.Join(vault, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, models.DefinitionFile), []byte(content), 0644))
	return dir
}

func TestMigrateRewritesLegacyTemplates(t *testing.T) {
	pterm.DisableOutput()
	t.Cleanup(pterm.EnableOutput)

	vault := t.TempDir()
	old := writeDefinition(t, vault, "old", "[prompt]\ntemplate = \"About {{topic}}\"\nversion = \"1.0.0\"\n")
	current := writeDefinition(t, vault, "current", `[metadata]
current_version = "1.0.0"
created_at = "2024-01-01T00:00:00Z"
updated_at = "2024-01-01T00:00:00Z"

[[prompts]]
version = "1.0.0"
content = "About {{topic}}"
created_at = "2024-01-01T00:00:00Z"
`)

	cmd := newCommand()
	cmd.SetArgs([]string{"--vault", vault, "--yes"})
	require.NoError(t, cmd.Execute())

	legacy, err := storage.IsLegacyDefinition(old)
	require.NoError(t, err)
	assert.False(t, legacy)
	assert.FileExists(t, filepath.Join(old, models.DefinitionFile+storage.LegacyBackupSuffix))
	assert.NoFileExists(t, filepath.Join(current, models.DefinitionFile+storage.LegacyBackupSuffix))

	tpl, err := storage.ReadDefinition(old)
	require.NoError(t, err)
	assert.Equal(t, "About {{topic}}", tpl.Content)
}

func TestMigrateMissingVault(t *testing.T) {
	pterm.DisableOutput()
	t.Cleanup(pterm.EnableOutput)

	cmd := newCommand()
	cmd.SetArgs([]string{"--vault", filepath.Join(t.TempDir(), "missing"), "--yes"})
	assert.Error(t, cmd.Execute())
}
