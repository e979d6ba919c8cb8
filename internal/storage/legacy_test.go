package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/models"
)

const legacyDefinition = `[prompt]
template = "Legacy prompt about {{topic}}"
version = "1.2.0"

[[changelog]]
version = "1.0.0"
date = "2024-01-01"
changes = ["Initial version"]

[[changelog]]
version = "1.2.0"
date = 2024-03-01
changes = ["Tightened wording"]
`

func TestReadDefinitionRejectsLegacyLayout(t *testing.T) {
	dir := newTemplateDir(t, t.TempDir(), "old", legacyDefinition)

	_, err := ReadDefinition(dir)
	requireCode(t, err, errors.ErrCodeTomlStructure)
	assert.Contains(t, errors.FlattenHints(err), "migrate-legacy")

	legacy, err := IsLegacyDefinition(dir)
	require.NoError(t, err)
	assert.True(t, legacy)
}

func TestMigrateLegacy(t *testing.T) {
	freezeTime(t)
	dir := newTemplateDir(t, t.TempDir(), "old", legacyDefinition)

	migrated, err := MigrateLegacy(dir)
	require.NoError(t, err)
	assert.True(t, migrated)

	tpl, err := ReadDefinition(dir)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", tpl.Version)
	assert.Equal(t, "Legacy prompt about {{topic}}", tpl.Content)
	assert.Equal(t, "2024-01-01", tpl.Metadata.CreatedAt)
	assert.Equal(t, "2024-01-15T10:30:00Z", tpl.Metadata.UpdatedAt)
	require.Len(t, tpl.Prompts, 1)
	assert.Equal(t, "2024-03-01", tpl.Prompts[0].CreatedAt)

	backup := readTestFile(t, filepath.Join(dir, models.DefinitionFile+LegacyBackupSuffix))
	assert.Equal(t, legacyDefinition, backup)

	again, err := MigrateLegacy(dir)
	require.NoError(t, err)
	assert.False(t, again)
}

func TestMigrateLegacyRejectsBadVersion(t *testing.T) {
	dir := newTemplateDir(t, t.TempDir(), "old", "[prompt]\ntemplate = \"x\"\nversion = \"1.0\"\n")

	_, err := MigrateLegacy(dir)
	requireCode(t, err, errors.ErrCodeTomlVersionFormat)

	legacy, err := IsLegacyDefinition(dir)
	require.NoError(t, err)
	assert.True(t, legacy)
}

func TestMigrateLegacyNoDefinition(t *testing.T) {
	_, err := MigrateLegacy(t.TempDir())
	requireCode(t, err, errors.ErrCodeTomlNotFound)
}
