package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/prompt-vault/internal/errors"
)

const validDefinition = `[metadata]
current_version = "1.1.0"
created_at = "2024-01-01T00:00:00Z"
updated_at = "2024-02-01T00:00:00Z"

[[prompts]]
version = "1.0.0"
content = "Old {{topic}}"
created_at = "2024-01-01T00:00:00Z"

[[prompts]]
version = "1.1.0"
content = """
Write about {{topic}}.
"""
created_at = "2024-02-01T00:00:00Z"
`

const metadataBlock = `[metadata]
current_version = "1.0.0"
created_at = "2024-01-01T00:00:00Z"
updated_at = "2024-01-01T00:00:00Z"
`

func TestReadDefinition(t *testing.T) {
	dir := newTemplateDir(t, t.TempDir(), "blog", validDefinition)

	tpl, err := ReadDefinition(dir)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", tpl.Version)
	assert.Equal(t, "Write about {{topic}}.\n", tpl.Content)
	require.Len(t, tpl.Prompts, 2)
	assert.Equal(t, "1.0.0", tpl.Prompts[0].Version)
	assert.Equal(t, "2024-02-01T00:00:00Z", tpl.Metadata.UpdatedAt)

	rev, ok := tpl.Revision("1.0.0")
	require.True(t, ok)
	assert.Equal(t, "Old {{topic}}", rev.Content)
	_, ok = tpl.Revision("9.9.9")
	assert.False(t, ok)

	again, err := ReadDefinition(dir)
	require.NoError(t, err)
	assert.Equal(t, tpl, again)
}

func TestReadDefinitionMissing(t *testing.T) {
	_, err := ReadDefinition(t.TempDir())
	requireCode(t, err, errors.ErrCodeTomlNotFound)
}

func TestReadDefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
		code errors.ErrorCode
	}{
		{"whitespace only", "  \n\t\n", errors.ErrCodeTomlEmpty},
		{"syntax", "[metadata\ncurrent_version = 1", errors.ErrCodeTomlSyntax},
		{"no metadata", "[[prompts]]\nversion = \"1.0.0\"\ncontent = \"x\"\ncreated_at = \"x\"\n", errors.ErrCodeTomlStructure},
		{"metadata missing updated_at", "[metadata]\ncurrent_version = \"1.0.0\"\ncreated_at = \"x\"\n[[prompts]]\nversion = \"1.0.0\"\ncontent = \"x\"\ncreated_at = \"x\"\n", errors.ErrCodeTomlStructure},
		{"prompts empty", "prompts = []\n" + metadataBlock, errors.ErrCodeTomlStructure},
		{"prompts not a list", "prompts = \"nope\"\n" + metadataBlock, errors.ErrCodeTomlStructure},
		{"revision missing created_at", metadataBlock + "[[prompts]]\nversion = \"1.0.0\"\ncontent = \"x\"\n", errors.ErrCodeTomlStructure},
		{"revision date not a string", metadataBlock + "[[prompts]]\nversion = \"1.0.0\"\ncontent = \"x\"\ncreated_at = 2024-01-01T00:00:00Z\n", errors.ErrCodeTomlStructure},
		{"current version format", "[metadata]\ncurrent_version = \"1.0\"\ncreated_at = \"x\"\nupdated_at = \"x\"\n[[prompts]]\nversion = \"1.0.0\"\ncontent = \"x\"\ncreated_at = \"x\"\n", errors.ErrCodeTomlVersionFormat},
		{"revision version format", metadataBlock + "[[prompts]]\nversion = \"v1.0.0\"\ncontent = \"x\"\ncreated_at = \"x\"\n", errors.ErrCodeTomlVersionFormat},
		{"empty revision version", metadataBlock + "[[prompts]]\nversion = \"\"\ncontent = \"x\"\ncreated_at = \"x\"\n", errors.ErrCodeTomlVersionFormat},
		{"blank content", metadataBlock + "[[prompts]]\nversion = \"1.0.0\"\ncontent = \"  \\n \"\ncreated_at = \"x\"\n", errors.ErrCodeTomlEmptyTemplate},
		{"current version missing", "[metadata]\ncurrent_version = \"2.0.0\"\ncreated_at = \"x\"\nupdated_at = \"x\"\n[[prompts]]\nversion = \"1.0.0\"\ncontent = \"x\"\ncreated_at = \"x\"\n", errors.ErrCodeTomlStructure},
		{"current version duplicated", metadataBlock + "[[prompts]]\nversion = \"1.0.0\"\ncontent = \"a\"\ncreated_at = \"x\"\n[[prompts]]\nversion = \"1.0.0\"\ncontent = \"b\"\ncreated_at = \"x\"\n", errors.ErrCodeTomlStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newTemplateDir(t, t.TempDir(), "tpl", tt.toml)
			_, err := ReadDefinition(dir)
			requireCode(t, err, tt.code)
			assert.Equal(t, filepath.Join(dir, "prompt.toml"), errors.GetAppError(err).Path)
		})
	}
}

func TestReadDefinitionCheckOrder(t *testing.T) {
	t.Run("version format before empty template", func(t *testing.T) {
		toml := metadataBlock +
			"[[prompts]]\nversion = \"1.0.0\"\ncontent = \" \"\ncreated_at = \"x\"\n" +
			"[[prompts]]\nversion = \"bad\"\ncontent = \"x\"\ncreated_at = \"x\"\n"
		_, err := ReadDefinition(newTemplateDir(t, t.TempDir(), "tpl", toml))
		requireCode(t, err, errors.ErrCodeTomlVersionFormat)
	})

	t.Run("structure before version format", func(t *testing.T) {
		toml := metadataBlock +
			"[[prompts]]\nversion = \"bad\"\ncontent = \"x\"\ncreated_at = \"x\"\n" +
			"[[prompts]]\nversion = \"1.0.0\"\ncontent = \"x\"\n"
		_, err := ReadDefinition(newTemplateDir(t, t.TempDir(), "tpl", toml))
		requireCode(t, err, errors.ErrCodeTomlStructure)
	})

	t.Run("first bad version in list order is reported", func(t *testing.T) {
		toml := metadataBlock +
			"[[prompts]]\nversion = \"1.0.0\"\ncontent = \"x\"\ncreated_at = \"x\"\n" +
			"[[prompts]]\nversion = \"first-bad\"\ncontent = \"x\"\ncreated_at = \"x\"\n" +
			"[[prompts]]\nversion = \"second-bad\"\ncontent = \"x\"\ncreated_at = \"x\"\n"
		_, err := ReadDefinition(newTemplateDir(t, t.TempDir(), "tpl", toml))
		requireCode(t, err, errors.ErrCodeTomlVersionFormat)
		assert.Contains(t, err.Error(), "first-bad")
	})
}

func TestReadDefinitionSyntaxErrorHasPosition(t *testing.T) {
	dir := newTemplateDir(t, t.TempDir(), "tpl", "[metadata]\ncurrent_version = \n")
	_, err := ReadDefinition(dir)
	requireCode(t, err, errors.ErrCodeTomlSyntax)
	assert.Contains(t, err.Error(), "line 2")
}

func TestInitTemplateAndAddRevision(t *testing.T) {
	freezeTime(t)
	vault := t.TempDir()

	dir, err := InitTemplate(vault, "essay", "Essay on {{topic}}\nwith \"quotes\" and \\ slashes\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(vault, "essay"), dir)

	tpl, err := ReadDefinition(dir)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", tpl.Version)
	assert.Equal(t, "Essay on {{topic}}\nwith \"quotes\" and \\ slashes\n", tpl.Content)
	assert.Equal(t, "2024-01-15T10:30:00Z", tpl.Metadata.CreatedAt)

	_, err = InitTemplate(vault, "essay", "again")
	requireCode(t, err, errors.ErrCodeValidation)

	tpl, err = AddRevision(dir, "Essay v2 on {{topic}}", "minor")
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", tpl.Version)
	assert.Equal(t, "Essay v2 on {{topic}}", tpl.Content)
	assert.Len(t, tpl.Prompts, 2)

	tpl, err = AddRevision(dir, "Essay v3", "")
	require.NoError(t, err)
	assert.Equal(t, "1.1.1", tpl.Version)
}

func TestInitTemplateRejectsBadNames(t *testing.T) {
	vault := t.TempDir()
	for _, name := range []string{"", "  ", "a/b", "../up", ".hidden"} {
		_, err := InitTemplate(vault, name, "content")
		requireCode(t, err, errors.ErrCodeValidation)
	}
	_, err := InitTemplate(vault, "ok", "   ")
	requireCode(t, err, errors.ErrCodeValidation)
}

func TestAddRevisionRequiresValidDefinition(t *testing.T) {
	_, err := AddRevision(t.TempDir(), "content", "patch")
	requireCode(t, err, errors.ErrCodeTomlNotFound)

	dir := newTemplateDir(t, t.TempDir(), "tpl", validDefinition)
	_, err = AddRevision(dir, "", "patch")
	requireCode(t, err, errors.ErrCodeValidation)
}
