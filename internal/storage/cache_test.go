package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/models"
)

const cacheDefinition = `[metadata]
current_version = "1.0.0"
created_at = "2024-01-01T00:00:00Z"
updated_at = "2024-01-01T00:00:00Z"

[[prompts]]
version = "1.0.0"
content = "About {{topic}}"
created_at = "2024-01-01T00:00:00Z"
`

func TestDefinitionCacheReusesUnchangedFile(t *testing.T) {
	dir := newTemplateDir(t, t.TempDir(), "blog", cacheDefinition)
	cache := NewDefinitionCache()

	first, err := cache.Get(dir)
	require.NoError(t, err)
	second, err := cache.Get(dir)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())
}

func TestDefinitionCacheSeesRevisions(t *testing.T) {
	freezeTime(t)
	dir := newTemplateDir(t, t.TempDir(), "blog", cacheDefinition)
	cache := NewDefinitionCache()

	tpl, err := cache.Get(dir)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", tpl.Version)

	_, err = AddRevision(dir, "Longer piece about {{topic}}", "minor")
	require.NoError(t, err)

	tpl, err = cache.Get(dir)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", tpl.Version)
	assert.Equal(t, "Longer piece about {{topic}}", tpl.Content)
}

func TestDefinitionCacheDoesNotKeepErrors(t *testing.T) {
	dir := newTemplateDir(t, t.TempDir(), "blog", cacheDefinition)
	cache := NewDefinitionCache()

	_, err := cache.Get(dir)
	require.NoError(t, err)

	writeTestFile(t, filepath.Join(dir, models.DefinitionFile), "   ")
	_, err = cache.Get(dir)
	requireCode(t, err, errors.ErrCodeTomlEmpty)
	assert.Zero(t, cache.Len())

	require.NoError(t, os.Remove(filepath.Join(dir, models.DefinitionFile)))
	_, err = cache.Get(dir)
	requireCode(t, err, errors.ErrCodeTomlNotFound)
}

func TestDefinitionCacheCleanup(t *testing.T) {
	vault := t.TempDir()
	blog := newTemplateDir(t, vault, "blog", cacheDefinition)
	notes := newTemplateDir(t, vault, "notes", cacheDefinition)
	cache := NewDefinitionCache()

	_, err := cache.Get(blog)
	require.NoError(t, err)
	_, err = cache.Get(notes)
	require.NoError(t, err)

	cache.Cleanup([]models.TemplateInfo{{Name: "blog", Path: blog, HasToml: true}})
	assert.Equal(t, 1, cache.Len())
}
