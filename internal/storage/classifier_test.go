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

func TestDetectorsOnMissingOutputs(t *testing.T) {
	dir := t.TempDir()

	unfilled, err := DetectUnfilledFiles(dir)
	require.NoError(t, err)
	assert.NotNil(t, unfilled)
	assert.Empty(t, unfilled)

	filled, err := DetectFilledFiles(dir)
	require.NoError(t, err)
	assert.Empty(t, filled)

	all, err := DetectAllOutputFiles(dir)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDetectorsClassifyMixedOutputs(t *testing.T) {
	dir := t.TempDir()
	out := models.OutputsPath(dir)

	writeTestFile(t, filepath.Join(out, "empty-topic.md"),
		"---\ntopic: \"Empty: one\"\nprompt_version: \"1.0.0\"\ntimestamp: \"2024-01-15T10:30:00Z\"\n---\n\n")
	writeTestFile(t, filepath.Join(out, "filled-topic.md"),
		"---\ntopic: \"Filled\"\nprompt_version: \"1.1.0\"\ntimestamp: \"2024-01-16T10:30:00Z\"\n---\n\nSome answer\n")
	writeTestFile(t, filepath.Join(out, "2024-01-15_10-30-00.md"),
		"---\nversion: \"1.0.0\"\nmodel: \"claude-sonnet-4\"\ntimestamp: \"2024-01-15T10:30:00Z\"\n---\nsaved\n")
	writeTestFile(t, filepath.Join(out, "plain.md"), "hello\n")
	writeTestFile(t, filepath.Join(out, "blank.md"), "  \n")
	writeTestFile(t, filepath.Join(out, "single-delimiter.md"), "---\ntopic: \"x\"\n")
	writeTestFile(t, filepath.Join(out, "notes.txt"), "---\ntopic: \"ignored\"\n---\n")
	require.NoError(t, os.MkdirAll(filepath.Join(out, "folder.md"), 0755))

	unfilled, err := DetectUnfilledFiles(dir)
	require.NoError(t, err)
	require.Len(t, unfilled, 1)
	assert.Equal(t, models.UnfilledFile{
		Path:     filepath.Join(out, "empty-topic.md"),
		FileName: "empty-topic.md",
		TopicMetadata: models.TopicMetadata{
			Topic:         "Empty: one",
			PromptVersion: "1.0.0",
			Timestamp:     "2024-01-15T10:30:00Z",
		},
	}, unfilled[0])

	filled, err := DetectFilledFiles(dir)
	require.NoError(t, err)
	require.Len(t, filled, 1)
	assert.Equal(t, "Filled", filled[0].Topic)
	assert.Equal(t, "1.1.0", filled[0].PromptVersion)

	all, err := DetectAllOutputFiles(dir)
	require.NoError(t, err)
	byName := make(map[string]models.OutputFile)
	for _, f := range all {
		byName[f.FileName] = f
	}
	require.Len(t, byName, 6)

	assert.Equal(t, models.OutputTypeTopic, byName["empty-topic.md"].Type)
	assert.False(t, byName["empty-topic.md"].HasContent)
	require.NotNil(t, byName["empty-topic.md"].Metadata)
	assert.Equal(t, "Empty: one", byName["empty-topic.md"].Metadata.Topic)

	assert.True(t, byName["filled-topic.md"].HasContent)

	saved := byName["2024-01-15_10-30-00.md"]
	assert.Equal(t, models.OutputTypeOther, saved.Type)
	assert.True(t, saved.HasContent)
	assert.Nil(t, saved.Metadata)
	assert.Equal(t, "claude-sonnet-4", saved.Frontmatter["model"])

	assert.True(t, byName["plain.md"].HasContent)
	assert.Equal(t, models.OutputTypeOther, byName["plain.md"].Type)
	assert.False(t, byName["blank.md"].HasContent)

	single := byName["single-delimiter.md"]
	assert.Equal(t, models.OutputTypeOther, single.Type)
	assert.True(t, single.HasContent)
}

func TestDetectorsFailWhenOutputsIsAFile(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, models.OutputsPath(dir), "not a directory")

	_, err := DetectUnfilledFiles(dir)
	requireCode(t, err, errors.ErrCodeOutputWrite)
	assert.Equal(t, models.OutputsPath(dir), errors.GetAppError(err).Path)

	_, err = DetectAllOutputFiles(dir)
	requireCode(t, err, errors.ErrCodeOutputWrite)
}

func TestTopicFileLifecycle(t *testing.T) {
	freezeTime(t)
	dir := t.TempDir()

	path, err := CreateTopicFile(dir, "Rust lifetimes", "1.2.0")
	require.NoError(t, err)
	created := readTestFile(t, path)

	unfilled, err := DetectUnfilledFiles(dir)
	require.NoError(t, err)
	require.Len(t, unfilled, 1)
	assert.Equal(t, "Rust lifetimes", unfilled[0].Topic)
	assert.Equal(t, "1.2.0", unfilled[0].PromptVersion)
	assert.Equal(t, "2024-01-15T10:30:00Z", unfilled[0].Timestamp)
	before := unfilled[0].TopicMetadata

	_, err = UpdateFileContent(path, "The answer\n")
	require.NoError(t, err)

	unfilled, err = DetectUnfilledFiles(dir)
	require.NoError(t, err)
	assert.Empty(t, unfilled)
	filled, err := DetectFilledFiles(dir)
	require.NoError(t, err)
	require.Len(t, filled, 1)
	assert.Equal(t, before, filled[0].TopicMetadata)

	_, err = ClearFileContent(path)
	require.NoError(t, err)
	assert.Equal(t, created, readTestFile(t, path))

	unfilled, err = DetectUnfilledFiles(dir)
	require.NoError(t, err)
	require.Len(t, unfilled, 1)
	assert.Equal(t, before, unfilled[0].TopicMetadata)

	_, err = ClearFileContent(path)
	require.NoError(t, err)
	assert.Equal(t, created, readTestFile(t, path))

	_, err = RemoveFile(path)
	require.NoError(t, err)
	all, err := DetectAllOutputFiles(dir)
	require.NoError(t, err)
	assert.Empty(t, all)
}
