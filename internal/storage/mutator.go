package storage

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/frontmatter"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/validation"
)

// SaveOutputFileLayout names saved outputs. Two saves in the same second overwrite.
const SaveOutputFileLayout = "2006-01-02_15-04-05"

var unsafeFileChars = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_", "/", "_",
	`\`, "_", "|", "_", "?", "_", "*", "_",
)

// SanitizeFileName replaces characters that are unsafe in file names with "_".
func SanitizeFileName(name string) string {
	return unsafeFileChars.Replace(name)
}

// CreateTopicFile writes outputs/<sanitized topic>.md holding only frontmatter. The
// frontmatter keeps the topic as typed. An existing file with the same name is
// overwritten.
func CreateTopicFile(templateDir, topic, promptVersion string) (string, error) {
	switch {
	case templateDir == "":
		return "", errors.ValidationError("Template path", "a non-empty string")
	case topic == "":
		return "", errors.ValidationError("Topic", "a non-empty string")
	case !utf8.ValidString(topic):
		return "", errors.ValidationError("Topic", "valid UTF-8 text")
	case promptVersion == "":
		return "", errors.ValidationError("Prompt version", "a non-empty string")
	}

	header := frontmatter.Render([]frontmatter.Field{
		{Key: models.KeyTopic, Value: topic},
		{Key: models.KeyPromptVersion, Value: promptVersion},
		{Key: models.KeyTimestamp, Value: Timestamp(nowFunc())},
	})
	return writeFile(models.OutputsPath(templateDir), SanitizeFileName(topic)+".md", []byte(header+"\n"))
}

// UpdateFileContent appends content to the end of an existing file.
func UpdateFileContent(filePath, content string) (string, error) {
	switch {
	case filePath == "":
		return "", errors.ValidationError("File path", "a non-empty string")
	case content == "":
		return "", errors.ValidationError("Content", "a non-empty string")
	}

	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return "", fileError(filePath, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return "", writeError(filepath.Dir(filePath), err)
	}
	if err := f.Close(); err != nil {
		return "", writeError(filepath.Dir(filePath), err)
	}
	return filePath, nil
}

// ClearFileContent keeps the frontmatter block and drops the body. Files without a
// complete frontmatter block are left untouched.
func ClearFileContent(filePath string) (string, error) {
	if filePath == "" {
		return "", errors.ValidationError("File path", "a non-empty string")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fileError(filePath, err)
	}
	doc, ok := frontmatter.Parse(string(data))
	if !ok {
		return "", errors.FileFormatError(filePath, "no frontmatter block found")
	}

	if err := os.WriteFile(filePath, []byte(doc.Header+"\n\n"), filePerm); err != nil {
		return "", fileError(filePath, err)
	}
	return filePath, nil
}

// RemoveFile deletes an output file.
func RemoveFile(filePath string) (string, error) {
	if filePath == "" {
		return "", errors.ValidationError("File path", "a non-empty string")
	}
	if err := os.Remove(filePath); err != nil {
		return "", fileError(filePath, err)
	}
	return filePath, nil
}

// SaveOptions describes a saved output. Timestamp defaults to now.
type SaveOptions struct {
	Version   string
	Model     string
	Timestamp string
}

// SaveOutput writes content to outputs/YYYY-MM-DD_HH-MM-SS.md under a version/model/
// timestamp frontmatter block. The file name uses the local time of the timestamp.
func SaveOutput(templateDir, content string, opts SaveOptions) (string, error) {
	switch {
	case templateDir == "":
		return "", errors.ValidationError("Template path", "a non-empty string")
	case content == "":
		return "", errors.ValidationError("Content", "a non-empty string")
	case opts.Version == "":
		return "", errors.ValidationError("Version", "a non-empty string")
	}
	if err := validation.ValidateModel(opts.Model); err != nil {
		return "", err
	}

	ts := opts.Timestamp
	if ts == "" {
		ts = Timestamp(nowFunc())
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return "", errors.ValidationError("Timestamp", "an ISO-8601 date-time")
	}

	header := frontmatter.Render([]frontmatter.Field{
		{Key: models.KeyVersion, Value: opts.Version},
		{Key: models.KeyModel, Value: strings.TrimSpace(opts.Model)},
		{Key: models.KeyTimestamp, Value: ts},
	})
	name := t.Local().Format(SaveOutputFileLayout) + ".md"
	return writeFile(models.OutputsPath(templateDir), name, []byte(header+"\n"+content+"\n"))
}
