package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/frontmatter"
	"github.com/dpshade/prompt-vault/internal/models"
)

type outputEntry struct {
	path    string
	name    string
	content string
	doc     *frontmatter.Document // nil without frontmatter
}

func (e outputEntry) isTopic() bool {
	return e.doc != nil && e.doc.Has(models.KeyTopic)
}

func (e outputEntry) hasContent() bool {
	if e.doc != nil {
		return !e.doc.BodyEmpty()
	}
	return strings.TrimSpace(e.content) != ""
}

func (e outputEntry) topicFile() models.TopicFile {
	topic, _ := e.doc.Get(models.KeyTopic)
	version, _ := e.doc.Get(models.KeyPromptVersion)
	ts, _ := e.doc.Get(models.KeyTimestamp)
	return models.TopicFile{
		Path:     e.path,
		FileName: e.name,
		TopicMetadata: models.TopicMetadata{
			Topic:         topic,
			PromptVersion: version,
			Timestamp:     ts,
		},
	}
}

// readOutputs reads every .md file in templateDir/outputs. A missing outputs directory
// yields no entries.
func readOutputs(templateDir string) ([]outputEntry, error) {
	dir := models.OutputsPath(templateDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, writeError(dir, err)
	}

	var outputs []outputEntry
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, writeError(dir, err)
		}
		out := outputEntry{path: path, name: entry.Name(), content: string(data)}
		if doc, ok := frontmatter.Parse(out.content); ok {
			out.doc = doc
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// DetectUnfilledFiles returns the topic files whose body is blank.
func DetectUnfilledFiles(templateDir string) ([]models.UnfilledFile, error) {
	return detectTopicFiles(templateDir, false)
}

// DetectFilledFiles returns the topic files whose body has content.
func DetectFilledFiles(templateDir string) ([]models.FilledFile, error) {
	return detectTopicFiles(templateDir, true)
}

func detectTopicFiles(templateDir string, filled bool) ([]models.TopicFile, error) {
	outputs, err := readOutputs(templateDir)
	if err != nil {
		return nil, err
	}

	files := make([]models.TopicFile, 0, len(outputs))
	for _, out := range outputs {
		if !out.isTopic() || out.hasContent() != filled {
			continue
		}
		files = append(files, out.topicFile())
	}
	return files, nil
}

// DetectAllOutputFiles classifies every .md file regardless of fill state.
func DetectAllOutputFiles(templateDir string) ([]models.OutputFile, error) {
	outputs, err := readOutputs(templateDir)
	if err != nil {
		return nil, err
	}

	files := make([]models.OutputFile, 0, len(outputs))
	for _, out := range outputs {
		file := models.OutputFile{
			Path:       out.path,
			FileName:   out.name,
			HasContent: out.hasContent(),
			Type:       models.OutputTypeOther,
		}
		if out.isTopic() {
			file.Type = models.OutputTypeTopic
			meta := out.topicFile().TopicMetadata
			file.Metadata = &meta
		} else if out.doc != nil && len(out.doc.Fields) > 0 {
			file.Frontmatter = out.doc.Fields
		}
		files = append(files, file)
	}
	return files, nil
}
