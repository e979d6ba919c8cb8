package models

import (
	"fmt"
	"path/filepath"
)

// OutputsDir is the directory inside a template directory holding output files.
const OutputsDir = "outputs"

// Frontmatter keys written by the tool.
const (
	KeyTopic         = "topic"
	KeyPromptVersion = "prompt_version"
	KeyTimestamp     = "timestamp"
	KeyVersion       = "version"
	KeyModel         = "model"
)

// OutputType tags an output file by its frontmatter shape
type OutputType string

const (
	OutputTypeTopic OutputType = "topic"
	OutputTypeOther OutputType = "other"
)

// TopicMetadata is the frontmatter carried by topic files
type TopicMetadata struct {
	Topic         string `json:"topic"`
	PromptVersion string `json:"prompt_version"`
	Timestamp     string `json:"timestamp"`
}

// TopicFile is a topic output file located by the classifier.
type TopicFile struct {
	Path     string `json:"path"`
	FileName string `json:"fileName"`
	TopicMetadata
}

// UnfilledFile and FilledFile differ only in which detector produced them.
type (
	UnfilledFile = TopicFile
	FilledFile   = TopicFile
)

// OutputFile is any .md file in an outputs directory.
type OutputFile struct {
	Path       string         `json:"path"`
	FileName   string         `json:"fileName"`
	HasContent bool           `json:"hasContent"`
	Type       OutputType     `json:"type"`
	Metadata   *TopicMetadata `json:"metadata,omitempty"`
	// Frontmatter holds the fields of non-topic files, such as a saved output's model.
	Frontmatter map[string]string `json:"frontmatter,omitempty"`
}

// FromTopicFile converts a classifier entry into the generic shape used by file lists.
func FromTopicFile(f TopicFile, hasContent bool) OutputFile {
	meta := f.TopicMetadata
	return OutputFile{
		Path:       f.Path,
		FileName:   f.FileName,
		HasContent: hasContent,
		Type:       OutputTypeTopic,
		Metadata:   &meta,
	}
}

// FilterValue implements list.Item
func (o OutputFile) FilterValue() string {
	if o.Metadata != nil && o.Metadata.Topic != "" {
		return cleanString(o.Metadata.Topic + " " + o.FileName)
	}
	return cleanString(o.FileName)
}

// Title implements list.DefaultItem
func (o OutputFile) Title() string {
	if o.Metadata != nil && o.Metadata.Topic != "" {
		return cleanString(o.Metadata.Topic)
	}
	return cleanString(o.FileName)
}

// Description implements list.DefaultItem
func (o OutputFile) Description() string {
	state := "empty"
	if o.HasContent {
		state = "filled"
	}
	if o.Metadata != nil && o.Metadata.PromptVersion != "" {
		return cleanString(fmt.Sprintf("%s • v%s • %s", o.FileName, o.Metadata.PromptVersion, state))
	}
	return cleanString(fmt.Sprintf("%s • %s", o.FileName, state))
}

// OutputsPath returns the outputs directory for a template directory.
func OutputsPath(templateDir string) string {
	return filepath.Join(templateDir, OutputsDir)
}
