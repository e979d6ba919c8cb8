package storage

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/validation"
)

// LegacyBackupSuffix is appended to prompt.toml when a legacy definition is migrated.
const LegacyBackupSuffix = ".legacy"

func isLegacy(raw map[string]any) bool {
	if _, ok := raw["metadata"]; ok {
		return false
	}
	_, ok := raw["prompt"].(map[string]any)
	return ok
}

// IsLegacyDefinition reports whether templateDir holds a prompt.toml in the legacy layout.
func IsLegacyDefinition(templateDir string) (bool, error) {
	raw, err := readRaw(templateDir)
	if err != nil {
		return false, err
	}
	return isLegacy(raw), nil
}

// MigrateLegacy rewrites a legacy prompt.toml in the current layout. The original is kept
// next to it with LegacyBackupSuffix. It returns false when there was nothing to migrate.
//
// The legacy layout only stored the latest template text, so the result has a single
// revision; its created_at comes from the matching changelog entry when there is one.
func MigrateLegacy(templateDir string) (bool, error) {
	path := definitionPath(templateDir)
	raw, err := readRaw(templateDir)
	if err != nil {
		return false, err
	}
	if !isLegacy(raw) {
		return false, nil
	}

	legacy := decodeLegacy(raw)
	if strings.TrimSpace(legacy.Prompt.Template) == "" {
		return false, errors.TomlEmptyTemplate(path, legacy.Prompt.Version)
	}
	if !validation.IsValidVersion(legacy.Prompt.Version) {
		return false, errors.TomlVersionFormat(path, legacy.Prompt.Version)
	}

	now := Timestamp(nowFunc())
	created := now
	revisionCreated := now
	dates := make([]string, 0, len(legacy.Changelog))
	for _, entry := range legacy.Changelog {
		if entry.Date == "" {
			continue
		}
		dates = append(dates, entry.Date)
		if entry.Version == legacy.Prompt.Version {
			revisionCreated = entry.Date
		}
	}
	if len(dates) > 0 {
		sort.Strings(dates)
		created = dates[0]
	}

	def := &models.Definition{
		Metadata: models.Metadata{
			CurrentVersion: legacy.Prompt.Version,
			CreatedAt:      created,
			UpdatedAt:      now,
		},
		Prompts: []models.Revision{{
			Version:   legacy.Prompt.Version,
			Content:   legacy.Prompt.Template,
			CreatedAt: revisionCreated,
		}},
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return false, errors.TomlNotFound(path, err)
	}
	if err := os.WriteFile(path+LegacyBackupSuffix, original, filePerm); err != nil {
		return false, writeError(templateDir, err)
	}
	if err := WriteDefinition(templateDir, def); err != nil {
		return false, err
	}
	if _, err := ReadDefinition(templateDir); err != nil {
		return false, err
	}
	return true, nil
}

func readRaw(templateDir string) (map[string]any, error) {
	path := definitionPath(templateDir)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.TomlNotFound(path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.TomlEmpty(path)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, syntaxError(path, err)
	}
	return raw, nil
}

// decodeLegacy reads the legacy tables leniently: TOML dates are kept as their text.
func decodeLegacy(raw map[string]any) models.LegacyDefinition {
	var legacy models.LegacyDefinition
	if prompt, ok := raw["prompt"].(map[string]any); ok {
		legacy.Prompt.Template = scalar(prompt["template"])
		legacy.Prompt.Version = scalar(prompt["version"])
	}
	for _, entry := range tableList(raw["changelog"]) {
		item := models.LegacyChangelog{
			Version: scalar(entry["version"]),
			Date:    scalar(entry["date"]),
		}
		if changes, ok := entry["changes"].([]any); ok {
			for _, c := range changes {
				item.Changes = append(item.Changes, scalar(c))
			}
		}
		legacy.Changelog = append(legacy.Changelog, item)
	}
	return legacy
}

func scalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
