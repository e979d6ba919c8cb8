package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/validation"
)

var schemas = validation.NewValidator()

// ReadDefinition loads the prompt.toml in templateDir and resolves its current revision.
//
// Checks run in a fixed order so the reported error is deterministic: not found, empty,
// syntax, structure, version format (current_version, then each revision in order),
// empty content (each revision in order), current version present exactly once.
func ReadDefinition(templateDir string) (*models.ResolvedTemplate, error) {
	def, err := LoadDefinition(templateDir)
	if err != nil {
		return nil, err
	}

	path := definitionPath(templateDir)
	var current *models.Revision
	for i := range def.Prompts {
		if def.Prompts[i].Version != def.Metadata.CurrentVersion {
			continue
		}
		if current != nil {
			return nil, errors.TomlStructure(path,
				fmt.Sprintf("current_version %q matches more than one revision", def.Metadata.CurrentVersion))
		}
		current = &def.Prompts[i]
	}
	if current == nil {
		return nil, errors.TomlStructure(path,
			fmt.Sprintf("current_version %q does not match any revision", def.Metadata.CurrentVersion))
	}

	return &models.ResolvedTemplate{
		Content:  current.Content,
		Version:  def.Metadata.CurrentVersion,
		Prompts:  def.Prompts,
		Metadata: def.Metadata,
	}, nil
}

// LoadDefinition reads and validates prompt.toml without resolving the current revision.
func LoadDefinition(templateDir string) (*models.Definition, error) {
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

	def, err := decodeDefinition(path, raw)
	if err != nil {
		return nil, err
	}

	if !validation.IsValidVersion(def.Metadata.CurrentVersion) {
		return nil, errors.TomlVersionFormat(path, def.Metadata.CurrentVersion)
	}
	for _, rev := range def.Prompts {
		if !validation.IsValidVersion(rev.Version) {
			return nil, errors.TomlVersionFormat(path, rev.Version)
		}
	}
	for _, rev := range def.Prompts {
		if strings.TrimSpace(rev.Content) == "" {
			return nil, errors.TomlEmptyTemplate(path, rev.Version)
		}
	}
	return def, nil
}

// decodeDefinition validates the decoded document against the schema before building
// the typed definition.
func decodeDefinition(path string, raw map[string]any) (*models.Definition, error) {
	if isLegacy(raw) {
		return nil, errors.TomlStructure(path, "legacy [prompt]/[[changelog]] layout").
			WithHint("Run migrate-legacy to convert it to [metadata] and [[prompts]]")
	}

	if res := schemas.Validate(validation.SchemaDefinition, raw); !res.Valid {
		return nil, errors.TomlStructure(path, res.FirstError())
	}

	meta := raw["metadata"].(map[string]any)
	if res := schemas.Validate(validation.SchemaMetadata, meta); !res.Valid {
		return nil, errors.TomlStructure(path, "metadata: "+res.FirstError())
	}

	entries := tableList(raw["prompts"])
	if entries == nil {
		return nil, errors.TomlStructure(path, "'prompts' must be a list of tables")
	}

	def := &models.Definition{
		Metadata: models.Metadata{
			CurrentVersion: meta["current_version"].(string),
			CreatedAt:      meta["created_at"].(string),
			UpdatedAt:      meta["updated_at"].(string),
		},
		Prompts: make([]models.Revision, 0, len(entries)),
	}
	for i, entry := range entries {
		if res := schemas.Validate(validation.SchemaRevision, entry); !res.Valid {
			return nil, errors.TomlStructure(path, fmt.Sprintf("prompts[%d]: %s", i, res.FirstError()))
		}
		def.Prompts = append(def.Prompts, models.Revision{
			Version:   entry["version"].(string),
			Content:   entry["content"].(string),
			CreatedAt: entry["created_at"].(string),
		})
	}
	return def, nil
}

// tableList returns nil if any element is not a table.
func tableList(v any) []map[string]any {
	switch list := v.(type) {
	case []map[string]any:
		return list
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				return nil
			}
			out = append(out, m)
		}
		return out
	}
	return nil
}

func syntaxError(path string, err error) error {
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		row, col := derr.Position()
		return errors.TomlSyntax(path, fmt.Sprintf("line %d, column %d: %s", row, col, derr.Error()), err)
	}
	return errors.TomlSyntax(path, err.Error(), err)
}

// WriteDefinition encodes def to templateDir/prompt.toml, replacing any existing file.
func WriteDefinition(templateDir string, def *models.Definition) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(def); err != nil {
		return errors.Wrapf(err, "encode %s", definitionPath(templateDir))
	}
	_, err := writeFile(templateDir, models.DefinitionFile, buf.Bytes())
	return err
}

// AddRevision appends content as a new revision above the highest existing version and
// makes it current.
func AddRevision(templateDir, content, level string) (*models.ResolvedTemplate, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.ValidationError("Revision content", "a non-empty string")
	}
	def, err := LoadDefinition(templateDir)
	if err != nil {
		return nil, err
	}

	versions := make([]string, 0, len(def.Prompts))
	for _, rev := range def.Prompts {
		versions = append(versions, rev.Version)
	}
	validation.SortVersions(versions)

	next, err := validation.BumpVersion(versions[len(versions)-1], level)
	if err != nil {
		return nil, errors.TomlVersionFormat(definitionPath(templateDir), versions[len(versions)-1])
	}

	now := Timestamp(nowFunc())
	def.Prompts = append(def.Prompts, models.Revision{Version: next, Content: content, CreatedAt: now})
	def.Metadata.CurrentVersion = next
	def.Metadata.UpdatedAt = now

	if err := WriteDefinition(templateDir, def); err != nil {
		return nil, err
	}
	return ReadDefinition(templateDir)
}

// InitTemplate creates vault/name with a prompt.toml holding content as version 1.0.0.
func InitTemplate(vaultPath, name, content string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", errors.ValidationError("Template name", "a plain directory name")
	}
	if strings.TrimSpace(content) == "" {
		return "", errors.ValidationError("Template content", "a non-empty string")
	}

	templateDir := filepath.Join(vaultPath, name)
	if _, err := os.Stat(definitionPath(templateDir)); err == nil {
		return "", errors.NewAppError(errors.ErrCodeValidation, fmt.Sprintf("Template %s already exists", name)).
			WithPath(templateDir)
	}

	now := Timestamp(nowFunc())
	def := &models.Definition{
		Metadata: models.Metadata{CurrentVersion: "1.0.0", CreatedAt: now, UpdatedAt: now},
		Prompts:  []models.Revision{{Version: "1.0.0", Content: content, CreatedAt: now}},
	}
	if err := WriteDefinition(templateDir, def); err != nil {
		return "", err
	}
	return templateDir, nil
}

func definitionPath(templateDir string) string {
	return filepath.Join(templateDir, models.DefinitionFile)
}
