package models

// DefinitionFile is the name of the template store file inside a template directory.
const DefinitionFile = "prompt.toml"

// Definition is the current prompt.toml schema
type Definition struct {
	Metadata Metadata   `toml:"metadata"`
	Prompts  []Revision `toml:"prompts"`
}

// Metadata holds the [metadata] table of a definition
type Metadata struct {
	CurrentVersion string `toml:"current_version"`
	CreatedAt      string `toml:"created_at"`
	UpdatedAt      string `toml:"updated_at"`
}

// Revision is one versioned content snapshot of a template
type Revision struct {
	Version   string `toml:"version"`
	Content   string `toml:"content,multiline"`
	CreatedAt string `toml:"created_at"`
}

// ResolvedTemplate is the runtime projection of a definition: the content of the
// revision matching current_version plus the full revision list.
type ResolvedTemplate struct {
	Content  string
	Version  string
	Prompts  []Revision
	Metadata Metadata
}

// Revision returns the revision with the given version.
func (t *ResolvedTemplate) Revision(version string) (Revision, bool) {
	for _, r := range t.Prompts {
		if r.Version == version {
			return r, true
		}
	}
	return Revision{}, false
}

// LegacyDefinition is the earlier prompt.toml layout: a single [prompt] table and a
// [[changelog]] list. It is only read by the migration command.
type LegacyDefinition struct {
	Prompt    LegacyPrompt      `toml:"prompt"`
	Changelog []LegacyChangelog `toml:"changelog"`
}

type LegacyPrompt struct {
	Template string `toml:"template"`
	Version  string `toml:"version"`
}

type LegacyChangelog struct {
	Version string   `toml:"version"`
	Date    string   `toml:"date"`
	Changes []string `toml:"changes"`
}
