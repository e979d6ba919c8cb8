package models

import "strings"

// TemplateInfo is one template directory found by the vault scanner
type TemplateInfo struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	HasToml bool   `json:"hasToml"`
}

// FilterValue implements list.Item
func (t TemplateInfo) FilterValue() string {
	return cleanString(t.Name)
}

// Title implements list.DefaultItem
func (t TemplateInfo) Title() string {
	return cleanString(t.Name)
}

// Description implements list.DefaultItem
func (t TemplateInfo) Description() string {
	if !t.HasToml {
		return "missing " + DefinitionFile
	}
	return cleanString(t.Path)
}

// cleanString removes characters that break list rendering
func cleanString(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(' ')
		case r >= 32 && r != 127:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
