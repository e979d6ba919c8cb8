// Package frontmatter scans and writes the "---" delimited metadata block at the top of
// output files.
//
// Parse is a two-pass scanner: the first pass requires the opening delimiter on the first
// line and finds the next line starting with the delimiter; the second pass slices the
// key/value lines in between. A file with a single delimiter line has no frontmatter.
package frontmatter

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes a frontmatter block.
const Delimiter = "---"

// Field is one key/value pair in write order.
type Field struct {
	Key   string
	Value string
}

// Document is a file split into its frontmatter block and body.
type Document struct {
	// Fields holds unquoted values by key.
	Fields map[string]string
	// Keys lists keys in the order they first appear.
	Keys []string
	// Header is the raw text from the opening delimiter through the closing delimiter line.
	Header string
	// Body is the raw text after the closing delimiter line.
	Body string
}

// Parse splits content into frontmatter and body. It returns false when the content does
// not start with a delimiter line or has no closing delimiter.
func Parse(content string) (*Document, bool) {
	lines := strings.Split(content, "\n")
	if !isDelimiter(lines[0]) {
		return nil, false
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if isDelimiter(lines[i]) {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, false
	}

	doc := &Document{
		Fields: make(map[string]string),
		Header: strings.Join(lines[:end+1], "\n"),
		Body:   strings.Join(lines[end+1:], "\n"),
	}
	for _, line := range lines[1:end] {
		key, value, ok := splitField(line)
		if !ok {
			continue
		}
		if _, seen := doc.Fields[key]; !seen {
			doc.Keys = append(doc.Keys, key)
		}
		doc.Fields[key] = value
	}
	return doc, true
}

// Get returns the unquoted value of key.
func (d *Document) Get(key string) (string, bool) {
	v, ok := d.Fields[key]
	return v, ok
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.Fields[key]
	return ok
}

// BodyEmpty reports whether the body is blank after trimming.
func (d *Document) BodyEmpty() bool {
	return strings.TrimSpace(d.Body) == ""
}

// Render writes fields as a frontmatter block ending with a newline after the closing
// delimiter. Values are written as double-quoted scalars and must be valid UTF-8.
func Render(fields []Field) string {
	var b strings.Builder
	b.WriteString(Delimiter)
	b.WriteByte('\n')
	for _, f := range fields {
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(strconv.Quote(f.Value))
		b.WriteByte('\n')
	}
	b.WriteString(Delimiter)
	b.WriteByte('\n')
	return b.String()
}

func isDelimiter(line string) bool {
	return strings.HasPrefix(strings.TrimRight(line, "\r"), Delimiter)
}

// splitField splits "key: value" on the first colon. Indented lines, comments and lines
// without a key are skipped.
func splitField(line string) (string, string, bool) {
	line = strings.TrimRight(line, "\r")
	if line == "" || line[0] == ' ' || line[0] == '\t' || line[0] == '#' {
		return "", "", false
	}
	idx := strings.IndexByte(line, ':')
	if idx <= 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" {
		return "", "", false
	}
	return key, Unquote(strings.TrimSpace(line[idx+1:])), true
}

// Unquote strips surrounding quotes from a scalar value, decoding YAML escapes in
// quoted values. Plain values are returned unchanged.
func Unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if (first != '"' || last != '"') && (first != '\'' || last != '\'') {
		return value
	}
	var s string
	if err := yaml.Unmarshal([]byte(value), &s); err == nil {
		return s
	}
	return value[1 : len(value)-1]
}
