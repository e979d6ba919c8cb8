package renderer

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/dpshade/prompt-vault/internal/errors"
)

// TopicVariable is the variable bound by ProcessTopicTemplate.
const TopicVariable = "topic"

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Result is a rendered template and the variables it declared
type Result struct {
	Content   string
	Variables []string
}

// ExtractVariables returns the unique {{name}} tokens in first-seen order.
func ExtractVariables(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range variablePattern.FindAllStringSubmatch(template, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// ProcessTemplate substitutes every supplied variable. All variables missing from vars
// are reported together; keys the template does not use are ignored.
func ProcessTemplate(template string, vars map[string]string) (*Result, error) {
	declared := ExtractVariables(template)

	var missing []string
	for _, name := range declared {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.MissingVariables(missing)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	content := template
	for _, key := range keys {
		pattern := regexp.MustCompile(`\{\{\s*` + regexp.QuoteMeta(key) + `\s*\}\}`)
		content = pattern.ReplaceAllLiteralString(content, vars[key])
	}

	return &Result{Content: content, Variables: declared}, nil
}

// ProcessTopicTemplate binds the topic variable.
func ProcessTopicTemplate(template, topic string) (*Result, error) {
	return ProcessTemplate(template, map[string]string{TopicVariable: topic})
}

// Message represents a chat message for LLM APIs
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RenderMessages renders content as a single-message JSON array for LLM APIs
func RenderMessages(content string) (string, error) {
	messages := []Message{{Role: "user", Content: content}}

	jsonBytes, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal messages")
	}
	return string(jsonBytes), nil
}
