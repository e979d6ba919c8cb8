package renderer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/prompt-vault/internal/errors"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []string
	}{
		{"dedup preserves order", "Hello {{topic}}, {{topic}} again", []string{"topic"}},
		{"whitespace trimmed", "{{ tone }} and {{topic}} and {{tone}}", []string{"tone", "topic"}},
		{"no variables", "plain text", nil},
		{"blank token ignored", "{{ }} {{a}}", []string{"a"}},
		{"unterminated token", "{{topic", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractVariables(tt.template))
		})
	}
}

func TestProcessTemplate(t *testing.T) {
	res, err := ProcessTemplate("Hello {{topic}}, {{topic}} again", map[string]string{"topic": "X"})
	require.NoError(t, err)
	assert.Equal(t, "Hello X, X again", res.Content)
	assert.Equal(t, []string{"topic"}, res.Variables)
}

func TestProcessTemplateWhitespaceAndExtraKeys(t *testing.T) {
	res, err := ProcessTemplate("Write about {{  topic }} in a {{tone}} voice", map[string]string{
		"topic":  "Go",
		"tone":   "calm",
		"unused": "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "Write about Go in a calm voice", res.Content)
}

func TestProcessTemplateValuesAreLiteral(t *testing.T) {
	res, err := ProcessTopicTemplate("T: {{topic}}", "$1 and ${topic} {{x}}")
	require.NoError(t, err)
	assert.Equal(t, "T: $1 and ${topic} {{x}}", res.Content)
}

func TestProcessTemplateReportsAllMissing(t *testing.T) {
	_, err := ProcessTemplate("{{a}} {{b}} {{c}}", map[string]string{"b": "1"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingVariable))
	assert.Contains(t, err.Error(), "a, c")
}

func TestProcessTopicTemplateWithoutTopic(t *testing.T) {
	res, err := ProcessTopicTemplate("No placeholders here", "ignored")
	require.NoError(t, err)
	assert.Equal(t, "No placeholders here", res.Content)
	assert.Empty(t, res.Variables)
}

func TestRenderMessages(t *testing.T) {
	out, err := RenderMessages("hello")
	require.NoError(t, err)

	var msgs []Message
	require.NoError(t, json.Unmarshal([]byte(out), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
}
