package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantOK    bool
		wantKeys  []string
		wantBody  string
		bodyEmpty bool
	}{
		{
			name:      "topic file with empty body",
			content:   "---\ntopic: \"Go generics\"\nprompt_version: \"1.0.0\"\ntimestamp: \"2024-01-15T10:30:00Z\"\n---\n\n",
			wantOK:    true,
			wantKeys:  []string{"topic", "prompt_version", "timestamp"},
			wantBody:  "\n",
			bodyEmpty: true,
		},
		{
			name:     "body after frontmatter",
			content:  "---\nversion: \"1.0.0\"\n---\nhello\nworld\n",
			wantOK:   true,
			wantKeys: []string{"version"},
			wantBody: "hello\nworld\n",
		},
		{
			name:      "no trailing newline after closing delimiter",
			content:   "---\ntopic: x\n---",
			wantOK:    true,
			wantKeys:  []string{"topic"},
			wantBody:  "",
			bodyEmpty: true,
		},
		{
			name:      "crlf line endings",
			content:   "---\r\ntopic: \"x\"\r\n---\r\n",
			wantOK:    true,
			wantKeys:  []string{"topic"},
			wantBody:  "",
			bodyEmpty: true,
		},
		{name: "empty file", content: ""},
		{name: "no delimiter", content: "just some text\n"},
		{name: "single delimiter", content: "---\ntopic: \"x\"\nbody without end\n"},
		{name: "delimiter not on first line", content: "\n---\ntopic: x\n---\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, ok := Parse(tt.content)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Nil(t, doc)
				return
			}
			assert.Equal(t, tt.wantKeys, doc.Keys)
			assert.Equal(t, tt.wantBody, doc.Body)
			assert.Equal(t, tt.bodyEmpty, doc.BodyEmpty())
		})
	}
}

func TestParseValues(t *testing.T) {
	content := "---\n" +
		"topic: \"Time: 10:30\"\n" +
		"plain: value with spaces \n" +
		"single: 'it''s'\n" +
		"  indented: ignored\n" +
		"# comment: ignored\n" +
		"no colon line\n" +
		"empty:\n" +
		"---\n"

	doc, ok := Parse(content)
	require.True(t, ok)

	v, _ := doc.Get("topic")
	assert.Equal(t, "Time: 10:30", v)
	v, _ = doc.Get("plain")
	assert.Equal(t, "value with spaces", v)
	v, _ = doc.Get("single")
	assert.Equal(t, "it's", v)
	v, ok = doc.Get("empty")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	assert.False(t, doc.Has("indented"))
	assert.False(t, doc.Has("# comment"))
	assert.Equal(t, []string{"topic", "plain", "single", "empty"}, doc.Keys)
}

func TestParseHeaderPreservesRawBlock(t *testing.T) {
	content := "---\ntopic: \"x\"\nextra: keep me\n---\nbody\n"
	doc, ok := Parse(content)
	require.True(t, ok)
	assert.Equal(t, "---\ntopic: \"x\"\nextra: keep me\n---", doc.Header)
}

func TestRenderRoundTrip(t *testing.T) {
	fields := []Field{
		{Key: "topic", Value: `He said "hi": twice \ back`},
		{Key: "prompt_version", Value: "1.2.3-beta.1"},
		{Key: "timestamp", Value: "2024-01-15T10:30:00Z"},
		{Key: "note", Value: "café\tété 😀"},
	}

	rendered := Render(fields)
	assert.Equal(t, "---\n", rendered[:4])
	assert.Contains(t, rendered, "prompt_version: \"1.2.3-beta.1\"\n")

	doc, ok := Parse(rendered + "\n")
	require.True(t, ok)
	for _, f := range fields {
		got, _ := doc.Get(f.Key)
		assert.Equal(t, f.Value, got, f.Key)
	}
	assert.True(t, doc.BodyEmpty())
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "a", Unquote(`"a"`))
	assert.Equal(t, "", Unquote(`""`))
	assert.Equal(t, `"`, Unquote(`"`))
	assert.Equal(t, "plain", Unquote("plain"))
	assert.Equal(t, "tab\there", Unquote(`"tab\there"`))
	assert.Equal(t, `"mismatched'`, Unquote(`"mismatched'`))
}
