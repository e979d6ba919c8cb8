package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dpshade/prompt-vault/internal/service"
)

// previewStyle picks the glamour style for previews. GLAMOUR_STYLE wins; terminals
// without 256 colors get glamour's auto detection.
func previewStyle(profile termenv.Profile) glamour.TermRendererOption {
	if name := os.Getenv("GLAMOUR_STYLE"); name != "" {
		return glamour.WithStandardStyle(name)
	}
	if profile != termenv.TrueColor && profile != termenv.ANSI256 {
		return glamour.WithAutoStyle()
	}
	if lipgloss.HasDarkBackground() {
		return glamour.WithStandardStyle("dark")
	}
	return glamour.WithStandardStyle("light")
}

// newPreviewRenderer builds the renderer for the success page at the given wrap width.
func newPreviewRenderer(wordWrap int) (*glamour.TermRenderer, error) {
	profile := termenv.ColorProfile()
	return glamour.NewTermRenderer(
		previewStyle(profile),
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(wordWrap),
	)
}

// previewMarkdown builds the success page body for a finished flow.
func previewMarkdown(res *service.Result) string {
	var b strings.Builder
	if res.Path != "" {
		fmt.Fprintf(&b, "`%s`\n\n", res.Path)
	}
	if res.Prompt != "" {
		b.WriteString("```\n")
		b.WriteString(strings.TrimRight(res.Prompt, "\n"))
		b.WriteString("\n```\n")
	}
	return b.String()
}

// renderPreview renders markdown with r, falling back to the raw text.
func renderPreview(r *glamour.TermRenderer, md string) string {
	if r == nil || md == "" {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
