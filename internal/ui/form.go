package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/prompt-vault/internal/models"
)

// SelectForm handles selection from a list of options
type SelectForm struct {
	options   []SelectOption
	selected  int
	submitted bool
}

// SelectOption represents an option in the select form
type SelectOption struct {
	Label       string
	Description string
	Value       interface{}
}

// NewSelectForm creates a new select form
func NewSelectForm(options []SelectOption) *SelectForm {
	return &SelectForm{
		options:  options,
		selected: 0,
	}
}

// NewActionForm lists every action in menu order.
func NewActionForm() *SelectForm {
	options := make([]SelectOption, len(models.Actions))
	for i, info := range models.Actions {
		options[i] = SelectOption{Label: info.Label, Description: info.Description, Value: info.Action}
	}
	return NewSelectForm(options)
}

// Update handles select form updates
func (f *SelectForm) Update(msg tea.Msg) tea.Cmd {
	if len(f.options) == 0 {
		return nil
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if f.selected > 0 {
				f.selected--
			} else {
				// Wrap to bottom
				f.selected = len(f.options) - 1
			}
		case "down", "j":
			if f.selected < len(f.options)-1 {
				f.selected++
			} else {
				// Wrap to top
				f.selected = 0
			}
		case "enter":
			f.submitted = true
		}
	}
	return nil
}

// View renders the options with the cursor on the selected one
func (f *SelectForm) View() string {
	var lines []string
	for i, opt := range f.options {
		lines = append(lines, CreateOption(opt.Label, opt.Description, i == f.selected)...)
	}
	return strings.Join(lines, "\n")
}

// GetSelected returns the selected option
func (f *SelectForm) GetSelected() *SelectOption {
	if f.selected >= 0 && f.selected < len(f.options) {
		return &f.options[f.selected]
	}
	return nil
}

// SelectedAction returns the selected option's value as an action.
func (f *SelectForm) SelectedAction() (models.Action, bool) {
	opt := f.GetSelected()
	if opt == nil {
		return "", false
	}
	action, ok := opt.Value.(models.Action)
	return action, ok
}

// IsSubmitted returns whether an option has been selected
func (f *SelectForm) IsSubmitted() bool {
	return f.submitted
}

// Reset clears the submitted flag and keeps the cursor where it was
func (f *SelectForm) Reset() {
	f.submitted = false
}

// TopicForm asks for the topic of a new topic file
type TopicForm struct {
	input     textinput.Model
	submitted bool
	err       string
}

// NewTopicForm creates a focused topic input
func NewTopicForm() *TopicForm {
	input := textinput.New()
	input.Placeholder = "e.g. Go generics in practice"
	input.CharLimit = 200
	input.Width = 60
	input.Focus()
	return &TopicForm{input: input}
}

// Update handles topic form updates. Enter with a blank topic keeps the form open.
func (f *TopicForm) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		if f.Value() == "" {
			f.err = "Topic cannot be empty"
			return nil
		}
		f.submitted = true
		return nil
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	f.err = ""
	return cmd
}

// Value returns the trimmed topic
func (f *TopicForm) Value() string {
	return strings.TrimSpace(f.input.Value())
}

// SetValue replaces the topic text
func (f *TopicForm) SetValue(s string) {
	f.input.SetValue(s)
}

// IsSubmitted returns whether a topic has been entered
func (f *TopicForm) IsSubmitted() bool {
	return f.submitted
}

// View renders the label, input and any validation message
func (f *TopicForm) View() string {
	parts := []string{StyleFormLabel.Render("Topic"), f.input.View()}
	if f.err != "" {
		parts = append(parts, CreateStatus(f.err, "error"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
