package models

// Action is something the user can do with a selected template
type Action string

const (
	ActionCreate  Action = "create"
	ActionFill    Action = "fill"
	ActionSelect  Action = "select"
	ActionReset   Action = "reset"
	ActionDelete  Action = "delete"
	ActionCapture Action = "capture"
)

// ActionInfo describes an action in menus and help text
type ActionInfo struct {
	Action      Action
	Label       string
	Description string
}

// Actions lists every action in menu order.
var Actions = []ActionInfo{
	{ActionCreate, "Create", "Start a new topic file and copy the rendered prompt"},
	{ActionFill, "Fill", "Paste the clipboard into an empty topic file"},
	{ActionSelect, "Select", "Copy the prompt an empty topic file was created with"},
	{ActionReset, "Reset", "Clear the body of a filled file, keeping its frontmatter"},
	{ActionDelete, "Delete", "Remove an output file"},
	{ActionCapture, "Capture", "Save the clipboard as a new dated output"},
}

// NeedsFile reports whether the action operates on an existing output file.
func (a Action) NeedsFile() bool {
	switch a {
	case ActionFill, ActionSelect, ActionReset, ActionDelete:
		return true
	default:
		return false
	}
}

// ParseAction returns the action with the given name.
func ParseAction(name string) (Action, bool) {
	for _, info := range Actions {
		if string(info.Action) == name {
			return info.Action, true
		}
	}
	return "", false
}
