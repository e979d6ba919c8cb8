package errors

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// ErrorHandler provides interface-specific error handling
type ErrorHandler interface {
	HandleError(err error) error
	FormatError(err error) string
}

// CLIErrorHandler handles errors for the headless commands
type CLIErrorHandler struct {
	Verbose bool
	log     *zap.SugaredLogger
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(verbose bool, log *zap.SugaredLogger) *CLIErrorHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CLIErrorHandler{Verbose: verbose, log: log}
}

// HandleError logs the error and returns one whose message is ready for the terminal.
func (h *CLIErrorHandler) HandleError(err error) error {
	if err == nil {
		return nil
	}
	appErr := GetAppError(err)
	logError(h.log, appErr)
	return New(h.FormatError(appErr))
}

// FormatError formats an error for CLI display
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	var b strings.Builder
	fmt.Fprintf(&b, "❌ %s", appErr.Message)
	for _, hint := range hintsOf(appErr) {
		fmt.Fprintf(&b, "\n   %s", hint)
	}
	if h.Verbose {
		fmt.Fprintf(&b, "\n   [%s/%s]", appErr.Category, appErr.Code)
		if appErr.Cause != nil {
			fmt.Fprintf(&b, "\n   Caused by: %v", appErr.Cause)
		}
	}
	return b.String()
}

// FormatWarning formats a warning line for CLI display
func (h *CLIErrorHandler) FormatWarning(w Warning) string {
	return fmt.Sprintf("⚠️  %s", w.Message)
}

// TUIErrorHandler handles errors for the interactive shell
type TUIErrorHandler struct {
	ShowDetails bool
	log         *zap.SugaredLogger
}

// NewTUIErrorHandler creates a new TUI error handler
func NewTUIErrorHandler(showDetails bool, log *zap.SugaredLogger) *TUIErrorHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &TUIErrorHandler{ShowDetails: showDetails, log: log}
}

// HandleError logs the error to the log file; the TUI owns the terminal.
func (h *TUIErrorHandler) HandleError(err error) error {
	if err == nil {
		return nil
	}
	appErr := GetAppError(err)
	logError(h.log, appErr)
	return appErr
}

// FormatError formats an error for TUI display
func (h *TUIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	lines := []string{appErr.Message}
	lines = append(lines, hintsOf(appErr)...)
	if h.ShowDetails && appErr.Cause != nil {
		lines = append(lines, fmt.Sprintf("Details: %v", appErr.Cause))
	}
	return strings.Join(lines, "\n")
}

// GetErrorStyle returns the icon and color the TUI uses for an error's category
func (h *TUIErrorHandler) GetErrorStyle(err error) (string, lipgloss.Color) {
	appErr := GetAppError(err)

	switch appErr.Category {
	case CategoryFilesystem:
		return "❌", lipgloss.Color("#ff6b6b")
	case CategoryConfiguration:
		return "⚙️", lipgloss.Color("#ff9f43")
	case CategoryInput, CategoryValidation:
		return "⚠️", lipgloss.Color("#feca57")
	case CategoryEnvironment:
		return "🔧", lipgloss.Color("#48cae4")
	default:
		return "❌", lipgloss.Color("#ff6b6b")
	}
}

func hintsOf(appErr *AppError) []string {
	flat := FlattenHints(appErr)
	if flat == "" {
		return nil
	}
	var hints []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(flat, "\n") {
		line = strings.TrimSpace(line)
		// FlattenHints separates hints with "--" lines.
		if line == "" || line == "--" || seen[line] {
			continue
		}
		seen[line] = true
		hints = append(hints, line)
	}
	return hints
}

func logError(log *zap.SugaredLogger, appErr *AppError) {
	fields := []interface{}{
		"code", appErr.Code,
		"category", appErr.Category,
	}
	if appErr.Path != "" {
		fields = append(fields, "path", appErr.Path)
	}
	if appErr.Cause != nil {
		fields = append(fields, "cause", appErr.Cause.Error())
	}
	log.Errorw(appErr.Message, fields...)
}
