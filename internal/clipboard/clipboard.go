package clipboard

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dpshade/prompt-vault/internal/errors"
)

const (
	// MaxSize is the largest clipboard payload accepted, in bytes.
	MaxSize = 1024 * 1024
	// ShortLength is the length below which content triggers a warning.
	ShortLength = 3
)

// Reader returns the current clipboard text.
type Reader interface {
	Read(ctx context.Context) (*Content, error)
}

// Writer replaces the clipboard text.
type Writer interface {
	Write(ctx context.Context, text string) error
}

// Clipboard reads and writes.
type Clipboard interface {
	Reader
	Writer
}

// Prober is implemented by clipboards backed by external utilities.
type Prober interface {
	Available() bool
	InstallInstructions() string
}

// Content is validated clipboard text plus any non-fatal warnings.
type Content struct {
	Text     string
	Warnings []errors.Warning
}

// Inspect validates raw clipboard output. Surrounding whitespace is trimmed.
func Inspect(raw string) (*Content, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, errors.NewAppError(errors.ErrCodeClipboardEmpty, "Clipboard is empty").
			WithHint("Copy some text and try again")
	}
	if len(text) > MaxSize {
		return nil, errors.NewAppError(errors.ErrCodeClipboardTooLarge,
			fmt.Sprintf("Clipboard content is too large (%d bytes, limit %d)", len(text), MaxSize)).
			WithHint("Save large content to the file directly")
	}
	if isBinary(text) {
		return nil, errors.NewAppError(errors.ErrCodeClipboardBinary, "Clipboard contains binary or control characters").
			WithHint("Copy plain text and try again")
	}

	content := &Content{Text: text}
	if n := utf8.RuneCountInString(text); n < ShortLength {
		content.Warnings = append(content.Warnings, errors.ClipboardShort(n))
	}
	return content, nil
}

func isBinary(s string) bool {
	if !utf8.ValidString(s) {
		return true
	}
	for _, r := range s {
		if r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}

type command struct {
	name string
	args []string
}

func (c command) String() string {
	return strings.Join(append([]string{c.name}, c.args...), " ")
}

func writeCommands(goos string) []command {
	switch goos {
	case "darwin":
		return []command{{name: "pbcopy"}}
	case "linux":
		return []command{
			{name: "xclip", args: []string{"-selection", "clipboard"}},
			{name: "xsel", args: []string{"--clipboard", "--input"}},
			{name: "wl-copy"},
		}
	case "windows":
		return []command{{name: "cmd", args: []string{"/c", "clip"}}}
	default:
		return nil
	}
}

func readCommands(goos string) []command {
	switch goos {
	case "darwin":
		return []command{{name: "pbpaste"}}
	case "linux":
		return []command{
			{name: "xclip", args: []string{"-selection", "clipboard", "-o"}},
			{name: "xsel", args: []string{"--clipboard", "--output"}},
			{name: "wl-paste", args: []string{"--no-newline"}},
		}
	case "windows":
		return []command{{name: "powershell", args: []string{"-NoProfile", "-Command", "Get-Clipboard"}}}
	default:
		return nil
	}
}

// System talks to the OS clipboard through the platform's command-line utilities.
type System struct {
	goos     string
	lookPath func(string) (string, error)
	run      func(ctx context.Context, c command, stdin string) (string, error)
}

// NewSystem returns the clipboard for the running platform.
func NewSystem() *System {
	return &System{goos: runtime.GOOS, lookPath: exec.LookPath, run: runCommand}
}

func runCommand(ctx context.Context, c command, stdin string) (string, error) {
	cmd := exec.CommandContext(ctx, c.name, c.args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", errors.Wrapf(err, "%s: %s", c, msg)
		}
		return "", errors.Wrapf(err, "%s", c)
	}
	return stdout.String(), nil
}

// Write copies text using the first utility that succeeds.
func (s *System) Write(ctx context.Context, text string) error {
	_, err := s.firstSuccessful(ctx, writeCommands(s.goos), text)
	return err
}

// Read pastes with the first utility that succeeds and validates the result.
func (s *System) Read(ctx context.Context) (*Content, error) {
	out, err := s.firstSuccessful(ctx, readCommands(s.goos), "")
	if err != nil {
		return nil, err
	}
	return Inspect(out)
}

func (s *System) firstSuccessful(ctx context.Context, cmds []command, stdin string) (string, error) {
	var lastErr error
	tried := false
	for _, c := range cmds {
		if _, err := s.lookPath(c.name); err != nil {
			continue
		}
		tried = true
		out, err := s.run(ctx, c, stdin)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}

	if !tried {
		return "", errors.NewAppError(errors.ErrCodeClipboardCommand, noUtilityMessage(s.goos)).
			WithHint(installInstructions(s.goos))
	}
	return "", errors.WrapApp(lastErr, errors.ErrCodeClipboardCommand, "Clipboard utilities are available but failed").
		WithHint(installInstructions(s.goos))
}

// Available reports whether any clipboard utility is installed.
func (s *System) Available() bool {
	for _, c := range writeCommands(s.goos) {
		if _, err := s.lookPath(c.name); err == nil {
			return true
		}
	}
	return false
}

func noUtilityMessage(goos string) string {
	switch goos {
	case "linux":
		return "No clipboard utility found"
	case "darwin":
		return "pbcopy/pbpaste not available"
	case "windows":
		return "clip/powershell not available"
	default:
		return fmt.Sprintf("Clipboard not supported on %s", goos)
	}
}

// InstallInstructions returns installation instructions for the platform's clipboard
// utilities.
func (s *System) InstallInstructions() string {
	return installInstructions(s.goos)
}

func installInstructions(goos string) string {
	switch goos {
	case "linux":
		return "Install a clipboard utility:\n" +
			"  • Ubuntu/Debian: sudo apt install xclip\n" +
			"  • Fedora/RHEL: sudo dnf install xclip\n" +
			"  • Arch: sudo pacman -S xclip\n" +
			"  • For Wayland: install wl-clipboard"
	case "darwin":
		return "pbcopy and pbpaste should be available by default on macOS"
	case "windows":
		return "clip and powershell should be available by default on Windows"
	default:
		return fmt.Sprintf("Clipboard not supported on %s", goos)
	}
}

// Memory is an in-process clipboard, used when no OS clipboard is wanted.
type Memory struct {
	mu   sync.Mutex
	text string
}

// NewMemory returns a Memory clipboard holding text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

// Read validates the stored text the same way System does.
func (m *Memory) Read(_ context.Context) (*Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Inspect(m.text)
}

// Write stores text.
func (m *Memory) Write(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// Text returns the stored text without validation.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}
