package errors

import "fmt"

// WarningCode identifies a non-fatal condition.
type WarningCode string

const (
	WarnCodeVaultEmpty     WarningCode = "VAULT_EMPTY"
	WarnCodeClipboardShort WarningCode = "CLIPBOARD_SHORT"
	WarnCodeNoClipboard    WarningCode = "CLIPBOARD_UNAVAILABLE"
)

// Warning is surfaced to the user but never blocks the flow that produced it.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

func VaultEmpty(path string) Warning {
	return Warning{
		Code:    WarnCodeVaultEmpty,
		Message: fmt.Sprintf("Vault %s contains no template directories yet", path),
	}
}

func ClipboardShort(length int) Warning {
	return Warning{
		Code:    WarnCodeClipboardShort,
		Message: fmt.Sprintf("Clipboard content is only %d characters long", length),
	}
}

// NoClipboard reports that no clipboard utility is installed. Flows that copy or paste
// will fail until one is.
func NoClipboard(instructions string) Warning {
	return Warning{
		Code:    WarnCodeNoClipboard,
		Message: "No clipboard utility found. " + instructions,
	}
}
