// Package errors provides unified error handling across the prompts tool.
//
// SYSTEM ARCHITECTURE ROLE:
// Every fallible operation in the engine (vault scanning, template reading, output file
// classification and mutation, clipboard access) returns an *AppError carrying a stable code,
// a category, a human-readable message and an optional hint. Non-fatal conditions travel on a
// separate channel as Warning values and never block a flow.
//
// KEY RESPONSIBILITIES:
// - Define the stable error codes and their categories
// - Provide AppError/Warning types and the constructors used by the storage layer
// - Re-export github.com/cockroachdb/errors for wrapping causes and inspecting chains
//
// INTEGRATION POINTS:
// - internal/storage: returns AppErrors for every filesystem and template failure
// - internal/clipboard: returns AppErrors for clipboard validation and command failures
// - internal/service: logs AppErrors and decides between retry and returning to a prior step
// - internal/cli, internal/ui: format AppErrors through CLIErrorHandler / TUIErrorHandler
//
// USAGE PATTERNS:
// - Create errors: use constructors such as VaultNotFound(path) or TomlSyntax(path, cause)
// - Wrap causes: Wrapf(err, "read %s", path) keeps a stack trace on the cause
// - Check codes: HasCode(err, ErrCodeVaultNotFound), or GetAppError(err) for the full value
package errors

import (
	"fmt"
	"strings"

	crdb "github.com/cockroachdb/errors"
)

// Re-exported from cockroachdb/errors so callers need a single errors import.
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithHint     = crdb.WithHint
	Is           = crdb.Is
	As           = crdb.As
	FlattenHints = crdb.FlattenHints
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Filesystem errors
	ErrCodeVaultNotFound     ErrorCode = "VAULT_NOT_FOUND"
	ErrCodeVaultNotDirectory ErrorCode = "VAULT_NOT_DIRECTORY"
	ErrCodeVaultAccessDenied ErrorCode = "VAULT_ACCESS_DENIED"
	ErrCodeOutputWrite       ErrorCode = "OUTPUT_WRITE_ERROR"
	ErrCodeFileNotFound      ErrorCode = "FILE_NOT_FOUND"
	ErrCodePermissionDenied  ErrorCode = "PERMISSION_DENIED"

	// Configuration errors (template definition file)
	ErrCodeTomlNotFound      ErrorCode = "TOML_NOT_FOUND"
	ErrCodeTomlEmpty         ErrorCode = "TOML_EMPTY"
	ErrCodeTomlSyntax        ErrorCode = "TOML_SYNTAX_ERROR"
	ErrCodeTomlStructure     ErrorCode = "TOML_STRUCTURE_ERROR"
	ErrCodeTomlEmptyTemplate ErrorCode = "TOML_EMPTY_TEMPLATE"
	ErrCodeTomlVersionFormat ErrorCode = "TOML_VERSION_FORMAT_ERROR"

	// Input errors
	ErrCodeClipboardEmpty    ErrorCode = "CLIPBOARD_EMPTY"
	ErrCodeClipboardTooLarge ErrorCode = "CLIPBOARD_TOO_LARGE"
	ErrCodeClipboardBinary   ErrorCode = "CLIPBOARD_BINARY_CONTENT"

	// Environment errors
	ErrCodeClipboardCommand ErrorCode = "CLIPBOARD_COMMAND_ERROR"

	// Validation errors
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeMissingVariable ErrorCode = "MISSING_VARIABLE"
	ErrCodeModelRequired   ErrorCode = "MODEL_REQUIRED"
	ErrCodeModelEmpty      ErrorCode = "MODEL_EMPTY"
	ErrCodeModelValidation ErrorCode = "MODEL_VALIDATION_ERROR"
	ErrCodeFileFormat      ErrorCode = "FILE_FORMAT_ERROR"
	ErrCodeVersionNotFound ErrorCode = "VERSION_NOT_FOUND"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryFilesystem    ErrorCategory = "filesystem"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryInput         ErrorCategory = "input"
	CategoryEnvironment   ErrorCategory = "environment"
	CategoryValidation    ErrorCategory = "validation"
)

// AppError represents a standardized application error
type AppError struct {
	Code      ErrorCode     `json:"code"`
	Category  ErrorCategory `json:"category"`
	Message   string        `json:"message"`
	Hint      string        `json:"hint,omitempty"`
	Path      string        `json:"path,omitempty"`
	Cause     error         `json:"-"`
	Retryable bool          `json:"retryable"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ErrorHint exposes the hint to cockroachdb/errors.FlattenHints.
func (e *AppError) ErrorHint() string {
	return e.Hint
}

// IsRetryable returns whether the error is retryable
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// WithHint sets the hint shown under the message.
func (e *AppError) WithHint(hint string) *AppError {
	e.Hint = hint
	return e
}

// WithPath records the file or directory the error is about.
func (e *AppError) WithPath(path string) *AppError {
	e.Path = path
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Category:  categorizeError(code),
		Message:   message,
		Retryable: isRetryable(code),
	}
}

// WrapApp wraps an existing error with application error context
func WrapApp(err error, code ErrorCode, message string) *AppError {
	appErr := NewAppError(code, message)
	if err != nil {
		appErr.Cause = crdb.WithStack(err)
	}
	return appErr
}

func categorizeError(code ErrorCode) ErrorCategory {
	switch code {
	case ErrCodeVaultNotFound, ErrCodeVaultNotDirectory, ErrCodeVaultAccessDenied,
		ErrCodeOutputWrite, ErrCodeFileNotFound, ErrCodePermissionDenied:
		return CategoryFilesystem
	case ErrCodeTomlNotFound, ErrCodeTomlEmpty, ErrCodeTomlSyntax, ErrCodeTomlStructure,
		ErrCodeTomlEmptyTemplate, ErrCodeTomlVersionFormat:
		return CategoryConfiguration
	case ErrCodeClipboardEmpty, ErrCodeClipboardTooLarge, ErrCodeClipboardBinary:
		return CategoryInput
	case ErrCodeClipboardCommand:
		return CategoryEnvironment
	default:
		return CategoryValidation
	}
}

// Vault problems can be fixed outside the tool and retried in place.
func isRetryable(code ErrorCode) bool {
	switch code {
	case ErrCodeVaultNotFound, ErrCodeVaultNotDirectory, ErrCodeVaultAccessDenied:
		return true
	default:
		return false
	}
}

// IsAppError checks if an error chain contains an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return crdb.As(err, &appErr)
}

// GetAppError extracts an AppError from an error chain, or converts it to one
func GetAppError(err error) *AppError {
	var appErr *AppError
	if crdb.As(err, &appErr) {
		return appErr
	}
	return WrapApp(err, ErrCodeValidation, err.Error())
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return crdb.As(err, &appErr) && appErr.Code == code
}

// Filesystem constructors

func VaultNotFound(path string) *AppError {
	return NewAppError(ErrCodeVaultNotFound, fmt.Sprintf("Vault directory not found: %s", path)).
		WithHint("Create the directory or pass --vault <path>").
		WithPath(path)
}

func VaultNotDirectory(path string) *AppError {
	return NewAppError(ErrCodeVaultNotDirectory, fmt.Sprintf("Vault path is not a directory: %s", path)).
		WithHint("Point --vault at a directory containing template folders").
		WithPath(path)
}

func VaultAccessDenied(path string, cause error) *AppError {
	return WrapApp(cause, ErrCodeVaultAccessDenied, fmt.Sprintf("Cannot read vault directory: %s", path)).
		WithHint("Check the directory permissions").
		WithPath(path)
}

func OutputWriteError(path string, cause error) *AppError {
	return WrapApp(cause, ErrCodeOutputWrite, fmt.Sprintf("Failed to access outputs at %s: %v", path, cause)).
		WithHint("Check file permissions and available disk space").
		WithPath(path)
}

func FileNotFound(path string, cause error) *AppError {
	return WrapApp(cause, ErrCodeFileNotFound, fmt.Sprintf("File not found: %s", path)).
		WithHint("The file may have been moved or deleted").
		WithPath(path)
}

func PermissionDenied(path string, cause error) *AppError {
	return WrapApp(cause, ErrCodePermissionDenied, fmt.Sprintf("Permission denied: %s", path)).
		WithHint("Please check file permissions").
		WithPath(path)
}

// Configuration constructors

func TomlNotFound(path string, cause error) *AppError {
	return WrapApp(cause, ErrCodeTomlNotFound, fmt.Sprintf("Template definition not found: %s", path)).
		WithHint("Each template directory needs a prompt.toml file").
		WithPath(path)
}

func TomlEmpty(path string) *AppError {
	return NewAppError(ErrCodeTomlEmpty, fmt.Sprintf("Template definition is empty: %s", path)).
		WithHint("Add a [metadata] section and at least one [[prompts]] entry").
		WithPath(path)
}

func TomlSyntax(path string, detail string, cause error) *AppError {
	return WrapApp(cause, ErrCodeTomlSyntax, fmt.Sprintf("Invalid TOML in %s: %s", path, detail)).
		WithHint("Fix the syntax error and try again").
		WithPath(path)
}

func TomlStructure(path string, detail string) *AppError {
	return NewAppError(ErrCodeTomlStructure, fmt.Sprintf("Invalid template structure in %s: %s", path, detail)).
		WithHint("Expected [metadata] current_version/created_at/updated_at and [[prompts]] version/content/created_at").
		WithPath(path)
}

func TomlVersionFormat(path string, version string) *AppError {
	return NewAppError(ErrCodeTomlVersionFormat, fmt.Sprintf("Invalid version %q in %s", version, path)).
		WithHint("Versions must look like 1.0.0 or 1.0.0-beta.1").
		WithPath(path)
}

func TomlEmptyTemplate(path string, version string) *AppError {
	return NewAppError(ErrCodeTomlEmptyTemplate, fmt.Sprintf("Template content for version %s is empty in %s", version, path)).
		WithHint("Every [[prompts]] entry needs non-blank content").
		WithPath(path)
}

// Validation constructors

// ValidationError reports a required field that is absent or of the wrong type.
func ValidationError(field string, expected string) *AppError {
	return NewAppError(ErrCodeValidation, fmt.Sprintf("%s is required and must be %s", field, expected))
}

func MissingVariables(names []string) *AppError {
	return NewAppError(ErrCodeMissingVariable, fmt.Sprintf("Missing template variables: %s", strings.Join(names, ", "))).
		WithHint("Supply a value for every {{variable}} in the template")
}

func FileFormatError(path string, detail string) *AppError {
	return NewAppError(ErrCodeFileFormat, fmt.Sprintf("Unexpected file format in %s: %s", path, detail)).
		WithHint("Only files with a --- frontmatter block can be reset").
		WithPath(path)
}

func VersionNotFound(version string) *AppError {
	return NewAppError(ErrCodeVersionNotFound, fmt.Sprintf("Template version %s no longer exists", version)).
		WithHint("Pick another file or restore the revision in prompt.toml")
}
