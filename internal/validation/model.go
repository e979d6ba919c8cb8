package validation

import (
	"fmt"
	"strings"

	"github.com/dpshade/prompt-vault/internal/errors"
)

// Canonical model names accepted in saved outputs
const (
	ModelSonnet4 = "claude-sonnet-4"
	ModelOpus4   = "claude-opus-4"
)

// SupportedModels is the model whitelist.
var SupportedModels = []string{ModelSonnet4, ModelOpus4}

var modelAliases = map[string]string{
	"sonnet4":    ModelSonnet4,
	"opus4":      ModelOpus4,
	ModelSonnet4: ModelSonnet4,
	ModelOpus4:   ModelOpus4,
}

// NormalizeModelName maps known aliases case-insensitively to canonical names.
// Unrecognised names are returned unchanged; ValidateModel rejects them later.
func NormalizeModelName(input string) string {
	if canonical, ok := modelAliases[strings.ToLower(input)]; ok {
		return canonical
	}
	return input
}

// ValidateModel checks model against the whitelist after trimming.
func ValidateModel(model string) error {
	if model == "" {
		return errors.NewAppError(errors.ErrCodeModelRequired, "Model is required").
			WithHint(fmt.Sprintf("Pass --model with one of: %s", strings.Join(SupportedModels, ", ")))
	}
	trimmed := strings.TrimSpace(model)
	if trimmed == "" {
		return errors.NewAppError(errors.ErrCodeModelEmpty, "Model cannot be empty").
			WithHint(fmt.Sprintf("Pass --model with one of: %s", strings.Join(SupportedModels, ", ")))
	}
	if !contains(SupportedModels, trimmed) {
		return errors.NewAppError(errors.ErrCodeModelValidation, fmt.Sprintf("Unsupported model: %s", trimmed)).
			WithHint(fmt.Sprintf("Supported models: %s", strings.Join(SupportedModels, ", ")))
	}
	return nil
}
