// Package validation provides schema checks for decoded documents and the small value
// checks (versions, model names) shared by the storage layer.
//
// SYSTEM ARCHITECTURE ROLE:
// The TOML decoder hands back map[string]any. Nothing downstream trusts that shape: the
// storage layer runs it through a Schema first and only builds typed values once the
// ValidationResult is valid.
//
// KEY RESPONSIBILITIES:
// - Define field validators (required, type, pattern, options, custom rule)
// - Register the built-in schemas for prompt.toml tables
// - Validate semantic version strings and model names
//
// INTEGRATION POINTS:
// - internal/storage/definition.go: validates [metadata] and each [[prompts]] entry
// - internal/storage/mutator.go: ValidateModel before saving an output
// - internal/service: NormalizeModelName on the configured model
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Built-in schema names
const (
	SchemaDefinition = "definition"
	SchemaMetadata   = "metadata"
	SchemaRevision   = "revision"
)

// Field types understood by FieldValidator
const (
	TypeString = "string"
	TypeArray  = "array"
	TypeObject = "object"
)

// FieldValidator provides validation rules for individual fields
type FieldValidator struct {
	Name     string
	Required bool
	Type     string
	Pattern  *regexp.Regexp
	Options  []string
	Custom   func(any) error
}

// Schema represents a validation schema. Fields are checked in order so the first
// reported error is deterministic.
type Schema struct {
	Name   string
	Fields []FieldValidator
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError represents a field validation error
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FirstError returns the message of the first error, or "" when valid.
func (r *ValidationResult) FirstError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// Validator holds registered schemas
type Validator struct {
	schemas map[string]*Schema
}

// NewValidator creates a new validator instance with the built-in schemas
func NewValidator() *Validator {
	v := &Validator{schemas: make(map[string]*Schema)}
	v.registerBuiltinSchemas()
	return v
}

// RegisterSchema registers a validation schema
func (v *Validator) RegisterSchema(schema *Schema) {
	v.schemas[schema.Name] = schema
}

// Validate validates data against a schema. A nil map fails every required field.
func (v *Validator) Validate(schemaName string, data map[string]any) *ValidationResult {
	schema, exists := v.schemas[schemaName]
	if !exists {
		return &ValidationResult{
			Errors: []FieldError{{
				Field:   "schema",
				Code:    "SCHEMA_NOT_FOUND",
				Message: fmt.Sprintf("validation schema '%s' not found", schemaName),
			}},
		}
	}

	result := &ValidationResult{Valid: true}
	for _, field := range schema.Fields {
		if fe := validateField(field, data); fe != nil {
			result.Valid = false
			result.Errors = append(result.Errors, *fe)
		}
	}
	return result
}

func validateField(f FieldValidator, data map[string]any) *FieldError {
	value, exists := data[f.Name]
	if !exists || value == nil {
		if f.Required {
			return &FieldError{
				Field:   f.Name,
				Code:    "REQUIRED_FIELD_MISSING",
				Message: fmt.Sprintf("'%s' is required", f.Name),
			}
		}
		return nil
	}

	if !hasType(f.Type, value) {
		return &FieldError{
			Field:   f.Name,
			Code:    "INVALID_TYPE",
			Message: fmt.Sprintf("'%s' must be %s, got %T", f.Name, article(f.Type), value),
		}
	}

	if s, ok := value.(string); ok {
		if f.Pattern != nil && !f.Pattern.MatchString(s) {
			return &FieldError{
				Field:   f.Name,
				Code:    "PATTERN_MISMATCH",
				Message: fmt.Sprintf("'%s' does not match required pattern", f.Name),
			}
		}
		if len(f.Options) > 0 && !contains(f.Options, s) {
			return &FieldError{
				Field:   f.Name,
				Code:    "INVALID_OPTION",
				Message: fmt.Sprintf("'%s' must be one of: %s", f.Name, strings.Join(f.Options, ", ")),
			}
		}
	}

	if f.Custom != nil {
		if err := f.Custom(value); err != nil {
			return &FieldError{
				Field:   f.Name,
				Code:    "CUSTOM_VALIDATION_FAILED",
				Message: fmt.Sprintf("'%s' %s", f.Name, err.Error()),
			}
		}
	}
	return nil
}

// hasType is strict: no conversions, a TOML datetime is not a string.
func hasType(expected string, value any) bool {
	switch expected {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeArray:
		switch value.(type) {
		case []any, []map[string]any:
			return true
		}
		return false
	case TypeObject:
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}

func article(typ string) string {
	switch typ {
	case TypeArray:
		return "an array"
	case TypeObject:
		return "a table"
	default:
		return "a " + typ
	}
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}

func nonEmptyList(value any) error {
	switch v := value.(type) {
	case []any:
		if len(v) == 0 {
			return fmt.Errorf("must contain at least one entry")
		}
	case []map[string]any:
		if len(v) == 0 {
			return fmt.Errorf("must contain at least one entry")
		}
	}
	return nil
}

func (v *Validator) registerBuiltinSchemas() {
	v.RegisterSchema(&Schema{
		Name: SchemaDefinition,
		Fields: []FieldValidator{
			{Name: "metadata", Required: true, Type: TypeObject},
			{Name: "prompts", Required: true, Type: TypeArray, Custom: nonEmptyList},
		},
	})

	v.RegisterSchema(&Schema{
		Name: SchemaMetadata,
		Fields: []FieldValidator{
			{Name: "current_version", Required: true, Type: TypeString},
			{Name: "created_at", Required: true, Type: TypeString},
			{Name: "updated_at", Required: true, Type: TypeString},
		},
	})

	v.RegisterSchema(&Schema{
		Name: SchemaRevision,
		Fields: []FieldValidator{
			{Name: "version", Required: true, Type: TypeString},
			{Name: "content", Required: true, Type: TypeString},
			{Name: "created_at", Required: true, Type: TypeString},
		},
	})
}
