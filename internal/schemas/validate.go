// Package schemas provides JSON Schema validation for payloads received from
// the analysis backend.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed analysis_response.schema.json
var analysisResponseSchema []byte

// AnalysisResponseSchemaName identifies the embedded backend response schema.
const AnalysisResponseSchemaName = "analysis_response.schema.json"

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Summary returns the errors on a single line, for logs and user messages.
func (ve *ValidationError) Summary() string {
	parts := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		parts = append(parts, err.Field+": "+err.Message)
	}
	return strings.Join(parts, "; ")
}

var (
	analysisOnce   sync.Once
	analysisSchema *gojsonschema.Schema
	analysisErr    error
)

func loadAnalysisSchema() (*gojsonschema.Schema, error) {
	analysisOnce.Do(func() {
		analysisSchema, analysisErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(analysisResponseSchema))
		if analysisErr != nil {
			analysisErr = &SchemaLoadError{
				Path:    AnalysisResponseSchemaName,
				Message: "embedded schema is invalid",
				Cause:   analysisErr,
			}
		}
	})
	return analysisSchema, analysisErr
}

// ValidateAnalysisResponse validates a raw backend response body.
func ValidateAnalysisResponse(body []byte) error {
	schema, err := loadAnalysisSchema()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &SchemaLoadError{
			Path:    AnalysisResponseSchemaName,
			Message: "document could not be loaded",
			Cause:   err,
		}
	}
	return toValidationError(result)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
