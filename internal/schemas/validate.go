// Package schemas provides JSON Schema validation for request payloads and
// snippet files.
package schemas

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Name identifies an embedded schema.
type Name string

// Embedded schemas.
const (
	Snippet              Name = "snippet"
	SnippetList          Name = "snippet_list"
	ClassifyRequest      Name = "classify_request"
	BatchClassifyRequest Name = "batch_classify_request"
	ClassifyURLRequest   Name = "classify_url_request"
	PromptRequest        Name = "prompt_request"
	WizardConfigRequest  Name = "wizard_config_request"
)

//go:embed files/*.schema.json
var schemaFiles embed.FS

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
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

// Source returns the text of an embedded schema.
func Source(name Name) (string, error) {
	path := "files/" + string(name) + ".schema.json"
	data, err := schemaFiles.ReadFile(path)
	if err != nil {
		return "", &SchemaLoadError{Path: path, Message: "schema not found", Cause: err}
	}
	return string(data), nil
}

// Names lists the embedded schemas, sorted.
func Names() []Name {
	entries, _ := schemaFiles.ReadDir("files")
	names := make([]Name, 0, len(entries))
	for _, e := range entries {
		names = append(names, Name(strings.TrimSuffix(e.Name(), ".schema.json")))
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Validate checks a JSON document against an embedded schema.
func Validate(name Name, document []byte) error {
	schema, err := Source(name)
	if err != nil {
		return err
	}
	return ValidateJSONString(schema, string(document))
}

// ValidateFile checks the JSON file at jsonPath against an embedded schema.
func ValidateFile(name Name, jsonPath string) error {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("JSON file not found: %s", jsonPath)
		}
		return fmt.Errorf("failed to read %s: %w", jsonPath, err)
	}
	return Validate(name, data)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

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
