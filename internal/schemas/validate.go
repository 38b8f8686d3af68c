// Package schemas validates API payloads against the embedded JSON Schemas.
package schemas

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	embedded "github.com/jobboard/jobboard/schemas"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
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
	if ve.Schema != "" {
		sb.WriteString(fmt.Sprintf("validation against %s failed:\n", ve.Schema))
	} else {
		sb.WriteString("validation failed:\n")
	}
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

var (
	compiledMu sync.Mutex
	compiled   = make(map[string]*gojsonschema.Schema)
)

// schemaFor compiles the named embedded schema once.
func schemaFor(name string) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[name]; ok {
		return s, nil
	}
	content, err := embedded.Read(name)
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema not embedded", Cause: err}
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema failed to compile", Cause: err}
	}
	compiled[name] = s
	return s, nil
}

// Validate validates a JSON document against the named embedded schema.
func Validate(name string, document []byte) error {
	schema, err := schemaFor(name)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	if result.Valid() {
		return nil
	}
	return newValidationError(name, "", result)
}

// ValidateEach validates every element of a JSON array against the named
// embedded schema. Field paths are prefixed with the element index.
func ValidateEach(name string, document []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(document, &items); err != nil {
		return &ValidationError{
			Schema: name,
			Errors: []FieldError{{Field: "(root)", Message: "expected an array"}},
		}
	}

	schema, err := schemaFor(name)
	if err != nil {
		return err
	}

	var all *ValidationError
	for i, item := range items {
		result, err := schema.Validate(gojsonschema.NewBytesLoader(item))
		if err != nil {
			return fmt.Errorf("failed to load element %d: %w", i, err)
		}
		if result.Valid() {
			continue
		}
		ve := newValidationError(name, fmt.Sprintf("[%d]", i), result)
		if all == nil {
			all = ve
			continue
		}
		all.Errors = append(all.Errors, ve.Errors...)
	}
	if all != nil {
		return all
	}
	return nil
}

func newValidationError(schema, prefix string, result *gojsonschema.Result) *ValidationError {
	validationErr := &ValidationError{
		Schema: schema,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" || field == "(root)" {
			field = "(root)"
			if prefix != "" {
				field = prefix
			}
		} else if prefix != "" {
			field = prefix + "." + field
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
