package validation

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// Schema names accepted by Validate.
const (
	SchemaRating  = "rating"
	SchemaCompare = "compare"
	SchemaTag     = "tag"
)

//go:embed schemas/*.json
var embeddedSchemas embed.FS

var schemaFiles = map[string]string{
	SchemaRating:  "rating.json",
	SchemaCompare: "compare.json",
	SchemaTag:     "tag.json",
}

// SchemaValidator handles JSON schema validation for API request bodies
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewSchemaValidator loads the schemas compiled into the binary
func NewSchemaValidator() (*SchemaValidator, error) {
	sv := &SchemaValidator{
		schemas: make(map[string]*gojsonschema.Schema),
	}
	if err := sv.LoadSchemaFromFS(embeddedSchemas, "schemas"); err != nil {
		return nil, err
	}
	return sv, nil
}

// LoadSchemaFromFS loads schemas from a filesystem
func (sv *SchemaValidator) LoadSchemaFromFS(fsys fs.FS, schemaDir string) error {
	for name, filename := range schemaFiles {
		schemaPath := path.Join(schemaDir, filename)

		schemaBytes, err := fs.ReadFile(fsys, schemaPath)
		if err != nil {
			return fmt.Errorf("failed to read schema file %s: %w", schemaPath, err)
		}

		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
		if err != nil {
			return fmt.Errorf("failed to load schema %s: %w", name, err)
		}

		sv.schemas[name] = schema
	}

	return nil
}

// Validate checks data against a named schema. Strings and byte slices are
// treated as raw JSON; anything else is marshalled first.
func (sv *SchemaValidator) Validate(schemaName string, data interface{}) *ValidationResult {
	schema, exists := sv.schemas[schemaName]
	if !exists {
		return failure("schema", "SCHEMA_NOT_FOUND", fmt.Sprintf("Schema '%s' not found", schemaName))
	}

	var documentLoader gojsonschema.JSONLoader
	switch v := data.(type) {
	case string:
		documentLoader = gojsonschema.NewStringLoader(v)
	case []byte:
		documentLoader = gojsonschema.NewBytesLoader(v)
	default:
		jsonBytes, err := json.Marshal(data)
		if err != nil {
			return failure("data", "JSON_MARSHAL_ERROR", fmt.Sprintf("Failed to marshal data to JSON: %v", err))
		}
		documentLoader = gojsonschema.NewBytesLoader(jsonBytes)
	}

	result, err := schema.Validate(documentLoader)
	if err != nil {
		// gojsonschema reports unparsable documents here rather than as result errors
		return failure("validation", "VALIDATION_ERROR", fmt.Sprintf("Validation error: %v", err))
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, err := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   err.Field(),
			Message: err.Description(),
			Code:    "VALIDATION_ERROR",
			Value:   err.Value(),
			Context: err.Context().String(),
		})
	}

	return out
}

func failure(field, code, message string) *ValidationResult {
	return &ValidationResult{
		Errors: []ValidationError{{Field: field, Message: message, Code: code}},
	}
}

// ValidationResult represents the result of a validation operation
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Value   interface{} `json:"value,omitempty"`
	Context string      `json:"context,omitempty"`
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", ve.Field, ve.Message)
}

// ToAPIError converts validation errors to the API error envelope
func (vr *ValidationResult) ToAPIError() map[string]interface{} {
	if vr.Valid {
		return nil
	}

	fieldErrors := make(map[string][]string)
	for _, err := range vr.Errors {
		if err.Field != "" {
			fieldErrors[err.Field] = append(fieldErrors[err.Field], err.Message)
		}
	}

	details := map[string]interface{}{
		"validationErrors": vr.Errors,
	}
	if len(fieldErrors) > 0 {
		details["fieldErrors"] = fieldErrors
	}

	return map[string]interface{}{
		"error": map[string]interface{}{
			"code":    "VALIDATION_ERROR",
			"message": "Request validation failed",
			"details": details,
		},
	}
}

// AvailableSchemas returns the loaded schema names, sorted
func (sv *SchemaValidator) AvailableSchemas() []string {
	schemas := make([]string, 0, len(sv.schemas))
	for name := range sv.schemas {
		schemas = append(schemas, name)
	}
	sort.Strings(schemas)
	return schemas
}
