package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/manifold/internal/assets"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// isOfflineMode reports whether $schema keys are stripped before compiling so
// that no meta-schema is ever fetched.
func isOfflineMode() bool {
	return os.Getenv("MANIFOLD_OFFLINE_SCHEMA_VALIDATION") == "true"
}

// Result holds the validation result.
type Result struct {
	Valid  bool              `json:"valid" yaml:"valid" toml:"valid"`
	Errors []ValidationError `json:"errors,omitempty" yaml:"errors,omitempty" toml:"errors,omitempty"`
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Path    string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	Message string `json:"message" yaml:"message" toml:"message"`
}

func (e ValidationError) String() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validator wraps a compiled schema for repeated validation.
type Validator struct {
	schema *gojsonschema.Schema
}

func compileSchemaBytes(schemaBytes []byte) (*gojsonschema.Schema, error) {
	// YAML is a superset of JSON, so a successful YAML parse covers both;
	// the result is re-encoded as canonical JSON for the loader.
	var tmp any
	if err := yaml.Unmarshal(schemaBytes, &tmp); err != nil {
		if jerr := json.Unmarshal(schemaBytes, &tmp); jerr != nil {
			return nil, fmt.Errorf("invalid schema format (must be valid YAML or JSON): %w", jerr)
		}
	}
	if m, ok := tmp.(map[string]any); ok && isOfflineMode() {
		delete(m, "$schema")
	}
	jb, err := json.Marshal(tmp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema to JSON: %w", err)
	}
	sch, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jb))
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	return sch, nil
}

// ensureSupportedDraft rejects schemas declaring a draft other than 07 or 2020-12.
func ensureSupportedDraft(schemaBytes []byte) error {
	var schemaDoc map[string]interface{}
	if err := yaml.Unmarshal(schemaBytes, &schemaDoc); err != nil {
		if err := json.Unmarshal(schemaBytes, &schemaDoc); err != nil {
			return fmt.Errorf("invalid schema format (must be valid YAML or JSON): %w", err)
		}
	}
	if v, ok := schemaDoc["$schema"].(string); ok {
		if !strings.Contains(v, "draft-07") && !strings.Contains(v, "2020-12") {
			return fmt.Errorf("unsupported $schema %q: only Draft-07 and Draft-2020-12 supported", v)
		}
	}
	return nil
}

// NewValidatorFromBytes compiles schema bytes (JSON or YAML) into a reusable validator.
func NewValidatorFromBytes(schemaBytes []byte) (*Validator, error) {
	if err := ensureSupportedDraft(schemaBytes); err != nil {
		return nil, err
	}
	sch, err := compileSchemaBytes(schemaBytes)
	if err != nil {
		return nil, err
	}
	return &Validator{schema: sch}, nil
}

// NewValidatorFromFile compiles the schema stored at path.
func NewValidatorFromFile(path string) (*Validator, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	v, err := NewValidatorFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return v, nil
}

// GetEmbeddedValidator returns a validator for a named embedded schema
// (assets.ManifestSchema or assets.ConfigSchema).
func GetEmbeddedValidator(name string) (*Validator, error) {
	data, ok := assets.GetSchemaByName(name)
	if !ok || len(data) == 0 {
		return nil, fmt.Errorf("embedded schema %s not found", name)
	}
	return NewValidatorFromBytes(data)
}

// Validate applies the compiled schema to the provided data structure.
func (v *Validator) Validate(data interface{}) (*Result, error) {
	if v == nil || v.schema == nil {
		return nil, fmt.Errorf("validator not initialised")
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode data to JSON: %w", err)
	}
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(dataJSON))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	res := &Result{Valid: result.Valid()}
	for _, verr := range result.Errors() {
		field := verr.Field()
		if field == "" || field == "(root)" {
			field = "root"
		}
		res.Errors = append(res.Errors, ValidationError{
			Path:    field,
			Message: improveErrorMessage(field, verr.Description()),
		})
	}
	return res, nil
}

// ValidateBytes parses JSON (or YAML) bytes and validates them.
func (v *Validator) ValidateBytes(dataBytes []byte) (*Result, error) {
	var data interface{}
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		if yerr := yaml.Unmarshal(dataBytes, &data); yerr != nil {
			return nil, fmt.Errorf("failed to parse data bytes (JSON/YAML): %w", err)
		}
	}
	return v.Validate(data)
}

// improveErrorMessage points at the usual fix for errors on descriptor fields.
func improveErrorMessage(path, message string) string {
	switch {
	case path == "root" && strings.Contains(message, "categories"):
		return message + " (the descriptor field is spelled \"categorys\")"
	case strings.HasPrefix(path, "assets.") && strings.Contains(message, "Does not match pattern"):
		return message + " (assets must be PNG files)"
	}
	return message
}
