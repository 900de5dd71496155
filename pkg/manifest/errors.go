package manifest

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFile     = errors.New("file not found")
	ErrParse           = errors.New("malformed descriptor")
	ErrSchemaViolation = errors.New("schema violation")
)

// MissingFileError is returned when an expected file does not exist.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingFile.Error(), e.Path)
}

func (e *MissingFileError) Is(target error) bool { return target == ErrMissingFile }

// ParseError wraps a syntax error in a descriptor file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// SchemaViolationError reports a mandatory field that is absent, empty or of
// the wrong type.
type SchemaViolationError struct {
	Path   string
	Field  string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("field %q %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: field %q %s", e.Path, e.Field, e.Reason)
}

func (e *SchemaViolationError) Is(target error) bool { return target == ErrSchemaViolation }
