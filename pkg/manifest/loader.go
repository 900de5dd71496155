// Package manifest loads per-server descriptor files and models their
// content, including asset references and passthrough fields.
package manifest

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader reads descriptors named FileName from server directories.
type Loader struct {
	FileName string
}

// NewLoader returns a Loader for fileName, or DefaultFileName when empty.
func NewLoader(fileName string) *Loader {
	if strings.TrimSpace(fileName) == "" {
		fileName = DefaultFileName
	}
	return &Loader{FileName: fileName}
}

// Load reads the descriptor inside dir.
func (l *Loader) Load(dir string) (*ServerManifest, error) {
	return LoadFile(filepath.Join(dir, l.FileName))
}

// Load reads the default descriptor inside dir.
func Load(dir string) (*ServerManifest, error) {
	return NewLoader("").Load(dir)
}

// LoadFile reads and checks a single descriptor file.
func LoadFile(path string) (*ServerManifest, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingFileError{Path: path}
		}
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		var sv *SchemaViolationError
		if errors.As(err, &sv) {
			sv.Path = path
			return nil, sv
		}
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return m, nil
}

// Parse decodes descriptor bytes and enforces the mandatory fields.
func Parse(data []byte) (*ServerManifest, error) {
	var m ServerManifest
	if err := json.Unmarshal(data, &m); err != nil {
		var sv *SchemaViolationError
		if errors.As(err, &sv) {
			return nil, sv
		}
		return nil, &ParseError{Err: err}
	}
	if err := m.checkRequired(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *ServerManifest) checkRequired() error {
	if len(m.ServerAddress) == 0 {
		return &SchemaViolationError{Field: FieldServerAddress, Reason: "is missing or empty"}
	}
	if m.PrettyName == "" {
		return &SchemaViolationError{Field: FieldPrettyName, Reason: "is missing or empty"}
	}
	if len(m.Categories) == 0 {
		return &SchemaViolationError{Field: FieldCategories, Reason: "is missing or empty"}
	}
	return nil
}
