package assets

import (
	"embed"
	"io/fs"
)

//go:embed embedded_templates
var templates embed.FS

// GetTemplatesFS exposes the embedded report templates rooted at their directory.
func GetTemplatesFS() fs.FS {
	if sub, err := fs.Sub(templates, "embedded_templates"); err == nil {
		return sub
	}
	return templates
}

// GetTemplate returns an embedded template by name (e.g. "validate-report.md.hbs").
func GetTemplate(name string) ([]byte, bool) {
	data, err := fs.ReadFile(GetTemplatesFS(), name)
	return data, err == nil && len(data) > 0
}
