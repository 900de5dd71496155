// Package report renders validation results for humans and machines.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/fulmenhq/manifold/internal/assets"
	"github.com/fulmenhq/manifold/pkg/validate"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the format for validation output
type OutputFormat string

const (
	FormatMarkdown OutputFormat = "markdown"
	FormatJSON     OutputFormat = "json"
	FormatYAML     OutputFormat = "yaml"
	FormatTOML     OutputFormat = "toml"
)

const markdownTemplate = "validate-report.md.hbs"

// Formats lists the accepted format names.
func Formats() []string {
	return []string{string(FormatMarkdown), string(FormatJSON), string(FormatYAML), string(FormatTOML)}
}

// ParseFormat accepts a format name case-insensitively; "md" and "yml" are aliases.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported format %q (want one of %s)", s, strings.Join(Formats(), ", "))
}

// Formatter handles formatting validation reports
type Formatter struct {
	format OutputFormat
}

// NewFormatter creates a new report formatter
func NewFormatter(format OutputFormat) *Formatter {
	return &Formatter{format: format}
}

// FormatReport formats a validation report according to the configured format
func (f *Formatter) FormatReport(r *validate.Report) (string, error) {
	if r == nil {
		return "", fmt.Errorf("no report to format")
	}
	switch f.format {
	case FormatMarkdown:
		return f.formatMarkdown(r)
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal report to JSON: %w", err)
		}
		return string(data) + "\n", nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return "", fmt.Errorf("failed to marshal report to YAML: %w", err)
		}
		_ = enc.Close()
		return buf.String(), nil
	case FormatTOML:
		data, err := toml.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("failed to marshal report to TOML: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", f.format)
	}
}

func (f *Formatter) formatMarkdown(r *validate.Report) (string, error) {
	tpl, ok := assets.GetTemplate(markdownTemplate)
	if !ok {
		return "", fmt.Errorf("embedded template %s not found", markdownTemplate)
	}
	out, err := raymond.Render(string(tpl), templateData(r))
	if err != nil {
		return "", fmt.Errorf("render markdown report: %w", err)
	}
	return out, nil
}

func templateData(r *validate.Report) map[string]interface{} {
	manifests := make([]map[string]interface{}, 0, len(r.Manifests))
	for _, m := range r.Manifests {
		icon := "✅"
		if !m.Passed {
			icon = "❌"
		}
		checks := make([]map[string]interface{}, 0, len(m.Assets))
		for _, a := range m.Assets {
			checks = append(checks, map[string]interface{}{
				"role":       string(a.Role),
				"file":       a.File,
				"dimensions": a.Dimensions,
				"passed":     a.Passed,
			})
		}
		schema := m.Schema
		if schema == "" {
			schema = "skipped"
		}
		manifests = append(manifests, map[string]interface{}{
			"status_icon": icon,
			"path":        m.Path,
			"schema":      schema,
			"assets":      checks,
			"errors":      m.Errors,
		})
	}
	failed := r.Failed()
	return map[string]interface{}{
		"summary": map[string]interface{}{
			"total":  len(r.Manifests),
			"passed": len(r.Manifests) - failed,
			"failed": failed,
		},
		"empty":     r.Empty,
		"passed":    r.Passed,
		"manifests": manifests,
	}
}
