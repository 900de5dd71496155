package assets

import (
	"embed"
	"encoding/json"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed embedded_schemas
var schemaFS embed.FS

// Names of the embedded schemas.
const (
	ManifestSchema = "manifest-v1"
	ConfigSchema   = "manifold-config-v1"
)

var knownSchemas = map[string]string{
	ManifestSchema: "manifest-schema.json",
	ConfigSchema:   "manifold-config.yaml",
}

// SchemaInfo holds schema metadata.
type SchemaInfo struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Draft string `json:"draft"`
}

// GetSchemasFS exposes the embedded schemas rooted at their directory.
func GetSchemasFS() fs.FS {
	if sub, err := fs.Sub(schemaFS, "embedded_schemas"); err == nil {
		return sub
	}
	return schemaFS
}

// GetSchema returns embedded schema bytes by relative path (e.g. "manifest-schema.json").
func GetSchema(relPath string) ([]byte, bool) {
	data, err := fs.ReadFile(GetSchemasFS(), relPath)
	return data, err == nil
}

// GetSchemaByName returns embedded schema bytes by registered name.
func GetSchemaByName(name string) ([]byte, bool) {
	path, ok := knownSchemas[name]
	if !ok {
		return nil, false
	}
	return GetSchema(path)
}

// GetSchemaNames lists the embedded schemas sorted by name.
func GetSchemaNames() []SchemaInfo {
	var infos []SchemaInfo
	for name, path := range knownSchemas {
		if _, ok := GetSchema(path); ok {
			infos = append(infos, SchemaInfo{Name: name, Path: path, Draft: detectDraft(path)})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// detectDraft reads the $schema key of an embedded schema.
func detectDraft(path string) string {
	data, ok := GetSchema(path)
	if !ok {
		return "unknown"
	}
	var doc map[string]any
	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return "unknown"
		}
	} else if err := yaml.Unmarshal(data, &doc); err != nil {
		return "unknown"
	}
	v, _ := doc["$schema"].(string)
	switch {
	case strings.Contains(v, "draft-07"):
		return "draft-07"
	case strings.Contains(v, "2020-12"):
		return "2020-12"
	default:
		return "unknown"
	}
}
