package aggregate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fulmenhq/manifold/pkg/manifest"
	"github.com/fulmenhq/manifold/pkg/safeio"
)

// TimestampLayout matches ISO-8601 UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Metadata summarises one merge run.
type Metadata struct {
	TotalServers  int      `json:"totalServers"`
	MergedAt      string   `json:"mergedAt"`
	SourceFolders []string `json:"sourceFolders"`
}

// Catalog is the consolidated document. Servers is keyed by source
// directory name; Metadata.TotalServers always equals len(Servers).
type Catalog struct {
	Servers  map[string]*manifest.ServerManifest `json:"servers"`
	Metadata Metadata                            `json:"metadata"`
}

func newCatalog(folders []string) *Catalog {
	return &Catalog{
		Servers:  map[string]*manifest.ServerManifest{},
		Metadata: Metadata{SourceFolders: append([]string{}, folders...)},
	}
}

func (c *Catalog) add(id string, m *manifest.ServerManifest) {
	c.Servers[id] = m
	c.Metadata.TotalServers = len(c.Servers)
}

func (c *Catalog) seal(now time.Time) {
	c.Metadata.TotalServers = len(c.Servers)
	c.Metadata.MergedAt = now.UTC().Format(TimestampLayout)
}

// IDs returns the server ids in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.Servers))
	for id := range c.Servers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Encode renders the catalog as two-space indented JSON with a trailing
// newline. Object keys are sorted.
func (c *Catalog) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCatalog writes c to path, creating the parent directory.
func WriteCatalog(path string, c *Catalog) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := safeio.WriteFilePreservePerms(path, data); err != nil {
		return fmt.Errorf("write catalog %s: %w", path, err)
	}
	return nil
}

// VerifyCatalogFile re-reads a written catalog and lists entries that would
// not satisfy a consumer: address and categories must be arrays, the pretty
// name must be set and both assets must be referenced.
func VerifyCatalogFile(path string) ([]string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var doc struct {
		Servers map[string]map[string]any `json:"servers"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	ids := make([]string, 0, len(doc.Servers))
	for id := range doc.Servers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var problems []string
	for _, id := range ids {
		server := doc.Servers[id]
		if _, ok := server[manifest.FieldServerAddress].([]any); !ok {
			problems = append(problems, fmt.Sprintf("%s: Missing or invalid %s", id, manifest.FieldServerAddress))
		}
		if name, _ := server[manifest.FieldPrettyName].(string); name == "" {
			problems = append(problems, fmt.Sprintf("%s: Missing %s", id, manifest.FieldPrettyName))
		}
		if _, ok := server[manifest.FieldCategories].([]any); !ok {
			problems = append(problems, fmt.Sprintf("%s: Missing or invalid %s", id, manifest.FieldCategories))
		}
		assets, _ := server[manifest.FieldAssets].(map[string]any)
		icon, _ := assets[string(manifest.RoleIcon)].(string)
		bg, _ := assets[string(manifest.RoleBackground)].(string)
		if icon == "" || bg == "" {
			problems = append(problems, fmt.Sprintf("%s: Missing required assets", id))
		}
	}
	return problems, nil
}
