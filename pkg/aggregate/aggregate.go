// Package aggregate merges the descriptors of every server directory into a
// single catalog and rehomes their assets alongside it.
//
// Directories are processed one at a time. A bad directory is recorded in the
// report and skipped; only a run that merges nothing is treated as a failure.
package aggregate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fulmenhq/manifold/pkg/logger"
	"github.com/fulmenhq/manifold/pkg/manifest"
	"github.com/fulmenhq/manifold/pkg/rehome"
)

// ErrNothingMerged is returned by Run when no directory produced an entry.
// The catalog is still written.
var ErrNothingMerged = errors.New("no servers were processed successfully")

const (
	DefaultOutputDir   = "merged"
	DefaultCatalogFile = "merged-manifest.json"
)

// Status is the outcome for one source directory.
type Status string

const (
	StatusMerged  Status = "merged"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Entry records what happened to a single source directory.
type Entry struct {
	Folder      string          `json:"folder"`
	Status      Status          `json:"status"`
	Diagnostics []string        `json:"diagnostics,omitempty"`
	Copied      []manifest.Role `json:"copied,omitempty"`
	Missing     []manifest.Role `json:"missing,omitempty"`
	Outside     []manifest.Role `json:"outside,omitempty"`
	Err         error           `json:"-"`
}

// Report collects per-directory entries and the resulting catalog.
type Report struct {
	Entries    []Entry  `json:"entries"`
	Merged     int      `json:"merged"`
	Skipped    int      `json:"skipped"`
	Errors     int      `json:"errors"`
	OutputPath string   `json:"output_path"`
	Catalog    *Catalog `json:"-"`
}

func (r *Report) record(e Entry) {
	switch e.Status {
	case StatusMerged:
		r.Merged++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Errors++
	}
	r.Entries = append(r.Entries, e)
}

// Options configures an Aggregator. Zero values fall back to defaults.
type Options struct {
	SourceRoot   string
	OutputDir    string
	CatalogFile  string
	ManifestFile string
	AssetExt     string
	// Reserved names directories that are never servers. They are added to
	// DefaultOutputDir, which is always reserved.
	Reserved []string
	Now      func() time.Time
}

// Aggregator runs one merge over SourceRoot.
type Aggregator struct {
	sourceRoot string
	outputDir  string
	catalog    string
	reserved   map[string]bool
	loader     *manifest.Loader
	rehomer    *rehome.Rehomer
	now        func() time.Time
}

// New builds an Aggregator from opts.
func New(opts Options) *Aggregator {
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	catalog := opts.CatalogFile
	if catalog == "" {
		catalog = DefaultCatalogFile
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	reserved := map[string]bool{DefaultOutputDir: true}
	for _, r := range opts.Reserved {
		reserved[r] = true
	}
	// An output directory placed inside the source root is never a server.
	if srcAbs, err := filepath.Abs(opts.SourceRoot); err == nil {
		if outAbs, err := filepath.Abs(outputDir); err == nil && filepath.Dir(outAbs) == srcAbs {
			reserved[filepath.Base(outAbs)] = true
		}
	}

	return &Aggregator{
		sourceRoot: opts.SourceRoot,
		outputDir:  outputDir,
		catalog:    catalog,
		reserved:   reserved,
		loader:     manifest.NewLoader(opts.ManifestFile),
		rehomer:    rehome.New(outputDir, opts.AssetExt),
		now:        now,
	}
}

// OutputPath is where Run writes the catalog.
func (a *Aggregator) OutputPath() string {
	return filepath.Join(a.outputDir, a.catalog)
}

// Discover lists the immediate subdirectories of the source root that are
// candidate servers, sorted by name.
func (a *Aggregator) Discover() ([]string, error) {
	entries, err := os.ReadDir(a.sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("scan source root %s: %w", a.sourceRoot, err)
	}
	var folders []string
	for _, e := range entries {
		if !e.IsDir() || a.reserved[e.Name()] {
			continue
		}
		folders = append(folders, e.Name())
	}
	return folders, nil
}

// Run merges every candidate directory and writes the catalog once at the
// end. It returns ErrNothingMerged alongside a complete report when no
// directory could be merged.
func (a *Aggregator) Run() (*Report, error) {
	logger.Info("Scanning servers directory", logger.String("root", a.sourceRoot))
	folders, err := a.Discover()
	if err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("Found %d server folders", len(folders)), logger.Strings("folders", folders))

	if err := os.MkdirAll(a.outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", a.outputDir, err)
	}

	report := &Report{OutputPath: a.OutputPath()}
	catalog := newCatalog(folders)
	for _, folder := range folders {
		entry, m := a.processFolder(folder)
		if m != nil {
			catalog.add(folder, m)
		}
		report.record(entry)
	}
	catalog.seal(a.now())
	report.Catalog = catalog

	if err := WriteCatalog(report.OutputPath, catalog); err != nil {
		return report, err
	}

	logger.Info("Merge summary",
		logger.Int("processed", report.Merged),
		logger.Int("skipped", report.Skipped),
		logger.Int("errors", report.Errors),
		logger.Strings("servers", catalog.IDs()),
		logger.String("output", report.OutputPath))

	if report.Merged == 0 {
		return report, ErrNothingMerged
	}
	return report, nil
}

func (a *Aggregator) processFolder(folder string) (Entry, *manifest.ServerManifest) {
	dir := filepath.Join(a.sourceRoot, folder)
	entry := Entry{Folder: folder}

	m, err := a.loader.Load(dir)
	if err != nil {
		entry.Err = err
		entry.Diagnostics = []string{err.Error()}
		var missing *manifest.MissingFileError
		var invalid *manifest.SchemaViolationError
		switch {
		case errors.As(err, &missing):
			entry.Status = StatusSkipped
			logger.Warn(fmt.Sprintf("No %s found in %s", a.loader.FileName, folder))
		case errors.As(err, &invalid):
			entry.Status = StatusFailed
			logger.Warn(fmt.Sprintf("Invalid manifest in %s: missing required fields", folder), logger.Err(err))
		default:
			entry.Status = StatusFailed
			logger.Error(fmt.Sprintf("Error processing %s", folder), logger.Err(err))
		}
		return entry, nil
	}

	rehomed, res, err := a.rehomer.Rehome(m, dir, folder)
	if err != nil {
		entry.Status = StatusFailed
		entry.Err = err
		entry.Diagnostics = []string{err.Error()}
		logger.Error(fmt.Sprintf("Error processing %s", folder), logger.Err(err))
		return entry, nil
	}

	entry.Status = StatusMerged
	entry.Copied = res.Copied
	entry.Missing = res.Missing
	entry.Outside = res.Outside
	for _, role := range res.Missing {
		entry.Diagnostics = append(entry.Diagnostics,
			fmt.Sprintf("%s asset %s not found; reference kept", role, m.Asset(role).RelativePath))
	}
	for _, role := range res.Outside {
		entry.Diagnostics = append(entry.Diagnostics,
			fmt.Sprintf("%s asset %s is outside %s; reference kept", role, m.Asset(role).RelativePath, folder))
	}
	if extra := m.ExtraKeys(); len(extra) > 0 {
		logger.Debug(fmt.Sprintf("Passing through extra fields for %s", folder), logger.Strings("fields", extra))
	}
	logger.Info(fmt.Sprintf("Processed %s", folder))
	return entry, rehomed
}
