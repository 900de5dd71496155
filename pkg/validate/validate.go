// Package validate checks every descriptor under a source tree without
// modifying anything: structural validity against a JSON schema, presence of
// the referenced assets and, optionally, their pixel dimensions.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/manifold/internal/assets"
	"github.com/fulmenhq/manifold/pkg/dimension"
	"github.com/fulmenhq/manifold/pkg/ignore"
	"github.com/fulmenhq/manifold/pkg/logger"
	"github.com/fulmenhq/manifold/pkg/manifest"
	"github.com/fulmenhq/manifold/pkg/raster"
	"github.com/fulmenhq/manifold/pkg/safeio"
	"github.com/fulmenhq/manifold/pkg/schema"
)

// DefaultSchemaFile is looked up next to each descriptor, then at the root.
const DefaultSchemaFile = "manifest-schema.json"

// Schema sources recorded in ManifestReport.Schema.
const (
	SchemaLocal    = "local"
	SchemaRoot     = "root"
	SchemaEmbedded = "embedded"
)

// Options configures a validation pass.
type Options struct {
	SourceRoot   string
	ManifestFile string
	SchemaFile   string

	CheckSchema     bool
	CheckDimensions bool
	// RequireRoles fails a descriptor that does not declare every role.
	RequireRoles bool

	Decoder  raster.Decoder
	Exclude  []string
	NoIgnore bool
}

// DefaultOptions enables every check against root.
func DefaultOptions(root string) Options {
	return Options{
		SourceRoot:      root,
		ManifestFile:    manifest.DefaultFileName,
		SchemaFile:      DefaultSchemaFile,
		CheckSchema:     true,
		CheckDimensions: true,
		RequireRoles:    true,
		Decoder:         raster.FixedOffset{},
	}
}

// AssetCheck is the outcome for one role of one descriptor.
type AssetCheck struct {
	Role       manifest.Role `json:"role" yaml:"role" toml:"role"`
	File       string        `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
	Exists     bool          `json:"exists" yaml:"exists" toml:"exists"`
	Dimensions string        `json:"dimensions,omitempty" yaml:"dimensions,omitempty" toml:"dimensions,omitempty"`
	Passed     bool          `json:"passed" yaml:"passed" toml:"passed"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
	Err        error         `json:"-" yaml:"-" toml:"-"`
}

// ManifestReport collects every problem found in one descriptor.
type ManifestReport struct {
	Path   string       `json:"path" yaml:"path" toml:"path"`
	Schema string       `json:"schema,omitempty" yaml:"schema,omitempty" toml:"schema,omitempty"`
	Passed bool         `json:"passed" yaml:"passed" toml:"passed"`
	Errors []string     `json:"errors,omitempty" yaml:"errors,omitempty" toml:"errors,omitempty"`
	Assets []AssetCheck `json:"assets,omitempty" yaml:"assets,omitempty" toml:"assets,omitempty"`
}

func (m *ManifestReport) fail(msg string) {
	m.Passed = false
	m.Errors = append(m.Errors, msg)
}

// Report is the result of a validation pass. Empty is set when no
// descriptor was found; such a pass still counts as Passed.
type Report struct {
	Root      string           `json:"root" yaml:"root" toml:"root"`
	Manifests []ManifestReport `json:"manifests" yaml:"manifests" toml:"manifests"`
	Passed    bool             `json:"passed" yaml:"passed" toml:"passed"`
	Empty     bool             `json:"empty" yaml:"empty" toml:"empty"`
}

// Failed counts descriptors that did not pass.
func (r *Report) Failed() int {
	n := 0
	for _, m := range r.Manifests {
		if !m.Passed {
			n++
		}
	}
	return n
}

// Validator runs validation passes over one source tree.
type Validator struct {
	opts    Options
	ignore  *ignore.Matcher
	schemas map[string]*schema.Validator
}

// New prepares a Validator. Empty file names fall back to defaults.
func New(opts Options) (*Validator, error) {
	if opts.ManifestFile == "" {
		opts.ManifestFile = manifest.DefaultFileName
	}
	if opts.SchemaFile == "" {
		opts.SchemaFile = DefaultSchemaFile
	}
	if opts.Decoder == nil {
		opts.Decoder = raster.FixedOffset{}
	}
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	v := &Validator{opts: opts, schemas: map[string]*schema.Validator{}}
	if !opts.NoIgnore {
		m, err := ignore.NewMatcher(opts.SourceRoot)
		if err != nil {
			return nil, err
		}
		v.ignore = m
	}
	return v, nil
}

// Discover walks the source root and returns every descriptor path in
// lexical order.
func (v *Validator) Discover() ([]string, error) {
	root := v.opts.SourceRoot
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan source root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root %s is not a directory", root)
	}

	var found []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if v.ignore.IsIgnoredDir(rel) || v.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != v.opts.ManifestFile || v.ignore.IsIgnored(rel) || v.excluded(rel) {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (v *Validator) excluded(rel string) bool {
	for _, p := range v.opts.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Run validates every discovered descriptor. Failures are collected in the
// report; the returned error is reserved for problems scanning the tree.
func (v *Validator) Run() (*Report, error) {
	logger.Info("Finding manifest files", logger.String("root", v.opts.SourceRoot))
	paths, err := v.Discover()
	if err != nil {
		return nil, err
	}

	report := &Report{Root: v.opts.SourceRoot, Passed: true, Manifests: []ManifestReport{}}
	if len(paths) == 0 {
		report.Empty = true
		logger.Info("No manifest files found.")
		return report, nil
	}
	logger.Info(fmt.Sprintf("Found %d manifest file(s)", len(paths)), logger.Strings("files", paths))

	for _, p := range paths {
		mr := v.ValidateFile(p)
		if !mr.Passed {
			report.Passed = false
		}
		report.Manifests = append(report.Manifests, mr)
	}
	return report, nil
}

// ValidateFile checks a single descriptor. Every check that can run does
// run, so one report lists all problems at once.
func (v *Validator) ValidateFile(path string) ManifestReport {
	mr := ManifestReport{Path: path, Passed: true}
	logger.Info(fmt.Sprintf("Validating %s", path))

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		mr.fail(fmt.Sprintf("Error processing %s: %v", path, err))
		return mr
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		if err == nil {
			err = errors.New("descriptor is not a JSON object")
		}
		mr.fail((&manifest.ParseError{Path: path, Err: err}).Error())
		return mr
	}

	if v.opts.CheckSchema {
		v.checkSchema(&mr, data)
	}
	v.checkAssets(&mr, doc)

	if mr.Passed {
		logger.Info(fmt.Sprintf("%s is valid", path))
	} else {
		logger.Warn(fmt.Sprintf("Validation failed for %s", path), logger.Int("errors", len(mr.Errors)))
	}
	return mr
}

func (v *Validator) checkSchema(mr *ManifestReport, data []byte) {
	sv, source, err := v.schemaFor(filepath.Dir(mr.Path))
	mr.Schema = source
	if err != nil {
		mr.fail(fmt.Sprintf("schema (%s): %v", source, err))
		return
	}
	res, err := sv.ValidateBytes(data)
	if err != nil {
		mr.fail(fmt.Sprintf("schema (%s): %v", source, err))
		return
	}
	for _, e := range res.Errors {
		mr.fail(e.String())
	}
}

// schemaFor resolves the schema for a descriptor directory: a local schema
// file, then the root one, then the embedded default. Compiled schemas are
// cached by path.
func (v *Validator) schemaFor(dir string) (*schema.Validator, string, error) {
	local := filepath.Join(dir, v.opts.SchemaFile)
	rootSchema := filepath.Join(v.opts.SourceRoot, v.opts.SchemaFile)

	var key, source string
	switch {
	case filepath.Clean(dir) != filepath.Clean(v.opts.SourceRoot) && safeio.Exists(local):
		key, source = local, SchemaLocal
		logger.Debug(fmt.Sprintf("Using local schema: %s", local))
	case safeio.Exists(rootSchema):
		key, source = rootSchema, SchemaRoot
		logger.Debug("Using root schema")
	default:
		key, source = "", SchemaEmbedded
		logger.Debug("Using embedded schema")
	}

	if sv, ok := v.schemas[key]; ok {
		return sv, source, nil
	}
	var (
		sv  *schema.Validator
		err error
	)
	if key == "" {
		sv, err = schema.GetEmbeddedValidator(assets.ManifestSchema)
	} else {
		sv, err = schema.NewValidatorFromFile(key)
	}
	if err != nil {
		return nil, source, err
	}
	v.schemas[key] = sv
	return sv, source, nil
}

func (v *Validator) checkAssets(mr *ManifestReport, doc map[string]any) {
	raw, present := doc[manifest.FieldAssets]
	section, ok := raw.(map[string]any)
	if !present || !ok {
		mr.fail(fmt.Sprintf("No assets section found in %s", mr.Path))
		return
	}

	dir := filepath.Dir(mr.Path)
	for _, role := range manifest.Roles() {
		check := AssetCheck{Role: role}
		ref, declared := section[string(role)].(string)
		if !declared || strings.TrimSpace(ref) == "" {
			if _, present := section[string(role)]; present && !declared {
				check.Error = fmt.Sprintf("%s asset reference must be a string", dimension.Title(role))
				mr.fail(check.Error)
				mr.Assets = append(mr.Assets, check)
				continue
			}
			if v.opts.RequireRoles {
				check.Error = fmt.Sprintf("No %s image specified in manifest", role)
				mr.fail(check.Error)
				mr.Assets = append(mr.Assets, check)
			}
			continue
		}

		file := filepath.Join(dir, filepath.FromSlash(ref))
		check.File = file
		v.checkAsset(&check)
		if !check.Passed {
			mr.fail(check.Error)
		}
		mr.Assets = append(mr.Assets, check)
	}
}

func (v *Validator) checkAsset(check *AssetCheck) {
	if !safeio.Exists(check.File) {
		check.Err = &manifest.MissingFileError{Path: check.File}
		check.Error = fmt.Sprintf("%s file not found: %s", dimension.Title(check.Role), check.File)
		return
	}
	check.Exists = true
	if !v.opts.CheckDimensions {
		check.Passed = true
		return
	}

	h, err := raster.ReadFile(check.File, v.opts.Decoder)
	if err != nil {
		check.Err = err
		check.Error = fmt.Sprintf("Error validating %s: %v", check.Role, err)
		return
	}
	check.Dimensions = h.String()
	if rule, ok := dimension.ForRole(check.Role); ok {
		if err := rule.Apply(check.File, h); err != nil {
			check.Err = err
			check.Error = err.Error()
			return
		}
	}
	check.Passed = true
}
