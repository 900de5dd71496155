// Package rehome copies a descriptor's image assets into the shared output
// tree and points the descriptor at the copies.
package rehome

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/manifold/pkg/logger"
	"github.com/fulmenhq/manifold/pkg/manifest"
	"github.com/fulmenhq/manifold/pkg/safeio"
)

// AssetsDir is the directory under the output root that holds rehomed assets.
const AssetsDir = "assets"

// DefaultExtension is appended to every rehomed asset regardless of the
// source file's own extension.
const DefaultExtension = "png"

// Rehomer copies assets below OutputRoot/assets/<namespace>/.
type Rehomer struct {
	OutputRoot string
	Extension  string
}

// Result describes what happened to each declared asset.
type Result struct {
	Copied  []manifest.Role
	Missing []manifest.Role
	// Outside lists roles whose reference resolves outside the source
	// directory. Those references are kept as written.
	Outside []manifest.Role
}

// New returns a Rehomer writing under outputRoot.
func New(outputRoot, ext string) *Rehomer {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = DefaultExtension
	}
	return &Rehomer{OutputRoot: outputRoot, Extension: ext}
}

// Destination returns the output file path for role within namespace.
func (r *Rehomer) Destination(namespace string, role manifest.Role) string {
	return filepath.Join(r.OutputRoot, AssetsDir, namespace, r.fileName(role))
}

// Reference returns the rewritten reference for role within namespace.
// References always use forward slashes.
func (r *Rehomer) Reference(namespace string, role manifest.Role) string {
	return "./" + path.Join(AssetsDir, namespace, r.fileName(role))
}

func (r *Rehomer) fileName(role manifest.Role) string {
	return string(role) + "." + r.Extension
}

// Rehome returns a copy of m whose asset references point at the rehomed
// files. A declared asset whose source file does not exist keeps its
// original reference and is listed in Result.Missing; it is not an error.
// A reference escaping sourceDir is treated the same way and listed in
// Result.Outside.
// The returned copy never shares asset references with m.
func (r *Rehomer) Rehome(m *manifest.ServerManifest, sourceDir, namespace string) (*manifest.ServerManifest, *Result, error) {
	out := m.Clone()
	res := &Result{}
	if !out.HasAssets() {
		return out, res, nil
	}
	if strings.ContainsAny(namespace, `/\`) || namespace == "" || namespace == "." || namespace == ".." {
		return nil, nil, fmt.Errorf("invalid namespace %q", namespace)
	}

	for _, role := range manifest.Roles() {
		ref := out.Asset(role)
		if ref == nil {
			continue
		}
		src, err := safeio.ResolveContained(sourceDir, ref.RelativePath)
		if errors.Is(err, safeio.ErrOutsideBase) {
			logger.Warn("Asset path leaves the server directory; reference left unchanged",
				logger.String("namespace", namespace),
				logger.String("role", string(role)),
				logger.String("path", ref.RelativePath))
			res.Outside = append(res.Outside, role)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s asset %q: %w", role, ref.RelativePath, err)
		}
		if !safeio.Exists(src) {
			logger.Debug("Asset source missing; reference left unchanged",
				logger.String("namespace", namespace),
				logger.String("role", string(role)),
				logger.String("path", src))
			res.Missing = append(res.Missing, role)
			continue
		}

		dst := r.Destination(namespace, role)
		if err := safeio.CopyFile(src, dst); err != nil {
			return nil, nil, fmt.Errorf("copy %s asset %s: %w", role, src, err)
		}
		ref.Resolved = dst
		ref.RelativePath = r.Reference(namespace, role)
		res.Copied = append(res.Copied, role)
	}
	return out, res, nil
}
