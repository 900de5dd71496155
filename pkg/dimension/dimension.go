// Package dimension holds the size rules each asset role must satisfy.
package dimension

import (
	"fmt"

	"github.com/fulmenhq/manifold/pkg/manifest"
	"github.com/fulmenhq/manifold/pkg/raster"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	BackgroundWidth  = 1920
	BackgroundHeight = 1080

	IconMin = 64
	IconMax = 520
)

// CheckBackground accepts exactly 1920x1080.
func CheckBackground(h raster.Header) bool {
	return h.Width == BackgroundWidth && h.Height == BackgroundHeight
}

// CheckIcon accepts square images with a side between 64 and 520 inclusive.
func CheckIcon(h raster.Header) bool {
	return h.Width == h.Height && h.Width >= IconMin && h.Width <= IconMax
}

// Rule pairs a predicate with the human-readable expectation it encodes.
type Rule struct {
	Role     manifest.Role
	Check    func(raster.Header) bool
	Expected string
}

var rules = map[manifest.Role]Rule{
	manifest.RoleBackground: {
		Role:     manifest.RoleBackground,
		Check:    CheckBackground,
		Expected: fmt.Sprintf("%dx%d", BackgroundWidth, BackgroundHeight),
	},
	manifest.RoleIcon: {
		Role:     manifest.RoleIcon,
		Check:    CheckIcon,
		Expected: fmt.Sprintf("%dx%d to %dx%d, must be square", IconMin, IconMin, IconMax, IconMax),
	},
}

// ForRole returns the rule for role.
func ForRole(role manifest.Role) (Rule, bool) {
	r, ok := rules[role]
	return r, ok
}

// Apply checks h against the rule and returns a *DimensionError on failure.
func (r Rule) Apply(path string, h raster.Header) error {
	if r.Check(h) {
		return nil
	}
	return &DimensionError{Role: r.Role, Path: path, Actual: h, Expected: r.Expected}
}

// DimensionError reports decoded dimensions that fail the role's rule.
type DimensionError struct {
	Role     manifest.Role
	Path     string
	Actual   raster.Header
	Expected string
}

func (e *DimensionError) Error() string {
	msg := fmt.Sprintf("%s dimensions are incorrect: %s (expected: %s)", Title(e.Role), e.Actual, e.Expected)
	if e.Path != "" {
		msg += ": " + e.Path
	}
	return msg
}

// Title renders a role for display, e.g. "Background".
func Title(role manifest.Role) string {
	return cases.Title(language.English).String(string(role))
}
