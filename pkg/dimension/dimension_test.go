package dimension

import (
	"errors"
	"testing"

	"github.com/fulmenhq/manifold/pkg/manifest"
	"github.com/fulmenhq/manifold/pkg/raster"
)

func hdr(w, h uint32) raster.Header { return raster.Header{Width: w, Height: h} }

func TestCheckBackground(t *testing.T) {
	tests := []struct {
		h    raster.Header
		want bool
	}{
		{hdr(1920, 1080), true},
		{hdr(1920, 1081), false},
		{hdr(1080, 1920), false},
		{hdr(1919, 1080), false},
		{hdr(0, 0), false},
		{hdr(3840, 2160), false},
	}
	for _, tt := range tests {
		if got := CheckBackground(tt.h); got != tt.want {
			t.Errorf("CheckBackground(%s) = %v, want %v", tt.h, got, tt.want)
		}
	}
}

func TestCheckIcon(t *testing.T) {
	tests := []struct {
		h    raster.Header
		want bool
	}{
		{hdr(64, 64), true},
		{hdr(520, 520), true},
		{hdr(256, 256), true},
		{hdr(63, 63), false},
		{hdr(521, 521), false},
		{hdr(100, 200), false},
		{hdr(200, 100), false},
		{hdr(64, 65), false},
		{hdr(0, 0), false},
	}
	for _, tt := range tests {
		if got := CheckIcon(tt.h); got != tt.want {
			t.Errorf("CheckIcon(%s) = %v, want %v", tt.h, got, tt.want)
		}
	}
}

func TestRuleApply(t *testing.T) {
	rule, ok := ForRole(manifest.RoleIcon)
	if !ok {
		t.Fatal("no icon rule")
	}
	if err := rule.Apply("icon.png", hdr(128, 128)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := rule.Apply("servers/a/icon.png", hdr(100, 200))
	var de *DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
	want := "Icon dimensions are incorrect: 100x200 (expected: 64x64 to 520x520, must be square): servers/a/icon.png"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestBackgroundRuleMessage(t *testing.T) {
	rule, _ := ForRole(manifest.RoleBackground)
	err := rule.Apply("", hdr(1280, 720))
	want := "Background dimensions are incorrect: 1280x720 (expected: 1920x1080)"
	if err == nil || err.Error() != want {
		t.Errorf("got %v, want %q", err, want)
	}
}

func TestForRole_Unknown(t *testing.T) {
	if _, ok := ForRole(manifest.Role("banner")); ok {
		t.Error("expected no rule for unknown role")
	}
}
