package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNewMatcher(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()

	writeFile(t, filepath.Join(root, ".gitignore"), "# scratch\n*.log\ndrafts/\n!drafts/keep.json\n")
	writeFile(t, filepath.Join(root, FileName), "# local\narchive/\n*.bak\n")

	matcher, err := NewMatcher(root)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}

	fileTests := []struct {
		path     string
		expected bool
		name     string
	}{
		{".git/config", true, "git directory"},
		{"node_modules/x/manifest.json", true, "node_modules directory"},
		{"build.log", true, "*.log pattern"},
		{"alpha/debug.log", true, "*.log pattern nested"},
		{"drafts/manifest.json", true, "drafts/ pattern"},
		{"archive/old/manifest.json", true, ".manifoldignore directory"},
		{"alpha/manifest.json.bak", true, ".manifoldignore glob"},
		{"alpha/manifest.json", false, "regular manifest"},
		{filepath.Join(root, "alpha", "icon.png"), false, "absolute path inside root"},
		{filepath.Join(root, "beta", "trace.log"), true, "absolute ignored path"},
	}
	for _, tt := range fileTests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matcher.IsIgnored(tt.path); got != tt.expected {
				t.Errorf("IsIgnored(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}

	dirTests := []struct {
		path     string
		expected bool
	}{
		{"drafts", true},
		{"archive", true},
		{"alpha", false},
		{filepath.Join(root, "archive"), true},
	}
	for _, tt := range dirTests {
		if got := matcher.IsIgnoredDir(tt.path); got != tt.expected {
			t.Errorf("IsIgnoredDir(%q) = %v, want %v", tt.path, got, tt.expected)
		}
	}
}

func TestUserLevelIgnore(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, ".manifold", FileName), "private/\n")

	matcher, err := NewMatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	if !matcher.IsIgnoredDir("private") {
		t.Error("expected user-level pattern to apply")
	}
}

func TestPathOutsideRootIsNotIgnored(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "*.json\n")
	matcher, err := NewMatcher(root)
	if err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(filepath.Dir(root), "elsewhere", "manifest.json")
	if matcher.IsIgnored(outside) {
		t.Errorf("path outside root should not match: %s", outside)
	}
}

func TestReadIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	writeFile(t, path, "# comment\n\n  one  \ntwo/\n")

	got, err := readIgnoreFile(path)
	if err != nil {
		t.Fatalf("readIgnoreFile: %v", err)
	}
	want := []string{"one", "two/"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pattern %d = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := readIgnoreFile(filepath.Join(dir, "other.txt")); err == nil {
		t.Error("expected disallowed path error")
	}
	if _, err := readIgnoreFile(filepath.Join(t.TempDir(), FileName)); err == nil {
		t.Error("expected not-exist error")
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{".", []string{}},
		{"a/b/c", []string{"a", "b", "c"}},
		{"/a//b/./c", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		got := splitPath(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitPath(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitPath(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestNilMatcher(t *testing.T) {
	var m *Matcher
	if m.IsIgnored("anything") || m.IsIgnoredDir("anything") {
		t.Error("nil matcher should ignore nothing")
	}
}
