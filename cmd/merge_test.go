package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/manifold/pkg/exitcode"
)

func TestMerge(t *testing.T) {
	root := serverTree(t, "alpha", "bravo")
	writeFile(t, filepath.Join(root, "wip", "notes.txt"), []byte("todo"))
	outDir := filepath.Join(t.TempDir(), "merged")

	out, logs, err := execRoot(t, []string{"merge", "--source", root, "--output", outDir})
	if err != nil {
		t.Fatalf("merge failed: %v\n%s\n%s", err, out, logs)
	}
	for _, want := range []string{"Merge summary", "Processed: 2", "Skipped:   1", "Errors:    0", "┌"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(logs, "No manifest.json found in wip") {
		t.Errorf("expected skip warning in logs:\n%s", logs)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "merged-manifest.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Servers  map[string]map[string]any `json:"servers"`
		Metadata map[string]any            `json:"metadata"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("catalog is not JSON: %v", err)
	}
	if len(doc.Servers) != 2 || doc.Metadata["totalServers"] != float64(2) {
		t.Errorf("unexpected catalog: %s", data)
	}
	if _, err := os.Stat(filepath.Join(outDir, "assets", "alpha", "icon.png")); err != nil {
		t.Errorf("icon not rehomed: %v", err)
	}
}

func TestMerge_NothingMerged(t *testing.T) {
	root := filepath.Join(t.TempDir(), "servers")
	writeFile(t, filepath.Join(root, "empty", "README.md"), []byte("-"))
	outDir := filepath.Join(t.TempDir(), "merged")

	out, _, err := execRoot(t, []string{"merge", "--source", root, "--output", outDir})
	if got := exitcode.Code(err); got != exitcode.GeneralError {
		t.Fatalf("exit code = %d, want %d", got, exitcode.GeneralError)
	}
	if !strings.Contains(out, "Processed: 0") {
		t.Errorf("summary should still print:\n%s", out)
	}
	if _, statErr := os.Stat(filepath.Join(outDir, "merged-manifest.json")); statErr != nil {
		t.Errorf("catalog should be written even when empty: %v", statErr)
	}
}

func TestMerge_MissingSource(t *testing.T) {
	_, _, err := execRoot(t, []string{"merge", "--source", filepath.Join(t.TempDir(), "nope"), "--output", t.TempDir()})
	if got := exitcode.Code(err); got != exitcode.FileSystemError {
		t.Fatalf("exit code = %d, want %d (err=%v)", got, exitcode.FileSystemError, err)
	}
}

func TestMerge_VerifiesWhenRootSchemaPresent(t *testing.T) {
	root := serverTree(t, "alpha")
	writeFile(t, filepath.Join(root, "manifest-schema.json"), []byte(`{"type":"object"}`))
	writeFile(t, filepath.Join(root, "echo", "manifest.json"), []byte(`{"server-address":["e"],"pretty-name":"Echo","categorys":["c"]}`))

	_, logs, err := execRoot(t, []string{"merge", "--source", root, "--output", filepath.Join(t.TempDir(), "out")})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if !strings.Contains(logs, "echo: Missing required assets") {
		t.Errorf("expected advisory verification warning:\n%s", logs)
	}
}
