package cmd

import (
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	out, _, err := execRoot(t, []string{"version"})
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "manifold ") {
		t.Errorf("unexpected output %q", out)
	}
	if strings.Contains(out, "Go version") {
		t.Error("basic output should not include build details")
	}
}

func TestVersionCommand_Extended(t *testing.T) {
	out, _, err := execRoot(t, []string{"version", "--extended"})
	if err != nil {
		t.Fatalf("version --extended failed: %v", err)
	}
	for _, want := range []string{"Git commit:", "Build date:", "Go version:", "Platform:",
		"Embedded schemas:", "manifest-v1", "manifest-schema.json (draft-07)", "manifold-config-v1"} {
		if !strings.Contains(out, want) {
			t.Errorf("extended output missing %q:\n%s", want, out)
		}
	}
}
