/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package exitcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeConstants(t *testing.T) {
	cases := map[int]int{
		Success:           0,
		GeneralError:      1,
		ConfigError:       2,
		ValidationError:   3,
		FileSystemError:   4,
		UnsupportedFormat: 8,
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("constant = %v, expected %v", got, want)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{Success, "Success"},
		{GeneralError, "General error"},
		{ConfigError, "Configuration error"},
		{ValidationError, "Validation error"},
		{FileSystemError, "File system error"},
		{UnsupportedFormat, "Unsupported format"},
		{99, "Unknown error"},
	}
	for _, test := range tests {
		if result := String(test.code); result != test.expected {
			t.Errorf("String(%d) = %q, expected %q", test.code, result, test.expected)
		}
	}
}

func TestCode(t *testing.T) {
	base := errors.New("3 manifests failed")
	wrapped := fmt.Errorf("validate: %w", New(ValidationError, base))

	if got := Code(nil); got != Success {
		t.Errorf("Code(nil) = %d", got)
	}
	if got := Code(base); got != GeneralError {
		t.Errorf("Code(plain) = %d", got)
	}
	if got := Code(wrapped); got != ValidationError {
		t.Errorf("Code(wrapped) = %d", got)
	}
	if !errors.Is(wrapped, base) {
		t.Error("Error should unwrap to its cause")
	}
	if wrapped.Error() != "validate: 3 manifests failed" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if New(ConfigError, nil).Error() != "Configuration error" {
		t.Error("nil cause should fall back to the code description")
	}
}
