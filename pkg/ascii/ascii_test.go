package ascii

import (
	"bytes"
	"testing"
)

func TestBox(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "single line",
			lines: []string{"Hello"},
			want:  "┌───────┐\n│ Hello │\n└───────┘\n",
		},
		{
			name:  "multiple lines",
			lines: []string{"Line 1", "Longer line here", "Short"},
			want: "┌──────────────────┐\n" +
				"│ Line 1           │\n" +
				"│ Longer line here │\n" +
				"│ Short            │\n" +
				"└──────────────────┘\n",
		},
		{
			name:  "trailing spaces trimmed",
			lines: []string{"merged   ", "ok"},
			want:  "┌────────┐\n│ merged │\n│ ok     │\n└────────┘\n",
		},
		{
			name:  "wide characters",
			lines: []string{"全角文字", "abc"},
			want: "┌──────────┐\n" +
				"│ 全角文字 │\n" +
				"│ abc      │\n" +
				"└──────────┘\n",
		},
		{
			name:  "empty",
			lines: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Box(tt.lines); got != tt.want {
				t.Errorf("Box() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDrawBox(t *testing.T) {
	var buf bytes.Buffer
	DrawBox(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("DrawBox(nil) wrote %q", buf.String())
	}
	DrawBox(&buf, []string{"x"})
	if buf.String() != "┌───┐\n│ x │\n└───┘\n" {
		t.Errorf("DrawBox() wrote %q", buf.String())
	}
}

func TestKeyValues(t *testing.T) {
	got := KeyValues([][2]string{{"Processed", "3"}, {"Errors", "0"}})
	want := []string{"Processed: 3", "Errors:    0"}
	if len(got) != len(want) {
		t.Fatalf("KeyValues() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStringWidth(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"Hello", 5},
		{"你好世界", 8},
		{"", 0},
		{"café", 4},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := StringWidth(tt.input); got != tt.want {
				t.Errorf("StringWidth(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestRuneWidth(t *testing.T) {
	tests := []struct {
		r    rune
		want int
		desc string
	}{
		{'A', 1, "ASCII letter"},
		{'你', 2, "CJK character"},
		{'̀', 0, "combining mark"},
		{'\u0000', 0, "null character"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := RuneWidth(tt.r); got != tt.want {
				t.Errorf("RuneWidth(%q U+%04X) = %d, want %d", tt.r, tt.r, got, tt.want)
			}
		})
	}
}

func TestTruncateForBox(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		width    int
		expected string
	}{
		{"no truncation", "Hello", 10, "Hello"},
		{"truncation", "This is a very long string", 10, "This is..."},
		{"exact width", "Hello", 5, "Hello"},
		{"width too small", "Hello", 2, "He"},
		{"zero width", "Hello", 0, ""},
		{"wide runes", "servers/全角文字/manifest.json", 12, "servers/..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateForBox(tt.value, tt.width); got != tt.expected {
				t.Errorf("TruncateForBox(%q, %d) = %q, want %q", tt.value, tt.width, got, tt.expected)
			}
		})
	}
}
