package terminal

import (
	"strings"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "0.5s"},
		{time.Second, "1.0s"},
		{90 * time.Second, "1m 30.0s"},
		{2*time.Minute + 5*time.Second, "2m 5.0s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestWrapText(t *testing.T) {
	got := WrapText("one two three four five six", 15, "  ")
	for _, line := range strings.Split(got, "\n") {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("line %q missing indent", line)
		}
		if len(line) > 15 {
			t.Errorf("line %q exceeds width 15", line)
		}
	}
	if strings.ReplaceAll(strings.ReplaceAll(got, "\n", " "), "  ", " ") == "" {
		t.Error("wrapped text empty")
	}

	if got := WrapText("", 20, "  "); got != "" {
		t.Errorf("WrapText of empty string = %q", got)
	}
	// Width narrower than the indent degrades to a single line.
	if got := WrapText("word", 1, "    "); got != "    word" {
		t.Errorf("got %q", got)
	}
}

func TestColorToggle(t *testing.T) {
	EnableColors()
	if Color(Red) != Red {
		t.Error("Color should pass codes through when enabled")
	}

	WithColorsDisabled(func() {
		if Color(Red) != "" {
			t.Error("Color should return empty string when disabled")
		}
	})

	if Color(Red) != Red {
		t.Error("WithColorsDisabled should restore the previous state")
	}
}

func TestRuler(t *testing.T) {
	WithColorsDisabled(func() {
		got := Ruler(10, "─")
		if got != strings.Repeat("─", 10) {
			t.Errorf("Ruler = %q", got)
		}
	})
}
