package terminal

import (
	"fmt"
	"strings"
	"time"
)

// MaxReportWidth caps report line length on wide terminals.
const MaxReportWidth = 90

// ReportWidth returns the width reports should render at.
func ReportWidth() int {
	if w := Width(); w < MaxReportWidth {
		return w
	}
	return MaxReportWidth
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs / 60)
	return fmt.Sprintf("%dm %.1fs", mins, secs-float64(mins*60))
}

// Ruler returns a dimmed horizontal rule.
func Ruler(width int, char string) string {
	return Color(Dim) + strings.Repeat(char, width) + Color(Reset)
}

// WrapText wraps text to width, prefixing every line with indent.
func WrapText(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if width <= len(indent) {
		return indent + text
	}

	var lines []string
	line := indent + words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = indent + word
			continue
		}
		line += " " + word
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
