// Package domain provides core types for the invoice checker.
package domain

import "fmt"

// Severity orders how urgently a check result needs human review.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity validates a raw severity string.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityInfo, SeverityWarning, SeverityError:
		return Severity(s), nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Valid reports whether the severity is one of the known levels.
func (s Severity) Valid() bool {
	_, err := ParseSeverity(string(s))
	return err == nil
}
