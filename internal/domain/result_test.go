package domain

import (
	"errors"
	"testing"
)

func TestNewCheckResult_Valid(t *testing.T) {
	tests := []struct {
		name     string
		passed   bool
		severity Severity
	}{
		{"info passed", true, SeverityInfo},
		{"info failed", false, SeverityInfo},
		{"warning failed", false, SeverityWarning},
		{"warning passed", true, SeverityWarning},
		{"error failed", false, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewCheckResult(tt.passed, tt.severity, "checked", "details")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Passed != tt.passed || r.Severity != tt.severity {
				t.Errorf("got %+v, want passed=%v severity=%s", r, tt.passed, tt.severity)
			}
		})
	}
}

func TestNewCheckResult_EmptyMessage(t *testing.T) {
	_, err := NewCheckResult(true, SeverityInfo, "", "")
	assertSchemaReason(t, err, SchemaEmptyMessage)
}

func TestNewCheckResult_InvalidSeverity(t *testing.T) {
	for _, sev := range []Severity{"", "critical", "ERROR", "Info"} {
		_, err := NewCheckResult(false, sev, "msg", "")
		assertSchemaReason(t, err, SchemaInvalidSeverity)
	}
}

func TestNewCheckResult_InconsistentState(t *testing.T) {
	// severity=error with passed=true must fail construction, never be
	// silently coerced to one field or the other.
	_, err := NewCheckResult(true, SeverityError, "msg", "")
	assertSchemaReason(t, err, SchemaInconsistentState)
}

func assertSchemaReason(t *testing.T, err error, want SchemaReason) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %T: %v", err, err)
	}
	if schemaErr.Reason != want {
		t.Errorf("got reason %q, want %q", schemaErr.Reason, want)
	}
}

func TestParseSeverity(t *testing.T) {
	for _, valid := range []string{"info", "warning", "error"} {
		if _, err := ParseSeverity(valid); err != nil {
			t.Errorf("ParseSeverity(%q) = %v, want nil", valid, err)
		}
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Error("ParseSeverity(fatal) succeeded, want error")
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		if _, err := ParseCategory(string(c)); err != nil {
			t.Errorf("ParseCategory(%q) = %v, want nil", c, err)
		}
	}
	if _, err := ParseCategory("misc"); err == nil {
		t.Error("ParseCategory(misc) succeeded, want error")
	}
}

func TestCheckResult_NeedsReview(t *testing.T) {
	info, _ := NewCheckResult(true, SeverityInfo, "fine", "")
	if info.NeedsReview() {
		t.Error("info result should not need review")
	}
	warn, _ := NewCheckResult(false, SeverityWarning, "check this", "")
	if !warn.NeedsReview() {
		t.Error("warning result should need review")
	}
}
