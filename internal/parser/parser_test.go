package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/auditware/invocheck/internal/domain"
)

const validResponse = `{"check_result": {"passed": true, "severity": "info", "message": "all amounts add up", "details": "net + tax = gross"}}`

func TestParse_StrictSuccess(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bare JSON", validResponse},
		{"fenced json block", "```json\n" + validResponse + "\n```"},
		{"plain fence", "```\n" + validResponse + "\n```"},
		{"leading prose", "Here is the result:\n" + validResponse},
		{"trailing prose", validResponse + "\nLet me know if you need more."},
	}

	p := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, status := p.Parse(tt.raw)
			if status != domain.StatusSucceeded {
				t.Fatalf("status = %s, want %s", status, domain.StatusSucceeded)
			}
			if !result.Passed || result.Severity != domain.SeverityInfo {
				t.Errorf("got %+v, want passed=true severity=info", result)
			}
			if result.Message != "all amounts add up" {
				t.Errorf("message = %q", result.Message)
			}
		})
	}
}

func TestParse_FallbackOnMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no JSON", "the invoice looks fine to me"},
		{"truncated JSON", `{"check_result": {"passed": true, "sev`},
		{"missing required field", `{"check_result": {"passed": true, "message": "ok"}}`},
		{"missing envelope", `{"passed": true, "severity": "info", "message": "ok"}`},
		{"empty message", `{"check_result": {"passed": true, "severity": "info", "message": ""}}`},
		{"bad severity", `{"check_result": {"passed": false, "severity": "fatal", "message": "x"}}`},
		{"inconsistent", `{"check_result": {"passed": true, "severity": "error", "message": "x"}}`},
	}

	p := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, status := p.Parse(tt.raw)
			if status != domain.StatusFallback {
				t.Fatalf("status = %s, want %s", status, domain.StatusFallback)
			}
			if result.Passed {
				t.Error("fallback result must have passed=false")
			}
			if result.Severity != domain.SeverityWarning {
				t.Errorf("severity = %s, want warning", result.Severity)
			}
			if result.Message == "" {
				t.Error("fallback result must carry a message")
			}
		})
	}
}

func TestParse_FallbackPreservesRawText(t *testing.T) {
	raw := "the totals are a mismatch, this fails"
	p := New(nil)
	result, _ := p.Parse(raw)
	if result.Details != raw {
		t.Errorf("details = %q, want original raw text", result.Details)
	}
	if !strings.Contains(result.Message, "mismatch") {
		t.Errorf("message %q should mention detected markers", result.Message)
	}
}

func TestParse_FallbackTruncatesLongOutput(t *testing.T) {
	raw := strings.Repeat("x", maxFallbackDetails+500)
	p := New(nil)
	result, _ := p.Parse(raw)
	if len(result.Details) > maxFallbackDetails+3 {
		t.Errorf("details length %d exceeds bound", len(result.Details))
	}
	if !strings.HasSuffix(result.Details, "...") {
		t.Error("truncated details should end with ellipsis")
	}
}

func TestParse_InternalErrorWhenFallbackFails(t *testing.T) {
	failing := func(string) (domain.CheckResult, error) {
		return domain.CheckResult{}, fmt.Errorf("no recovery possible")
	}
	p := New(failing)

	result, status := p.Parse("garbage")
	if status != domain.StatusFallback {
		t.Fatalf("status = %s, want %s", status, domain.StatusFallback)
	}
	if result.Severity != domain.SeverityError || result.Passed {
		t.Errorf("got %+v, want fixed internal-error result", result)
	}
	if result.Message != InternalErrorMessage {
		t.Errorf("message = %q, want %q", result.Message, InternalErrorMessage)
	}
}

func TestParse_InternalErrorWhenFallbackInvalid(t *testing.T) {
	// A fallback that produces an invalid result must not leak it past
	// the parser.
	invalid := func(string) (domain.CheckResult, error) {
		return domain.CheckResult{Passed: true, Severity: domain.SeverityError, Message: "x"}, nil
	}
	p := New(invalid)

	result, _ := p.Parse("garbage")
	if result.Message != InternalErrorMessage {
		t.Errorf("message = %q, want internal-error result", result.Message)
	}
}

func TestDecodeStrict_ValidationErrors(t *testing.T) {
	_, err := DecodeStrict(`{"check_result": {"passed": true, "severity": "error", "message": "x"}}`)
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestExtractJSON_NestedBraces(t *testing.T) {
	raw := `note {"check_result": {"passed": false, "severity": "warning", "message": "m"}} done`
	got := extractJSON(raw)
	if !strings.HasPrefix(got, `{"check_result"`) || !strings.HasSuffix(got, "}") {
		t.Errorf("extractJSON = %q", got)
	}
}
