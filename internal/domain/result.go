package domain

import "fmt"

// SchemaReason identifies why a candidate check result failed validation.
type SchemaReason string

const (
	SchemaEmptyMessage      SchemaReason = "empty_message"
	SchemaInvalidSeverity   SchemaReason = "invalid_severity"
	SchemaInconsistentState SchemaReason = "inconsistent_state"
)

// SchemaError reports a candidate payload that failed result validation.
type SchemaError struct {
	Reason SchemaReason
	Detail string
}

func (e *SchemaError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("schema validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("schema validation failed: %s (%s)", e.Reason, e.Detail)
}

// CheckResult is the validated outcome of applying one rule to one
// document. Immutable once constructed; build instances through
// NewCheckResult so the invariants below always hold.
type CheckResult struct {
	Passed   bool
	Severity Severity
	Message  string
	Details  string
}

// NewCheckResult validates a candidate payload and constructs a
// CheckResult. Validation never coerces: an error-severity result
// claiming passed=true is rejected rather than silently fixed, because
// the caller (the model) may have meant either field.
func NewCheckResult(passed bool, severity Severity, message, details string) (CheckResult, error) {
	if message == "" {
		return CheckResult{}, &SchemaError{Reason: SchemaEmptyMessage}
	}
	if !severity.Valid() {
		return CheckResult{}, &SchemaError{
			Reason: SchemaInvalidSeverity,
			Detail: fmt.Sprintf("got %q", severity),
		}
	}
	if severity == SeverityError && passed {
		return CheckResult{}, &SchemaError{
			Reason: SchemaInconsistentState,
			Detail: "severity=error requires passed=false",
		}
	}
	return CheckResult{
		Passed:   passed,
		Severity: severity,
		Message:  message,
		Details:  details,
	}, nil
}

// NeedsReview reports whether the result requires human attention.
func (r CheckResult) NeedsReview() bool {
	return r.Severity != SeverityInfo
}
