package domain

// Status describes how a check unit reached its result.
type Status string

const (
	// StatusSucceeded means the model response decoded cleanly.
	StatusSucceeded Status = "succeeded"
	// StatusFallback means structured decoding failed and the degraded
	// recovery path produced the result.
	StatusFallback Status = "failed-fallback"
	// StatusError means the model invocation itself failed and the
	// result is a synthesized diagnostic.
	StatusError Status = "failed-error"
)

// CheckOutcome pairs a CheckResult with its originating unit. Created
// exactly once per (file, rule) pair; owned by the aggregator after
// collection.
type CheckOutcome struct {
	FileName string
	RuleID   string
	RuleName string
	Status   Status
	Result   CheckResult
	// RawError holds the underlying error text when Status is
	// StatusError, empty otherwise.
	RawError string
}

// Succeeded reports whether the strict decode path produced the result.
func (o CheckOutcome) Succeeded() bool {
	return o.Status == StatusSucceeded
}
