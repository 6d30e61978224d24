// Package llm provides the model invocation boundary for the checker.
package llm

import (
	"context"
	"fmt"
)

// Request contains the prompts sent to the model for one invocation.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// Invoker executes a single blocking call against a text-generation
// backend and returns the raw response text. Implementations must
// honor ctx for timeout and cancellation and must not retry; retry
// policy belongs to the caller.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (string, error)
	Name() string
}

// ErrorKind classifies an invocation failure.
type ErrorKind string

const (
	// KindTimeout means the call exceeded its deadline or was canceled.
	KindTimeout ErrorKind = "timeout"
	// KindTransport covers network, protocol, and auth failures.
	KindTransport ErrorKind = "transport"
)

// InvocationError reports a failed model invocation.
type InvocationError struct {
	Kind ErrorKind
	Err  error
}

func (e *InvocationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("model invocation failed: %s", e.Kind)
	}
	return fmt.Sprintf("model invocation failed: %s: %v", e.Kind, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// ClassifyContextError maps a context error to the invocation error
// taxonomy. Both deadline expiry and cancellation count as timeout:
// from the unit's perspective the call was cut short either way.
func ClassifyContextError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return &InvocationError{Kind: KindTimeout, Err: ctx.Err()}
	}
	return &InvocationError{Kind: KindTransport, Err: err}
}
