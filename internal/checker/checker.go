// Package checker executes single (document, rule) check units.
package checker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/auditware/invocheck/internal/domain"
	"github.com/auditware/invocheck/internal/llm"
	"github.com/auditware/invocheck/internal/parser"
)

// Unit is the atomic piece of work: one rule applied to one document.
// Rule and Document are referenced, never copied, and must not be
// mutated while a batch is in flight.
type Unit struct {
	Rule     *domain.CheckRule
	Document *domain.DocumentText
}

// Config holds per-unit execution settings.
type Config struct {
	// Timeout bounds each model invocation attempt.
	Timeout time.Duration
	// Retries is how many times a failed invocation is re-attempted.
	// Parse failures are never retried; the fallback already produced
	// a valid result for them.
	Retries int
	// MaxTokens caps the model response size. Zero uses the client default.
	MaxTokens int
}

// Checker runs check units against a model backend.
type Checker struct {
	invoker llm.Invoker
	parser  *parser.Parser
	config  Config
}

// New creates a checker. A nil parser gets the default fallback.
func New(invoker llm.Invoker, p *parser.Parser, config Config) (*Checker, error) {
	if invoker == nil {
		return nil, fmt.Errorf("an invoker is required")
	}
	if p == nil {
		p = parser.New(nil)
	}
	if config.Timeout <= 0 {
		return nil, fmt.Errorf("a positive invocation timeout is required")
	}
	return &Checker{invoker: invoker, parser: p, config: config}, nil
}

// Run executes one unit and always returns a CheckOutcome. Invocation
// failures become error-severity results; decode failures take the
// parser's fallback path. Run never returns an error and never panics
// past its own frame.
func (c *Checker) Run(ctx context.Context, unit Unit) domain.CheckOutcome {
	outcome := domain.CheckOutcome{
		FileName: unit.Document.FileName,
		RuleID:   unit.Rule.ID,
		RuleName: unit.Rule.Name,
	}

	raw, err := c.invokeWithRetry(ctx, unit)
	if err != nil {
		outcome.Status = domain.StatusError
		outcome.RawError = err.Error()
		outcome.Result = invocationErrorResult(err)
		return outcome
	}

	outcome.Result, outcome.Status = c.parser.Parse(raw)
	return outcome
}

func (c *Checker) invokeWithRetry(ctx context.Context, unit Unit) (string, error) {
	req := llm.Request{
		SystemPrompt: BuildSystemPrompt(unit.Rule),
		UserPrompt:   BuildUserPrompt(unit.Rule, unit.Document),
		MaxTokens:    c.config.MaxTokens,
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.Retries; attempt++ {
		if ctx.Err() != nil {
			return "", &llm.InvocationError{Kind: llm.KindTimeout, Err: ctx.Err()}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		raw, err := c.invoker.Invoke(attemptCtx, req)
		cancel()
		if err == nil {
			return raw, nil
		}
		lastErr = err

		if attempt < c.config.Retries {
			delay := time.Duration(1<<attempt) * time.Second
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", &llm.InvocationError{Kind: llm.KindTimeout, Err: ctx.Err()}
			}
		}
	}
	return "", lastErr
}

// invocationErrorResult synthesizes the terminal result for a unit
// whose model call failed. Constructed directly so it cannot fail.
func invocationErrorResult(err error) domain.CheckResult {
	kind := llm.KindTransport
	var invErr *llm.InvocationError
	if errors.As(err, &invErr) {
		kind = invErr.Kind
	}
	return domain.CheckResult{
		Passed:   false,
		Severity: domain.SeverityError,
		Message:  fmt.Sprintf("check could not be executed: model invocation failed (%s)", kind),
		Details:  err.Error(),
	}
}
