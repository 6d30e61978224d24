package checker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/auditware/invocheck/internal/domain"
	"github.com/auditware/invocheck/internal/llm"
	"github.com/auditware/invocheck/internal/parser"
)

type fakeInvoker struct {
	fn    func(ctx context.Context, req llm.Request) (string, error)
	calls int
}

func (f *fakeInvoker) Invoke(ctx context.Context, req llm.Request) (string, error) {
	f.calls++
	return f.fn(ctx, req)
}

func (f *fakeInvoker) Name() string { return "fake" }

func testUnit() Unit {
	return Unit{
		Rule: &domain.CheckRule{
			ID:       "rule-1",
			Name:     "Amount consistency",
			Category: domain.CategoryAmount,
			Prompt:   "Check the arithmetic.",
		},
		Document: &domain.DocumentText{
			FileName: "invoice-001.txt",
			Content:  "Total: 1100 (net 1000, tax 100)",
		},
	}
}

const validResponse = `{"check_result": {"passed": true, "severity": "info", "message": "arithmetic checks out"}}`

func TestRun_Succeeded(t *testing.T) {
	inv := &fakeInvoker{fn: func(context.Context, llm.Request) (string, error) {
		return validResponse, nil
	}}
	c, err := New(inv, parser.New(nil), Config{Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	out := c.Run(context.Background(), testUnit())
	if out.Status != domain.StatusSucceeded {
		t.Fatalf("status = %s, want succeeded", out.Status)
	}
	if out.FileName != "invoice-001.txt" || out.RuleID != "rule-1" {
		t.Errorf("outcome identity wrong: %+v", out)
	}
	if !out.Result.Passed || out.Result.Severity != domain.SeverityInfo {
		t.Errorf("result = %+v", out.Result)
	}
}

func TestRun_FallbackOnMalformedResponse(t *testing.T) {
	inv := &fakeInvoker{fn: func(context.Context, llm.Request) (string, error) {
		return "I could not produce JSON, but the invoice has an error in it", nil
	}}
	c, _ := New(inv, parser.New(nil), Config{Timeout: time.Second})

	out := c.Run(context.Background(), testUnit())
	if out.Status != domain.StatusFallback {
		t.Fatalf("status = %s, want failed-fallback", out.Status)
	}
	if out.Result.Severity != domain.SeverityWarning || out.Result.Passed {
		t.Errorf("result = %+v, want warning/failed", out.Result)
	}
}

func TestRun_InvocationFailure(t *testing.T) {
	inv := &fakeInvoker{fn: func(context.Context, llm.Request) (string, error) {
		return "", &llm.InvocationError{Kind: llm.KindTransport}
	}}
	c, _ := New(inv, parser.New(nil), Config{Timeout: time.Second})

	out := c.Run(context.Background(), testUnit())
	if out.Status != domain.StatusError {
		t.Fatalf("status = %s, want failed-error", out.Status)
	}
	if out.Result.Severity != domain.SeverityError || out.Result.Passed {
		t.Errorf("result = %+v, want error/failed", out.Result)
	}
	if !strings.Contains(out.Result.Message, "transport") {
		t.Errorf("message %q should name the error kind", out.Result.Message)
	}
	if out.RawError == "" {
		t.Error("RawError should carry the underlying error text")
	}
}

func TestRun_Timeout(t *testing.T) {
	inv := &fakeInvoker{fn: func(ctx context.Context, _ llm.Request) (string, error) {
		<-ctx.Done()
		return "", llm.ClassifyContextError(ctx, ctx.Err())
	}}
	c, _ := New(inv, parser.New(nil), Config{Timeout: 20 * time.Millisecond})

	start := time.Now()
	out := c.Run(context.Background(), testUnit())
	elapsed := time.Since(start)

	if out.Status != domain.StatusError {
		t.Fatalf("status = %s, want failed-error", out.Status)
	}
	if !strings.Contains(out.Result.Message, "timeout") {
		t.Errorf("message %q should name timeout", out.Result.Message)
	}
	if elapsed > 2*time.Second {
		t.Errorf("run took %s, should be bounded by the configured timeout", elapsed)
	}
}

func TestRun_RetriesInvocationFailures(t *testing.T) {
	failures := 1
	inv := &fakeInvoker{fn: func(context.Context, llm.Request) (string, error) {
		if failures > 0 {
			failures--
			return "", &llm.InvocationError{Kind: llm.KindTransport}
		}
		return validResponse, nil
	}}
	c, _ := New(inv, parser.New(nil), Config{Timeout: time.Second, Retries: 1})

	out := c.Run(context.Background(), testUnit())
	if out.Status != domain.StatusSucceeded {
		t.Fatalf("status = %s, want succeeded after retry", out.Status)
	}
	if inv.calls != 2 {
		t.Errorf("invoker called %d times, want 2", inv.calls)
	}
}

func TestRun_NoRetryOnParseFailure(t *testing.T) {
	inv := &fakeInvoker{fn: func(context.Context, llm.Request) (string, error) {
		return "not json", nil
	}}
	c, _ := New(inv, parser.New(nil), Config{Timeout: time.Second, Retries: 3})

	c.Run(context.Background(), testUnit())
	if inv.calls != 1 {
		t.Errorf("invoker called %d times, want 1: parse failures must not retry", inv.calls)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	inv := &fakeInvoker{fn: func(context.Context, llm.Request) (string, error) {
		t.Error("invoker should not be called with a canceled context")
		return "", nil
	}}
	c, _ := New(inv, parser.New(nil), Config{Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := c.Run(ctx, testUnit())
	if out.Status != domain.StatusError {
		t.Fatalf("status = %s, want failed-error", out.Status)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, nil, Config{Timeout: time.Second}); err == nil {
		t.Error("expected error for nil invoker")
	}
	inv := &fakeInvoker{fn: func(context.Context, llm.Request) (string, error) { return "", nil }}
	if _, err := New(inv, nil, Config{}); err == nil {
		t.Error("expected error for missing timeout")
	}
}
