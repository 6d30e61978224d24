package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/auditware/invocheck/internal/checker"
	"github.com/auditware/invocheck/internal/domain"
	"github.com/auditware/invocheck/internal/llm"
	"github.com/auditware/invocheck/internal/parser"
)

const validResponse = `{"check_result": {"passed": true, "severity": "info", "message": "ok"}}`

type fakeInvoker struct {
	fn func(ctx context.Context, req llm.Request) (string, error)
}

func (f *fakeInvoker) Invoke(ctx context.Context, req llm.Request) (string, error) {
	return f.fn(ctx, req)
}

func (f *fakeInvoker) Name() string { return "fake" }

func newChecker(t *testing.T, fn func(ctx context.Context, req llm.Request) (string, error)) *checker.Checker {
	t.Helper()
	c, err := checker.New(&fakeInvoker{fn: fn}, parser.New(nil), checker.Config{Timeout: 100 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func makeBatch(files, rules int) []checker.Unit {
	var docs []*domain.DocumentText
	for i := 1; i <= files; i++ {
		docs = append(docs, &domain.DocumentText{
			FileName: fmt.Sprintf("invoice-%03d.txt", i),
			Content:  "some extracted text",
		})
	}
	var ruleSet []*domain.CheckRule
	for i := 1; i <= rules; i++ {
		ruleSet = append(ruleSet, &domain.CheckRule{
			ID:       fmt.Sprintf("rule-%d", i),
			Name:     fmt.Sprintf("Rule %d", i),
			Category: domain.CategoryOther,
			Prompt:   "check",
		})
	}
	return Units(docs, ruleSet)
}

func TestValidateWorkers(t *testing.T) {
	tests := []struct {
		workers int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{3, false},
		{12, false},
		{13, true},
		{-1, true},
	}

	for _, tt := range tests {
		err := ValidateWorkers(tt.workers)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateWorkers(%d) = %v, wantErr %v", tt.workers, err, tt.wantErr)
		}
		if err != nil {
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("ValidateWorkers(%d) returned %T, want *ConfigError", tt.workers, err)
			}
		}
	}
}

func TestDispatch_RejectsBadWorkerCountBeforeSubmission(t *testing.T) {
	var invoked atomic.Int32
	c := newChecker(t, func(context.Context, llm.Request) (string, error) {
		invoked.Add(1)
		return validResponse, nil
	})

	for _, workers := range []int{0, 13} {
		d := &Dispatcher{checker: c, config: Config{MaxWorkers: workers}}
		_, err := d.Dispatch(context.Background(), makeBatch(2, 2))
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("workers=%d: got %v, want ConfigError", workers, err)
		}
	}
	if n := invoked.Load(); n != 0 {
		t.Errorf("%d units executed despite invalid config, want 0", n)
	}
}

func TestRun_ProducesExactlyNOutcomes(t *testing.T) {
	for _, workers := range []int{1, 4, 12} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			c := newChecker(t, func(context.Context, llm.Request) (string, error) {
				return validResponse, nil
			})
			d, err := New(c, Config{MaxWorkers: workers})
			if err != nil {
				t.Fatal(err)
			}

			units := makeBatch(5, 3)
			outcomes, err := d.Run(context.Background(), units)
			if err != nil {
				t.Fatal(err)
			}
			if len(outcomes) != len(units) {
				t.Fatalf("got %d outcomes, want %d", len(outcomes), len(units))
			}

			// Every (file, rule) pair appears exactly once.
			seen := make(map[string]int)
			for _, o := range outcomes {
				seen[o.FileName+"/"+o.RuleID]++
			}
			for key, n := range seen {
				if n != 1 {
					t.Errorf("unit %s completed %d times, want exactly once", key, n)
				}
			}
		})
	}
}

func TestRun_UnitFailuresAreIsolated(t *testing.T) {
	c := newChecker(t, func(_ context.Context, req llm.Request) (string, error) {
		if strings.Contains(req.UserPrompt, "invoice-002") {
			return "", &llm.InvocationError{Kind: llm.KindTransport, Err: fmt.Errorf("connection refused")}
		}
		return validResponse, nil
	})
	d, _ := New(c, Config{MaxWorkers: 4})

	units := makeBatch(3, 2)
	outcomes, err := d.Run(context.Background(), units)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 6 {
		t.Fatalf("got %d outcomes, want 6", len(outcomes))
	}

	var failed, ok int
	for _, o := range outcomes {
		if o.Status == domain.StatusError {
			failed++
		} else {
			ok++
		}
	}
	if failed != 2 || ok != 4 {
		t.Errorf("failed=%d ok=%d, want 2 failed (invoice-002) and 4 ok", failed, ok)
	}
}

func TestDispatch_BoundsConcurrency(t *testing.T) {
	const workers = 3
	var inFlight, peak atomic.Int32
	c := newChecker(t, func(context.Context, llm.Request) (string, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return validResponse, nil
	})
	d, _ := New(c, Config{MaxWorkers: workers})

	if _, err := d.Run(context.Background(), makeBatch(6, 2)); err != nil {
		t.Fatal(err)
	}
	if p := peak.Load(); p > workers {
		t.Errorf("peak concurrency %d exceeded limit %d", p, workers)
	}
}

func TestDispatch_ProgressIsMonotonicAndComplete(t *testing.T) {
	c := newChecker(t, func(context.Context, llm.Request) (string, error) {
		return validResponse, nil
	})

	var counts []int
	d, _ := New(c, Config{
		MaxWorkers: 4,
		Progress: func(completed int, _ domain.CheckOutcome) {
			counts = append(counts, completed)
		},
	})

	units := makeBatch(4, 2)
	if _, err := d.Run(context.Background(), units); err != nil {
		t.Fatal(err)
	}

	if len(counts) != len(units) {
		t.Fatalf("progress fired %d times, want %d", len(counts), len(units))
	}
	for i, n := range counts {
		if n != i+1 {
			t.Fatalf("progress counts %v not monotonically increasing by one", counts)
		}
	}
}

func TestDispatch_BatchTimeoutKeepsPartialResults(t *testing.T) {
	c := newChecker(t, func(_ context.Context, req llm.Request) (string, error) {
		if strings.Contains(req.UserPrompt, "invoice-001") {
			return validResponse, nil
		}
		time.Sleep(5 * time.Second)
		return validResponse, nil
	})
	d, _ := New(c, Config{MaxWorkers: 4, BatchTimeout: 300 * time.Millisecond})

	units := makeBatch(3, 1)
	outcomes, err := d.Run(context.Background(), units)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) == 0 || len(outcomes) >= len(units) {
		t.Fatalf("got %d outcomes, want a non-empty partial collection", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Result.Message == "" {
			t.Error("partial outcomes must still be fully formed")
		}
	}
}

func TestDispatch_CancellationStopsStream(t *testing.T) {
	release := make(chan struct{})
	c := newChecker(t, func(ctx context.Context, _ llm.Request) (string, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return validResponse, nil
	})
	d, _ := New(c, Config{MaxWorkers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	outCh, err := d.Dispatch(ctx, makeBatch(4, 1))
	if err != nil {
		t.Fatal(err)
	}

	cancel()
	close(release)

	done := make(chan struct{})
	go func() {
		for range outCh {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("outcome stream did not close after cancellation")
	}
}

// 3 files x 2 rules with mixed behavior per unit: 2 simulated
// timeouts, 1 malformed response, 3 clean.
func TestRun_MixedBatch(t *testing.T) {
	c, err := checker.New(&fakeInvoker{fn: func(ctx context.Context, req llm.Request) (string, error) {
		switch {
		case strings.Contains(req.UserPrompt, "invoice-001") && strings.Contains(req.SystemPrompt, "Rule 1"),
			strings.Contains(req.UserPrompt, "invoice-002") && strings.Contains(req.SystemPrompt, "Rule 2"):
			<-ctx.Done()
			return "", llm.ClassifyContextError(ctx, ctx.Err())
		case strings.Contains(req.UserPrompt, "invoice-003") && strings.Contains(req.SystemPrompt, "Rule 1"):
			return "hmm, I think this one is fine but here is no JSON", nil
		default:
			return validResponse, nil
		}
	}}, parser.New(nil), checker.Config{Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}

	d, _ := New(c, Config{MaxWorkers: 6})
	outcomes, err := d.Run(context.Background(), makeBatch(3, 2))
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 6 {
		t.Fatalf("got %d outcomes, want 6", len(outcomes))
	}

	byStatus := make(map[domain.Status]int)
	for _, o := range outcomes {
		byStatus[o.Status]++
	}
	if byStatus[domain.StatusSucceeded] != 3 {
		t.Errorf("succeeded = %d, want 3", byStatus[domain.StatusSucceeded])
	}
	if byStatus[domain.StatusFallback] != 1 {
		t.Errorf("fallback = %d, want 1", byStatus[domain.StatusFallback])
	}
	if byStatus[domain.StatusError] != 2 {
		t.Errorf("error = %d, want 2", byStatus[domain.StatusError])
	}
}

func TestUnits_CrossProduct(t *testing.T) {
	units := makeBatch(3, 2)
	if len(units) != 6 {
		t.Fatalf("got %d units, want 6", len(units))
	}
	// Document-major order
	if units[0].Document.FileName != "invoice-001.txt" || units[1].Document.FileName != "invoice-001.txt" {
		t.Error("units should be document-major")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, Config{MaxWorkers: 2}); err == nil {
		t.Error("expected error for nil checker")
	}
	c := newChecker(t, func(context.Context, llm.Request) (string, error) { return validResponse, nil })
	if _, err := New(c, Config{MaxWorkers: 0}); err == nil {
		t.Error("expected ConfigError for workers=0")
	}
}
