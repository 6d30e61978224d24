// Package runner provides the concurrent batch dispatch engine.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/auditware/invocheck/internal/checker"
	"github.com/auditware/invocheck/internal/domain"
)

// Worker count bounds for one batch. A batch of blocking model calls
// gains nothing past a small pool, and the backend rate limits well
// before that.
const (
	MinWorkers = 1
	MaxWorkers = 12
)

// ConfigError reports an invalid batch configuration. It is the only
// error Dispatch can return, and it is returned before any unit is
// submitted.
type ConfigError struct {
	Param    string
	Value    int
	Min, Max int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s out of range: %d (must be %d-%d)", e.Param, e.Value, e.Min, e.Max)
}

// ValidateWorkers checks a worker count against the allowed range.
func ValidateWorkers(n int) error {
	if n < MinWorkers || n > MaxWorkers {
		return &ConfigError{Param: "workers", Value: n, Min: MinWorkers, Max: MaxWorkers}
	}
	return nil
}

// ProgressFunc is invoked once per completed unit with the running
// completed count (monotonically increasing) and the outcome that just
// completed. It runs on the collecting goroutine, never inside a
// worker, so a slow callback cannot stall the pool.
type ProgressFunc func(completed int, outcome domain.CheckOutcome)

// Config holds the dispatcher configuration.
type Config struct {
	// MaxWorkers bounds concurrent unit execution (1-12).
	MaxWorkers int
	// BatchTimeout optionally bounds the whole batch. Zero means no
	// batch-level bound. When it fires, outcomes collected so far
	// remain valid and the stream ends early.
	BatchTimeout time.Duration
	// Progress, if set, observes each completion.
	Progress ProgressFunc
}

// Dispatcher fans check units out to a bounded worker pool.
type Dispatcher struct {
	checker *checker.Checker
	config  Config
}

// New creates a dispatcher. The worker count is validated here as well
// as at dispatch time so misconfiguration surfaces as early as possible.
func New(c *checker.Checker, config Config) (*Dispatcher, error) {
	if c == nil {
		return nil, fmt.Errorf("a checker is required")
	}
	if err := ValidateWorkers(config.MaxWorkers); err != nil {
		return nil, err
	}
	return &Dispatcher{checker: c, config: config}, nil
}

// Units builds the closed batch for a document and rule selection:
// one unit per (document, rule) pair, document-major. Submission order
// carries no completion-order guarantee.
func Units(docs []*domain.DocumentText, rules []*domain.CheckRule) []checker.Unit {
	units := make([]checker.Unit, 0, len(docs)*len(rules))
	for _, doc := range docs {
		for _, rule := range rules {
			units = append(units, checker.Unit{Rule: rule, Document: doc})
		}
	}
	return units
}

// Dispatch submits every unit to the pool and returns a stream of
// outcomes in completion order. The stream is finite and closes once
// all units have completed, the batch timeout fires, or ctx is
// canceled. Every submitted unit produces exactly one outcome on the
// workers' side; a unit's failure is absorbed into its outcome and
// never disturbs sibling units.
func (d *Dispatcher) Dispatch(ctx context.Context, units []checker.Unit) (<-chan domain.CheckOutcome, error) {
	if err := ValidateWorkers(d.config.MaxWorkers); err != nil {
		return nil, err
	}

	// Buffered to the batch size so workers can always deliver their
	// outcome and exit, even if the consumer walks away.
	resultCh := make(chan domain.CheckOutcome, len(units))
	sem := make(chan struct{}, d.config.MaxWorkers)

	for i := range units {
		go func(u checker.Unit) {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				resultCh <- canceledOutcome(u, ctx.Err())
				return
			}
			out := d.checker.Run(ctx, u)
			<-sem
			resultCh <- out
		}(units[i])
	}

	outCh := make(chan domain.CheckOutcome)
	go func() {
		defer close(outCh)

		var batchExpired <-chan time.Time
		if d.config.BatchTimeout > 0 {
			timer := time.NewTimer(d.config.BatchTimeout)
			defer timer.Stop()
			batchExpired = timer.C
		}

		for completed := 0; completed < len(units); {
			select {
			case out := <-resultCh:
				completed++
				if d.config.Progress != nil {
					d.config.Progress(completed, out)
				}
				select {
				case outCh <- out:
				case <-ctx.Done():
					return
				}
			case <-batchExpired:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return outCh, nil
}

// Run dispatches the batch and collects the full outcome stream into
// a slice. The collecting loop is the single writer of the returned
// collection. On batch timeout or cancellation the partial collection
// is returned along with the context's error if any.
func (d *Dispatcher) Run(ctx context.Context, units []checker.Unit) ([]domain.CheckOutcome, error) {
	outCh, err := d.Dispatch(ctx, units)
	if err != nil {
		return nil, err
	}

	outcomes := make([]domain.CheckOutcome, 0, len(units))
	for out := range outCh {
		outcomes = append(outcomes, out)
	}
	return outcomes, ctx.Err()
}

// canceledOutcome synthesizes the outcome for a unit whose batch was
// canceled before the unit ever acquired a worker slot.
func canceledOutcome(u checker.Unit, cause error) domain.CheckOutcome {
	return domain.CheckOutcome{
		FileName: u.Document.FileName,
		RuleID:   u.Rule.ID,
		RuleName: u.Rule.Name,
		Status:   domain.StatusError,
		RawError: fmt.Sprintf("batch canceled before execution: %v", cause),
		Result: domain.CheckResult{
			Passed:   false,
			Severity: domain.SeverityError,
			Message:  "check was canceled before execution",
		},
	}
}
