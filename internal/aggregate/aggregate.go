// Package aggregate reduces check outcomes into summaries and views.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/auditware/invocheck/internal/domain"
)

// BatchSummary is the derived roll-up of one batch. It is always
// rebuilt from the full outcome set, never mutated in place, and is
// identical for any permutation of the same outcomes.
type BatchSummary struct {
	TotalUnits int

	// Counts per result severity.
	InfoCount    int
	WarningCount int
	ErrorCount   int

	// Counts per execution status.
	SucceededCount int
	FallbackCount  int
	FailedCount    int

	// File-level split: files whose outcomes are all informational
	// versus files with at least one non-info result.
	TotalFiles   int
	CleanFiles   int
	FlaggedFiles int
}

// NeedsReview reports whether any outcome in the batch demands
// human attention.
func (s BatchSummary) NeedsReview() bool {
	return s.WarningCount > 0 || s.ErrorCount > 0
}

// Summarize computes the batch summary from a full outcome set. The
// reduction is commutative, so the run-dependent completion order of
// the dispatcher cannot influence the result.
func Summarize(outcomes []domain.CheckOutcome) BatchSummary {
	s := BatchSummary{TotalUnits: len(outcomes)}

	flagged := make(map[string]bool)
	for _, o := range outcomes {
		switch o.Result.Severity {
		case domain.SeverityInfo:
			s.InfoCount++
		case domain.SeverityWarning:
			s.WarningCount++
		case domain.SeverityError:
			s.ErrorCount++
		}

		switch o.Status {
		case domain.StatusSucceeded:
			s.SucceededCount++
		case domain.StatusFallback:
			s.FallbackCount++
		case domain.StatusError:
			s.FailedCount++
		}

		if _, seen := flagged[o.FileName]; !seen {
			flagged[o.FileName] = false
		}
		if o.Result.NeedsReview() {
			flagged[o.FileName] = true
		}
	}

	s.TotalFiles = len(flagged)
	for _, needsReview := range flagged {
		if needsReview {
			s.FlaggedFiles++
		} else {
			s.CleanFiles++
		}
	}
	return s
}

// FileGroup holds every outcome for one file, ordered by rule ID.
type FileGroup struct {
	FileName string
	Outcomes []domain.CheckOutcome
}

// RuleGroup holds every outcome for one rule, ordered by file name.
type RuleGroup struct {
	RuleID   string
	RuleName string
	Outcomes []domain.CheckOutcome
}

// GroupByFile groups outcomes by exact file name. Groups and members
// are sorted so output is stable under any completion order.
func GroupByFile(outcomes []domain.CheckOutcome) []FileGroup {
	byFile := make(map[string][]domain.CheckOutcome)
	for _, o := range outcomes {
		byFile[o.FileName] = append(byFile[o.FileName], o)
	}

	groups := make([]FileGroup, 0, len(byFile))
	for name, members := range byFile {
		sort.Slice(members, func(i, j int) bool { return members[i].RuleID < members[j].RuleID })
		groups = append(groups, FileGroup{FileName: name, Outcomes: members})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].FileName < groups[j].FileName })
	return groups
}

// GroupByRule groups outcomes by exact rule identifier, sorted the
// same way as GroupByFile.
func GroupByRule(outcomes []domain.CheckOutcome) []RuleGroup {
	byRule := make(map[string][]domain.CheckOutcome)
	names := make(map[string]string)
	for _, o := range outcomes {
		byRule[o.RuleID] = append(byRule[o.RuleID], o)
		names[o.RuleID] = o.RuleName
	}

	groups := make([]RuleGroup, 0, len(byRule))
	for id, members := range byRule {
		sort.Slice(members, func(i, j int) bool { return members[i].FileName < members[j].FileName })
		groups = append(groups, RuleGroup{RuleID: id, RuleName: names[id], Outcomes: members})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].RuleID < groups[j].RuleID })
	return groups
}

// View selects a predefined outcome filter.
type View string

const (
	ViewAll         View = "all"
	ViewNeedsReview View = "needs-review"
	ViewNormal      View = "normal"
)

// Predicate returns the outcome filter for a view.
func Predicate(v View) (func(domain.CheckOutcome) bool, error) {
	switch v {
	case ViewAll:
		return func(domain.CheckOutcome) bool { return true }, nil
	case ViewNeedsReview:
		return func(o domain.CheckOutcome) bool { return o.Result.NeedsReview() }, nil
	case ViewNormal:
		return func(o domain.CheckOutcome) bool { return !o.Result.NeedsReview() }, nil
	}
	return nil, fmt.Errorf("unknown view %q", v)
}

// Filter returns the outcomes matching the predicate, preserving the
// input order.
func Filter(outcomes []domain.CheckOutcome, pred func(domain.CheckOutcome) bool) []domain.CheckOutcome {
	var matched []domain.CheckOutcome
	for _, o := range outcomes {
		if pred(o) {
			matched = append(matched, o)
		}
	}
	return matched
}
