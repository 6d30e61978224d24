package report

import (
	"encoding/json"
	"time"

	"github.com/auditware/invocheck/internal/aggregate"
	"github.com/auditware/invocheck/internal/domain"
)

// Export is the machine-readable form of a completed batch, consumed
// by downstream spreadsheet/reporting tooling.
type Export struct {
	CheckedAt time.Time              `json:"checked_at"`
	Partial   bool                   `json:"partial"`
	Summary   ExportSummary          `json:"summary"`
	Outcomes  []ExportOutcome        `json:"outcomes"`
	ByFile    map[string][]ExportRef `json:"by_file"`
}

// ExportSummary mirrors aggregate.BatchSummary with stable JSON names.
type ExportSummary struct {
	TotalUnits   int `json:"total_units"`
	Info         int `json:"info"`
	Warning      int `json:"warning"`
	Error        int `json:"error"`
	Succeeded    int `json:"succeeded"`
	Fallback     int `json:"fallback"`
	Failed       int `json:"failed"`
	TotalFiles   int `json:"total_files"`
	CleanFiles   int `json:"clean_files"`
	FlaggedFiles int `json:"flagged_files"`
}

// ExportOutcome is one outcome record.
type ExportOutcome struct {
	FileName string `json:"file_name"`
	RuleID   string `json:"rule_id"`
	RuleName string `json:"rule_name"`
	Status   string `json:"status"`
	Passed   bool   `json:"passed"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
	RawError string `json:"raw_error,omitempty"`
}

// ExportRef points into the outcomes list for per-file grouping.
type ExportRef struct {
	Index  int    `json:"index"`
	RuleID string `json:"rule_id"`
}

// MarshalJSONReport builds the export document. Outcomes are emitted
// in deterministic file/rule order regardless of completion order.
func MarshalJSONReport(outcomes []domain.CheckOutcome, summary aggregate.BatchSummary, checkedAt time.Time, partial bool) ([]byte, error) {
	export := Export{
		CheckedAt: checkedAt.UTC(),
		Partial:   partial,
		Summary: ExportSummary{
			TotalUnits:   summary.TotalUnits,
			Info:         summary.InfoCount,
			Warning:      summary.WarningCount,
			Error:        summary.ErrorCount,
			Succeeded:    summary.SucceededCount,
			Fallback:     summary.FallbackCount,
			Failed:       summary.FailedCount,
			TotalFiles:   summary.TotalFiles,
			CleanFiles:   summary.CleanFiles,
			FlaggedFiles: summary.FlaggedFiles,
		},
		ByFile: make(map[string][]ExportRef),
	}

	for _, group := range aggregate.GroupByFile(outcomes) {
		for _, o := range group.Outcomes {
			export.Outcomes = append(export.Outcomes, ExportOutcome{
				FileName: o.FileName,
				RuleID:   o.RuleID,
				RuleName: o.RuleName,
				Status:   string(o.Status),
				Passed:   o.Result.Passed,
				Severity: string(o.Result.Severity),
				Message:  o.Result.Message,
				Details:  o.Result.Details,
				RawError: o.RawError,
			})
			export.ByFile[o.FileName] = append(export.ByFile[o.FileName], ExportRef{
				Index:  len(export.Outcomes) - 1,
				RuleID: o.RuleID,
			})
		}
	}

	return json.MarshalIndent(export, "", "  ")
}
