// Package report renders batch results for the terminal and for export.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/auditware/invocheck/internal/aggregate"
	"github.com/auditware/invocheck/internal/domain"
	"github.com/auditware/invocheck/internal/terminal"
)

// Render builds the ANSI terminal report for one completed batch.
func Render(outcomes []domain.CheckOutcome, summary aggregate.BatchSummary, wallClock time.Duration) string {
	width := terminal.ReportWidth()

	var lines []string

	// Header metrics
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("%s%sCheck results%s %s(%d checks across %d files)%s",
		terminal.Color(terminal.Cyan), terminal.Color(terminal.Bold), terminal.Color(terminal.Reset),
		terminal.Color(terminal.Dim), summary.TotalUnits, summary.TotalFiles, terminal.Color(terminal.Reset)))
	lines = append(lines, terminal.Ruler(width, "━"))

	if summary.TotalUnits == 0 {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("%sNo checks were executed.%s",
			terminal.Color(terminal.Dim), terminal.Color(terminal.Reset)))
		return strings.Join(lines, "\n")
	}

	// Clean-batch short form
	if !summary.NeedsReview() {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("%s✓%s %s%sAll checks passed%s %s(%d files)%s",
			terminal.Color(terminal.Green), terminal.Color(terminal.Reset),
			terminal.Color(terminal.Green), terminal.Color(terminal.Bold), terminal.Color(terminal.Reset),
			terminal.Color(terminal.Dim), summary.CleanFiles, terminal.Color(terminal.Reset)))
		lines = append(lines, timingLine(wallClock))
		return strings.Join(lines, "\n")
	}

	// Per-file sections
	for _, group := range aggregate.GroupByFile(outcomes) {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("%s%s%s%s %s",
			terminal.Color(terminal.Bold), group.FileName, terminal.Color(terminal.Reset),
			fileBadge(group), ""))
		lines = append(lines, terminal.Ruler(width, "─"))

		for _, o := range group.Outcomes {
			lines = append(lines, outcomeLine(o, width))
			if o.Result.Details != "" && o.Result.NeedsReview() {
				lines = append(lines, terminal.WrapText(o.Result.Details, width-5, "     "))
			}
		}
	}

	// Counts footer
	lines = append(lines, "")
	lines = append(lines, terminal.Ruler(width, "━"))
	lines = append(lines, fmt.Sprintf("  %d info, %s%d warning%s, %s%d error%s  •  %d flagged / %d clean files",
		summary.InfoCount,
		terminal.Color(terminal.Yellow), summary.WarningCount, terminal.Color(terminal.Reset),
		terminal.Color(terminal.Red), summary.ErrorCount, terminal.Color(terminal.Reset),
		summary.FlaggedFiles, summary.CleanFiles))

	if summary.FallbackCount > 0 {
		lines = append(lines, fmt.Sprintf("%s  %d result(s) recovered from undecodable model output%s",
			terminal.Color(terminal.Dim), summary.FallbackCount, terminal.Color(terminal.Reset)))
	}
	if summary.FailedCount > 0 {
		lines = append(lines, fmt.Sprintf("%s  %d check(s) failed to execute%s",
			terminal.Color(terminal.Dim), summary.FailedCount, terminal.Color(terminal.Reset)))
	}

	lines = append(lines, timingLine(wallClock))
	return strings.Join(lines, "\n")
}

func outcomeLine(o domain.CheckOutcome, width int) string {
	mark := fmt.Sprintf("%s✓%s", terminal.Color(terminal.Green), terminal.Color(terminal.Reset))
	sevColor := terminal.Green
	switch o.Result.Severity {
	case domain.SeverityWarning:
		mark = fmt.Sprintf("%s!%s", terminal.Color(terminal.Yellow), terminal.Color(terminal.Reset))
		sevColor = terminal.Yellow
	case domain.SeverityError:
		mark = fmt.Sprintf("%s✗%s", terminal.Color(terminal.Red), terminal.Color(terminal.Reset))
		sevColor = terminal.Red
	}

	line := fmt.Sprintf("  %s %s%-8s%s %s: %s",
		mark,
		terminal.Color(sevColor), o.Result.Severity, terminal.Color(terminal.Reset),
		o.RuleName, o.Result.Message)
	if len(line) > width {
		line = line[:width-3] + "..."
	}
	return line
}

func fileBadge(group aggregate.FileGroup) string {
	for _, o := range group.Outcomes {
		if o.Result.NeedsReview() {
			return fmt.Sprintf(" %s[needs review]%s", terminal.Color(terminal.Yellow), terminal.Color(terminal.Reset))
		}
	}
	return fmt.Sprintf(" %s[ok]%s", terminal.Color(terminal.Green), terminal.Color(terminal.Reset))
}

func timingLine(wallClock time.Duration) string {
	return fmt.Sprintf("%s  completed in %s%s",
		terminal.Color(terminal.Dim), terminal.FormatDuration(wallClock), terminal.Color(terminal.Reset))
}
