package parser

import (
	"strings"

	"github.com/auditware/invocheck/internal/domain"
)

// FallbackMessage is the fixed diagnostic carried by fallback results.
const FallbackMessage = "model response could not be decoded; manual review required"

// maxFallbackDetails bounds how much raw model output is preserved in
// the details field of a fallback result.
const maxFallbackDetails = 2000

// FallbackFunc is the degraded recovery strategy used when structured
// decoding fails. Implementations receive the raw model text and must
// produce a best-effort result; returning an error triggers the
// parser's fixed internal-error result instead.
type FallbackFunc func(raw string) (domain.CheckResult, error)

// failMarkers are free-text signals that the model judged the check a
// failure even though it did not produce decodable JSON. Illustrative,
// not exhaustive; callers with better heuristics supply their own
// FallbackFunc.
var failMarkers = []string{
	"fail",
	"failed",
	"error",
	"invalid",
	"mismatch",
	"missing",
	"incorrect",
	"violation",
}

// KeywordFallback is the default fallback strategy. Every fallback
// result is flagged passed=false with warning severity so it surfaces
// for review; the keyword scan only enriches the diagnostic with the
// markers it spotted.
func KeywordFallback(raw string) (domain.CheckResult, error) {
	message := FallbackMessage
	if markers := detectFailMarkers(raw); len(markers) > 0 {
		message = FallbackMessage + " (response mentions: " + strings.Join(markers, ", ") + ")"
	}

	details := strings.TrimSpace(raw)
	if len(details) > maxFallbackDetails {
		details = details[:maxFallbackDetails] + "..."
	}

	return domain.NewCheckResult(false, domain.SeverityWarning, message, details)
}

func detectFailMarkers(raw string) []string {
	lower := strings.ToLower(raw)
	var found []string
	for _, marker := range failMarkers {
		if strings.Contains(lower, marker) {
			found = append(found, marker)
		}
	}
	return found
}
