// Package parser converts raw model output into validated check results.
package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/auditware/invocheck/internal/domain"
)

// FormatInstructions is appended to every check prompt so the model
// knows the expected response shape. The parser's strict path decodes
// exactly this shape.
const FormatInstructions = `Respond with ONLY a JSON object in this exact format, no extra prose:
{
  "check_result": {
    "passed": true or false,
    "severity": "info" | "warning" | "error",
    "message": "one-line explanation of the check outcome",
    "details": "supporting reasoning, may be empty"
  }
}
Rules:
- severity "error" requires passed to be false.
- message must not be empty.`

// InternalErrorMessage is the message of the terminal safety-net
// result emitted when even the fallback cannot produce a valid result.
const InternalErrorMessage = "internal parser error: could not recover a result from model output"

// Parser decodes model responses into CheckResults. The zero value is
// not usable; construct with New.
type Parser struct {
	fallback FallbackFunc
}

// New creates a parser with the given fallback. A nil fallback uses
// KeywordFallback.
func New(fallback FallbackFunc) *Parser {
	if fallback == nil {
		fallback = KeywordFallback
	}
	return &Parser{fallback: fallback}
}

// Parse converts raw model text into a CheckResult. It never fails:
// the strict path is tried first, then the fallback, then a fixed
// internal-error result. The returned status records which path
// produced the result.
func (p *Parser) Parse(raw string) (domain.CheckResult, domain.Status) {
	result, err := DecodeStrict(raw)
	if err == nil {
		return result, domain.StatusSucceeded
	}

	result, fbErr := p.fallback(raw)
	if fbErr == nil {
		// Re-validate: a fallback is pluggable and untrusted.
		validated, vErr := domain.NewCheckResult(result.Passed, result.Severity, result.Message, result.Details)
		if vErr == nil {
			return validated, domain.StatusFallback
		}
	}

	return internalErrorResult(), domain.StatusFallback
}

// DecodeStrict attempts structured decoding of raw model text into a
// validated CheckResult. It tolerates markdown code fences and
// surrounding prose, but the JSON payload itself must carry every
// required field and satisfy result validation.
func DecodeStrict(raw string) (domain.CheckResult, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return domain.CheckResult{}, fmt.Errorf("no JSON object found in response")
	}

	var envelope struct {
		CheckResult *struct {
			Passed   *bool   `json:"passed"`
			Severity *string `json:"severity"`
			Message  *string `json:"message"`
			Details  string  `json:"details"`
		} `json:"check_result"`
	}
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return domain.CheckResult{}, fmt.Errorf("decoding response JSON: %w", err)
	}
	body := envelope.CheckResult
	if body == nil {
		return domain.CheckResult{}, fmt.Errorf("response JSON missing check_result")
	}
	if body.Passed == nil || body.Severity == nil || body.Message == nil {
		return domain.CheckResult{}, fmt.Errorf("check_result missing required field")
	}

	return domain.NewCheckResult(*body.Passed, domain.Severity(*body.Severity), *body.Message, body.Details)
}

// extractJSON pulls the JSON object out of raw text. Models sometimes
// wrap the payload in ```json fences or lead with prose.
func extractJSON(raw string) string {
	s := raw
	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	} else if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func internalErrorResult() domain.CheckResult {
	// Constructed directly: this must not be able to fail.
	return domain.CheckResult{
		Passed:   false,
		Severity: domain.SeverityError,
		Message:  InternalErrorMessage,
	}
}
