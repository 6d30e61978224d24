// Package suggest derives candidate check rules from sample documents.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/auditware/invocheck/internal/domain"
	"github.com/auditware/invocheck/internal/llm"
)

const suggestPrompt = `You are an accounting reviewer designing automated invoice checks.

Input: extracted text of one or more sample invoices.

Task: propose check rules that would catch realistic problems in
documents like these. Cover distinct concerns; do not propose near
duplicates.

Respond with ONLY a JSON object in this exact format, no extra prose:
{
  "suggestions": [
    {
      "name": "Short rule name",
      "category": "date" | "amount" | "format" | "approval" | "other",
      "prompt": "Detailed check instructions for the model applying the rule.",
      "severity": "info" | "warning" | "error"
    }
  ],
  "analysis_summary": "1-2 sentences on what the samples suggest."
}
Rules:
- name must be at least 3 characters, prompt at least 10.
- severity is the level the rule should report when it trips.`

// Suggestion is one proposed rule.
type Suggestion struct {
	Name     string          `json:"name"`
	Category domain.Category `json:"category"`
	Prompt   string          `json:"prompt"`
	Severity domain.Severity `json:"severity"`
}

// Result holds the validated suggester output.
type Result struct {
	Suggestions     []Suggestion
	AnalysisSummary string
}

// Suggester proposes rules via the model backend.
type Suggester struct {
	invoker llm.Invoker
	maxDocs int
}

// New creates a suggester sampling at most maxDocs documents per call.
func New(invoker llm.Invoker, maxDocs int) (*Suggester, error) {
	if invoker == nil {
		return nil, fmt.Errorf("an invoker is required")
	}
	if maxDocs <= 0 {
		maxDocs = 3
	}
	return &Suggester{invoker: invoker, maxDocs: maxDocs}, nil
}

// Suggest sends sample documents to the model and decodes the proposed
// rules. Unlike the check pipeline there is no fallback here: a
// malformed response is an error the caller can simply retry.
func (s *Suggester) Suggest(ctx context.Context, documents []*domain.DocumentText) (*Result, error) {
	if len(documents) == 0 {
		return nil, fmt.Errorf("at least one sample document is required")
	}
	samples := documents
	if len(samples) > s.maxDocs {
		samples = samples[:s.maxDocs]
	}

	var b strings.Builder
	for i, doc := range samples {
		fmt.Fprintf(&b, "--- Sample %d: %s ---\n%s\n\n", i+1, doc.FileName, doc.Content)
	}

	raw, err := s.invoker.Invoke(ctx, llm.Request{
		SystemPrompt: suggestPrompt,
		UserPrompt:   b.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("rule suggestion failed: %w", err)
	}

	return decode(raw)
}

func decode(raw string) (*Result, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in suggester response")
	}

	var payload struct {
		Suggestions     []Suggestion `json:"suggestions"`
		AnalysisSummary string       `json:"analysis_summary"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("decoding suggester response: %w", err)
	}

	result := &Result{AnalysisSummary: payload.AnalysisSummary}
	for _, sg := range payload.Suggestions {
		if err := validate(sg); err != nil {
			return nil, fmt.Errorf("invalid suggestion %q: %w", sg.Name, err)
		}
		result.Suggestions = append(result.Suggestions, sg)
	}
	if len(result.Suggestions) == 0 {
		return nil, fmt.Errorf("suggester returned no usable suggestions")
	}
	return result, nil
}

func validate(sg Suggestion) error {
	if len(sg.Name) < 3 {
		return fmt.Errorf("name too short")
	}
	if len(sg.Prompt) < 10 {
		return fmt.Errorf("prompt too short")
	}
	if _, err := domain.ParseCategory(string(sg.Category)); err != nil {
		return err
	}
	if sg.Severity != "" && !sg.Severity.Valid() {
		return fmt.Errorf("unknown severity %q", sg.Severity)
	}
	return nil
}
