package checker

import (
	"fmt"
	"strings"

	"github.com/auditware/invocheck/internal/domain"
	"github.com/auditware/invocheck/internal/parser"
)

// BuildSystemPrompt constructs the system prompt for one rule. The
// response schema description is always appended so the strict decode
// path has a defined target shape.
func BuildSystemPrompt(rule *domain.CheckRule) string {
	var b strings.Builder
	b.WriteString("You are an accounting reviewer checking a submitted invoice document.\n\n")
	fmt.Fprintf(&b, "Check rule: %s\nCategory: %s\n\n", rule.Name, rule.Category)
	b.WriteString(`Guidelines:
- Minor issues are "warning".
- Serious problems are "error".
- No issues means "info" with passed: true.
- The invoice text was machine-extracted from the original file; odd
  spacing, broken lines, or dropped characters can appear. Judge the
  content as a whole and do not flag layout artifacts.

`)
	b.WriteString(parser.FormatInstructions)
	return b.String()
}

// BuildUserPrompt constructs the user prompt embedding the document.
func BuildUserPrompt(rule *domain.CheckRule, doc *domain.DocumentText) string {
	var b strings.Builder
	b.WriteString("Check the following invoice against the instructions below.\n\n")
	fmt.Fprintf(&b, "File name: %s\n", doc.FileName)
	if doc.Meta.FileType != "" {
		fmt.Fprintf(&b, "File type: %s\n", doc.Meta.FileType)
	}
	if doc.Meta.PageCount > 0 {
		fmt.Fprintf(&b, "Pages: %d\n", doc.Meta.PageCount)
	}
	fmt.Fprintf(&b, "\nExtracted invoice content:\n%s\n", doc.Content)
	fmt.Fprintf(&b, "\nCheck instructions:\n%s\n", rule.Prompt)
	return b.String()
}
