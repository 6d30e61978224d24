package rules

import (
	"time"

	"github.com/google/uuid"

	"github.com/auditware/invocheck/internal/domain"
)

// defaultRules seeds a fresh store with a usable baseline rule set.
func defaultRules() []*domain.CheckRule {
	now := time.Now().UTC()
	specs := []struct {
		name     string
		category domain.Category
		prompt   string
	}{
		{
			name:     "Invoice date within period",
			category: domain.CategoryDate,
			prompt: `Confirm the invoice date falls within the accounting period (on or before the period end).
- Identify the invoice date.
- The period end is March 31 unless the document states otherwise.
- If the date is after the period end, report a warning.
- If the date is unclear, report a warning.`,
		},
		{
			name:     "Amount consistency",
			category: domain.CategoryAmount,
			prompt: `Confirm the invoice arithmetic is correct.
- The net amount plus tax must equal the gross amount.
- The tax rate (8% or 10%) must be applied correctly.
- Report an error for calculation mistakes.
- Report a warning if amounts are unclear.`,
		},
		{
			name:     "Required fields present",
			category: domain.CategoryFormat,
			prompt: `Confirm the invoice carries these required items:
- Issuer name or company name
- Invoice date
- Payment due date
- Invoice amount
- Line items or description
- Bank transfer details
Report a warning for any missing item.`,
		},
		{
			name:     "Approval stamp",
			category: domain.CategoryApproval,
			prompt: `Confirm the invoice carries an appropriate approval stamp or signature.
- Company seal, representative seal, or staff seal counts; electronic seals included.
- Report a warning if approval is unclear or missing.`,
		},
		{
			name:     "Payment terms",
			category: domain.CategoryOther,
			prompt: `Confirm the payment terms are reasonable.
- The due date should fall within a normal window (typically 30 days).
- The payment method must be stated.
- The party bearing transfer fees must be stated.
Report a warning for unreasonable or missing terms.`,
		},
	}

	rules := make([]*domain.CheckRule, 0, len(specs))
	for _, spec := range specs {
		rules = append(rules, &domain.CheckRule{
			ID:        uuid.NewString(),
			Name:      spec.name,
			Category:  spec.category,
			Prompt:    spec.prompt,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return rules
}
