package domain

import (
	"fmt"
	"time"
)

// Category classifies a check rule. The set is fixed; the rule store
// rejects anything else.
type Category string

const (
	CategoryDate     Category = "date"
	CategoryAmount   Category = "amount"
	CategoryFormat   Category = "format"
	CategoryApproval Category = "approval"
	CategoryOther    Category = "other"
)

// Categories lists every valid rule category in display order.
func Categories() []Category {
	return []Category{CategoryDate, CategoryAmount, CategoryFormat, CategoryApproval, CategoryOther}
}

// ParseCategory validates a raw category string.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if Category(s) == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// CheckRule is one accounting rule applied to documents. Rules are
// immutable once dispatched into a batch; the dispatcher references
// them by pointer and never copies or mutates them.
type CheckRule struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Category  Category  `yaml:"category"`
	Prompt    string    `yaml:"prompt"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// DocumentText is the pre-extracted plain text of one input file.
// Extraction happens upstream; the checker treats this as read-only.
type DocumentText struct {
	FileName string
	Content  string
	Meta     DocumentMeta
}

// DocumentMeta carries optional extraction metadata.
type DocumentMeta struct {
	FileType  string
	PageCount int
}
