// Package docs loads pre-extracted document text for checking.
//
// Extraction from PDF/Excel/Word happens upstream; this package only
// consumes the plain-text artifacts that step produces.
package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/auditware/invocheck/internal/domain"
)

// textExtensions are the file types accepted as extracted text.
var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// LoadDir reads every extracted-text file directly under dir into a
// DocumentText, ordered by file name. File names are unique within a
// directory by construction, satisfying the batch contract.
func LoadDir(dir string) ([]*domain.DocumentText, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading document directory: %w", err)
	}

	var documents []*domain.DocumentText
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !textExtensions[ext] {
			continue
		}
		doc, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}

	if len(documents) == 0 {
		return nil, fmt.Errorf("no extracted text files (.txt/.md) found in %s", dir)
	}
	sort.Slice(documents, func(i, j int) bool { return documents[i].FileName < documents[j].FileName })
	return documents, nil
}

// LoadFile reads one extracted-text file.
func LoadFile(path string) (*domain.DocumentText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}
	content := string(data)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("document %s is empty", path)
	}
	return &domain.DocumentText{
		FileName: filepath.Base(path),
		Content:  content,
		Meta: domain.DocumentMeta{
			FileType: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		},
	}, nil
}
