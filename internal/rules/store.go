// Package rules provides YAML-backed persistence for check rules.
package rules

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/auditware/invocheck/internal/domain"
)

// DefaultFileName is the rule store file looked up in the working
// directory when no explicit path is given.
const DefaultFileName = "rules.yaml"

// Store holds an ordered collection of check rules backed by a YAML
// file. Not safe for concurrent mutation; batches reference rules
// read-only while running.
type Store struct {
	path  string
	rules []*domain.CheckRule
}

type storeFile struct {
	Rules []*domain.CheckRule `yaml:"rules"`
}

// Load reads the rule store at path. A missing file yields a store
// seeded with the default rule set; a present but invalid file is an
// error rather than a silent reset.
func Load(path string) (*Store, error) {
	if path == "" {
		path = DefaultFileName
	}
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.rules = defaultRules()
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rule store: %w", err)
	}

	var file storeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid rule store %s: %w", path, err)
	}
	for _, r := range file.Rules {
		if err := validateRule(r); err != nil {
			return nil, fmt.Errorf("invalid rule store %s: %w", path, err)
		}
	}
	s.rules = file.Rules
	if len(s.rules) == 0 {
		s.rules = defaultRules()
	}
	return s, nil
}

// Save writes the store back to its file.
func (s *Store) Save() error {
	data, err := yaml.Marshal(storeFile{Rules: s.rules})
	if err != nil {
		return fmt.Errorf("encoding rule store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing rule store: %w", err)
	}
	return nil
}

// List returns every rule in insertion order.
func (s *Store) List() []*domain.CheckRule {
	return s.rules
}

// Get looks a rule up by identifier.
func (s *Store) Get(id string) (*domain.CheckRule, bool) {
	for _, r := range s.rules {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// Select resolves a list of rule identifiers, preserving the caller's
// order. Unknown identifiers are an error.
func (s *Store) Select(ids []string) ([]*domain.CheckRule, error) {
	selected := make([]*domain.CheckRule, 0, len(ids))
	for _, id := range ids {
		r, ok := s.Get(id)
		if !ok {
			return nil, fmt.Errorf("unknown rule id %q", id)
		}
		selected = append(selected, r)
	}
	return selected, nil
}

// Add creates a new rule with a generated identifier and appends it.
func (s *Store) Add(name string, category domain.Category, prompt string) (*domain.CheckRule, error) {
	now := time.Now().UTC()
	r := &domain.CheckRule{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  category,
		Prompt:    prompt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateRule(r); err != nil {
		return nil, err
	}
	s.rules = append(s.rules, r)
	return r, nil
}

// Update modifies an existing rule. Empty arguments leave the
// corresponding field unchanged.
func (s *Store) Update(id, name string, category domain.Category, prompt string) error {
	r, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("unknown rule id %q", id)
	}
	updated := *r
	if name != "" {
		updated.Name = name
	}
	if category != "" {
		updated.Category = category
	}
	if prompt != "" {
		updated.Prompt = prompt
	}
	updated.UpdatedAt = time.Now().UTC()
	if err := validateRule(&updated); err != nil {
		return err
	}
	*r = updated
	return nil
}

// Remove deletes a rule by identifier.
func (s *Store) Remove(id string) bool {
	for i, r := range s.rules {
		if r.ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			return true
		}
	}
	return false
}

func validateRule(r *domain.CheckRule) error {
	if r == nil {
		return fmt.Errorf("rule is nil")
	}
	if r.ID == "" {
		return fmt.Errorf("rule is missing an id")
	}
	if r.Name == "" {
		return fmt.Errorf("rule %s is missing a name", r.ID)
	}
	if _, err := domain.ParseCategory(string(r.Category)); err != nil {
		return fmt.Errorf("rule %s: %w", r.ID, err)
	}
	if r.Prompt == "" {
		return fmt.Errorf("rule %s is missing a prompt", r.ID)
	}
	return nil
}
