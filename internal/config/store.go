package config

import (
	"fmt"
	"sort"
	"strings"
)

// Store accumulates raw configuration fragments per named section.
// Sections keep the order in which they were first seen.
type Store struct {
	sections   map[string][]any
	order      []string
	provenance []string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{sections: make(map[string][]any)}
}

// Clone returns a copy whose sections can be replaced without affecting s.
func (s *Store) Clone() *Store {
	out := &Store{
		sections:   make(map[string][]any, len(s.sections)),
		order:      append([]string(nil), s.order...),
		provenance: append([]string(nil), s.provenance...),
	}
	for k, v := range s.sections {
		out.sections[k] = append([]any(nil), v...)
	}
	return out
}

// Add appends one fragment to a section.
func (s *Store) Add(section string, fragment any) {
	if _, ok := s.sections[section]; !ok {
		s.order = append(s.order, section)
	}
	s.sections[section] = append(s.sections[section], fragment)
}

// AddDocument splits a document into its top-level sections and appends
// each as a fragment. Values are canonicalized first.
func (s *Store) AddDocument(doc map[string]any) error {
	canon, err := Canonical(doc)
	if err != nil {
		return err
	}
	m, _ := canon.(map[string]any)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.Add(k, m[k])
	}
	return nil
}

// Sections returns section names in first-seen order.
func (s *Store) Sections() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Has reports whether any fragment was added for the section.
func (s *Store) Has(section string) bool {
	return len(s.sections[section]) > 0
}

// Fragments returns the fragments of a section; nil when absent.
func (s *Store) Fragments(section string) []any {
	frags := s.sections[section]
	if frags == nil {
		return nil
	}
	out := make([]any, len(frags))
	copy(out, frags)
	return out
}

// Replace swaps the fragments of an existing section.
func (s *Store) Replace(section string, fragments []any) error {
	if _, ok := s.sections[section]; !ok {
		return fmt.Errorf("section '%s' does not exist", section)
	}
	s.sections[section] = fragments
	return nil
}

// AddSource records where a batch of fragments came from.
func (s *Store) AddSource(source string) {
	s.provenance = append(s.provenance, "// source: "+source)
}

// Provenance returns the accumulated source comment block, one line per
// source, without a trailing newline.
func (s *Store) Provenance() string {
	return strings.Join(s.provenance, "\n")
}
