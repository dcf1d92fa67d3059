package registry

import (
	"fmt"
	"sort"
	"strings"
)

// Stage marks when an entry takes part in staged processing.
type Stage int

const (
	// StageFirst entries are processed in an isolated phase before all others.
	StageFirst Stage = iota
	// StageNormal is the default stage.
	StageNormal
	// StageLate entries are processed after every normal entry.
	StageLate
)

func (s Stage) String() string {
	switch s {
	case StageFirst:
		return "first"
	case StageNormal:
		return "normal"
	case StageLate:
		return "late"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Entry is a single registration.
type Entry[T any] struct {
	Name  string
	Value T
	Stage Stage
	// Descriptor identifies where the registered value is defined. It is
	// opaque to the registry.
	Descriptor string
}

// DuplicateError is returned when a name is already taken, compared
// case-insensitively, or reserved.
type DuplicateError struct {
	Name     string
	Existing string
	Reserved bool
}

func (e DuplicateError) Error() string {
	if e.Reserved {
		return fmt.Sprintf("name '%s' is reserved", e.Name)
	}
	if e.Name == e.Existing {
		return fmt.Sprintf("name '%s' is already used", e.Name)
	}
	return fmt.Sprintf("name '%s' has the same name as '%s' in a case-insensitive manner", e.Name, e.Existing)
}

// Registry holds entries in registration order.
type Registry[T any] struct {
	entries  []*Entry[T]
	byName   map[string]*Entry[T]
	reserved map[string]string
}

// New creates an empty registry. Reserved names can never be registered.
func New[T any](reserved ...string) *Registry[T] {
	r := &Registry[T]{
		byName:   make(map[string]*Entry[T]),
		reserved: make(map[string]string),
	}
	for _, name := range reserved {
		r.reserved[strings.ToLower(name)] = name
	}
	return r
}

// AutoName returns the name an anonymous entry would get right now: an
// underscore followed by the current number of entries.
func (r *Registry[T]) AutoName() string {
	return fmt.Sprintf("_%d", len(r.entries))
}

// Add registers value under name. An empty name is replaced by AutoName.
func (r *Registry[T]) Add(name string, value T, stage Stage, descriptor string) (*Entry[T], error) {
	if name == "" {
		name = r.AutoName()
	}
	lname := strings.ToLower(name)
	if existing, ok := r.reserved[lname]; ok {
		return nil, DuplicateError{Name: name, Existing: existing, Reserved: true}
	}
	if existing, ok := r.byName[lname]; ok {
		return nil, DuplicateError{Name: name, Existing: existing.Name}
	}

	e := &Entry[T]{Name: name, Value: value, Stage: stage, Descriptor: descriptor}
	r.entries = append(r.entries, e)
	r.byName[lname] = e
	return e, nil
}

// Get finds an entry by its exact name.
func (r *Registry[T]) Get(name string) (*Entry[T], bool) {
	e, ok := r.byName[strings.ToLower(name)]
	if !ok || e.Name != name {
		return nil, false
	}
	return e, true
}

// Len returns the number of entries.
func (r *Registry[T]) Len() int {
	return len(r.entries)
}

// Names returns all entry names in registration order.
func (r *Registry[T]) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the entries in registration order.
func (r *Registry[T]) Entries() []*Entry[T] {
	return append([]*Entry[T](nil), r.entries...)
}

// Ordered returns the entries stably sorted by stage.
func (r *Registry[T]) Ordered() []*Entry[T] {
	out := r.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Stage < out[j].Stage
	})
	return out
}
