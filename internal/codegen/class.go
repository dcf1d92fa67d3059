package codegen

import (
	"fmt"
	"sort"
)

// Member is a struct field of the generated type, initialized in the
// constructor.
type Member struct {
	Name  string
	Type  string
	Value any
}

// Statement is one line of a method body. Labelled statements can be
// found and removed by later passes.
type Statement struct {
	Label string
	Code  string
}

// Method is a function of the generated file. Methods with a receiver
// hang off the generated type; others, such as the constructor, are plain
// functions.
type Method struct {
	Name     string
	Receiver bool
	Params   string
	Results  string
	// Return is rendered after the body when set.
	Return string

	body []Statement
}

// AddBody appends unlabelled statements.
func (m *Method) AddBody(code ...string) *Method {
	for _, c := range code {
		m.body = append(m.body, Statement{Code: c})
	}
	return m
}

// AddStatement appends a labelled statement.
func (m *Method) AddStatement(label, code string) *Method {
	m.body = append(m.body, Statement{Label: label, Code: code})
	return m
}

// RemoveStatement drops every statement carrying label and reports
// whether any was found.
func (m *Method) RemoveStatement(label string) bool {
	kept := m.body[:0]
	removed := false
	for _, s := range m.body {
		if s.Label != "" && s.Label == label {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	m.body = kept
	return removed
}

// Body returns a copy of the statements.
func (m *Method) Body() []Statement {
	out := make([]Statement, len(m.body))
	copy(out, m.body)
	return out
}

// Class is the generated container type and the functions around it.
type Class struct {
	Name    string
	Package string
	// Extends is the embedded parent type.
	Extends string
	// Constructor names the function that allocates the type; members are
	// initialized there.
	Constructor string

	members []*Member
	methods []*Method
	imports map[string]struct{}
}

// NewClass creates an empty Class.
func NewClass(pkg, name string) *Class {
	return &Class{
		Name:    name,
		Package: pkg,
		imports: make(map[string]struct{}),
	}
}

// SetExtends replaces the embedded parent type.
func (c *Class) SetExtends(parent string) {
	c.Extends = parent
}

// AddImport records an import path.
func (c *Class) AddImport(paths ...string) {
	for _, p := range paths {
		if p != "" {
			c.imports[p] = struct{}{}
		}
	}
}

// RemoveImport drops an import path.
func (c *Class) RemoveImport(path string) {
	delete(c.imports, path)
}

// Imports returns the import paths, sorted.
func (c *Class) Imports() []string {
	out := make([]string, 0, len(c.imports))
	for p := range c.imports {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// AddMember adds or replaces a member.
func (c *Class) AddMember(m *Member) {
	for i, existing := range c.members {
		if existing.Name == m.Name {
			c.members[i] = m
			return
		}
	}
	c.members = append(c.members, m)
}

// Member returns the named member or nil.
func (c *Class) Member(name string) *Member {
	for _, m := range c.members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// RemoveMember drops the named member and reports whether it existed.
func (c *Class) RemoveMember(name string) bool {
	for i, m := range c.members {
		if m.Name == name {
			c.members = append(c.members[:i], c.members[i+1:]...)
			return true
		}
	}
	return false
}

// Members returns the members in insertion order.
func (c *Class) Members() []*Member {
	return append([]*Member(nil), c.members...)
}

// AddMethod adds a method. Names must be unique.
func (c *Class) AddMethod(m *Method) (*Method, error) {
	if c.Method(m.Name) != nil {
		return nil, fmt.Errorf("method '%s' already exists in '%s'", m.Name, c.Name)
	}
	c.methods = append(c.methods, m)
	return m, nil
}

// Method returns the named method or nil.
func (c *Class) Method(name string) *Method {
	for _, m := range c.methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// RemoveMethod drops the named method and reports whether it existed.
func (c *Class) RemoveMethod(name string) bool {
	for i, m := range c.methods {
		if m.Name == name {
			c.methods = append(c.methods[:i], c.methods[i+1:]...)
			return true
		}
	}
	return false
}

// Methods returns the methods in insertion order.
func (c *Class) Methods() []*Method {
	return append([]*Method(nil), c.methods...)
}
