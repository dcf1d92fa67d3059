package graph

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/specialistvlad/dicompiler/internal/dag"
)

// Builder owns the service definitions of one compile.
type Builder struct {
	defs     map[string]*Definition
	params   map[string]any
	frozen   bool
	excluded []string
	resolved bool
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		defs:   make(map[string]*Definition),
		params: make(map[string]any),
	}
}

// LoadDefinitions adds or updates definitions from a normalized services
// section.
func (b *Builder) LoadDefinitions(defs map[string]any) error {
	for _, name := range sortedKeys(defs) {
		raw, ok := defs[name].(map[string]any)
		if !ok {
			return ServiceError{Service: name, Message: "definition must be a map"}
		}
		def, exists := b.defs[name]
		if !exists {
			def = &Definition{Name: name, Autowired: true}
		}
		if err := decodeDefinition(def, raw); err != nil {
			return err
		}
		b.defs[name] = def
	}
	b.resolved = false
	return nil
}

// AddDefinition creates a new definition. Names must be unique.
func (b *Builder) AddDefinition(name string) (*Definition, error) {
	if name == "" {
		return nil, fmt.Errorf("service name must not be empty")
	}
	if _, exists := b.defs[name]; exists {
		return nil, ServiceError{Service: name, Message: "already exists"}
	}
	def := &Definition{Name: name, Autowired: true}
	b.defs[name] = def
	b.resolved = false
	return def, nil
}

// Definition returns the named definition.
func (b *Builder) Definition(name string) (*Definition, bool) {
	def, ok := b.defs[name]
	return def, ok
}

// Definitions returns all definitions sorted by name.
func (b *Builder) Definitions() []*Definition {
	out := make([]*Definition, 0, len(b.defs))
	for _, name := range sortedKeys(b.defs) {
		out = append(out, b.defs[name])
	}
	return out
}

// SetParameters finalizes the parameter mapping. It can be called once.
func (b *Builder) SetParameters(params map[string]any) error {
	if b.frozen {
		return ErrParametersFrozen
	}
	b.params = params
	b.frozen = true
	return nil
}

// Parameters returns the parameter mapping.
func (b *Builder) Parameters() map[string]any {
	return b.params
}

// AddExcludedTypes skips types matching the patterns when autowiring.
// Patterns use path.Match syntax; a leading `*` pointer marker on the type
// is ignored while matching.
func (b *Builder) AddExcludedTypes(patterns ...string) error {
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return fmt.Errorf("invalid excluded type pattern '%s': %w", p, err)
		}
	}
	b.excluded = append(b.excluded, patterns...)
	return nil
}

// ExcludedTypes returns the configured exclusion patterns.
func (b *Builder) ExcludedTypes() []string {
	return append([]string(nil), b.excluded...)
}

func (b *Builder) isExcluded(typ string) bool {
	bare := strings.TrimPrefix(typ, "*")
	for _, p := range b.excluded {
		if ok, _ := path.Match(p, bare); ok {
			return true
		}
		if ok, _ := path.Match(p, typ); ok {
			return true
		}
	}
	return false
}

// FindByTag returns the value of tag for every service carrying it, keyed
// by service name.
func (b *Builder) FindByTag(tag string) map[string]any {
	out := make(map[string]any)
	for name, def := range b.defs {
		if v, ok := def.Tags[tag]; ok {
			out[name] = v
		}
	}
	return out
}

// Tags returns every tag with the services carrying it and their values.
func (b *Builder) Tags() map[string]map[string]any {
	out := make(map[string]map[string]any)
	for name, def := range b.defs {
		for tag, v := range def.Tags {
			if out[tag] == nil {
				out[tag] = make(map[string]any)
			}
			out[tag][name] = v
		}
	}
	return out
}

// ExportTypes maps each service type to the autowired services
// implementing it. When filter is not nil only types it accepts are kept.
func (b *Builder) ExportTypes(filter func(typ string) bool) map[string][]string {
	out := make(map[string][]string)
	for _, def := range b.Definitions() {
		if def.Type == "" || !def.Autowired || b.isExcluded(def.Type) {
			continue
		}
		if filter != nil && !filter(def.Type) {
			continue
		}
		out[def.Type] = append(out[def.Type], def.Name)
	}
	return out
}

// Resolve binds references in every definition's arguments. `@name`
// refers to a service by name; `@Type` autowires the single service of
// that type. `@@` escapes a literal at sign.
func (b *Builder) Resolve() error {
	for _, def := range b.Definitions() {
		if def.Type == "" && def.Factory == "" {
			return ServiceError{Service: def.Name, Message: "neither type nor factory is set"}
		}
		refs := make(map[string]struct{})
		resolved, err := b.resolveValue(def, def.Arguments, refs)
		if err != nil {
			return err
		}
		def.resolved, _ = resolved.([]any)
		if def.resolved == nil {
			def.resolved = []any{}
		}
		def.refs = sortedKeys(refs)
	}
	b.resolved = true
	return nil
}

func (b *Builder) resolveValue(def *Definition, v any, refs map[string]struct{}) (any, error) {
	switch tv := v.(type) {
	case string:
		if strings.HasPrefix(tv, "@@") {
			return tv[1:], nil
		}
		if !strings.HasPrefix(tv, "@") {
			return tv, nil
		}
		ref, err := b.resolveReference(def, tv[1:])
		if err != nil {
			return nil, err
		}
		refs[ref.Service] = struct{}{}
		return ref, nil
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			r, err := b.resolveValue(def, item, refs)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			r, err := b.resolveValue(def, item, refs)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	}
	return v, nil
}

func (b *Builder) resolveReference(def *Definition, target string) (Reference, error) {
	if t, ok := b.defs[target]; ok {
		return Reference{Service: t.Name, Type: t.Type}, nil
	}
	if !strings.Contains(target, ".") {
		return Reference{}, ServiceError{Service: def.Name, Message: fmt.Sprintf("reference to missing service '%s'", target)}
	}

	var candidates []string
	for _, other := range b.Definitions() {
		if other.Type == target && other.Autowired && !b.isExcluded(other.Type) {
			candidates = append(candidates, other.Name)
		}
	}
	switch len(candidates) {
	case 0:
		return Reference{}, ServiceError{Service: def.Name, Message: fmt.Sprintf("no service of type %s found", target)}
	case 1:
		return Reference{Service: candidates[0], Type: target}, nil
	}
	return Reference{}, ServiceError{
		Service: def.Name,
		Message: fmt.Sprintf("multiple services of type %s found: %s", target, strings.Join(candidates, ", ")),
	}
}

// Complete checks the resolved definitions for reference cycles.
func (b *Builder) Complete() error {
	if !b.resolved {
		return ErrNotResolved
	}

	g := dag.New()
	for name := range b.defs {
		g.AddNode(name)
	}
	for _, def := range b.Definitions() {
		for _, ref := range def.refs {
			if ref == def.Name {
				return CircularReferenceError{Chain: []string{def.Name, def.Name}}
			}
			// The referring service depends on the referenced one.
			if err := g.AddEdge(ref, def.Name); err != nil {
				return err
			}
		}
	}

	if err := g.DetectCycles(); err != nil {
		if cerr, ok := err.(dag.CycleError); ok {
			return CircularReferenceError{Chain: reversed(cerr.Path)}
		}
		return err
	}
	return nil
}

// Dependencies returns the descriptors of packages the definitions import.
func (b *Builder) Dependencies() []string {
	seen := make(map[string]struct{})
	for _, def := range b.defs {
		for _, imp := range def.Imports {
			seen["import:"+imp] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}
	return out
}
