package graph

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/dicompiler/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Definition describes how the container creates one service.
type Definition struct {
	Name string
	// Type is the Go type of the service, e.g. "*sql.DB".
	Type string
	// Factory is a Go expression called with Arguments.
	Factory   string
	Arguments []any
	// Setup statements run after creation with the service in `service`.
	Setup     []string
	Tags      map[string]any
	Autowired bool
	Inject    bool
	Imports   []string

	resolved []any
	refs     []string
}

// ResolvedArguments returns Arguments with references bound. It is nil
// before Resolve.
func (d *Definition) ResolvedArguments() []any {
	return d.resolved
}

// References lists the services this definition refers to, sorted.
func (d *Definition) References() []string {
	return append([]string(nil), d.refs...)
}

// HasTag reports whether the definition carries tag.
func (d *Definition) HasTag(tag string) bool {
	_, ok := d.Tags[tag]
	return ok
}

// AddTag sets a tag.
func (d *Definition) AddTag(tag string, value any) *Definition {
	if d.Tags == nil {
		d.Tags = make(map[string]any)
	}
	d.Tags[tag] = value
	return d
}

// AddSetup appends setup statements.
func (d *Definition) AddSetup(code ...string) *Definition {
	d.Setup = append(d.Setup, code...)
	return d
}

var definitionType = schema.MustType(`object({
	type      = optional(string)
	factory   = optional(string)
	arguments = optional(any)
	setup     = optional(list(string), [])
	tags      = optional(any)
	autowired = optional(bool, true)
	inject    = optional(bool, false)
	imports   = optional(list(string), [])
})`)

// DefinitionSchema validates a single service definition. A plain string
// is shorthand for a definition with only a factory.
func DefinitionSchema() schema.Schema {
	return schema.Func(func(val cty.Value, path cty.Path) (cty.Value, error) {
		if val.IsKnown() && !val.IsNull() && val.Type() == cty.String {
			val = cty.ObjectVal(map[string]cty.Value{"factory": val})
		}
		return definitionType.Normalize(val, path)
	})
}

// DefinitionsSchema validates the services section.
func DefinitionsSchema() schema.Schema {
	return schema.MapOf(DefinitionSchema())
}

// decodeDefinition fills d from a normalized definition map. Fields absent
// from raw keep their current values.
func decodeDefinition(d *Definition, raw map[string]any) error {
	if v, ok := raw["type"].(string); ok {
		d.Type = v
	}
	if v, ok := raw["factory"].(string); ok {
		d.Factory = v
	}
	switch v := raw["arguments"].(type) {
	case nil:
	case []any:
		d.Arguments = v
	default:
		d.Arguments = []any{v}
	}
	d.Setup = append(d.Setup, stringList(raw["setup"])...)
	switch v := raw["tags"].(type) {
	case nil:
	case []any:
		for _, t := range v {
			name, ok := t.(string)
			if !ok {
				return fmt.Errorf("service '%s': tag names must be strings", d.Name)
			}
			d.AddTag(name, true)
		}
	case map[string]any:
		for _, k := range sortedKeys(v) {
			d.AddTag(k, v[k])
		}
	default:
		return fmt.Errorf("service '%s': tags must be a list or a map", d.Name)
	}
	if v, ok := raw["autowired"].(bool); ok {
		d.Autowired = v
	}
	if v, ok := raw["inject"].(bool); ok {
		d.Inject = v
	}
	d.Imports = append(d.Imports, stringList(raw["imports"])...)
	return nil
}

func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
