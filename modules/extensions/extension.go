package extensions

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/specialistvlad/dicompiler/internal/compiler"
	"github.com/specialistvlad/dicompiler/internal/ctxlog"
	"github.com/specialistvlad/dicompiler/internal/hcl_adapter"
	"github.com/specialistvlad/dicompiler/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// SectionName is the name the extension is registered under by default.
const SectionName = "extensions"

// Factory creates a fresh extension of one kind.
type Factory func() compiler.Extension

// Extension registers the extensions its section names. It is a meta
// extension, so the extensions it adds take part in the same compile.
type Extension struct {
	compiler.Base
	factories  map[string]Factory
	added      []string
	// registered keeps the requests of earlier compiles, which stay
	// registered with the compiler.
	registered map[request]string
}

var _ compiler.Meta = (*Extension)(nil)

// New creates the extension. factories maps each kind to its constructor.
func New(factories map[string]Factory) *Extension {
	return &Extension{factories: factories}
}

func (e *Extension) ProcessFirst() {}

// Kinds returns the known kinds, sorted.
func (e *Extension) Kinds() []string {
	kinds := make([]string, 0, len(e.factories))
	for k := range e.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Added returns the names of the extensions registered so far.
func (e *Extension) Added() []string {
	return append([]string(nil), e.added...)
}

func (e *Extension) ConfigSchema() schema.Schema {
	return schema.Func(func(val cty.Value, path cty.Path) (cty.Value, error) {
		if val.IsNull() {
			return cty.EmptyObjectVal, nil
		}
		if !val.IsKnown() {
			return cty.NilVal, schema.ValidationError{Path: hcl_adapter.PathSegments(path), Message: "expects to be map or list, runtime value given"}
		}

		ty := val.Type()
		isMap := ty.IsObjectType() || ty.IsMapType()
		if !isMap && !ty.IsTupleType() && !ty.IsListType() {
			return cty.NilVal, schema.ValidationError{
				Path:    hcl_adapter.PathSegments(path),
				Message: fmt.Sprintf("expects to be map or list, %s given", schema.Describe(ty)),
			}
		}
		for it := val.ElementIterator(); it.Next(); {
			key, item := it.Element()
			if item.IsKnown() && !item.IsNull() && item.Type() == cty.String {
				continue
			}
			at := path.Index(key)
			if isMap {
				at = path.GetAttr(key.AsString())
			}
			given := "runtime value"
			if item.IsKnown() {
				given = schema.Describe(item.Type())
			}
			return cty.NilVal, schema.ValidationError{
				Path:    hcl_adapter.PathSegments(at),
				Message: fmt.Sprintf("expects to be extension kind, %s given", given),
			}
		}
		return val, nil
	})
}

type request struct {
	key  string
	name string
	kind string
}

func (e *Extension) requests() []request {
	var out []request
	switch v := e.Config().Native.(type) {
	case map[string]any:
		for _, name := range hcl_adapter.SortedKeys(v) {
			out = append(out, request{key: name, name: name, kind: v[name].(string)})
		}
	case []any:
		for i, kind := range v {
			out = append(out, request{key: strconv.Itoa(i), kind: kind.(string)})
		}
	}
	return out
}

// LoadConfiguration registers one extension per entry: map entries under
// their key, list entries anonymously.
func (e *Extension) LoadConfiguration(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	for _, req := range e.requests() {
		if name, ok := e.registered[req]; ok {
			logger.Debug("Extension already registered.", "name", name, "kind", req.kind)
			continue
		}
		factory, ok := e.factories[req.kind]
		if !ok {
			msg := fmt.Sprintf("unknown extension kind '%s'", req.kind)
			if s := schema.Suggest(req.kind, e.Kinds()); s != "" {
				msg += fmt.Sprintf(", did you mean '%s'?", s)
			}
			return compiler.InvalidConfigurationError{
				Section: e.Name(),
				Err:     schema.ValidationError{Path: []string{e.Name(), req.key}, Message: msg},
			}
		}

		c := e.Compiler()
		if err := c.AddExtension(req.name, factory()); err != nil {
			return err
		}
		names := c.ExtensionNames()
		added := names[len(names)-1]
		e.added = append(e.added, added)
		if e.registered == nil {
			e.registered = make(map[request]string)
		}
		e.registered[req] = added
		logger.Debug("Extension registered from configuration.", "name", added, "kind", req.kind)
	}
	return nil
}
