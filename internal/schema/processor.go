package schema

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/dicompiler/internal/hcl_adapter"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Config is a normalized configuration value.
type Config struct {
	// Value is the normalized value. Runtime values appear as unknowns.
	Value cty.Value
	// Native is Value converted back to Go values, runtime values restored.
	Native any
}

// Map returns Native as a map, or an empty map when it is not one.
func (c Config) Map() map[string]any {
	if m, ok := c.Native.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// Decode stores the normalized value in target, a pointer to a struct with
// `cty:"..."` tags covering every attribute.
func (c Config) Decode(target any) error {
	if c.Value.IsNull() {
		return errors.New("configuration has not been set")
	}
	if !c.Value.IsWhollyKnown() {
		return errors.New("configuration depends on runtime parameters and cannot be decoded at compile time")
	}
	return gocty.FromCtyValue(c.Value, target)
}

// Processor validates configuration sections against schemas.
type Processor struct {
	// OnDynamic is called for each runtime value that lands on a typed
	// slot, with the slot's path, the expected type and the value itself.
	OnDynamic func(path []string, expected string, value any)
}

// NewProcessor creates a new Processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// ProcessMultiple merges fragments and validates the result. path locates
// the section, e.g. ["services"], and prefixes every reported error.
func (p *Processor) ProcessMultiple(s Schema, fragments []any, path []string) (Config, error) {
	return p.Process(s, Merge(fragments...), path)
}

// Process validates a single value.
func (p *Processor) Process(s Schema, value any, path []string) (Config, error) {
	if s == nil {
		s = Any()
	}

	deferred := make(map[string]any)
	in := &hcl_adapter.Converter{
		Opaque: func(cp cty.Path, v any) (cty.Value, error) {
			if _, ok := v.(Deferred); !ok {
				return cty.NilVal, newError(cp, fmt.Sprintf("unsupported value of type %T", v))
			}
			deferred[hcl_adapter.PathKey(cp)] = v
			return cty.UnknownVal(cty.DynamicPseudoType), nil
		},
	}

	val, err := in.ToCtyValue(value)
	if err != nil {
		return Config{}, prefixed(path, err)
	}

	out, err := s.Normalize(val, nil)
	if err != nil {
		return Config{}, prefixed(path, err)
	}

	back := &hcl_adapter.Converter{
		Unknown: func(cp cty.Path, v cty.Value) (any, error) {
			orig, ok := deferred[hcl_adapter.PathKey(cp)]
			if !ok {
				return nil, newError(cp, "is not known at compile time")
			}
			if p.OnDynamic != nil && v.Type() != cty.DynamicPseudoType {
				slot := append(append([]string{}, path...), hcl_adapter.PathSegments(cp)...)
				p.OnDynamic(slot, Describe(v.Type()), orig)
			}
			return orig, nil
		},
	}

	native, err := back.FromCtyValue(out)
	if err != nil {
		return Config{}, prefixed(path, err)
	}
	return Config{Value: out, Native: native}, nil
}

func prefixed(path []string, err error) error {
	var verr ValidationError
	if !errors.As(wrapPathError(nil, err), &verr) {
		return err
	}
	return verr.WithPrefix(path)
}
