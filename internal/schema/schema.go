package schema

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Schema normalizes a value, returning a ValidationError when the value
// does not fit. path locates val relative to the section root.
type Schema interface {
	Normalize(val cty.Value, path cty.Path) (cty.Value, error)
}

// Deferred is implemented by values that are only known when the generated
// container runs. GoExpr returns the expression producing the value.
type Deferred interface {
	GoExpr() string
}

// --- Type constraints ---

type typeSchema struct {
	src      string
	ty       cty.Type
	defaults *typeexpr.Defaults
}

// Type parses an HCL type constraint, optionally with defaults, e.g.
// `object({debugger = optional(bool, false)})`.
func Type(src string) (Schema, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "<schema>", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid schema %q: %w", src, diags)
	}
	ty, defaults, diags := typeexpr.TypeConstraintWithDefaults(expr)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid schema %q: %w", src, diags)
	}
	return &typeSchema{src: src, ty: ty, defaults: defaults}, nil
}

// MustType is like Type but panics on an invalid constraint. It is meant
// for schemas declared in package variables.
func MustType(src string) Schema {
	s, err := Type(src)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *typeSchema) Normalize(val cty.Value, path cty.Path) (cty.Value, error) {
	if val.IsNull() && s.ty.IsObjectType() {
		val = cty.EmptyObjectVal
	}
	if err := checkUnexpected(val, s.ty, path); err != nil {
		return cty.NilVal, err
	}
	if s.defaults != nil && !val.IsNull() {
		val = s.defaults.Apply(val)
	}
	out, err := convert.Convert(val, s.ty)
	if err != nil {
		return cty.NilVal, wrapPathError(path, err)
	}
	return out, nil
}

func (s *typeSchema) String() string {
	return s.src
}

// checkUnexpected rejects object keys the type does not declare. Converting
// to an object type would drop them silently.
func checkUnexpected(val cty.Value, ty cty.Type, path cty.Path) error {
	if !val.IsKnown() || val.IsNull() || !val.CanIterateElements() {
		return nil
	}
	vt := val.Type()

	switch {
	case ty.IsObjectType():
		if !vt.IsObjectType() && !vt.IsMapType() {
			return nil
		}
		attrs := ty.AttributeTypes()
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			name := k.AsString()
			at, ok := attrs[name]
			if !ok {
				msg := "unexpected item"
				if hint := Suggest(name, sortedAttrNames(attrs)); hint != "" {
					msg += fmt.Sprintf(", did you mean '%s'?", hint)
				}
				return newError(path.GetAttr(name), msg)
			}
			if err := checkUnexpected(v, at, path.GetAttr(name)); err != nil {
				return err
			}
		}

	case ty.IsMapType() || ty.IsListType() || ty.IsSetType():
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			if err := checkUnexpected(v, ty.ElementType(), path.Index(k)); err != nil {
				return err
			}
		}
	}
	return nil
}

// --- Composite schemas ---

type anySchema struct{}

// Any accepts every value unchanged.
func Any() Schema {
	return anySchema{}
}

func (anySchema) Normalize(val cty.Value, _ cty.Path) (cty.Value, error) {
	return val, nil
}

type anyMapSchema struct{}

// AnyMap accepts any mapping; a missing section becomes an empty one.
func AnyMap() Schema {
	return anyMapSchema{}
}

func (anyMapSchema) Normalize(val cty.Value, path cty.Path) (cty.Value, error) {
	if val.IsNull() {
		return cty.EmptyObjectVal, nil
	}
	if err := expectMap(val, path); err != nil {
		return cty.NilVal, err
	}
	return val, nil
}

type mapOfSchema struct {
	inner Schema
}

// MapOf validates every entry of a mapping against inner.
func MapOf(inner Schema) Schema {
	return mapOfSchema{inner: inner}
}

func (m mapOfSchema) Normalize(val cty.Value, path cty.Path) (cty.Value, error) {
	if val.IsNull() {
		return cty.EmptyObjectVal, nil
	}
	if err := expectMap(val, path); err != nil {
		return cty.NilVal, err
	}

	attrs := make(map[string]cty.Value, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		out, err := m.inner.Normalize(v, path.Index(k))
		if err != nil {
			return cty.NilVal, err
		}
		attrs[k.AsString()] = out
	}
	if len(attrs) == 0 {
		return cty.EmptyObjectVal, nil
	}
	return cty.ObjectVal(attrs), nil
}

// Func adapts a function to the Schema interface.
type Func func(val cty.Value, path cty.Path) (cty.Value, error)

// Normalize calls f.
func (f Func) Normalize(val cty.Value, path cty.Path) (cty.Value, error) {
	return f(val, path)
}

func expectMap(val cty.Value, path cty.Path) error {
	if !val.IsKnown() {
		return newError(path, "expects to be map, runtime value given")
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return newError(path, fmt.Sprintf("expects to be map, %s given", Describe(ty)))
	}
	return nil
}

// Describe names a cty type the way runtime assertions refer to it.
func Describe(ty cty.Type) string {
	switch {
	case ty == cty.String:
		return "string"
	case ty == cty.Number:
		return "number"
	case ty == cty.Bool:
		return "bool"
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		return "list"
	case ty.IsMapType() || ty.IsObjectType():
		return "map"
	}
	return ty.FriendlyName()
}
