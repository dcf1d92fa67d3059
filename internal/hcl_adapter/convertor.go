package hcl_adapter

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Converter converts native configuration values to and from cty.Value.
// The zero value handles plain data only.
type Converter struct {
	// Opaque is consulted for native values the converter does not know,
	// e.g. placeholders for values that only exist at runtime.
	Opaque func(path cty.Path, v any) (cty.Value, error)
	// Unknown is consulted for unknown cty values on the way back.
	Unknown func(path cty.Path, v cty.Value) (any, error)
}

// NewConverter creates a new converter for plain data.
func NewConverter() *Converter {
	return &Converter{}
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
// Maps become objects and slices become tuples, so heterogeneous
// configuration keeps its shape until a schema says otherwise.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	return c.toCty(nil, v)
}

func (c *Converter) toCty(path cty.Path, v any) (cty.Value, error) {
	switch tv := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return tv, nil
	case string:
		return cty.StringVal(tv), nil
	case bool:
		return cty.BoolVal(tv), nil
	case int:
		return cty.NumberIntVal(int64(tv)), nil
	case int8:
		return cty.NumberIntVal(int64(tv)), nil
	case int16:
		return cty.NumberIntVal(int64(tv)), nil
	case int32:
		return cty.NumberIntVal(int64(tv)), nil
	case int64:
		return cty.NumberIntVal(tv), nil
	case uint:
		return cty.NumberUIntVal(uint64(tv)), nil
	case uint8:
		return cty.NumberUIntVal(uint64(tv)), nil
	case uint16:
		return cty.NumberUIntVal(uint64(tv)), nil
	case uint32:
		return cty.NumberUIntVal(uint64(tv)), nil
	case uint64:
		return cty.NumberUIntVal(tv), nil
	case float32:
		return cty.NumberFloatVal(float64(tv)), nil
	case float64:
		return cty.NumberFloatVal(tv), nil
	case []string:
		vals := make([]cty.Value, len(tv))
		for i, s := range tv {
			vals[i] = cty.StringVal(s)
		}
		return tupleOrEmpty(vals), nil
	case []any:
		vals := make([]cty.Value, len(tv))
		for i, item := range tv {
			cv, err := c.toCty(path.Index(cty.NumberIntVal(int64(i))), item)
			if err != nil {
				return cty.NilVal, err
			}
			vals[i] = cv
		}
		return tupleOrEmpty(vals), nil
	case map[string]any:
		attrs := make(map[string]cty.Value, len(tv))
		for k, item := range tv {
			cv, err := c.toCty(path.GetAttr(k), item)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k] = cv
		}
		if len(attrs) == 0 {
			return cty.EmptyObjectVal, nil
		}
		return cty.ObjectVal(attrs), nil
	case map[string]string:
		attrs := make(map[string]cty.Value, len(tv))
		for k, s := range tv {
			attrs[k] = cty.StringVal(s)
		}
		if len(attrs) == 0 {
			return cty.EmptyObjectVal, nil
		}
		return cty.ObjectVal(attrs), nil
	}

	if c.Opaque != nil {
		return c.Opaque(path, v)
	}
	return cty.NilVal, path.NewErrorf("unsupported configuration value of type %T", v)
}

func tupleOrEmpty(vals []cty.Value) cty.Value {
	if len(vals) == 0 {
		return cty.EmptyTupleVal
	}
	return cty.TupleVal(vals)
}

// FromCtyValue converts a cty.Value into its native Go representation.
// Whole numbers become int, other numbers float64.
func (c *Converter) FromCtyValue(v cty.Value) (any, error) {
	return c.fromCty(nil, v)
}

func (c *Converter) fromCty(path cty.Path, v cty.Value) (any, error) {
	if !v.IsKnown() {
		if c.Unknown != nil {
			return c.Unknown(path, v)
		}
		return nil, path.NewErrorf("value is not known at compile time")
	}
	if v.IsNull() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		return numberToNative(v.AsBigFloat()), nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for i := 0; it.Next(); i++ {
			_, elem := it.Element()
			native, err := c.fromCty(path.Index(cty.NumberIntVal(int64(i))), elem)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		goMap := make(map[string]any, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			keyStr := key.AsString()
			native, err := c.fromCty(path.GetAttr(keyStr), elem)
			if err != nil {
				return nil, err
			}
			goMap[keyStr] = native
		}
		return goMap, nil
	}

	return nil, path.NewErrorf("unsupported cty type %s", ty.FriendlyName())
}

func numberToNative(bf *big.Float) any {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return int(i)
		}
	}
	f, _ := bf.Float64()
	return f
}

// PathKey renders a cty path as dotted segments. Attribute steps and
// string-keyed index steps render the same way, so a value keeps its key
// when an object is converted to a map.
func PathKey(path cty.Path) string {
	return strings.Join(PathSegments(path), ".")
}

// PathSegments renders each step of a cty path as a string.
func PathSegments(path cty.Path) []string {
	segs := make([]string, 0, len(path))
	for _, step := range path {
		switch s := step.(type) {
		case cty.GetAttrStep:
			segs = append(segs, s.Name)
		case cty.IndexStep:
			segs = append(segs, indexKey(s.Key))
		}
	}
	return segs
}

func indexKey(key cty.Value) string {
	if !key.IsKnown() || key.IsNull() {
		return "?"
	}
	switch key.Type() {
	case cty.String:
		return key.AsString()
	case cty.Number:
		if i, acc := key.AsBigFloat().Int64(); acc == big.Exact {
			return strconv.FormatInt(i, 10)
		}
		return key.AsBigFloat().Text('f', -1)
	}
	return "?"
}

// SortedKeys returns the keys of a native map in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DescribeType names the type of a native value the way configuration
// errors and runtime assertions refer to it.
func DescribeType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case float32, float64:
		return "float"
	case []any, []string:
		return "list"
	case map[string]any, map[string]string:
		return "map"
	}
	return fmt.Sprintf("%T", v)
}
