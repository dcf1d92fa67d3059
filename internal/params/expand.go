package params

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/specialistvlad/dicompiler/internal/hcl_adapter"
)

var placeholder = regexp.MustCompile(`%([\w.\-]*)%`)

// Expand replaces placeholders in v with values from params. A string that
// is a single placeholder takes the referenced value as is, whatever its
// type; placeholders inside longer strings are concatenated. `%%` stands
// for a literal percent sign. Referenced parameters are expanded
// recursively and reference loops fail with CyclicReferenceError.
//
// Map keys are not expanded.
func Expand(v any, params map[string]any) (any, error) {
	e := &expander{params: params}
	return e.expand(v)
}

// ExpandMap expands every value of a parameter mapping against the mapping
// itself.
func ExpandMap(params map[string]any) (map[string]any, error) {
	out, err := Expand(params, params)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return map[string]any{}, nil
	}
	return out.(map[string]any), nil
}

type expander struct {
	params map[string]any
	stack  []string
}

func (e *expander) expand(v any) (any, error) {
	switch tv := v.(type) {
	case string:
		return e.expandString(tv)
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			x, err := e.expand(item)
			if err != nil {
				return nil, err
			}
			out[k] = x
		}
		return out, nil
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			x, err := e.expand(item)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	case Dynamic:
		if !tv.HasDefault {
			return tv, nil
		}
		def, err := e.expand(tv.Default)
		if err != nil {
			return nil, err
		}
		tv.Default = def
		return tv, nil
	}
	return v, nil
}

func (e *expander) expandString(s string) (any, error) {
	matches := placeholder.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	// A lone placeholder keeps the referenced value's type.
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(s) {
		name := s[matches[0][2]:matches[0][3]]
		if name == "" {
			return "%", nil
		}
		return e.resolve(name)
	}

	var parts []any
	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(s[last:m[0]])
		last = m[1]

		name := s[m[2]:m[3]]
		if name == "" {
			sb.WriteByte('%')
			continue
		}
		val, err := e.resolve(name)
		if err != nil {
			return nil, err
		}
		switch tv := val.(type) {
		case nil:
		case string, bool, int, float64:
			sb.WriteString(fmt.Sprint(tv))
		case Dynamic, Concat:
			if sb.Len() > 0 {
				parts = append(parts, sb.String())
				sb.Reset()
			}
			if c, ok := tv.(Concat); ok {
				parts = append(parts, c.Parts...)
			} else {
				parts = append(parts, tv)
			}
		default:
			return nil, NonScalarError{Name: name, Value: s}
		}
	}
	sb.WriteString(s[last:])

	if len(parts) == 0 {
		return sb.String(), nil
	}
	if sb.Len() > 0 {
		parts = append(parts, sb.String())
	}
	return Concat{Parts: parts}, nil
}

func (e *expander) resolve(name string) (any, error) {
	for i, n := range e.stack {
		if n == name {
			chain := append(append([]string{}, e.stack[i:]...), name)
			return nil, CyclicReferenceError{Chain: chain}
		}
	}

	val, ok := Lookup(e.params, name)
	if !ok {
		return nil, MissingParameterError{Name: name}
	}

	e.stack = append(e.stack, name)
	defer func() { e.stack = e.stack[:len(e.stack)-1] }()
	return e.expand(val)
}

// Lookup finds a parameter by name. A dotted name walks nested maps unless
// the full name is itself a key.
func Lookup(params map[string]any, name string) (any, bool) {
	if v, ok := params[name]; ok {
		return v, true
	}
	cur := any(params)
	for _, seg := range strings.Split(name, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// DescribeLiteral names the type of a literal parameter value, or returns
// "" when the value is not a literal.
func DescribeLiteral(v any) string {
	switch v.(type) {
	case nil, Dynamic, Concat:
		return ""
	}
	return hcl_adapter.DescribeType(v)
}
