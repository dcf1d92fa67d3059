package config

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/specialistvlad/dicompiler/internal/schema"
)

// Canonical converts a native value into the canonical fragment form.
// Typed maps and slices are widened, integer kinds become int and float
// kinds float64. Integers beyond the range of int and non-finite floats
// are rejected with a schema.ValidationError. Map keys must be strings or
// scalars printable as strings. Values implementing GoExpr are kept as
// they are.
func Canonical(v any) (any, error) {
	return canonical(v, nil)
}

type goExpr interface {
	GoExpr() string
}

func canonical(v any, path []string) (any, error) {
	switch tv := v.(type) {
	case nil:
		return nil, nil
	case string, bool, int, goExpr:
		return tv, nil
	case float64:
		return finite(tv, path)
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			c, err := canonical(item, join(path, k))
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			c, err := canonical(item, join(path, fmt.Sprint(i)))
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt {
			return nil, schema.ValidationError{
				Path:    path,
				Message: fmt.Sprintf("integer %d is out of range, at most %d is supported", rv.Uint(), math.MaxInt),
			}
		}
		return int(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return finite(rv.Float(), path)
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			c, err := canonical(rv.Index(i).Interface(), join(path, fmt.Sprint(i)))
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, err := mapKey(iter.Key(), path)
			if err != nil {
				return nil, err
			}
			c, err := canonical(iter.Value().Interface(), join(path, key))
			if err != nil {
				return nil, err
			}
			out[key] = c
		}
		return out, nil
	}

	return nil, fmt.Errorf("unsupported value of type %T at '%s'", v, strings.Join(path, "."))
}

func finite(f float64, path []string) (any, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, schema.ValidationError{Path: path, Message: fmt.Sprintf("number %v is not finite", f)}
	}
	return f, nil
}

func mapKey(k reflect.Value, path []string) (string, error) {
	if k.Kind() == reflect.Interface {
		k = k.Elem()
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Bool:
		return fmt.Sprint(k.Interface()), nil
	}
	return "", fmt.Errorf("unsupported map key of type %s at '%s'", k.Type(), strings.Join(path, "."))
}

func join(path []string, key string) []string {
	return append(append([]string(nil), path...), key)
}
