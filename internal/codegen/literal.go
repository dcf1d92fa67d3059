package codegen

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Literal is raw Go source used verbatim.
type Literal string

// GoExpr returns the literal text.
func (l Literal) GoExpr() string {
	return string(l)
}

// Expr is implemented by values that render themselves as Go expressions.
type Expr interface {
	GoExpr() string
}

// Format renders a configuration value as a Go expression. Maps are typed
// map[string]any and lists []any, with keys sorted so output is stable.
func Format(v any) string {
	switch tv := v.(type) {
	case nil:
		return "nil"
	case Expr:
		return tv.GoExpr()
	case string:
		return strconv.Quote(tv)
	case bool:
		return strconv.FormatBool(tv)
	case int:
		return strconv.Itoa(tv)
	case int64:
		return strconv.FormatInt(tv, 10)
	case float64:
		return formatFloat(tv)
	case float32:
		return formatFloat(float64(tv))
	case []string:
		items := make([]string, len(tv))
		for i, s := range tv {
			items[i] = strconv.Quote(s)
		}
		return "[]string{" + strings.Join(items, ", ") + "}"
	case []any:
		items := make([]string, len(tv))
		for i, item := range tv {
			items[i] = Format(item)
		}
		return "[]any{" + strings.Join(items, ", ") + "}"
	case map[string]any:
		return formatMap(tv)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			m := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = iter.Value().Interface()
			}
			return formatMap(m)
		}
	case reflect.Slice:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return Format(items)
	}
	return fmt.Sprintf("%#v", v)
}

func formatMap(m map[string]any) string {
	if len(m) == 0 {
		return "map[string]any{}"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("map[string]any{\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s: %s,\n", strconv.Quote(k), Format(m[k]))
	}
	sb.WriteString("}")
	return sb.String()
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "math.Inf(1)"
	case math.IsInf(f, -1):
		return "math.Inf(-1)"
	case math.IsNaN(f):
		return "math.NaN()"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
