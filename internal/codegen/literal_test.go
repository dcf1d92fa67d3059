package codegen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type call string

func (c call) GoExpr() string { return string(c) }

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "nil"},
		{"string", "a\"b", `"a\"b"`},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"int32", int32(-7), "-7"},
		{"uint", uint16(7), "7"},
		{"whole float", 2.0, "2.0"},
		{"float", 0.25, "0.25"},
		{"inf", math.Inf(1), "math.Inf(1)"},
		{"literal", Literal("time.Second"), "time.Second"},
		{"expr", call(`c.RequiredParameter("x")`), `c.RequiredParameter("x")`},
		{"strings", []string{"a", "b"}, `[]string{"a", "b"}`},
		{"list", []any{1, "a", nil}, `[]any{1, "a", nil}`},
		{"typed list", []int{1, 2}, `[]any{1, 2}`},
		{"empty map", map[string]any{}, "map[string]any{}"},
		{"map", map[string]any{"b": 2, "a": []any{}}, "map[string]any{\n\"a\": []any{},\n\"b\": 2,\n}"},
		{"typed map", map[string]bool{"x": true}, "map[string]any{\n\"x\": true,\n}"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Format(tc.in))
		})
	}
}
