package params

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/dicompiler/internal/codegen"
)

// Dynamic is a parameter resolved when the container runs. With a default
// the lookup falls back to it; without one the lookup fails when the key is
// absent.
type Dynamic struct {
	Key        string
	Default    any
	HasDefault bool
}

// GoExpr returns the lookup expression for the generated container.
func (d Dynamic) GoExpr() string {
	if d.HasDefault {
		return fmt.Sprintf("c.DynamicParameter(%q, %s)", d.Key, codegen.Format(d.Default))
	}
	return fmt.Sprintf("c.RequiredParameter(%q)", d.Key)
}

// Concat is a string built from literal parts and runtime values.
type Concat struct {
	Parts []any
}

// GoExpr returns the concatenation expression for the generated container.
func (c Concat) GoExpr() string {
	parts := make([]string, len(c.Parts))
	for i, p := range c.Parts {
		parts[i] = codegen.Format(p)
	}
	return "c.Concat(" + strings.Join(parts, ", ") + ")"
}
