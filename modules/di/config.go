package di

import (
	"fmt"

	"github.com/specialistvlad/dicompiler/internal/hcl_adapter"
	"github.com/specialistvlad/dicompiler/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Config is the `di` section.
type Config struct {
	Debugger   bool     `cty:"debugger"`
	Excluded   []string `cty:"excluded"`
	ParentType *string  `cty:"parentType"`
	Export     *Export  `cty:"export"`
}

// Export controls what the generated container exposes. Tags and Types
// are either a bool or a list of allowed names.
type Export struct {
	Parameters bool      `cty:"parameters"`
	Tags       cty.Value `cty:"tags"`
	Types      cty.Value `cty:"types"`
}

var configType = schema.MustType(`object({
	debugger   = optional(bool, true)
	excluded   = optional(list(string), [])
	parentType = optional(string)
	export = optional(object({
		parameters = optional(bool, true)
		tags       = optional(any, true)
		types      = optional(any, true)
	}))
})`)

// ConfigSchema validates the section.
func ConfigSchema() schema.Schema {
	return schema.Func(func(val cty.Value, path cty.Path) (cty.Value, error) {
		out, err := configType.Normalize(val, path)
		if err != nil || !out.IsKnown() {
			return out, err
		}
		export := out.GetAttr("export")
		if export.IsNull() || !export.IsKnown() {
			return out, nil
		}
		for _, name := range []string{"tags", "types"} {
			if _, err := parseOption(export.GetAttr(name)); err != nil {
				return cty.NilVal, schema.ValidationError{
					Path:    hcl_adapter.PathSegments(path.GetAttr("export").GetAttr(name)),
					Message: err.Error(),
				}
			}
		}
		return out, nil
	})
}

// option is a decoded bool-or-list export setting.
type option struct {
	all   bool
	names []string
}

func (o option) enabled() bool {
	return o.all || len(o.names) > 0
}

func parseOption(v cty.Value) (option, error) {
	if v.IsNull() {
		return option{}, nil
	}
	if !v.IsWhollyKnown() {
		return option{}, fmt.Errorf("expects to be bool or list, runtime value given")
	}
	ty := v.Type()
	switch {
	case ty == cty.Bool:
		return option{all: v.True()}, nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		var o option
		for it := v.ElementIterator(); it.Next(); {
			_, item := it.Element()
			if item.IsNull() || item.Type() != cty.String {
				return option{}, fmt.Errorf("expects to be list of names, %s item given", schema.Describe(item.Type()))
			}
			o.names = append(o.names, item.AsString())
		}
		return o, nil
	}
	return option{}, fmt.Errorf("expects to be bool or list, %s given", schema.Describe(ty))
}

func defaultExport() *Export {
	return &Export{Parameters: true, Tags: cty.True, Types: cty.True}
}
