package compiler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/dicompiler/internal/codegen"
	"github.com/specialistvlad/dicompiler/internal/ctxlog"
	"github.com/specialistvlad/dicompiler/internal/params"
	"github.com/specialistvlad/dicompiler/internal/schema"
)

// DynamicValidator asserts at runtime that the value found at Path has the
// Expected type.
type DynamicValidator struct {
	Path     []string
	Expected string
	Value    any
}

// ParametersExtension owns the parameters section. It finalizes the
// parameter mapping, turns dynamic parameters into runtime lookups and
// emits runtime type assertions for values that could not be checked at
// compile time.
type ParametersExtension struct {
	Base
	dynamic    []string
	validators []DynamicValidator
	refresh    func(ctx context.Context, final map[string]any) error
}

var _ Meta = (*ParametersExtension)(nil)

func newParametersExtension(refresh func(ctx context.Context, final map[string]any) error) *ParametersExtension {
	return &ParametersExtension{refresh: refresh}
}

// ProcessFirst marks the extension as meta; other sections may only be
// read once parameters are final.
func (p *ParametersExtension) ProcessFirst() {}

func (p *ParametersExtension) ConfigSchema() schema.Schema {
	return schema.AnyMap()
}

// SetDynamicNames declares the dynamic parameters. Duplicates are ignored.
func (p *ParametersExtension) SetDynamicNames(names ...string) {
	seen := make(map[string]bool, len(names))
	p.dynamic = p.dynamic[:0]
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		p.dynamic = append(p.dynamic, n)
	}
	sort.Strings(p.dynamic)
}

// DynamicNames returns the dynamic parameter names, sorted.
func (p *ParametersExtension) DynamicNames() []string {
	return append([]string(nil), p.dynamic...)
}

// AddDynamicValidator registers a runtime type assertion.
func (p *ParametersExtension) AddDynamicValidator(path []string, expected string, value any) {
	p.validators = append(p.validators, DynamicValidator{
		Path:     append([]string(nil), path...),
		Expected: expected,
		Value:    value,
	})
}

func (p *ParametersExtension) reset() {
	p.validators = nil
}

// Validators returns the registered runtime assertions.
func (p *ParametersExtension) Validators() []DynamicValidator {
	return append([]DynamicValidator(nil), p.validators...)
}

// LoadConfiguration finalizes the parameters and re-expands every other
// section against them.
func (p *ParametersExtension) LoadConfiguration(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	raw := make(map[string]any)
	for k, v := range p.Config().Map() {
		raw[k] = v
	}
	for _, key := range p.dynamic {
		if def, ok := raw[key]; ok {
			raw[key] = params.Dynamic{Key: key, Default: def, HasDefault: true}
		} else {
			raw[key] = params.Dynamic{Key: key}
		}
	}

	final, err := params.ExpandMap(raw)
	if err != nil {
		return InvalidConfigurationError{Section: p.Name(), Err: err}
	}

	for _, key := range p.dynamic {
		d, ok := final[key].(params.Dynamic)
		if !ok || !d.HasDefault {
			continue
		}
		if expected := params.DescribeLiteral(d.Default); expected != "" {
			p.AddDynamicValidator([]string{p.Name(), key}, expected, d)
		}
	}

	if err := p.Compiler().Builder().SetParameters(final); err != nil {
		return err
	}
	logger.Debug("Parameters finalized.", "count", len(final), "dynamic", len(p.dynamic))

	if p.refresh != nil {
		return p.refresh(ctx, final)
	}
	return nil
}

// AfterCompile appends one runtime assertion per validator to the
// constructor.
func (p *ParametersExtension) AfterCompile(_ context.Context, class *codegen.Class) error {
	if len(p.validators) == 0 {
		return nil
	}
	ctor := class.Method(class.Constructor)
	if ctor == nil {
		return fmt.Errorf("class '%s' has no constructor", class.Name)
	}
	for _, v := range p.validators {
		ctor.AddStatement("parameters.assert", fmt.Sprintf("c.AssertParameter(%s, %s, %s)",
			codegen.Format(strings.Join(v.Path, ".")), codegen.Format(v.Expected), codegen.Format(v.Value)))
	}
	return nil
}
