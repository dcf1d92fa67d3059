package inject

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/specialistvlad/dicompiler/internal/compiler"
	"github.com/specialistvlad/dicompiler/internal/ctxlog"
	"github.com/specialistvlad/dicompiler/internal/graph"
	"github.com/specialistvlad/dicompiler/internal/schema"
)

// SectionName is the name the extension is registered under by default.
const SectionName = "inject"

// Config is the `inject` section.
type Config struct {
	// Method is called on the service with the container as its argument.
	Method string `cty:"method"`
	// Types enables injection for services whose type matches one of the
	// patterns, in addition to services with `inject = true`.
	Types []string `cty:"types"`
}

var configSchema = schema.MustType(`object({
	method = optional(string, "Inject")
	types  = optional(list(string), [])
})`)

// Extension appends `service.<Method>(c)` to the setup of injected
// services. It loads last so that definitions contributed by other
// extensions are already known.
type Extension struct {
	compiler.Base
	settings Config
	injected []string
}

var _ compiler.Late = (*Extension)(nil)

// New creates the extension.
func New() *Extension {
	return &Extension{}
}

func (e *Extension) LoadLast() {}

func (e *Extension) ConfigSchema() schema.Schema {
	return configSchema
}

// Injected returns the services injected by the last compile.
func (e *Extension) Injected() []string {
	return append([]string(nil), e.injected...)
}

func (e *Extension) LoadConfiguration(ctx context.Context) error {
	if err := e.Config().Decode(&e.settings); err != nil {
		return compiler.InvalidConfigurationError{Section: e.Name(), Err: err}
	}
	if !isIdentifier(e.settings.Method) {
		return compiler.InvalidConfigurationError{
			Section: e.Name(),
			Err:     schema.ValidationError{Path: []string{e.Name(), "method"}, Message: fmt.Sprintf("'%s' is not a method name", e.settings.Method)},
		}
	}
	for i, p := range e.settings.Types {
		if _, err := path.Match(p, ""); err != nil {
			return compiler.InvalidConfigurationError{
				Section: e.Name(),
				Err:     schema.ValidationError{Path: []string{e.Name(), "types", fmt.Sprint(i)}, Message: err.Error()},
			}
		}
	}

	marked := e.markTypes()
	ctxlog.FromContext(ctx).Debug("Injection configured.", "method", e.settings.Method, "marked", marked)
	return nil
}

// BeforeCompile adds the injection call to every injected service,
// including the ones loaded from the services section.
func (e *Extension) BeforeCompile(ctx context.Context) error {
	e.markTypes()

	call := fmt.Sprintf("service.%s(c)", e.settings.Method)
	e.injected = nil
	for _, def := range e.Compiler().Builder().Definitions() {
		if !def.Inject {
			continue
		}
		if def.Type == "" && def.Factory == "" {
			return graph.ServiceError{Service: def.Name, Message: "cannot inject into a service without type or factory"}
		}
		if !hasSetup(def, call) {
			def.AddSetup(call)
		}
		e.injected = append(e.injected, def.Name)
	}
	ctxlog.FromContext(ctx).Debug("Services injected.", "count", len(e.injected))
	return nil
}

func (e *Extension) markTypes() int {
	n := 0
	for _, def := range e.Compiler().Builder().Definitions() {
		if def.Inject || def.Type == "" {
			continue
		}
		bare := strings.TrimPrefix(def.Type, "*")
		for _, p := range e.settings.Types {
			if ok, _ := path.Match(p, bare); ok {
				def.Inject = true
				n++
				break
			}
		}
	}
	return n
}

func hasSetup(def *graph.Definition, code string) bool {
	for _, s := range def.Setup {
		if s == code {
			return true
		}
	}
	return false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
