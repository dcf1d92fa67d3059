package container

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/specialistvlad/dicompiler/internal/hcl_adapter"
)

// Factory creates a service.
type Factory func() any

// Diagnostics describes the build a container was generated by and the
// services it has created so far.
type Diagnostics struct {
	BuildID    string
	CompiledAt time.Time
	Services   []string
	Created    []string
}

// Container resolves services on first use. The zero value is ready to
// use. A Container is not safe for concurrent use.
type Container struct {
	params    map[string]any
	exported  map[string]any
	factories map[string]Factory
	services  map[string]any
	creating  []string
	created   []string

	diagnostics bool
	buildID     string
	compiledAt  time.Time
}

// Bind sets the runtime parameters dynamic parameters are read from.
func (c *Container) Bind(params map[string]any) {
	c.params = params
}

// ExportParameters stores the parameters exposed by Parameters.
func (c *Container) ExportParameters(params map[string]any) {
	c.exported = params
}

// Parameters returns the exported parameters, or nil when the container
// does not export them.
func (c *Container) Parameters() map[string]any {
	return c.exported
}

// DynamicParameter returns the runtime parameter key, or def when it was
// not bound.
func (c *Container) DynamicParameter(key string, def any) any {
	if v, ok := c.params[key]; ok {
		return v
	}
	return def
}

// RequiredParameter returns the runtime parameter key. It panics with a
// MissingParameterError when the key was not bound.
func (c *Container) RequiredParameter(key string) any {
	v, ok := c.params[key]
	if !ok {
		panic(MissingParameterError{Key: key})
	}
	return v
}

// Concat joins the parts into a string.
func (c *Container) Concat(parts ...any) string {
	var sb strings.Builder
	for _, p := range parts {
		if p != nil {
			sb.WriteString(fmt.Sprint(p))
		}
	}
	return sb.String()
}

// AssertParameter panics with a ParameterTypeError unless value has the
// expected type.
func (c *Container) AssertParameter(path, expected string, value any) {
	actual := hcl_adapter.DescribeType(value)
	if accepts(expected, actual) {
		return
	}
	panic(ParameterTypeError{Path: path, Expected: expected, Actual: actual})
}

func accepts(expected, actual string) bool {
	switch expected {
	case "any":
		return true
	case "number", "float":
		return actual == "int" || actual == "float"
	}
	return expected == actual
}

// Register adds the factory of a service. It replaces an earlier factory
// of the same name.
func (c *Container) Register(name string, f Factory) {
	if c.factories == nil {
		c.factories = make(map[string]Factory)
	}
	c.factories[name] = f
}

// HasService reports whether a service is registered.
func (c *Container) HasService(name string) bool {
	_, ok := c.factories[name]
	return ok
}

// ServiceNames returns the registered service names, sorted.
func (c *Container) ServiceNames() []string {
	names := make([]string, 0, len(c.factories))
	for n := range c.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns the service, creating it on first use.
func (c *Container) Get(name string) (any, error) {
	if s, ok := c.services[name]; ok {
		return s, nil
	}
	f, ok := c.factories[name]
	if !ok {
		return nil, ServiceNotFoundError{Name: name}
	}
	for i, n := range c.creating {
		if n == name {
			chain := append(append([]string(nil), c.creating[i:]...), name)
			return nil, CircularDependencyError{Chain: chain}
		}
	}

	c.creating = append(c.creating, name)
	defer func() {
		c.creating = c.creating[:len(c.creating)-1]
	}()

	s := f()
	if c.services == nil {
		c.services = make(map[string]any)
	}
	c.services[name] = s
	c.created = append(c.created, name)
	return s, nil
}

// GetService is Get for generated code. It panics when the service cannot
// be created.
func (c *Container) GetService(name string) any {
	s, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return s
}

// IsCreated reports whether the service has been created.
func (c *Container) IsCreated(name string) bool {
	_, ok := c.services[name]
	return ok
}

// EnableDiagnostics records the build the container was generated by.
func (c *Container) EnableDiagnostics(buildID string, compiledAt int64) {
	c.diagnostics = true
	c.buildID = buildID
	c.compiledAt = time.Unix(0, compiledAt).UTC()
}

// Diagnostics returns nil unless diagnostics were enabled.
func (c *Container) Diagnostics() *Diagnostics {
	if !c.diagnostics {
		return nil
	}
	return &Diagnostics{
		BuildID:    c.buildID,
		CompiledAt: c.compiledAt,
		Services:   c.ServiceNames(),
		Created:    append([]string(nil), c.created...),
	}
}
