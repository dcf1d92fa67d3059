package compiler

import (
	"context"

	"github.com/specialistvlad/dicompiler/internal/codegen"
	"github.com/specialistvlad/dicompiler/internal/schema"
)

// Extension is a pluggable unit of the compile. Embed Base to get no-op
// defaults for every hook and to satisfy the interface.
type Extension interface {
	// ConfigSchema returns the schema of the extension's section; nil
	// accepts anything.
	ConfigSchema() schema.Schema
	// SetConfig receives the normalized section.
	SetConfig(cfg schema.Config)
	// LoadConfiguration may add service definitions and parameters.
	LoadConfiguration(ctx context.Context) error
	// BeforeCompile runs after definitions are resolved.
	BeforeCompile(ctx context.Context) error
	// AfterCompile may change the generated class. The class must not be
	// kept after the call returns.
	AfterCompile(ctx context.Context, class *codegen.Class) error

	attach(c *Compiler, name string)
}

// Meta marks extensions processed before all others. Only they may
// register extensions, and only from LoadConfiguration.
type Meta interface {
	Extension
	ProcessFirst()
}

// Late marks extensions whose configuration is loaded after every other
// non-meta extension.
type Late interface {
	Extension
	LoadLast()
}

// Located is implemented by extensions that know which source defines
// them. The descriptor is recorded as a build dependency.
type Located interface {
	DefinedIn() string
}

// Base implements every Extension hook as a no-op.
type Base struct {
	compiler *Compiler
	name     string
	config   schema.Config
}

func (b *Base) attach(c *Compiler, name string) {
	b.compiler = c
	b.name = name
}

// Name returns the name the extension was registered under.
func (b *Base) Name() string {
	return b.name
}

// Compiler returns the compiler the extension is registered with.
func (b *Base) Compiler() *Compiler {
	return b.compiler
}

// Config returns the normalized configuration.
func (b *Base) Config() schema.Config {
	return b.config
}

func (b *Base) ConfigSchema() schema.Schema {
	return nil
}

func (b *Base) SetConfig(cfg schema.Config) {
	b.config = cfg
}

func (b *Base) LoadConfiguration(context.Context) error {
	return nil
}

func (b *Base) BeforeCompile(context.Context) error {
	return nil
}

func (b *Base) AfterCompile(context.Context, *codegen.Class) error {
	return nil
}

// ExtensionOption configures a registration.
type ExtensionOption func(*extensionOptions)

type extensionOptions struct {
	descriptor string
}

// DefinedIn sets the descriptor recorded in the dependency ledger for the
// extension, typically the file or module that implements it.
func DefinedIn(descriptor string) ExtensionOption {
	return func(o *extensionOptions) {
		o.descriptor = descriptor
	}
}

// ExtensionsOf returns the registered extensions implementing T, in
// registration order.
func ExtensionsOf[T any](c *Compiler) []T {
	var out []T
	for _, e := range c.extensions.Entries() {
		if v, ok := e.Value.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
