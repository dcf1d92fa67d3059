package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/dicompiler/internal/codegen"
	"github.com/specialistvlad/dicompiler/internal/config"
	"github.com/specialistvlad/dicompiler/internal/ctxlog"
	"github.com/specialistvlad/dicompiler/internal/depcheck"
	"github.com/specialistvlad/dicompiler/internal/graph"
	"github.com/specialistvlad/dicompiler/internal/loader"
	"github.com/specialistvlad/dicompiler/internal/params"
	"github.com/specialistvlad/dicompiler/internal/registry"
	"github.com/specialistvlad/dicompiler/internal/schema"
)

const (
	// ServicesSection holds service definitions. It belongs to the service
	// graph, not to an extension.
	ServicesSection = "services"
	// ParametersSection is owned by the built-in parameters extension.
	ParametersSection = "parameters"

	DefaultClassName = "Container"
	DefaultPackage   = "container"
)

// Compiler turns configuration into the source of a container.
type Compiler struct {
	extensions *registry.Registry[Extension]
	newBuilder func() *graph.Builder
	builder    *graph.Builder
	generator  *codegen.Generator
	store      *config.Store // raw fragments, as added
	sections   *config.Store // fragments of the running compile
	ledger     *depcheck.Ledger
	processor  *schema.Processor
	params     *ParametersExtension
	final      map[string]schema.Config
	className  string
	pkg        string
	started    bool
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithBuilderFactory sets how the service graph builder of each compile
// is created.
func WithBuilderFactory(f func() *graph.Builder) Option {
	return func(c *Compiler) {
		c.newBuilder = f
	}
}

// WithPackage sets the package of the generated file.
func WithPackage(pkg string) Option {
	return func(c *Compiler) {
		c.pkg = pkg
	}
}

// New creates a compiler with the parameters extension registered.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		extensions: registry.New[Extension](ServicesSection),
		newBuilder: graph.NewBuilder,
		store:      config.NewStore(),
		ledger:     depcheck.New(),
		processor:  schema.NewProcessor(),
		final:      make(map[string]schema.Config),
		className:  DefaultClassName,
		pkg:        DefaultPackage,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.builder = c.newBuilder()
	c.generator = codegen.NewGenerator(c.builder, c.pkg)

	c.params = newParametersExtension(c.refreshSections)
	c.processor.OnDynamic = c.params.AddDynamicValidator
	if err := c.AddExtension(ParametersSection, c.params); err != nil {
		panic(err)
	}
	return c
}

// AddExtension registers ext under name. An empty name registers it
// anonymously as `_<n>`, n being the number of extensions so far.
func (c *Compiler) AddExtension(name string, ext Extension, opts ...ExtensionOption) error {
	var o extensionOptions
	for _, opt := range opts {
		opt(&o)
	}

	stage := registry.StageNormal
	if _, ok := ext.(Meta); ok {
		stage = registry.StageFirst
	} else if _, ok := ext.(Late); ok {
		stage = registry.StageLate
	}

	desc := o.descriptor
	if desc == "" {
		if loc, ok := ext.(Located); ok {
			desc = loc.DefinedIn()
		} else {
			desc = fmt.Sprintf("ext:%T", ext)
		}
	}

	entry, err := c.extensions.Add(name, ext, stage, desc)
	if err != nil {
		var dup registry.DuplicateError
		if errors.As(err, &dup) {
			return NameCollisionError{Name: dup.Name, Err: err}
		}
		return err
	}
	ext.attach(c, entry.Name)
	return nil
}

// Extensions returns the registered extensions in registration order.
func (c *Compiler) Extensions() []Extension {
	entries := c.extensions.Entries()
	out := make([]Extension, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out
}

// ExtensionNames returns the registered names in registration order.
func (c *Compiler) ExtensionNames() []string {
	return c.extensions.Names()
}

// Extension returns the extension registered under name.
func (c *Compiler) Extension(name string) (Extension, bool) {
	e, ok := c.extensions.Get(name)
	if !ok {
		return nil, false
	}
	return e.Value, true
}

// Builder returns the service graph builder of the current or last compile.
func (c *Compiler) Builder() *graph.Builder {
	return c.builder
}

// Parameters returns the built-in parameters extension.
func (c *Compiler) Parameters() *ParametersExtension {
	return c.params
}

// Config returns the normalized configuration of every processed section.
func (c *Compiler) Config() map[string]schema.Config {
	out := make(map[string]schema.Config, len(c.final))
	for k, v := range c.final {
		out[k] = v
	}
	return out
}

// SetClassName sets the name of the generated container type.
func (c *Compiler) SetClassName(name string) {
	c.className = name
}

// ClassName returns the name of the generated container type.
func (c *Compiler) ClassName() string {
	return c.className
}

// SetDynamicParameterNames declares parameters resolved when the container
// runs.
func (c *Compiler) SetDynamicParameterNames(names ...string) {
	c.params.SetDynamicNames(names...)
}

// AddConfig adds an in-memory configuration source.
func (c *Compiler) AddConfig(data map[string]any) error {
	if err := c.store.AddDocument(data); err != nil {
		return err
	}
	c.store.AddSource("array")
	return nil
}

// LoadConfig adds a configuration file and everything it includes. A nil
// loader reads files from disk.
func (c *Compiler) LoadConfig(ctx context.Context, file string, l config.Loader) error {
	if l == nil {
		l = loader.New()
	}
	docs, err := l.Load(ctx, file)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := c.store.AddDocument(doc.Data); err != nil {
			return fmt.Errorf("%s: %w", doc.File, err)
		}
	}
	c.store.AddSource(file)
	c.ledger.Add(l.Dependencies()...)

	ctxlog.FromContext(ctx).Debug("Configuration file loaded.", "file", file, "documents", len(docs))
	return nil
}

// AddDependencies records extra build dependencies.
func (c *Compiler) AddDependencies(descs ...string) {
	c.ledger.Add(descs...)
}

// ExportDependencies returns the recorded build dependencies, sorted.
func (c *Compiler) ExportDependencies() []string {
	return c.ledger.Export()
}

// Ledger returns the dependency ledger.
func (c *Compiler) Ledger() *depcheck.Ledger {
	return c.ledger
}

// Compile runs every stage and returns the container source. A compiler
// can compile again; extensions added in between take part.
func (c *Compiler) Compile(ctx context.Context) (string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Compiling container.", "class", c.className, "extensions", c.extensions.Len())

	if err := c.ProcessExtensions(ctx); err != nil {
		return "", err
	}
	if err := c.ProcessServices(ctx); err != nil {
		return "", err
	}
	src, err := c.GenerateCode(ctx)
	if err != nil {
		return "", err
	}

	logger.Debug("Container compiled.", "class", c.className, "dependencies", c.ledger.Len())
	return src, nil
}

// ProcessExtensions validates every extension's section and loads the
// extensions' configuration: meta extensions first, one at a time, then
// all others validated before any of them loads.
func (c *Compiler) ProcessExtensions(ctx context.Context) error {
	c.begin()
	logger := ctxlog.FromContext(ctx)

	var first []*registry.Entry[Extension]
	for _, e := range c.extensions.Entries() {
		if _, ok := e.Value.(Meta); ok {
			first = append(first, e)
		}
	}

	inFirst := make(map[string]bool, len(first))
	for _, e := range first {
		inFirst[e.Name] = true
		if err := c.configure(e); err != nil {
			return err
		}
		logger.Debug("Loading meta extension.", "extension", e.Name)
		if err := e.Value.LoadConfiguration(ctx); err != nil {
			return err
		}
	}

	// Only meta extensions may register others.
	before := c.extensions.Len()
	var rest []*registry.Entry[Extension]
	for _, e := range c.extensions.Ordered() {
		if !inFirst[e.Name] {
			rest = append(rest, e)
		}
	}
	for _, e := range rest {
		if err := c.configure(e); err != nil {
			return err
		}
	}

	for _, e := range rest {
		logger.Debug("Loading extension.", "extension", e.Name, "stage", e.Stage)
		if err := e.Value.LoadConfiguration(ctx); err != nil {
			return err
		}
	}
	if added := c.extensions.Names()[before:]; len(added) > 0 {
		return ExtensionsAddedDuringCompileError{Names: added}
	}

	for _, section := range c.sections.Sections() {
		if section == ServicesSection {
			continue
		}
		if _, ok := c.extensions.Get(section); !ok {
			return UnknownConfigurationSectionError{
				Section:    section,
				Suggestion: schema.Suggest(section, c.extensions.Names()),
			}
		}
	}
	return nil
}

// begin prepares the state of a compile. The raw fragments stay untouched
// so that a later compile starts from them again.
func (c *Compiler) begin() {
	if c.started {
		c.builder = c.newBuilder()
		c.generator = codegen.NewGenerator(c.builder, c.pkg)
		c.final = make(map[string]schema.Config)
		c.params.reset()
	}
	c.started = true
	c.sections = c.store.Clone()
}

func (c *Compiler) configure(e *registry.Entry[Extension]) error {
	cfg, err := c.processor.ProcessMultiple(e.Value.ConfigSchema(), c.sections.Fragments(e.Name), []string{e.Name})
	if err != nil {
		return InvalidConfigurationError{Section: e.Name, Err: err}
	}
	e.Value.SetConfig(cfg)
	c.final[e.Name] = cfg
	return nil
}

// refreshSections re-expands the raw fragments of every section but the
// services and parameters sections against the finalized parameters.
func (c *Compiler) refreshSections(ctx context.Context, final map[string]any) error {
	for _, section := range c.sections.Sections() {
		if section == ServicesSection || section == ParametersSection {
			continue
		}
		expanded, err := expandFragments(c.sections.Fragments(section), final)
		if err != nil {
			return InvalidConfigurationError{Section: section, Err: err}
		}
		if err := c.sections.Replace(section, expanded); err != nil {
			return err
		}
	}
	ctxlog.FromContext(ctx).Debug("Sections refreshed with final parameters.", "sections", len(c.sections.Sections()))
	return nil
}

func expandFragments(frags []any, final map[string]any) ([]any, error) {
	out := make([]any, len(frags))
	for i, f := range frags {
		x, err := params.Expand(f, final)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

// ProcessServices loads the services section into the service graph.
func (c *Compiler) ProcessServices(ctx context.Context) error {
	if c.sections == nil {
		c.sections = c.store.Clone()
	}
	if !c.sections.Has(ServicesSection) {
		return nil
	}
	expanded, err := expandFragments(c.sections.Fragments(ServicesSection), c.builder.Parameters())
	if err != nil {
		return InvalidConfigurationError{Section: ServicesSection, Err: err}
	}
	cfg, err := c.processor.ProcessMultiple(graph.DefinitionsSchema(), expanded, []string{ServicesSection})
	if err != nil {
		return InvalidConfigurationError{Section: ServicesSection, Err: err}
	}
	c.final[ServicesSection] = cfg

	defs := cfg.Map()
	ctxlog.FromContext(ctx).Debug("Loading service definitions.", "count", len(defs))
	return c.builder.LoadDefinitions(defs)
}

// LoadDefinitionsFromConfig validates an ad-hoc services mapping and adds
// it to the service graph. Extensions use it to contribute services from
// their own configuration.
func (c *Compiler) LoadDefinitionsFromConfig(ctx context.Context, defs map[string]any) error {
	expanded, err := params.Expand(defs, c.builder.Parameters())
	if err != nil {
		return InvalidConfigurationError{Section: ServicesSection, Err: err}
	}
	cfg, err := c.processor.Process(graph.DefinitionsSchema(), expanded, nil)
	if err != nil {
		return InvalidConfigurationError{Section: ServicesSection, Err: err}
	}
	ctxlog.FromContext(ctx).Debug("Loading extension service definitions.", "count", len(cfg.Map()))
	return c.builder.LoadDefinitions(cfg.Map())
}

// GenerateCode resolves the service graph, generates the container and
// lets every extension shape it. The result starts with the provenance
// comments of the configuration sources.
func (c *Compiler) GenerateCode(ctx context.Context) (string, error) {
	logger := ctxlog.FromContext(ctx)

	if err := c.builder.Resolve(); err != nil {
		return "", err
	}

	entries := c.extensions.Entries()
	for _, e := range entries {
		if err := e.Value.BeforeCompile(ctx); err != nil {
			return "", err
		}
		c.ledger.Add(e.Descriptor)
	}

	if err := c.builder.Complete(); err != nil {
		return "", err
	}

	class, err := c.generator.Generate(c.className)
	if err != nil {
		return "", err
	}
	if _, err := class.AddMethod(&codegen.Method{Name: codegen.InitializeMethod, Receiver: true}); err != nil {
		return "", err
	}
	c.ledger.Add(c.generator.Dependencies()...)

	for _, e := range entries {
		logger.Debug("Running after-compile hook.", "extension", e.Name)
		if err := e.Value.AfterCompile(ctx, class); err != nil {
			return "", err
		}
	}

	src, err := c.generator.Render(class)
	if err != nil {
		return "", err
	}
	return c.store.Provenance() + "\n" + src, nil
}
