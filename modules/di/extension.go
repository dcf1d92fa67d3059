package di

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/dicompiler/internal/codegen"
	"github.com/specialistvlad/dicompiler/internal/compiler"
	"github.com/specialistvlad/dicompiler/internal/ctxlog"
	"github.com/specialistvlad/dicompiler/internal/schema"
)

const (
	// SectionName is the name the extension is registered under by default.
	SectionName = "di"
	// RunTag marks services created when the container is initialized.
	// The tag is deprecated and reported as a warning.
	RunTag = "run"
	// WiringMember holds the exported type map in the generated container.
	WiringMember = "wiring"
)

// Extension shapes the generated container: its parent type, what it
// exports and how it initializes.
type Extension struct {
	compiler.Base

	debugMode     bool
	compiledAt    time.Time
	buildID       string
	exportedTags  map[string]bool
	exportedTypes map[string]bool
	settings      Config
	warnings      []string
}

var (
	_ compiler.Extension = (*Extension)(nil)
	_ compiler.Located   = (*Extension)(nil)
)

// Option configures an Extension.
type Option func(*Extension)

// WithCompiledAt overrides the compile timestamp.
func WithCompiledAt(t time.Time) Option {
	return func(e *Extension) {
		e.compiledAt = t
	}
}

// WithBuildID overrides the generated build id.
func WithBuildID(id string) Option {
	return func(e *Extension) {
		e.buildID = id
	}
}

// New creates the extension. Diagnostics are only injected in debug mode.
func New(debugMode bool, opts ...Option) *Extension {
	e := &Extension{
		debugMode:     debugMode,
		compiledAt:    time.Now(),
		buildID:       uuid.NewString(),
		exportedTags:  make(map[string]bool),
		exportedTypes: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefinedIn identifies the extension in the dependency ledger.
func (e *Extension) DefinedIn() string {
	return "module:github.com/specialistvlad/dicompiler/modules/di"
}

func (e *Extension) ConfigSchema() schema.Schema {
	return ConfigSchema()
}

// ExportTags keeps tags in the container even when the tag export is an
// allow-list that does not name them.
func (e *Extension) ExportTags(tags ...string) {
	for _, t := range tags {
		e.exportedTags[t] = true
	}
}

// ExportTypes keeps types in the wiring map even when the type export is
// restricted.
func (e *Extension) ExportTypes(types ...string) {
	for _, t := range types {
		e.exportedTypes[t] = true
	}
}

// CompiledAt returns the compile timestamp recorded for diagnostics.
func (e *Extension) CompiledAt() time.Time {
	return e.compiledAt
}

// BuildID returns the id recorded for diagnostics.
func (e *Extension) BuildID() string {
	return e.buildID
}

// Warnings returns the deprecation warnings of the last compile.
func (e *Extension) Warnings() []string {
	return append([]string(nil), e.warnings...)
}

// Settings returns the decoded configuration.
func (e *Extension) Settings() Config {
	return e.settings
}

func (e *Extension) LoadConfiguration(ctx context.Context) error {
	if err := e.Config().Decode(&e.settings); err != nil {
		return compiler.InvalidConfigurationError{Section: e.Name(), Err: err}
	}
	if e.settings.Export == nil {
		e.settings.Export = defaultExport()
	}

	if err := e.Compiler().Builder().AddExcludedTypes(e.settings.Excluded...); err != nil {
		return compiler.InvalidConfigurationError{Section: e.Name(), Err: err}
	}
	ctxlog.FromContext(ctx).Debug("Excluded types registered.", "extension", e.Name(), "count", len(e.settings.Excluded))
	return nil
}

func (e *Extension) AfterCompile(ctx context.Context, class *codegen.Class) error {
	logger := ctxlog.FromContext(ctx).With("extension", e.Name())

	if e.settings.ParentType != nil && *e.settings.ParentType != "" {
		parent, imp := splitType(*e.settings.ParentType)
		class.SetExtends(parent)
		class.RemoveImport(codegen.ContainerImport)
		class.AddImport(imp)
	}

	if !e.settings.Export.Parameters {
		if ctor := class.Method(class.Constructor); ctor != nil {
			ctor.RemoveStatement(codegen.ParametersExportLabel)
		}
	}

	if err := e.exportTags(class); err != nil {
		return err
	}
	if err := e.exportWiring(class); err != nil {
		return err
	}

	init := class.Method(codegen.InitializeMethod)
	if init == nil {
		return fmt.Errorf("class '%s' has no %s method", class.Name, codegen.InitializeMethod)
	}

	e.warnings = nil
	tagged := e.Compiler().Builder().FindByTag(RunTag)
	names := make([]string, 0, len(tagged))
	for name, on := range tagged {
		if truthy(on) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		msg := fmt.Sprintf("tag '%s' used in service '%s' definition is deprecated", RunTag, name)
		logger.Warn("Deprecated tag used.", "tag", RunTag, "service", name)
		e.warnings = append(e.warnings, msg)
		init.AddBody(fmt.Sprintf("c.GetService(%q)", name))
	}

	if e.debugMode && e.settings.Debugger {
		init.AddBody(fmt.Sprintf("c.EnableDiagnostics(%q, %d)", e.buildID, e.compiledAt.UnixNano()))
		logger.Debug("Diagnostics enabled.", "build", e.buildID)
	}
	return nil
}

func (e *Extension) exportTags(class *codegen.Class) error {
	opt, err := parseOption(e.settings.Export.Tags)
	if err != nil {
		return compiler.InvalidConfigurationError{Section: e.Name(), Err: err}
	}
	if !opt.enabled() {
		class.RemoveMember(codegen.TagsMember)
		return nil
	}
	member := class.Member(codegen.TagsMember)
	if opt.all || member == nil {
		return nil
	}

	allowed := union(e.exportedTags, opt.names)
	tags, ok := member.Value.(map[string]map[string]any)
	if !ok {
		return fmt.Errorf("member '%s' has unexpected value of type %T", codegen.TagsMember, member.Value)
	}
	filtered := make(map[string]map[string]any, len(tags))
	for tag, services := range tags {
		if allowed[tag] {
			filtered[tag] = services
		}
	}
	member.Value = filtered
	return nil
}

func (e *Extension) exportWiring(class *codegen.Class) error {
	opt, err := parseOption(e.settings.Export.Types)
	if err != nil {
		return compiler.InvalidConfigurationError{Section: e.Name(), Err: err}
	}
	var filter func(string) bool
	if !opt.all {
		allowed := union(e.exportedTypes, opt.names)
		filter = func(typ string) bool {
			return allowed[typ]
		}
	}
	class.AddMember(&codegen.Member{
		Name:  WiringMember,
		Type:  "map[string]any",
		Value: e.Compiler().Builder().ExportTypes(filter),
	})
	return nil
}

func union(set map[string]bool, names []string) map[string]bool {
	out := make(map[string]bool, len(set)+len(names))
	for k := range set {
		out[k] = true
	}
	for _, n := range names {
		out[n] = true
	}
	return out
}

// splitType turns an import-qualified type such as
// "github.com/acme/app/base.Container" into "base.Container" and its
// import path. Unqualified types have no import.
func splitType(full string) (typ, imp string) {
	slash := strings.LastIndex(full, "/")
	dot := strings.LastIndex(full, ".")
	if slash < 0 || dot < slash {
		return full, ""
	}
	return full[slash+1:], full[:dot]
}

func truthy(v any) bool {
	switch tv := v.(type) {
	case nil:
		return false
	case bool:
		return tv
	case string:
		return tv != "" && tv != "0"
	case int:
		return tv != 0
	case float64:
		return tv != 0
	}
	return true
}
