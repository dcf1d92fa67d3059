package codegen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"strings"
	"unicode"

	"github.com/specialistvlad/dicompiler/internal/graph"
	"golang.org/x/tools/go/ast/astutil"
)

const (
	// ContainerImport is the runtime package generated containers embed.
	ContainerImport = "github.com/specialistvlad/dicompiler/pkg/container"
	// ContainerType is the default embedded parent type.
	ContainerType = "container.Container"

	// ParametersExportLabel labels the constructor statement that hands the
	// compile-time parameters to the parent type.
	ParametersExportLabel = "parameters.export"
	// TagsMember is the member holding service tags.
	TagsMember = "tags"
	// InitializeMethod is the post-construction hook extensions append to.
	InitializeMethod = "Initialize"
)

// Generator turns the definitions of a graph.Builder into a Class.
type Generator struct {
	builder *graph.Builder
	pkg     string
}

// NewGenerator creates a generator emitting into package pkg.
func NewGenerator(builder *graph.Builder, pkg string) *Generator {
	return &Generator{builder: builder, pkg: pkg}
}

// Generate builds the container skeleton: the type embedding the runtime
// container, its constructor, one factory method per service and the tags
// member.
func (g *Generator) Generate(name string) (*Class, error) {
	if !isIdentifier(name) {
		return nil, fmt.Errorf("invalid container name '%s'", name)
	}

	class := NewClass(g.pkg, name)
	class.SetExtends(ContainerType)
	class.AddImport(ContainerImport)
	class.Constructor = "New" + name

	ctor := &Method{
		Name:    class.Constructor,
		Params:  "params map[string]any",
		Results: "*" + name,
		Return:  "c",
	}
	ctor.AddStatement("bind", "c.Bind(params)")
	ctor.AddStatement(ParametersExportLabel, fmt.Sprintf("c.ExportParameters(%s)", Format(g.builder.Parameters())))
	if _, err := class.AddMethod(ctor); err != nil {
		return nil, err
	}

	factories := make(map[string]string)
	for _, def := range g.builder.Definitions() {
		method := uniqueName(factories, "createService"+camel(def.Name))
		factories[method] = def.Name
		ctor.AddStatement("register."+def.Name, fmt.Sprintf("c.Register(%q, c.%s)", def.Name, method))

		body, err := factoryBody(def)
		if err != nil {
			return nil, err
		}
		m := &Method{Name: method, Receiver: true, Results: "any", Return: "service"}
		m.AddBody(body...)
		if _, err := class.AddMethod(m); err != nil {
			return nil, err
		}
		class.AddImport(def.Imports...)
	}

	class.AddMember(&Member{Name: TagsMember, Type: "map[string]any", Value: g.builder.Tags()})
	return class, nil
}

// Dependencies returns the descriptors the generated code depends on.
func (g *Generator) Dependencies() []string {
	return g.builder.Dependencies()
}

func factoryBody(def *graph.Definition) ([]string, error) {
	var create string
	switch {
	case def.Factory != "":
		args := make([]string, 0, len(def.ResolvedArguments()))
		for _, a := range def.ResolvedArguments() {
			args = append(args, Format(a))
		}
		create = def.Factory + "(" + strings.Join(args, ", ") + ")"
	case strings.HasPrefix(def.Type, "*"):
		create = "&" + def.Type[1:] + "{}"
	case def.Type != "":
		create = def.Type + "{}"
	default:
		return nil, fmt.Errorf("service '%s': neither type nor factory is set", def.Name)
	}
	return append([]string{"service := " + create}, def.Setup...), nil
}

// Render emits the gofmt-ed source of a class.
func (g *Generator) Render(class *Class) (string, error) {
	var sb strings.Builder
	sb.WriteString("// Code generated by dicompiler. DO NOT EDIT.\n\n")
	fmt.Fprintf(&sb, "package %s\n\n", class.Package)

	if imports := class.Imports(); len(imports) > 0 {
		sb.WriteString("import (\n")
		for _, imp := range imports {
			fmt.Fprintf(&sb, "%q\n", imp)
		}
		sb.WriteString(")\n\n")
	}

	fmt.Fprintf(&sb, "type %s struct {\n", class.Name)
	if class.Extends != "" {
		sb.WriteString(class.Extends + "\n\n")
	}
	for _, m := range class.Members() {
		fmt.Fprintf(&sb, "%s %s\n", m.Name, m.Type)
	}
	sb.WriteString("}\n")

	for _, m := range class.Methods() {
		sb.WriteString("\n")
		if m.Receiver {
			fmt.Fprintf(&sb, "func (c *%s) %s(%s) %s {\n", class.Name, m.Name, m.Params, m.Results)
		} else {
			fmt.Fprintf(&sb, "func %s(%s) %s {\n", m.Name, m.Params, m.Results)
		}
		if m.Name == class.Constructor {
			fmt.Fprintf(&sb, "c := &%s{", class.Name)
			if members := class.Members(); len(members) > 0 {
				sb.WriteString("\n")
				for _, mem := range members {
					fmt.Fprintf(&sb, "%s: %s,\n", mem.Name, Format(mem.Value))
				}
			}
			sb.WriteString("}\n")
		}
		for _, s := range m.body {
			sb.WriteString(s.Code + "\n")
		}
		if m.Return != "" {
			sb.WriteString("return " + m.Return + "\n")
		}
		sb.WriteString("}\n")
	}

	src, err := format.Source([]byte(sb.String()))
	if err != nil {
		return "", fmt.Errorf("failed to format generated code: %w", err)
	}
	src, err = addLiteralImports(src)
	if err != nil {
		return "", fmt.Errorf("failed to format generated code: %w", err)
	}
	return string(src), nil
}

// literalPackages are the standard packages Format may reference, e.g.
// math.Inf for non-finite floats.
var literalPackages = []string{"math"}

// addLiteralImports imports the literalPackages the source references but
// does not import.
func addLiteralImports(src []byte) ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	added := false
	for _, pkg := range literalPackages {
		if references(file, pkg) && astutil.AddImport(fset, file, pkg) {
			added = true
		}
	}
	if !added {
		return src, nil
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// references reports whether file selects from an identifier named pkg.
func references(file *ast.File, pkg string) bool {
	found := false
	ast.Inspect(file, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok || found {
			return !found
		}
		if id, ok := sel.X.(*ast.Ident); ok && id.Name == pkg {
			found = true
		}
		return !found
	})
	return found
}

func camel(name string) string {
	var sb strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func uniqueName(taken map[string]string, name string) string {
	if _, ok := taken[name]; !ok {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s%d", name, i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
