package codegen

import (
	"math"
	"strings"
	"testing"

	"github.com/specialistvlad/dicompiler/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolvedBuilder(t *testing.T) *graph.Builder {
	t.Helper()
	b := graph.NewBuilder()
	require.NoError(t, b.SetParameters(map[string]any{"dsn": "postgres://localhost/app"}))
	require.NoError(t, b.LoadDefinitions(map[string]any{
		"db": map[string]any{
			"type":      "*sql.DB",
			"factory":   "sql.Open",
			"arguments": []any{"postgres", "postgres://localhost/app"},
			"imports":   []any{"database/sql"},
		},
		"repo.users": map[string]any{
			"type":      "*app.Users",
			"factory":   "app.NewUsers",
			"arguments": []any{"@db"},
			"setup":     []any{"service.Warm()"},
			"tags":      []any{"run"},
		},
		"clock": map[string]any{"type": "*clock.Real"},
	}))
	require.NoError(t, b.Resolve())
	require.NoError(t, b.Complete())
	return b
}

func TestGenerator_Generate(t *testing.T) {
	g := NewGenerator(newResolvedBuilder(t), "wiring")

	class, err := g.Generate("AppContainer")
	require.NoError(t, err)

	assert.Equal(t, ContainerType, class.Extends)
	assert.Equal(t, "NewAppContainer", class.Constructor)
	assert.Equal(t, []string{"database/sql", ContainerImport}, class.Imports())

	ctor := class.Method("NewAppContainer")
	require.NotNil(t, ctor)
	var labels []string
	for _, s := range ctor.Body() {
		labels = append(labels, s.Label)
	}
	assert.Equal(t, []string{"bind", ParametersExportLabel, "register.clock", "register.db", "register.repo.users"}, labels)

	assert.NotNil(t, class.Method("createServiceRepoUsers"))
	assert.Equal(t, map[string]map[string]any{"run": {"repo.users": true}}, class.Member(TagsMember).Value)

	_, err = g.Generate("not valid")
	assert.EqualError(t, err, "invalid container name 'not valid'")
}

func TestGenerator_Render(t *testing.T) {
	g := NewGenerator(newResolvedBuilder(t), "wiring")
	class, err := g.Generate("AppContainer")
	require.NoError(t, err)
	_, err = class.AddMethod(&Method{Name: InitializeMethod, Receiver: true})
	require.NoError(t, err)
	class.Method(InitializeMethod).AddBody(`c.GetService("repo.users")`)

	src, err := g.Render(class)
	require.NoError(t, err)

	for _, want := range []string{
		"// Code generated by dicompiler. DO NOT EDIT.\n",
		"package wiring\n",
		"\t\"database/sql\"\n",
		"type AppContainer struct {\n\tcontainer.Container\n\n\ttags map[string]any\n}\n",
		"func NewAppContainer(params map[string]any) *AppContainer {\n\tc := &AppContainer{\n",
		"\tc.Bind(params)\n",
		"\tc.ExportParameters(map[string]any{\n\t\t\"dsn\": \"postgres://localhost/app\",\n\t})\n",
		"\tc.Register(\"repo.users\", c.createServiceRepoUsers)\n",
		"\treturn c\n}\n",
		"func (c *AppContainer) createServiceDb() any {\n\tservice := sql.Open(\"postgres\", \"postgres://localhost/app\")\n\treturn service\n}\n",
		"\tservice := app.NewUsers(c.GetService(\"db\").(*sql.DB))\n\tservice.Warm()\n",
		"\tservice := &clock.Real{}\n",
		"func (c *AppContainer) Initialize() {\n\tc.GetService(\"repo.users\")\n}\n",
	} {
		assert.Contains(t, src, want)
	}
}

func TestGenerator_RenderInvalidCode(t *testing.T) {
	g := NewGenerator(graph.NewBuilder(), "wiring")
	class, err := g.Generate("C")
	require.NoError(t, err)
	class.Method("NewC").AddBody("this is not go")

	_, err = g.Render(class)
	assert.ErrorContains(t, err, "failed to format generated code")
}

func TestGenerator_RenderImportsMathForNonFiniteFloats(t *testing.T) {
	tests := []struct {
		name       string
		value      any
		preImport  bool
		wantImport bool
	}{
		{name: "infinities and nan", value: map[string]any{"max": math.Inf(1), "min": math.Inf(-1), "none": math.NaN()}, wantImport: true},
		{name: "already imported", value: math.Inf(1), preImport: true, wantImport: true},
		{name: "finite", value: 1.5},
		{name: "only in a string", value: "math.Inf(1)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGenerator(graph.NewBuilder(), "wiring")
			class, err := g.Generate("C")
			require.NoError(t, err)
			if tc.preImport {
				class.AddImport("math")
			}
			class.AddMember(&Member{Name: "limits", Type: "any", Value: tc.value})

			src, err := g.Render(class)

			require.NoError(t, err)
			if tc.wantImport {
				assert.Equal(t, 1, strings.Count(src, `"math"`))
			} else {
				assert.NotContains(t, src, `"math"`)
			}
			assert.True(t, strings.HasPrefix(src, "// Code generated by dicompiler. DO NOT EDIT."))
		})
	}
}
