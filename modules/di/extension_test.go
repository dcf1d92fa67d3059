package di_test

import (
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/dicompiler/internal/codegen"
	"github.com/specialistvlad/dicompiler/internal/compiler"
	"github.com/specialistvlad/dicompiler/internal/testutil"
	"github.com/specialistvlad/dicompiler/modules/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func services(extra map[string]any) map[string]any {
	out := map[string]any{
		"cmd": map[string]any{"type": "*cli.Command", "tags": []any{"cli"}},
		"job": map[string]any{"type": "*jobs.Worker", "tags": map[string]any{"queue": "default"}},
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

type result struct {
	src     string
	members map[string]any
	init    []string
	logs    string
}

// compile runs a full compile and captures the class as the last
// extension sees it.
func compile(t *testing.T, ext *di.Extension, section map[string]any, extra ...map[string]any) (result, error) {
	t.Helper()
	ctx, logs := testutil.LoggerContext()

	var res result
	inspector := testutil.NewRecording(&testutil.Recorder{})
	inspector.OnAfterCompile = func(_ context.Context, _ *testutil.RecordingExtension, class *codegen.Class) error {
		res.members = make(map[string]any)
		for _, m := range class.Members() {
			res.members[m.Name] = m.Value
		}
		for _, s := range class.Method(codegen.InitializeMethod).Body() {
			res.init = append(res.init, s.Code)
		}
		return nil
	}

	c := compiler.New()
	require.NoError(t, c.AddExtension(di.SectionName, ext))
	require.NoError(t, c.AddExtension("inspector", inspector))
	var more map[string]any
	if len(extra) > 0 {
		more = extra[0]
	}
	cfg := map[string]any{"services": services(more)}
	if section != nil {
		cfg[di.SectionName] = section
	}
	require.NoError(t, c.AddConfig(cfg))

	src, err := c.Compile(ctx)
	res.src = src
	res.logs = logs.String()
	return res, err
}

func TestExtension_Defaults(t *testing.T) {
	ext := di.New(false)

	res, err := compile(t, ext, nil)

	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]any{
		"cli":   {"cmd": true},
		"queue": {"job": "default"},
	}, res.members[codegen.TagsMember])
	assert.Equal(t, map[string][]string{
		"*cli.Command": {"cmd"},
		"*jobs.Worker": {"job"},
	}, res.members[di.WiringMember])
	assert.Empty(t, res.init)
	assert.Empty(t, ext.Warnings())
	assert.Contains(t, res.src, "c.ExportParameters(")
	assert.Contains(t, res.src, "container.Container")

	settings := ext.Settings()
	assert.True(t, settings.Debugger)
	assert.Empty(t, settings.Excluded)
	assert.Nil(t, settings.ParentType)
	assert.True(t, settings.Export.Parameters)
}

func TestExtension_TagsExport(t *testing.T) {
	tests := []struct {
		name     string
		tags     any
		exported []string
		want     any
	}{
		{
			name: "disabled removes the member",
			tags: false,
		},
		{
			name: "empty list removes the member",
			tags: []any{},
		},
		{
			name: "allow-list keeps named tags",
			tags: []any{"cli"},
			want: map[string]map[string]any{"cli": {"cmd": true}},
		},
		{
			name:     "exported tags are always kept",
			tags:     []any{"cli"},
			exported: []string{"queue"},
			want: map[string]map[string]any{
				"cli":   {"cmd": true},
				"queue": {"job": "default"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			ext := di.New(false)
			ext.ExportTags(tc.exported...)

			// Act
			res, err := compile(t, ext, map[string]any{"export": map[string]any{"tags": tc.tags}})

			// Assert
			require.NoError(t, err)
			tags, ok := res.members[codegen.TagsMember]
			if tc.want == nil {
				assert.False(t, ok)
				assert.NotContains(t, res.src, "tags")
				return
			}
			require.True(t, ok)
			assert.Equal(t, tc.want, tags)
		})
	}
}

func TestExtension_TypesExport(t *testing.T) {
	t.Run("disabled keeps only exported types", func(t *testing.T) {
		ext := di.New(false)
		ext.ExportTypes("*jobs.Worker")

		res, err := compile(t, ext, map[string]any{"export": map[string]any{"types": false}})

		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"*jobs.Worker": {"job"}}, res.members[di.WiringMember])
	})

	t.Run("allow-list", func(t *testing.T) {
		res, err := compile(t, di.New(false), map[string]any{"export": map[string]any{"types": []any{"*cli.Command"}}})

		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"*cli.Command": {"cmd"}}, res.members[di.WiringMember])
	})

	t.Run("excluded types are never wired", func(t *testing.T) {
		ext := di.New(false)

		res, err := compile(t, ext, map[string]any{"excluded": []any{"jobs.*"}})

		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"*cli.Command": {"cmd"}}, res.members[di.WiringMember])
		assert.Equal(t, []string{"jobs.*"}, ext.Compiler().Builder().ExcludedTypes())
	})
}

func TestExtension_ParametersExport(t *testing.T) {
	res, err := compile(t, di.New(false), map[string]any{"export": map[string]any{"parameters": false}})

	require.NoError(t, err)
	assert.NotContains(t, res.src, "c.ExportParameters(")
	assert.Contains(t, res.src, "c.Bind(params)")
}

func TestExtension_ParentType(t *testing.T) {
	res, err := compile(t, di.New(false), map[string]any{"parentType": "github.com/acme/app/base.Container"})

	require.NoError(t, err)
	assert.Contains(t, res.src, "\"github.com/acme/app/base\"")
	assert.Contains(t, res.src, "\tbase.Container\n")
	assert.NotContains(t, res.src, codegen.ContainerImport)
}

func TestExtension_RunTag(t *testing.T) {
	ext := di.New(false)
	res, err := compile(t, ext, nil, map[string]any{
		"boot": map[string]any{"type": "*boot.Hook", "tags": map[string]any{"run": true}},
		"idle": map[string]any{"type": "*boot.Idle", "tags": map[string]any{"run": false}},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{`c.GetService("boot")`}, res.init)
	assert.Equal(t, []string{"tag 'run' used in service 'boot' definition is deprecated"}, ext.Warnings())
	assert.Contains(t, res.logs, "level=WARN msg=\"Deprecated tag used.\"")
	assert.Contains(t, res.src, "func (c *Container) Initialize() {\n\tc.GetService(\"boot\")\n}")
}

func TestExtension_Diagnostics(t *testing.T) {
	at := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		debug    bool
		section  map[string]any
		wantInit []string
	}{
		{
			name:     "debug mode",
			debug:    true,
			wantInit: []string{`c.EnableDiagnostics("build-1", 1792065600000000000)`},
		},
		{
			name:    "debugger disabled",
			debug:   true,
			section: map[string]any{"debugger": false},
		},
		{
			name: "production mode",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ext := di.New(tc.debug, di.WithBuildID("build-1"), di.WithCompiledAt(at))

			res, err := compile(t, ext, tc.section)

			require.NoError(t, err)
			assert.Equal(t, tc.wantInit, res.init)
			assert.Equal(t, at, ext.CompiledAt())
			assert.Equal(t, "build-1", ext.BuildID())
		})
	}
}

func TestExtension_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		section  map[string]any
		wantPath []string
	}{
		{
			name:     "tags must be bool or list",
			section:  map[string]any{"export": map[string]any{"tags": 42}},
			wantPath: []string{"di", "export", "tags"},
		},
		{
			name:     "types must list names",
			section:  map[string]any{"export": map[string]any{"types": []any{"a", 1}}},
			wantPath: []string{"di", "export", "types"},
		},
		{
			name:     "unknown key",
			section:  map[string]any{"debuger": true},
			wantPath: []string{"di", "debuger"},
		},
		{
			name:     "bad pattern",
			section:  map[string]any{"excluded": []any{"["}},
			wantPath: []string{"di"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compile(t, di.New(false), tc.section)

			var ierr compiler.InvalidConfigurationError
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, "di", ierr.Section)
			assert.Equal(t, tc.wantPath, ierr.Path())
		})
	}
}

func TestExtension_RecordsItsDescriptor(t *testing.T) {
	c := compiler.New()
	require.NoError(t, c.AddExtension(di.SectionName, di.New(false)))

	_, err := c.Compile(context.Background())

	require.NoError(t, err)
	assert.Contains(t, c.ExportDependencies(), "module:github.com/specialistvlad/dicompiler/modules/di")
}
