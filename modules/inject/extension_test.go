package inject_test

import (
	"context"
	"testing"

	"github.com/specialistvlad/dicompiler/internal/compiler"
	"github.com/specialistvlad/dicompiler/internal/testutil"
	"github.com/specialistvlad/dicompiler/modules/inject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompiler(t *testing.T, ext *inject.Extension, section map[string]any) *compiler.Compiler {
	t.Helper()
	c := compiler.New()
	require.NoError(t, c.AddExtension(inject.SectionName, ext))

	cfg := map[string]any{"services": map[string]any{
		"mailer": map[string]any{"type": "*mail.Mailer", "inject": true},
		"repo":   map[string]any{"type": "*db.Repo"},
		"clock":  "clock.New",
	}}
	if section != nil {
		cfg[inject.SectionName] = section
	}
	require.NoError(t, c.AddConfig(cfg))
	return c
}

func TestExtension_IsLate(t *testing.T) {
	c := newCompiler(t, inject.New(), nil)
	assert.Len(t, compiler.ExtensionsOf[compiler.Late](c), 1)
}

func TestExtension_InjectsFlaggedServices(t *testing.T) {
	ext := inject.New()
	c := newCompiler(t, ext, nil)

	src, err := c.Compile(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"mailer"}, ext.Injected())
	assert.Contains(t, src, "service := &mail.Mailer{}\n\tservice.Inject(c)\n")
	assert.NotContains(t, src, "service := &db.Repo{}\n\tservice.Inject(c)")
}

func TestExtension_InjectsMatchingTypes(t *testing.T) {
	ext := inject.New()
	c := newCompiler(t, ext, map[string]any{"method": "Wire", "types": []any{"db.*"}})

	src, err := c.Compile(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"mailer", "repo"}, ext.Injected())
	assert.Contains(t, src, "service := &db.Repo{}\n\tservice.Wire(c)\n")
	assert.Contains(t, src, "service := &mail.Mailer{}\n\tservice.Wire(c)\n")
	assert.Contains(t, src, "service := clock.New()\n\treturn service\n")
}

func TestExtension_MarksDefinitionsFromEarlierExtensions(t *testing.T) {
	// Arrange
	ctx, logs := testutil.LoggerContext()
	ext := inject.New()
	c := newCompiler(t, ext, map[string]any{"types": []any{"cache.*"}})

	contributor := testutil.NewRecording(&testutil.Recorder{})
	contributor.OnLoad = func(ctx context.Context, e *testutil.RecordingExtension) error {
		return e.Compiler().LoadDefinitionsFromConfig(ctx, map[string]any{
			"cache": map[string]any{"type": "*cache.Store"},
		})
	}
	require.NoError(t, c.AddExtension("contributor", contributor))

	// Act
	require.NoError(t, c.ProcessExtensions(ctx))

	// Assert
	def, ok := c.Builder().Definition("cache")
	require.True(t, ok)
	assert.True(t, def.Inject)
	assert.Contains(t, logs.String(), "msg=\"Injection configured.\" method=Inject marked=1")
}

func TestExtension_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		section  map[string]any
		wantPath []string
	}{
		{"method must be an identifier", map[string]any{"method": "1st"}, []string{"inject", "method"}},
		{"bad pattern", map[string]any{"types": []any{"db.*", "["}}, []string{"inject", "types", "1"}},
		{"unknown key", map[string]any{"methods": "Wire"}, []string{"inject", "methods"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newCompiler(t, inject.New(), tc.section)

			_, err := c.Compile(context.Background())

			var ierr compiler.InvalidConfigurationError
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, tc.wantPath, ierr.Path())
		})
	}
}
