package container

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ zone string }

// appContainer mirrors what the generator emits for a container with two
// services and a dynamic parameter.
type appContainer struct {
	Container

	calls int
}

func newAppContainer(params map[string]any) *appContainer {
	c := &appContainer{}
	c.Bind(params)
	c.ExportParameters(map[string]any{
		"zone": c.DynamicParameter("zone", "UTC"),
		"addr": c.Concat(":", c.DynamicParameter("port", 8080)),
	})
	c.Register("clock", c.createServiceClock)
	c.Register("reporter", c.createServiceReporter)
	c.AssertParameter("parameters.zone", "string", c.DynamicParameter("zone", "UTC"))
	return c
}

func (c *appContainer) createServiceClock() any {
	c.calls++
	service := &clock{zone: c.Parameters()["zone"].(string)}
	return service
}

func (c *appContainer) createServiceReporter() any {
	service := []any{c.GetService("clock").(*clock)}
	return service
}

func TestContainer_DynamicParameters(t *testing.T) {
	t.Run("defaults apply when unbound", func(t *testing.T) {
		c := newAppContainer(nil)
		assert.Equal(t, map[string]any{"zone": "UTC", "addr": ":8080"}, c.Parameters())
	})

	t.Run("bound values win", func(t *testing.T) {
		c := newAppContainer(map[string]any{"zone": "Europe/Kyiv", "port": 9090})
		assert.Equal(t, map[string]any{"zone": "Europe/Kyiv", "addr": ":9090"}, c.Parameters())
	})

	t.Run("wrong type is rejected", func(t *testing.T) {
		assert.PanicsWithValue(t,
			ParameterTypeError{Path: "parameters.zone", Expected: "string", Actual: "int"},
			func() { newAppContainer(map[string]any{"zone": 3}) })
	})
}

func TestContainer_RequiredParameter(t *testing.T) {
	var c Container
	c.Bind(map[string]any{"token": "s3cret"})

	assert.Equal(t, "s3cret", c.RequiredParameter("token"))
	assert.PanicsWithError(t, "missing dynamic parameter 'dsn'", func() { c.RequiredParameter("dsn") })
}

func TestContainer_AssertParameter(t *testing.T) {
	tests := []struct {
		expected string
		value    any
		ok       bool
	}{
		{"string", "x", true},
		{"int", 1, true},
		{"float", 1, true},
		{"number", 1.5, true},
		{"bool", "true", false},
		{"list", []any{1}, true},
		{"map", map[string]any{}, true},
		{"int", 1.5, false},
		{"any", nil, true},
	}

	var c Container
	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			call := func() { c.AssertParameter("p", tc.expected, tc.value) }
			if tc.ok {
				assert.NotPanics(t, call)
			} else {
				assert.Panics(t, call)
			}
		})
	}
}

func TestContainer_Services(t *testing.T) {
	c := newAppContainer(nil)

	assert.True(t, c.HasService("clock"))
	assert.False(t, c.HasService("db"))
	assert.Equal(t, []string{"clock", "reporter"}, c.ServiceNames())
	assert.False(t, c.IsCreated("clock"))

	reporter := c.GetService("reporter").([]any)
	require.Len(t, reporter, 1)
	assert.Same(t, c.GetService("clock"), reporter[0])
	assert.Equal(t, 1, c.calls)
	assert.True(t, c.IsCreated("clock"))

	_, err := c.Get("db")
	assert.Equal(t, ServiceNotFoundError{Name: "db"}, err)
	assert.PanicsWithError(t, "service 'db' not found", func() { c.GetService("db") })
}

func TestContainer_CircularDependency(t *testing.T) {
	var c Container
	c.Register("a", func() any { return c.GetService("b") })
	c.Register("b", func() any { return c.GetService("a") })

	assert.PanicsWithValue(t, CircularDependencyError{Chain: []string{"a", "b", "a"}}, func() { c.GetService("a") })

	c.Register("b", func() any { return "fixed" })
	c.Register("a", func() any { return c.GetService("b") })
	assert.Equal(t, "fixed", c.GetService("a"))
}

func TestContainer_Diagnostics(t *testing.T) {
	c := newAppContainer(nil)
	assert.Nil(t, c.Diagnostics())

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.EnableDiagnostics("build-1", at.UnixNano())
	c.GetService("clock")

	d := c.Diagnostics()
	require.NotNil(t, d)
	assert.Equal(t, "build-1", d.BuildID)
	assert.True(t, at.Equal(d.CompiledAt))
	assert.Equal(t, []string{"clock", "reporter"}, d.Services)
	assert.Equal(t, []string{"clock"}, d.Created)
}
