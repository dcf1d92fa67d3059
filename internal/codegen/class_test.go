package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClass_Members(t *testing.T) {
	c := NewClass("app", "Container")
	c.AddMember(&Member{Name: "tags", Type: "map[string]any", Value: map[string]any{}})
	c.AddMember(&Member{Name: "wiring", Type: "map[string]any"})
	c.AddMember(&Member{Name: "tags", Type: "map[string]any", Value: map[string]any{"cli": true}})

	require.Len(t, c.Members(), 2)
	assert.Equal(t, map[string]any{"cli": true}, c.Member("tags").Value)

	assert.True(t, c.RemoveMember("tags"))
	assert.False(t, c.RemoveMember("tags"))
	assert.Nil(t, c.Member("tags"))
}

func TestClass_Methods(t *testing.T) {
	c := NewClass("app", "Container")
	_, err := c.AddMethod(&Method{Name: "Initialize", Receiver: true})
	require.NoError(t, err)

	_, err = c.AddMethod(&Method{Name: "Initialize"})
	assert.EqualError(t, err, "method 'Initialize' already exists in 'Container'")

	assert.NotNil(t, c.Method("Initialize"))
	assert.True(t, c.RemoveMethod("Initialize"))
	assert.Nil(t, c.Method("Initialize"))
	assert.Empty(t, c.Methods())
}

func TestMethod_Statements(t *testing.T) {
	m := &Method{Name: "NewContainer"}
	m.AddStatement("bind", "c.Bind(params)").
		AddStatement("parameters.export", "c.ExportParameters(nil)").
		AddBody("c.Register(\"a\", nil)")

	assert.True(t, m.RemoveStatement("parameters.export"))
	assert.False(t, m.RemoveStatement("parameters.export"))
	assert.False(t, m.RemoveStatement(""))

	assert.Equal(t, []Statement{
		{Label: "bind", Code: "c.Bind(params)"},
		{Code: "c.Register(\"a\", nil)"},
	}, m.Body())
}

func TestClass_Imports(t *testing.T) {
	c := NewClass("app", "Container")
	c.AddImport("b/pkg", "a/pkg", "", "b/pkg")
	assert.Equal(t, []string{"a/pkg", "b/pkg"}, c.Imports())

	c.RemoveImport("a/pkg")
	assert.Equal(t, []string{"b/pkg"}, c.Imports())

	c.SetExtends("base.Container")
	assert.Equal(t, "base.Container", c.Extends)
}
