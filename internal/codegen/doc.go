// Package codegen builds the generated container: a mutable Class model,
// Go literal formatting for configuration values, and rendering to
// gofmt-ed source.
package codegen
