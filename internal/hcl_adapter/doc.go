// Package hcl_adapter bridges HCL configuration files and the native values
// the compiler works with.
//
// Configuration fragments travel through the compiler as plain Go values
// (map[string]any, []any, string, bool, int, float64 and nil). HCL files are
// decoded into that shape by DecodeFile, and the schema layer converts the
// same values to and from cty.Value with a Converter when it needs the cty
// type system for validation.
package hcl_adapter
