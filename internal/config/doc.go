// Package config holds raw configuration before validation: the Store that
// accumulates fragments per section along with their provenance, and the
// Loader contract for file sources.
//
// Fragments are kept in a canonical native form (map[string]any, []any,
// string, bool, int, float64, nil) so later stages only deal with one shape.
package config
