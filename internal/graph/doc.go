// Package graph holds service definitions and wires them together.
//
// A Builder collects definitions from the `services` section and from
// extensions, resolves `@name` and `@Type` references between them, and
// checks the result for reference cycles before code generation. It also
// owns the finalized parameter mapping, which cannot change once set.
package graph
