// Package schema validates and normalizes configuration sections.
//
// A Schema works on cty values. The Processor merges raw fragments, converts
// them to cty, normalizes them and converts the result back to native Go
// values. Values only known when the container runs (anything implementing
// Deferred) travel through validation as unknown values and are restored
// afterwards.
package schema
