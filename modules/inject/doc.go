// Package inject provides the late extension that calls an injection
// method on services after they are created.
package inject
