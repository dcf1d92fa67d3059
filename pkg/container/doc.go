// Package container is the runtime embedded by generated containers. It
// holds the bound runtime parameters and creates services lazily from the
// factories the generated code registers.
package container
