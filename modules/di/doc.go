// Package di provides the housekeeping extension that shapes the generated
// container after compilation: its parent type, the parameters, tags and
// type wiring it exports, and what it does on initialization.
package di
