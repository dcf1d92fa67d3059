// Package app contains the core application logic. It turns configuration
// files into a generated container file, decoupled from any specific
// entrypoint like a CLI.
package app
