package config

import "context"

// Document is one decoded configuration file.
type Document struct {
	File string
	Data map[string]any
}

// Loader reads configuration files. Implementations resolve includes and
// remember every file they read so the files can be recorded as build
// dependencies.
type Loader interface {
	// Load returns the documents making up a file, included documents first.
	Load(ctx context.Context, file string) ([]Document, error)

	// Dependencies lists every file read so far.
	Dependencies() []string
}
