package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/dicompiler/internal/schema"
)

// NameCollisionError is returned when an extension name is taken,
// compared case-insensitively, or reserved.
type NameCollisionError struct {
	Name string
	Err  error
}

var _ error = NameCollisionError{}

func (e NameCollisionError) Error() string {
	return fmt.Sprintf("extension %s", e.Err)
}

func (e NameCollisionError) Unwrap() error {
	return e.Err
}

// InvalidConfigurationError is returned when a section fails validation or
// parameter expansion.
type InvalidConfigurationError struct {
	Section string
	Err     error
}

var _ error = InvalidConfigurationError{}

func (e InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration in section '%s': %s", e.Section, e.Err)
}

func (e InvalidConfigurationError) Unwrap() error {
	return e.Err
}

// Path returns the location of the failing item, starting with the
// section name, when validation reported one.
func (e InvalidConfigurationError) Path() []string {
	var verr schema.ValidationError
	if errors.As(e.Err, &verr) {
		return verr.Path
	}
	return []string{e.Section}
}

// UnknownConfigurationSectionError is returned for a section no extension
// owns.
type UnknownConfigurationSectionError struct {
	Section    string
	Suggestion string
}

var _ error = UnknownConfigurationSectionError{}

func (e UnknownConfigurationSectionError) Error() string {
	msg := fmt.Sprintf("found section '%s' in configuration, but corresponding extension is missing", e.Section)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(", did you mean '%s'?", e.Suggestion)
	}
	return msg
}

// ExtensionsAddedDuringCompileError is returned when an extension other
// than a meta extension registers extensions while loading its
// configuration.
type ExtensionsAddedDuringCompileError struct {
	Names []string
}

var _ error = ExtensionsAddedDuringCompileError{}

func (e ExtensionsAddedDuringCompileError) Error() string {
	return fmt.Sprintf("extensions '%s' were added while container was being compiled", strings.Join(e.Names, "', '"))
}
