package schema

import (
	"errors"
	"strings"

	"github.com/specialistvlad/dicompiler/internal/hcl_adapter"
	"github.com/zclconf/go-cty/cty"
)

// ValidationError reports a value that does not fit its schema.
type ValidationError struct {
	Path    []string
	Message string
}

var _ error = ValidationError{}

func (e ValidationError) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	return "'" + strings.Join(e.Path, " › ") + "' " + e.Message
}

// WithPrefix returns a copy of the error located under prefix.
func (e ValidationError) WithPrefix(prefix []string) ValidationError {
	path := make([]string, 0, len(prefix)+len(e.Path))
	path = append(path, prefix...)
	path = append(path, e.Path...)
	return ValidationError{Path: path, Message: e.Message}
}

func newError(path cty.Path, msg string) ValidationError {
	return ValidationError{Path: hcl_adapter.PathSegments(path), Message: msg}
}

// wrapPathError converts errors from cty conversion, whose paths are
// relative to the converted value, into a ValidationError.
func wrapPathError(base cty.Path, err error) error {
	var verr ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	var perr cty.PathError
	if errors.As(err, &perr) {
		full := make(cty.Path, 0, len(base)+len(perr.Path))
		full = append(full, base...)
		full = append(full, perr.Path...)
		return newError(full, perr.Error())
	}
	return newError(base, err.Error())
}
