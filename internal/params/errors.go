package params

import (
	"fmt"
	"strings"
)

// CyclicReferenceError is returned when parameters reference each other in
// a loop. Chain starts and ends with the same name.
type CyclicReferenceError struct {
	Chain []string
}

var _ error = CyclicReferenceError{}

func (e CyclicReferenceError) Error() string {
	return fmt.Sprintf("circular reference detected for parameters: %%%s%%", strings.Join(e.Chain, "%, %"))
}

// MissingParameterError is returned when a placeholder names an unknown
// parameter.
type MissingParameterError struct {
	Name string
}

var _ error = MissingParameterError{}

func (e MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter '%s'", e.Name)
}

// NonScalarError is returned when a structured value would be embedded in
// the middle of a string.
type NonScalarError struct {
	Name  string
	Value string
}

var _ error = NonScalarError{}

func (e NonScalarError) Error() string {
	return fmt.Sprintf("unable to concatenate non-scalar parameter '%s' into '%s'", e.Name, e.Value)
}
