package container

import (
	"fmt"
	"strings"
)

// MissingParameterError is raised when a required runtime parameter was
// not bound.
type MissingParameterError struct {
	Key string
}

var _ error = MissingParameterError{}

func (e MissingParameterError) Error() string {
	return fmt.Sprintf("missing dynamic parameter '%s'", e.Key)
}

// ParameterTypeError is raised when a runtime parameter has a type the
// configuration does not accept.
type ParameterTypeError struct {
	Path     string
	Expected string
	Actual   string
}

var _ error = ParameterTypeError{}

func (e ParameterTypeError) Error() string {
	return fmt.Sprintf("the parameter '%s' expects to be %s, %s given", e.Path, e.Expected, e.Actual)
}

// ServiceNotFoundError is returned for a service that was never registered.
type ServiceNotFoundError struct {
	Name string
}

var _ error = ServiceNotFoundError{}

func (e ServiceNotFoundError) Error() string {
	return fmt.Sprintf("service '%s' not found", e.Name)
}

// CircularDependencyError is returned when creating a service requires
// the service itself.
type CircularDependencyError struct {
	Chain []string
}

var _ error = CircularDependencyError{}

func (e CircularDependencyError) Error() string {
	return fmt.Sprintf("circular reference detected for services: %s", strings.Join(e.Chain, " -> "))
}
