package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParametersFrozen is returned when parameters are set twice.
	ErrParametersFrozen = errors.New("parameters are already finalized")
	// ErrNotResolved is returned by Complete before Resolve.
	ErrNotResolved = errors.New("definitions must be resolved before completion")
)

// ServiceError reports a problem with one definition.
type ServiceError struct {
	Service string
	Message string
}

var _ error = ServiceError{}

func (e ServiceError) Error() string {
	return fmt.Sprintf("service '%s': %s", e.Service, e.Message)
}

// CircularReferenceError reports services referring to each other in a
// loop. Chain follows the references and ends where it started.
type CircularReferenceError struct {
	Chain []string
}

var _ error = CircularReferenceError{}

func (e CircularReferenceError) Error() string {
	return fmt.Sprintf("circular reference detected for services: %s", strings.Join(e.Chain, " -> "))
}
