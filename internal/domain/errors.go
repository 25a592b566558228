package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidParameter signals a query or request parameter that failed validation.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUpstreamUnavailable signals that the index or document store failed or timed out.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ParameterError wraps ErrInvalidParameter with the offending parameter.
type ParameterError struct {
	Param  string
	Reason string
}

func (e *ParameterError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidParameter.Error(), e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", ErrInvalidParameter.Error(), e.Param, e.Reason)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

// NewParameterError creates an invalid parameter error.
func NewParameterError(param, format string, args ...any) error {
	return &ParameterError{Param: param, Reason: fmt.Sprintf(format, args...)}
}
