package pkgsearch

import "github.com/kailas-cloud/pkgsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound            = domain.ErrNotFound
	ErrInvalidParameter    = domain.ErrInvalidParameter
	ErrUpstreamUnavailable = domain.ErrUpstreamUnavailable
)

// ParameterError names the query parameter that failed validation.
// Use errors.As() to extract it.
type ParameterError = domain.ParameterError
