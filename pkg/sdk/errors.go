package indexwatch

import "github.com/kailas-cloud/indexwatch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrTransport         = domain.ErrTransport
	ErrHTTPStatus        = domain.ErrHTTPStatus
	ErrSearchEngine      = domain.ErrSearchEngine
	ErrMalformedResponse = domain.ErrMalformedResponse
	ErrInvalidFilter     = domain.ErrInvalidFilter
	ErrInvalidOption     = domain.ErrInvalidOption
	ErrNotIndexed        = domain.ErrNotIndexed
	ErrPlaybackStalled   = domain.ErrPlaybackStalled
	ErrUpdateRejected    = domain.ErrUpdateRejected
)
