package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport signals a network or connection failure.
	ErrTransport = errors.New("transport error")
	// ErrHTTPStatus signals a non-200 response from the search engine.
	ErrHTTPStatus = errors.New("unexpected http status")
	// ErrSearchEngine signals a 200 response carrying an embedded error object.
	ErrSearchEngine = errors.New("search engine error")
	// ErrMalformedResponse signals an unparsable body or a missing expected field.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrUnsupportedMethod signals an HTTP method other than GET or POST.
	ErrUnsupportedMethod = errors.New("unsupported http method")
	// ErrMissingRequestBody signals a POST without a request body.
	ErrMissingRequestBody = errors.New("missing request body")
	// ErrTimeParse signals a retention timestamp that does not match the wire format.
	ErrTimeParse = errors.New("invalid retention timestamp")
	// ErrInvalidFilter signals a filter entry that cannot be compiled.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidOption signals a query option whose value has the wrong type.
	ErrInvalidOption = errors.New("invalid option")

	// ErrNotIndexed signals a job whose indexed item count stayed at zero.
	ErrNotIndexed = errors.New("job not played")
	// ErrPlaybackStalled signals an indexed item count that stopped moving short of the job total.
	ErrPlaybackStalled = errors.New("playback stalled")
	// ErrUpdateRejected signals a non-zero responseHeader.status on an update request.
	ErrUpdateRejected = errors.New("update rejected")
	// ErrRetentionNotSatisfied signals an item whose visibility contradicts its retention period.
	ErrRetentionNotSatisfied = errors.New("retention not satisfied")
	// ErrNothingToCheck signals a retention query that matched no documents.
	ErrNothingToCheck = errors.New("query returned nothing to check")
)

// TransportError wraps a network failure. The underlying error is kept as is,
// so errors.As still reaches *url.Error and friends.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrTransport.Error(), e.Method, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// HTTPStatusError reports a non-200 response.
type HTTPStatusError struct {
	StatusCode int
	Reason     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("error in calling solr url: status %d, reason %s", e.StatusCode, e.Reason)
}

func (e *HTTPStatusError) Unwrap() error { return ErrHTTPStatus }

// SearchEngineError reports the error object embedded in a 200 response.
type SearchEngineError struct {
	Code int
	Msg  string
}

func (e *SearchEngineError) Error() string {
	return fmt.Sprintf("error in the solr url: reason %s", e.Msg)
}

func (e *SearchEngineError) Unwrap() error { return ErrSearchEngine }

// MalformedResponseError reports a body that is not the expected JSON envelope.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformedResponse.Error(), e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedResponse.Error(), e.Reason)
}

func (e *MalformedResponseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedResponse, e.Err}
	}
	return []error{ErrMalformedResponse}
}

// TimeParseError reports a retention timestamp in the wrong format.
type TimeParseError struct {
	Value string
	Err   error
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrTimeParse.Error(), e.Value, e.Err)
}

func (e *TimeParseError) Unwrap() []error { return []error{ErrTimeParse, e.Err} }
