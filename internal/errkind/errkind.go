// Package errkind provides typed error classification for the scraper pipeline.
// Errors carry a Kind that determines how the orchestrator reacts: most kinds
// abort the run, while NoDataAvailable is recoverable and causes the current
// chunk to be skipped.
package errkind

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation decisions.
type Kind string

const (
	// InvalidDateFormat indicates a date string that is not YYYY-MM-DD.
	InvalidDateFormat Kind = "invalid_date_format"

	// InvalidDateRange indicates start >= end or a range outside the
	// supported retention window.
	InvalidDateRange Kind = "invalid_date_range"

	// InvalidArgument indicates a malformed input such as an unparseable
	// price-trends URL or a missing required parameter.
	InvalidArgument Kind = "invalid_argument"

	// AuthenticationFailed indicates a bad or expired session credential.
	AuthenticationFailed Kind = "authentication_failed"

	// RateLimited indicates the upstream rejected the request with HTTP 429.
	RateLimited Kind = "rate_limited"

	// TransportFailure indicates a network error or an HTTP 5xx response.
	TransportFailure Kind = "transport_failure"

	// NoDataAvailable indicates an empty result for one sub-range fetch.
	// This is the only recoverable kind: the orchestrator skips the chunk
	// and continues.
	NoDataAvailable Kind = "no_data_available"

	// UnexpectedResponseFormat indicates a structurally invalid upstream
	// response. Fatal, never retried.
	UnexpectedResponseFormat Kind = "unexpected_response_format"

	// NoPriceDataAvailable indicates the aggregate series is still empty
	// after all chunks were processed.
	NoPriceDataAvailable Kind = "no_price_data_available"

	// Unknown is the classification for errors that did not originate in
	// this module.
	Unknown Kind = "unknown"
)

// Error is a classified error with the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind when the target is also a classified error, so
// errors.Is(err, &Error{Kind: NoDataAvailable}) works regardless of the
// wrapped message.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a classified error from a message.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Err: errors.New(msg)}
}

// Newf creates a classified error from a format string.
func Newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies an existing error. A nil error stays nil. An error that is
// already classified keeps its original kind.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return &Error{Kind: ce.Kind, Op: op, Err: err}
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind from an error, or Unknown for unclassified errors.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return Unknown
}

// IsKind reports whether the error carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsRecoverable reports whether the orchestrator may continue past this error.
// Only a per-chunk empty result qualifies.
func IsRecoverable(err error) bool {
	return IsKind(err, NoDataAvailable)
}
