package domain

import "errors"

var (
	// ErrInvalidInput is returned by the engine for out-of-domain arguments,
	// such as an hour outside 0..23.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidRequest marks a missing or malformed request parameter.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrMissingConfiguration marks a required credential that was not set.
	ErrMissingConfiguration = errors.New("missing configuration")

	// ErrUpstreamFailure wraps non-success or malformed third-party responses.
	ErrUpstreamFailure = errors.New("upstream failure")

	// ErrSuperseded is returned when a newer request for the same key replaced
	// an in-flight one.
	ErrSuperseded = errors.New("superseded by a newer request")
)
