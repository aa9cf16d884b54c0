package extraction

import "errors"

var (
	// ErrBackendRequired is returned when a nil backend is supplied.
	ErrBackendRequired = errors.New("model backend required")

	// ErrNotAnObject is returned when a response does not start with a JSON object.
	ErrNotAnObject = errors.New("response is not a JSON object")

	// ErrTrailingData is returned when a response has content after the JSON object.
	ErrTrailingData = errors.New("unexpected data after JSON object")

	// ErrMalformedResponse wraps JSON syntax and type errors.
	ErrMalformedResponse = errors.New("malformed model response")
)
