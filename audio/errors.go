package audio

import "errors"

var (
	// ErrInvalidChunk is returned when the chunk duration is not positive.
	ErrInvalidChunk = errors.New("chunk duration must be positive")

	// ErrTranscoderRequired is returned when a nil transcoder is supplied.
	ErrTranscoderRequired = errors.New("transcoder required")
)
