package ingestion

import "errors"

var (
	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrSegmenterRequired is returned when WithSegmenter is given nil.
	ErrSegmenterRequired = errors.New("segmenter required")

	// ErrMonitorRequired is returned when WithMonitor is given nil.
	ErrMonitorRequired = errors.New("monitor required")

	// ErrInvalidCallTimeout is returned when the per-call timeout is not positive.
	ErrInvalidCallTimeout = errors.New("call timeout must be positive")
)
