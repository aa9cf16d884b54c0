package ai

import "context"

// Handle refers to content previously uploaded to a Backend.
// Handles are only meaningful to the Backend that issued them.
type Handle struct {
	// Name is the backend-assigned identifier.
	Name string

	// MIMEType of the uploaded content, e.g. "audio/mpeg".
	MIMEType string

	// DisplayName is the caller-supplied label, used in logs.
	DisplayName string
}

// Part is one element of a generation request: either text or a reference
// to uploaded content. Exactly one field is set.
type Part struct {
	Text string
	File *Handle
}

// TextPart returns a Part holding text.
func TextPart(text string) Part {
	return Part{Text: text}
}

// FilePart returns a Part referencing uploaded content.
func FilePart(h Handle) Part {
	return Part{File: &h}
}

// IsFile reports whether the part references uploaded content.
func (p Part) IsFile() bool {
	return p.File != nil
}

// Backend is a generative model that accepts uploaded media.
// Implementations must be thread-safe for concurrent use.
type Backend interface {
	// Upload stores data with the backend so it can be referenced by later
	// Generate calls. The returned Handle stays valid until Release.
	Upload(ctx context.Context, data []byte, mimeType, displayName string) (Handle, error)

	// Generate sends the parts, in order, as a single request and returns the
	// model's text response. Formatting of the response is not guaranteed.
	Generate(ctx context.Context, parts ...Part) (string, error)

	// Release discards uploaded content. Releasing an unknown handle is not
	// an error.
	Release(ctx context.Context, h Handle) error
}

// Provider aggregates the model backends used by the pipeline.
// Extraction and refinement may be served by different models.
type Provider interface {
	// Extraction returns the backend used for per-segment extraction.
	Extraction() Backend

	// Refinement returns the backend used to consolidate fragments.
	Refinement() Backend

	// Close releases resources held by the provider and its backends.
	// After Close is called, the provider and its backends should not be used.
	Close() error
}
