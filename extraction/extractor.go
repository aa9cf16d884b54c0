// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/podmap/ai"
	"github.com/poiesic/podmap/core"
)

const (
	// DefaultCallTimeout bounds one upload+generate exchange.
	DefaultCallTimeout = 5 * time.Minute

	// AudioMIMEType is the MIME type segments are uploaded with.
	AudioMIMEType = "audio/mpeg"

	releaseTimeout = 30 * time.Second
)

// Outcome classifies how an extraction ended.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeUploadFailed   Outcome = "upload_failed"
	OutcomeGenerateFailed Outcome = "generate_failed"
	OutcomeParseFailed    Outcome = "parse_failed"
	OutcomePanicked       Outcome = "panicked"
)

// Outcomes lists every Outcome value.
var Outcomes = []Outcome{
	OutcomeOK,
	OutcomeUploadFailed,
	OutcomeGenerateFailed,
	OutcomeParseFailed,
	OutcomePanicked,
}

// Failed reports whether the outcome is anything other than OutcomeOK.
func (o Outcome) Failed() bool {
	return o != OutcomeOK
}

// Segment is the audio an Extractor reads. *audio.Segment satisfies it.
type Segment interface {
	Bytes() ([]byte, error)
	DisplayName() string
}

// Extractor runs one model call per segment.
// It is safe for concurrent use if its backend is.
type Extractor struct {
	backend ai.Backend
	timeout time.Duration
	prompt  string
	logger  *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithCallTimeout bounds each upload+generate exchange.
// Non-positive values are ignored.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithPrompt replaces the instruction text sent before the audio.
func WithPrompt(prompt string) Option {
	return func(e *Extractor) {
		e.prompt = prompt
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor creates an Extractor over backend.
func NewExtractor(backend ai.Backend, opts ...Option) (*Extractor, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}

	e := &Extractor{
		backend: backend,
		timeout: DefaultCallTimeout,
		prompt:  BuildPrompt(),
		logger:  slog.Default().With("component", "extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract returns the fragment for seg, or an empty fragment on any failure.
func (e *Extractor) Extract(ctx context.Context, seg Segment) core.GraphFragment {
	fragment, _ := e.ExtractWithOutcome(ctx, seg)
	return fragment
}

// ExtractWithOutcome is Extract plus the reason an empty fragment was returned.
func (e *Extractor) ExtractWithOutcome(ctx context.Context, seg Segment) (fragment core.GraphFragment, outcome Outcome) {
	name := seg.DisplayName()
	logger := e.logger.With("segment", name)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("extraction panicked", "panic", fmt.Sprint(r))
			fragment, outcome = core.EmptyFragment(), OutcomePanicked
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	data, err := seg.Bytes()
	if err != nil {
		logger.Warn("failed to read segment", "err", err)
		return core.EmptyFragment(), OutcomeUploadFailed
	}

	handle, err := e.backend.Upload(callCtx, data, AudioMIMEType, name)
	if err != nil {
		logger.Warn("failed to upload segment", "err", err)
		return core.EmptyFragment(), OutcomeUploadFailed
	}
	defer e.release(ctx, handle, logger)

	start := time.Now()
	response, err := e.backend.Generate(callCtx, ai.TextPart(e.prompt), ai.FilePart(handle))
	if err != nil {
		logger.Warn("failed to generate content", "err", err, "elapsed", time.Since(start))
		return core.EmptyFragment(), OutcomeGenerateFailed
	}

	fragment, err = ParseResponse(response)
	if err != nil {
		logger.Warn("error parsing extraction response", "err", err, "response", response)
		return core.EmptyFragment(), OutcomeParseFailed
	}

	entities, relationships, details := fragment.Counts()
	logger.Debug("extracted fragment",
		"entities", entities,
		"relationships", relationships,
		"details", details,
		"elapsed", time.Since(start))
	return fragment, OutcomeOK
}

// release frees the uploaded segment even when the call context has expired.
func (e *Extractor) release(ctx context.Context, h ai.Handle, logger *slog.Logger) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := e.backend.Release(releaseCtx, h); err != nil {
		logger.Warn("failed to release upload", "handle", h.Name, "err", err)
	}
}
