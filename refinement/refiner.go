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

package refinement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/podmap/ai"
	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/extraction"
)

// DefaultCallTimeout bounds the refinement call.
const DefaultCallTimeout = 5 * time.Minute

// ErrBackendRequired is returned when a nil backend is supplied.
var ErrBackendRequired = errors.New("model backend required")

// Outcome classifies how a refinement ended.
type Outcome string

const (
	// OutcomeRefined means the model's consolidated fragment was used.
	OutcomeRefined Outcome = "refined"

	// OutcomeSkipped means the union was empty and no call was made.
	OutcomeSkipped Outcome = "skipped"

	// OutcomeGenerateFailed means the call failed or timed out; the union was used.
	OutcomeGenerateFailed Outcome = "generate_failed"

	// OutcomeParseFailed means the response was unusable; the union was used.
	OutcomeParseFailed Outcome = "parse_failed"

	// OutcomeEmptyResponse means the model returned an empty fragment for a
	// non-empty union; the union was used.
	OutcomeEmptyResponse Outcome = "empty_response"

	// OutcomePanicked means refinement panicked; the union was used.
	OutcomePanicked Outcome = "panicked"
)

// FellBack reports whether the union was returned in place of a refined fragment.
func (o Outcome) FellBack() bool {
	return o != OutcomeRefined && o != OutcomeSkipped
}

// Refiner consolidates per-segment fragments with one model call.
type Refiner struct {
	backend ai.Backend
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Refiner.
type Option func(*Refiner)

// WithCallTimeout bounds the refinement call. Non-positive values are ignored.
func WithCallTimeout(d time.Duration) Option {
	return func(r *Refiner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Refiner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRefiner creates a Refiner over backend.
func NewRefiner(backend ai.Backend, opts ...Option) (*Refiner, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}

	r := &Refiner{
		backend: backend,
		timeout: DefaultCallTimeout,
		logger:  slog.Default().With("component", "refiner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Refine merges fragments into one canonical fragment.
//
// The union of fragments is computed first. If the model call fails, times
// out, returns something unparseable or returns nothing at all, that union is
// returned. Otherwise the model's output is used as-is.
func (r *Refiner) Refine(ctx context.Context, fragments []core.GraphFragment) (result core.GraphFragment, outcome Outcome) {
	union := Union(fragments...)
	if union.IsEmpty() {
		r.logger.Debug("nothing to refine")
		return union, OutcomeSkipped
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("refinement panicked", "panic", fmt.Sprint(p))
			result, outcome = union, OutcomePanicked
		}
	}()

	prompt, err := BuildPrompt(union)
	if err != nil {
		r.logger.Warn("failed to serialize union", "err", err)
		return union, OutcomeGenerateFailed
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	response, err := r.backend.Generate(callCtx, ai.TextPart(prompt))
	if err != nil {
		r.logger.Warn("refinement call failed, using union", "err", err, "elapsed", time.Since(start))
		return union, OutcomeGenerateFailed
	}

	refined, err := extraction.ParseResponse(response)
	if err != nil {
		r.logger.Warn("error parsing refinement response, using union", "err", err, "response", response)
		return union, OutcomeParseFailed
	}
	if refined.IsEmpty() {
		r.logger.Warn("refinement returned an empty fragment, using union")
		return union, OutcomeEmptyResponse
	}

	before, _, _ := union.Counts()
	after, _, _ := refined.Counts()
	r.logger.Debug("refined fragments",
		"fragments", len(fragments),
		"entitiesBefore", before,
		"entitiesAfter", after,
		"elapsed", time.Since(start))
	return refined, OutcomeRefined
}
