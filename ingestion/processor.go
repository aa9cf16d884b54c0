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


package ingestion

import (
	"context"
	"io"

	"github.com/poiesic/podmap/audio"
	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/extraction"
	"github.com/poiesic/podmap/refinement"
)

// Splitter cuts source audio into segments. *audio.Segmenter satisfies it.
type Splitter interface {
	Split(ctx context.Context, r io.Reader) (*audio.SegmentSet, error)
}

// segmentProcessor turns one segment into a fragment.
type segmentProcessor interface {
	ExtractWithOutcome(ctx context.Context, seg extraction.Segment) (core.GraphFragment, extraction.Outcome)
}

// fragmentProcessor consolidates per-segment fragments.
type fragmentProcessor interface {
	Refine(ctx context.Context, fragments []core.GraphFragment) (core.GraphFragment, refinement.Outcome)
}

var (
	_ Splitter          = (*audio.Segmenter)(nil)
	_ segmentProcessor  = (*extraction.Extractor)(nil)
	_ fragmentProcessor = (*refinement.Refiner)(nil)
)
