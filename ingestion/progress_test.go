package ingestion

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/extraction"
	"github.com/poiesic/podmap/refinement"
	"github.com/stretchr/testify/assert"
)

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)
	id := core.ID(1)

	p.Segmented(id, 4, 20*time.Minute)
	assert.Contains(t, buf.String(), "Split 20m0s of audio into 4 segments")
	assert.Contains(t, buf.String(), "Extracting: 0/4 (0.0%)")

	p.SegmentExtracted(id, 1, extraction.OutcomeOK, core.EmptyFragment())
	assert.Contains(t, buf.String(), "Extracting: 1/4 (25.0%) - 0 failed")

	p.SegmentExtracted(id, 0, extraction.OutcomeUploadFailed, core.EmptyFragment())
	assert.Contains(t, buf.String(), "Extracting: 2/4 (50.0%) - 1 failed")

	p.Refined(id, refinement.OutcomeRefined, core.GraphFragment{Entities: []core.Entity{{Name: "Alice"}}})
	assert.Contains(t, buf.String(), "Refinement refined: 1 entities, 0 relationships, 0 details")

	p.Finish(&core.EpisodeAnalysis{Report: core.RunReport{Segments: 4, EmptyFragments: 2, FailedExtractions: 1, Duration: time.Second}})
	assert.Contains(t, buf.String(), "Done in 1s (4 segments, 2 empty, 1 failed)")
}

func TestProgressCapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)

	p.Segmented(core.ID(1), 1, 5*time.Minute)
	p.SegmentExtracted(core.ID(1), 0, extraction.OutcomeOK, core.EmptyFragment())
	p.SegmentExtracted(core.ID(1), 0, extraction.OutcomeOK, core.EmptyFragment())

	assert.NotContains(t, buf.String(), "2/1")
}

func TestProgressIgnoresExtractionBeforeSegmenting(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)

	p.SegmentExtracted(core.ID(1), 0, extraction.OutcomeOK, core.EmptyFragment())
	assert.Empty(t, buf.String())
}

func TestProgressReportsFailure(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)

	p.StateChanged(core.ID(1), StateIdle, StateSegmenting)
	assert.Empty(t, buf.String())

	p.StateChanged(core.ID(1), StateSegmenting, StateFailed)
	assert.True(t, strings.HasPrefix(buf.String(), "Segmentation failed"))
}
