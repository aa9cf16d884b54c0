package ingestion

import (
	"time"

	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/extraction"
	"github.com/poiesic/podmap/refinement"
)

// Monitor provides hooks to observe a pipeline run.
// SegmentExtracted is called from worker goroutines, so implementations must
// be safe for concurrent use.
type Monitor interface {
	StateChanged(episodeID core.ID, from, to State)
	Segmented(episodeID core.ID, segments int, duration time.Duration)
	SegmentExtracted(episodeID core.ID, index int, outcome extraction.Outcome, fragment core.GraphFragment)
	Refined(episodeID core.ID, outcome refinement.Outcome, fragment core.GraphFragment)
	Finish(analysis *core.EpisodeAnalysis)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) StateChanged(_ core.ID, _, _ State)                                            {}
func (n *noopMonitor) Segmented(_ core.ID, _ int, _ time.Duration)                                   {}
func (n *noopMonitor) SegmentExtracted(_ core.ID, _ int, _ extraction.Outcome, _ core.GraphFragment) {}
func (n *noopMonitor) Refined(_ core.ID, _ refinement.Outcome, _ core.GraphFragment)                 {}
func (n *noopMonitor) Finish(_ *core.EpisodeAnalysis)                                                {}

// monitors fans every hook out to each member in order.
type monitors []Monitor

var _ Monitor = (monitors)(nil)

func (ms monitors) StateChanged(episodeID core.ID, from, to State) {
	for _, m := range ms {
		m.StateChanged(episodeID, from, to)
	}
}

func (ms monitors) Segmented(episodeID core.ID, segments int, duration time.Duration) {
	for _, m := range ms {
		m.Segmented(episodeID, segments, duration)
	}
}

func (ms monitors) SegmentExtracted(episodeID core.ID, index int, outcome extraction.Outcome, fragment core.GraphFragment) {
	for _, m := range ms {
		m.SegmentExtracted(episodeID, index, outcome, fragment)
	}
}

func (ms monitors) Refined(episodeID core.ID, outcome refinement.Outcome, fragment core.GraphFragment) {
	for _, m := range ms {
		m.Refined(episodeID, outcome, fragment)
	}
}

func (ms monitors) Finish(analysis *core.EpisodeAnalysis) {
	for _, m := range ms {
		m.Finish(analysis)
	}
}
