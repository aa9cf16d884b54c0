package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/extraction"
	"github.com/poiesic/podmap/refinement"
)

// Progress is a Monitor that writes extraction progress to a terminal.
type Progress struct {
	writer    io.Writer
	total     int
	current   int
	failed    int
	startTime time.Time
	started   bool
	mu        sync.Mutex
}

var _ Monitor = (*Progress)(nil)

// NewProgress creates a Progress writing to writer (typically os.Stderr).
func NewProgress(writer io.Writer) *Progress {
	return &Progress{writer: writer}
}

func (p *Progress) StateChanged(_ core.ID, _, to State) {
	if to != StateFailed {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.writer, "Segmentation failed")
}

// Segmented starts tracking a run of segments.
func (p *Progress) Segmented(_ core.ID, segments int, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = segments
	p.current = 0
	p.failed = 0
	p.startTime = time.Now()
	p.started = true

	fmt.Fprintf(p.writer, "Split %s of audio into %d segments\n", duration.Round(time.Second), segments)
	p.report()
}

func (p *Progress) SegmentExtracted(_ core.ID, _ int, outcome extraction.Outcome, _ core.GraphFragment) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	if p.current < p.total {
		p.current++
	}
	if outcome.Failed() {
		p.failed++
	}
	p.report()
}

func (p *Progress) Refined(_ core.ID, outcome refinement.Outcome, fragment core.GraphFragment) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		fmt.Fprintln(p.writer)
	}
	entities, relationships, details := fragment.Counts()
	fmt.Fprintf(p.writer, "Refinement %s: %d entities, %d relationships, %d details\n",
		outcome, entities, relationships, details)
}

func (p *Progress) Finish(analysis *core.EpisodeAnalysis) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.started = false
	report := analysis.Report
	fmt.Fprintf(p.writer, "Done in %s (%d segments, %d empty, %d failed)\n",
		report.Duration.Round(time.Millisecond), report.Segments, report.EmptyFragments, report.FailedExtractions)
}

// report prints the current progress. Must be called with lock held.
func (p *Progress) report() {
	elapsed := time.Since(p.startTime)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.current) / elapsed.Minutes()
	}

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rExtracting: %d/%d (%.1f%%) - %d failed - %.1f segments/min",
		p.current, p.total, percentage, p.failed, rate)
}
