package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/podmap/ai"
	"github.com/poiesic/podmap/audio"
	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/extraction"
	"github.com/poiesic/podmap/refinement"
)

// DefaultCallTimeout bounds each model exchange unless WithCallTimeout is used.
const DefaultCallTimeout = 5 * time.Minute

// Pipeline turns one episode's audio into a single refined fragment.
// It is safe to run Process for several episodes at once; they share the
// worker pool.
type Pipeline struct {
	segmenter   Splitter
	segmentOpts []audio.Option
	extractor   segmentProcessor
	refiner     fragmentProcessor
	pool        *ants.Pool
	monitor     monitors
	callTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets how many extractions may be in flight at once.
// Default is 1, which processes segments sequentially.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithSegmenter replaces the default ffmpeg segmenter.
// WithChunkDuration and WithTempDir have no effect when this is used.
func WithSegmenter(s Splitter) Option {
	return func(p *Pipeline) error {
		if s == nil {
			return ErrSegmenterRequired
		}
		p.segmenter = s
		return nil
	}
}

// WithChunkDuration sets the segment length of the default segmenter.
// Default is 300 seconds.
func WithChunkDuration(d time.Duration) Option {
	return func(p *Pipeline) error {
		p.segmentOpts = append(p.segmentOpts, audio.WithChunkDuration(d))
		return nil
	}
}

// WithTempDir sets where the default segmenter writes its files.
func WithTempDir(dir string) Option {
	return func(p *Pipeline) error {
		p.segmentOpts = append(p.segmentOpts, audio.WithTempDir(dir))
		return nil
	}
}

// WithCallTimeout bounds each extraction and the refinement call.
func WithCallTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d <= 0 {
			return ErrInvalidCallTimeout
		}
		p.callTimeout = d
		return nil
	}
}

// WithMonitor adds a Monitor. It may be given more than once.
func WithMonitor(m Monitor) Option {
	return func(p *Pipeline) error {
		if m == nil {
			return ErrMonitorRequired
		}
		p.monitor = append(p.monitor, m)
		return nil
	}
}

// WithMetrics records runs into m.
func WithMetrics(m *Metrics) Option {
	return WithMonitor(m)
}

// NewPipeline creates a pipeline that extracts with provider.Extraction()
// and refines with provider.Refinement().
func NewPipeline(provider ai.Provider, opts ...Option) (*Pipeline, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		pool:        pool,
		callTimeout: DefaultCallTimeout,
		logger:      slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "pipeline")
	if len(p.monitor) == 0 {
		p.monitor = monitors{&noopMonitor{}}
	}

	// Create stages after options are applied (so they get final config)
	if p.segmenter == nil {
		segmenter, err := audio.NewSegmenter(append(p.segmentOpts, audio.WithLogger(p.logger.With("stage", "segmentation")))...)
		if err != nil {
			p.Release()
			return nil, err
		}
		p.segmenter = segmenter
	}

	extractor, err := extraction.NewExtractor(provider.Extraction(),
		extraction.WithCallTimeout(p.callTimeout),
		extraction.WithLogger(p.logger.With("stage", "extraction")))
	if err != nil {
		p.Release()
		return nil, err
	}

	refiner, err := refinement.NewRefiner(provider.Refinement(),
		refinement.WithCallTimeout(p.callTimeout),
		refinement.WithLogger(p.logger.With("stage", "refinement")))
	if err != nil {
		p.Release()
		return nil, err
	}

	p.extractor = extractor
	p.refiner = refiner
	return p, nil
}

// Process segments, extracts and refines the audio read from source.
//
// The only error returned wraps core.ErrDecodeFailure, meaning the audio could
// not be segmented and no model was called. Every later failure degrades the
// result instead and is counted in the returned analysis' Report.
func (p *Pipeline) Process(ctx context.Context, source io.Reader, episodeID core.ID) (*core.EpisodeAnalysis, error) {
	run := &run{pipeline: p, episodeID: episodeID, started: time.Now()}
	logger := p.logger.With("episode", episodeID)

	run.transition(StateSegmenting)
	set, err := p.segmenter.Split(ctx, source)
	if err != nil {
		run.transition(StateFailed)
		if !errors.Is(err, core.ErrDecodeFailure) {
			err = fmt.Errorf("%w: %w", core.ErrDecodeFailure, err)
		}
		logger.Error("segmentation failed", "err", err)
		return nil, err
	}
	defer func() {
		if err := set.Release(); err != nil {
			logger.Warn("failed to release segments", "run", set.RunID, "err", err)
		}
	}()
	p.monitor.Segmented(episodeID, set.Len(), set.Duration)
	logger.Info("segmented episode", "run", set.RunID, "duration", set.Duration, "segments", set.Len())

	run.transition(StateExtracting)
	fragments, outcomes := p.extractAll(ctx, run, set)

	run.transition(StateRefining)
	refined, refineOutcome := p.refiner.Refine(ctx, fragments)
	p.monitor.Refined(episodeID, refineOutcome, refined)

	report := core.RunReport{
		Segments:           set.Len(),
		RefinementSkipped:  refineOutcome == refinement.OutcomeSkipped,
		RefinementFellBack: refineOutcome.FellBack(),
		Duration:           time.Since(run.started),
	}
	for i, fragment := range fragments {
		if fragment.IsEmpty() {
			report.EmptyFragments++
		}
		if outcomes[i].Failed() {
			report.FailedExtractions++
		}
	}

	analysis := &core.EpisodeAnalysis{
		EpisodeID: episodeID,
		Fragment:  refined,
		Start:     0,
		End:       set.Duration,
		Report:    report,
	}

	run.transition(StateDone)
	p.monitor.Finish(analysis)

	entities, relationships, details := refined.Counts()
	logger.Info("processed episode",
		"entities", entities,
		"relationships", relationships,
		"details", details,
		"emptyFragments", report.EmptyFragments,
		"failedExtractions", report.FailedExtractions,
		"refinement", refineOutcome,
		"elapsed", report.Duration)
	return analysis, nil
}

// extractAll runs one extraction per segment on the pool and waits for all of
// them. Slot i of each result belongs to segment i.
func (p *Pipeline) extractAll(ctx context.Context, run *run, set *audio.SegmentSet) ([]core.GraphFragment, []extraction.Outcome) {
	fragments := make([]core.GraphFragment, set.Len())
	outcomes := make([]extraction.Outcome, set.Len())

	var wg sync.WaitGroup
	for i, seg := range set.Segments {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			fragments[i], outcomes[i] = p.extractOne(ctx, run, i, seg)
		}
		if err := p.pool.Submit(task); err != nil {
			p.logger.Warn("worker pool unavailable, extracting inline", "segment", i, "err", err)
			task()
		}
	}
	wg.Wait()
	return fragments, outcomes
}

func (p *Pipeline) extractOne(ctx context.Context, run *run, index int, seg *audio.Segment) (fragment core.GraphFragment, outcome extraction.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("extraction task panicked", "episode", run.episodeID, "segment", index, "panic", fmt.Sprint(r))
			fragment, outcome = core.EmptyFragment(), extraction.OutcomePanicked
		}
		if err := seg.Release(); err != nil {
			p.logger.Warn("failed to release segment", "segment", index, "err", err)
		}
		p.monitor.SegmentExtracted(run.episodeID, index, outcome, fragment)
	}()

	return p.extractor.ExtractWithOutcome(ctx, seg)
}

// Release frees the worker pool. The pipeline cannot be used afterwards.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// run tracks the state of a single Process call.
type run struct {
	pipeline  *Pipeline
	episodeID core.ID
	state     State
	started   time.Time
}

func (r *run) transition(to State) {
	from := r.state
	if !from.CanTransition(to) {
		// Unreachable unless Process is restructured.
		panic(fmt.Sprintf("ingestion: illegal transition %s -> %s", from, to))
	}
	r.state = to
	r.pipeline.logger.Debug("state changed", "episode", r.episodeID, "from", from, "to", to)
	r.pipeline.monitor.StateChanged(r.episodeID, from, to)
}
