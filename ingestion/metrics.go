package ingestion

import (
	"time"

	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/extraction"
	"github.com/poiesic/podmap/refinement"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a Monitor that records pipeline runs as Prometheus metrics.
type Metrics struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// Run metrics
	Runs        *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Extraction metrics
	Segments       prometheus.Counter
	Extractions    *prometheus.CounterVec
	EmptyFragments prometheus.Counter

	// Refinement metrics
	Refinements *prometheus.CounterVec
	Entities    prometheus.Counter
}

var _ Monitor = (*Metrics)(nil)

// NewMetrics creates a collector with the given namespace on its own registry.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by terminal state",
		},
		[]string{"state"},
	)

	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Pipeline run duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		},
	)

	segments := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_total",
			Help:      "Total number of audio segments produced",
		},
	)

	extractions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Total number of segment extractions by outcome",
		},
		[]string{"outcome"},
	)

	emptyFragments := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_fragments_total",
			Help:      "Total number of segments that yielded an empty fragment",
		},
	)

	refinements := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refinements_total",
			Help:      "Total number of refinements by outcome",
		},
		[]string{"outcome"},
	)

	entities := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refined_entities_total",
			Help:      "Total number of entities in refined fragments",
		},
	)

	registry.MustRegister(runs, runDuration, segments, extractions, emptyFragments, refinements, entities)

	// Pre-populate outcome labels so dashboards see zeros.
	for _, o := range extraction.Outcomes {
		extractions.WithLabelValues(string(o))
	}

	return &Metrics{
		registry:       registry,
		Runs:           runs,
		RunDuration:    runDuration,
		Segments:       segments,
		Extractions:    extractions,
		EmptyFragments: emptyFragments,
		Refinements:    refinements,
		Entities:       entities,
	}
}

// Registry returns the Prometheus registry holding these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) StateChanged(_ core.ID, _, to State) {
	if to.Terminal() {
		m.Runs.WithLabelValues(to.String()).Inc()
	}
}

func (m *Metrics) Segmented(_ core.ID, segments int, _ time.Duration) {
	m.Segments.Add(float64(segments))
}

func (m *Metrics) SegmentExtracted(_ core.ID, _ int, outcome extraction.Outcome, fragment core.GraphFragment) {
	m.Extractions.WithLabelValues(string(outcome)).Inc()
	if fragment.IsEmpty() {
		m.EmptyFragments.Inc()
	}
}

func (m *Metrics) Refined(_ core.ID, outcome refinement.Outcome, fragment core.GraphFragment) {
	m.Refinements.WithLabelValues(string(outcome)).Inc()
	m.Entities.Add(float64(len(fragment.Entities)))
}

func (m *Metrics) Finish(analysis *core.EpisodeAnalysis) {
	m.RunDuration.Observe(analysis.Report.Duration.Seconds())
}
