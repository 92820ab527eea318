// Package metrics defines the Prometheus collectors recorded during a
// lexstats build and exports them in the text exposition format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all collectors for one process. Collectors live in a
// private registry so that tests and repeated builds do not collide with
// the global one.
type Metrics struct {
	registry *prometheus.Registry

	PagesTotal       *prometheus.CounterVec
	PagesSkipped     *prometheus.CounterVec
	TokensCounted    prometheus.Counter
	CorpusTerms      prometheus.Gauge
	CandidateTerms   prometheus.Gauge
	SelectedTerms    prometheus.Gauge
	BuildDuration    prometheus.Histogram
	PublishTotal     *prometheus.CounterVec
	LastSuccessEpoch prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lexstats_pages_total",
				Help: "Navigation pages seen by status (processed, skipped).",
			},
			[]string{"status"},
		),
		PagesSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lexstats_pages_skipped_total",
				Help: "Skipped pages by reason.",
			},
			[]string{"reason"},
		),
		TokensCounted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lexstats_tokens_counted_total",
				Help: "Terms counted across processed pages after per-page capping.",
			},
		),
		CorpusTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lexstats_corpus_terms",
				Help: "Distinct terms in the corpus before selection.",
			},
		),
		CandidateTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lexstats_candidate_terms",
				Help: "Terms passing every threshold before the global cap.",
			},
		),
		SelectedTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lexstats_selected_terms",
				Help: "Terms emitted in the artifact.",
			},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lexstats_build_duration_seconds",
				Help:    "Wall time of a build from first page read to assembled artifact.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		PublishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lexstats_publish_total",
				Help: "Artifact publications by sink and status.",
			},
			[]string{"sink", "status"},
		),
		LastSuccessEpoch: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lexstats_last_success_timestamp_seconds",
				Help: "Unix time of the last successful host document write.",
			},
		),
	}

	m.registry.MustRegister(
		m.PagesTotal,
		m.PagesSkipped,
		m.TokensCounted,
		m.CorpusTerms,
		m.CandidateTerms,
		m.SelectedTerms,
		m.BuildDuration,
		m.PublishTotal,
		m.LastSuccessEpoch,
	)

	return m
}

// Registry exposes the underlying registry as a gatherer.
func (m *Metrics) Registry() prometheus.Gatherer {
	return m.registry
}

// MarkSuccess records the time of a successful write.
func (m *Metrics) MarkSuccess(t time.Time) {
	m.LastSuccessEpoch.Set(float64(t.Unix()))
}

// WriteTextfile writes all metrics to path atomically, in the format read
// by the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
