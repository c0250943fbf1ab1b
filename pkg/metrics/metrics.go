// Package metrics defines the Prometheus collectors for word-frequency runs
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the engine.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	PhaseDuration    *prometheus.HistogramVec
	WordsTokenized   prometheus.Counter
	BytesIngested    *prometheus.CounterVec
	DistinctWords    *prometheus.GaugeVec
	TrieNodes        prometheus.Gauge
	ReportEntries    prometheus.Gauge
	SinkPublishes    *prometheus.CounterVec
	IngestThroughput prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg. A nil reg uses a
// fresh private registry, which keeps tests independent of each other.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordfreq_runs_total",
				Help: "Total runs by outcome (ok, input_error, output_error, error).",
			},
			[]string{"status"},
		),
		PhaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wordfreq_phase_duration_seconds",
				Help:    "Duration of each run phase in seconds.",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"phase"},
		),
		WordsTokenized: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordfreq_words_tokenized_total",
				Help: "Total words produced by the tokenizer.",
			},
		),
		BytesIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordfreq_bytes_ingested_total",
				Help: "Total corpus bytes ingested by source strategy.",
			},
			[]string{"strategy"},
		),
		DistinctWords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wordfreq_distinct_words",
				Help: "Distinct words in the last completed store by realization.",
			},
			[]string{"store"},
		),
		TrieNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordfreq_trie_nodes",
				Help: "Nodes allocated by the last trie store.",
			},
		),
		ReportEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordfreq_report_entries",
				Help: "Entries in the last ranked report.",
			},
		),
		SinkPublishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordfreq_sink_publishes_total",
				Help: "Report publications by sink and status.",
			},
			[]string{"sink", "status"},
		),
		IngestThroughput: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordfreq_ingest_bytes_per_second",
				Help: "Ingestion throughput of the last run.",
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.RunsTotal,
		m.PhaseDuration,
		m.WordsTokenized,
		m.BytesIngested,
		m.DistinctWords,
		m.TrieNodes,
		m.ReportEntries,
		m.SinkPublishes,
		m.IngestThroughput,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler for m's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
