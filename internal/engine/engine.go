// Package engine runs one word-frequency pass: it opens the corpus, feeds
// every word into a frequency store, ranks the finished store and hands the
// report to the configured sinks.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/ranker"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/report"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/sketch"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/source"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/store"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/tracing"
)

// Options selects the realization of each pipeline stage.
type Options struct {
	Store     store.Kind
	Strategy  source.Strategy
	ChunkSize int
	// Top truncates the report; 0 keeps every entry.
	Top int
	// ApproxTop replaces the store with a top-k sketch of that size.
	ApproxTop int
	// Trace logs the span tree of each run.
	Trace bool
}

// OptionsFromConfig validates the engine and report sections of cfg.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	kind, err := store.ParseKind(cfg.Engine.Store)
	if err != nil {
		return Options{}, err
	}
	strategy, err := source.ParseStrategy(cfg.Engine.Source)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Store:     kind,
		Strategy:  strategy,
		ChunkSize: cfg.Engine.ChunkSize,
		Top:       cfg.Report.Top,
		ApproxTop: cfg.Engine.ApproxTop,
		Trace:     cfg.Tracing.Enabled,
	}, nil
}

// Stats describes one ingestion pass.
type Stats struct {
	Words    uint64
	Distinct int
	Bytes    int64
	Duration time.Duration
}

type Engine struct {
	opts      Options
	publisher *report.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New builds an Engine. m may be nil to disable metrics.
func New(opts Options, publisher *report.Publisher, m *metrics.Metrics) *Engine {
	e := &Engine{
		opts:      opts,
		publisher: publisher,
		metrics:   m,
		logger:    logger.WithComponent("engine"),
	}
	if m != nil && publisher != nil {
		publisher.OnResult(func(sink string, err error) {
			status := "ok"
			if err != nil {
				status = "error"
			}
			m.SinkPublishes.WithLabelValues(sink, status).Inc()
		})
	}
	return e
}

// Ingest performs one sequential pass over path into a new store. The
// source is released before Ingest returns, on success or failure.
func (e *Engine) Ingest(ctx context.Context, path string) (store.Store, Stats, error) {
	_, span := tracing.StartChildSpan(ctx, "ingest")
	defer span.End()

	s, err := store.New(e.opts.Store)
	if err != nil {
		return nil, Stats{}, err
	}
	stats, err := e.pass(path, s.Insert)
	if err != nil {
		return nil, stats, err
	}
	stats.Distinct = s.Len()
	span.SetAttr("words", stats.Words)
	span.SetAttr("distinct", stats.Distinct)
	e.recordIngest(stats)
	if e.metrics != nil {
		e.metrics.DistinctWords.WithLabelValues(string(e.opts.Store)).Set(float64(stats.Distinct))
		if trie, ok := s.(*store.TrieStore); ok {
			e.metrics.TrieNodes.Set(float64(trie.Nodes()))
		}
	}
	e.logger.Info("corpus ingested",
		"path", path,
		"store", e.opts.Store,
		"source", e.opts.Strategy,
		"bytes", stats.Bytes,
		"words", stats.Words,
		"distinct", stats.Distinct,
		"duration_ms", stats.Duration.Milliseconds(),
	)
	return s, stats, nil
}

// IngestSketch is Ingest with a bounded top-k sketch in place of a store.
func (e *Engine) IngestSketch(ctx context.Context, path string, n int) (*sketch.Sketch, Stats, error) {
	_, span := tracing.StartChildSpan(ctx, "ingest-sketch")
	defer span.End()

	sk := sketch.New(n)
	stats, err := e.pass(path, sk.Insert)
	if err != nil {
		return nil, stats, err
	}
	span.SetAttr("words", stats.Words)
	e.recordIngest(stats)
	e.logger.Info("corpus sketched",
		"path", path,
		"capacity", n,
		"words", stats.Words,
		"duration_ms", stats.Duration.Milliseconds(),
	)
	return sk, stats, nil
}

func (e *Engine) pass(path string, insert func(string)) (Stats, error) {
	start := time.Now()
	var stats Stats
	err := source.With(path, e.opts.Strategy, e.opts.ChunkSize, func(src source.Source) error {
		stats.Bytes = src.Size()
		for word := range src.Words() {
			insert(word)
			stats.Words++
		}
		return nil
	})
	stats.Duration = time.Since(start)
	return stats, err
}

// Rank freezes s and returns its report truncated to Options.Top.
func (e *Engine) Rank(ctx context.Context, s store.Store) ranker.Report {
	_, span := tracing.StartChildSpan(ctx, "rank")
	start := time.Now()
	rep := ranker.Rank(s).Top(e.opts.Top)
	span.End()
	span.SetAttr("entries", len(rep))
	e.observe("rank", time.Since(start))
	return rep
}

// Run executes the whole pipeline for input and publishes the report. Input
// failures abort the run before any sink is touched.
func (e *Engine) Run(ctx context.Context, input string, runID string) (rep ranker.Report, err error) {
	ctx, root := tracing.StartSpan(ctx, "run", runID)
	root.SetAttr("input", input)
	defer func() {
		root.End()
		e.recordRun(err)
		if e.opts.Trace {
			root.Log(e.logger)
		}
	}()

	if e.opts.ApproxTop > 0 {
		sk, _, err := e.IngestSketch(ctx, input, e.opts.ApproxTop)
		if err != nil {
			return nil, err
		}
		rep = sk.Report().Top(e.opts.Top)
	} else {
		s, _, err := e.Ingest(ctx, input)
		if err != nil {
			return nil, err
		}
		rep = e.Rank(ctx, s)
	}
	if e.metrics != nil {
		e.metrics.ReportEntries.Set(float64(len(rep)))
	}

	// A caller bounding the run by ctx gets nothing published once it expires.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if e.publisher == nil {
		return rep, nil
	}
	_, span := tracing.StartChildSpan(ctx, "publish")
	start := time.Now()
	err = e.publisher.Publish(ctx, runID, rep)
	span.End()
	e.observe("publish", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("publishing report: %w", err)
	}
	return rep, nil
}

func (e *Engine) recordIngest(stats Stats) {
	e.observe("ingest", stats.Duration)
	if e.metrics == nil {
		return
	}
	e.metrics.WordsTokenized.Add(float64(stats.Words))
	e.metrics.BytesIngested.WithLabelValues(string(e.opts.Strategy)).Add(float64(stats.Bytes))
	if secs := stats.Duration.Seconds(); secs > 0 {
		e.metrics.IngestThroughput.Set(float64(stats.Bytes) / secs)
	}
}

func (e *Engine) observe(phase string, d time.Duration) {
	if e.metrics != nil {
		e.metrics.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
	}
}

func (e *Engine) recordRun(err error) {
	if e.metrics == nil {
		return
	}
	status := "ok"
	switch {
	case err == nil:
	case apperrors.Is(err, apperrors.ErrInputAccess):
		status = "input_error"
	case apperrors.Is(err, apperrors.ErrOutput):
		status = "output_error"
	default:
		status = "error"
	}
	e.metrics.RunsTotal.WithLabelValues(status).Inc()
}
