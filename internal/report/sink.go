package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/ranker"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/resilience"
)

// Sink receives a finished report.
type Sink interface {
	Name() string
	Publish(ctx context.Context, runID string, r ranker.Report) error
	Close() error
}

// FileSink writes the report to a local file (or stdout for "-"). It is a
// final sink: Publisher only runs it once every remote sink has succeeded.
type FileSink struct {
	path string
}

// finalSink marks sinks whose output must only appear for a successful run.
type finalSink interface {
	Sink
	final()
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) Publish(_ context.Context, _ string, r ranker.Report) error {
	return WriteFile(s.path, r)
}

func (s *FileSink) Close() error { return nil }

func (s *FileSink) final() {}

// retrying wraps a remote sink with retry and a per-attempt timeout.
type retrying struct {
	Sink
	cfg     resilience.RetryConfig
	timeout time.Duration
}

// WithRetry makes every Publish on s retry transient failures. Each attempt
// is bounded by timeout when it is positive.
func WithRetry(s Sink, cfg resilience.RetryConfig, timeout time.Duration) Sink {
	return &retrying{Sink: s, cfg: cfg, timeout: timeout}
}

func (r *retrying) Publish(ctx context.Context, runID string, rep ranker.Report) error {
	name := "publish-" + r.Name()
	return resilience.Retry(ctx, name, r.cfg, func() error {
		return resilience.WithTimeout(ctx, r.timeout, name, func(ctx context.Context) error {
			return r.Sink.Publish(ctx, runID, rep)
		})
	})
}

// Publisher fans a report out to every configured sink concurrently.
type Publisher struct {
	sinks    []Sink
	observer func(sink string, err error)
	logger   *slog.Logger
}

func NewPublisher(sinks ...Sink) *Publisher {
	return &Publisher{
		sinks:  sinks,
		logger: logger.WithComponent("publisher"),
	}
}

// OnResult registers fn to be called once per sink after each Publish. It
// may run on several goroutines at once.
func (p *Publisher) OnResult(fn func(sink string, err error)) {
	p.observer = fn
}

// Sinks returns the configured sinks.
func (p *Publisher) Sinks() []Sink {
	return p.sinks
}

// Publish delivers r to all sinks and returns the first failure. Remote
// sinks run concurrently and share r read-only; final sinks such as FileSink
// run afterwards, and are skipped when any remote sink failed.
func (p *Publisher) Publish(ctx context.Context, runID string, r ranker.Report) error {
	var remote, final []Sink
	for _, sink := range p.sinks {
		if _, ok := sink.(finalSink); ok {
			final = append(final, sink)
		} else {
			remote = append(remote, sink)
		}
	}
	if err := p.publishAll(ctx, runID, r, remote); err != nil {
		if len(final) > 0 {
			p.logger.Warn("skipping final sinks after remote failure", "final_sinks", len(final))
		}
		return err
	}
	return p.publishAll(ctx, runID, r, final)
}

func (p *Publisher) publishAll(ctx context.Context, runID string, r ranker.Report, sinks []Sink) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, sink := range sinks {
		g.Go(func() error {
			start := time.Now()
			err := sink.Publish(gctx, runID, r)
			if p.observer != nil {
				p.observer(sink.Name(), err)
			}
			if err != nil {
				p.logger.Error("sink publish failed", "sink", sink.Name(), "error", err)
				return fmt.Errorf("sink %s: %w", sink.Name(), err)
			}
			p.logger.Info("report published",
				"sink", sink.Name(),
				"entries", len(r),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		})
	}
	return g.Wait()
}

// Close closes every sink and returns the first error.
func (p *Publisher) Close() error {
	var firstErr error
	for _, sink := range p.sinks {
		if err := sink.Close(); err != nil {
			p.logger.Error("closing sink", "sink", sink.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
