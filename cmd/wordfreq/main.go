package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/engine"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/report"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/resilience"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config file")
	input := flag.String("input", "", "path to the input corpus")
	output := flag.String("output", "", "path to the report file, - for stdout")
	storeKind := flag.String("store", "", "frequency store: hash or trie")
	sourceKind := flag.String("source", "", "byte source: mmap, stream or tokens")
	top := flag.Int("top", 0, "keep only the n most frequent words, 0 for all")
	approxTop := flag.Int("approx-top", 0, "approximate the n most frequent words with a bounded sketch")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return apperrors.ExitUsage
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.Report.Output = *output
		case "store":
			cfg.Engine.Store = *storeKind
		case "source":
			cfg.Engine.Source = *sourceKind
		case "top":
			cfg.Report.Top = *top
		case "approx-top":
			cfg.Engine.ApproxTop = *approxTop
		}
	})
	if *input == "" || cfg.Report.Output == "" {
		err := apperrors.New(apperrors.ErrInvalidInput, apperrors.ExitUsage, "both -input and -output are required")
		fmt.Fprintf(os.Stderr, "wordfreq: %v\n", err)
		flag.PrintDefaults()
		return apperrors.ExitCode(err)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		return apperrors.ExitUsage
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	opts, err := engine.OptionsFromConfig(cfg)
	if err != nil {
		slog.Error("invalid engine options", "error", err)
		return apperrors.ExitCode(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := newRunID()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx)

	checker := health.NewChecker()
	publisher, err := buildPublisher(ctx, cfg, checker)
	if err != nil {
		log.Error("failed to connect report sinks", "error", err)
		return apperrors.ExitCode(err)
	}
	defer publisher.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(nil)
		shutdown := m.StartServer(cfg.Metrics.Port, map[string]http.Handler{
			"/ready": middleware.Chain(checker.ReadyHandler(),
				middleware.Logging(log),
				middleware.Timeout(5*time.Second),
			),
		})
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}

	preflightCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = checker.Preflight(preflightCtx)
	cancel()
	if err != nil {
		log.Error("report sink preflight failed", "error", err)
		fmt.Fprintf(os.Stderr, "wordfreq: %v\n", err)
		return apperrors.ExitCode(err)
	}

	log.Info("starting run",
		"input", *input,
		"output", cfg.Report.Output,
		"store", opts.Store,
		"source", opts.Strategy,
		"sinks", len(publisher.Sinks()),
	)
	eng := engine.New(opts, publisher, m)
	rep, err := eng.Run(ctx, *input, runID)
	if err != nil {
		log.Error("run failed", "error", err)
		fmt.Fprintf(os.Stderr, "wordfreq: %v\n", err)
		return apperrors.ExitCode(err)
	}
	log.Info("run complete", "entries", len(rep), "words", rep.Total())
	return apperrors.ExitOK
}

// buildPublisher connects every enabled sink. Remote sinks are registered
// with checker and wrapped with retry.
func buildPublisher(ctx context.Context, cfg *config.Config, checker *health.Checker) (*report.Publisher, error) {
	sinks := []report.Sink{report.NewFileSink(cfg.Report.Output)}
	retry := resilience.RetryConfig{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond}

	if cfg.Postgres.Enabled {
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrSinkUnavailable, apperrors.ExitUnavailable, "postgres %s:%d: %v", cfg.Postgres.Host, cfg.Postgres.Port, err)
		}
		sink := report.NewPostgresSink(client, cfg.Postgres.Table)
		checker.Register("postgres", health.PingCheck(sink))
		sinks = append(sinks, report.WithRetry(sink, retry, cfg.Report.Timeout))
	}
	if cfg.Kafka.Enabled {
		// Batches are retried inside the sink so acknowledged ones are not resent.
		sink := report.NewKafkaSink(kafka.NewProducer(cfg.Kafka), cfg.Kafka.BatchSize, retry, cfg.Report.Timeout)
		checker.Register("kafka", health.PingCheck(sink))
		sinks = append(sinks, sink)
	}
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			for _, s := range sinks {
				s.Close()
			}
			return nil, apperrors.Newf(apperrors.ErrSinkUnavailable, apperrors.ExitUnavailable, "redis %s: %v", cfg.Redis.Addr, err)
		}
		sink := report.NewRedisSink(client, cfg.Redis.KeyPrefix, cfg.Redis.TTL)
		checker.Register("redis", health.PingCheck(sink))
		sinks = append(sinks, report.WithRetry(sink, retry, cfg.Report.Timeout))
	}
	return report.NewPublisher(sinks...), nil
}

func newRunID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
