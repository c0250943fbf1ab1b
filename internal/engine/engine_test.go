package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/ranker"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/report"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/source"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/store"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/metrics"
)

const sentence = "The cat sat on the mat. THE CAT RAN."

const sentenceReport = "the 3\ncat 2\nmat 1\non 1\nran 1\nsat 1\n"

func writeInput(t testing.TB, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func combos() []Options {
	var out []Options
	for _, kind := range []store.Kind{store.KindHash, store.KindTrie} {
		for _, strategy := range []source.Strategy{source.StrategyMapped, source.StrategyStream, source.StrategyTokens} {
			out = append(out, Options{Store: kind, Strategy: strategy, ChunkSize: 4})
		}
	}
	return out
}

func TestRunEndToEnd(t *testing.T) {
	input := writeInput(t, sentence)
	for _, opts := range combos() {
		t.Run(fmt.Sprintf("%s_%s", opts.Store, opts.Strategy), func(t *testing.T) {
			output := filepath.Join(t.TempDir(), "out.txt")
			e := New(opts, report.NewPublisher(report.NewFileSink(output)), metrics.New(nil))
			if _, err := e.Run(context.Background(), input, "run-1"); err != nil {
				t.Fatalf("Run: %v", err)
			}
			got, err := os.ReadFile(output)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != sentenceReport {
				t.Errorf("report =\n%s\nwant\n%s", got, sentenceReport)
			}
		})
	}
}

func TestRunMissingInputWritesNothing(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.txt")
	e := New(Options{Store: store.KindTrie, Strategy: source.StrategyMapped}, report.NewPublisher(report.NewFileSink(output)), nil)
	_, err := e.Run(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), "run-2")
	if !errors.Is(err, apperrors.ErrInputAccess) {
		t.Fatalf("err = %v, want ErrInputAccess", err)
	}
	if apperrors.ExitCode(err) == apperrors.ExitOK {
		t.Error("missing input must map to a failure exit code")
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Error("output file created for a failed run")
	}
}

func TestRunCancelledPublishesNothing(t *testing.T) {
	input := writeInput(t, sentence)
	output := filepath.Join(t.TempDir(), "out.txt")
	e := New(Options{Store: store.KindHash, Strategy: source.StrategyStream}, report.NewPublisher(report.NewFileSink(output)), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Run(ctx, input, "run-3"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Error("report published after cancellation")
	}
}

func TestRunTopAndApprox(t *testing.T) {
	input := writeInput(t, sentence)
	e := New(Options{Store: store.KindHash, Strategy: source.StrategyMapped, Top: 2}, nil, nil)
	rep, err := e.Run(context.Background(), input, "run-4")
	if err != nil {
		t.Fatal(err)
	}
	want := ranker.Report{{Word: "the", Count: 3}, {Word: "cat", Count: 2}}
	if !slices.Equal(rep, want) {
		t.Errorf("top 2 = %v", rep)
	}

	approx := New(Options{Strategy: source.StrategyStream, ApproxTop: 10, Top: 2}, nil, nil)
	rep, err = approx.Run(context.Background(), input, "run-5")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(rep, want) {
		t.Errorf("approx top 2 = %v", rep)
	}
}

func TestIngestConservesCounts(t *testing.T) {
	var b strings.Builder
	if err := corpus.Generate(&b, corpus.Spec{Size: 1 << 16, MinWord: 1, MaxWord: 8}, rand.New(rand.NewPCG(1, 1))); err != nil {
		t.Fatal(err)
	}
	input := writeInput(t, b.String())

	var reports []ranker.Report
	for _, opts := range combos() {
		e := New(opts, nil, nil)
		s, stats, err := e.Ingest(context.Background(), input)
		if err != nil {
			t.Fatal(err)
		}
		if s.Total() != stats.Words || stats.Distinct != s.Len() || stats.Bytes != 1<<16 {
			t.Fatalf("%+v: total=%d stats=%+v", opts, s.Total(), stats)
		}
		reports = append(reports, e.Rank(context.Background(), s))
	}
	for i := 1; i < len(reports); i++ {
		if !slices.Equal(reports[0], reports[i]) {
			t.Fatalf("combination %d ranked differently", i)
		}
	}
}

func TestRunIdempotent(t *testing.T) {
	input := writeInput(t, strings.Repeat("b a c a b ", 50))
	dir := t.TempDir()
	var outputs []string
	for i := 0; i < 2; i++ {
		out := filepath.Join(dir, fmt.Sprintf("out%d.txt", i))
		e := New(Options{Store: store.KindTrie, Strategy: source.StrategyMapped}, report.NewPublisher(report.NewFileSink(out)), nil)
		if _, err := e.Run(context.Background(), input, "run"); err != nil {
			t.Fatal(err)
		}
		data, _ := os.ReadFile(out)
		outputs = append(outputs, string(data))
	}
	if outputs[0] != outputs[1] || outputs[0] != "a 100\nb 100\nc 50\n" {
		t.Errorf("outputs = %q", outputs)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Engine.Store = "trie"
	cfg.Report.Top = 5
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Store != store.KindTrie || opts.Strategy != source.StrategyMapped || opts.Top != 5 {
		t.Errorf("opts = %+v", opts)
	}
	cfg.Engine.Source = "tape"
	if _, err := OptionsFromConfig(cfg); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("err = %v", err)
	}
}

func BenchmarkIngest(b *testing.B) {
	path := filepath.Join(b.TempDir(), "corpus.txt")
	const size = 1 << 20
	if err := corpus.GenerateFile(path, corpus.Spec{Size: size, MinWord: 3, MaxWord: 10}, rand.New(rand.NewPCG(2, 2))); err != nil {
		b.Fatal(err)
	}
	for _, opts := range combos() {
		opts.ChunkSize = source.DefaultChunkSize
		b.Run(fmt.Sprintf("%s_%s", opts.Store, opts.Strategy), func(b *testing.B) {
			e := New(opts, nil, nil)
			b.ReportAllocs()
			b.SetBytes(size)
			for i := 0; i < b.N; i++ {
				if _, _, err := e.Ingest(context.Background(), path); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
