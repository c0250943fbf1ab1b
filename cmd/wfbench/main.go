package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/engine"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/source"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/store"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/logger"
)

type Case struct {
	Name string
	Spec corpus.Spec
}

var cases = []Case{
	{Name: "1MiB-words-1-10", Spec: corpus.Spec{Size: 1 << 20, MinWord: 1, MaxWord: 10}},
	{Name: "1MiB-words-5", Spec: corpus.Spec{Size: 1 << 20, MinWord: 5, MaxWord: 5}},
	{Name: "10MiB-words-3-10", Spec: corpus.Spec{Size: 10 << 20, MinWord: 3, MaxWord: 10}},
	{Name: "100MiB-words-5-10", Spec: corpus.Spec{Size: 100 << 20, MinWord: 5, MaxWord: 10}},
}

type Result struct {
	Case     string
	Store    store.Kind
	Strategy source.Strategy
	Bytes    int64
	Words    uint64
	Distinct int
	Runs     []time.Duration
}

func main() {
	os.Exit(run())
}

func run() int {
	iterations := flag.Int("iterations", 5, "timed runs per combination")
	maxSize := flag.Int64("max-size", 100<<20, "skip corpora larger than this many bytes")
	dir := flag.String("dir", "", "directory for generated corpora, default a temp dir")
	seed := flag.Uint64("seed", 42, "corpus random seed")
	flag.Parse()

	logger.Setup("warn", "text")
	if *iterations < 1 {
		*iterations = 1
	}

	workDir := *dir
	if workDir == "" {
		tmp, err := os.MkdirTemp("", "wfbench-")
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating work dir: %v\n", err)
			return 1
		}
		defer os.RemoveAll(tmp)
		workDir = tmp
	}

	fmt.Println("=== Word Frequency Benchmark ===")
	fmt.Printf("Iterations: %d\n", *iterations)
	fmt.Printf("Work dir:   %s\n", workDir)
	fmt.Println()

	var results []Result
	for _, c := range cases {
		if c.Spec.Size > *maxSize {
			continue
		}
		path := filepath.Join(workDir, c.Name+".txt")
		fmt.Printf("Generating %s... ", c.Name)
		if err := corpus.GenerateFile(path, c.Spec, rand.New(rand.NewPCG(*seed, uint64(c.Spec.Size)))); err != nil {
			fmt.Fprintf(os.Stderr, "\ngenerating %s: %v\n", c.Name, err)
			return 1
		}
		fmt.Println("done")

		for _, kind := range []store.Kind{store.KindHash, store.KindTrie} {
			for _, strategy := range []source.Strategy{source.StrategyMapped, source.StrategyStream, source.StrategyTokens} {
				res, err := runCase(c, path, kind, strategy, *iterations)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s %s/%s: %v\n", c.Name, kind, strategy, err)
					return 1
				}
				results = append(results, res)
			}
		}
	}
	fmt.Println()
	printReport(results)
	return 0
}

func runCase(c Case, path string, kind store.Kind, strategy source.Strategy, iterations int) (Result, error) {
	res := Result{Case: c.Name, Store: kind, Strategy: strategy}
	e := engine.New(engine.Options{Store: kind, Strategy: strategy, ChunkSize: source.DefaultChunkSize}, nil, nil)
	ctx := context.Background()
	for i := 0; i < iterations; i++ {
		start := time.Now()
		s, stats, err := e.Ingest(ctx, path)
		if err != nil {
			return res, err
		}
		e.Rank(ctx, s)
		res.Runs = append(res.Runs, time.Since(start))
		res.Bytes, res.Words, res.Distinct = stats.Bytes, stats.Words, stats.Distinct
	}
	return res, nil
}

func printReport(results []Result) {
	fmt.Println("=== Results ===")
	fmt.Printf("%-20s %-6s %-8s %10s %10s %10s %10s %10s %10s\n",
		"corpus", "store", "source", "words", "distinct", "min", "avg", "max", "stddev")
	for _, r := range results {
		runs := slices.Clone(r.Runs)
		slices.Sort(runs)
		var sum time.Duration
		for _, d := range runs {
			sum += d
		}
		avg := sum / time.Duration(len(runs))
		var sumSquared float64
		for _, d := range runs {
			diff := float64(d - avg)
			sumSquared += diff * diff
		}
		stddev := time.Duration(math.Sqrt(sumSquared / float64(len(runs))))
		fmt.Printf("%-20s %-6s %-8s %10d %10d %10s %10s %10s %10s  %.1f MiB/s\n",
			r.Case, r.Store, r.Strategy, r.Words, r.Distinct,
			runs[0].Round(time.Microsecond), avg.Round(time.Microsecond),
			runs[len(runs)-1].Round(time.Microsecond), stddev.Round(time.Microsecond),
			float64(r.Bytes)/(1<<20)/avg.Seconds(),
		)
	}
}
