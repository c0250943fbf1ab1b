package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/corpus"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/logger"
)

func main() {
	output := flag.String("output", "", "path of the corpus file to write")
	size := flag.Int64("size", 1<<20, "corpus size in bytes")
	minWord := flag.Int("min", 3, "minimum word length")
	maxWord := flag.Int("max", 10, "maximum word length")
	seed := flag.Uint64("seed", 0, "random seed, 0 picks one from the clock")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger.Setup(*level, "text")
	if *output == "" {
		fmt.Fprintln(os.Stderr, "usage: corpusgen -output <path> [-size n] [-min n] [-max n] [-seed n]")
		os.Exit(apperrors.ExitUsage)
	}
	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}

	spec := corpus.Spec{Size: *size, MinWord: *minWord, MaxWord: *maxWord}
	start := time.Now()
	if err := corpus.GenerateFile(*output, spec, rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))); err != nil {
		slog.Error("corpus generation failed", "output", *output, "error", err)
		fmt.Fprintf(os.Stderr, "corpusgen: %v\n", err)
		os.Exit(apperrors.ExitCode(err))
	}
	slog.Info("corpus written",
		"output", *output,
		"bytes", *size,
		"min", *minWord,
		"max", *maxWord,
		"seed", *seed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
