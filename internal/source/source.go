// Package source exposes a corpus file as a sequence of words. The whole file
// can be mapped read-only into memory or streamed in fixed-size chunks; both
// produce exactly the same words. A third strategy reads whitespace-delimited
// tokens and normalises each one.
package source

import (
	"errors"
	"fmt"
	"iter"
	"os"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

// Source is an open corpus. It is owned by one ingestion pass and must be
// closed when the pass ends.
type Source interface {
	// Words yields the normalised words of the corpus. It is single-pass.
	Words() iter.Seq[string]
	// Err reports a read failure that cut Words short.
	Err() error
	// Size is the corpus size in bytes.
	Size() int64
	Close() error
}

// Strategy selects how the corpus bytes are accessed.
type Strategy string

const (
	StrategyMapped Strategy = "mmap"
	StrategyStream Strategy = "stream"
	StrategyTokens Strategy = "tokens"
)

// DefaultChunkSize is used by the streaming strategy when none is given.
const DefaultChunkSize = 64 * 1024

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyMapped, StrategyStream, StrategyTokens:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown source strategy %q: %w", s, apperrors.ErrInvalidInput)
	}
}

// Open opens path with the given strategy. chunkSize sizes the read buffer of
// the streaming strategies; values <= 0 select DefaultChunkSize.
func Open(path string, strategy Strategy, chunkSize int) (Source, error) {
	switch strategy {
	case StrategyMapped:
		return OpenMapped(path)
	case StrategyStream:
		return OpenStream(path, chunkSize)
	case StrategyTokens:
		return OpenTokens(path, chunkSize)
	default:
		return nil, fmt.Errorf("unknown source strategy %q: %w", strategy, apperrors.ErrInvalidInput)
	}
}

// With opens path, hands the source to fn and closes it on every exit path,
// including a panic in fn. A read error reported by the source after fn
// returns is surfaced as the result.
func With(path string, strategy Strategy, chunkSize int, fn func(Source) error) (err error) {
	src, err := Open(path, strategy, chunkSize)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing %s: %w", path, cerr))
		}
	}()
	if err := fn(src); err != nil {
		return err
	}
	if err := src.Err(); err != nil {
		return fmt.Errorf("reading %s: %w: %w", path, apperrors.ErrInputAccess, err)
	}
	return nil
}

// statInput checks that path names a readable regular file and returns its
// size.
func statInput(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w: %w", path, apperrors.ErrInputAccess, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("opening %s: %w: is a directory", path, apperrors.ErrInputAccess)
	}
	return info.Size(), nil
}
