// Package corpus generates synthetic text for benchmarking: random mixed-case
// ASCII words separated by single spaces.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

// Spec describes a corpus to generate.
type Spec struct {
	Size    int64
	MinWord int
	MaxWord int
}

func (s Spec) validate() error {
	if s.Size < 0 {
		return fmt.Errorf("corpus size %d: %w", s.Size, apperrors.ErrInvalidInput)
	}
	if s.MinWord < 1 || s.MaxWord < s.MinWord {
		return fmt.Errorf("word length range [%d, %d]: %w", s.MinWord, s.MaxWord, apperrors.ErrInvalidInput)
	}
	return nil
}

// Generate writes exactly spec.Size bytes to w. Word lengths are uniform in
// [MinWord, MaxWord]; the last word is cut short if it would overrun. There is
// no trailing separator.
func Generate(w io.Writer, spec Spec, rng *rand.Rand) error {
	if err := spec.validate(); err != nil {
		return err
	}
	bw := bufio.NewWriterSize(w, 64*1024)
	remaining := spec.Size
	for remaining > 0 {
		n := int64(spec.MinWord + rng.IntN(spec.MaxWord-spec.MinWord+1))
		n = min(n, remaining)
		remaining -= n
		for ; n > 0; n-- {
			c := byte('a' + rng.IntN(26))
			if rng.IntN(2) == 0 {
				c -= 'a' - 'A'
			}
			bw.WriteByte(c)
		}
		if remaining > 0 {
			bw.WriteByte(' ')
			remaining--
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing corpus: %w", err)
	}
	return nil
}

// GenerateFile writes a corpus to path, replacing any existing file.
func GenerateFile(path string, spec Spec, rng *rand.Rand) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating corpus file %s: %w: %w", path, apperrors.ErrOutput, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing corpus file %s: %w", path, cerr)
		}
	}()
	return Generate(f, spec, rng)
}
