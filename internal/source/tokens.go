package source

import (
	"bufio"
	"fmt"
	"iter"
	"os"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

// maxTokenSize caps a single whitespace-delimited token.
const maxTokenSize = 64 << 20

// Tokens reads the corpus one whitespace-delimited token at a time and
// normalises each token on its own. Non-letters inside a token are dropped
// rather than splitting it, so "cat.sat" yields "catsat". On corpora whose
// words are separated by whitespace it yields the same words as the other
// strategies.
type Tokens struct {
	file    *os.File
	scanner *bufio.Scanner
	size    int64
	err     error
}

func OpenTokens(path string, chunkSize int) (*Tokens, error) {
	size, err := statInput(path)
	if err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w: %w", path, apperrors.ErrInputAccess, err)
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, chunkSize), max(chunkSize, maxTokenSize))
	sc.Split(bufio.ScanWords)
	return &Tokens{file: f, scanner: sc, size: size}, nil
}

func (s *Tokens) Words() iter.Seq[string] {
	return func(yield func(string) bool) {
		if s.file == nil {
			return
		}
		for s.scanner.Scan() {
			word := tokenizer.Normalize(s.scanner.Bytes())
			if word == "" {
				continue
			}
			if !yield(word) {
				return
			}
		}
		s.err = s.scanner.Err()
	}
}

func (s *Tokens) Err() error {
	return s.err
}

func (s *Tokens) Size() int64 {
	return s.size
}

func (s *Tokens) Close() error {
	if s.file == nil {
		return nil
	}
	f := s.file
	s.file = nil
	return f.Close()
}
