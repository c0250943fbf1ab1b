package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

// Stream reads the corpus incrementally in chunks. Words spanning a chunk
// boundary are stitched by the streaming tokenizer.
type Stream struct {
	path      string
	file      *os.File
	reader    *bufio.Reader
	chunkSize int
	size      int64
	err       error
}

func OpenStream(path string, chunkSize int) (*Stream, error) {
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
	return &Stream{
		path:      path,
		file:      f,
		reader:    bufio.NewReaderSize(f, chunkSize),
		chunkSize: chunkSize,
		size:      size,
	}, nil
}

func (s *Stream) Words() iter.Seq[string] {
	return func(yield func(string) bool) {
		if s.file == nil {
			return
		}
		var tok tokenizer.Tokenizer
		chunk := make([]byte, s.chunkSize)
		for {
			n, err := s.reader.Read(chunk)
			if n > 0 && !tok.Feed(chunk[:n], yield) {
				return
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				s.err = err
				return
			}
		}
		tok.Flush(yield)
	}
}

func (s *Stream) Err() error {
	return s.err
}

func (s *Stream) Size() int64 {
	return s.size
}

func (s *Stream) Close() error {
	if s.file == nil {
		return nil
	}
	f := s.file
	s.file = nil
	return f.Close()
}
