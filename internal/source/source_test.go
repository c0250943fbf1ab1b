package source

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readAll(t *testing.T, path string, strategy Strategy, chunkSize int) []string {
	t.Helper()
	var words []string
	err := With(path, strategy, chunkSize, func(src Source) error {
		words = tokenizer.Collect(src.Words())
		return nil
	})
	if err != nil {
		t.Fatalf("With(%s): %v", strategy, err)
	}
	return words
}

func TestStrategiesAgree(t *testing.T) {
	content := strings.Repeat("The cat sat on the mat. THE CAT RAN.\nsupercalifragilistic ", 200) + "end"
	path := writeCorpus(t, content)
	want := tokenizer.Collect(tokenizer.Words([]byte(content)))

	t.Run("mmap", func(t *testing.T) {
		if got := readAll(t, path, StrategyMapped, 0); !slices.Equal(got, want) {
			t.Errorf("mapped words differ: got %d words, want %d", len(got), len(want))
		}
	})
	for _, chunk := range []int{1, 3, 7, 16, 4096} {
		t.Run("stream", func(t *testing.T) {
			if got := readAll(t, path, StrategyStream, chunk); !slices.Equal(got, want) {
				t.Errorf("chunk %d: stream words differ: got %d words, want %d", chunk, len(got), len(want))
			}
		})
	}
}

func TestTokensAgreeOnWhitespaceCorpus(t *testing.T) {
	content := strings.Repeat("The cat sat on the mat. THE CAT RAN.\n\tsupercalifragilistic  ", 200) + "end"
	path := writeCorpus(t, content)
	want := readAll(t, path, StrategyMapped, 0)
	for _, chunk := range []int{16, 4096} {
		if got := readAll(t, path, StrategyTokens, chunk); !slices.Equal(got, want) {
			t.Errorf("chunk %d: token words differ: got %d words, want %d", chunk, len(got), len(want))
		}
	}
}

func TestTokensNormalizeWholeToken(t *testing.T) {
	path := writeCorpus(t, "cat.sat  ### Don't 42 END")
	got := readAll(t, path, StrategyTokens, 0)
	want := []string{"catsat", "dont", "end"}
	if !slices.Equal(got, want) {
		t.Errorf("words = %q, want %q", got, want)
	}
}

func TestEmptyFile(t *testing.T) {
	path := writeCorpus(t, "")
	for _, strategy := range []Strategy{StrategyMapped, StrategyStream, StrategyTokens} {
		if got := readAll(t, path, strategy, 0); len(got) != 0 {
			t.Errorf("%s: got %q from empty file", strategy, got)
		}
	}
}

func TestMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")
	for _, strategy := range []Strategy{StrategyMapped, StrategyStream, StrategyTokens} {
		called := false
		err := With(path, strategy, 0, func(Source) error {
			called = true
			return nil
		})
		if !errors.Is(err, apperrors.ErrInputAccess) {
			t.Errorf("%s: err = %v, want ErrInputAccess", strategy, err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s: err = %v, want os.ErrNotExist in chain", strategy, err)
		}
		if !strings.Contains(err.Error(), path) {
			t.Errorf("%s: error %q does not name the path", strategy, err)
		}
		if called {
			t.Errorf("%s: callback ran for a missing file", strategy)
		}
	}
}

func TestDirectoryRejected(t *testing.T) {
	_, err := Open(t.TempDir(), StrategyMapped, 0)
	if !errors.Is(err, apperrors.ErrInputAccess) {
		t.Errorf("err = %v, want ErrInputAccess", err)
	}
}

func TestWithClosesOnError(t *testing.T) {
	path := writeCorpus(t, "alpha beta")
	sentinel := errors.New("boom")
	var opened Source
	err := With(path, StrategyStream, 0, func(src Source) error {
		opened = src
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
	if s := opened.(*Stream); s.file != nil {
		t.Error("stream left open after error")
	}
}

func TestWithClosesOnPanic(t *testing.T) {
	path := writeCorpus(t, "alpha beta")
	var opened *Mapped
	func() {
		defer func() { _ = recover() }()
		_ = With(path, StrategyMapped, 0, func(src Source) error {
			opened = src.(*Mapped)
			panic("ingestion failed")
		})
	}()
	if opened == nil || opened.file != nil || opened.Bytes() != nil {
		t.Error("mapping not released after panic")
	}
}

func TestMappedSize(t *testing.T) {
	path := writeCorpus(t, "twelve bytes")
	m, err := OpenMapped(path)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()
	if m.Size() != 12 || len(m.Bytes()) != 12 {
		t.Errorf("Size = %d, len = %d", m.Size(), len(m.Bytes()))
	}
	if err := m.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy("stream"); err != nil || s != StrategyStream {
		t.Errorf("ParseStrategy(stream) = %q, %v", s, err)
	}
	if s, err := ParseStrategy("tokens"); err != nil || s != StrategyTokens {
		t.Errorf("ParseStrategy(tokens) = %q, %v", s, err)
	}
	if _, err := ParseStrategy("tape"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("err = %v", err)
	}
}
