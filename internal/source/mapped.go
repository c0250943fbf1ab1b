package source

import (
	"fmt"
	"iter"
	"log/slog"
	"math"
	"os"

	"github.com/akrylysov/pogreb/fs"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/logger"
)

// Mapped exposes the whole corpus as one read-only memory region, so files
// larger than memory are never copied.
type Mapped struct {
	path   string
	file   fs.File
	data   []byte
	size   int64
	logger *slog.Logger
}

// OpenMapped maps path read-only and asks the kernel for sequential
// read-ahead. A refused hint is logged and otherwise ignored.
func OpenMapped(path string) (*Mapped, error) {
	size, err := statInput(path)
	if err != nil {
		return nil, err
	}
	if uint64(size) > math.MaxInt {
		return nil, fmt.Errorf("mapping %s: %w: %d bytes exceeds the address space", path, apperrors.ErrInputAccess, size)
	}
	m := &Mapped{
		path:   path,
		size:   size,
		logger: logger.WithComponent("source").With("strategy", StrategyMapped, "path", path),
	}
	if size == 0 {
		return m, nil
	}

	f, err := fs.OSMMap.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w: %w", path, apperrors.ErrInputAccess, err)
	}
	data, err := f.Slice(0, size)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mapping %s: %w: %w", path, apperrors.ErrInputAccess, err)
	}
	m.file = f
	m.data = data
	if err := adviseSequential(data); err != nil {
		m.logger.Warn("failed to set access hints", "error", err)
	}
	m.logger.Debug("corpus mapped", "bytes", size)
	return m, nil
}

func (m *Mapped) Words() iter.Seq[string] {
	return tokenizer.Words(m.data)
}

func (m *Mapped) Err() error {
	return nil
}

func (m *Mapped) Size() int64 {
	return m.size
}

// Close unmaps the region. The slice returned by Bytes must not be used
// afterwards.
func (m *Mapped) Close() error {
	m.data = nil
	if m.file == nil {
		return nil
	}
	f := m.file
	m.file = nil
	return f.Close()
}

// Bytes returns the mapped region. It is valid until Close.
func (m *Mapped) Bytes() []byte {
	return m.data
}
