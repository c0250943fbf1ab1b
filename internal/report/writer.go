// Package report serialises ranked reports. The canonical form is one
// "<word> <count>\n" line per entry in rank order, with no header or footer.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

// StdoutPath makes WriteFile write to standard output.
const StdoutPath = "-"

// Write encodes r to w in the canonical line format.
func Write(w io.Writer, r ranker.Report) error {
	bw := bufio.NewWriterSize(w, 64*1024)
	var num []byte
	for _, e := range r {
		bw.WriteString(e.Word)
		bw.WriteByte(' ')
		num = strconv.AppendUint(num[:0], e.Count, 10)
		bw.Write(num)
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing report line for %q: %w", e.Word, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing report: %w", err)
	}
	return nil
}

// Line formats a single entry without the trailing newline.
func Line(word string, count uint64) string {
	return word + " " + strconv.FormatUint(count, 10)
}

// defaultMode applies to new report files. A replaced file keeps its mode.
const defaultMode os.FileMode = 0o644

// WriteFile atomically replaces path with the encoded report. The report is
// written to a temporary file in the same directory, synced and renamed, so a
// failure never leaves a partial or empty file at path.
func WriteFile(path string, r ranker.Report) (err error) {
	if path == StdoutPath {
		if err := Write(os.Stdout, r); err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrOutput, err)
		}
		return nil
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp report file in %s: %w: %w", dir, apperrors.ErrOutput, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := Write(tmp, r); err != nil {
		return fmt.Errorf("writing report %s: %w: %w", path, apperrors.ErrOutput, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing report %s: %w: %w", path, apperrors.ErrOutput, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing report %s: %w: %w", path, apperrors.ErrOutput, err)
	}
	mode := defaultMode
	if info, statErr := os.Stat(path); statErr == nil && info.Mode().IsRegular() {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("setting report permissions %s: %w: %w", path, apperrors.ErrOutput, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming report into %s: %w: %w", path, apperrors.ErrOutput, err)
	}
	return nil
}
