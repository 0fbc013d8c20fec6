package bundle

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/matcha/internal/fsutil"
	"github.com/banshee-data/matcha/internal/matching"
	"github.com/banshee-data/matcha/internal/monitoring"
	"github.com/banshee-data/matcha/internal/timeutil"
	"github.com/google/uuid"
)

// Writer persists entity collections as bundles. All bundles written by one
// Writer share its RunID.
type Writer struct {
	FS    fsutil.FileSystem
	Clock timeutil.Clock
	// Getwd supplies the fallback directory when the requested output
	// directory does not exist.
	Getwd func() (string, error)
	RunID string
}

// NewWriter returns a Writer on the OS filesystem with a fresh run ID.
func NewWriter() *Writer {
	return &Writer{
		FS:    fsutil.OSFileSystem{},
		Clock: timeutil.RealClock{},
		Getwd: os.Getwd,
		RunID: uuid.NewString(),
	}
}

// WriteResult describes a WriteAll call.
type WriteResult struct {
	// Dir is the directory the bundles were written to.
	Dir string
	// Fallback is true when the requested directory was missing and Dir
	// is the working directory instead.
	Fallback bool
	Warnings []string
	// Files lists the bundles successfully written, in write order.
	Files []string
}

// WriteTracks writes the tracks bundle into dir and returns its path.
func (w *Writer) WriteTracks(dir string, tracks []*matching.Track) (string, error) {
	return w.write(dir, KindTracks, len(tracks), tracksToColumns(tracks))
}

// WriteCRTHits validates and writes the CRT hit bundle into dir.
func (w *Writer) WriteCRTHits(dir string, hits []matching.CRTHit) (string, error) {
	for _, h := range hits {
		if err := h.Validate(); err != nil {
			return "", err
		}
	}
	return w.write(dir, KindCRTHits, len(hits), crtHitsToColumns(hits))
}

// WriteMatchCandidates writes the match candidate bundle into dir. An empty
// collection is refused with ErrEmptyCollection.
func (w *Writer) WriteMatchCandidates(dir string, mcs []matching.MatchCandidate) (string, error) {
	if len(mcs) == 0 {
		return "", fmt.Errorf("%w: match candidates list is empty", ErrEmptyCollection)
	}
	return w.write(dir, KindMatchCandidates, len(mcs), matchCandidatesToColumns(mcs))
}

// WriteAll writes tracks, CRT hits and match candidates, in that order,
// into dir. A missing dir is replaced by the working directory with a
// warning. Bundles written before a failure stay on disk and are listed in
// the result.
func (w *Writer) WriteAll(dir string, tracks []*matching.Track, hits []matching.CRTHit, mcs []matching.MatchCandidate) (WriteResult, error) {
	var res WriteResult
	if !w.FS.DirExists(dir) {
		cwd, err := w.Getwd()
		if err != nil {
			return res, fmt.Errorf("output path %q does not exist and working directory is unavailable: %w", dir, err)
		}
		res.Warnings = append(res.Warnings,
			monitoring.Warnf("output path %q does not exist, defaulting to current directory %q", dir, cwd))
		res.Fallback = true
		dir = cwd
	}
	res.Dir = dir
	monitoring.Logf("saving matcha bundles to %s (run %s)", dir, w.RunID)

	path, err := w.WriteTracks(dir, tracks)
	if err != nil {
		return res, err
	}
	res.Files = append(res.Files, path)

	if path, err = w.WriteCRTHits(dir, hits); err != nil {
		return res, err
	}
	res.Files = append(res.Files, path)

	if path, err = w.WriteMatchCandidates(dir, mcs); err != nil {
		return res, err
	}
	res.Files = append(res.Files, path)

	monitoring.Logf("done saving %d bundles", len(res.Files))
	return res, nil
}

// write encodes the bundle and moves it into place via a temporary file so
// a failed write never leaves a truncated bundle behind.
func (w *Writer) write(dir string, kind Kind, rows int, cols map[string]Column) (string, error) {
	b := &Bundle{
		Kind:             kind,
		RunID:            w.RunID,
		CreatedUnixNanos: w.Clock.Now().UnixNano(),
		Rows:             rows,
		Columns:          cols,
	}
	blob, err := Encode(b)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s bundle: %w", kind, err)
	}

	path := filepath.Join(dir, kind.FileName())
	tmp := filepath.Join(dir, "."+kind.FileName()+".tmp")
	if err := w.FS.WriteFile(tmp, blob, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s bundle: %w", kind, err)
	}
	if err := w.FS.Rename(tmp, path); err != nil {
		_ = w.FS.Remove(tmp)
		return "", fmt.Errorf("failed to finalize %s bundle: %w", kind, err)
	}
	monitoring.Logf("wrote %s bundle: rows=%d size=%d bytes path=%s", kind, rows, len(blob), path)
	return path, nil
}
