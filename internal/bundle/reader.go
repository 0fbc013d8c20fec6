package bundle

import (
	"fmt"

	"github.com/banshee-data/matcha/internal/fsutil"
	"github.com/banshee-data/matcha/internal/matching"
)

// Reader loads bundles written by Writer.
type Reader struct {
	FS fsutil.FileSystem
}

// NewReader returns a Reader on the OS filesystem.
func NewReader() *Reader {
	return &Reader{FS: fsutil.OSFileSystem{}}
}

// ReadBundle reads and decodes the bundle at path.
func (r *Reader) ReadBundle(path string) (*Bundle, error) {
	blob, err := r.FS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	b, err := Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// ReadTracks reads a tracks bundle.
func (r *Reader) ReadTracks(path string) ([]*matching.Track, error) {
	b, err := r.ReadBundle(path)
	if err != nil {
		return nil, err
	}
	return tracksFromBundle(b)
}

// ReadCRTHits reads a CRT hit bundle.
func (r *Reader) ReadCRTHits(path string) ([]matching.CRTHit, error) {
	b, err := r.ReadBundle(path)
	if err != nil {
		return nil, err
	}
	return crtHitsFromBundle(b)
}

// ReadMatchCandidates reads a match candidate bundle.
func (r *Reader) ReadMatchCandidates(path string) ([]matching.MatchCandidate, error) {
	b, err := r.ReadBundle(path)
	if err != nil {
		return nil, err
	}
	return matchCandidatesFromBundle(b)
}
