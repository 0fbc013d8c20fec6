// Package matching holds the entities exchanged by CRT-TPC matching: TPC
// tracks, CRT hits and the candidate pairs between them.
package matching

import (
	"errors"
	"fmt"

	"github.com/banshee-data/matcha/internal/endpoint"
)

// ErrInvalidTrack is returned when a track's point cloud fails validation.
var ErrInvalidTrack = errors.New("invalid track")

// Track is a reconstructed TPC track, assumed to be a muon candidate.
// Points and depositions are kept private so every mutation is validated;
// the accessors hand out copies.
type Track struct {
	ID            int64
	ImageID       int64
	InteractionID int64
	// Start and End are filled by ComputeEndpoints, or by the caller.
	Start endpoint.Point
	End   endpoint.Point

	points      []endpoint.Point
	depositions []float64
}

// NewTrack builds a track that owns copies of points and depositions. Both
// may be empty; otherwise they must describe a valid point cloud.
func NewTrack(id int64, points []endpoint.Point, depositions []float64) (*Track, error) {
	t := &Track{ID: id}
	if err := t.SetCloud(points, depositions); err != nil {
		return nil, err
	}
	return t, nil
}

func validateTrackCloud(points []endpoint.Point, depositions []float64) error {
	if len(points) == 0 && len(depositions) == 0 {
		return nil
	}
	if err := endpoint.ValidateCloud(points, depositions); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTrack, err)
	}
	return nil
}

// SetCloud replaces points and depositions together.
func (t *Track) SetCloud(points []endpoint.Point, depositions []float64) error {
	if err := validateTrackCloud(points, depositions); err != nil {
		return err
	}
	t.points = append(make([]endpoint.Point, 0, len(points)), points...)
	t.depositions = append(make([]float64, 0, len(depositions)), depositions...)
	return nil
}

// SetPoints replaces the point positions. The count must match the current
// depositions.
func (t *Track) SetPoints(points []endpoint.Point) error {
	return t.SetCloud(points, t.depositions)
}

// SetDepositions replaces the depositions. The count must match the current
// points.
func (t *Track) SetDepositions(depositions []float64) error {
	return t.SetCloud(t.points, depositions)
}

// Points returns a copy of the track points.
func (t *Track) Points() []endpoint.Point {
	return append([]endpoint.Point(nil), t.points...)
}

// Depositions returns a copy of the per-point depositions.
func (t *Track) Depositions() []float64 {
	return append([]float64(nil), t.depositions...)
}

// Len returns the number of track points.
func (t *Track) Len() int { return len(t.points) }

// Cloud returns the track's points as an endpoint.PointCloud.
func (t *Track) Cloud() (endpoint.PointCloud, error) {
	c, err := endpoint.NewPointCloud(t.points, t.depositions)
	if err != nil {
		return endpoint.PointCloud{}, fmt.Errorf("track %d: %w", t.ID, err)
	}
	return c, nil
}

// ApplyEndpoints stores an endpoint pair on the track.
func (t *Track) ApplyEndpoints(pair endpoint.EndpointPair) {
	t.Start = pair.Start
	t.End = pair.End
}

// ComputeEndpoints runs f on the track and stores the resulting pair.
func (t *Track) ComputeEndpoints(f *endpoint.Finder) (endpoint.Result, error) {
	c, err := t.Cloud()
	if err != nil {
		return endpoint.Result{}, err
	}
	res, err := f.Find(c)
	if err != nil {
		return endpoint.Result{}, fmt.Errorf("track %d: %w", t.ID, err)
	}
	t.ApplyEndpoints(res.Pair)
	return res, nil
}
