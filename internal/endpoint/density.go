package endpoint

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultRadius is the default neighbourhood radius, in the same unit
	// as the point coordinates.
	DefaultRadius = 20.0
	// DefaultMinRefineNeighbours is the neighbourhood size that must be
	// exceeded before a candidate is refined by a local projection.
	DefaultMinRefineNeighbours = 10
)

// DensityEstimator scores a candidate endpoint by the charge deposited
// within Radius of it.
type DensityEstimator struct {
	Radius              float64
	MinRefineNeighbours int
}

// Density is the outcome of scoring one candidate.
type Density struct {
	// Index is the cloud index of the (possibly refined) candidate.
	Index int
	// Seed is the cloud index the estimator started from.
	Seed      int
	Candidate Point
	// Refined is true when the neighbourhood was large enough for the
	// local projection to run. Index may still equal Seed.
	Refined    bool
	Neighbours int
	Score      float64
}

// Validate checks the estimator parameters.
func (e DensityEstimator) Validate() error {
	if math.IsNaN(e.Radius) || math.IsInf(e.Radius, 0) || e.Radius <= 0 {
		return fmt.Errorf("radius must be positive and finite, got %v", e.Radius)
	}
	if e.MinRefineNeighbours < 1 {
		return fmt.Errorf("min refine neighbours must be at least 1, got %d", e.MinRefineNeighbours)
	}
	return nil
}

// Estimate scores the cloud point at seed.
//
// Points strictly closer than Radius form the neighbourhood. When it holds
// more than MinRefineNeighbours points, the neighbourhood is projected on
// its own principal axis and the candidate snaps to whichever local
// extreme is closer to the seed; the neighbourhood is then rebuilt around
// the refined candidate. The score is the summed deposition of the final
// neighbourhood.
func (e DensityEstimator) Estimate(cloud PointCloud, seed int) Density {
	d := Density{
		Index:     seed,
		Seed:      seed,
		Candidate: cloud.Point(seed),
	}

	mask := e.neighbourhood(cloud, d.Candidate)
	if len(mask) > e.MinRefineNeighbours {
		if idx, ok := e.refine(cloud, mask, d.Candidate); ok {
			d.Refined = true
			d.Index = idx
			d.Candidate = cloud.Point(idx)
			mask = e.neighbourhood(cloud, d.Candidate)
		}
	}

	deps := make([]float64, len(mask))
	for i, idx := range mask {
		deps[i] = cloud.Deposition(idx)
	}
	d.Neighbours = len(mask)
	d.Score = floats.Sum(deps)
	return d
}

// neighbourhood returns the cloud indices within Radius of c, in cloud order.
func (e DensityEstimator) neighbourhood(cloud PointCloud, c Point) []int {
	var mask []int
	for i := 0; i < cloud.Len(); i++ {
		if c.DistanceTo(cloud.Point(i)) < e.Radius {
			mask = append(mask, i)
		}
	}
	return mask
}

// refine projects the neighbourhood on its local principal axis and returns
// the cloud index of the local extreme nearest to c. The minimum-projection
// extreme wins a distance tie. ok is false when the neighbourhood is a
// single repeated position; every local extreme would then be c itself.
func (e DensityEstimator) refine(cloud PointCloud, mask []int, c Point) (idx int, ok bool) {
	sub := make([]Point, len(mask))
	for i, m := range mask {
		sub[i] = cloud.Point(m)
	}
	proj, err := Project(sub)
	if err != nil {
		return 0, false
	}
	lo, hi := SelectCandidates(proj.Scores)
	if c.DistanceTo(sub[hi]) < c.DistanceTo(sub[lo]) {
		return mask[hi], true
	}
	return mask[lo], true
}
