package endpoint

import (
	"fmt"
)

// Config holds the endpoint finder parameters.
type Config struct {
	Radius              float64
	MinRefineNeighbours int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Radius:              DefaultRadius,
		MinRefineNeighbours: DefaultMinRefineNeighbours,
	}
}

// Result is the full outcome of one endpoint search.
type Result struct {
	Pair EndpointPair
	// Start and End carry the density diagnostics behind the labels.
	Start Density
	End   Density
	// Projection is the global principal-axis projection of the cloud.
	Projection Projection
}

// Finder locates track endpoints. It is stateless after construction and
// safe for concurrent use.
type Finder struct {
	estimator DensityEstimator
}

// NewFinder validates cfg and returns a Finder.
func NewFinder(cfg Config) (*Finder, error) {
	est := DensityEstimator{
		Radius:              cfg.Radius,
		MinRefineNeighbours: cfg.MinRefineNeighbours,
	}
	if err := est.Validate(); err != nil {
		return nil, fmt.Errorf("invalid endpoint config: %w", err)
	}
	return &Finder{estimator: est}, nil
}

// Config returns the parameters the Finder was built with.
func (f *Finder) Config() Config {
	return Config{
		Radius:              f.estimator.Radius,
		MinRefineNeighbours: f.estimator.MinRefineNeighbours,
	}
}

// Find returns the start and end of the track described by cloud.
func (f *Finder) Find(cloud PointCloud) (Result, error) {
	if cloud.Len() < 2 {
		return Result{}, fmt.Errorf("%w: endpoints need at least 2 points, got %d", ErrDegenerateInput, cloud.Len())
	}
	proj, err := Project(cloud.points)
	if err != nil {
		return Result{}, err
	}

	lo, hi := SelectCandidates(proj.Scores)
	start, end := Order(
		f.estimator.Estimate(cloud, lo),
		f.estimator.Estimate(cloud, hi),
	)
	return Result{
		Pair:       EndpointPair{Start: start.Candidate, End: end.Candidate},
		Start:      start,
		End:        end,
		Projection: proj,
	}, nil
}

// FindEndpoints is a convenience wrapper for a single track given as raw
// arrays. A radius of zero selects DefaultRadius.
func FindEndpoints(points []Point, depositions []float64, radius float64) (EndpointPair, error) {
	if len(points) < 2 {
		return EndpointPair{}, fmt.Errorf("%w: endpoints need at least 2 points, got %d", ErrDegenerateInput, len(points))
	}
	cfg := DefaultConfig()
	if radius != 0 {
		cfg.Radius = radius
	}
	f, err := NewFinder(cfg)
	if err != nil {
		return EndpointPair{}, err
	}
	cloud, err := NewPointCloud(points, depositions)
	if err != nil {
		return EndpointPair{}, err
	}
	res, err := f.Find(cloud)
	if err != nil {
		return EndpointPair{}, err
	}
	return res.Pair, nil
}
