package endpoint

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateInput is returned when principal axes cannot be computed:
// fewer than two points, or all points coincident.
var ErrDegenerateInput = errors.New("degenerate input")

// ErrInvalidCloud is returned by NewPointCloud for malformed inputs.
var ErrInvalidCloud = errors.New("invalid point cloud")

// Point is a position in detector coordinates (centimetres upstream).
type Point struct {
	X, Y, Z float64
}

// Vec returns p as a gonum r3 vector.
func (p Point) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	return r3.Norm(r3.Sub(p.Vec(), q.Vec()))
}

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// PointCloud pairs each point with its charge deposition. A PointCloud is
// immutable once built; NewPointCloud copies its inputs.
type PointCloud struct {
	points      []Point
	depositions []float64
}

// NewPointCloud validates and copies points and depositions. Both slices
// must be non-empty and of equal length, every coordinate finite and every
// deposition finite and non-negative.
func NewPointCloud(points []Point, depositions []float64) (PointCloud, error) {
	if err := ValidateCloud(points, depositions); err != nil {
		return PointCloud{}, err
	}
	c := PointCloud{
		points:      make([]Point, len(points)),
		depositions: make([]float64, len(depositions)),
	}
	copy(c.points, points)
	copy(c.depositions, depositions)
	return c, nil
}

// ValidateCloud reports whether points and depositions form a valid cloud
// without copying them.
func ValidateCloud(points []Point, depositions []float64) error {
	if len(points) == 0 {
		return fmt.Errorf("%w: no points", ErrInvalidCloud)
	}
	if len(points) != len(depositions) {
		return fmt.Errorf("%w: %d points but %d depositions", ErrInvalidCloud, len(points), len(depositions))
	}
	for i, p := range points {
		if !p.finite() {
			return fmt.Errorf("%w: point %d is not finite: %+v", ErrInvalidCloud, i, p)
		}
	}
	for i, d := range depositions {
		if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
			return fmt.Errorf("%w: deposition %d must be finite and non-negative, got %v", ErrInvalidCloud, i, d)
		}
	}
	return nil
}

// Len returns the number of points in the cloud.
func (c PointCloud) Len() int { return len(c.points) }

// Point returns the i-th point.
func (c PointCloud) Point(i int) Point { return c.points[i] }

// Deposition returns the i-th deposition.
func (c PointCloud) Deposition(i int) float64 { return c.depositions[i] }

// Points returns a copy of the cloud's points.
func (c PointCloud) Points() []Point {
	out := make([]Point, len(c.points))
	copy(out, c.points)
	return out
}

// Depositions returns a copy of the cloud's depositions.
func (c PointCloud) Depositions() []float64 {
	out := make([]float64, len(c.depositions))
	copy(out, c.depositions)
	return out
}

// EndpointPair is the ordered result of endpoint finding. End is the
// higher-density extreme, taken to be where the particle stopped.
type EndpointPair struct {
	Start Point
	End   Point
}
