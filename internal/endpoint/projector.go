package endpoint

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// degenerateVarianceEpsilon is the relative threshold on the leading
// covariance eigenvalue. Below it the cloud is treated as a single point
// and the principal direction is undefined.
const degenerateVarianceEpsilon = 1e-12

// Projection holds the principal-axis decomposition of a point set.
type Projection struct {
	Mean Point
	// Axes are the two leading principal directions, unit length, sign
	// fixed by canonicalAxis.
	Axes [2]r3.Vec
	// Variance along each of Axes.
	Variance [2]float64
	// Scores is the coordinate of every input point along Axes[0].
	Scores []float64
}

// Project computes the two leading principal directions of points and
// each point's coordinate along the first one.
//
// Algorithm:
//  1. Build the n x 3 observation matrix and its covariance
//  2. Eigen-decompose the symmetric covariance (eigenvalues ascending)
//  3. Take the two largest eigenvectors and fix their sign
//  4. Score each point as dot(p - mean, axis0)
//
// Eigenvector signs are arbitrary, so each axis is oriented so that its
// largest-magnitude component is positive. This makes repeated calls, and
// calls on a permuted copy of the cloud, agree on which end is "min".
func Project(points []Point) (Projection, error) {
	n := len(points)
	if n < 2 {
		return Projection{}, fmt.Errorf("%w: principal axes need at least 2 points, got %d", ErrDegenerateInput, n)
	}

	data := mat.NewDense(n, 3, nil)
	var sum r3.Vec
	for i, p := range points {
		data.SetRow(i, []float64{p.X, p.Y, p.Z})
		sum = r3.Add(sum, p.Vec())
	}
	nf := float64(n)
	mean := r3.Vec{X: sum.X / nf, Y: sum.Y / nf, Z: sum.Z / nf}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	var eig mat.EigenSym
	if !eig.Factorize(&cov, true) {
		return Projection{}, fmt.Errorf("%w: covariance eigen-decomposition did not converge", ErrDegenerateInput)
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	leading := values[2]
	if !(leading > degenerateVarianceEpsilon*(1+r3.Norm2(mean))) {
		return Projection{}, fmt.Errorf("%w: all %d points coincide (leading variance %g)", ErrDegenerateInput, n, leading)
	}

	proj := Projection{
		Mean:     Point{X: mean.X, Y: mean.Y, Z: mean.Z},
		Variance: [2]float64{values[2], math.Max(values[1], 0)},
		Scores:   make([]float64, n),
	}
	for k, col := range [2]int{2, 1} {
		proj.Axes[k] = canonicalAxis(r3.Vec{
			X: vectors.At(0, col),
			Y: vectors.At(1, col),
			Z: vectors.At(2, col),
		})
	}

	axis := proj.Axes[0]
	for i, p := range points {
		proj.Scores[i] = r3.Dot(r3.Sub(p.Vec(), mean), axis)
	}
	return proj, nil
}

// canonicalAxis flips v so that its largest-magnitude component is
// positive. The first of equal-magnitude components decides.
func canonicalAxis(v r3.Vec) r3.Vec {
	pivot := v.X
	if math.Abs(v.Y) > math.Abs(pivot) {
		pivot = v.Y
	}
	if math.Abs(v.Z) > math.Abs(pivot) {
		pivot = v.Z
	}
	if pivot < 0 {
		return r3.Scale(-1, v)
	}
	return v
}
