package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformCloud(t *testing.T, pts []Point) PointCloud {
	t.Helper()
	deps := make([]float64, len(pts))
	for i := range deps {
		deps[i] = 1
	}
	c, err := NewPointCloud(pts, deps)
	require.NoError(t, err)
	return c
}

func TestDensityEstimator_Estimate(t *testing.T) {
	t.Parallel()
	line := uniformCloud(t, linePoints(21, Point{X: 1}))

	tests := []struct {
		name        string
		radius      float64
		seed        int
		wantIndex   int
		wantRefined bool
		wantCount   int
	}{
		{"small neighbourhood keeps seed", 5, 2, 2, false, 7},
		{"exactly ten neighbours keeps seed", 10, 0, 0, false, 10},
		{"eleven neighbours refines in place", 10.5, 0, 0, true, 11},
		{"refinement snaps to local extreme", 10, 2, 0, true, 10},
		{"refinement from the far end", 10, 18, 20, true, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := DensityEstimator{Radius: tt.radius, MinRefineNeighbours: DefaultMinRefineNeighbours}
			d := est.Estimate(line, tt.seed)

			assert.Equal(t, tt.seed, d.Seed)
			assert.Equal(t, tt.wantIndex, d.Index)
			assert.Equal(t, tt.wantRefined, d.Refined)
			assert.Equal(t, tt.wantCount, d.Neighbours)
			assert.Equal(t, float64(tt.wantCount), d.Score)
			assert.Equal(t, line.Point(tt.wantIndex), d.Candidate)
		})
	}
}

func TestDensityEstimator_RadiusIsStrict(t *testing.T) {
	t.Parallel()
	c := uniformCloud(t, []Point{{X: 0}, {X: 1}, {X: 2}})
	d := DensityEstimator{Radius: 1, MinRefineNeighbours: 10}.Estimate(c, 0)
	assert.Equal(t, 1, d.Neighbours, "a point exactly at the radius is outside")
}

func TestDensityEstimator_SumsDepositions(t *testing.T) {
	t.Parallel()
	c, err := NewPointCloud(
		[]Point{{X: 0}, {X: 1}, {X: 2}, {X: 50}},
		[]float64{0.5, 1.5, 2, 100},
	)
	require.NoError(t, err)
	d := DensityEstimator{Radius: 20, MinRefineNeighbours: 10}.Estimate(c, 0)
	assert.Equal(t, 3, d.Neighbours)
	assert.InDelta(t, 4.0, d.Score, 1e-12)
}

func TestDensityEstimator_CoincidentNeighbourhoodSkipsRefinement(t *testing.T) {
	t.Parallel()
	pts := make([]Point, 0, 13)
	for i := 0; i < 12; i++ {
		pts = append(pts, Point{X: 3, Y: 3, Z: 3})
	}
	pts = append(pts, Point{X: 40})
	c := uniformCloud(t, pts)

	d := DensityEstimator{Radius: 1, MinRefineNeighbours: 10}.Estimate(c, 0)
	assert.False(t, d.Refined)
	assert.Equal(t, 0, d.Index)
	assert.Equal(t, 12, d.Neighbours)
}

func TestDensityEstimator_Validate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, DensityEstimator{Radius: 20, MinRefineNeighbours: 10}.Validate())
	assert.Error(t, DensityEstimator{Radius: 0, MinRefineNeighbours: 10}.Validate())
	assert.Error(t, DensityEstimator{Radius: -3, MinRefineNeighbours: 10}.Validate())
	assert.Error(t, DensityEstimator{Radius: 5, MinRefineNeighbours: 0}.Validate())
}

func TestOrder(t *testing.T) {
	t.Parallel()
	a := Density{Index: 1, Score: 3}
	b := Density{Index: 2, Score: 7}

	start, end := Order(a, b)
	assert.Equal(t, 1, start.Index)
	assert.Equal(t, 2, end.Index)

	start, end = Order(b, a)
	assert.Equal(t, 1, start.Index)
	assert.Equal(t, 2, end.Index)

	tie := Density{Index: 9, Score: 3}
	start, end = Order(a, tie)
	assert.Equal(t, 1, start.Index, "ties keep selection order")
	assert.Equal(t, 9, end.Index)
}
