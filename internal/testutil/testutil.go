// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math/rand"
	"testing"

	"github.com/banshee-data/matcha/internal/endpoint"
	"github.com/banshee-data/matcha/internal/monitoring"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertPointNear fails the test if got is further than tol from want.
func AssertPointNear(t testing.TB, got, want endpoint.Point, tol float64) {
	t.Helper()
	if d := got.DistanceTo(want); d > tol {
		t.Errorf("point = %+v, want %+v (distance %g > %g)", got, want, d, tol)
	}
}

// QuietLogs mutes the monitoring logger for the duration of the test.
func QuietLogs(t testing.TB) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })
}

// BraggTrack returns n points evenly spaced along a straight segment from
// start to end, with depositions rising linearly from 1 at start to n at
// end, the profile of a particle stopping at end.
func BraggTrack(n int, start, end endpoint.Point) ([]endpoint.Point, []float64) {
	points := make([]endpoint.Point, n)
	deps := make([]float64, n)
	for i := 0; i < n; i++ {
		f := 0.0
		if n > 1 {
			f = float64(i) / float64(n-1)
		}
		points[i] = endpoint.Point{
			X: start.X + f*(end.X-start.X),
			Y: start.Y + f*(end.Y-start.Y),
			Z: start.Z + f*(end.Z-start.Z),
		}
		deps[i] = float64(i + 1)
	}
	return points, deps
}

// NoisyBraggTrack is BraggTrack with Gaussian jitter of width sigma on every
// coordinate and returns the points in a shuffled order. The generator is
// seeded so fixtures are reproducible.
func NoisyBraggTrack(seed int64, n int, start, end endpoint.Point, sigma float64) ([]endpoint.Point, []float64) {
	rng := rand.New(rand.NewSource(seed))
	points, deps := BraggTrack(n, start, end)
	for i := range points {
		points[i].X += rng.NormFloat64() * sigma
		points[i].Y += rng.NormFloat64() * sigma
		points[i].Z += rng.NormFloat64() * sigma
	}
	rng.Shuffle(n, func(i, j int) {
		points[i], points[j] = points[j], points[i]
		deps[i], deps[j] = deps[j], deps[i]
	})
	return points, deps
}
