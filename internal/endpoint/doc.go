// Package endpoint locates the start and stopping (Bragg-peak) endpoints of
// a reconstructed TPC track.
//
// Pipeline: Project (principal-axis projection) -> SelectCandidates
// (extreme projections) -> DensityEstimator (local charge density, with
// optional refinement) -> Order (lower density is the start).
// Key types: Point, PointCloud, Finder, Result.
//
// Each call works on one track and holds no state between calls, so a
// Finder may be shared freely across goroutines. FindAll and FindEach run a
// batch of tracks on a bounded worker pool.
//
// The neighbourhood radius is compared directly against point
// coordinates. Whether it was meant in voxels or centimetres is not
// settled; callers must supply coordinates and radius in the same unit.
package endpoint
