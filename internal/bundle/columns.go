package bundle

import (
	"fmt"

	"github.com/banshee-data/matcha/internal/endpoint"
	"github.com/banshee-data/matcha/internal/matching"
)

// Column names, matching the attribute names of the entities.
const (
	colID            = "id"
	colImageID       = "image_id"
	colInteractionID = "interaction_id"
	colStartX        = "start_x"
	colStartY        = "start_y"
	colStartZ        = "start_z"
	colEndX          = "end_x"
	colEndY          = "end_y"
	colEndZ          = "end_z"
	colPoints        = "points"
	colDepositions   = "depositions"

	colTotalPE   = "total_pe"
	colT0Sec     = "t0_sec"
	colT0Ns      = "t0_ns"
	colT1Ns      = "t1_ns"
	colPositionX = "position_x"
	colPositionY = "position_y"
	colPositionZ = "position_z"
	colErrorX    = "error_x"
	colErrorY    = "error_y"
	colErrorZ    = "error_z"
	colPlane     = "plane"
	colTagger    = "tagger"

	colTrack  = "track"
	colCRTHit = "crthit"
	colDOCA   = "distance_of_closest_approach"
)

func tracksToColumns(tracks []*matching.Track) map[string]Column {
	n := len(tracks)
	id, image, inter := make([]int64, n), make([]int64, n), make([]int64, n)
	sx, sy, sz := make([]float64, n), make([]float64, n), make([]float64, n)
	ex, ey, ez := make([]float64, n), make([]float64, n), make([]float64, n)
	points := make([][]float64, n)
	deps := make([][]float64, n)

	for i, t := range tracks {
		id[i], image[i], inter[i] = t.ID, t.ImageID, t.InteractionID
		sx[i], sy[i], sz[i] = t.Start.X, t.Start.Y, t.Start.Z
		ex[i], ey[i], ez[i] = t.End.X, t.End.Y, t.End.Z
		points[i] = flattenPoints(t.Points())
		deps[i] = t.Depositions()
	}

	return map[string]Column{
		colID:            {Int64: id},
		colImageID:       {Int64: image},
		colInteractionID: {Int64: inter},
		colStartX:        {Float64: sx},
		colStartY:        {Float64: sy},
		colStartZ:        {Float64: sz},
		colEndX:          {Float64: ex},
		colEndY:          {Float64: ey},
		colEndZ:          {Float64: ez},
		colPoints:        {Float64Arrays: points},
		colDepositions:   {Float64Arrays: deps},
	}
}

func tracksFromBundle(b *Bundle) ([]*matching.Track, error) {
	if b.Kind != KindTracks {
		return nil, fmt.Errorf("%w: expected %s bundle, got %s", ErrMalformedBundle, KindTracks, b.Kind)
	}
	ints := map[string][]int64{}
	for _, name := range []string{colID, colImageID, colInteractionID} {
		v, err := b.int64s(name)
		if err != nil {
			return nil, err
		}
		ints[name] = v
	}
	floats := map[string][]float64{}
	for _, name := range []string{colStartX, colStartY, colStartZ, colEndX, colEndY, colEndZ} {
		v, err := b.float64s(name)
		if err != nil {
			return nil, err
		}
		floats[name] = v
	}
	points, err := b.float64Arrays(colPoints)
	if err != nil {
		return nil, err
	}
	deps, err := b.float64Arrays(colDepositions)
	if err != nil {
		return nil, err
	}

	tracks := make([]*matching.Track, b.Rows)
	for i := range tracks {
		pts, err := unflattenPoints(points[i])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedBundle, i, err)
		}
		t, err := matching.NewTrack(ints[colID][i], pts, deps[i])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedBundle, i, err)
		}
		t.ImageID = ints[colImageID][i]
		t.InteractionID = ints[colInteractionID][i]
		t.Start = endpoint.Point{X: floats[colStartX][i], Y: floats[colStartY][i], Z: floats[colStartZ][i]}
		t.End = endpoint.Point{X: floats[colEndX][i], Y: floats[colEndY][i], Z: floats[colEndZ][i]}
		tracks[i] = t
	}
	return tracks, nil
}

func crtHitsToColumns(hits []matching.CRTHit) map[string]Column {
	n := len(hits)
	id, t0s, plane := make([]int64, n), make([]int64, n), make([]int64, n)
	pe, t0ns, t1ns := make([]float64, n), make([]float64, n), make([]float64, n)
	px, py, pz := make([]float64, n), make([]float64, n), make([]float64, n)
	ex, ey, ez := make([]float64, n), make([]float64, n), make([]float64, n)
	tagger := make([]string, n)

	for i, h := range hits {
		id[i], t0s[i], plane[i] = h.ID, h.T0Sec, h.Plane
		pe[i], t0ns[i], t1ns[i] = h.TotalPE, h.T0Ns, h.T1Ns
		px[i], py[i], pz[i] = h.Position.X, h.Position.Y, h.Position.Z
		ex[i], ey[i], ez[i] = h.Error.X, h.Error.Y, h.Error.Z
		tagger[i] = h.Tagger
	}

	return map[string]Column{
		colID:        {Int64: id},
		colTotalPE:   {Float64: pe},
		colT0Sec:     {Int64: t0s},
		colT0Ns:      {Float64: t0ns},
		colT1Ns:      {Float64: t1ns},
		colPositionX: {Float64: px},
		colPositionY: {Float64: py},
		colPositionZ: {Float64: pz},
		colErrorX:    {Float64: ex},
		colErrorY:    {Float64: ey},
		colErrorZ:    {Float64: ez},
		colPlane:     {Int64: plane},
		colTagger:    {String: tagger},
	}
}

func crtHitsFromBundle(b *Bundle) ([]matching.CRTHit, error) {
	if b.Kind != KindCRTHits {
		return nil, fmt.Errorf("%w: expected %s bundle, got %s", ErrMalformedBundle, KindCRTHits, b.Kind)
	}
	ints := map[string][]int64{}
	for _, name := range []string{colID, colT0Sec, colPlane} {
		v, err := b.int64s(name)
		if err != nil {
			return nil, err
		}
		ints[name] = v
	}
	floats := map[string][]float64{}
	for _, name := range []string{colTotalPE, colT0Ns, colT1Ns, colPositionX, colPositionY, colPositionZ, colErrorX, colErrorY, colErrorZ} {
		v, err := b.float64s(name)
		if err != nil {
			return nil, err
		}
		floats[name] = v
	}
	tagger, err := b.strings(colTagger)
	if err != nil {
		return nil, err
	}

	hits := make([]matching.CRTHit, b.Rows)
	for i := range hits {
		hits[i] = matching.CRTHit{
			ID:       ints[colID][i],
			TotalPE:  floats[colTotalPE][i],
			T0Sec:    ints[colT0Sec][i],
			T0Ns:     floats[colT0Ns][i],
			T1Ns:     floats[colT1Ns][i],
			Position: endpoint.Point{X: floats[colPositionX][i], Y: floats[colPositionY][i], Z: floats[colPositionZ][i]},
			Error:    endpoint.Point{X: floats[colErrorX][i], Y: floats[colErrorY][i], Z: floats[colErrorZ][i]},
			Plane:    ints[colPlane][i],
			Tagger:   tagger[i],
		}
	}
	return hits, nil
}

func matchCandidatesToColumns(mcs []matching.MatchCandidate) map[string]Column {
	n := len(mcs)
	track, hit := make([]int64, n), make([]int64, n)
	doca := make([]float64, n)
	for i, mc := range mcs {
		track[i], hit[i], doca[i] = mc.TrackID, mc.CRTHitID, mc.DistanceOfClosestApproach
	}
	return map[string]Column{
		colTrack:  {Int64: track},
		colCRTHit: {Int64: hit},
		colDOCA:   {Float64: doca},
	}
}

func matchCandidatesFromBundle(b *Bundle) ([]matching.MatchCandidate, error) {
	if b.Kind != KindMatchCandidates {
		return nil, fmt.Errorf("%w: expected %s bundle, got %s", ErrMalformedBundle, KindMatchCandidates, b.Kind)
	}
	track, err := b.int64s(colTrack)
	if err != nil {
		return nil, err
	}
	hit, err := b.int64s(colCRTHit)
	if err != nil {
		return nil, err
	}
	doca, err := b.float64s(colDOCA)
	if err != nil {
		return nil, err
	}

	mcs := make([]matching.MatchCandidate, b.Rows)
	for i := range mcs {
		mc, err := matching.NewMatchCandidate(track[i], hit[i], doca[i])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedBundle, i, err)
		}
		mcs[i] = mc
	}
	return mcs, nil
}

func flattenPoints(pts []endpoint.Point) []float64 {
	flat := make([]float64, 0, 3*len(pts))
	for _, p := range pts {
		flat = append(flat, p.X, p.Y, p.Z)
	}
	return flat
}

func unflattenPoints(flat []float64) ([]endpoint.Point, error) {
	if len(flat)%3 != 0 {
		return nil, fmt.Errorf("point array length %d is not a multiple of 3", len(flat))
	}
	pts := make([]endpoint.Point, len(flat)/3)
	for i := range pts {
		pts[i] = endpoint.Point{X: flat[3*i], Y: flat[3*i+1], Z: flat[3*i+2]}
	}
	return pts, nil
}
