package matching

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMatch is returned for malformed match candidates.
var ErrInvalidMatch = errors.New("invalid match candidate")

// MatchCandidate pairs a track with a CRT hit it may have crossed.
type MatchCandidate struct {
	TrackID                   int64
	CRTHitID                  int64
	DistanceOfClosestApproach float64
}

// NewMatchCandidate validates doca and returns the pairing.
func NewMatchCandidate(trackID, hitID int64, doca float64) (MatchCandidate, error) {
	if math.IsNaN(doca) || math.IsInf(doca, 0) || doca < 0 {
		return MatchCandidate{}, fmt.Errorf("%w: distance of closest approach must be finite and non-negative, got %v", ErrInvalidMatch, doca)
	}
	return MatchCandidate{TrackID: trackID, CRTHitID: hitID, DistanceOfClosestApproach: doca}, nil
}

// DistanceOfClosestApproach returns the smallest distance between the hit
// position and any point of the track.
func DistanceOfClosestApproach(t *Track, h CRTHit) (float64, error) {
	if t.Len() == 0 {
		return 0, fmt.Errorf("%w: track %d has no points", ErrInvalidMatch, t.ID)
	}
	best := math.Inf(1)
	for _, p := range t.points {
		if d := p.DistanceTo(h.Position); d < best {
			best = d
		}
	}
	return best, nil
}

// Pair computes the DOCA between t and h and returns the candidate.
func Pair(t *Track, h CRTHit) (MatchCandidate, error) {
	doca, err := DistanceOfClosestApproach(t, h)
	if err != nil {
		return MatchCandidate{}, err
	}
	return NewMatchCandidate(t.ID, h.ID, doca)
}

// BestMatches pairs every track that has points with the hit of smallest
// DOCA. The earliest hit wins a tie. Tracks without points are skipped, and
// no hits yields no candidates.
func BestMatches(tracks []*Track, hits []CRTHit) ([]MatchCandidate, error) {
	var out []MatchCandidate
	if len(hits) == 0 {
		return out, nil
	}
	for _, t := range tracks {
		if t.Len() == 0 {
			continue
		}
		var best MatchCandidate
		for i, h := range hits {
			mc, err := Pair(t, h)
			if err != nil {
				return nil, err
			}
			if i == 0 || mc.DistanceOfClosestApproach < best.DistanceOfClosestApproach {
				best = mc
			}
		}
		out = append(out, best)
	}
	return out, nil
}
