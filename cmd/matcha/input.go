package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/matcha/internal/bundle"
	"github.com/banshee-data/matcha/internal/endpoint"
	"github.com/banshee-data/matcha/internal/matching"
)

// trackJSON is the JSON input layout of one track.
type trackJSON struct {
	ID            int64        `json:"id"`
	ImageID       int64        `json:"image_id"`
	InteractionID int64        `json:"interaction_id"`
	Points        [][3]float64 `json:"points"`
	Depositions   []float64    `json:"depositions"`
}

type crtHitJSON struct {
	ID       int64      `json:"id"`
	TotalPE  float64    `json:"total_pe"`
	T0Sec    int64      `json:"t0_sec"`
	T0Ns     float64    `json:"t0_ns"`
	T1Ns     float64    `json:"t1_ns"`
	Position [3]float64 `json:"position"`
	Error    [3]float64 `json:"error"`
	Plane    int64      `json:"plane"`
	Tagger   string     `json:"tagger"`
}

type matchJSON struct {
	Track  int64   `json:"track"`
	CRTHit int64   `json:"crthit"`
	DOCA   float64 `json:"distance_of_closest_approach"`
}

func point(v [3]float64) endpoint.Point {
	return endpoint.Point{X: v[0], Y: v[1], Z: v[2]}
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// loadTracks reads tracks from a .json file or a tracks bundle.
func loadTracks(path string) ([]*matching.Track, error) {
	switch filepath.Ext(path) {
	case ".bundle":
		return bundle.NewReader().ReadTracks(path)
	case ".json":
	default:
		return nil, fmt.Errorf("unsupported track input %q: want .json or .bundle", path)
	}

	var raw []trackJSON
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	tracks := make([]*matching.Track, 0, len(raw))
	for _, r := range raw {
		pts := make([]endpoint.Point, len(r.Points))
		for i, p := range r.Points {
			pts[i] = point(p)
		}
		t, err := matching.NewTrack(r.ID, pts, r.Depositions)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", r.ID, err)
		}
		t.ImageID = r.ImageID
		t.InteractionID = r.InteractionID
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// loadCRTHits reads CRT hits from a .json file or a CRT hit bundle.
func loadCRTHits(path string) ([]matching.CRTHit, error) {
	if filepath.Ext(path) == ".bundle" {
		return bundle.NewReader().ReadCRTHits(path)
	}
	var raw []crtHitJSON
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	hits := make([]matching.CRTHit, len(raw))
	for i, r := range raw {
		hits[i] = matching.CRTHit{
			ID:       r.ID,
			TotalPE:  r.TotalPE,
			T0Sec:    r.T0Sec,
			T0Ns:     r.T0Ns,
			T1Ns:     r.T1Ns,
			Position: point(r.Position),
			Error:    point(r.Error),
			Plane:    r.Plane,
			Tagger:   r.Tagger,
		}
		if err := hits[i].Validate(); err != nil {
			return nil, err
		}
	}
	return hits, nil
}

// loadMatches reads match candidates from a .json file or a match
// candidate bundle.
func loadMatches(path string) ([]matching.MatchCandidate, error) {
	if filepath.Ext(path) == ".bundle" {
		return bundle.NewReader().ReadMatchCandidates(path)
	}
	var raw []matchJSON
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	mcs := make([]matching.MatchCandidate, len(raw))
	for i, r := range raw {
		mc, err := matching.NewMatchCandidate(r.Track, r.CRTHit, r.DOCA)
		if err != nil {
			return nil, err
		}
		mcs[i] = mc
	}
	return mcs, nil
}
