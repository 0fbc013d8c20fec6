package matching

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/matcha/internal/endpoint"
)

// ErrInvalidHit is returned by CRTHit.Validate.
var ErrInvalidHit = errors.New("invalid CRT hit")

// CRTHit is a cosmic-ray-tagger panel measurement.
type CRTHit struct {
	ID      int64
	TotalPE float64 // photo-electrons summed over the strips in the hit
	T0Sec   int64
	T0Ns    float64
	T1Ns    float64
	// Position and its per-axis uncertainty, in detector coordinates.
	Position endpoint.Point
	Error    endpoint.Point
	Plane    int64
	Tagger   string
}

// Validate checks that the hit is physically meaningful.
func (h CRTHit) Validate() error {
	if math.IsNaN(h.TotalPE) || math.IsInf(h.TotalPE, 0) || h.TotalPE < 0 {
		return fmt.Errorf("%w %d: total_pe must be finite and non-negative, got %v", ErrInvalidHit, h.ID, h.TotalPE)
	}
	for _, v := range []float64{h.Position.X, h.Position.Y, h.Position.Z, h.T0Ns, h.T1Ns} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w %d: position and times must be finite", ErrInvalidHit, h.ID)
		}
	}
	for _, v := range []float64{h.Error.X, h.Error.Y, h.Error.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w %d: position errors must be finite and non-negative, got %+v", ErrInvalidHit, h.ID, h.Error)
		}
	}
	return nil
}
