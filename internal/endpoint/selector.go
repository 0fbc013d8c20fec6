package endpoint

import "gonum.org/v1/gonum/floats"

// SelectCandidates returns the indices of the minimum and maximum
// projection scores. The first index wins when several points share an
// extreme. For a cloud whose scores are all equal both indices are 0.
func SelectCandidates(scores []float64) (minIdx, maxIdx int) {
	return floats.MinIdx(scores), floats.MaxIdx(scores)
}
