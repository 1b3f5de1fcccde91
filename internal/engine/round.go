package engine

import "math"

// round4 rounds to 4 decimal places. Applied exactly once per strategy,
// on the final point and value only; intermediate arithmetic keeps full
// precision.
func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func roundPoint(p []float64) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = round4(v)
	}
	return out
}
