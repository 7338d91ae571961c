package fastfood

import "math"

// mapFull writes the width 2n feature row for one projection row: cosines
// in the first n slots and sines in the second, all scaled by 1/sqrt(n).
// Inner products of such rows estimate the kernel without phase noise.
func mapFull(dst, proj []float64) {
	n := len(proj)
	inv := 1 / math.Sqrt(float64(n))
	for i, v := range proj {
		dst[i] = math.Cos(v) * inv
		dst[i+n] = math.Sin(v) * inv
	}
}

// mapReduced writes the width n feature row cos(proj + phase) scaled by
// sqrt(2/n). The random phase replaces the explicit sine half, trading a
// little estimator variance for half the output width.
func mapReduced(dst, proj, phase []float64) {
	n := len(proj)
	scale := math.Sqrt(2 / float64(n))
	for i, v := range proj {
		dst[i] = math.Cos(v+phase[i]) * scale
	}
}
