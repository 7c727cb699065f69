package telemetrics

import "math"

// Percentile returns the q-quantile (q in [0, 1]) of an ascending sample using
// linear interpolation between the two nearest ranks: rank = q * (n-1).
// Returns 0 for an empty sample.
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}

	rank := q * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	if lo >= hi {
		return sorted[hi]
	}

	return lerp(sorted[lo], sorted[hi], rank-float64(lo))
}

// lerp interpolates from the nearer endpoint so the result stays inside [a, b].
func lerp(a, b, t float64) float64 {
	diff := b - a
	if t >= 0.5 {
		return b - diff*(1-t)
	}
	return a + diff*t
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
