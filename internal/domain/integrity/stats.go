package integrity

import (
	"math"
	"sort"
)

// modifiedZFactor is the standard consistency constant relating MAD to
// the standard deviation of a normal distribution.
const modifiedZFactor = 0.6745

// median returns the median of xs. Returns 0 for an empty slice.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// mad returns the median absolute deviation of xs around med.
func mad(xs []float64, med float64) float64 {
	devs := make([]float64, len(xs))
	for i, x := range xs {
		devs[i] = math.Abs(x - med)
	}
	return median(devs)
}

// modifiedZ returns the MAD-based modified z-score for x. The caller
// must ensure m is non-zero.
func modifiedZ(x, med, m float64) float64 {
	return modifiedZFactor * (x - med) / m
}

// mean returns the arithmetic mean of xs. Returns 0 for an empty slice.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
