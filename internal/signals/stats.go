package signals

import (
	"math"
	"sort"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// variationCoeff returns stddev/mean, or nil when the mean is zero.
func variationCoeff(values []float64) *float64 {
	m := mean(values)
	if m == 0 {
		return nil
	}
	cv := stddev(values) / math.Abs(m)
	return &cv
}

func ptr(v float64) *float64 {
	return &v
}

// round2 keeps reported signal values stable across platforms by rounding to
// cents / basis points before they enter rationales and traces.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
