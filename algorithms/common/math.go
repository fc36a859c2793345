package common

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions used across algorithms using gonum for robustness

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the sample variance of a slice using gonum
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}

// Sum calculates the sum of a slice using gonum
func Sum(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Sum(data)
}

// SumSquaredResiduals accumulates sum((a[i] - b[i] - shift)^2) over the
// common prefix of a and b
func SumSquaredResiduals(a, b []float64, shift float64) float64 {
	n := min(len(a), len(b))

	total := 0.0
	for i := 0; i < n; i++ {
		diff := a[i] - b[i] - shift
		total += diff * diff
	}
	return total
}

// Residuals returns a[i] - b[i] over the common prefix of a and b
func Residuals(a, b []float64) []float64 {
	n := min(len(a), len(b))

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = a[i] - b[i]
	}
	return out
}
