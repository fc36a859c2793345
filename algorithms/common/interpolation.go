package common

import (
	"errors"
	"sort"
)

// ErrInvalidDomain indicates an interpolator was constructed from empty or
// length-mismatched knot arrays.
var ErrInvalidDomain = errors.New("common: x and y must have the same non-zero length")

// LinearInterp is a piecewise-linear map over sorted x knots with clamped
// extrapolation. Queries below the first knot return the first y value and
// queries above the last knot return the last y value, so callers can never
// be sent outside the known time range.
type LinearInterp struct {
	xs []float64
	ys []float64
}

// NewLinearInterp builds an interpolator from knot arrays x and y. The
// input is copied and sorted by x; the originals are not modified.
func NewLinearInterp(x, y []float64) (*LinearInterp, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, ErrInvalidDomain
	}

	indices := make([]int, len(x))
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(i, j int) bool {
		return x[indices[i]] < x[indices[j]]
	})

	xs := make([]float64, len(x))
	ys := make([]float64, len(y))
	for i, idx := range indices {
		xs[i] = x[idx]
		ys[i] = y[idx]
	}

	return &LinearInterp{xs: xs, ys: ys}, nil
}

// At evaluates the interpolator at x
func (li *LinearInterp) At(x float64) float64 {
	if len(li.xs) == 1 {
		return li.ys[0]
	}

	// Clamped extrapolation
	if x <= li.xs[0] {
		return li.ys[0]
	}
	if x >= li.xs[len(li.xs)-1] {
		return li.ys[len(li.ys)-1]
	}

	// Locate the bracketing pair via binary search
	idx := sort.SearchFloat64s(li.xs, x)
	if idx == 0 {
		return li.ys[0]
	}

	x0 := li.xs[idx-1]
	x1 := li.xs[idx]
	y0 := li.ys[idx-1]
	y1 := li.ys[idx]

	t := (x - x0) / (x1 - x0)
	return y0 + t*(y1-y0)
}

// AtAll evaluates the interpolator at every point of xs
func (li *LinearInterp) AtAll(xs []float64) []float64 {
	result := make([]float64, len(xs))
	for i, x := range xs {
		result[i] = li.At(x)
	}
	return result
}
