package common_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-align/algorithms/common"
)

// TestLinearInterp_InvalidDomain verifies that empty or length-mismatched
// knot arrays error with ErrInvalidDomain.
func TestLinearInterp_InvalidDomain(t *testing.T) {
	_, err := common.NewLinearInterp(nil, nil)
	assert.ErrorIs(t, err, common.ErrInvalidDomain, "empty input")

	_, err = common.NewLinearInterp([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, common.ErrInvalidDomain, "mismatched lengths")
}

// TestLinearInterp_Knots verifies interp(x_i) = y_i at every knot.
func TestLinearInterp_Knots(t *testing.T) {
	xs := []float64{0, 1, 2.5, 4}
	ys := []float64{0, 2, 3, 10}

	li, err := common.NewLinearInterp(xs, ys)
	require.NoError(t, err)

	for i, x := range xs {
		assert.InDelta(t, ys[i], li.At(x), 1e-12, "knot %d", i)
	}
}

// TestLinearInterp_Midpoints verifies linear interpolation between knots.
func TestLinearInterp_Midpoints(t *testing.T) {
	li, err := common.NewLinearInterp([]float64{0, 2}, []float64{0, 4})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, li.At(0.5), 1e-12)
	assert.InDelta(t, 2.0, li.At(1), 1e-12)
	assert.InDelta(t, 3.0, li.At(1.5), 1e-12)
}

// TestLinearInterp_ClampedExtrapolation verifies that queries outside the
// domain return the boundary values, never linear extrapolation.
func TestLinearInterp_ClampedExtrapolation(t *testing.T) {
	li, err := common.NewLinearInterp([]float64{1, 2}, []float64{10, 20})
	require.NoError(t, err)

	assert.Equal(t, 10.0, li.At(-5), "below domain clamps to first y")
	assert.Equal(t, 10.0, li.At(1), "left edge")
	assert.Equal(t, 20.0, li.At(2), "right edge")
	assert.Equal(t, 20.0, li.At(100), "above domain clamps to last y")
}

// TestLinearInterp_Singleton verifies the single-knot behavior.
func TestLinearInterp_Singleton(t *testing.T) {
	li, err := common.NewLinearInterp([]float64{3}, []float64{7})
	require.NoError(t, err)

	assert.Equal(t, 7.0, li.At(-1))
	assert.Equal(t, 7.0, li.At(3))
	assert.Equal(t, 7.0, li.At(99))
}

// TestLinearInterp_UnsortedInput verifies that knots are sorted by x at
// construction without mutating the caller's slices.
func TestLinearInterp_UnsortedInput(t *testing.T) {
	xs := []float64{2, 0, 1}
	ys := []float64{20, 0, 10}

	li, err := common.NewLinearInterp(xs, ys)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, li.At(0.5), 1e-12)
	assert.InDelta(t, 15.0, li.At(1.5), 1e-12)
	assert.Equal(t, []float64{2, 0, 1}, xs, "input must not be mutated")
}

// TestLinearInterp_AtAll verifies vectorized evaluation.
func TestLinearInterp_AtAll(t *testing.T) {
	li, err := common.NewLinearInterp([]float64{0, 1}, []float64{0, 10})
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 5, 10, 10}, li.AtAll([]float64{0, 0.5, 1, 2}))
}

// TestMean_And_Residual_Helpers covers the mean and residual helpers used by
// the combinatorial matcher.
func TestMean_And_Residual_Helpers(t *testing.T) {
	assert.Equal(t, 0.0, common.Mean(nil))
	assert.InDelta(t, 2.0, common.Mean([]float64{1, 2, 3}), 1e-12)

	assert.Equal(t, []float64{1, 1}, common.Residuals([]float64{2, 3}, []float64{1, 2}))
	assert.InDelta(t, 2.0, common.SumSquaredResiduals([]float64{2, 3}, []float64{1, 2}, 0), 1e-12)
	assert.InDelta(t, 0.0, common.SumSquaredResiduals([]float64{2, 3}, []float64{1, 2}, 1), 1e-12)
}
