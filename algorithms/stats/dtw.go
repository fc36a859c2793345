package stats

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyInput indicates DTW was invoked on a zero-length sequence.
var ErrEmptyInput = errors.New("stats: empty sequences provided")

// PathPoint is one step of a warping path through the cost matrix
type PathPoint struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// DTWResult contains DTW alignment results
type DTWResult struct {
	Distance   float64     `json:"distance"`    // Total DTW distance
	Path       []PathPoint `json:"path"`        // Optimal warping path, forward order
	CostMatrix *Matrix     `json:"cost_matrix"` // Trimmed MxN accumulated-cost view
}

// DynamicTimeWarping performs classic DTW over 2-D feature sequences
// WHY: DTW is the backbone of the coarse score/performance time map; it
// tolerates tempo drift that any fixed-rate comparison would not
type DynamicTimeWarping struct {
	distance DistanceFunc
}

// NewDynamicTimeWarping creates a DTW instance with the Euclidean metric
func NewDynamicTimeWarping() *DynamicTimeWarping {
	return &DynamicTimeWarping{distance: Euclidean}
}

// NewDynamicTimeWarpingWithMetric creates a DTW instance with a custom metric
func NewDynamicTimeWarpingWithMetric(metric DistanceMetric) *DynamicTimeWarping {
	return &DynamicTimeWarping{distance: GetDistanceFunction(metric)}
}

// Compute runs DTW between sequences X (length M) and Y (length N) and
// returns the total distance, the trimmed MxN accumulated-cost matrix and,
// when returnPath is set, the optimal warping path in forward order.
func (dtw *DynamicTimeWarping) Compute(X, Y [][]float64, returnPath bool) (*DTWResult, error) {
	if len(X) == 0 || len(Y) == 0 {
		return nil, ErrEmptyInput
	}

	distances, err := dtw.pairwiseDistances(X, Y)
	if err != nil {
		return nil, fmt.Errorf("failed to compute pairwise distances: %w", err)
	}

	costMatrix := accumulatedCostMatrix(distances)

	result := &DTWResult{
		Distance:   costMatrix.At(costMatrix.Rows-1, costMatrix.Cols-1),
		CostMatrix: costMatrix,
	}

	if returnPath {
		result.Path = backtrackPath(costMatrix)
	}

	return result, nil
}

// pairwiseDistances builds the MxN local distance matrix
func (dtw *DynamicTimeWarping) pairwiseDistances(X, Y [][]float64) (*Matrix, error) {
	distances := NewMatrix(len(X), len(Y))

	for i := range X {
		for j := range Y {
			d, err := dtw.distance(X[i], Y[j])
			if err != nil {
				return nil, err
			}
			distances.Set(i, j, d)
		}
	}

	return distances, nil
}

// accumulatedCostMatrix fills the DP matrix and returns the trimmed MxN view.
// The working matrix is padded to (M+1)x(N+1) with +Inf borders and
// C[0][0] = 0 so the first row/column need no special casing.
func accumulatedCostMatrix(distances *Matrix) *Matrix {
	M := distances.Rows
	N := distances.Cols

	padded := NewMatrixFilled(M+1, N+1, math.Inf(1))
	padded.Set(0, 0, 0)

	for i := 1; i <= M; i++ {
		for j := 1; j <= N; j++ {
			best := math.Min(padded.At(i-1, j-1), math.Min(padded.At(i-1, j), padded.At(i, j-1)))
			padded.Set(i, j, distances.At(i-1, j-1)+best)
		}
	}

	trimmed := NewMatrix(M, N)
	for i := 0; i < M; i++ {
		for j := 0; j < N; j++ {
			trimmed.Set(i, j, padded.At(i+1, j+1))
		}
	}

	return trimmed
}

// backtrackPath recovers the optimal warping path from the trimmed cost view.
// Tie-break order among equal predecessors is diagonal, then up, then left.
func backtrackPath(costMatrix *Matrix) []PathPoint {
	i := costMatrix.Rows - 1
	j := costMatrix.Cols - 1

	path := []PathPoint{{Row: i, Col: j}}

	for i > 0 || j > 0 {
		if i == 0 {
			j--
		} else if j == 0 {
			i--
		} else {
			diagonal := costMatrix.At(i-1, j-1)
			up := costMatrix.At(i-1, j)
			left := costMatrix.At(i, j-1)

			if diagonal <= up && diagonal <= left {
				i--
				j--
			} else if up <= left {
				i--
			} else {
				j--
			}
		}

		path = append(path, PathPoint{Row: i, Col: j})
	}

	// Reverse to forward order
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}

	return path
}

// StepDirection is one admissible DP transition for weighted DTW
type StepDirection struct {
	RowStep int
	ColStep int
}

// WeightedDynamicTimeWarping performs DTW with a configurable step-direction
// set and per-direction multiplicative weights
type WeightedDynamicTimeWarping struct {
	distance   DistanceFunc
	directions []StepDirection
	weights    []float64
}

// NewWeightedDynamicTimeWarping creates a weighted DTW instance. The
// directions and weights slices must be non-empty and of equal length.
func NewWeightedDynamicTimeWarping(directions []StepDirection, weights []float64, metric DistanceMetric) (*WeightedDynamicTimeWarping, error) {
	if len(directions) == 0 || len(directions) != len(weights) {
		return nil, fmt.Errorf("stats: %d step directions vs %d weights: %w", len(directions), len(weights), ErrShapeMismatch)
	}

	return &WeightedDynamicTimeWarping{
		distance:   GetDistanceFunction(metric),
		directions: directions,
		weights:    weights,
	}, nil
}

// DefaultStepDirections returns the symmetric step set (diagonal, up, left)
// with unit weights
func DefaultStepDirections() ([]StepDirection, []float64) {
	return []StepDirection{{1, 1}, {1, 0}, {0, 1}}, []float64{1, 1, 1}
}

// Compute runs weighted DTW between X and Y. The recurrence is
// C[i][j] = min over directions d of C[i-dr][j-dc] + D[i][j]*w_d, with
// out-of-bounds predecessors treated as +Inf.
func (w *WeightedDynamicTimeWarping) Compute(X, Y [][]float64) (*DTWResult, error) {
	if len(X) == 0 || len(Y) == 0 {
		return nil, ErrEmptyInput
	}

	M := len(X)
	N := len(Y)

	distances := NewMatrix(M, N)
	for i := range X {
		for j := range Y {
			d, err := w.distance(X[i], Y[j])
			if err != nil {
				return nil, fmt.Errorf("failed to compute pairwise distances: %w", err)
			}
			distances.Set(i, j, d)
		}
	}

	padded := NewMatrixFilled(M+1, N+1, math.Inf(1))
	padded.Set(0, 0, 0)

	// chosen[i][j] records the winning direction for backtracking
	chosen := make([]int, M*N)
	for i := range chosen {
		chosen[i] = -1
	}

	for i := 1; i <= M; i++ {
		for j := 1; j <= N; j++ {
			minCost := math.Inf(1)
			best := -1

			for d, dir := range w.directions {
				prevI := i - dir.RowStep
				prevJ := j - dir.ColStep
				if prevI < 0 || prevJ < 0 {
					continue
				}

				cost := padded.At(prevI, prevJ) + distances.At(i-1, j-1)*w.weights[d]
				if cost < minCost {
					minCost = cost
					best = d
				}
			}

			padded.Set(i, j, minCost)
			chosen[(i-1)*N+(j-1)] = best
		}
	}

	trimmed := NewMatrix(M, N)
	for i := 0; i < M; i++ {
		for j := 0; j < N; j++ {
			trimmed.Set(i, j, padded.At(i+1, j+1))
		}
	}

	path := w.backtrack(chosen, M, N)

	return &DTWResult{
		Distance:   trimmed.At(M-1, N-1),
		Path:       path,
		CostMatrix: trimmed,
	}, nil
}

// backtrack follows the recorded directions from (M-1, N-1) back to (0, 0)
func (w *WeightedDynamicTimeWarping) backtrack(chosen []int, M, N int) []PathPoint {
	i := M - 1
	j := N - 1

	path := []PathPoint{{Row: i, Col: j}}

	for i > 0 || j > 0 {
		d := chosen[i*N+j]
		if d < 0 || d >= len(w.directions) {
			break
		}

		i -= w.directions[d].RowStep
		j -= w.directions[d].ColStep
		path = append(path, PathPoint{Row: i, Col: j})
	}

	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}

	return path
}
