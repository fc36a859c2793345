package stats

// Matrix is a dense row-major float64 matrix backed by a single flat buffer.
// WHY: DTW cost matrices are the memory hot spot of alignment; a contiguous
// buffer keeps the inner DP loop cache-friendly compared to nested slices.
type Matrix struct {
	Rows int
	Cols int
	data []float64
}

// NewMatrix creates a Rows x Cols matrix initialized to zero
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{
		Rows: rows,
		Cols: cols,
		data: make([]float64, rows*cols),
	}
}

// NewMatrixFilled creates a Rows x Cols matrix with every cell set to fill
func NewMatrixFilled(rows, cols int, fill float64) *Matrix {
	m := NewMatrix(rows, cols)
	for i := range m.data {
		m.data[i] = fill
	}
	return m
}

// At returns the value at row i, column j
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.Cols+j]
}

// Set stores v at row i, column j
func (m *Matrix) Set(i, j int, v float64) {
	m.data[i*m.Cols+j] = v
}

// Row returns a view of row i (not a copy)
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.Cols : (i+1)*m.Cols]
}
