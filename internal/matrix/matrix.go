// Package matrix provides the dense linear-algebra primitives behind the
// ridge-regression trainer: transpose, products and Gauss-Jordan inversion
// with partial pivoting. Dimensions are carried explicitly so mismatches
// surface at construction, not deep inside a multiplication.
package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"lavanda/domain/core"
)

// pivotEps is the magnitude below which a pivot is considered zero and the
// matrix singular.
const pivotEps = 1e-10

// Matrix is a dense row-major float64 matrix.
type Matrix struct {
	Rows int
	Cols int
	data []float64
}

// New creates a zero matrix of the given shape.
func New(rows, cols int) *Matrix {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("matrix: invalid shape %dx%d", rows, cols))
	}
	return &Matrix{Rows: rows, Cols: cols, data: make([]float64, rows*cols)}
}

// FromRows builds a matrix from row slices, validating that every row has
// the same length.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("matrix: empty input")
	}
	cols := len(rows[0])
	m := New(len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("matrix: row %d has %d columns, want %d", i, len(r), cols)
		}
		copy(m.Row(i), r)
	}
	return m, nil
}

// Identity creates an n×n identity matrix.
func Identity(n int) *Matrix {
	m := New(n, n)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// At returns the element at (i, j).
func (m *Matrix) At(i, j int) float64 { return m.data[i*m.Cols+j] }

// Set assigns the element at (i, j).
func (m *Matrix) Set(i, j int, v float64) { m.data[i*m.Cols+j] = v }

// Row returns row i as a mutable slice view.
func (m *Matrix) Row(i int) []float64 { return m.data[i*m.Cols : (i+1)*m.Cols] }

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	out := New(m.Rows, m.Cols)
	copy(out.data, m.data)
	return out
}

// Transpose returns Aᵗ.
func (m *Matrix) Transpose() *Matrix {
	out := New(m.Cols, m.Rows)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			out.Set(j, i, m.At(i, j))
		}
	}
	return out
}

// Mul computes the product A·B.
func Mul(a, b *Matrix) (*Matrix, error) {
	if a.Cols != b.Rows {
		return nil, fmt.Errorf("matrix: cannot multiply %dx%d by %dx%d", a.Rows, a.Cols, b.Rows, b.Cols)
	}
	bt := b.Transpose()
	out := New(a.Rows, b.Cols)
	for i := 0; i < a.Rows; i++ {
		ai := a.Row(i)
		for j := 0; j < b.Cols; j++ {
			out.Set(i, j, floats.Dot(ai, bt.Row(j)))
		}
	}
	return out, nil
}

// MulVec computes the product A·v.
func MulVec(a *Matrix, v []float64) ([]float64, error) {
	if a.Cols != len(v) {
		return nil, fmt.Errorf("matrix: cannot multiply %dx%d by vector of length %d", a.Rows, a.Cols, len(v))
	}
	out := make([]float64, a.Rows)
	for i := 0; i < a.Rows; i++ {
		out[i] = floats.Dot(a.Row(i), v)
	}
	return out, nil
}

// Invert computes A⁻¹ by Gauss-Jordan elimination with partial pivoting.
// Returns core.ErrSingularMatrix when the largest available pivot falls
// below tolerance; callers use that signal to fall back to a simpler model.
func Invert(a *Matrix) (*Matrix, error) {
	if a.Rows != a.Cols {
		return nil, fmt.Errorf("matrix: cannot invert non-square %dx%d", a.Rows, a.Cols)
	}
	n := a.Rows
	work := a.Clone()
	inv := Identity(n)

	for col := 0; col < n; col++ {
		// Partial pivoting: bring the largest |value| in this column to the
		// pivot row.
		pivotRow := col
		maxAbs := math.Abs(work.At(col, col))
		for r := col + 1; r < n; r++ {
			if abs := math.Abs(work.At(r, col)); abs > maxAbs {
				maxAbs = abs
				pivotRow = r
			}
		}
		if maxAbs < pivotEps {
			return nil, core.NewSingularMatrixError(col, maxAbs)
		}
		if pivotRow != col {
			swapRows(work, col, pivotRow)
			swapRows(inv, col, pivotRow)
		}

		pivot := work.At(col, col)
		scaleRow(work.Row(col), 1/pivot)
		scaleRow(inv.Row(col), 1/pivot)

		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := work.At(r, col)
			if factor == 0 {
				continue
			}
			floats.AddScaled(work.Row(r), -factor, work.Row(col))
			floats.AddScaled(inv.Row(r), -factor, inv.Row(col))
		}
	}

	return inv, nil
}

func swapRows(m *Matrix, i, j int) {
	ri, rj := m.Row(i), m.Row(j)
	for k := range ri {
		ri[k], rj[k] = rj[k], ri[k]
	}
}

func scaleRow(row []float64, f float64) {
	for k := range row {
		row[k] *= f
	}
}
