package mat

import (
	"fmt"
	"strings"
)

// initialCapacity is the smallest buffer allocation of a Matrix (in elements).
// Growth always doubles from here, so the allocated capacity is a power-of-two
// multiple of this base.
const initialCapacity = 16

// Matrix is a growable 2D matrix of float64 values stored column-major:
// element (i, j) lives at data[rows*j + i]. The backing buffer grows by
// doubling and never shrinks, so appending columns does not invalidate
// previously written data.
type Matrix struct {
	data []float64
	rows int
	cols int
}

// NewMatrix creates a matrix of the given logical size. Both dimensions may
// be zero; a 0x0 matrix is valid and can be resized or appended to later.
func NewMatrix(rows, cols int) *Matrix {
	m := &Matrix{}
	m.Resize(rows, cols)
	return m
}

// Rows returns the number of logical rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of logical columns.
func (m *Matrix) Cols() int { return m.cols }

// Numel returns the number of logical elements (rows*cols).
func (m *Matrix) Numel() int { return m.rows * m.cols }

// Cap returns the allocated capacity of the backing buffer in elements.
func (m *Matrix) Cap() int { return cap(m.data) }

// Resize sets the logical dimensions, growing the backing buffer if needed.
// Existing data is kept in place; interpretation of the elements changes with
// the new row count. Negative dimensions are clamped to zero.
func (m *Matrix) Resize(rows, cols int) {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	m.ensureCapacity(rows * cols)
	m.rows = rows
	m.cols = cols
	m.data = m.data[:rows*cols]
}

// ensureCapacity grows the backing buffer by doubling until it covers numel
// elements. The buffer never shrinks.
func (m *Matrix) ensureCapacity(numel int) {
	if numel <= cap(m.data) {
		return
	}
	newCap := cap(m.data)
	if newCap < initialCapacity {
		newCap = initialCapacity
	}
	for newCap < numel {
		newCap <<= 1
	}
	grown := make([]float64, len(m.data), newCap)
	copy(grown, m.data)
	m.data = grown
}

// At returns element (i, j), zero-based.
func (m *Matrix) At(i, j int) float64 {
	return m.data[m.rows*j+i]
}

// Set writes element (i, j), zero-based.
func (m *Matrix) Set(i, j int, v float64) {
	m.data[m.rows*j+i] = v
}

// Col returns a view of column j (length Rows). The slice aliases the matrix
// buffer and is only valid until the next Resize or append.
func (m *Matrix) Col(j int) []float64 {
	return m.data[m.rows*j : m.rows*(j+1)]
}

// Data returns the raw column-major element buffer (length Numel).
func (m *Matrix) Data() []float64 { return m.data }

// AppendCol appends one column to the matrix. The number of values copied is
// capped at the row count; missing values stay zero.
func (m *Matrix) AppendCol(values []float64) {
	oldLen := m.rows * m.cols
	m.cols++
	m.ensureCapacity(m.rows * m.cols)
	m.data = m.data[:m.rows*m.cols]
	n := len(values)
	if n > m.rows {
		n = m.rows
	}
	copy(m.data[oldLen:oldLen+n], values[:n])
	for i := oldLen + n; i < len(m.data); i++ {
		m.data[i] = 0
	}
}

// AppendMatrix appends all columns of other. Both matrices must have the same
// row count, otherwise an error is returned and the receiver is unchanged.
func (m *Matrix) AppendMatrix(other *Matrix) error {
	if m.rows != other.rows {
		return fmt.Errorf("mat: cannot append %dx%d to %dx%d: row count mismatch",
			other.rows, other.cols, m.rows, m.cols)
	}
	oldLen := m.rows * m.cols
	m.cols += other.cols
	m.ensureCapacity(m.rows * m.cols)
	m.data = m.data[:m.rows*m.cols]
	copy(m.data[oldLen:], other.data)
	return nil
}

// String renders the matrix row by row, mainly for CLI output and debugging.
func (m *Matrix) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Matrix [%d x %d]\n", m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(" , ")
			}
			fmt.Fprintf(&sb, "%.3f", m.At(i, j))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
