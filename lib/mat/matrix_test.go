package mat

import (
	"testing"
)

// TestNewMatrix tests creation of matrices with various sizes
func TestNewMatrix(t *testing.T) {
	cases := []struct {
		rows, cols int
	}{
		{0, 0},
		{1, 1},
		{4, 4},
		{6, 20},
	}

	for _, c := range cases {
		m := NewMatrix(c.rows, c.cols)
		if m.Rows() != c.rows || m.Cols() != c.cols {
			t.Errorf("NewMatrix(%d, %d) has size %dx%d", c.rows, c.cols, m.Rows(), m.Cols())
		}
		if m.Numel() != c.rows*c.cols {
			t.Errorf("Numel() = %d, want %d", m.Numel(), c.rows*c.cols)
		}
	}
}

// TestMatrixColumnMajor tests that At/Set use column-major layout
func TestMatrixColumnMajor(t *testing.T) {
	m := NewMatrix(3, 2)
	m.Set(0, 0, 1)
	m.Set(1, 0, 2)
	m.Set(2, 0, 3)
	m.Set(0, 1, 4)
	m.Set(1, 1, 5)
	m.Set(2, 1, 6)

	want := []float64{1, 2, 3, 4, 5, 6}
	data := m.Data()
	for i, v := range want {
		if data[i] != v {
			t.Errorf("data[%d] = %v, want %v (column-major order)", i, data[i], v)
		}
	}
	if m.At(2, 1) != 6 {
		t.Errorf("At(2,1) = %v, want 6", m.At(2, 1))
	}
}

// TestMatrixGrowth tests that capacity doubles from the 16-element base
// and never shrinks
func TestMatrixGrowth(t *testing.T) {
	m := NewMatrix(0, 0)

	m.Resize(4, 4)
	if m.Cap() < 16 {
		t.Errorf("capacity after 4x4 resize = %d, want >= 16", m.Cap())
	}

	m.Resize(4, 5) // 20 elements -> next doubling step
	if m.Cap() < 20 {
		t.Errorf("capacity after 4x5 resize = %d, want >= 20", m.Cap())
	}

	// capacity must be a power-of-two multiple of the 16-element base
	c := m.Cap()
	for c > 16 {
		if c%2 != 0 {
			t.Fatalf("capacity %d is not a doubling of 16", m.Cap())
		}
		c /= 2
	}
	if c != 16 {
		t.Errorf("capacity %d is not a power-of-two multiple of 16", m.Cap())
	}

	// shrinking the logical size must not release the buffer
	before := m.Cap()
	m.Resize(1, 1)
	if m.Cap() != before {
		t.Errorf("capacity shrank from %d to %d on logical resize", before, m.Cap())
	}
}

// TestAppendCol tests that appending columns preserves previous data
func TestAppendCol(t *testing.T) {
	m := NewMatrix(3, 0)

	cols := [][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
		{10, 11, 12},
		{13, 14, 15},
		{16, 17, 18},
	}
	for _, col := range cols {
		m.AppendCol(col)
	}

	if m.Cols() != len(cols) {
		t.Fatalf("Cols() = %d, want %d", m.Cols(), len(cols))
	}
	for j, col := range cols {
		for i, v := range col {
			if m.At(i, j) != v {
				t.Errorf("At(%d,%d) = %v, want %v", i, j, m.At(i, j), v)
			}
		}
	}
}

// TestAppendColShort tests that a short column is zero padded
func TestAppendColShort(t *testing.T) {
	m := NewMatrix(3, 0)
	m.AppendCol([]float64{1})
	if m.At(0, 0) != 1 || m.At(1, 0) != 0 || m.At(2, 0) != 0 {
		t.Errorf("short column not zero padded: %v %v %v", m.At(0, 0), m.At(1, 0), m.At(2, 0))
	}
}

// TestAppendMatrix tests appending whole matrices
func TestAppendMatrix(t *testing.T) {
	a := NewMatrix(2, 2)
	a.Set(0, 0, 1)
	a.Set(1, 0, 2)
	a.Set(0, 1, 3)
	a.Set(1, 1, 4)

	b := NewMatrix(2, 1)
	b.Set(0, 0, 5)
	b.Set(1, 0, 6)

	if err := a.AppendMatrix(b); err != nil {
		t.Fatalf("AppendMatrix failed: %v", err)
	}
	if a.Cols() != 3 {
		t.Fatalf("Cols() = %d, want 3", a.Cols())
	}
	if a.At(0, 2) != 5 || a.At(1, 2) != 6 {
		t.Errorf("appended column wrong: %v %v", a.At(0, 2), a.At(1, 2))
	}
	// original columns must be untouched
	if a.At(0, 0) != 1 || a.At(1, 1) != 4 {
		t.Errorf("existing columns changed by append")
	}

	// mismatched row count must be rejected
	c := NewMatrix(3, 1)
	if err := a.AppendMatrix(c); err == nil {
		t.Error("AppendMatrix accepted mismatched row count")
	}
}

// TestMatrixCol tests the column view accessor
func TestMatrixCol(t *testing.T) {
	m := NewMatrix(2, 2)
	m.Set(0, 1, 7)
	m.Set(1, 1, 8)
	col := m.Col(1)
	if len(col) != 2 || col[0] != 7 || col[1] != 8 {
		t.Errorf("Col(1) = %v, want [7 8]", col)
	}
}
