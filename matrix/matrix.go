// Package matrix provides a dense row-major matrix used to hold evaluation
// vectors. Each column of a matrix is the evaluation vector of one polynomial
// over some domain; the row count is always a power of two.
//
// The container is deliberately free of field arithmetic so that the same
// type can carry base field and extension field elements.
package matrix

import (
	"fmt"
	"math/bits"
)

// Dense is a row-major matrix.
type Dense[T any] struct {
	values []T
	width  int
}

// NewDense wraps `values` as a matrix with the given width.
// The length of `values` must be a multiple of `width`.
func NewDense[T any](values []T, width int) *Dense[T] {
	if width <= 0 {
		panic(fmt.Sprintf("width (%d) must be positive", width))
	}
	if len(values)%width != 0 {
		panic(fmt.Sprintf("number of values (%d) is not a multiple of the width (%d)", len(values), width))
	}
	return &Dense[T]{values: values, width: width}
}

// Width returns the number of columns.
func (m *Dense[T]) Width() int {
	return m.width
}

// Height returns the number of rows.
func (m *Dense[T]) Height() int {
	return len(m.values) / m.width
}

// Row returns the i'th row as a view into the underlying storage.
func (m *Dense[T]) Row(i int) []T {
	return m.values[i*m.width : (i+1)*m.width]
}

// At returns the entry at row r, column c.
func (m *Dense[T]) At(r, c int) T {
	return m.values[r*m.width+c]
}

// Column returns a copy of the c'th column.
func (m *Dense[T]) Column(c int) []T {
	height := m.Height()
	col := make([]T, height)
	for r := 0; r < height; r++ {
		col[r] = m.values[r*m.width+c]
	}
	return col
}

// Copy returns a deep copy of the matrix.
func (m *Dense[T]) Copy() *Dense[T] {
	values := make([]T, len(m.values))
	copy(values, m.values)
	return &Dense[T]{values: values, width: m.width}
}

// FirstRows returns a view of the first n rows, sharing storage with m.
func (m *Dense[T]) FirstRows(n int) *Dense[T] {
	if n > m.Height() {
		panic(fmt.Sprintf("cannot take %d rows from a matrix of height %d", n, m.Height()))
	}
	return &Dense[T]{values: m.values[:n*m.width], width: m.width}
}

// BitReverseRows permutes the rows of m in-place so that row i of the result
// is row bitreverse(i) of the input. The height must be a power of two.
func (m *Dense[T]) BitReverseRows() {
	height := m.Height()
	if height&(height-1) != 0 {
		panic(fmt.Sprintf("height (%d) is not a power of two", height))
	}
	logHeight := bits.TrailingZeros(uint(height))
	for i := 0; i < height; i++ {
		irev := int(bits.Reverse64(uint64(i)) >> (64 - logHeight))
		if irev > i {
			rowI, rowIrev := m.Row(i), m.Row(irev)
			for c := 0; c < m.width; c++ {
				rowI[c], rowIrev[c] = rowIrev[c], rowI[c]
			}
		}
	}
}
