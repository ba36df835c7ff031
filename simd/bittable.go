package simd

import "fmt"

// BitTable is an R x C bit matrix stored as RowsPadded rows of ColsPadded
// bits each, row-major. Row i is addressable as a word-aligned BitVecRef.
type BitTable struct {
	Rows, Cols             int
	rowsPadded, colsPadded  int
	stride                  int // words per row
	data                    []uint64
}

// NewBitTable allocates a zeroed rows x cols bit table.
func NewBitTable(rows, cols int) *BitTable {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	stride := wordsFor(cols)
	rowsPadded := rows
	t := &BitTable{
		Rows:       rows,
		Cols:       cols,
		rowsPadded: rowsPadded,
		colsPadded: stride * WordBits,
		stride:     stride,
	}
	t.data = make([]uint64, rowsPadded*stride)
	return t
}

// Row returns a word-aligned view over the ColsPadded bits of row i.
func (t *BitTable) Row(i int) BitVecRef {
	return BitVecRef{Words: t.data[i*t.stride : (i+1)*t.stride]}
}

// Get reads bit (r,c).
func (t *BitTable) Get(r, c int) bool {
	return t.Row(r).At(c).Get()
}

// Set writes bit (r,c).
func (t *BitTable) Set(r, c int, v bool) {
	t.Row(r).At(c).Set(v)
}

// Identity sets the table to the n x n identity matrix (all other bits
// zero), per spec §4.1.
func (t *BitTable) Identity(n int) {
	for i := range t.data {
		t.data[i] = 0
	}
	for i := 0; i < n; i++ {
		t.Set(i, i, true)
	}
}

// SquareMatMul returns this * rhs over GF(2), restricted to the top-left
// n x n submatrices of both operands.
func (t *BitTable) SquareMatMul(rhs *BitTable, n int) *BitTable {
	out := NewBitTable(n, n)
	w := wordsFor(n)
	for i := 0; i < n; i++ {
		rowT := t.Row(i)
		outRow := out.Row(i).Prefix(n)
		for k := 0; k < n; k++ {
			if rowT.At(k).Get() {
				rhsRow := rhs.Row(k).Prefix(n)
				for wi := 0; wi < w; wi++ {
					outRow.Words[wi] ^= rhsRow.Words[wi]
				}
			}
		}
	}
	return out
}

// InverseAssumingLowerTriangular returns the inverse of the top-left n x n
// submatrix, which is assumed lower-triangular with a full (all-ones)
// diagonal. It performs a single forward Gauss-Jordan pass: since the
// matrix is already lower triangular, eliminating strictly-below-diagonal
// entries column by column leaves the identity with no back-substitution
// needed.
func (t *BitTable) InverseAssumingLowerTriangular(n int) (*BitTable, error) {
	for i := 0; i < n; i++ {
		if !t.Get(i, i) {
			return nil, fmt.Errorf("simd: InverseAssumingLowerTriangular: zero diagonal at %d", i)
		}
	}
	work := t.SliceMajor(0, n)
	out := NewBitTable(n, n)
	out.Identity(n)
	w := wordsFor(n)
	for col := 0; col < n; col++ {
		for row := col + 1; row < n; row++ {
			if work.Get(row, col) {
				wr := work.Row(row).Prefix(n)
				wc := work.Row(col).Prefix(n)
				or := out.Row(row)
				oc := out.Row(col)
				for i := 0; i < w; i++ {
					wr.Words[i] ^= wc.Words[i]
				}
				for i := 0; i < len(or.Words); i++ {
					or.Words[i] ^= oc.Words[i]
				}
			}
		}
	}
	return out, nil
}

// SliceMajor returns a copy of rows [lo, hi).
func (t *BitTable) SliceMajor(lo, hi int) *BitTable {
	n := hi - lo
	out := NewBitTable(n, t.Cols)
	for i := 0; i < n; i++ {
		copy(out.data[i*out.stride:(i+1)*out.stride], t.data[(lo+i)*t.stride:(lo+i+1)*t.stride])
	}
	return out
}

// FromQuadrants builds a 2n x 2n table from four n x n quadrants laid out
//
//	UL UR
//	LL LR
func FromQuadrants(n int, ul, ur, ll, lr *BitTable) *BitTable {
	out := NewBitTable(2*n, 2*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, ul.Get(i, j))
			out.Set(i, n+j, ur.Get(i, j))
			out.Set(n+i, j, ll.Get(i, j))
			out.Set(n+i, n+j, lr.Get(i, j))
		}
	}
	return out
}

// RandomBitTable fills a fresh rows x cols table with independent fair-coin
// bits, re-zeroing padding afterward.
func RandomBitTable(rows, cols int, rng RandSource) *BitTable {
	t := NewBitTable(rows, cols)
	for i := 0; i < rows; i++ {
		t.Row(i).Randomize(cols, rng)
		clearPaddingTail(t.Row(i), cols)
	}
	return t
}
