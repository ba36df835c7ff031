package simd

import (
	"fmt"
	"os"
	"time"

	"stabkit/internal/obs"
)

// DoSquareTranspose transposes the table in place. Requires
// RowsPadded == ColsPadded (spec §3's square-transpose invariant).
//
// Grounded on original_source/src/simd/simd_util.cc's two-phase
// transpose_bit_matrix: (1) transpose within each 64x64 diagonal block in
// place, (2) swap each pair of off-diagonal 64x64 blocks (each itself
// transposed). The original does phase (1) with AVX2 byte-interleave
// intrinsics across 256-bit tiles; this portable version applies the
// classic 64x64-bit-matrix delta-swap kernel (transposeBlock64) directly,
// which implements the same "swap address bit r_k with column bit c_k"
// recursion spec §4.1 describes, just without the 128/256-bit intrinsic
// shortcuts.
func (t *BitTable) DoSquareTranspose() error {
	defer obs.Track(time.Now(), "simd.DoSquareTranspose")
	if t.rowsPadded != t.colsPadded {
		return fmt.Errorf("simd: DoSquareTranspose requires RowsPadded == ColsPadded, got %d and %d", t.rowsPadded, t.colsPadded)
	}
	n := t.rowsPadded
	if n%WordBits != 0 {
		return fmt.Errorf("simd: DoSquareTranspose requires padded size a multiple of %d, got %d", WordBits, n)
	}
	obs.Debugf(os.Stderr, "[Transpose] DoSquareTranspose begin n=%d\n", n)
	for br := 0; br < n; br += WordBits {
		transposeBlockInPlace(t, br, br)
		for bc := br + WordBits; bc < n; bc += WordBits {
			a := extractBlock(t, br, bc)
			b := extractBlock(t, bc, br)
			transposeBlock64(&a)
			transposeBlock64(&b)
			writeBlock(t, br, bc, b)
			writeBlock(t, bc, br, a)
		}
	}
	t.Rows, t.Cols = t.Cols, t.Rows
	obs.Debugf(os.Stderr, "[Transpose] DoSquareTranspose done n=%d\n", n)
	return nil
}

// transposeBlockInPlace transposes the diagonal 64x64 block whose top-left
// corner is (br, bc) (br == bc for a diagonal block).
func transposeBlockInPlace(t *BitTable, br, bc int) {
	block := extractBlock(t, br, bc)
	transposeBlock64(&block)
	writeBlock(t, br, bc, block)
}

// extractBlock reads the 64x64 bit block whose rows start at br and whose
// column-word index is bc/64.
func extractBlock(t *BitTable, br, bc int) [WordBits]uint64 {
	var block [WordBits]uint64
	wordCol := bc / WordBits
	for i := 0; i < WordBits; i++ {
		block[i] = t.data[(br+i)*t.stride+wordCol]
	}
	return block
}

func writeBlock(t *BitTable, br, bc int, block [WordBits]uint64) {
	wordCol := bc / WordBits
	for i := 0; i < WordBits; i++ {
		t.data[(br+i)*t.stride+wordCol] = block[i]
	}
}

// transposeBlock64 transposes a 64x64 bit matrix stored as 64 uint64 rows,
// in place. This is the standard generalized bit-matrix transpose (see
// Warren, "Hacker's Delight", ch. 7): a sequence of masked delta-swaps at
// halving strides 32,16,8,4,2,1, each swapping address bit r_k with column
// bit c_k for k = 5..0.
func transposeBlock64(a *[WordBits]uint64) {
	m := uint64(0x00000000FFFFFFFF)
	for j := 32; j != 0; {
		for k := 0; k < 64; k = (k + j + 1) &^ j {
			t := ((a[k] >> uint(j)) ^ a[k+j]) & m
			a[k] ^= t << uint(j)
			a[k+j] ^= t
		}
		j >>= 1
		m ^= m << uint(j)
	}
}

// TransposeInto writes the transpose of t into out, which must already be
// sized Cols x Rows (a general, non-square, out-of-place transpose; spec
// §4.1's transpose_into).
func (t *BitTable) TransposeInto(out *BitTable) error {
	if out.Rows != t.Cols || out.Cols != t.Rows {
		return fmt.Errorf("simd: TransposeInto requires a %dx%d destination, got %dx%d", t.Cols, t.Rows, out.Rows, out.Cols)
	}
	for i := 0; i < out.rowsPadded; i++ {
		for j := 0; j < out.stride; j++ {
			out.data[i*out.stride+j] = 0
		}
	}
	for r := 0; r < t.Rows; r++ {
		row := t.Row(r)
		for c := 0; c < t.Cols; c++ {
			if row.At(c).Get() {
				out.Set(c, r, true)
			}
		}
	}
	return nil
}
