package tableau

import (
	"fmt"
	"os"
	"time"

	"stabkit/internal/obs"
	"stabkit/pauli"
	"stabkit/simd"
)

// transposeNxN returns the transpose of src's top-left n x n submatrix.
// When n is a whole number of 64-bit words, src's own padding already
// satisfies simd.DoSquareTranspose's square-padding requirement, so this
// takes the fast in-place delta-swap path on a copy; otherwise it falls
// back to the generic out-of-place TransposeInto.
func transposeNxN(src *simd.BitTable, n int) *simd.BitTable {
	if n%simd.WordBits == 0 {
		out := src.SliceMajor(0, n)
		if err := out.DoSquareTranspose(); err != nil {
			panic(fmt.Sprintf("tableau: internal square-transpose failure: %v", err))
		}
		return out
	}
	out := simd.NewBitTable(n, n)
	if err := src.SliceMajor(0, n).TransposeInto(out); err != nil {
		panic(fmt.Sprintf("tableau: internal transpose failure: %v", err))
	}
	return out
}

// Inverse returns t⁻¹ (spec §4.3): the symplectic (x,z) content of the
// inverse is t's four n x n blocks each transposed in place, with the XX and
// ZZ blocks then swapped (the XZ and ZX blocks stay where they are) — a
// standard identity for symplectic matrices over GF(2). Signs are then fixed per-generator: t applied to the
// candidate inv.xs[k] (sign +) must reduce to exactly ±X_k; if it comes out
// -X_k, inv.xs[k]'s sign is flipped to cancel it (and likewise for zs[k]
// against Z_k). This is the single-application form of spec §4.3's
// round-trip sign fix, equivalent to but cheaper than re-deriving each sign
// via three chained Apply calls.
func (t *Tableau) Inverse() *Tableau {
	defer obs.Track(time.Now(), "tableau.Inverse")
	n := t.n
	obs.Debugf(os.Stderr, "[Inverse] begin n=%d\n", n)
	inv := &Tableau{
		n:      n,
		xx:     transposeNxN(t.zz, n),
		xz:     transposeNxN(t.xz, n),
		zx:     transposeNxN(t.zx, n),
		zz:     transposeNxN(t.xx, n),
		signsX: simd.NewBitVec(n),
		signsZ: simd.NewBitVec(n),
	}

	for k := 0; k < n; k++ {
		expectX := pauli.Identity(n)
		expectX.Ref().Set(k, pauli.X)
		got := t.Apply(inv.XsRow(k))
		if !samePattern(got.Ref(), expectX.Ref()) {
			panic(fmt.Sprintf("tableau: Inverse internal invariant violated at xs[%d]", k))
		}
		if got.Ref().IsSignNegative() != expectX.Ref().IsSignNegative() {
			inv.XsRow(k).SignFlip()
		}

		expectZ := pauli.Identity(n)
		expectZ.Ref().Set(k, pauli.Z)
		gotZ := t.Apply(inv.ZsRow(k))
		if !samePattern(gotZ.Ref(), expectZ.Ref()) {
			panic(fmt.Sprintf("tableau: Inverse internal invariant violated at zs[%d]", k))
		}
		if gotZ.Ref().IsSignNegative() != expectZ.Ref().IsSignNegative() {
			inv.ZsRow(k).SignFlip()
		}
	}
	obs.Debugf(os.Stderr, "[Inverse] done n=%d\n", n)
	return inv
}

// samePattern compares two Pauli strings' (x,z) bit content, ignoring sign.
func samePattern(a, b pauli.StringRef) bool {
	return a.N == b.N && a.Xs.Prefix(a.N).Equal(b.Xs.Prefix(b.N)) && a.Zs.Prefix(a.N).Equal(b.Zs.Prefix(b.N))
}
