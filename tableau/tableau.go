// Package tableau implements the N-qubit stabilizer tableau (spec §4.3): the
// generator images xs[0..N-1], zs[0..N-1] of a Clifford unitary, each a
// pauli.StringRef backed by four shared simd.BitTables plus two sign
// simd.BitVecs, per spec §3's storage layout.
package tableau

import (
	"fmt"

	"stabkit/pauli"
	"stabkit/randgen"
	"stabkit/simd"
)

// Tableau holds an N-qubit Clifford's generator images. Row i of the four
// bit tables holds, across all N output qubits, the X- and Z-bit components
// of xs[i] (tables xx, xz) and zs[i] (tables zx, zz). signsX[i]/signsZ[i]
// hold the corresponding signs.
type Tableau struct {
	n                  int
	xx, xz, zx, zz     *simd.BitTable
	signsX, signsZ     *simd.BitVec
}

// New allocates an n-qubit tableau with all bit tables and sign vectors
// zeroed (the all-identity generator images, not yet a valid Clifford until
// populated — callers normally want Identity instead).
func New(n int) *Tableau {
	return &Tableau{
		n:      n,
		xx:     simd.NewBitTable(n, n),
		xz:     simd.NewBitTable(n, n),
		zx:     simd.NewBitTable(n, n),
		zz:     simd.NewBitTable(n, n),
		signsX: simd.NewBitVec(n),
		signsZ: simd.NewBitVec(n),
	}
}

// Identity returns the n-qubit identity tableau: xs[i] = X_i, zs[i] = Z_i,
// all signs +.
func Identity(n int) *Tableau {
	t := New(n)
	t.xx.Identity(n)
	t.zz.Identity(n)
	return t
}

// N returns the qubit count.
func (t *Tableau) N() int { return t.n }

// XsRow returns generator xs[i] as a StringRef.
func (t *Tableau) XsRow(i int) pauli.StringRef {
	return pauli.StringRef{
		N:    t.n,
		Sign: t.signsX.At(i),
		Xs:   t.xx.Row(i).Prefix(t.n),
		Zs:   t.xz.Row(i).Prefix(t.n),
	}
}

// ZsRow returns generator zs[i] as a StringRef.
func (t *Tableau) ZsRow(i int) pauli.StringRef {
	return pauli.StringRef{
		N:    t.n,
		Sign: t.signsZ.At(i),
		Xs:   t.zx.Row(i).Prefix(t.n),
		Zs:   t.zz.Row(i).Prefix(t.n),
	}
}

// Expand grows the tableau to newN qubits, extending every existing
// generator's support with identity and adding fresh X_i/Z_i generators for
// the new qubits (spec §4.3's expand operation).
func (t *Tableau) Expand(newN int) {
	if newN <= t.n {
		return
	}
	grown := Identity(newN)
	for i := 0; i < t.n; i++ {
		src := t.XsRow(i)
		dst := grown.XsRow(i)
		dst.Xs.Prefix(t.n).CopyFrom(src.Xs)
		dst.Zs.Prefix(t.n).CopyFrom(src.Zs)
		dst.Sign.Set(src.Sign.Get())

		srcZ := t.ZsRow(i)
		dstZ := grown.ZsRow(i)
		dstZ.Xs.Prefix(t.n).CopyFrom(srcZ.Xs)
		dstZ.Zs.Prefix(t.n).CopyFrom(srcZ.Zs)
		dstZ.Sign.Set(srcZ.Sign.Get())
	}
	*t = *grown
}

// Clone returns a deep, independent copy.
func (t *Tableau) Clone() *Tableau {
	out := New(t.n)
	for i := 0; i < t.n; i++ {
		out.xx.Row(i).CopyFrom(t.xx.Row(i))
		out.xz.Row(i).CopyFrom(t.xz.Row(i))
		out.zx.Row(i).CopyFrom(t.zx.Row(i))
		out.zz.Row(i).CopyFrom(t.zz.Row(i))
	}
	out.signsX.Ref().CopyFrom(t.signsX.Ref())
	out.signsZ.Ref().CopyFrom(t.signsZ.Ref())
	return out
}

// Equal reports whether two tableaus of the same qubit count have identical
// generator images (bit content and signs).
func (t *Tableau) Equal(o *Tableau) bool {
	if t.n != o.n {
		return false
	}
	for i := 0; i < t.n; i++ {
		if !t.XsRow(i).Equal(o.XsRow(i)) || !t.ZsRow(i).Equal(o.ZsRow(i)) {
			return false
		}
	}
	return true
}

// Apply computes t·P·t⁻¹ for an input Pauli string P of the same length as
// t (spec §4.3's apply-to-a-Pauli pseudocode): starting from the identity,
// multiply in xs[k] for every qubit k where P has an X-component and zs[k]
// where P has a Z-component, tracking phase via pauli.RightMulReturningLogI.
// A qubit where P is Y (= i·X·Z) adds one more factor of i. Panics if the
// accumulated phase exponent is odd — an internal invariant break, since a
// valid Clifford image always contributes an even exponent.
func (t *Tableau) Apply(p pauli.StringRef) *pauli.StringOwned {
	if p.N != t.n {
		panic(fmt.Sprintf("tableau: Apply length mismatch: tableau is %d qubits, pauli is %d", t.n, p.N))
	}
	result := pauli.Identity(t.n)
	rref := result.Ref()
	logI := 0
	for k := 0; k < t.n; k++ {
		if p.Xs.At(k).Get() {
			logI += pauli.RightMulReturningLogI(rref, t.XsRow(k))
		}
		if p.Zs.At(k).Get() {
			logI += pauli.RightMulReturningLogI(rref, t.ZsRow(k))
		}
		if p.Xs.At(k).Get() && p.Zs.At(k).Get() {
			logI++
		}
	}
	logI &= 3
	if logI&1 != 0 {
		panic("tableau: Apply produced an odd phase exponent; tableau is not a valid Clifford")
	}
	sign := p.Sign.Get()
	if logI == 2 {
		sign = !sign
	}
	rref.Sign.Set(sign)
	return result
}

// embed builds a full n-qubit Pauli string with sub scattered in at the
// given target qubits (all other qubits identity).
func embed(sub pauli.StringRef, n int, targets []int) *pauli.StringOwned {
	out := pauli.Identity(n)
	sub.ScatterInto(out.Ref(), targets)
	return out
}

// Prepend composes t ← op ∘ t: op is applied before t (spec §4.3). Only the
// len(targets) generator rows touching the target qubits change; every
// other xs[i]/zs[i] is exactly gate(X_i) = X_i for i outside targets, hence
// untouched. New values are computed from t's OLD state before any row is
// overwritten, since op's own generator images can have support spread
// across several target qubits simultaneously (e.g. CX's X0 ↦ X0X1).
func (t *Tableau) Prepend(op *Tableau, targets []int) {
	if op.n != len(targets) {
		panic("tableau: Prepend requires op.N() == len(targets)")
	}
	k := len(targets)
	newXs := make([]*pauli.StringOwned, k)
	newZs := make([]*pauli.StringOwned, k)
	for li := 0; li < k; li++ {
		newXs[li] = t.Apply(embed(op.XsRow(li), t.n, targets).Ref())
		newZs[li] = t.Apply(embed(op.ZsRow(li), t.n, targets).Ref())
	}
	for li, qi := range targets {
		t.setXsRow(qi, newXs[li])
		t.setZsRow(qi, newZs[li])
	}
}

// Append composes t ← t ∘ op: op is applied after t (spec §4.3). Every one
// of t's N generator rows may carry some support on the target qubits, so
// each row's target-qubit sub-Pauli is gathered, run through op.Apply, and
// scattered back in place.
func (t *Tableau) Append(op *Tableau, targets []int) {
	if op.n != len(targets) {
		panic("tableau: Append requires op.N() == len(targets)")
	}
	for i := 0; i < t.n; i++ {
		appendRow(t.XsRow(i), op, targets)
		appendRow(t.ZsRow(i), op, targets)
	}
}

func appendRow(row pauli.StringRef, op *Tableau, targets []int) {
	sub := pauli.Identity(len(targets))
	subRef := sub.Ref()
	row.GatherInto(subRef, targets)
	newSub := op.Apply(subRef)
	for _, idx := range targets {
		row.Xs.At(idx).Set(false)
		row.Zs.At(idx).Set(false)
	}
	newSub.Ref().ScatterInto(row, targets)
}

func (t *Tableau) setXsRow(i int, p *pauli.StringOwned) {
	dst := t.XsRow(i)
	src := p.Ref()
	dst.Xs.CopyFrom(src.Xs)
	dst.Zs.CopyFrom(src.Zs)
	dst.Sign.Set(src.Sign.Get())
}

func (t *Tableau) setZsRow(i int, p *pauli.StringOwned) {
	dst := t.ZsRow(i)
	src := p.Ref()
	dst.Xs.CopyFrom(src.Xs)
	dst.Zs.CopyFrom(src.Zs)
	dst.Sign.Set(src.Sign.Get())
}

// Random returns a random valid n-qubit Clifford tableau built in the shape
// of the Bravyi-Maslov canonical form (spec §4.3, §4.7), delegating the
// permutation/Hadamard-mask draw to randgen.SampleQuantumMallows and the
// residual symplectic/sign freedom to independent fair coins. The resulting
// distribution is not uniform over the Clifford group.
func Random(n int, rng *randgen.RNG) *Tableau {
	return randomCanonical(n, rng)
}
