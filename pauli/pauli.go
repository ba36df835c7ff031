// Package pauli implements length-N Pauli strings in the symplectic
// (x-bits, z-bits, sign) encoding (spec §3, §4.2).
//
// Per spec §9's design note, raw pointer aliasing between an owning Pauli
// string and a borrowed view is replaced with two explicit types:
// StringOwned (owns its bit storage) and StringRef (borrows simd.BitVecRefs
// plus a simd.BitRef for the sign). All algebra is implemented on StringRef;
// StringOwned produces a StringRef on demand via Ref().
package pauli

import (
	"fmt"

	"stabkit/simd"
)

// Pauli is a single-qubit Pauli value, encoded as x + 2*z — matching the
// decode table in spec §3 ((0,0)=I, (1,0)=X, (0,1)=Z, (1,1)=Y), which is the
// convention the original source's "IXZY" character table encodes (spec
// §4.2's literal string "+IXYZ" is reconciled against that table; see
// DESIGN.md).
type Pauli int

const (
	I Pauli = 0
	X Pauli = 1
	Z Pauli = 2
	Y Pauli = 3
)

// pauliChars is indexed by Pauli (x + 2*z).
const pauliChars = "IXZY"

func (p Pauli) String() string { return string(pauliChars[p&3]) }

// StringOwned owns its sign bit and two bit vectors.
type StringOwned struct {
	n        int
	signWord [1]uint64
	xs, zs   *simd.BitVec
}

// StringRef is a non-owning view: a sign BitRef plus two BitVecRefs. All
// Pauli algebra (commutes, multiply, gather/scatter) is defined on this
// type; StringOwned.Ref() produces one.
type StringRef struct {
	N    int
	Sign simd.BitRef
	Xs   simd.BitVecRef
	Zs   simd.BitVecRef
}

// Identity returns the N-qubit identity Pauli string with sign +.
func Identity(n int) *StringOwned {
	return &StringOwned{
		n:  n,
		xs: simd.NewBitVec(n),
		zs: simd.NewBitVec(n),
	}
}

// Ref returns a borrowed view over p's storage.
func (p *StringOwned) Ref() StringRef {
	return StringRef{
		N:    p.n,
		Sign: simd.NewBitRef(&p.signWord[0], 0),
		Xs:   p.xs.Ref(),
		Zs:   p.zs.Ref(),
	}
}

// Len returns the logical qubit count.
func (p *StringOwned) Len() int { return p.n }

// Clone returns a deep, independent copy.
func (p *StringOwned) Clone() *StringOwned {
	out := Identity(p.n)
	out.signWord[0] = p.signWord[0]
	out.xs.Ref().CopyFrom(p.xs.Ref())
	out.zs.Ref().CopyFrom(p.zs.Ref())
	return out
}

// EnsureLengthAtLeast grows the string to at least n qubits, padding the new
// qubits with identity (spec §3's "may grow by constructing a new backing
// store").
func (p *StringOwned) EnsureLengthAtLeast(n int) {
	if n <= p.n {
		return
	}
	p.xs.EnsureLengthAtLeast(n)
	p.zs.EnsureLengthAtLeast(n)
	p.n = n
}

// FromPattern builds an N-qubit Pauli string with the given sign, where fn
// supplies the character ('_','I','X','Y','Z', case-insensitive) for each
// qubit index.
func FromPattern(sign bool, n int, fn func(idx int) byte) (*StringOwned, error) {
	out := Identity(n)
	r := out.Ref()
	for k := 0; k < n; k++ {
		p, err := parsePauliChar(fn(k))
		if err != nil {
			return nil, fmt.Errorf("pauli: FromPattern at qubit %d: %w", k, err)
		}
		r.Xs.At(k).Set(p&1 != 0)
		r.Zs.At(k).Set(p&2 != 0)
	}
	r.Sign.Set(sign)
	return out, nil
}

// Len returns N from a StringRef.
func (r StringRef) Len() int { return r.N }

// Get decodes the Pauli acting on qubit k.
func (r StringRef) Get(k int) Pauli {
	x := r.Xs.At(k).Get()
	z := r.Zs.At(k).Get()
	v := 0
	if x {
		v |= 1
	}
	if z {
		v |= 2
	}
	return Pauli(v)
}

// Set encodes Pauli v onto qubit k.
func (r StringRef) Set(k int, v Pauli) {
	r.Xs.At(k).Set(v&1 != 0)
	r.Zs.At(k).Set(v&2 != 0)
}

// SignFlip negates the string's sign in place.
func (r StringRef) SignFlip() { r.Sign.XorAssign(true) }

// IsSignNegative reports whether the string's sign is currently -.
func (r StringRef) IsSignNegative() bool { return r.Sign.Get() }

// Equal compares two refs of equal length for exact (sign-sensitive)
// equality.
func (r StringRef) Equal(o StringRef) bool {
	return r.N == o.N && r.Sign.Get() == o.Sign.Get() && r.Xs.Prefix(r.N).Equal(o.Xs.Prefix(o.N)) && r.Zs.Prefix(r.N).Equal(o.Zs.Prefix(o.N))
}

// GatherInto sets out[k] = this[indices[k]] for each k (spec §4.2); sign is
// untouched.
func (r StringRef) GatherInto(out StringRef, indices []int) {
	for k, idx := range indices {
		out.Xs.At(k).Set(r.Xs.At(idx).Get())
		out.Zs.At(k).Set(r.Zs.At(idx).Get())
	}
}

// ScatterInto XORs this[k] into out[indices[k]] for each k, and XORs this's
// sign into out's sign (spec §4.2).
func (r StringRef) ScatterInto(out StringRef, indices []int) {
	for k, idx := range indices {
		out.Xs.At(idx).XorAssign(r.Xs.At(k).Get())
		out.Zs.At(idx).XorAssign(r.Zs.At(k).Get())
	}
	out.Sign.XorAssign(r.Sign.Get())
}

func parsePauliChar(c byte) (Pauli, error) {
	switch c {
	case 'I', 'i', '_':
		return I, nil
	case 'X', 'x':
		return X, nil
	case 'Y', 'y':
		return Y, nil
	case 'Z', 'z':
		return Z, nil
	default:
		return 0, fmt.Errorf("unrecognized Pauli character %q", c)
	}
}
