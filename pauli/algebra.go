package pauli

import "stabkit/simd"

// Commutes reports whether two equal-length Pauli strings commute:
// popcount(xs1 & zs2 ^ xs2 & zs1) mod 2 == 0 (spec §3, §8).
func (r StringRef) Commutes(o StringRef) bool {
	mustEqualLen(r, o, "Commutes")
	n := len(r.Xs.Words)
	parity := 0
	for i := 0; i < n; i++ {
		term := (r.Xs.Words[i] & o.Zs.Words[i]) ^ (o.Xs.Words[i] & r.Zs.Words[i])
		parity ^= popcountParity(term)
	}
	return parity == 0
}

func popcountParity(w uint64) int {
	// XOR-fold to a single parity bit; cheaper than a full popcount.
	w ^= w >> 32
	w ^= w >> 16
	w ^= w >> 8
	w ^= w >> 4
	w ^= w >> 2
	w ^= w >> 1
	return int(w & 1)
}

func mustEqualLen(a, b StringRef, op string) {
	if a.N != b.N {
		panic("pauli: " + op + " requires equal-length operands")
	}
}

// RightMulReturningLogI computes dst ← dst · rhs · i^{-k} on the symplectic
// (xs,zs) bits only — signs are untouched — and returns k, the base-i
// logarithm of the scalar phase absorbed into the product (spec §4.2).
//
// Implements the accumulator trick verbatim from spec §4.2: two parallel
// bit-vectors c1,c2 tally anti-commutations mod 4 per bit position as the
// symplectic XOR is applied, word by word.
func RightMulReturningLogI(dst, rhs StringRef) int {
	mustEqualLen(dst, rhs, "RightMulReturningLogI")
	words := len(dst.Xs.Words)
	c1 := make([]uint64, words)
	c2 := make([]uint64, words)
	for i := 0; i < words; i++ {
		oldX1 := dst.Xs.Words[i]
		oldZ1 := dst.Zs.Words[i]
		x2 := rhs.Xs.Words[i]
		z2 := rhs.Zs.Words[i]

		newX1 := oldX1 ^ x2
		newZ1 := oldZ1 ^ z2
		anti := (x2 & oldZ1) ^ (oldX1 & z2)
		c2[i] ^= (c1[i] ^ newX1 ^ newZ1 ^ (oldX1 & z2)) & anti
		c1[i] ^= anti

		dst.Xs.Words[i] = newX1
		dst.Zs.Words[i] = newZ1
	}
	pop1, pop2 := 0, 0
	for i := 0; i < words; i++ {
		pop1 += int(simd.Word(c1[i]).PopCount())
		pop2 += int(simd.Word(c2[i]).PopCount())
	}
	k := pop1 + 2*pop2
	if rhs.Sign.Get() {
		k += 2
	}
	return k & 3
}

// MulCommutingAssign sets dst ← dst · rhs, updating dst's sign for the ±1
// scalar that results. Precondition: dst.Commutes(rhs); violating it panics
// via a CoreError-free internal assertion (spec §7 reserves panics for
// invariant breaks, not user input — callers that accept untrusted operand
// pairs must call Commutes first and surface an AlgebraViolation
// themselves).
func (dst StringRef) MulCommutingAssign(rhs StringRef) {
	k := RightMulReturningLogI(dst, rhs)
	if k&1 != 0 {
		panic("pauli: MulCommutingAssign precondition violated: operands anticommute")
	}
	if (k/2)&1 == 1 {
		dst.SignFlip()
	}
}
