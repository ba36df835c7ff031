package simd

import "fmt"

// RandSource is the minimal RNG capability BitVec/BitTable randomization
// needs. randgen.RNG satisfies this; kept local to simd to avoid an import
// cycle (simd is the leaf package every other package in stabkit builds on).
type RandSource interface {
	Uint64() uint64
}

// BitVecRef is a non-owning, word-aligned view into a BitVec or foreign
// memory. Assigning one to another (in Go, any plain `=`) copies the slice
// header, not contents; use CopyFrom to copy bit contents as the spec
// requires of `:=` on the reference type in the source language.
type BitVecRef struct {
	Words []uint64
}

// Len returns the padded bit length of the view (always a multiple of 64).
func (r BitVecRef) Len() int { return len(r.Words) * WordBits }

// At returns a BitRef to bit i of the view.
func (r BitVecRef) At(i int) BitRef {
	return BitRef{word: &r.Words[i/WordBits], bit: uint(i % WordBits)}
}

func (r BitVecRef) mustSameLen(o BitVecRef, op string) {
	if len(r.Words) != len(o.Words) {
		panic(fmt.Sprintf("simd: %s requires equal padded length, got %d and %d words", op, len(r.Words), len(o.Words)))
	}
}

// Xor performs this ^= o, word-parallel. Operands must have identical
// padded length.
func (r BitVecRef) Xor(o BitVecRef) {
	r.mustSameLen(o, "Xor")
	for i := range r.Words {
		r.Words[i] ^= o.Words[i]
	}
}

// And performs this &= o.
func (r BitVecRef) And(o BitVecRef) {
	r.mustSameLen(o, "And")
	for i := range r.Words {
		r.Words[i] &= o.Words[i]
	}
}

// Or performs this |= o.
func (r BitVecRef) Or(o BitVecRef) {
	r.mustSameLen(o, "Or")
	for i := range r.Words {
		r.Words[i] |= o.Words[i]
	}
}

// AndNot performs this &^= o.
func (r BitVecRef) AndNot(o BitVecRef) {
	r.mustSameLen(o, "AndNot")
	for i := range r.Words {
		r.Words[i] &^= o.Words[i]
	}
}

// Swap exchanges the bit contents of this and o in place.
func (r BitVecRef) Swap(o BitVecRef) {
	r.mustSameLen(o, "Swap")
	for i := range r.Words {
		r.Words[i], o.Words[i] = o.Words[i], r.Words[i]
	}
}

// CopyFrom overwrites this view's contents with o's (value copy, not a
// reference rebind).
func (r BitVecRef) CopyFrom(o BitVecRef) {
	r.mustSameLen(o, "CopyFrom")
	copy(r.Words, o.Words)
}

// Equal reports bit-for-bit equality, including padding bits.
func (r BitVecRef) Equal(o BitVecRef) bool {
	if len(r.Words) != len(o.Words) {
		return false
	}
	for i := range r.Words {
		if r.Words[i] != o.Words[i] {
			return false
		}
	}
	return true
}

// Clear zeros every bit in the view.
func (r BitVecRef) Clear() {
	for i := range r.Words {
		r.Words[i] = 0
	}
}

// Any reports whether the view is non-zero (the "truthy" test from spec
// §4.1).
func (r BitVecRef) Any() bool {
	for _, w := range r.Words {
		if w != 0 {
			return true
		}
	}
	return false
}

// PopCount returns the total number of set bits in the view.
func (r BitVecRef) PopCount() int {
	n := 0
	for _, w := range r.Words {
		n += int(Word(w).PopCount())
	}
	return n
}

// Randomize sets the low upToBits bits of the view to fresh random values
// drawn from rng; bits at or beyond upToBits are left untouched, matching
// the "higher bits untouched" contract in spec §4.1.
func (r BitVecRef) Randomize(upToBits int, rng RandSource) {
	if upToBits <= 0 {
		return
	}
	fullWords := upToBits / WordBits
	for i := 0; i < fullWords && i < len(r.Words); i++ {
		r.Words[i] = rng.Uint64()
	}
	rem := upToBits % WordBits
	if rem != 0 && fullWords < len(r.Words) {
		mask := uint64(1)<<uint(rem) - 1
		r.Words[fullWords] = (r.Words[fullWords] &^ mask) | (rng.Uint64() & mask)
	}
}

// Prefix returns the sub-view covering the first nBits bits, rounded up to
// whole words; nBits must not exceed the view's padded length.
func (r BitVecRef) Prefix(nBits int) BitVecRef {
	w := wordsFor(nBits)
	return BitVecRef{Words: r.Words[:w]}
}

func wordsFor(nBits int) int {
	if nBits <= 0 {
		return 0
	}
	return (nBits + WordBits - 1) / WordBits
}
