package simd

import (
	"math/rand"
	"testing"
)

func TestBitVecPadding(t *testing.T) {
	v := NewBitVec(5)
	if v.PaddedLen() != WordBits {
		t.Fatalf("expected padded len %d, got %d", WordBits, v.PaddedLen())
	}
	if v.Len() != 5 {
		t.Fatalf("expected logical len 5, got %d", v.Len())
	}
	if v.Any() {
		t.Fatalf("fresh BitVec should be all zero")
	}
}

func TestBitVecSetGetXor(t *testing.T) {
	v := NewBitVec(128)
	v.At(3).Set(true)
	v.At(70).Set(true)
	if !v.At(3).Get() || !v.At(70).Get() {
		t.Fatalf("expected bits 3 and 70 set")
	}
	o := NewBitVec(128)
	o.At(3).Set(true)
	v.Xor(o)
	if v.At(3).Get() {
		t.Fatalf("expected bit 3 cleared after self-xor")
	}
	if !v.At(70).Get() {
		t.Fatalf("expected bit 70 still set")
	}
}

func TestBitVecSwap(t *testing.T) {
	a := NewBitVec(64)
	b := NewBitVec(64)
	a.At(1).Set(true)
	b.At(2).Set(true)
	a.Swap(b)
	if !a.At(2).Get() || a.At(1).Get() {
		t.Fatalf("swap did not exchange contents")
	}
	if !b.At(1).Get() || b.At(2).Get() {
		t.Fatalf("swap did not exchange contents")
	}
}

func TestBitVecEnsureLengthAtLeast(t *testing.T) {
	v := NewBitVec(10)
	v.At(4).Set(true)
	v.EnsureLengthAtLeast(200)
	if v.Len() != 200 {
		t.Fatalf("expected grown length 200, got %d", v.Len())
	}
	if !v.At(4).Get() {
		t.Fatalf("expected bit 4 preserved after growth")
	}
}

func TestBitVecRandomizeLeavesHighBitsAlone(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	v := NewBitVec(128)
	v.At(100).Set(true)
	v.Randomize(64, rng)
	if !v.At(100).Get() {
		t.Fatalf("Randomize(64) must not touch bit 100")
	}
}

func TestRandomBitVecPaddingIsZero(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	v := RandomBitVec(5, rng)
	for i := 5; i < v.PaddedLen(); i++ {
		if v.At(i).Get() {
			t.Fatalf("padding bit %d expected zero, got set", i)
		}
	}
}

func TestBitRefOps(t *testing.T) {
	v := NewBitVec(64)
	r := v.At(10)
	r.OrAssign(true)
	if !r.Get() {
		t.Fatalf("OrAssign(true) should set bit")
	}
	r.AndAssign(false)
	if r.Get() {
		t.Fatalf("AndAssign(false) should clear bit")
	}
	r.XorAssign(true)
	if !r.Get() {
		t.Fatalf("XorAssign(true) on zero bit should set it")
	}
	r.XorAssign(true)
	if r.Get() {
		t.Fatalf("XorAssign(true) twice should clear it")
	}
}
