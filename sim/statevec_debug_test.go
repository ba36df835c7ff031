//go:build stabkit_debug

package sim

import (
	"testing"

	"stabkit/randgen"
)

func TestDenseStateBellPairMatchesTableauDeterministicParity(t *testing.T) {
	ds := NewDenseZeroState(2)
	ds.Apply1("H", 0)
	ds.ApplyCX(0, 1)
	if p := ds.ProbabilityZero(0); p < 0.499 || p > 0.501 {
		t.Fatalf("qubit 0 marginal should be 0.5, got %v", p)
	}

	ts := NewTableauSimulator(2, randgen.New(1))
	if err := ts.ApplyGate("H", []int{0}); err != nil {
		t.Fatalf("ApplyGate H: %v", err)
	}
	if err := ts.ApplyGate("CX", []int{0, 1}); err != nil {
		t.Fatalf("ApplyGate CX: %v", err)
	}
	p, neg := ts.PeekBloch(0)
	if p != 0 {
		t.Fatalf("qubit 0 of a Bell pair should not be in a single-qubit eigenstate, got pauli=%v neg=%v", p, neg)
	}
}

func TestDenseStateCloseToDetectsPhaseFlip(t *testing.T) {
	a := NewDenseZeroState(1)
	a.Apply1("H", 0)
	b := NewDenseZeroState(1)
	b.Apply1("H", 0)
	b.Apply1("Z", 0)
	if a.CloseTo(b, 1e-9) {
		t.Fatalf("|+> and |-> should not be close")
	}
}
