package fingerprint

import (
	"testing"

	"stabkit/circuit"
	"stabkit/randgen"
	"stabkit/tableau"
)

func TestTableauFingerprintDeterministic(t *testing.T) {
	a := tableau.Random(8, randgen.New(42))
	b := tableau.Random(8, randgen.New(42))
	if Tableau(a) != Tableau(b) {
		t.Fatalf("same seed should produce identical fingerprints")
	}
}

func TestTableauFingerprintDiffersOnDifferentSeed(t *testing.T) {
	a := tableau.Random(8, randgen.New(1))
	b := tableau.Random(8, randgen.New(2))
	if Tableau(a) == Tableau(b) {
		t.Fatalf("different seeds should (almost certainly) produce different fingerprints")
	}
}

func TestTableauFingerprintIdentityIsStable(t *testing.T) {
	id1 := tableau.Identity(4)
	id2 := tableau.Identity(4)
	if Tableau(id1) != Tableau(id2) {
		t.Fatalf("two identity tableaus of the same size must hash identically")
	}
}

func TestCircuitFingerprintMatchesEqualStreams(t *testing.T) {
	ops := []circuit.Op{
		circuit.GateOp("H", nil, []circuit.Target{circuit.QubitTarget(0)}),
		circuit.RepeatOp(3, []circuit.Op{
			circuit.GateOp("CX", nil, []circuit.Target{circuit.QubitTarget(0), circuit.QubitTarget(1)}),
		}),
	}
	other := []circuit.Op{
		circuit.GateOp("H", nil, []circuit.Target{circuit.QubitTarget(0)}),
		circuit.RepeatOp(3, []circuit.Op{
			circuit.GateOp("CX", nil, []circuit.Target{circuit.QubitTarget(0), circuit.QubitTarget(1)}),
		}),
	}
	if Circuit(ops) != Circuit(other) {
		t.Fatalf("structurally identical op streams should hash identically")
	}
}

func TestCircuitFingerprintDiffersOnRepeatCount(t *testing.T) {
	base := []circuit.Op{
		circuit.RepeatOp(2, []circuit.Op{circuit.GateOp("X", nil, []circuit.Target{circuit.QubitTarget(0)})}),
	}
	changed := []circuit.Op{
		circuit.RepeatOp(3, []circuit.Op{circuit.GateOp("X", nil, []circuit.Target{circuit.QubitTarget(0)})}),
	}
	if Circuit(base) == Circuit(changed) {
		t.Fatalf("differing repeat counts must not hash identically")
	}
}
