package sim

import "stabkit/pauli"

func allZeroXs(r pauli.StringRef) bool {
	for k := 0; k < r.N; k++ {
		if r.Xs.At(k).Get() {
			return false
		}
	}
	return true
}

// PeekBloch returns the single-qubit Pauli (with sign folded into a
// negative return via the second value) that q is a stabilizer eigenstate
// of, or (I, false) if q is not in a single-qubit stabilizer eigenstate
// (spec §4.6's peek_bloch primitive). The second return is true when the
// eigenvalue is -1.
func (ts *TableauSimulator) PeekBloch(q int) (pauli.Pauli, bool) {
	n := ts.inv.N()
	for _, p := range []pauli.Pauli{pauli.Z, pauli.X, pauli.Y} {
		probe := pauli.Identity(n)
		probe.Ref().Set(q, p)
		out := ts.inv.Apply(probe.Ref())
		if allZeroXs(out.Ref()) {
			return p, out.Ref().Sign.Get()
		}
	}
	return pauli.I, false
}

// PeekObservableExpectation returns +1 if p is stabilized, -1 if
// anti-stabilized, 0 if p is neither (spec §4.6's
// peek_observable_expectation primitive): computed by attempting to
// decompose p as a product of output-side stabilizers via inv.Apply.
func (ts *TableauSimulator) PeekObservableExpectation(p pauli.StringRef) int {
	out := ts.inv.Apply(p)
	if !allZeroXs(out.Ref()) {
		return 0
	}
	if out.Ref().Sign.Get() {
		return -1
	}
	return 1
}
