package sim

import (
	"fmt"

	"stabkit/corerr"
	"stabkit/pauli"
	"stabkit/randgen"
	"stabkit/tableau"
)

// TableauSimulator tracks one exact stabilizer state as the inverse of the
// Clifford applied so far (spec §4.6): state = inv, with inv = C⁻¹ where
// the physical state is C|0...0⟩. The inverse form makes measurement
// queries cheap — the deterministic-outcome check and sign read are a
// single row lookup, with no matrix inversion needed on the common path;
// inversion is only paid for the rarer random-outcome collapse.
type TableauSimulator struct {
	inv    *tableau.Tableau
	record *MeasurementRecord
	rng    *randgen.RNG
}

// NewTableauSimulator starts a simulator on n qubits in the |0...0⟩ state.
func NewTableauSimulator(n int, rng *randgen.RNG) *TableauSimulator {
	return &TableauSimulator{
		inv:    tableau.Identity(n),
		record: NewMeasurementRecord(1),
		rng:    rng,
	}
}

// N returns the qubit count.
func (ts *TableauSimulator) N() int { return ts.inv.N() }

// Record returns the simulator's measurement record.
func (ts *TableauSimulator) Record() *MeasurementRecord { return ts.record }

// InverseTableau exposes the current C⁻¹ (read-only use expected; callers
// that mutate it break the simulator's invariant).
func (ts *TableauSimulator) InverseTableau() *tableau.Tableau { return ts.inv }

func snapshotRow(r pauli.StringRef) *pauli.StringOwned {
	out := pauli.Identity(r.N)
	o := out.Ref()
	o.Xs.CopyFrom(r.Xs)
	o.Zs.CopyFrom(r.Zs)
	o.Sign.Set(r.Sign.Get())
	return out
}

func overwriteRow(dst pauli.StringRef, src pauli.StringRef) {
	dst.Xs.CopyFrom(src.Xs)
	dst.Zs.CopyFrom(src.Zs)
	dst.Sign.Set(src.Sign.Get())
}

// applyNamedGate updates state by prepending the gate's inverse tableau
// onto inv (spec §4.6: "updates C⁻¹ by prepending the gate's inverse
// tableau on the gate's qubits"), i.e. the gate is the newest operation
// applied to the accumulated history.
func (ts *TableauSimulator) applyNamedGate(name string, targets []int) error {
	g, err := tableau.Lookup(name)
	if err != nil {
		return err
	}
	if !g.IsUnitary {
		return fmt.Errorf("sim: %s is not a unitary gate", name)
	}
	inv, err := tableau.Lookup(g.InverseName)
	if err != nil {
		return err
	}
	ts.inv.Prepend(inv.Tableau, targets)
	return nil
}

// ApplyGate is the public entry point for a unitary gate application.
func (ts *TableauSimulator) ApplyGate(name string, targets []int) error {
	return ts.applyNamedGate(name, targets)
}

// pivotForZ returns the first generator index i whose stabilizer image
// anticommutes with Z_q — equivalently, per spec §4.6 step 1, "examine the
// appropriate column of the transposed tableau" — computed here directly
// from inv.ZsRow(q): inv.Apply(Z_q) = inv.ZsRow(q) exactly (Z_q has only a
// single Z-component, so Tableau.Apply's accumulator loop only ever visits
// that one row), and its Xs bit at i is set iff stabilizer S_i = C Z_i C⁻¹
// anticommutes with Z_q. No inversion needed for this check.
func (ts *TableauSimulator) pivotForZ(q int) (pivot int, found bool) {
	row := ts.inv.ZsRow(q)
	n := ts.inv.N()
	for i := 0; i < n; i++ {
		if row.Xs.At(i).Get() {
			return i, true
		}
	}
	return -1, false
}

// collapseZ performs the Aaronson-Gottesman stabilizer-measurement update
// for a Z_q measurement with a forced outcome (nil forced = draw a fresh
// coin). Returns the outcome. If q is already deterministic, no state
// mutation happens and forced (if given) must match or the caller is
// responsible for reporting a postselection failure.
func (ts *TableauSimulator) collapseZ(q int, forced *bool) (outcome bool, wasDeterministic bool) {
	pivot, found := ts.pivotForZ(q)
	if !found {
		return ts.inv.ZsRow(q).Sign.Get(), true
	}

	// Work on the forward tableau C = inv⁻¹: its Z-rows are the physical
	// stabilizer generators, its X-rows the destabilizers (spec §4.6's
	// Gaussian-elimination collapse, transcribed on the standard CHP
	// tableau rather than stim's literal in-place inverse-table routine —
	// see DESIGN.md for why the round-trip through Inverse is preferred
	// here over an untested raw elimination).
	fwd := ts.inv.Inverse()
	n := fwd.N()
	pivotRow := snapshotRow(fwd.ZsRow(pivot))
	pivotRef := pivotRow.Ref()

	for i := 0; i < n; i++ {
		if i == pivot {
			continue
		}
		if fwd.ZsRow(i).Xs.At(q).Get() {
			fwd.ZsRow(i).MulCommutingAssign(pivotRef)
		}
		if fwd.XsRow(i).Xs.At(q).Get() {
			fwd.XsRow(i).MulCommutingAssign(pivotRef)
		}
	}

	// Destabilizer(pivot) inherits the old stabilizer(pivot) row; the
	// stabilizer(pivot) row itself becomes a fresh Z_q with the forced or
	// random sign.
	overwriteRow(fwd.XsRow(pivot), pivotRef)

	if forced != nil {
		outcome = *forced
	} else {
		outcome = ts.rng.Bit()
	}
	newZ := pauli.Identity(n)
	nz := newZ.Ref()
	nz.Set(q, pauli.Z)
	nz.Sign.Set(outcome)
	overwriteRow(fwd.ZsRow(pivot), nz)

	ts.inv = fwd.Inverse()
	return outcome, false
}

// MeasureZ measures qubit q in the Z basis, optionally flipping the
// recorded (not physical) outcome with probability noiseProb, and appends
// the result to the measurement record.
func (ts *TableauSimulator) MeasureZ(q int, noiseProb float64) error {
	outcome, _ := ts.collapseZ(q, nil)
	recorded := outcome
	if noiseProb > 0 && ts.rng.BiasedBit(noiseProb) {
		recorded = !recorded
	}
	return ts.record.AppendBit(recorded)
}

// ResetZ collapses qubit q to the Z basis and flips it to |0⟩ (+Z_q) if
// the collapsed sign came out negative. Does not touch the measurement
// record (spec §4.6: "Reset in Z... apply X_q to flip it to +").
func (ts *TableauSimulator) ResetZ(q int) error {
	outcome, _ := ts.collapseZ(q, nil)
	if outcome {
		return ts.applyNamedGate("X", []int{q})
	}
	return nil
}

// MeasureResetZ measures then resets to |0⟩ using the same physical
// outcome for both (spec §4.6: "Measure-and-reset = measurement then
// basis-reset to |0⟩").
func (ts *TableauSimulator) MeasureResetZ(q int, noiseProb float64) error {
	outcome, _ := ts.collapseZ(q, nil)
	recorded := outcome
	if noiseProb > 0 && ts.rng.BiasedBit(noiseProb) {
		recorded = !recorded
	}
	if err := ts.record.AppendBit(recorded); err != nil {
		return err
	}
	if outcome {
		return ts.applyNamedGate("X", []int{q})
	}
	return nil
}

// basisRotationGate returns the self-inverse single-qubit gate name that
// rotates the given non-Z Pauli basis onto Z (and back, applied twice).
func basisRotationGate(p pauli.Pauli) (string, bool) {
	switch p {
	case pauli.X:
		return "H", true
	case pauli.Y:
		return "H_YZ", true
	default:
		return "", false
	}
}

// measureInBasis and resetInBasis implement the X/Y basis variants by
// conjugating with the basis-rotation gate before and after the Z-basis
// routine (spec §4.6: "Resets in X/Y use the same routine with pre/post
// basis rotations.").
func (ts *TableauSimulator) measureInBasis(p pauli.Pauli, q int, noiseProb float64) error {
	if gate, ok := basisRotationGate(p); ok {
		if err := ts.applyNamedGate(gate, []int{q}); err != nil {
			return err
		}
		defer ts.applyNamedGate(gate, []int{q})
	}
	return ts.MeasureZ(q, noiseProb)
}

func (ts *TableauSimulator) resetInBasis(p pauli.Pauli, q int) error {
	if gate, ok := basisRotationGate(p); ok {
		if err := ts.applyNamedGate(gate, []int{q}); err != nil {
			return err
		}
		defer ts.applyNamedGate(gate, []int{q})
	}
	return ts.ResetZ(q)
}

func (ts *TableauSimulator) measureResetInBasis(p pauli.Pauli, q int, noiseProb float64) error {
	if gate, ok := basisRotationGate(p); ok {
		if err := ts.applyNamedGate(gate, []int{q}); err != nil {
			return err
		}
		defer ts.applyNamedGate(gate, []int{q})
	}
	return ts.MeasureResetZ(q, noiseProb)
}

// MeasureX, MeasureY, MeasureZ-basis convenience wrappers, dispatched from
// the circuit layer's gate names (MX/MY/MZ).
func (ts *TableauSimulator) MeasureX(q int, noiseProb float64) error { return ts.measureInBasis(pauli.X, q, noiseProb) }
func (ts *TableauSimulator) MeasureY(q int, noiseProb float64) error { return ts.measureInBasis(pauli.Y, q, noiseProb) }

func (ts *TableauSimulator) ResetX(q int) error { return ts.resetInBasis(pauli.X, q) }
func (ts *TableauSimulator) ResetY(q int) error { return ts.resetInBasis(pauli.Y, q) }

func (ts *TableauSimulator) MeasureResetX(q int, noiseProb float64) error {
	return ts.measureResetInBasis(pauli.X, q, noiseProb)
}
func (ts *TableauSimulator) MeasureResetY(q int, noiseProb float64) error {
	return ts.measureResetInBasis(pauli.Y, q, noiseProb)
}

// MeasurePauliProduct implements MPP (spec §4.6): conjugate the product
// to Z on its first non-identity qubit, measure, conjugate back. Operand
// qubits must be distinct; p.Get(i) gives the Pauli acting on targets[i].
func (ts *TableauSimulator) MeasurePauliProduct(p pauli.StringRef, targets []int, noiseProb float64) error {
	seen := make(map[int]bool, len(targets))
	for _, q := range targets {
		if seen[q] {
			return corerr.New(corerr.AlgebraViolation, "MPP target qubit %d specified more than once", q)
		}
		seen[q] = true
	}

	rotated := make([]int, 0, len(targets))
	for i, q := range targets {
		if gate, ok := basisRotationGate(p.Get(i)); ok {
			if err := ts.applyNamedGate(gate, []int{q}); err != nil {
				return err
			}
			rotated = append(rotated, i)
		}
	}

	first := -1
	folded := make([]int, 0, len(targets))
	for i, q := range targets {
		if p.Get(i) == pauli.I {
			continue
		}
		if first == -1 {
			first = q
			continue
		}
		if err := ts.applyNamedGate("CX", []int{q, first}); err != nil {
			return err
		}
		folded = append(folded, i)
	}

	var outcome bool
	if first == -1 {
		outcome = p.Sign.Get()
	} else {
		raw, _ := ts.collapseZ(first, nil)
		outcome = raw
		if p.Sign.Get() {
			outcome = !outcome
		}
	}

	recorded := outcome
	if noiseProb > 0 && ts.rng.BiasedBit(noiseProb) {
		recorded = !recorded
	}
	if err := ts.record.AppendBit(recorded); err != nil {
		return err
	}

	for i := len(folded) - 1; i >= 0; i-- {
		idx := folded[i]
		if err := ts.applyNamedGate("CX", []int{targets[idx], first}); err != nil {
			return err
		}
	}
	for i := len(rotated) - 1; i >= 0; i-- {
		idx := rotated[i]
		gate, _ := basisRotationGate(p.Get(idx))
		if err := ts.applyNamedGate(gate, []int{targets[idx]}); err != nil {
			return err
		}
	}
	return nil
}

// ClassicalControl applies the named single-qubit Pauli gate to q iff the
// measurement record's lookback-th bit is set (spec §4.6: "operations like
// CX rec[-1] q flip qubit q iff the referenced measurement was 1").
func (ts *TableauSimulator) ClassicalControl(gateName string, q int, lookback int) error {
	bit, err := ts.record.LookbackBit(lookback)
	if err != nil {
		return fmt.Errorf("sim: classical control: %w", err)
	}
	if !bit {
		return nil
	}
	return ts.applyNamedGate(gateName, []int{q})
}

// PostselectZ behaves like MeasureZ but forces the outcome to desired,
// raising a PostselectionFailure if q is already deterministic with the
// opposite sign (spec §4.6, §7).
func (ts *TableauSimulator) PostselectZ(q int, desired bool) error {
	_, found := ts.pivotForZ(q)
	if !found {
		actual := ts.inv.ZsRow(q).Sign.Get()
		if actual != desired {
			return corerr.New(corerr.PostselectionFailure, "qubit %d is deterministically %v, cannot postselect %v", q, actual, desired)
		}
		return nil
	}
	ts.collapseZ(q, &desired)
	return nil
}

// PostselectInBasis is the X/Y-basis counterpart of PostselectZ.
func (ts *TableauSimulator) PostselectInBasis(p pauli.Pauli, q int, desired bool) error {
	if gate, ok := basisRotationGate(p); ok {
		if err := ts.applyNamedGate(gate, []int{q}); err != nil {
			return err
		}
		defer ts.applyNamedGate(gate, []int{q})
	}
	return ts.PostselectZ(q, desired)
}
