package circuit

import (
	"testing"

	"stabkit/corerr"
	"stabkit/pauli"
	"stabkit/randgen"
	"stabkit/sim"
)

func TestSplitMPPTermsSingleAndMultiple(t *testing.T) {
	px, _ := PauliTarget(PauliXTarget, 0)
	py, _ := PauliTarget(PauliYTarget, 1)
	pz, _ := PauliTarget(PauliZTarget, 2)
	op := GateOp("MPP", nil, []Target{px, CombinerTarget(), py, pz})
	terms, err := op.SplitMPPTerms()
	if err != nil {
		t.Fatalf("SplitMPPTerms: %v", err)
	}
	if len(terms) != 2 {
		t.Fatalf("expected 2 terms (X0*Y1, Z2), got %d: %+v", len(terms), terms)
	}
	if len(terms[0].Qubits) != 2 || terms[0].Qubits[0] != 0 || terms[0].Qubits[1] != 1 {
		t.Fatalf("first term should join qubits 0,1, got %v", terms[0].Qubits)
	}
	if terms[0].Paulis[0] != pauli.X || terms[0].Paulis[1] != pauli.Y {
		t.Fatalf("first term should be X,Y, got %v", terms[0].Paulis)
	}
	if len(terms[1].Qubits) != 1 || terms[1].Qubits[0] != 2 || terms[1].Paulis[0] != pauli.Z {
		t.Fatalf("second term should be a lone Z2, got %+v", terms[1])
	}
}

func TestTableauDispatcherBellPair(t *testing.T) {
	rng := randgen.New(10)
	ts := sim.NewTableauSimulator(2, rng)
	d := NewTableauDispatcher(ts, rng)

	ops := []Op{
		GateOp("H", nil, []Target{QubitTarget(0)}),
		GateOp("CX", nil, []Target{QubitTarget(0), QubitTarget(1)}),
		GateOp("MZ", nil, []Target{QubitTarget(0), QubitTarget(1)}),
	}
	if err := d.Run(ops); err != nil {
		t.Fatalf("Run: %v", err)
	}
	b0, err := ts.Record().LookbackBit(-2)
	if err != nil {
		t.Fatalf("lookback 0: %v", err)
	}
	b1, err := ts.Record().LookbackBit(-1)
	if err != nil {
		t.Fatalf("lookback 1: %v", err)
	}
	if b0 != b1 {
		t.Fatalf("Bell pair: bit0=%v bit1=%v should match", b0, b1)
	}
}

func TestTableauDispatcherRepeatCancelsDoubleX(t *testing.T) {
	rng := randgen.New(11)
	ts := sim.NewTableauSimulator(1, rng)
	d := NewTableauDispatcher(ts, rng)

	ops := []Op{
		RepeatOp(2, []Op{GateOp("X", nil, []Target{QubitTarget(0)})}),
		GateOp("MZ", nil, []Target{QubitTarget(0)}),
	}
	if err := d.Run(ops); err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := ts.Record().LookbackBit(-1)
	if err != nil {
		t.Fatalf("lookback: %v", err)
	}
	if b {
		t.Fatalf("two X gates should cancel, qubit should read 0")
	}
}

func TestTableauDispatcherDeterministicXError(t *testing.T) {
	rng := randgen.New(12)
	ts := sim.NewTableauSimulator(1, rng)
	d := NewTableauDispatcher(ts, rng)

	ops := []Op{
		GateOp("X_ERROR", []float64{1.0}, []Target{QubitTarget(0)}),
		GateOp("MZ", nil, []Target{QubitTarget(0)}),
	}
	if err := d.Run(ops); err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := ts.Record().LookbackBit(-1)
	if err != nil {
		t.Fatalf("lookback: %v", err)
	}
	if !b {
		t.Fatalf("X_ERROR with p=1 should flip the qubit to 1")
	}
}

func TestTableauDispatcherMPPStabilizerIsDeterministic(t *testing.T) {
	rng := randgen.New(13)
	ts := sim.NewTableauSimulator(2, rng)
	d := NewTableauDispatcher(ts, rng)

	px, _ := PauliTarget(PauliXTarget, 0)
	px1, _ := PauliTarget(PauliXTarget, 1)
	ops := []Op{
		GateOp("H", nil, []Target{QubitTarget(0)}),
		GateOp("CX", nil, []Target{QubitTarget(0), QubitTarget(1)}),
		GateOp("MPP", nil, []Target{px, CombinerTarget(), px1}),
	}
	if err := d.Run(ops); err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := ts.Record().LookbackBit(-1)
	if err != nil {
		t.Fatalf("lookback: %v", err)
	}
	if b {
		t.Fatalf("+X0X1 stabilizes the Bell pair, MPP should read 0")
	}
}

func TestTableauDispatcherInvertedMeasurementTarget(t *testing.T) {
	rng := randgen.New(14)
	ts := sim.NewTableauSimulator(1, rng)
	d := NewTableauDispatcher(ts, rng)

	ops := []Op{
		GateOp("MZ", nil, []Target{InvertedQubitTarget(0)}),
	}
	if err := d.Run(ops); err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := ts.Record().LookbackBit(-1)
	if err != nil {
		t.Fatalf("lookback: %v", err)
	}
	if !b {
		t.Fatalf("inverted measurement of a deterministic-0 qubit should record 1")
	}
}

func TestTableauDispatcherTeleportation(t *testing.T) {
	rng := randgen.New(16)
	for trial := 0; trial < 50; trial++ {
		ts := sim.NewTableauSimulator(3, rng)
		d := NewTableauDispatcher(ts, rng)

		ops := []Op{
			GateOp("RX", nil, []Target{QubitTarget(0)}),
			GateOp("R", nil, []Target{QubitTarget(1), QubitTarget(2)}),
			GateOp("H", nil, []Target{QubitTarget(1)}),
			GateOp("CX", nil, []Target{QubitTarget(1), QubitTarget(2)}),
			GateOp("CX", nil, []Target{QubitTarget(0), QubitTarget(1)}),
			GateOp("H", nil, []Target{QubitTarget(0)}),
			GateOp("MZ", nil, []Target{QubitTarget(0), QubitTarget(1)}),
			GateOp("CX", nil, []Target{RecTarget(-1), QubitTarget(2)}),
			GateOp("CZ", nil, []Target{RecTarget(-2), QubitTarget(2)}),
			GateOp("MX", nil, []Target{QubitTarget(2)}),
		}
		if err := d.Run(ops); err != nil {
			t.Fatalf("trial %d: Run: %v", trial, err)
		}
		b, err := ts.Record().LookbackBit(-1)
		if err != nil {
			t.Fatalf("trial %d: lookback: %v", trial, err)
		}
		if b {
			t.Fatalf("trial %d: teleported |+> should always read 0 on MX", trial)
		}
	}
}

func TestTableauDispatcherPauliChannel1DeterministicX(t *testing.T) {
	rng := randgen.New(17)
	ts := sim.NewTableauSimulator(1, rng)
	d := NewTableauDispatcher(ts, rng)

	ops := []Op{
		GateOp("PAULI_CHANNEL_1", []float64{1, 0, 0}, []Target{QubitTarget(0)}),
		GateOp("MZ", nil, []Target{QubitTarget(0)}),
	}
	if err := d.Run(ops); err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := ts.Record().LookbackBit(-1)
	if err != nil {
		t.Fatalf("lookback: %v", err)
	}
	if !b {
		t.Fatalf("PAULI_CHANNEL_1 with px=1 should always flip the qubit to 1")
	}
}

// TestTableauDispatcherCorrelatedErrorChainIsMutuallyExclusive mirrors
// TestFrameDispatcherCorrelatedErrorChainIsMutuallyExclusive for the
// single-trajectory dispatcher: once CORRELATED_ERROR(1.0) fires, a chained
// ELSE_CORRELATED_ERROR(1.0) must not also fire in the same trajectory.
func TestTableauDispatcherCorrelatedErrorChainIsMutuallyExclusive(t *testing.T) {
	rng := randgen.New(23)
	ts := sim.NewTableauSimulator(2, rng)
	d := NewTableauDispatcher(ts, rng)

	px, err := PauliTarget(PauliXTarget, 0)
	if err != nil {
		t.Fatalf("PauliTarget: %v", err)
	}
	px1, err := PauliTarget(PauliXTarget, 1)
	if err != nil {
		t.Fatalf("PauliTarget: %v", err)
	}
	ops := []Op{
		GateOp("CORRELATED_ERROR", []float64{1.0}, []Target{px}),
		GateOp("ELSE_CORRELATED_ERROR", []float64{1.0}, []Target{px1}),
		GateOp("MZ", nil, []Target{QubitTarget(0), QubitTarget(1)}),
	}
	if err := d.Run(ops); err != nil {
		t.Fatalf("Run: %v", err)
	}
	b0, err := ts.Record().LookbackBit(-2)
	if err != nil {
		t.Fatalf("lookback 0: %v", err)
	}
	b1, err := ts.Record().LookbackBit(-1)
	if err != nil {
		t.Fatalf("lookback 1: %v", err)
	}
	if !b0 {
		t.Fatalf("qubit 0 should take the first chain member")
	}
	if b1 {
		t.Fatalf("qubit 1 should not also fire once the trajectory already claimed the shot")
	}
}

// TestTableauDispatcherElseCorrelatedErrorWithNoGroupErrors matches spec
// §7's AlgebraViolation for a stray ELSE_CORRELATED_ERROR with no preceding
// CORRELATED_ERROR in the group.
func TestTableauDispatcherElseCorrelatedErrorWithNoGroupErrors(t *testing.T) {
	rng := randgen.New(24)
	ts := sim.NewTableauSimulator(1, rng)
	d := NewTableauDispatcher(ts, rng)

	px, err := PauliTarget(PauliXTarget, 0)
	if err != nil {
		t.Fatalf("PauliTarget: %v", err)
	}
	ops := []Op{
		GateOp("ELSE_CORRELATED_ERROR", []float64{1.0}, []Target{px}),
	}
	err = d.Run(ops)
	if err == nil {
		t.Fatalf("expected an error for ELSE_CORRELATED_ERROR with no preceding group")
	}
	ce, ok := err.(*corerr.Error)
	if !ok || ce.Kind != corerr.AlgebraViolation {
		t.Fatalf("expected a corerr.AlgebraViolation, got %v", err)
	}
}

func TestFrameDispatcherForcedXError(t *testing.T) {
	rng := randgen.New(15)
	const shots = 50
	f := sim.NewFrameSimulator(1, shots, rng)
	d := NewFrameDispatcher(f, []bool{false})

	ops := []Op{
		GateOp("X_ERROR", []float64{1.0}, []Target{QubitTarget(0)}),
		GateOp("MZ", nil, []Target{QubitTarget(0)}),
	}
	if err := d.Run(ops); err != nil {
		t.Fatalf("Run: %v", err)
	}
	row, err := f.Record().Lookback(-1)
	if err != nil {
		t.Fatalf("lookback: %v", err)
	}
	for s := 0; s < shots; s++ {
		if !row.At(s).Get() {
			t.Fatalf("shot %d: X_ERROR(1.0) against a false reference should read true", s)
		}
	}
}

// TestFrameDispatcherCorrelatedErrorChainIsMutuallyExclusive drives a
// CORRELATED_ERROR(1.0) X0 followed by ELSE_CORRELATED_ERROR(1.0) X1 chain:
// every shot must take the first member (it always fires) and none may take
// the second, since the group closes a shot out once it has fired.
func TestFrameDispatcherCorrelatedErrorChainIsMutuallyExclusive(t *testing.T) {
	rng := randgen.New(21)
	const shots = 50
	f := sim.NewFrameSimulator(2, shots, rng)
	d := NewFrameDispatcher(f, []bool{false, false})

	px, err := PauliTarget(PauliXTarget, 0)
	if err != nil {
		t.Fatalf("PauliTarget: %v", err)
	}
	px1, err := PauliTarget(PauliXTarget, 1)
	if err != nil {
		t.Fatalf("PauliTarget: %v", err)
	}
	ops := []Op{
		GateOp("CORRELATED_ERROR", []float64{1.0}, []Target{px}),
		GateOp("ELSE_CORRELATED_ERROR", []float64{1.0}, []Target{px1}),
		GateOp("MZ", nil, []Target{QubitTarget(0), QubitTarget(1)}),
	}
	if err := d.Run(ops); err != nil {
		t.Fatalf("Run: %v", err)
	}
	row0, err := f.Record().Lookback(-2)
	if err != nil {
		t.Fatalf("lookback 0: %v", err)
	}
	row1, err := f.Record().Lookback(-1)
	if err != nil {
		t.Fatalf("lookback 1: %v", err)
	}
	for s := 0; s < shots; s++ {
		if !row0.At(s).Get() {
			t.Fatalf("shot %d: qubit 0 should always take the first chain member", s)
		}
		if row1.At(s).Get() {
			t.Fatalf("shot %d: qubit 1 should never fire once qubit 0 already claimed the shot", s)
		}
	}
}

// TestFrameDispatcherElseCorrelatedErrorWithNoGroupErrors matches
// sim.FrameSimulator.ApplyCorrelatedError's rejection of a stray
// ELSE_CORRELATED_ERROR with no preceding CORRELATED_ERROR in the group.
func TestFrameDispatcherElseCorrelatedErrorWithNoGroupErrors(t *testing.T) {
	rng := randgen.New(22)
	f := sim.NewFrameSimulator(1, 4, rng)
	d := NewFrameDispatcher(f, []bool{false})

	px, err := PauliTarget(PauliXTarget, 0)
	if err != nil {
		t.Fatalf("PauliTarget: %v", err)
	}
	ops := []Op{
		GateOp("ELSE_CORRELATED_ERROR", []float64{1.0}, []Target{px}),
	}
	if err := d.Run(ops); err == nil {
		t.Fatalf("expected an error for ELSE_CORRELATED_ERROR with no preceding group")
	}
}
