package circuit

import (
	"stabkit/corerr"
	"stabkit/pauli"
	"stabkit/randgen"
	"stabkit/sim"
	"stabkit/tableau"
)

func targetKindError(gateName string, t Target) error {
	return corerr.New(corerr.ParseError, "gate %s: unsupported target kind %s", gateName, t)
}

// singlePauliFromGate maps a noise-channel gate name to the Pauli it
// injects, for the channels that name a fixed single component.
func singlePauliFromGate(name string) pauli.Pauli {
	switch name {
	case "X_ERROR":
		return pauli.X
	case "Y_ERROR":
		return pauli.Y
	case "Z_ERROR":
		return pauli.Z
	default:
		return pauli.I
	}
}

// TableauDispatcher walks a compiled Op stream (including REPEAT blocks)
// against a single sim.TableauSimulator trajectory (spec §6's "core
// simulators treat [annotation ops] per-engine"). Noise channels are
// resolved here by drawing from rng and applying the corresponding
// unitary Pauli gate, since a single trajectory has no frame to XOR into.
type TableauDispatcher struct {
	Engine *sim.TableauSimulator
	RNG    *randgen.RNG

	// corrGroupActive and corrFired track a CORRELATED_ERROR/
	// ELSE_CORRELATED_ERROR chain for this single trajectory (spec §4.7):
	// a fresh CORRELATED_ERROR opens the group, corrFired latches once this
	// trajectory has taken a Pauli from it, and any op outside the chain
	// closes the group. This mirrors sim.FrameSimulator's per-shot
	// corrFired bookkeeping, just scalar since one trajectory is one shot.
	corrGroupActive bool
	corrFired       bool
}

// NewTableauDispatcher builds a dispatcher over an existing simulator.
func NewTableauDispatcher(engine *sim.TableauSimulator, rng *randgen.RNG) *TableauDispatcher {
	return &TableauDispatcher{Engine: engine, RNG: rng}
}

// Run dispatches every Op in ops, in order, expanding REPEAT blocks.
func (d *TableauDispatcher) Run(ops []Op) error {
	for i := range ops {
		if err := d.dispatchOne(ops[i]); err != nil {
			return err
		}
	}
	return nil
}

// classicalControlGateName maps a classically-controlled two-qubit gate name
// (spec §6's "CX rec[-1] 2") to the single Pauli sim.TableauSimulator.
// ClassicalControl actually conjugates the target by: the control bit is
// already resolved to a classical 0/1 at dispatch time, so "CX"/"CZ"/"CY"
// reduce to applying a bare X/Z/Y gate to every named qubit target.
func classicalControlGateName(name string) (string, error) {
	switch name {
	case "CX", "CNOT":
		return "X", nil
	case "CY":
		return "Y", nil
	case "CZ":
		return "Z", nil
	default:
		return "", corerr.New(corerr.ParseError, "classically controlled gate %s not supported", name)
	}
}

func classicalControlPauli(name string) (pauli.Pauli, error) {
	switch name {
	case "CX", "CNOT":
		return pauli.X, nil
	case "CY":
		return pauli.Y, nil
	case "CZ":
		return pauli.Z, nil
	default:
		return pauli.I, corerr.New(corerr.ParseError, "classically controlled gate %s not supported", name)
	}
}

func (d *TableauDispatcher) dispatchOne(op Op) error {
	// Any op other than a correlated-error chain member closes the
	// currently open group, matching FrameDispatcher/FrameSimulator.
	if op.GateName != "CORRELATED_ERROR" && op.GateName != "ELSE_CORRELATED_ERROR" {
		d.corrGroupActive = false
		d.corrFired = false
	}
	if op.Annotation != NotAnnotation {
		return d.dispatchAnnotation(op)
	}
	if lookback, qubits, ok := op.ClassicalControlLookback(); ok {
		gateName, err := classicalControlGateName(op.GateName)
		if err != nil {
			return err
		}
		for _, q := range qubits {
			if err := d.Engine.ClassicalControl(gateName, q, lookback); err != nil {
				return err
			}
		}
		return nil
	}
	g, err := tableau.Lookup(op.GateName)
	if err != nil {
		return err
	}

	switch {
	case g.IsUnitary:
		return d.Engine.ApplyGate(g.Name, op.QubitTargets())
	case g.Name == "MPP":
		return d.dispatchMPP(op)
	case g.ProducesMeasurement && g.IsReset:
		return d.dispatchMeasureReset(op, g.Name)
	case g.ProducesMeasurement:
		return d.dispatchMeasure(op, g.Name)
	case g.IsReset && isXBasisName(g.Name):
		return d.applyPerQubit(op, d.Engine.ResetX)
	case g.IsReset && isYBasisName(g.Name):
		return d.applyPerQubit(op, d.Engine.ResetY)
	case g.IsReset:
		return d.applyPerQubit(op, d.Engine.ResetZ)
	case g.TakesProbability:
		return d.dispatchNoise(op, g.Name)
	default:
		return corerr.New(corerr.ParseError, "unhandled gate %s", g.Name)
	}
}

func isXBasisName(name string) bool { return name == "RX" }
func isYBasisName(name string) bool { return name == "RY" }

func (d *TableauDispatcher) applyPerQubit(op Op, f func(int) error) error {
	for _, q := range op.QubitTargets() {
		if err := f(q); err != nil {
			return err
		}
	}
	return nil
}

func (d *TableauDispatcher) dispatchMeasure(op Op, name string) error {
	p := op.Probability()
	for _, t := range op.Targets {
		if t.Kind != Qubit {
			continue
		}
		var err error
		switch name {
		case "MX":
			err = d.Engine.MeasureX(t.Value, p)
		case "MY":
			err = d.Engine.MeasureY(t.Value, p)
		case "MZ", "M":
			err = d.Engine.MeasureZ(t.Value, p)
		default:
			err = corerr.New(corerr.ParseError, "unknown measurement gate %s", name)
		}
		if err != nil {
			return err
		}
		if t.Inverted {
			if flipErr := d.Engine.Record().FlipLastRow(); flipErr != nil {
				return flipErr
			}
		}
	}
	return nil
}

func (d *TableauDispatcher) dispatchMeasureReset(op Op, name string) error {
	p := op.Probability()
	for _, t := range op.Targets {
		if t.Kind != Qubit {
			continue
		}
		var err error
		switch name {
		case "MRX":
			err = d.Engine.MeasureResetX(t.Value, p)
		case "MRY":
			err = d.Engine.MeasureResetY(t.Value, p)
		case "MRZ":
			err = d.Engine.MeasureResetZ(t.Value, p)
		default:
			err = corerr.New(corerr.ParseError, "unknown measure-reset gate %s", name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// dispatchMPP builds, for each "*"-joined term, a pauli.StringRef indexed
// by POSITION within term.Qubits (matching sim.TableauSimulator.
// MeasurePauliProduct's p.Get(i)-by-target-index convention), not by qubit
// number.
func (d *TableauDispatcher) dispatchMPP(op Op) error {
	terms, err := op.SplitMPPTerms()
	if err != nil {
		return err
	}
	noise := op.Probability()
	for _, term := range terms {
		p := pauli.Identity(len(term.Qubits))
		r := p.Ref()
		for i, pp := range term.Paulis {
			r.Set(i, pp)
		}
		if err := d.Engine.MeasurePauliProduct(r, term.Qubits, noise); err != nil {
			return err
		}
	}
	return nil
}

func (d *TableauDispatcher) dispatchNoise(op Op, name string) error {
	p := op.Probability()
	switch name {
	case "X_ERROR", "Y_ERROR", "Z_ERROR":
		target := singlePauliFromGate(name)
		for _, q := range op.QubitTargets() {
			if d.RNG.BiasedBit(p) {
				if err := d.Engine.ApplyGate(pauliGateName(target), []int{q}); err != nil {
					return err
				}
			}
		}
		return nil
	case "DEPOLARIZE1":
		for _, q := range op.QubitTargets() {
			if d.RNG.BiasedBit(p) {
				choice := pauli.Pauli(1 + d.RNG.Intn(3))
				if err := d.Engine.ApplyGate(pauliGateName(choice), []int{q}); err != nil {
					return err
				}
			}
		}
		return nil
	case "DEPOLARIZE2":
		qs := op.QubitTargets()
		for i := 0; i+1 < len(qs); i += 2 {
			if !d.RNG.BiasedBit(p) {
				continue
			}
			choice := twoQubitChoices[d.RNG.Intn(len(twoQubitChoices))]
			if choice[0] != pauli.I {
				if err := d.Engine.ApplyGate(pauliGateName(choice[0]), []int{qs[i]}); err != nil {
					return err
				}
			}
			if choice[1] != pauli.I {
				if err := d.Engine.ApplyGate(pauliGateName(choice[1]), []int{qs[i+1]}); err != nil {
					return err
				}
			}
		}
		return nil
	case "PAULI_CHANNEL_1":
		px, py, pz := op.Args[0], op.Args[1], op.Args[2]
		for _, q := range op.QubitTargets() {
			r := d.RNG.Float64()
			var g string
			switch {
			case r < px:
				g = "X"
			case r < px+py:
				g = "Y"
			case r < px+py+pz:
				g = "Z"
			default:
				continue
			}
			if err := d.Engine.ApplyGate(g, []int{q}); err != nil {
				return err
			}
		}
		return nil
	case "PAULI_CHANNEL_2":
		qs := op.QubitTargets()
		for i := 0; i+1 < len(qs); i += 2 {
			r := d.RNG.Float64()
			cum := 0.0
			for idx, choice := range twoQubitChoices {
				cum += op.Args[idx]
				if r >= cum {
					continue
				}
				if choice[0] != pauli.I {
					if err := d.Engine.ApplyGate(pauliGateName(choice[0]), []int{qs[i]}); err != nil {
						return err
					}
				}
				if choice[1] != pauli.I {
					if err := d.Engine.ApplyGate(pauliGateName(choice[1]), []int{qs[i+1]}); err != nil {
						return err
					}
				}
				break
			}
		}
		return nil
	case "CORRELATED_ERROR", "ELSE_CORRELATED_ERROR":
		// A single trajectory is one shot of a CORRELATED_ERROR/
		// ELSE_CORRELATED_ERROR chain (spec §4.7): at most one member of the
		// chain may fire, so an ELSE draw is gated on this trajectory not
		// having already fired earlier in the same group.
		isElse := name == "ELSE_CORRELATED_ERROR"
		if isElse && !d.corrGroupActive {
			return corerr.New(corerr.AlgebraViolation, "ELSE_CORRELATED_ERROR with no preceding CORRELATED_ERROR group")
		}
		if !isElse {
			d.corrGroupActive = true
			d.corrFired = false
		}
		if d.corrFired || !d.RNG.BiasedBit(p) {
			return nil
		}
		d.corrFired = true
		for _, t := range op.Targets {
			var g string
			switch t.Kind {
			case PauliXTarget:
				g = "X"
			case PauliYTarget:
				g = "Y"
			case PauliZTarget:
				g = "Z"
			default:
				continue
			}
			if err := d.Engine.ApplyGate(g, []int{t.Value}); err != nil {
				return err
			}
		}
		return nil
	default:
		return corerr.New(corerr.ParseError, "unknown noise channel %s", name)
	}
}

func pauliGateName(p pauli.Pauli) string {
	switch p {
	case pauli.X:
		return "X"
	case pauli.Y:
		return "Y"
	case pauli.Z:
		return "Z"
	default:
		return "I"
	}
}

var twoQubitChoices = func() [][2]pauli.Pauli {
	var out [][2]pauli.Pauli
	for a := pauli.I; a <= pauli.Y; a++ {
		for b := pauli.I; b <= pauli.Y; b++ {
			if a == pauli.I && b == pauli.I {
				continue
			}
			out = append(out, [2]pauli.Pauli{a, b})
		}
	}
	return out
}()

func (d *TableauDispatcher) dispatchAnnotation(op Op) error {
	switch op.Annotation {
	case Repeat:
		for i := 0; i < op.RepeatCount; i++ {
			if err := d.Run(op.Body); err != nil {
				return err
			}
		}
		return nil
	case Tick, Detector, ObservableInclude, QubitCoords, ShiftCoords:
		// No-ops for the core simulators (spec §6): DETECTOR/
		// OBSERVABLE_INCLUDE belong to a separate error-analyzer this
		// package does not implement.
		return nil
	default:
		return corerr.New(corerr.ParseError, "unknown annotation kind %v", op.Annotation)
	}
}

// FrameDispatcher walks an Op stream against a shot-parallel
// sim.FrameSimulator, consulting a precomputed noiseless reference
// trajectory for each measurement's ref bit (spec §4.7: frames are tracked
// relative to a reference run of the same circuit).
type FrameDispatcher struct {
	Engine    *sim.FrameSimulator
	Reference []bool // one bit per measurement op, in program order
	refCursor int
}

// NewFrameDispatcher builds a dispatcher over an existing frame simulator.
func NewFrameDispatcher(engine *sim.FrameSimulator, reference []bool) *FrameDispatcher {
	return &FrameDispatcher{Engine: engine, Reference: reference}
}

// frameBasisRotation returns the self-inverse gate name that rotates the
// named X/Y-basis reset or measurement gate onto the Z basis, the
// FrameSimulator-side counterpart of sim.TableauSimulator's
// basisRotationGate (spec §4.6/§4.7 share the same rotate/measure/
// rotate-back recipe).
func frameBasisRotation(name string) (string, bool) {
	switch name {
	case "RX", "MX", "MRX":
		return "H", true
	case "RY", "MY", "MRY":
		return "H_YZ", true
	default:
		return "", false
	}
}

// rotated conjugates f with a basis-rotation gate on q before and after,
// when hasRot is true.
func (d *FrameDispatcher) rotated(gateName string, hasRot bool, q int, f func() error) error {
	if !hasRot {
		return f()
	}
	g, err := tableau.Lookup(gateName)
	if err != nil {
		return err
	}
	if err := d.Engine.ApplyGate(g.Tableau, []int{q}); err != nil {
		return err
	}
	ferr := f()
	if err := d.Engine.ApplyGate(g.Tableau, []int{q}); err != nil {
		return err
	}
	return ferr
}

func (d *FrameDispatcher) nextRef() bool {
	if d.refCursor >= len(d.Reference) {
		return false
	}
	b := d.Reference[d.refCursor]
	d.refCursor++
	return b
}

// Run dispatches every Op in ops, in order, expanding REPEAT blocks.
func (d *FrameDispatcher) Run(ops []Op) error {
	for i := range ops {
		if err := d.dispatchOne(ops[i]); err != nil {
			return err
		}
	}
	return nil
}

// dispatchCorrelatedError builds a full-width Pauli from op's Pauli-kind
// targets and applies it under CORRELATED_ERROR/ELSE_CORRELATED_ERROR chain
// semantics (spec §4.7): a bare CORRELATED_ERROR starts a fresh group (every
// shot eligible); a chained ELSE_CORRELATED_ERROR only draws for shots that
// haven't already fired earlier in the same group.
func (d *FrameDispatcher) dispatchCorrelatedError(op Op, isElse bool) error {
	if !isElse {
		d.Engine.BeginCorrelatedGroup()
	}
	p := pauli.Identity(d.Engine.N())
	r := p.Ref()
	for _, t := range op.Targets {
		switch t.Kind {
		case PauliXTarget:
			r.Set(t.Value, pauli.X)
		case PauliYTarget:
			r.Set(t.Value, pauli.Y)
		case PauliZTarget:
			r.Set(t.Value, pauli.Z)
		}
	}
	return d.Engine.ApplyCorrelatedError(r, op.Probability(), isElse)
}

func (d *FrameDispatcher) dispatchOne(op Op) error {
	// Any op other than a correlated-error chain member ends the current
	// group (sim.FrameSimulator.EndCorrelatedGroup's doc comment).
	if op.GateName != "CORRELATED_ERROR" && op.GateName != "ELSE_CORRELATED_ERROR" {
		d.Engine.EndCorrelatedGroup()
	}
	if op.Annotation != NotAnnotation {
		if op.Annotation == Repeat {
			for i := 0; i < op.RepeatCount; i++ {
				if err := d.Run(op.Body); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if lookback, qubits, ok := op.ClassicalControlLookback(); ok {
		p, err := classicalControlPauli(op.GateName)
		if err != nil {
			return err
		}
		for _, q := range qubits {
			if err := d.Engine.ClassicalControl(q, p, lookback); err != nil {
				return err
			}
		}
		return nil
	}
	g, err := tableau.Lookup(op.GateName)
	if err != nil {
		return err
	}
	rotGate, hasRot := frameBasisRotation(g.Name)

	switch {
	case g.IsUnitary:
		return d.Engine.ApplyGate(g.Tableau, op.QubitTargets())
	case g.ProducesMeasurement && g.IsReset:
		for _, t := range op.Targets {
			if t.Kind != Qubit {
				continue
			}
			ref := d.nextRef()
			if err := d.rotated(rotGate, hasRot, t.Value, func() error {
				return d.Engine.MeasureResetZ(t.Value, ref, op.Probability())
			}); err != nil {
				return err
			}
			if t.Inverted {
				if err := d.Engine.Record().FlipLastRow(); err != nil {
					return err
				}
			}
		}
		return nil
	case g.ProducesMeasurement && g.Name != "MPP":
		for _, t := range op.Targets {
			if t.Kind != Qubit {
				continue
			}
			ref := d.nextRef()
			if err := d.rotated(rotGate, hasRot, t.Value, func() error {
				return d.Engine.MeasureZ(t.Value, ref, op.Probability())
			}); err != nil {
				return err
			}
			if t.Inverted {
				if err := d.Engine.Record().FlipLastRow(); err != nil {
					return err
				}
			}
		}
		return nil
	case g.IsReset:
		for _, q := range op.QubitTargets() {
			if err := d.rotated(rotGate, hasRot, q, func() error {
				d.Engine.ResetZ(q)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	case g.Name == "X_ERROR":
		for _, q := range op.QubitTargets() {
			d.Engine.XError(q, op.Probability())
		}
		return nil
	case g.Name == "Y_ERROR":
		for _, q := range op.QubitTargets() {
			d.Engine.YError(q, op.Probability())
		}
		return nil
	case g.Name == "Z_ERROR":
		for _, q := range op.QubitTargets() {
			d.Engine.ZError(q, op.Probability())
		}
		return nil
	case g.Name == "DEPOLARIZE1":
		for _, q := range op.QubitTargets() {
			if err := d.Engine.Depolarize1(q, op.Probability()); err != nil {
				return err
			}
		}
		return nil
	case g.Name == "DEPOLARIZE2":
		qs := op.QubitTargets()
		for i := 0; i+1 < len(qs); i += 2 {
			d.Engine.Depolarize2(qs[i], qs[i+1], op.Probability())
		}
		return nil
	case g.Name == "PAULI_CHANNEL_1":
		for _, q := range op.QubitTargets() {
			if err := d.Engine.PauliChannel1(q, op.Args[0], op.Args[1], op.Args[2]); err != nil {
				return err
			}
		}
		return nil
	case g.Name == "PAULI_CHANNEL_2":
		qs := op.QubitTargets()
		for i := 0; i+1 < len(qs); i += 2 {
			if err := d.Engine.PauliChannel2(qs[i], qs[i+1], op.Args); err != nil {
				return err
			}
		}
		return nil
	case g.Name == "CORRELATED_ERROR", g.Name == "ELSE_CORRELATED_ERROR":
		return d.dispatchCorrelatedError(op, g.Name == "ELSE_CORRELATED_ERROR")
	default:
		return corerr.New(corerr.ParseError, "unhandled frame-simulator gate %s", g.Name)
	}
}
