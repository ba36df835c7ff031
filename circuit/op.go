package circuit

import "stabkit/pauli"

// AnnotationKind enumerates the pass-through ops spec §6 lists alongside the
// gate set: these never reach the stabilizer algebra, only TICK/DETECTOR/
// OBSERVABLE_INCLUDE/QUBIT_COORDS/SHIFT_COORDS bookkeeping (or, for REPEAT,
// looping) at the dispatcher level.
type AnnotationKind int

const (
	// NotAnnotation marks an Op that names a gate in the tableau registry.
	NotAnnotation AnnotationKind = iota
	Tick
	Detector
	ObservableInclude
	QubitCoords
	ShiftCoords
	Repeat
)

// Op is one compiled circuit instruction (spec §6: "(gate_id, arg_floats[],
// targets[])"). GateName is empty and Annotation is set for the five
// pass-through bookkeeping ops and for REPEAT; otherwise GateName names a
// tableau.Registry() entry.
type Op struct {
	GateName   string
	Annotation AnnotationKind
	Args       []float64
	Targets    []Target

	// RepeatCount and Body are only meaningful when Annotation == Repeat:
	// Body is executed RepeatCount times before control returns to the
	// enclosing block (spec §6: "REPEAT blocks... pass through").
	RepeatCount int
	Body        []Op
}

// GateOp builds a plain gate instruction.
func GateOp(name string, args []float64, targets []Target) Op {
	return Op{GateName: name, Args: args, Targets: targets}
}

// RepeatOp builds a REPEAT block.
func RepeatOp(count int, body []Op) Op {
	return Op{Annotation: Repeat, RepeatCount: count, Body: body}
}

// Probability returns Args[0], the sole noise/flip-probability argument
// convention used throughout spec §6 (X_ERROR, MX(p), DEPOLARIZE1, ...).
// Gates with no probability argument return 0.
func (o Op) Probability() float64 {
	if len(o.Args) == 0 {
		return 0
	}
	return o.Args[0]
}

// QubitTargets extracts the plain qubit indices of an Op's target list, in
// order, ignoring any non-Qubit targets (combiners, sweep bits, ...).
func (o Op) QubitTargets() []int {
	var out []int
	for _, t := range o.Targets {
		if t.Kind == Qubit {
			out = append(out, t.Value)
		}
	}
	return out
}

// ClassicalControlLookback reports whether op is a classically controlled
// gate (spec §6's "CX rec[-1] 2" convention: one MEASUREMENT_RECORD target
// naming the lookback index, plus one or more Qubit targets it conditionally
// applies to). ok is false for an ordinary (non-classically-controlled) op.
func (o Op) ClassicalControlLookback() (lookback int, qubits []int, ok bool) {
	for _, t := range o.Targets {
		if t.Kind == MeasurementRecord {
			lookback = t.Value
			ok = true
		}
	}
	if !ok {
		return 0, nil, false
	}
	return lookback, o.QubitTargets(), true
}

// MPPTerm is one parsed "*"-joined Pauli product from an MPP target list
// (spec §6: PAULI_X/Y/Z_TARGET joined by COMBINER).
type MPPTerm struct {
	Qubits []int
	Paulis []pauli.Pauli
}

// SplitMPPTerms groups an MPP Op's targets into its "*"-joined product terms:
// a COMBINER glues the Pauli target before it to the one after it into the
// same product; its absence between two Pauli targets starts a new,
// separate MPP measurement (spec §6: "PAULI_X/Y/Z_TARGET... COMBINER").
func (o Op) SplitMPPTerms() ([]MPPTerm, error) {
	var terms []MPPTerm
	cur := MPPTerm{}
	joined := false
	for _, t := range o.Targets {
		switch t.Kind {
		case Combiner:
			joined = true
		case PauliXTarget, PauliYTarget, PauliZTarget:
			if len(cur.Qubits) > 0 && !joined {
				terms = append(terms, cur)
				cur = MPPTerm{}
			}
			joined = false
			p := pauli.I
			switch t.Kind {
			case PauliXTarget:
				p = pauli.X
			case PauliYTarget:
				p = pauli.Y
			case PauliZTarget:
				p = pauli.Z
			}
			cur.Qubits = append(cur.Qubits, t.Value)
			cur.Paulis = append(cur.Paulis, p)
		default:
			return nil, targetKindError(o.GateName, t)
		}
	}
	if len(cur.Qubits) > 0 {
		terms = append(terms, cur)
	}
	return terms, nil
}
