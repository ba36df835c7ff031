package sim

import (
	"fmt"
	"os"

	"stabkit/internal/obs"
	"stabkit/pauli"
	"stabkit/randgen"
	"stabkit/simd"
	"stabkit/tableau"
)

// FrameSimulator batch-simulates `shots` independent Pauli-frame
// trajectories against one reference (noiseless) circuit (spec §4.7): two
// qubit x shot bit tables XS, ZS hold each shot's frame relative to the
// reference trajectory, updated with pure XOR arithmetic (no RNG) for
// unitary gates, and stochastically for noise channels.
type FrameSimulator struct {
	n, shots int
	xs, zs   *simd.BitTable // n x shots
	record   *MeasurementRecord
	rng      *randgen.RNG
	sweep    *simd.BitTable // sweepBits x shots, nil if unused
	corrFired []bool        // per-shot "already fired in this correlated-error group"
}

// NewFrameSimulator allocates a simulator for n qubits and the given shot
// count. Every shot's X frame starts clear and its Z frame starts uniformly
// random: a Z error leaves |0…0⟩ unchanged, and the random Z frame is what
// gives a later measurement with a random outcome (e.g. after H) a random
// per-shot result relative to the reference.
func NewFrameSimulator(n, shots int, rng *randgen.RNG) *FrameSimulator {
	f := &FrameSimulator{
		n:      n,
		shots:  shots,
		xs:     simd.NewBitTable(n, shots),
		zs:     simd.NewBitTable(n, shots),
		record: NewMeasurementRecord(shots),
		rng:    rng,
	}
	for q := 0; q < n; q++ {
		f.zs.Row(q).Randomize(shots, rng)
	}
	return f
}

// Record returns the simulator's measurement record.
func (f *FrameSimulator) Record() *MeasurementRecord { return f.record }

// N returns the qubit count the simulator was built for.
func (f *FrameSimulator) N() int { return f.n }

// LoadFrame seeds one shot's Pauli frame from p (sign is not representable
// in a frame and is ignored), useful for cross-checking a single shot's
// gate conjugation against package tableau's Pauli-string algebra.
func (f *FrameSimulator) LoadFrame(shot int, p pauli.StringRef) {
	for q := 0; q < f.n; q++ {
		f.xs.Set(q, shot, p.Xs.At(q).Get())
		f.zs.Set(q, shot, p.Zs.At(q).Get())
	}
}

// ReadFrame extracts one shot's Pauli frame as a (always +-signed)
// StringOwned.
func (f *FrameSimulator) ReadFrame(shot int) *pauli.StringOwned {
	out := pauli.Identity(f.n)
	r := out.Ref()
	for q := 0; q < f.n; q++ {
		r.Set(q, pauli.Pauli(boolToBit(f.xs.Get(q, shot))|boolToBit(f.zs.Get(q, shot))<<1))
	}
	return out
}

func boolToBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SetSweepBits attaches a sweepBits x shots table of externally supplied
// per-shot classical controls (spec §4.7).
func (f *FrameSimulator) SetSweepBits(t *simd.BitTable) { f.sweep = t }

func cloneRow(t *simd.BitTable, q, shots int) *simd.BitVec {
	out := simd.NewBitVec(shots)
	out.Ref().CopyFrom(t.Row(q).Prefix(shots))
	return out
}

// ApplyGate conjugates the frame on the given target qubits by a unitary
// gate's tableau, word-parallel across all shots and with no RNG (spec
// §4.7). The update is the no-sign specialization of the general
// gather/apply/scatter conjugation in package tableau: frame tracking only
// needs the symplectic (x,z) content of a Pauli error, never its global
// phase, so each output component is a pure XOR-of-masked-rows formula
// derived directly from the gate's own generator-image bits.
func (f *FrameSimulator) ApplyGate(gate *tableau.Tableau, targets []int) error {
	k := len(targets)
	if gate.N() != k {
		return fmt.Errorf("sim: ApplyGate target count %d does not match gate qubit count %d", k, gate.N())
	}
	oldX := make([]*simd.BitVec, k)
	oldZ := make([]*simd.BitVec, k)
	for j, q := range targets {
		oldX[j] = cloneRow(f.xs, q, f.shots)
		oldZ[j] = cloneRow(f.zs, q, f.shots)
	}
	newX := make([]*simd.BitVec, k)
	newZ := make([]*simd.BitVec, k)
	for m := 0; m < k; m++ {
		nx := simd.NewBitVec(f.shots)
		nz := simd.NewBitVec(f.shots)
		for j := 0; j < k; j++ {
			xsj := gate.XsRow(j)
			zsj := gate.ZsRow(j)
			if xsj.Xs.At(m).Get() {
				nx.Ref().Xor(oldX[j].Ref())
			}
			if zsj.Xs.At(m).Get() {
				nx.Ref().Xor(oldZ[j].Ref())
			}
			if xsj.Zs.At(m).Get() {
				nz.Ref().Xor(oldX[j].Ref())
			}
			if zsj.Zs.At(m).Get() {
				nz.Ref().Xor(oldZ[j].Ref())
			}
		}
		newX[m] = nx
		newZ[m] = nz
	}
	for m, q := range targets {
		f.xs.Row(q).Prefix(f.shots).CopyFrom(newX[m].Ref())
		f.zs.Row(q).Prefix(f.shots).CopyFrom(newZ[m].Ref())
	}
	return nil
}

// ResetZ clears the frame on q: the post-reset state is always the trivial
// (no-error) frame regardless of what it was (spec §4.7).
func (f *FrameSimulator) ResetZ(q int) {
	f.xs.Row(q).Prefix(f.shots).Clear()
	f.zs.Row(q).Prefix(f.shots).Clear()
}

// MeasureZ measures qubit q against reference bit ref (the noiseless
// trajectory's outcome), XORing in the frame's X-error per shot and, if
// noiseProb > 0, an independent Bernoulli(noiseProb) flip per shot (spec
// §4.7).
func (f *FrameSimulator) MeasureZ(q int, ref bool, noiseProb float64) error {
	row := simd.NewBitVec(f.shots)
	row.Ref().CopyFrom(f.xs.Row(q).Prefix(f.shots))
	if ref {
		for s := 0; s < f.shots; s++ {
			row.At(s).XorAssign(true)
		}
	}
	if noiseProb > 0 {
		for _, idx := range f.rng.SampleHitIndices(f.shots, noiseProb) {
			row.At(idx).XorAssign(true)
		}
	}
	return f.record.Append(row)
}

// MeasureResetZ measures then clears the frame on q.
func (f *FrameSimulator) MeasureResetZ(q int, ref bool, noiseProb float64) error {
	if err := f.MeasureZ(q, ref, noiseProb); err != nil {
		return err
	}
	f.ResetZ(q)
	return nil
}

// applySinglePauli XORs Pauli p onto qubit q's frame for shots
// selected by mask (mask may be nil, meaning all shots).
func (f *FrameSimulator) applySinglePauli(q int, p pauli.Pauli, mask []bool) {
	if p&1 != 0 {
		x := f.xs.Row(q).Prefix(f.shots)
		for s := 0; s < f.shots; s++ {
			if mask == nil || mask[s] {
				x.At(s).XorAssign(true)
			}
		}
	}
	if p&2 != 0 {
		z := f.zs.Row(q).Prefix(f.shots)
		for s := 0; s < f.shots; s++ {
			if mask == nil || mask[s] {
				z.At(s).XorAssign(true)
			}
		}
	}
}

// singleQubitNoise flips qubit q's frame with the given Pauli wherever a
// per-shot Bernoulli(p) hit lands (X_ERROR/Y_ERROR/Z_ERROR, spec §4.7).
func (f *FrameSimulator) singleQubitNoise(q int, p pauli.Pauli, prob float64) {
	for _, s := range f.rng.SampleHitIndices(f.shots, prob) {
		mask := make([]bool, f.shots)
		mask[s] = true
		f.applySinglePauli(q, p, mask)
	}
}

// XError applies an independent X error to q with per-shot probability p.
func (f *FrameSimulator) XError(q int, p float64) { f.singleQubitNoise(q, pauli.X, p) }

// YError applies an independent Y error to q with per-shot probability p.
func (f *FrameSimulator) YError(q int, p float64) { f.singleQubitNoise(q, pauli.Y, p) }

// ZError applies an independent Z error to q with per-shot probability p.
func (f *FrameSimulator) ZError(q int, p float64) { f.singleQubitNoise(q, pauli.Z, p) }

// Depolarize1 applies, per shot independently with probability p, a
// uniformly random non-identity single-qubit Pauli to q (spec §4.7).
func (f *FrameSimulator) Depolarize1(q int, p float64) error {
	if p >= 0.75 {
		return fmt.Errorf("sim: DEPOLARIZE1 probability %.4f over-mixes (must be < 0.75)", p)
	}
	for _, s := range f.rng.SampleHitIndices(f.shots, p) {
		choice := pauli.Pauli(1 + f.rng.Intn(3))
		mask := make([]bool, f.shots)
		mask[s] = true
		f.applySinglePauli(q, choice, mask)
	}
	return nil
}

// twoQubitNonIdentityPaulis enumerates the 15 non-identity two-qubit Pauli
// (p0,p1) pairs used by DEPOLARIZE2 (spec §4.7).
var twoQubitNonIdentityPaulis = func() [][2]pauli.Pauli {
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

// Depolarize2 applies, per shot independently with probability p, a
// uniformly random non-identity two-qubit Pauli across (q0,q1).
func (f *FrameSimulator) Depolarize2(q0, q1 int, p float64) {
	for _, s := range f.rng.SampleHitIndices(f.shots, p) {
		choice := twoQubitNonIdentityPaulis[f.rng.Intn(len(twoQubitNonIdentityPaulis))]
		mask := make([]bool, f.shots)
		mask[s] = true
		f.applySinglePauli(q0, choice[0], mask)
		f.applySinglePauli(q1, choice[1], mask)
	}
}

// PauliChannel1 applies, per shot, X/Y/Z errors to q with the given
// explicit (possibly unequal) probabilities; px+py+pz must not exceed 1.
func (f *FrameSimulator) PauliChannel1(q int, px, py, pz float64) error {
	if px+py+pz > 1.0000001 {
		return fmt.Errorf("sim: PAULI_CHANNEL_1 probabilities sum to %.4f, exceeds 1", px+py+pz)
	}
	for s := 0; s < f.shots; s++ {
		u := f.rng.Float64()
		var p pauli.Pauli
		switch {
		case u < px:
			p = pauli.X
		case u < px+py:
			p = pauli.Y
		case u < px+py+pz:
			p = pauli.Z
		default:
			continue
		}
		mask := make([]bool, f.shots)
		mask[s] = true
		f.applySinglePauli(q, p, mask)
	}
	return nil
}

// PauliChannel2 applies, per shot, one of the 15 non-identity two-qubit
// Paulis to (q0,q1) according to explicit per-term probabilities; len(probs)
// must be 15, ordered as twoQubitNonIdentityPaulis, and sum <= 1.
func (f *FrameSimulator) PauliChannel2(q0, q1 int, probs []float64) error {
	if len(probs) != len(twoQubitNonIdentityPaulis) {
		return fmt.Errorf("sim: PAULI_CHANNEL_2 requires %d probabilities, got %d", len(twoQubitNonIdentityPaulis), len(probs))
	}
	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	if sum > 1.0000001 {
		return fmt.Errorf("sim: PAULI_CHANNEL_2 probabilities sum to %.4f, exceeds 1", sum)
	}
	for s := 0; s < f.shots; s++ {
		u := f.rng.Float64()
		acc := 0.0
		for i, p := range probs {
			acc += p
			if u < acc {
				mask := make([]bool, f.shots)
				mask[s] = true
				f.applySinglePauli(q0, twoQubitNonIdentityPaulis[i][0], mask)
				f.applySinglePauli(q1, twoQubitNonIdentityPaulis[i][1], mask)
				break
			}
		}
	}
	return nil
}

// BeginCorrelatedGroup starts a fresh CORRELATED_ERROR chain: every shot is
// eligible again (spec §4.7: "a new CORRELATED_ERROR... resets the group").
func (f *FrameSimulator) BeginCorrelatedGroup() {
	f.corrFired = make([]bool, f.shots)
	obs.Count("correlated_error.group_begin", 1)
	obs.Debugf(os.Stderr, "[CorrGroup] begin shots=%d\n", f.shots)
}

// EndCorrelatedGroup is called by any gate that is not itself a correlated-
// error op, also resetting the group per spec §4.7.
func (f *FrameSimulator) EndCorrelatedGroup() {
	if f.corrFired != nil {
		obs.Debugf(os.Stderr, "[CorrGroup] end\n")
	}
	f.corrFired = nil
}

// ApplyCorrelatedError applies Pauli p (spanning qubits) to every shot not
// already claimed by an earlier member of the current group, each such shot
// independently firing with probability prob. isElse selects
// ELSE_CORRELATED_ERROR semantics (mutually exclusive with the group so
// far); a plain CORRELATED_ERROR call should be preceded by
// BeginCorrelatedGroup.
func (f *FrameSimulator) ApplyCorrelatedError(p pauli.StringRef, prob float64, isElse bool) error {
	if isElse && f.corrFired == nil {
		return fmt.Errorf("sim: ELSE_CORRELATED_ERROR with no preceding CORRELATED_ERROR group")
	}
	if f.corrFired == nil {
		f.corrFired = make([]bool, f.shots)
	}
	for s := 0; s < f.shots; s++ {
		if f.corrFired[s] {
			continue
		}
		if f.rng.Float64() >= prob {
			continue
		}
		f.corrFired[s] = true
		for q := 0; q < p.N; q++ {
			v := p.Get(q)
			if v == pauli.I {
				continue
			}
			mask := make([]bool, f.shots)
			mask[s] = true
			f.applySinglePauli(q, v, mask)
		}
	}
	obs.Count("correlated_error.chain_member", 1)
	obs.Debugf(os.Stderr, "[CorrGroup] member prob=%.4f isElse=%v\n", prob, isElse)
	return nil
}

// ApplyGateSweepControlled XORs the named sweep-bit column into the XOR
// update wherever the gate is a Pauli (X/Y/Z) conditioned on a sweep bit —
// the frame-simulator specialization of spec §4.7's sweep-bit support: for
// each shot, the Pauli is applied only if the corresponding sweep bit (from
// the attached sweep table, row sweepIndex) is set.
func (f *FrameSimulator) ApplyGateSweepControlled(q int, p pauli.Pauli, sweepIndex int) error {
	if f.sweep == nil {
		return fmt.Errorf("sim: no sweep-bit table attached")
	}
	row := f.sweep.Row(sweepIndex).Prefix(f.shots)
	mask := make([]bool, f.shots)
	for s := 0; s < f.shots; s++ {
		mask[s] = row.At(s).Get()
	}
	f.applySinglePauli(q, p, mask)
	return nil
}

// ClassicalControl flips qubit q's frame (applying Pauli p) on every shot
// where the referenced measurement record bit is 1 (spec §5: "classical
// control uses the measurement record to mask the XOR-update across
// shots").
func (f *FrameSimulator) ClassicalControl(q int, p pauli.Pauli, lookback int) error {
	row, err := f.record.Lookback(lookback)
	if err != nil {
		return err
	}
	mask := make([]bool, f.shots)
	for s := 0; s < f.shots; s++ {
		mask[s] = row.At(s).Get()
	}
	f.applySinglePauli(q, p, mask)
	return nil
}
