//go:build stabkit_debug

package sim

import "math/cmplx"

// DenseState is a dense state-vector simulation on at most 8 qubits, used
// only to cross-check TableauSimulator against a second, independent
// implementation on tiny qubit counts (spec's carve-out: full state-vector
// simulation is out of scope, but a small debug helper is not). Amplitudes
// are indexed so that bit q of the index is qubit q's value, matching the
// qubit numbering TableauSimulator and the gate tables use.
type DenseState struct {
	n    int
	amps []complex128
}

const maxDenseQubits = 8

// NewDenseZeroState builds the |0...0> state on n qubits, n <= 8.
func NewDenseZeroState(n int) *DenseState {
	if n > maxDenseQubits {
		panic("statevec_debug: dense cross-check is limited to 8 qubits")
	}
	amps := make([]complex128, 1<<uint(n))
	amps[0] = 1
	return &DenseState{n: n, amps: amps}
}

func (s *DenseState) apply1(q int, m [2][2]complex128) {
	bit := 1 << uint(q)
	for i := 0; i < len(s.amps); i++ {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a, b := s.amps[i], s.amps[j]
		s.amps[i] = m[0][0]*a + m[0][1]*b
		s.amps[j] = m[1][0]*a + m[1][1]*b
	}
}

var invSqrt2 = complex(1/1.4142135623730951, 0)

var oneQubitMatrices = map[string][2][2]complex128{
	"X":          {{0, 1}, {1, 0}},
	"Y":          {{0, -1i}, {1i, 0}},
	"Z":          {{1, 0}, {0, -1}},
	"H":          {{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}},
	"H_XZ":       {{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}},
	"S":          {{1, 0}, {0, 1i}},
	"SQRT_Z":     {{1, 0}, {0, 1i}},
	"S_DAG":      {{1, 0}, {0, -1i}},
	"SQRT_X":     {{(1 + 1i) / 2, (1 - 1i) / 2}, {(1 - 1i) / 2, (1 + 1i) / 2}},
	"SQRT_X_DAG": {{(1 - 1i) / 2, (1 + 1i) / 2}, {(1 + 1i) / 2, (1 - 1i) / 2}},
}

// Apply1 applies the named single-qubit gate to qubit q. Only the names in
// oneQubitMatrices are recognized; any other gate, including registered
// single-qubit Cliffords such as H_XY or SQRT_Y, panics.
func (s *DenseState) Apply1(name string, q int) {
	m, ok := oneQubitMatrices[name]
	if !ok {
		panic("statevec_debug: unknown single-qubit gate " + name)
	}
	s.apply1(q, m)
}

// ApplyCX applies a controlled-X with the given control and target qubits.
func (s *DenseState) ApplyCX(control, target int) {
	cBit, tBit := 1<<uint(control), 1<<uint(target)
	for i := 0; i < len(s.amps); i++ {
		if i&cBit == 0 || i&tBit != 0 {
			continue
		}
		j := i | tBit
		s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
	}
}

// ApplyCZ applies a controlled-Z with the given control and target qubits.
func (s *DenseState) ApplyCZ(control, target int) {
	cBit, tBit := 1<<uint(control), 1<<uint(target)
	for i := 0; i < len(s.amps); i++ {
		if i&cBit != 0 && i&tBit != 0 {
			s.amps[i] = -s.amps[i]
		}
	}
}

// ProbabilityZero returns the probability that measuring qubit q in the Z
// basis yields 0.
func (s *DenseState) ProbabilityZero(q int) float64 {
	bit := 1 << uint(q)
	p := 0.0
	for i, a := range s.amps {
		if i&bit == 0 {
			p += real(a)*real(a) + imag(a)*imag(a)
		}
	}
	return p
}

// CloseTo reports whether two dense states agree on every amplitude up to
// eps, ignoring any shared global phase (compared via |<s|o>|^2 == 1).
func (s *DenseState) CloseTo(o *DenseState, eps float64) bool {
	if s.n != o.n || len(s.amps) != len(o.amps) {
		return false
	}
	var overlap complex128
	for i := range s.amps {
		overlap += cmplx.Conj(s.amps[i]) * o.amps[i]
	}
	mag := real(overlap)*real(overlap) + imag(overlap)*imag(overlap)
	return mag >= 1-eps
}
