package tableau

import (
	"fmt"
	"strings"
	"sync"

	"stabkit/pauli"
)

// Gate describes one entry of the registry (spec §4.4): a canonical name,
// its aliases, a handful of dispatch flags, and — for unitary gates — the
// tableau giving its prepend images (spec §6's table) plus the canonical
// name of its inverse.
type Gate struct {
	Name              string
	Aliases           []string
	NumQubits         int
	IsUnitary         bool
	TargetsPairs      bool
	ProducesMeasurement bool
	TakesProbability  bool
	IsReset           bool
	Tableau           *Tableau
	InverseName       string
}

var (
	registryOnce sync.Once
	registry     map[string]*Gate
)

// signedTerm describes one cell of spec §6's gate table: a sign and a dense
// Pauli pattern (e.g. "+XX", "-Z").
type signedTerm struct {
	sign    bool
	pattern string
}

func term(s string) signedTerm {
	neg := strings.HasPrefix(s, "-") || strings.HasPrefix(s, "–")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "–")
	s = strings.TrimPrefix(s, "+")
	return signedTerm{sign: neg, pattern: s}
}

func buildGateTableau(numQubits int, x0, z0, x1, z1 signedTerm) *Tableau {
	t := New(numQubits)
	setRow := func(row pauli.StringRef, tm signedTerm) {
		p, err := pauli.FromString(tm.pattern)
		if err != nil {
			panic(fmt.Sprintf("tableau: bad gate table entry %q: %v", tm.pattern, err))
		}
		src := p.Ref()
		row.Xs.CopyFrom(src.Xs)
		row.Zs.CopyFrom(src.Zs)
		row.Sign.Set(tm.sign)
	}
	setRow(t.XsRow(0), x0)
	setRow(t.ZsRow(0), z0)
	if numQubits == 2 {
		setRow(t.XsRow(1), x1)
		setRow(t.ZsRow(1), z1)
	}
	return t
}

// Registry returns the process-wide gate table, built once (mirrors the
// teacher's sync.Once-guarded parameter-preset pattern).
func Registry() map[string]*Gate {
	registryOnce.Do(func() {
		registry = buildRegistry()
	})
	return registry
}

// Lookup finds a gate by canonical name or alias, case-insensitively.
func Lookup(name string) (*Gate, error) {
	g, ok := Registry()[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("tableau: unknown gate %q", name)
	}
	return g, nil
}

type rawGate struct {
	name    string
	aliases []string
	n       int
	x0, z0  string
	x1, z1  string
	inverse string
}

func buildRegistry() map[string]*Gate {
	// Table verbatim from spec §6; X1/Z1 blank for single-qubit gates.
	raw := []rawGate{
		{name: "I", n: 1, x0: "+X", z0: "+Z", inverse: "I"},
		{name: "X", n: 1, x0: "+X", z0: "-Z", inverse: "X"},
		{name: "Y", n: 1, x0: "-X", z0: "-Z", inverse: "Y"},
		{name: "Z", n: 1, x0: "-X", z0: "+Z", inverse: "Z"},
		{name: "H", aliases: []string{"H_XZ"}, n: 1, x0: "+Z", z0: "+X", inverse: "H"},
		{name: "H_XY", n: 1, x0: "+Y", z0: "-Z", inverse: "H_XY"},
		{name: "H_YZ", n: 1, x0: "-X", z0: "+Y", inverse: "H_YZ"},
		{name: "S", aliases: []string{"SQRT_Z"}, n: 1, x0: "+Y", z0: "+Z", inverse: "S_DAG"},
		{name: "S_DAG", n: 1, x0: "-Y", z0: "+Z", inverse: "S"},
		{name: "SQRT_X", n: 1, x0: "+X", z0: "-Y", inverse: "SQRT_X_DAG"},
		{name: "SQRT_X_DAG", n: 1, x0: "+X", z0: "+Y", inverse: "SQRT_X"},
		{name: "SQRT_Y", n: 1, x0: "-Z", z0: "+X", inverse: "SQRT_Y_DAG"},
		{name: "SQRT_Y_DAG", n: 1, x0: "+Z", z0: "-X", inverse: "SQRT_Y"},
		{name: "SWAP", n: 2, x0: "+IX", z0: "+IZ", x1: "+XI", z1: "+ZI", inverse: "SWAP"},
		{name: "CX", aliases: []string{"CNOT"}, n: 2, x0: "+XX", z0: "+ZI", x1: "+IX", z1: "+ZZ", inverse: "CX"},
		{name: "CY", n: 2, x0: "+XY", z0: "+ZI", x1: "+ZX", z1: "+ZZ", inverse: "CY"},
		{name: "CZ", n: 2, x0: "+XZ", z0: "+ZI", x1: "+ZX", z1: "+IZ", inverse: "CZ"},
		{name: "ISWAP", n: 2, x0: "+ZY", z0: "+IZ", x1: "+YZ", z1: "+ZI", inverse: "ISWAP_DAG"},
		{name: "ISWAP_DAG", n: 2, x0: "-ZY", z0: "+IZ", x1: "-YZ", z1: "+ZI", inverse: "ISWAP"},
		{name: "XCX", n: 2, x0: "+XI", z0: "+ZX", x1: "+IX", z1: "+XZ", inverse: "XCX"},
		{name: "XCY", n: 2, x0: "+XI", z0: "+ZY", x1: "+XX", z1: "+XZ", inverse: "XCY"},
		{name: "XCZ", n: 2, x0: "+XI", z0: "+ZZ", x1: "+XX", z1: "+IZ", inverse: "XCZ"},
		{name: "YCX", n: 2, x0: "+XX", z0: "+ZX", x1: "+IX", z1: "+YZ", inverse: "YCX"},
		{name: "YCY", n: 2, x0: "+XY", z0: "+ZY", x1: "+YX", z1: "+YZ", inverse: "YCY"},
		{name: "YCZ", n: 2, x0: "+XZ", z0: "+ZZ", x1: "+YX", z1: "+IZ", inverse: "YCZ"},
	}

	out := map[string]*Gate{}
	for _, r := range raw {
		g := &Gate{
			Name:         r.name,
			Aliases:      r.aliases,
			NumQubits:    r.n,
			IsUnitary:    true,
			TargetsPairs: r.n == 2,
			InverseName:  r.inverse,
		}
		g.Tableau = buildGateTableau(r.n, term(r.x0), term(r.z0), term(r.x1), term(r.z1))
		out[strings.ToUpper(r.name)] = g
		for _, a := range r.aliases {
			out[strings.ToUpper(a)] = g
		}
	}

	registerNonUnitary(out, "RX", 1, false)
	registerNonUnitary(out, "RY", 1, false)
	registerNonUnitary(out, "RZ", 1, false)
	out["R"] = out["RZ"]
	registerMeasurement(out, "MX", 1)
	registerMeasurement(out, "MY", 1)
	registerMeasurement(out, "MZ", 1)
	out["M"] = out["MZ"]
	registerMeasurement(out, "MRX", 1)
	registerMeasurement(out, "MRY", 1)
	registerMeasurement(out, "MRZ", 1)
	out["MRX"].IsReset = true
	out["MRY"].IsReset = true
	out["MRZ"].IsReset = true
	out["MPP"] = &Gate{Name: "MPP", ProducesMeasurement: true}
	for _, n := range []string{"X_ERROR", "Y_ERROR", "Z_ERROR"} {
		out[n] = &Gate{Name: n, NumQubits: 1, TakesProbability: true}
	}
	out["DEPOLARIZE1"] = &Gate{Name: "DEPOLARIZE1", NumQubits: 1, TakesProbability: true}
	out["DEPOLARIZE2"] = &Gate{Name: "DEPOLARIZE2", NumQubits: 2, TargetsPairs: true, TakesProbability: true}
	out["PAULI_CHANNEL_1"] = &Gate{Name: "PAULI_CHANNEL_1", NumQubits: 1, TakesProbability: true}
	out["PAULI_CHANNEL_2"] = &Gate{Name: "PAULI_CHANNEL_2", NumQubits: 2, TargetsPairs: true, TakesProbability: true}
	out["CORRELATED_ERROR"] = &Gate{Name: "CORRELATED_ERROR", TakesProbability: true}
	out["ELSE_CORRELATED_ERROR"] = &Gate{Name: "ELSE_CORRELATED_ERROR", TakesProbability: true}
	return out
}

func registerNonUnitary(out map[string]*Gate, name string, n int, unitary bool) {
	out[name] = &Gate{Name: name, NumQubits: n, IsUnitary: unitary, IsReset: true}
}

func registerMeasurement(out map[string]*Gate, name string, n int) {
	out[name] = &Gate{Name: name, NumQubits: n, ProducesMeasurement: true, TakesProbability: true}
}
