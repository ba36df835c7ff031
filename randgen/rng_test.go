package randgen

import "testing"

func TestRNGReproducible(t *testing.T) {
	a := New(123)
	b := New(123)
	for i := 0; i < 100; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatalf("same seed produced divergent streams at step %d", i)
		}
	}
}

func TestBiasedBitExtremes(t *testing.T) {
	rng := New(1)
	for i := 0; i < 100; i++ {
		if rng.BiasedBit(0) {
			t.Fatalf("p=0 must never fire")
		}
	}
	for i := 0; i < 100; i++ {
		if !rng.BiasedBit(1) {
			t.Fatalf("p=1 must always fire")
		}
	}
}

func TestSampleHitIndicesBounds(t *testing.T) {
	rng := New(42)
	for trial := 0; trial < 20; trial++ {
		hits := rng.SampleHitIndices(1000, 0.01)
		seen := map[int]bool{}
		for _, h := range hits {
			if h < 0 || h >= 1000 {
				t.Fatalf("hit index %d out of range", h)
			}
			if seen[h] {
				t.Fatalf("duplicate hit index %d", h)
			}
			seen[h] = true
		}
	}
}

func TestSampleHitIndicesZeroAndOne(t *testing.T) {
	rng := New(7)
	if hits := rng.SampleHitIndices(50, 0); hits != nil {
		t.Fatalf("p=0 should yield no hits, got %v", hits)
	}
	hits := rng.SampleHitIndices(50, 1)
	if len(hits) != 50 {
		t.Fatalf("p=1 should hit every index, got %d", len(hits))
	}
}

func TestSampleQuantumMallowsProducesPermutation(t *testing.T) {
	rng := New(5)
	n := 20
	perm, hadamard := SampleQuantumMallows(n, rng)
	if len(perm) != n || len(hadamard) != n {
		t.Fatalf("expected length %d, got perm=%d hadamard=%d", n, len(perm), len(hadamard))
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			t.Fatalf("perm is not a bijection on [0,%d): got %v", n, perm)
		}
		seen[p] = true
	}
}
