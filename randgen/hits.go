package randgen

import "math"

// SampleHitIndices draws the set of indices in [0, n) that are "hit" under
// an independent Bernoulli(p) trial per index, without materializing all n
// trials. It advances by geometric skips (the count of Bernoulli(p)
// failures before the next success), which is the method spec §4.7
// describes for sparse p; for p close to 1 the skip count degenerates to
// 0/1 and the result is equivalent to a direct binomial scan.
//
// Grounded on ntru/sampler_z.go's CDT-table style of turning one uniform
// draw into a discrete sample without a loop per candidate outcome — here
// the discrete distribution sampled is the skip-to-next-hit geometric law.
func (g *RNG) SampleHitIndices(n int, p float64) []int {
	if p <= 0 || n <= 0 {
		return nil
	}
	if p >= 1 {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	logNotP := math.Log1p(-p)
	var hits []int
	pos := -1
	for {
		u := g.r.Float64()
		// u in [0,1); avoid log(0) for u==0 by resampling away from the
		// boundary (probability 0 in practice but guards a hang).
		for u == 0 {
			u = g.r.Float64()
		}
		skip := int(math.Log(u) / logNotP)
		pos += skip + 1
		if pos >= n {
			break
		}
		hits = append(hits, pos)
	}
	return hits
}

// SampleBinomialCount draws a Binomial(n, p) count directly by summing the
// length of SampleHitIndices, for callers that need only the count, not the
// positions.
func (g *RNG) SampleBinomialCount(n int, p float64) int {
	return len(g.SampleHitIndices(n, p))
}

// UniformIndex returns a uniformly random index in [0, n). Each call is an
// independent draw, so repeated calls can return the same index.
func (g *RNG) UniformIndex(n int) int { return g.Intn(n) }

// UniformChoice returns a uniformly random element of choices.
func UniformChoice[T any](g *RNG, choices []T) T {
	return choices[g.Intn(len(choices))]
}
