package theory

import "math"

// DriftVariance is the variance of allele frequency among replicate lines
// after t generations: p0 q0 [1 - (1 - 1/2N)^t].
func DriftVariance(p0 float64, n, t int) float64 {
	return p0 * (1 - p0) * (1 - retained(n, t))
}

// Heterozygosity is the expected heterozygosity after t generations of
// drift: H0 (1 - 1/2N)^t.
func Heterozygosity(h0 float64, n, t int) float64 {
	return h0 * retained(n, t)
}

// DriftF is the inbreeding coefficient accumulated by drift alone.
func DriftF(n, t int) float64 {
	return 1 - retained(n, t)
}

// FixationProbability of a neutral allele equals its starting frequency.
func FixationProbability(p0 float64) float64 { return p0 }

// ExpectedHeterozygosity is 2pq.
func ExpectedHeterozygosity(p float64) float64 { return 2 * p * (1 - p) }

func retained(n, t int) float64 {
	if n <= 0 {
		return 0
	}
	return math.Pow(1-1/(2*float64(n)), float64(t))
}

// DriftCurve tabulates the expected variance for generations 0..t.
func DriftCurve(p0 float64, n, t int) []float64 {
	out := make([]float64, t+1)
	for g := range out {
		out[g] = DriftVariance(p0, n, g)
	}
	return out
}
