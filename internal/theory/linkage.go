package theory

import "math"

// LD returns D_t = D_0 (1 - r)^t.
func LD(d0, r float64, t int) float64 {
	return d0 * math.Pow(1-r, float64(t))
}

// LDHalfLife is the number of generations for D to halve. Unlinked loci
// (r = 0.5) halve every generation; r = 0 never decays.
func LDHalfLife(r float64) float64 {
	if r <= 0 {
		return math.Inf(1)
	}
	return math.Log(0.5) / math.Log(1-r)
}

func LDCurve(d0, r float64, t int) []float64 {
	out := make([]float64, t+1)
	for g := range out {
		out[g] = LD(d0, r, g)
	}
	return out
}
