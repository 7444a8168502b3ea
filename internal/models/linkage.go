package models

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/san-kum/popsim/internal/sim"
)

// Haplotype indices of a two-locus state.
const (
	HapAB = iota
	HapAb
	HapaB
	Hapab
)

// Linkage tracks the four gamete frequencies {AB, Ab, aB, ab} of two loci.
// Recombination at rate R shrinks D by a factor (1-R) each generation while
// leaving allele frequencies unchanged. With N > 0 the gametes are also
// resampled from 2N copies, adding drift.
type Linkage struct {
	R float64
	N int
}

func NewLinkage(r float64, n int) (*Linkage, error) {
	if math.IsNaN(r) || r < 0 || r > 0.5 {
		return nil, fmt.Errorf("%w, got %v", ErrRecombination, r)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w, got %d", ErrPopulationSize, n)
	}
	return &Linkage{R: r, N: n}, nil
}

func (l *Linkage) Step(x sim.State, gen int, rng *rand.Rand) sim.State {
	d := LD(x)
	next := sim.State{
		x[HapAB] - l.R*d,
		x[HapAb] + l.R*d,
		x[HapaB] + l.R*d,
		x[Hapab] - l.R*d,
	}
	if l.N == 0 {
		return next
	}

	copies := 2 * l.N
	counts := multinomial(copies, next, rng)
	for i, c := range counts {
		next[i] = float64(c) / float64(copies)
	}
	return next
}

func (l *Linkage) StateDim() int { return 4 }

// Haplotypes builds gamete frequencies from allele frequencies pA, pB and
// the disequilibrium D.
func Haplotypes(pA, pB, d float64) (sim.State, error) {
	if err := CheckFrequency(pA); err != nil {
		return nil, err
	}
	if err := CheckFrequency(pB); err != nil {
		return nil, err
	}
	qA, qB := 1-pA, 1-pB
	x := sim.State{pA*pB + d, pA*qB - d, qA*pB - d, qA*qB + d}
	if err := CheckHaplotypes(x); err != nil {
		return nil, fmt.Errorf("D=%v not attainable for pA=%v pB=%v: %w", d, pA, pB, err)
	}
	return x, nil
}

func CheckHaplotypes(x sim.State) error {
	if len(x) != 4 {
		return ErrHaplotypes
	}
	sum := 0.0
	for _, v := range x {
		if v < -1e-12 || math.IsNaN(v) {
			return ErrHaplotypes
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		return ErrHaplotypes
	}
	return nil
}

// AlleleFreqs returns pA and pB.
func AlleleFreqs(x sim.State) (float64, float64) {
	return x[HapAB] + x[HapAb], x[HapAB] + x[HapaB]
}

// LD is the coefficient of linkage disequilibrium D = x_AB x_ab - x_Ab x_aB.
func LD(x sim.State) float64 {
	return x[HapAB]*x[Hapab] - x[HapAb]*x[HapaB]
}

// DPrime is D scaled by its maximum attainable magnitude given the allele
// frequencies. It is zero when either locus is fixed.
func DPrime(x sim.State) float64 {
	d := LD(x)
	pA, pB := AlleleFreqs(x)
	qA, qB := 1-pA, 1-pB

	var dmax float64
	if d > 0 {
		dmax = math.Min(pA*qB, qA*pB)
	} else {
		dmax = math.Min(pA*pB, qA*qB)
	}
	if dmax <= 0 {
		return 0
	}
	return d / dmax
}

// RSquared is the squared correlation of allelic states between the loci.
func RSquared(x sim.State) float64 {
	d := LD(x)
	pA, pB := AlleleFreqs(x)
	den := pA * (1 - pA) * pB * (1 - pB)
	if den <= 0 {
		return 0
	}
	return d * d / den
}
