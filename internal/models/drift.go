package models

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/san-kum/popsim/internal/sim"
	"gonum.org/v1/gonum/stat/distuv"
)

// Drift is the normal approximation to random genetic drift. Each generation
// the frequency p moves by a draw from N(0, p(1-p)/2N). A frequency that
// leaves [0, 1] is clamped and the allele is lost or fixed for good.
type Drift struct {
	N int
}

func NewDrift(n int) (*Drift, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrPopulationSize, n)
	}
	return &Drift{N: n}, nil
}

func (d *Drift) Step(x sim.State, gen int, rng *rand.Rand) sim.State {
	p := x[0]
	if d.Absorbed(x) {
		return sim.State{p}
	}

	noise := distuv.Normal{
		Mu:    0,
		Sigma: math.Sqrt(p * (1 - p) / (2 * float64(d.N))),
		Src:   rng,
	}
	return sim.State{clamp01(p + noise.Rand())}
}

func (d *Drift) StateDim() int { return 1 }

func (d *Drift) Size() int { return d.N }

// Resize changes the population size for subsequent generations.
func (d *Drift) Resize(n int) error {
	if n < 1 {
		return fmt.Errorf("%w, got %d", ErrPopulationSize, n)
	}
	d.N = n
	return nil
}

func (d *Drift) Absorbed(x sim.State) bool {
	return x[0] <= 0 || x[0] >= 1
}

// Variance is the one-generation sampling variance at frequency p.
func (d *Drift) Variance(p float64) float64 {
	return p * (1 - p) / (2 * float64(d.N))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// CheckFrequency reports whether p is a usable starting frequency.
func CheckFrequency(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w, got %v", ErrFrequency, p)
	}
	return nil
}
