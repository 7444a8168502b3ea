package models

import (
	"fmt"
	"math/rand/v2"

	"github.com/san-kum/popsim/internal/sim"
	"gonum.org/v1/gonum/stat/distuv"
)

// WrightFisher draws the 2N gene copies of the next generation binomially
// from the current allele frequency.
type WrightFisher struct {
	N int
}

func NewWrightFisher(n int) (*WrightFisher, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrPopulationSize, n)
	}
	return &WrightFisher{N: n}, nil
}

func (w *WrightFisher) Step(x sim.State, gen int, rng *rand.Rand) sim.State {
	if w.Absorbed(x) {
		return sim.State{x[0]}
	}
	copies := 2 * w.N
	k := binomial(copies, x[0], rng)
	return sim.State{float64(k) / float64(copies)}
}

func (w *WrightFisher) StateDim() int { return 1 }

func (w *WrightFisher) Size() int { return w.N }

// Resize changes the population size for subsequent generations.
func (w *WrightFisher) Resize(n int) error {
	if n < 1 {
		return fmt.Errorf("%w, got %d", ErrPopulationSize, n)
	}
	w.N = n
	return nil
}

func (w *WrightFisher) Absorbed(x sim.State) bool {
	return x[0] <= 0 || x[0] >= 1
}

func binomial(n int, p float64, rng *rand.Rand) int {
	switch {
	case n <= 0 || p <= 0:
		return 0
	case p >= 1:
		return n
	}
	b := distuv.Binomial{N: float64(n), P: p, Src: rng}
	return int(b.Rand())
}

// multinomial splits n draws over the categories in probs using sequential
// conditional binomials.
func multinomial(n int, probs []float64, rng *rand.Rand) []int {
	counts := make([]int, len(probs))
	remaining := n
	mass := 1.0
	for i, p := range probs {
		if remaining == 0 {
			break
		}
		if i == len(probs)-1 || mass <= 0 {
			counts[i] = remaining
			break
		}
		k := binomial(remaining, clamp01(p/mass), rng)
		counts[i] = k
		remaining -= k
		mass -= p
	}
	return counts
}
