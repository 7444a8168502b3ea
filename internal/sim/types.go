package sim

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// State is the per-generation state vector of a model. For a single-locus
// drift model it is {p}; for the inbreeding systems it is the F history.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Model advances a population by one generation.
type Model interface {
	Step(x State, gen int, rng *rand.Rand) State
	StateDim() int
}

// Absorber is implemented by models with absorbing states (fixation or loss).
type Absorber interface {
	Absorbed(x State) bool
}

type Metric interface {
	Name() string
	Observe(x State, gen int)
	Value() float64
	Reset()
}

type Observer interface {
	OnGeneration(x State, gen int)
}

type Config struct {
	Generations      int
	Seed             int64
	ValidateState    bool
	StopOnAbsorption bool
}

func DefaultConfig() Config {
	return Config{
		Generations:      30,
		Seed:             1,
		ValidateState:    true,
		StopOnAbsorption: false,
	}
}

type Result struct {
	States      []State
	Generations []int
	Metrics     map[string]float64
	Absorbed    bool
	AbsorbedAt  int
	Errors      []error
}

// Final returns the last recorded state.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

// Series extracts component idx of every recorded state.
func (r *Result) Series(idx int) []float64 {
	out := make([]float64, len(r.States))
	for i, s := range r.States {
		if idx < len(s) {
			out[i] = s[idx]
		}
	}
	return out
}

// GenError reports a failure at a specific generation.
type GenError struct {
	Generation int
	Message    string
}

func (e GenError) Error() string {
	return fmt.Sprintf("generation %d: %s", e.Generation, e.Message)
}

// NewRand returns the generator used for a given seed. Every stochastic
// component derives its randomness from here so runs are reproducible.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}
