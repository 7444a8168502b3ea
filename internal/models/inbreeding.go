package models

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/san-kum/popsim/internal/sim"
)

type System string

const (
	Selfing           System = "selfing"
	FullSib           System = "full_sib"
	HalfSib           System = "half_sib"
	DoubleFirstCousin System = "double_first_cousin"
	Ideal             System = "ideal"
)

// historyLen is the number of past coefficients a state carries. Double
// first cousins need three.
const historyLen = 3

// Inbreeding steps the inbreeding coefficient under a regular mating system.
// Every system has the form
//
//	F_t = c0 + c1 F_{t-1} + c2 F_{t-2} + c3 F_{t-3}
//
// and the state is the history {F_t, F_{t-1}, F_{t-2}}.
type Inbreeding struct {
	system   System
	constant float64
	weights  []float64
}

var systems = map[System]struct {
	constant float64
	weights  []float64
}{
	Selfing:           {1.0 / 2, []float64{1.0 / 2}},
	FullSib:           {1.0 / 4, []float64{2.0 / 4, 1.0 / 4}},
	HalfSib:           {1.0 / 8, []float64{6.0 / 8, 1.0 / 8}},
	DoubleFirstCousin: {1.0 / 8, []float64{4.0 / 8, 2.0 / 8, 1.0 / 8}},
}

// NewInbreeding returns the recurrence for a named system. The ideal
// population uses NewIdeal.
func NewInbreeding(system System) (*Inbreeding, error) {
	s, ok := systems[system]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSystem, system)
	}
	return &Inbreeding{system: system, constant: s.constant, weights: s.weights}, nil
}

// NewIdeal is random mating in an ideal population of N monoecious
// individuals: F_t = 1/2N + (1 - 1/2N) F_{t-1}.
func NewIdeal(n int) (*Inbreeding, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrPopulationSize, n)
	}
	c := 1 / (2 * float64(n))
	return &Inbreeding{system: Ideal, constant: c, weights: []float64{1 - c}}, nil
}

func (m *Inbreeding) System() System { return m.system }

func (m *Inbreeding) Step(x sim.State, gen int, rng *rand.Rand) sim.State {
	f := m.constant
	for i, w := range m.weights {
		f += w * x[i]
	}
	next := make(sim.State, historyLen)
	next[0] = f
	copy(next[1:], x[:historyLen-1])
	return next
}

func (m *Inbreeding) StateDim() int { return historyLen }

// InitialState is the history of a base population whose members have
// inbreeding f0 and whose ancestors are treated the same way.
func (m *Inbreeding) InitialState(f0 float64) sim.State {
	x := make(sim.State, historyLen)
	for i := range x {
		x[i] = f0
	}
	return x
}

// Rate is the rate of inbreeding ΔF = (F_t - F_{t-1}) / (1 - F_{t-1}).
func Rate(x sim.State) float64 {
	if len(x) < 2 || x[1] >= 1 {
		return 0
	}
	return (x[0] - x[1]) / (1 - x[1])
}

// AsymptoticRate iterates the recurrence until ΔF settles.
func (m *Inbreeding) AsymptoticRate() float64 {
	x := m.InitialState(0)
	prev := -1.0
	for gen := 1; gen <= 500; gen++ {
		x = m.Step(x, gen, nil)
		r := Rate(x)
		if gen > 5 && abs(r-prev) < 1e-12 {
			return r
		}
		prev = r
	}
	return prev
}

// Panmictic returns P = 1 - F.
func Panmictic(f float64) float64 { return 1 - f }

// Systems lists the named regular systems.
func Systems() []System {
	out := make([]System, 0, len(systems))
	for s := range systems {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
