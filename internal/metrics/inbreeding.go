package metrics

import (
	"github.com/san-kum/popsim/internal/models"
	"github.com/san-kum/popsim/internal/sim"
)

// MeanF averages the inbreeding coefficient over the observed generations.
type MeanF struct {
	name    string
	samples int
	total   float64
}

func NewMeanF() *MeanF {
	return &MeanF{name: "mean_f"}
}

func (m *MeanF) Name() string { return m.name }

func (m *MeanF) Observe(x sim.State, gen int) {
	if len(x) < 1 {
		return
	}
	m.total += x[0]
	m.samples++
}

func (m *MeanF) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanF) Reset() {
	m.total = 0
	m.samples = 0
}

// FinalRate reports ΔF of the last observed generation.
type FinalRate struct {
	name string
	rate float64
}

func NewFinalRate() *FinalRate {
	return &FinalRate{name: "delta_f"}
}

func (r *FinalRate) Name() string { return r.name }

func (r *FinalRate) Observe(x sim.State, gen int) {
	if gen > 0 {
		r.rate = models.Rate(x)
	}
}

func (r *FinalRate) Value() float64 { return r.rate }

func (r *FinalRate) Reset() { r.rate = 0 }

// LD keeps the last observed disequilibrium of a two-locus state.
type LD struct {
	name string
	d    float64
}

func NewLD() *LD { return &LD{name: "final_d"} }

func (l *LD) Name() string { return l.name }

func (l *LD) Observe(x sim.State, gen int) {
	if len(x) == 4 {
		l.d = models.LD(x)
	}
}

func (l *LD) Value() float64 { return l.d }

func (l *LD) Reset() { l.d = 0 }
