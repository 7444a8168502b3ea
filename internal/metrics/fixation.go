package metrics

import "github.com/san-kum/popsim/internal/sim"

// FixationTime records the first generation at which the frequency hits 0
// or 1. Value is Unabsorbed while the allele still segregates.
type FixationTime struct {
	name string
	at   int
}

func NewFixationTime() *FixationTime {
	return &FixationTime{name: "fixation_time", at: Unabsorbed}
}

func (f *FixationTime) Name() string { return f.name }

func (f *FixationTime) Observe(x sim.State, gen int) {
	if f.at >= 0 || len(x) < 1 {
		return
	}
	if x[0] <= 0 || x[0] >= 1 {
		f.at = gen
	}
}

func (f *FixationTime) Value() float64 { return float64(f.at) }

func (f *FixationTime) Reset() { f.at = Unabsorbed }

// FinalValue keeps the last observed value of one state component.
type FinalValue struct {
	name  string
	index int
	value float64
}

func NewFinalValue(name string, index int) *FinalValue {
	return &FinalValue{name: name, index: index}
}

func (f *FinalValue) Name() string { return f.name }

func (f *FinalValue) Observe(x sim.State, gen int) {
	if f.index < len(x) {
		f.value = x[f.index]
	}
}

func (f *FinalValue) Value() float64 { return f.value }

func (f *FinalValue) Reset() { f.value = 0 }
