package models

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/popsim/internal/sim"
)

func iterate(m *Inbreeding, gens int) []float64 {
	x := m.InitialState(0)
	out := []float64{x[0]}
	for gen := 1; gen <= gens; gen++ {
		x = m.Step(x, gen, nil)
		out = append(out, x[0])
	}
	return out
}

func TestFullSib_KnownValues(t *testing.T) {
	m, err := NewInbreeding(FullSib)
	if err != nil {
		t.Fatal(err)
	}

	// Falconer & Mackay, Table 5.1
	want := []float64{0, 0.25, 0.375, 0.5, 0.59375, 0.671875}
	got := iterate(m, len(want)-1)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("F_%d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSelfing_KnownValues(t *testing.T) {
	m, _ := NewInbreeding(Selfing)
	got := iterate(m, 4)
	want := []float64{0, 0.5, 0.75, 0.875, 0.9375}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("F_%d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAsymptoticRates(t *testing.T) {
	tests := []struct {
		system System
		want   float64
	}{
		{Selfing, 0.5},
		{FullSib, 0.191},
		{HalfSib, 0.110},
		{DoubleFirstCousin, 0.0804},
	}

	for _, tt := range tests {
		t.Run(string(tt.system), func(t *testing.T) {
			m, err := NewInbreeding(tt.system)
			if err != nil {
				t.Fatal(err)
			}
			if got := m.AsymptoticRate(); math.Abs(got-tt.want) > 5e-4 {
				t.Errorf("ΔF = %.5f, want %.4f", got, tt.want)
			}
		})
	}
}

func TestIdeal_MatchesClosedForm(t *testing.T) {
	const n = 20
	m, err := NewIdeal(n)
	if err != nil {
		t.Fatal(err)
	}
	got := iterate(m, 30)
	for gen, f := range got {
		want := 1 - math.Pow(1-1/(2.0*n), float64(gen))
		if math.Abs(f-want) > 1e-12 {
			t.Errorf("generation %d: F=%v, want %v", gen, f, want)
		}
	}
	if r := m.AsymptoticRate(); math.Abs(r-1/(2.0*n)) > 1e-12 {
		t.Errorf("ΔF = %v, want %v", r, 1/(2.0*n))
	}
}

func TestInbreeding_Monotone(t *testing.T) {
	for _, s := range Systems() {
		m, _ := NewInbreeding(s)
		f := iterate(m, 40)
		for i := 1; i < len(f); i++ {
			if f[i] < f[i-1] || f[i] > 1 {
				t.Errorf("%s: F not monotone in [0,1] at %d: %v -> %v", s, i, f[i-1], f[i])
			}
		}
	}
}

func TestInbreeding_UnknownSystem(t *testing.T) {
	if _, err := NewInbreeding("cousins"); !errors.Is(err, ErrUnknownSystem) {
		t.Errorf("expected ErrUnknownSystem, got %v", err)
	}
	if _, err := NewIdeal(0); !errors.Is(err, ErrPopulationSize) {
		t.Errorf("expected ErrPopulationSize, got %v", err)
	}
}

func TestRate(t *testing.T) {
	if got := Rate(sim.State{0.5, 0.25}); math.Abs(got-1.0/3) > 1e-12 {
		t.Errorf("Rate = %v, want 1/3", got)
	}
	if got := Rate(sim.State{1, 1}); got != 0 {
		t.Errorf("Rate at F=1 should be 0, got %v", got)
	}
	if Panmictic(0.25) != 0.75 {
		t.Error("Panmictic(0.25) != 0.75")
	}
}
