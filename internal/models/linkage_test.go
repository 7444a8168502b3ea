package models

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/popsim/internal/sim"
)

func TestLinkage_DecaysGeometrically(t *testing.T) {
	const r = 0.2
	l, err := NewLinkage(r, 0)
	if err != nil {
		t.Fatal(err)
	}
	x, err := Haplotypes(0.5, 0.5, 0.25)
	if err != nil {
		t.Fatal(err)
	}

	d0 := LD(x)
	for gen := 1; gen <= 20; gen++ {
		x = l.Step(x, gen, nil)
		want := d0 * math.Pow(1-r, float64(gen))
		if math.Abs(LD(x)-want) > 1e-12 {
			t.Fatalf("generation %d: D=%g, want %g", gen, LD(x), want)
		}
	}
}

func TestLinkage_PreservesAlleleFrequencies(t *testing.T) {
	l, _ := NewLinkage(0.5, 0)
	x, _ := Haplotypes(0.7, 0.2, 0.05)

	pA0, pB0 := AlleleFreqs(x)
	for gen := 1; gen <= 10; gen++ {
		x = l.Step(x, gen, nil)
	}
	pA, pB := AlleleFreqs(x)
	if math.Abs(pA-pA0) > 1e-12 || math.Abs(pB-pB0) > 1e-12 {
		t.Errorf("allele frequencies moved: (%f,%f) -> (%f,%f)", pA0, pB0, pA, pB)
	}
}

func TestLinkage_FiniteSampling(t *testing.T) {
	l, _ := NewLinkage(0.1, 50)
	x, _ := Haplotypes(0.5, 0.5, 0.2)
	rng := sim.NewRand(21)

	for gen := 1; gen <= 15; gen++ {
		x = l.Step(x, gen, rng)
		if err := CheckHaplotypes(x); err != nil {
			t.Fatalf("generation %d: %v (%v)", gen, err, x)
		}
		for _, v := range x {
			k := v * 100
			if math.Abs(k-math.Round(k)) > 1e-9 {
				t.Fatalf("frequency %f is not a multiple of 1/100", v)
			}
		}
	}
}

func TestNewLinkage_Validation(t *testing.T) {
	for _, r := range []float64{-0.1, 0.6} {
		if _, err := NewLinkage(r, 0); !errors.Is(err, ErrRecombination) {
			t.Errorf("r=%v: expected ErrRecombination, got %v", r, err)
		}
	}
	if _, err := NewLinkage(0.1, -2); !errors.Is(err, ErrPopulationSize) {
		t.Errorf("expected ErrPopulationSize, got %v", err)
	}
}

func TestHaplotypes_Unattainable(t *testing.T) {
	if _, err := Haplotypes(0.5, 0.5, 0.3); !errors.Is(err, ErrHaplotypes) {
		t.Errorf("expected ErrHaplotypes, got %v", err)
	}
}

func TestDisequilibriumMeasures(t *testing.T) {
	tests := []struct {
		name       string
		pA, pB, d  float64
		wantDPrime float64
		wantR2     float64
	}{
		{"complete coupling", 0.5, 0.5, 0.25, 1, 1},
		{"complete repulsion", 0.5, 0.5, -0.25, -1, 1},
		{"equilibrium", 0.3, 0.6, 0, 0, 0},
		{"partial", 0.5, 0.5, 0.125, 0.5, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := Haplotypes(tt.pA, tt.pB, tt.d)
			if err != nil {
				t.Fatal(err)
			}
			if got := DPrime(x); math.Abs(got-tt.wantDPrime) > 1e-12 {
				t.Errorf("DPrime = %v, want %v", got, tt.wantDPrime)
			}
			if got := RSquared(x); math.Abs(got-tt.wantR2) > 1e-12 {
				t.Errorf("RSquared = %v, want %v", got, tt.wantR2)
			}
		})
	}
}

func TestDisequilibrium_FixedLocus(t *testing.T) {
	x := sim.State{0.4, 0.6, 0, 0}
	if DPrime(x) != 0 || RSquared(x) != 0 {
		t.Errorf("expected zero measures with locus A fixed, got %v %v", DPrime(x), RSquared(x))
	}
}
