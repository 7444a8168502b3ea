package analysis

import (
	"errors"

	"github.com/montanaflynn/stats"
	"github.com/san-kum/popsim/internal/sim"
)

var ErrNoResults = errors.New("popsim/analysis: no replicate results")

// GenerationSummary aggregates one generation of a drift ensemble.
type GenerationSummary struct {
	Generation     int
	Replicates     int
	Mean           float64
	Variance       float64
	Heterozygosity float64
	Fixed          float64
	Lost           float64
}

// Summarise computes per-generation statistics of component 0 (the allele
// frequency) across replicates. Lines that stopped early at absorption are
// carried forward at their final frequency.
func Summarise(results []*sim.Result) ([]GenerationSummary, error) {
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	last := 0
	for _, r := range results {
		if r == nil || len(r.States) == 0 {
			return nil, ErrNoResults
		}
		if g := r.Generations[len(r.Generations)-1]; g > last {
			last = g
		}
	}

	out := make([]GenerationSummary, 0, last+1)
	ps := make([]float64, len(results))
	het := make([]float64, len(results))

	for g := 0; g <= last; g++ {
		fixed, lost := 0, 0
		for i, r := range results {
			p := frequencyAt(r, g)
			ps[i] = p
			het[i] = 2 * p * (1 - p)
			switch {
			case p >= 1:
				fixed++
			case p <= 0:
				lost++
			}
		}

		s := GenerationSummary{
			Generation: g,
			Replicates: len(results),
			Fixed:      float64(fixed) / float64(len(results)),
			Lost:       float64(lost) / float64(len(results)),
		}
		var err error
		if s.Mean, err = stats.Mean(ps); err != nil {
			return nil, err
		}
		if s.Variance, err = variance(ps); err != nil {
			return nil, err
		}
		if s.Heterozygosity, err = stats.Mean(het); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// variance is the sample variance, or zero for a single replicate.
func variance(xs []float64) (float64, error) {
	if len(xs) < 2 {
		return stats.PopulationVariance(xs)
	}
	return stats.SampleVariance(xs)
}

func frequencyAt(r *sim.Result, g int) float64 {
	idx := len(r.States) - 1
	for i, gen := range r.Generations {
		if gen == g {
			idx = i
			break
		}
		if gen > g {
			idx = i - 1
			break
		}
	}
	if idx < 0 {
		idx = 0
	}
	return r.States[idx][0]
}

// Paths returns every replicate's frequency trajectory padded to the
// longest run.
func Paths(results []*sim.Result) [][]float64 {
	last := 0
	for _, r := range results {
		if g := r.Generations[len(r.Generations)-1]; g > last {
			last = g
		}
	}
	out := make([][]float64, len(results))
	for i, r := range results {
		path := make([]float64, last+1)
		for g := range path {
			path[g] = frequencyAt(r, g)
		}
		out[i] = path
	}
	return out
}
