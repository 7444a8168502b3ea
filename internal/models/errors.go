package models

import "errors"

var (
	ErrPopulationSize = errors.New("popsim/models: population size must be at least 1")

	ErrFrequency = errors.New("popsim/models: frequency must lie in [0, 1]")

	ErrRecombination = errors.New("popsim/models: recombination fraction must lie in [0, 0.5]")

	ErrHaplotypes = errors.New("popsim/models: haplotype frequencies must be non-negative and sum to 1")

	ErrUnknownSystem = errors.New("popsim/models: unknown mating system")
)
