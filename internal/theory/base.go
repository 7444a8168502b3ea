package theory

import (
	"errors"
	"fmt"
)

var ErrBaseFixed = errors.New("popsim/theory: base population is completely inbred (F_base = 1)")

var ErrCoefficient = errors.New("popsim/theory: inbreeding coefficient must lie in [0, 1]")

// Rebase expresses an inbreeding coefficient measured from an old base
// relative to a newer base population with inbreeding fBase:
//
//	F_rel = (F_total - F_base) / (1 - F_base)
func Rebase(fTotal, fBase float64) (float64, error) {
	if err := checkCoefficient(fTotal); err != nil {
		return 0, err
	}
	if err := checkCoefficient(fBase); err != nil {
		return 0, err
	}
	if fBase >= 1 {
		return 0, ErrBaseFixed
	}
	return (fTotal - fBase) / (1 - fBase), nil
}

// Combine is the inverse of Rebase: 1 - F_total = (1 - F_rel)(1 - F_base).
func Combine(fRel, fBase float64) (float64, error) {
	if err := checkCoefficient(fRel); err != nil {
		return 0, err
	}
	if err := checkCoefficient(fBase); err != nil {
		return 0, err
	}
	return 1 - (1-fRel)*(1-fBase), nil
}

// CombineChain folds coefficients from successive bases into one measured
// from the oldest: 1 - F = Π (1 - F_i).
func CombineChain(fs ...float64) (float64, error) {
	p := 1.0
	for _, f := range fs {
		if err := checkCoefficient(f); err != nil {
			return 0, err
		}
		p *= 1 - f
	}
	return 1 - p, nil
}

// Heterozygosity after inbreeding f: H = H0 (1 - f).
func InbredHeterozygosity(h0, f float64) float64 {
	return h0 * (1 - f)
}

func checkCoefficient(f float64) error {
	if f < 0 || f > 1 || f != f {
		return fmt.Errorf("%w, got %v", ErrCoefficient, f)
	}
	return nil
}
