package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/popsim/internal/models"
	"github.com/san-kum/popsim/internal/pedigree"
	"github.com/san-kum/popsim/internal/sim"
	"github.com/san-kum/popsim/internal/theory"
)

// DriftTable sets the ensemble summary against the expected variance and
// heterozygosity for starting frequency p0 in a population of size n.
func DriftTable(summary []GenerationSummary, p0 float64, n int) *Table {
	t := NewTable(
		fmt.Sprintf("random drift: N=%d p0=%.3f", n, p0),
		"gen", "mean_p", "var_p", "exp_var", "het", "exp_het", "fixed", "lost",
	)
	h0 := theory.ExpectedHeterozygosity(p0)
	for _, s := range summary {
		_ = t.Append(
			float64(s.Generation),
			s.Mean,
			s.Variance,
			theory.DriftVariance(p0, n, s.Generation),
			s.Heterozygosity,
			theory.Heterozygosity(h0, n, s.Generation),
			s.Fixed,
			s.Lost,
		)
	}
	return t
}

// LinkageTable tabulates a two-locus run against D_0 (1-r)^t.
func LinkageTable(res *sim.Result, r float64) (*Table, error) {
	if len(res.States) == 0 {
		return nil, ErrNoResults
	}
	t := NewTable(fmt.Sprintf("linkage disequilibrium: r=%.3f", r),
		"gen", "D", "exp_D", "D'", "r2", "pA", "pB")

	d0 := models.LD(res.States[0])
	for i, x := range res.States {
		if err := models.CheckHaplotypes(x); err != nil {
			return nil, fmt.Errorf("generation %d: %w", res.Generations[i], err)
		}
		pA, pB := models.AlleleFreqs(x)
		g := res.Generations[i]
		_ = t.Append(float64(g), models.LD(x), theory.LD(d0, r, g), models.DPrime(x), models.RSquared(x), pA, pB)
	}
	return t, nil
}

// InbreedingTable iterates each system from a non-inbred base and lists
// F_t side by side.
func InbreedingTable(generations int, systems ...*models.Inbreeding) (*Table, error) {
	if generations <= 0 {
		return nil, sim.ErrGenerations
	}
	cols := []string{"t"}
	for _, m := range systems {
		cols = append(cols, "F_"+string(m.System()))
	}
	t := NewTable("inbreeding under regular systems", cols...)

	states := make([]sim.State, len(systems))
	for i, m := range systems {
		states[i] = m.InitialState(0)
	}
	for g := 0; g <= generations; g++ {
		row := []float64{float64(g)}
		for i, m := range systems {
			if g > 0 {
				states[i] = m.Step(states[i], g, nil)
			}
			row = append(row, states[i][0])
		}
		if err := t.Append(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AddPedigreeColumn appends the mean inbreeding of pedigree generation
// t+offset to every row. Generations missing from the pedigree read NaN.
func AddPedigreeColumn(t *Table, name string, ped *pedigree.Pedigree, offset int) error {
	if _, err := ped.Kinship(); err != nil {
		return err
	}
	present := make(map[int]bool)
	for _, g := range ped.Generations() {
		present[g] = true
	}

	t.Columns = append(t.Columns, name)
	for i, row := range t.Rows {
		g := int(row[0]) + offset
		f := math.NaN()
		if present[g] {
			var err error
			if f, err = ped.MeanInbreeding(g); err != nil {
				return err
			}
		}
		t.Rows[i] = append(row, f)
	}
	return nil
}

// BaseTable compares inbreeding measured from the original founders with
// inbreeding measured from generation base. F_formula applies
// (F_old - F_base)/(1 - F_base) with F_base the mean coancestry of the base
// generation; F_new is the exact value on the rebased pedigree.
func BaseTable(ped *pedigree.Pedigree, base int) (*Table, error) {
	rebased, err := ped.Rebase(base)
	if err != nil {
		return nil, err
	}
	fBase, err := ped.MeanCoancestry(base)
	if err != nil {
		return nil, fmt.Errorf("base generation %d: %w", base, err)
	}

	t := NewTable(fmt.Sprintf("change of base population: base=%d F_base=%.4f", base, fBase),
		"gen", "F_old", "F_new", "F_formula")

	for _, g := range rebased.Generations() {
		fOld, err := ped.MeanInbreeding(g)
		if err != nil {
			return nil, err
		}
		fNew, err := rebased.MeanInbreeding(g)
		if err != nil {
			return nil, err
		}
		fFormula := math.NaN()
		if g > base {
			if v, err := theory.Rebase(fOld, fBase); err == nil {
				fFormula = v
			}
		}
		_ = t.Append(float64(g), fOld, fNew, fFormula)
	}
	return t, nil
}
