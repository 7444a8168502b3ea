package pedigree

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// Kinship holds the additive relationship matrix A of a pedigree, indexed
// in insertion order. Coancestry is A/2.
type Kinship struct {
	ids   []string
	index map[string]int
	a     *mat.SymDense
}

// Kinship computes the relationship matrix with the tabular method. The
// result is cached until the pedigree changes.
func (p *Pedigree) Kinship() (*Kinship, error) {
	if p.kinship != nil {
		return p.kinship, nil
	}
	order, err := p.sorted()
	if err != nil {
		return nil, err
	}

	n := len(p.individuals)
	a := mat.NewSymDense(max(n, 1), nil)
	done := make([]int, 0, n)

	for _, i := range order {
		ind := p.individuals[i]
		s, hasSire := p.index[ind.Sire]
		d, hasDam := p.index[ind.Dam]

		diag := 1.0
		if hasSire && hasDam {
			diag += 0.5 * a.At(s, d)
		}
		a.SetSym(i, i, diag)

		for _, j := range done {
			v := 0.0
			if hasSire {
				v += a.At(j, s)
			}
			if hasDam {
				v += a.At(j, d)
			}
			a.SetSym(i, j, 0.5*v)
		}
		done = append(done, i)
	}

	ids := make([]string, n)
	index := make(map[string]int, n)
	for i, ind := range p.individuals {
		ids[i] = ind.ID
		index[ind.ID] = i
	}
	p.kinship = &Kinship{ids: ids, index: index, a: a}
	return p.kinship, nil
}

func (k *Kinship) IDs() []string { return k.ids }

// Relationship returns the additive relationship a(x,y).
func (k *Kinship) Relationship(x, y string) (float64, error) {
	i, ok := k.index[x]
	if !ok {
		return 0, &PedigreeError{ID: x, Err: ErrNotFound}
	}
	j, ok := k.index[y]
	if !ok {
		return 0, &PedigreeError{ID: y, Err: ErrNotFound}
	}
	return k.a.At(i, j), nil
}

// Coancestry is the probability that alleles drawn at random from x and y
// are identical by descent.
func (k *Kinship) Coancestry(x, y string) (float64, error) {
	r, err := k.Relationship(x, y)
	return r / 2, err
}

// Inbreeding returns F of an individual, a(x,x) - 1.
func (k *Kinship) Inbreeding(x string) (float64, error) {
	r, err := k.Relationship(x, x)
	if err != nil {
		return 0, err
	}
	return r - 1, nil
}

// Matrix returns the relationship matrix.
func (k *Kinship) Matrix() mat.Symmetric { return k.a }

// CoancestryMatrix returns A/2 as a new matrix.
func (k *Kinship) CoancestryMatrix() *mat.SymDense {
	var c mat.SymDense
	c.ScaleSym(0.5, k.a)
	return &c
}

// Inbreeding is a convenience for Kinship().Inbreeding(id).
func (p *Pedigree) Inbreeding(id string) (float64, error) {
	k, err := p.Kinship()
	if err != nil {
		return 0, err
	}
	return k.Inbreeding(id)
}

// MeanInbreeding averages F over the members of generation g.
func (p *Pedigree) MeanInbreeding(g int) (float64, error) {
	k, err := p.Kinship()
	if err != nil {
		return 0, err
	}
	var fs []float64
	for _, ind := range p.Generation(g) {
		f, err := k.Inbreeding(ind.ID)
		if err != nil {
			return 0, err
		}
		fs = append(fs, f)
	}
	if len(fs) == 0 {
		return 0, ErrNotFound
	}
	return stats.Mean(fs)
}

// MeanCoancestry averages the coancestry over all distinct pairs in
// generation g. It is the expected F of their offspring under random mating.
// A generation of one uses its self-coancestry (1+F)/2.
func (p *Pedigree) MeanCoancestry(g int) (float64, error) {
	k, err := p.Kinship()
	if err != nil {
		return 0, err
	}
	members := p.Generation(g)
	if len(members) == 1 {
		return k.Coancestry(members[0].ID, members[0].ID)
	}
	var cs []float64
	for x := 0; x < len(members); x++ {
		for y := x + 1; y < len(members); y++ {
			c, err := k.Coancestry(members[x].ID, members[y].ID)
			if err != nil {
				return 0, err
			}
			cs = append(cs, c)
		}
	}
	if len(cs) == 0 {
		return 0, ErrNotFound
	}
	return stats.Mean(cs)
}
