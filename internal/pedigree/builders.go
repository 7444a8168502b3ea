package pedigree

import (
	"fmt"
	"math/rand/v2"
)

// ID returns the identifier used by the synthetic lines for the k-th member
// (1-based) of generation g.
func ID(g, k int) string {
	return fmt.Sprintf("G%d-%d", g, k)
}

// FullSibLine builds a line maintained by brother-sister mating. Generation
// 0 holds two unrelated founders; every later generation holds offspring
// full sibs of the previous pair, the first a male and the second a female,
// and the first two are mated. Members of generation g have F equal to
// the full-sib recurrence at t = g-1.
func FullSibLine(generations, offspring int) (*Pedigree, error) {
	if generations < 0 || offspring < 2 {
		return nil, fmt.Errorf("%w: generations=%d offspring=%d", ErrBuilder, generations, offspring)
	}

	p := New()
	_ = p.Add(Individual{ID: ID(0, 1), Sex: Male})
	_ = p.Add(Individual{ID: ID(0, 2), Sex: Female})

	for g := 1; g <= generations; g++ {
		for k := 1; k <= offspring; k++ {
			sex := Female
			if k%2 == 1 {
				sex = Male
			}
			ind := Individual{
				ID:         ID(g, k),
				Sire:       ID(g-1, 1),
				Dam:        ID(g-1, 2),
				Generation: g,
				Sex:        sex,
			}
			if err := p.Add(ind); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

// SelfingLine builds a single line propagated by self-fertilisation from one
// non-inbred founder. Generation g has F equal to the selfing recurrence at t = g.
func SelfingLine(generations int) (*Pedigree, error) {
	if generations < 0 {
		return nil, fmt.Errorf("%w: generations=%d", ErrBuilder, generations)
	}

	p := New()
	_ = p.Add(Individual{ID: ID(0, 1)})
	for g := 1; g <= generations; g++ {
		parent := ID(g-1, 1)
		if err := p.Add(Individual{ID: ID(g, 1), Sire: parent, Dam: parent, Generation: g}); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// RandomMating builds a dioecious population of n individuals per
// generation, half of each sex. Every offspring draws its sire and dam at
// random, with replacement, from the males and females of the previous
// generation.
func RandomMating(n, generations int, rng *rand.Rand) (*Pedigree, error) {
	if n < 2 || generations < 0 || rng == nil {
		return nil, fmt.Errorf("%w: n=%d generations=%d", ErrBuilder, n, generations)
	}

	p := New()
	var males, females []string
	for k := 1; k <= n; k++ {
		ind := Individual{ID: ID(0, k), Sex: sexOf(k)}
		_ = p.Add(ind)
		if ind.Sex == Male {
			males = append(males, ind.ID)
		} else {
			females = append(females, ind.ID)
		}
	}

	for g := 1; g <= generations; g++ {
		var nextMales, nextFemales []string
		for k := 1; k <= n; k++ {
			ind := Individual{
				ID:         ID(g, k),
				Sire:       males[rng.IntN(len(males))],
				Dam:        females[rng.IntN(len(females))],
				Generation: g,
				Sex:        sexOf(k),
			}
			if err := p.Add(ind); err != nil {
				return nil, err
			}
			if ind.Sex == Male {
				nextMales = append(nextMales, ind.ID)
			} else {
				nextFemales = append(nextFemales, ind.ID)
			}
		}
		males, females = nextMales, nextFemales
	}
	return p, nil
}

func sexOf(k int) Sex {
	if k%2 == 1 {
		return Male
	}
	return Female
}
