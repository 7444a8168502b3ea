package pedigree

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

type Sex int

const (
	SexUnknown Sex = iota
	Male
	Female
)

func (s Sex) String() string {
	switch s {
	case Male:
		return "M"
	case Female:
		return "F"
	default:
		return "U"
	}
}

// ParseSex accepts M/F, male/female and the 1/2 coding.
func ParseSex(s string) Sex {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "1":
		return Male
	case "f", "female", "2":
		return Female
	default:
		return SexUnknown
	}
}

// Individual is one pedigree record. Empty Sire or Dam means unknown.
// Selfed individuals have Sire == Dam.
type Individual struct {
	ID         string
	Sire       string
	Dam        string
	Generation int
	Sex        Sex
}

func (i Individual) IsFounder() bool {
	return i.Sire == "" && i.Dam == ""
}

type Pedigree struct {
	individuals []Individual
	index       map[string]int
	order       []int
	kinship     *Kinship
}

func New() *Pedigree {
	return &Pedigree{index: make(map[string]int)}
}

// Add appends a record. Parents may be added later; references are checked
// by Validate.
func (p *Pedigree) Add(ind Individual) error {
	if ind.ID == "" {
		return ErrEmptyID
	}
	if _, ok := p.index[ind.ID]; ok {
		return &PedigreeError{ID: ind.ID, Err: ErrDuplicateID}
	}
	p.index[ind.ID] = len(p.individuals)
	p.individuals = append(p.individuals, ind)
	p.order = nil
	p.kinship = nil
	return nil
}

func (p *Pedigree) Len() int { return len(p.individuals) }

// Individuals returns the records in insertion order.
func (p *Pedigree) Individuals() []Individual {
	out := make([]Individual, len(p.individuals))
	copy(out, p.individuals)
	return out
}

func (p *Pedigree) Get(id string) (Individual, bool) {
	i, ok := p.index[id]
	if !ok {
		return Individual{}, false
	}
	return p.individuals[i], true
}

// Generation returns the records of generation g in insertion order.
func (p *Pedigree) Generation(g int) []Individual {
	var out []Individual
	for _, ind := range p.individuals {
		if ind.Generation == g {
			out = append(out, ind)
		}
	}
	return out
}

// Generations returns the distinct generation numbers in ascending order.
func (p *Pedigree) Generations() []int {
	seen := make(map[int]bool)
	var out []int
	for _, ind := range p.individuals {
		if !seen[ind.Generation] {
			seen[ind.Generation] = true
			out = append(out, ind.Generation)
		}
	}
	sort.Ints(out)
	return out
}

func (p *Pedigree) Validate() error {
	_, err := p.sorted()
	return err
}

// Ordered returns the records parents-before-offspring.
func (p *Pedigree) Ordered() ([]Individual, error) {
	order, err := p.sorted()
	if err != nil {
		return nil, err
	}
	out := make([]Individual, len(order))
	for k, i := range order {
		out[k] = p.individuals[i]
	}
	return out, nil
}

// sorted returns insertion indices in topological order. Ties are broken by
// insertion index so the order is stable across runs.
func (p *Pedigree) sorted() ([]int, error) {
	if p.order != nil {
		return p.order, nil
	}

	g := simple.NewDirectedGraph()
	for i := range p.individuals {
		g.AddNode(simple.Node(int64(i)))
	}
	for i, ind := range p.individuals {
		for _, parent := range parents(ind) {
			j, ok := p.index[parent]
			if !ok {
				return nil, &PedigreeError{ID: ind.ID, Err: fmt.Errorf("%w: %s", ErrUnknownParent, parent)}
			}
			if j == i {
				return nil, &PedigreeError{ID: ind.ID, Err: ErrCycle}
			}
			g.SetEdge(g.NewEdge(simple.Node(int64(j)), simple.Node(int64(i))))
		}
	}

	nodes, err := topo.SortStabilized(g, nil)
	if err != nil {
		id := ""
		if u, ok := err.(topo.Unorderable); ok && len(u) > 0 && len(u[0]) > 0 {
			id = p.individuals[firstID(u[0])].ID
		}
		return nil, &PedigreeError{ID: id, Err: ErrCycle}
	}

	order := make([]int, len(nodes))
	for k, n := range nodes {
		order[k] = int(n.ID())
	}
	p.order = order
	return order, nil
}

func firstID(nodes []graph.Node) int {
	min := nodes[0].ID()
	for _, n := range nodes[1:] {
		if n.ID() < min {
			min = n.ID()
		}
	}
	return int(min)
}

// parents returns the distinct known parents of ind.
func parents(ind Individual) []string {
	var out []string
	if ind.Sire != "" {
		out = append(out, ind.Sire)
	}
	if ind.Dam != "" && ind.Dam != ind.Sire {
		out = append(out, ind.Dam)
	}
	return out
}

// AssignGenerations numbers founders 0 and every other individual one more
// than its latest parent. Used for pedigrees read without a generation column.
func (p *Pedigree) AssignGenerations() error {
	order, err := p.sorted()
	if err != nil {
		return err
	}
	for _, i := range order {
		ind := &p.individuals[i]
		gen := 0
		for _, parent := range parents(*ind) {
			if g := p.individuals[p.index[parent]].Generation + 1; g > gen {
				gen = g
			}
		}
		ind.Generation = gen
	}
	return nil
}

// Rebase returns a copy of the pedigree in which generation g is the base
// population: earlier generations are dropped and the members of generation
// g become unrelated, non-inbred founders. Parents that fall outside the
// kept records are treated as unknown.
func (p *Pedigree) Rebase(g int) (*Pedigree, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	kept := make(map[string]bool)
	for _, ind := range p.individuals {
		if ind.Generation >= g {
			kept[ind.ID] = true
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no individuals in generation %d or later", ErrNotFound, g)
	}

	out := New()
	for _, ind := range p.individuals {
		if !kept[ind.ID] {
			continue
		}
		if ind.Generation == g || !kept[ind.Sire] {
			ind.Sire = ""
		}
		if ind.Generation == g || !kept[ind.Dam] {
			ind.Dam = ""
		}
		if err := out.Add(ind); err != nil {
			return nil, err
		}
	}
	return out, nil
}
