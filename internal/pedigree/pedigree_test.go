package pedigree_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/popsim/internal/pedigree"
	"github.com/san-kum/popsim/internal/sim"
)

var _ = Describe("Pedigree", func() {
	Describe("Add", func() {
		It("rejects empty and duplicate ids", func() {
			p := pedigree.New()
			Expect(p.Add(pedigree.Individual{})).To(MatchError(pedigree.ErrEmptyID))
			Expect(p.Add(pedigree.Individual{ID: "a"})).To(Succeed())
			Expect(p.Add(pedigree.Individual{ID: "a"})).To(MatchError(pedigree.ErrDuplicateID))
			Expect(p.Len()).To(Equal(1))
		})
	})

	Describe("Validate", func() {
		It("accepts parents listed after their offspring", func() {
			p := pedigree.New()
			Expect(p.Add(pedigree.Individual{ID: "kid", Sire: "dad", Dam: "mum"})).To(Succeed())
			Expect(p.Add(pedigree.Individual{ID: "dad"})).To(Succeed())
			Expect(p.Add(pedigree.Individual{ID: "mum"})).To(Succeed())
			Expect(p.Validate()).To(Succeed())

			ordered, err := p.Ordered()
			Expect(err).NotTo(HaveOccurred())
			Expect(ordered[len(ordered)-1].ID).To(Equal("kid"))
		})

		It("reports unknown parents with the offending id", func() {
			p := pedigree.New()
			Expect(p.Add(pedigree.Individual{ID: "kid", Sire: "ghost"})).To(Succeed())

			err := p.Validate()
			Expect(err).To(MatchError(pedigree.ErrUnknownParent))
			var pe *pedigree.PedigreeError
			Expect(err).To(BeAssignableToTypeOf(pe))
			Expect(err.Error()).To(ContainSubstring("kid"))
		})

		It("detects an individual listed as its own parent", func() {
			p := pedigree.New()
			Expect(p.Add(pedigree.Individual{ID: "x", Sire: "x"})).To(Succeed())
			Expect(p.Validate()).To(MatchError(pedigree.ErrCycle))
		})

		It("detects ancestry loops", func() {
			p := pedigree.New()
			Expect(p.Add(pedigree.Individual{ID: "a", Sire: "b"})).To(Succeed())
			Expect(p.Add(pedigree.Individual{ID: "b", Sire: "a"})).To(Succeed())
			Expect(p.Validate()).To(MatchError(pedigree.ErrCycle))
		})
	})

	Describe("Kinship", func() {
		It("gives the textbook relationships for a small family", func() {
			p := pedigree.New()
			for _, ind := range []pedigree.Individual{
				{ID: "s"}, {ID: "d"},
				{ID: "x", Sire: "s", Dam: "d"},
				{ID: "y", Sire: "s", Dam: "d"},
				{ID: "o", Sire: "s"},
				{ID: "z", Sire: "x", Dam: "y"},
			} {
				Expect(p.Add(ind)).To(Succeed())
			}

			k, err := p.Kinship()
			Expect(err).NotTo(HaveOccurred())

			rel := func(a, b string) float64 {
				r, err := k.Relationship(a, b)
				Expect(err).NotTo(HaveOccurred())
				return r
			}
			Expect(rel("s", "d")).To(BeNumerically("==", 0))
			Expect(rel("s", "x")).To(BeNumerically("~", 0.5, 1e-12))
			Expect(rel("x", "y")).To(BeNumerically("~", 0.5, 1e-12))
			Expect(rel("x", "o")).To(BeNumerically("~", 0.25, 1e-12))

			f, err := k.Inbreeding("z")
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(BeNumerically("~", 0.25, 1e-12))

			c, err := k.Coancestry("x", "y")
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(BeNumerically("~", f, 1e-12))
		})

		It("keeps the matrix symmetric", func() {
			p, err := pedigree.FullSibLine(4, 3)
			Expect(err).NotTo(HaveOccurred())
			k, err := p.Kinship()
			Expect(err).NotTo(HaveOccurred())

			m := k.Matrix()
			n := m.SymmetricDim()
			Expect(n).To(Equal(p.Len()))
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					Expect(m.At(i, j)).To(Equal(m.At(j, i)))
				}
			}
			c := k.CoancestryMatrix()
			Expect(c.At(2, 3)).To(BeNumerically("~", m.At(2, 3)/2, 1e-15))
		})

		It("returns ErrNotFound for unknown ids", func() {
			p, _ := pedigree.SelfingLine(1)
			_, err := p.Inbreeding("nobody")
			Expect(err).To(MatchError(pedigree.ErrNotFound))
		})
	})

	Describe("FullSibLine", func() {
		It("matches the full-sib recurrence one generation behind", func() {
			p, err := pedigree.FullSibLine(8, 2)
			Expect(err).NotTo(HaveOccurred())

			// F_t = 1/4 (1 + 2F_{t-1} + F_{t-2}) from F_0 = F_{-1} = 0
			prev2, prev1 := 0.0, 0.0
			for g := 1; g <= 8; g++ {
				f, err := p.MeanInbreeding(g)
				Expect(err).NotTo(HaveOccurred())
				Expect(f).To(BeNumerically("~", prev1, 1e-12), "generation %d", g)
				prev2, prev1 = prev1, 0.25*(1+2*prev1+prev2)
			}
		})

		It("rejects a line without a breeding pair", func() {
			_, err := pedigree.FullSibLine(3, 1)
			Expect(err).To(MatchError(pedigree.ErrBuilder))
		})
	})

	Describe("SelfingLine", func() {
		It("halves heterozygosity each generation", func() {
			p, err := pedigree.SelfingLine(6)
			Expect(err).NotTo(HaveOccurred())
			for g := 0; g <= 6; g++ {
				f, err := p.Inbreeding(pedigree.ID(g, 1))
				Expect(err).NotTo(HaveOccurred())
				Expect(f).To(BeNumerically("~", 1-math.Pow(0.5, float64(g)), 1e-12))
			}
		})
	})

	Describe("RandomMating", func() {
		It("is reproducible for a seed and draws parents from the previous generation", func() {
			a, err := pedigree.RandomMating(10, 5, sim.NewRand(4))
			Expect(err).NotTo(HaveOccurred())
			b, err := pedigree.RandomMating(10, 5, sim.NewRand(4))
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Individuals()).To(Equal(b.Individuals()))

			for _, ind := range a.Individuals() {
				if ind.IsFounder() {
					Expect(ind.Generation).To(Equal(0))
					continue
				}
				sire, ok := a.Get(ind.Sire)
				Expect(ok).To(BeTrue())
				dam, ok := a.Get(ind.Dam)
				Expect(ok).To(BeTrue())
				Expect(sire.Sex).To(Equal(pedigree.Male))
				Expect(dam.Sex).To(Equal(pedigree.Female))
				Expect(sire.Generation).To(Equal(ind.Generation - 1))
				Expect(dam.Generation).To(Equal(ind.Generation - 1))
			}
		})

		It("accumulates inbreeding", func() {
			p, err := pedigree.RandomMating(12, 12, sim.NewRand(99))
			Expect(err).NotTo(HaveOccurred())

			f0, err := p.MeanInbreeding(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(f0).To(BeZero())

			c, err := p.MeanCoancestry(12)
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(BeNumerically(">", 0.1))
			Expect(c).To(BeNumerically("<", 1))
		})
	})

	Describe("Rebase", func() {
		It("makes the chosen generation unrelated founders", func() {
			p, err := pedigree.FullSibLine(6, 2)
			Expect(err).NotTo(HaveOccurred())

			r, err := p.Rebase(3)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Generations()).To(Equal([]int{3, 4, 5, 6}))
			for _, ind := range r.Generation(3) {
				Expect(ind.IsFounder()).To(BeTrue())
			}

			f4, err := r.MeanInbreeding(4)
			Expect(err).NotTo(HaveOccurred())
			Expect(f4).To(BeZero())

			f5, err := r.MeanInbreeding(5)
			Expect(err).NotTo(HaveOccurred())
			Expect(f5).To(BeNumerically("~", 0.25, 1e-12))

			old, err := p.MeanInbreeding(5)
			Expect(err).NotTo(HaveOccurred())
			Expect(old).To(BeNumerically(">", f5))
		})

		It("fails past the last generation", func() {
			p, _ := pedigree.FullSibLine(2, 2)
			_, err := p.Rebase(5)
			Expect(err).To(MatchError(pedigree.ErrNotFound))
		})
	})

	Describe("AssignGenerations", func() {
		It("numbers generations from the founders", func() {
			p := pedigree.New()
			Expect(p.Add(pedigree.Individual{ID: "c", Sire: "a", Dam: "b"})).To(Succeed())
			Expect(p.Add(pedigree.Individual{ID: "a"})).To(Succeed())
			Expect(p.Add(pedigree.Individual{ID: "b", Sire: "a"})).To(Succeed())
			Expect(p.AssignGenerations()).To(Succeed())

			c, _ := p.Get("c")
			b, _ := p.Get("b")
			Expect(b.Generation).To(Equal(1))
			Expect(c.Generation).To(Equal(2))
		})
	})
})
