package metrics

import "github.com/san-kum/popsim/internal/sim"

// Heterozygosity averages 2p(1-p) over the observed generations.
type Heterozygosity struct {
	name    string
	samples int
	total   float64
}

func NewHeterozygosity() *Heterozygosity {
	return &Heterozygosity{name: "heterozygosity"}
}

func (h *Heterozygosity) Name() string { return h.name }

func (h *Heterozygosity) Observe(x sim.State, gen int) {
	if len(x) < 1 {
		return
	}
	p := x[0]
	h.total += 2 * p * (1 - p)
	h.samples++
}

func (h *Heterozygosity) Value() float64 {
	if h.samples == 0 {
		return 0
	}
	return h.total / float64(h.samples)
}

func (h *Heterozygosity) Reset() {
	h.total = 0
	h.samples = 0
}
