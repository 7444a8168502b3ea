package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/popsim/internal/metrics"
	"github.com/san-kum/popsim/internal/models"
	"github.com/san-kum/popsim/internal/sim"
)

var ErrUnknownModel = errors.New("popsim/experiment: unknown model")

// Params are the numeric model parameters: N, p0, r, pA, pB, D0 and F0.
type Params map[string]float64

// Get returns the named parameter or def when it is unset.
func (p Params) Get(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

func (p Params) size(def int) int { return int(p.Get("N", float64(def))) }

type builder struct {
	model   func(Params) (sim.Model, error)
	initial func(sim.Model, Params) (sim.State, error)
	metrics func() []sim.Metric

	// stochastic reports whether the parameters give a random model, which
	// then runs as a replicate ensemble.
	stochastic func(Params) bool
}

func always(Params) bool { return true }

type Registry struct {
	models map[string]builder
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]builder)}

	frequency := func(_ sim.Model, p Params) (sim.State, error) {
		p0 := p.Get("p0", 0.5)
		if err := models.CheckFrequency(p0); err != nil {
			return nil, err
		}
		return sim.State{p0}, nil
	}
	frequencyMetrics := func() []sim.Metric {
		return []sim.Metric{
			metrics.NewHeterozygosity(),
			metrics.NewFixationTime(),
			metrics.NewFinalValue("final_p", 0),
		}
	}

	r.models["drift"] = builder{
		model:      func(p Params) (sim.Model, error) { return models.NewDrift(p.size(50)) },
		initial:    frequency,
		metrics:    frequencyMetrics,
		stochastic: always,
	}
	r.models["wright_fisher"] = builder{
		model:      func(p Params) (sim.Model, error) { return models.NewWrightFisher(p.size(50)) },
		initial:    frequency,
		metrics:    frequencyMetrics,
		stochastic: always,
	}
	r.models["linkage"] = builder{
		model: func(p Params) (sim.Model, error) {
			return models.NewLinkage(p.Get("r", 0.1), p.size(0))
		},
		initial: func(_ sim.Model, p Params) (sim.State, error) {
			return models.Haplotypes(p.Get("pA", 0.5), p.Get("pB", 0.5), p.Get("D0", 0.25))
		},
		metrics:    func() []sim.Metric { return []sim.Metric{metrics.NewLD()} },
		stochastic: func(p Params) bool { return p.size(0) > 0 },
	}

	inbreedingInitial := func(m sim.Model, p Params) (sim.State, error) {
		f0 := p.Get("F0", 0)
		if f0 < 0 || f0 >= 1 {
			return nil, fmt.Errorf("%w, got F0=%v", models.ErrFrequency, f0)
		}
		return m.(*models.Inbreeding).InitialState(f0), nil
	}
	inbreedingMetrics := func() []sim.Metric {
		return []sim.Metric{
			metrics.NewMeanF(),
			metrics.NewFinalRate(),
			metrics.NewFinalValue("final_f", 0),
		}
	}
	for _, system := range models.Systems() {
		r.models[string(system)] = builder{
			model:   func(Params) (sim.Model, error) { return models.NewInbreeding(system) },
			initial: inbreedingInitial,
			metrics: inbreedingMetrics,
		}
	}
	r.models[string(models.Ideal)] = builder{
		model:   func(p Params) (sim.Model, error) { return models.NewIdeal(p.size(50)) },
		initial: inbreedingInitial,
		metrics: inbreedingMetrics,
	}

	return r
}

func (r *Registry) lookup(name string) (builder, error) {
	b, ok := r.models[name]
	if !ok {
		return builder{}, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return b, nil
}

func (r *Registry) GetModel(name string, params Params) (sim.Model, error) {
	b, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return b.model(params)
}

// InitialState builds generation 0 for a model constructed by GetModel.
func (r *Registry) InitialState(name string, model sim.Model, params Params) (sim.State, error) {
	b, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return b.initial(model, params)
}

func (r *Registry) IsStochastic(name string, params Params) bool {
	b, ok := r.models[name]
	return ok && b.stochastic != nil && b.stochastic(params)
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(model string) []sim.Metric {
	b, ok := r.models[model]
	if !ok || b.metrics == nil {
		return nil
	}
	return b.metrics()
}
