package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/popsim/internal/sim"
)

type Config struct {
	Model       string
	Generations int
	Seed        int64
	Replicates  int
	Params      Params

	// StopOnAbsorption ends a replicate once the allele is fixed or lost.
	StopOnAbsorption bool
}

// Experiment binds a registry model to its initial state and runs it, as a
// replicate ensemble for stochastic models and as a single line otherwise.
type Experiment struct {
	cfg      Config
	registry *Registry
	model    sim.Model
	x0       sim.State
	logger   *zap.Logger
}

func New(cfg Config, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{cfg: cfg, registry: registry, logger: zap.NewNop()}
}

func (e *Experiment) WithLogger(l *zap.Logger) *Experiment {
	if l != nil {
		e.logger = l
	}
	return e
}

func (e *Experiment) Setup() error {
	model, err := e.registry.GetModel(e.cfg.Model, e.cfg.Params)
	if err != nil {
		return err
	}
	x0, err := e.registry.InitialState(e.cfg.Model, model, e.cfg.Params)
	if err != nil {
		return fmt.Errorf("initial state for %s: %w", e.cfg.Model, err)
	}
	e.model = model
	e.x0 = x0
	return nil
}

func (e *Experiment) Run(ctx context.Context) ([]*sim.Result, error) {
	if e.model == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	simCfg := sim.Config{
		Generations:      e.cfg.Generations,
		Seed:             e.cfg.Seed,
		ValidateState:    true,
		StopOnAbsorption: e.cfg.StopOnAbsorption,
	}

	replicates := e.cfg.Replicates
	if replicates <= 0 || !e.registry.IsStochastic(e.cfg.Model, e.cfg.Params) {
		replicates = 1
	}

	e.logger.Debug("running experiment",
		zap.String("model", e.cfg.Model),
		zap.Int("generations", e.cfg.Generations),
		zap.Int("replicates", replicates),
		zap.Int64("seed", e.cfg.Seed),
	)

	name := e.cfg.Model
	ens := sim.NewEnsemble(e.model, replicates).
		WithMetrics(func() []sim.Metric { return e.registry.DefaultMetrics(name) }).
		WithLogger(e.logger)
	return ens.Run(ctx, e.x0, simCfg)
}

func (e *Experiment) Model() sim.Model { return e.model }

func (e *Experiment) InitialState() sim.State { return e.x0.Clone() }
