package sim

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Simulator struct {
	model     Model
	metrics   []Metric
	observers []Observer
	logger    *zap.Logger
}

func New(model Model) *Simulator {
	return &Simulator{
		model:     model,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    zap.NewNop(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// WithLogger sets the logger used for per-run diagnostics.
func (s *Simulator) WithLogger(l *zap.Logger) *Simulator {
	if l != nil {
		s.logger = l
	}
	return s
}

func (s *Simulator) Model() Model { return s.model }

func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	result := &Result{
		States:      make([]State, 0, cfg.Generations+1),
		Generations: make([]int, 0, cfg.Generations+1),
		Metrics:     make(map[string]float64),
		AbsorbedAt:  -1,
		Errors:      make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	rng := NewRand(cfg.Seed)
	absorber, canAbsorb := s.model.(Absorber)

	x := x0.Clone()
	result.States = append(result.States, x.Clone())
	result.Generations = append(result.Generations, 0)
	s.observe(x, 0)

	if canAbsorb && absorber.Absorbed(x) {
		result.Absorbed = true
		result.AbsorbedAt = 0
	}

	for gen := 1; gen <= cfg.Generations; gen++ {
		if result.Absorbed && cfg.StopOnAbsorption {
			break
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		next := s.model.Step(x, gen, rng)

		if cfg.ValidateState && !next.IsValid() {
			result.Errors = append(result.Errors, GenError{Generation: gen, Message: "invalid state (NaN/Inf)"})
			s.logger.Warn("invalid state", zap.Int("generation", gen))
			break
		}

		x = next
		result.States = append(result.States, x.Clone())
		result.Generations = append(result.Generations, gen)
		s.observe(x, gen)

		if canAbsorb && !result.Absorbed && absorber.Absorbed(x) {
			result.Absorbed = true
			result.AbsorbedAt = gen
			s.logger.Debug("absorbed", zap.Int("generation", gen), zap.Float64s("state", x))
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) observe(x State, gen int) {
	for _, m := range s.metrics {
		m.Observe(x, gen)
	}
	for _, o := range s.observers {
		o.OnGeneration(x, gen)
	}
}

func (s *Simulator) validate(x0 State, cfg Config) error {
	if cfg.Generations <= 0 {
		return fmt.Errorf("%w, got %d", ErrGenerations, cfg.Generations)
	}
	if dim := s.model.StateDim(); dim > 0 && len(x0) != dim {
		return fmt.Errorf("%w: want %d, got %d", ErrDimensionMismatch, dim, len(x0))
	}
	if !x0.IsValid() {
		return ErrInvalidState
	}
	return nil
}

// RunWithCallback steps the model and hands every state to callback until
// it returns false, the generation budget is spent, or ctx is done.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, callback func(State, int) bool) error {
	if err := s.validate(x0, cfg); err != nil {
		return err
	}

	rng := NewRand(cfg.Seed)
	x := x0.Clone()

	for gen := 0; gen <= cfg.Generations; gen++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if gen > 0 {
			x = s.model.Step(x, gen, rng)
			if cfg.ValidateState && !x.IsValid() {
				return GenError{Generation: gen, Message: "invalid state (NaN/Inf)"}
			}
		}

		if !callback(x, gen) {
			return nil
		}
	}

	return nil
}
