package sim

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Ensemble runs replicate lines of the same model. Replicate i uses seed
// cfg.Seed+i, so the ensemble is reproducible regardless of scheduling.
type Ensemble struct {
	model      Model
	replicates int
	metrics    func() []Metric
	workers    int
	logger     *zap.Logger
}

func NewEnsemble(model Model, replicates int) *Ensemble {
	return &Ensemble{model: model, replicates: replicates, workers: runtime.NumCPU(), logger: zap.NewNop()}
}

// WithMetrics installs a factory producing fresh metrics for every replicate.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.metrics = fn
	return e
}

func (e *Ensemble) WithWorkers(n int) *Ensemble {
	if n > 0 {
		e.workers = n
	}
	return e
}

func (e *Ensemble) WithLogger(l *zap.Logger) *Ensemble {
	if l != nil {
		e.logger = l
	}
	return e
}

func (e *Ensemble) Run(ctx context.Context, x0 State, cfg Config) ([]*Result, error) {
	if e.replicates <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrReplicates, e.replicates)
	}

	results := make([]*Result, e.replicates)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := 0; i < e.replicates; i++ {
		idx := i
		g.Go(func() error {
			cfgCopy := cfg
			cfgCopy.Seed = cfg.Seed + int64(idx)

			s := New(e.model).WithLogger(e.logger.With(zap.Int("replicate", idx)))
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, x0, cfgCopy)
			if err != nil {
				return fmt.Errorf("replicate %d: %w", idx, err)
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
