package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/popsim/internal/experiment"
	"github.com/san-kum/popsim/internal/metrics"
	"github.com/san-kum/popsim/internal/optim"
	"github.com/san-kum/popsim/internal/sim"
	"github.com/san-kum/popsim/internal/storage"
)

var ErrEmptyScenario = errors.New("popsim/automation: scenario has no steps")

// Scenario is a scripted sequence of runs, such as a practical class that
// compares drift at several population sizes.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

type ScenarioStep struct {
	Name         string             `yaml:"name"`
	Model        string             `yaml:"model"`
	Generations  int                `yaml:"generations"`
	Replicates   int                `yaml:"replicates"`
	Seed         int64              `yaml:"seed"`
	Params       map[string]float64 `yaml:"params"`
	StopAbsorbed bool               `yaml:"stop_absorbed"`
	Save         bool               `yaml:"save"`
}

// StepResult is the outcome of one scenario step. RunID is set when the
// step was saved.
type StepResult struct {
	Step    ScenarioStep
	Results []*sim.Result
	Metrics map[string]float64
	RunID   string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

// RunScenario executes the steps in order. Steps marked save are written to
// store when it is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store, logger *zap.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = experiment.NewRegistry()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step",
			zap.String("scenario", scenario.Name),
			zap.Int("step", i+1),
			zap.Int("steps", len(scenario.Steps)),
			zap.String("model", step.Model))

		if step.Generations <= 0 {
			return results, fmt.Errorf("step %d: %w", i+1, sim.ErrGenerations)
		}
		replicates := step.Replicates
		if replicates <= 0 {
			replicates = 1
		}

		exp := experiment.New(experiment.Config{
			Model:            step.Model,
			Generations:      step.Generations,
			Seed:             step.Seed,
			Replicates:       replicates,
			Params:           step.Params,
			StopOnAbsorption: step.StopAbsorbed,
		}, registry).WithLogger(logger)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		runs, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		summary, err := metrics.Summarise(runs)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		sr := StepResult{Step: step, Results: runs, Metrics: summary}

		if step.Save && store != nil {
			meta, err := store.Save(step.Model, step.Seed, step.Params, runs)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = meta.ID
			logger.Debug("step saved", zap.String("run", meta.ID))
		}

		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep runs a model across evenly spaced values of one parameter
// and averages Metric over the replicates at each value.
type ParameterSweep struct {
	Model       string
	ParamName   string
	ParamMin    float64
	ParamMax    float64
	NumSteps    int
	Generations int
	Replicates  int
	Seed        int64
	Params      experiment.Params
	Metric      string
}

type SweepResult struct {
	ParamValue float64
	Value      float64
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, logger *zap.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = experiment.NewRegistry()
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep of %s needs at least one step", sweep.ParamName)
	}

	values := optim.Linspace(sweep.ParamMin, sweep.ParamMax, sweep.NumSteps)
	if sweep.ParamName == "N" {
		// population sizes are whole individuals
		for i, v := range values {
			values[i] = math.Round(v)
		}
	}
	grid := optim.NewGridSearch([]string{sweep.ParamName}, [][]float64{values})

	build := func(p experiment.Params) (*experiment.Experiment, error) {
		logger.Debug("sweep point", zap.Float64(sweep.ParamName, p[sweep.ParamName]))
		return experiment.New(experiment.Config{
			Model:       sweep.Model,
			Generations: sweep.Generations,
			Seed:        sweep.Seed,
			Replicates:  sweep.Replicates,
			Params:      p,
		}, registry).WithLogger(logger), nil
	}

	points, err := grid.Evaluate(ctx, sweep.Params, build, sweep.Metric)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(points))
	for i, p := range points {
		results[i] = SweepResult{ParamValue: p.Params[sweep.ParamName], Value: p.Value}
	}
	logger.Info("sweep done",
		zap.String("model", sweep.Model),
		zap.String("param", sweep.ParamName),
		zap.Int("points", len(results)))
	return results, nil
}
