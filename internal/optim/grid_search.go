package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/popsim/internal/experiment"
	"github.com/san-kum/popsim/internal/metrics"
	"github.com/san-kum/popsim/internal/sim"
)

// Point is one evaluated parameter combination. Value is the metric
// averaged over the replicates of the run.
type Point struct {
	Params experiment.Params
	Value  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Evaluate runs every combination of the grid, in row-major order of the
// parameter list, on top of the base parameters.
func (g *GridSearch) Evaluate(
	ctx context.Context,
	base experiment.Params,
	buildExperiment func(params experiment.Params) (*experiment.Experiment, error),
	metricName string,
) ([]Point, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("grid has %d parameters and %d ranges", len(g.paramNames), len(g.ranges))
	}

	current := make(experiment.Params, len(base)+len(g.paramNames))
	for k, v := range base {
		current[k] = v
	}

	var points []Point
	err := g.searchRecursive(ctx, 0, current, buildExperiment, metricName, &points)
	return points, err
}

// Search returns the combination with the smallest metric.
func (g *GridSearch) Search(
	ctx context.Context,
	base experiment.Params,
	buildExperiment func(params experiment.Params) (*experiment.Experiment, error),
	metricName string,
) (experiment.Params, float64, error) {
	points, err := g.Evaluate(ctx, base, buildExperiment, metricName)
	if err != nil {
		return nil, 0, err
	}

	best := math.Inf(1)
	var bestParams experiment.Params
	for _, p := range points {
		if p.Value < best {
			best = p.Value
			bestParams = p.Params
		}
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current experiment.Params,
	buildExperiment func(experiment.Params) (*experiment.Experiment, error),
	metricName string,
	points *[]Point,
) error {
	if depth == len(g.paramNames) {
		params := make(experiment.Params, len(current))
		for k, v := range current {
			params[k] = v
		}

		exp, err := buildExperiment(params)
		if err != nil {
			return fmt.Errorf("%v: %w", params, err)
		}
		if err := exp.Setup(); err != nil {
			return fmt.Errorf("%v: %w", params, err)
		}

		results, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("%v: %w", params, err)
		}

		val, err := MeanMetric(results, metricName)
		if err != nil {
			return err
		}
		*points = append(*points, Point{Params: params, Value: val})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, current, buildExperiment, metricName, points); err != nil {
			return err
		}
	}
	return nil
}

// MeanMetric averages a named metric over replicate results. Fixation time
// averages over the lines that absorbed.
func MeanMetric(results []*sim.Result, name string) (float64, error) {
	mean, _, err := metrics.Mean(results, name)
	return mean, err
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
