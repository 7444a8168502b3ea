package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/popsim/internal/analysis"
	"github.com/san-kum/popsim/internal/automation"
	"github.com/san-kum/popsim/internal/storage"
	"github.com/san-kum/popsim/internal/viz"
)

func runScenario(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, err := automation.RunScenario(ctx, scenario, nil, st, logger)
	if err != nil {
		return err
	}

	fmt.Printf("scenario %s: %d steps\n", scenario.Name, len(results))
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nstep\tmodel\treplicates\tmetrics\trun")
	for i, r := range results {
		name := r.Step.Name
		if name == "" {
			name = fmt.Sprint(i + 1)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", name, r.Step.Model, len(r.Results), formatMetrics(r.Metrics), orDash(r.RunID))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	var saved []string
	for _, r := range results {
		if r.RunID != "" {
			saved = append(saved, r.RunID)
		}
	}
	if len(saved) == 0 {
		return nil
	}

	cat, err := storage.OpenCatalog(ctx, catalogPath())
	if err != nil {
		return err
	}
	defer cat.Close()
	for _, id := range saved {
		meta, err := st.Load(id)
		if err != nil {
			return err
		}
		if err := cat.Add(ctx, meta); err != nil {
			return err
		}
	}
	logger.Info("indexed scenario runs", zap.Int("runs", len(saved)))
	return nil
}

func formatMetrics(m map[string]float64) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%.4g", name, m[name])
	}
	return strings.Join(parts, " ")
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{
		Model:       cfg.Model,
		ParamName:   sweepParam,
		ParamMin:    sweepFrom,
		ParamMax:    sweepTo,
		NumSteps:    sweepSteps,
		Generations: cfg.Generations,
		Replicates:  cfg.Replicates,
		Seed:        cfg.Seed,
		Params:      cfg.Params(),
		Metric:      sweepMetric,
	}

	results, err := automation.RunSweep(cmd.Context(), sweep, nil, logger)
	if err != nil {
		return err
	}

	table := analysis.NewTable(fmt.Sprintf("%s: %s against %s", cfg.Model, sweepMetric, sweepParam), sweepParam, sweepMetric)
	values := make([]float64, len(results))
	for i, r := range results {
		if err := table.Append(r.ParamValue, r.Value); err != nil {
			return err
		}
		values[i] = r.Value
	}
	if err := printTable(table); err != nil {
		return err
	}

	if !noPlot && !csvOut && len(values) > 1 {
		fmt.Println(viz.PlotSeries([][]float64{values}, table.Title, 10, 60))
	}
	return writeChart(table, sweepMetric)
}
