package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/popsim/internal/analysis"
	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/experiment"
	"github.com/san-kum/popsim/internal/export"
	"github.com/san-kum/popsim/internal/models"
	"github.com/san-kum/popsim/internal/storage"
	"github.com/san-kum/popsim/internal/theory"
	"github.com/san-kum/popsim/internal/viz"
)

func runModel(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("running %s...\n", cfg.Model)
	start := time.Now()

	results, err := runExperiment(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	meta, err := persist(cmd.Context(), cfg, results)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", meta.ID)
	fmt.Printf("replicates: %d\n", meta.Replicates)
	fmt.Printf("generations: %d\n", meta.Generations)
	fmt.Println("\nmetrics (mean over replicates):")
	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, meta.Metrics[name])
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	cat, err := storage.OpenCatalog(ctx, catalogPath())
	if err != nil {
		return err
	}
	defer cat.Close()

	added, err := cat.Sync(ctx, st)
	if err != nil {
		return err
	}
	if added > 0 {
		logger.Debug("indexed runs", zap.Int("added", added))
	}

	runs, err := cat.List(ctx, modelFilter)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tGENS\tREPS\tSEED\tN")

	for _, run := range runs {
		n := "-"
		if v, ok := run.Params["N"]; ok && v > 0 {
			n = strconv.Itoa(int(v))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Generations,
			run.Replicates,
			run.Seed,
			n,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	results, err := st.LoadResults(runID)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("replicates: %d\n\n", len(results))

	var chart export.Chart
	switch meta.Model {
	case "drift", "wright_fisher":
		paths := analysis.Paths(results)
		if len(paths) > maxPlottedPaths {
			paths = paths[:maxPlottedPaths]
		}
		fmt.Println(viz.PlotFrequencies(paths, "allele frequency", 12, 80))

		summary, err := analysis.Summarise(results)
		if err != nil {
			return err
		}
		n := int(meta.Params["N"])
		table := analysis.DriftTable(summary, meta.Params["p0"], n)
		observed, _ := table.Column("var_p")
		expected, _ := table.Column("exp_var")
		fmt.Println()
		fmt.Println(viz.PlotSeries([][]float64{observed, expected}, "variance of p: observed vs expected", 8, 80))
		chart = export.Chart{Title: table.Title, Series: []export.Series{
			{Name: "var_p", Values: observed},
			{Name: "exp_var", Values: expected, Dashed: true},
		}}

	case "linkage":
		series := make([][]float64, 0, len(results))
		for _, res := range results {
			d := make([]float64, len(res.States))
			for i, x := range res.States {
				d[i] = models.LD(x)
			}
			series = append(series, d)
		}
		if len(series) > maxPlottedPaths {
			series = series[:maxPlottedPaths]
		}
		fmt.Println(viz.PlotSeries(series, "linkage disequilibrium D", 10, 80))
		expected := theory.LDCurve(series[0][0], meta.Params["r"], len(series[0])-1)
		chart = export.Chart{Title: "linkage disequilibrium", Series: []export.Series{
			{Name: "D", Values: series[0]},
			{Name: "exp_D", Values: expected, Dashed: true},
		}}

	default:
		f := results[0].Series(0)
		fmt.Println(viz.PlotSeries([][]float64{f}, "F_t", 10, 80))
		chart = export.Chart{Title: meta.Model, Series: []export.Series{{Name: "F", Values: f}}}
	}
	fmt.Println()

	if svgPath != "" {
		if err := export.WriteSVG(svgPath, chart); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	results, err := st.LoadResults(args[0])
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)

	header := []string{"replicate", "gen"}
	for i := range results[0].States[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for r, res := range results {
		for i, x := range res.States {
			row := []string{strconv.Itoa(r), strconv.Itoa(res.Generations[i])}
			for _, v := range x {
				row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	results, err := st.LoadResults(args[0])
	if err != nil {
		return err
	}

	data := storage.NewExportData(meta, results)
	if outPath != "" {
		if err := storage.ExportJSON(outPath, data); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", outPath)
		return nil
	}
	return storage.WriteJSON(os.Stdout, data)
}

func listPresets(cmd *cobra.Command, args []string) error {
	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Printf("no presets for model: %s\n", args[0])
		return nil
	}

	fmt.Printf("presets for %s:\n", args[0])
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  NAME\tGENS\tREPS\tPARAMS")
	for _, name := range presets {
		p := config.GetPreset(args[0], name)
		fmt.Fprintf(w, "  %s\t%d\t%d\t%s\n", name, p.Generations, p.Replicates, describe(p))
	}
	return w.Flush()
}

func describe(c *config.Config) string {
	switch c.Model {
	case "linkage":
		return fmt.Sprintf("r=%g pA=%g pB=%g D0=%g N=%d", c.Linkage.R, c.Linkage.PA, c.Linkage.PB, c.Linkage.D0, c.Linkage.N)
	case "drift", "wright_fisher", "ideal":
		return fmt.Sprintf("N=%d p0=%g", c.Population.N, c.Population.P0)
	default:
		return fmt.Sprintf("systems=%v offspring=%d base=%d", c.Inbreeding.Systems, c.Inbreeding.Offspring, c.Inbreeding.BaseGen)
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	params := experiment.Params(cfg.Params())
	model, err := registry.GetModel(cfg.Model, params)
	if err != nil {
		return err
	}
	x0, err := registry.InitialState(cfg.Model, model, params)
	if err != nil {
		return err
	}

	reps := cfg.Replicates
	if !registry.IsStochastic(cfg.Model, params) {
		reps = 1
	}

	live := viz.LiveConfig{
		Title:       cfg.Model,
		Model:       model,
		X0:          x0,
		Replicates:  reps,
		Generations: cfg.Generations,
		Seed:        cfg.Seed,
		Interval:    interval,
	}
	switch cfg.Model {
	case "drift", "wright_fisher":
		p := cfg.Population.P0
		live.Expected = func(gen, n int) float64 { return theory.DriftVariance(p, n, gen) }
		live.ExpectedLabel = "exp variance"
	}

	return viz.RunLive(live)
}
