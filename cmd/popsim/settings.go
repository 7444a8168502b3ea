package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/popsim/internal/analysis"
	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/experiment"
	"github.com/san-kum/popsim/internal/export"
	"github.com/san-kum/popsim/internal/sim"
	"github.com/san-kum/popsim/internal/storage"
)

// resolveConfig layers the settings for model: flag defaults, then the
// preset, then the config file, then flags given on the command line.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	applyFlags(cmd, cfg, false)

	preset := stringFlag(cmd, "preset")
	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	cfg.Model = model
	applyFlags(cmd, cfg, true)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("resolved config",
		zap.String("model", cfg.Model),
		zap.String("preset", preset),
		zap.String("config", configFile),
		zap.Int("generations", cfg.Generations),
		zap.Int("replicates", cfg.Replicates),
	)
	return cfg, nil
}

// applyFlags copies flag values into cfg. With changedOnly it copies only
// the flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config, changedOnly bool) {
	use := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && (!changedOnly || f.Changed)
	}

	if use("generations") {
		cfg.Generations = intFlag(cmd, "generations")
	}
	if use("seed") {
		cfg.Seed = int64Flag(cmd, "seed")
	}
	if use("replicates") {
		cfg.Replicates = intFlag(cmd, "replicates")
	}
	if use("n") {
		if cmd.Name() == "linkage" || cfg.Model == "linkage" {
			cfg.Linkage.N = intFlag(cmd, "n")
		} else {
			cfg.Population.N = intFlag(cmd, "n")
		}
	}
	if use("p0") {
		cfg.Population.P0 = floatFlag(cmd, "p0")
	}
	if use("recomb") {
		cfg.Linkage.R = floatFlag(cmd, "recomb")
	}
	if use("pa") {
		cfg.Linkage.PA = floatFlag(cmd, "pa")
	}
	if use("pb") {
		cfg.Linkage.PB = floatFlag(cmd, "pb")
	}
	if use("d0") {
		cfg.Linkage.D0 = floatFlag(cmd, "d0")
	}
	if use("f0") {
		cfg.Inbreeding.F0 = floatFlag(cmd, "f0")
	}
	if use("offspring") {
		cfg.Inbreeding.Offspring = intFlag(cmd, "offspring")
	}
	if use("base-gen") {
		cfg.Inbreeding.BaseGen = intFlag(cmd, "base-gen")
	}
}

// The getters return the zero value for a flag the command does not define.

func intFlag(cmd *cobra.Command, name string) int {
	v, _ := cmd.Flags().GetInt(name)
	return v
}

func int64Flag(cmd *cobra.Command, name string) int64 {
	v, _ := cmd.Flags().GetInt64(name)
	return v
}

func floatFlag(cmd *cobra.Command, name string) float64 {
	v, _ := cmd.Flags().GetFloat64(name)
	return v
}

func stringFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func runExperiment(ctx context.Context, cfg *config.Config) ([]*sim.Result, error) {
	exp := experiment.New(experiment.Config{
		Model:            cfg.Model,
		Generations:      cfg.Generations,
		Seed:             cfg.Seed,
		Replicates:       cfg.Replicates,
		Params:           cfg.Params(),
		StopOnAbsorption: stopAbsorbed,
	}, nil).WithLogger(logger)

	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}

// persist saves a run directory and indexes it in the catalog.
func persist(ctx context.Context, cfg *config.Config, results []*sim.Result) (*storage.RunMetadata, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}

	meta, err := st.Save(cfg.Model, cfg.Seed, cfg.Params(), results)
	if err != nil {
		return nil, err
	}

	cat, err := storage.OpenCatalog(ctx, catalogPath())
	if err != nil {
		return nil, err
	}
	defer cat.Close()

	if err := cat.Add(ctx, meta); err != nil {
		return nil, err
	}
	logger.Info("saved run", zap.String("id", meta.ID), zap.String("dir", filepath.Join(dataDir, meta.ID)))
	return meta, nil
}

func catalogPath() string { return filepath.Join(dataDir, "catalog.db") }

func printTable(t *analysis.Table) error {
	if csvOut {
		return t.WriteCSV(os.Stdout)
	}
	if err := t.Format(os.Stdout); err != nil {
		return err
	}
	fmt.Println()
	return nil
}

// writeChart writes an svg chart of the named table columns against the
// first column. Columns prefixed with "exp_" are drawn dashed.
func writeChart(t *analysis.Table, columns ...string) error {
	if svgPath == "" {
		return nil
	}
	chart := export.Chart{Title: t.Title}
	for _, name := range columns {
		values, ok := t.Column(name)
		if !ok {
			return fmt.Errorf("no column %q in table", name)
		}
		chart.Series = append(chart.Series, export.Series{
			Name:   name,
			Values: values,
			Dashed: strings.HasPrefix(name, "exp_"),
		})
	}
	if err := export.WriteSVG(svgPath, chart); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgPath)
	return nil
}
