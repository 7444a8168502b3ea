package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/popsim/internal/analysis"
	"github.com/san-kum/popsim/internal/models"
	"github.com/san-kum/popsim/internal/pedigree"
	"github.com/san-kum/popsim/internal/sim"
	"github.com/san-kum/popsim/internal/theory"
	"github.com/san-kum/popsim/internal/viz"
)

const maxPlottedPaths = 8

func runDrift(cmd *cobra.Command, args []string) error {
	model := "drift"
	switch method {
	case "gaussian", "normal":
	case "wright_fisher", "binomial":
		model = "wright_fisher"
	default:
		return fmt.Errorf("unknown method: %s (gaussian|wright_fisher)", method)
	}

	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}

	results, err := runExperiment(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	summary, err := analysis.Summarise(results)
	if err != nil {
		return err
	}
	table := analysis.DriftTable(summary, cfg.Population.P0, cfg.Population.N)
	if err := printTable(table); err != nil {
		return err
	}

	if !noPlot && !csvOut {
		paths := analysis.Paths(results)
		if len(paths) > maxPlottedPaths {
			paths = paths[:maxPlottedPaths]
		}
		fmt.Println(viz.PlotFrequencies(paths, fmt.Sprintf("allele frequency, %d of %d lines", len(paths), len(results)), 12, 80))
		fmt.Println()

		observed, _ := table.Column("var_p")
		expected, _ := table.Column("exp_var")
		fmt.Println(viz.PlotSeries([][]float64{observed, expected}, "variance of p: observed (green) vs p0q0[1-(1-1/2N)^t]", 8, 80))
		fmt.Println()
	}

	if err := writeChart(table, "var_p", "exp_var", "het", "exp_het"); err != nil {
		return err
	}

	if saveResult {
		meta, err := persist(cmd.Context(), cfg, results)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", meta.ID)
	}
	return nil
}

func runLinkage(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "linkage")
	if err != nil {
		return err
	}

	results, err := runExperiment(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	table, err := analysis.LinkageTable(results[0], cfg.Linkage.R)
	if err != nil {
		return err
	}
	if err := printTable(table); err != nil {
		return err
	}

	if !csvOut {
		fmt.Printf("half-life of D: %.2f generations\n", theory.LDHalfLife(cfg.Linkage.R))
		if len(results) > 1 {
			finals := make([]float64, len(results))
			for i, res := range results {
				finals[i] = res.Metrics["final_d"]
			}
			fmt.Printf("mean final D over %d lines: %.6f\n", len(results), mean(finals))
		}
		fmt.Println()
	}

	if !noPlot && !csvOut {
		observed, _ := table.Column("D")
		expected, _ := table.Column("exp_D")
		fmt.Println(viz.PlotSeries([][]float64{observed, expected}, "D observed (green) vs D0(1-r)^t", 10, 80))
		fmt.Println()
	}

	if err := writeChart(table, "D", "exp_D"); err != nil {
		return err
	}

	if saveResult {
		meta, err := persist(cmd.Context(), cfg, results)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", meta.ID)
	}
	return nil
}

func mean(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total / float64(len(xs))
}

func inbreedingSystem(name string, n int) (*models.Inbreeding, error) {
	if models.System(name) == models.Ideal {
		return models.NewIdeal(n)
	}
	return models.NewInbreeding(models.System(name))
}

// pedigreeOffsets maps a system to its synthetic line and the offset between
// recurrence generation t and pedigree generation.
var pedigreeOffsets = map[models.System]int{
	models.FullSib: 1,
	models.Selfing: 0,
}

func syntheticLine(system models.System, generations, offspring int) (*pedigree.Pedigree, error) {
	switch system {
	case models.FullSib:
		return pedigree.FullSibLine(generations, offspring)
	case models.Selfing:
		return pedigree.SelfingLine(generations)
	}
	return nil, fmt.Errorf("no synthetic pedigree for %s", system)
}

func runInbreeding(cmd *cobra.Command, args []string) error {
	model := "full_sib"
	if len(args) == 1 {
		model = args[0]
	}
	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = cfg.Inbreeding.Systems
	}

	systems := make([]*models.Inbreeding, 0, len(names))
	for _, name := range names {
		m, err := inbreedingSystem(name, cfg.Population.N)
		if err != nil {
			return fmt.Errorf("%w (available: %v, %s)", err, models.Systems(), models.Ideal)
		}
		systems = append(systems, m)
	}

	table, err := analysis.InbreedingTable(cfg.Generations, systems...)
	if err != nil {
		return err
	}

	for _, m := range systems {
		offset, ok := pedigreeOffsets[m.System()]
		if !ok {
			continue
		}
		ped, err := syntheticLine(m.System(), cfg.Generations+offset, cfg.Inbreeding.Offspring)
		if err != nil {
			return err
		}
		if err := analysis.AddPedigreeColumn(table, "ped_"+string(m.System()), ped, offset); err != nil {
			return err
		}
		logger.Debug("pedigree check", zap.String("system", string(m.System())), zap.Int("individuals", ped.Len()))
	}

	if err := printTable(table); err != nil {
		return err
	}

	if !csvOut {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SYSTEM\tLIMITING ΔF\tF AT END")
		last := table.Rows[len(table.Rows)-1]
		for i, m := range systems {
			fmt.Fprintf(w, "%s\t%.4f\t%.4f\n", m.System(), m.AsymptoticRate(), last[i+1])
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Println()
	}

	if !noPlot && !csvOut {
		series := make([][]float64, len(systems))
		for i := range systems {
			series[i], _ = table.Column(table.Columns[i+1])
		}
		fmt.Println(viz.PlotSeries(series, "F_t: "+strings.Join(names, ", "), 10, 80))
		fmt.Println()
	}

	return writeChart(table, table.Columns[1:]...)
}

func runBasePop(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("f-total") || cmd.Flags().Changed("f-base") {
		rel, err := theory.Rebase(fTotal, fBase)
		if err != nil {
			return err
		}
		fmt.Printf("F relative to old base:  %.6f\n", fTotal)
		fmt.Printf("F of new base:           %.6f\n", fBase)
		fmt.Printf("F relative to new base:  %.6f\n", rel)
		fmt.Printf("check 1-F_total = (1-F_rel)(1-F_base): %.6f = %.6f\n", 1-fTotal, (1-rel)*(1-fBase))
		return nil
	}

	cfg, err := resolveConfig(cmd, line)
	if err != nil {
		return err
	}

	var ped *pedigree.Pedigree
	if pedFile != "" {
		ped, err = pedigree.ReadFile(pedFile)
	} else {
		ped, err = syntheticLine(models.System(line), cfg.Generations, cfg.Inbreeding.Offspring)
	}
	if err != nil {
		return err
	}

	table, err := analysis.BaseTable(ped, cfg.Inbreeding.BaseGen)
	if err != nil {
		return err
	}
	if err := printTable(table); err != nil {
		return err
	}

	if !noPlot && !csvOut {
		var series [][]float64
		for _, name := range []string{"F_old", "F_new"} {
			col, _ := table.Column(name)
			series = append(series, col)
		}
		fmt.Println(viz.PlotSeries(series, "F from old base (green) and new base", 8, 60))
		fmt.Println()
	}

	return writeChart(table, "F_old", "F_new", "F_formula")
}

func runPedigree(cmd *cobra.Command, args []string) error {
	var (
		ped *pedigree.Pedigree
		err error
	)
	switch {
	case len(args) == 1:
		ped, err = pedigree.ReadFile(args[0])
	case line == "random":
		ped, err = pedigree.RandomMating(intFlag(cmd, "n"), intFlag(cmd, "generations"), sim.NewRand(int64Flag(cmd, "seed")))
	default:
		ped, err = syntheticLine(models.System(line), intFlag(cmd, "generations"), intFlag(cmd, "offspring"))
	}
	if err != nil {
		return err
	}

	kin, err := ped.Kinship()
	if err != nil {
		return err
	}
	ordered, err := ped.Ordered()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSIRE\tDAM\tGEN\tSEX\tF")
	for _, ind := range ordered {
		f, err := kin.Inbreeding(ind.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%.6f\n",
			ind.ID, orDash(ind.Sire), orDash(ind.Dam), ind.Generation, ind.Sex, f)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GEN\tN\tMEAN F\tMEAN COANCESTRY")
	for _, g := range ped.Generations() {
		f, err := ped.MeanInbreeding(g)
		if err != nil {
			return err
		}
		coancestry := "-"
		if c, err := ped.MeanCoancestry(g); err == nil {
			coancestry = fmt.Sprintf("%.6f", c)
		}
		fmt.Fprintf(w, "%d\t%d\t%.6f\t%s\n", g, len(ped.Generation(g)), f, coancestry)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if showMatrix {
		fmt.Println()
		fmt.Println("coancestry matrix:")
		fmt.Printf("order: %s\n", strings.Join(kin.IDs(), " "))
		fmt.Printf("%.4v\n", mat.Formatted(kin.CoancestryMatrix(), mat.Squeeze()))
	}

	if outPath != "" {
		if err := writePedigree(outPath, ped); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", outPath)
	}
	return nil
}

func writePedigree(path string, ped *pedigree.Pedigree) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return pedigree.WriteXLSX(path, ped)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return pedigree.WriteCSV(f, ped)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
