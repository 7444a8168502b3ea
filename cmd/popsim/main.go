package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/logging"
)

var (
	dataDir    string
	verbose    bool
	configFile string

	method       string
	saveResult   bool
	svgPath      string
	csvOut       bool
	noPlot       bool
	stopAbsorbed bool

	fTotal  float64
	fBase   float64
	pedFile string
	line    string

	showMatrix  bool
	outPath     string
	modelFilter string
	interval    time.Duration

	sweepParam  string
	sweepFrom   float64
	sweepTo     float64
	sweepSteps  int
	sweepMetric string

	logger = zap.NewNop()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flags whose default differs between
// commands are registered per command and read back with the flag getters.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "popsim",
		Short:         "population genetics teaching simulations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(verbose)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".popsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	driftCmd := &cobra.Command{
		Use:   "drift",
		Short: "random genetic drift in replicate lines",
		Args:  cobra.NoArgs,
		RunE:  runDrift,
	}
	addRunFlags(driftCmd)
	addPopulationFlags(driftCmd)
	driftCmd.Flags().StringVar(&method, "method", "gaussian", "sampling: gaussian|wright_fisher")
	driftCmd.Flags().BoolVar(&stopAbsorbed, "stop-absorbed", false, "stop a line once the allele is fixed or lost")
	driftCmd.Flags().BoolVar(&saveResult, "save", false, "save the run under the data directory")
	addOutputFlags(driftCmd)

	linkageCmd := &cobra.Command{
		Use:   "linkage",
		Short: "decay of linkage disequilibrium",
		Args:  cobra.NoArgs,
		RunE:  runLinkage,
	}
	addRunFlags(linkageCmd)
	linkageCmd.Flags().Int("n", 0, "individuals sampling gametes (0 = infinite population)")
	linkageCmd.Flags().Float64("recomb", config.DefaultR, "recombination fraction")
	linkageCmd.Flags().Float64("pa", config.DefaultPA, "frequency of allele A")
	linkageCmd.Flags().Float64("pb", config.DefaultPB, "frequency of allele B")
	linkageCmd.Flags().Float64("d0", config.DefaultD0, "initial disequilibrium")
	linkageCmd.Flags().BoolVar(&saveResult, "save", false, "save the run under the data directory")
	addOutputFlags(linkageCmd)

	inbreedingCmd := &cobra.Command{
		Use:   "inbreeding [system...]",
		Short: "inbreeding under regular systems of mating",
		Long: "Tabulates F_t for selfing, full_sib, half_sib, double_first_cousin and ideal.\n" +
			"Full-sib and selfing systems are checked against coancestry on a synthetic pedigree.",
		RunE: runInbreeding,
	}
	inbreedingCmd.Flags().IntP("generations", "g", 20, "generations")
	inbreedingCmd.Flags().Int("n", config.DefaultN, "population size (ideal)")
	inbreedingCmd.Flags().Int("offspring", config.DefaultOffspring, "offspring per full-sib pair")
	inbreedingCmd.Flags().String("preset", "", "use preset configuration")
	addOutputFlags(inbreedingCmd)

	basepopCmd := &cobra.Command{
		Use:   "basepop",
		Short: "change of base population for inbreeding coefficients",
		Long: "With --f-total and --f-base prints F relative to the new base.\n" +
			"Otherwise rebases a pedigree (--pedigree, or a synthetic --line) at --base-gen.",
		Args: cobra.NoArgs,
		RunE: runBasePop,
	}
	basepopCmd.Flags().Float64Var(&fTotal, "f-total", 0, "inbreeding relative to the old base")
	basepopCmd.Flags().Float64Var(&fBase, "f-base", 0, "inbreeding of the new base relative to the old")
	basepopCmd.Flags().StringVar(&pedFile, "pedigree", "", "pedigree file (csv or xlsx)")
	basepopCmd.Flags().StringVar(&line, "line", "full_sib", "synthetic line: full_sib|selfing")
	basepopCmd.Flags().IntP("generations", "g", 8, "generations of the synthetic line")
	basepopCmd.Flags().Int("base-gen", config.DefaultBaseGen, "generation taken as the new base")
	basepopCmd.Flags().Int("offspring", config.DefaultOffspring, "offspring per full-sib pair")
	addOutputFlags(basepopCmd)

	pedigreeCmd := &cobra.Command{
		Use:   "pedigree [file]",
		Short: "inbreeding and coancestry of a pedigree",
		Long: "Reads a pedigree (csv or xlsx with columns id,sire,dam[,generation,sex]) or\n" +
			"builds a synthetic one with --line, then prints F per individual.",
		Args: cobra.MaximumNArgs(1),
		RunE: runPedigree,
	}
	pedigreeCmd.Flags().StringVar(&line, "line", "full_sib", "synthetic line: full_sib|selfing|random")
	pedigreeCmd.Flags().IntP("generations", "g", 4, "generations of the synthetic line")
	pedigreeCmd.Flags().Int("n", 6, "individuals per generation (random)")
	pedigreeCmd.Flags().Int("offspring", config.DefaultOffspring, "offspring per full-sib pair")
	pedigreeCmd.Flags().Int64("seed", 1, "random seed (random)")
	pedigreeCmd.Flags().BoolVar(&showMatrix, "matrix", false, "print the coancestry matrix")
	pedigreeCmd.Flags().StringVarP(&outPath, "out", "o", "", "write the pedigree to a csv or xlsx file")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a model and save the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runModel,
	}
	addRunFlags(runCmd)
	addPopulationFlags(runCmd)
	runCmd.Flags().Float64("recomb", config.DefaultR, "recombination fraction (linkage)")
	runCmd.Flags().Float64("f0", 0, "inbreeding of the base population")
	runCmd.Flags().BoolVar(&stopAbsorbed, "stop-absorbed", false, "stop a line once the allele is fixed or lost")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	listCmd.Flags().StringVar(&modelFilter, "model", "", "only runs of this model")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write an svg chart")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run states to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "animate replicate lines in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	addPopulationFlags(liveCmd)
	liveCmd.Flags().DurationVar(&interval, "interval", 150*time.Millisecond, "time per generation")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "average a metric across values of one parameter",
		Long: "Runs the model at --steps evenly spaced values of --param between --from and --to\n" +
			"and tabulates --metric averaged over replicates, e.g.\n" +
			"  popsim sweep drift --param N --from 10 --to 100 --steps 10 --metric heterozygosity",
		Args: cobra.ExactArgs(1),
		RunE: runSweep,
	}
	addRunFlags(sweepCmd)
	addPopulationFlags(sweepCmd)
	sweepCmd.Flags().Float64("recomb", config.DefaultR, "recombination fraction (linkage)")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "N", "parameter to vary: N|p0|r|pA|pB|D0|F0")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 10, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 100, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "heterozygosity", "metric averaged over replicates")
	addOutputFlags(sweepCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(driftCmd, linkageCmd, inbreedingCmd, basepopCmd, pedigreeCmd,
		runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd, liveCmd,
		sweepCmd, scenarioCmd)

	return rootCmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("generations", "g", config.DefaultGenerations, "generations")
	cmd.Flags().Int64("seed", 1, "random seed")
	cmd.Flags().IntP("replicates", "r", config.DefaultReplicates, "replicate lines")
	cmd.Flags().String("preset", "", "use preset configuration")
}

func addPopulationFlags(cmd *cobra.Command) {
	cmd.Flags().Int("n", config.DefaultN, "population size")
	cmd.Flags().Float64("p0", config.DefaultP0, "initial allele frequency")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&svgPath, "svg", "", "write an svg chart")
	cmd.Flags().BoolVar(&csvOut, "csv", false, "print the table as CSV")
	cmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the terminal plot")
}
