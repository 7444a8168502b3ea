package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/models"
)

// command resolves args against a fresh command tree and parses its flags.
func command(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	logger = zap.NewNop()

	cmd, rest, err := newRootCmd().Find(args)
	if err != nil {
		t.Fatalf("find %v: %v", args, err)
	}
	if err := cmd.ParseFlags(rest); err != nil {
		t.Fatalf("parse %v: %v", rest, err)
	}
	return cmd
}

func TestCommandDefaults(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		model       string
		generations int
		replicates  int
		popN        int
		linkageN    int
	}{
		{"drift", []string{"drift"}, "drift", config.DefaultGenerations, config.DefaultReplicates, config.DefaultN, 0},
		{"linkage", []string{"linkage"}, "linkage", config.DefaultGenerations, config.DefaultReplicates, config.DefaultN, 0},
		{"inbreeding", []string{"inbreeding"}, "full_sib", 20, config.DefaultReplicates, config.DefaultN, 0},
		{"basepop", []string{"basepop"}, "full_sib", 8, config.DefaultReplicates, config.DefaultN, 0},
		{"run", []string{"run", "drift"}, "drift", config.DefaultGenerations, config.DefaultReplicates, config.DefaultN, 0},
		{"sweep", []string{"sweep", "drift"}, "drift", config.DefaultGenerations, config.DefaultReplicates, config.DefaultN, 0},
		{"live", []string{"live", "drift"}, "drift", config.DefaultGenerations, config.DefaultReplicates, config.DefaultN, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := resolveConfig(command(t, tt.args...), tt.model)
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Generations != tt.generations {
				t.Errorf("expected %d generations, got %d", tt.generations, cfg.Generations)
			}
			if cfg.Replicates != tt.replicates {
				t.Errorf("expected %d replicates, got %d", tt.replicates, cfg.Replicates)
			}
			if cfg.Population.N != tt.popN {
				t.Errorf("expected population N %d, got %d", tt.popN, cfg.Population.N)
			}
			if cfg.Linkage.N != tt.linkageN {
				t.Errorf("expected linkage N %d, got %d", tt.linkageN, cfg.Linkage.N)
			}
		})
	}
}

func TestBasePopDefaults(t *testing.T) {
	cfg, err := resolveConfig(command(t, "basepop"), "full_sib")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Inbreeding.BaseGen != config.DefaultBaseGen {
		t.Errorf("expected base generation %d, got %d", config.DefaultBaseGen, cfg.Inbreeding.BaseGen)
	}
	if cfg.Inbreeding.Offspring != config.DefaultOffspring {
		t.Errorf("expected %d offspring, got %d", config.DefaultOffspring, cfg.Inbreeding.Offspring)
	}
}

func TestPedigreeDefaults(t *testing.T) {
	cmd := command(t, "pedigree")
	if g := intFlag(cmd, "generations"); g != 4 {
		t.Errorf("expected 4 generations, got %d", g)
	}
	if n := intFlag(cmd, "n"); n != 6 {
		t.Errorf("expected 6 individuals per generation, got %d", n)
	}
	if s := int64Flag(cmd, "seed"); s != 1 {
		t.Errorf("expected seed 1, got %d", s)
	}
}

func TestDefaultsIndependentOfOrder(t *testing.T) {
	// building the tree twice must not leak one command's defaults into another
	_ = command(t, "sweep", "drift", "-g", "99", "--n", "7")

	cfg, err := resolveConfig(command(t, "linkage"), "linkage")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generations != config.DefaultGenerations || cfg.Linkage.N != 0 {
		t.Errorf("linkage picked up foreign settings: generations=%d N=%d", cfg.Generations, cfg.Linkage.N)
	}
}

func TestLinkageInfinitePopulation(t *testing.T) {
	cfg, err := resolveConfig(command(t, "linkage", "-g", "5"), "linkage")
	if err != nil {
		t.Fatal(err)
	}

	results, err := runExperiment(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("infinite population should run once, got %d lines", len(results))
	}

	pA0, pB0 := models.AlleleFreqs(results[0].States[0])
	for g, x := range results[0].States {
		pA, pB := models.AlleleFreqs(x)
		if math.Abs(pA-pA0) > 1e-12 || math.Abs(pB-pB0) > 1e-12 {
			t.Errorf("generation %d: allele frequencies moved to %v, %v", g, pA, pB)
		}
	}
}

func TestFlagsOverridePreset(t *testing.T) {
	cfg, err := resolveConfig(command(t, "linkage", "--preset", "finite"), "linkage")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Linkage.N != 100 || cfg.Replicates != 10 {
		t.Errorf("expected preset N=100 replicates=10, got N=%d replicates=%d", cfg.Linkage.N, cfg.Replicates)
	}

	cfg, err = resolveConfig(command(t, "linkage", "--preset", "finite", "-g", "5", "--n", "0"), "linkage")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generations != 5 {
		t.Errorf("expected changed flag to give 5 generations, got %d", cfg.Generations)
	}
	if cfg.Linkage.N != 0 {
		t.Errorf("expected changed flag to give N=0, got %d", cfg.Linkage.N)
	}
	if cfg.Linkage.R != 0.1 {
		t.Errorf("expected preset recombination 0.1, got %v", cfg.Linkage.R)
	}

	if _, err := resolveConfig(command(t, "drift", "--preset", "missing"), "drift"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "popsim.yaml")
	body := "generations: 12\nreplicates: 3\npopulation:\n  n: 25\n  p0: 0.3\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(command(t, "drift", "--config", path, "--n", "40"), "drift")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generations != 12 || cfg.Replicates != 3 || cfg.Population.P0 != 0.3 {
		t.Errorf("config file values not applied: %+v", cfg)
	}
	if cfg.Population.N != 40 {
		t.Errorf("expected flag to override N, got %d", cfg.Population.N)
	}
}

func TestInvalidFlags(t *testing.T) {
	if _, err := resolveConfig(command(t, "drift", "--p0", "1.5"), "drift"); err == nil {
		t.Error("expected error for p0 outside [0, 1]")
	}
	if _, err := resolveConfig(command(t, "linkage", "--recomb", "0.7"), "linkage"); err == nil {
		t.Error("expected error for recombination above 0.5")
	}
}
