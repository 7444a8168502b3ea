package config

import "sort"

var Presets = map[string]map[string]*Config{
	"drift": {
		"small": {
			Model: "drift", Generations: 30, Seed: 1, Replicates: 20,
			Population: PopulationConfig{N: 10, P0: 0.5},
		},
		"classroom": {
			Model: "drift", Generations: 20, Seed: 1, Replicates: 10,
			Population: PopulationConfig{N: 50, P0: 0.5},
		},
		"rare": {
			Model: "drift", Generations: 50, Seed: 1, Replicates: 50,
			Population: PopulationConfig{N: 100, P0: 0.1},
		},
	},
	"wright_fisher": {
		"small": {
			Model: "wright_fisher", Generations: 30, Seed: 1, Replicates: 20,
			Population: PopulationConfig{N: 10, P0: 0.5},
		},
		"large": {
			Model: "wright_fisher", Generations: 50, Seed: 1, Replicates: 100,
			Population: PopulationConfig{N: 500, P0: 0.5},
		},
	},
	"linkage": {
		"loose": {
			Model: "linkage", Generations: 20, Seed: 1, Replicates: 1,
			Linkage: LinkageConfig{R: 0.5, PA: 0.5, PB: 0.5, D0: 0.25},
		},
		"tight": {
			Model: "linkage", Generations: 50, Seed: 1, Replicates: 1,
			Linkage: LinkageConfig{R: 0.01, PA: 0.5, PB: 0.5, D0: 0.25},
		},
		"finite": {
			Model: "linkage", Generations: 30, Seed: 1, Replicates: 10,
			Linkage: LinkageConfig{R: 0.1, PA: 0.5, PB: 0.5, D0: 0.25, N: 100},
		},
	},
	"full_sib": {
		"classic": {
			Model: "full_sib", Generations: 20, Seed: 1, Replicates: 1,
			Inbreeding: InbreedingConfig{Systems: []string{"full_sib"}, Offspring: 2, BaseGen: 3},
		},
		"compare": {
			Model: "full_sib", Generations: 20, Seed: 1, Replicates: 1,
			Inbreeding: InbreedingConfig{
				Systems:   []string{"selfing", "full_sib", "half_sib", "double_first_cousin"},
				Offspring: 2, BaseGen: 3,
			},
		},
	},
	"selfing": {
		"classic": {
			Model: "selfing", Generations: 10, Seed: 1, Replicates: 1,
			Inbreeding: InbreedingConfig{Systems: []string{"selfing"}, BaseGen: 2},
		},
	},
	"ideal": {
		"n10": {
			Model: "ideal", Generations: 30, Seed: 1, Replicates: 1,
			Population: PopulationConfig{N: 10, P0: 0.5},
		},
		"n50": {
			Model: "ideal", Generations: 100, Seed: 1, Replicates: 1,
			Population: PopulationConfig{N: 50, P0: 0.5},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.withDefaults()
}

// withDefaults returns a copy with unset sections taken from DefaultConfig.
// Zero values that carry meaning (linkage N, f0) are kept.
func (c *Config) withDefaults() *Config {
	out := *c
	def := DefaultConfig()
	if out.Population.N == 0 {
		out.Population.N = def.Population.N
	}
	if out.Population.P0 == 0 {
		out.Population.P0 = def.Population.P0
	}
	if out.Linkage == (LinkageConfig{}) {
		out.Linkage = def.Linkage
	}
	if len(out.Inbreeding.Systems) == 0 {
		out.Inbreeding.Systems = []string{out.Model}
	}
	out.Inbreeding.Systems = append([]string(nil), out.Inbreeding.Systems...)
	if out.Inbreeding.Offspring == 0 {
		out.Inbreeding.Offspring = def.Inbreeding.Offspring
	}
	if out.Inbreeding.BaseGen == 0 {
		out.Inbreeding.BaseGen = def.Inbreeding.BaseGen
	}
	return &out
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
