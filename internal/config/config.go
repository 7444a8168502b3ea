package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultGenerations = 30
	DefaultReplicates  = 20
	DefaultN           = 50
	DefaultP0          = 0.5
	DefaultR           = 0.1
	DefaultPA          = 0.5
	DefaultPB          = 0.5
	DefaultD0          = 0.25
	DefaultOffspring   = 2
	DefaultBaseGen     = 3
)

type Config struct {
	Model       string           `yaml:"model"`
	Generations int              `yaml:"generations"`
	Seed        int64            `yaml:"seed"`
	Replicates  int              `yaml:"replicates"`
	Population  PopulationConfig `yaml:"population"`
	Linkage     LinkageConfig    `yaml:"linkage"`
	Inbreeding  InbreedingConfig `yaml:"inbreeding"`
}

type PopulationConfig struct {
	N  int     `yaml:"n"`
	P0 float64 `yaml:"p0"`
}

type LinkageConfig struct {
	R  float64 `yaml:"r"`
	PA float64 `yaml:"pa"`
	PB float64 `yaml:"pb"`
	D0 float64 `yaml:"d0"`

	// N is the number of individuals sampling gametes; 0 is an infinite population.
	N int `yaml:"n"`
}

type InbreedingConfig struct {
	Systems   []string `yaml:"systems"`
	F0        float64  `yaml:"f0"`
	Offspring int      `yaml:"offspring"`
	BaseGen   int      `yaml:"base_gen"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:       "drift",
		Generations: DefaultGenerations,
		Seed:        1,
		Replicates:  DefaultReplicates,
		Population: PopulationConfig{
			N:  DefaultN,
			P0: DefaultP0,
		},
		Linkage: LinkageConfig{
			R:  DefaultR,
			PA: DefaultPA,
			PB: DefaultPB,
			D0: DefaultD0,
		},
		Inbreeding: InbreedingConfig{
			Systems:   []string{"full_sib"},
			Offspring: DefaultOffspring,
			BaseGen:   DefaultBaseGen,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Generations <= 0:
		return fmt.Errorf("generations must be positive, got %d", c.Generations)
	case c.Replicates <= 0:
		return fmt.Errorf("replicates must be positive, got %d", c.Replicates)
	case c.Population.N < 1:
		return fmt.Errorf("population size must be at least 1, got %d", c.Population.N)
	case c.Population.P0 < 0 || c.Population.P0 > 1:
		return fmt.Errorf("p0 must lie in [0, 1], got %g", c.Population.P0)
	case c.Linkage.R < 0 || c.Linkage.R > 0.5:
		return fmt.Errorf("recombination fraction must lie in [0, 0.5], got %g", c.Linkage.R)
	case c.Inbreeding.F0 < 0 || c.Inbreeding.F0 >= 1:
		return fmt.Errorf("f0 must lie in [0, 1), got %g", c.Inbreeding.F0)
	}
	return nil
}

// Params flattens the model parameters into the map the experiment
// registry takes.
func (c *Config) Params() map[string]float64 {
	n := c.Population.N
	if c.Model == "linkage" {
		n = c.Linkage.N
	}
	return map[string]float64{
		"N":  float64(n),
		"p0": c.Population.P0,
		"r":  c.Linkage.R,
		"pA": c.Linkage.PA,
		"pB": c.Linkage.PB,
		"D0": c.Linkage.D0,
		"F0": c.Inbreeding.F0,
	}
}
