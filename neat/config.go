package neat

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// Config stores the tunable parameters of the evolutionary loop.
type Config struct {
	NEAT       NEATConfig
	Genome     GenomeConfig
	Speciation SpeciationConfig
	Mutation   MutationConfig
	Stagnation StagnationConfig
}

// NEATConfig holds top-level run parameters.
type NEATConfig struct {
	PopulationSize int   `ini:"population_size"`
	RandomSeed     int64 `ini:"random_seed"` // 0 means seed from the clock
}

// GenomeConfig describes the sensor/action contract established at
// population creation: NumInputs sensor inputs plus one implicit bias node,
// and NumOutputs action outputs.
type GenomeConfig struct {
	NumInputs  int     `ini:"num_inputs"`
	NumOutputs int     `ini:"num_outputs"`
	BiasValue  float64 `ini:"bias_value"`
	Activation string  `ini:"activation"`
}

// SpeciationConfig holds the compatibility-distance coefficients and the
// adaptive threshold controller's bounds.
type SpeciationConfig struct {
	ExcessCoefficient      float64 `ini:"excess_coefficient"`
	DisjointCoefficient    float64 `ini:"disjoint_coefficient"`
	WeightCoefficient      float64 `ini:"weight_coefficient"`
	CompatibilityThreshold float64 `ini:"compatibility_threshold"`
	ThresholdMin           float64 `ini:"threshold_min"`
	ThresholdMax           float64 `ini:"threshold_max"`
	ThresholdStep          float64 `ini:"threshold_step"`
	TargetSpeciesCount     int     `ini:"target_species_count"`
}

// MutationConfig holds the weight-mutation parameters and the adaptive
// structural-mutation rates with their clamping ranges.
type MutationConfig struct {
	WeightPerturbChance   float64 `ini:"weight_perturb_chance"`
	WeightStepSize        float64 `ini:"weight_step_size"`
	AddConnectionProb     float64 `ini:"add_connection_prob"`
	AddConnectionProbMin  float64 `ini:"add_connection_prob_min"`
	AddConnectionProbMax  float64 `ini:"add_connection_prob_max"`
	AddNodeProb           float64 `ini:"add_node_prob"`
	AddNodeProbMin        float64 `ini:"add_node_prob_min"`
	AddNodeProbMax        float64 `ini:"add_node_prob_max"`
	RateNudge             float64 `ini:"rate_nudge"`
}

// StagnationConfig holds species culling and rate-adaptation triggers.
type StagnationConfig struct {
	StagnationLimit         int     `ini:"stagnation_limit"`
	ImprovementEpsilon      float64 `ini:"improvement_epsilon"`
	RateStagnationThreshold int     `ini:"rate_stagnation_threshold"`
}

// DefaultConfig returns a configuration with conventional parameter values
// for the given sensor/action sizes.
func DefaultConfig(numInputs, numOutputs int) *Config {
	return &Config{
		NEAT: NEATConfig{
			PopulationSize: 150,
		},
		Genome: GenomeConfig{
			NumInputs:  numInputs,
			NumOutputs: numOutputs,
			BiasValue:  1.0,
			Activation: "tanh",
		},
		Speciation: SpeciationConfig{
			ExcessCoefficient:      1.0,
			DisjointCoefficient:    1.0,
			WeightCoefficient:      0.4,
			CompatibilityThreshold: 3.0,
			ThresholdMin:           0.3,
			ThresholdMax:           10.0,
			ThresholdStep:          0.3,
			TargetSpeciesCount:     10,
		},
		Mutation: MutationConfig{
			WeightPerturbChance:  0.9,
			WeightStepSize:       0.1,
			AddConnectionProb:    0.05,
			AddConnectionProbMin: 0.01,
			AddConnectionProbMax: 0.5,
			AddNodeProb:          0.03,
			AddNodeProbMin:       0.01,
			AddNodeProbMax:       0.3,
			RateNudge:            0.01,
		},
		Stagnation: StagnationConfig{
			StagnationLimit:         15,
			ImprovementEpsilon:      0.001,
			RateStagnationThreshold: 5,
		},
	}
}

// LoadConfig loads configuration parameters from an INI file. Keys absent
// from the file keep their DefaultConfig values.
func LoadConfig(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	config := DefaultConfig(0, 0)
	if err := cfg.Section("NEAT").MapTo(&config.NEAT); err != nil {
		return nil, fmt.Errorf("failed to map [NEAT] section: %w", err)
	}
	if err := cfg.Section("Genome").MapTo(&config.Genome); err != nil {
		return nil, fmt.Errorf("failed to map [Genome] section: %w", err)
	}
	if err := cfg.Section("Speciation").MapTo(&config.Speciation); err != nil {
		return nil, fmt.Errorf("failed to map [Speciation] section: %w", err)
	}
	if err := cfg.Section("Mutation").MapTo(&config.Mutation); err != nil {
		return nil, fmt.Errorf("failed to map [Mutation] section: %w", err)
	}
	if err := cfg.Section("Stagnation").MapTo(&config.Stagnation); err != nil {
		return nil, fmt.Errorf("failed to map [Stagnation] section: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for values the evolutionary loop
// cannot work with.
func (c *Config) Validate() error {
	if c.NEAT.PopulationSize <= 0 {
		return fmt.Errorf("config error: population_size must be positive")
	}
	if c.Genome.NumInputs <= 0 {
		return fmt.Errorf("config error: num_inputs must be positive")
	}
	if c.Genome.NumOutputs <= 0 {
		return fmt.Errorf("config error: num_outputs must be positive")
	}
	if _, err := GetActivation(c.Genome.Activation); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Speciation.ExcessCoefficient < 0 {
		return fmt.Errorf("config error: excess_coefficient cannot be negative")
	}
	if c.Speciation.DisjointCoefficient < 0 {
		return fmt.Errorf("config error: disjoint_coefficient cannot be negative")
	}
	if c.Speciation.WeightCoefficient < 0 {
		return fmt.Errorf("config error: weight_coefficient cannot be negative")
	}
	if c.Speciation.ThresholdMax < c.Speciation.ThresholdMin {
		return fmt.Errorf("config error: threshold_max cannot be less than threshold_min")
	}
	if c.Speciation.ThresholdStep <= 0 {
		return fmt.Errorf("config error: threshold_step must be positive")
	}
	if c.Speciation.TargetSpeciesCount <= 0 {
		return fmt.Errorf("config error: target_species_count must be positive")
	}
	if c.Mutation.WeightPerturbChance < 0 || c.Mutation.WeightPerturbChance > 1 {
		return fmt.Errorf("config error: weight_perturb_chance must be between 0 and 1")
	}
	if c.Mutation.WeightStepSize <= 0 {
		return fmt.Errorf("config error: weight_step_size must be positive")
	}
	if c.Mutation.AddConnectionProb < 0 || c.Mutation.AddConnectionProb > 1 {
		return fmt.Errorf("config error: add_connection_prob must be between 0 and 1")
	}
	if c.Mutation.AddConnectionProbMax < c.Mutation.AddConnectionProbMin {
		return fmt.Errorf("config error: add_connection_prob_max cannot be less than add_connection_prob_min")
	}
	if c.Mutation.AddNodeProb < 0 || c.Mutation.AddNodeProb > 1 {
		return fmt.Errorf("config error: add_node_prob must be between 0 and 1")
	}
	if c.Mutation.AddNodeProbMax < c.Mutation.AddNodeProbMin {
		return fmt.Errorf("config error: add_node_prob_max cannot be less than add_node_prob_min")
	}
	if c.Mutation.RateNudge < 0 {
		return fmt.Errorf("config error: rate_nudge cannot be negative")
	}
	if c.Stagnation.StagnationLimit <= 0 {
		return fmt.Errorf("config error: stagnation_limit must be positive")
	}
	if c.Stagnation.ImprovementEpsilon < 0 {
		return fmt.Errorf("config error: improvement_epsilon cannot be negative")
	}
	if c.Stagnation.RateStagnationThreshold <= 0 {
		return fmt.Errorf("config error: rate_stagnation_threshold must be positive")
	}
	return nil
}
