// Package config provides configuration loading and access for the
// simulation, mirroring pthm-soup's embed-defaults-then-overlay-file
// pattern.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/evosim/cellengine/cell"
	"github.com/evosim/cellengine/genome"
	"github.com/evosim/cellengine/quantities"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable parameter of a simulation run.
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Layer       LayerConfig       `yaml:"layer"`
	Mutation    MutationConfig    `yaml:"mutation"`
	Sunlight    SunlightConfig    `yaml:"sunlight"`
	Fluid       FluidConfig       `yaml:"fluid"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// WorldConfig holds the simulated area's bounds and collision springs.
type WorldConfig struct {
	MinCornerX      float64 `yaml:"min_corner_x"`
	MinCornerY      float64 `yaml:"min_corner_y"`
	MaxCornerX      float64 `yaml:"max_corner_x"`
	MaxCornerY      float64 `yaml:"max_corner_y"`
	WallSpring      float64 `yaml:"wall_spring"`
	CollisionSpring float64 `yaml:"collision_spring"`
	BondSpring      float64 `yaml:"bond_spring"`
}

// MinCorner returns the configured lower-left world corner.
func (w WorldConfig) MinCorner() quantities.Position {
	return quantities.Position{X: w.MinCornerX, Y: w.MinCornerY}
}

// MaxCorner returns the configured upper-right world corner.
func (w WorldConfig) MaxCorner() quantities.Position {
	return quantities.Position{X: w.MaxCornerX, Y: w.MaxCornerY}
}

// LayerConfig holds the default per-layer health and resize economics.
type LayerConfig struct {
	HealingEnergyDelta        float64 `yaml:"healing_energy_delta"`
	EntropicDamageHealthDelta float64 `yaml:"entropic_damage_health_delta"`
	OverlapDamageHealthDelta  float64 `yaml:"overlap_damage_health_delta"`
	GrowthEnergyDelta         float64 `yaml:"growth_energy_delta"`
	MaxGrowthRate             float64 `yaml:"max_growth_rate"`
	ShrinkageEnergyDelta      float64 `yaml:"shrinkage_energy_delta"`
	MaxShrinkageRate          float64 `yaml:"max_shrinkage_rate"`
	DonationEnergyCost        float64 `yaml:"donation_energy_cost"`
}

// HealthParameters builds a cell.LayerHealthParameters from this config.
func (l LayerConfig) HealthParameters() cell.LayerHealthParameters {
	return cell.LayerHealthParameters{
		HealingEnergyDelta:        quantities.BioEnergyDelta{Value: l.HealingEnergyDelta},
		EntropicDamageHealthDelta: l.EntropicDamageHealthDelta,
		OverlapDamageHealthDelta:  l.OverlapDamageHealthDelta,
	}
}

// ResizeParameters builds a cell.LayerResizeParameters from this config.
func (l LayerConfig) ResizeParameters() cell.LayerResizeParameters {
	return cell.LayerResizeParameters{
		GrowthEnergyDelta:    quantities.BioEnergyDelta{Value: l.GrowthEnergyDelta},
		MaxGrowthRate:        l.MaxGrowthRate,
		ShrinkageEnergyDelta: quantities.BioEnergyDelta{Value: l.ShrinkageEnergyDelta},
		MaxShrinkageRate:     l.MaxShrinkageRate,
	}
}

// MutationConfig holds genome mutation rates.
type MutationConfig struct {
	WeightMutationProbability float32 `yaml:"weight_mutation_probability"`
	WeightMutationStdev       float32 `yaml:"weight_mutation_stdev"`
	AddNodeProbability        float32 `yaml:"add_node_probability"`
}

// Parameters builds a genome.MutationParameters from this config.
func (m MutationConfig) Parameters() genome.MutationParameters {
	return genome.MutationParameters{
		WeightMutationProbability: m.WeightMutationProbability,
		WeightMutationStdev:       m.WeightMutationStdev,
		AddNodeProbability:        m.AddNodeProbability,
	}
}

// SunlightConfig holds the sunlight gradient's intensity range.
type SunlightConfig struct {
	MinIntensity float64 `yaml:"min_intensity"`
	MaxIntensity float64 `yaml:"max_intensity"`
}

// FluidConfig holds the ambient fluid's gravity/density/viscosity,
// driving WeightForce/BuoyancyForce/DragForce.
type FluidConfig struct {
	Gravity   float64 `yaml:"gravity"`
	Density   float64 `yaml:"density"`
	Viscosity float64 `yaml:"viscosity"`
}

// TelemetryConfig holds CSV-export cadence.
type TelemetryConfig struct {
	SnapshotIntervalTicks int    `yaml:"snapshot_interval_ticks"`
	OutputPath            string `yaml:"output_path"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}

// WriteYAML saves the configuration to path as YAML, for recording the
// exact settings a run used alongside its telemetry output.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
