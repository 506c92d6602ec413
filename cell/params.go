// Package cell implements CellLayer (the concentric-annulus metabolic
// unit) and Cell (a composition of layers, a body, a genome-or-scripted
// control, and an energy pool), including the cost/budget/execute
// control-request pipeline. Grounded on
// _examples/original_source/evo_domain/src/biology/layers.rs and
// _examples/original_source/evo_model/src/biology/cell.rs.
package cell

import (
	"fmt"
	"math"

	"github.com/evosim/cellengine/quantities"
)

// Color names a layer's rendering tissue type. The simulation logic does
// not branch on it; it exists for external renderers/tests.
type Color int

const (
	Green Color = iota
	White
	Yellow
)

// LayerHealthParameters governs a layer's healing cost and passive
// damage. All three deltas/rates are non-positive (they only ever cost
// energy or reduce health).
type LayerHealthParameters struct {
	HealingEnergyDelta        quantities.BioEnergyDelta
	EntropicDamageHealthDelta float64
	OverlapDamageHealthDelta  float64
}

// DefaultHealthParameters is the zero-cost, zero-damage preset (a layer
// that never heals and never decays on its own).
var DefaultHealthParameters = LayerHealthParameters{}

func (p LayerHealthParameters) validate() {
	if p.HealingEnergyDelta.Value > 0 {
		panic(fmt.Sprintf("cell: healing_energy_delta must be <= 0, got %v", p.HealingEnergyDelta.Value))
	}
	if p.EntropicDamageHealthDelta > 0 {
		panic(fmt.Sprintf("cell: entropic_damage_health_delta must be <= 0, got %v", p.EntropicDamageHealthDelta))
	}
	if p.OverlapDamageHealthDelta > 0 {
		panic(fmt.Sprintf("cell: overlap_damage_health_delta must be <= 0, got %v", p.OverlapDamageHealthDelta))
	}
}

// LayerResizeParameters governs a layer's growth and shrinkage cost and
// rate limits.
type LayerResizeParameters struct {
	GrowthEnergyDelta    quantities.BioEnergyDelta
	MaxGrowthRate        float64
	ShrinkageEnergyDelta quantities.BioEnergyDelta
	MaxShrinkageRate     float64
}

// UnlimitedResizeParameters allows unbounded free growth and shrinkage,
// the natural default for tests that don't care about resize economics.
var UnlimitedResizeParameters = LayerResizeParameters{
	MaxGrowthRate:    math.Inf(1),
	MaxShrinkageRate: 1.0,
}

func (p LayerResizeParameters) validate() {
	if p.GrowthEnergyDelta.Value > 0 {
		panic(fmt.Sprintf("cell: growth_energy_delta must be <= 0, got %v", p.GrowthEnergyDelta.Value))
	}
	if p.MaxGrowthRate < 0 {
		panic(fmt.Sprintf("cell: max_growth_rate must be >= 0, got %v", p.MaxGrowthRate))
	}
	if p.MaxShrinkageRate < 0 {
		panic(fmt.Sprintf("cell: max_shrinkage_rate must be >= 0, got %v", p.MaxShrinkageRate))
	}
}
