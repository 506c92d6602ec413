package cell

import (
	"math"

	"github.com/evosim/cellengine/environment"
	"github.com/evosim/cellengine/quantities"
)

// Brain discriminates whether a layer still participates in the living
// economy (healing, resize cost, specialty behavior) or has gone
// permanently inert. The transition is one-way: Living -> Dead at
// health == 0, never Dead -> Living.
type Brain int

const (
	Living Brain = iota
	Dead
)

// LayerBody holds a CellLayer's scalar state: everything that is the
// same shape regardless of specialty.
type LayerBody struct {
	Area        quantities.Area
	Density     quantities.Density
	Color       Color
	Health      float64
	OuterRadius quantities.Length
	Mass        quantities.Mass

	HealthParameters LayerHealthParameters
	ResizeParameters LayerResizeParameters

	Brain Brain
}

func newLayerBody(area quantities.Area, density quantities.Density, color Color) LayerBody {
	body := LayerBody{
		Area:    area,
		Density: density,
		Color:   color,
		Health:  1.0,
		Brain:   Living,
	}
	body.Mass = area.Times(density)
	return body
}

// UpdateOuterRadius recomputes OuterRadius and Mass from the layer's
// current area and the inner radius of the layer beneath it (0 for the
// innermost layer): outer_radius = sqrt(inner_radius^2 + area/pi).
func (b *LayerBody) UpdateOuterRadius(innerRadius quantities.Length) {
	b.OuterRadius = quantities.Length{Value: math.Sqrt(innerRadius.Sqr() + b.Area.Value/math.Pi)}
	b.Mass = b.Area.Times(b.Density)
}

// IsAlive reports whether this layer's health is still above zero.
func (b LayerBody) IsAlive() bool {
	return b.Health > 0
}

// CellLayer is one concentric annulus of a Cell: geometry/mass, health,
// resize/health economics, a specialty behavior, and a living/dead brain.
type CellLayer struct {
	body      LayerBody
	specialty Specialty
}

// NewCellLayer creates a living layer with the given area, density and
// color, and no specialty behavior (NullSpecialty). Use WithSpecialty,
// WithHealthParameters and WithResizeParameters to configure it further.
func NewCellLayer(area quantities.Area, density quantities.Density, color Color) CellLayer {
	return CellLayer{body: newLayerBody(area, density, color), specialty: NullSpecialty{}}
}

// WithSpecialty attaches a specialty behavior, replacing NullSpecialty.
func (l CellLayer) WithSpecialty(s Specialty) CellLayer {
	l.specialty = s
	return l
}

// WithHealthParameters overrides the default (all-zero) health
// parameters. Panics if any field violates its non-positive invariant.
func (l CellLayer) WithHealthParameters(p LayerHealthParameters) CellLayer {
	p.validate()
	l.body.HealthParameters = p
	return l
}

// WithResizeParameters overrides the default (all-zero) resize
// parameters. Panics if any field violates its invariant.
func (l CellLayer) WithResizeParameters(p LayerResizeParameters) CellLayer {
	p.validate()
	l.body.ResizeParameters = p
	return l
}

// WithHealth sets the initial health fraction, in [0, 1].
func (l CellLayer) WithHealth(health float64) CellLayer {
	if health < 0 {
		panic("cell: health must be >= 0")
	}
	l.body.Health = health
	if health == 0 {
		l.body.Brain = Dead
	}
	return l
}

// Dead returns a copy of l with health driven to zero (brain transitions
// to Dead).
func (l CellLayer) Dead() CellLayer {
	l.Damage(1.0)
	return l
}

// Area returns the layer's current area.
func (l CellLayer) Area() quantities.Area { return l.body.Area }

// Mass returns the layer's current mass (area * density).
func (l CellLayer) Mass() quantities.Mass { return l.body.Mass }

// OuterRadius returns the layer's current outer radius.
func (l CellLayer) OuterRadius() quantities.Length { return l.body.OuterRadius }

// Health returns the layer's current health fraction.
func (l CellLayer) Health() float64 { return l.body.Health }

// Color returns the layer's tissue color.
func (l CellLayer) Color() Color { return l.body.Color }

// IsAlive reports whether this layer's health is still above zero.
func (l CellLayer) IsAlive() bool { return l.body.Brain == Living }

// Damage reduces health by healthLoss, clamped at zero, transitioning
// the brain to Dead the first time health reaches zero.
func (l *CellLayer) Damage(healthLoss float64) {
	if l.body.Brain == Dead {
		return
	}
	l.body.Health -= healthLoss
	if l.body.Health <= 0 {
		l.body.Health = 0
		l.body.Brain = Dead
	}
}

// UpdateOuterRadius recomputes this layer's outer radius given the
// radius of everything inside it.
func (l *CellLayer) UpdateOuterRadius(innerRadius quantities.Length) {
	l.body.UpdateOuterRadius(innerRadius)
}

// AfterInfluences runs this layer's passive per-tick contribution
// (photosynthesis income, thrust output, entropic/overlap damage) and
// returns the energy and force it contributes to the owning cell. Dead
// layers contribute nothing and pay no further entropic damage.
func (l *CellLayer) AfterInfluences(env *environment.LocalEnvironment) (quantities.BioEnergy, quantities.Force) {
	if l.body.Brain == Dead {
		return quantities.ZeroBioEnergy, quantities.ZeroForce
	}

	if d := l.body.HealthParameters.EntropicDamageHealthDelta; d < 0 {
		l.Damage(-d)
	}
	for _, ov := range env.Overlaps() {
		if d := l.body.HealthParameters.OverlapDamageHealthDelta; d < 0 {
			l.Damage(-d * ov.Magnitude.Value)
		}
	}
	if l.body.Brain == Dead {
		return quantities.ZeroBioEnergy, quantities.ZeroForce
	}

	return l.specialty.AfterInfluences(&l.body, env)
}

// CostControlRequest converts a ControlRequest into a
// CostedControlRequest. Channels 0 and 1 (healing, resize) are handled
// generically here; higher channels are delegated to the specialty. Dead
// layers cost everything at zero (there is nothing left to spend on).
func (l *CellLayer) CostControlRequest(req ControlRequest) CostedControlRequest {
	if l.body.Brain == Dead {
		return CostedControlRequest{Request: req, AllowedValue: 0, EnergyDelta: quantities.ZeroBioEnergyDelta}
	}
	switch req.ChannelIndex {
	case HealingChannelIndex:
		return l.costHealing(req)
	case ResizeChannelIndex:
		return l.costResize(req)
	default:
		if costed, ok := l.specialty.CostControlRequest(&l.body, req); ok {
			return costed
		}
		panic("cell: unrecognized control request channel")
	}
}

func (l *CellLayer) costHealing(req ControlRequest) CostedControlRequest {
	deltaHealth := req.RequestedValue
	if deltaHealth < 0 {
		deltaHealth = 0
	}
	energyDelta := quantities.BioEnergyDelta{Value: l.body.HealthParameters.HealingEnergyDelta.Value * l.body.Area.Value * deltaHealth}
	return CostedControlRequest{Request: req, AllowedValue: deltaHealth, EnergyDelta: energyDelta}
}

func (l *CellLayer) costResize(req ControlRequest) CostedControlRequest {
	deltaArea := l.boundResizeDeltaArea(req.RequestedValue)
	var energyDelta quantities.BioEnergyDelta
	if deltaArea >= 0 {
		energyDelta = quantities.BioEnergyDelta{Value: l.body.ResizeParameters.GrowthEnergyDelta.Value * deltaArea}
	} else {
		energyDelta = quantities.BioEnergyDelta{Value: l.body.ResizeParameters.ShrinkageEnergyDelta.Value * -deltaArea}
	}
	return CostedControlRequest{Request: req, AllowedValue: deltaArea, EnergyDelta: energyDelta}
}

func (l *CellLayer) boundResizeDeltaArea(requested float64) float64 {
	if requested >= 0 {
		maxDelta := l.body.ResizeParameters.MaxGrowthRate * l.body.Area.Value
		if requested > maxDelta {
			return maxDelta
		}
		return requested
	}
	maxDelta := l.body.ResizeParameters.MaxShrinkageRate * l.body.Area.Value
	if -requested > maxDelta {
		return -maxDelta
	}
	return requested
}

// ExecuteControlRequest applies a BudgetedControlRequest's actual,
// budget-scaled effect to the layer, recording any bonding effect into
// bondRequest. Dead layers ignore every request.
func (l *CellLayer) ExecuteControlRequest(req BudgetedControlRequest, bondRequest *BondRequest) {
	if l.body.Brain == Dead {
		return
	}
	switch req.Request.ChannelIndex {
	case HealingChannelIndex:
		l.executeHealing(req)
	case ResizeChannelIndex:
		l.executeResize(req)
	default:
		l.specialty.ExecuteControlRequest(&l.body, req, bondRequest)
	}
}

func (l *CellLayer) executeHealing(req BudgetedControlRequest) {
	requestedDeltaHealth := req.Request.RequestedValue
	if requestedDeltaHealth < 0 {
		requestedDeltaHealth = 0
	}
	deltaHealth := req.BudgetedFraction * requestedDeltaHealth
	maxDeltaHealth := 1.0 - l.body.Health
	if deltaHealth > maxDeltaHealth {
		deltaHealth = maxDeltaHealth
	}
	l.body.Health += deltaHealth
}

func (l *CellLayer) executeResize(req BudgetedControlRequest) {
	bounded := l.boundResizeDeltaArea(req.Request.RequestedValue)
	deltaArea := l.body.Health * req.BudgetedFraction * bounded
	if deltaArea < -l.body.Area.Value {
		deltaArea = -l.body.Area.Value
	}
	l.body.Area = l.body.Area.Plus(quantities.AreaDelta{Value: deltaArea})
}

// Spawn returns a new layer of the given area for a budded child, living
// and at full health, with a spawned copy of this layer's specialty.
func (l CellLayer) Spawn(area quantities.Area) CellLayer {
	body := newLayerBody(area, l.body.Density, l.body.Color)
	body.HealthParameters = l.body.HealthParameters
	body.ResizeParameters = l.body.ResizeParameters
	return CellLayer{body: body, specialty: l.specialty.Spawn()}
}

// HealingRequest builds the ControlRequest a CellControl emits to ask
// layerIndex to change its health by deltaHealth.
func HealingRequest(layerIndex int, deltaHealth float64) ControlRequest {
	return ControlRequest{LayerIndex: layerIndex, ChannelIndex: HealingChannelIndex, RequestedValue: deltaHealth}
}

// ResizeRequest builds the ControlRequest a CellControl emits to ask
// layerIndex to change its area by deltaArea.
func ResizeRequest(layerIndex int, deltaArea quantities.AreaDelta) ControlRequest {
	return ControlRequest{LayerIndex: layerIndex, ChannelIndex: ResizeChannelIndex, RequestedValue: deltaArea.Value}
}
