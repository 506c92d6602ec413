package cell

import (
	"fmt"

	"github.com/evosim/cellengine/environment"
	"github.com/evosim/cellengine/quantities"
)

// Channel indices shared by every layer regardless of specialty.
const (
	HealingChannelIndex = 0
	ResizeChannelIndex  = 1
)

// Specialty-specific channel indices. Thruster and Bonding each start
// numbering from 2; a given layer only ever has one specialty, so the
// overlap between ForceXChannelIndex and RetainBondChannelIndex is not
// ambiguous in practice.
const (
	ForceXChannelIndex = 2
	ForceYChannelIndex = 3

	RetainBondChannelIndex     = 2
	BuddingAngleChannelIndex   = 3
	DonationEnergyChannelIndex = 4
)

// MaxBonds is the fixed number of bond slots a Cell owns, matching
// spec.md's Cell data model.
const MaxBonds = 8

// BondRequest is what a BondingSpecialty's execute step records for the
// world to act on: whether to keep/break an existing bond in this slot,
// and, if budding a new child, the angle and donated energy.
type BondRequest struct {
	RetainBond      bool
	BuddingAngle    quantities.Angle
	DonationEnergy  quantities.BioEnergy
	Requested       bool
}

// Specialty is the per-layer behavior hook: photosynthesis, thrust, and
// bonding/budding all implement it. Null is the zero value for layers
// that do neither.
type Specialty interface {
	// CostControlRequest converts a specialty-channel ControlRequest into
	// a CostedControlRequest. ok is false if the channel does not belong
	// to this specialty.
	CostControlRequest(body *LayerBody, request ControlRequest) (CostedControlRequest, bool)
	// ExecuteControlRequest applies a specialty-channel
	// BudgetedControlRequest's effect, recording a BondRequest if this
	// specialty is Bonding. ok is false if the channel does not belong to
	// this specialty.
	ExecuteControlRequest(body *LayerBody, request BudgetedControlRequest, bondRequest *BondRequest) bool
	// AfterInfluences computes this specialty's passive per-tick energy
	// and force contribution (e.g. photosynthesis income, thrust output).
	AfterInfluences(body *LayerBody, env *environment.LocalEnvironment) (quantities.BioEnergy, quantities.Force)
	// Spawn returns a copy of this specialty for a budded child layer.
	Spawn() Specialty
}

// NullSpecialty is a layer with no specialty behavior: structural mass
// only.
type NullSpecialty struct{}

func (NullSpecialty) CostControlRequest(*LayerBody, ControlRequest) (CostedControlRequest, bool) {
	return CostedControlRequest{}, false
}
func (NullSpecialty) ExecuteControlRequest(*LayerBody, BudgetedControlRequest, *BondRequest) bool {
	return false
}
func (NullSpecialty) AfterInfluences(*LayerBody, *environment.LocalEnvironment) (quantities.BioEnergy, quantities.Force) {
	return quantities.ZeroBioEnergy, quantities.ZeroForce
}
func (NullSpecialty) Spawn() Specialty { return NullSpecialty{} }

// ThrusterSpecialty converts ForceX/ForceY channel requests into a
// persistent force contribution, scaled by the layer's health and the
// budgeted fraction actually affordable. Thrust is energy-free in the
// original model (the energy cost lives in the cell's overall metabolic
// rate, out of scope for this layer).
type ThrusterSpecialty struct {
	forceX, forceY float64
}

func (t *ThrusterSpecialty) CostControlRequest(body *LayerBody, req ControlRequest) (CostedControlRequest, bool) {
	switch req.ChannelIndex {
	case ForceXChannelIndex, ForceYChannelIndex:
		return CostedControlRequest{Request: req, AllowedValue: req.RequestedValue, EnergyDelta: quantities.ZeroBioEnergyDelta}, true
	default:
		return CostedControlRequest{}, false
	}
}

func (t *ThrusterSpecialty) ExecuteControlRequest(body *LayerBody, req BudgetedControlRequest, _ *BondRequest) bool {
	scaled := body.Health * req.BudgetedFraction * req.Request.RequestedValue
	switch req.Request.ChannelIndex {
	case ForceXChannelIndex:
		t.forceX = scaled
		return true
	case ForceYChannelIndex:
		t.forceY = scaled
		return true
	default:
		return false
	}
}

func (t *ThrusterSpecialty) AfterInfluences(*LayerBody, *environment.LocalEnvironment) (quantities.BioEnergy, quantities.Force) {
	return quantities.ZeroBioEnergy, quantities.Force{X: t.forceX, Y: t.forceY}
}

func (t *ThrusterSpecialty) Spawn() Specialty {
	return &ThrusterSpecialty{}
}

// PhotoSpecialty converts incident light into energy, proportional to
// the layer's area, health, and a fixed conversion efficiency.
type PhotoSpecialty struct {
	Efficiency float64
}

func (p PhotoSpecialty) CostControlRequest(*LayerBody, ControlRequest) (CostedControlRequest, bool) {
	return CostedControlRequest{}, false
}
func (p PhotoSpecialty) ExecuteControlRequest(*LayerBody, BudgetedControlRequest, *BondRequest) bool {
	return false
}

func (p PhotoSpecialty) AfterInfluences(body *LayerBody, env *environment.LocalEnvironment) (quantities.BioEnergy, quantities.Force) {
	energy := env.LightIntensity() * p.Efficiency * body.Health * body.Area.Value
	return quantities.BioEnergy{Value: energy}, quantities.ZeroForce
}

func (p PhotoSpecialty) Spawn() Specialty {
	return PhotoSpecialty{Efficiency: p.Efficiency}
}

// BondingSpecialty turns RetainBond/BuddingAngle/DonationEnergy channel
// requests into a BondRequest the world's budding step consumes.
type BondingSpecialty struct {
	donationEnergyCost quantities.BioEnergyDelta
}

// NewBondingSpecialty creates a BondingSpecialty that costs
// donationEnergyCost (non-positive) per unit of energy donated to a bud.
func NewBondingSpecialty(donationEnergyCost quantities.BioEnergyDelta) *BondingSpecialty {
	if donationEnergyCost.Value > 0 {
		panic(fmt.Sprintf("cell: donation energy cost must be <= 0, got %v", donationEnergyCost.Value))
	}
	return &BondingSpecialty{donationEnergyCost: donationEnergyCost}
}

func (b *BondingSpecialty) CostControlRequest(_ *LayerBody, req ControlRequest) (CostedControlRequest, bool) {
	switch req.ChannelIndex {
	case RetainBondChannelIndex, BuddingAngleChannelIndex:
		return CostedControlRequest{Request: req, AllowedValue: req.RequestedValue, EnergyDelta: quantities.ZeroBioEnergyDelta}, true
	case DonationEnergyChannelIndex:
		delta := quantities.BioEnergyDelta{Value: b.donationEnergyCost.Value * req.RequestedValue}
		return CostedControlRequest{Request: req, AllowedValue: req.RequestedValue, EnergyDelta: delta}, true
	default:
		return CostedControlRequest{}, false
	}
}

func (b *BondingSpecialty) ExecuteControlRequest(body *LayerBody, req BudgetedControlRequest, bondRequest *BondRequest) bool {
	bondRequest.Requested = true
	switch req.Request.ChannelIndex {
	case RetainBondChannelIndex:
		bondRequest.RetainBond = req.Request.RequestedValue != 0
		return true
	case BuddingAngleChannelIndex:
		bondRequest.BuddingAngle = quantities.Angle{Radians: req.Request.RequestedValue}
		return true
	case DonationEnergyChannelIndex:
		bondRequest.DonationEnergy = quantities.BioEnergy{Value: body.Health * req.BudgetedFraction * req.Request.RequestedValue}
		return true
	default:
		return false
	}
}

func (b *BondingSpecialty) AfterInfluences(*LayerBody, *environment.LocalEnvironment) (quantities.BioEnergy, quantities.Force) {
	return quantities.ZeroBioEnergy, quantities.ZeroForce
}

func (b *BondingSpecialty) Spawn() Specialty {
	return &BondingSpecialty{donationEnergyCost: b.donationEnergyCost}
}
