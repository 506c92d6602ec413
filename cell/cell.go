package cell

import (
	"fmt"
	"math"

	"github.com/evosim/cellengine/body"
	"github.com/evosim/cellengine/environment"
	"github.com/evosim/cellengine/graph"
	"github.com/evosim/cellengine/quantities"
)

// CellStateSnapshot is the read-only view of a cell's state a
// CellControl's GetControlRequests receives: enough to decide what to
// ask for, without exposing mutable internals.
type CellStateSnapshot struct {
	Center   quantities.Position
	Velocity quantities.Velocity
	Energy   quantities.BioEnergy
	Layers   []CellLayerStateSnapshot
}

// CellLayerStateSnapshot is one layer's read-only state within a
// CellStateSnapshot.
type CellLayerStateSnapshot struct {
	Area   quantities.Area
	Health float64
}

// CellControl decides what a cell wants to do this tick. NullControl
// emits nothing; scripted fixtures in testcontrol.go emit fixed
// sequences; NeuralNetBuddingControl (see neuralcontrol.go) evaluates a
// genome.
type CellControl interface {
	GetControlRequests(snapshot CellStateSnapshot) []ControlRequest
}

// NullControl is the zero-value CellControl: it always requests nothing,
// so a Cell constructed without an explicit control still ticks safely.
type NullControl struct{}

// GetControlRequests implements CellControl.
func (NullControl) GetControlRequests(CellStateSnapshot) []ControlRequest { return nil }

// Cell is a NodeHandle owner composed of an ordered list of layers
// (layer 0 innermost), a NewtonianBody, a LocalEnvironment, an optional
// CellControl, a BioEnergy pool, a selected flag, and a fixed-size array
// of optional bond slots.
type Cell struct {
	Body        body.NewtonianBody
	Environment environment.LocalEnvironment
	Control     CellControl
	Energy      quantities.BioEnergy
	Selected    bool

	layers []CellLayer
	radius quantities.Length

	bondSlots [MaxBonds]graph.EdgeHandle
	slotUsed  [MaxBonds]bool
}

// NewCell constructs a cell from its layers (innermost first), initial
// position and velocity. Panics if layers is empty.
func NewCell(position quantities.Position, velocity quantities.Velocity, layers []CellLayer) *Cell {
	if len(layers) == 0 {
		panic("cell: a Cell must have at least one layer")
	}
	c := &Cell{layers: layers, Control: NullControl{}}
	radius := c.updateLayerOuterRadii()
	c.radius = radius
	c.Body = body.NewNewtonianBody(c.calcMass(), position, velocity)
	return c
}

// WithControl replaces this cell's control and returns it for chaining.
func (c *Cell) WithControl(control CellControl) *Cell {
	c.Control = control
	return c
}

// Center implements overlap.Circle / influence.Cell.
func (c *Cell) Center() quantities.Position { return c.Body.Position }

// Radius implements overlap.Circle / influence.Cell.
func (c *Cell) Radius() quantities.Length { return c.radius }

// Mass returns the sum of every layer's mass.
func (c *Cell) Mass() quantities.Mass { return c.Body.Mass }

// Layers returns the cell's layers, innermost first. The returned slice
// must not be mutated by callers outside this package.
func (c *Cell) Layers() []CellLayer { return c.layers }

// IsAlive reports whether any layer is still alive.
func (c *Cell) IsAlive() bool {
	for _, l := range c.layers {
		if l.IsAlive() {
			return true
		}
	}
	return false
}

// SetBondSlot implements graph.NodeWithSlots.
func (c *Cell) SetBondSlot(slot int, h graph.EdgeHandle) {
	c.bondSlots[slot] = h
	c.slotUsed[slot] = true
}

// ClearBondSlot implements graph.NodeWithSlots.
func (c *Cell) ClearBondSlot(slot int, h graph.EdgeHandle) {
	if c.slotUsed[slot] && c.bondSlots[slot] == h {
		c.slotUsed[slot] = false
	}
}

// BondSlot returns the edge handle occupied by slot and whether it is in
// use.
func (c *Cell) BondSlot(slot int) (graph.EdgeHandle, bool) {
	return c.bondSlots[slot], c.slotUsed[slot]
}

// FirstFreeBondSlot returns the index of the first unused bond slot, or
// -1 if all MaxBonds slots are occupied.
func (c *Cell) FirstFreeBondSlot() int {
	for i, used := range c.slotUsed {
		if !used {
			return i
		}
	}
	return -1
}

func (c *Cell) updateLayerOuterRadii() quantities.Length {
	inner := quantities.ZeroLength
	for i := range c.layers {
		c.layers[i].UpdateOuterRadius(inner)
		inner = c.layers[i].OuterRadius()
	}
	return inner
}

func (c *Cell) calcMass() quantities.Mass {
	mass := quantities.ZeroMass
	for _, l := range c.layers {
		mass = mass.Plus(l.Mass())
	}
	return mass
}

// GetStateSnapshot returns the read-only state a CellControl evaluates
// against.
func (c *Cell) GetStateSnapshot() CellStateSnapshot {
	snap := CellStateSnapshot{
		Center:   c.Center(),
		Velocity: c.Body.Velocity,
		Energy:   c.Energy,
		Layers:   make([]CellLayerStateSnapshot, len(c.layers)),
	}
	for i, l := range c.layers {
		snap.Layers[i] = CellLayerStateSnapshot{Area: l.Area(), Health: l.Health()}
	}
	return snap
}

// AfterInfluences runs every layer's passive per-tick contribution,
// adding the resulting energy to the cell's pool and the resulting force
// to its body.
func (c *Cell) AfterInfluences() {
	for i := range c.layers {
		energy, force := c.layers[i].AfterInfluences(&c.Environment)
		c.Energy = c.Energy.Plus(energy)
		c.Body.AddForce(force)
	}
}

// ClaimBondEnergy adds energy (already claimed from a bond slot by the
// caller) to this cell's pool.
func (c *Cell) ClaimBondEnergy(energy quantities.BioEnergy) {
	c.Energy = c.Energy.Plus(energy)
}

// RunControl asks this cell's control for its requests, costs and
// budgets them, executes them, and returns the bond requests raised (one
// per layer, indexed by layer index; an entry with Requested false means
// "no bonding activity this tick").
func (c *Cell) RunControl() []BondRequest {
	snapshot := c.GetStateSnapshot()
	requests := c.Control.GetControlRequests(snapshot)

	costed := make([]CostedControlRequest, len(requests))
	for i, req := range requests {
		if req.LayerIndex < 0 || req.LayerIndex >= len(c.layers) {
			panic(fmt.Sprintf("cell: control request references out-of-range layer %d", req.LayerIndex))
		}
		costed[i] = c.layers[req.LayerIndex].CostControlRequest(req)
	}

	endEnergy, budgeted := BudgetControlRequests(c.Energy, costed)
	c.Energy = endEnergy

	bondRequests := make([]BondRequest, len(c.layers))
	for _, req := range budgeted {
		c.layers[req.Request.LayerIndex].ExecuteControlRequest(req, &bondRequests[req.Request.LayerIndex])
	}

	c.radius = c.updateLayerOuterRadii()
	c.Body.Mass = c.calcMass()

	return bondRequests
}

// Spawn returns a new child cell budded off this one: one new layer per
// parent layer (each sized childArea's share, proportional to the
// parent layer's own area fraction), placed touching the parent at
// buddingAngle, with no bonds of its own yet (the caller installs the
// parent<->child bond).
func (c *Cell) Spawn(childArea quantities.Area, buddingAngle quantities.Angle, velocity quantities.Velocity) *Cell {
	totalParentArea := 0.0
	for _, l := range c.layers {
		totalParentArea += l.Area().Value
	}
	childLayers := make([]CellLayer, len(c.layers))
	for i, l := range c.layers {
		fraction := 0.0
		if totalParentArea > 0 {
			fraction = l.Area().Value / totalParentArea
		}
		childLayers[i] = l.Spawn(quantities.Area{Value: childArea.Value * fraction})
	}

	direction := quantities.Displacement{X: math.Cos(buddingAngle.Radians), Y: math.Sin(buddingAngle.Radians)}
	child := NewCell(c.Center(), velocity, childLayers)
	offset := c.Radius().Value + child.Radius().Value
	child.Body.Position = c.Center().Plus(direction.Scale(offset))

	return child
}
