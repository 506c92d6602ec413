// Package influence implements the ordered set of per-tick environmental
// effects: walls, pairwise collisions, bond and bond-angle forces,
// constant/weight/buoyancy/drag forces, and sunlight. Grounded on
// _examples/original_source/evo_model/src/environment/influences.rs.
package influence

import (
	"math"

	"github.com/evosim/cellengine/body"
	"github.com/evosim/cellengine/bond"
	"github.com/evosim/cellengine/environment"
	"github.com/evosim/cellengine/overlap"
	"github.com/evosim/cellengine/quantities"
)

// Cell is the minimal view an Influence needs of a simulated cell: its
// shape, its mutable body, and its mutable per-tick environment.
type Cell interface {
	overlap.Circle
	Body() *body.NewtonianBody
	Environment() *environment.LocalEnvironment
}

// Influence is applied once per tick, in registration order, to the full
// set of live cells (plus, for bond-related influences, the live bonds
// and angle gussets).
type Influence interface {
	Apply(world World)
}

// World is the minimal view an Influence needs of the simulation: live
// cells and bonds, addressable by index/handle-free position for the
// influences that are purely geometric (walls, pair collisions), plus
// bond/gusset endpoint resolution for the bond-related influences.
type World interface {
	Cells() []Cell
	MinCorner() quantities.Position
	MaxCorner() quantities.Position
	Bonds() []BondView
	AngleGussets() []GussetView
}

// BondView is the minimal bond-related data an Influence needs: the two
// endpoint cells (already resolved from handles) and the bond itself.
type BondView struct {
	Bond   *bond.Bond
	Cell1  Cell
	Cell2  Cell
}

// GussetView is the minimal gusset-related data an Influence needs: the
// gusset plus the resolved three cells (bond1's near end == bond2's near
// end is the middle node).
type GussetView struct {
	Gusset   bond.AngleGusset
	Bond1    *bond.Bond
	Bond2    *bond.Bond
	Middle   Cell
	Bond1Far Cell
	Bond2Far Cell
}

// WallCollisions pushes cells back inside [MinCorner, MaxCorner] with a
// linear spring proportional to the wall incursion.
type WallCollisions struct {
	Spring overlap.LinearSpring
}

// Apply implements Influence.
func (w WallCollisions) Apply(world World) {
	minCorner, maxCorner := world.MinCorner(), world.MaxCorner()
	for _, c := range world.Cells() {
		incursion, ok := overlap.WallOverlap(c, minCorner, maxCorner)
		if !ok {
			continue
		}
		c.Environment().AddOverlap(environment.Overlap{Incursion: incursion, Magnitude: incursion.Length()})
		c.Body().AddForce(w.Spring.Force(incursion.Negate()))
	}
}

// PairCollisions discovers overlapping cell pairs and pushes each pair
// apart with a linear spring.
type PairCollisions struct {
	Spring overlap.LinearSpring
}

// Apply implements Influence.
func (p PairCollisions) Apply(world World) {
	cells := world.Cells()
	indexed := make([]overlap.IndexedCircle, len(cells))
	for i, c := range cells {
		indexed[i] = overlap.IndexedCircle{Index: i, Circle: c}
	}
	pairs := overlap.FindOverlappingPairs(indexed)
	for _, pair := range pairs {
		c1, c2 := cells[pair.Index1], cells[pair.Index2]
		ov := pair.Overlap
		c1.Environment().AddOverlap(environment.Overlap{Incursion: ov.Incursion.Negate(), Magnitude: ov.Magnitude})
		c2.Environment().AddOverlap(environment.Overlap{Incursion: ov.Incursion, Magnitude: ov.Magnitude})
		c1.Body().AddForce(p.Spring.Force(ov.Incursion))
		c2.Body().AddForce(p.Spring.Force(ov.Incursion.Negate()))
	}
}

// BondForces pulls bonded cells toward their rest separation (sum of
// radii) with a linear spring on the bond strain.
type BondForces struct {
	Spring overlap.LinearSpring
}

// Apply implements Influence.
func (bf BondForces) Apply(world World) {
	for _, bv := range world.Bonds() {
		strain := bond.CalcStrain(bv.Cell1.Center(), bv.Cell2.Center(), bv.Cell1.Radius(), bv.Cell2.Radius())
		force := bf.Spring.Force(strain)
		bv.Cell1.Body().AddForce(force.Negate())
		bv.Cell2.Body().AddForce(force)
	}
}

// BondAngleForces applies each AngleGusset's restoring torque as
// tangential forces on the two bonds' far ends and the opposing force on
// the shared middle node.
type BondAngleForces struct{}

// Apply implements Influence.
func (BondAngleForces) Apply(world World) {
	for _, gv := range world.AngleGussets() {
		pair := bond.CalcBondAngleForcePair(gv.Gusset, gv.Middle.Center(), gv.Bond1Far.Center(), gv.Bond2Far.Center())
		gv.Bond1Far.Body().AddForce(pair.ForceOnBond1Far)
		gv.Bond2Far.Body().AddForce(pair.ForceOnBond2Far)
		gv.Middle.Body().AddForce(pair.ForceOnMiddle)
	}
}

// SimpleInfluenceForce computes a force on a single cell, independent of
// any other cell. ConstantForce, WeightForce, BuoyancyForce and DragForce
// all implement it.
type SimpleInfluenceForce interface {
	Force(c Cell) quantities.Force
}

// SimpleForceInfluence applies a SimpleInfluenceForce to every cell.
type SimpleForceInfluence struct {
	ForceLaw SimpleInfluenceForce
}

// Apply implements Influence.
func (s SimpleForceInfluence) Apply(world World) {
	for _, c := range world.Cells() {
		c.Body().AddForce(s.ForceLaw.Force(c))
	}
}

// ConstantForce applies the same force to every cell, regardless of its
// properties.
type ConstantForce struct {
	Value quantities.Force
}

// Force implements SimpleInfluenceForce.
func (c ConstantForce) Force(Cell) quantities.Force { return c.Value }

// WeightForce applies mass * gravity downward (or upward, if gravity is
// positive).
type WeightForce struct {
	Gravity float64
}

// Force implements SimpleInfluenceForce.
func (w WeightForce) Force(c Cell) quantities.Force {
	return quantities.Force{X: 0, Y: w.Gravity * c.Body().Mass.Value}
}

// BuoyancyForce applies an upward force proportional to the fluid
// displaced by the cell's cross-sectional area, opposing WeightForce.
type BuoyancyForce struct {
	Gravity      float64
	FluidDensity float64
}

// Force implements SimpleInfluenceForce.
func (b BuoyancyForce) Force(c Cell) quantities.Force {
	area := math.Pi * c.Radius().Sqr()
	displacedMass := b.FluidDensity * area
	return quantities.Force{X: 0, Y: -(b.Gravity * displacedMass)}
}

// DragForce applies quadratic drag opposing velocity, scaled by the
// cell's radius. Each component's magnitude is clamped to mass*|v|, so
// over one unit tick drag can bring that velocity component to zero but
// not reverse it.
type DragForce struct {
	Viscosity float64
}

func calcDrag(viscosity, radius, mass, velocity float64) float64 {
	drag := viscosity * radius * quantities.Sqr(velocity)
	if limit := mass * math.Abs(velocity); drag > limit {
		drag = limit
	}
	return -sign(velocity) * drag
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// Force implements SimpleInfluenceForce.
func (d DragForce) Force(c Cell) quantities.Force {
	v := c.Body().Velocity
	r := c.Radius().Value
	m := c.Body().Mass.Value
	return quantities.Force{
		X: calcDrag(d.Viscosity, r, m, v.X),
		Y: calcDrag(d.Viscosity, r, m, v.Y),
	}
}

// Sunlight adds light intensity to each cell's environment, linearly
// interpolated between MinIntensity at MinCorner.Y and MaxIntensity at
// MaxCorner.Y (brighter near the top of the world, conventionally larger
// Y). Grounded on the tick_runs_photo_layer expectation in
// evo_domain/src/world.rs (no Sunlight source file was retrieved).
type Sunlight struct {
	MinCorner, MaxCorner     float64
	MinIntensity, MaxIntensity float64
}

// Apply implements Influence.
func (s Sunlight) Apply(world World) {
	span := s.MaxCorner - s.MinCorner
	for _, c := range world.Cells() {
		var fraction float64
		if span != 0 {
			fraction = (c.Center().Y - s.MinCorner) / span
		}
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		intensity := s.MinIntensity + fraction*(s.MaxIntensity-s.MinIntensity)
		c.Environment().AddLightIntensity(intensity)
	}
}

// UniversalOverlap records a fixed overlap on every cell without any
// accompanying force — used in tests to exercise overlap-driven layer
// damage independent of collision geometry.
type UniversalOverlap struct {
	Overlap environment.Overlap
}

// Apply implements Influence.
func (u UniversalOverlap) Apply(world World) {
	for _, c := range world.Cells() {
		c.Environment().AddOverlap(u.Overlap)
	}
}
