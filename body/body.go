// Package body implements the Newtonian integrator cells use to turn
// accumulated forces into motion: semi-implicit ("symplectic") Euler over
// a single fixed unit tick.
package body

import "github.com/evosim/cellengine/quantities"

// NewtonianBody is the mass/position/velocity/force state of a single
// point mass, integrated one unit tick at a time.
type NewtonianBody struct {
	Mass     quantities.Mass
	Position quantities.Position
	Velocity quantities.Velocity
	forces   quantities.Force
}

// NewNewtonianBody returns a body at rest with the given mass, position
// and velocity.
func NewNewtonianBody(mass quantities.Mass, position quantities.Position, velocity quantities.Velocity) NewtonianBody {
	return NewtonianBody{Mass: mass, Position: position, Velocity: velocity}
}

// AddForce accumulates f into the forces that will be applied on the
// next ExertForcesForOneTick.
func (b *NewtonianBody) AddForce(f quantities.Force) {
	b.forces = b.forces.Plus(f)
}

// Forces returns the net force accumulated so far this tick.
func (b *NewtonianBody) Forces() quantities.Force {
	return b.forces
}

// ExertForcesForOneTick updates velocity from the accumulated forces
// (v += F/m over the unit tick) without touching position. Calling this
// before MoveForOneTick is what makes the integration semi-implicit: the
// position update below uses the already-updated velocity.
func (b *NewtonianBody) ExertForcesForOneTick() {
	accel := b.forces.DividedByMass(b.Mass)
	b.Velocity = b.Velocity.PlusAcceleration(accel)
}

// MoveForOneTick advances position by the current velocity over the unit
// tick duration.
func (b *NewtonianBody) MoveForOneTick() {
	b.Position = b.Position.Plus(b.Velocity.AsDisplacement())
}

// ClearForces zeros the accumulated force, done at the end of every tick
// so next tick's influences start from zero.
func (b *NewtonianBody) ClearForces() {
	b.forces = quantities.ZeroForce
}
