// Package environment holds the per-cell, per-tick inputs that
// influences write and layers read: light intensity and discovered
// overlaps.
package environment

import "github.com/evosim/cellengine/quantities"

// Overlap is one incursion a cell is involved in this tick, recorded so
// layers (and tests) can inspect what caused a force/damage contribution.
type Overlap struct {
	Incursion quantities.Displacement
	Magnitude quantities.Length
}

// LocalEnvironment is the scratch state an Influence writes into before a
// cell's layers read it in after_influences, and that is cleared at the
// end of every tick.
type LocalEnvironment struct {
	lightIntensity float64
	overlaps       []Overlap
}

// AddLightIntensity accumulates light intensity (multiple influences, or
// multiple light sources, may contribute in the same tick).
func (e *LocalEnvironment) AddLightIntensity(intensity float64) {
	e.lightIntensity += intensity
}

// LightIntensity returns the light intensity accumulated so far this tick.
func (e *LocalEnvironment) LightIntensity() float64 {
	return e.lightIntensity
}

// AddOverlap records an overlap discovered this tick.
func (e *LocalEnvironment) AddOverlap(o Overlap) {
	e.overlaps = append(e.overlaps, o)
}

// Overlaps returns the overlaps recorded so far this tick.
func (e *LocalEnvironment) Overlaps() []Overlap {
	return e.overlaps
}

// Clear resets the environment to its zero state, done once per tick
// after layers have consumed it.
func (e *LocalEnvironment) Clear() {
	e.lightIntensity = 0
	e.overlaps = e.overlaps[:0]
}
