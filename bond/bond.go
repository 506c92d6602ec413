// Package bond implements the undirected Bond edge between two cells and
// the AngleGusset meta-edge constraining the angle between two bonds that
// share a middle node. Grounded on
// _examples/original_source/evo_domain/src/physics/bond.rs.
package bond

import (
	"fmt"
	"math"

	"github.com/evosim/cellengine/graph"
	"github.com/evosim/cellengine/quantities"
)

// Bond is an undirected edge between two cells. Each endpoint owns a
// BioEnergy slot the *opposite* endpoint deposits into; claiming a slot
// zeros it.
type Bond struct {
	node1, node2 graph.NodeHandle
	slot1, slot2 int

	energyForCell1 quantities.BioEnergy
	energyForCell2 quantities.BioEnergy
}

// NewBond creates a bond between two distinct cells.
func NewBond(node1, node2 graph.NodeHandle, slot1, slot2 int) Bond {
	if node1 == node2 {
		panic(fmt.Sprintf("bond: cannot bond a cell (%v) to itself", node1))
	}
	return Bond{node1: node1, node2: node2, slot1: slot1, slot2: slot2}
}

// Endpoints satisfies graph.Edge.
func (b Bond) Endpoints() (graph.NodeHandle, graph.NodeHandle) {
	return b.node1, b.node2
}

// Slots satisfies graph.Edge.
func (b Bond) Slots() (int, int) {
	return b.slot1, b.slot2
}

// Node1 returns the first endpoint.
func (b Bond) Node1() graph.NodeHandle { return b.node1 }

// Node2 returns the second endpoint.
func (b Bond) Node2() graph.NodeHandle { return b.node2 }

// otherNode returns the endpoint that is not cellHandle, panicking if
// cellHandle is not one of this bond's two endpoints.
func (b Bond) otherNode(cellHandle graph.NodeHandle) graph.NodeHandle {
	switch cellHandle {
	case b.node1:
		return b.node2
	case b.node2:
		return b.node1
	default:
		panic(fmt.Sprintf("bond: %v is not an endpoint of this bond", cellHandle))
	}
}

// SetEnergyFromCell deposits energy into the slot the endpoint OTHER than
// cellHandle will claim from. Panics if cellHandle is not an endpoint of
// this bond.
func (b *Bond) SetEnergyFromCell(cellHandle graph.NodeHandle, energy quantities.BioEnergy) {
	switch cellHandle {
	case b.node1:
		b.energyForCell2 = energy
	case b.node2:
		b.energyForCell1 = energy
	default:
		panic(fmt.Sprintf("bond: %v is not an endpoint of this bond", cellHandle))
	}
}

// ClaimEnergyForCell returns and zeros the energy waiting for cellHandle.
// Panics if cellHandle is not an endpoint of this bond.
func (b *Bond) ClaimEnergyForCell(cellHandle graph.NodeHandle) quantities.BioEnergy {
	switch cellHandle {
	case b.node1:
		e := b.energyForCell1
		b.energyForCell1 = quantities.ZeroBioEnergy
		return e
	case b.node2:
		e := b.energyForCell2
		b.energyForCell2 = quantities.ZeroBioEnergy
		return e
	default:
		panic(fmt.Sprintf("bond: %v is not an endpoint of this bond", cellHandle))
	}
}

// EnergyForCell1 returns the energy currently waiting for node1 to claim.
func (b Bond) EnergyForCell1() quantities.BioEnergy { return b.energyForCell1 }

// EnergyForCell2 returns the energy currently waiting for node2 to claim.
func (b Bond) EnergyForCell2() quantities.BioEnergy { return b.energyForCell2 }

// CalcStrain returns the displacement a bond must resolve to bring its
// two endpoints' surfaces back into contact: the distance between
// centers minus the sum of radii, along the center-to-center direction.
// When the centers coincide the strain is zero (no well-defined
// direction to pull along).
func CalcStrain(center1, center2 quantities.Position, radius1, radius2 quantities.Length) quantities.Displacement {
	delta := center2.Minus(center1)
	centerSep := delta.Length()
	restLength := radius1.Value + radius2.Value
	if centerSep.Value == 0 {
		return quantities.ZeroDisplacement
	}
	strainMagnitude := centerSep.Value - restLength
	direction := delta.Scale(1.0 / centerSep.Value)
	return direction.Scale(strainMagnitude)
}

// AngleGusset is a meta-edge constraining the counterclockwise angle
// between two bonds that share a middle node (bond1.Node2() ==
// bond2.Node1()).
type AngleGusset struct {
	bond1, bond2  graph.EdgeHandle
	desiredAngle  quantities.Angle
}

// NewAngleGusset creates a gusset over two distinct bonds that share a
// middle node. The caller supplies the bonds themselves (not just their
// handles) so the shared-endpoint invariant can be checked eagerly.
func NewAngleGusset(bond1Handle, bond2Handle graph.EdgeHandle, bond1, bond2 Bond, desiredAngle quantities.Angle) AngleGusset {
	if bond1Handle == bond2Handle {
		panic(fmt.Sprintf("bond: cannot gusset a bond (%v) with itself", bond1Handle))
	}
	if bond1.node2 != bond2.node1 {
		panic(fmt.Sprintf("bond: gusseted bonds must share a middle node: bond1.node2=%v bond2.node1=%v", bond1.node2, bond2.node1))
	}
	return AngleGusset{bond1: bond1Handle, bond2: bond2Handle, desiredAngle: desiredAngle}
}

// EdgeRefs satisfies graph.MetaEdge.
func (g AngleGusset) EdgeRefs() (graph.EdgeHandle, graph.EdgeHandle) {
	return g.bond1, g.bond2
}

// DesiredAngle returns the desired counterclockwise angle from bond1 to
// bond2.
func (g AngleGusset) DesiredAngle() quantities.Angle { return g.desiredAngle }

// gussetSpringConstant is the torque-per-unit-deflection constant used by
// calc_torque_from_angle_deflection in the original source.
const gussetSpringConstant = 1.0

// CalcBondAngle returns the polar angle, in [0, 2*pi), from the shared
// middle node to the far end of a bond.
func CalcBondAngle(middleNode, farNode quantities.Position) quantities.Angle {
	return farNode.ToPolarAngle(middleNode)
}

// CalcAngleDeflection returns the signed deflection between the desired
// angle and the actual angle, wrapped into (-pi, pi].
func CalcAngleDeflection(desired, actual quantities.Angle) quantities.Deflection {
	d := desired.Radians - actual.Radians
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d <= -math.Pi {
		d += 2 * math.Pi
	}
	return quantities.Deflection{Radians: d}
}

// CalcTorqueFromAngleDeflection converts an angular deflection into a
// restoring torque via a unit spring constant.
func CalcTorqueFromAngleDeflection(deflection quantities.Deflection) quantities.Torque {
	return quantities.Torque{Value: gussetSpringConstant * deflection.Radians}
}

// CalcTangentialForceFromTorque converts a torque acting at radius r into
// the tangential force magnitude producing it (torque = force * radius).
func CalcTangentialForceFromTorque(torque quantities.Torque, radius quantities.Length) float64 {
	if radius.Value == 0 {
		return 0
	}
	return torque.Value / radius.Value
}

// CalcForceFromTangentialForce converts a tangential force magnitude,
// applied perpendicular to the radius vector from middleNode to farNode,
// into a 2-D force vector.
func CalcForceFromTangentialForce(middleNode, farNode quantities.Position, tangential float64) quantities.Force {
	delta := farNode.Minus(middleNode)
	r := delta.Length().Value
	if r == 0 {
		return quantities.ZeroForce
	}
	// Perpendicular (counterclockwise) unit vector to delta/r.
	perp := quantities.Displacement{X: -delta.Y / r, Y: delta.X / r}
	return perp.Scale(tangential).ToForce()
}

// BondAngleForcePair is the pair of opposing tangential forces a gusset
// exerts on the far ends of its two bonds (the middle node receives the
// negated sum of the two, which the caller is responsible for applying to
// the third body).
type BondAngleForcePair struct {
	ForceOnBond1Far quantities.Force
	ForceOnBond2Far quantities.Force
	ForceOnMiddle   quantities.Force
}

// CalcBondAngleForcePair computes the tangential forces an AngleGusset
// exerts given the current positions of its middle node and the two far
// ends, equal and opposite about the middle node.
func CalcBondAngleForcePair(gusset AngleGusset, middlePos, bond1FarPos, bond2FarPos quantities.Position) BondAngleForcePair {
	bond1Angle := CalcBondAngle(middlePos, bond1FarPos)
	bond2Angle := CalcBondAngle(middlePos, bond2FarPos)
	currentAngle := quantities.Angle{Radians: bond2Angle.Radians - bond1Angle.Radians}

	deflection := CalcAngleDeflection(gusset.desiredAngle, currentAngle)
	torque := CalcTorqueFromAngleDeflection(deflection)

	r1 := bond1FarPos.Minus(middlePos).Length()
	r2 := bond2FarPos.Minus(middlePos).Length()

	tangential1 := CalcTangentialForceFromTorque(torque, r1)
	tangential2 := CalcTangentialForceFromTorque(torque, r2)

	forceOnBond1Far := CalcForceFromTangentialForce(middlePos, bond1FarPos, -tangential1)
	forceOnBond2Far := CalcForceFromTangentialForce(middlePos, bond2FarPos, tangential2)
	forceOnMiddle := forceOnBond1Far.Plus(forceOnBond2Far).Negate()

	return BondAngleForcePair{
		ForceOnBond1Far: forceOnBond1Far,
		ForceOnBond2Far: forceOnBond2Far,
		ForceOnMiddle:   forceOnMiddle,
	}
}
