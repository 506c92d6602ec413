package world

import (
	"math"
	"testing"

	"github.com/evosim/cellengine/cell"
	"github.com/evosim/cellengine/environment"
	"github.com/evosim/cellengine/influence"
	"github.com/evosim/cellengine/quantities"
)

// ballCell returns a single-layer NullSpecialty cell with the given
// radius and mass, mirroring evo_domain's Cell::ball test helper.
func ballCell(radius, mass float64, pos quantities.Position, vel quantities.Velocity) *cell.Cell {
	area := math.Pi * radius * radius
	density := mass / area
	return cell.NewCell(pos, vel, []cell.CellLayer{
		cell.NewCellLayer(quantities.Area{Value: area}, quantities.Density{Value: density}, cell.Green),
	})
}

func TestTickMovesBall(t *testing.T) {
	w := New(quantities.Origin, quantities.Origin)
	w.AddCell(ballCell(1, 1, quantities.Origin, quantities.Velocity{X: 1, Y: 1}))

	w.Tick()

	ball := w.Cell(w.Cells()[0])
	if ball.Center().X <= 0 || ball.Center().Y <= 0 {
		t.Fatalf("expected ball to have moved into the positive quadrant, got %v", ball.Center())
	}
}

func TestTickWithForceAcceleratesBall(t *testing.T) {
	w := New(quantities.Origin, quantities.Origin)
	w.WithInfluence(influence.SimpleForceInfluence{ForceLaw: influence.ConstantForce{Value: quantities.Force{X: 1, Y: 1}}})
	w.AddCell(ballCell(1, 1, quantities.Origin, quantities.ZeroVelocity))

	w.Tick()

	ball := w.Cell(w.Cells()[0])
	if ball.Body.Velocity.X <= 0 || ball.Body.Velocity.Y <= 0 {
		t.Fatalf("expected positive velocity, got %v", ball.Body.Velocity)
	}
}

func TestOverlapsDoNotPersistAcrossTick(t *testing.T) {
	w := New(quantities.Origin, quantities.Origin)
	w.WithInfluence(influence.UniversalOverlap{Overlap: environment.Overlap{
		Incursion: quantities.Displacement{X: 1, Y: 1},
		Magnitude: quantities.Length{Value: 1},
	}})
	w.AddCell(ballCell(1, 1, quantities.Origin, quantities.ZeroVelocity))

	w.Tick()

	ball := w.Cell(w.Cells()[0])
	if len(ball.Environment.Overlaps()) != 0 {
		t.Fatalf("expected overlaps cleared after tick, got %v", ball.Environment.Overlaps())
	}
}

func TestForcesDoNotPersistAcrossTick(t *testing.T) {
	w := New(quantities.Origin, quantities.Origin)
	w.WithInfluence(influence.SimpleForceInfluence{ForceLaw: influence.ConstantForce{Value: quantities.Force{X: 1, Y: 1}}})
	w.AddCell(ballCell(1, 1, quantities.Origin, quantities.ZeroVelocity))

	w.Tick()

	ball := w.Cell(w.Cells()[0])
	if ball.Body.Forces() != quantities.ZeroForce {
		t.Fatalf("expected forces cleared after tick, got %v", ball.Body.Forces())
	}
}

func TestCannotBounceOffDragForce(t *testing.T) {
	w := New(quantities.Origin, quantities.Origin)
	w.AddCell(ballCell(10, 0.01, quantities.Origin, quantities.Velocity{X: 10, Y: 10}))
	w.WithInfluence(influence.SimpleForceInfluence{ForceLaw: influence.DragForce{Viscosity: 0.01}})

	w.Tick()

	ball := w.Cell(w.Cells()[0])
	if ball.Body.Velocity.X < 0 || ball.Body.Velocity.Y < 0 {
		t.Fatalf("drag should never reverse velocity direction, got %v", ball.Body.Velocity)
	}
}

func TestTickRunsPhotoLayer(t *testing.T) {
	w := New(quantities.Origin, quantities.Origin)
	w.WithInfluence(influence.Sunlight{MinCorner: -10, MaxCorner: 10, MinIntensity: 0, MaxIntensity: 10})
	w.AddCell(cell.NewCell(quantities.Origin, quantities.ZeroVelocity, []cell.CellLayer{
		cell.NewCellLayer(quantities.Area{Value: 10}, quantities.Density{Value: 1}, cell.Green).
			WithSpecialty(cell.PhotoSpecialty{Efficiency: 1.0}),
	}))

	w.Tick()

	c := w.Cell(w.Cells()[0])
	if math.Round(c.Energy.Value) != 50 {
		t.Fatalf("got %v", c.Energy.Value)
	}
}

func TestTickRunsCellGrowth(t *testing.T) {
	w := New(quantities.Origin, quantities.Origin)
	w.AddCell(cell.NewCell(quantities.Origin, quantities.ZeroVelocity, []cell.CellLayer{
		cell.NewCellLayer(quantities.Area{Value: 1}, quantities.Density{Value: 1}, cell.Green).
			WithResizeParameters(cell.UnlimitedResizeParameters),
	}).WithControl(cell.ContinuousResizeControl{LayerIndex: 0, AreaDelta: quantities.AreaDelta{Value: 2.0}}))

	w.Tick()

	c := w.Cell(w.Cells()[0])
	if c.Layers()[0].Area().Value != 3.0 {
		t.Fatalf("got %v", c.Layers()[0].Area().Value)
	}
}

func TestTickRunsCellThruster(t *testing.T) {
	w := New(quantities.Position{X: -10, Y: -10}, quantities.Position{X: 10, Y: 10})
	w.AddCell(cell.NewCell(quantities.Origin, quantities.ZeroVelocity, []cell.CellLayer{
		cell.NewCellLayer(quantities.Area{Value: 1}, quantities.Density{Value: 1}, cell.Green).
			WithSpecialty(&cell.ThrusterSpecialty{}),
	}).WithControl(cell.SimpleThrusterControl{LayerIndex: 0, Force: quantities.Force{X: 1, Y: -1}}))

	w.Tick()
	w.Tick()

	c := w.Cell(w.Cells()[0])
	if c.Body.Velocity.X <= 0 || c.Body.Velocity.Y >= 0 {
		t.Fatalf("got %v", c.Body.Velocity)
	}
}

func TestGrowthIsLimitedByEnergy(t *testing.T) {
	resizeParams := cell.UnlimitedResizeParameters
	resizeParams.GrowthEnergyDelta = quantities.BioEnergyDelta{Value: -10}

	w := New(quantities.Position{X: -10, Y: -10}, quantities.Position{X: 10, Y: 10})
	w.WithInfluence(influence.Sunlight{MinCorner: -10, MaxCorner: 10, MinIntensity: 0, MaxIntensity: 10})
	w.AddCell(cell.NewCell(quantities.Origin, quantities.ZeroVelocity, []cell.CellLayer{
		cell.NewCellLayer(quantities.Area{Value: 10}, quantities.Density{Value: 1}, cell.Green).
			WithSpecialty(cell.PhotoSpecialty{Efficiency: 1.0}).
			WithResizeParameters(resizeParams),
	}).WithControl(cell.ContinuousResizeControl{LayerIndex: 0, AreaDelta: quantities.AreaDelta{Value: 100}}))

	w.Tick()

	c := w.Cell(w.Cells()[0])
	if math.Round(c.Layers()[0].Area().Value) != 15 {
		t.Fatalf("got %v", c.Layers()[0].Area().Value)
	}
}

func newBondingCell(energy float64, requests []cell.ControlRequest) *cell.Cell {
	c := cell.NewCell(quantities.Origin, quantities.ZeroVelocity, []cell.CellLayer{
		cell.NewCellLayer(quantities.Area{Value: 1}, quantities.Density{Value: 1}, cell.Green).
			WithSpecialty(cell.NewBondingSpecialty(quantities.BioEnergyDelta{Value: -1})),
	}).WithControl(cell.ContinuousRequestsControl{Requests: requests})
	c.Energy = quantities.BioEnergy{Value: energy}
	return c
}

func retainBondRequest(layerIndex int, retain bool) cell.ControlRequest {
	value := 0.0
	if retain {
		value = 1.0
	}
	return cell.ControlRequest{LayerIndex: layerIndex, ChannelIndex: cell.RetainBondChannelIndex, RequestedValue: value}
}

func donationEnergyRequest(layerIndex int, amount float64) cell.ControlRequest {
	return cell.ControlRequest{LayerIndex: layerIndex, ChannelIndex: cell.DonationEnergyChannelIndex, RequestedValue: amount}
}

func TestNewCellIsAddedToWorldWithBondToParent(t *testing.T) {
	w := New(quantities.Origin, quantities.Origin)
	w.AddCell(newBondingCell(10, []cell.ControlRequest{
		retainBondRequest(0, true),
		donationEnergyRequest(0, 1.0),
	}))

	w.Tick()

	if len(w.Cells()) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(w.Cells()))
	}
	if len(w.Bonds()) != 1 {
		t.Fatalf("expected 1 bond, got %d", len(w.Bonds()))
	}
	parent := w.Cell(w.Cells()[0])
	child := w.Cell(w.Cells()[1])
	if _, used := parent.BondSlot(0); !used {
		t.Fatalf("expected parent's slot 0 to be bonded")
	}
	if _, used := child.BondSlot(0); !used {
		t.Fatalf("expected child's slot 0 to be bonded")
	}
	if parent.Energy != (quantities.BioEnergy{Value: 9.0}) {
		t.Fatalf("expected parent energy 9.0, got %v", parent.Energy)
	}
	if child.Energy != quantities.ZeroBioEnergy {
		t.Fatalf("expected child energy 0, got %v", child.Energy)
	}
	b := w.Bond(w.Bonds()[0])
	if b.EnergyForCell2() != (quantities.BioEnergy{Value: 1.0}) {
		t.Fatalf("expected bond to hold 1.0 energy for the child, got %v", b.EnergyForCell2())
	}
}

func TestCellsCanPassEnergyThroughBond(t *testing.T) {
	w := New(quantities.Origin, quantities.Origin)
	h1 := w.AddCell(newBondingCell(10, []cell.ControlRequest{
		retainBondRequest(0, true),
		donationEnergyRequest(0, 2.0),
	}))
	h2 := w.AddCell(newBondingCell(10, []cell.ControlRequest{
		retainBondRequest(0, true),
		donationEnergyRequest(0, 3.0),
	}))
	w.AddBond(h1, h2, 0, 0)

	w.Tick()

	if len(w.Cells()) != 2 || len(w.Bonds()) != 1 {
		t.Fatalf("expected the bond to survive one tick")
	}
	c1 := w.Cell(h1)
	c2 := w.Cell(h2)
	if c1.Energy != (quantities.BioEnergy{Value: 8.0}) {
		t.Fatalf("expected cell1 energy 8.0, got %v", c1.Energy)
	}
	if c2.Energy != (quantities.BioEnergy{Value: 7.0}) {
		t.Fatalf("expected cell2 energy 7.0, got %v", c2.Energy)
	}
	b := w.Bond(w.Bonds()[0])
	if b.EnergyForCell1() != (quantities.BioEnergy{Value: 3.0}) || b.EnergyForCell2() != (quantities.BioEnergy{Value: 2.0}) {
		t.Fatalf("got cell1=%v cell2=%v", b.EnergyForCell1(), b.EnergyForCell2())
	}

	w.Tick()

	c1 = w.Cell(h1)
	c2 = w.Cell(h2)
	if c1.Energy != (quantities.BioEnergy{Value: 9.0}) {
		t.Fatalf("expected cell1 energy 9.0 after second tick (8 + 3 - 2), got %v", c1.Energy)
	}
	if c2.Energy != (quantities.BioEnergy{Value: 6.0}) {
		t.Fatalf("expected cell2 energy 6.0 after second tick (7 + 2 - 3), got %v", c2.Energy)
	}
}

func TestWorldBreaksBondWhenRequested(t *testing.T) {
	w := New(quantities.Origin, quantities.Origin)
	h1 := w.AddCell(cell.NewCell(quantities.Origin, quantities.ZeroVelocity, []cell.CellLayer{
		cell.NewCellLayer(quantities.Area{Value: 1}, quantities.Density{Value: 1}, cell.Green).
			WithSpecialty(cell.NewBondingSpecialty(quantities.BioEnergyDelta{Value: -1})),
	}).WithControl(cell.ContinuousRequestsControl{Requests: []cell.ControlRequest{retainBondRequest(0, false)}}))
	h2 := w.AddCell(cell.NewCell(quantities.Origin, quantities.ZeroVelocity, []cell.CellLayer{
		cell.NewCellLayer(quantities.Area{Value: 1}, quantities.Density{Value: 1}, cell.Green),
	}))
	w.AddBond(h1, h2, 0, 0)

	w.Tick()

	if len(w.Bonds()) != 0 {
		t.Fatalf("expected the bond to be broken, got %d remaining", len(w.Bonds()))
	}
}

func TestDeadCellsGetRemovedFromWorld(t *testing.T) {
	w := New(quantities.Origin, quantities.Origin)
	w.AddCell(cell.NewCell(quantities.Origin, quantities.ZeroVelocity, []cell.CellLayer{
		cell.NewCellLayer(quantities.Area{Value: 1}, quantities.Density{Value: 1}, cell.Green).Dead(),
	}))

	w.Tick()

	if len(w.Cells()) != 0 {
		t.Fatalf("expected the dead cell to be removed, got %d remaining", len(w.Cells()))
	}
}

func TestWithCellsAndWithBondsAssembleAScenario(t *testing.T) {
	min := quantities.Position{X: -10, Y: -10}
	max := quantities.Position{X: 10, Y: 10}
	w := New(min, max).
		WithPerimeterWalls().
		WithPairCollisions().
		WithSunlight(0, 10).
		WithCells([]*cell.Cell{
			ballCell(1, 1, quantities.Position{X: -2, Y: 0}, quantities.ZeroVelocity),
			ballCell(1, 1, quantities.Position{X: 2, Y: 0}, quantities.ZeroVelocity),
		}).
		WithBonds([][2]int{{0, 1}})

	if len(w.Cells()) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(w.Cells()))
	}
	if len(w.Bonds()) != 1 {
		t.Fatalf("expected 1 bond, got %d", len(w.Bonds()))
	}
	if len(w.influences) != 3 {
		t.Fatalf("expected 3 influences (walls, collisions, sunlight), got %d", len(w.influences))
	}

	w.Tick()
}

func TestWithAngleGussetsResolvesBondsByAddOrder(t *testing.T) {
	w := New(quantities.Origin, quantities.Origin).
		WithCells([]*cell.Cell{
			ballCell(1, 1, quantities.Position{X: -2, Y: 0}, quantities.ZeroVelocity),
			ballCell(1, 1, quantities.Position{X: 0, Y: 0}, quantities.ZeroVelocity),
			ballCell(1, 1, quantities.Position{X: 2, Y: 0}, quantities.ZeroVelocity),
		}).
		WithBonds([][2]int{{0, 1}, {1, 2}}).
		WithAngleGussets([]AngleGussetSpec{{Bond1Index: 0, Bond2Index: 1, DesiredAngleRadians: math.Pi}})

	if w.GussetCount() != 1 {
		t.Fatalf("expected 1 angle gusset, got %d", w.GussetCount())
	}
}
