package cell

import (
	"math"
	"testing"

	"github.com/evosim/cellengine/environment"
	"github.com/evosim/cellengine/quantities"
)

func TestCellMustHaveLayers(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewCell(quantities.Position{X: 1, Y: 1}, quantities.Velocity{X: 1, Y: 1}, nil)
}

func TestCellHasRadiusOfOuterLayer(t *testing.T) {
	c := NewCell(quantities.Position{X: 1, Y: 1}, quantities.ZeroVelocity, []CellLayer{
		NewCellLayer(quantities.Area{Value: math.Pi}, quantities.Density{Value: 1}, Green),
		NewCellLayer(quantities.Area{Value: 3 * math.Pi}, quantities.Density{Value: 1}, Green),
	})
	if round(c.Radius().Value) != 2 {
		t.Fatalf("got %v", c.Radius().Value)
	}
}

func TestCellHasMassOfAllLayers(t *testing.T) {
	c := NewCell(quantities.Position{X: 1, Y: 1}, quantities.ZeroVelocity, []CellLayer{
		NewCellLayer(quantities.Area{Value: math.Pi}, quantities.Density{Value: 1}, Green),
		NewCellLayer(quantities.Area{Value: 2 * math.Pi}, quantities.Density{Value: 2}, Green),
	})
	want := 5 * math.Pi
	if math.Abs(c.Mass().Value-want) > 1e-9 {
		t.Fatalf("got %v want %v", c.Mass().Value, want)
	}
}

func TestContinuousResizeControlGrowsOnFirstTick(t *testing.T) {
	c := NewCell(quantities.Position{X: 1, Y: 1}, quantities.ZeroVelocity, []CellLayer{
		NewCellLayer(quantities.Area{Value: 10}, quantities.Density{Value: 1}, Green).
			WithResizeParameters(UnlimitedResizeParameters),
	}).WithControl(ContinuousResizeControl{LayerIndex: 0, AreaDelta: quantities.AreaDelta{Value: 0.5}})

	c.RunControl()

	if math.Abs(c.Mass().Value-10.5) > 1e-9 {
		t.Fatalf("got %v", c.Mass().Value)
	}
}

func TestThrusterLayerAddsForceToCell(t *testing.T) {
	c := NewCell(quantities.Position{X: 1, Y: 1}, quantities.ZeroVelocity, []CellLayer{
		NewCellLayer(quantities.Area{Value: 1}, quantities.Density{Value: 1}, Green).
			WithSpecialty(&ThrusterSpecialty{}),
	}).WithControl(SimpleThrusterControl{LayerIndex: 0, Force: quantities.Force{X: 1, Y: -1}})

	c.RunControl()
	c.AfterInfluences()

	if c.Body.Forces() != (quantities.Force{X: 1, Y: -1}) {
		t.Fatalf("got %v", c.Body.Forces())
	}
}

func TestPhotoLayerAddsEnergyToCell(t *testing.T) {
	c := NewCell(quantities.Position{X: 1, Y: 1}, quantities.ZeroVelocity, []CellLayer{
		NewCellLayer(quantities.Area{Value: 4}, quantities.Density{Value: 1}, Green).
			WithSpecialty(PhotoSpecialty{Efficiency: 0.5}),
	})
	c.Environment.AddLightIntensity(10)

	c.AfterInfluences()

	if c.Energy != (quantities.BioEnergy{Value: 20}) {
		t.Fatalf("got %v", c.Energy)
	}
}

func TestBudgetingUpdatesEnergyWithRequestDeltas(t *testing.T) {
	dummy := ControlRequest{}
	costed := []CostedControlRequest{
		{Request: dummy, EnergyDelta: quantities.BioEnergyDelta{Value: -1.5}},
		{Request: dummy, EnergyDelta: quantities.BioEnergyDelta{Value: 1.0}},
	}
	end, _ := BudgetControlRequests(quantities.BioEnergy{Value: 3.0}, costed)
	if end != (quantities.BioEnergy{Value: 2.5}) {
		t.Fatalf("got %v", end)
	}
}

func TestBudgetingOffsetsExpensesWithIncome(t *testing.T) {
	dummy := ControlRequest{}
	costed := []CostedControlRequest{
		{Request: dummy, EnergyDelta: quantities.BioEnergyDelta{Value: -6.0}},
		{Request: dummy, EnergyDelta: quantities.BioEnergyDelta{Value: 1.0}},
	}
	end, budgeted := BudgetControlRequests(quantities.BioEnergy{Value: 2.0}, costed)
	if end != quantities.ZeroBioEnergy {
		t.Fatalf("expected end energy 0, got %v", end)
	}
	if budgeted[0].BudgetedFraction != 0.5 {
		t.Fatalf("expected expense fraction 0.5, got %v", budgeted[0].BudgetedFraction)
	}
	if budgeted[1].BudgetedFraction != 1.0 {
		t.Fatalf("expected income fraction 1.0, got %v", budgeted[1].BudgetedFraction)
	}
}

func TestLayerDamageReducesHealthAndTransitionsBrain(t *testing.T) {
	l := NewCellLayer(quantities.Area{Value: 1}, quantities.Density{Value: 1}, Green)
	l.Damage(0.3)
	if round100(l.Health()) != 70 {
		t.Fatalf("got %v", l.Health())
	}
	if !l.IsAlive() {
		t.Fatalf("expected still alive")
	}
	l.Damage(1.0)
	if l.Health() != 0 {
		t.Fatalf("expected health floored at 0, got %v", l.Health())
	}
	if l.IsAlive() {
		t.Fatalf("expected dead after health reaches 0")
	}
}

func TestDeadLayerIgnoresFurtherDamageAndRequests(t *testing.T) {
	l := NewCellLayer(quantities.Area{Value: 1}, quantities.Density{Value: 1}, Green).Dead()
	costed := l.CostControlRequest(HealingRequest(0, 1.0))
	if costed.EnergyDelta != quantities.ZeroBioEnergyDelta {
		t.Fatalf("expected dead layer to cost nothing, got %v", costed.EnergyDelta)
	}
	l.Damage(0.5)
	if l.Health() != 0 || l.IsAlive() {
		t.Fatalf("expected dead layer to stay dead at health 0, got %v", l.Health())
	}
}

func TestOverlapDamageScalesWithMagnitude(t *testing.T) {
	l := NewCellLayer(quantities.Area{Value: 1}, quantities.Density{Value: 1}, Green).
		WithHealthParameters(LayerHealthParameters{OverlapDamageHealthDelta: -0.1})
	var env environment.LocalEnvironment
	env.AddOverlap(environment.Overlap{Magnitude: quantities.Length{Value: 2}})

	l.AfterInfluences(&env)

	if round100(l.Health()) != 80 {
		t.Fatalf("got %v", l.Health())
	}
}

func round(x float64) int {
	if x >= 0 {
		return int(x + 0.5)
	}
	return int(x - 0.5)
}

func round100(x float64) int {
	return round(x * 100)
}
