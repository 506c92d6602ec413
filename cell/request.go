package cell

import "github.com/evosim/cellengine/quantities"

// ControlRequest is what a CellControl emits: "layer X, channel Y, value
// index Z, please let this be requestedValue." Channels 0 and 1 are
// reserved on every layer for healing and resize respectively; higher
// channels are specialty-specific.
type ControlRequest struct {
	LayerIndex     int
	ChannelIndex   int
	ValueIndex     int
	RequestedValue float64
}

// CostedControlRequest enriches a ControlRequest with the energy delta it
// would cost (negative) or yield (positive) and the value actually
// allowed once rate limits are applied.
type CostedControlRequest struct {
	Request     ControlRequest
	AllowedValue float64
	EnergyDelta  quantities.BioEnergyDelta
}

// BudgetedControlRequest enriches a CostedControlRequest with the
// fraction of its cost the cell's energy budget can actually afford this
// tick. Income requests (positive EnergyDelta) are always fully honored
// (BudgetedFraction == 1); expense requests are scaled down together so
// the cell never goes into energy debt.
type BudgetedControlRequest struct {
	Request          ControlRequest
	EnergyDelta      quantities.BioEnergyDelta
	BudgetedFraction float64
}

const energyEpsilon = 1e-12

// BudgetControlRequests applies spec.md's epsilon-guarded budgeting law:
// budgeted_fraction = min(1, (start+income) / max(expense, epsilon)).
// It returns the cell's end-of-budgeting energy and one
// BudgetedControlRequest per costed request, in the same order.
func BudgetControlRequests(startEnergy quantities.BioEnergy, costed []CostedControlRequest) (quantities.BioEnergy, []BudgetedControlRequest) {
	var income, expense quantities.BioEnergy
	for _, c := range costed {
		if c.EnergyDelta.Value > 0 {
			income.Value += c.EnergyDelta.Value
		} else {
			expense.Value += -c.EnergyDelta.Value
		}
	}

	totalStart := startEnergy.Plus(income)
	denom := expense.Value
	if denom < energyEpsilon {
		denom = energyEpsilon
	}
	budgetedFraction := totalStart.Value / denom
	if budgetedFraction > 1 {
		budgetedFraction = 1
	}

	adjustedExpense := expense.Value * budgetedFraction
	if adjustedExpense > totalStart.Value {
		adjustedExpense = totalStart.Value
	}
	endEnergy := quantities.BioEnergy{Value: totalStart.Value - adjustedExpense}

	budgeted := make([]BudgetedControlRequest, len(costed))
	for i, c := range costed {
		fraction := 1.0
		if c.EnergyDelta.Value < 0 {
			fraction = budgetedFraction
		}
		budgeted[i] = BudgetedControlRequest{
			Request:          c.Request,
			EnergyDelta:      c.EnergyDelta,
			BudgetedFraction: fraction,
		}
	}
	return endEnergy, budgeted
}
