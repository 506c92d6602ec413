package cell

import "github.com/evosim/cellengine/quantities"

// ContinuousResizeControl is a scripted CellControl that asks one layer
// to grow by a fixed area delta every tick, grounded on
// evo_domain::world test helpers (ContinuousGrowthControl). Useful for
// exercising the resize cost/budget pipeline without a genome.
type ContinuousResizeControl struct {
	LayerIndex int
	AreaDelta  quantities.AreaDelta
}

// GetControlRequests implements CellControl.
func (c ContinuousResizeControl) GetControlRequests(CellStateSnapshot) []ControlRequest {
	return []ControlRequest{ResizeRequest(c.LayerIndex, c.AreaDelta)}
}

// SimpleThrusterControl is a scripted CellControl that asks one thruster
// layer for a fixed force every tick.
type SimpleThrusterControl struct {
	LayerIndex int
	Force      quantities.Force
}

// GetControlRequests implements CellControl.
func (c SimpleThrusterControl) GetControlRequests(CellStateSnapshot) []ControlRequest {
	return []ControlRequest{
		{LayerIndex: c.LayerIndex, ChannelIndex: ForceXChannelIndex, RequestedValue: c.Force.X},
		{LayerIndex: c.LayerIndex, ChannelIndex: ForceYChannelIndex, RequestedValue: c.Force.Y},
	}
}

// ContinuousRequestsControl replays a fixed list of ControlRequest every
// tick, regardless of cell state - the simplest possible fixture for
// tests that want full control over what gets requested.
type ContinuousRequestsControl struct {
	Requests []ControlRequest
}

// GetControlRequests implements CellControl.
func (c ContinuousRequestsControl) GetControlRequests(CellStateSnapshot) []ControlRequest {
	return c.Requests
}
