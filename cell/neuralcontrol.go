package cell

import "github.com/evosim/cellengine/genome"

// NeuralNetInputMapping and NeuralNetOutputMapping let a
// NeuralNetBuddingControl stay genome-topology-agnostic: the caller
// decides which node index reads which piece of cell state, and which
// node index drives which ControlRequest.
type NeuralNetInputMapping func(snapshot CellStateSnapshot, net *genome.SparseNeuralNet)
type NeuralNetOutputMapping func(net *genome.SparseNeuralNet) []ControlRequest

// NeuralNetBuddingControl is a CellControl backed by a
// genome.SparseNeuralNet: it writes cell-state inputs into the net,
// evaluates it, and reads control requests back out. "Budding" in the
// name reflects that this is the control type a budded child inherits
// (with a mutated genome) - a plain neural control with no budding logic
// of its own, since budding decisions are themselves just
// BondingSpecialty-channel ControlRequests the net can emit.
type NeuralNetBuddingControl struct {
	Net          *genome.SparseNeuralNet
	ReadInputs   NeuralNetInputMapping
	WriteOutputs NeuralNetOutputMapping
}

// GetControlRequests implements CellControl.
func (c *NeuralNetBuddingControl) GetControlRequests(snapshot CellStateSnapshot) []ControlRequest {
	if c.ReadInputs != nil {
		c.ReadInputs(snapshot, c.Net)
	}
	c.Net.Run()
	if c.WriteOutputs == nil {
		return nil
	}
	return c.WriteOutputs(c.Net)
}

// Spawn returns a child control with a mutated copy of this control's
// genome, sharing the same input/output mappings (the mappings are a
// fixed wiring decided at species-definition time, not something
// mutation touches).
func (c *NeuralNetBuddingControl) Spawn(randomness genome.MutationRandomness) *NeuralNetBuddingControl {
	return &NeuralNetBuddingControl{
		Net:          c.Net.Spawn(randomness),
		ReadInputs:   c.ReadInputs,
		WriteOutputs: c.WriteOutputs,
	}
}
