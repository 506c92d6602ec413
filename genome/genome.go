// Package genome implements SparseNeuralNet, a cellular controller: an
// ordered list of operations over a flat buffer of node values, cheap
// enough to evaluate every tick for every living cell and to mutate on
// reproduction. Grounded on
// _examples/original_source/evo_domain/src/biology/genome.rs.
package genome

import (
	"fmt"
	"math"
)

// TransferFn is a named activation applied to one node value in place.
// It is a value type (not a func field) so genomes stay comparable and
// the zero value (Identity) is meaningful.
type TransferFn int

const (
	// Identity leaves the value unchanged.
	Identity TransferFn = iota
	// Sigmoidal applies the logistic function with gain 4.9:
	// 1 / (1 + exp(-4.9*v)), matching the original's sigmoidal_fn.
	Sigmoidal
)

const sigmoidalGain = 4.9

func (fn TransferFn) apply(v float32) float32 {
	switch fn {
	case Identity:
		return v
	case Sigmoidal:
		return float32(1.0 / (1.0 + math.Exp(float64(-sigmoidalGain*v))))
	default:
		panic(fmt.Sprintf("genome: unknown transfer function %d", fn))
	}
}

// opKind discriminates the three op variants. Ops are a closed set: a
// cell's control graph is entirely data, never executable code.
type opKind int

const (
	opBias opKind = iota
	opConnection
	opTransfer
)

// op is one instruction in a SparseNeuralNetGenome's op list.
type op struct {
	kind     opKind
	from     uint16 // opConnection only
	to       uint16 // opBias, opConnection: "to"; opTransfer: the value index
	weight   float32
	fn       TransferFn
}

func (o op) run(values []float32) {
	switch o.kind {
	case opBias:
		values[o.to] = o.weight
	case opConnection:
		values[o.to] += o.weight * values[o.from]
	case opTransfer:
		values[o.to] = o.fn.apply(values[o.to])
	}
}

func (o op) withMutatedWeight(mutate func(float32) float32) op {
	if o.kind == opTransfer {
		return o
	}
	mutated := o
	mutated.weight = mutate(o.weight)
	return mutated
}

// SparseNeuralNetGenome is an ordered op list plus the node count it
// implies. NumNodes is the maximum value index referenced, plus one.
type SparseNeuralNetGenome struct {
	ops        []op
	transferFn TransferFn
	numNodes   uint16
}

// NewSparseNeuralNetGenome returns an empty genome that will apply
// transferFn to every connected node.
func NewSparseNeuralNetGenome(transferFn TransferFn) SparseNeuralNetGenome {
	return SparseNeuralNetGenome{transferFn: transferFn}
}

// ConnectNode appends a Bias op for toValueIndex, a Connection op for
// each (fromValueIndex, weight) pair, and a Transfer op for
// toValueIndex, in that order - matching the original's connect_node,
// which lets every node computed this way get exactly one bias-then-sum-
// then-transfer pass per evaluation.
func (g *SparseNeuralNetGenome) ConnectNode(toValueIndex uint16, bias float32, fromValueWeights []NodeWeight) {
	g.growNumNodes(toValueIndex)
	g.ops = append(g.ops, op{kind: opBias, to: toValueIndex, weight: bias})
	for _, fw := range fromValueWeights {
		g.growNumNodes(fw.Index)
		g.ops = append(g.ops, op{kind: opConnection, from: fw.Index, to: toValueIndex, weight: fw.Weight})
	}
	g.ops = append(g.ops, op{kind: opTransfer, to: toValueIndex, fn: g.transferFn})
}

// NodeWeight is one (from-index, weight) pair supplied to ConnectNode.
type NodeWeight struct {
	Index  uint16
	Weight float32
}

func (g *SparseNeuralNetGenome) growNumNodes(index uint16) {
	if index+1 > g.numNodes {
		g.numNodes = index + 1
	}
}

// NumNodes returns the size of the value buffer this genome expects.
func (g SparseNeuralNetGenome) NumNodes() int {
	return int(g.numNodes)
}

func (g SparseNeuralNetGenome) run(values []float32) {
	for _, o := range g.ops {
		o.run(values)
	}
}

// Spawn returns a child genome with the same topology and every
// Bias/Connection weight independently passed through
// randomness.MutateWeight; Transfer ops are never mutated.
func (g SparseNeuralNetGenome) Spawn(randomness MutationRandomness) SparseNeuralNetGenome {
	newOps := make([]op, len(g.ops))
	for i, o := range g.ops {
		newOps[i] = o.withMutatedWeight(randomness.MutateWeight)
	}
	return SparseNeuralNetGenome{ops: newOps, transferFn: g.transferFn, numNodes: g.numNodes}
}

// SparseNeuralNet pairs a genome with its mutable value buffer. Run
// overwrites the buffer from scratch each call (via Bias ops), so stale
// values never leak from one evaluation to the next except through
// explicit recurrent Connection references read before they're
// overwritten this pass.
type SparseNeuralNet struct {
	Genome SparseNeuralNetGenome
	values []float32
}

// NewSparseNeuralNet allocates a net's value buffer for the given genome.
func NewSparseNeuralNet(g SparseNeuralNetGenome) *SparseNeuralNet {
	return &SparseNeuralNet{Genome: g, values: make([]float32, g.NumNodes())}
}

// Spawn returns a child net built from a mutated copy of this net's
// genome.
func (n *SparseNeuralNet) Spawn(randomness MutationRandomness) *SparseNeuralNet {
	return NewSparseNeuralNet(n.Genome.Spawn(randomness))
}

// SetNodeValue sets an input node's value ahead of Run.
func (n *SparseNeuralNet) SetNodeValue(index uint16, value float32) {
	n.values[index] = value
}

// NodeValue reads a node's value, typically an output node after Run.
func (n *SparseNeuralNet) NodeValue(index uint16) float32 {
	return n.values[index]
}

// Run evaluates every op in genome order over the shared value buffer.
func (n *SparseNeuralNet) Run() {
	n.Genome.run(n.values)
}

// MutationRandomness supplies the mutation decisions Spawn needs; the
// production implementation is SeededMutationRandomness, test code can
// substitute a stub.
type MutationRandomness interface {
	MutateWeight(weight float32) float32
}
