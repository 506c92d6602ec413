package genome

import "testing"

func TestTwoLayerSparselyConnected(t *testing.T) {
	g := NewSparseNeuralNetGenome(Identity)
	g.ConnectNode(2, 0.5, []NodeWeight{{Index: 0, Weight: 0.5}})
	g.ConnectNode(3, 0.0, []NodeWeight{{Index: 0, Weight: 0.75}, {Index: 1, Weight: 0.25}})

	n := NewSparseNeuralNet(g)
	n.SetNodeValue(0, 2.0)
	n.SetNodeValue(1, 4.0)
	n.Run()

	// Identity is used instead of the original's "plus one" stand-in:
	// node 2 = bias(0.5) + 0.5*2.0 = 1.5, node 3 = 0.75*2.0 + 0.25*4.0 = 2.5.
	if n.NodeValue(2) != 1.5 {
		t.Fatalf("node 2: got %v", n.NodeValue(2))
	}
	if n.NodeValue(3) != 2.5 {
		t.Fatalf("node 3: got %v", n.NodeValue(3))
	}
}

func TestRunClearsPreviousValues(t *testing.T) {
	g := NewSparseNeuralNetGenome(Identity)
	g.ConnectNode(1, 0.0, []NodeWeight{{Index: 0, Weight: 1.0}})

	n := NewSparseNeuralNet(g)
	n.SetNodeValue(0, 1.0)
	n.Run()
	n.SetNodeValue(0, 3.0)
	n.Run()

	if n.NodeValue(1) != 3.0 {
		t.Fatalf("got %v", n.NodeValue(1))
	}
}

func TestThreeLayer(t *testing.T) {
	g := NewSparseNeuralNetGenome(Identity)
	g.ConnectNode(1, 0.5, []NodeWeight{{Index: 0, Weight: 0.5}})
	g.ConnectNode(2, 0.0, []NodeWeight{{Index: 1, Weight: 0.5}})

	n := NewSparseNeuralNet(g)
	n.SetNodeValue(0, 2.0)
	n.Run()

	if n.NodeValue(2) != 0.75 {
		t.Fatalf("got %v", n.NodeValue(2))
	}
}

func TestRecurrentConnection(t *testing.T) {
	g := NewSparseNeuralNetGenome(Identity)
	g.ConnectNode(1, 0.0, []NodeWeight{{Index: 0, Weight: 1.0}, {Index: 2, Weight: 2.0}})
	g.ConnectNode(2, 0.0, []NodeWeight{{Index: 1, Weight: 1.0}})

	n := NewSparseNeuralNet(g)
	n.SetNodeValue(0, 1.0)
	n.Run()

	if n.NodeValue(0) != 1.0 || n.NodeValue(1) != 1.0 || n.NodeValue(2) != 1.0 {
		t.Fatalf("got %v %v %v", n.NodeValue(0), n.NodeValue(1), n.NodeValue(2))
	}

	n.SetNodeValue(0, 0.0)
	n.Run()

	if n.NodeValue(0) != 0.0 || n.NodeValue(1) != 2.0 || n.NodeValue(2) != 2.0 {
		t.Fatalf("got %v %v %v", n.NodeValue(0), n.NodeValue(1), n.NodeValue(2))
	}
}

type stubMutationRandomness struct {
	mutatedWeights map[float32]float32
}

func (s stubMutationRandomness) MutateWeight(weight float32) float32 {
	if to, ok := s.mutatedWeights[weight]; ok {
		return to
	}
	return weight
}

func TestSpawnUnmutated(t *testing.T) {
	g := NewSparseNeuralNetGenome(Sigmoidal)
	g.ConnectNode(1, 0.0, []NodeWeight{{Index: 0, Weight: 1.0}, {Index: 2, Weight: 2.0}})
	g.ConnectNode(2, 0.0, []NodeWeight{{Index: 1, Weight: 1.0}})

	stub := stubMutationRandomness{mutatedWeights: map[float32]float32{}}
	copyGenome := g.Spawn(stub)

	if len(copyGenome.ops) != len(g.ops) {
		t.Fatalf("expected identical op count")
	}
	for i := range g.ops {
		if copyGenome.ops[i] != g.ops[i] {
			t.Fatalf("op %d differs: %+v vs %+v", i, copyGenome.ops[i], g.ops[i])
		}
	}
	if copyGenome.transferFn != Sigmoidal {
		t.Fatalf("expected transfer fn preserved")
	}
}

func TestSpawnWithMutatedWeights(t *testing.T) {
	g := NewSparseNeuralNetGenome(Sigmoidal)
	g.ConnectNode(2, 1.5, []NodeWeight{{Index: 0, Weight: 1.0}, {Index: 1, Weight: 2.0}})

	stub := stubMutationRandomness{mutatedWeights: map[float32]float32{1.5: -0.5, 2.0: 2.25}}
	copyGenome := g.Spawn(stub)

	want := []op{
		{kind: opBias, to: 2, weight: -0.5},
		{kind: opConnection, from: 0, to: 2, weight: 1.0},
		{kind: opConnection, from: 1, to: 2, weight: 2.25},
		{kind: opTransfer, to: 2, fn: Sigmoidal},
	}
	if len(copyGenome.ops) != len(want) {
		t.Fatalf("expected %d ops, got %d", len(want), len(copyGenome.ops))
	}
	for i, w := range want {
		if copyGenome.ops[i] != w {
			t.Fatalf("op %d: got %+v, want %+v", i, copyGenome.ops[i], w)
		}
	}
}

func TestSeededMutationRandomnessLeavesWeightUnmutated(t *testing.T) {
	r := NewSeededMutationRandomness(0, NoMutation)
	if r.MutateWeight(1.0) != 1.0 {
		t.Fatalf("expected weight unmutated under NoMutation")
	}
}

func TestSeededMutationRandomnessMutatesWeight(t *testing.T) {
	alwaysMutate := MutationParameters{WeightMutationProbability: 1.0, WeightMutationStdev: 1.0}
	r := NewSeededMutationRandomness(0, alwaysMutate)
	if r.MutateWeight(1.0) == 1.0 {
		t.Fatalf("expected weight mutated when probability is 1.0")
	}
}

func TestChildSeedDerivesDistinctStream(t *testing.T) {
	r := NewSeededMutationRandomness(42, MutationParameters{WeightMutationProbability: 1, WeightMutationStdev: 1})
	child := r.Spawn()

	a := r.MutateWeight(1.0)
	b := child.MutateWeight(1.0)
	if a == b {
		t.Fatalf("expected parent and child streams to diverge, both gave %v", a)
	}
}
