package graph

import (
	"fmt"
	"sort"
)

// NodeWithSlots is the capability a graph's node type must provide so that
// AddEdge can record the new edge into each endpoint's bond-slot array, and
// RemoveEdges/RemoveNodes can clear it back out again.
type NodeWithSlots interface {
	SetBondSlot(slot int, h EdgeHandle)
	ClearBondSlot(slot int, h EdgeHandle)
}

// Edge is the capability a graph's edge type must provide: the two
// distinct node endpoints, and which bond slot on each endpoint it
// occupies.
type Edge interface {
	Endpoints() (NodeHandle, NodeHandle)
	Slots() (int, int)
}

// MetaEdge is the capability a graph's meta-edge type must provide: the
// two edges it attaches, which must share one endpoint node.
type MetaEdge interface {
	EdgeRefs() (EdgeHandle, EdgeHandle)
}

type nodeSlot[N any] struct {
	value      N
	generation uint32
	alive      bool
}

type edgeSlot[E any] struct {
	value      E
	generation uint32
	alive      bool
}

type metaEdgeSlot[M any] struct {
	value      M
	generation uint32
	alive      bool
}

// SortableGraph owns a set of nodes, edges and meta-edges behind
// generational handles. Handles remain valid across compaction; removed
// slots are tombstoned and reused with a bumped generation so that any
// handle captured before removal fails loudly instead of aliasing new
// data.
type SortableGraph[N NodeWithSlots, E Edge, M MetaEdge] struct {
	nodes          []nodeSlot[N]
	edges          []edgeSlot[E]
	metaEdges      []metaEdgeSlot[M]
	freeNodes      []int
	freeEdges      []int
	freeMetaEdges  []int
	liveNodeCount  int
	liveEdgeCount  int
	liveMetaCount  int
}

// NewSortableGraph returns an empty graph.
func NewSortableGraph[N NodeWithSlots, E Edge, M MetaEdge]() *SortableGraph[N, E, M] {
	return &SortableGraph[N, E, M]{}
}

// AddNode inserts n and returns its handle.
func (g *SortableGraph[N, E, M]) AddNode(n N) NodeHandle {
	if len(g.freeNodes) > 0 {
		idx := g.freeNodes[len(g.freeNodes)-1]
		g.freeNodes = g.freeNodes[:len(g.freeNodes)-1]
		gen := g.nodes[idx].generation + 1
		g.nodes[idx] = nodeSlot[N]{value: n, generation: gen, alive: true}
		g.liveNodeCount++
		return NodeHandle{index: idx, generation: gen}
	}
	g.nodes = append(g.nodes, nodeSlot[N]{value: n, generation: 0, alive: true})
	g.liveNodeCount++
	return NodeHandle{index: len(g.nodes) - 1, generation: 0}
}

// Node returns a copy of the node value at h. Panics if h is stale or
// refers to a removed slot.
func (g *SortableGraph[N, E, M]) Node(h NodeHandle) N {
	g.checkNode(h)
	return g.nodes[h.index].value
}

// SetNode overwrites the node value at h in place.
func (g *SortableGraph[N, E, M]) SetNode(h NodeHandle, n N) {
	g.checkNode(h)
	g.nodes[h.index].value = n
}

// NodeCount returns the number of live nodes.
func (g *SortableGraph[N, E, M]) NodeCount() int {
	return g.liveNodeCount
}

// NodeHandles returns the handles of all live nodes in storage order.
func (g *SortableGraph[N, E, M]) NodeHandles() []NodeHandle {
	out := make([]NodeHandle, 0, g.liveNodeCount)
	for i := range g.nodes {
		if g.nodes[i].alive {
			out = append(out, NodeHandle{index: i, generation: g.nodes[i].generation})
		}
	}
	return out
}

func (g *SortableGraph[N, E, M]) checkNode(h NodeHandle) {
	if h.index < 0 || h.index >= len(g.nodes) {
		panic(fmt.Sprintf("graph: NodeHandle %v out of range", h))
	}
	slot := g.nodes[h.index]
	if !slot.alive || slot.generation != h.generation {
		panic(fmt.Sprintf("graph: stale NodeHandle %v", h))
	}
}

// AddEdge inserts e, connecting the two nodes e.Endpoints() names, and
// records the new edge handle into slot1 on the first endpoint and slot2
// on the second. Panics if either endpoint does not exist or the
// endpoints are not distinct.
func (g *SortableGraph[N, E, M]) AddEdge(e E, slot1, slot2 int) EdgeHandle {
	n1, n2 := e.Endpoints()
	if n1 == n2 {
		panic(fmt.Sprintf("graph: edge endpoints must be distinct, got %v twice", n1))
	}
	g.checkNode(n1)
	g.checkNode(n2)

	var h EdgeHandle
	if len(g.freeEdges) > 0 {
		idx := g.freeEdges[len(g.freeEdges)-1]
		g.freeEdges = g.freeEdges[:len(g.freeEdges)-1]
		gen := g.edges[idx].generation + 1
		g.edges[idx] = edgeSlot[E]{value: e, generation: gen, alive: true}
		h = EdgeHandle{index: idx, generation: gen}
	} else {
		g.edges = append(g.edges, edgeSlot[E]{value: e, generation: 0, alive: true})
		h = EdgeHandle{index: len(g.edges) - 1, generation: 0}
	}
	g.liveEdgeCount++

	node1 := g.nodes[n1.index].value
	node1.SetBondSlot(slot1, h)
	g.nodes[n1.index].value = node1
	node2 := g.nodes[n2.index].value
	node2.SetBondSlot(slot2, h)
	g.nodes[n2.index].value = node2

	return h
}

// Edge returns a copy of the edge value at h. Panics if h is stale.
func (g *SortableGraph[N, E, M]) Edge(h EdgeHandle) E {
	g.checkEdge(h)
	return g.edges[h.index].value
}

// SetEdge overwrites the edge value at h in place.
func (g *SortableGraph[N, E, M]) SetEdge(h EdgeHandle, e E) {
	g.checkEdge(h)
	g.edges[h.index].value = e
}

// EdgeCount returns the number of live edges.
func (g *SortableGraph[N, E, M]) EdgeCount() int {
	return g.liveEdgeCount
}

// EdgeHandles returns the handles of all live edges in storage order.
func (g *SortableGraph[N, E, M]) EdgeHandles() []EdgeHandle {
	out := make([]EdgeHandle, 0, g.liveEdgeCount)
	for i := range g.edges {
		if g.edges[i].alive {
			out = append(out, EdgeHandle{index: i, generation: g.edges[i].generation})
		}
	}
	return out
}

func (g *SortableGraph[N, E, M]) checkEdge(h EdgeHandle) {
	if h.index < 0 || h.index >= len(g.edges) {
		panic(fmt.Sprintf("graph: EdgeHandle %v out of range", h))
	}
	slot := g.edges[h.index]
	if !slot.alive || slot.generation != h.generation {
		panic(fmt.Sprintf("graph: stale EdgeHandle %v", h))
	}
}

// AddMetaEdge inserts m, which must reference two existing edges sharing
// one endpoint node (the edge type's own constructor is expected to
// enforce that invariant; the graph only checks the edges exist).
func (g *SortableGraph[N, E, M]) AddMetaEdge(m M) MetaEdgeHandle {
	e1, e2 := m.EdgeRefs()
	g.checkEdge(e1)
	g.checkEdge(e2)

	if len(g.freeMetaEdges) > 0 {
		idx := g.freeMetaEdges[len(g.freeMetaEdges)-1]
		g.freeMetaEdges = g.freeMetaEdges[:len(g.freeMetaEdges)-1]
		gen := g.metaEdges[idx].generation + 1
		g.metaEdges[idx] = metaEdgeSlot[M]{value: m, generation: gen, alive: true}
		g.liveMetaCount++
		return MetaEdgeHandle{index: idx, generation: gen}
	}
	g.metaEdges = append(g.metaEdges, metaEdgeSlot[M]{value: m, generation: 0, alive: true})
	g.liveMetaCount++
	return MetaEdgeHandle{index: len(g.metaEdges) - 1, generation: 0}
}

// MetaEdge returns a copy of the meta-edge value at h. Panics if h is stale.
func (g *SortableGraph[N, E, M]) MetaEdge(h MetaEdgeHandle) M {
	g.checkMetaEdge(h)
	return g.metaEdges[h.index].value
}

// MetaEdgeCount returns the number of live meta-edges.
func (g *SortableGraph[N, E, M]) MetaEdgeCount() int {
	return g.liveMetaCount
}

// MetaEdgeHandles returns the handles of all live meta-edges in storage order.
func (g *SortableGraph[N, E, M]) MetaEdgeHandles() []MetaEdgeHandle {
	out := make([]MetaEdgeHandle, 0, g.liveMetaCount)
	for i := range g.metaEdges {
		if g.metaEdges[i].alive {
			out = append(out, MetaEdgeHandle{index: i, generation: g.metaEdges[i].generation})
		}
	}
	return out
}

func (g *SortableGraph[N, E, M]) checkMetaEdge(h MetaEdgeHandle) {
	if h.index < 0 || h.index >= len(g.metaEdges) {
		panic(fmt.Sprintf("graph: MetaEdgeHandle %v out of range", h))
	}
	slot := g.metaEdges[h.index]
	if !slot.alive || slot.generation != h.generation {
		panic(fmt.Sprintf("graph: stale MetaEdgeHandle %v", h))
	}
}

// EdgeAccessor is handed to the callback of ForEachNode so it can read
// and write edges while the node slice is under mutation, without being
// able to alias the node slice itself.
type EdgeAccessor[N NodeWithSlots, E Edge, M MetaEdge] struct {
	g *SortableGraph[N, E, M]
}

// Edge returns a copy of the edge at h.
func (a EdgeAccessor[N, E, M]) Edge(h EdgeHandle) E {
	return a.g.Edge(h)
}

// SetEdge overwrites the edge at h.
func (a EdgeAccessor[N, E, M]) SetEdge(h EdgeHandle, e E) {
	a.g.SetEdge(h, e)
}

// ForEachNode visits every live node in storage order, giving fn a handle,
// the node's current value, and an edges-only accessor. fn's return value
// replaces the stored node. Structural graph changes (add/remove) must not
// be performed inside fn; collect them and apply after iteration via
// RemoveNodes/RemoveEdges/AddNode et al.
func (g *SortableGraph[N, E, M]) ForEachNode(fn func(h NodeHandle, n N, edges EdgeAccessor[N, E, M]) N) {
	accessor := EdgeAccessor[N, E, M]{g: g}
	for i := range g.nodes {
		if !g.nodes[i].alive {
			continue
		}
		h := NodeHandle{index: i, generation: g.nodes[i].generation}
		g.nodes[i].value = fn(h, g.nodes[i].value, accessor)
	}
}

// RemoveNodes removes the given nodes (order-independent; the handles do
// not need to be pre-sorted) and cascades: every edge touching a removed
// node is removed, and every meta-edge touching a removed edge is removed.
func (g *SortableGraph[N, E, M]) RemoveNodes(handles []NodeHandle) {
	if len(handles) == 0 {
		return
	}
	sorted := make([]NodeHandle, len(handles))
	copy(sorted, handles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	removedNodes := make(map[int]bool, len(sorted))
	for _, h := range sorted {
		g.checkNode(h)
		removedNodes[h.index] = true
	}

	var edgesToRemove []EdgeHandle
	for i := range g.edges {
		if !g.edges[i].alive {
			continue
		}
		n1, n2 := g.edges[i].value.Endpoints()
		if removedNodes[n1.index] || removedNodes[n2.index] {
			edgesToRemove = append(edgesToRemove, EdgeHandle{index: i, generation: g.edges[i].generation})
		}
	}
	g.removeEdgesCascading(edgesToRemove, true)

	for _, h := range sorted {
		g.nodes[h.index].alive = false
		var zero N
		g.nodes[h.index].value = zero
		g.freeNodes = append(g.freeNodes, h.index)
		g.liveNodeCount--
	}
}

// RemoveEdges removes the given edges (order-independent) and cascades to
// meta-edges that reference any of them. Also clears the corresponding
// bond slots on the edges' endpoint nodes, if those nodes still exist.
func (g *SortableGraph[N, E, M]) RemoveEdges(handles []EdgeHandle) {
	g.removeEdgesCascading(handles, true)
}

func (g *SortableGraph[N, E, M]) removeEdgesCascading(handles []EdgeHandle, clearSlots bool) {
	if len(handles) == 0 {
		return
	}
	sorted := make([]EdgeHandle, len(handles))
	copy(sorted, handles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	removedEdges := make(map[int]bool, len(sorted))
	for _, h := range sorted {
		g.checkEdge(h)
		removedEdges[h.index] = true
	}

	var metaToRemove []MetaEdgeHandle
	for i := range g.metaEdges {
		if !g.metaEdges[i].alive {
			continue
		}
		e1, e2 := g.metaEdges[i].value.EdgeRefs()
		if removedEdges[e1.index] || removedEdges[e2.index] {
			metaToRemove = append(metaToRemove, MetaEdgeHandle{index: i, generation: g.metaEdges[i].generation})
		}
	}
	for _, h := range metaToRemove {
		g.metaEdges[h.index].alive = false
		var zero M
		g.metaEdges[h.index].value = zero
		g.freeMetaEdges = append(g.freeMetaEdges, h.index)
		g.liveMetaCount--
	}

	for _, h := range sorted {
		if clearSlots {
			edge := g.edges[h.index].value
			n1, n2 := edge.Endpoints()
			s1, s2 := edge.Slots()
			if n1.index >= 0 && n1.index < len(g.nodes) && g.nodes[n1.index].alive {
				node1 := g.nodes[n1.index].value
				node1.ClearBondSlot(s1, h)
				g.nodes[n1.index].value = node1
			}
			if n2.index >= 0 && n2.index < len(g.nodes) && g.nodes[n2.index].alive {
				node2 := g.nodes[n2.index].value
				node2.ClearBondSlot(s2, h)
				g.nodes[n2.index].value = node2
			}
		}
		g.edges[h.index].alive = false
		var zero E
		g.edges[h.index].value = zero
		g.freeEdges = append(g.freeEdges, h.index)
		g.liveEdgeCount--
	}
}
