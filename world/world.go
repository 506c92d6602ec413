// Package world assembles quantities, graph, bond, influence, and cell
// into the ordered per-tick state machine spec.md describes: apply
// influences, settle bond energy, run cell controls (cost/budget/
// execute, collecting births/bond-breaks/deaths), integrate motion, then
// apply the structural changes discovered this tick. Grounded on
// _examples/original_source/evo_domain/src/world.rs.
package world

import (
	"fmt"
	"sort"

	"github.com/evosim/cellengine/bond"
	"github.com/evosim/cellengine/cell"
	"github.com/evosim/cellengine/graph"
	"github.com/evosim/cellengine/influence"
	"github.com/evosim/cellengine/overlap"
	"github.com/evosim/cellengine/quantities"
)

// Default spring constants for WithPerimeterWalls/WithPairCollisions,
// matching config/defaults.yaml's wall_spring/collision_spring presets.
// The Rust original's with_perimeter_walls/with_pair_collisions
// (evo_domain/src/world.rs) take no spring argument at all; the spring
// constant they use lives in a physics/overlap.rs file not present in
// this retrieval pack, so these are a reasoned Go-idiomatic substitute
// rather than a transcription.
const (
	defaultWallSpring      = 10.0
	defaultCollisionSpring = 10.0
)

// graphT is the concrete SortableGraph instantiation every World uses:
// nodes are *cell.Cell, edges are bond.Bond, meta-edges are
// bond.AngleGusset.
type graphT = graph.SortableGraph[*cell.Cell, bond.Bond, bond.AngleGusset]

// World owns the cell graph and the ordered list of influences applied
// to it every tick.
type World struct {
	minCorner, maxCorner quantities.Position
	cellGraph            *graphT
	influences           []influence.Influence
}

// New returns an empty world bounded by [minCorner, maxCorner].
func New(minCorner, maxCorner quantities.Position) *World {
	return &World{
		minCorner: minCorner,
		maxCorner: maxCorner,
		cellGraph: graph.NewSortableGraph[*cell.Cell, bond.Bond, bond.AngleGusset](),
	}
}

// WithInfluence registers an influence, applied after every
// already-registered one, every tick.
func (w *World) WithInfluence(inf influence.Influence) *World {
	w.influences = append(w.influences, inf)
	return w
}

// WithPerimeterWalls registers a WallCollisions influence bounded by
// this world's own corners, grounded on
// evo_domain::World::with_perimeter_walls.
func (w *World) WithPerimeterWalls() *World {
	return w.WithInfluence(influence.WallCollisions{Spring: overlap.LinearSpring{K: defaultWallSpring}})
}

// WithPairCollisions registers a PairCollisions influence, grounded on
// evo_domain::World::with_pair_collisions.
func (w *World) WithPairCollisions() *World {
	return w.WithInfluence(influence.PairCollisions{Spring: overlap.LinearSpring{K: defaultCollisionSpring}})
}

// WithSunlight registers a Sunlight influence spanning this world's own
// Y corners, grounded on evo_domain::World::with_sunlight.
func (w *World) WithSunlight(minIntensity, maxIntensity float64) *World {
	return w.WithInfluence(influence.Sunlight{
		MinCorner:    w.minCorner.Y,
		MaxCorner:    w.maxCorner.Y,
		MinIntensity: minIntensity,
		MaxIntensity: maxIntensity,
	})
}

// WithInfluences registers every influence in infs, in order, after
// whatever is already registered.
func (w *World) WithInfluences(infs []influence.Influence) *World {
	w.influences = append(w.influences, infs...)
	return w
}

// WithCell adds c and returns w, for chaining.
func (w *World) WithCell(c *cell.Cell) *World {
	w.AddCell(c)
	return w
}

// WithCells adds every cell in cells, in order, and returns w.
func (w *World) WithCells(cells []*cell.Cell) *World {
	for _, c := range cells {
		w.AddCell(c)
	}
	return w
}

// WithBonds bonds cell pairs named by add-order index (the order each
// cell was added to the world, matching evo_domain::World::with_bonds'
// own indexing into its cells() vector), occupying bond slot 0 on both
// endpoints.
func (w *World) WithBonds(pairs [][2]int) *World {
	handles := w.cellGraph.NodeHandles()
	for _, p := range pairs {
		w.AddBond(handles[p[0]], handles[p[1]], 0, 0)
	}
	return w
}

// AngleGussetSpec names two previously-added bonds, by add-order index,
// and the gusset's desired angle in radians.
type AngleGussetSpec struct {
	Bond1Index, Bond2Index int
	DesiredAngleRadians    float64
}

// WithAngleGussets adds an angle gusset for every spec, resolving bond
// indices the way evo_domain::World::with_angle_gussets resolves its
// own bonds() vector indices.
func (w *World) WithAngleGussets(specs []AngleGussetSpec) *World {
	handles := w.cellGraph.EdgeHandles()
	for _, s := range specs {
		w.AddAngleGusset(handles[s.Bond1Index], handles[s.Bond2Index], quantities.Angle{Radians: s.DesiredAngleRadians})
	}
	return w
}

// MinCorner implements influence.World.
func (w *World) MinCorner() quantities.Position { return w.minCorner }

// MaxCorner implements influence.World.
func (w *World) MaxCorner() quantities.Position { return w.maxCorner }

// AddCell inserts c into the world and returns its handle.
func (w *World) AddCell(c *cell.Cell) graph.NodeHandle {
	return w.cellGraph.AddNode(c)
}

// AddBond creates a bond between two cells, occupying the given bond
// slot index on each endpoint.
func (w *World) AddBond(node1, node2 graph.NodeHandle, slot1, slot2 int) graph.EdgeHandle {
	b := bond.NewBond(node1, node2, slot1, slot2)
	return w.cellGraph.AddEdge(b, slot1, slot2)
}

// AddAngleGusset creates an angle gusset between two bonds that share a
// middle node.
func (w *World) AddAngleGusset(bond1Handle, bond2Handle graph.EdgeHandle, desiredAngle quantities.Angle) graph.MetaEdgeHandle {
	b1 := w.cellGraph.Edge(bond1Handle)
	b2 := w.cellGraph.Edge(bond2Handle)
	g := bond.NewAngleGusset(bond1Handle, bond2Handle, b1, b2, desiredAngle)
	return w.cellGraph.AddMetaEdge(g)
}

// Cells returns the handles of every live cell.
func (w *World) Cells() []graph.NodeHandle { return w.cellGraph.NodeHandles() }

// Cell returns the cell at h. Panics if h is stale.
func (w *World) Cell(h graph.NodeHandle) *cell.Cell { return w.cellGraph.Node(h) }

// Bonds returns the handles of every live bond.
func (w *World) Bonds() []graph.EdgeHandle { return w.cellGraph.EdgeHandles() }

// Bond returns the bond at h. Panics if h is stale.
func (w *World) Bond(h graph.EdgeHandle) bond.Bond { return w.cellGraph.Edge(h) }

// GussetCount returns the number of live angle gussets.
func (w *World) GussetCount() int { return w.cellGraph.MetaEdgeCount() }

// ToggleSelectCellAt flips the Selected flag of whichever cell's circle
// contains pos, if any. Purely informational (for renderers/tests); does
// not affect simulation.
func (w *World) ToggleSelectCellAt(pos quantities.Position) {
	for _, h := range w.cellGraph.NodeHandles() {
		c := w.cellGraph.Node(h)
		d := pos.Minus(c.Center())
		if d.Length().Value <= c.Radius().Value {
			c.Selected = !c.Selected
			return
		}
	}
}

// DebugPrintCells dumps every live cell's handle, position and energy,
// mirroring evo_domain::World::debug_print_cells. A diagnostic aid, not
// part of the simulated state.
func (w *World) DebugPrintCells() {
	for _, h := range w.cellGraph.NodeHandles() {
		c := w.cellGraph.Node(h)
		fmt.Printf("%v: pos=%v energy=%v\n", h, c.Center(), c.Energy)
	}
}

// newChildData is the scratch record for a budding event discovered this
// tick, applied after control-running finishes.
type newChildData struct {
	parent       graph.NodeHandle
	parentSlot   int
	child        *cell.Cell
	donation     quantities.BioEnergy
}

// Tick advances the world by one unit of time:
//  1. apply influences (walls, collisions, bonds, gussets, fields)
//  2. settle bond-delivered energy (claim and zero each bond's slots)
//  3. run every cell's control: cost, budget, execute; collect bond
//     requests
//  4. integrate every cell's motion
//  5. apply structural changes: add budded children, remove broken
//     bonds, remove dead cells (cascading)
//  6. clear every cell's per-tick environment and forces
func (w *World) Tick() {
	w.applyInfluences()
	w.processCellBondEnergy()
	children, brokenBonds := w.runCellControls()
	w.tickCellBodies()
	w.updateCellGraph(children, brokenBonds)
	w.clearCellEnvironments()
}

func (w *World) applyInfluences() {
	view := worldView{w: w}
	for _, inf := range w.influences {
		inf.Apply(view)
	}
}

func (w *World) processCellBondEnergy() {
	for _, eh := range w.cellGraph.EdgeHandles() {
		b := w.cellGraph.Edge(eh)
		n1, n2 := b.Endpoints()
		e1 := b.ClaimEnergyForCell(n1)
		e2 := b.ClaimEnergyForCell(n2)
		w.cellGraph.SetEdge(eh, b)
		if e1.Value != 0 {
			w.cellGraph.Node(n1).ClaimBondEnergy(e1)
		}
		if e2.Value != 0 {
			w.cellGraph.Node(n2).ClaimBondEnergy(e2)
		}
	}
}

func (w *World) runCellControls() ([]newChildData, []graph.EdgeHandle) {
	var children []newChildData
	var brokenBonds []graph.EdgeHandle

	for _, h := range w.cellGraph.NodeHandles() {
		c := w.cellGraph.Node(h)
		c.AfterInfluences()
		bondRequests := c.RunControl()

		for layerIndex, req := range bondRequests {
			if !req.Requested {
				continue
			}
			existingBond, hasBond := c.BondSlot(layerIndex)

			if req.DonationEnergy.Value != 0 {
				if hasBond {
					b := w.cellGraph.Edge(existingBond)
					b.SetEnergyFromCell(h, req.DonationEnergy)
					w.cellGraph.SetEdge(existingBond, b)
				} else if req.RetainBond {
					child := c.Spawn(c.Layers()[layerIndex].Area(), req.BuddingAngle, c.Body.Velocity)
					children = append(children, newChildData{parent: h, parentSlot: layerIndex, child: child, donation: req.DonationEnergy})
				}
			}

			if !req.RetainBond && hasBond {
				brokenBonds = append(brokenBonds, existingBond)
			}
		}
	}

	return children, brokenBonds
}

func (w *World) tickCellBodies() {
	for _, h := range w.cellGraph.NodeHandles() {
		c := w.cellGraph.Node(h)
		c.Body.ExertForcesForOneTick()
		c.Body.MoveForOneTick()
	}
}

func (w *World) updateCellGraph(children []newChildData, brokenBonds []graph.EdgeHandle) {
	for _, nc := range children {
		childHandle := w.cellGraph.AddNode(nc.child)
		childSlot := nc.child.FirstFreeBondSlot()
		if childSlot < 0 {
			childSlot = 0
		}
		bondHandle := w.cellGraph.AddEdge(bond.NewBond(nc.parent, childHandle, nc.parentSlot, childSlot), nc.parentSlot, childSlot)
		b := w.cellGraph.Edge(bondHandle)
		b.SetEnergyFromCell(nc.parent, nc.donation)
		w.cellGraph.SetEdge(bondHandle, b)
	}

	if len(brokenBonds) > 0 {
		sorted := make([]graph.EdgeHandle, len(brokenBonds))
		copy(sorted, brokenBonds)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
		w.cellGraph.RemoveEdges(sorted)
	}

	var dead []graph.NodeHandle
	for _, h := range w.cellGraph.NodeHandles() {
		if !w.cellGraph.Node(h).IsAlive() {
			dead = append(dead, h)
		}
	}
	if len(dead) > 0 {
		w.cellGraph.RemoveNodes(dead)
	}
}

func (w *World) clearCellEnvironments() {
	for _, h := range w.cellGraph.NodeHandles() {
		c := w.cellGraph.Node(h)
		c.Environment.Clear()
		c.Body.ClearForces()
	}
}
