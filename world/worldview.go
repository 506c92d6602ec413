package world

import (
	"github.com/evosim/cellengine/body"
	"github.com/evosim/cellengine/bond"
	"github.com/evosim/cellengine/cell"
	"github.com/evosim/cellengine/environment"
	"github.com/evosim/cellengine/graph"
	"github.com/evosim/cellengine/influence"
	"github.com/evosim/cellengine/quantities"
)

// cellView adapts *cell.Cell to influence.Cell: the cell's Body and
// Environment are plain fields, but an Influence needs pointer-returning
// accessors it can call through an interface.
type cellView struct {
	c *cell.Cell
}

func (v cellView) Center() quantities.Position           { return v.c.Center() }
func (v cellView) Radius() quantities.Length              { return v.c.Radius() }
func (v cellView) Body() *body.NewtonianBody              { return &v.c.Body }
func (v cellView) Environment() *environment.LocalEnvironment { return &v.c.Environment }

// worldView adapts *World to influence.World for the duration of a single
// Apply call.
type worldView struct {
	w *World
}

func (v worldView) Cells() []influence.Cell {
	handles := v.w.cellGraph.NodeHandles()
	cells := make([]influence.Cell, len(handles))
	for i, h := range handles {
		cells[i] = cellView{c: v.w.cellGraph.Node(h)}
	}
	return cells
}

func (v worldView) MinCorner() quantities.Position { return v.w.minCorner }
func (v worldView) MaxCorner() quantities.Position { return v.w.maxCorner }

func (v worldView) Bonds() []influence.BondView {
	handles := v.w.cellGraph.EdgeHandles()
	views := make([]influence.BondView, len(handles))
	for i, h := range handles {
		b := v.w.cellGraph.Edge(h)
		n1, n2 := b.Endpoints()
		views[i] = influence.BondView{
			Bond:  &b,
			Cell1: cellView{c: v.w.cellGraph.Node(n1)},
			Cell2: cellView{c: v.w.cellGraph.Node(n2)},
		}
	}
	return views
}

func (v worldView) AngleGussets() []influence.GussetView {
	handles := v.w.cellGraph.MetaEdgeHandles()
	views := make([]influence.GussetView, len(handles))
	for i, h := range handles {
		g := v.w.cellGraph.MetaEdge(h)
		bond1Handle, bond2Handle := g.EdgeRefs()
		b1 := v.w.cellGraph.Edge(bond1Handle)
		b2 := v.w.cellGraph.Edge(bond2Handle)
		middleHandle, bond1Far, bond2Far := sharedMiddleNode(b1, b2)
		views[i] = influence.GussetView{
			Gusset:   g,
			Bond1:    &b1,
			Bond2:    &b2,
			Middle:   cellView{c: v.w.cellGraph.Node(middleHandle)},
			Bond1Far: cellView{c: v.w.cellGraph.Node(bond1Far)},
			Bond2Far: cellView{c: v.w.cellGraph.Node(bond2Far)},
		}
	}
	return views
}

// sharedMiddleNode finds the node shared by both bonds (NewAngleGusset
// already validated that exactly one exists) and returns it plus each
// bond's other ("far") endpoint.
func sharedMiddleNode(b1, b2 bond.Bond) (middle, far1, far2 graph.NodeHandle) {
	n1a, n1b := b1.Endpoints()
	n2a, n2b := b2.Endpoints()
	switch {
	case n1a == n2a:
		return n1a, n1b, n2b
	case n1a == n2b:
		return n1a, n1b, n2a
	case n1b == n2a:
		return n1b, n1a, n2b
	default:
		return n1b, n1a, n2a
	}
}
