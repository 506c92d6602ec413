// Package overlap computes circle-circle and circle-wall incursions and
// converts them to restoring forces via a swappable linear spring law.
package overlap

import (
	"math"
	"sort"

	"github.com/evosim/cellengine/quantities"
)

// Circle is anything with a center and a radius, the minimal shape the
// overlap package needs to reason about.
type Circle interface {
	Center() quantities.Position
	Radius() quantities.Length
}

// Overlap records an incursion discovered between two circles, or between
// a circle and a wall. Magnitude is the incursion depth along Incursion's
// direction.
type Overlap struct {
	Incursion quantities.Displacement
	Magnitude quantities.Length
}

// CirclesOverlap reports whether two circles overlap and, if so, the
// incursion vector pointing from c1 toward c2 scaled by the penetration
// depth.
func CirclesOverlap(c1, c2 Circle) (Overlap, bool) {
	delta := c2.Center().Minus(c1.Center())
	dist := delta.Length()
	sumRadii := c1.Radius().Value + c2.Radius().Value
	if dist.Value >= sumRadii {
		return Overlap{}, false
	}
	depth := sumRadii - dist.Value
	var direction quantities.Displacement
	if dist.Value > 0 {
		direction = delta.Scale(1.0 / dist.Value)
	} else {
		direction = quantities.Displacement{X: 1, Y: 0}
	}
	incursion := direction.Scale(depth)
	return Overlap{Incursion: incursion, Magnitude: quantities.Length{Value: depth}}, true
}

// WallOverlap computes, per axis, the incursion of a circle through the
// rectangular boundary [minCorner, maxCorner]. The returned Displacement
// has a nonzero X when the circle crosses the left or right wall and a
// nonzero Y when it crosses the top or bottom wall (both may be nonzero
// at a corner).
func WallOverlap(c Circle, minCorner, maxCorner quantities.Position) (quantities.Displacement, bool) {
	center := c.Center()
	r := c.Radius().Value

	var incursion quantities.Displacement

	if lo := minCorner.X - (center.X - r); lo > 0 {
		incursion.X = lo
	} else if hi := maxCorner.X - (center.X + r); hi < 0 {
		incursion.X = hi
	}

	if lo := minCorner.Y - (center.Y - r); lo > 0 {
		incursion.Y = lo
	} else if hi := maxCorner.Y - (center.Y + r); hi < 0 {
		incursion.Y = hi
	}

	if incursion.X == 0 && incursion.Y == 0 {
		return quantities.ZeroDisplacement, false
	}
	return incursion, true
}

// LinearSpring converts an incursion vector into a restoring force:
// force = -k * incursion. It is a value type so tests and influences can
// swap the spring constant freely.
type LinearSpring struct {
	K float64
}

// Force returns the spring force corresponding to incursion.
func (s LinearSpring) Force(incursion quantities.Displacement) quantities.Force {
	return incursion.Scale(-s.K).ToForce()
}

// IndexedCircle pairs a Circle with the index identifying it, so
// FindOverlappingPairs can report which original elements overlapped.
type IndexedCircle struct {
	Index  int
	Circle Circle
}

// OverlappingPair is a discovered pair of overlapping circles, identified
// by their original indices (Index1 < Index2).
type OverlappingPair struct {
	Index1, Index2 int
	Overlap        Overlap
}

// FindOverlappingPairs discovers every overlapping pair among circles in
// O(n log n + k) time: it sorts by x-coordinate of the leftmost point
// (center.X - radius), then sweeps, skipping candidates whose leftmost
// point is more than 2*maxRadius to the right of the current circle's
// center (no circle more than maxRadius in radius could reach that far).
func FindOverlappingPairs(circles []IndexedCircle) []OverlappingPair {
	n := len(circles)
	if n < 2 {
		return nil
	}

	maxRadius := 0.0
	for _, ic := range circles {
		if r := ic.Circle.Radius().Value; r > maxRadius {
			maxRadius = r
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	leftEdge := func(i int) float64 {
		c := circles[i].Circle
		return c.Center().X - c.Radius().Value
	}
	sort.Slice(order, func(i, j int) bool {
		return leftEdge(order[i]) < leftEdge(order[j])
	})

	var pairs []OverlappingPair
	gate := 2 * maxRadius
	for i := 0; i < n; i++ {
		ci := circles[order[i]]
		cx := ci.Circle.Center().X
		for j := i + 1; j < n; j++ {
			cj := circles[order[j]]
			if leftEdge(order[j]) > cx+gate {
				break
			}
			ov, ok := CirclesOverlap(ci.Circle, cj.Circle)
			if !ok {
				continue
			}
			i1, i2 := ci.Index, cj.Index
			if i1 > i2 {
				i1, i2 = i2, i1
				ov.Incursion = ov.Incursion.Negate()
			}
			pairs = append(pairs, OverlappingPair{Index1: i1, Index2: i2, Overlap: ov})
		}
	}
	return pairs
}

// Sqr is re-exported for callers building incursion magnitudes without
// importing math directly.
func Sqr(x float64) float64 {
	return math.Pow(x, 2)
}
