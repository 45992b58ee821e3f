// Package bvh builds a binned surface-area-heuristic bounding volume
// hierarchy in place over a scene's triangle slice.
package bvh

import (
	"math"

	"github.com/taigrr/raytracer/pkg/math3d"
	"github.com/taigrr/raytracer/pkg/scene"
)

const numBins = 8

// Stats summarizes a completed build, for logging.
type Stats struct {
	TotalNodes  int
	LeafNodes   int
	AvgLeafTris float64
	MinLeafTris int
	MaxLeafTris int
}

// Build partitions s.Triangles in place and populates s.Nodes with a binned-
// SAH hierarchy rooted at index 0. It mutates triangle order; any indices
// held elsewhere into s.Triangles are invalidated by a call to Build.
func Build(s *scene.Scene) Stats {
	s.Nodes = s.Nodes[:0]

	root := emptyNode()
	for _, tri := range s.Triangles {
		growByTri(&root, tri)
	}
	root.NumTris = len(s.Triangles)
	s.Nodes = append(s.Nodes, root)

	splitNode(0, s)

	return computeStats(s)
}

func emptyNode() scene.Node {
	return scene.Node{
		BoundsMin: math3d.V3(math.MaxFloat64, math.MaxFloat64, math.MaxFloat64),
		BoundsMax: math3d.V3(-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64),
	}
}

func growByTri(n *scene.Node, tri scene.Triangle) {
	for _, v := range tri.V {
		n.BoundsMin = n.BoundsMin.Min(v.Position)
		n.BoundsMax = n.BoundsMax.Max(v.Position)
	}
}

func extent(n scene.Node) math3d.Vec3 {
	return n.BoundsMax.Sub(n.BoundsMin)
}

// surfaceArea is proportional to, but not equal to, the true surface area
// (it omits the factor of 2): the relative comparisons the SAH split search
// performs are unaffected by a constant scale, so the shortcut is harmless.
func surfaceArea(n scene.Node) float64 {
	e := extent(n)
	return e.X*e.Z + e.X*e.Y + e.Z*e.Y
}

func axisOf(v math3d.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func splitNode(index int, s *scene.Scene) {
	usedNodes := len(s.Nodes)
	node := s.Nodes[index]

	parentCost := float64(node.NumTris) * surfaceArea(node)

	bestAxis := 0
	bestPos := 0.0
	bestCost := math.MaxFloat64

	ext := extent(node)
	for axis := 0; axis < 3; axis++ {
		scale := axisOf(ext, axis) / float64(numBins)
		for i := 0; i < numBins; i++ {
			splitPos := axisOf(node.BoundsMin, axis) + float64(i)*scale
			cost := evaluateSAH(s, node, axis, splitPos)
			if cost < bestCost {
				bestAxis = axis
				bestPos = splitPos
				bestCost = cost
			}
		}
	}

	if bestCost >= parentCost {
		return
	}

	i := node.FirstTriID
	j := i + node.NumTris - 1
	for i <= j {
		if axisOf(s.Triangles[i].Centroid(), bestAxis) < bestPos {
			i++
		} else {
			s.Triangles[i], s.Triangles[j] = s.Triangles[j], s.Triangles[i]
			j--
		}
	}

	aCount := i - node.FirstTriID
	if aCount == 0 || aCount == node.NumTris {
		return
	}

	a := emptyNode()
	b := emptyNode()
	a.FirstTriID = node.FirstTriID
	a.NumTris = aCount
	b.FirstTriID = i
	b.NumTris = node.NumTris - aCount

	node.ChildrenID = usedNodes
	node.NumTris = 0
	s.Nodes[index] = node

	for k := 0; k < a.NumTris; k++ {
		growByTri(&a, s.Triangles[a.FirstTriID+k])
	}
	for k := 0; k < b.NumTris; k++ {
		growByTri(&b, s.Triangles[b.FirstTriID+k])
	}

	s.Nodes = append(s.Nodes, a, b)

	splitNode(usedNodes, s)
	splitNode(usedNodes+1, s)
}

// evaluateSAH returns the binned split cost at splitPos along axis, or
// math.MaxFloat64 when the resulting cost is not positive or is NaN, so such
// a split is never selected as best. An empty side yields NaN: its inverted
// bounds have infinite area, and 0 times infinity is NaN.
func evaluateSAH(s *scene.Scene, node scene.Node, axis int, splitPos float64) float64 {
	left := emptyNode()
	right := emptyNode()

	for k := 0; k < node.NumTris; k++ {
		tri := s.Triangles[node.FirstTriID+k]
		if axisOf(tri.Centroid(), axis) < splitPos {
			growByTri(&left, tri)
			left.NumTris++
		} else {
			growByTri(&right, tri)
			right.NumTris++
		}
	}

	cost := float64(left.NumTris)*surfaceArea(left) + float64(right.NumTris)*surfaceArea(right)
	if cost > 0 {
		return cost
	}
	return math.MaxFloat64
}

func computeStats(s *scene.Scene) Stats {
	var st Stats
	st.TotalNodes = len(s.Nodes)
	st.MinLeafTris = math.MaxInt32
	for _, n := range s.Nodes {
		if n.ChildrenID == 0 {
			st.LeafNodes++
			if n.NumTris > st.MaxLeafTris {
				st.MaxLeafTris = n.NumTris
			}
			if n.NumTris < st.MinLeafTris {
				st.MinLeafTris = n.NumTris
			}
			st.AvgLeafTris += float64(n.NumTris)
		}
	}
	if st.LeafNodes > 0 {
		st.AvgLeafTris /= float64(st.LeafNodes)
	}
	return st
}
