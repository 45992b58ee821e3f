package bvh

import (
	"testing"

	"github.com/taigrr/raytracer/pkg/math3d"
	"github.com/taigrr/raytracer/pkg/scene"
)

func triAt(x float64) scene.Triangle {
	return scene.Triangle{V: [3]scene.Vertex{
		{Position: math3d.V3(x, 0, 0)},
		{Position: math3d.V3(x+1, 0, 0)},
		{Position: math3d.V3(x, 1, 0)},
	}}
}

func TestBuildSingleTriangleIsOneLeaf(t *testing.T) {
	s := &scene.Scene{Triangles: []scene.Triangle{triAt(0)}}
	stats := Build(s)

	if stats.TotalNodes != 1 {
		t.Fatalf("expected 1 node for a single triangle, got %d", stats.TotalNodes)
	}
	if s.Nodes[0].NumTris != 1 {
		t.Errorf("root should contain the only triangle, got NumTris=%d", s.Nodes[0].NumTris)
	}
}

func TestBuildSplitsWidelySpacedTriangles(t *testing.T) {
	var tris []scene.Triangle
	for i := 0; i < 20; i++ {
		tris = append(tris, triAt(float64(i)*10))
	}
	s := &scene.Scene{Triangles: tris}
	stats := Build(s)

	if stats.TotalNodes <= 1 {
		t.Fatalf("widely spaced triangles should produce a split hierarchy, got %d nodes", stats.TotalNodes)
	}
	if stats.LeafNodes < 2 {
		t.Errorf("expected multiple leaves, got %d", stats.LeafNodes)
	}

	total := 0
	for _, n := range s.Nodes {
		if n.NumTris > 0 {
			total += n.NumTris
		}
	}
	if total != len(tris) {
		t.Errorf("leaf triangle counts sum to %d, want %d", total, len(tris))
	}
}

func TestBuildPreservesAllTriangles(t *testing.T) {
	var tris []scene.Triangle
	for i := 0; i < 50; i++ {
		tris = append(tris, triAt(float64(i)))
	}
	s := &scene.Scene{Triangles: tris}
	Build(s)

	if len(s.Triangles) != 50 {
		t.Fatalf("Build must not drop or add triangles, got %d, want 50", len(s.Triangles))
	}
}

func TestBuildRootBoundsContainAllTriangles(t *testing.T) {
	var tris []scene.Triangle
	for i := 0; i < 10; i++ {
		tris = append(tris, triAt(float64(i)*5))
	}
	s := &scene.Scene{Triangles: tris}
	Build(s)

	root := s.Nodes[0]
	for _, tri := range s.Triangles {
		for _, v := range tri.V {
			p := v.Position
			if p.X < root.BoundsMin.X-1e-9 || p.X > root.BoundsMax.X+1e-9 {
				t.Errorf("vertex %v escapes root bounds [%v, %v]", p, root.BoundsMin, root.BoundsMax)
			}
		}
	}
}
