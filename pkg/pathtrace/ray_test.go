package pathtrace

import (
	"testing"

	"github.com/taigrr/raytracer/pkg/math3d"
	"github.com/taigrr/raytracer/pkg/scene"
)

func unitTriangle() scene.Triangle {
	return scene.Triangle{V: [3]scene.Vertex{
		{Position: math3d.V3(-1, -1, 0), Normal: math3d.V3(0, 0, 1)},
		{Position: math3d.V3(1, -1, 0), Normal: math3d.V3(0, 0, 1)},
		{Position: math3d.V3(0, 1, 0), Normal: math3d.V3(0, 0, 1)},
	}}
}

func TestIntersectTriangleHitsCenter(t *testing.T) {
	tri := unitTriangle()
	ray := Ray{Origin: math3d.V3(0, -0.3, 5), Direction: math3d.V3(0, 0, -1)}

	hit := IntersectTriangle(ray, tri)
	if !hit.HasHit {
		t.Fatal("expected ray through triangle interior to hit")
	}
	if hit.Distance <= 0 {
		t.Errorf("distance should be positive, got %v", hit.Distance)
	}
}

func TestIntersectTriangleMissesOutside(t *testing.T) {
	tri := unitTriangle()
	ray := Ray{Origin: math3d.V3(10, 10, 5), Direction: math3d.V3(0, 0, -1)}

	hit := IntersectTriangle(ray, tri)
	if hit.HasHit {
		t.Error("expected ray well outside triangle bounds to miss")
	}
}

func TestIntersectTriangleMissesParallel(t *testing.T) {
	tri := unitTriangle()
	ray := Ray{Origin: math3d.V3(0, 0, 5), Direction: math3d.V3(0, 1, 0)}

	hit := IntersectTriangle(ray, tri)
	if hit.HasHit {
		t.Error("expected ray parallel to triangle's plane to miss")
	}
}

func TestIntersectTriangleMissesBehindOrigin(t *testing.T) {
	tri := unitTriangle()
	ray := Ray{Origin: math3d.V3(0, -0.3, -5), Direction: math3d.V3(0, 0, -1)}

	hit := IntersectTriangle(ray, tri)
	if hit.HasHit {
		t.Error("expected triangle behind the ray origin to miss")
	}
}

func TestIntersectAABBHitsThroughCenter(t *testing.T) {
	node := scene.Node{BoundsMin: math3d.V3(-1, -1, -1), BoundsMax: math3d.V3(1, 1, 1)}
	ray := Ray{Origin: math3d.V3(0, 0, 5), Direction: math3d.V3(0, 0, -1)}
	if !IntersectAABB(ray, node) {
		t.Error("expected ray through box center to hit")
	}
}

func TestIntersectAABBMissesAside(t *testing.T) {
	node := scene.Node{BoundsMin: math3d.V3(-1, -1, -1), BoundsMax: math3d.V3(1, 1, 1)}
	ray := Ray{Origin: math3d.V3(10, 10, 5), Direction: math3d.V3(0, 0, -1)}
	if IntersectAABB(ray, node) {
		t.Error("expected ray well away from box to miss")
	}
}

func TestTraverseFindsClosestOfTwoTriangles(t *testing.T) {
	near := unitTriangle()
	for i := range near.V {
		near.V[i].Position.Z = 2
	}
	near.MaterialID = 1

	far := unitTriangle()
	far.MaterialID = 2

	s := &scene.Scene{Triangles: []scene.Triangle{far, near}}
	buildTrivialBVH(s)

	ray := Ray{Origin: math3d.V3(0, -0.3, 10), Direction: math3d.V3(0, 0, -1)}
	hit := Traverse(ray, s)

	if !hit.HasHit {
		t.Fatal("expected a hit")
	}
	if hit.MaterialID != 1 {
		t.Errorf("expected closest (near) triangle's material id 1, got %d", hit.MaterialID)
	}
}

// buildTrivialBVH wraps every triangle in a single root leaf node, enough
// to exercise Traverse without depending on pkg/bvh.
func buildTrivialBVH(s *scene.Scene) {
	root := scene.Node{
		BoundsMin: math3d.V3(-1e6, -1e6, -1e6),
		BoundsMax: math3d.V3(1e6, 1e6, 1e6),
		NumTris:   len(s.Triangles),
	}
	s.Nodes = []scene.Node{root}
}
