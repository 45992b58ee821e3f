// Package pathtrace implements the Monte Carlo bounce loop: ray-triangle
// and ray-BVH intersection, the dielectric integrator, and the parallel
// pixel-sampling driver that turns a Scene into an image.
package pathtrace

import (
	"math"

	"github.com/taigrr/raytracer/pkg/math3d"
	"github.com/taigrr/raytracer/pkg/scene"
)

// rayHitOffset both nudges a bounced ray's origin off the surface it left
// and pads AABB slab tests against grazing misses from floating point
// error.
const rayHitOffset = 1e-4

// Ray is a half-line in model space.
type Ray struct {
	Origin    math3d.Vec3
	Direction math3d.Vec3
}

// Hit records the result of a ray-triangle intersection.
type Hit struct {
	HasHit     bool
	Point      math3d.Vec3
	Normal     math3d.Vec3
	Distance   float64
	UV         math3d.Vec2
	MaterialID int
	FrontFace  bool
}

func missHit() Hit {
	return Hit{Distance: math.MaxFloat64}
}

// IntersectTriangle tests ray against tri using the Möller-Trumbore
// algorithm. The returned Hit's HasHit is false for a parallel ray, a
// behind-origin intersection, or a point outside the triangle; all other
// fields are still populated off of the (possibly meaningless) solved t/u/v
// so callers must check HasHit before using them.
func IntersectTriangle(ray Ray, tri scene.Triangle) Hit {
	v1 := tri.V[0].Position
	v2 := tri.V[1].Position
	v3 := tri.V[2].Position

	edge1 := v2.Sub(v1)
	edge2 := v3.Sub(v1)

	rayCrossE2 := ray.Direction.Cross(edge2)
	det := edge1.Dot(rayCrossE2)

	invDet := 1.0 / det
	s := ray.Origin.Sub(v1)
	u := invDet * s.Dot(rayCrossE2)

	sCrossE1 := s.Cross(edge1)
	v := invDet * ray.Direction.Dot(sCrossE1)

	t := invDet * edge2.Dot(sCrossE1)

	frontFace := det > 0.0

	hitPoint := ray.Origin.Add(ray.Direction.Scale(t))

	n0 := tri.V[0].Normal
	n1 := tri.V[1].Normal
	n2 := tri.V[2].Normal
	normal := n0.Scale(1 - u - v).Add(n1.Scale(u)).Add(n2.Scale(v))
	if !frontFace {
		normal = normal.Negate()
	}

	t0 := tri.V[0].TexCoord
	t1 := tri.V[1].TexCoord
	t2 := tri.V[2].TexCoord
	uv := t0.Scale(1 - u - v).Add(t1.Scale(u)).Add(t2.Scale(v))

	hasHit := t > rayHitOffset &&
		det != 0 &&
		!(u < 0 || u > 1) &&
		!(v < 0 || u+v > 1)

	return Hit{
		HasHit:     hasHit,
		Point:      hitPoint,
		Normal:     normal,
		Distance:   t,
		UV:         uv,
		MaterialID: tri.MaterialID,
		FrontFace:  frontFace,
	}
}

// IntersectAABB is a robust slab test against a BVH node's bounds, padded
// by rayHitOffset on both sides so that rays grazing a shared face between
// sibling nodes are not spuriously rejected.
func IntersectAABB(ray Ray, node scene.Node) bool {
	tMinX := (node.BoundsMin.X - ray.Origin.X) / ray.Direction.X
	tMinY := (node.BoundsMin.Y - ray.Origin.Y) / ray.Direction.Y
	tMinZ := (node.BoundsMin.Z - ray.Origin.Z) / ray.Direction.Z
	tMaxX := (node.BoundsMax.X - ray.Origin.X) / ray.Direction.X
	tMaxY := (node.BoundsMax.Y - ray.Origin.Y) / ray.Direction.Y
	tMaxZ := (node.BoundsMax.Z - ray.Origin.Z) / ray.Direction.Z

	t1x, t2x := math.Min(tMinX, tMaxX)-rayHitOffset, math.Max(tMinX, tMaxX)+rayHitOffset
	t1y, t2y := math.Min(tMinY, tMaxY)-rayHitOffset, math.Max(tMinY, tMaxY)+rayHitOffset
	t1z, t2z := math.Min(tMinZ, tMaxZ)-rayHitOffset, math.Max(tMinZ, tMaxZ)+rayHitOffset

	tNear := math.Max(math.Max(t1x, t1y), t1z)
	tFar := math.Min(math.Min(t2x, t2y), t2z)

	return tNear < tFar && tFar > 0
}

// Traverse walks the BVH depth-first with an explicit index stack, rather
// than recursion, so a render over a very deep hierarchy cannot overflow
// the goroutine stack. It returns the closest triangle hit, if any.
func Traverse(ray Ray, s *scene.Scene) Hit {
	best := missHit()
	if len(s.Nodes) == 0 {
		return best
	}

	stack := make([]int, 0, 64)
	stack = append(stack, 0)

	for len(stack) > 0 {
		index := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := s.Nodes[index]
		if !IntersectAABB(ray, node) {
			continue
		}

		if node.NumTris > 0 {
			for i := 0; i < node.NumTris; i++ {
				hit := IntersectTriangle(ray, s.Triangles[node.FirstTriID+i])
				if hit.HasHit && hit.Distance < best.Distance {
					best = hit
				}
			}
		} else {
			stack = append(stack, node.ChildrenID, node.ChildrenID+1)
		}
	}

	return best
}

// DebugBVH accumulates a false-color tint describing the BVH traversal a
// ray would take: a touch of red per triangle-dense leaf visited, green per
// sparse leaf, and blue per interior node descended into. It is used for
// visualizing hierarchy balance rather than for shading.
func DebugBVH(ray Ray, s *scene.Scene, index int, color *math3d.Vec3) {
	if index < 0 || index >= len(s.Nodes) {
		return
	}
	node := s.Nodes[index]
	if !IntersectAABB(ray, node) {
		return
	}

	if node.NumTris > 0 {
		if node.NumTris > 4 {
			*color = color.Add(math3d.V3(0.05, 0, 0))
		} else {
			*color = color.Add(math3d.V3(0, 0.05, 0))
		}
		return
	}

	*color = color.Add(math3d.V3(0, 0, 0.005))
	DebugBVH(ray, s, node.ChildrenID, color)
	DebugBVH(ray, s, node.ChildrenID+1, color)
}
