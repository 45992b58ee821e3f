// Package scene provides the path tracer's data model: baked triangles,
// materials, textures, and the immutable Scene that the BVH builder and
// ray kernel operate on.
package scene

import "github.com/taigrr/raytracer/pkg/math3d"

// Vertex holds per-vertex attributes. Positions are in model space; the
// engine never transforms meshes. Normals may be unit length or not, as
// supplied by the loader, and barycentric interpolation of them does not
// renormalize.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	TexCoord math3d.Vec2
}

// Triangle bakes three vertices by value rather than indexing into a shared
// vertex buffer, trading memory for intersection-time cache friendliness —
// no buffer indirection per hit.
type Triangle struct {
	V          [3]Vertex
	MaterialID int
}

// Centroid returns the arithmetic mean of the triangle's three vertex
// positions. Used only for BVH binning.
func (t Triangle) Centroid() math3d.Vec3 {
	return t.V[0].Position.Add(t.V[1].Position).Add(t.V[2].Position).Scale(1.0 / 3.0)
}

// Material describes a simple dielectric-style surface: a base color (or
// texture), a specular tint used on the reflective branch, an emission
// term, and an index of refraction driving the Fresnel split. Roughness and
// metallic are parsed from MTL files but not consumed by the integrator.
type Material struct {
	Name           string
	BaseColor      math3d.Vec3
	SpecularTint   math3d.Vec3
	Emission       math3d.Vec3
	Transmission   float64
	IOR            float64
	Roughness      float64
	Metallic       float64
	BaseColorTexID int // -1 means none
	EmissionTexID  int // -1 means none
}

// DefaultMaterial returns the material assigned when a scene defines none.
func DefaultMaterial() Material {
	return Material{
		Name:           "default_material",
		BaseColor:      math3d.V3(1, 1, 1),
		SpecularTint:   math3d.V3(1, 1, 1),
		Emission:       math3d.V3(0, 0, 0),
		Transmission:   0,
		IOR:            1.45,
		Roughness:      1,
		Metallic:       0,
		BaseColorTexID: -1,
		EmissionTexID:  -1,
	}
}

// Scene is the ordered, immutable-once-built input to a render: a triangle
// slice (whose order the BVH builder permutes in place), materials,
// textures, and BVH nodes. All cross-references are plain integer indices;
// there are no reference cycles.
type Scene struct {
	Triangles []Triangle
	Materials []Material
	Textures  []Texture
	Nodes     []Node
}

// Node is a BVH node. It is a leaf iff NumTris > 0; otherwise it is
// interior and ChildrenID indexes the left child (right child is
// ChildrenID+1).
type Node struct {
	BoundsMin  math3d.Vec3
	BoundsMax  math3d.Vec3
	ChildrenID int
	FirstTriID int
	NumTris    int
}
