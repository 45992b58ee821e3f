package pathtrace

import "github.com/taigrr/raytracer/pkg/math3d"

// Camera is a simple look-at camera: position, target, and up vector. It
// holds no projection matrix; the driver derives a ray direction per pixel
// directly from these three vectors each sample.
type Camera struct {
	Position math3d.Vec3
	Target   math3d.Vec3
	Up       math3d.Vec3
}

// NewCamera returns a camera looking from pos toward target, with up used
// to disambiguate roll.
func NewCamera(pos, target, up math3d.Vec3) Camera {
	return Camera{Position: pos, Target: target, Up: up}
}

// basis returns the camera's forward/right/up unit vectors. Right is
// derived from the world (or supplied) up crossed with forward rather than
// the reverse order, which is what gives this engine its left-handed feel;
// up is then re-derived from forward and right so it stays orthogonal.
func (c Camera) basis() (forward, right, up math3d.Vec3) {
	forward = c.Target.Sub(c.Position).Normalize()
	right = c.Up.Cross(forward).Normalize()
	up = forward.Cross(right)
	return forward, right, up
}

// RayThroughScreen returns the ray cast from the camera through a point in
// normalized screen space, where screenX/screenY are the aspect-corrected
// NDC coordinates the driver computes per pixel.
func (c Camera) RayThroughScreen(screenX, screenY float64) Ray {
	forward, right, up := c.basis()
	direction := forward.Add(right.Scale(screenX)).Add(up.Scale(screenY)).Normalize()
	return Ray{Origin: c.Position, Direction: direction}
}
