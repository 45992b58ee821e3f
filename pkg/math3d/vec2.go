package math3d

// Vec2 represents a 2D vector, used primarily for texture coordinates.
type Vec2 struct {
	U, V float64
}

// V2 creates a new Vec2.
func V2(u, v float64) Vec2 {
	return Vec2{u, v}
}

// Zero2 returns the zero vector.
func Zero2() Vec2 {
	return Vec2{}
}

// Add returns the vector sum a + b.
func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.U + b.U, a.V + b.V}
}

// Sub returns the vector difference a - b.
func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.U - b.U, a.V - b.V}
}

// Scale returns the scalar product a * s.
func (a Vec2) Scale(s float64) Vec2 {
	return Vec2{a.U * s, a.V * s}
}

// Lerp returns the linear interpolation between a and b by t.
func (a Vec2) Lerp(b Vec2, t float64) Vec2 {
	return Vec2{
		a.U + (b.U-a.U)*t,
		a.V + (b.V-a.V)*t,
	}
}
