package scene

import "github.com/taigrr/raytracer/pkg/math3d"

// RGB8 is an 8-bit-per-channel color triple, the unit textures and the
// gamma-encoded framebuffer both traffic in.
type RGB8 struct {
	R, G, B uint8
}

// Texture holds a row-major, top-left-origin 8-bit RGB image. It does no
// filtering and wraps UV coordinates with the idiosyncratic indexing the
// reference renderer uses (see ColorAt) rather than a clean modulo.
type Texture struct {
	Width, Height int
	Pixels        []RGB8
}

// ColorAt samples the texture at UV coordinates with no filtering. The
// wrap behavior intentionally matches the reference renderer: a linear
// index past the end is mapped to (index-1) mod (len-1) rather than
// index mod len — which makes the very last pixel in the backing array
// unreachable by wrap-around. A negative index is raised into range by
// repeatedly adding (len-1). Preserved for parity rather than "fixed"
// (see design notes).
func (t Texture) ColorAt(uv math3d.Vec2) RGB8 {
	if len(t.Pixels) == 0 {
		return RGB8{}
	}
	i := int(uv.U * float64(t.Width))
	j := int(uv.V * float64(t.Height))
	index := i + j*t.Width

	span := len(t.Pixels) - 1
	if span <= 0 {
		return t.Pixels[0]
	}
	if index > span {
		index = (index - 1) % span
	}
	for index < 0 {
		index += span
	}
	return t.Pixels[index]
}
