package pathtrace

import (
	"math"

	"github.com/taigrr/raytracer/pkg/math3d"
	"github.com/taigrr/raytracer/pkg/scene"
)

// Params configures a single trace.
type Params struct {
	MaxBounces int
	DebugBVH   bool
}

// schlickFresnel approximates the reflectance fraction at the given
// cosine of the angle between the normal and viewer, for a surface with
// relative index of refraction ior.
func schlickFresnel(nDotV, ior float64) float64 {
	f0 := math.Pow(ior-1, 2) / math.Pow(ior+1, 2)
	return f0 + (1-f0)*math.Pow(1-nDotV, 5)
}

// Trace bounces ray through the scene up to params.MaxBounces times,
// accumulating reflected and transmitted dielectric light, and returns the
// resulting pixel color. ray is mutated in place to the last bounce
// segment.
//
// In debug mode it instead returns a false-color BVH traversal tint with a
// single call; MaxBounces then only has to be positive (with MaxBounces <= 0
// no traversal happens and the result is zero).
func Trace(ray *Ray, params Params, s *scene.Scene, rng *math3d.RNG) math3d.Vec3 {
	rayColor := math3d.V3(1, 1, 1)
	incomingLight := math3d.Zero3()
	emittedLight := math3d.Zero3()

	prevHitPoint := ray.Origin
	transmittedDistance := 0.0

	currBounces := 0
	for currBounces < params.MaxBounces {
		if params.DebugBVH {
			DebugBVH(*ray, s, 0, &incomingLight)
			return incomingLight
		}

		hit := Traverse(*ray, s)

		if hit.HasHit {
			material := s.Materials[hit.MaterialID]
			var ior float64
			if hit.FrontFace {
				ior = 1.0 / material.IOR
				prevHitPoint = hit.Point
			} else {
				ior = material.IOR
				transmittedDistance = hit.Point.Distance(prevHitPoint)
			}

			var newDir math3d.Vec3
			if schlickFresnel(hit.Normal.Dot(ray.Direction.Negate()), ior) > rng.Float64() {
				newDir = ray.Direction.Reflect(hit.Normal)
				rayColor = rayColor.Mul(material.SpecularTint)
			} else {
				newDir = ray.Direction.Refract(hit.Normal, ior)
				if material.BaseColorTexID != -1 {
					rayColor = rayColor.Mul(rgb8ToVec3(s.Textures[material.BaseColorTexID].ColorAt(hit.UV)))
				} else {
					rayColor = rayColor.Mul(material.BaseColor)
				}
			}

			if material.EmissionTexID != -1 {
				emittedLight = emittedLight.Add(rgb8ToVec3(s.Textures[material.EmissionTexID].ColorAt(hit.UV)))
			} else {
				emittedLight = emittedLight.Add(material.Emission)
			}

			absorption := math3d.V3(
				math.Exp(-0.1*transmittedDistance),
				math.Exp(-3.0*transmittedDistance),
				math.Exp(-5.0*transmittedDistance),
			)
			rayColor = rayColor.Mul(absorption)
			incomingLight = incomingLight.Add(emittedLight.Mul(rayColor))

			ray.Origin = hit.Point.Add(newDir.Scale(rayHitOffset))
			ray.Direction = newDir

			currBounces++
		} else {
			skyColor := math3d.V3(1, 1, 1)
			skyStrength := math3d.V3(1, 1, 1)

			incomingLight = incomingLight.Add(skyColor.Mul(skyStrength).Mul(rayColor))

			break
		}
	}

	if currBounces == 0 {
		return incomingLight
	}
	return incomingLight.Scale(1.0 / float64(currBounces))
}

func rgb8ToVec3(c scene.RGB8) math3d.Vec3 {
	return math3d.V3(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0)
}

// LinearToGamma applies sqrt gamma encoding per channel, leaving negative
// or zero channels at zero rather than producing NaN.
func LinearToGamma(c math3d.Vec3) math3d.Vec3 {
	gamma := math3d.Zero3()
	if c.X > 0 {
		gamma.X = math.Sqrt(c.X)
	}
	if c.Y > 0 {
		gamma.Y = math.Sqrt(c.Y)
	}
	if c.Z > 0 {
		gamma.Z = math.Sqrt(c.Z)
	}
	return gamma
}

// ToRGB8 converts a linear-ish (already gamma-encoded) color in roughly
// [0,1] to clamped 8-bit channels, flooring rather than rounding.
func ToRGB8(c math3d.Vec3) scene.RGB8 {
	return scene.RGB8{
		R: clampFloorByte(c.X),
		G: clampFloorByte(c.Y),
		B: clampFloorByte(c.Z),
	}
}

func clampFloorByte(v float64) uint8 {
	v = math.Floor(v * 255.0)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
