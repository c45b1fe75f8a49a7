package export

import "github.com/Faultbox/pmx-export/pkg/math"

// remap converts from the scene's Z-up space to PMX's Y-up space. The 0.2
// in w becomes a uniform x5 scale after the perspective divide.
var remap = math.FromRows(
	math.Vec4{1, 0, 0, 0},
	math.Vec4{0, 0, 1, 0},
	math.Vec4{0, 1, 0, 0},
	math.Vec4{0, 0, 0, 0.2},
)

// remapNormal is remap without the scale in w.
var remapNormal = math.FromRows(
	math.Vec4{1, 0, 0, 0},
	math.Vec4{0, 0, 1, 0},
	math.Vec4{0, 1, 0, 0},
	math.Vec4{0, 0, 0, 1},
)

// Normalizer maps object-space geometry of one object into output space.
type Normalizer struct {
	m    math.Mat4
	nm   math.Mat4
	flip bool
}

// NewNormalizer returns the normalizer for an object with the given world
// transform.
func NewNormalizer(world math.Mat4) Normalizer {
	return Normalizer{
		m:    remap.Mul(world),
		nm:   remapNormal.Mul(world),
		flip: world.Determinant3() < 0,
	}
}

// Position transforms a point: remap * world * [p, 1], divided by w.
func (n Normalizer) Position(p math.Vec3) math.Vec3 {
	return n.m.TransformPoint(p)
}

// Normal transforms a normal as the point [v, 1] through world and the axis
// swap, drops w and renormalizes. The object's translation therefore tilts
// its normals, and non-uniform scale is not compensated.
func (n Normalizer) Normal(v math.Vec3) math.Vec3 {
	r := n.nm.MulVec4(math.Vec4{v.X, v.Y, v.Z, 1})
	return math.Vec3{X: r[0], Y: r[1], Z: r[2]}.Normalize()
}

// FlipsWinding reports whether the world transform mirrors geometry.
func (n Normalizer) FlipsWinding() bool {
	return n.flip
}

// Winding returns the triangle corners in output order, swapping the
// second and third corner when the transform mirrors.
func (n Normalizer) Winding(c [3]int) [3]int {
	if n.flip {
		return [3]int{c[0], c[2], c[1]}
	}
	return c
}
