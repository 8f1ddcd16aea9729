package math

// Ray is a semi-infinite line, origin + t*direction, with a mutable tMax
// that intersection testing narrows as closer hits are found.
//
// Invariant: Direction is normalized and non-zero at construction; TMax>0.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	TMax      float32
}

func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize(), TMax: MaxFloat}
}

func NewRayTo(origin, direction Vec3, tMax float32) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize(), TMax: tMax}
}

func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// InvDirection precomputes the reciprocal of each direction component,
// clamping near-zero components so division never traps (spec §4.2).
func (r Ray) InvDirection() Vec3 {
	return Vec3{X: safeInv(r.Direction.X), Y: safeInv(r.Direction.Y), Z: safeInv(r.Direction.Z)}
}

func (r Ray) NegDir() [3]bool {
	inv := r.InvDirection()
	return [3]bool{inv.X < 0, inv.Y < 0, inv.Z < 0}
}

const zeroDirClamp = 1e20

func safeInv(d float32) float32 {
	if d == 0 {
		return zeroDirClamp
	}
	return 1.0 / d
}

// MaxFloat is the default, effectively-unbounded TMax for a fresh ray.
const MaxFloat = 3.4e38
