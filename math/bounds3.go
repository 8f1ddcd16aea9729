package math

import stdmath "math"

// Bounds3 is an axis-aligned bounding box with pMin <= pMax componentwise.
// An empty box is represented by inverted extents (pMin > pMax on every
// axis) so that Merge and Union behave correctly without a separate
// "empty" flag.
type Bounds3 struct {
	Min, Max Vec3
}

// EmptyBounds3 returns the canonical empty bounds: inverted extents that
// lose to any real bounds under Merge.
func EmptyBounds3() Bounds3 {
	inf := float32(stdmath.MaxFloat32)
	return Bounds3{
		Min: Vec3{X: inf, Y: inf, Z: inf},
		Max: Vec3{X: -inf, Y: -inf, Z: -inf},
	}
}

func NewBounds3(p Vec3) Bounds3 {
	return Bounds3{Min: p, Max: p}
}

func (b Bounds3) Merge(other Bounds3) Bounds3 {
	return Bounds3{
		Min: Vec3{X: fmin(b.Min.X, other.Min.X), Y: fmin(b.Min.Y, other.Min.Y), Z: fmin(b.Min.Z, other.Min.Z)},
		Max: Vec3{X: fmax(b.Max.X, other.Max.X), Y: fmax(b.Max.Y, other.Max.Y), Z: fmax(b.Max.Z, other.Max.Z)},
	}
}

func (b Bounds3) UnionPoint(p Vec3) Bounds3 {
	return b.Merge(NewBounds3(p))
}

func (b Bounds3) Diagonal() Vec3 {
	return b.Max.Sub(b.Min)
}

// MaxExtentAxis returns the axis (0=X,1=Y,2=Z) along which the box is widest.
func (b Bounds3) MaxExtentAxis() int {
	d := b.Diagonal()
	if d.X > d.Y && d.X > d.Z {
		return 0
	}
	if d.Y > d.Z {
		return 1
	}
	return 2
}

func (b Bounds3) Axis(i int) float32 {
	switch i {
	case 0:
		return 0
	case 1:
		return 1
	default:
		return 2
	}
}

func (b Bounds3) Component(p Vec3, axis int) float32 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// SurfaceArea returns the total surface area of the box; zero for a
// degenerate or empty box.
func (b Bounds3) SurfaceArea() float32 {
	d := b.Diagonal()
	if d.X < 0 || d.Y < 0 || d.Z < 0 {
		return 0
	}
	return 2 * (d.X*d.Y + d.X*d.Z + d.Y*d.Z)
}

func (b Bounds3) Centroid() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Offset returns p's position within the box, normalized to [0,1] per axis.
// Used by the SAH bucket assignment.
func (b Bounds3) Offset(p Vec3) Vec3 {
	o := p.Sub(b.Min)
	if b.Max.X > b.Min.X {
		o.X /= b.Max.X - b.Min.X
	}
	if b.Max.Y > b.Min.Y {
		o.Y /= b.Max.Y - b.Min.Y
	}
	if b.Max.Z > b.Min.Z {
		o.Z /= b.Max.Z - b.Min.Z
	}
	return o
}

// IntersectP tests the ray against the box using the slab method, with a
// precomputed inverse direction. Returns the entry/exit parametric distances
// and whether the ray hits within [0, tMax].
func (b Bounds3) IntersectP(origin Vec3, invDir Vec3, negDir [3]bool, tMax float32) (tEnter, tExit float32, hit bool) {
	t0, t1 := float32(0), tMax

	tx0 := (b.Min.X - origin.X) * invDir.X
	tx1 := (b.Max.X - origin.X) * invDir.X
	if negDir[0] {
		tx0, tx1 = tx1, tx0
	}
	if tx0 > t0 {
		t0 = tx0
	}
	if tx1 < t1 {
		t1 = tx1
	}
	if t0 > t1 {
		return 0, 0, false
	}

	ty0 := (b.Min.Y - origin.Y) * invDir.Y
	ty1 := (b.Max.Y - origin.Y) * invDir.Y
	if negDir[1] {
		ty0, ty1 = ty1, ty0
	}
	if ty0 > t0 {
		t0 = ty0
	}
	if ty1 < t1 {
		t1 = ty1
	}
	if t0 > t1 {
		return 0, 0, false
	}

	tz0 := (b.Min.Z - origin.Z) * invDir.Z
	tz1 := (b.Max.Z - origin.Z) * invDir.Z
	if negDir[2] {
		tz0, tz1 = tz1, tz0
	}
	if tz0 > t0 {
		t0 = tz0
	}
	if tz1 < t1 {
		t1 = tz1
	}
	if t0 > t1 {
		return 0, 0, false
	}

	return t0, t1, true
}

func fmin(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func fmax(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
