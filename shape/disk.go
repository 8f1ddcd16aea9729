package shape

import (
	stdmath "math"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

// Disk is a flat circular area light emitter shape: a circle of Radius in
// the plane through Center orthogonal to Normal. Used for spec §4.4's area
// lights and simple "ceiling panel" emitters (Cornell-box scenario §8.2).
type Disk struct {
	Center math.Vec3
	Normal math.Vec3
	Radius float32
	tangent, bitangent math.Vec3
}

func NewDisk(center, normal math.Vec3, radius float32) *Disk {
	n := normal.Normalize()
	tx, ty := coordinateSystem(n)
	return &Disk{Center: center, Normal: n, Radius: radius, tangent: tx, bitangent: ty}
}

func (d *Disk) Bounds() math.Bounds3 {
	r := math.Vec3{X: d.Radius, Y: d.Radius, Z: d.Radius}
	// Conservative: a disk's true bounds depend on orientation; padding by
	// radius on every axis keeps the box valid without per-orientation math.
	return math.Bounds3{Min: d.Center.Sub(r), Max: d.Center.Add(r)}
}

func (d *Disk) Area() float32 {
	return stdmath.Pi * d.Radius * d.Radius
}

func (d *Disk) Intersect(ray math.Ray) (*core.Interaction, float32, bool) {
	denom := ray.Direction.Dot(d.Normal)
	if stdmath.Abs(float64(denom)) < 1e-9 {
		return nil, 0, false
	}
	tHit := d.Center.Sub(ray.Origin).Dot(d.Normal) / denom
	if tHit <= 1e-4 || tHit >= ray.TMax {
		return nil, 0, false
	}
	p := ray.At(tHit)
	if p.Sub(d.Center).LengthSqr() > d.Radius*d.Radius {
		return nil, 0, false
	}
	n := d.Normal
	if denom > 0 {
		n = n.Negate()
	}
	it := &core.Interaction{Point: p, Ng: n, Ns: n, Dpdu: d.tangent, Dpdv: d.bitangent, T: tHit}
	return it, tHit, true
}

func (d *Disk) IntersectP(ray math.Ray) bool {
	_, _, ok := d.Intersect(ray)
	return ok
}

func (d *Disk) Sample(u1, u2 float64) (*core.Interaction, float64) {
	r := d.Radius * float32(stdmath.Sqrt(u1))
	theta := 2 * stdmath.Pi * u2
	local := d.tangent.Mul(r * float32(stdmath.Cos(theta))).Add(d.bitangent.Mul(r * float32(stdmath.Sin(theta))))
	p := d.Center.Add(local)
	it := &core.Interaction{Point: p, Ng: d.Normal, Ns: d.Normal}
	area := d.Area()
	if area <= 0 {
		return it, 0
	}
	return it, 1.0 / float64(area)
}

func (d *Disk) SampleFrom(ref math.Vec3, u1, u2 float64) (*core.Interaction, float64, bool) {
	it, areaPdf := d.Sample(u1, u2)
	pdf := solidAnglePdfFromArea(areaPdf, ref, it)
	if pdf <= 0 {
		return nil, 0, false
	}
	return it, pdf, true
}

func (d *Disk) PdfFrom(ref, wi math.Vec3) float64 {
	ray := math.NewRay(ref, wi)
	it, tHit, ok := d.Intersect(ray)
	if !ok {
		return 0
	}
	return solidAnglePdfFromArea(1.0/float64(d.Area()), ref, &core.Interaction{Point: it.Point, Ng: it.Ng, T: tHit})
}
