package shape

import (
	stdmath "math"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

// Sphere is a full sphere of the given radius, centered at Center in world
// space (the teacher's scene/primitives.go generated a triangulated
// UV-sphere for rasterization; the path tracer needs exact ray-quadric
// intersection instead, so this is an analytic shape rather than a mesh).
type Sphere struct {
	Center math.Vec3
	Radius float32
}

func NewSphere(center math.Vec3, radius float32) *Sphere {
	return &Sphere{Center: center, Radius: radius}
}

func (s *Sphere) Bounds() math.Bounds3 {
	r := math.Vec3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return math.Bounds3{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

func (s *Sphere) Area() float32 {
	return 4 * stdmath.Pi * s.Radius * s.Radius
}

func (s *Sphere) quadratic(ray math.Ray) (t0, t1 float64, ok bool) {
	oc := ray.Origin.Sub(s.Center)
	a := float64(ray.Direction.Dot(ray.Direction))
	b := 2 * float64(oc.Dot(ray.Direction))
	c := float64(oc.Dot(oc)) - float64(s.Radius)*float64(s.Radius)
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, false
	}
	sq := stdmath.Sqrt(disc)
	q := -0.5 * (b + sq)
	if b < 0 {
		q = -0.5 * (b - sq)
	}
	t0, t1 = q/a, c/q
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}

func (s *Sphere) Intersect(ray math.Ray) (*core.Interaction, float32, bool) {
	t0, t1, ok := s.quadratic(ray)
	if !ok {
		return nil, 0, false
	}
	tHit := t0
	if tHit <= 1e-4 || tHit >= float64(ray.TMax) {
		tHit = t1
		if tHit <= 1e-4 || tHit >= float64(ray.TMax) {
			return nil, 0, false
		}
	}
	p := ray.At(float32(tHit))
	n := p.Sub(s.Center).Normalize()
	it := s.fillInteraction(p, n)
	it.T = float32(tHit)
	return it, float32(tHit), true
}

func (s *Sphere) IntersectP(ray math.Ray) bool {
	t0, t1, ok := s.quadratic(ray)
	if !ok {
		return false
	}
	if t0 > 1e-4 && t0 < float64(ray.TMax) {
		return true
	}
	return t1 > 1e-4 && t1 < float64(ray.TMax)
}

func (s *Sphere) fillInteraction(p, n math.Vec3) *core.Interaction {
	// Tangent frame from the azimuthal parameterization; dpdu points along
	// increasing longitude, dpdv along increasing latitude.
	phi := stdmath.Atan2(float64(n.Z), float64(n.X))
	dpdu := math.Vec3{X: float32(-stdmath.Sin(phi)), Y: 0, Z: float32(stdmath.Cos(phi))}
	dpdv := n.Cross(dpdu)
	u := float32((phi + stdmath.Pi) / (2 * stdmath.Pi))
	v := float32(stdmath.Acos(clampf(float64(n.Y), -1, 1)) / stdmath.Pi)
	return &core.Interaction{
		Point: p,
		Ng:    n,
		Ns:    n,
		Dpdu:  dpdu,
		Dpdv:  dpdv,
		UV:    math.Vec2{X: u, Y: v},
	}
}

func (s *Sphere) Sample(u1, u2 float64) (*core.Interaction, float64) {
	dir := uniformSampleSphere(u1, u2)
	p := s.Center.Add(dir.Mul(s.Radius))
	it := s.fillInteraction(p, dir)
	return it, 1.0 / float64(s.Area())
}

// SampleFrom samples a direction subtending the sphere's visible cone from
// ref, following the standard cone-sampling construction so that nearby
// points get a low-variance solid-angle pdf instead of the naive
// area-to-solid-angle conversion (grounded on the Sphere::sample(ref,u)
// contract the spec's MIS invariants (§8) require for area lights).
func (s *Sphere) SampleFrom(ref math.Vec3, u1, u2 float64) (*core.Interaction, float64, bool) {
	dc := float64(s.Center.Sub(ref).Length())
	if dc <= float64(s.Radius) {
		// ref is inside the sphere: fall back to uniform area sampling.
		it, areaPdf := s.Sample(u1, u2)
		pdf := solidAnglePdfFromArea(areaPdf, ref, it)
		if pdf == 0 {
			return nil, 0, false
		}
		return it, pdf, true
	}

	sinThetaMax2 := float64(s.Radius) * float64(s.Radius) / (dc * dc)
	cosThetaMax := stdmath.Sqrt(stdmath.Max(0, 1-sinThetaMax2))
	cosTheta := 1 - u1*(1-cosThetaMax)
	sinTheta2 := 1 - cosTheta*cosTheta
	phi := 2 * stdmath.Pi * u2

	ds := dc * cosTheta - stdmath.Sqrt(stdmath.Max(0, float64(s.Radius)*float64(s.Radius)-dc*dc*sinTheta2))
	cosAlpha := (dc*dc + float64(s.Radius)*float64(s.Radius) - ds*ds) / (2 * dc * float64(s.Radius))
	sinAlpha := stdmath.Sqrt(stdmath.Max(0, 1-cosAlpha*cosAlpha))

	wcz := s.Center.Sub(ref).Normalize()
	wcx, wcy := coordinateSystem(wcz)
	nWorld := sphericalDirection(sinAlpha, cosAlpha, phi, wcx, wcy, wcz).Negate()
	pWorld := s.Center.Add(nWorld.Negate().Mul(s.Radius))

	it := s.fillInteraction(pWorld, nWorld.Negate())
	pdf := 1.0 / (2 * stdmath.Pi * (1 - cosThetaMax))
	return it, pdf, true
}

func (s *Sphere) PdfFrom(ref, wi math.Vec3) float64 {
	dc2 := float64(s.Center.Sub(ref).LengthSqr())
	if dc2 <= float64(s.Radius)*float64(s.Radius) {
		return 0 // ref inside sphere: caller should use area-based pdf
	}
	sinThetaMax2 := float64(s.Radius) * float64(s.Radius) / dc2
	cosThetaMax := stdmath.Sqrt(stdmath.Max(0, 1-sinThetaMax2))
	return 1.0 / (2 * stdmath.Pi * (1 - cosThetaMax))
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func uniformSampleSphere(u1, u2 float64) math.Vec3 {
	z := 1 - 2*u1
	r := stdmath.Sqrt(stdmath.Max(0, 1-z*z))
	phi := 2 * stdmath.Pi * u2
	return math.Vec3{X: float32(r * stdmath.Cos(phi)), Y: float32(r * stdmath.Sin(phi)), Z: float32(z)}
}

func coordinateSystem(n math.Vec3) (math.Vec3, math.Vec3) {
	var t math.Vec3
	if stdmath.Abs(float64(n.X)) > stdmath.Abs(float64(n.Y)) {
		t = math.Vec3{X: -n.Z, Y: 0, Z: n.X}.Normalize()
	} else {
		t = math.Vec3{X: 0, Y: n.Z, Z: -n.Y}.Normalize()
	}
	b := n.Cross(t)
	return t, b
}

func sphericalDirection(sinTheta, cosTheta, phi float64, x, y, z math.Vec3) math.Vec3 {
	xv := x.Mul(float32(sinTheta * stdmath.Cos(phi)))
	yv := y.Mul(float32(sinTheta * stdmath.Sin(phi)))
	zv := z.Mul(float32(cosTheta))
	return xv.Add(yv).Add(zv)
}
