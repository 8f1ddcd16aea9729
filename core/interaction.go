package core

import "github.com/rendercore/pathtracer/math"

// Interaction is the outcome of a successful ray-primitive intersection
// (spec §3 SurfaceInteraction). BSDF/BSSRDF are attached later, once the
// hit primitive's Material has been consulted; their storage is owned by
// the sample's Arena and must not outlive it.
type Interaction struct {
	Point    math.Vec3
	Ng       math.Vec3 // geometric normal
	Ns       math.Vec3 // shading normal
	Dpdu     math.Vec3
	Dpdv     math.Vec3
	UV       math.Vec2
	DuDx, DvDx float64 // screen-space UV differentials
	DuDy, DvDy float64
	Wo       math.Vec3 // outgoing direction, -ray.Direction, in world space
	T        float32   // ray parameter at the hit

	Primitive Primitive
	BSDF      BSDF
	BSSRDF    BSSRDF
}

// IsEntering reports whether the ray entered the surface from the outward
// side, via the sign of dot(ray.d, Ng) (spec §3).
func (it *Interaction) IsEntering(rayDir math.Vec3) bool {
	return rayDir.Dot(it.Ng) < 0
}

// SpawnRay offsets a new ray's origin off the surface along d to avoid
// immediate self-intersection from floating point error.
func (it *Interaction) SpawnRay(d math.Vec3) math.Ray {
	const epsilon = 1e-4
	offsetN := it.Ng
	if d.Dot(it.Ng) < 0 {
		offsetN = offsetN.Negate()
	}
	origin := it.Point.Add(offsetN.Mul(epsilon))
	return math.NewRay(origin, d)
}

// Material populates an Interaction's BSDF (and, for subsurface materials,
// BSSRDF) from within a per-sample Arena (spec §4.3 BSDF composition, §9
// arena ownership).
type Material interface {
	ComputeScatteringFunctions(it *Interaction, arena *Arena, allowMultipleLobes bool)
}

// BSDF is the minimal surface exposed by bsdf.BSDF to packages (core,
// integrator) that must not import the bsdf package directly to avoid an
// import cycle back through materials.
type BSDF interface {
	F(woWorld, wiWorld math.Vec3) Spectrum
	Sample(woWorld math.Vec3, sampler Sampler) (wiWorld math.Vec3, f Spectrum, pdf float64, specular bool, ok bool)
	Pdf(woWorld, wiWorld math.Vec3) float64
	NumComponents() int
}

// BSSRDF is the minimal surface exposed by bsdf.BSSRDF.
type BSSRDF interface {
	S(pi *Interaction, wi math.Vec3) Spectrum
}

// AreaLight is the minimal surface a Primitive exposes for emission
// queries from the hit it produces (spec §4.5 step 2). The full light
// sampling/pdf contract lives on light.Light; this is the subset a
// Primitive needs without creating an import cycle.
type AreaLight interface {
	L(it *Interaction, w math.Vec3) Spectrum
}

// Primitive binds a Shape to a Material and, optionally, an area Light
// (spec §3 "Scene"). Accelerators are built over a slice of Primitive.
type Primitive interface {
	Bounds() math.Bounds3
	Intersect(ray math.Ray) (*Interaction, bool)
	IntersectP(ray math.Ray) bool
	GetMaterial() Material
	GetAreaLight() AreaLight // nil if the primitive does not emit
}
