// Package shape implements the bounded geometric primitives of spec §2
// component A: bounded shapes with ray intersection and area sampling.
// Shapes know nothing about materials or lights; Primitive composition
// happens in the scene package (spec §3 ownership).
package shape

import (
	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

// Shape is the geometric contract every primitive type implements.
type Shape interface {
	Bounds() math.Bounds3
	// Intersect returns the interaction at the closest hit within
	// (0, ray.TMax) and the parametric distance. The ray is passed by
	// value, so the caller's TMax is unchanged; the accelerators narrow
	// their own copy after each hit.
	Intersect(ray math.Ray) (*core.Interaction, float32, bool)
	IntersectP(ray math.Ray) bool
	Area() float32
	// Sample draws a point on the surface with respect to area measure,
	// returning the sampled interaction and its area-measure pdf.
	Sample(u1, u2 float64) (*core.Interaction, float64)
	// SampleFrom draws a direction toward the shape as seen from ref,
	// returning the interaction, solid-angle pdf, and whether a sample
	// was produced (degenerate configurations return false).
	SampleFrom(ref math.Vec3, u1, u2 float64) (*core.Interaction, float64, bool)
	// PdfFrom is the solid-angle density of SampleFrom's distribution for
	// a direction wi that is known to hit the shape.
	PdfFrom(ref, wi math.Vec3) float64
}

// solidAnglePdfFromArea converts an area-measure pdf at interaction it to a
// solid-angle measure pdf as seen from ref, the common conversion used by
// every SampleFrom (pbrt-style shape sampling).
func solidAnglePdfFromArea(areaPdf float64, ref math.Vec3, it *core.Interaction) float64 {
	toRef := ref.Sub(it.Point)
	distSqr := float64(toRef.LengthSqr())
	if distSqr == 0 {
		return 0
	}
	wi := toRef.Normalize()
	cosTheta := float32(0)
	if nrm := it.Ng.LengthSqr(); nrm > 0 {
		cosTheta = absf32(wi.Dot(it.Ng))
	}
	if cosTheta < 1e-7 {
		return 0
	}
	return areaPdf * distSqr / float64(cosTheta)
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
