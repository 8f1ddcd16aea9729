// Package bxdf implements the leaf scattering functions of spec §4.3: each
// BxDF evaluates or samples reflectance in the BSDF-local shading frame,
// where the surface normal is (0,0,1).
package bxdf

import (
	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

// Type is a bitmask over {Reflection,Transmission} x {Diffuse,Glossy,Specular}.
type Type int

const (
	Reflection Type = 1 << iota
	Transmission
	Diffuse
	Glossy
	Specular

	All = Reflection | Transmission | Diffuse | Glossy | Specular
)

func (t Type) Has(flags Type) bool {
	return t&flags == flags
}

func (t Type) MatchesFlags(flags Type) bool {
	return t&flags == t
}

func (t Type) IsSpecular() bool {
	return t.Has(Specular)
}

// BxDF is a single scattering term in the local shading frame (spec §4.3).
type BxDF interface {
	Type() Type
	// F is the non-delta reflectance density; returns zero for specular
	// BxDFs (their response only appears via Sample).
	F(wo, wi math.Vec3) core.Spectrum
	// Sample draws wi given wo and a 2D uniform sample, returning the
	// scattered direction, its solid-angle pdf, the sampled Type, and f.
	Sample(wo math.Vec3, u1, u2 float64) (wi math.Vec3, pdf float64, sampledType Type, f core.Spectrum)
	Pdf(wo, wi math.Vec3) float64
}

// CosTheta and friends operate on local-frame directions where Z is the
// shading normal.
func CosTheta(w math.Vec3) float64    { return float64(w.Z) }
func AbsCosTheta(w math.Vec3) float64 { return absf64(float64(w.Z)) }
func Cos2Theta(w math.Vec3) float64   { return float64(w.Z) * float64(w.Z) }
func Sin2Theta(w math.Vec3) float64 {
	v := 1 - Cos2Theta(w)
	if v < 0 {
		return 0
	}
	return v
}

func SameHemisphere(a, b math.Vec3) bool {
	return a.Z*b.Z > 0
}

func Reflect(wo, n math.Vec3) math.Vec3 {
	return n.Mul(2 * wo.Dot(n)).Sub(wo)
}

// Refract computes the refracted direction of wi about n with relative IOR
// eta = etaI/etaT, returning false on total internal reflection.
func Refract(wi, n math.Vec3, eta float64) (math.Vec3, bool) {
	cosThetaI := float64(wi.Dot(n))
	sin2ThetaI := absf64(1 - cosThetaI*cosThetaI)
	sin2ThetaT := eta * eta * sin2ThetaI
	if sin2ThetaT >= 1 {
		return math.Vec3{}, false
	}
	cosThetaT := sqrt(1 - sin2ThetaT)
	wt := wi.Negate().Mul(float32(eta)).Add(n.Mul(float32(eta*cosThetaI - cosThetaT)))
	return wt, true
}

// CosineSampleHemisphere is the diffuse default sample strategy (spec §4.3
// "Diffuse default: cosine-weighted hemisphere sample").
func CosineSampleHemisphere(u1, u2 float64) math.Vec3 {
	d := concentricSampleDisk(u1, u2)
	z := sqrt(maxf(0, 1-d.X*d.X-d.Y*d.Y))
	return math.Vec3{X: float32(d.X), Y: float32(d.Y), Z: float32(z)}
}

type disk2 struct{ X, Y float64 }

func concentricSampleDisk(u1, u2 float64) disk2 {
	ox, oy := 2*u1-1, 2*u2-1
	if ox == 0 && oy == 0 {
		return disk2{}
	}
	var theta, r float64
	if absf64(ox) > absf64(oy) {
		r = ox
		theta = (piOver4) * (oy / ox)
	} else {
		r = oy
		theta = piOver2 - (piOver4)*(ox/oy)
	}
	return disk2{X: r * cos(theta), Y: r * sin(theta)}
}
