package bxdf

import (
	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

// LambertianReflection is a perfectly diffuse reflector: f = albedo/pi.
type LambertianReflection struct {
	Albedo core.Spectrum
}

func NewLambertianReflection(albedo core.Spectrum) *LambertianReflection {
	return &LambertianReflection{Albedo: albedo}
}

func (l *LambertianReflection) Type() Type { return Reflection | Diffuse }

func (l *LambertianReflection) F(wo, wi math.Vec3) core.Spectrum {
	if !SameHemisphere(wo, wi) {
		return core.SpectrumZero
	}
	return l.Albedo.Scale(invPi)
}

func (l *LambertianReflection) Sample(wo math.Vec3, u1, u2 float64) (math.Vec3, float64, Type, core.Spectrum) {
	wi := CosineSampleHemisphere(u1, u2)
	if wo.Z < 0 {
		wi.Z = -wi.Z
	}
	return wi, l.Pdf(wo, wi), l.Type(), l.F(wo, wi)
}

func (l *LambertianReflection) Pdf(wo, wi math.Vec3) float64 {
	if !SameHemisphere(wo, wi) {
		return 0
	}
	return AbsCosTheta(wi) * invPi
}

// LambertianTransmission is a perfectly diffuse transmitter (used for thin
// translucent materials): f = albedo/pi over the opposite hemisphere.
type LambertianTransmission struct {
	Albedo core.Spectrum
}

func NewLambertianTransmission(albedo core.Spectrum) *LambertianTransmission {
	return &LambertianTransmission{Albedo: albedo}
}

func (l *LambertianTransmission) Type() Type { return Transmission | Diffuse }

func (l *LambertianTransmission) F(wo, wi math.Vec3) core.Spectrum {
	if SameHemisphere(wo, wi) {
		return core.SpectrumZero
	}
	return l.Albedo.Scale(invPi)
}

func (l *LambertianTransmission) Sample(wo math.Vec3, u1, u2 float64) (math.Vec3, float64, Type, core.Spectrum) {
	wi := CosineSampleHemisphere(u1, u2)
	if wo.Z > 0 {
		wi.Z = -wi.Z
	}
	return wi, l.Pdf(wo, wi), l.Type(), l.F(wo, wi)
}

func (l *LambertianTransmission) Pdf(wo, wi math.Vec3) float64 {
	if SameHemisphere(wo, wi) {
		return 0
	}
	return AbsCosTheta(wi) * invPi
}
