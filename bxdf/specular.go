package bxdf

import (
	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

// SpecularReflection pairs a delta reflection direction with a Fresnel
// term. F/Pdf return zero everywhere (delta distributions have no density
// in a continuous measure); the response only appears through Sample.
type SpecularReflection struct {
	R       core.Spectrum
	Fresnel Fresnel
}

func NewSpecularReflection(r core.Spectrum, fr Fresnel) *SpecularReflection {
	return &SpecularReflection{R: r, Fresnel: fr}
}

func (s *SpecularReflection) Type() Type { return Reflection | Specular }

func (s *SpecularReflection) F(wo, wi math.Vec3) core.Spectrum { return core.SpectrumZero }
func (s *SpecularReflection) Pdf(wo, wi math.Vec3) float64     { return 0 }

func (s *SpecularReflection) Sample(wo math.Vec3, u1, u2 float64) (math.Vec3, float64, Type, core.Spectrum) {
	wi := math.Vec3{X: -wo.X, Y: -wo.Y, Z: wo.Z}
	fr := s.Fresnel.Evaluate(CosTheta(wi))
	f := fr.Mul(s.R).Scale(1 / AbsCosTheta(wi))
	return wi, 1, s.Type(), f
}

// SpecularTransmission is a delta transmission direction with dielectric
// Fresnel weighting and the (ηI/ηT)² radiance-scaling factor (spec §4.3).
type SpecularTransmission struct {
	T          core.Spectrum
	EtaA, EtaB float64 // outside, inside index of refraction
	Fresnel    *FresnelDielectric
	Mode       TransportMode
}

// TransportMode distinguishes radiance transport (camera rays) from
// importance transport (light rays, needed for the 1/eta^2 scaling in
// bidirectional integrators, spec §4.4's BDPT).
type TransportMode int

const (
	Radiance TransportMode = iota
	Importance
)

func NewSpecularTransmission(t core.Spectrum, etaA, etaB float64, mode TransportMode) *SpecularTransmission {
	return &SpecularTransmission{T: t, EtaA: etaA, EtaB: etaB, Fresnel: NewFresnelDielectric(etaA, etaB), Mode: mode}
}

func (s *SpecularTransmission) Type() Type { return Transmission | Specular }

func (s *SpecularTransmission) F(wo, wi math.Vec3) core.Spectrum { return core.SpectrumZero }
func (s *SpecularTransmission) Pdf(wo, wi math.Vec3) float64     { return 0 }

func (s *SpecularTransmission) Sample(wo math.Vec3, u1, u2 float64) (math.Vec3, float64, Type, core.Spectrum) {
	entering := CosTheta(wo) > 0
	etaI, etaT := s.EtaA, s.EtaB
	if !entering {
		etaI, etaT = etaT, etaI
	}

	n := math.Vec3{X: 0, Y: 0, Z: 1}
	if !entering {
		n = n.Negate()
	}
	wi, ok := Refract(wo, n, etaI/etaT)
	if !ok {
		return math.Vec3{}, 0, s.Type(), core.SpectrumZero
	}

	ft := s.T.Mul(core.SpectrumOne.Sub(s.Fresnel.Evaluate(CosTheta(wi))))
	if s.Mode == Radiance {
		ft = ft.Scale((etaI * etaI) / (etaT * etaT))
	}
	return wi, 1, s.Type(), ft.Scale(1 / AbsCosTheta(wi))
}

// FresnelSpecular probabilistically picks reflect-vs-transmit for a single
// BxDF slot, weighted by the dielectric Fresnel term (spec §4.3
// "Fresnel-weighted dielectric (single BxDF probabilistically chooses
// between reflect and transmit)").
type FresnelSpecular struct {
	R, T       core.Spectrum
	EtaA, EtaB float64
	Mode       TransportMode
}

func NewFresnelSpecular(r, t core.Spectrum, etaA, etaB float64, mode TransportMode) *FresnelSpecular {
	return &FresnelSpecular{R: r, T: t, EtaA: etaA, EtaB: etaB, Mode: mode}
}

func (f *FresnelSpecular) Type() Type { return Reflection | Transmission | Specular }

func (f *FresnelSpecular) F(wo, wi math.Vec3) core.Spectrum { return core.SpectrumZero }
func (f *FresnelSpecular) Pdf(wo, wi math.Vec3) float64     { return 0 }

func (f *FresnelSpecular) Sample(wo math.Vec3, u1, u2 float64) (math.Vec3, float64, Type, core.Spectrum) {
	fr := frDielectric(CosTheta(wo), f.EtaA, f.EtaB)
	if u1 < fr {
		wi := math.Vec3{X: -wo.X, Y: -wo.Y, Z: wo.Z}
		pdf := fr
		spec := f.R.Scale(fr / AbsCosTheta(wi))
		return wi, pdf, Reflection | Specular, spec
	}

	entering := CosTheta(wo) > 0
	etaI, etaT := f.EtaA, f.EtaB
	if !entering {
		etaI, etaT = etaT, etaI
	}
	n := math.Vec3{X: 0, Y: 0, Z: 1}
	if !entering {
		n = n.Negate()
	}
	wi, ok := Refract(wo, n, etaI/etaT)
	if !ok {
		return math.Vec3{}, 0, Transmission | Specular, core.SpectrumZero
	}
	ft := f.T.Scale(1 - fr)
	if f.Mode == Radiance {
		ft = ft.Scale((etaI * etaI) / (etaT * etaT))
	}
	pdf := 1 - fr
	return wi, pdf, Transmission | Specular, ft.Scale(1 / AbsCosTheta(wi))
}
