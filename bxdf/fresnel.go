package bxdf

import (
	stdmath "math"

	"github.com/rendercore/pathtracer/core"
)

// Fresnel is a tagged union over dielectric, conductor, and no-op variants
// (spec §4.3 "Fresnel variants").
type Fresnel interface {
	Evaluate(cosThetaI float64) core.Spectrum
}

// FresnelNoOp always returns full reflectance; used by materials that want
// an unweighted specular term.
type FresnelNoOp struct{}

func (FresnelNoOp) Evaluate(float64) core.Spectrum { return core.SpectrumOne }

// FresnelDielectric implements the closed-form dielectric Fresnel
// reflectance, including total internal reflection.
type FresnelDielectric struct {
	EtaI, EtaT float64
}

func NewFresnelDielectric(etaI, etaT float64) *FresnelDielectric {
	return &FresnelDielectric{EtaI: etaI, EtaT: etaT}
}

func (f *FresnelDielectric) Evaluate(cosThetaI float64) core.Spectrum {
	r := frDielectric(cosThetaI, f.EtaI, f.EtaT)
	return core.SpectrumFromConstant(r)
}

// frDielectric is the scalar dielectric Fresnel term, symmetric under
// swapping (etaI,cosThetaI) with (etaT,cosThetaT) per spec §8's Fresnel
// symmetry invariant.
func frDielectric(cosThetaI, etaI, etaT float64) float64 {
	cosThetaI = clamp(cosThetaI, -1, 1)
	if cosThetaI < 0 {
		etaI, etaT = etaT, etaI
		cosThetaI = -cosThetaI
	}

	sinThetaI := stdmath.Sqrt(maxf(0, 1-cosThetaI*cosThetaI))
	sinThetaT := etaI / etaT * sinThetaI
	if sinThetaT >= 1 {
		return 1 // total internal reflection
	}
	cosThetaT := stdmath.Sqrt(maxf(0, 1-sinThetaT*sinThetaT))

	rParl := ((etaT * cosThetaI) - (etaI * cosThetaT)) / ((etaT * cosThetaI) + (etaI * cosThetaT))
	rPerp := ((etaI * cosThetaI) - (etaT * cosThetaT)) / ((etaI * cosThetaI) + (etaT * cosThetaT))
	return (rParl*rParl + rPerp*rPerp) / 2
}

// FresnelConductor implements the (eta, kappa) complex-IOR reflectance per
// RGB channel.
type FresnelConductor struct {
	EtaI, Eta, K core.Spectrum
}

func NewFresnelConductor(etaI, eta, k core.Spectrum) *FresnelConductor {
	return &FresnelConductor{EtaI: etaI, Eta: eta, K: k}
}

func (f *FresnelConductor) Evaluate(cosThetaI float64) core.Spectrum {
	cosThetaI = clamp(absf64(cosThetaI), 0, 1)
	var r core.Spectrum
	for i := 0; i < core.NumSpectrumChannels; i++ {
		r[i] = frConductor(cosThetaI, f.EtaI[i], f.Eta[i], f.K[i])
	}
	return r
}

func frConductor(cosThetaI, etaI, eta, k float64) float64 {
	eta = eta / etaI
	k = k / etaI
	cos2 := cosThetaI * cosThetaI
	sin2 := 1 - cos2
	eta2 := eta * eta
	k2 := k * k

	t0 := eta2 - k2 - sin2
	a2plusb2 := stdmath.Sqrt(maxf(0, t0*t0+4*eta2*k2))
	t1 := a2plusb2 + cos2
	a := stdmath.Sqrt(maxf(0, 0.5*(a2plusb2+t0)))
	t2 := 2 * a * cosThetaI
	rs := (t1 - t2) / (t1 + t2)

	t3 := cos2*a2plusb2 + sin2*sin2
	t4 := t2 * sin2
	rp := rs * (t3 - t4) / (t3 + t4)

	return 0.5 * (rp + rs)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
