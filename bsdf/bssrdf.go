package bsdf

import (
	stdmath "math"

	"github.com/rendercore/pathtracer/bxdf"
	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

// SeparableBSSRDF implements the separable dipole subsurface model: the
// spatial term Sp(pi) factors from the directional term Sw(wi) (spec §4.3
// "BSSRDF separable dipole subsurface scattering").
//
// Sr uses the classical Jensen dipole diffusion profile rather than the
// tabulated beam-diffusion fit (simplification recorded in the design
// ledger): Rd(r) has a closed form in sigmaA/sigmaS'/eta, so no table
// construction or Catmull-Rom interpolation is needed to evaluate it.
type SeparableBSSRDF struct {
	Po             *core.Interaction
	Eta            float64
	Ns, Ss, Ts     math.Vec3
	SigmaAbsorb    core.Spectrum
	SigmaScatter   core.Spectrum // reduced scattering coefficient sigma_s'

	a, sigmaTr, zr, zv core.Spectrum
}

// NewSeparableBSSRDF builds the dipole from absorption/reduced-scattering
// coefficients, grounded on sources/subsurface/dipole.cc's Dipole material.
func NewSeparableBSSRDF(po *core.Interaction, eta float64, sigmaA, sigmaSPrime core.Spectrum) *SeparableBSSRDF {
	ss := po.Dpdu
	if ss.LengthSqr() < 1e-12 {
		ss, _ = coordinateSystem(po.Ns)
	} else {
		ss = ss.Normalize()
	}
	b := &SeparableBSSRDF{
		Po:           po,
		Eta:          eta,
		Ns:           po.Ns,
		Ss:           ss,
		Ts:           po.Ns.Cross(ss),
		SigmaAbsorb:  sigmaA,
		SigmaScatter: sigmaSPrime,
	}
	b.precompute()
	return b
}

// Fdr is the internal diffuse Fresnel reflectance fit (Egan & Hilgeman),
// used to derive the dipole's boundary condition constant A.
func fdr(eta float64) float64 {
	if eta < 1 {
		return -0.4399 + 0.7099/eta - 0.3319/(eta*eta) + 0.0636/(eta*eta*eta)
	}
	return -1.4399/(eta*eta) + 0.7099/eta + 0.6681 + 0.0636*eta
}

func (b *SeparableBSSRDF) precompute() {
	A := (1 + fdr(b.Eta)) / (1 - fdr(b.Eta))
	for i := 0; i < core.NumSpectrumChannels; i++ {
		sigmaAPrime := b.SigmaAbsorb[i]
		sigmaSPrime := b.SigmaScatter[i]
		sigmaTPrime := sigmaAPrime + sigmaSPrime
		if sigmaTPrime <= 0 {
			continue
		}
		alphaPrime := sigmaSPrime / sigmaTPrime
		sigmaTr := stdmath.Sqrt(3 * sigmaAPrime * sigmaTPrime)
		zr := 1 / sigmaTPrime
		zv := zr * (1 + 4.0/3.0*A)
		b.a[i] = alphaPrime
		b.sigmaTr[i] = sigmaTr
		b.zr[i] = zr
		b.zv[i] = zv
	}
}

// Sr evaluates the radial diffusion reflectance profile via the classical
// dipole (two virtual point sources at depths zr, -zv).
func (b *SeparableBSSRDF) Sr(r float64) core.Spectrum {
	if r < 1e-6 {
		r = 1e-6
	}
	var out core.Spectrum
	for i := 0; i < core.NumSpectrumChannels; i++ {
		if b.sigmaTr[i] == 0 {
			continue
		}
		dr := stdmath.Sqrt(r*r + b.zr[i]*b.zr[i])
		dv := stdmath.Sqrt(r*r + b.zv[i]*b.zv[i])
		cr := b.zr[i] * (b.sigmaTr[i]*dr + 1) * stdmath.Exp(-b.sigmaTr[i]*dr) / (dr * dr * dr)
		cv := b.zv[i] * (b.sigmaTr[i]*dv + 1) * stdmath.Exp(-b.sigmaTr[i]*dv) / (dv * dv * dv)
		out[i] = b.a[i] / (4 * stdmath.Pi) * (cr + cv)
	}
	return out
}

// Sp is the spatial term between the outgoing point po and an incident
// sample point pi.
func (b *SeparableBSSRDF) Sp(pi *core.Interaction) core.Spectrum {
	r := float64(b.Po.Point.Distance(pi.Point))
	return b.Sr(r)
}

// Sw is the directional term: a normalized Fresnel transmittance through
// the boundary (spec §4.3), divided by c*pi with c = 1 - 2*FM1(1/eta)
// (the first Fresnel moment) so the profile integrates to one over the
// hemisphere.
func (b *SeparableBSSRDF) Sw(w math.Vec3) core.Spectrum {
	c := 1 - 2*fresnelMoment1(1/b.Eta)
	fr := bxdf.NewFresnelDielectric(1, b.Eta).Evaluate(float64(w.Dot(b.Ns)))
	ft := 1 - fr[0]
	return core.SpectrumFromConstant(ft / (c * stdmath.Pi))
}

// S combines the spatial and directional terms and the (1-Fr) term at the
// outgoing point, implementing core.BSSRDF.
func (b *SeparableBSSRDF) S(pi *core.Interaction, wi math.Vec3) core.Spectrum {
	fr := bxdf.NewFresnelDielectric(1, b.Eta).Evaluate(float64(b.Po.Wo.Dot(b.Po.Ns)))
	ft := 1 - fr[0]
	return b.Sp(pi).Mul(b.Sw(wi)).Scale(ft)
}

// SampleSp draws a probing disk radius/channel for BSSRDF importance
// sampling, mixing between the three axes with probabilities
// {0.5,0.25,0.25} (spec §4.3): the projection axis (Ns) gets half the mass
// since most nearby geometry lies close to the tangent plane.
func (b *SeparableBSSRDF) SampleSp(u1 float64, u2, u3 float64) (axis int, radius float64, channel int) {
	channel = int(u3 * float64(core.NumSpectrumChannels))
	if channel >= core.NumSpectrumChannels {
		channel = core.NumSpectrumChannels - 1
	}
	switch {
	case u1 < 0.5:
		axis = 2 // Ns
		u1 *= 2
	case u1 < 0.75:
		axis = 0 // Ss
		u1 = (u1 - 0.5) * 4
	default:
		axis = 1 // Ts
		u1 = (u1 - 0.75) * 4
	}
	sigmaTr := b.sigmaTr[channel]
	if sigmaTr == 0 {
		return axis, 0, channel
	}
	radius = -stdmath.Log(1-u1) / sigmaTr
	return axis, radius, channel
}

// PdfSp is the combined sampling density over the three axis strategies,
// used as the denominator when accepting a probe-ray intersection.
func (b *SeparableBSSRDF) PdfSp(pi *core.Interaction) float64 {
	d := pi.Point.Sub(b.Po.Point)
	dLocal := math.Vec3{X: d.Dot(b.Ss), Y: d.Dot(b.Ts), Z: d.Dot(b.Ns)}
	nLocal := math.Vec3{X: pi.Ns.Dot(b.Ss), Y: pi.Ns.Dot(b.Ts), Z: pi.Ns.Dot(b.Ns)}

	rProj := [3]float64{
		stdmath.Sqrt(float64(dLocal.Y*dLocal.Y + dLocal.Z*dLocal.Z)),
		stdmath.Sqrt(float64(dLocal.Z*dLocal.Z + dLocal.X*dLocal.X)),
		stdmath.Sqrt(float64(dLocal.X*dLocal.X + dLocal.Y*dLocal.Y)),
	}
	axisProb := [3]float64{0.25, 0.25, 0.5}
	axisNormal := [3]float32{absf32(nLocal.X), absf32(nLocal.Y), absf32(nLocal.Z)}

	pdf := 0.0
	for axis := 0; axis < 3; axis++ {
		for ch := 0; ch < core.NumSpectrumChannels; ch++ {
			if b.sigmaTr[ch] == 0 {
				continue
			}
			pdfR := pdfSr(b.sigmaTr[ch], rProj[axis])
			pdf += pdfR * float64(axisNormal[axis]) * axisProb[axis] / float64(core.NumSpectrumChannels)
		}
	}
	return pdf
}

func pdfSr(sigmaTr, r float64) float64 {
	if r < 1e-6 {
		r = 1e-6
	}
	return sigmaTr * stdmath.Exp(-sigmaTr*r) / (2 * stdmath.Pi * r)
}

// fresnelMoment1 is a polynomial fit to the first moment of the Fresnel
// reflectance, used to normalize Sw so the BSSRDF conserves energy.
func fresnelMoment1(eta float64) float64 {
	eta2 := eta * eta
	eta3 := eta2 * eta
	eta4 := eta3 * eta
	eta5 := eta4 * eta
	if eta < 1 {
		return 0.45966 - 1.73965*eta + 3.37668*eta2 - 3.904945*eta3 + 2.49277*eta4 - 0.68441*eta5
	}
	return -4.61686 + 11.1136*eta - 10.4646*eta2 + 5.11455*eta3 - 1.27198*eta4 + 0.12746*eta5
}

