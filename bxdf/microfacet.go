package bxdf

import (
	stdmath "math"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

// MicrofacetDistribution is a tagged union over Beckmann and GGX
// (Trowbridge-Reitz), each with anisotropic roughness (spec §4.3).
type MicrofacetDistribution interface {
	D(wh math.Vec3) float64
	Lambda(w math.Vec3) float64
	G1(w math.Vec3) float64
	G(wo, wi math.Vec3) float64
	// Sample draws a visible half-vector given wo (Heitz's visible-normal
	// sampling, spec §4.3 "sampleVisibleNormals").
	Sample(wo math.Vec3, u1, u2 float64) math.Vec3
	Pdf(wo, wh math.Vec3) float64
}

func tanTheta(w math.Vec3) float64 {
	s2 := Sin2Theta(w)
	c := CosTheta(w)
	if c == 0 {
		return stdmath.Inf(1)
	}
	return sqrt(s2) / c
}

func tan2Theta(w math.Vec3) float64 {
	t := tanTheta(w)
	return t * t
}

func cosPhi(w math.Vec3) (float64, float64) {
	st := sqrt(Sin2Theta(w))
	if st == 0 {
		return 1, 0
	}
	return clamp(float64(w.X)/st, -1, 1), clamp(float64(w.Y)/st, -1, 1)
}

// Beckmann implements the Beckmann-Spizzichino microfacet distribution.
type Beckmann struct {
	AlphaX, AlphaY float64
}

func NewBeckmann(alphaX, alphaY float64) *Beckmann {
	return &Beckmann{AlphaX: alphaX, AlphaY: alphaY}
}

func (b *Beckmann) D(wh math.Vec3) float64 {
	tan2 := tan2Theta(wh)
	if stdmath.IsInf(tan2, 1) {
		return 0
	}
	cos4 := Cos2Theta(wh) * Cos2Theta(wh)
	cp, sp := cosPhi(wh)
	e := tan2 * (cp*cp/(b.AlphaX*b.AlphaX) + sp*sp/(b.AlphaY*b.AlphaY))
	return stdmath.Exp(-e) / (stdmath.Pi * b.AlphaX * b.AlphaY * cos4)
}

// Lambda uses the erf-based closed-form expansion per spec §4.3.
func (b *Beckmann) Lambda(w math.Vec3) float64 {
	absTan := absf64(tanTheta(w))
	if stdmath.IsInf(absTan, 1) {
		return 0
	}
	cp, sp := cosPhi(w)
	alpha := sqrt(cp*cp*b.AlphaX*b.AlphaX + sp*sp*b.AlphaY*b.AlphaY)
	a := 1 / (alpha * absTan)
	return (erf(a) - 1 + stdmath.Exp(-a*a)/(a*stdmath.Sqrt(stdmath.Pi))) / 2
}

func (b *Beckmann) G1(w math.Vec3) float64   { return 1 / (1 + b.Lambda(w)) }
func (b *Beckmann) G(wo, wi math.Vec3) float64 { return 1 / (1 + b.Lambda(wo) + b.Lambda(wi)) }

func (b *Beckmann) Sample(wo math.Vec3, u1, u2 float64) math.Vec3 {
	return sampleVisibleNormals(wo, b.AlphaX, b.AlphaY, u1, u2, beckmannSlope)
}

func (b *Beckmann) Pdf(wo, wh math.Vec3) float64 {
	return b.D(wh) * b.G1(wo) * absf64(float64(wo.Dot(wh))) / AbsCosTheta(wo)
}

// TrowbridgeReitz implements the GGX microfacet distribution.
type TrowbridgeReitz struct {
	AlphaX, AlphaY float64
}

func NewTrowbridgeReitz(alphaX, alphaY float64) *TrowbridgeReitz {
	return &TrowbridgeReitz{AlphaX: alphaX, AlphaY: alphaY}
}

func (g *TrowbridgeReitz) D(wh math.Vec3) float64 {
	tan2 := tan2Theta(wh)
	if stdmath.IsInf(tan2, 1) {
		return 0
	}
	cos4 := Cos2Theta(wh) * Cos2Theta(wh)
	cp, sp := cosPhi(wh)
	e := (cp*cp/(g.AlphaX*g.AlphaX) + sp*sp/(g.AlphaY*g.AlphaY)) * tan2
	denom := stdmath.Pi * g.AlphaX * g.AlphaY * cos4 * (1 + e) * (1 + e)
	return 1 / denom
}

// Lambda uses the closed form ½(−1+sign·sqrt(1+1/a²)) per spec §4.3.
func (g *TrowbridgeReitz) Lambda(w math.Vec3) float64 {
	absTan := absf64(tanTheta(w))
	if stdmath.IsInf(absTan, 1) {
		return 0
	}
	cp, sp := cosPhi(w)
	alpha := sqrt(cp*cp*g.AlphaX*g.AlphaX + sp*sp*g.AlphaY*g.AlphaY)
	a2Tan2 := (alpha * absTan) * (alpha * absTan)
	return (-1 + sqrt(1+a2Tan2)) / 2
}

func (g *TrowbridgeReitz) G1(w math.Vec3) float64   { return 1 / (1 + g.Lambda(w)) }
func (g *TrowbridgeReitz) G(wo, wi math.Vec3) float64 { return 1 / (1 + g.Lambda(wo) + g.Lambda(wi)) }

func (g *TrowbridgeReitz) Sample(wo math.Vec3, u1, u2 float64) math.Vec3 {
	return sampleVisibleNormals(wo, g.AlphaX, g.AlphaY, u1, u2, ggxSlope)
}

func (g *TrowbridgeReitz) Pdf(wo, wh math.Vec3) float64 {
	return g.D(wh) * g.G1(wo) * absf64(float64(wo.Dot(wh))) / AbsCosTheta(wo)
}

// slopeSampler draws an (x,y) slope in the alpha=1, wo=(0,0,1) unit-roughness
// frame. ggxSlope inverts the CDF analytically (rational fit); beckmannSlope
// inverts it by bisection (spec §4.3).
type slopeSampler func(cosThetaI, u1, u2 float64) (float64, float64)

// sampleVisibleNormals implements Heitz's visible-normal microfacet
// sampling: stretch wo into the alpha=1 frame, sample a slope restricted
// to the visible hemisphere, rotate by wo's azimuth, then unstretch.
func sampleVisibleNormals(wo math.Vec3, alphaX, alphaY, u1, u2 float64, slope slopeSampler) math.Vec3 {
	woStretched := math.Vec3{X: float32(alphaX) * wo.X, Y: float32(alphaY) * wo.Y, Z: wo.Z}.Normalize()

	cosTheta := maxf(0, float64(woStretched.Z))
	slopeX, slopeY := slope(cosTheta, u1, u2)

	// Rotate
	cp, sp := cosPhi(woStretched)
	slopeXr := cp*slopeX - sp*slopeY
	slopeYr := sp*slopeX + cp*slopeY

	// Unstretch
	slopeXr *= alphaX
	slopeYr *= alphaY

	wh := math.Vec3{X: float32(-slopeXr), Y: float32(-slopeYr), Z: 1}.Normalize()
	if wh.Z < 0 {
		wh = wh.Negate()
	}
	return wh
}

// ggxSlope is the closed-form rational-polynomial inversion for GGX.
func ggxSlope(cosThetaI, u1, u2 float64) (float64, float64) {
	if cosThetaI > 0.9999 {
		r := sqrt(u1 / (1 - u1))
		phi := 2 * stdmath.Pi * u2
		return r * cos(phi), r * sin(phi)
	}
	sinThetaI := sqrt(maxf(0, 1-cosThetaI*cosThetaI))
	tanThetaI := sinThetaI / cosThetaI
	a := 1 / tanThetaI
	g1 := 2 / (1 + sqrt(1+1/(a*a)))

	A := 2*u1/g1 - 1
	tmp := 1 / (A*A - 1)
	if tmp > 1e10 {
		tmp = 1e10
	}
	B := tanThetaI
	D := sqrt(maxf(0, B*B*tmp*tmp-(A*A-B*B)*tmp))
	slopeX1 := B*tmp - D
	slopeX2 := B*tmp + D
	slopeX := slopeX1
	if A < 0 || slopeX2 > 1/tanThetaI {
		slopeX = slopeX2
	}

	var s float64
	if u2 > 0.5 {
		s = 1
		u2 = 2 * (u2 - 0.5)
	} else {
		s = -1
		u2 = 2 * (0.5 - u2)
	}
	z := (u2 * (u2*(u2*0.27385-0.73369) + 0.46341)) / (u2*(u2*(u2*0.093073+0.309420)-1) + 0.597999)
	slopeY := s * z * sqrt(1+slopeX*slopeX)
	return slopeX, slopeY
}

// beckmannSlope inverts the Beckmann slope CDF by bisection since it has
// no closed form (spec §4.3 "binary-search inversion for Beckmann").
func beckmannSlope(cosThetaI, u1, u2 float64) (float64, float64) {
	if cosThetaI > 0.9999 {
		r := sqrt(-stdmath.Log(1 - u1))
		phi := 2 * stdmath.Pi * u2
		return r * cos(phi), r * sin(phi)
	}

	sinThetaI := sqrt(maxf(0, 1-cosThetaI*cosThetaI))
	cotThetaI := cosThetaI / sinThetaI
	a := -1.0
	sampleX := maxf(u1, 1e-6)

	b := 1.0
	for i := 0; i < 48; i++ {
		mid := 0.5 * (a + b)
		val := 0.5 * (1 + erf(mid)) * (1 + erf(cotThetaI)) / 2
		if val < sampleX {
			a = mid
		} else {
			b = mid
		}
	}
	slopeX := 0.5 * (a + b)

	s := 1.0
	uu := u2
	if u2 < 0.5 {
		s = -1
		uu = 2 * (0.5 - u2)
	} else {
		uu = 2 * (u2 - 0.5)
	}
	slopeY := s * sqrt(-stdmath.Log(1-uu)) / sqrt(2)
	return slopeX, slopeY
}

func erf(x float64) float64 {
	return stdmath.Erf(x)
}

// MicrofacetReflection evaluates the Cook-Torrance-style rough reflection
// term, spec §4.3: f = rho * D(wh) * G(wo,wi,wh) * F(dot(wi,wh)) / (4|cosθo||cosθi|).
type MicrofacetReflection struct {
	R           core.Spectrum
	Distrib     MicrofacetDistribution
	FresnelTerm Fresnel
}

func NewMicrofacetReflection(r core.Spectrum, d MicrofacetDistribution, fr Fresnel) *MicrofacetReflection {
	return &MicrofacetReflection{R: r, Distrib: d, FresnelTerm: fr}
}

func (m *MicrofacetReflection) Type() Type { return Reflection | Glossy }

func (m *MicrofacetReflection) F(wo, wi math.Vec3) core.Spectrum {
	cosThetaO, cosThetaI := AbsCosTheta(wo), AbsCosTheta(wi)
	wh := wo.Add(wi)
	if cosThetaI == 0 || cosThetaO == 0 || wh.LengthSqr() == 0 {
		return core.SpectrumZero
	}
	wh = wh.Normalize()
	fr := m.FresnelTerm.Evaluate(float64(wi.Dot(wh)))
	d := m.Distrib.D(wh)
	g := m.Distrib.G(wo, wi)
	return m.R.Mul(fr).Scale(d * g / (4 * cosThetaI * cosThetaO))
}

func (m *MicrofacetReflection) Sample(wo math.Vec3, u1, u2 float64) (math.Vec3, float64, Type, core.Spectrum) {
	if wo.Z == 0 {
		return math.Vec3{}, 0, m.Type(), core.SpectrumZero
	}
	wh := m.Distrib.Sample(wo, u1, u2)
	wi := Reflect(wo, wh)
	if !SameHemisphere(wo, wi) {
		return wi, 0, m.Type(), core.SpectrumZero
	}
	return wi, m.Pdf(wo, wi), m.Type(), m.F(wo, wi)
}

func (m *MicrofacetReflection) Pdf(wo, wi math.Vec3) float64 {
	if !SameHemisphere(wo, wi) {
		return 0
	}
	wh := wo.Add(wi).Normalize()
	return m.Distrib.Pdf(wo, wh) / (4 * float64(wo.Dot(wh)))
}

// MicrofacetTransmission implements the generalized Walter half-vector
// transmission form (spec §4.3).
type MicrofacetTransmission struct {
	T          core.Spectrum
	Distrib    MicrofacetDistribution
	EtaA, EtaB float64
	fresnel    *FresnelDielectric
	Mode       TransportMode
}

func NewMicrofacetTransmission(t core.Spectrum, d MicrofacetDistribution, etaA, etaB float64, mode TransportMode) *MicrofacetTransmission {
	return &MicrofacetTransmission{T: t, Distrib: d, EtaA: etaA, EtaB: etaB, fresnel: NewFresnelDielectric(etaA, etaB), Mode: mode}
}

func (m *MicrofacetTransmission) Type() Type { return Transmission | Glossy }

func (m *MicrofacetTransmission) whTransmission(wo, wi math.Vec3) (math.Vec3, float64, bool) {
	if SameHemisphere(wo, wi) {
		return math.Vec3{}, 0, false
	}
	eta := m.EtaB / m.EtaA
	if CosTheta(wo) < 0 {
		eta = m.EtaA / m.EtaB
	}
	wh := wo.Add(wi.Mul(float32(eta))).Normalize()
	if wh.Z < 0 {
		wh = wh.Negate()
	}
	return wh, eta, true
}

func (m *MicrofacetTransmission) F(wo, wi math.Vec3) core.Spectrum {
	wh, eta, ok := m.whTransmission(wo, wi)
	if !ok {
		return core.SpectrumZero
	}
	cosThetaO, cosThetaI := CosTheta(wo), CosTheta(wi)
	sqrtDenom := wo.Dot(wh) + float32(eta)*wi.Dot(wh)
	if cosThetaI == 0 || cosThetaO == 0 || sqrtDenom == 0 {
		return core.SpectrumZero
	}
	fr := m.fresnel.Evaluate(float64(wo.Dot(wh)))
	factor := 1.0
	if m.Mode == Radiance {
		factor = 1 / eta
	}
	d := m.Distrib.D(wh)
	g := m.Distrib.G(wo, wi)
	num := d * g * eta * eta * absf64(float64(wi.Dot(wh))) * absf64(float64(wo.Dot(wh))) * factor * factor
	denom := absf64(cosThetaI) * absf64(cosThetaO) * float64(sqrtDenom) * float64(sqrtDenom)
	return core.SpectrumOne.Sub(fr).Mul(m.T).Scale(absf64(num / denom))
}

func (m *MicrofacetTransmission) Sample(wo math.Vec3, u1, u2 float64) (math.Vec3, float64, Type, core.Spectrum) {
	if wo.Z == 0 {
		return math.Vec3{}, 0, m.Type(), core.SpectrumZero
	}
	wh := m.Distrib.Sample(wo, u1, u2)
	eta := m.EtaA / m.EtaB
	if CosTheta(wo) < 0 {
		eta = m.EtaB / m.EtaA
	}
	wi, ok := Refract(wo, faceforward(wh, wo), eta)
	if !ok {
		return math.Vec3{}, 0, m.Type(), core.SpectrumZero
	}
	return wi, m.Pdf(wo, wi), m.Type(), m.F(wo, wi)
}

func (m *MicrofacetTransmission) Pdf(wo, wi math.Vec3) float64 {
	wh, eta, ok := m.whTransmission(wo, wi)
	if !ok {
		return 0
	}
	sqrtDenom := wo.Dot(wh) + float32(eta)*wi.Dot(wh)
	dwhDwi := absf64(eta*eta*float64(wi.Dot(wh))) / (float64(sqrtDenom) * float64(sqrtDenom))
	return m.Distrib.Pdf(wo, wh) * dwhDwi
}

func faceforward(n, v math.Vec3) math.Vec3 {
	if n.Dot(v) < 0 {
		return n.Negate()
	}
	return n
}
