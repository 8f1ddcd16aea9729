package bxdf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

func TestLambertianReflectionEnergyConservingAndCosineWeighted(t *testing.T) {
	l := NewLambertianReflection(core.NewSpectrum(0.5, 0.5, 0.5))
	wo := math.Vec3{X: 0, Y: 0, Z: 1}

	wi, pdf, typ, f := l.Sample(wo, 0.3, 0.7)
	require.Greater(t, pdf, 0.0)
	require.True(t, typ.Has(Diffuse))
	require.Greater(t, wi.Z, float32(0))
	require.False(t, f.IsBlack())

	require.InDelta(t, pdf, l.Pdf(wo, wi), 1e-9)
}

func TestLambertianTransmissionOppositeHemisphere(t *testing.T) {
	l := NewLambertianTransmission(core.NewSpectrum(0.4, 0.4, 0.4))
	wo := math.Vec3{X: 0, Y: 0, Z: 1}
	wi, pdf, _, f := l.Sample(wo, 0.2, 0.9)
	require.Less(t, wi.Z, float32(0))
	require.Greater(t, pdf, 0.0)
	require.False(t, f.IsBlack())

	// Same-hemisphere f/pdf must be zero for a pure transmitter.
	sameHemi := math.Vec3{X: 0, Y: 0, Z: 1}
	require.True(t, l.F(wo, sameHemi).IsBlack())
	require.Equal(t, 0.0, l.Pdf(wo, sameHemi))
}

func TestSpecularReflectionMirrorsAboutNormal(t *testing.T) {
	s := NewSpecularReflection(core.SpectrumOne, FresnelNoOp{})
	wo := math.Vec3{X: 0.3, Y: 0.1, Z: 0.9}.Normalize()
	wi, pdf, typ, f := s.Sample(wo, 0, 0)
	require.Equal(t, 1.0, pdf)
	require.True(t, typ.IsSpecular())
	require.InDelta(t, -wo.X, wi.X, 1e-6)
	require.InDelta(t, -wo.Y, wi.Y, 1e-6)
	require.InDelta(t, wo.Z, wi.Z, 1e-6)
	require.False(t, f.IsBlack())

	// F/Pdf are zero everywhere for delta distributions.
	require.True(t, s.F(wo, wi).IsBlack())
	require.Equal(t, 0.0, s.Pdf(wo, wi))
}

func TestFresnelDielectricNormalIncidenceMatchesClosedForm(t *testing.T) {
	fr := NewFresnelDielectric(1, 1.5)
	r := fr.Evaluate(1)
	expected := ((1.5 - 1) / (1.5 + 1)) * ((1.5 - 1) / (1.5 + 1))
	require.InDelta(t, expected, r[0], 1e-6)
}

func TestFresnelDielectricTotalInternalReflection(t *testing.T) {
	fr := NewFresnelDielectric(1.5, 1.0)
	r := fr.Evaluate(0.05)[0]
	require.Equal(t, 1.0, r)
}

func TestFresnelConductorReturnsInRangeReflectance(t *testing.T) {
	fr := NewFresnelConductor(core.SpectrumOne, core.NewSpectrum(0.2, 0.2, 0.2), core.NewSpectrum(3, 3, 3))
	r := fr.Evaluate(0.7)
	for i := 0; i < core.NumSpectrumChannels; i++ {
		require.GreaterOrEqual(t, r[i], 0.0)
		require.LessOrEqual(t, r[i], 1.0)
	}
}

func TestRefractTotalInternalReflectionReturnsFalse(t *testing.T) {
	// A grazing ray going from dense to sparse medium exceeds the critical
	// angle and must report no refraction.
	wi := math.Vec3{X: 1, Y: 0, Z: 0.01}.Normalize()
	n := math.Vec3{X: 0, Y: 0, Z: 1}
	_, ok := Refract(wi, n, 1.5)
	require.False(t, ok)
}

func TestTrowbridgeReitzDistributionIsNonNegative(t *testing.T) {
	d := NewTrowbridgeReitz(0.3, 0.3)
	wh := math.Vec3{X: 0, Y: 0, Z: 1}
	require.Greater(t, d.D(wh), 0.0)
	require.Greater(t, d.G1(wh), 0.0)
}

func TestBeckmannSampleProducesUpperHemisphereNormal(t *testing.T) {
	d := NewBeckmann(0.2, 0.2)
	wo := math.Vec3{X: 0, Y: 0, Z: 1}
	wh := d.Sample(wo, 0.4, 0.6)
	require.GreaterOrEqual(t, wh.Z, float32(0))
}

func TestMicrofacetReflectionSampleStaysInSameHemisphere(t *testing.T) {
	m := NewMicrofacetReflection(core.NewSpectrum(0.8, 0.8, 0.8), NewTrowbridgeReitz(0.2, 0.2), FresnelNoOp{})
	wo := math.Vec3{X: 0, Y: 0, Z: 1}
	wi, pdf, _, f := m.Sample(wo, 0.25, 0.75)
	require.True(t, SameHemisphere(wo, wi))
	require.Greater(t, pdf, 0.0)
	require.False(t, f.IsBlack())
}

func TestCosineSampleHemisphereStaysWithinUnitDisk(t *testing.T) {
	v := CosineSampleHemisphere(0.5, 0.5)
	require.InDelta(t, 1, float64(v.LengthSqr()), 1e-5)
	require.GreaterOrEqual(t, v.Z, float32(0))
}
