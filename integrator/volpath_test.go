package integrator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/core"
	rmath "github.com/rendercore/pathtracer/math"
)

func TestHomogeneousMediumTransmittanceDecaysWithDistance(t *testing.T) {
	m := NewHomogeneousMedium(core.NewSpectrum(0.1, 0.1, 0.1), core.NewSpectrum(0.2, 0.2, 0.2), 1, 0)
	near := m.Tr(1)
	far := m.Tr(10)
	require.Greater(t, near.Luminance(), far.Luminance())
	require.True(t, far.Luminance() >= 0)
}

func TestHomogeneousMediumSampleDistanceWithinBounds(t *testing.T) {
	m := NewHomogeneousMedium(core.NewSpectrum(0.01, 0.01, 0.01), core.NewSpectrum(0.01, 0.01, 0.01), 10, 0)
	sampler := core.NewIndependentSampler(7)
	dist, weight, _ := m.SampleDistance(5, sampler)
	require.LessOrEqual(t, dist, float32(5))
	require.True(t, weight.IsFinite())
}

func TestSamplePhaseReturnsNormalizedDirection(t *testing.T) {
	m := NewHomogeneousMedium(core.SpectrumZero, core.NewSpectrum(1, 1, 1), 1, 0.3)
	wo := rmath.Vec3{X: 0, Y: 0, Z: 1}
	dir, pdf := m.SamplePhase(wo, 0.37, 0.81)
	require.InDelta(t, 1.0, float64(dir.Length()), 1e-4)
	require.Greater(t, pdf, 0.0)
}

func TestVolPathIntegratorWithoutMediumMatchesPathIntegrator(t *testing.T) {
	sc := buildLitSphereScene(t)
	vp := NewVolPathIntegrator(5, nil)
	sampler := core.NewIndependentSampler(11)
	arena := core.NewArena()
	ray := rmath.NewRay(rmath.Vec3Zero, rmath.Vec3{X: 0, Y: 0, Z: 1})

	l := vp.Li(ray, sc, sampler, arena)
	require.True(t, l.IsFinite())
	want := NewPathIntegrator(5).Li(ray, sc, core.NewIndependentSampler(11), core.NewArena())
	require.Equal(t, want, l)
}
