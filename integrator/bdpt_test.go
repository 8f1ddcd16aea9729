package integrator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/core"
	rmath "github.com/rendercore/pathtracer/math"
)

func TestBDPTIntegratorProducesFiniteRadiance(t *testing.T) {
	sc := buildLitSphereScene(t)
	bdpt := NewBDPTIntegrator(5)
	sampler := core.NewIndependentSampler(21)
	arena := core.NewArena()
	ray := rmath.NewRay(rmath.Vec3Zero, rmath.Vec3{X: 0, Y: 0, Z: 1})

	l := bdpt.Li(ray, sc, sc.Camera, sampler, arena)
	require.True(t, l.IsFinite())
}

func TestBDPTIntegratorNoLightsReturnsOnlyEmissiveHits(t *testing.T) {
	sc := buildLitSphereScene(t)
	sc.Lights = nil
	bdpt := NewBDPTIntegrator(5)
	sampler := core.NewIndependentSampler(22)
	arena := core.NewArena()
	ray := rmath.NewRay(rmath.Vec3Zero, rmath.Vec3{X: 0, Y: 0, Z: 1})

	l := bdpt.Li(ray, sc, sc.Camera, sampler, arena)
	require.Equal(t, core.SpectrumZero, l)
}
