package integrator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/accel"
	"github.com/rendercore/pathtracer/camera"
	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/light"
	rmath "github.com/rendercore/pathtracer/math"
	"github.com/rendercore/pathtracer/materials"
	"github.com/rendercore/pathtracer/scene"
	"github.com/rendercore/pathtracer/shape"
)

// buildLitSphereScene places a single diffuse sphere under a point light,
// the minimal configuration every integrator needs to produce a non-black,
// finite estimate.
func buildLitSphereScene(t *testing.T) *scene.Scene {
	t.Helper()
	sph := shape.NewSphere(rmath.Vec3{X: 0, Y: 0, Z: 2}, 1)
	mat := materials.DefaultMaterial()
	prim := scene.NewGeometricPrimitive(sph, mat, nil)

	pl := light.NewPointLight(rmath.Vec3{X: 2, Y: 2, Z: 0}, core.NewSpectrum(20, 20, 20))

	bvh := accel.Build([]core.Primitive{prim}, accel.DefaultBuildOptions())
	cam := camera.NewPerspectiveCamera(rmath.Vec3Zero, rmath.QuaternionIdentity(), 1.0, 64, 64)

	return &scene.Scene{
		Accel:             bvh,
		Lights:            []light.Light{pl},
		LightDistribution: light.NewDistribution([]light.Light{pl}),
		Camera:            cam,
		Bounds:            bvh.Bounds(),
	}
}

func TestPathIntegratorProducesFiniteRadiance(t *testing.T) {
	sc := buildLitSphereScene(t)
	integ := NewPathIntegrator(5)
	sampler := core.NewIndependentSampler(1)
	arena := core.NewArena()

	ray := rmath.NewRay(rmath.Vec3Zero, rmath.Vec3{X: 0, Y: 0, Z: 1})
	l := integ.Li(ray, sc, sampler, arena)

	require.True(t, l.IsFinite())
	require.GreaterOrEqual(t, l.Luminance(), 0.0)
}

func TestPathIntegratorMissEscapesToBlackWithoutInfiniteLight(t *testing.T) {
	sc := buildLitSphereScene(t)
	integ := NewPathIntegrator(5)
	sampler := core.NewIndependentSampler(2)
	arena := core.NewArena()

	// Aim away from the sphere entirely.
	ray := rmath.NewRay(rmath.Vec3Zero, rmath.Vec3{X: 0, Y: 1, Z: 0})
	l := integ.Li(ray, sc, sampler, arena)

	require.Equal(t, core.SpectrumZero, l)
}

func TestRussianRouletteNeverTerminatesBeforeMinBounces(t *testing.T) {
	sampler := core.NewIndependentSampler(3)
	for bounce := 0; bounce < 3; bounce++ {
		terminate, comp := russianRoulette(core.SpectrumFromConstant(0.01), bounce, 3, sampler)
		require.False(t, terminate)
		require.Equal(t, 1.0, comp)
	}
}

func TestUniformSampleOneLightNilBSDFReturnsBlack(t *testing.T) {
	// An interaction without a BSDF takes the nil-BSDF guard and returns
	// black rather than panicking, even with a light in the scene.
	it := &core.Interaction{}
	sampler := core.NewIndependentSampler(4)
	sc := buildLitSphereScene(t)
	l := uniformSampleOneLight(sc, it, sampler)
	require.Equal(t, core.SpectrumZero, l)
}
