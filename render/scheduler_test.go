package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/accel"
	"github.com/rendercore/pathtracer/camera"
	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/film"
	"github.com/rendercore/pathtracer/integrator"
	"github.com/rendercore/pathtracer/light"
	rmath "github.com/rendercore/pathtracer/math"
	"github.com/rendercore/pathtracer/materials"
	"github.com/rendercore/pathtracer/scene"
	"github.com/rendercore/pathtracer/shape"
)

func buildTestScene(t *testing.T) *scene.Scene {
	t.Helper()
	sph := shape.NewSphere(rmath.Vec3{X: 0, Y: 0, Z: 2}, 1)
	mat := materials.DefaultMaterial()
	prim := scene.NewGeometricPrimitive(sph, mat, nil)
	pl := light.NewPointLight(rmath.Vec3{X: 2, Y: 2, Z: 0}, core.NewSpectrum(20, 20, 20))
	bvh := accel.Build([]core.Primitive{prim}, accel.DefaultBuildOptions())
	cam := camera.NewPerspectiveCamera(rmath.Vec3Zero, rmath.QuaternionIdentity(), 1.0, 16, 16)
	return &scene.Scene{
		Accel:             bvh,
		Lights:            []light.Light{pl},
		LightDistribution: light.NewDistribution([]light.Light{pl}),
		Camera:            cam,
		Bounds:            bvh.Bounds(),
	}
}

func TestRunProducesNonBlackFilm(t *testing.T) {
	sc := buildTestScene(t)
	f := film.NewFilm(16, 16, film.NewBoxFilter())
	path := integrator.NewPathIntegrator(3)
	opts := Options{Threads: 2, PixelSamples: 4, TileSize: 8, Seed: 1}

	stats := Run(sc, f, path, opts)

	require.Equal(t, stats.TilesTotal, stats.TilesDone)
	nonBlack := false
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if !f.At(x, y).IsBlack() {
				nonBlack = true
			}
		}
	}
	require.True(t, nonBlack)
}

func TestDeadlineExpiredStopsEarly(t *testing.T) {
	d := NewDeadline(1 * time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	require.True(t, d.Expired())

	disabled := NewDeadline(0)
	require.False(t, disabled.Expired())
}

func TestRunWithBDPTAdapter(t *testing.T) {
	sc := buildTestScene(t)
	f := film.NewFilm(8, 8, film.NewBoxFilter())
	bdpt := integrator.NewBDPTIntegrator(3)
	est := EstimatorFunc(func(ray rmath.Ray, sc *scene.Scene, sampler core.Sampler, arena *core.Arena) core.Spectrum {
		return bdpt.Li(ray, sc, sc.Camera, sampler, arena)
	})
	opts := Options{Threads: 1, PixelSamples: 2, TileSize: 4, Seed: 5}

	stats := Run(sc, f, est, opts)
	require.Equal(t, stats.TilesTotal, stats.TilesDone)
}
