package light

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
	"github.com/rendercore/pathtracer/shape"
)

func refAt(p math.Vec3) *core.Interaction {
	return &core.Interaction{Point: p, Ng: math.Vec3{X: 0, Y: 0, Z: 1}, Ns: math.Vec3{X: 0, Y: 0, Z: 1}}
}

func TestPointLightSampleLiInverseSquareFalloff(t *testing.T) {
	pl := NewPointLight(math.Vec3{X: 0, Y: 0, Z: 2}, core.NewSpectrum(10, 10, 10))
	ref := refAt(math.Vec3{X: 0, Y: 0, Z: 0})

	li, wi, pdf, visRay, ok := pl.SampleLi(ref, 0.1, 0.2)
	require.True(t, ok)
	require.Equal(t, 1.0, pdf)
	require.InDelta(t, 10.0/4.0, li[0], 1e-6)
	require.InDelta(t, 1, float64(wi.Z), 1e-6)
	require.Greater(t, visRay.TMax, float32(0))
	require.True(t, pl.IsDelta())
}

func TestPointLightPowerIsFourPiIntensity(t *testing.T) {
	pl := NewPointLight(math.Vec3{}, core.NewSpectrum(1, 1, 1))
	p := pl.Power()
	require.InDelta(t, 4*3.14159265, p[0], 1e-3)
}

func TestAreaLightOneSidedEmitsOnlyTowardNormal(t *testing.T) {
	disk := shape.NewDisk(math.Vec3{X: 0, Y: 0, Z: 0}, math.Vec3{X: 0, Y: 0, Z: 1}, 1)
	al := NewAreaLight(disk, core.NewSpectrum(5, 5, 5), false)

	it := &core.Interaction{Point: math.Vec3{}, Ng: math.Vec3{X: 0, Y: 0, Z: 1}}
	facing := al.L(it, math.Vec3{X: 0, Y: 0, Z: 1})
	require.False(t, facing.IsBlack())

	away := al.L(it, math.Vec3{X: 0, Y: 0, Z: -1})
	require.True(t, away.IsBlack())
}

func TestAreaLightTwoSidedEmitsBothWays(t *testing.T) {
	disk := shape.NewDisk(math.Vec3{X: 0, Y: 0, Z: 0}, math.Vec3{X: 0, Y: 0, Z: 1}, 1)
	al := NewAreaLight(disk, core.NewSpectrum(5, 5, 5), true)
	it := &core.Interaction{Point: math.Vec3{}, Ng: math.Vec3{X: 0, Y: 0, Z: 1}}
	require.False(t, al.L(it, math.Vec3{X: 0, Y: 0, Z: -1}).IsBlack())
}

func TestInfiniteLightSampleLiUniformOverSphere(t *testing.T) {
	inf := NewInfiniteLight(core.NewSpectrum(1, 1, 1))
	ref := refAt(math.Vec3{})
	li, wi, pdf, _, ok := inf.SampleLi(ref, 0.3, 0.4)
	require.True(t, ok)
	require.InDelta(t, 1, float64(wi.Length()), 1e-5)
	require.Greater(t, pdf, 0.0)
	require.False(t, li.IsBlack())
	require.False(t, inf.IsDelta())
}

func TestInfiniteLightLeReturnsConstantRadiance(t *testing.T) {
	inf := NewInfiniteLight(core.NewSpectrum(2, 3, 4))
	l := inf.Le(math.Ray{})
	require.Equal(t, core.NewSpectrum(2, 3, 4), l)
}
