package accel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/materials"
	"github.com/rendercore/pathtracer/math"
	"github.com/rendercore/pathtracer/scene"
	"github.com/rendercore/pathtracer/shape"
)

func spherePrimAt(x, y, z float32) core.Primitive {
	sph := shape.NewSphere(math.Vec3{X: x, Y: y, Z: z}, 0.5)
	return scene.NewGeometricPrimitive(sph, materials.DefaultMaterial(), nil)
}

func TestBuildEmptyHasEmptyBounds(t *testing.T) {
	b := Build(nil, DefaultBuildOptions())
	require.Greater(t, b.Bounds().Min.X, b.Bounds().Max.X)
	_, hit := b.Intersect(math.Ray{Origin: math.Vec3{}, Direction: math.Vec3{X: 0, Y: 0, Z: 1}, TMax: 1e6})
	require.False(t, hit)
}

func TestBuildIntersectFindsClosestOfMany(t *testing.T) {
	prims := []core.Primitive{
		spherePrimAt(0, 0, 2),
		spherePrimAt(0, 0, 5),
		spherePrimAt(0, 0, 8),
	}
	b := Build(prims, DefaultBuildOptions())

	ray := math.Ray{Origin: math.Vec3{X: 0, Y: 0, Z: -10}, Direction: math.Vec3{X: 0, Y: 0, Z: 1}, TMax: 1e6}
	it, hit := b.Intersect(ray)
	require.True(t, hit)
	require.InDelta(t, 1.5, float64(it.T)-10, 0.01)
}

func TestBuildIntersectPStopsAtFirstOccluder(t *testing.T) {
	prims := []core.Primitive{spherePrimAt(0, 0, 2)}
	b := Build(prims, DefaultBuildOptions())

	blocked := math.Ray{Origin: math.Vec3{X: 0, Y: 0, Z: -10}, Direction: math.Vec3{X: 0, Y: 0, Z: 1}, TMax: 1e6}
	require.True(t, b.IntersectP(blocked))

	clear := math.Ray{Origin: math.Vec3{X: 10, Y: 10, Z: -10}, Direction: math.Vec3{X: 0, Y: 0, Z: 1}, TMax: 1e6}
	require.False(t, b.IntersectP(clear))
}

func TestBuildWithManyPrimitivesUsesSAHSplit(t *testing.T) {
	prims := make([]core.Primitive, 0, 40)
	for i := 0; i < 40; i++ {
		prims = append(prims, spherePrimAt(float32(i)*2, 0, 0))
	}
	b := Build(prims, DefaultBuildOptions())
	require.Greater(t, len(b.nodes), 1)

	ray := math.Ray{Origin: math.Vec3{X: 20, Y: 0, Z: -10}, Direction: math.Vec3{X: 0, Y: 0, Z: 1}, TMax: 1e6}
	_, hit := b.Intersect(ray)
	require.True(t, hit)
}

func TestMissingRayReturnsNoHit(t *testing.T) {
	prims := []core.Primitive{spherePrimAt(0, 0, 2)}
	b := Build(prims, DefaultBuildOptions())

	ray := math.Ray{Origin: math.Vec3{X: 100, Y: 100, Z: -10}, Direction: math.Vec3{X: 0, Y: 0, Z: 1}, TMax: 1e6}
	_, hit := b.Intersect(ray)
	require.False(t, hit)
}
