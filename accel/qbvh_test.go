package accel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

func TestBuildQBVHEmptyBVH(t *testing.T) {
	bvh := Build(nil, DefaultBuildOptions())
	q := BuildQBVH(bvh)
	_, hit := q.Intersect(math.Ray{Direction: math.Vec3{X: 0, Y: 0, Z: 1}, TMax: 1e6})
	require.False(t, hit)
}

func TestQBVHMatchesBVHIntersection(t *testing.T) {
	prims := make([]core.Primitive, 0, 30)
	for i := 0; i < 30; i++ {
		prims = append(prims, spherePrimAt(float32(i)*2, 0, 0))
	}
	bvh := Build(prims, DefaultBuildOptions())
	q := BuildQBVH(bvh)

	ray := math.Ray{Origin: math.Vec3{X: 10, Y: 0, Z: -10}, Direction: math.Vec3{X: 0, Y: 0, Z: 1}, TMax: 1e6}

	bvhIt, bvhHit := bvh.Intersect(ray)
	qIt, qHit := q.Intersect(ray)

	require.Equal(t, bvhHit, qHit)
	require.True(t, qHit)
	require.InDelta(t, bvhIt.T, qIt.T, 1e-4)
}

func TestQBVHIntersectPMatchesBVH(t *testing.T) {
	prims := []core.Primitive{spherePrimAt(0, 0, 2)}
	bvh := Build(prims, DefaultBuildOptions())
	q := BuildQBVH(bvh)

	blocked := math.Ray{Origin: math.Vec3{X: 0, Y: 0, Z: -10}, Direction: math.Vec3{X: 0, Y: 0, Z: 1}, TMax: 1e6}
	require.Equal(t, bvh.IntersectP(blocked), q.IntersectP(blocked))

	clear := math.Ray{Origin: math.Vec3{X: 10, Y: 10, Z: -10}, Direction: math.Vec3{X: 0, Y: 0, Z: 1}, TMax: 1e6}
	require.Equal(t, bvh.IntersectP(clear), q.IntersectP(clear))
}

func TestQBVHBoundsMatchesBVHBounds(t *testing.T) {
	prims := []core.Primitive{spherePrimAt(0, 0, 0), spherePrimAt(5, 0, 0)}
	bvh := Build(prims, DefaultBuildOptions())
	q := BuildQBVH(bvh)
	require.Equal(t, bvh.Bounds(), q.Bounds())
}
