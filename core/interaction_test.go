package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/math"
)

func TestIsEnteringTrueWhenRayOpposesNormal(t *testing.T) {
	it := &Interaction{Ng: math.Vec3{X: 0, Y: 0, Z: 1}}
	require.True(t, it.IsEntering(math.Vec3{X: 0, Y: 0, Z: -1}))
}

func TestIsEnteringFalseWhenRayAlignsWithNormal(t *testing.T) {
	it := &Interaction{Ng: math.Vec3{X: 0, Y: 0, Z: 1}}
	require.False(t, it.IsEntering(math.Vec3{X: 0, Y: 0, Z: 1}))
}

func TestSpawnRayOffsetsAlongNormalForOutgoingDirection(t *testing.T) {
	it := &Interaction{Point: math.Vec3{X: 1, Y: 2, Z: 3}, Ng: math.Vec3{X: 0, Y: 0, Z: 1}}
	ray := it.SpawnRay(math.Vec3{X: 0, Y: 0, Z: 1})
	require.Greater(t, ray.Origin.Z, it.Point.Z)
}

func TestSpawnRayOffsetsAgainstNormalForOpposingDirection(t *testing.T) {
	it := &Interaction{Point: math.Vec3{X: 1, Y: 2, Z: 3}, Ng: math.Vec3{X: 0, Y: 0, Z: 1}}
	ray := it.SpawnRay(math.Vec3{X: 0, Y: 0, Z: -1})
	require.Less(t, ray.Origin.Z, it.Point.Z)
}
