package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/math"
)

func TestNewTransformIsIdentityPlacement(t *testing.T) {
	tr := NewTransform()
	require.Equal(t, math.Vec3Zero, tr.Position)
	require.Equal(t, math.Vec3One, tr.Scale)
}

func TestNewTransformForwardRightUpAreAxisAligned(t *testing.T) {
	tr := NewTransform()
	require.InDelta(t, 0.0, tr.GetForward().Sub(math.Vec3Front).Length(), 1e-5)
	require.InDelta(t, 0.0, tr.GetRight().Sub(math.Vec3Right).Length(), 1e-5)
	require.InDelta(t, 0.0, tr.GetUp().Sub(math.Vec3Up).Length(), 1e-5)
}

func TestTransformGetMatrixPlacesTranslatedOrigin(t *testing.T) {
	tr := NewTransform()
	tr.Position = math.Vec3{X: 1, Y: 2, Z: 3}
	m := tr.GetMatrix()
	p := m.MulVec3(math.Vec3Zero)
	require.InDelta(t, 0.0, p.Sub(tr.Position).Length(), 1e-4)
}
