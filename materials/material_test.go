package materials

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

func hitAt(p math.Vec3) *core.Interaction {
	return &core.Interaction{
		Point: p,
		Ng:    math.Vec3{X: 0, Y: 0, Z: 1},
		Ns:    math.Vec3{X: 0, Y: 0, Z: 1},
		Wo:    math.Vec3{X: 0, Y: 0, Z: 1},
	}
}

func TestDefaultMaterialBuildsNonEmptyBSDF(t *testing.T) {
	m := DefaultMaterial()
	it := hitAt(math.Vec3{})
	arena := core.NewArena()
	m.ComputeScatteringFunctions(it, arena, true)
	require.NotNil(t, it.BSDF)
	require.Greater(t, it.BSDF.NumComponents(), 0)
}

func TestMetalMaterialUsesConductorLobe(t *testing.T) {
	m := MetalMaterial()
	it := hitAt(math.Vec3{})
	arena := core.NewArena()
	m.ComputeScatteringFunctions(it, arena, true)
	require.Equal(t, 1, it.BSDF.NumComponents())
}

func TestGlassMaterialBuildsTransmissiveLobe(t *testing.T) {
	m := GlassMaterial()
	it := hitAt(math.Vec3{})
	arena := core.NewArena()
	m.ComputeScatteringFunctions(it, arena, true)
	require.Equal(t, 2, it.BSDF.NumComponents())
}

func TestSubsurfaceMaterialAttachesBSSRDF(t *testing.T) {
	m := SubsurfaceMaterial(core.NewSpectrum(0.1, 0.2, 0.3), core.NewSpectrum(1, 2, 3), 1.3)
	it := hitAt(math.Vec3{})
	arena := core.NewArena()
	m.ComputeScatteringFunctions(it, arena, true)
	require.NotNil(t, it.BSSRDF)
}

func TestOpaqueMaterialHasNoBSSRDF(t *testing.T) {
	m := DefaultMaterial()
	it := hitAt(math.Vec3{})
	arena := core.NewArena()
	m.ComputeScatteringFunctions(it, arena, true)
	require.Nil(t, it.BSSRDF)
}

func TestCloneProducesIndependentMaterial(t *testing.T) {
	m := RedMaterial()
	c := m.Clone("RedCopy")
	c.DiffuseColor = core.NewSpectrum(0, 0, 0)
	require.NotEqual(t, m.DiffuseColor, c.DiffuseColor)
	require.Equal(t, "RedCopy", c.Name)
}
