package integrator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/core"
	rmath "github.com/rendercore/pathtracer/math"
)

func TestPSSMLTMutateAcceptsBrighterProposal(t *testing.T) {
	sc := buildLitSphereScene(t)
	p := NewPSSMLTIntegrator(5)
	base := core.NewIndependentSampler(41)
	arena := core.NewArena()

	state := NewPSSMLTSampler(base, p.DimsPerSample(5), p.Sigma)
	genRay := func(s core.Sampler) (rmath.Ray, float64, float64) {
		return rmath.NewRay(rmath.Vec3Zero, rmath.Vec3{X: 0, Y: 0, Z: 1}), 32, 32
	}

	_, li, _, _, accepted := p.Mutate(sc, base, state, core.SpectrumZero, 32, 32, arena, genRay)
	require.True(t, li.IsFinite())
	require.True(t, accepted) // current Li is black, so any lit proposal is accepted
}

func TestPSSMLTSamplerCyclesFixedCoordinates(t *testing.T) {
	base := core.NewIndependentSampler(42)
	s := NewPSSMLTSampler(base, 4, 1.0/256)
	require.Len(t, s.coords, 4)

	first := s.next()
	s.cursor = 0
	second := s.next()
	require.Equal(t, first, second)
}
