package bsdf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

func subsurfaceHit() *core.Interaction {
	return &core.Interaction{
		Point: math.Vec3{},
		Ns:    math.Vec3{X: 0, Y: 0, Z: 1},
		Wo:    math.Vec3{X: 0, Y: 0, Z: 1},
	}
}

func TestSrDecaysWithRadius(t *testing.T) {
	b := NewSeparableBSSRDF(subsurfaceHit(), 1.3, core.NewSpectrum(0.1, 0.1, 0.1), core.NewSpectrum(2, 2, 2))
	near := b.Sr(0.01)
	far := b.Sr(2.0)
	require.Greater(t, near[0], far[0])
}

func TestSCombinesSpatialAndDirectionalTerms(t *testing.T) {
	b := NewSeparableBSSRDF(subsurfaceHit(), 1.3, core.NewSpectrum(0.1, 0.1, 0.1), core.NewSpectrum(2, 2, 2))
	pi := &core.Interaction{Point: math.Vec3{X: 0.05, Y: 0, Z: 0}, Ns: math.Vec3{X: 0, Y: 0, Z: 1}}
	wi := math.Vec3{X: 0, Y: 0, Z: 1}
	s := b.S(pi, wi)
	require.False(t, s.IsBlack())
}

func TestSampleSpReturnsValidAxisAndChannel(t *testing.T) {
	b := NewSeparableBSSRDF(subsurfaceHit(), 1.3, core.NewSpectrum(0.1, 0.1, 0.1), core.NewSpectrum(2, 2, 2))
	axis, radius, channel := b.SampleSp(0.9, 0.4, 0.9)
	require.GreaterOrEqual(t, axis, 0)
	require.Less(t, axis, 3)
	require.GreaterOrEqual(t, channel, 0)
	require.Less(t, channel, core.NumSpectrumChannels)
	require.GreaterOrEqual(t, radius, 0.0)
}

func TestPdfSpIsPositiveForNearbyPoint(t *testing.T) {
	b := NewSeparableBSSRDF(subsurfaceHit(), 1.3, core.NewSpectrum(0.1, 0.1, 0.1), core.NewSpectrum(2, 2, 2))
	pi := &core.Interaction{Point: math.Vec3{X: 0.05, Y: 0.01, Z: 0}, Ns: math.Vec3{X: 0, Y: 0, Z: 1}}
	pdf := b.PdfSp(pi)
	require.Greater(t, pdf, 0.0)
}

func TestZeroScatteringChannelYieldsZeroSr(t *testing.T) {
	b := NewSeparableBSSRDF(subsurfaceHit(), 1.3, core.SpectrumZero, core.SpectrumZero)
	s := b.Sr(0.1)
	require.True(t, s.IsBlack())
}
