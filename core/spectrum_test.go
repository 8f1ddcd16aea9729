package core

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpectrumAddSubScale(t *testing.T) {
	a := NewSpectrum(1, 2, 3)
	b := NewSpectrum(0.5, 0.5, 0.5)

	require.Equal(t, NewSpectrum(1.5, 2.5, 3.5), a.Add(b))
	require.Equal(t, NewSpectrum(0.5, 1.5, 2.5), a.Sub(b))
	require.Equal(t, NewSpectrum(2, 4, 6), a.Scale(2))
}

func TestSpectrumMulAndDiv(t *testing.T) {
	a := NewSpectrum(2, 4, 6)
	b := NewSpectrum(2, 2, 2)
	require.Equal(t, NewSpectrum(4, 8, 12), a.Mul(b))
	require.Equal(t, NewSpectrum(1, 2, 3), a.Div(b))
}

func TestSpectrumDivByZeroChannelYieldsZero(t *testing.T) {
	a := NewSpectrum(5, 5, 5)
	b := NewSpectrum(1, 0, 1)
	r := a.Div(b)
	require.Equal(t, 0.0, r[1])
}

func TestSpectrumIsBlack(t *testing.T) {
	require.True(t, SpectrumZero.IsBlack())
	require.False(t, NewSpectrum(0, 0.001, 0).IsBlack())
}

func TestSpectrumMaxReturnsLargestChannel(t *testing.T) {
	require.Equal(t, 9.0, NewSpectrum(1, 9, 3).Max())
}

func TestSpectrumLuminanceWeightsRec709(t *testing.T) {
	l := NewSpectrum(1, 0, 0).Luminance()
	require.InDelta(t, 0.2126, l, 1e-9)
}

func TestSpectrumIsFiniteRejectsNaNAndInf(t *testing.T) {
	nan := NewSpectrum(stdmath.NaN(), 0, 0)
	require.False(t, nan.IsFinite())
	require.False(t, NewSpectrum(0, stdmath.Inf(1), 0).IsFinite())
	require.True(t, SpectrumOne.IsFinite())
}

func TestSpectrumClampNonFiniteReplacesWithBlack(t *testing.T) {
	nan := NewSpectrum(stdmath.NaN(), 1, 1)
	require.True(t, nan.ClampNonFinite().IsBlack())
	require.Equal(t, SpectrumOne, SpectrumOne.ClampNonFinite())
}

func TestSpectrumClampBoundsEachChannel(t *testing.T) {
	s := NewSpectrum(-1, 0.5, 5)
	c := s.Clamp(0, 1)
	require.Equal(t, NewSpectrum(0, 0.5, 1), c)
}

func TestSpectrumGammaCorrectClampsNegativeToZero(t *testing.T) {
	s := NewSpectrum(-1, 1, 4)
	g := s.GammaCorrect(2)
	require.Equal(t, 0.0, g[0])
	require.InDelta(t, 2.0, g[2], 1e-9)
}
