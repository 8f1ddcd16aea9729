package film

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/core"
)

func TestAddSampleSplatsAcrossFilterFootprint(t *testing.T) {
	f := NewFilm(4, 4, NewBoxFilter())
	f.AddSample(2.0, 2.0, core.NewSpectrum(1, 1, 1))

	require.False(t, f.At(2, 2).IsBlack())
}

func TestAddSampleClampsNonFiniteToBlack(t *testing.T) {
	f := NewFilm(2, 2, NewBoxFilter())
	f.AddSample(1, 1, core.NewSpectrum(stdmath.NaN(), 1, 1))

	require.Equal(t, int64(0), f.AnomalyCount()) // AddSample clamps silently; NoteAnomaly is the integrator's job
	c := f.At(1, 1)
	require.True(t, c.IsFinite())
}

func TestConcurrentAddSampleIsRaceFree(t *testing.T) {
	f := NewFilm(8, 8, NewGaussianFilter(2, 2))
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func(i int) {
			for j := 0; j < 100; j++ {
				f.AddSample(float64(j%8)+0.5, float64(i), core.NewSpectrum(1, 0, 0))
			}
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	require.False(t, f.At(0, 0).IsBlack())
}

func TestAddVisitAccumulatesWeightAndCountWithoutRadiance(t *testing.T) {
	f := NewFilm(4, 4, NewBoxFilter())
	f.AddVisit(2.0, 2.0)
	f.AddVisit(2.0, 2.0)

	require.True(t, f.At(2, 2).IsBlack()) // no sum was ever deposited
	img := f.ToImageMLT(core.NewSpectrum(1, 1, 1))
	require.NotNil(t, img)
}

func TestSaveIterationMLTSubstitutesIterationIntoFilename(t *testing.T) {
	dir := t.TempDir()
	f := NewFilm(2, 2, NewBoxFilter())
	f.AddVisit(1, 1)
	path := dir + "/mlt-%d.png"
	require.NoError(t, f.SaveIterationMLT(path, 7, core.NewSpectrum(1, 1, 1)))
}

func TestGenerateTilesCoversWholeImageWithoutOverlap(t *testing.T) {
	tiles := GenerateTiles(10, 7, 4)
	area := 0
	for _, tl := range tiles {
		area += tl.Width() * tl.Height()
	}
	require.Equal(t, 70, area)
}

func TestGradientFilmReconstructProducesFiniteImage(t *testing.T) {
	g := NewGradientFilm(4, 4, NewBoxFilter())
	g.AddSample(2, 2, core.NewSpectrum(1, 1, 1))
	g.AddGradientSample(2, 2, core.NewSpectrum(0.1, 0.1, 0.1), core.NewSpectrum(0.05, 0.05, 0.05))

	out := g.Reconstruct()
	require.True(t, out.At(2, 2).IsFinite())
}
