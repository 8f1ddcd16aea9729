package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/film"
	"github.com/rendercore/pathtracer/integrator"
)

func TestRunGDPTProducesFiniteReconstruction(t *testing.T) {
	sc := buildTestScene(t)
	g := film.NewGradientFilm(8, 8, film.NewBoxFilter())
	path := integrator.NewPathIntegrator(3)
	opts := Options{Threads: 2, PixelSamples: 4, TileSize: 4, Seed: 3}

	stats := RunGDPT(sc, g, path, opts)
	require.Equal(t, stats.TilesTotal, stats.TilesDone)

	out := g.Reconstruct()
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			require.True(t, out.At(x, y).IsFinite())
		}
	}
}
