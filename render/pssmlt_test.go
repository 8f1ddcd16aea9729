package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/film"
	"github.com/rendercore/pathtracer/integrator"
)

func TestRunPSSMLTProducesFiniteScaleAndImage(t *testing.T) {
	sc := buildTestScene(t)
	f := film.NewFilm(8, 8, film.NewBoxFilter())
	p := integrator.NewPSSMLTIntegrator(3)

	_, scale := RunPSSMLT(sc, f, p, 8, 8, 4, 7)

	require.True(t, scale.IsFinite())
	img := f.ToImageMLT(scale)
	require.NotNil(t, img)
}
