package render

import (
	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/film"
	"github.com/rendercore/pathtracer/integrator"
	rmath "github.com/rendercore/pathtracer/math"
	"github.com/rendercore/pathtracer/scene"
)

// bootstrapSamples is the number of independent seed paths used to estimate
// the scene's mean brightness before the Markov chain starts; grounded on
// sources/integrators/pssmlt/pssmlt.cc's bootstrap pass, fixed here rather
// than left configurable since the CLI exposes no separate knob for it.
const bootstrapSamples = 1024

// genPSSMLTRay draws a camera ray from a primary-sample-space sampler: 2
// coordinates place the film sample uniformly over the image, 2 more place
// the lens sample.
func genPSSMLTRay(sc *scene.Scene, width, height int, s core.Sampler) (rmath.Ray, float64, float64) {
	fx, fy := s.Get2D()
	pFilmX := fx * float64(width)
	pFilmY := fy * float64(height)
	lu, lv := s.Get2D()
	ray := sc.Camera.GenerateRay(rmath.Vec2{X: float32(pFilmX), Y: float32(pFilmY)}, lu, lv)
	return ray, pFilmX, pFilmY
}

// RunPSSMLT drives Metropolis light transport in primary sample space (spec
// §4.7's MLT-variant film contract): a bootstrap pass estimates the scene's
// mean brightness as a core.Spectrum, then a single Markov chain runs
// mutationsPerPixel*width*height steps, depositing a visit (not a weighted
// sample) at the current state's film position every step via
// Film.AddVisit. The returned scale must be passed to
// Film.SaveIterationMLT/ToImageMLT to reconstruct the image.
func RunPSSMLT(sc *scene.Scene, f *film.Film, p *integrator.PSSMLTIntegrator, width, height, mutationsPerPixel int, seed int64) (Stats, core.Spectrum) {
	base := core.NewIndependentSampler(seed)
	arena := core.NewArena()
	dims := p.DimsPerSample(p.Path.MaxDepth)

	var brightnessSum core.Spectrum
	bootstrapState := integrator.NewPSSMLTSampler(base, dims, p.Sigma)
	bootstrapLi := core.SpectrumZero
	bootstrapFx, bootstrapFy := float64(width)/2, float64(height)/2

	for i := 0; i < bootstrapSamples; i++ {
		state := integrator.NewPSSMLTSampler(base, dims, p.Sigma)
		ray, fx, fy := genPSSMLTRay(sc, width, height, state)
		li := p.Path.Li(ray, sc, state, arena)
		arena.Reset()
		if !li.IsFinite() {
			f.NoteAnomaly()
			continue
		}
		brightnessSum = brightnessSum.Add(li)
		if li.Luminance() > bootstrapLi.Luminance() {
			bootstrapLi = li
			bootstrapState = state
			bootstrapFx, bootstrapFy = fx, fy
		}
	}
	scale := brightnessSum.Scale(1 / float64(bootstrapSamples))

	state := bootstrapState
	curLi := bootstrapLi
	curFx, curFy := bootstrapFx, bootstrapFy

	genRay := func(s core.Sampler) (rmath.Ray, float64, float64) {
		return genPSSMLTRay(sc, width, height, s)
	}

	totalMutations := mutationsPerPixel * width * height
	for i := 0; i < totalMutations; i++ {
		nextState, nextLi, nextFx, nextFy, _ := p.Mutate(sc, base, state, curLi, curFx, curFy, arena, genRay)
		arena.Reset()
		if !nextLi.IsFinite() {
			f.NoteAnomaly()
		} else {
			state, curLi, curFx, curFy = nextState, nextLi, nextFx, nextFy
		}
		f.AddVisit(curFx, curFy)
	}

	return Stats{TilesDone: 1, TilesTotal: 1, Anomalies: f.AnomalyCount()}, scale
}
