package render

import (
	"sync"
	"sync/atomic"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/film"
	"github.com/rendercore/pathtracer/integrator"
	rmath "github.com/rendercore/pathtracer/math"
	"github.com/rendercore/pathtracer/scene"
)

// RunGDPT drives the simplified gradient-domain path tracer (spec §6's
// `gdpt` integrator key): for every pixel sample it draws a primal
// estimate, then replays the exact same per-sample random stream (a fresh
// core.IndependentSampler seeded identically) through the camera rays of
// the pixel's +x and +y neighbors. Because the replayed stream is
// identical, the only difference between the primal and neighbor estimates
// comes from the ray origin/direction itself, a correlated-seed stand-in
// for a true half-vector shift mapping (grounded on
// sources/integrators/gdpt conceptually; no shift-mapping Jacobian or PDF
// terms are computed). The resulting
// finite differences feed film.GradientFilm.AddGradientSample alongside the
// ordinary primal film.AddSample.
func RunGDPT(sc *scene.Scene, g *film.GradientFilm, path *integrator.PathIntegrator, opts Options) Stats {
	tiles := film.GenerateTiles(g.Width, g.Height, opts.TileSize)
	tileCh := make(chan film.Tile, len(tiles))
	for _, t := range tiles {
		tileCh <- t
	}
	close(tileCh)

	var stats Stats
	stats.TilesTotal = int64(len(tiles))

	var wg sync.WaitGroup
	threads := opts.Threads
	if threads < 1 {
		threads = 1
	}
	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			arena := core.NewArena()

			for tile := range tileCh {
				if opts.Deadline.Expired() {
					return
				}
				renderGDPTTile(sc, g, path, tile, opts.Seed+int64(workerID), arena, opts.PixelSamples)
				arena.Reset()
				atomic.AddInt64(&stats.TilesDone, 1)
			}
		}(w)
	}
	wg.Wait()

	stats.Anomalies = g.AnomalyCount()
	return stats
}

func renderGDPTTile(sc *scene.Scene, g *film.GradientFilm, path *integrator.PathIntegrator, tile film.Tile, seed int64, arena *core.Arena, spp int) {
	for y := tile.Y0; y < tile.Y1; y++ {
		for x := tile.X0; x < tile.X1; x++ {
			for s := 0; s < spp; s++ {
				sampleSeed := seed ^ int64(y)<<32 ^ int64(x)<<16 ^ int64(s)

				primalSampler := core.NewIndependentSampler(sampleSeed)
				jx, jy := primalSampler.Get2D()
				pFilm := rmath.Vec2{X: float32(x) + float32(jx), Y: float32(y) + float32(jy)}
				lu, lv := primalSampler.Get2D()
				ray := sc.Camera.GenerateRay(pFilm, lu, lv)
				primal := path.Li(ray, sc, primalSampler, arena)
				arena.Reset()
				if !primal.IsFinite() {
					g.NoteAnomaly()
					primal = core.SpectrumZero
				}
				g.AddSample(float64(pFilm.X), float64(pFilm.Y), primal)

				var dx, dy core.Spectrum
				if x+1 < g.Width {
					dx = shiftEstimate(sc, path, sampleSeed, x+1, y, jx, jy, lu, lv, arena).Sub(primal)
				}
				if y+1 < g.Height {
					dy = shiftEstimate(sc, path, sampleSeed, x, y+1, jx, jy, lu, lv, arena).Sub(primal)
				}
				g.AddGradientSample(x, y, dx, dy)
			}
		}
	}
}

// shiftEstimate replays the primal sample's random stream through the
// neighbor pixel's camera ray, the correlated "shift mapping" RunGDPT uses
// in place of a true half-vector shift.
func shiftEstimate(sc *scene.Scene, path *integrator.PathIntegrator, seed int64, x, y int, jx, jy, lu, lv float64, arena *core.Arena) core.Spectrum {
	sampler := core.NewIndependentSampler(seed)
	// Skip the film-jitter and lens draws the primal sampler made, so
	// path.Li reads the stream from the same position as the primal did.
	sampler.Get2D()
	sampler.Get2D()
	pFilm := rmath.Vec2{X: float32(x) + float32(jx), Y: float32(y) + float32(jy)}
	ray := sc.Camera.GenerateRay(pFilm, lu, lv)
	li := path.Li(ray, sc, sampler, arena)
	arena.Reset()
	if !li.IsFinite() {
		return core.SpectrumZero
	}
	return li
}
