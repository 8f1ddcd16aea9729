package render

import (
	"sync"
	"sync/atomic"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/film"
	rmath "github.com/rendercore/pathtracer/math"
	"github.com/rendercore/pathtracer/scene"
)

// Estimator is the common shape every integrator package type exposes to
// the scheduler: given a primary ray and the scene, estimate incident
// radiance. integrator.PathIntegrator and integrator.VolPathIntegrator
// already satisfy this; integrator.BDPTIntegrator needs the scene's camera
// threaded through its own Li, so callers wrap it in a small closure
// instead of changing its signature (spec §4.4's BDPT camera-importance
// connections are camera-specific in a way path tracing is not).
type Estimator interface {
	Li(ray rmath.Ray, sc *scene.Scene, sampler core.Sampler, arena *core.Arena) core.Spectrum
}

// EstimatorFunc adapts a plain function to Estimator, the glue the cmd/
// wiring uses for integrator.BDPTIntegrator (whose Li needs the camera)
// and integrator.SPPMIntegrator (whose two-pass eye/photon structure
// doesn't fit the single-ray-in/radiance-out shape at all and is driven by
// RunSPPM below instead).
type EstimatorFunc func(ray rmath.Ray, sc *scene.Scene, sampler core.Sampler, arena *core.Arena) core.Spectrum

func (f EstimatorFunc) Li(ray rmath.Ray, sc *scene.Scene, sampler core.Sampler, arena *core.Arena) core.Spectrum {
	return f(ray, sc, sampler, arena)
}

// Options configures one Run invocation (spec §6 CLI surface: --threads,
// sampler.pixelSamples, film.resolution, the deadline).
type Options struct {
	Threads      int
	PixelSamples int
	TileSize     int
	Seed         int64
	Deadline     Deadline
}

func DefaultOptions() Options {
	return Options{Threads: 1, PixelSamples: 16, TileSize: 16, Seed: 1}
}

// Stats reports coarse progress counters a CLI can poll or log.
type Stats struct {
	TilesDone  int64
	TilesTotal int64
	Anomalies  int64
}

// Run drives the tile-based worker pool of spec §5: each worker pulls
// tiles from a shared channel (the queue), samples every pixel
// PixelSamples times with its own core.IndependentSampler and core.Arena
// (never shared across goroutines), and calls Film.AddSample, which is
// itself safe for concurrent use from overlapping filter footprints. The
// wall-clock Deadline is polled between tiles, never mid-tile, so a worker
// always finishes the tile it started (spec §5 "no per-pixel
// cancellation").
func Run(sc *scene.Scene, f *film.Film, est Estimator, opts Options) Stats {
	tiles := film.GenerateTiles(f.Width, f.Height, opts.TileSize)
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
			sampler := core.NewIndependentSampler(opts.Seed + int64(workerID))
			arena := core.NewArena()

			for tile := range tileCh {
				if opts.Deadline.Expired() {
					return
				}
				renderTile(sc, f, est, tile, sampler, arena, opts.PixelSamples)
				arena.Reset()
				atomic.AddInt64(&stats.TilesDone, 1)
			}
		}(w)
	}
	wg.Wait()

	stats.Anomalies = f.AnomalyCount()
	return stats
}

func renderTile(sc *scene.Scene, f *film.Film, est Estimator, tile film.Tile, sampler core.Sampler, arena *core.Arena, spp int) {
	for y := tile.Y0; y < tile.Y1; y++ {
		for x := tile.X0; x < tile.X1; x++ {
			for s := 0; s < spp; s++ {
				jx, jy := sampler.Get2D()
				pFilm := rmath.Vec2{X: float32(x) + float32(jx), Y: float32(y) + float32(jy)}
				lu, lv := sampler.Get2D()
				ray := sc.Camera.GenerateRay(pFilm, lu, lv)

				l := est.Li(ray, sc, sampler, arena)
				if !l.IsFinite() {
					f.NoteAnomaly()
					l = core.SpectrumZero
				}
				f.AddSample(float64(pFilm.X), float64(pFilm.Y), l)
			}
		}
	}
}
