// Command render is the CLI entry point of spec §6: it loads a scene
// descriptor, builds the scene, runs the configured integrator over a
// tile-based worker pool, and writes the film to disk.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/film"
	"github.com/rendercore/pathtracer/integrator"
	myio "github.com/rendercore/pathtracer/io"
	rmath "github.com/rendercore/pathtracer/math"
	"github.com/rendercore/pathtracer/render"
	"github.com/rendercore/pathtracer/scene"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		inputPath  string
		threads    int
		outputPath string
	)

	cmd := &cobra.Command{
		Use:           "render",
		Short:         "Physically-based offline path tracer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderScene(inputPath, outputPath, threads)
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "scene descriptor JSON path (required)")
	cmd.Flags().IntVar(&threads, "threads", 0, "worker thread count (0 = one per logical CPU)")
	cmd.Flags().StringVar(&outputPath, "output", "", "override the scene's film.filename")
	_ = cmd.MarkFlagRequired("input")

	if err := cmd.Execute(); err != nil {
		if rerr, ok := asRenderError(err); ok {
			fmt.Fprintln(os.Stderr, rerr)
			return core.ExitCode(rerr)
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return 0
}

func asRenderError(err error) (*core.RenderError, bool) {
	rerr, ok := err.(*core.RenderError)
	return rerr, ok
}

func renderScene(inputPath, outputOverride string, threads int) error {
	sf, err := myio.LoadScene(inputPath)
	if err != nil {
		return core.WrapError(core.InvalidScene, err, "loading scene descriptor")
	}

	baseDir := filepath.Dir(inputPath)
	sc, err := scene.Build(sf, baseDir)
	if err != nil {
		return core.WrapError(core.InvalidScene, err, "building scene")
	}

	f := film.NewFilm(sf.Film.ResolutionX, sf.Film.ResolutionY, film.NewFilter(sf.Film.Filter))

	opts := render.DefaultOptions()
	if threads > 0 {
		opts.Threads = threads
	}
	if sf.Sampler.PixelSamples > 0 {
		opts.PixelSamples = sf.Sampler.PixelSamples
	}
	if sf.DeadlineSeconds > 0 {
		opts.Deadline = render.NewDeadline(time.Duration(sf.DeadlineSeconds * float64(time.Second)))
	}

	outPath := sf.Film.Filename
	if outputOverride != "" {
		outPath = outputOverride
	}

	maxDepth := sf.Integrator.MaxDepth
	if maxDepth == 0 {
		maxDepth = sf.Integrator.BounceLimit
	}
	if maxDepth == 0 {
		maxDepth = 5
	}

	switch sf.Integrator.Type {
	case "sppm":
		photonsPerPass := sf.Integrator.PhotonsPerPass
		if photonsPerPass == 0 {
			photonsPerPass = 100000
		}
		passes := sf.Integrator.Passes
		if passes == 0 {
			passes = opts.PixelSamples
		}
		initialRadius := sf.Integrator.InitialRadius
		if initialRadius == 0 {
			initialRadius = 0.1
		}
		s := integrator.NewSPPMIntegrator(maxDepth, initialRadius)
		render.RunSPPM(sc, f, s, sf.Film.ResolutionX, sf.Film.ResolutionY, photonsPerPass, passes, opts.Seed)
		if err := f.SaveIteration(outPath, passes); err != nil {
			return core.WrapError(core.AssetIO, err, "saving film")
		}
		return nil

	case "pssmlt":
		mutationsPerPixel := sf.Integrator.MutationsPerPixel
		if mutationsPerPixel == 0 {
			mutationsPerPixel = opts.PixelSamples
		}
		p := integrator.NewPSSMLTIntegrator(maxDepth)
		_, scale := render.RunPSSMLT(sc, f, p, sf.Film.ResolutionX, sf.Film.ResolutionY, mutationsPerPixel, opts.Seed)
		if err := f.SaveIterationMLT(outPath, mutationsPerPixel, scale); err != nil {
			return core.WrapError(core.AssetIO, err, "saving film")
		}
		return nil

	case "gdpt":
		g := film.NewGradientFilm(sf.Film.ResolutionX, sf.Film.ResolutionY, film.NewFilter(sf.Film.Filter))
		path := integrator.NewPathIntegrator(maxDepth)
		render.RunGDPT(sc, g, path, opts)
		if err := g.Reconstruct().SaveIteration(outPath, opts.PixelSamples); err != nil {
			return core.WrapError(core.AssetIO, err, "saving film")
		}
		return nil
	}

	est, err := buildEstimator(sf, maxDepth)
	if err != nil {
		return core.WrapError(core.InvalidScene, err, "selecting integrator")
	}

	render.Run(sc, f, est, opts)

	if err := f.SaveIteration(outPath, opts.PixelSamples); err != nil {
		return core.WrapError(core.AssetIO, err, "saving film")
	}
	return nil
}

func buildEstimator(sf *myio.SceneFile, maxDepth int) (render.Estimator, error) {
	switch sf.Integrator.Type {
	case "", "path":
		return integrator.NewPathIntegrator(maxDepth), nil
	case "volpath":
		return integrator.NewVolPathIntegrator(maxDepth, mediumFromScene(sf)), nil
	case "bdpt":
		b := integrator.NewBDPTIntegrator(maxDepth)
		return render.EstimatorFunc(func(ray rmath.Ray, sc *scene.Scene, sampler core.Sampler, arena *core.Arena) core.Spectrum {
			return b.Li(ray, sc, sc.Camera, sampler, arena)
		}), nil
	default:
		return nil, fmt.Errorf("unrecognized integrator.type %q", sf.Integrator.Type)
	}
}

func mediumFromScene(sf *myio.SceneFile) *integrator.HomogeneousMedium {
	if len(sf.Media) == 0 {
		return nil
	}
	md := sf.Media[0]
	sigmaA := core.NewSpectrum(float64(md.SigmaA[0]), float64(md.SigmaA[1]), float64(md.SigmaA[2]))
	sigmaS := core.NewSpectrum(float64(md.SigmaS[0]), float64(md.SigmaS[1]), float64(md.SigmaS[2]))
	scale := md.Scale
	if scale == 0 {
		scale = 1
	}
	return integrator.NewHomogeneousMedium(sigmaA, sigmaS, float64(scale), float64(md.G))
}
