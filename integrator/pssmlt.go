package integrator

import (
	"github.com/rendercore/pathtracer/core"
	rmath "github.com/rendercore/pathtracer/math"
	"github.com/rendercore/pathtracer/scene"
)

// pssmltSampler is a primary-sample-space sampler: every Get1D/Get2D call
// draws from a fixed-size coordinate vector that mutation proposals perturb
// in place, grounded on sources/integrators/pssmlt/pssmlt.cc's mutation
// sampler but simplified to a single global mutation size rather than the
// original's adaptive small/large-step mixture timer.
type pssmltSampler struct {
	coords []float64
	cursor int
	sigma  float64 // mutation size for small steps
	base   core.Sampler
}

// NewPSSMLTSampler constructs a primary-sample-space coordinate vector of
// length dims, seeded from base, for the render driver's bootstrap and
// chain-start passes.
func NewPSSMLTSampler(base core.Sampler, dims int, sigma float64) *pssmltSampler {
	s := &pssmltSampler{coords: make([]float64, dims), sigma: sigma, base: base}
	for i := range s.coords {
		s.coords[i] = base.Get1D()
	}
	return s
}

func (s *pssmltSampler) Get1D() float64 {
	return s.next()
}

func (s *pssmltSampler) Get2D() (float64, float64) {
	return s.next(), s.next()
}

func (s *pssmltSampler) next() float64 {
	if len(s.coords) == 0 {
		return s.base.Get1D()
	}
	// Cycle through the fixed coordinate vector; once exhausted, fall back
	// to the base sampler so paths longer than `dims` bounces still get
	// i.i.d. randomness rather than a degenerate repeating sequence.
	idx := s.cursor
	s.cursor++
	if idx >= len(s.coords) {
		return s.base.Get1D()
	}
	return s.coords[idx]
}

// mutate proposes a new state by perturbing every coordinate with a
// Gaussian-ish small step (approximated here with a uniform jitter, since
// this renderer's core.Sampler interface exposes no normal-distributed
// draw) and resets the read cursor for the next Li evaluation.
func (s *pssmltSampler) mutate() {
	s.cursor = 0
	for i := range s.coords {
		d := (s.base.Get1D()*2 - 1) * s.sigma
		v := s.coords[i] + d
		for v < 0 {
			v += 1
		}
		for v >= 1 {
			v -= 1
		}
		s.coords[i] = v
	}
}

func (s *pssmltSampler) fresh() {
	s.cursor = 0
	for i := range s.coords {
		s.coords[i] = s.base.Get1D()
	}
}

// PSSMLTIntegrator runs Metropolis light transport in primary sample space
// over the path tracer's Li estimator: candidate paths are proposed by
// perturbing the [0,1)^dims coordinate vector that drove a PathIntegrator
// evaluation and accepted/rejected by the standard Metropolis-Hastings
// luminance ratio (spec's implied Metropolis variant, grounded on
// sources/integrators/pssmlt/pssmlt.cc).
type PSSMLTIntegrator struct {
	Path  *PathIntegrator
	Sigma float64
}

func NewPSSMLTIntegrator(maxDepth int) *PSSMLTIntegrator {
	return &PSSMLTIntegrator{Path: NewPathIntegrator(maxDepth), Sigma: 1.0 / 256}
}

// DimsPerSample is the number of primary-sample-space coordinates reserved
// per Li evaluation before falling back to the base sampler: 4 for the
// camera sample (2 for the film position, 2 for the lens), plus 4 per
// bounce for light selection + BSDF sampling.
func (p *PSSMLTIntegrator) DimsPerSample(maxDepth int) int { return 4 + 4*maxDepth }

// Mutate runs one Metropolis-Hastings step starting from camera ray
// generator genRay(pssSampler) -> (ray, pFilmX, pFilmY), returning the
// chain's next state, its unscaled Li, its film position, and whether the
// proposal was accepted (on rejection the current state, Li and position
// come back unchanged).
func (p *PSSMLTIntegrator) Mutate(
	sc *scene.Scene,
	base core.Sampler,
	state *pssmltSampler,
	curLi core.Spectrum,
	curFilmX, curFilmY float64,
	arena *core.Arena,
	genRay func(s core.Sampler) (rmath.Ray, float64, float64),
) (nextState *pssmltSampler, nextLi core.Spectrum, nextFilmX, nextFilmY float64, accepted bool) {
	proposal := &pssmltSampler{coords: append([]float64(nil), state.coords...), sigma: state.sigma, base: base}
	proposal.mutate()

	ray, fx, fy := genRay(proposal)
	li := p.Path.Li(ray, sc, proposal, arena)

	curLum := curLi.Luminance()
	newLum := li.Luminance()

	var accept float64
	if curLum+newLum == 0 {
		accept = 0
	} else if curLum == 0 {
		accept = 1
	} else {
		accept = newLum / curLum
		if accept > 1 {
			accept = 1
		}
	}

	if base.Get1D() < accept {
		return proposal, li, fx, fy, true
	}
	return state, curLi, curFilmX, curFilmY, false
}
