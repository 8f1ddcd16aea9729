// Package integrator implements the Monte-Carlo light-transport estimators
// of spec §4.5/§4.6: unidirectional path tracing, its volumetric variant,
// bidirectional path tracing, stochastic progressive photon mapping, and
// primary-sample-space Metropolis light transport. All of them share next-
// event estimation plus MIS against a scene's light.Distribution, grounded
// on df07-go-progressive-raytracer's PathTracingIntegrator (direct/indirect
// split, PowerHeuristic weighting, Russian-roulette continuation) but
// restructured around this renderer's core.Scene/core.BSDF/light.Light
// types rather than df07's.
package integrator

import (
	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/light"
	"github.com/rendercore/pathtracer/scene"
)

// uniformSampleOneLight implements next-event estimation by picking a
// single light from the scene's power-weighted Distribution, MIS-weighting
// it against the BSDF's own pdf (spec §4.5 step 5 "one-sample light
// estimator combined with the BSDF strategy via MIS"). The returned
// estimate already includes the 1/selectionPdf rescaling so the caller can
// add it directly to throughput-weighted radiance.
func uniformSampleOneLight(sc *scene.Scene, it *core.Interaction, sampler core.Sampler) core.Spectrum {
	if len(sc.Lights) == 0 {
		return core.SpectrumZero
	}
	lightIdx, selectPdf := sc.LightDistribution.Sample(sampler.Get1D())
	if lightIdx < 0 || selectPdf == 0 {
		return core.SpectrumZero
	}
	ld := estimateDirect(sc, it, sampler, sc.Lights[lightIdx])
	return ld.Scale(1 / selectPdf)
}

// estimateDirect computes the MIS-weighted direct-lighting contribution of
// a single light toward it, combining a light-sampled strategy and a
// BSDF-sampled strategy (spec §4.5 step 5, grounded on df07's
// calculateDirectLighting / PowerHeuristic(1, lightPDF, 1, materialPDF)).
func estimateDirect(sc *scene.Scene, it *core.Interaction, sampler core.Sampler, lt light.Light) core.Spectrum {
	var ld core.Spectrum
	bsdf := it.BSDF
	if bsdf == nil {
		return ld
	}

	// Light-sampling strategy.
	u1, u2 := sampler.Get2D()
	li, wi, lightPdf, visRay, ok := lt.SampleLi(it, u1, u2)
	if ok && lightPdf > 0 && !li.IsBlack() {
		f := bsdf.F(it.Wo, wi)
		if !f.IsBlack() {
			if !sc.IntersectP(visRay) {
				if lt.IsDelta() {
					ld = ld.Add(f.Mul(li).Scale(1 / lightPdf))
				} else {
					scatterPdf := bsdf.Pdf(it.Wo, wi)
					weight := light.PowerHeuristic(1, lightPdf, 1, scatterPdf)
					ld = ld.Add(f.Mul(li).Scale(weight / lightPdf))
				}
			}
		}
	}

	// BSDF-sampling strategy, skipped for delta lights (no density to hit
	// a single point from a continuous direction sample).
	if lt.IsDelta() {
		return ld
	}
	wiBsdf, f, scatterPdf, specular, sampled := bsdf.Sample(it.Wo, sampler)
	if !sampled || scatterPdf == 0 || f.IsBlack() {
		return ld
	}
	lightPdf = lt.PdfLi(it, wiBsdf)
	if lightPdf == 0 {
		return ld
	}
	weight := 1.0
	if !specular {
		weight = light.PowerHeuristic(1, scatterPdf, 1, lightPdf)
	}
	ray := it.SpawnRay(wiBsdf)
	hit, found := sc.Intersect(ray)
	var li2 core.Spectrum
	if found {
		if al := hit.Primitive.GetAreaLight(); al != nil {
			li2 = al.L(hit, wiBsdf.Negate())
		}
	} else {
		li2 = lt.Le(ray)
	}
	if !li2.IsBlack() {
		ld = ld.Add(f.Mul(li2).Scale(weight / scatterPdf))
	}
	return ld
}

// russianRoulette decides whether a path should terminate past a minimum
// bounce count, and the throughput compensation factor for survivors,
// grounded on df07's ApplyRussianRoulette but phrased against
// core.Spectrum.Max and drawn from the integrator's own per-thread sampler
// rather than any shared or implicit RNG (spec §4.5 step 7, §9 "no ambient
// random state").
func russianRoulette(throughput core.Spectrum, bounce, minBounces int, sampler core.Sampler) (terminate bool, compensation float64) {
	if bounce < minBounces {
		return false, 1
	}
	q := clamp(throughput.Max(), 0.05, 0.95)
	if sampler.Get1D() >= q {
		return true, 1
	}
	return false, 1 / q
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

