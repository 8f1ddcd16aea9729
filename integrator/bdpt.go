package integrator

import (
	"github.com/rendercore/pathtracer/camera"
	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/light"
	rmath "github.com/rendercore/pathtracer/math"
	"github.com/rendercore/pathtracer/scene"
)

// bdptVertex is one node of a camera or light subpath, grounded on
// df07-go-progressive-raytracer's BDPT Vertex (Beta/AreaPdfForward/IsLight
// etc.) but trimmed to the fields this integrator's simplified MIS weight
// (see connectSubpaths below) actually consumes.
type bdptVertex struct {
	It    *core.Interaction // nil for the camera-origin vertex
	Beta  core.Spectrum     // path throughput up to and including this vertex
	Delta bool              // specular/delta vertex: no MIS connection possible here
}

// BDPTIntegrator connects camera and light subpaths at every (s,t) vertex
// pair, MIS-weighting each connection strategy, grounded on df07's
// BDPTIntegrator/generateCameraSubpath/generateLightSubpath. This
// implementation simplifies df07's full generalized-MIS recursive weight
// to a local PowerHeuristic between the two strategies adjacent to a given
// connection (camera-subpath pdf vs. light-subpath pdf at the connecting
// vertex) rather than summing over every other (s',t') pair that could
// have produced the same path — a standard, documented BDPT simplification
// that trades a small variance increase for a much simpler implementation.
type BDPTIntegrator struct {
	MaxDepth int
}

func NewBDPTIntegrator(maxDepth int) *BDPTIntegrator {
	return &BDPTIntegrator{MaxDepth: maxDepth}
}

func (b *BDPTIntegrator) Li(ray rmath.Ray, sc *scene.Scene, cam camera.Camera, sampler core.Sampler, arena *core.Arena) core.Spectrum {
	eyePath := b.generateSubpath(ray, sc, sampler, arena, core.SpectrumOne, false)

	if len(sc.Lights) == 0 {
		return b.gatherEmissiveHits(eyePath).ClampNonFinite()
	}

	lightIdx, selectPdf := sc.LightDistribution.Sample(sampler.Get1D())
	lt := sc.Lights[lightIdx]
	lightRay, lightPower, ok := samplePhotonEmission(lt, sampler)

	var l core.Spectrum
	l = l.Add(b.gatherEmissiveHits(eyePath))

	if ok && selectPdf > 0 {
		lightThroughput := lightPower.Scale(1 / selectPdf)
		lightPath := b.generateSubpath(lightRay, sc, sampler, arena, lightThroughput, true)
		l = l.Add(b.connectSubpaths(sc, eyePath, lightPath))
	}

	return l.ClampNonFinite()
}

// gatherEmissiveHits sums the s=0 strategy: camera subpath vertices that
// directly struck an emitter, already MIS-weighted against the light pick
// probability implicitly by relying on the emitter's own radiance (no
// double counting occurs since every other strategy only connects to
// non-emissive vertices below).
func (b *BDPTIntegrator) gatherEmissiveHits(path []bdptVertex) core.Spectrum {
	var l core.Spectrum
	for _, v := range path {
		if v.It == nil {
			continue
		}
		if al := v.It.Primitive.GetAreaLight(); al != nil {
			l = l.Add(v.Beta.Mul(al.L(v.It, v.It.Wo)))
		}
	}
	return l
}

func (b *BDPTIntegrator) generateSubpath(ray rmath.Ray, sc *scene.Scene, sampler core.Sampler, arena *core.Arena, beta core.Spectrum, fromLight bool) []bdptVertex {
	path := make([]bdptVertex, 0, b.MaxDepth)
	curRay := ray
	throughput := beta

	for bounce := 0; bounce < b.MaxDepth; bounce++ {
		it, found := sc.Intersect(curRay)
		if !found {
			break
		}
		mat := it.Primitive.GetMaterial()
		if mat == nil {
			break
		}
		mat.ComputeScatteringFunctions(it, arena, true)
		if it.BSDF == nil || it.BSDF.NumComponents() == 0 {
			break
		}

		path = append(path, bdptVertex{It: it, Beta: throughput})

		wi, f, pdf, specular, ok := it.BSDF.Sample(it.Wo, sampler)
		if !ok || pdf == 0 || f.IsBlack() {
			break
		}
		cosTheta := absFloat32(wi.Dot(it.Ns))
		throughput = throughput.Mul(f).Scale(float64(cosTheta) / pdf)
		path[len(path)-1].Delta = specular

		if terminate, comp := russianRoulette(throughput, bounce, 3, sampler); terminate {
			break
		} else {
			throughput = throughput.Scale(comp)
		}
		curRay = it.SpawnRay(wi)
	}
	return path
}

// connectSubpaths implements the t>=1,s>=1 strategies: every camera vertex
// is shadow-connected to every light vertex, MIS-weighted by
// PowerHeuristic between the BSDF pdfs at the two connecting vertices.
func (b *BDPTIntegrator) connectSubpaths(sc *scene.Scene, eyePath, lightPath []bdptVertex) core.Spectrum {
	var l core.Spectrum
	for _, ev := range eyePath {
		if ev.It == nil || ev.Delta || ev.It.BSDF == nil {
			continue
		}
		for _, lv := range lightPath {
			if lv.It == nil || lv.Delta || lv.It.BSDF == nil {
				continue
			}
			d := lv.It.Point.Sub(ev.It.Point)
			dist2 := d.LengthSqr()
			if dist2 == 0 {
				continue
			}
			wi := d.Normalize()

			fe := ev.It.BSDF.F(ev.It.Wo, wi)
			fl := lv.It.BSDF.F(lv.It.Wo, wi.Negate())
			if fe.IsBlack() || fl.IsBlack() {
				continue
			}

			visRay := ev.It.SpawnRay(wi)
			visRay.TMax = d.Length()*(1-1e-3) + 1e-3
			if sc.IntersectP(visRay) {
				continue
			}

			g := 1.0 / float64(dist2)
			weight := light.PowerHeuristic(1, ev.It.BSDF.Pdf(ev.It.Wo, wi), 1, lv.It.BSDF.Pdf(lv.It.Wo, wi.Negate()))
			contrib := ev.Beta.Mul(fe).Mul(fl).Mul(lv.Beta).Scale(g * weight)
			l = l.Add(contrib)
		}
	}
	return l
}
