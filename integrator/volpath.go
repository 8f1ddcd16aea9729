package integrator

import (
	stdmath "math"

	"github.com/rendercore/pathtracer/core"
	rmath "github.com/rendercore/pathtracer/math"
	"github.com/rendercore/pathtracer/scene"
)

// HomogeneousMedium is a constant-density participating medium (spec §6
// `medium.type`+sigmaA,sigmaS,scale,g), grounded on sources/core/medium.cc's
// homogeneous case: a single sigmaT everywhere inside the medium's bounding
// volume, sampled by the standard exponential free-flight distance and
// scattered by a Henyey-Greenstein phase function.
type HomogeneousMedium struct {
	SigmaA core.Spectrum
	SigmaS core.Spectrum
	G      float64 // HG asymmetry parameter, [-1,1]
}

func NewHomogeneousMedium(sigmaA, sigmaS core.Spectrum, scale, g float64) *HomogeneousMedium {
	return &HomogeneousMedium{SigmaA: sigmaA.Scale(scale), SigmaS: sigmaS.Scale(scale), G: g}
}

func (m *HomogeneousMedium) sigmaT() core.Spectrum { return m.SigmaA.Add(m.SigmaS) }

// Tr returns the Beer-Lambert transmittance over a segment of length d.
func (m *HomogeneousMedium) Tr(d float32) core.Spectrum {
	st := m.sigmaT()
	return core.NewSpectrum(
		stdmath.Exp(-st[0]*float64(d)),
		stdmath.Exp(-st[1]*float64(d)),
		stdmath.Exp(-st[2]*float64(d)),
	)
}

// SampleDistance draws a free-flight distance along the monochromatic
// channel used for importance sampling (the spectrum's mean sigmaT), per
// the standard single-channel heterogeneous-capable sampling scheme
// simplified here to the homogeneous case. Returns the sampled distance, the
// per-channel pdf-corrected weight to apply if the distance is inside
// [0,tMax) (a real scattering event), and whether scattering occurred
// before tMax.
func (m *HomogeneousMedium) SampleDistance(tMax float32, sampler core.Sampler) (dist float32, weight core.Spectrum, scattered bool) {
	st := m.sigmaT()
	sigmaBar := (st[0] + st[1] + st[2]) / 3
	if sigmaBar <= 0 {
		return tMax, core.SpectrumOne, false
	}
	u := sampler.Get1D()
	t := -stdmath.Log(1-u) / sigmaBar
	if t >= float64(tMax) {
		tr := m.Tr(tMax)
		pdf := stdmath.Exp(-sigmaBar * float64(tMax))
		if pdf == 0 {
			return tMax, core.SpectrumZero, false
		}
		return tMax, tr.Scale(1 / pdf), false
	}
	tr := m.Tr(float32(t))
	pdf := sigmaBar * stdmath.Exp(-sigmaBar*t)
	w := tr.Mul(st).Scale(1 / pdf)
	return float32(t), w, true
}

// SamplePhase draws an outgoing direction from the Henyey-Greenstein phase
// function about wo, returning the direction and its pdf (equal, since HG
// is normalized).
func (m *HomogeneousMedium) SamplePhase(wo rmath.Vec3, u1, u2 float64) (rmath.Vec3, float64) {
	g := m.G
	var cosTheta float64
	if stdmath.Abs(g) < 1e-3 {
		cosTheta = 1 - 2*u1
	} else {
		sq := (1 - g*g) / (1 + g - 2*g*u1)
		cosTheta = -(1 + g*g - sq*sq) / (2 * g)
	}
	sinTheta := stdmath.Sqrt(stdmath.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * stdmath.Pi * u2
	tx, ty := coordFrame(wo)
	local := wo.Mul(float32(cosTheta)).
		Add(tx.Mul(float32(sinTheta * stdmath.Cos(phi)))).
		Add(ty.Mul(float32(sinTheta * stdmath.Sin(phi))))
	pdf := henyeyGreenstein(g, cosTheta)
	return local.Normalize(), pdf
}

func henyeyGreenstein(g, cosTheta float64) float64 {
	denom := 1 + g*g + 2*g*cosTheta
	return (1 - g*g) / (4 * stdmath.Pi * denom * stdmath.Sqrt(stdmath.Max(1e-9, denom)))
}

func coordFrame(n rmath.Vec3) (rmath.Vec3, rmath.Vec3) {
	var v1 rmath.Vec3
	if absFloat32(n.X) > absFloat32(n.Y) {
		v1 = rmath.Vec3{X: -n.Z, Y: 0, Z: n.X}.Normalize()
	} else {
		v1 = rmath.Vec3{X: 0, Y: n.Z, Z: -n.Y}.Normalize()
	}
	return v1, n.Cross(v1)
}

// VolPathIntegrator generalizes PathIntegrator with a single global medium
// the camera ray is assumed to start inside when set (spec §4.6's
// volumetric variant); surfaces still scatter via core.BSDF exactly as in
// PathIntegrator.
type VolPathIntegrator struct {
	PathIntegrator
	Medium *HomogeneousMedium
}

func NewVolPathIntegrator(maxDepth int, medium *HomogeneousMedium) *VolPathIntegrator {
	return &VolPathIntegrator{PathIntegrator: PathIntegrator{MaxDepth: maxDepth, MinBounces: 3}, Medium: medium}
}

func (v *VolPathIntegrator) Li(ray rmath.Ray, sc *scene.Scene, sampler core.Sampler, arena *core.Arena) core.Spectrum {
	if v.Medium == nil {
		return v.PathIntegrator.Li(ray, sc, sampler, arena)
	}

	var l core.Spectrum
	throughput := core.SpectrumOne
	specularBounce := true
	curRay := ray

	for bounce := 0; bounce < v.MaxDepth; bounce++ {
		it, found := sc.Intersect(curRay)
		tMax := curRay.TMax
		if found {
			tMax = it.T
		}

		dist, weight, scattered := v.Medium.SampleDistance(tMax, sampler)
		throughput = throughput.Mul(weight)
		if throughput.IsBlack() {
			break
		}

		if scattered {
			p := curRay.Origin.Add(curRay.Direction.Mul(dist))
			medIt := &core.Interaction{Point: p, Ng: curRay.Direction.Negate(), Ns: curRay.Direction.Negate(), Wo: curRay.Direction.Negate()}
			for _, lt := range sc.Lights {
				u1, u2 := sampler.Get2D()
				li, wi, pdf, visRay, ok := lt.SampleLi(medIt, u1, u2)
				if ok && pdf > 0 && !li.IsBlack() && !sc.IntersectP(visRay) {
					ph := henyeyGreenstein(v.Medium.G, float64(curRay.Direction.Negate().Dot(wi)))
					l = l.Add(throughput.Mul(li).Scale(ph / pdf / float64(len(sc.Lights))))
				}
			}
			wi, phasePdf := v.Medium.SamplePhase(curRay.Direction.Negate(), sampler.Get1D(), sampler.Get1D())
			if phasePdf <= 0 {
				break
			}
			curRay = rmath.NewRay(p, wi)
			specularBounce = false
			continue
		}

		if !found {
			if specularBounce {
				for _, lt := range sc.Lights {
					l = l.Add(throughput.Mul(lt.Le(curRay)))
				}
			}
			break
		}

		if al := it.Primitive.GetAreaLight(); al != nil && specularBounce {
			l = l.Add(throughput.Mul(al.L(it, it.Wo)))
		}

		mat := it.Primitive.GetMaterial()
		if mat == nil {
			// A hit with no material is a pure medium interface, not a
			// surface: pass straight through in the same direction and
			// don't charge this bounce against MaxDepth.
			curRay = it.SpawnRay(curRay.Direction)
			bounce--
			continue
		}
		mat.ComputeScatteringFunctions(it, arena, true)
		if it.BSDF == nil || it.BSDF.NumComponents() == 0 {
			break
		}

		l = l.Add(throughput.Mul(uniformSampleOneLight(sc, it, sampler)))

		wi, f, pdf, specular, ok := it.BSDF.Sample(it.Wo, sampler)
		if !ok || pdf == 0 || f.IsBlack() {
			break
		}
		cosTheta := absFloat32(wi.Dot(it.Ns))
		throughput = throughput.Mul(f).Scale(float64(cosTheta) / pdf)
		specularBounce = specular

		if terminate, comp := russianRoulette(throughput, bounce, v.MinBounces, sampler); terminate {
			break
		} else {
			throughput = throughput.Scale(comp)
		}

		curRay = it.SpawnRay(wi)
	}

	return l.ClampNonFinite()
}
