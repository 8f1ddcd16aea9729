// Package bsdf composes bxdf.BxDF terms into the aggregate core.BSDF a
// material attaches to a surface interaction (spec §4.3 composition rules).
package bsdf

import (
	"github.com/rendercore/pathtracer/bxdf"
	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

const maxBxDFs = 8

// BSDF aggregates up to maxBxDFs BxDF terms sharing a shading frame built
// from the geometric/shading normal and the primary tangent, implementing
// core.BSDF. All public methods take/return directions in world space and
// internally rotate into the local frame where CosTheta etc. are cheap.
type BSDF struct {
	Eta         float64 // relative IOR as given by the material; not read by this type's methods
	Ng          math.Vec3
	Ns          math.Vec3
	ss, ts      math.Vec3 // local-frame basis: ss = tangent, ts = bitangent
	bxdfs       []bxdf.BxDF
}

// NewBSDF builds an empty BSDF from the interaction's shading geometry; call
// Add to append scattering terms.
func NewBSDF(it *core.Interaction, eta float64) *BSDF {
	ns := it.Ns
	ss := it.Dpdu
	if ss.LengthSqr() < 1e-12 {
		ss, _ = coordinateSystem(ns)
	} else {
		ss = ss.Normalize()
	}
	ts := ns.Cross(ss)
	return &BSDF{
		Eta: eta,
		Ng:  it.Ng,
		Ns:  ns,
		ss:  ss,
		ts:  ts,
	}
}

func coordinateSystem(n math.Vec3) (math.Vec3, math.Vec3) {
	var v1 math.Vec3
	if absf32(n.X) > absf32(n.Y) {
		v1 = math.Vec3{X: -n.Z, Y: 0, Z: n.X}.Normalize()
	} else {
		v1 = math.Vec3{X: 0, Y: n.Z, Z: -n.Y}.Normalize()
	}
	v2 := n.Cross(v1)
	return v1, v2
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Add appends a scattering term; materials call this once per lobe while
// building the BSDF inside Material.ComputeScatteringFunctions.
func (b *BSDF) Add(x bxdf.BxDF) {
	if len(b.bxdfs) >= maxBxDFs {
		return
	}
	b.bxdfs = append(b.bxdfs, x)
}

func (b *BSDF) NumComponents() int { return len(b.bxdfs) }

// numMatching counts terms matching flags, spec §4.3 step 1 "component
// counting/selection".
func (b *BSDF) numMatching(flags bxdf.Type) int {
	n := 0
	for _, x := range b.bxdfs {
		if x.Type().MatchesFlags(flags) {
			n++
		}
	}
	return n
}

func (b *BSDF) worldToLocal(v math.Vec3) math.Vec3 {
	return math.Vec3{X: v.Dot(b.ss), Y: v.Dot(b.ts), Z: v.Dot(b.Ns)}
}

func (b *BSDF) localToWorld(v math.Vec3) math.Vec3 {
	return math.Vec3{
		X: b.ss.X*v.X + b.ts.X*v.Y + b.Ns.X*v.Z,
		Y: b.ss.Y*v.X + b.ts.Y*v.Y + b.Ns.Y*v.Z,
		Z: b.ss.Z*v.X + b.ts.Z*v.Y + b.Ns.Z*v.Z,
	}
}

// F sums f over every non-specular term whose reflect/transmit side matches
// wo and wi's relationship to the geometric normal (spec §4.3 step 4:
// "restricted by hemisphere sign").
func (b *BSDF) F(woWorld, wiWorld math.Vec3) core.Spectrum {
	wo := b.worldToLocal(woWorld)
	wi := b.worldToLocal(wiWorld)
	if wo.Z == 0 {
		return core.SpectrumZero
	}
	reflect := wiWorld.Dot(b.Ng)*woWorld.Dot(b.Ng) > 0
	var f core.Spectrum
	for _, x := range b.bxdfs {
		if x.Type().IsSpecular() {
			continue
		}
		if (reflect && x.Type().Has(bxdf.Reflection)) || (!reflect && x.Type().Has(bxdf.Transmission)) {
			f = f.Add(x.F(wo, wi))
		}
	}
	return f
}

// Sample draws one matching component uniformly, remaps the sample's first
// coordinate per spec §4.3 step 2 ("remapping u0"), and sums f/pdf across
// every other non-specular term that also matches the resulting hemisphere.
func (b *BSDF) Sample(woWorld math.Vec3, sampler core.Sampler) (math.Vec3, core.Spectrum, float64, bool, bool) {
	n := b.numMatching(bxdf.All)
	if n == 0 {
		return math.Vec3{}, core.SpectrumZero, 0, false, false
	}
	u1, u2 := sampler.Get2D()
	comp := minInt(int(u1*float64(n)), n-1)

	var chosen bxdf.BxDF
	count := comp
	for _, x := range b.bxdfs {
		if count == 0 {
			chosen = x
			break
		}
		count--
	}
	if chosen == nil {
		return math.Vec3{}, core.SpectrumZero, 0, false, false
	}

	uRemapped := minf(u1*float64(n)-float64(comp), oneMinusEpsilon)

	wo := b.worldToLocal(woWorld)
	if wo.Z == 0 {
		return math.Vec3{}, core.SpectrumZero, 0, false, false
	}

	wi, pdf, sampledType, f := chosen.Sample(wo, uRemapped, u2)
	if pdf == 0 {
		return math.Vec3{}, core.SpectrumZero, 0, false, false
	}
	specular := sampledType.IsSpecular()

	wiWorld := b.localToWorld(wi)
	if !specular && n > 1 {
		reflect := wiWorld.Dot(b.Ng)*woWorld.Dot(b.Ng) > 0
		for _, x := range b.bxdfs {
			if x == chosen || x.Type().IsSpecular() {
				continue
			}
			pdf += x.Pdf(wo, wi)
			if (reflect && x.Type().Has(bxdf.Reflection)) || (!reflect && x.Type().Has(bxdf.Transmission)) {
				f = f.Add(x.F(wo, wi))
			}
		}
		pdf /= float64(n)
	}

	return wiWorld, f, pdf, specular, true
}

// Pdf averages the matching non-specular components' pdfs (spec §4.3 step
// 3: "MIS-style pdf... summation").
func (b *BSDF) Pdf(woWorld, wiWorld math.Vec3) float64 {
	n := b.numMatching(bxdf.All)
	if n == 0 {
		return 0
	}
	wo := b.worldToLocal(woWorld)
	wi := b.worldToLocal(wiWorld)
	if wo.Z == 0 {
		return 0
	}
	var pdf float64
	matched := 0
	for _, x := range b.bxdfs {
		if x.Type().IsSpecular() {
			continue
		}
		pdf += x.Pdf(wo, wi)
		matched++
	}
	if matched == 0 {
		return 0
	}
	return pdf / float64(matched)
}

const oneMinusEpsilon = 1 - 1e-7

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
