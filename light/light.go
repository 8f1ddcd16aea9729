// Package light implements the emitter types of spec §4.4: area lights
// wrapping a shape.Shape, point lights, and an infinite environment light,
// plus the power-weighted light distribution and MIS heuristics shared by
// the integrators.
package light

import (
	stdmath "math"

	"github.com/google/uuid"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
	"github.com/rendercore/pathtracer/shape"
)

// Light is sampled for next-event estimation and evaluated for rays that
// escape the scene or that directly hit an emitter.
type Light interface {
	// SampleLi samples an incident direction from ref toward the light,
	// returning radiance, the direction, its pdf in solid angle, and a
	// visibility-test ray; ok is false when the sample carries no energy.
	SampleLi(ref *core.Interaction, u1, u2 float64) (li core.Spectrum, wi math.Vec3, pdf float64, visRay math.Ray, ok bool)
	PdfLi(ref *core.Interaction, wi math.Vec3) float64
	// Le returns emitted radiance along a ray that escaped the scene
	// (non-zero only for infinite lights).
	Le(ray math.Ray) core.Spectrum
	Power() core.Spectrum
	IsDelta() bool
	// ID uniquely identifies this light instance, replacing the teacher's
	// bare `uint32` scene-node counter (scene/node.go) so lights keep a
	// stable identity across scene rebuilds and log lines.
	ID() uuid.UUID
}

// AreaLight wraps a shape.Shape with a two-sided-or-not emission profile,
// implementing both light.Light (for importance sampling) and
// core.AreaLight (for direct hits during intersection).
type AreaLight struct {
	Shape     shape.Shape
	Lemit     core.Spectrum
	TwoSided  bool
	id        uuid.UUID
}

func NewAreaLight(s shape.Shape, lemit core.Spectrum, twoSided bool) *AreaLight {
	return &AreaLight{Shape: s, Lemit: lemit, TwoSided: twoSided, id: uuid.New()}
}

func (a *AreaLight) ID() uuid.UUID { return a.id }

// L implements core.AreaLight: emission as seen from point it toward w.
func (a *AreaLight) L(it *core.Interaction, w math.Vec3) core.Spectrum {
	facing := it.Ng.Dot(w) > 0
	if a.TwoSided || facing {
		return a.Lemit
	}
	return core.SpectrumZero
}

func (a *AreaLight) SampleLi(ref *core.Interaction, u1, u2 float64) (core.Spectrum, math.Vec3, float64, math.Ray, bool) {
	pShape, pdf, ok := a.Shape.SampleFrom(ref.Point, u1, u2)
	if !ok || pdf == 0 {
		return core.SpectrumZero, math.Vec3{}, 0, math.Ray{}, false
	}
	d := pShape.Point.Sub(ref.Point)
	if d.LengthSqr() == 0 {
		return core.SpectrumZero, math.Vec3{}, 0, math.Ray{}, false
	}
	wi := d.Normalize()
	li := a.L(pShape, wi.Negate())
	if li.IsBlack() {
		return core.SpectrumZero, math.Vec3{}, 0, math.Ray{}, false
	}
	visRay := ref.SpawnRay(wi)
	visRay.TMax = d.Length()*(1-1e-3) + 1e-3
	return li, wi, pdf, visRay, true
}

func (a *AreaLight) PdfLi(ref *core.Interaction, wi math.Vec3) float64 {
	return a.Shape.PdfFrom(ref.Point, wi)
}

func (a *AreaLight) Le(ray math.Ray) core.Spectrum { return core.SpectrumZero }

func (a *AreaLight) Power() core.Spectrum {
	scale := float32(1)
	if a.TwoSided {
		scale = 2
	}
	return a.Lemit.Scale(float64(scale * a.Shape.Area() * stdmath.Pi))
}

func (a *AreaLight) IsDelta() bool { return false }

// PointLight is a delta-position emitter with inverse-square falloff.
type PointLight struct {
	Position  math.Vec3
	Intensity core.Spectrum
	id        uuid.UUID
}

func NewPointLight(pos math.Vec3, intensity core.Spectrum) *PointLight {
	return &PointLight{Position: pos, Intensity: intensity, id: uuid.New()}
}

func (p *PointLight) ID() uuid.UUID { return p.id }

func (p *PointLight) SampleLi(ref *core.Interaction, u1, u2 float64) (core.Spectrum, math.Vec3, float64, math.Ray, bool) {
	d := p.Position.Sub(ref.Point)
	dist2 := d.LengthSqr()
	if dist2 == 0 {
		return core.SpectrumZero, math.Vec3{}, 0, math.Ray{}, false
	}
	wi := d.Normalize()
	li := p.Intensity.Scale(1 / float64(dist2))
	visRay := ref.SpawnRay(wi)
	visRay.TMax = d.Length() * (1 - 1e-3)
	return li, wi, 1, visRay, true
}

func (p *PointLight) PdfLi(ref *core.Interaction, wi math.Vec3) float64 { return 0 }
func (p *PointLight) Le(ray math.Ray) core.Spectrum                     { return core.SpectrumZero }
func (p *PointLight) Power() core.Spectrum                              { return p.Intensity.Scale(4 * stdmath.Pi) }
func (p *PointLight) IsDelta() bool                                     { return true }

// InfiniteLight models a constant environment term (Lemit from every
// direction); the
// spec's scene descriptor recognizes it as a backdrop emitter that rays
// only see once they escape the scene.
type InfiniteLight struct {
	Lemit     core.Spectrum
	WorldR    float32 // bounding-sphere radius, set once the scene is built
	id        uuid.UUID
}

func NewInfiniteLight(lemit core.Spectrum) *InfiniteLight {
	return &InfiniteLight{Lemit: lemit, WorldR: 1, id: uuid.New()}
}

func (inf *InfiniteLight) ID() uuid.UUID { return inf.id }

func (inf *InfiniteLight) SampleLi(ref *core.Interaction, u1, u2 float64) (core.Spectrum, math.Vec3, float64, math.Ray, bool) {
	wi := uniformSampleSphere(u1, u2)
	pdf := 1 / (4 * stdmath.Pi)
	visRay := ref.SpawnRay(wi)
	visRay.TMax = 2 * inf.WorldR
	return inf.Lemit, wi, pdf, visRay, true
}

func (inf *InfiniteLight) PdfLi(ref *core.Interaction, wi math.Vec3) float64 {
	return 1 / (4 * stdmath.Pi)
}

func (inf *InfiniteLight) Le(ray math.Ray) core.Spectrum { return inf.Lemit }
func (inf *InfiniteLight) Power() core.Spectrum {
	return inf.Lemit.Scale(float64(4 * stdmath.Pi * inf.WorldR * inf.WorldR))
}
func (inf *InfiniteLight) IsDelta() bool { return false }

func uniformSampleSphere(u1, u2 float64) math.Vec3 {
	z := 1 - 2*u1
	r := 0.0
	if 1-z*z > 0 {
		r = stdmath.Sqrt(1 - z*z)
	}
	phi := 2 * stdmath.Pi * u2
	return math.Vec3{X: float32(r * stdmath.Cos(phi)), Y: float32(r * stdmath.Sin(phi)), Z: float32(z)}
}
