// Package materials bridges the scene descriptor's PBR-lite material
// parameters to BxDF/BSDF construction, implementing core.Material. The
// parameter set (DiffuseColor/Roughness/Metallic/Specular/Opacity) is kept
// from the teacher's GPU-era Material; ComputeScatteringFunctions replaces
// ToUniform as the thing a Material produces.
package materials

import (
	"github.com/rendercore/pathtracer/bsdf"
	"github.com/rendercore/pathtracer/bxdf"
	"github.com/rendercore/pathtracer/core"
)

// Material is a PBR-lite material for rendering: diffuse/specular/glass/
// metal/emissive surfaces are all expressed as (Roughness, Metallic,
// Specular, Opacity) rather than distinct material classes, matching the
// teacher's single-struct material model.
type Material struct {
	Name string

	DiffuseColor  core.Spectrum
	SpecularColor core.Spectrum
	EmissiveColor core.Spectrum

	Roughness float32 // 0.0 = smooth/mirror, 1.0 = rough/diffuse
	Metallic  float32 // 0.0 = dielectric, 1.0 = metal
	Specular  float32 // specular intensity / dielectric reflectance scale
	Opacity   float32 // 1.0 = fully opaque, <1.0 = dielectric transmission
	Eta       float64 // interior index of refraction, used when Opacity<1

	DoubleSided bool

	// Subsurface parameters; SigmaAbsorb/SigmaScatter are both zero for an
	// ordinary opaque/dielectric material (no BSSRDF attached).
	SigmaAbsorb, SigmaScatter core.Spectrum
}

func NewMaterial(name string) *Material {
	return &Material{
		Name:          name,
		DiffuseColor:  core.SpectrumFromConstant(0.8),
		SpecularColor: core.SpectrumOne,
		EmissiveColor: core.SpectrumZero,
		Roughness:     0.5,
		Metallic:      0,
		Specular:      0.5,
		Opacity:       1,
		Eta:           1.5,
	}
}

func (m *Material) Clone(newName string) *Material {
	clone := *m
	clone.Name = newName
	return &clone
}

// roughnessToAlpha converts a [0,1] perceptual roughness to the
// Beckmann/GGX alpha parameter (spec §4.3's microfacet distributions take
// alpha directly; remapping keeps the scene descriptor's roughness knob
// perceptually linear).
func roughnessToAlpha(roughness float32) float64 {
	r := float64(roughness)
	if r < 1e-3 {
		r = 1e-3
	}
	return r * r
}

// ComputeScatteringFunctions builds the BSDF (and, for a subsurface
// material, the BSSRDF) attached to the interaction, implementing
// core.Material. allowMultipleLobes is not read: every lobe the material
// defines is always added.
func (m *Material) ComputeScatteringFunctions(it *core.Interaction, arena *core.Arena, allowMultipleLobes bool) {
	b := bsdf.NewBSDF(it, m.Eta)

	switch {
	case m.Opacity < 0.999:
		fr := bxdf.NewFresnelDielectric(1, m.Eta)
		if m.Roughness < 0.05 {
			b.Add(bxdf.NewSpecularReflection(m.SpecularColor, fr))
			b.Add(bxdf.NewSpecularTransmission(m.DiffuseColor, 1, m.Eta, bxdf.Radiance))
		} else {
			alpha := roughnessToAlpha(m.Roughness)
			dist := bxdf.NewTrowbridgeReitz(alpha, alpha)
			b.Add(bxdf.NewMicrofacetReflection(m.SpecularColor, dist, fr))
			b.Add(bxdf.NewMicrofacetTransmission(m.DiffuseColor, dist, 1, m.Eta, bxdf.Radiance))
		}

	case m.Metallic > 0.999:
		eta := core.SpectrumFromConstant(m.Eta)
		k := m.SpecularColor
		fr := bxdf.NewFresnelConductor(core.SpectrumOne, eta, k)
		if m.Roughness < 0.05 {
			b.Add(bxdf.NewSpecularReflection(m.DiffuseColor, fr))
		} else {
			alpha := roughnessToAlpha(m.Roughness)
			dist := bxdf.NewTrowbridgeReitz(alpha, alpha)
			b.Add(bxdf.NewMicrofacetReflection(m.DiffuseColor, dist, fr))
		}

	default:
		kd := m.DiffuseColor.Scale(1 - float64(m.Metallic))
		if !kd.IsBlack() {
			b.Add(bxdf.NewLambertianReflection(kd))
		}
		if m.Specular > 0 {
			fr := bxdf.NewFresnelDielectric(1, m.Eta)
			alpha := roughnessToAlpha(m.Roughness)
			dist := bxdf.NewBeckmann(alpha, alpha)
			ks := m.SpecularColor.Scale(float64(m.Specular))
			b.Add(bxdf.NewMicrofacetReflection(ks, dist, fr))
		}
	}

	it.BSDF = b

	if !m.SigmaScatter.IsBlack() {
		it.BSSRDF = bsdf.NewSeparableBSSRDF(it, m.Eta, m.SigmaAbsorb, m.SigmaScatter)
	}
}

// --- Default Material Library ---
// Kept from the teacher's named presets; values are re-tuned for
// physically-based scattering instead of a GPU shading model.

func DefaultMaterial() *Material {
	return NewMaterial("Default")
}

func RedMaterial() *Material {
	m := NewMaterial("Red")
	m.DiffuseColor = core.NewSpectrum(0.8, 0.1, 0.1)
	return m
}

func GreenMaterial() *Material {
	m := NewMaterial("Green")
	m.DiffuseColor = core.NewSpectrum(0.1, 0.8, 0.1)
	return m
}

func BlueMaterial() *Material {
	m := NewMaterial("Blue")
	m.DiffuseColor = core.NewSpectrum(0.1, 0.1, 0.8)
	return m
}

func MetalMaterial() *Material {
	m := NewMaterial("Metal")
	m.DiffuseColor = core.SpectrumFromConstant(0.9)
	m.Metallic = 1
	m.Roughness = 0.2
	m.Specular = 1
	m.SpecularColor = core.NewSpectrum(3.5, 3.0, 2.3) // extinction coefficient k
	return m
}

func GlassMaterial() *Material {
	m := NewMaterial("Glass")
	m.DiffuseColor = core.NewSpectrum(0.9, 0.95, 1.0)
	m.Roughness = 0.02
	m.Specular = 1
	m.Opacity = 0.3
	m.Eta = 1.5
	return m
}

func EmissiveMaterial(r, g, b float32) *Material {
	m := NewMaterial("Emissive")
	m.DiffuseColor = core.NewSpectrum(float64(r), float64(g), float64(b))
	m.EmissiveColor = core.NewSpectrum(float64(r), float64(g), float64(b))
	return m
}

// SubsurfaceMaterial builds a dipole-subsurface skin/wax-like material,
// supplementing the teacher's material library (spec §4.3 BSSRDF,
// grounded on sources/subsurface/dipole.cc's Dipole material).
func SubsurfaceMaterial(sigmaA, sigmaSPrime core.Spectrum, eta float64) *Material {
	m := NewMaterial("Subsurface")
	m.DiffuseColor = core.SpectrumZero
	m.Specular = 0.3
	m.Roughness = 0.3
	m.Eta = eta
	m.SigmaAbsorb = sigmaA
	m.SigmaScatter = sigmaSPrime
	return m
}
