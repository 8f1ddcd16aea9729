package io

import (
	"encoding/json"
	"fmt"
	"os"
)

// SceneFile is the top-level scene descriptor: a flat, JSON-encoded form of
// the recognized-keys table a hierarchical scene descriptor carries
// (integrator/accelerator/sampler/film/camera/shape/bsdf/subsurface/medium/
// emitter). Keys this struct does not name are ignored on decode (and so
// dropped by a later SaveScene) rather than rejected, matching the
// teacher's permissive JSON scene format.
type SceneFile struct {
	Version string `json:"version"`
	Name    string `json:"name"`

	Integrator  IntegratorData `json:"integrator"`
	Accelerator string         `json:"accelerator,omitempty"` // "bvh" or "qbvh"
	Sampler     SamplerData    `json:"sampler"`
	Film        FilmData       `json:"film"`
	Camera      CameraData     `json:"camera"`

	Shapes    []ShapeData     `json:"shapes,omitempty"`
	Materials []MaterialData  `json:"materials,omitempty"`
	Media     []MediumData    `json:"media,omitempty"`
	Emitters  []EmitterData   `json:"emitters,omitempty"`

	DeadlineSeconds float64 `json:"deadlineSeconds,omitempty"`
}

// IntegratorData selects the light transport algorithm and its depth cap.
type IntegratorData struct {
	Type        string `json:"type"` // "path", "volpath", "sppm", "bdpt", "pssmlt", "gdpt"
	MaxDepth    int    `json:"maxDepth"`
	BounceLimit int    `json:"bounceLimit,omitempty"`

	// SPPM-only (spec §4.6): photon count per pass, pass count, and the
	// initial gather-radius guess each visible point starts from.
	PhotonsPerPass int     `json:"photonsPerPass,omitempty"`
	Passes         int     `json:"passes,omitempty"`
	InitialRadius  float64 `json:"initialRadius,omitempty"`

	// PSSMLT-only: total chain mutations per pixel of output resolution.
	MutationsPerPixel int `json:"mutationsPerPixel,omitempty"`
}

// SamplerData selects the sample generator and per-pixel sample count.
type SamplerData struct {
	Type         string `json:"type"` // not read: every render uses the independent sampler
	PixelSamples int    `json:"pixelSamples"`
}

// FilmData configures the output image: resolution and the printf-style
// save path (spec §6 "%d for iteration").
type FilmData struct {
	ResolutionX int    `json:"resolutionX"`
	ResolutionY int    `json:"resolutionY"`
	Filename    string `json:"filename"` // e.g. "out-%04d.png"
	Filter      string `json:"filter,omitempty"` // "box", "tent", "gaussian"
}

// CameraData constructs a camera.Camera: position/rotation transform plus
// projection and lens parameters.
type CameraData struct {
	Type          string     `json:"type"` // not read: the camera built is always a PerspectiveCamera; there is no orthographic camera
	Position      [3]float32 `json:"position"`
	Rotation      [4]float32 `json:"rotation"` // quaternion (x,y,z,w)
	FOV           float32    `json:"fov"`
	LensRadius    float32    `json:"lensRadius,omitempty"`
	FocalDistance float32    `json:"focalDistance,omitempty"`
}

// ShapeData references a primitive: either an analytic sphere (position and
// radius) or a mesh file asset (OBJ/glTF). No other shape type is read.
type ShapeData struct {
	Type     string     `json:"type"` // "sphere", "mesh"
	Filename string     `json:"filename,omitempty"`
	Position [3]float32 `json:"position"`
	Rotation [4]float32 `json:"rotation"`
	Scale    [3]float32 `json:"scale"`
	Radius   float32    `json:"radius,omitempty"`
	Material string     `json:"material"`    // name referencing Materials
	Emitter  string     `json:"emitter,omitempty"` // name referencing Emitters
}

// MaterialData is the PBR-lite bsdf.type descriptor (spec §6 "bsdf.type +
// texture slots"); texture slots are out of scope (spec's textures
// Non-goal) so colors are constant spectra.
type MaterialData struct {
	Name         string     `json:"name"`
	DiffuseColor [3]float32 `json:"diffuseColor"`
	Roughness    float32    `json:"roughness"`
	Metallic     float32    `json:"metallic"`
	Specular     float32    `json:"specular"`
	Opacity      float32    `json:"opacity"`
	Eta          float64    `json:"eta,omitempty"`
}

// MediumData is a homogeneous participating medium (spec §6 "medium.type").
type MediumData struct {
	Name    string     `json:"name"`
	SigmaA  [3]float32 `json:"sigmaA"`
	SigmaS  [3]float32 `json:"sigmaS"`
	Scale   float32    `json:"scale"`
	G       float32    `json:"g"` // Henyey-Greenstein asymmetry
}

// EmitterData is an area/env/point light (spec §6 "emitter.type").
type EmitterData struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"` // "area", "point", "infinite"
	Radiance  [3]float32 `json:"radiance"`
	Position  [3]float32 `json:"position,omitempty"`
	TwoSided  bool       `json:"twoSided,omitempty"`
}

// SaveScene serializes a scene descriptor to JSON.
func SaveScene(path string, scene *SceneFile) error {
	data, err := json.MarshalIndent(scene, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadScene deserializes a JSON scene descriptor, the InvalidScene error
// kind (spec §7) surfacing through the returned error for malformed input.
func LoadScene(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	scene := &SceneFile{}
	if err := json.Unmarshal(data, scene); err != nil {
		return nil, fmt.Errorf("failed to parse scene file: %w", err)
	}
	if scene.Integrator.Type == "" {
		return nil, fmt.Errorf("scene file missing required integrator.type")
	}
	if scene.Camera.Type == "" {
		return nil, fmt.Errorf("scene file missing required camera.type")
	}
	return scene, nil
}

// NewDefaultSceneFile creates a minimal, renderable scene file with
// sensible defaults for every required key.
func NewDefaultSceneFile(name string) *SceneFile {
	return &SceneFile{
		Version: "1.0",
		Name:    name,
		Integrator: IntegratorData{
			Type:     "path",
			MaxDepth: 5,
		},
		Sampler: SamplerData{
			Type:         "independent",
			PixelSamples: 64,
		},
		Film: FilmData{
			ResolutionX: 1280,
			ResolutionY: 720,
			Filename:    name + "-%04d.png",
			Filter:      "gaussian",
		},
		Camera: CameraData{
			Type:     "perspective",
			Position: [3]float32{0, 2, 5},
			Rotation: [4]float32{0, 0, 0, 1},
			FOV:      60,
		},
	}
}
