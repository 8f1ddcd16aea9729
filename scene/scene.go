// Package scene owns the top-level Scene: the accelerator, lights, camera,
// and materials constructed from a scene descriptor (spec §3 "Scene", spec
// §6 external interfaces). Building a Scene from io.SceneFile is the one
// place geometry (shape package), shading (bsdf/materials packages),
// emission (light package), and the accelerator (accel package) are wired
// together.
package scene

import (
	"fmt"
	stdmath "math"
	"strings"

	myio "github.com/rendercore/pathtracer/io"
	"github.com/rendercore/pathtracer/light"
	"github.com/rendercore/pathtracer/materials"
	renmath "github.com/rendercore/pathtracer/math"
	"github.com/rendercore/pathtracer/shape"

	"github.com/rendercore/pathtracer/accel"
	"github.com/rendercore/pathtracer/camera"
	"github.com/rendercore/pathtracer/core"
)

// Accelerator is the subset of accel.BVH/accel.QBVH the renderer needs;
// both satisfy it, letting Scene pick between them per the descriptor's
// `accelerator` key (spec §6).
type Accelerator interface {
	Bounds() renmath.Bounds3
	Intersect(ray renmath.Ray) (*core.Interaction, bool)
	IntersectP(ray renmath.Ray) bool
}

// Scene is the read-only, fully-built world every rendering thread shares
// (spec §5 "the scene, accelerator, materials, textures, lights, and
// camera are all read-only after construction and shared by all threads").
type Scene struct {
	Accel    Accelerator
	Lights   []light.Light
	LightDistribution *light.Distribution
	Camera   camera.Camera
	Bounds   renmath.Bounds3
}

// Intersect finds the closest scene hit.
func (s *Scene) Intersect(ray renmath.Ray) (*core.Interaction, bool) { return s.Accel.Intersect(ray) }

// IntersectP is the any-hit shadow-ray query.
func (s *Scene) IntersectP(ray renmath.Ray) bool { return s.Accel.IntersectP(ray) }

// Build constructs a Scene from a parsed scene descriptor: materials and
// shapes are resolved first, area lights are attached to any shape naming
// an emitter, then the accelerator and light distribution are built over
// the complete primitive/light set.
func Build(sf *myio.SceneFile, baseDir string) (*Scene, error) {
	matByName := map[string]*materials.Material{}
	for _, md := range sf.Materials {
		matByName[md.Name] = materialFromData(md)
	}

	emitterByName := map[string]myio.EmitterData{}
	for _, ed := range sf.Emitters {
		emitterByName[ed.Name] = ed
	}

	var prims []core.Primitive
	var lights []light.Light

	for _, sdata := range sf.Shapes {
		mat, ok := matByName[sdata.Material]
		if !ok {
			if sdata.Material == "" {
				mat = materials.DefaultMaterial()
			} else {
				return nil, fmt.Errorf("shape %q references unknown material %q", sdata.Type, sdata.Material)
			}
		}

		shapes, err := shapesFromData(sdata, baseDir)
		if err != nil {
			return nil, err
		}

		ed, hasEmitter := emitterByName[sdata.Emitter]

		for _, sh := range shapes {
			var al core.AreaLight
			var ll light.Light
			if sdata.Emitter != "" && hasEmitter && ed.Type == "area" {
				radiance := core.NewSpectrum(float64(ed.Radiance[0]), float64(ed.Radiance[1]), float64(ed.Radiance[2]))
				a := light.NewAreaLight(sh, radiance, ed.TwoSided)
				al = a
				ll = a
			}
			prims = append(prims, NewGeometricPrimitive(sh, mat, al))
			if ll != nil {
				lights = append(lights, ll)
			}
		}
	}

	for _, ed := range sf.Emitters {
		switch ed.Type {
		case "point":
			pos := renmath.Vec3{X: ed.Position[0], Y: ed.Position[1], Z: ed.Position[2]}
			intensity := core.NewSpectrum(float64(ed.Radiance[0]), float64(ed.Radiance[1]), float64(ed.Radiance[2]))
			lights = append(lights, light.NewPointLight(pos, intensity))
		case "infinite":
			radiance := core.NewSpectrum(float64(ed.Radiance[0]), float64(ed.Radiance[1]), float64(ed.Radiance[2]))
			lights = append(lights, light.NewInfiniteLight(radiance))
		}
	}

	bvh := accel.Build(prims, accel.DefaultBuildOptions())

	var accelImpl Accelerator = bvh
	if sf.Accelerator == "qbvh" {
		accelImpl = accel.BuildQBVH(bvh)
	}

	cam := cameraFromData(sf.Camera, sf.Film)

	s := &Scene{
		Accel:             accelImpl,
		Lights:            lights,
		LightDistribution: light.NewDistribution(lights),
		Camera:            cam,
		Bounds:            bvh.Bounds(),
	}
	return s, nil
}

func materialFromData(md myio.MaterialData) *materials.Material {
	m := materials.NewMaterial(md.Name)
	m.DiffuseColor = core.NewSpectrum(float64(md.DiffuseColor[0]), float64(md.DiffuseColor[1]), float64(md.DiffuseColor[2]))
	m.Roughness = md.Roughness
	m.Metallic = md.Metallic
	m.Specular = md.Specular
	m.Opacity = md.Opacity
	if md.Eta != 0 {
		m.Eta = md.Eta
	}
	return m
}

func shapesFromData(sdata myio.ShapeData, baseDir string) ([]shape.Shape, error) {
	center := renmath.Vec3{X: sdata.Position[0], Y: sdata.Position[1], Z: sdata.Position[2]}
	switch sdata.Type {
	case "sphere":
		radius := sdata.Radius
		if radius == 0 {
			radius = 1
		}
		return []shape.Shape{shape.NewSphere(center, radius)}, nil
	case "mesh":
		path := baseDir + "/" + sdata.Filename
		if strings.HasSuffix(strings.ToLower(path), ".gltf") || strings.HasSuffix(strings.ToLower(path), ".glb") {
			shapes, err := myio.LoadGLTFShapes(path)
			if err != nil {
				return nil, fmt.Errorf("loading mesh %q: %w", sdata.Filename, err)
			}
			return shapes, nil
		}
		obj, err := myio.LoadOBJ(path)
		if err != nil {
			return nil, fmt.Errorf("loading mesh %q: %w", sdata.Filename, err)
		}
		var out []shape.Shape
		for i := range obj.Meshes {
			out = append(out, obj.Meshes[i].Shapes()...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unrecognized shape.type %q", sdata.Type)
	}
}

func cameraFromData(cd myio.CameraData, fd myio.FilmData) *camera.PerspectiveCamera {
	pos := renmath.Vec3{X: cd.Position[0], Y: cd.Position[1], Z: cd.Position[2]}
	rot := renmath.Quaternion{X: cd.Rotation[0], Y: cd.Rotation[1], Z: cd.Rotation[2], W: cd.Rotation[3]}
	resX, resY := fd.ResolutionX, fd.ResolutionY
	if resX == 0 {
		resX = 1280
	}
	if resY == 0 {
		resY = 720
	}
	fov := cd.FOV
	if fov == 0 {
		fov = 60
	}
	c := camera.NewPerspectiveCamera(pos, rot, fovRadians(fov), resX, resY)
	c.LensRadius = cd.LensRadius
	c.FocalDistance = cd.FocalDistance
	return c
}

func fovRadians(degrees float32) float32 {
	return float32(float64(degrees) * stdmath.Pi / 180)
}
