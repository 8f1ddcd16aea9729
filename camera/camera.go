// Package camera implements perspective ray generation (spec §4.1's Camera
// component), adapted from the teacher's view-transform camera: Position
// and Rotation drive GetForward/GetRight/GetUp exactly as before, but
// instead of building view/projection matrices for a GPU pipeline this
// camera shoots world-space primary rays through a raster sample.
package camera

import (
	stdmath "math"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

// Camera is the renderer's ray-generation interface (spec §4.1).
type Camera interface {
	// GenerateRay produces a primary ray for a raster-space sample pFilm in
	// [0,resX]x[0,resY] and, for cameras with a finite aperture, a lens
	// sample in [0,1)^2.
	GenerateRay(pFilm math.Vec2, lensU, lensV float64) math.Ray
	// We evaluates the camera's importance function for BDPT light-path
	// connections that terminate on the camera (spec §4.4's BDPT).
	We(ray math.Ray) (importance float64, pRaster math.Vec2, ok bool)
	PdfWe(ray math.Ray) (pdfPos, pdfDir float64)
}

// PerspectiveCamera generalizes the teacher's Camera: the embedded
// core.Transform places it in world space (Position/Rotation promoted
// directly, GetForward/GetRight/GetUp inherited from it rather than
// reimplemented here), FOV/AspectRatio define the projection, and
// LensRadius/FocalDistance add an optional thin-lens depth of field.
type PerspectiveCamera struct {
	core.Transform
	FOV         float32 // vertical field of view, radians
	AspectRatio float32
	ResX, ResY  int

	LensRadius    float32
	FocalDistance float32
}

func NewPerspectiveCamera(pos math.Vec3, rot math.Quaternion, fov float32, resX, resY int) *PerspectiveCamera {
	return &PerspectiveCamera{
		Transform:   core.Transform{Position: pos, Rotation: rot, Scale: math.Vec3One},
		FOV:         fov,
		AspectRatio: float32(resX) / float32(resY),
		ResX:        resX,
		ResY:        resY,
	}
}

// cameraSpaceDir maps a raster sample to a direction in camera space
// (+Z forward, +X right, +Y up), scaled by the vertical FOV's half-angle.
func (c *PerspectiveCamera) cameraSpaceDir(pFilm math.Vec2) math.Vec3 {
	ndcX := (2*(float64(pFilm.X)/float64(c.ResX)) - 1) * float64(c.AspectRatio)
	ndcY := 1 - 2*(float64(pFilm.Y)/float64(c.ResY))
	tanHalfFov := stdmath.Tan(float64(c.FOV) / 2)
	return math.Vec3{
		X: float32(ndcX * tanHalfFov),
		Y: float32(ndcY * tanHalfFov),
		Z: 1,
	}.Normalize()
}

func (c *PerspectiveCamera) GenerateRay(pFilm math.Vec2, lensU, lensV float64) math.Ray {
	dirCamera := c.cameraSpaceDir(pFilm)
	dirWorld := c.GetRight().Mul(dirCamera.X).Add(c.GetUp().Mul(dirCamera.Y)).Add(c.GetForward().Mul(dirCamera.Z)).Normalize()

	origin := c.Position
	if c.LensRadius > 0 {
		lx, ly := concentricSampleDisk(lensU, lensV)
		lensOffset := c.GetRight().Mul(float32(lx) * c.LensRadius).Add(c.GetUp().Mul(float32(ly) * c.LensRadius))
		ft := c.FocalDistance / float32(maxf(1e-6, float64(dirCamera.Z)))
		pFocus := origin.Add(dirWorld.Mul(ft))
		origin = origin.Add(lensOffset)
		dirWorld = pFocus.Sub(origin).Normalize()
	}
	return math.NewRay(origin, dirWorld)
}

// We and PdfWe are grounded on the teacher's forward-transform convention
// but express the thin-lens camera's importance, not a GPU projection: a
// pinhole camera has pdfPos = 1/lens-area and pdfDir = 1/(A*cos^3(theta))
// where A is the raster solid-angle-subtended image area.
func (c *PerspectiveCamera) We(ray math.Ray) (float64, math.Vec2, bool) {
	cosTheta := float64(ray.Direction.Dot(c.GetForward()))
	if cosTheta <= 0 {
		return 0, math.Vec2{}, false
	}
	tanHalfFov := stdmath.Tan(float64(c.FOV) / 2)
	lensArea := float64(1)
	if c.LensRadius > 0 {
		lensArea = stdmath.Pi * float64(c.LensRadius*c.LensRadius)
	}
	imageArea := 4 * tanHalfFov * tanHalfFov * float64(c.AspectRatio)
	we := 1 / (imageArea * lensArea * cosTheta * cosTheta * cosTheta * cosTheta)
	return we, math.Vec2{}, true
}

func (c *PerspectiveCamera) PdfWe(ray math.Ray) (float64, float64) {
	cosTheta := float64(ray.Direction.Dot(c.GetForward()))
	if cosTheta <= 0 {
		return 0, 0
	}
	lensArea := float64(1)
	if c.LensRadius > 0 {
		lensArea = stdmath.Pi * float64(c.LensRadius*c.LensRadius)
	}
	tanHalfFov := stdmath.Tan(float64(c.FOV) / 2)
	imageArea := 4 * tanHalfFov * tanHalfFov * float64(c.AspectRatio)
	return 1 / lensArea, 1 / (imageArea * cosTheta * cosTheta * cosTheta)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func concentricSampleDisk(u1, u2 float64) (float64, float64) {
	ox, oy := 2*u1-1, 2*u2-1
	if ox == 0 && oy == 0 {
		return 0, 0
	}
	var theta, r float64
	if stdmath.Abs(ox) > stdmath.Abs(oy) {
		r = ox
		theta = (stdmath.Pi / 4) * (oy / ox)
	} else {
		r = oy
		theta = stdmath.Pi/2 - (stdmath.Pi/4)*(ox/oy)
	}
	return r * stdmath.Cos(theta), r * stdmath.Sin(theta)
}
