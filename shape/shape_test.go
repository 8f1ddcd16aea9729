package shape

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

func TestSphereIntersectHitsNearSide(t *testing.T) {
	s := NewSphere(math.Vec3{X: 0, Y: 0, Z: 5}, 1)
	ray := math.NewRay(math.Vec3Zero, math.Vec3Front)
	ray.TMax = math.MaxFloat

	it, tHit, ok := s.Intersect(ray)
	require.True(t, ok)
	require.InDelta(t, 4.0, tHit, 1e-4)
	require.InDelta(t, 4.0, it.Point.Z, 1e-4)
}

func TestSphereIntersectMissesWhenRayPointsAway(t *testing.T) {
	s := NewSphere(math.Vec3{X: 0, Y: 0, Z: -5}, 1)
	ray := math.NewRay(math.Vec3Zero, math.Vec3Front)
	ray.TMax = math.MaxFloat

	_, _, ok := s.Intersect(ray)
	require.False(t, ok)
}

func TestSphereIntersectPAgreesWithIntersect(t *testing.T) {
	s := NewSphere(math.Vec3{X: 0, Y: 0, Z: 5}, 1)
	ray := math.NewRay(math.Vec3Zero, math.Vec3Front)
	ray.TMax = math.MaxFloat
	require.True(t, s.IntersectP(ray))
}

func TestSphereBoundsContainsCenterPlusRadius(t *testing.T) {
	s := NewSphere(math.Vec3{X: 1, Y: 2, Z: 3}, 2)
	b := s.Bounds()
	require.InDelta(t, -1.0, b.Min.X, 1e-6)
	require.InDelta(t, 3.0, b.Max.X, 1e-6)
}

func TestSphereAreaMatchesFourPiRSquared(t *testing.T) {
	s := NewSphere(math.Vec3Zero, 2)
	require.InDelta(t, 4*3.14159265*4, s.Area(), 1e-2)
}

func TestSphereSampleLandsOnSurface(t *testing.T) {
	s := NewSphere(math.Vec3{X: 1, Y: 0, Z: 0}, 3)
	it, pdf := s.Sample(0.3, 0.7)
	require.Greater(t, pdf, 0.0)
	dist := it.Point.Sub(s.Center).Length()
	require.InDelta(t, 3.0, dist, 1e-3)
}

func TestSphereSampleFromOutsideReturnsValidConePdf(t *testing.T) {
	s := NewSphere(math.Vec3{X: 0, Y: 0, Z: 10}, 1)
	it, pdf, ok := s.SampleFrom(math.Vec3Zero, 0.5, 0.5)
	require.True(t, ok)
	require.Greater(t, pdf, 0.0)
	require.NotNil(t, it)
}

func TestSpherePdfFromInsideSphereIsZero(t *testing.T) {
	s := NewSphere(math.Vec3Zero, 5)
	pdf := s.PdfFrom(math.Vec3{X: 0.1, Y: 0, Z: 0}, math.Vec3Front)
	require.Equal(t, 0.0, pdf)
}

func triangleMesh() *TriangleMesh {
	return &TriangleMesh{
		Vertices: []core.Vertex{
			{Position: math.Vec3{X: -1, Y: -1, Z: 0}, Normal: math.Vec3Back},
			{Position: math.Vec3{X: 1, Y: -1, Z: 0}, Normal: math.Vec3Back},
			{Position: math.Vec3{X: 0, Y: 1, Z: 0}, Normal: math.Vec3Back},
		},
		Indices: []uint32{0, 1, 2},
	}
}

func TestNewTrianglesProducesOneShapePerFace(t *testing.T) {
	shapes := NewTriangles(triangleMesh())
	require.Len(t, shapes, 1)
}

func TestTriangleIntersectHitsInteriorPoint(t *testing.T) {
	tri := &Triangle{Mesh: triangleMesh(), Face: 0}
	ray := math.NewRay(math.Vec3{X: 0, Y: 0, Z: -5}, math.Vec3Front)
	ray.TMax = math.MaxFloat

	it, tHit, ok := tri.Intersect(ray)
	require.True(t, ok)
	require.InDelta(t, 5.0, tHit, 1e-4)
	require.InDelta(t, 0.0, it.Point.Z, 1e-4)
}

func TestTriangleIntersectMissesOutsideEdges(t *testing.T) {
	tri := &Triangle{Mesh: triangleMesh(), Face: 0}
	ray := math.NewRay(math.Vec3{X: 5, Y: 5, Z: -5}, math.Vec3Front)
	ray.TMax = math.MaxFloat

	_, _, ok := tri.Intersect(ray)
	require.False(t, ok)
}

func TestTriangleAreaMatchesHalfCrossProduct(t *testing.T) {
	tri := &Triangle{Mesh: triangleMesh(), Face: 0}
	require.InDelta(t, 2.0, tri.Area(), 1e-4)
}

func TestTriangleBoundsEnclosesAllVertices(t *testing.T) {
	tri := &Triangle{Mesh: triangleMesh(), Face: 0}
	b := tri.Bounds()
	require.LessOrEqual(t, b.Min.X, float32(-1))
	require.GreaterOrEqual(t, b.Max.X, float32(1))
}

func TestTriangleSampleReturnsPositivePdfForNonDegenerateFace(t *testing.T) {
	tri := &Triangle{Mesh: triangleMesh(), Face: 0}
	_, pdf := tri.Sample(0.25, 0.6)
	require.Greater(t, pdf, 0.0)
}

func TestDiskIntersectHitsWithinRadius(t *testing.T) {
	d := NewDisk(math.Vec3{X: 0, Y: 0, Z: 5}, math.Vec3Back, 2)
	ray := math.NewRay(math.Vec3Zero, math.Vec3Front)
	ray.TMax = math.MaxFloat

	it, tHit, ok := d.Intersect(ray)
	require.True(t, ok)
	require.InDelta(t, 5.0, tHit, 1e-4)
	require.InDelta(t, 0.0, it.Point.X, 1e-4)
}

func TestDiskIntersectMissesBeyondRadius(t *testing.T) {
	d := NewDisk(math.Vec3{X: 0, Y: 0, Z: 5}, math.Vec3Back, 1)
	ray := math.NewRay(math.Vec3{X: 5, Y: 0, Z: 0}, math.Vec3Front)
	ray.TMax = math.MaxFloat

	_, _, ok := d.Intersect(ray)
	require.False(t, ok)
}

func TestDiskAreaMatchesPiRSquared(t *testing.T) {
	d := NewDisk(math.Vec3Zero, math.Vec3Up, 2)
	require.InDelta(t, 3.14159265*4, d.Area(), 1e-2)
}

func TestDiskSampleStaysWithinRadius(t *testing.T) {
	d := NewDisk(math.Vec3Zero, math.Vec3Up, 3)
	it, pdf := d.Sample(0.2, 0.8)
	require.Greater(t, pdf, 0.0)
	require.LessOrEqual(t, it.Point.Sub(d.Center).Length(), float32(3.0001))
}
