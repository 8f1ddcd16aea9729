package shape

import (
	stdmath "math"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

// TriangleMesh is the shared, immutable vertex/index storage for a batch of
// Triangle shapes, mirroring the teacher's core.MeshData layout (spec §3
// "external collaborator" mesh data, adapted from a GPU vertex buffer into
// accelerator-ready storage).
type TriangleMesh struct {
	Vertices []core.Vertex
	Indices  []uint32
}

// NewTriangles builds one Triangle shape per face (3 indices) in mesh.
func NewTriangles(mesh *TriangleMesh) []Shape {
	n := len(mesh.Indices) / 3
	tris := make([]Shape, 0, n)
	for f := 0; f < n; f++ {
		tris = append(tris, &Triangle{Mesh: mesh, Face: f})
	}
	return tris
}

// Triangle references one face of a shared TriangleMesh.
type Triangle struct {
	Mesh *TriangleMesh
	Face int
}

func (t *Triangle) verts() (core.Vertex, core.Vertex, core.Vertex) {
	i := t.Face * 3
	idx := t.Mesh.Indices
	v := t.Mesh.Vertices
	return v[idx[i]], v[idx[i+1]], v[idx[i+2]]
}

func (t *Triangle) Bounds() math.Bounds3 {
	v0, v1, v2 := t.verts()
	b := math.NewBounds3(v0.Position)
	return b.UnionPoint(v1.Position).UnionPoint(v2.Position)
}

func (t *Triangle) Area() float32 {
	v0, v1, v2 := t.verts()
	return v1.Position.Sub(v0.Position).Cross(v2.Position.Sub(v0.Position)).Length() * 0.5
}

// Intersect implements the Möller-Trumbore ray-triangle test.
func (t *Triangle) Intersect(ray math.Ray) (*core.Interaction, float32, bool) {
	v0, v1, v2 := t.verts()
	e1 := v1.Position.Sub(v0.Position)
	e2 := v2.Position.Sub(v0.Position)
	pvec := ray.Direction.Cross(e2)
	det := e1.Dot(pvec)
	if stdmath.Abs(float64(det)) < 1e-9 {
		return nil, 0, false // near-degenerate / parallel: spec §7 GeometryDegenerate territory
	}
	invDet := 1.0 / det
	tvec := ray.Origin.Sub(v0.Position)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return nil, 0, false
	}
	qvec := tvec.Cross(e1)
	v := ray.Direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return nil, 0, false
	}
	tHit := e2.Dot(qvec) * invDet
	if tHit <= 1e-4 || tHit >= ray.TMax {
		return nil, 0, false
	}

	w := 1 - u - v
	p := v0.Position.Mul(w).Add(v1.Position.Mul(u)).Add(v2.Position.Mul(v))
	ng := e1.Cross(e2).Normalize()
	ns := v0.Normal.Mul(w).Add(v1.Normal.Mul(u)).Add(v2.Normal.Mul(v)).Normalize()
	if ns.LengthSqr() < 1e-12 {
		ns = ng
	}
	if ng.Dot(ns) < 0 {
		ng = ng.Negate()
	}
	uv := v0.UV.Mul(w).Add(v1.UV.Mul(u)).Add(v2.UV.Mul(v))

	it := &core.Interaction{
		Point: p,
		Ng:    ng,
		Ns:    ns,
		Dpdu:  e1,
		Dpdv:  e2,
		UV:    uv,
		T:     tHit,
	}
	return it, tHit, true
}

func (t *Triangle) IntersectP(ray math.Ray) bool {
	_, _, ok := t.Intersect(ray)
	return ok
}

func (t *Triangle) Sample(u1, u2 float64) (*core.Interaction, float64) {
	v0, v1, v2 := t.verts()
	su0 := stdmath.Sqrt(u1)
	b0 := 1 - su0
	b1 := u2 * su0
	b2 := 1 - b0 - b1
	p := v0.Position.Mul(float32(b0)).Add(v1.Position.Mul(float32(b1))).Add(v2.Position.Mul(float32(b2)))
	ng := v1.Position.Sub(v0.Position).Cross(v2.Position.Sub(v0.Position)).Normalize()
	it := &core.Interaction{Point: p, Ng: ng, Ns: ng}
	area := t.Area()
	if area <= 0 {
		return it, 0
	}
	return it, 1.0 / float64(area)
}

func (t *Triangle) SampleFrom(ref math.Vec3, u1, u2 float64) (*core.Interaction, float64, bool) {
	it, areaPdf := t.Sample(u1, u2)
	pdf := solidAnglePdfFromArea(areaPdf, ref, it)
	if pdf <= 0 {
		return nil, 0, false
	}
	return it, pdf, true
}

func (t *Triangle) PdfFrom(ref, wi math.Vec3) float64 {
	ray := math.NewRay(ref, wi)
	ray.TMax = math.MaxFloat
	it, tHit, ok := t.Intersect(ray)
	if !ok {
		return 0
	}
	return solidAnglePdfFromArea(1.0/float64(t.Area()), ref, &core.Interaction{Point: it.Point, Ng: it.Ng, T: tHit})
}
