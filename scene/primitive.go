package scene

import (
	"github.com/google/uuid"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

// GeometricPrimitive binds a shape.Shape to a Material and, optionally, an
// AreaLight, implementing core.Primitive (spec §3 "Scene"). This is the
// only place a bare shape.Shape becomes renderable. ID replaces the
// teacher's bare `uint32` scene-node counter (scene/node.go) with a
// collision-free identifier stamped at construction.
type GeometricPrimitive struct {
	ID        uuid.UUID
	Shape     shapeLike
	Material  core.Material
	AreaLight core.AreaLight
}

// shapeLike is the subset of shape.Shape that GeometricPrimitive actually
// calls.
type shapeLike interface {
	Bounds() math.Bounds3
	Intersect(ray math.Ray) (*core.Interaction, float32, bool)
	IntersectP(ray math.Ray) bool
}

func NewGeometricPrimitive(s shapeLike, mat core.Material, light core.AreaLight) *GeometricPrimitive {
	return &GeometricPrimitive{ID: uuid.New(), Shape: s, Material: mat, AreaLight: light}
}

func (p *GeometricPrimitive) Bounds() math.Bounds3 { return p.Shape.Bounds() }

func (p *GeometricPrimitive) Intersect(ray math.Ray) (*core.Interaction, bool) {
	it, t, ok := p.Shape.Intersect(ray)
	if !ok {
		return nil, false
	}
	it.T = t
	it.Primitive = p
	return it, true
}

func (p *GeometricPrimitive) IntersectP(ray math.Ray) bool { return p.Shape.IntersectP(ray) }

func (p *GeometricPrimitive) GetMaterial() core.Material { return p.Material }

func (p *GeometricPrimitive) GetAreaLight() core.AreaLight { return p.AreaLight }
