package io

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/rendercore/pathtracer/core"
	renmath "github.com/rendercore/pathtracer/math"
	"github.com/rendercore/pathtracer/shape"
)

// LoadGLTFShapes loads every mesh primitive of a glTF/GLB document and
// returns the triangles of the whole file as one flat shape.Shape slice
// (spec §6 `shape.type: "mesh"` resolving a .gltf/.glb filename), grounded
// on the teacher's scene/gltf_loader.go: positions are required,
// normals/UVs optional and read via the same qmuntal/gltf/modeler
// accessors, but each glTF primitive becomes a shape.TriangleMesh whose
// triangles are appended to the result, instead of the teacher's GPU-bound
// scene.Mesh.
func LoadGLTFShapes(path string) ([]shape.Shape, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening gltf %q: %w", path, err)
	}

	var out []shape.Shape
	for _, gm := range doc.Meshes {
		for primIdx, prim := range gm.Primitives {
			tm, err := loadGLTFPrimitive(doc, *prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", gm.Name, primIdx, err)
			}
			out = append(out, shape.NewTriangles(tm)...)
		}
	}
	return out, nil
}

func loadGLTFPrimitive(doc *gltf.Document, prim gltf.Primitive) (*shape.TriangleMesh, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: renmath.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   renmath.Vec3{X: 0, Y: 1, Z: 0},
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = renmath.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
		if i < len(uvs) {
			v.UV = renmath.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	return &shape.TriangleMesh{Vertices: verts, Indices: indices}, nil
}
