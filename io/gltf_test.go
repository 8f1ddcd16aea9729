package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Minimal single-triangle glTF with an embedded base64 buffer: three
// POSITION/NORMAL vertices plus a uint16 index accessor, matching the
// layout loadGLTFPrimitive expects from github.com/qmuntal/gltf/modeler.
const triangleGLTF = `{
  "asset": {"version": "2.0"},
  "scenes": [{"nodes": [0]}],
  "scene": 0,
  "nodes": [{"mesh": 0}],
  "meshes": [
    {
      "name": "triangle",
      "primitives": [
        {
          "attributes": {"POSITION": 0, "NORMAL": 1},
          "indices": 2
        }
      ]
    }
  ],
  "accessors": [
    {"bufferView": 0, "byteOffset": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0,0,0], "max": [1,1,0]},
    {"bufferView": 1, "byteOffset": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 2, "byteOffset": 0, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 36},
    {"buffer": 0, "byteOffset": 72, "byteLength": 6}
  ],
  "buffers": [
    {
      "byteLength": 80,
      "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAAAAAAAAAAAAAAAIA/AAAAAAAAAAAAAIA/AAAAAAAAAAAAAIA/AAABAAIAAAA="
    }
  ]
}`

func TestLoadGLTFShapesParsesSingleTrianglePrimitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triangle.gltf")
	require.NoError(t, os.WriteFile(path, []byte(triangleGLTF), 0644))

	shapes, err := LoadGLTFShapes(path)
	require.NoError(t, err)
	require.Len(t, shapes, 1)
}

func TestLoadGLTFShapesMissingPositionFails(t *testing.T) {
	const noPosition = `{
  "asset": {"version": "2.0"},
  "meshes": [{"primitives": [{"attributes": {}}]}]
}`
	path := filepath.Join(t.TempDir(), "nopos.gltf")
	require.NoError(t, os.WriteFile(path, []byte(noPosition), 0644))

	_, err := LoadGLTFShapes(path)
	require.Error(t, err)
}

func TestLoadGLTFShapesMissingFileReturnsError(t *testing.T) {
	_, err := LoadGLTFShapes(filepath.Join(t.TempDir(), "nope.gltf"))
	require.Error(t, err)
}

func TestLoadGLTFShapesEmptyDocumentProducesNoShapes(t *testing.T) {
	const empty = `{"asset": {"version": "2.0"}}`
	path := filepath.Join(t.TempDir(), "empty.gltf")
	require.NoError(t, os.WriteFile(path, []byte(empty), 0644))

	shapes, err := LoadGLTFShapes(path)
	require.NoError(t, err)
	require.Len(t, shapes, 0)
}
