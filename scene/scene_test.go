package scene

import (
	"testing"

	"github.com/stretchr/testify/require"

	myio "github.com/rendercore/pathtracer/io"
)

func minimalSceneFile() *myio.SceneFile {
	sf := myio.NewDefaultSceneFile("unit-test")
	sf.Shapes = []myio.ShapeData{
		{Type: "sphere", Position: [3]float32{0, 0, 3}, Radius: 1, Material: "diffuse", Emitter: "sun"},
	}
	sf.Materials = []myio.MaterialData{
		{Name: "diffuse", DiffuseColor: [3]float32{0.6, 0.6, 0.6}, Roughness: 0.8, Opacity: 1},
	}
	sf.Emitters = []myio.EmitterData{
		{Name: "sun", Type: "point", Radiance: [3]float32{10, 10, 10}, Position: [3]float32{2, 2, 0}},
	}
	return sf
}

func TestBuildConstructsSceneWithLightsAndGeometry(t *testing.T) {
	sf := minimalSceneFile()
	sc, err := Build(sf, ".")
	require.NoError(t, err)
	require.NotNil(t, sc.Accel)
	require.Len(t, sc.Lights, 1)
	require.NotNil(t, sc.Camera)
}

func TestBuildRejectsUnknownMaterialReference(t *testing.T) {
	sf := minimalSceneFile()
	sf.Shapes[0].Material = "nonexistent"
	_, err := Build(sf, ".")
	require.Error(t, err)
}

func TestBuildRejectsUnknownShapeType(t *testing.T) {
	sf := minimalSceneFile()
	sf.Shapes[0].Type = "cone-from-the-future"
	_, err := Build(sf, ".")
	require.Error(t, err)
}

func TestBuildWithQBVHAcceleratorSucceeds(t *testing.T) {
	sf := minimalSceneFile()
	sf.Accelerator = "qbvh"
	sc, err := Build(sf, ".")
	require.NoError(t, err)
	require.NotNil(t, sc.Accel)
}

func TestBuildDefaultsMaterialWhenShapeNamesNone(t *testing.T) {
	sf := minimalSceneFile()
	sf.Shapes[0].Material = ""
	sc, err := Build(sf, ".")
	require.NoError(t, err)
	require.NotNil(t, sc)
}
