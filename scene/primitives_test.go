package scene

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateSphereMeshVertexAndIndexCounts(t *testing.T) {
	mesh := CreateSphereMesh(1, 8, 4)
	require.Len(t, mesh.Vertices, (4+1)*(8+1))
	require.Len(t, mesh.Indices, 4*8*6)
}

func TestCreateSphereMeshClampsDegenerateInputs(t *testing.T) {
	mesh := CreateSphereMesh(1, 1, 0)
	require.NotEmpty(t, mesh.Vertices)
	require.NotEmpty(t, mesh.Indices)
}

func TestCreateSphereMeshToShapesProducesTriangles(t *testing.T) {
	mesh := CreateSphereMesh(2, 6, 3)
	shapes := ToShapes(mesh)
	require.Len(t, shapes, len(mesh.Indices)/3)
}

func TestCreateCylinderMeshProducesCappedGeometry(t *testing.T) {
	mesh := CreateCylinderMesh(1, 2, 6)
	require.NotEmpty(t, mesh.Vertices)
	require.NotEmpty(t, mesh.Indices)
	require.Zero(t, len(mesh.Indices)%3)
}

func TestCreateConeMeshProducesCappedGeometry(t *testing.T) {
	mesh := CreateConeMesh(1, 2, 6)
	require.NotEmpty(t, mesh.Vertices)
	require.NotEmpty(t, mesh.Indices)
	require.Zero(t, len(mesh.Indices)%3)
	require.Equal(t, float32(0), mesh.Vertices[0].Position.X)
}

func TestCreateTorusMeshVertexAndIndexCounts(t *testing.T) {
	mesh := CreateTorusMesh(2, 0.5, 8, 6)
	require.Len(t, mesh.Vertices, (8+1)*(6+1))
	require.Len(t, mesh.Indices, 8*6*6)
}

func TestCreatePlaneMeshVertexAndIndexCounts(t *testing.T) {
	mesh := CreatePlaneMesh(4, 4, 3)
	require.Len(t, mesh.Vertices, (3+1)*(3+1))
	require.Len(t, mesh.Indices, 3*3*6)
}

func TestCreatePlaneMeshClampsSubdivisionsToOne(t *testing.T) {
	mesh := CreatePlaneMesh(2, 2, 0)
	require.Len(t, mesh.Vertices, 4)
	require.Len(t, mesh.Indices, 6)
}
