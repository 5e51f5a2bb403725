package mesh

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cubeFaces lists the six quads of a cube whose vertex i sits at
// ((i&4)?+:-, (i&2)?+:-, (i&1)?+:-), each wound counter-clockwise seen from outside.
var cubeFaces = [][]int{
	{0, 2, 3, 1},
	{4, 5, 7, 6},
	{0, 4, 6, 2},
	{5, 1, 3, 7},
	{2, 6, 7, 3},
	{1, 5, 4, 0},
}

func newVertices(m Mesh, n int) []int {
	vs := make([]int, n)
	for i := range vs {
		vs[i] = m.NewVertex()
	}
	return vs
}

func buildCube(t *testing.T) Mesh {
	t.Helper()
	m := NewMesh()
	newVertices(m, 8)
	for _, f := range cubeFaces {
		_, err := m.AddFace(f...)
		require.NoError(t, err)
	}
	return m
}

func TestMesh_SingleTriangle(t *testing.T) {
	m := NewMesh()
	v := newVertices(m, 3)
	face, err := m.AddFace(v...)
	require.NoError(t, err)

	assert.Equal(t, 0, face)
	assert.Equal(t, 3, m.NumVertices())
	assert.Equal(t, 3, m.NumEdges())
	assert.Equal(t, 1, m.NumFaces())
	assert.Equal(t, 3, m.NumEdgesForFace(face))
	assert.Equal(t, 1, m.NumTriangles())
	require.NoError(t, m.Validate())

	for _, d := range slices.Collect(m.FaceEdges(face)) {
		assert.Equal(t, face, m.FaceOf(d))
		assert.True(t, m.IsBoundary(Opposite(d)))
		assert.Equal(t, d, Opposite(Opposite(d)))
		assert.Equal(t, m.EndOf(d), m.StartOf(m.NextInLoop(d)))
	}
}

func TestMesh_Cube(t *testing.T) {
	m := buildCube(t)

	assert.Equal(t, 8, m.NumVertices())
	assert.Equal(t, 12, m.NumEdges())
	assert.Equal(t, 6, m.NumFaces())
	assert.Equal(t, 12, m.NumTriangles())
	require.NoError(t, m.Validate())

	for v := range m.Vertices() {
		assert.Equal(t, 3, m.NumEdgesForVertex(v), "vertex %d", v)
		for d := range m.OutgoingEdges(v) {
			assert.Equal(t, v, m.StartOf(d))
			assert.False(t, m.IsBoundary(d), "closed mesh has no boundary")
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, slices.Collect(m.Faces()))
	assert.Len(t, slices.Collect(m.Edges()), 12)
}

func TestMesh_AddFaceErrorsLeaveMeshUntouched(t *testing.T) {
	m := buildCube(t)
	extra := newVertices(m, 2)

	tests := []struct {
		name     string
		vertices []int
	}{
		{name: "too few vertices", vertices: []int{0, 1}},
		{name: "unknown vertex", vertices: []int{0, 1, 99}},
		{name: "repeated vertex", vertices: []int{extra[0], extra[1], extra[0]}},
		{name: "directed edge already owned", vertices: []int{0, 2, 3, 1}},
		{name: "vertex surrounded", vertices: []int{0, extra[0], extra[1]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.AddFace(tt.vertices...)
			require.ErrorIs(t, err, ErrMalformedMesh)
			var meshErr *MeshError
			require.ErrorAs(t, err, &meshErr)
			assert.Equal(t, "add face", meshErr.Op)

			assert.Equal(t, 6, m.NumFaces())
			assert.Equal(t, 12, m.NumEdges())
			assert.Equal(t, 8, m.NumVertices())
			require.NoError(t, m.Validate())
		})
	}
}

func TestMesh_AddFaceThroughSharedVertex(t *testing.T) {
	// Two triangles touch at c only; a pentagon reusing boundary edges of both closes the gap.
	m := NewMesh()
	v := newVertices(m, 5)
	a, b, c, d, e := v[0], v[1], v[2], v[3], v[4]
	_, err := m.AddFace(a, b, c)
	require.NoError(t, err)
	_, err = m.AddFace(c, d, e)
	require.NoError(t, err)
	_, err = m.AddFace(b, a, e, d, c)
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	assert.Equal(t, 3, m.NumFaces())
	assert.Equal(t, 5, m.NumVertices())
}

func TestMesh_RemoveFace(t *testing.T) {
	m := buildCube(t)

	require.True(t, m.RemoveFace(0))
	assert.False(t, m.RemoveFace(0))
	assert.Equal(t, 5, m.NumFaces())
	assert.Equal(t, 12, m.NumEdges(), "every edge of the removed face is still used by a neighbor")
	assert.Equal(t, 8, m.NumVertices())
	require.NoError(t, m.Validate())

	boundary := 0
	for e := range m.Edges() {
		for _, d := range []int{ForwardEdge(e), ForwardEdge(e) + 1} {
			if m.IsBoundary(d) {
				boundary++
			}
		}
	}
	assert.Equal(t, 4, boundary)

	face, err := m.AddFace(cubeFaces[0]...)
	require.NoError(t, err)
	assert.Equal(t, 0, face, "released face ids are reused")
	assert.Equal(t, 12, m.NumEdges())
	require.NoError(t, m.Validate())
}

func TestMesh_RemoveAllFaces(t *testing.T) {
	m := buildCube(t)
	for f := range 6 {
		require.True(t, m.RemoveFace(f))
		require.NoError(t, m.Validate(), "after removing face %d", f)
	}
	assert.Zero(t, m.NumFaces())
	assert.Zero(t, m.NumEdges())
	assert.Zero(t, m.NumVertices())
	for v := range 8 {
		assert.False(t, m.IsVertexConnected(v))
	}

	for _, f := range cubeFaces {
		_, err := m.AddFace(f...)
		require.NoError(t, err)
	}
	assert.Equal(t, 12, m.NumEdgeIDs(), "edge ids are recycled")
	require.NoError(t, m.Validate())
}

func TestMesh_Clear(t *testing.T) {
	m := buildCube(t)
	layer, err := m.CreateDataLayer(PositionsLayer, ThreeFloatsPerVertex)
	require.NoError(t, err)
	m.Clear()

	assert.Zero(t, m.NumVertexIDs())
	assert.Zero(t, m.NumFaces())
	assert.Zero(t, layer.Data.NumElements())
	require.NoError(t, m.Validate())
}

func TestMesh_DataLayers(t *testing.T) {
	m := NewMesh()
	newVertices(m, 2)

	positions, err := m.CreateDataLayer("positions", ThreeFloatsPerVertex)
	require.NoError(t, err)
	assert.Equal(t, 2, positions.Data.NumElements())

	weights, err := m.CreateDataLayer("weights", OneFloatPerEdge)
	require.NoError(t, err)
	assert.Zero(t, weights.Data.NumElements())

	_, err = m.CreateDataLayer("positions", ThreeFloatsPerVertex)
	assert.ErrorIs(t, err, ErrLayerExists)

	m.NewVertex()
	assert.Equal(t, 3, positions.Data.NumElements(), "layers follow the vertex id space")

	got, err := m.DataLayer("positions", ThreeFloatsPerVertex)
	require.NoError(t, err)
	assert.Same(t, positions, got)

	_, err = m.DataLayer("positions", TwoFloatsPerVertex)
	assert.ErrorIs(t, err, ErrLayerTypeMismatch)
	_, err = m.DataLayer("colors", ThreeFloatsPerVertex)
	assert.ErrorIs(t, err, ErrLayerNotFound)

	_, err = m.AddFace(0, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, weights.Data.NumElements())

	assert.True(t, m.DestroyDataLayer("positions"))
	assert.False(t, m.DestroyDataLayer("positions"))
	m.NewVertex()
	assert.Equal(t, 3, positions.Data.NumElements(), "destroyed layers stop growing")
	require.NoError(t, m.Validate())
}

func TestMesh_ValidateDetectsBrokenLoop(t *testing.T) {
	m := buildCube(t)
	impl := m.(*mesh)
	first := m.FaceEdge(2)
	impl.setField(first, fieldNext, first)

	err := m.Validate()
	require.ErrorIs(t, err, ErrMalformedMesh)
	var meshErr *MeshError
	require.ErrorAs(t, err, &meshErr)
	assert.Equal(t, "validate", meshErr.Op)
}
