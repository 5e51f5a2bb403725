package mesh

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// polygon builds a mesh with one regular n-gon in the z=0 plane, wound counter-clockwise.
func polygon(t *testing.T, n int) Mesh {
	t.Helper()
	m := NewMesh()
	layer, err := m.CreateDataLayer(PositionsLayer, ThreeFloatsPerVertex)
	require.NoError(t, err)
	vs := newVertices(m, n)
	for i, v := range vs {
		angle := 2 * math.Pi * float64(i) / float64(n)
		p := common.Vec3(float32(math.Cos(angle)), float32(math.Sin(angle)), 0)
		p.CopyTo(layer.Data.Floats(), 3*v)
	}
	_, err = m.AddFace(vs...)
	require.NoError(t, err)
	return m
}

// grid builds a w x h grid of unit quads with slightly perturbed heights.
func grid(t *testing.T, w, h int) Mesh {
	t.Helper()
	m := NewMesh()
	layer, err := m.CreateDataLayer(PositionsLayer, ThreeFloatsPerVertex)
	require.NoError(t, err)
	id := func(x, y int) int { return y*(w+1) + x }
	for y := 0; y <= h; y++ {
		for x := 0; x <= w; x++ {
			v := m.NewVertex()
			common.Vec3(float32(x), float32(y), float32((x*7+y*3)%5)*0.1).CopyTo(layer.Data.Floats(), 3*v)
		}
	}
	for y := range h {
		for x := range w {
			_, err := m.AddFace(id(x, y), id(x+1, y), id(x+1, y+1), id(x, y+1))
			require.NoError(t, err)
		}
	}
	return m
}

func vec(a *common.DataArray, element int) common.Vector3 {
	return common.Vector3FromSlice(a.Floats(), 3*element)
}

func TestTriangulate_CountsPerPolygon(t *testing.T) {
	for n := 3; n <= 9; n++ {
		b, err := Triangulate(polygon(t, n))
		require.NoError(t, err)
		assert.Equal(t, n-2, b.NumTriangles(), "n=%d", n)
		assert.Equal(t, 3*(n-2), b.Positions.NumElements())
		assert.Equal(t, 3*(n-2), b.Normals.NumElements())
		assert.Equal(t, 3*(n-2), b.BaryCoords.NumElements())
	}
}

func TestTriangulate_FlatNormals(t *testing.T) {
	b, err := Triangulate(grid(t, 3, 2))
	require.NoError(t, err)
	require.Equal(t, 12, b.NumTriangles())

	for tri := range b.NumTriangles() {
		p0, pS, pT := vec(b.Positions, 3*tri), vec(b.Positions, 3*tri+1), vec(b.Positions, 3*tri+2)
		want := pS.Sub(p0).Cross(pT.Sub(p0)).Normalized()
		for k := range 3 {
			got := vec(b.Normals, 3*tri+k)
			assert.InDelta(t, want.X, got.X, 1e-6)
			assert.InDelta(t, want.Y, got.Y, 1e-6)
			assert.InDelta(t, want.Z, got.Z, 1e-6)
		}
		assert.InDelta(t, 1, want.Length(), 1e-5)
	}
}

func TestTriangulate_QuadBorderCodes(t *testing.T) {
	b, err := Triangulate(polygon(t, 4))
	require.NoError(t, err)
	require.Equal(t, 2, b.NumTriangles())

	assert.Equal(t, []float32{
		1, 0, 0, 0, -1, 0, 0, 0, 1, // (v0, v1, v2): side v2-v0 is the diagonal
		1, 0, 0, 0, 1, 0, 0, 0, -1, // (v0, v2, v3): side v0-v2 is the diagonal
	}, b.BaryCoords.Floats())

	// Positions follow the fan: v0 v1 v2, v0 v2 v3.
	p := b.Positions.Floats()
	assert.InDelta(t, 1, p[0], 1e-6)
	assert.Equal(t, p[0:3], p[9:12])
	assert.Equal(t, p[6:9], p[12:15])
}

func TestTriangulate_TriangleHasAllBorders(t *testing.T) {
	b, err := Triangulate(polygon(t, 3))
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0, 0, 1, 0, 0, 0, 1}, b.BaryCoords.Floats())
}

func TestTriangulate_DiagonalsNeverMarkedAsBorders(t *testing.T) {
	const n = 7
	b, err := Triangulate(polygon(t, n))
	require.NoError(t, err)

	bary := b.BaryCoords.Floats()
	borders := 0
	for tri := range n - 2 {
		y := bary[9*tri+4]
		z := bary[9*tri+8]
		assert.Equal(t, tri == n-3, y == 1, "triangle %d: closing side", tri)
		assert.Equal(t, tri == 0, z == 1, "triangle %d: opening side", tri)
		if y == 1 {
			borders++
		}
		if z == 1 {
			borders++
		}
	}
	// Every triangle contributes its S-T side, plus the two fan ends.
	assert.Equal(t, n, borders+(n-2))
}

func TestTriangulate_ParallelMatchesSerial(t *testing.T) {
	m := grid(t, 24, 17)
	serial, err := Triangulate(m)
	require.NoError(t, err)
	parallel, err := Triangulate(m, WithWorkers(4))
	require.NoError(t, err)

	assert.Equal(t, m.NumTriangles(), serial.NumTriangles())
	assert.Equal(t, serial.Positions.Floats(), parallel.Positions.Floats())
	assert.Equal(t, serial.Normals.Floats(), parallel.Normals.Floats())
	assert.Equal(t, serial.BaryCoords.Floats(), parallel.BaryCoords.Floats())
}

func TestTriangulate_MissingPositions(t *testing.T) {
	m := buildCube(t)
	_, err := Triangulate(m)
	assert.ErrorIs(t, err, ErrLayerNotFound)

	_, err = m.CreateDataLayer("uv", TwoFloatsPerVertex)
	require.NoError(t, err)
	_, err = Triangulate(m, WithPositionsLayer("uv"))
	assert.ErrorIs(t, err, ErrLayerTypeMismatch)
}

func TestTriangulate_MalformedLoopProducesNoOutput(t *testing.T) {
	m := grid(t, 2, 2)
	b, err := Triangulate(m)
	require.NoError(t, err)
	before := append([]float32(nil), b.Positions.Floats()...)

	impl := m.(*mesh)
	first := m.FaceEdge(3)
	// Short-circuit face 3 into a two-edge loop.
	second := m.NextInLoop(first)
	impl.setField(second, fieldNext, first)
	impl.setField(first, fieldPrev, second)

	_, err = Triangulate(m)
	require.ErrorIs(t, err, ErrMalformedMesh)
	var meshErr *MeshError
	require.ErrorAs(t, err, &meshErr)
	assert.Equal(t, 3, meshErr.Face)

	require.Error(t, b.Rebuild(m, WithWorkers(2)))
	assert.Equal(t, before, b.Positions.Floats(), "a failed rebuild keeps the previous output")
}

func TestTriangleBuffers_Apply(t *testing.T) {
	b, err := Triangulate(polygon(t, 5))
	require.NoError(t, err)

	r := rendering.NewRendering()
	var added []int
	r.AddListener(&rendering.ListenerFuncs{OnAdded: func(kind rendering.ResourceKind, key int) {
		added = append(added, key)
	}})
	require.NoError(t, r.Update(func(mu rendering.Mutator) error {
		return b.Apply(mu, 1, 2, 3)
	}))
	assert.Equal(t, []int{1, 2, 3}, added)

	r.Read(func(s rendering.Snapshot) {
		normals, ok := s.VertexBuffer(2)
		require.True(t, ok)
		assert.Same(t, b.Normals, normals)
		assert.Equal(t, 9, normals.NumElements())
	})

	assert.ErrorIs(t, b.Apply(r, -1, 2, 3), rendering.ErrInvalidKey)
}
