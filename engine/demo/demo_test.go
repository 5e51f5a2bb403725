package demo

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var viewport = common.Size{Width: 800, Height: 600}

func commandsOf(t *testing.T, desc rendering.Rendering) []rendering.Command {
	t.Helper()
	var cmds []rendering.Command
	desc.Read(func(s rendering.Snapshot) { cmds = s.Commands() })
	return cmds
}

func boundMatrix(t *testing.T, cmds []rendering.Command, v rendering.Variable) common.Matrix4 {
	t.Helper()
	for _, c := range cmds {
		if b, ok := c.(rendering.Binding); ok && b.Variable == v {
			return b.Value.Matrix
		}
	}
	t.Fatalf("%s not bound", v)
	return common.Matrix4{}
}

func TestCubeTopology(t *testing.T) {
	m, err := NewCube(2)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Equal(t, 8, m.NumVertices())
	assert.Equal(t, 12, m.NumEdges())
	assert.Equal(t, 6, m.NumFaces())
	assert.Equal(t, 12, m.NumTriangles())

	for f := range m.Faces() {
		assert.Equal(t, 4, m.NumEdgesForFace(f))
	}
}

func TestCubeNormalsPointOutward(t *testing.T) {
	m, err := NewCube(2)
	require.NoError(t, err)
	b, err := mesh.Triangulate(m)
	require.NoError(t, err)

	pos := b.Positions.Floats()
	normals := b.Normals.Floats()
	for i := 0; i < b.NumTriangles(); i++ {
		var centroid common.Vector3
		for k := 0; k < 3; k++ {
			centroid = centroid.Add(common.Vector3FromSlice(pos, 9*i+3*k))
		}
		n := common.Vector3FromSlice(normals, 9*i)
		assert.InDelta(t, 1, n.Length(), 1e-5)
		assert.Greater(t, n.Dot(centroid), float32(0), "triangle %d", i)
	}
}

func TestNewDemoPublishesScene(t *testing.T) {
	d, err := NewDemo(viewport)
	require.NoError(t, err)

	d.Rendering().Read(func(s rendering.Snapshot) {
		spec, ok := s.Shader(ShaderKey)
		require.True(t, ok)
		assert.Equal(t, rendering.FlatBordered{BorderThickness: 0.1}, spec)
		for _, key := range []int{PositionsKey, NormalsKey, BaryCoordsKey} {
			buf, ok := s.VertexBuffer(key)
			require.True(t, ok, "buffer %d", key)
			assert.Equal(t, 36, buf.NumElements())
			assert.Equal(t, common.ThreeFloats, buf.Type())
		}
	})

	cmds := commandsOf(t, d.Rendering())
	require.Len(t, cmds, 8)
	assert.Equal(t, rendering.ViewToClip, cmds[0].(rendering.Binding).Variable)
	assert.Equal(t, rendering.ModelToView, cmds[1].(rendering.Binding).Variable)
	assert.Equal(t, common.Vec3(0.8, 0.8, 0.8), cmds[2].(rendering.Binding).Value.Vector)
	assert.Equal(t, rendering.Execute{Shader: ShaderKey, Triangles: 12}, cmds[7])
}

func TestDragRepublishesCommands(t *testing.T) {
	d, err := NewDemo(viewport)
	require.NoError(t, err)
	before := boundMatrix(t, commandsOf(t, d.Rendering()), rendering.ModelToView)

	d.MouseDown(common.Position{X: 400, Y: 300}, false, false)
	assert.Equal(t, camera.Rotate, d.Controller().GrabState())
	require.NoError(t, d.MouseDrag(common.Position{X: 450, Y: 320}))
	d.MouseUp()
	assert.False(t, d.Controller().IsGrabbed())

	after := boundMatrix(t, commandsOf(t, d.Rendering()), rendering.ModelToView)
	assert.NotEqual(t, before, after)

	require.NoError(t, d.ResetCamera())
	assert.Equal(t, before, boundMatrix(t, commandsOf(t, d.Rendering()), rendering.ModelToView))
}

func TestSmoothedDragMovesOnTick(t *testing.T) {
	d, err := NewDemo(viewport, WithSmoothing(60, 8, 1))
	require.NoError(t, err)
	before := commandsOf(t, d.Rendering())

	d.MouseDown(common.Position{X: 400, Y: 300}, false, true)
	require.NoError(t, d.MouseDrag(common.Position{X: 400, Y: 100}))
	assert.Equal(t, before, commandsOf(t, d.Rendering()))

	changed, err := d.Tick()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotEqual(t, before, commandsOf(t, d.Rendering()))
}

func TestResizeChangesProjection(t *testing.T) {
	d, err := NewDemo(viewport)
	require.NoError(t, err)
	before := boundMatrix(t, commandsOf(t, d.Rendering()), rendering.ViewToClip)

	d.MouseDown(common.Position{X: 1, Y: 1}, true, false)
	require.NoError(t, d.Resize(common.Size{Width: 600, Height: 600}))
	assert.False(t, d.Controller().IsGrabbed())

	after := boundMatrix(t, commandsOf(t, d.Rendering()), rendering.ViewToClip)
	assert.NotEqual(t, before, after)
	assert.InDelta(t, after[5], after[0], 1e-5)
}

func TestToggleShader(t *testing.T) {
	d, err := NewDemo(viewport, WithBorderThickness(0.2))
	require.NoError(t, err)

	shader := func() rendering.ShaderSpec {
		var spec rendering.ShaderSpec
		d.Rendering().Read(func(s rendering.Snapshot) { spec, _ = s.Shader(ShaderKey) })
		return spec
	}
	require.NoError(t, d.ToggleShader())
	assert.Equal(t, rendering.Smooth{}, shader())
	require.NoError(t, d.ToggleShader())
	assert.Equal(t, rendering.FlatBordered{BorderThickness: 0.2}, shader())
}

func TestRetriangulateAfterEdit(t *testing.T) {
	d, err := NewDemo(viewport, WithWorkers(4))
	require.NoError(t, err)

	removed := -1
	for f := range d.Mesh().Faces() {
		removed = f
		break
	}
	require.True(t, d.Mesh().RemoveFace(removed))
	require.NoError(t, d.Retriangulate())

	cmds := commandsOf(t, d.Rendering())
	assert.Equal(t, rendering.Execute{Shader: ShaderKey, Triangles: 10}, cmds[len(cmds)-1])
}

// countingBackend accepts everything and counts draws.
type countingBackend struct {
	draws    int
	lastCall renderer.DrawCall
}

func (b *countingBackend) BeginFrame(int, int) error                      { return nil }
func (b *countingBackend) EndFrame() error                                { return nil }
func (b *countingBackend) CreateBuffer([]byte) (renderer.Handle, error)   { return new(int), nil }
func (b *countingBackend) WriteBuffer(renderer.Handle, int, []byte) error { return nil }
func (b *countingBackend) DestroyBuffer(renderer.Handle)                  {}
func (b *countingBackend) CreateTexture(int, int, []byte) (renderer.Handle, error) {
	return new(int), nil
}
func (b *countingBackend) WriteTexture(renderer.Handle, int, int, []byte) error { return nil }
func (b *countingBackend) DestroyTexture(renderer.Handle)                       {}
func (b *countingBackend) CreateProgram(rendering.ShaderSpec) (renderer.Handle, error) {
	return new(int), nil
}
func (b *countingBackend) DestroyProgram(renderer.Handle) {}
func (b *countingBackend) Draw(call renderer.DrawCall) error {
	b.draws++
	b.lastCall = call
	return nil
}
func (b *countingBackend) Release() {}

func TestDemoRendersOneDrawPerFrame(t *testing.T) {
	d, err := NewDemo(viewport)
	require.NoError(t, err)

	backend := &countingBackend{}
	r := renderer.NewRenderer(backend, renderer.WithRendering(d.Rendering()))
	defer r.Release()

	require.NoError(t, r.Render(viewport.Width, viewport.Height))
	stats := r.LastFrameStats()
	assert.Equal(t, 1, stats.Draws)
	assert.Equal(t, 4, stats.Creates)
	assert.Equal(t, 36, backend.lastCall.VertexCount)
	_, ok := backend.lastCall.Buffer("baryCoords")
	assert.True(t, ok)

	d.MouseDown(common.Position{X: 400, Y: 300}, true, false)
	require.NoError(t, d.MouseDrag(common.Position{X: 500, Y: 300}))
	require.NoError(t, r.Render(viewport.Width, viewport.Height))
	stats = r.LastFrameStats()
	assert.Equal(t, 1, stats.Draws)
	assert.Equal(t, 0, stats.Creates+stats.Updates)
	assert.Equal(t, 2, backend.draws)
}

func TestRetriangulateWhileRendering(t *testing.T) {
	d, err := NewDemo(viewport)
	require.NoError(t, err)
	r := renderer.NewRenderer(&countingBackend{}, renderer.WithRendering(d.Rendering()))
	defer r.Release()

	face := -1
	for f := range d.Mesh().Faces() {
		face = f
		break
	}
	var corners []int
	for e := range d.Mesh().FaceEdges(face) {
		corners = append(corners, d.Mesh().StartOf(e))
	}

	// Alternating between 10 and 12 triangles resizes the published arrays in place.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 200 {
			if !d.Mesh().RemoveFace(face) {
				t.Error("remove face failed")
				return
			}
			if err := d.Retriangulate(); err != nil {
				t.Error(err)
				return
			}
			added, err := d.Mesh().AddFace(corners...)
			if err != nil {
				t.Error(err)
				return
			}
			face = added
			if err := d.Retriangulate(); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	for range 200 {
		assert.NoError(t, r.Render(viewport.Width, viewport.Height))
	}
	wg.Wait()

	require.NoError(t, r.Render(viewport.Width, viewport.Height))
	assert.Equal(t, 1, r.LastFrameStats().Draws)
	cmds := commandsOf(t, d.Rendering())
	assert.Equal(t, rendering.Execute{Shader: ShaderKey, Triangles: 12}, cmds[len(cmds)-1])
}
