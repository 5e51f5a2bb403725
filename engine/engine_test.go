package engine

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	size     common.Size
	onResize func(common.Size)
	stop     chan struct{}
	once     sync.Once
}

var _ window.Window = &fakeWindow{}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{size: common.Size{Width: 320, Height: 200}, stop: make(chan struct{})}
}

func (w *fakeWindow) SetUpdateCallback(func())                                     {}
func (w *fakeWindow) SetResizeCallback(callback func(common.Size))                 { w.onResize = callback }
func (w *fakeWindow) SetKeyDownCallback(func(uint32))                              {}
func (w *fakeWindow) SetMouseDownCallback(func(common.Position, window.Modifiers)) {}
func (w *fakeWindow) SetMouseDragCallback(func(common.Position))                   {}
func (w *fakeWindow) SetMouseUpCallback(func(common.Position))                     {}
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor                   { return nil }
func (w *fakeWindow) Size() common.Size                                            { return w.size }
func (w *fakeWindow) ProcessMessages()                                             { <-w.stop }
func (w *fakeWindow) IsRunning() bool {
	select {
	case <-w.stop:
		return false
	default:
		return true
	}
}
func (w *fakeWindow) Close() error {
	w.once.Do(func() { close(w.stop) })
	return nil
}

// fakeRenderer counts frames; methods the engine does not call panic through the nil embed.
type fakeRenderer struct {
	renderer.Renderer
	frames   atomic.Int32
	released atomic.Bool
	width    atomic.Int32
}

func (r *fakeRenderer) Render(width, height int) error {
	r.frames.Add(1)
	r.width.Store(int32(width))
	return nil
}

func (r *fakeRenderer) LastFrameStats() renderer.FrameStats { return renderer.FrameStats{Draws: 1} }
func (r *fakeRenderer) Release()                            { r.released.Store(true) }

func TestNewEngineRequiresWindowAndRenderer(t *testing.T) {
	assert.Panics(t, func() { NewEngine() })
	assert.Panics(t, func() { NewEngine(WithWindow(newFakeWindow())) })
}

func TestRunTicksRendersAndReleases(t *testing.T) {
	w := newFakeWindow()
	r := &fakeRenderer{}
	var ticks atomic.Int32
	e := NewEngine(
		WithWindow(w),
		WithRenderer(r),
		WithTickRate(200),
		WithRenderFrameLimit(500),
		WithProfiling(true),
		WithTickCallback(func(float32) { ticks.Add(1) }),
	)

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.frames.Load() >= 3 && ticks.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(320), r.width.Load())

	e.SetTickRate(100)
	e.Quit()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	assert.True(t, r.released.Load())
	e.Quit()
}

func TestResizeIsForwarded(t *testing.T) {
	w := newFakeWindow()
	var got common.Size
	e := NewEngine(WithWindow(w), WithRenderer(&fakeRenderer{}))
	e.SetResizeCallback(func(size common.Size) { got = size })

	require.NotNil(t, w.onResize)
	w.onResize(common.Size{Width: 10, Height: 20})
	assert.Equal(t, common.Size{Width: 10, Height: 20}, got)
}

func TestFrameDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), frameDuration(0))
	assert.Equal(t, 20*time.Millisecond, frameDuration(50))
}
