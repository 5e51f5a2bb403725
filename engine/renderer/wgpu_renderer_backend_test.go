package renderer

import (
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestAlignedSize(t *testing.T) {
	assert.Equal(t, uint64(4), alignedSize(0))
	assert.Equal(t, uint64(4), alignedSize(3))
	assert.Equal(t, uint64(36), alignedSize(36))
	assert.Equal(t, uint64(40), alignedSize(37))
}

func TestPaddedKeepsAlignedData(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	assert.Equal(t, &data[0], &padded(data)[0])

	odd := padded([]byte{1, 2, 3, 4, 5})
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 0, 0, 0}, odd)
}

func TestWGPUBackendOptions(t *testing.T) {
	b := &wgpuBackendImpl{}
	for _, opt := range []WGPUBackendOption{
		WithPresentMode(PresentModeUncapped),
		WithMSAA(MSAAOff),
		WithForceSoftwareRenderer(true),
		WithClearColor(wgpu.Color{R: 1, A: 1}),
	} {
		opt(b)
	}
	assert.Equal(t, wgpu.PresentModeImmediate, b.presentMode)
	assert.Equal(t, MSAAOff, b.sampleCount)
	assert.True(t, b.forceFallbackAdapter)
	assert.Equal(t, 1.0, b.clearColor.R)

	WithPresentMode(PresentModeVSync)(b)
	WithMSAA(MSAASampleCount(8))(b)
	assert.Equal(t, wgpu.PresentModeFifo, b.presentMode)
	assert.Equal(t, MSAA4x, b.sampleCount)
}

func TestWGPUBackendDestroyWaitsForLock(t *testing.T) {
	b := &wgpuBackendImpl{mu: &sync.Mutex{}, programs: make(map[*wgpuProgram]struct{})}
	destroys := map[string]func(){
		"buffer":  func() { b.DestroyBuffer(&wgpuBuffer{}) },
		"texture": func() { b.DestroyTexture(bind_group_provider.NewBindGroupProvider("texture")) },
	}
	for name, destroy := range destroys {
		t.Run(name, func(t *testing.T) {
			b.mu.Lock()
			done := make(chan struct{})
			go func() {
				destroy()
				close(done)
			}()

			select {
			case <-done:
				b.mu.Unlock()
				t.Fatal("destroy ran while the backend lock was held")
			case <-time.After(20 * time.Millisecond):
			}
			b.mu.Unlock()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("destroy did not finish after unlock")
			}
		})
	}
}
