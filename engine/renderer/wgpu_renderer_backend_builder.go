package renderer

import "github.com/cogentcore/webgpu/wgpu"

// WGPUBackendOption is a functional option applied to the WebGPU backend during construction via NewWGPUBackend.
type WGPUBackendOption func(*wgpuBackendImpl)

// WithPresentMode sets how frames are presented. The default is PresentModeVSync.
//
// Parameters:
//   - mode: the PresentMode to use
//
// Returns:
//   - WGPUBackendOption: a function that applies the present mode to the backend
func WithPresentMode(mode PresentMode) WGPUBackendOption {
	return func(b *wgpuBackendImpl) {
		switch mode {
		case PresentModeUncapped:
			b.presentMode = wgpu.PresentModeImmediate
		default:
			b.presentMode = wgpu.PresentModeFifo
		}
	}
}

// WithMSAA sets the multisample count of the main render pass. The default is MSAA4x.
//
// Parameters:
//   - count: MSAAOff or MSAA4x
//
// Returns:
//   - WGPUBackendOption: a function that applies the sample count to the backend
func WithMSAA(count MSAASampleCount) WGPUBackendOption {
	return func(b *wgpuBackendImpl) {
		if count != MSAAOff && count != MSAA4x {
			count = MSAA4x
		}
		b.sampleCount = count
	}
}

// WithForceSoftwareRenderer requests the fallback (software) adapter, useful on machines
// without a usable GPU driver.
func WithForceSoftwareRenderer(force bool) WGPUBackendOption {
	return func(b *wgpuBackendImpl) {
		b.forceFallbackAdapter = force
	}
}

// WithClearColor sets the color each frame is cleared to.
func WithClearColor(c wgpu.Color) WGPUBackendOption {
	return func(b *wgpuBackendImpl) {
		b.clearColor = c
	}
}
