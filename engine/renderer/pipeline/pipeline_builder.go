package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// PipelineBuilderOption configures a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithDepthTestEnabled toggles the depth test. Depth writes follow the same setting.
func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
	}
}

// WithCullMode sets which faces are discarded. Open meshes need wgpu.CullModeNone so their
// inner side stays visible.
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithSampleCount sets the multisample count, which must match the backend's color target.
// Zero is ignored.
func WithSampleCount(n uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		if n > 0 {
			p.sampleCount = n
		}
	}
}
