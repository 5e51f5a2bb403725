package pipeline

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It pairs a parsed shader program with the fixed-function state used to build its GPU render pipeline.
type pipeline struct {
	program shader.Program

	// renderPipeline is nil until the backend has built the GPU object
	renderPipeline *wgpu.RenderPipeline

	depthTestEnabled bool
	cullMode         wgpu.CullMode
	sampleCount      uint32
}

// Pipeline describes the render pipeline for one shader program: the program, its depth, cull
// and multisample settings, and the GPU pipeline once the backend has created it. Scene
// programs draw opaque triangle lists with counter-clockwise front faces.
type Pipeline interface {
	// Key returns the program key this pipeline renders with.
	//
	// Returns:
	//   - string: the program key
	Key() string

	// Program returns the shader program of this pipeline.
	//
	// Returns:
	//   - shader.Program: the parsed program
	Program() shader.Program

	// RenderPipeline returns the GPU render pipeline, or nil if it has not been created.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the render pipeline or nil
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the GPU render pipeline created by the backend.
	//
	// Parameters:
	//   - rp: the WebGPU render pipeline
	SetRenderPipeline(rp *wgpu.RenderPipeline)

	// Descriptor builds the render pipeline descriptor for this pipeline.
	//
	// Parameters:
	//   - layout: the pipeline layout holding the program's bind group layouts
	//   - module: the compiled shader module for the program source
	//   - colorFormat: the surface color format
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor ready for Device.CreateRenderPipeline
	Descriptor(layout *wgpu.PipelineLayout, module *wgpu.ShaderModule, colorFormat wgpu.TextureFormat) *wgpu.RenderPipelineDescriptor

	// DepthTestEnabled reports whether fragments are depth tested and write depth.
	DepthTestEnabled() bool

	// CullMode returns the face cull mode.
	CullMode() wgpu.CullMode

	// SampleCount returns the multisample count the pipeline targets.
	SampleCount() uint32

	// Release releases the GPU render pipeline, if any.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline for a program. Defaults are depth testing on, no culling and
// one sample.
//
// Parameters:
//   - program: the shader program to render with
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline with the given configuration
func NewPipeline(program shader.Program, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		program:          program,
		depthTestEnabled: true,
		cullMode:         wgpu.CullModeNone,
		sampleCount:      1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() string                               { return p.program.Key() }
func (p *pipeline) Program() shader.Program                   { return p.program }
func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline      { return p.renderPipeline }
func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) { p.renderPipeline = rp }
func (p *pipeline) DepthTestEnabled() bool                    { return p.depthTestEnabled }
func (p *pipeline) CullMode() wgpu.CullMode                   { return p.cullMode }
func (p *pipeline) SampleCount() uint32                       { return p.sampleCount }

func (p *pipeline) Descriptor(layout *wgpu.PipelineLayout, module *wgpu.ShaderModule, colorFormat wgpu.TextureFormat) *wgpu.RenderPipelineDescriptor {
	depthCompare := wgpu.CompareFunctionAlways
	if p.depthTestEnabled {
		depthCompare = wgpu.CompareFunctionLess
	}
	keep := wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways}

	return &wgpu.RenderPipelineDescriptor{
		Label:  p.program.Key(),
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: p.program.VertexEntryPoint(),
			Buffers:    p.program.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: p.program.FragmentEntryPoint(),
			Targets: []wgpu.ColorTargetState{{
				Format:    colorFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  p.cullMode,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: p.depthTestEnabled,
			DepthCompare:      depthCompare,
			StencilFront:      keep,
			StencilBack:       keep,
		},
		Multisample: wgpu.MultisampleState{
			Count: p.sampleCount,
			Mask:  0xFFFFFFFF,
		},
	}
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
