package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-scene/engine/rendering"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	textureBinding = 0
	samplerBinding = 1
)

var errNoFrame = errors.New("wgpu: no frame in progress")

type wgpuBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	surfaceWidth         int
	surfaceHeight        int
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode          wgpu.PresentMode
	sampleCount          MSAASampleCount
	forceFallbackAdapter bool
	clearColor           wgpu.Color

	// programs tracks live programs so their per-frame uniform pools can be rewound
	programs map[*wgpuProgram]struct{}

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

// wgpuBuffer is the Handle of a vertex buffer.
type wgpuBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

// wgpuProgram is the Handle of a shader program: the render pipeline plus the layouts and
// uniform buffers it draws with.
type wgpuProgram struct {
	pipeline         pipeline.Pipeline
	module           *wgpu.ShaderModule
	bindGroupLayouts []*wgpu.BindGroupLayout
	pipelineLayout   *wgpu.PipelineLayout

	// uniforms holds one provider per draw issued with this program in a frame, since every
	// queue write lands before the frame's render pass executes
	uniforms []bind_group_provider.BindGroupProvider
	used     int
}

var _ Backend = &wgpuBackendImpl{}

// NewWGPUBackend creates a WebGPU Backend presenting to the surface described by
// surfaceDescriptor. The calling goroutine is locked to its OS thread for device setup.
// Afterwards the backend may be driven from any goroutine, one at a time, and never while
// the descriptor lock is held; the Renderer guarantees both.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, typically from window.Window.SurfaceDescriptor
//   - options: variadic list of WGPUBackendOption functions to configure the backend
//
// Returns:
//   - Backend: the WebGPU backend
//   - error: an error if no adapter or device could be acquired
func NewWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...WGPUBackendOption) (Backend, error) {
	if surfaceDescriptor == nil {
		panic("renderer: nil surface descriptor")
	}
	runtime.LockOSThread()

	b := &wgpuBackendImpl{
		mu:          &sync.Mutex{},
		presentMode: wgpu.PresentModeFifo,
		sampleCount: MSAA4x,
		clearColor:  wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		programs:    make(map[*wgpuProgram]struct{}),
	}
	for _, opt := range options {
		opt(b)
	}

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("wgpu: request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("wgpu: request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		b.Release()
		return nil, errors.New("wgpu: surface reports no formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	common.Logger().Info("wgpu: backend ready", "format", b.surfaceFormat, "samples", b.sampleCount, "fallback", b.forceFallbackAdapter)
	return b, nil
}

// configureSurface (re)configures the swapchain and recreates the size-dependent MSAA and
// depth targets. Callers hold mu.
func (b *wgpuBackendImpl) configureSurface(width, height int) error {
	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.releaseTargets()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1
	size := wgpu.Extent3D{
		Width:              uint32(width),
		Height:             uint32(height),
		DepthOrArrayLayers: 1,
	}

	if msaaEnabled {
		// the pass draws into the MSAA target and resolves into the swapchain view
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return err
		}
		b.msaaTexture = tex
		if b.msaaTextureView, err = tex.CreateView(nil); err != nil {
			return err
		}
	}

	depth, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return err
	}
	b.depthTexture = depth
	if b.depthTextureView, err = depth.CreateView(nil); err != nil {
		return err
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       b.msaaTextureView, // nil without MSAA, set per frame
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    storeOp,
			ClearValue: b.clearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	b.surfaceWidth, b.surfaceHeight = width, height
	common.Logger().Debug("wgpu: surface configured", "width", width, "height", height)
	return nil
}

func (b *wgpuBackendImpl) releaseTargets() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuBackendImpl) BeginFrame(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return errors.New("wgpu: previous frame not yet presented")
	}
	if width != b.surfaceWidth || height != b.surfaceHeight {
		if err := b.configureSurface(width, height); err != nil {
			return fmt.Errorf("wgpu: configure surface: %w", err)
		}
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameSurface = surfaceTexture
	b.frameView = view

	for p := range b.programs {
		p.used = 0
	}
	return nil
}

func (b *wgpuBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errNoFrame
	}
	b.framePass.End()
	b.framePass = nil

	defer b.releaseFrame()
	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("wgpu: finish frame: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.surface.Present()
	return nil
}

func (b *wgpuBackendImpl) releaseFrame() {
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

// alignedSize rounds a byte length up to the 4-byte granularity WriteBuffer requires, with a
// 4-byte minimum so empty arrays still get a buffer.
func alignedSize(n int) uint64 {
	return uint64(max(4, (n+3)&^3))
}

func padded(data []byte) []byte {
	if len(data)%4 == 0 {
		return data
	}
	out := make([]byte, alignedSize(len(data)))
	copy(out, data)
	return out
}

func (b *wgpuBackendImpl) CreateBuffer(data []byte) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := alignedSize(len(data))
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Vertex Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		b.queue.WriteBuffer(buf, 0, padded(data))
	}
	return &wgpuBuffer{buffer: buf, size: size}, nil
}

func (b *wgpuBackendImpl) WriteBuffer(h Handle, offset int, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, ok := h.(*wgpuBuffer)
	if !ok {
		return fmt.Errorf("wgpu: %T is not a buffer handle", h)
	}
	if offset%4 != 0 || uint64(offset)+alignedSize(len(data)) > buf.size {
		return fmt.Errorf("wgpu: write of %d bytes at %d does not fit buffer of %d", len(data), offset, buf.size)
	}
	if len(data) > 0 {
		b.queue.WriteBuffer(buf.buffer, uint64(offset), padded(data))
	}
	return nil
}

func (b *wgpuBackendImpl) DestroyBuffer(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if buf, ok := h.(*wgpuBuffer); ok && buf.buffer != nil {
		buf.buffer.Release()
		buf.buffer = nil
	}
}

// CreateTexture uploads an RGBA8 sRGB texture and pairs it with a linear filtering sampler.
// The handle is a provider holding the texture view at binding 0 and the sampler at binding 1.
func (b *wgpuBackendImpl) CreateTexture(width, height int, rgba []byte) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Texture %dx%d", width, height))
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     provider.Label(),
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(max(width, 1)),
			Height:             uint32(max(height, 1)),
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	provider.SetTexture(textureBinding, tex, view)

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
	})
	if err != nil {
		provider.Release()
		return nil, err
	}
	provider.SetSampler(samplerBinding, samp)

	b.writeTexture(tex, width, height, rgba)
	return provider, nil
}

func (b *wgpuBackendImpl) WriteTexture(h Handle, width, height int, rgba []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	provider, ok := h.(bind_group_provider.BindGroupProvider)
	if !ok || provider.Texture(textureBinding) == nil {
		return fmt.Errorf("wgpu: %T is not a texture handle", h)
	}
	b.writeTexture(provider.Texture(textureBinding), width, height, rgba)
	return nil
}

func (b *wgpuBackendImpl) writeTexture(tex *wgpu.Texture, width, height int, rgba []byte) {
	if width <= 0 || height <= 0 {
		return
	}
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		rgba,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(width) * 4,
			RowsPerImage: uint32(height),
		},
		&wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
	)
}

func (b *wgpuBackendImpl) DestroyTexture(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if provider, ok := h.(bind_group_provider.BindGroupProvider); ok {
		provider.Release()
	}
}

// CreateProgram builds the render pipeline for a shader spec from its embedded WGSL program.
func (b *wgpuBackendImpl) CreateProgram(spec rendering.ShaderSpec) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prog, err := shader.ForSpec(spec)
	if err != nil {
		return nil, err
	}

	p := &wgpuProgram{
		pipeline: pipeline.NewPipeline(prog, pipeline.WithSampleCount(uint32(b.sampleCount))),
	}
	if err := b.buildProgram(p); err != nil {
		p.release()
		return nil, fmt.Errorf("wgpu: program %s: %w", prog.Key(), err)
	}
	b.programs[p] = struct{}{}
	common.Logger().Info("wgpu: program created", "program", prog.Key(), "attributes", len(prog.Attributes()))
	return p, nil
}

func (b *wgpuBackendImpl) buildProgram(p *wgpuProgram) error {
	prog := p.pipeline.Program()

	module, err := b.device.CreateShaderModule(prog.Module())
	if err != nil {
		return err
	}
	p.module = module

	descriptors := prog.BindGroupLayoutDescriptors()
	p.bindGroupLayouts = make([]*wgpu.BindGroupLayout, len(descriptors))
	for g := range p.bindGroupLayouts {
		desc, ok := descriptors[g]
		if !ok {
			return fmt.Errorf("bind group %d is not declared", g)
		}
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return fmt.Errorf("bind group layout %d: %w", g, err)
		}
		p.bindGroupLayouts[g] = layout
	}

	p.pipelineLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            prog.Key(),
		BindGroupLayouts: p.bindGroupLayouts,
	})
	if err != nil {
		return err
	}

	rp, err := b.device.CreateRenderPipeline(p.pipeline.Descriptor(p.pipelineLayout, p.module, b.surfaceFormat))
	if err != nil {
		return err
	}
	p.pipeline.SetRenderPipeline(rp)
	return nil
}

func (b *wgpuBackendImpl) DestroyProgram(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := h.(*wgpuProgram); ok {
		delete(b.programs, p)
		p.release()
	}
}

func (p *wgpuProgram) release() {
	for _, u := range p.uniforms {
		u.Release()
	}
	p.uniforms = nil
	p.pipeline.Release()
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
		p.pipelineLayout = nil
	}
	for _, l := range p.bindGroupLayouts {
		if l != nil {
			l.Release()
		}
	}
	p.bindGroupLayouts = nil
	if p.module != nil {
		p.module.Release()
		p.module = nil
	}
}

// nextUniforms returns an unused uniform provider of the program for this frame, growing the
// pool when every provider has been used. Callers hold mu.
func (b *wgpuBackendImpl) nextUniforms(p *wgpuProgram) (bind_group_provider.BindGroupProvider, error) {
	if p.used < len(p.uniforms) {
		u := p.uniforms[p.used]
		p.used++
		return u, nil
	}

	prog := p.pipeline.Program()
	label := fmt.Sprintf("%s Uniforms %d", prog.Key(), len(p.uniforms))
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  prog.UniformSize(),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	provider := bind_group_provider.NewBindGroupProvider(label, bind_group_provider.WithBuffer(shader.UniformBinding, buf))

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label,
		Layout: p.bindGroupLayouts[shader.UniformGroup],
		Entries: []wgpu.BindGroupEntry{{
			Binding: shader.UniformBinding,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}},
	})
	if err != nil {
		provider.Release()
		return nil, err
	}
	provider.SetBindGroup(bg)

	p.uniforms = append(p.uniforms, provider)
	p.used++
	return provider, nil
}

// textureBindGroup creates, once, the bind group of a texture provider against a program's
// layout for the group it is bound at.
func (b *wgpuBackendImpl) textureBindGroup(provider bind_group_provider.BindGroupProvider, layout *wgpu.BindGroupLayout) (*wgpu.BindGroup, error) {
	if bg := provider.BindGroup(); bg != nil {
		return bg, nil
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  provider.Label() + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: textureBinding, TextureView: provider.TextureView(textureBinding)},
			{Binding: samplerBinding, Sampler: provider.Sampler(samplerBinding)},
		},
	})
	if err != nil {
		return nil, err
	}
	provider.SetBindGroup(bg)
	return bg, nil
}

// Draw writes the call's uniforms to a fresh uniform buffer, binds one vertex buffer per
// program attribute and any sampler groups, then draws VertexCount vertices.
func (b *wgpuBackendImpl) Draw(call DrawCall) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errNoFrame
	}
	p, ok := call.Program.(*wgpuProgram)
	if !ok {
		return fmt.Errorf("wgpu: %T is not a program handle", call.Program)
	}
	prog := p.pipeline.Program()

	attrs := prog.Attributes()
	vertexBuffers := make([]*wgpuBuffer, len(attrs))
	for i, attr := range attrs {
		h, ok := call.Buffer(attr.Name)
		if !ok {
			return fmt.Errorf("wgpu: no vertex buffer bound for %q", attr.Name)
		}
		if vertexBuffers[i], ok = h.(*wgpuBuffer); !ok {
			return fmt.Errorf("wgpu: %T is not a buffer handle", h)
		}
	}

	groups := make(map[uint32]*wgpu.BindGroup)
	for g := range p.bindGroupLayouts {
		if g == shader.UniformGroup {
			continue
		}
		name := prog.BindGroupVarName(g, textureBinding)
		h, ok := call.Sampler(name)
		if !ok {
			return fmt.Errorf("wgpu: no sampler bound for %q", name)
		}
		provider, ok := h.(bind_group_provider.BindGroupProvider)
		if !ok {
			return fmt.Errorf("wgpu: %T is not a texture handle", h)
		}
		bg, err := b.textureBindGroup(provider, p.bindGroupLayouts[g])
		if err != nil {
			return err
		}
		groups[uint32(g)] = bg
	}

	uniforms, err := b.nextUniforms(p)
	if err != nil {
		return fmt.Errorf("wgpu: uniform buffer: %w", err)
	}
	write := bind_group_provider.BufferWrite{
		Provider: uniforms,
		Binding:  shader.UniformBinding,
		Data:     packUniforms(prog, call),
	}
	write.Apply(func(buf *wgpu.Buffer, offset uint64, data []byte) {
		b.queue.WriteBuffer(buf, offset, data)
	})

	b.framePass.SetPipeline(p.pipeline.RenderPipeline())
	b.framePass.SetBindGroup(shader.UniformGroup, uniforms.BindGroup(), nil)
	for g, bg := range groups {
		b.framePass.SetBindGroup(g, bg, nil)
	}
	for i, attr := range attrs {
		b.framePass.SetVertexBuffer(attr.Slot, vertexBuffers[i].buffer, 0, wgpu.WholeSize)
	}
	if call.VertexCount > 0 {
		b.framePass.Draw(uint32(call.VertexCount), 1, 0, 0)
	}
	return nil
}

func (b *wgpuBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass != nil {
		b.framePass.End()
		b.framePass = nil
	}
	b.releaseFrame()
	for p := range b.programs {
		p.release()
	}
	clear(b.programs)
	b.releaseTargets()

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
