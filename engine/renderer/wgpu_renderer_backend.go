package renderer

import (
	_ "embed"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/jscad-view/engine/camera"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/flat_color.wgsl
var flatColorSource string

// vertexStride is the byte size of one vertex: vec3 position followed by vec4 colour.
const vertexStride = 7 * 4

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount
	clearColor  wgpu.Color

	cameraBuffer    *wgpu.Buffer
	cameraBindGroup *wgpu.BindGroup
	pipelines       map[primitiveKind]*wgpu.RenderPipeline

	// vertex buffers grow to the largest batch seen so far
	vertexBuffers  map[primitiveKind]*wgpu.Buffer
	vertexCapacity map[primitiveKind]uint64
	vertexCounts   map[primitiveKind]uint32

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

type wgpuRendererBackend interface {
	// ConfigureSurface configures the swapchain for the given size and recreates the MSAA
	// and depth attachments.
	//
	// Parameters:
	//   - width: the drawing buffer width in pixels
	//   - height: the drawing buffer height in pixels
	//
	// Returns:
	//   - error: an error if an attachment could not be created
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the present mode used by the next ConfigureSurface call.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the colour the render pass clears to.
	//
	// Parameters:
	//   - color: RGBA in the 0..1 range
	SetClearColor(color [4]float32)

	// CreatePipelines compiles the flat colour shader and builds the triangle, line and
	// overlay line pipelines together with the camera uniform bind group.
	//
	// Returns:
	//   - error: an error if a GPU object could not be created
	CreatePipelines() error

	// WriteCamera uploads the camera uniform.
	//
	// Parameters:
	//   - u: the packed camera uniform
	WriteCamera(u camera.GPUCameraUniform)

	// WriteVertices uploads one batch of interleaved vertices, growing its buffer as needed.
	//
	// Parameters:
	//   - kind: the batch the vertices belong to
	//   - data: the vertex bytes, vertexStride bytes per vertex
	//
	// Returns:
	//   - error: an error if the buffer could not be grown
	WriteVertices(kind primitiveKind, data []byte) error

	// BeginFrame acquires the next swapchain texture, creates a command encoder, and begins
	// the main render pass. Must be paired with EndFrame.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// DrawBatch draws the last uploaded vertices of a batch with its pipeline.
	//
	// Parameters:
	//   - kind: the batch to draw
	DrawBatch(kind primitiveKind)

	// EndFrame ends the render pass and submits the command buffer. Call Present afterwards.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the surface to the display and releases the swapchain texture.
	Present()

	// Release frees every GPU object owned by the backend.
	Release()
}

var _ wgpuRendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) (wgpuRendererBackend, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:             &sync.Mutex{},
		instance:       wgpu.CreateInstance(nil),
		presentMode:    wgpu.PresentModeFifo,
		sampleCount:    sampleCount,
		clearColor:     wgpu.Color{R: 1, G: 1, B: 1, A: 1},
		pipelines:      make(map[primitiveKind]*wgpu.RenderPipeline),
		vertexBuffers:  make(map[primitiveKind]*wgpu.Buffer),
		vertexCapacity: make(map[primitiveKind]uint64),
		vertexCounts:   make(map[primitiveKind]uint32),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Viewport Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	return b, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return errors.New("surface reports no usable format")
	}
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseAttachments()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1
	size := wgpu.Extent3D{
		Width:              uint32(width),
		Height:             uint32(height),
		DepthOrArrayLayers: 1,
	}

	var err error
	if msaaEnabled {
		b.msaaTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fmt.Errorf("create msaa texture: %w", err)
		}
		b.msaaTextureView, err = b.msaaTexture.CreateView(nil)
		if err != nil {
			return fmt.Errorf("create msaa view: %w", err)
		}
	}

	b.depthTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}
	b.depthTextureView, err = b.depthTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create depth view: %w", err)
	}

	// With MSAA the multisampled texture is drawn into and resolved to the swapchain view
	// set in BeginFrame; without it the swapchain view is the attachment itself.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.msaaTextureView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    storeOp,
				ClearValue: b.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) SetClearColor(color [4]float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clearColor = wgpu.Color{R: float64(color[0]), G: float64(color[1]), B: float64(color[2]), A: float64(color[3])}
	if b.renderPassDescriptor != nil {
		b.renderPassDescriptor.ColorAttachments[0].ClearValue = b.clearColor
	}
}

func (b *wgpuRendererBackendImpl) CreatePipelines() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surfaceFormat == nil {
		return errors.New("surface must be configured before creating pipelines")
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Flat Color Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: camera.GPUCameraUniformSource + "\n" + flatColorSource,
		},
	})
	if err != nil {
		return fmt.Errorf("compile flat color shader: %w", err)
	}
	defer module.Release()

	var uniform camera.GPUCameraUniform
	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Camera Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(uniform.Size()),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create camera bind group layout: %w", err)
	}
	defer layout.Release()

	b.cameraBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Camera Uniform Buffer",
		Size:  uint64(uniform.Size()),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create camera buffer: %w", err)
	}

	b.cameraBindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Camera Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  b.cameraBuffer,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create camera bind group: %w", err)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Flat Color Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	for _, kind := range drawOrder {
		p, err := b.createPipeline(kind, module, pipelineLayout)
		if err != nil {
			return fmt.Errorf("create %s pipeline: %w", kind, err)
		}
		b.pipelines[kind] = p
	}
	return nil
}

// createPipeline builds the render pipeline of one primitive kind. Overlay lines ignore
// the depth buffer; everything is alpha blended.
func (b *wgpuRendererBackendImpl) createPipeline(kind primitiveKind, module *wgpu.ShaderModule, layout *wgpu.PipelineLayout) (*wgpu.RenderPipeline, error) {
	topology := wgpu.PrimitiveTopologyLineList
	if kind == kindTriangles {
		topology = wgpu.PrimitiveTopologyTriangleList
	}
	depthCompare := wgpu.CompareFunctionLess
	depthWrite := true
	if kind == kindOverlayLines {
		depthCompare = wgpu.CompareFunctionAlways
		depthWrite = false
	}

	return b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  kind.String() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: vertexStride,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 3 * 4, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorSrcAlpha,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
						Alpha: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
					},
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: depthWrite,
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
}

func (b *wgpuRendererBackendImpl) WriteCamera(u camera.GPUCameraUniform) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cameraBuffer == nil {
		return
	}
	b.queue.WriteBuffer(b.cameraBuffer, 0, u.Marshal())
}

func (b *wgpuRendererBackendImpl) WriteVertices(kind primitiveKind, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.vertexCounts[kind] = uint32(len(data) / vertexStride)
	if len(data) == 0 {
		return nil
	}

	size := uint64(len(data))
	if size > b.vertexCapacity[kind] {
		if old := b.vertexBuffers[kind]; old != nil {
			old.Release()
		}
		capacity := max(size, 2*b.vertexCapacity[kind])
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: kind.String() + " Vertex Buffer",
			Size:  capacity,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			delete(b.vertexBuffers, kind)
			b.vertexCapacity[kind] = 0
			b.vertexCounts[kind] = 0
			return fmt.Errorf("grow %s vertex buffer: %w", kind, err)
		}
		b.vertexBuffers[kind] = buf
		b.vertexCapacity[kind] = capacity
	}

	b.queue.WriteBuffer(b.vertexBuffers[kind], 0, data)
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderPassDescriptor == nil {
		return errors.New("surface is not configured")
	}
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
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

	return nil
}

func (b *wgpuRendererBackendImpl) DrawBatch(kind primitiveKind) {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := b.vertexCounts[kind]
	p := b.pipelines[kind]
	buf := b.vertexBuffers[kind]
	if b.framePass == nil || count == 0 || p == nil || buf == nil {
		return
	}

	b.framePass.SetPipeline(p)
	b.framePass.SetBindGroup(0, b.cameraBindGroup, nil)
	b.framePass.SetVertexBuffer(0, buf, 0, wgpu.WholeSize)
	b.framePass.Draw(count, 1, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return nil
	}
	b.framePass.End()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameTargets()
		return fmt.Errorf("finish command encoder: %w", err)
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameTargets()
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrameTargets()
	b.releaseAttachments()
	for kind, p := range b.pipelines {
		p.Release()
		delete(b.pipelines, kind)
	}
	for kind, buf := range b.vertexBuffers {
		buf.Release()
		delete(b.vertexBuffers, kind)
	}
	if b.cameraBindGroup != nil {
		b.cameraBindGroup.Release()
		b.cameraBindGroup = nil
	}
	if b.cameraBuffer != nil {
		b.cameraBuffer.Release()
		b.cameraBuffer = nil
	}
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

// releaseFrameTargets drops the swapchain texture held for the current frame. Callers hold mu.
func (b *wgpuRendererBackendImpl) releaseFrameTargets() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

// releaseAttachments drops the MSAA and depth attachments. Callers hold mu.
func (b *wgpuRendererBackendImpl) releaseAttachments() {
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
