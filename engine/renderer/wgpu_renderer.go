package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/jscad-view/engine/camera"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// SurfaceProvider is implemented by windows that can hand out a native surface descriptor.
type SurfaceProvider interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

type wgpuRendererImpl struct {
	mu      *sync.Mutex
	backend wgpuRendererBackend

	presentMode          PresentMode
	msaa                 MSAASampleCount
	forceFallbackAdapter bool
	clearColor           [4]float32
	cull                 bool

	batches map[primitiveKind]*vertexBatch
}

var _ Renderer = &wgpuRendererImpl{}

// NewWGPURenderer creates a GPU renderer drawing into the surface of a window.
//
// Parameters:
//   - surface: the window providing the surface descriptor
//   - width: the initial drawing buffer width in pixels
//   - height: the initial drawing buffer height in pixels
//   - options: functional options such as WithMSAA or WithPresentMode
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if the adapter, device or pipelines could not be created
func NewWGPURenderer(surface SurfaceProvider, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	r := &wgpuRendererImpl{
		mu:          &sync.Mutex{},
		presentMode: PresentModeVSync,
		msaa:        MSAA4x,
		clearColor:  [4]float32{1, 1, 1, 1},
		cull:        true,
		batches: map[primitiveKind]*vertexBatch{
			kindTriangles:    {},
			kindLines:        {},
			kindOverlayLines: {},
		},
	}
	for _, opt := range options {
		opt(r)
	}

	backend, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa)
	if err != nil {
		return nil, err
	}
	backend.SetPresentMode(r.presentMode)
	backend.SetClearColor(r.clearColor)
	if err := backend.ConfigureSurface(width, height); err != nil {
		backend.Release()
		return nil, err
	}
	if err := backend.CreatePipelines(); err != nil {
		backend.Release()
		return nil, err
	}
	r.backend = backend
	return r, nil
}

func (r *wgpuRendererImpl) Render(opts RenderOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backend == nil {
		return errors.New("renderer released")
	}

	for _, b := range r.batches {
		b.reset()
	}
	sink := &batchSink{batches: r.batches}
	_, drawErr := Emit(opts, sink, r.cull)

	r.backend.WriteCamera(camera.NewGPUCameraUniform(opts.Camera))
	for _, kind := range drawOrder {
		if err := r.backend.WriteVertices(kind, r.batches[kind].data); err != nil {
			return errors.Join(drawErr, err)
		}
	}

	if err := r.backend.BeginFrame(); err != nil {
		return errors.Join(drawErr, fmt.Errorf("begin frame: %w", err))
	}
	for _, kind := range drawOrder {
		r.backend.DrawBatch(kind)
	}
	if err := r.backend.EndFrame(); err != nil {
		return errors.Join(drawErr, err)
	}
	r.backend.Present()
	return drawErr
}

func (r *wgpuRendererImpl) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backend == nil {
		return
	}
	// a failed reconfigure surfaces as an error from the next BeginFrame
	_ = r.backend.ConfigureSurface(width, height)
}

func (r *wgpuRendererImpl) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backend == nil {
		return
	}
	r.backend.Release()
	r.backend = nil
}

// vertexBatch accumulates interleaved position and colour vertices for one pipeline.
type vertexBatch struct {
	data []byte
}

func (b *vertexBatch) reset() {
	b.data = b.data[:0]
}

func (b *vertexBatch) vertex(p mgl32.Vec3, color [4]float32) {
	var buf [vertexStride]byte
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(p[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[12+i*4:], math.Float32bits(color[i]))
	}
	b.data = append(b.data, buf[:]...)
}

// count returns the number of vertices in the batch.
func (b *vertexBatch) count() int {
	return len(b.data) / vertexStride
}

// batchSink routes emitted primitives to the batch of their pipeline.
type batchSink struct {
	batches map[primitiveKind]*vertexBatch
}

var _ OverlaySink = &batchSink{}

func (s *batchSink) Line(a, b mgl32.Vec3, color [4]float32) {
	batch := s.batches[kindLines]
	batch.vertex(a, color)
	batch.vertex(b, color)
}

func (s *batchSink) OverlayLine(a, b mgl32.Vec3, color [4]float32) {
	batch := s.batches[kindOverlayLines]
	batch.vertex(a, color)
	batch.vertex(b, color)
}

func (s *batchSink) Triangle(a, b, c mgl32.Vec3, color [4]float32) {
	batch := s.batches[kindTriangles]
	batch.vertex(a, color)
	batch.vertex(b, color)
	batch.vertex(c, color)
}
