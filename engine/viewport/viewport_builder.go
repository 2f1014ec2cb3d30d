package viewport

import (
	"log/slog"

	"github.com/Carmen-Shannon/jscad-view/engine/camera"
	"github.com/Carmen-Shannon/jscad-view/engine/frame"
	"github.com/Carmen-Shannon/jscad-view/engine/input"
	"github.com/Carmen-Shannon/jscad-view/engine/profiler"
	"github.com/Carmen-Shannon/jscad-view/engine/store"
)

// ViewportBuilderOption is a functional option for configuring a Viewport.
type ViewportBuilderOption func(*viewportImpl)

// WithScheduler sets the frame scheduler that runs the render loop.
//
// Parameters:
//   - s: the scheduler
//
// Returns:
//   - ViewportBuilderOption: a function that applies the scheduler
func WithScheduler(s frame.Scheduler) ViewportBuilderOption {
	return func(v *viewportImpl) {
		v.scheduler = s
	}
}

// WithStore sets the key-value store the camera is persisted to.
//
// Parameters:
//   - s: the store
//
// Returns:
//   - ViewportBuilderOption: a function that applies the store
func WithStore(s store.Store) ViewportBuilderOption {
	return func(v *viewportImpl) {
		v.store = s
	}
}

// WithRendererFactory sets the function that creates the renderer on first draw.
//
// Parameters:
//   - factory: the renderer constructor
//
// Returns:
//   - ViewportBuilderOption: a function that applies the factory
func WithRendererFactory(factory RendererFactory) ViewportBuilderOption {
	return func(v *viewportImpl) {
		v.newRenderer = factory
	}
}

// WithLogger sets the structured logger.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - ViewportBuilderOption: a function that applies the logger
func WithLogger(logger *slog.Logger) ViewportBuilderOption {
	return func(v *viewportImpl) {
		v.logger = logger
	}
}

// WithProfiler enables frame statistics with the given profiler.
//
// Parameters:
//   - p: the profiler, nil disables profiling
//
// Returns:
//   - ViewportBuilderOption: a function that applies the profiler
func WithProfiler(p *profiler.Profiler) ViewportBuilderOption {
	return func(v *viewportImpl) {
		v.profiler = p
	}
}

// WithCapturer sets the host that captures pointers while a drag is active.
//
// Parameters:
//   - c: the pointer capturer
//
// Returns:
//   - ViewportBuilderOption: a function that applies the capturer
func WithCapturer(c input.PointerCapturer) ViewportBuilderOption {
	return func(v *viewportImpl) {
		v.capturer = c
	}
}

// WithWorkers sets how many goroutines convert payload solids.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - ViewportBuilderOption: a function that applies the worker count
func WithWorkers(n int) ViewportBuilderOption {
	return func(v *viewportImpl) {
		v.workers = n
	}
}

// WithCamera replaces the default camera.
//
// Parameters:
//   - cam: the initial camera
//
// Returns:
//   - ViewportBuilderOption: a function that applies the camera
func WithCamera(cam camera.Camera) ViewportBuilderOption {
	return func(v *viewportImpl) {
		v.cam = cam
	}
}

// WithControllerOptions configures the orbit controller.
//
// Parameters:
//   - options: the controller options
//
// Returns:
//   - ViewportBuilderOption: a function that applies the controller options
func WithControllerOptions(options ...camera.OrbitControllerOption) ViewportBuilderOption {
	return func(v *viewportImpl) {
		v.controls = camera.NewOrbitController(options...)
	}
}
