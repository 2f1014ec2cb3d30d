package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/jscad-view/engine/camera"
	"github.com/Carmen-Shannon/jscad-view/engine/config"
	"github.com/Carmen-Shannon/jscad-view/engine/profiler"
	"github.com/Carmen-Shannon/jscad-view/engine/renderer"
	"github.com/Carmen-Shannon/jscad-view/engine/store"
	"github.com/Carmen-Shannon/jscad-view/engine/viewport"
	"github.com/Carmen-Shannon/jscad-view/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables frame statistics in the log.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler sets the profiler used when profiling is enabled.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithWindowOptions adds options for the window the engine creates. Ignored with WithWindow.
//
// Parameters:
//   - options: window options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindowOptions(options ...window.WindowBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.windowOptions = append(e.windowOptions, options...)
	}
}

// WithRendererOptions adds options for the wgpu renderer.
//
// Parameters:
//   - options: renderer options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOptions = append(e.rendererOptions, options...)
	}
}

// WithTerminalRendererOptions adds options for the terminal renderer.
//
// Parameters:
//   - options: terminal renderer options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTerminalRendererOptions(options ...renderer.TerminalRendererOption) EngineBuilderOption {
	return func(e *engine) {
		e.terminalOptions = append(e.terminalOptions, options...)
	}
}

// WithViewportOptions adds viewport options. They are applied after the engine's own, so
// they can replace the renderer factory, store or scheduler.
//
// Parameters:
//   - options: viewport options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithViewportOptions(options ...viewport.ViewportBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.viewportOptions = append(e.viewportOptions, options...)
	}
}

// WithStore sets the store the camera is persisted to.
//
// Parameters:
//   - s: the store
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStore(s store.Store) EngineBuilderOption {
	return func(e *engine) {
		e.store = s
	}
}

// WithLogger sets the structured logger shared by the engine and its viewport.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = logger
	}
}

// WithWatch reloads the loaded payload file whenever it changes.
//
// Parameters:
//   - enabled: if true, Load starts a file watcher
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWatch(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.watch = enabled
	}
}

// WithConfig applies a settings file: window, renderer, viewport and profiling options.
// The camera store is not opened here; pass it with WithStore.
//
// Parameters:
//   - cfg: the settings
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.windowOptions = append(e.windowOptions,
			window.WithTitle(cfg.Window.Title),
			window.WithWidth(cfg.Window.Width),
			window.WithHeight(cfg.Window.Height),
		)
		if cfg.Window.Terminal {
			e.windowOptions = append(e.windowOptions,
				window.WithTerminal(nil),
				window.WithFrameInterval(time.Second/time.Duration(max(cfg.Window.FrameRate, 1))),
			)
		}

		presentMode := renderer.PresentModeVSync
		if cfg.Renderer.PresentMode == config.PresentUncapped {
			presentMode = renderer.PresentModeUncapped
		}
		msaa := renderer.MSAA4x
		if cfg.Renderer.MSAA == 1 {
			msaa = renderer.MSAAOff
		}
		e.rendererOptions = append(e.rendererOptions,
			renderer.WithPresentMode(presentMode),
			renderer.WithMSAA(msaa),
			renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceSoftware),
			renderer.WithClearColor(cfg.Renderer.ClearColor),
			renderer.WithFrustumCulling(cfg.Renderer.Culling),
		)
		e.terminalOptions = append(e.terminalOptions,
			renderer.WithTerminalBackground(cfg.Renderer.ClearColor),
			renderer.WithTerminalCulling(cfg.Renderer.Culling),
		)

		controller := []camera.OrbitControllerOption{camera.WithDrag(cfg.Viewer.Drag)}
		if cfg.Viewer.AutoRotate {
			controller = append(controller, camera.WithAutoRotate(1))
		}
		e.viewportOptions = append(e.viewportOptions, viewport.WithControllerOptions(controller...))
		if cfg.Viewer.Workers > 0 {
			e.viewportOptions = append(e.viewportOptions, viewport.WithWorkers(cfg.Viewer.Workers))
		}

		e.watch = cfg.Viewer.Watch
		e.profilingEnabled = cfg.Viewer.Profiling
		e.profileInterval = time.Duration(cfg.Viewer.ProfileInterval * float64(time.Second))
	}
}
