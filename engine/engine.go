package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/jscad-view/common"
	"github.com/Carmen-Shannon/jscad-view/engine/frame"
	"github.com/Carmen-Shannon/jscad-view/engine/input"
	"github.com/Carmen-Shannon/jscad-view/engine/profiler"
	"github.com/Carmen-Shannon/jscad-view/engine/renderer"
	"github.com/Carmen-Shannon/jscad-view/engine/store"
	"github.com/Carmen-Shannon/jscad-view/engine/viewport"
	"github.com/Carmen-Shannon/jscad-view/engine/window"
)

// engine implements the Engine interface.
// Everything that touches the viewport runs on the window loop goroutine; the payload
// watcher hands new payloads over through a channel.
type engine struct {
	window   window.Window
	viewport viewport.Viewport
	queue    *frame.Queue
	store    store.Store
	logger   *slog.Logger

	windowOptions   []window.WindowBuilderOption
	rendererOptions []renderer.RendererBuilderOption
	terminalOptions []renderer.TerminalRendererOption
	viewportOptions []viewport.ViewportBuilderOption

	profiler         *profiler.Profiler
	profilingEnabled bool
	profileInterval  time.Duration

	payloadPath string
	watch       bool
	watcher     *payloadWatcher
	payloads    chan viewport.Payload

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once
}

// Engine runs a viewport inside a host window.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Viewport returns the viewport driven by the engine.
	//
	// Returns:
	//   - viewport.Viewport: the viewport
	Viewport() viewport.Viewport

	// Load reads a payload file and queues it for display. When watching is enabled the
	// file is reloaded every time it changes.
	//
	// Parameters:
	//   - path: the JSON payload file
	//
	// Returns:
	//   - error: an error if the file cannot be read or decoded, or the watcher fails to start
	Load(path string) error

	// Submit queues a payload for display on the next loop iteration. A payload that has not
	// been picked up yet is replaced.
	//
	// Parameters:
	//   - payload: the solids and display options
	Submit(payload viewport.Payload)

	// Run starts the main loop and blocks until the window closes or Quit is called.
	//
	// Returns:
	//   - error: the joined errors from disposing the viewport and closing resources
	Run() error

	// Quit signals the loop to stop. Safe to call multiple times and from any goroutine.
	Quit()
}

// NewEngine creates an Engine. Without WithWindow a window is created from the window
// options; without WithStore the camera is kept in memory.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if the window could not be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		queue:       frame.NewQueue(),
		payloads:    make(chan viewport.Payload, 1),
		quitChannel: make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.store == nil {
		e.store = store.NewMemory()
	}
	if e.window == nil {
		w, err := window.NewWindow(e.windowOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to create window: %w", err)
		}
		e.window = w
	}
	if e.profilingEnabled && e.profiler == nil {
		e.profiler = profiler.NewProfiler(e.logger, e.profileInterval)
	}

	vpOptions := []viewport.ViewportBuilderOption{
		viewport.WithScheduler(e.queue),
		viewport.WithStore(e.store),
		viewport.WithLogger(e.logger),
		viewport.WithCapturer(e.window),
		viewport.WithRendererFactory(e.newRenderer),
	}
	if e.profilingEnabled {
		vpOptions = append(vpOptions, viewport.WithProfiler(e.profiler))
	}
	e.viewport = viewport.NewViewport(append(vpOptions, e.viewportOptions...)...)

	e.bindWindow()
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Viewport() viewport.Viewport {
	return e.viewport
}

func (e *engine) Load(path string) error {
	p, err := readPayload(path)
	if err != nil {
		return err
	}
	e.payloadPath = path
	e.Submit(p)

	if e.watch && e.watcher == nil {
		w, err := newPayloadWatcher(path, e.logger, e.reload)
		if err != nil {
			return err
		}
		e.watcher = w
	}
	return nil
}

func (e *engine) Submit(payload viewport.Payload) {
	for {
		select {
		case e.payloads <- payload:
			return
		default:
		}
		// Drop the stale payload and retry.
		select {
		case <-e.payloads:
		default:
		}
	}
}

func (e *engine) Run() error {
	e.updateLayout()
	e.window.ProcessMessages()
	e.signalQuit()

	var errs []error
	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
	}
	if err := e.viewport.Dispose(); err != nil && !errors.Is(err, viewport.ErrDisposed) {
		errs = append(errs, err)
	}
	if e.window.IsRunning() {
		errs = append(errs, e.window.Close())
	}
	return errors.Join(errs...)
}

// Quit signals the loop to stop. Safe to call multiple times; subsequent calls are no-ops.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel. The loop closes the window on its next iteration.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// bindWindow routes window input to the gesture accumulators and commands.
func (e *engine) bindWindow() {
	g := e.viewport.Gestures()

	e.window.SetUpdateCallback(e.tick)
	e.window.SetResizeCallback(func(width, height int) {
		e.logger.Debug("window resized", "width", width, "height", height)
		e.updateLayout()
	})
	e.window.SetScrollCallback(func(deltaY float32) {
		g.Wheel(&input.WheelEvent{DeltaY: deltaY})
	})
	e.window.SetPointerDownCallback(func(id int, x, y float32, modifier bool) {
		g.PointerDown(&input.PointerEvent{PointerID: id, X: x, Y: y, Modifier: modifier})
	})
	e.window.SetPointerMoveCallback(func(id int, x, y float32, modifier bool) {
		g.PointerMove(&input.PointerEvent{PointerID: id, X: x, Y: y, Modifier: modifier})
	})
	e.window.SetPointerUpCallback(func(id int, x, y float32) {
		g.PointerUp(&input.PointerEvent{PointerID: id, X: x, Y: y})
	})
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyF:
			e.fitToGeometries()
		case common.KeyR:
			if e.payloadPath != "" {
				e.reload(e.payloadPath)
			}
		}
	})
}

// tick is one loop iteration: honour Quit, start a pending session, run the frame callbacks.
func (e *engine) tick() {
	select {
	case <-e.quitChannel:
		if err := e.window.Close(); err != nil {
			e.logger.Warn("failed to close window", "error", err)
		}
		return
	default:
	}

	select {
	case p := <-e.payloads:
		if err := e.viewport.RenderModel(p); err != nil {
			e.logger.Error("failed to start render session", "error", err)
		}
		e.updateLayout()
	default:
	}

	e.queue.RunFrame()
}

func (e *engine) reload(path string) {
	p, err := readPayload(path)
	if err != nil {
		e.logger.Warn("payload not reloaded", "error", err)
		return
	}
	e.logger.Info("payload reloaded", "path", path, "solids", len(p.Solids))
	e.Submit(p)
}

// updateLayout sizes the viewport to the window and asks the window for the container height.
func (e *engine) updateLayout() {
	l, err := e.viewport.UpdateLayout(e.window.Bounds(), e.window.PixelRatio())
	if err != nil {
		e.logger.Warn("layout skipped", "error", err)
		return
	}
	if l.ContainerHeight != int(e.window.Bounds().Height()) {
		e.window.SetContentHeight(l.ContainerHeight)
	}
}

func (e *engine) fitToGeometries() {
	l, err := e.viewport.FitToGeometries()
	if err != nil {
		e.logger.Warn("fit skipped", "error", err)
		return
	}
	e.logger.Debug("fit to geometries", "width", l.Width, "height", l.Height, "containerHeight", l.ContainerHeight)
	e.window.SetContentHeight(l.ContainerHeight)
}

// newRenderer picks the backend that matches the window: wgpu for GLFW windows, cells for
// terminal windows.
func (e *engine) newRenderer() (renderer.Renderer, error) {
	if e.window.SurfaceDescriptor() != nil {
		return renderer.NewWGPURenderer(e.window, e.window.Width(), e.window.Height(), e.rendererOptions...)
	}
	if screen := e.window.Screen(); screen != nil {
		return renderer.NewTerminalRenderer(screen, e.terminalOptions...), nil
	}
	return nil, errors.New("window provides neither a GPU surface nor a terminal screen")
}
