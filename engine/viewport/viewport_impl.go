package viewport

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/jscad-view/common"
	"github.com/Carmen-Shannon/jscad-view/engine/camera"
	"github.com/Carmen-Shannon/jscad-view/engine/frame"
	"github.com/Carmen-Shannon/jscad-view/engine/geom"
	"github.com/Carmen-Shannon/jscad-view/engine/input"
	"github.com/Carmen-Shannon/jscad-view/engine/profiler"
	"github.com/Carmen-Shannon/jscad-view/engine/renderer"
	"github.com/Carmen-Shannon/jscad-view/engine/store"
)

// viewportImpl implements the Viewport interface.
// Camera and controller survive across render sessions; the entity set does not.
type viewportImpl struct {
	mu *sync.Mutex

	scheduler   frame.Scheduler
	store       store.Store
	newRenderer RendererFactory
	logger      *slog.Logger
	profiler    *profiler.Profiler
	capturer    input.PointerCapturer
	workers     int

	converter    *geom.Converter
	gestures     *input.Gestures
	drawCommands map[string]renderer.DrawCommand

	renderer       renderer.Renderer
	rendererFailed bool

	cam      camera.Camera
	controls camera.OrbitController

	opts     Options
	entities []geom.Entity
	content  []geom.Entity

	host       common.Rect
	pixelRatio float32
	hasHost    bool
	layout     camera.Layout

	handle        frame.Handle
	active        bool
	disposed      bool
	updateView    bool
	cameraChanged bool
	zoomToFit     bool
}

var _ Viewport = &viewportImpl{}

// NewViewport creates a Viewport. Without WithScheduler a frame.Queue is used; without
// WithStore the camera is persisted in memory only.
//
// Parameters:
//   - options: functional options to configure the viewport
//
// Returns:
//   - Viewport: the new viewport
func NewViewport(options ...ViewportBuilderOption) Viewport {
	v := &viewportImpl{
		mu:           &sync.Mutex{},
		workers:      runtime.NumCPU(),
		drawCommands: renderer.DefaultDrawCommands(),
		cam:          camera.NewCamera(),
		controls:     camera.NewOrbitController(),
		opts:         DefaultOptions(),
		pixelRatio:   1,
	}
	for _, opt := range options {
		opt(v)
	}

	if v.scheduler == nil {
		v.scheduler = frame.NewQueue()
	}
	if v.store == nil {
		v.store = store.NewMemory()
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	v.converter = geom.NewConverter(v.workers, v.logger)
	v.gestures = input.NewGestures(v.capturer)
	return v
}

func (v *viewportImpl) RenderModel(payload Payload) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.disposed {
		return ErrDisposed
	}
	v.cancelLocked()

	v.opts = payload.Options
	v.opts.MinHeight = common.Coalesce(max(v.opts.MinHeight, 0), camera.DefaultMinHeight)

	v.content = v.converter.EntitiesFromSolids(payload.Solids)
	v.entities = make([]geom.Entity, 0, len(v.content)+2)
	v.entities = append(v.entities, geom.GridEntity(), geom.AxisEntity())
	v.entities = append(v.entities, v.content...)

	v.zoomToFit = true
	if v.opts.UseLastCamera {
		v.restoreCameraLocked()
	} else if err := camera.ClearPersisted(v.store); err != nil {
		v.logger.Warn("failed to clear persisted camera", "error", err)
	}

	v.active = true
	v.rendererFailed = false
	if v.hasHost {
		v.applyPerspectiveLocked()
	} else {
		v.cam = v.cam.SetProjection(camera.DefaultMinHeight, camera.DefaultMinHeight)
	}

	v.logger.Debug("render session started",
		"solids", len(payload.Solids),
		"entities", len(v.entities),
		"useLastCamera", v.opts.UseLastCamera,
		"saveCamera", v.opts.SaveCamera,
	)

	v.updateView = true
	v.scheduleLocked()
	return nil
}

func (v *viewportImpl) UpdateLayout(host common.Rect, pixelRatio float32) (camera.Layout, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.disposed {
		return camera.Layout{}, ErrDisposed
	}
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	v.host = host
	v.pixelRatio = pixelRatio
	v.hasHost = true
	v.rendererFailed = false

	v.applyPerspectiveLocked()
	return v.layout, nil
}

func (v *viewportImpl) FitToGeometries() (camera.Layout, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.disposed {
		return camera.Layout{}, ErrDisposed
	}

	cam, logical := camera.FitToBounds(v.cam, v.content, v.pixelRatio, v.opts.MinHeight)
	v.cam = cam
	v.layout = camera.Layout{
		Width:           cam.Viewport[2],
		Height:          cam.Viewport[3],
		ContainerHeight: logical,
	}
	if v.renderer != nil {
		v.renderer.Resize(v.layout.Width, v.layout.Height)
	}
	v.updateView = true
	return v.layout, nil
}

func (v *viewportImpl) Frame() {
	start := time.Now()

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.disposed || !v.active {
		return
	}
	defer v.scheduleLocked()

	drew := v.stepLocked()
	if v.profiler != nil {
		v.profiler.Tick(drew, time.Since(start))
	}
}

func (v *viewportImpl) Gestures() *input.Gestures {
	return v.gestures
}

func (v *viewportImpl) Camera() camera.Camera {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cam
}

func (v *viewportImpl) Layout() camera.Layout {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout
}

func (v *viewportImpl) Dispose() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.disposed {
		return ErrDisposed
	}
	v.disposed = true
	v.active = false
	v.cancelLocked()

	var err error
	if v.opts.SaveCamera {
		if saveErr := camera.SavePersisted(v.store, v.cam); saveErr != nil {
			err = fmt.Errorf("failed to persist camera on dispose: %w", saveErr)
		}
	}

	if v.renderer != nil {
		v.renderer.Release()
		v.renderer = nil
	}
	return err
}

// stepLocked folds the pending gestures into the controller and, while the view needs an
// update, integrates the controller and draws. The controller integrates even while no
// renderer is available.
// Returns true if the renderer was invoked successfully.
func (v *viewportImpl) stepLocked() bool {
	d := v.gestures.Drain()
	if d.Rotate != ([2]float32{}) {
		v.controls = v.controls.Rotate(RotateSpeed, d.Rotate)
		v.updateView = true
		v.cameraChanged = true
	}
	if d.Pan != ([2]float32{}) {
		v.controls, v.cam = v.controls.Pan(v.cam, PanSpeed, d.Pan)
		v.updateView = true
		v.cameraChanged = true
	}
	if d.Zoom != 0 {
		v.controls = v.controls.Zoom(v.cam, ZoomSpeed, d.Zoom)
		v.updateView = true
		v.cameraChanged = true
	}

	if !v.updateView {
		return false
	}

	v.controls, v.cam = v.controls.Update(v.cam)
	v.updateView = v.controls.Changed
	v.cam = v.cam.UpdateFromPosition()

	if v.cameraChanged {
		v.cameraChanged = v.updateView
		if v.opts.SaveCamera {
			if err := camera.SavePersisted(v.store, v.cam); err != nil {
				v.logger.Warn("failed to persist camera", "error", err)
			}
		}
	}

	if !v.ensureRendererLocked() {
		// Nothing was drawn; the first renderer draws the current view.
		v.updateView = true
		return false
	}
	return v.drawLocked()
}

// ensureRendererLocked creates the renderer on first use. A failed creation is logged once
// and not retried until the next layout or render session.
func (v *viewportImpl) ensureRendererLocked() bool {
	if v.renderer != nil {
		return true
	}
	if v.newRenderer == nil || v.rendererFailed {
		return false
	}

	r, err := v.newRenderer()
	if err != nil {
		v.rendererFailed = true
		v.logger.Error("failed to create renderer", "error", err)
		return false
	}
	if v.layout.Width > 0 {
		r.Resize(v.layout.Width, v.layout.Height)
	}
	v.renderer = r
	return true
}

// drawLocked invokes the renderer. Errors and panics are logged and the frame is skipped.
func (v *viewportImpl) drawLocked() (drew bool) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("draw call panicked", "panic", r)
			drew = false
		}
	}()

	err := v.renderer.Render(renderer.RenderOptions{
		Camera:       v.cam,
		DrawCommands: v.drawCommands,
		Entities:     v.entities,
	})
	if err != nil {
		v.logger.Error("draw call failed", "error", err)
		return false
	}
	return true
}

// applyPerspectiveLocked recomputes the layout from the last host bounds, re-derives the
// projection and runs the pending session-start zoom to fit.
func (v *viewportImpl) applyPerspectiveLocked() {
	v.layout = camera.ComputeLayout(v.host, v.pixelRatio, v.opts.MinHeight, v.opts.ForcedHeight)
	if v.layout.Width <= 0 {
		return
	}

	v.cam = v.cam.SetProjection(v.layout.Width, v.layout.Height)
	if v.zoomToFit && v.active {
		v.zoomToFit = false
		v.controls, v.cam = v.controls.ZoomToFit(v.cam, v.entities)
	}
	if v.renderer != nil {
		v.renderer.Resize(v.layout.Width, v.layout.Height)
	}
	v.updateView = true
}

func (v *viewportImpl) restoreCameraLocked() {
	cam, applied, err := camera.LoadPersisted(v.store, v.cam)
	if err != nil {
		var malformed *camera.MalformedPersistedStateError
		if errors.As(err, &malformed) {
			v.logger.Warn("ignoring persisted camera", "key", malformed.Key, "value", malformed.Value)
		} else {
			v.logger.Warn("failed to load persisted camera", "error", err)
		}
		return
	}
	if applied {
		v.cam = cam
		v.zoomToFit = false
	}
}

// scheduleLocked replaces the pending frame handle. At most one handle is ever pending.
func (v *viewportImpl) scheduleLocked() {
	v.cancelLocked()
	v.handle = v.scheduler.ScheduleNext(v.Frame)
}

func (v *viewportImpl) cancelLocked() {
	if v.handle != 0 {
		v.scheduler.Cancel(v.handle)
		v.handle = 0
	}
}
