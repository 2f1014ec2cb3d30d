// Package viewport drives an interactive orbit view of a set of solids. A Viewport owns the
// camera, the orbit controller and the gesture accumulators of one host surface and runs a
// self-rescheduling frame callback that redraws only while the camera moves.
package viewport

import (
	"errors"

	"github.com/Carmen-Shannon/jscad-view/common"
	"github.com/Carmen-Shannon/jscad-view/engine/camera"
	"github.com/Carmen-Shannon/jscad-view/engine/input"
	"github.com/Carmen-Shannon/jscad-view/engine/renderer"
)

// Gesture speeds applied when the pending deltas are folded into the controller.
const (
	RotateSpeed float32 = 0.002
	PanSpeed    float32 = 1
	ZoomSpeed   float32 = 0.08
)

// ErrDisposed is returned by operations on a disposed Viewport.
var ErrDisposed = errors.New("viewport is disposed")

// RendererFactory creates the renderer on the first frame that needs to draw.
type RendererFactory func() (renderer.Renderer, error)

// Viewport is one interactive 3D view.
type Viewport interface {
	// RenderModel starts a new render session. The running frame loop is cancelled, the entity
	// set is replaced and the camera is restored or zoomed to fit depending on the options.
	//
	// Parameters:
	//   - payload: the solids and display options of the session
	//
	// Returns:
	//   - error: ErrDisposed after Dispose
	RenderModel(payload Payload) error

	// UpdateLayout sizes the viewport against its host and re-derives the projection.
	// Hosts call it on attach, show, resize and every update request.
	//
	// Parameters:
	//   - host: the host bounds in logical pixels
	//   - pixelRatio: device pixels per logical pixel
	//
	// Returns:
	//   - camera.Layout: the drawing buffer size and the logical container height
	//   - error: ErrDisposed after Dispose
	UpdateLayout(host common.Rect, pixelRatio float32) (camera.Layout, error)

	// FitToGeometries recenters the camera target and resizes the viewport to the projected
	// height of the content.
	//
	// Returns:
	//   - camera.Layout: the new layout; ContainerHeight is the logical height for the host
	//   - error: ErrDisposed after Dispose
	FitToGeometries() (camera.Layout, error)

	// Frame runs one step of the render loop and schedules the next one.
	Frame()

	// Gestures returns the accumulator the host feeds pointer and wheel events into.
	//
	// Returns:
	//   - *input.Gestures: the accumulator
	Gestures() *input.Gestures

	// Camera returns a copy of the current camera.
	Camera() camera.Camera

	// Layout returns the last computed layout.
	Layout() camera.Layout

	// Dispose cancels the frame loop, persists the camera when saving is enabled and releases
	// the renderer.
	//
	// Returns:
	//   - error: an error if the camera could not be persisted, ErrDisposed on a second call
	Dispose() error
}
