package window

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/jscad-view/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gdamore/tcell/v2"
)

// Window is the host surface a viewport is embedded in. It reports pointer, wheel, key and
// resize input and exposes the geometry the layout step needs.
//
// Pointer positions and Bounds are in logical pixels. Scroll deltas follow the DOM wheel
// convention: positive deltaY means the wheel moved towards the user (zoom out).
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the window is resized.
	//
	// Parameters:
	//   - callback: function receiving the new drawing buffer width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical wheel delta
	SetScrollCallback(callback func(deltaY float32))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code (see common.Key*)
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetPointerDownCallback sets the callback for a primary pointer press.
	//
	// Parameters:
	//   - callback: function receiving the pointer id, position and whether the pan modifier is held
	SetPointerDownCallback(callback func(id int, x, y float32, modifier bool))

	// SetPointerUpCallback sets the callback for a primary pointer release.
	//
	// Parameters:
	//   - callback: function receiving the pointer id and position
	SetPointerUpCallback(callback func(id int, x, y float32))

	// SetPointerMoveCallback sets the callback for pointer movement.
	//
	// Parameters:
	//   - callback: function receiving the pointer id, position and whether the pan modifier is held
	SetPointerMoveCallback(callback func(id int, x, y float32, modifier bool))

	// SetPointerCapture keeps delivering moves of a pointer after it leaves the window.
	//
	// Parameters:
	//   - id: the pointer id
	SetPointerCapture(id int)

	// ReleasePointerCapture undoes SetPointerCapture.
	//
	// Parameters:
	//   - id: the pointer id
	ReleasePointerCapture(id int)

	// Bounds returns the client area in logical pixels.
	//
	// Returns:
	//   - common.Rect: the client rectangle anchored at the origin
	Bounds() common.Rect

	// PixelRatio returns the number of drawing buffer pixels per logical pixel.
	//
	// Returns:
	//   - float32: the ratio, 1 when unknown
	PixelRatio() float32

	// SetContentHeight asks the host to resize its client area to a logical height.
	// Hosts that cannot resize ignore the request.
	//
	// Parameters:
	//   - height: the requested height in logical pixels
	SetContentHeight(height int)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil for terminal windows
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Screen returns the tcell screen of a terminal window.
	//
	// Returns:
	//   - tcell.Screen: the screen, or nil for GLFW windows
	Screen() tcell.Screen

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls OnUpdate callback each iteration.
	ProcessMessages()

	// Width returns the current drawing buffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current drawing buffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// platformWindow is implemented by the GLFW and terminal backends.
type platformWindow interface {
	surfaceDescriptor() *wgpu.SurfaceDescriptor
	screen() tcell.Screen
	isRunning() bool
	close() error
	// processMessages handles pending input and reports whether the window is still running.
	processMessages() bool
	pixelRatio() float32
	setContentHeight(height int)
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, platform state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height are the drawing buffer size in pixels.
	width  int
	height int

	// terminal selects the tcell backend; a nil screen means one is created on spawn.
	terminal       bool
	terminalScreen tcell.Screen
	// frameInterval paces the terminal message loop.
	frameInterval time.Duration

	platform platformWindow

	// captured holds the pointer ids whose moves are delivered outside the window.
	captured map[int]bool

	onUpdate      func()
	onResize      func(width, height int)
	onScroll      func(deltaY float32)
	onKeyDown     func(keyCode uint32)
	onKeyUp       func(keyCode uint32)
	onPointerDown func(id int, x, y float32, modifier bool)
	onPointerUp   func(id int, x, y float32)
	onPointerMove func(id int, x, y float32, modifier bool)
}

var _ Window = &engineWindow{}

// NewWindow creates and spawns a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "jscad-view",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,

		frameInterval: 33 * time.Millisecond,
		captured:      make(map[int]bool),
	}
	for _, opt := range options {
		opt(w)
	}

	var (
		p   platformWindow
		err error
	)
	if w.terminal {
		p, err = newTerminalWindow(w, w.terminalScreen)
	} else {
		p, err = newGLFWWindow(w)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	w.platform = p
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(deltaY float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetPointerDownCallback(callback func(id int, x, y float32, modifier bool)) {
	w.onPointerDown = callback
}

func (w *engineWindow) SetPointerUpCallback(callback func(id int, x, y float32)) {
	w.onPointerUp = callback
}

func (w *engineWindow) SetPointerMoveCallback(callback func(id int, x, y float32, modifier bool)) {
	w.onPointerMove = callback
}

func (w *engineWindow) SetPointerCapture(id int) {
	w.captured[id] = true
}

func (w *engineWindow) ReleasePointerCapture(id int) {
	delete(w.captured, id)
}

func (w *engineWindow) Bounds() common.Rect {
	ratio := w.PixelRatio()
	return common.RectOfSize(float32(w.width)/ratio, float32(w.height)/ratio)
}

func (w *engineWindow) PixelRatio() float32 {
	if w.platform == nil {
		return 1
	}
	if r := w.platform.pixelRatio(); r > 0 {
		return r
	}
	return 1
}

func (w *engineWindow) SetContentHeight(height int) {
	if w.platform == nil || height <= 0 {
		return
	}
	w.platform.setContentHeight(common.Clamp(height, w.minHeight, w.maxHeight))
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *engineWindow) Screen() tcell.Screen {
	if w.platform == nil {
		return nil
	}
	return w.platform.screen()
}

func (w *engineWindow) IsRunning() bool {
	return w.platform != nil && w.platform.isRunning()
}

func (w *engineWindow) Close() error {
	if w.platform == nil {
		return fmt.Errorf("window is not initialized")
	}
	return w.platform.close()
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := w.platform.processMessages(); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// Dispatch helpers shared by the platform backends.

func (w *engineWindow) resized(width, height int) {
	if width == w.width && height == w.height {
		return
	}
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

func (w *engineWindow) scrolled(deltaY float32) {
	if w.onScroll != nil && deltaY != 0 {
		w.onScroll(deltaY)
	}
}

func (w *engineWindow) keyDown(code uint32) {
	if w.onKeyDown != nil {
		w.onKeyDown(code)
	}
}

func (w *engineWindow) keyUp(code uint32) {
	if w.onKeyUp != nil {
		w.onKeyUp(code)
	}
}

func (w *engineWindow) pointerDown(id int, x, y float32, modifier bool) {
	if w.onPointerDown != nil {
		w.onPointerDown(id, x, y, modifier)
	}
}

func (w *engineWindow) pointerUp(id int, x, y float32) {
	if w.onPointerUp != nil {
		w.onPointerUp(id, x, y)
	}
}

// pointerMoved drops moves outside the client area unless the pointer is captured.
func (w *engineWindow) pointerMoved(id int, x, y float32, modifier bool) {
	if w.onPointerMove == nil {
		return
	}
	b := w.Bounds()
	inside := x >= b.Left && x < b.Right && y >= b.Top && y < b.Bottom
	if !inside && !w.captured[id] {
		return
	}
	w.onPointerMove(id, x, y, modifier)
}
