package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/jscad-view/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	window  *glfw.Window
	running bool

	// pressed is the pointer id of the held mouse button, -1 when none.
	pressed int
}

var _ platformWindow = &glfwWindow{}

// newGLFWWindow creates the GLFW window with input callbacks.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newGLFWWindow(w *engineWindow) (*glfwWindow, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	gw := &glfwWindow{
		window:  win,
		running: true,
		pressed: -1,
	}

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			gw.running = false
			win.SetShouldClose(true)
			return
		}
		switch action {
		case glfw.Press:
			w.keyDown(uint32(key))
		case glfw.Release:
			w.keyUp(uint32(key))
		}
	})

	// GLFW reports positive yoff for scrolling away from the user; the wheel convention is the opposite.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetScrollCallback
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		w.scrolled(float32(-yoff))
	})

	// The left button rotates (pans with shift); middle and right always pan.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetMouseButtonCallback
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		id := pointerID(button)
		if id < 0 {
			return
		}
		xpos, ypos := win.GetCursorPos()
		switch action {
		case glfw.Press:
			if gw.pressed >= 0 {
				return
			}
			gw.pressed = id
			modifier := mods&glfw.ModShift != 0 || id != common.PrimaryPointer
			w.pointerDown(id, float32(xpos), float32(ypos), modifier)
		case glfw.Release:
			if gw.pressed != id {
				return
			}
			gw.pressed = -1
			w.pointerUp(id, float32(xpos), float32(ypos))
		}
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetCursorPosCallback
	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		id := gw.pressed
		if id < 0 {
			id = common.PrimaryPointer
		}
		w.pointerMoved(id, float32(xpos), float32(ypos), gw.shiftHeld() || id != common.PrimaryPointer)
	})

	// Use framebuffer size callback for pixel-accurate resize events.
	// On high-DPI displays (e.g., macOS Retina), framebuffer size differs from window size.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized(width, height)
	})

	// Update stored dimensions to reflect actual framebuffer size (may differ from requested on high-DPI).
	w.width, w.height = win.GetFramebufferSize()

	return gw, nil
}

// pointerID maps a mouse button to a pointer id, -1 for buttons that do not drag.
func pointerID(button glfw.MouseButton) int {
	switch button {
	case glfw.MouseButtonLeft:
		return common.PrimaryPointer
	case glfw.MouseButtonMiddle:
		return common.PrimaryPointer + 1
	case glfw.MouseButtonRight:
		return common.PrimaryPointer + 2
	}
	return -1
}

func (gw *glfwWindow) shiftHeld() bool {
	return gw.window.GetKey(glfw.KeyLeftShift) == glfw.Press || gw.window.GetKey(glfw.KeyRightShift) == glfw.Press
}

// surfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
// Uses the wgpuglfw bridge package which has per-platform implementations (Windows, X11, Wayland, macOS).
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func (gw *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func (gw *glfwWindow) screen() tcell.Screen {
	return nil
}

// isRunning returns false once the running flag is cleared or GLFW reports ShouldClose.
func (gw *glfwWindow) isRunning() bool {
	return gw.running && !gw.window.ShouldClose()
}

// close destroys the GLFW window and terminates the GLFW library.
func (gw *glfwWindow) close() error {
	if gw.window == nil {
		return fmt.Errorf("window is already closed")
	}
	gw.running = false
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	glfw.Terminate()
	gw.window = nil
	return nil
}

// processMessages polls GLFW for pending events without blocking.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func (gw *glfwWindow) processMessages() bool {
	glfw.PollEvents()
	return gw.isRunning()
}

// pixelRatio divides the framebuffer width by the window width in screen coordinates.
func (gw *glfwWindow) pixelRatio() float32 {
	if gw.window == nil {
		return 1
	}
	winWidth, _ := gw.window.GetSize()
	fbWidth, _ := gw.window.GetFramebufferSize()
	if winWidth <= 0 || fbWidth <= 0 {
		return 1
	}
	return float32(fbWidth) / float32(winWidth)
}

func (gw *glfwWindow) setContentHeight(height int) {
	if gw.window == nil {
		return
	}
	winWidth, winHeight := gw.window.GetSize()
	if winHeight == height {
		return
	}
	gw.window.SetSize(winWidth, height)
}
