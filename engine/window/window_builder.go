package window

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar. Terminal windows ignore it.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSizeLimits bounds the window size the user can drag to and the content height the viewer
// may request. A range whose minimum exceeds its maximum, or that has a non-positive bound, is
// ignored.
//
// Parameters:
//   - minWidth, minHeight: smallest size in pixels
//   - maxWidth, maxHeight: largest size in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		if minWidth > 0 && minWidth <= maxWidth {
			w.minWidth, w.maxWidth = minWidth, maxWidth
		}
		if minHeight > 0 && minHeight <= maxHeight {
			w.minHeight, w.maxHeight = minHeight, maxHeight
		}
	}
}

// WithWidth sets the initial window width.
//
// Parameters:
//   - width: initial width in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
	}
}

// WithHeight sets the initial window height.
//
// Parameters:
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = height
	}
}

// WithTerminal hosts the window in a terminal instead of a desktop window.
//
// Parameters:
//   - screen: an initialized tcell screen, or nil to open the controlling terminal
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTerminal(screen tcell.Screen) WindowBuilderOption {
	return func(w *engineWindow) {
		w.terminal = true
		w.terminalScreen = screen
	}
}

// WithFrameInterval sets how often a terminal window wakes its message loop without input.
//
// Parameters:
//   - interval: the tick period; values <= 0 are ignored
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithFrameInterval(interval time.Duration) WindowBuilderOption {
	return func(w *engineWindow) {
		if interval > 0 {
			w.frameInterval = interval
		}
	}
}
