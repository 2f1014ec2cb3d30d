package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// The terminal host translates its key events into the same codes.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyF   = 70  // F key (ASCII), fit to geometries
	KeyR   = 82  // R key (ASCII), reload the payload
	KeyEsc = 256 // Escape key (GLFW)
)

// Modifier keys that switch a pointer drag from rotating to panning.
const (
	KeyLeftShift  = 340 // Left Shift (GLFW)
	KeyRightShift = 344 // Right Shift (GLFW)
)

// PrimaryPointer is the pointer id reported for the primary (left) mouse button.
const PrimaryPointer = 0
