package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Default perspective settings. The up vector follows the JSCAD convention (+Z).
const (
	DefaultFov  float32 = math.Pi / 4
	DefaultNear float32 = 1
	DefaultFar  float32 = 18000
)

var (
	DefaultPosition = mgl32.Vec3{150, 250, 200}
	DefaultTarget   = mgl32.Vec3{0, 0, 0}
	DefaultUp       = mgl32.Vec3{0, 0, 1}
)

// Camera is a perspective camera. It is a plain value: every operation returns an updated
// copy and leaves the receiver untouched, so a frame step can never leave a camera half-updated.
//
// Projection is always derived from the Viewport size and the Fov/Near/Far settings.
// View is derived from Position, Target and Up by UpdateFromPosition.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	// Viewport holds x, y, width and height in device pixels.
	Viewport [4]int

	Fov  float32
	Near float32
	Far  float32

	Projection mgl32.Mat4
	View       mgl32.Mat4
}

// NewCamera creates a camera with the default perspective settings, applies the options and
// derives the projection and view matrices for a 1x1 viewport.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := Camera{
		Position: DefaultPosition,
		Target:   DefaultTarget,
		Up:       DefaultUp,
		Fov:      DefaultFov,
		Near:     DefaultNear,
		Far:      DefaultFar,
	}
	for _, option := range options {
		option(&c)
	}
	return c.SetProjection(1, 1).UpdateFromPosition()
}

// SetProjection returns a copy of the camera whose viewport is [0, 0, width, height] and whose
// projection matrix matches that size. A non-positive height is treated as 1.
//
// Parameters:
//   - width: viewport width in device pixels
//   - height: viewport height in device pixels
//
// Returns:
//   - Camera: the updated camera
func (c Camera) SetProjection(width, height int) Camera {
	if height <= 0 {
		height = 1
	}
	c.Viewport = [4]int{0, 0, width, height}
	c.Projection = mgl32.Perspective(c.Fov, float32(width)/float32(height), c.Near, c.Far)
	return c
}

// UpdateFromPosition returns a copy of the camera with the view matrix recomputed from its
// position, target and up vector. When the view direction is parallel to Up the matrix is
// built against a perpendicular axis instead; Up itself is left unchanged.
//
// Returns:
//   - Camera: the updated camera
func (c Camera) UpdateFromPosition() Camera {
	forward := c.Target.Sub(c.Position)
	if forward.Len() == 0 {
		c.View = mgl32.Translate3D(-c.Position.X(), -c.Position.Y(), -c.Position.Z())
		return c
	}
	c.View = mgl32.LookAtV(c.Position, c.Target, lookUp(forward.Normalize(), c.Up))
	return c
}

// lookUp returns up, or the world axis least aligned with forward when the two are parallel.
func lookUp(forward, up mgl32.Vec3) mgl32.Vec3 {
	if up.Len() > 0 && forward.Cross(up.Normalize()).Len() > 1e-6 {
		return up
	}
	axes := []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	best := axes[0]
	for _, a := range axes[1:] {
		if mgl32.Abs(forward.Dot(a)) < mgl32.Abs(forward.Dot(best)) {
			best = a
		}
	}
	return best
}

// ViewProjection returns Projection * View.
func (c Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.View)
}

// Aspect returns the viewport aspect ratio (width / height).
func (c Camera) Aspect() float32 {
	if c.Viewport[3] == 0 {
		return 1
	}
	return float32(c.Viewport[2]) / float32(c.Viewport[3])
}

// Distance returns the distance between position and target.
func (c Camera) Distance() float32 {
	return c.Position.Sub(c.Target).Len()
}

// IsZUp reports whether the up vector is the JSCAD +Z convention.
func (c Camera) IsZUp() bool {
	return c.Up[2] == 1
}

// CameraBuilderOption configures a Camera in NewCamera.
type CameraBuilderOption func(*Camera)

// WithPosition sets the camera's world-space position.
//
// Parameters:
//   - position: the eye position
//
// Returns:
//   - CameraBuilderOption: a function that sets the position
func WithPosition(position mgl32.Vec3) CameraBuilderOption {
	return func(c *Camera) {
		c.Position = position
	}
}

// WithTarget sets the look-at point.
//
// Parameters:
//   - target: the world-space point the camera looks at
//
// Returns:
//   - CameraBuilderOption: a function that sets the target
func WithTarget(target mgl32.Vec3) CameraBuilderOption {
	return func(c *Camera) {
		c.Target = target
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - up: the up vector, (0, 0, 1) for Z-up or (0, 1, 0) for Y-up scenes
//
// Returns:
//   - CameraBuilderOption: a function that sets the up vector
func WithUp(up mgl32.Vec3) CameraBuilderOption {
	return func(c *Camera) {
		c.Up = up
	}
}

// WithFov sets the vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Fov = fov
	}
}

// WithClipPlanes sets the near and far clipping distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets both planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *Camera) {
		c.Near = near
		c.Far = far
	}
}
