package renderer

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// primitiveKind selects the pipeline a batch of vertices is drawn with.
type primitiveKind int

const (
	kindTriangles primitiveKind = iota
	kindLines
	kindOverlayLines
)

// drawOrder lists the batches in the order they are drawn each frame. Overlay lines go last
// so they stay on top.
var drawOrder = []primitiveKind{kindTriangles, kindLines, kindOverlayLines}

func (k primitiveKind) String() string {
	switch k {
	case kindTriangles:
		return "triangles"
	case kindLines:
		return "lines"
	case kindOverlayLines:
		return "overlay lines"
	}
	return "unknown"
}
