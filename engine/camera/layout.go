package camera

import (
	"github.com/Carmen-Shannon/jscad-view/common"
)

// DefaultMinHeight is the minimum logical viewport height used when a payload does not set one.
const DefaultMinHeight = 300

// Layout is the outcome of sizing the viewport against its host surface.
type Layout struct {
	// Width and Height are the drawing buffer size in device pixels.
	Width  int
	Height int
	// ContainerHeight is the logical height the host surface should give the viewport.
	ContainerHeight int
}

// ComputeLayout sizes the viewport for a host surface. The width always follows the host;
// a forced height wins outright, otherwise the height is the larger of the minimum height
// and the host height, both measured in device pixels.
//
// Parameters:
//   - host: the host element bounds in logical pixels
//   - pixelRatio: device pixels per logical pixel (values <= 0 are treated as 1)
//   - minHeight: minimum viewport height
//   - forcedHeight: explicit logical height, 0 for none
//
// Returns:
//   - Layout: the computed sizes
func ComputeLayout(host common.Rect, pixelRatio float32, minHeight, forcedHeight int) Layout {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}

	l := Layout{Width: int(host.Width() * pixelRatio)}
	if forcedHeight > 0 {
		l.Height = int(float32(forcedHeight) * pixelRatio)
		l.ContainerHeight = forcedHeight
		return l
	}

	l.Height = max(minHeight, int(host.Height()*pixelRatio))
	l.ContainerHeight = max(minHeight, int(host.Height()))
	return l
}
