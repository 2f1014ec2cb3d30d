// package common contains plain types and helpers shared by the viewer packages. They are not interface-wrapped structs,
// just plain structs that express commonly used data-types.
package common

// Rect is an axis-aligned rectangle in logical (CSS-style) pixels, as reported by a host surface
// for the element that contains the viewport.
type Rect struct {
	Left   float32
	Top    float32
	Right  float32
	Bottom float32
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float32 {
	return r.Right - r.Left
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float32 {
	return r.Bottom - r.Top
}

// RectOfSize builds a Rect anchored at the origin with the given size.
//
// Parameters:
//   - width: the rectangle width in logical pixels
//   - height: the rectangle height in logical pixels
//
// Returns:
//   - Rect: the rectangle spanning (0, 0) to (width, height)
func RectOfSize(width, height float32) Rect {
	return Rect{Right: width, Bottom: height}
}
