// Package input turns raw pointer and wheel events from a host surface into the pending
// rotate, pan and zoom amounts that the render loop consumes once per frame.
package input

import "sync"

// Event is the part of a host event that gesture handlers act on. Calling PreventDefault
// tells the host not to run its own handling (scrolling, text selection) for the event.
type Event struct {
	defaultPrevented bool
}

// PreventDefault marks the event as handled by the viewport.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// PointerEvent is a pointer press, release or move in host page coordinates.
type PointerEvent struct {
	Event

	// PointerID identifies the pointer for capture.
	PointerID int
	// X and Y are the pointer position in logical pixels.
	X float32
	Y float32
	// Modifier is true while the pan modifier (shift) is held.
	Modifier bool
}

// WheelEvent is a scroll wheel or trackpad scroll.
type WheelEvent struct {
	Event

	// DeltaY is the vertical scroll amount; positive scrolls down (zooms out).
	DeltaY float32
}

// PointerCapturer routes all events of a pointer to the viewport while a drag is active,
// even when the pointer leaves the viewport bounds.
type PointerCapturer interface {
	SetPointerCapture(pointerID int)
	ReleasePointerCapture(pointerID int)
}

// Deltas are the gesture amounts accumulated since the last drain.
type Deltas struct {
	Pan    [2]float32
	Rotate [2]float32
	Zoom   float32
}

// IsZero reports whether no gesture is pending.
func (d Deltas) IsZero() bool {
	return d == Deltas{}
}

// Gestures accumulates gesture deltas from host events. Handlers may run on any goroutine;
// the render loop calls Drain once per frame.
type Gestures struct {
	mu *sync.Mutex

	capturer PointerCapturer

	pointerDown bool
	lastX       float32
	lastY       float32

	pending Deltas
}

// NewGestures creates an empty accumulator.
//
// Parameters:
//   - capturer: receives capture and release calls for pressed pointers (may be nil)
//
// Returns:
//   - *Gestures: the accumulator
func NewGestures(capturer PointerCapturer) *Gestures {
	return &Gestures{
		mu:       &sync.Mutex{},
		capturer: capturer,
	}
}

// PointerDown starts a drag at the event position and captures the pointer.
//
// Parameters:
//   - ev: the press event
func (g *Gestures) PointerDown(ev *PointerEvent) {
	g.mu.Lock()
	g.pointerDown = true
	g.lastX = ev.X
	g.lastY = ev.Y
	capturer := g.capturer
	g.mu.Unlock()

	if capturer != nil {
		capturer.SetPointerCapture(ev.PointerID)
	}
	ev.PreventDefault()
}

// PointerMove adds the movement since the last pointer position to the pan delta when the
// modifier is held, or subtracts it from the rotate delta otherwise. Moves without a pressed
// pointer are ignored.
//
// Parameters:
//   - ev: the move event
func (g *Gestures) PointerMove(ev *PointerEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.pointerDown {
		return
	}

	x := g.lastX - ev.X
	y := ev.Y - g.lastY

	if ev.Modifier {
		g.pending.Pan[0] += x
		g.pending.Pan[1] += y
	} else {
		g.pending.Rotate[0] -= x
		g.pending.Rotate[1] -= y
	}

	g.lastX = ev.X
	g.lastY = ev.Y
	ev.PreventDefault()
}

// PointerUp ends the drag and releases the pointer.
//
// Parameters:
//   - ev: the release event
func (g *Gestures) PointerUp(ev *PointerEvent) {
	g.mu.Lock()
	g.pointerDown = false
	capturer := g.capturer
	g.mu.Unlock()

	if capturer != nil {
		capturer.ReleasePointerCapture(ev.PointerID)
	}
	ev.PreventDefault()
}

// Wheel adds the vertical scroll amount to the zoom delta unscaled.
//
// Parameters:
//   - ev: the wheel event
func (g *Gestures) Wheel(ev *WheelEvent) {
	g.mu.Lock()
	g.pending.Zoom += ev.DeltaY
	g.mu.Unlock()
	ev.PreventDefault()
}

// Dragging reports whether a pointer is pressed.
func (g *Gestures) Dragging() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pointerDown
}

// Drain returns the accumulated deltas and resets them to zero.
//
// Returns:
//   - Deltas: everything accumulated since the previous Drain
func (g *Gestures) Drain() Deltas {
	g.mu.Lock()
	defer g.mu.Unlock()
	d := g.pending
	g.pending = Deltas{}
	return d
}
