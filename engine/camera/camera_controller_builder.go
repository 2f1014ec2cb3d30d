package camera

// OrbitControllerOption is a functional option for configuring an OrbitController.
type OrbitControllerOption func(*OrbitController)

// WithDrag sets the damping factor. Values are clamped to [0.01, 1] when applied, so motion
// always settles.
//
// Parameters:
//   - drag: fraction of the pending deltas removed per update
//
// Returns:
//   - OrbitControllerOption: functional option to set the drag
func WithDrag(drag float32) OrbitControllerOption {
	return func(oc *OrbitController) {
		oc.Drag = drag
	}
}

// WithDistanceLimits sets the minimum and maximum distance between position and target.
//
// Parameters:
//   - min: minimum zoom distance
//   - max: maximum zoom distance
//
// Returns:
//   - OrbitControllerOption: functional option to set the limits
func WithDistanceLimits(min, max float32) OrbitControllerOption {
	return func(oc *OrbitController) {
		oc.Limits = Limits{MinDistance: min, MaxDistance: max}
	}
}

// WithTightness sets the ZoomToFit tightness.
//
// Parameters:
//   - tightness: distance multiplier applied when fitting
//
// Returns:
//   - OrbitControllerOption: functional option to set the tightness
func WithTightness(tightness float32) OrbitControllerOption {
	return func(oc *OrbitController) {
		oc.Fit.Tightness = tightness
	}
}

// WithUserControl enables or disables the rotate, pan and zoom gestures.
//
// Parameters:
//   - rotate: allow rotation
//   - pan: allow panning
//   - zoom: allow zooming and zoom-to-fit
//
// Returns:
//   - OrbitControllerOption: functional option to set the gesture toggles
func WithUserControl(rotate, pan, zoom bool) OrbitControllerOption {
	return func(oc *OrbitController) {
		oc.UserControl.Rotate = rotate
		oc.UserControl.Pan = pan
		oc.UserControl.Zoom = zoom
	}
}

// WithAutoRotate turns on continuous rotation around the target.
//
// Parameters:
//   - speed: revolutions per minute at 60 updates per second
//
// Returns:
//   - OrbitControllerOption: functional option to enable auto rotation
func WithAutoRotate(speed float32) OrbitControllerOption {
	return func(oc *OrbitController) {
		oc.AutoRotate = AutoRotate{Enabled: true, Speed: speed}
	}
}
