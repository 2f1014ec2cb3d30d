package camera

// Orbit controller defaults.
const (
	DefaultDrag        float32 = 0.27
	DefaultEPS         float32 = 1e-6
	DefaultMinDistance float32 = 0.01
	DefaultMaxDistance float32 = 10000
	DefaultTightness   float32 = 1.5
	DefaultZoomSpeed   float32 = 1
)

// changeThreshold is the eye movement, in world units, below which an update counts as settled.
const changeThreshold = 0.001

// Limits bounds the distance between camera position and target.
type Limits struct {
	MinDistance float32
	MaxDistance float32
}

// UserControl toggles the gesture families and carries the base zoom step.
type UserControl struct {
	Rotate    bool
	Pan       bool
	Zoom      bool
	ZoomSpeed float32
}

// AutoRotate spins the camera around its target every update while enabled.
type AutoRotate struct {
	Enabled bool
	Speed   float32
}

// FitSettings configures ZoomToFit.
type FitSettings struct {
	// Tightness scales the fitted distance; larger values leave more room around the geometry.
	Tightness float32
}

// OrbitController is the state of an orbit camera control: pending spherical deltas and a
// distance scale that Update folds into the camera, plus the damping settings.
//
// Like Camera it is a plain value. Step functions return a new controller and never modify
// the receiver; input handlers never touch it directly.
type OrbitController struct {
	// ThetaDelta is the pending rotation around the up axis in radians.
	ThetaDelta float32
	// PhiDelta is the pending rotation away from the up axis in radians.
	PhiDelta float32
	// Scale multiplies the current distance on the next Update.
	Scale float32
	// Changed reports whether the last Update moved the camera.
	Changed bool

	// Drag is the fraction of the pending deltas removed on each Update.
	Drag float32
	// EPS keeps phi away from the poles.
	EPS float32

	Limits      Limits
	Fit         FitSettings
	UserControl UserControl
	AutoRotate  AutoRotate
}

// NewOrbitController creates an orbit controller with the default damping and limits.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the new controller
func NewOrbitController(options ...OrbitControllerOption) OrbitController {
	oc := OrbitController{
		Scale: 1,
		Drag:  DefaultDrag,
		EPS:   DefaultEPS,
		Limits: Limits{
			MinDistance: DefaultMinDistance,
			MaxDistance: DefaultMaxDistance,
		},
		Fit: FitSettings{Tightness: DefaultTightness},
		UserControl: UserControl{
			Rotate:    true,
			Pan:       true,
			Zoom:      true,
			ZoomSpeed: DefaultZoomSpeed,
		},
		AutoRotate: AutoRotate{Speed: 1},
	}

	for _, option := range options {
		option(&oc)
	}
	return oc
}
