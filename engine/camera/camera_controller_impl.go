package camera

import (
	"math"

	"github.com/Carmen-Shannon/jscad-view/common"
	"github.com/Carmen-Shannon/jscad-view/engine/geom"
	"github.com/go-gl/mathgl/mgl32"
)

// autoRotateStep is one revolution per minute at 60 updates per second.
const autoRotateStep = 2 * math.Pi / 60 / 60

// Rotate adds a rotation gesture to the pending deltas.
//
// Parameters:
//   - speed: radians per unit of gesture delta
//   - delta: the horizontal and vertical gesture amounts
//
// Returns:
//   - OrbitController: the controller with updated ThetaDelta and PhiDelta
func (oc OrbitController) Rotate(speed float32, delta [2]float32) OrbitController {
	if !oc.UserControl.Rotate {
		return oc
	}
	oc.ThetaDelta += delta[0] * speed
	oc.PhiDelta += delta[1] * speed
	return oc
}

// Zoom adds one zoom step to the pending scale. Only the sign of delta is used, so a wheel
// that reports lines and one that reports pixels zoom at the same rate. The step is dropped
// when the resulting distance would leave the distance limits.
//
// Parameters:
//   - cam: the current camera
//   - speed: scale change per step
//   - delta: the accumulated wheel amount
//
// Returns:
//   - OrbitController: the controller with updated Scale
func (oc OrbitController) Zoom(cam Camera, speed, delta float32) OrbitController {
	if !oc.UserControl.Zoom || delta == 0 || !common.IsFinite(delta) {
		return oc
	}

	step := oc.UserControl.ZoomSpeed * common.Sign(delta) * speed
	newDistance := cam.Distance() * (oc.Scale + step)
	if newDistance > oc.Limits.MinDistance && newDistance < oc.Limits.MaxDistance {
		oc.Scale += step
	}
	return oc
}

// Pan translates position and target together across the view plane. One unit of delta
// moves the scene by one device pixel at the target's depth.
//
// Parameters:
//   - cam: the current camera
//   - speed: multiplier for the gesture delta
//   - delta: horizontal and vertical gesture amounts in pixels
//
// Returns:
//   - OrbitController: the controller (unchanged)
//   - Camera: the camera with moved position and target
func (oc OrbitController) Pan(cam Camera, speed float32, delta [2]float32) (OrbitController, Camera) {
	if !oc.UserControl.Pan {
		return oc, cam
	}

	right, up, ok := viewAxes(cam)
	if !ok {
		return oc, cam
	}

	height := float32(max(cam.Viewport[3], 1))
	worldPerPixel := 2 * cam.Distance() * float32(math.Tan(float64(cam.Fov)/2)) / height

	offset := right.Mul(delta[0]).Add(up.Mul(delta[1])).Mul(worldPerPixel * speed)
	cam.Position = cam.Position.Add(offset)
	cam.Target = cam.Target.Add(offset)
	return oc, cam
}

// Update integrates the pending deltas into the camera position. The offset from the target
// is converted to spherical coordinates around the up axis, the deltas are applied, phi is
// kept off the poles and the distance is scaled within the limits. The deltas then decay by
// the drag factor, so motion continues for a few updates after input stops and settles.
//
// Parameters:
//   - cam: the current camera
//
// Returns:
//   - OrbitController: the controller with decayed deltas, Scale reset and Changed set
//   - Camera: the camera with its new position
func (oc OrbitController) Update(cam Camera) (OrbitController, Camera) {
	offset := cam.Position.Sub(cam.Target)
	zUp := cam.IsZUp()

	var theta, phi float64
	if zUp {
		theta = math.Atan2(float64(offset[1]), float64(offset[0]))
		phi = math.Atan2(math.Hypot(float64(offset[0]), float64(offset[1])), float64(offset[2]))
	} else {
		theta = math.Atan2(float64(offset[0]), float64(offset[2]))
		phi = math.Atan2(math.Hypot(float64(offset[0]), float64(offset[2])), float64(offset[1]))
	}

	if oc.AutoRotate.Enabled && oc.UserControl.Rotate {
		oc.ThetaDelta += autoRotateStep * oc.AutoRotate.Speed
	}

	theta += float64(oc.ThetaDelta)
	phi += float64(oc.PhiDelta)
	eps := float64(oc.EPS)
	phi = common.Clamp(phi, eps, math.Pi-eps)

	radius := float64(common.Clamp(offset.Len()*oc.Scale, oc.Limits.MinDistance, oc.Limits.MaxDistance))

	sinPhi, cosPhi := math.Sincos(phi)
	sinTheta, cosTheta := math.Sincos(theta)
	var next mgl32.Vec3
	if zUp {
		next = mgl32.Vec3{
			float32(radius * sinPhi * cosTheta),
			float32(radius * sinPhi * sinTheta),
			float32(radius * cosPhi),
		}
	} else {
		next = mgl32.Vec3{
			float32(radius * sinPhi * sinTheta),
			float32(radius * cosPhi),
			float32(radius * sinPhi * cosTheta),
		}
	}
	newPosition := cam.Target.Add(next)

	dragEffect := 1 - common.Clamp(oc.Drag, 0.01, 1)
	oc.ThetaDelta *= dragEffect
	oc.PhiDelta *= dragEffect
	oc.Scale = 1
	oc.Changed = newPosition.Sub(cam.Position).Len() > changeThreshold

	cam.Position = newPosition
	return oc, cam
}

// ZoomToFit points the camera at the center of the entities and sets Scale so that the next
// Update places the camera at a distance where the bounding sphere fills the field of view,
// widened by the tightness factor. Entities without geometry are ignored.
//
// Parameters:
//   - cam: the current camera
//   - entities: the entities to frame
//
// Returns:
//   - OrbitController: the controller with the fitting Scale
//   - Camera: the camera with its target on the bounds center
func (oc OrbitController) ZoomToFit(cam Camera, entities []geom.Entity) (OrbitController, Camera) {
	if !oc.UserControl.Zoom {
		return oc, cam
	}
	bounds := geom.UnionBounds(entities)
	radius := bounds.Radius()
	if radius == 0 {
		return oc, cam
	}

	cam.Target = bounds.Center
	current := cam.Distance()
	if current == 0 {
		return oc, cam
	}

	ideal := radius * oc.Fit.Tightness / float32(math.Tan(float64(cam.Fov)/2))
	oc.Scale = ideal / current
	return oc, cam
}

// FitToBounds resizes the viewport to the geometry. The projected height of the entities
// becomes the new logical height (never below minHeight), the target moves to the origin
// and the projection is re-derived for the new size.
//
// Parameters:
//   - cam: the current camera
//   - entities: the content entities to measure
//   - pixelRatio: device pixels per logical pixel
//   - minHeight: minimum logical height
//
// Returns:
//   - Camera: the camera with new target, viewport and projection
//   - int: the new logical height for the host surface
func FitToBounds(cam Camera, entities []geom.Entity, pixelRatio float32, minHeight int) (Camera, int) {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}

	_, extentY := geom.ProjectionExtent(entities, cam.Projection, float32(cam.Viewport[2]), float32(cam.Viewport[3]))

	cam.Target = mgl32.Vec3{}
	logical := minHeight
	if common.IsFinite(extentY) {
		logical = max(minHeight, int(extentY))
	}

	cam = cam.SetProjection(cam.Viewport[2], int(float32(logical)*pixelRatio))
	return cam.UpdateFromPosition(), logical
}

// viewAxes returns the screen-right and screen-up directions of the camera in world space.
// ok is false when the view direction is parallel to the up vector.
func viewAxes(cam Camera) (right, up mgl32.Vec3, ok bool) {
	forward := cam.Target.Sub(cam.Position)
	if forward.Len() == 0 {
		return right, up, false
	}
	forward = forward.Normalize()

	right = forward.Cross(cam.Up)
	if right.Len() < 1e-8 {
		return right, up, false
	}
	right = right.Normalize()
	up = right.Cross(forward)
	return right, up, true
}
