package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// TransformPoint applies a 4x4 homogeneous transform to a 3D point and divides by the
// resulting w component. A w of exactly zero is treated as 1 so points on the camera plane
// map to finite values instead of infinities.
//
// Parameters:
//   - m: the transform matrix (column-major)
//   - v: the point to transform
//
// Returns:
//   - mgl32.Vec3: the transformed point
func TransformPoint(m mgl32.Mat4, v mgl32.Vec3) mgl32.Vec3 {
	x := m[0]*v[0] + m[4]*v[1] + m[8]*v[2] + m[12]
	y := m[1]*v[0] + m[5]*v[1] + m[9]*v[2] + m[13]
	z := m[2]*v[0] + m[6]*v[1] + m[10]*v[2] + m[14]
	w := m[3]*v[0] + m[7]*v[1] + m[11]*v[2] + m[15]
	if w == 0 {
		w = 1
	}
	return mgl32.Vec3{x / w, y / w, z / w}
}

// DepthZeroToOne converts an OpenGL-style projection (clip z in [-w, w]) into the
// WebGPU convention (clip z in [0, w]).
//
// Parameters:
//   - projection: an OpenGL-style projection matrix
//
// Returns:
//   - mgl32.Mat4: the corrected projection matrix
func DepthZeroToOne(projection mgl32.Mat4) mgl32.Mat4 {
	correction := mgl32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0.5, 0,
		0, 0, 0.5, 1,
	}
	return correction.Mul4(projection)
}

// Sign returns -1, 0 or 1 following the sign of v.
func Sign(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
