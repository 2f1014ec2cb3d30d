package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustum extracts frustum planes from a combined projection * view matrix
// using the Gribb/Hartmann method. The matrix must use OpenGL clip conventions
// (z in [-w, w]), which is what the camera package produces.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the view-projection matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustum(viewProj mgl32.Mat4) Frustum {
	var f Frustum

	row := func(i int) mgl32.Vec4 {
		return viewProj.Row(i)
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	set := func(idx int, v mgl32.Vec4) {
		f.Planes[idx] = Plane{Normal: v.Vec3(), Distance: v[3]}
	}
	set(FrustumLeft, r3.Add(r0))
	set(FrustumRight, r3.Sub(r0))
	set(FrustumBottom, r3.Add(r1))
	set(FrustumTop, r3.Sub(r1))
	set(FrustumNear, r3.Add(r2))
	set(FrustumFar, r3.Sub(r2))

	for i := range f.Planes {
		f.normalizePlane(i)
	}

	return f
}

// IntersectsBox reports whether an axis-aligned box (world space) is at least partly inside the frustum.
// The test is conservative: boxes near frustum corners may report true while being outside.
//
// Parameters:
//   - min: the box minimum corner
//   - max: the box maximum corner
//
// Returns:
//   - bool: false only when the box lies entirely behind one of the planes
func (f Frustum) IntersectsBox(min, max mgl32.Vec3) bool {
	for _, p := range f.Planes {
		// the box corner furthest along the plane normal
		var corner mgl32.Vec3
		for i := range 3 {
			if p.Normal[i] >= 0 {
				corner[i] = max[i]
			} else {
				corner[i] = min[i]
			}
		}
		if p.Normal.Dot(corner)+p.Distance < 0 {
			return false
		}
	}
	return true
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
func (f *Frustum) normalizePlane(index int) {
	p := &f.Planes[index]
	length := p.Normal.Len()
	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Mul(invLen)
		p.Distance *= invLen
	}
}
