package geom

import (
	"log/slog"
	"math"

	"github.com/Carmen-Shannon/jscad-view/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ProjectionExtent computes the on-screen size, in pixels, that a set of entities would
// occupy once projected through the given projection matrix and mapped to a viewport.
//
// The running extrema start at zero rather than at ±infinity, so a set lying entirely on
// one side of the origin is measured from the origin. The minimum is taken from each
// entity's min corner and the maximum from its max corner only. Persisted layouts depend
// on both behaviours; ProjectionExtentStrict is the exact variant.
//
// Parameters:
//   - entities: the entities to measure (bounds relative to their centers)
//   - projection: the camera projection matrix
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//
// Returns:
//   - x: the projected width in pixels
//   - y: the projected height in pixels
func ProjectionExtent(entities []Entity, projection mgl32.Mat4, width, height float32) (x, y float32) {
	var minX, minY, maxX, maxY float32

	for _, e := range entities {
		projMin := common.TransformPoint(projection, e.Bounds.WorldMin())
		projMax := common.TransformPoint(projection, e.Bounds.WorldMax())

		minX = min(minX, projMin[0])
		minY = min(minY, projMin[1])
		maxX = max(maxX, projMax[0])
		maxY = max(maxY, projMax[1])
	}

	slog.Debug("projection extrema", "minX", minX, "minY", minY, "maxX", maxX, "maxY", maxY)

	return mapToPixels(minX, minY, maxX, maxY, width, height)
}

// ProjectionExtentStrict is ProjectionExtent without the legacy seeding: extrema start at
// ±infinity and all eight corners of every box contribute to both minimum and maximum.
// An empty set still yields (0, 0).
//
// Parameters:
//   - entities: the entities to measure
//   - projection: the camera projection matrix
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//
// Returns:
//   - x: the projected width in pixels
//   - y: the projected height in pixels
func ProjectionExtentStrict(entities []Entity, projection mgl32.Mat4, width, height float32) (x, y float32) {
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	seen := false

	for _, e := range entities {
		lo, hi := e.Bounds.WorldMin(), e.Bounds.WorldMax()
		for i := range 8 {
			corner := mgl32.Vec3{lo[0], lo[1], lo[2]}
			if i&1 != 0 {
				corner[0] = hi[0]
			}
			if i&2 != 0 {
				corner[1] = hi[1]
			}
			if i&4 != 0 {
				corner[2] = hi[2]
			}
			p := common.TransformPoint(projection, corner)
			minX, maxX = min(minX, p[0]), max(maxX, p[0])
			minY, maxY = min(minY, p[1]), max(maxY, p[1])
			seen = true
		}
	}
	if !seen {
		return 0, 0
	}

	return mapToPixels(minX, minY, maxX, maxY, width, height)
}

// mapToPixels scales clip-space extrema to viewport pixels and returns the spans.
func mapToPixels(minX, minY, maxX, maxY, width, height float32) (float32, float32) {
	aspect := width / height

	realMinX := minX * aspect * width
	realMinY := minY * height
	realMaxX := maxX * aspect * width
	realMaxY := maxY * height

	return realMaxX - realMinX, realMaxY - realMinY
}
