package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Draw command names understood by the renderer. Every entity names exactly one of them in its Visuals.
const (
	DrawAxis  = "drawAxis"
	DrawGrid  = "drawGrid"
	DrawLines = "drawLines"
	DrawMesh  = "drawMesh"
)

// Bounds is an axis-aligned bounding box. Min and Max are stored relative to Center,
// so the world-space corners are Min+Center and Max+Center.
type Bounds struct {
	Min    mgl32.Vec3
	Max    mgl32.Vec3
	Center mgl32.Vec3
}

// WorldMin returns the world-space minimum corner.
func (b Bounds) WorldMin() mgl32.Vec3 {
	return b.Min.Add(b.Center)
}

// WorldMax returns the world-space maximum corner.
func (b Bounds) WorldMax() mgl32.Vec3 {
	return b.Max.Add(b.Center)
}

// Size returns the edge lengths of the box.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Radius returns half the length of the box diagonal.
func (b Bounds) Radius() float32 {
	return b.Size().Len() / 2
}

// BoundsFromPoints computes the bounds of a point set in world space and re-expresses
// the corners relative to the box center. An empty set yields zero bounds.
//
// Parameters:
//   - points: the world-space points to enclose
//
// Returns:
//   - Bounds: the enclosing box
func BoundsFromPoints(points []mgl32.Vec3) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	lo := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi := mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, p := range points {
		for i := range 3 {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	center := lo.Add(hi).Mul(0.5)
	return Bounds{
		Min:    lo.Sub(center),
		Max:    hi.Sub(center),
		Center: center,
	}
}

// UnionBounds merges the world-space boxes of several entities. Entities without
// render data (grid, axis) are ignored.
//
// Parameters:
//   - entities: the entities to merge
//
// Returns:
//   - Bounds: the union box, or zero bounds when no entity carries geometry
func UnionBounds(entities []Entity) Bounds {
	corners := make([]mgl32.Vec3, 0, len(entities)*2)
	for _, e := range entities {
		if len(e.Positions) == 0 {
			continue
		}
		corners = append(corners, e.Bounds.WorldMin(), e.Bounds.WorldMax())
	}
	return BoundsFromPoints(corners)
}

// Visuals carries the per-entity drawing settings.
type Visuals struct {
	// DrawCmd names the draw command that renders this entity.
	DrawCmd string
	// Show toggles drawing without removing the entity.
	Show bool
	// Color is the main RGBA colour.
	Color [4]float32
	// SubColor is the secondary colour (grid subdivisions).
	SubColor [4]float32
	// Transparent enables alpha blending.
	Transparent bool
	// FadeOut fades grid lines with distance from the centre.
	FadeOut bool
}

// GridOptions configures the synthetic grid entity.
type GridOptions struct {
	// Size is the grid extent along X and Y.
	Size [2]float32
	// Ticks holds the main and sub line spacing.
	Ticks [2]float32
}

// AxisOptions configures the synthetic axis entity.
type AxisOptions struct {
	// AlwaysVisible draws the axes on top of the geometry.
	AlwaysVisible bool
	// Length of each axis line.
	Length float32
}

// Entity is one renderable item. Content entities carry Positions (triangles for
// meshes, segment pairs for lines) and Bounds; the grid and axis entities carry their
// options instead.
type Entity struct {
	Name    string
	Visuals Visuals
	Bounds  Bounds

	// Positions holds triangle vertices (drawMesh) or segment endpoints (drawLines) in world space.
	Positions []mgl32.Vec3
	// Normals holds one normal per triangle for drawMesh entities.
	Normals []mgl32.Vec3

	Grid *GridOptions
	Axis *AxisOptions
}

// GridEntity returns the grid shown under the geometry.
//
// Returns:
//   - Entity: a drawGrid entity, 500x500 with ticks every 10 and 1 units
func GridEntity() Entity {
	return Entity{
		Name: "grid",
		Visuals: Visuals{
			DrawCmd:     DrawGrid,
			Show:        true,
			Color:       [4]float32{0, 0, 0, 0.6},
			SubColor:    [4]float32{0, 0, 1, 0.3},
			FadeOut:     false,
			Transparent: true,
		},
		Grid: &GridOptions{
			Size:  [2]float32{500, 500},
			Ticks: [2]float32{10, 1},
		},
	}
}

// AxisEntity returns the X/Y/Z axis helper.
//
// Returns:
//   - Entity: a drawAxis entity
func AxisEntity() Entity {
	return Entity{
		Name: "axis",
		Visuals: Visuals{
			DrawCmd: DrawAxis,
			Show:    true,
		},
		Axis: &AxisOptions{
			AlwaysVisible: false,
			Length:        100,
		},
	}
}
