package geom

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnknownSolid is returned for a solid that carries none of polygons, sides or points.
var ErrUnknownSolid = errors.New("solid is not a geom3, geom2 or path2")

var (
	defaultMeshColor = [4]float32{0, 0.6, 1, 1}
	defaultLineColor = [4]float32{0, 0, 0, 1}
)

// Polygon is one convex face of a geom3 solid.
type Polygon struct {
	Vertices [][3]float32 `json:"vertices"`
	Color    []float32    `json:"color,omitempty"`
}

// Solid is a serialized JSCAD geometry. Exactly one of Polygons (geom3), Sides (geom2)
// or Points (path2) is expected to be set.
type Solid struct {
	Polygons   []Polygon       `json:"polygons,omitempty"`
	Sides      [][2][2]float32 `json:"sides,omitempty"`
	Points     [][2]float32    `json:"points,omitempty"`
	IsClosed   bool            `json:"isClosed,omitempty"`
	Transforms []float32       `json:"transforms,omitempty"`
	Color      []float32       `json:"color,omitempty"`
}

// Converter turns payload solids into renderable entities. Solids are converted in
// parallel on a bounded worker pool; the output keeps the input order.
type Converter struct {
	pool   worker.DynamicWorkerPool
	logger *slog.Logger
}

// NewConverter creates a Converter backed by a worker pool.
//
// Parameters:
//   - workers: maximum number of conversion goroutines (values < 1 become 1)
//   - logger: destination for skipped-solid warnings (nil uses slog.Default)
//
// Returns:
//   - *Converter: the converter
func NewConverter(workers int, logger *slog.Logger) *Converter {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{
		pool:   worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
		logger: logger,
	}
}

// EntitiesFromSolids converts every solid into an entity. Solids that fail to convert are
// logged and skipped.
//
// Parameters:
//   - solids: the payload solids
//
// Returns:
//   - []Entity: the converted entities in input order
func (c *Converter) EntitiesFromSolids(solids []Solid) []Entity {
	results := make([]Entity, len(solids))
	errs := make([]error, len(solids))

	var wg sync.WaitGroup
	for i := range solids {
		wg.Add(1)
		idx := i
		c.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				results[idx], errs[idx] = EntityFromSolid(solids[idx], "solid-"+strconv.Itoa(idx))
				return nil, nil
			},
		})
	}
	wg.Wait()

	entities := make([]Entity, 0, len(solids))
	for i, e := range results {
		if errs[i] != nil {
			c.logger.Warn("skipping solid", "index", i, "error", errs[i])
			continue
		}
		entities = append(entities, e)
	}
	return entities
}

// EntityFromSolid converts a single solid. geom3 polygons are fan-triangulated into a
// drawMesh entity; geom2 sides and path2 points become drawLines segment pairs on z=0.
//
// Parameters:
//   - s: the solid to convert
//   - name: the entity name
//
// Returns:
//   - Entity: the converted entity
//   - error: ErrUnknownSolid, or a wrapped error for a malformed transform
func EntityFromSolid(s Solid, name string) (Entity, error) {
	transform, err := solidTransform(s.Transforms)
	if err != nil {
		return Entity{}, fmt.Errorf("%s: %w", name, err)
	}

	e := Entity{Name: name}
	switch {
	case s.Polygons != nil:
		e.Visuals = Visuals{DrawCmd: DrawMesh, Show: true, Color: colorOr(s.Color, defaultMeshColor)}
		for _, poly := range s.Polygons {
			if len(poly.Vertices) < 3 {
				continue
			}
			v0 := apply(transform, poly.Vertices[0])
			for i := 1; i+1 < len(poly.Vertices); i++ {
				v1 := apply(transform, poly.Vertices[i])
				v2 := apply(transform, poly.Vertices[i+1])
				e.Positions = append(e.Positions, v0, v1, v2)
				e.Normals = append(e.Normals, triangleNormal(v0, v1, v2))
			}
		}
	case s.Sides != nil:
		e.Visuals = Visuals{DrawCmd: DrawLines, Show: true, Color: colorOr(s.Color, defaultLineColor)}
		for _, side := range s.Sides {
			e.Positions = append(e.Positions,
				apply(transform, [3]float32{side[0][0], side[0][1], 0}),
				apply(transform, [3]float32{side[1][0], side[1][1], 0}),
			)
		}
	case s.Points != nil:
		e.Visuals = Visuals{DrawCmd: DrawLines, Show: true, Color: colorOr(s.Color, defaultLineColor)}
		pts := make([]mgl32.Vec3, len(s.Points))
		for i, p := range s.Points {
			pts[i] = apply(transform, [3]float32{p[0], p[1], 0})
		}
		for i := 0; i+1 < len(pts); i++ {
			e.Positions = append(e.Positions, pts[i], pts[i+1])
		}
		if s.IsClosed && len(pts) > 2 {
			e.Positions = append(e.Positions, pts[len(pts)-1], pts[0])
		}
	default:
		return Entity{}, fmt.Errorf("%s: %w", name, ErrUnknownSolid)
	}

	e.Bounds = BoundsFromPoints(e.Positions)
	return e, nil
}

// solidTransform reads a JSCAD column-major mat4; an empty slice is the identity.
func solidTransform(values []float32) (mgl32.Mat4, error) {
	if len(values) == 0 {
		return mgl32.Ident4(), nil
	}
	if len(values) != 16 {
		return mgl32.Mat4{}, fmt.Errorf("transforms must have 16 values, got %d", len(values))
	}
	var m mgl32.Mat4
	copy(m[:], values)
	return m, nil
}

func apply(m mgl32.Mat4, v [3]float32) mgl32.Vec3 {
	return m.Mul4x1(mgl32.Vec4{v[0], v[1], v[2], 1}).Vec3()
}

func triangleNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return n.Normalize()
}

func colorOr(c []float32, fallback [4]float32) [4]float32 {
	switch len(c) {
	case 3:
		return [4]float32{c[0], c[1], c[2], 1}
	case 4:
		return [4]float32{c[0], c[1], c[2], c[3]}
	}
	return fallback
}
