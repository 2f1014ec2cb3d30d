package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/jscad-view/common"
	"github.com/Carmen-Shannon/jscad-view/engine/camera"
	"github.com/Carmen-Shannon/jscad-view/engine/geom"
	"github.com/go-gl/mathgl/mgl32"
)

// Renderer draws one frame of a viewport.
//
// Implementations translate the primitives emitted by the draw commands into their own
// output: GPU vertex buffers for the wgpu backend, character cells for the terminal backend.
type Renderer interface {
	// Render performs one synchronous redraw.
	//
	// Parameters:
	//   - opts: the camera, draw-command table and entities to draw
	//
	// Returns:
	//   - error: an error if the frame could not be produced
	Render(opts RenderOptions) error

	// Resize configures the output for a new drawing buffer size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Release frees the resources held by the renderer. The renderer must not be used afterwards.
	Release()
}

// RenderOptions bundles everything a Renderer needs for one frame.
type RenderOptions struct {
	Camera camera.Camera

	// DrawCommands maps the entity DrawCmd names to the functions that draw them.
	DrawCommands map[string]DrawCommand

	// Entities are drawn in order; the grid and axis come first.
	Entities []geom.Entity
}

// Sink receives the primitives emitted by draw commands, in world space.
type Sink interface {
	// Line adds a line segment.
	Line(a, b mgl32.Vec3, color [4]float32)

	// Triangle adds a filled triangle.
	Triangle(a, b, c mgl32.Vec3, color [4]float32)
}

// OverlaySink is implemented by sinks that can draw lines on top of everything else.
type OverlaySink interface {
	Sink

	// OverlayLine adds a segment drawn without depth testing.
	OverlayLine(a, b mgl32.Vec3, color [4]float32)
}

// DrawCommand draws one entity into a sink.
type DrawCommand func(sink Sink, cam camera.Camera, e geom.Entity) error

// DefaultDrawCommands returns the draw-command table for the four entity kinds.
//
// Returns:
//   - map[string]DrawCommand: drawAxis, drawGrid, drawLines and drawMesh
func DefaultDrawCommands() map[string]DrawCommand {
	return map[string]DrawCommand{
		geom.DrawAxis:  DrawAxis,
		geom.DrawGrid:  DrawGrid,
		geom.DrawLines: DrawLines,
		geom.DrawMesh:  DrawMesh,
	}
}

// Emit runs the draw command of every visible entity against a sink. Entities with an
// unknown command are skipped and reported in the returned error; the others still draw.
//
// Parameters:
//   - opts: the frame to emit
//   - sink: the primitive destination
//   - cull: skip content entities whose bounds lie outside the view frustum
//
// Returns:
//   - int: the number of entities drawn
//   - error: the joined per-entity failures
func Emit(opts RenderOptions, sink Sink, cull bool) (int, error) {
	var frustum common.Frustum
	if cull {
		frustum = common.ExtractFrustum(opts.Camera.ViewProjection())
	}

	var errs []error
	drawn := 0
	for _, e := range opts.Entities {
		if !e.Visuals.Show {
			continue
		}
		cmd, ok := opts.DrawCommands[e.Visuals.DrawCmd]
		if !ok {
			errs = append(errs, fmt.Errorf("entity %q: unknown draw command %q", e.Name, e.Visuals.DrawCmd))
			continue
		}
		if cull && len(e.Positions) > 0 && !frustum.IntersectsBox(e.Bounds.WorldMin(), e.Bounds.WorldMax()) {
			continue
		}
		if err := cmd(sink, opts.Camera, e); err != nil {
			errs = append(errs, fmt.Errorf("entity %q: %w", e.Name, err))
			continue
		}
		drawn++
	}
	return drawn, errors.Join(errs...)
}
