package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/jscad-view/engine/camera"
	"github.com/Carmen-Shannon/jscad-view/engine/geom"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	axisColorX = [4]float32{1, 0, 0, 1}
	axisColorY = [4]float32{0, 1, 0, 1}
	axisColorZ = [4]float32{0, 0, 1, 1}
)

// Ambient and diffuse weights of the flat shading applied to meshes.
const (
	ambientLight = 0.35
	diffuseLight = 0.65
)

// DrawGrid draws a square grid on the z=0 plane. Lines every Ticks[0] units use the main
// colour, lines every Ticks[1] units in between use the sub colour.
func DrawGrid(sink Sink, _ camera.Camera, e geom.Entity) error {
	if e.Grid == nil {
		return errors.New("drawGrid needs grid options")
	}
	halfX, halfY := e.Grid.Size[0]/2, e.Grid.Size[1]/2
	main, sub := e.Grid.Ticks[0], e.Grid.Ticks[1]
	if main <= 0 {
		return fmt.Errorf("invalid grid tick %v", main)
	}

	line := func(offset, half, span float32, alongX bool, color [4]float32) {
		if e.Visuals.FadeOut {
			color[3] *= 1 - float32(math.Abs(float64(offset)))/half
		}
		if alongX {
			sink.Line(mgl32.Vec3{-span, offset, 0}, mgl32.Vec3{span, offset, 0}, color)
		} else {
			sink.Line(mgl32.Vec3{offset, -span, 0}, mgl32.Vec3{offset, span, 0}, color)
		}
	}

	if sub > 0 && sub < main {
		for v := -halfY; v <= halfY; v += sub {
			if !onTick(v, main) {
				line(v, halfY, halfX, true, e.Visuals.SubColor)
			}
		}
		for v := -halfX; v <= halfX; v += sub {
			if !onTick(v, main) {
				line(v, halfX, halfY, false, e.Visuals.SubColor)
			}
		}
	}
	for v := -halfY; v <= halfY; v += main {
		line(v, halfY, halfX, true, e.Visuals.Color)
	}
	for v := -halfX; v <= halfX; v += main {
		line(v, halfX, halfY, false, e.Visuals.Color)
	}
	return nil
}

// DrawAxis draws the X (red), Y (green) and Z (blue) axes from the origin.
func DrawAxis(sink Sink, _ camera.Camera, e geom.Entity) error {
	length := float32(100)
	alwaysVisible := false
	if e.Axis != nil {
		if e.Axis.Length > 0 {
			length = e.Axis.Length
		}
		alwaysVisible = e.Axis.AlwaysVisible
	}

	line := sink.Line
	if overlay, ok := sink.(OverlaySink); ok && alwaysVisible {
		line = overlay.OverlayLine
	}
	origin := mgl32.Vec3{}
	line(origin, mgl32.Vec3{length, 0, 0}, axisColorX)
	line(origin, mgl32.Vec3{0, length, 0}, axisColorY)
	line(origin, mgl32.Vec3{0, 0, length}, axisColorZ)
	return nil
}

// DrawLines draws the entity positions as segment pairs.
func DrawLines(sink Sink, _ camera.Camera, e geom.Entity) error {
	if len(e.Positions)%2 != 0 {
		return fmt.Errorf("drawLines needs segment pairs, got %d positions", len(e.Positions))
	}
	for i := 0; i < len(e.Positions); i += 2 {
		sink.Line(e.Positions[i], e.Positions[i+1], e.Visuals.Color)
	}
	return nil
}

// DrawMesh draws the entity triangles with flat shading lit from the camera.
func DrawMesh(sink Sink, cam camera.Camera, e geom.Entity) error {
	if len(e.Positions)%3 != 0 {
		return fmt.Errorf("drawMesh needs whole triangles, got %d positions", len(e.Positions))
	}

	light := cam.Position.Sub(cam.Target)
	if light.Len() > 0 {
		light = light.Normalize()
	}

	for i := 0; i < len(e.Positions); i += 3 {
		a, b, c := e.Positions[i], e.Positions[i+1], e.Positions[i+2]
		var normal mgl32.Vec3
		if n := i / 3; n < len(e.Normals) {
			normal = e.Normals[n]
		} else {
			normal = b.Sub(a).Cross(c.Sub(a))
			if normal.Len() > 0 {
				normal = normal.Normalize()
			}
		}
		sink.Triangle(a, b, c, Shade(e.Visuals.Color, normal, light))
	}
	return nil
}

// Shade applies flat lighting to a colour. Back faces are lit like front faces.
//
// Parameters:
//   - color: the base RGBA colour
//   - normal: the unit face normal
//   - light: the unit direction towards the light
//
// Returns:
//   - [4]float32: the lit colour with unchanged alpha
func Shade(color [4]float32, normal, light mgl32.Vec3) [4]float32 {
	intensity := ambientLight + diffuseLight*float32(math.Abs(float64(normal.Dot(light))))
	return [4]float32{color[0] * intensity, color[1] * intensity, color[2] * intensity, color[3]}
}

func onTick(v, tick float32) bool {
	r := math.Mod(float64(v), float64(tick))
	return math.Abs(r) < 1e-3 || math.Abs(math.Abs(r)-float64(tick)) < 1e-3
}
