package renderer

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/jscad-view/engine/camera"
	"github.com/Carmen-Shannon/jscad-view/engine/geom"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedLine struct {
	a, b    mgl32.Vec3
	color   [4]float32
	overlay bool
}

type recordingSink struct {
	lines     []recordedLine
	triangles [][4]float32
}

func (s *recordingSink) Line(a, b mgl32.Vec3, color [4]float32) {
	s.lines = append(s.lines, recordedLine{a: a, b: b, color: color})
}

func (s *recordingSink) Triangle(_, _, _ mgl32.Vec3, color [4]float32) {
	s.triangles = append(s.triangles, color)
}

type overlayRecordingSink struct {
	recordingSink
}

func (s *overlayRecordingSink) OverlayLine(a, b mgl32.Vec3, color [4]float32) {
	s.lines = append(s.lines, recordedLine{a: a, b: b, color: color, overlay: true})
}

func topDownCamera(width, height int) camera.Camera {
	return camera.NewCamera(
		camera.WithPosition(mgl32.Vec3{0, 0, 100}),
		camera.WithTarget(mgl32.Vec3{}),
		camera.WithUp(mgl32.Vec3{0, 1, 0}),
	).SetProjection(width, height).UpdateFromPosition()
}

func TestDrawGridLineCount(t *testing.T) {
	grid := geom.GridEntity()
	grid.Grid.Size = [2]float32{20, 20}

	sink := &recordingSink{}
	require.NoError(t, DrawGrid(sink, camera.NewCamera(), grid))

	main, sub := 0, 0
	for _, l := range sink.lines {
		switch l.color {
		case grid.Visuals.Color:
			main++
		case grid.Visuals.SubColor:
			sub++
		}
	}
	assert.Len(t, sink.lines, 42)
	assert.Equal(t, 6, main)
	assert.Equal(t, 36, sub)
}

func TestDrawGridFadeOut(t *testing.T) {
	grid := geom.GridEntity()
	grid.Grid.Size = [2]float32{20, 20}
	grid.Grid.Ticks = [2]float32{10, 0}
	grid.Visuals.FadeOut = true

	sink := &recordingSink{}
	require.NoError(t, DrawGrid(sink, camera.NewCamera(), grid))
	require.Len(t, sink.lines, 6)

	for _, l := range sink.lines {
		if l.a[1] == 0 && l.b[1] == 0 {
			assert.InDelta(t, grid.Visuals.Color[3], l.color[3], 1e-6, "centre line keeps its alpha")
		}
		if l.a[1] == 10 && l.b[1] == 10 {
			assert.InDelta(t, 0, l.color[3], 1e-6, "edge line fades out")
		}
	}
}

func TestDrawGridErrors(t *testing.T) {
	grid := geom.GridEntity()
	grid.Grid = nil
	assert.Error(t, DrawGrid(&recordingSink{}, camera.NewCamera(), grid))

	grid = geom.GridEntity()
	grid.Grid.Ticks = [2]float32{0, 1}
	assert.Error(t, DrawGrid(&recordingSink{}, camera.NewCamera(), grid))
}

func TestDrawAxis(t *testing.T) {
	axis := geom.AxisEntity()

	sink := &overlayRecordingSink{}
	require.NoError(t, DrawAxis(sink, camera.NewCamera(), axis))
	require.Len(t, sink.lines, 3)
	assert.Equal(t, mgl32.Vec3{100, 0, 0}, sink.lines[0].b)
	assert.Equal(t, axisColorZ, sink.lines[2].color)
	for _, l := range sink.lines {
		assert.False(t, l.overlay)
	}

	axis.Axis.AlwaysVisible = true
	axis.Axis.Length = 5
	sink = &overlayRecordingSink{}
	require.NoError(t, DrawAxis(sink, camera.NewCamera(), axis))
	for _, l := range sink.lines {
		assert.True(t, l.overlay)
		assert.Equal(t, float32(5), l.b.Len())
	}

	plain := &recordingSink{}
	require.NoError(t, DrawAxis(plain, camera.NewCamera(), axis))
	assert.Len(t, plain.lines, 3, "falls back to depth-tested lines")
}

func TestDrawLinesAndMesh(t *testing.T) {
	lines := geom.Entity{
		Visuals:   geom.Visuals{DrawCmd: geom.DrawLines, Show: true, Color: [4]float32{1, 0, 0, 1}},
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 0, 0}, {1, 1, 0}},
	}
	sink := &recordingSink{}
	require.NoError(t, DrawLines(sink, camera.NewCamera(), lines))
	assert.Len(t, sink.lines, 2)

	lines.Positions = lines.Positions[:3]
	assert.Error(t, DrawLines(sink, camera.NewCamera(), lines))

	mesh := geom.Entity{
		Visuals:   geom.Visuals{DrawCmd: geom.DrawMesh, Show: true, Color: [4]float32{1, 1, 1, 0.5}},
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	}
	cam := topDownCamera(100, 100)
	sink = &recordingSink{}
	require.NoError(t, DrawMesh(sink, cam, mesh))
	require.Len(t, sink.triangles, 1)
	assert.InDelta(t, 1, sink.triangles[0][0], 1e-5, "face looking at the camera is fully lit")
	assert.Equal(t, float32(0.5), sink.triangles[0][3])

	mesh.Positions = mesh.Positions[:2]
	assert.Error(t, DrawMesh(sink, cam, mesh))
}

func TestShade(t *testing.T) {
	c := Shade([4]float32{1, 1, 1, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1})
	assert.InDelta(t, ambientLight, c[0], 1e-6)

	back := Shade([4]float32{1, 1, 1, 1}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 0, 1})
	assert.InDelta(t, 1, back[0], 1e-6)
}

func TestEmit(t *testing.T) {
	segment := geom.Entity{
		Name:      "visible",
		Visuals:   geom.Visuals{DrawCmd: geom.DrawLines, Show: true},
		Positions: []mgl32.Vec3{{-1, 0, 0}, {1, 0, 0}},
	}
	segment.Bounds = geom.BoundsFromPoints(segment.Positions)

	offscreen := segment
	offscreen.Name = "offscreen"
	offscreen.Positions = []mgl32.Vec3{{5000, 0, 0}, {5001, 0, 0}}
	offscreen.Bounds = geom.BoundsFromPoints(offscreen.Positions)

	hidden := segment
	hidden.Name = "hidden"
	hidden.Visuals.Show = false

	unknown := segment
	unknown.Name = "unknown"
	unknown.Visuals.DrawCmd = "drawSparkles"

	opts := RenderOptions{
		Camera:       topDownCamera(100, 100),
		DrawCommands: DefaultDrawCommands(),
		Entities:     []geom.Entity{geom.GridEntity(), unknown, segment, hidden, offscreen},
	}

	sink := &recordingSink{}
	drawn, err := Emit(opts, sink, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drawSparkles")
	assert.Equal(t, 2, drawn, "grid and the visible segment")

	sink = &recordingSink{}
	drawn, err = Emit(opts, sink, false)
	require.Error(t, err)
	assert.Equal(t, 3, drawn, "without culling the offscreen segment draws too")
}

func TestEmitContinuesAfterCommandError(t *testing.T) {
	boom := errors.New("boom")
	cmds := map[string]DrawCommand{
		"fail": func(Sink, camera.Camera, geom.Entity) error { return boom },
		"ok": func(s Sink, _ camera.Camera, _ geom.Entity) error {
			s.Line(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, [4]float32{})
			return nil
		},
	}
	opts := RenderOptions{
		Camera:       camera.NewCamera(),
		DrawCommands: cmds,
		Entities: []geom.Entity{
			{Name: "a", Visuals: geom.Visuals{DrawCmd: "fail", Show: true}},
			{Name: "b", Visuals: geom.Visuals{DrawCmd: "ok", Show: true}},
		},
	}

	sink := &recordingSink{}
	drawn, err := Emit(opts, sink, false)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, drawn)
	assert.Len(t, sink.lines, 1)
}

func TestBatchSink(t *testing.T) {
	batches := map[primitiveKind]*vertexBatch{
		kindTriangles:    {},
		kindLines:        {},
		kindOverlayLines: {},
	}
	sink := &batchSink{batches: batches}
	sink.Line(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, [4]float32{1, 0, 0, 1})
	sink.OverlayLine(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, [4]float32{0, 1, 0, 1})
	sink.Triangle(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, [4]float32{0, 0, 1, 1})

	assert.Equal(t, 2, batches[kindLines].count())
	assert.Equal(t, 2, batches[kindOverlayLines].count())
	assert.Equal(t, 3, batches[kindTriangles].count())
	assert.Len(t, batches[kindLines].data, 2*vertexStride)

	batches[kindLines].reset()
	assert.Zero(t, batches[kindLines].count())
}

func newSimulationScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(cols, rows)
	t.Cleanup(screen.Fini)
	return screen
}

func columnRunes(screen tcell.Screen, col, rows int) string {
	var sb strings.Builder
	for y := range rows {
		r, _, _, _ := screen.GetContent(col, y)
		sb.WriteRune(r)
	}
	return sb.String()
}

func TestTerminalRendererLine(t *testing.T) {
	screen := newSimulationScreen(t, 80, 24)
	r := NewTerminalRenderer(screen)

	line := geom.Entity{
		Name:      "x",
		Visuals:   geom.Visuals{DrawCmd: geom.DrawLines, Show: true, Color: [4]float32{1, 0, 0, 1}},
		Positions: []mgl32.Vec3{{-10, 0, 0}, {10, 0, 0}},
	}
	line.Bounds = geom.BoundsFromPoints(line.Positions)

	require.NoError(t, r.Render(RenderOptions{
		Camera:       topDownCamera(80*8, 24*16),
		DrawCommands: DefaultDrawCommands(),
		Entities:     []geom.Entity{line},
	}))

	assert.Contains(t, columnRunes(screen, 40, 24), "-")
	assert.NotContains(t, columnRunes(screen, 0, 24), "-", "the segment does not reach the screen edge")
}

func TestTerminalRendererDepth(t *testing.T) {
	screen := newSimulationScreen(t, 80, 24)
	r := NewTerminalRenderer(screen)

	quad := geom.Entity{
		Name:    "quad",
		Visuals: geom.Visuals{DrawCmd: geom.DrawMesh, Show: true, Color: [4]float32{1, 1, 1, 1}},
		Positions: []mgl32.Vec3{
			{-30, -30, 30}, {30, -30, 30}, {30, 30, 30},
			{-30, -30, 30}, {30, 30, 30}, {-30, 30, 30},
		},
	}
	quad.Bounds = geom.BoundsFromPoints(quad.Positions)

	below := geom.Entity{
		Name:      "below",
		Visuals:   geom.Visuals{DrawCmd: geom.DrawLines, Show: true, Color: [4]float32{1, 0, 0, 1}},
		Positions: []mgl32.Vec3{{-10, 0, 0}, {10, 0, 0}},
	}
	below.Bounds = geom.BoundsFromPoints(below.Positions)

	opts := RenderOptions{
		Camera:       topDownCamera(80*8, 24*16),
		DrawCommands: DefaultDrawCommands(),
		Entities:     []geom.Entity{below, quad},
	}
	require.NoError(t, r.Render(opts))

	center := columnRunes(screen, 40, 24)
	assert.NotContains(t, center, "-", "the quad hides the line beneath it")
	assert.Contains(t, center, "@", "a fully lit white face uses the densest glyph")

	axis := geom.AxisEntity()
	axis.Axis.AlwaysVisible = true
	axis.Axis.Length = 20
	opts.Entities = append(opts.Entities, axis)
	require.NoError(t, r.Render(opts))

	row := func(y int) string {
		var sb strings.Builder
		for x := range 80 {
			c, _, _, _ := screen.GetContent(x, y)
			sb.WriteRune(c)
		}
		return sb.String()
	}
	found := false
	for y := 10; y <= 13; y++ {
		if strings.Contains(row(y), "-") {
			found = true
		}
	}
	assert.True(t, found, "always-visible axis draws over the quad")
}

func TestTerminalRendererReleased(t *testing.T) {
	screen := newSimulationScreen(t, 10, 5)
	r := NewTerminalRenderer(screen, WithTerminalBackground([4]float32{1, 1, 1, 1}), WithTerminalCulling(false))
	r.Release()
	assert.Error(t, r.Render(RenderOptions{Camera: camera.NewCamera()}))
}

func TestSlopeGlyph(t *testing.T) {
	assert.Equal(t, '-', slopeGlyph(10, 1))
	assert.Equal(t, '|', slopeGlyph(1, 10))
	assert.Equal(t, '\\', slopeGlyph(5, 5))
	assert.Equal(t, '/', slopeGlyph(5, -5))
}
