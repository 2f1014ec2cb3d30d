package renderer

import (
	"errors"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// shadeRamp orders glyphs from sparse to dense; mesh cells pick one by brightness.
const shadeRamp = ".:-=+*#%@"

// Clip-space w below which a vertex counts as behind the camera.
const nearW = 1e-4

// lineDepthBias pulls lines slightly towards the viewer so edges on a face stay visible.
const lineDepthBias = 1e-3

type terminalRendererImpl struct {
	mu     *sync.Mutex
	screen tcell.Screen

	background [4]float32
	cull       bool

	depth []float32
}

var _ Renderer = &terminalRendererImpl{}

// NewTerminalRenderer creates a renderer that rasterizes frames into the cells of a terminal
// screen. Lines become slope glyphs and triangles are filled with a brightness ramp.
//
// Parameters:
//   - screen: an initialized tcell screen
//   - options: functional options such as WithTerminalBackground
//
// Returns:
//   - Renderer: the renderer
func NewTerminalRenderer(screen tcell.Screen, options ...TerminalRendererOption) Renderer {
	r := &terminalRendererImpl{
		mu:         &sync.Mutex{},
		screen:     screen,
		background: [4]float32{0, 0, 0, 1},
		cull:       true,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *terminalRendererImpl) Render(opts RenderOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.screen == nil {
		return errors.New("renderer released")
	}

	cols, rows := r.screen.Size()
	if cols <= 0 || rows <= 0 {
		return nil
	}
	if len(r.depth) != cols*rows {
		r.depth = make([]float32, cols*rows)
	}
	for i := range r.depth {
		r.depth[i] = math.MaxFloat32
	}

	r.screen.Clear()
	sink := &cellSink{
		r:        r,
		viewProj: opts.Camera.ViewProjection(),
		cols:     cols,
		rows:     rows,
	}
	_, err := Emit(opts, sink, r.cull)
	for _, o := range sink.overlay {
		sink.line(o.a, o.b, o.color, false)
	}
	r.screen.Show()
	return err
}

// Resize is a no-op: the cell grid is read from the screen on every frame.
func (r *terminalRendererImpl) Resize(int, int) {}

func (r *terminalRendererImpl) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.screen = nil
	r.depth = nil
}

// style blends an RGBA colour over the background into a terminal foreground style.
func (r *terminalRendererImpl) style(color [4]float32) tcell.Style {
	a := color[3]
	ch := func(i int) int32 {
		v := color[i]*a + r.background[i]*(1-a)
		return int32(math.Round(float64(mgl32.Clamp(v, 0, 1) * 255)))
	}
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(ch(0), ch(1), ch(2)))
}

type overlayLine struct {
	a, b  mgl32.Vec3
	color [4]float32
}

// cellSink projects primitives through the camera and writes them into screen cells.
type cellSink struct {
	r          *terminalRendererImpl
	viewProj   mgl32.Mat4
	cols, rows int
	overlay    []overlayLine
}

var _ OverlaySink = &cellSink{}

// cellPoint is a projected vertex: fractional column and row plus NDC depth.
type cellPoint struct {
	x, y, z float32
}

func (s *cellSink) toCell(c mgl32.Vec4) cellPoint {
	ndc := c.Vec3().Mul(1 / c[3])
	return cellPoint{
		x: (ndc[0] + 1) / 2 * float32(s.cols),
		y: (1 - ndc[1]) / 2 * float32(s.rows),
		z: ndc[2],
	}
}

func (s *cellSink) clip(p mgl32.Vec3) mgl32.Vec4 {
	return s.viewProj.Mul4x1(p.Vec4(1))
}

func (s *cellSink) Line(a, b mgl32.Vec3, color [4]float32) {
	s.line(a, b, color, true)
}

func (s *cellSink) OverlayLine(a, b mgl32.Vec3, color [4]float32) {
	s.overlay = append(s.overlay, overlayLine{a: a, b: b, color: color})
}

func (s *cellSink) line(a, b mgl32.Vec3, color [4]float32, depthTest bool) {
	if color[3] <= 0 {
		return
	}
	ca, cb := s.clip(a), s.clip(b)
	if ca[3] < nearW && cb[3] < nearW {
		return
	}
	// cut the segment at the near w plane
	if ca[3] < nearW || cb[3] < nearW {
		t := (nearW - ca[3]) / (cb[3] - ca[3])
		cut := ca.Add(cb.Sub(ca).Mul(t))
		if ca[3] < nearW {
			ca = cut
		} else {
			cb = cut
		}
	}

	pa, pb := s.toCell(ca), s.toCell(cb)
	dx, dy := pb.x-pa.x, pb.y-pa.y
	glyph := slopeGlyph(dx, dy)
	style := s.r.style(color)

	steps := int(math.Ceil(float64(max(abs32(dx), abs32(dy)))))
	if steps == 0 {
		s.plot(int(pa.x), int(pa.y), pa.z-lineDepthBias, glyph, style, depthTest)
		return
	}
	// very long segments are mostly off screen; bound the walk by the visible area
	if limit := 4 * (s.cols + s.rows); steps > limit {
		steps = limit
	}
	for i := 0; i <= steps; i++ {
		t := float32(i) / float32(steps)
		x := pa.x + dx*t
		y := pa.y + dy*t
		z := pa.z + (pb.z-pa.z)*t
		s.plot(int(math.Floor(float64(x))), int(math.Floor(float64(y))), z-lineDepthBias, glyph, style, depthTest)
	}
}

func (s *cellSink) Triangle(a, b, c mgl32.Vec3, color [4]float32) {
	if color[3] <= 0 {
		return
	}
	ca, cb, cc := s.clip(a), s.clip(b), s.clip(c)
	if ca[3] < nearW || cb[3] < nearW || cc[3] < nearW {
		return
	}
	p0, p1, p2 := s.toCell(ca), s.toCell(cb), s.toCell(cc)

	area := edge(p0, p1, p2.x, p2.y)
	if area == 0 {
		return
	}

	minX := max(0, int(math.Floor(float64(min(p0.x, p1.x, p2.x)))))
	maxX := min(s.cols-1, int(math.Ceil(float64(max(p0.x, p1.x, p2.x)))))
	minY := max(0, int(math.Floor(float64(min(p0.y, p1.y, p2.y)))))
	maxY := min(s.rows-1, int(math.Ceil(float64(max(p0.y, p1.y, p2.y)))))

	glyph := rampGlyph(color)
	style := s.r.style(color)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			cx, cy := float32(x)+0.5, float32(y)+0.5
			w0 := edge(p1, p2, cx, cy) / area
			w1 := edge(p2, p0, cx, cy) / area
			w2 := edge(p0, p1, cx, cy) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			s.plot(x, y, w0*p0.z+w1*p1.z+w2*p2.z, glyph, style, true)
		}
	}
}

func (s *cellSink) plot(x, y int, z float32, glyph rune, style tcell.Style, depthTest bool) {
	if x < 0 || y < 0 || x >= s.cols || y >= s.rows {
		return
	}
	if depthTest {
		if z < -1 || z > 1 {
			return
		}
		idx := y*s.cols + x
		if z >= s.r.depth[idx] {
			return
		}
		s.r.depth[idx] = z
	}
	s.r.screen.SetContent(x, y, glyph, nil, style)
}

// edge is twice the signed area of the triangle (a, b, p).
func edge(a, b cellPoint, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// slopeGlyph picks the character closest to a segment direction in cell space, rows growing downwards.
func slopeGlyph(dx, dy float32) rune {
	ax, ay := abs32(dx), abs32(dy)
	switch {
	case ay <= ax/2:
		return '-'
	case ax <= ay/2:
		return '|'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

func rampGlyph(color [4]float32) rune {
	lum := 0.299*color[0] + 0.587*color[1] + 0.114*color[2]
	idx := int(mgl32.Clamp(lum, 0, 1) * float32(len(shadeRamp)-1))
	return rune(shadeRamp[idx])
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
