package viewport

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/Carmen-Shannon/jscad-view/common"
	"github.com/Carmen-Shannon/jscad-view/engine/camera"
	"github.com/Carmen-Shannon/jscad-view/engine/frame"
	"github.com/Carmen-Shannon/jscad-view/engine/geom"
	"github.com/Carmen-Shannon/jscad-view/engine/input"
	"github.com/Carmen-Shannon/jscad-view/engine/renderer"
	"github.com/Carmen-Shannon/jscad-view/engine/store"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	renders  int
	last     renderer.RenderOptions
	size     [2]int
	released bool
	err      error
	panics   bool
}

func (f *fakeRenderer) Render(opts renderer.RenderOptions) error {
	if f.panics {
		panic("device lost")
	}
	f.renders++
	f.last = opts
	return f.err
}

func (f *fakeRenderer) Resize(width, height int) {
	f.size = [2]int{width, height}
}

func (f *fakeRenderer) Release() {
	f.released = true
}

type harness struct {
	vp    *viewportImpl
	queue *frame.Queue
	store store.Store
	rend  *fakeRenderer
	logs  *bytes.Buffer
}

func newHarness(t *testing.T, s store.Store, options ...ViewportBuilderOption) *harness {
	t.Helper()
	h := &harness{
		queue: frame.NewQueue(),
		store: s,
		rend:  &fakeRenderer{},
		logs:  &bytes.Buffer{},
	}
	if h.store == nil {
		h.store = store.NewMemory()
	}

	base := []ViewportBuilderOption{
		WithScheduler(h.queue),
		WithStore(h.store),
		WithLogger(slog.New(slog.NewTextHandler(h.logs, nil))),
		WithWorkers(2),
		WithRendererFactory(func() (renderer.Renderer, error) { return h.rend, nil }),
	}
	h.vp = NewViewport(append(base, options...)...).(*viewportImpl)
	return h
}

func (h *harness) frames(n int) {
	for range n {
		h.queue.RunFrame()
	}
}

// settle runs frames until the controller stops moving the camera.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	for range 500 {
		before := h.rend.renders
		h.frames(3)
		if h.rend.renders == before {
			return
		}
	}
	t.Fatal("camera never settled")
}

func cubePayload(opts Options) Payload {
	return Payload{
		Solids: []geom.Solid{{
			Polygons: []geom.Polygon{
				{Vertices: [][3]float32{{-10, -10, -10}, {10, -10, -10}, {10, 10, -10}, {-10, 10, -10}}},
				{Vertices: [][3]float32{{-10, -10, 10}, {10, -10, 10}, {10, 10, 10}, {-10, 10, 10}}},
			},
		}},
		Options: opts,
	}
}

func TestRenderModelEntityOrder(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.vp.RenderModel(cubePayload(DefaultOptions())))
	h.frames(1)

	require.Equal(t, 1, h.rend.renders)
	entities := h.rend.last.Entities
	require.Len(t, entities, 3)
	assert.Equal(t, geom.DrawGrid, entities[0].Visuals.DrawCmd)
	assert.Equal(t, geom.DrawAxis, entities[1].Visuals.DrawCmd)
	assert.Equal(t, geom.DrawMesh, entities[2].Visuals.DrawCmd)
	assert.Contains(t, h.rend.last.DrawCommands, geom.DrawLines)
}

func TestRenderModelWithoutHostUsesDefaultProjection(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.vp.RenderModel(cubePayload(DefaultOptions())))

	assert.Equal(t, [4]int{0, 0, 300, 300}, h.vp.Camera().Viewport)
	assert.True(t, h.vp.zoomToFit, "zoom to fit waits for the first layout")

	h.frames(5)
	assert.Equal(t, 1, h.rend.renders, "a camera at rest draws once")
}

func TestOnlyOneFrameIsEverPending(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, 0, h.queue.Pending())

	require.NoError(t, h.vp.RenderModel(cubePayload(DefaultOptions())))
	require.NoError(t, h.vp.RenderModel(cubePayload(DefaultOptions())))
	assert.Equal(t, 1, h.queue.Pending())

	h.vp.Frame()
	assert.Equal(t, 1, h.queue.Pending())

	h.frames(3)
	assert.Equal(t, 1, h.queue.Pending(), "the loop reschedules itself")
}

func TestUpdateLayout(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.vp.RenderModel(cubePayload(DefaultOptions())))
	h.frames(1)

	l, err := h.vp.UpdateLayout(common.RectOfSize(800, 400), 2)
	require.NoError(t, err)
	assert.Equal(t, camera.Layout{Width: 1600, Height: 800, ContainerHeight: 400}, l)
	assert.Equal(t, [4]int{0, 0, 1600, 800}, h.vp.Camera().Viewport)
	assert.Equal(t, [2]int{1600, 800}, h.rend.size)
	assert.False(t, h.vp.zoomToFit)
}

func TestZoomToFitRunsOnceAtSessionStart(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.vp.UpdateLayout(common.RectOfSize(800, 400), 1)
	require.NoError(t, err)
	require.NoError(t, h.vp.RenderModel(cubePayload(DefaultOptions())))

	assert.Equal(t, mgl32.Vec3{}, h.vp.Camera().Target, "target moves to the bounds centre")
	h.settle(t)
	fitted := h.vp.Camera().Position

	_, err = h.vp.UpdateLayout(common.RectOfSize(800, 400), 1)
	require.NoError(t, err)
	h.settle(t)
	assert.Equal(t, fitted, h.vp.Camera().Position, "later layouts keep the camera")
}

func TestDrawsOnlyWhileTheCameraMoves(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.vp.UpdateLayout(common.RectOfSize(800, 400), 1)
	require.NoError(t, err)
	require.NoError(t, h.vp.RenderModel(cubePayload(DefaultOptions())))
	h.settle(t)

	idle := h.rend.renders
	h.frames(10)
	assert.Equal(t, idle, h.rend.renders)

	g := h.vp.Gestures()
	g.PointerDown(&input.PointerEvent{PointerID: common.PrimaryPointer, X: 100, Y: 100})
	g.PointerMove(&input.PointerEvent{PointerID: common.PrimaryPointer, X: 160, Y: 120})
	g.PointerUp(&input.PointerEvent{PointerID: common.PrimaryPointer, X: 160, Y: 120})

	h.frames(2)
	assert.Equal(t, idle+2, h.rend.renders)
	h.settle(t)
	assert.Greater(t, h.rend.renders, idle+2, "elastic motion keeps drawing for a few frames")
}

func TestWheelZoomsOut(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.vp.UpdateLayout(common.RectOfSize(800, 400), 1)
	require.NoError(t, err)
	require.NoError(t, h.vp.RenderModel(cubePayload(DefaultOptions())))
	h.settle(t)

	before := h.vp.Camera().Distance()
	h.vp.Gestures().Wheel(&input.WheelEvent{DeltaY: 120})
	h.frames(1)
	assert.Greater(t, h.vp.Camera().Distance(), before)
}

func TestCameraIsSavedWhileMoving(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.vp.UpdateLayout(common.RectOfSize(800, 400), 1)
	require.NoError(t, err)
	require.NoError(t, h.vp.RenderModel(cubePayload(Options{MinHeight: 300, SaveCamera: true})))
	h.settle(t)

	_, ok := h.store.Get(camera.PositionKey)
	assert.False(t, ok, "the fit at session start is not a camera change")

	h.vp.Gestures().Wheel(&input.WheelEvent{DeltaY: -1})
	h.frames(1)
	_, ok = h.store.Get(camera.PositionKey)
	assert.True(t, ok)
}

func TestPersistenceRoundTrip(t *testing.T) {
	s := store.NewMemory()

	first := newHarness(t, s)
	_, err := first.vp.UpdateLayout(common.RectOfSize(800, 400), 1)
	require.NoError(t, err)
	require.NoError(t, first.vp.RenderModel(cubePayload(Options{MinHeight: 300, SaveCamera: true})))
	first.vp.Gestures().PointerDown(&input.PointerEvent{X: 10, Y: 10})
	first.vp.Gestures().PointerMove(&input.PointerEvent{X: 90, Y: 35})
	first.settle(t)
	saved := first.vp.Camera()
	require.NoError(t, first.vp.Dispose())

	second := newHarness(t, s)
	_, err = second.vp.UpdateLayout(common.RectOfSize(800, 400), 1)
	require.NoError(t, err)
	require.NoError(t, second.vp.RenderModel(cubePayload(Options{MinHeight: 300, UseLastCamera: true})))

	truncate := func(v mgl32.Vec3) mgl32.Vec3 {
		return mgl32.Vec3{float32(int(v[0])), float32(int(v[1])), float32(int(v[2]))}
	}
	restored := second.vp.Camera()
	assert.Equal(t, truncate(saved.Position), restored.Position)
	assert.Equal(t, truncate(saved.Target), restored.Target)
	assert.False(t, second.vp.zoomToFit)
}

func TestRenderModelWithoutUseLastCameraClearsState(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.Set(camera.PositionKey, "1,2,3"))
	require.NoError(t, s.Set(camera.TargetKey, "0,0,0"))

	h := newHarness(t, s)
	require.NoError(t, h.vp.RenderModel(cubePayload(DefaultOptions())))

	_, ok := s.Get(camera.PositionKey)
	assert.False(t, ok)
	_, ok = s.Get(camera.TargetKey)
	assert.False(t, ok)
}

func TestMalformedPersistedCameraFallsBack(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.Set(camera.PositionKey, "left,up,away"))

	h := newHarness(t, s)
	require.NoError(t, h.vp.RenderModel(cubePayload(Options{MinHeight: 300, UseLastCamera: true})))

	assert.Equal(t, camera.DefaultPosition, h.vp.Camera().Position)
	assert.True(t, h.vp.zoomToFit)
	assert.Contains(t, h.logs.String(), "ignoring persisted camera")
}

func TestDrawFailuresDoNotStopTheLoop(t *testing.T) {
	h := newHarness(t, nil)
	h.rend.err = errors.New("surface lost")
	require.NoError(t, h.vp.RenderModel(cubePayload(DefaultOptions())))

	h.frames(1)
	assert.Equal(t, 1, h.queue.Pending())
	assert.Contains(t, h.logs.String(), "draw call failed")

	h.rend.err = nil
	h.rend.panics = true
	h.vp.Gestures().Wheel(&input.WheelEvent{DeltaY: 1})
	assert.NotPanics(t, func() { h.frames(1) })
	assert.Equal(t, 1, h.queue.Pending())
	assert.Contains(t, h.logs.String(), "draw call panicked")
}

func TestRendererFactoryFailureBacksOff(t *testing.T) {
	calls := 0
	h := newHarness(t, nil, WithRendererFactory(func() (renderer.Renderer, error) {
		calls++
		return nil, errors.New("no adapter")
	}))
	require.NoError(t, h.vp.RenderModel(cubePayload(DefaultOptions())))

	h.frames(5)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, h.queue.Pending())

	_, err := h.vp.UpdateLayout(common.RectOfSize(200, 200), 1)
	require.NoError(t, err)
	h.frames(1)
	assert.Equal(t, 2, calls)
}

func TestInputWithoutRendererDoesNotJumpLater(t *testing.T) {
	rend := &fakeRenderer{}
	available := false
	h := newHarness(t, nil, WithRendererFactory(func() (renderer.Renderer, error) {
		if !available {
			return nil, errors.New("no adapter")
		}
		return rend, nil
	}))
	_, err := h.vp.UpdateLayout(common.RectOfSize(800, 400), 1)
	require.NoError(t, err)
	require.NoError(t, h.vp.RenderModel(cubePayload(DefaultOptions())))
	h.frames(300)

	start := h.vp.Camera().Distance()
	for range 5 {
		h.vp.Gestures().Wheel(&input.WheelEvent{DeltaY: 120})
		h.frames(1)
	}
	h.frames(300)
	settled := h.vp.Camera()
	assert.Greater(t, settled.Distance(), start, "input is applied while nothing can draw")

	available = true
	_, err = h.vp.UpdateLayout(common.RectOfSize(800, 400), 1)
	require.NoError(t, err)
	h.frames(1)

	assert.Equal(t, 1, rend.renders, "the first renderer draws the pending view")
	assert.InDelta(t, settled.Distance(), h.vp.Camera().Distance(), 1e-3)
	assert.InDelta(t, 0, h.vp.Camera().Position.Sub(settled.Position).Len(), 1e-3)
}

func TestFitToGeometries(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.vp.UpdateLayout(common.RectOfSize(800, 400), 2)
	require.NoError(t, err)
	require.NoError(t, h.vp.RenderModel(cubePayload(DefaultOptions())))
	h.settle(t)

	l, err := h.vp.FitToGeometries()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, l.ContainerHeight, 300)
	assert.Equal(t, 1600, l.Width)
	assert.Equal(t, l.ContainerHeight*2, l.Height)
	assert.Equal(t, mgl32.Vec3{}, h.vp.Camera().Target)
	assert.Equal(t, [2]int{l.Width, l.Height}, h.rend.size)

	before := h.rend.renders
	h.frames(1)
	assert.Equal(t, before+1, h.rend.renders)
}

func TestDispose(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.vp.RenderModel(cubePayload(Options{MinHeight: 300, SaveCamera: true})))
	h.frames(1)

	require.NoError(t, h.vp.Dispose())
	assert.Equal(t, 0, h.queue.Pending())
	assert.True(t, h.rend.released)
	_, ok := h.store.Get(camera.PositionKey)
	assert.True(t, ok, "dispose persists the camera")

	assert.ErrorIs(t, h.vp.Dispose(), ErrDisposed)
	assert.ErrorIs(t, h.vp.RenderModel(cubePayload(DefaultOptions())), ErrDisposed)
	_, err := h.vp.UpdateLayout(common.RectOfSize(1, 1), 1)
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = h.vp.FitToGeometries()
	assert.ErrorIs(t, err, ErrDisposed)

	renders := h.rend.renders
	h.vp.Frame()
	assert.Equal(t, renders, h.rend.renders)
	assert.Equal(t, 0, h.queue.Pending())
}
