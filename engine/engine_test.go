package engine

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/jscad-view/common"
	"github.com/Carmen-Shannon/jscad-view/engine/camera"
	"github.com/Carmen-Shannon/jscad-view/engine/renderer"
	"github.com/Carmen-Shannon/jscad-view/engine/store"
	"github.com/Carmen-Shannon/jscad-view/engine/viewport"
	"github.com/Carmen-Shannon/jscad-view/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cubeJSON = `{"geom": [{"polygons": [
	{"vertices": [[-10,-10,-10],[10,-10,-10],[10,10,-10],[-10,10,-10]]},
	{"vertices": [[-10,-10,10],[10,-10,10],[10,10,10],[-10,10,10]]}
]}]}`

const twoPathsJSON = `{"geom": [
	{"points": [[0,0],[5,0]]},
	{"points": [[0,0],[0,5]]}
], "saveCamera": true}`

// fakeWindow is a host with a fixed 800x400 client area whose callbacks tests fire directly.
type fakeWindow struct {
	mu      sync.Mutex
	running bool
	screen  tcell.Screen

	contentHeights []int
	captured       map[int]bool

	onUpdate      func()
	onResize      func(width, height int)
	onScroll      func(deltaY float32)
	onKeyDown     func(keyCode uint32)
	onPointerDown func(id int, x, y float32, modifier bool)
	onPointerUp   func(id int, x, y float32)
	onPointerMove func(id int, x, y float32, modifier bool)
}

var _ window.Window = &fakeWindow{}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{running: true, captured: make(map[int]bool)}
}

func (w *fakeWindow) SetUpdateCallback(cb func()) {
	w.onUpdate = cb
}

func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) {
	w.onResize = cb
}

func (w *fakeWindow) SetScrollCallback(cb func(deltaY float32)) {
	w.onScroll = cb
}

func (w *fakeWindow) SetKeyDownCallback(cb func(keyCode uint32)) {
	w.onKeyDown = cb
}

func (w *fakeWindow) SetKeyUpCallback(func(keyCode uint32)) {}

func (w *fakeWindow) SetPointerDownCallback(cb func(id int, x, y float32, modifier bool)) {
	w.onPointerDown = cb
}

func (w *fakeWindow) SetPointerUpCallback(cb func(id int, x, y float32)) {
	w.onPointerUp = cb
}

func (w *fakeWindow) SetPointerMoveCallback(cb func(id int, x, y float32, modifier bool)) {
	w.onPointerMove = cb
}

func (w *fakeWindow) SetPointerCapture(id int) {
	w.captured[id] = true
}

func (w *fakeWindow) ReleasePointerCapture(id int) {
	delete(w.captured, id)
}

func (w *fakeWindow) SetContentHeight(height int) {
	w.contentHeights = append(w.contentHeights, height)
}

func (w *fakeWindow) Bounds() common.Rect {
	return common.RectOfSize(800, 400)
}

func (w *fakeWindow) PixelRatio() float32 {
	return 1
}

func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return nil
}

func (w *fakeWindow) Screen() tcell.Screen {
	return w.screen
}

func (w *fakeWindow) Width() int {
	return 800
}

func (w *fakeWindow) Height() int {
	return 400
}

func (w *fakeWindow) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *fakeWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
	return nil
}

func (w *fakeWindow) ProcessMessages() {
	for w.IsRunning() {
		if w.onUpdate != nil {
			w.onUpdate()
		}
		time.Sleep(time.Millisecond)
	}
}

// countingRenderer records draws; it is safe to read while the loop runs.
type countingRenderer struct {
	mu       sync.Mutex
	renders  int
	entities int
}

func (r *countingRenderer) Render(opts renderer.RenderOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders++
	r.entities = len(opts.Entities)
	return nil
}

func (r *countingRenderer) Resize(int, int) {}

func (r *countingRenderer) Release() {}

func (r *countingRenderer) snapshot() (renders, entities int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders, r.entities
}

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (*engine, *fakeWindow, *countingRenderer) {
	t.Helper()
	fw := newFakeWindow()
	cr := &countingRenderer{}

	base := []EngineBuilderOption{
		WithWindow(fw),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		WithViewportOptions(viewport.WithRendererFactory(func() (renderer.Renderer, error) { return cr, nil })),
	}
	eng, err := NewEngine(append(base, options...)...)
	require.NoError(t, err)
	return eng.(*engine), fw, cr
}

func mustPayload(t *testing.T, data string) viewport.Payload {
	t.Helper()
	p, err := viewport.ParsePayload([]byte(data))
	require.NoError(t, err)
	return p
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestTickStartsSubmittedSession(t *testing.T) {
	e, _, cr := newTestEngine(t)

	e.Submit(mustPayload(t, twoPathsJSON))
	e.Submit(mustPayload(t, cubeJSON))
	e.tick()

	assert.Equal(t, camera.Layout{Width: 800, Height: 400, ContainerHeight: 400}, e.viewport.Layout())

	renders, entities := cr.snapshot()
	assert.Equal(t, 1, renders)
	assert.Equal(t, 3, entities, "only the latest submitted payload is shown")
}

func TestWindowInputReachesViewport(t *testing.T) {
	e, fw, cr := newTestEngine(t)
	e.Submit(mustPayload(t, cubeJSON))
	for range 50 {
		e.tick()
	}
	before := e.viewport.Camera().Position
	idle, _ := cr.snapshot()

	fw.onPointerDown(common.PrimaryPointer, 100, 100, false)
	assert.True(t, fw.captured[common.PrimaryPointer])
	fw.onPointerMove(common.PrimaryPointer, 140, 100, false)
	fw.onPointerUp(common.PrimaryPointer, 140, 100)
	assert.False(t, fw.captured[common.PrimaryPointer])
	fw.onScroll(1)
	e.tick()

	renders, _ := cr.snapshot()
	assert.Equal(t, idle+1, renders)
	assert.NotEqual(t, before, e.viewport.Camera().Position)
}

func TestKeyFFitsToGeometries(t *testing.T) {
	e, fw, _ := newTestEngine(t)
	e.Submit(mustPayload(t, cubeJSON))
	e.tick()

	fw.onKeyDown(common.KeyF)
	require.NotEmpty(t, fw.contentHeights)
	last := fw.contentHeights[len(fw.contentHeights)-1]
	assert.GreaterOrEqual(t, last, camera.DefaultMinHeight)
	assert.Equal(t, mgl32.Vec3{}, e.viewport.Camera().Target)
}

func TestResizeUpdatesLayout(t *testing.T) {
	e, fw, _ := newTestEngine(t)
	e.Submit(mustPayload(t, `{"geom": [], "height": 250}`))
	e.tick()

	assert.Equal(t, 250, e.viewport.Layout().Height)
	fw.contentHeights = nil
	fw.onResize(800, 400)
	assert.Equal(t, []int{250}, fw.contentHeights, "a forced height is pushed to the host")
}

func TestLoadAndReloadKey(t *testing.T) {
	e, fw, cr := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "model.json")
	writeFile(t, path, cubeJSON)

	require.NoError(t, e.Load(path))
	e.tick()
	e.tick()
	_, entities := cr.snapshot()
	assert.Equal(t, 3, entities)

	writeFile(t, path, twoPathsJSON)
	fw.onKeyDown(common.KeyR)
	e.tick()
	e.tick()
	_, entities = cr.snapshot()
	assert.Equal(t, 4, entities)
}

func TestLoadRejectsBadPayload(t *testing.T) {
	e, _, _ := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "broken.json")
	writeFile(t, path, `{"geom": "nope"}`)

	assert.ErrorContains(t, e.Load(path), "decode payload")
	assert.Error(t, e.Load(filepath.Join(t.TempDir(), "missing.json")))
}

func TestWatcherReloadsPayload(t *testing.T) {
	e, _, _ := newTestEngine(t, WithWatch(true))
	path := filepath.Join(t.TempDir(), "model.json")
	writeFile(t, path, cubeJSON)

	require.NoError(t, e.Load(path))
	t.Cleanup(func() { _ = e.watcher.Close() })
	first := <-e.payloads
	assert.Len(t, first.Solids, 1)

	writeFile(t, path, twoPathsJSON)
	var reloaded viewport.Payload
	require.Eventually(t, func() bool {
		select {
		case reloaded = <-e.payloads:
			return len(reloaded.Solids) == 2
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, reloaded.Options.SaveCamera)
}

func TestRunStopsOnQuitAndPersists(t *testing.T) {
	s := store.NewMemory()
	e, fw, cr := newTestEngine(t, WithStore(s))
	e.Submit(mustPayload(t, twoPathsJSON))

	done := make(chan error, 1)
	go func() { done <- e.Run() }()

	require.Eventually(t, func() bool {
		renders, _ := cr.snapshot()
		return renders > 0
	}, 2*time.Second, time.Millisecond)

	e.Quit()
	e.Quit()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}

	assert.False(t, fw.IsRunning())
	_, ok := s.Get(camera.PositionKey)
	assert.True(t, ok, "the camera is saved when the viewport is disposed")
	assert.ErrorIs(t, e.viewport.Dispose(), viewport.ErrDisposed)
}

func TestNewRendererPicksBackend(t *testing.T) {
	e, fw, _ := newTestEngine(t)

	_, err := e.newRenderer()
	assert.ErrorContains(t, err, "neither a GPU surface nor a terminal screen")

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	fw.screen = screen

	r, err := e.newRenderer()
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestTerminalEndToEnd(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(60, 20)

	w, err := window.NewWindow(window.WithTerminal(screen), window.WithFrameInterval(time.Millisecond))
	require.NoError(t, err)

	eng, err := NewEngine(
		WithWindow(w),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
	)
	require.NoError(t, err)
	eng.Submit(mustPayload(t, cubeJSON))

	done := make(chan error, 1)
	go func() { done <- eng.Run() }()

	drawn := func() bool {
		cells, width, height := screen.GetContents()
		for i := range width * height {
			if len(cells[i].Runes) > 0 && cells[i].Runes[0] != ' ' {
				return true
			}
		}
		return false
	}
	require.Eventually(t, drawn, 2*time.Second, 5*time.Millisecond)

	eng.Quit()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
}
