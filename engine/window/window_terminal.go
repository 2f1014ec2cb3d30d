package window

import (
	"fmt"
	"sync"
	"time"
	"unicode"

	"github.com/Carmen-Shannon/jscad-view/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gdamore/tcell/v2"
)

// A terminal cell counts as this many logical pixels, so gestures and layout behave the same
// as in a desktop window. Cells are about twice as tall as they are wide.
const (
	CellWidth  = 8
	CellHeight = 16
)

// terminalWindow hosts the viewport in a tcell screen.
type terminalWindow struct {
	parent *engineWindow
	tty    tcell.Screen

	events   chan tcell.Event
	done     chan struct{}
	doneOnce *sync.Once
	ticker   *time.Ticker

	running bool
	pressed int
}

var _ platformWindow = &terminalWindow{}

// newTerminalWindow takes over a tcell screen. A nil screen opens the controlling terminal.
func newTerminalWindow(w *engineWindow, screen tcell.Screen) (*terminalWindow, error) {
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("failed to open terminal: %w", err)
		}
		if err := s.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize terminal: %w", err)
		}
		screen = s
	}
	screen.EnableMouse()

	tw := &terminalWindow{
		parent:   w,
		tty:      screen,
		events:   make(chan tcell.Event, 100),
		done:     make(chan struct{}),
		doneOnce: &sync.Once{},
		ticker:   time.NewTicker(w.frameInterval),
		running:  true,
		pressed:  -1,
	}

	cols, rows := screen.Size()
	w.width, w.height = cols*CellWidth, rows*CellHeight

	go tw.pollEvents()
	return tw, nil
}

// pollEvents forwards screen events until the screen is finalized.
func (tw *terminalWindow) pollEvents() {
	for {
		ev := tw.tty.PollEvent()
		if ev == nil {
			return
		}
		select {
		case tw.events <- ev:
		case <-tw.done:
			return
		}
	}
}

func (tw *terminalWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return nil
}

func (tw *terminalWindow) screen() tcell.Screen {
	return tw.tty
}

func (tw *terminalWindow) isRunning() bool {
	return tw.running
}

func (tw *terminalWindow) close() error {
	tw.running = false
	tw.doneOnce.Do(func() {
		close(tw.done)
		tw.ticker.Stop()
		tw.tty.Fini()
	})
	return nil
}

// processMessages waits for the next input event or frame tick, then handles every queued event.
func (tw *terminalWindow) processMessages() bool {
	select {
	case ev := <-tw.events:
		tw.handle(ev)
	case <-tw.ticker.C:
	case <-tw.done:
		return false
	}
	for {
		select {
		case ev := <-tw.events:
			tw.handle(ev)
		default:
			return tw.running
		}
	}
}

func (tw *terminalWindow) pixelRatio() float32 {
	return 1
}

// setContentHeight is ignored; a terminal cannot be resized from inside.
func (tw *terminalWindow) setContentHeight(int) {}

func (tw *terminalWindow) handle(ev tcell.Event) {
	w := tw.parent
	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, rows := ev.Size()
		tw.tty.Sync()
		w.resized(cols*CellWidth, rows*CellHeight)

	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			tw.running = false
			return
		}
		if ev.Key() != tcell.KeyRune {
			return
		}
		// terminals report presses only, so every key is released right away
		r := unicode.ToUpper(ev.Rune())
		if r < 'A' || r > 'Z' {
			return
		}
		w.keyDown(uint32(r))
		w.keyUp(uint32(r))

	case *tcell.EventMouse:
		col, row := ev.Position()
		x := float32(col*CellWidth + CellWidth/2)
		y := float32(row*CellHeight + CellHeight/2)
		buttons := ev.Buttons()
		modifier := ev.Modifiers()&tcell.ModShift != 0

		if buttons&tcell.WheelUp != 0 {
			w.scrolled(-1)
		}
		if buttons&tcell.WheelDown != 0 {
			w.scrolled(1)
		}

		id := mouseID(buttons)
		switch {
		case tw.pressed < 0 && id >= 0:
			tw.pressed = id
			w.pointerDown(id, x, y, modifier || id != common.PrimaryPointer)
		case tw.pressed >= 0 && id < 0:
			released := tw.pressed
			tw.pressed = -1
			w.pointerUp(released, x, y)
		case tw.pressed >= 0:
			w.pointerMoved(tw.pressed, x, y, modifier || tw.pressed != common.PrimaryPointer)
		}
	}
}

// mouseID maps the held tcell buttons to a pointer id, -1 when no drag button is held.
func mouseID(buttons tcell.ButtonMask) int {
	switch {
	case buttons&tcell.Button1 != 0:
		return common.PrimaryPointer
	case buttons&tcell.Button3 != 0:
		return common.PrimaryPointer + 1
	case buttons&tcell.Button2 != 0:
		return common.PrimaryPointer + 2
	}
	return -1
}
