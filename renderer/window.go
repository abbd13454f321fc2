package renderer

import (
	"errors"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nebula/config"
)

// Window is a raylib window acting as Host. Open creates the window; Run
// drives frames until the user closes it.
type Window struct {
	screen config.ScreenConfig
	glyph  config.GlyphConfig
	title  string
	hidden bool

	frameFn func()
	resize  func(w, h int, pixelRatio float32)
	overlay func()

	lastW, lastH int
	lastRatio    float32
	open         bool
}

// NewWindow describes a window. Nothing is created until Open.
func NewWindow(screen config.ScreenConfig, glyph config.GlyphConfig, title string) *Window {
	return &Window{screen: screen, glyph: glyph, title: title}
}

// Hidden makes Open create an invisible window for offscreen rendering.
func (w *Window) Hidden() *Window {
	w.hidden = true
	return w
}

func (w *Window) Open() (Backend, error) {
	if w.open {
		return nil, errors.New("window already open")
	}

	var flags uint32 = rl.FlagWindowResizable | rl.FlagMsaa4xHint
	if w.screen.HighDPI {
		flags |= rl.FlagWindowHighdpi
	}
	if w.hidden {
		flags |= rl.FlagWindowHidden
	}
	rl.SetConfigFlags(flags)
	rl.InitWindow(int32(w.screen.Width), int32(w.screen.Height), w.title)
	if !rl.IsWindowReady() {
		return nil, errors.New("raylib window failed to initialize")
	}
	if w.screen.TargetFPS > 0 {
		rl.SetTargetFPS(int32(w.screen.TargetFPS))
	}

	w.open = true
	w.lastW, w.lastH, w.lastRatio = w.Size()
	return NewRaylibBackend(w.glyph), nil
}

func (w *Window) Size() (int, int, float32) {
	if !w.open {
		return w.screen.Width, w.screen.Height, 1
	}
	ratio := rl.GetWindowScaleDPI().X
	if ratio <= 0 {
		ratio = 1
	}
	return int(rl.GetScreenWidth()), int(rl.GetScreenHeight()), ratio
}

func (w *Window) RequestFrame(fn func()) func() {
	w.frameFn = fn
	return func() { w.frameFn = nil }
}

func (w *Window) OnResize(fn func(w, h int, pixelRatio float32)) func() {
	w.resize = fn
	return func() { w.resize = nil }
}

// SetOverlay registers a function drawn after the orb each frame, e.g. a
// control panel.
func (w *Window) SetOverlay(fn func()) {
	w.overlay = fn
}

// Step renders one frame. It returns false once the user asked to close.
func (w *Window) Step() bool {
	if !w.open || rl.WindowShouldClose() {
		return false
	}

	if cw, ch, ratio := w.Size(); cw != w.lastW || ch != w.lastH || ratio != w.lastRatio {
		w.lastW, w.lastH, w.lastRatio = cw, ch, ratio
		if w.resize != nil {
			w.resize(cw, ch, ratio)
		}
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	if w.frameFn != nil {
		w.frameFn()
	}
	if w.overlay != nil {
		w.overlay()
	}
	rl.EndDrawing()
	return true
}

// Close destroys the window. Close the render loop first.
func (w *Window) Close() {
	if w.open {
		rl.CloseWindow()
		w.open = false
	}
}
