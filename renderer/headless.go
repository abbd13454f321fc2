package renderer

import (
	"errors"
	"image"
	"image/color"

	"github.com/pthm-cable/nebula/particles"
	"github.com/pthm-cable/nebula/pipeline"
)

// HeadlessBackend keeps the last frame in memory instead of drawing it.
type HeadlessBackend struct {
	record func(event string)

	uploaded    int // particle count of the last upload
	uploads     int
	draws       int
	released    bool
	lastVisible int
	last        *pipeline.Frame

	width, height int
	pixelRatio    float32
}

// NewHeadlessBackend creates a backend. record, if not nil, is told about
// uploads and releases.
func NewHeadlessBackend(record func(event string)) *HeadlessBackend {
	if record == nil {
		record = func(string) {}
	}
	return &HeadlessBackend{record: record}
}

func (b *HeadlessBackend) Upload(buf *particles.Buffer) error {
	if b.released {
		return errors.New("headless backend: upload after release")
	}
	b.uploaded = buf.Count()
	b.uploads++
	b.record("upload")
	return nil
}

func (b *HeadlessBackend) Resize(w, h int, pixelRatio float32) {
	b.width, b.height, b.pixelRatio = w, h, pixelRatio
}

func (b *HeadlessBackend) Draw(f *pipeline.Frame) error {
	if b.released {
		return errors.New("headless backend: draw after release")
	}
	b.draws++
	b.last = f
	b.lastVisible = f.VisibleCount()
	return nil
}

func (b *HeadlessBackend) Release() error {
	if b.released {
		return nil
	}
	b.released = true
	b.last = nil
	b.record("release")
	return nil
}

// Uploads returns how many times particle data was uploaded.
func (b *HeadlessBackend) Uploads() int { return b.uploads }

// Draws returns how many frames were drawn.
func (b *HeadlessBackend) Draws() int { return b.draws }

// Released reports whether Release has run.
func (b *HeadlessBackend) Released() bool { return b.released }

// LastVisible returns the visible particle count of the last frame.
func (b *HeadlessBackend) LastVisible() int { return b.lastVisible }

// Viewport returns the size given to the last Resize.
func (b *HeadlessBackend) Viewport() (w, h int, pixelRatio float32) {
	return b.width, b.height, b.pixelRatio
}

// Splat rasterizes the last frame into an image by accumulating each visible
// particle as a single additive pixel. It is a preview, not the glyph look.
func (b *HeadlessBackend) Splat() *image.RGBA {
	f := b.last
	if f == nil {
		return nil
	}
	w, h := int(f.ViewportW), int(f.ViewportH)
	acc := make([][3]float32, w*h)
	for i := 0; i < f.Len(); i++ {
		if !f.Visible[i] {
			continue
		}
		x, y := int(f.X[i]), int(f.Y[i])
		if x < 0 || y < 0 || x >= w || y >= h {
			continue
		}
		px := &acc[y*w+x]
		px[0] += f.R[i] * f.A[i]
		px[1] += f.G[i] * f.A[i]
		px[2] += f.B[i] * f.A[i]
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := acc[y*w+x]
			img.SetRGBA(x, y, color.RGBA{R: channel(px[0]), G: channel(px[1]), B: channel(px[2]), A: 255})
		}
	}
	return img
}

func channel(v float32) uint8 {
	return uint8(min(v, 1) * 255)
}

// ManualHost is a Host whose frames and resizes are driven by the caller.
type ManualHost struct {
	w, h       int
	pixelRatio float32

	// OpenErr, if set, makes Open fail.
	OpenErr error

	backend *HeadlessBackend
	frameFn func()
	resize  func(w, h int, pixelRatio float32)
	events  []string
}

// NewManualHost creates a host with the given logical size.
func NewManualHost(w, h int, pixelRatio float32) *ManualHost {
	return &ManualHost{w: w, h: h, pixelRatio: pixelRatio}
}

func (m *ManualHost) Open() (Backend, error) {
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	m.backend = NewHeadlessBackend(m.log)
	m.log("open")
	return m.backend, nil
}

func (m *ManualHost) Size() (int, int, float32) { return m.w, m.h, m.pixelRatio }

func (m *ManualHost) RequestFrame(fn func()) func() {
	m.frameFn = fn
	m.log("request_frame")
	return func() {
		if m.frameFn != nil {
			m.frameFn = nil
			m.log("cancel_frame")
		}
	}
}

func (m *ManualHost) OnResize(fn func(w, h int, pixelRatio float32)) func() {
	m.resize = fn
	m.log("observe_resize")
	return func() {
		if m.resize != nil {
			m.resize = nil
			m.log("detach_resize")
		}
	}
}

// Step runs n frame callbacks. It returns how many actually ran.
func (m *ManualHost) Step(n int) int {
	ran := 0
	for ; ran < n && m.frameFn != nil; ran++ {
		m.frameFn()
	}
	return ran
}

// Resize changes the surface size and notifies the observer.
func (m *ManualHost) Resize(w, h int, pixelRatio float32) {
	m.w, m.h, m.pixelRatio = w, h, pixelRatio
	if m.resize != nil {
		m.resize(w, h, pixelRatio)
	}
}

// Backend returns the backend handed out by Open, if any.
func (m *ManualHost) Backend() *HeadlessBackend { return m.backend }

// Scheduled reports whether a frame callback is registered.
func (m *ManualHost) Scheduled() bool { return m.frameFn != nil }

// Observed reports whether a resize observer is registered.
func (m *ManualHost) Observed() bool { return m.resize != nil }

// Events returns the lifecycle events seen so far, in order.
func (m *ManualHost) Events() []string { return m.events }

func (m *ManualHost) log(event string) {
	m.events = append(m.events, event)
}
