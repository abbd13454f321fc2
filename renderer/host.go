// Package renderer drives the orb frame by frame on top of a host surface and
// a drawing backend.
package renderer

import (
	"errors"

	"github.com/pthm-cable/nebula/particles"
	"github.com/pthm-cable/nebula/pipeline"
)

// ErrContextUnavailable is returned when the host cannot provide a render
// context. Nothing has been allocated when it is returned.
var ErrContextUnavailable = errors.New("render context unavailable")

// Surface is the drawable area the host provides.
type Surface interface {
	// Open acquires the render context and returns a backend bound to it.
	Open() (Backend, error)
	// Size returns the logical size and the device pixel ratio.
	Size() (w, h int, pixelRatio float32)
}

// Scheduler calls fn once per displayed frame until cancel is called.
type Scheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// ResizeNotifier reports surface size changes until detach is called.
type ResizeNotifier interface {
	OnResize(fn func(w, h int, pixelRatio float32)) (detach func())
}

// Host bundles what the render loop needs from its environment.
type Host interface {
	Surface
	Scheduler
	ResizeNotifier
}

// Backend draws evaluated frames. Release must be safe to call twice.
type Backend interface {
	Upload(buf *particles.Buffer) error
	Resize(w, h int, pixelRatio float32)
	Draw(f *pipeline.Frame) error
	Release() error
}
