package renderer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/nebula/animation"
	"github.com/pthm-cable/nebula/camera"
	"github.com/pthm-cable/nebula/config"
	"github.com/pthm-cable/nebula/particles"
	"github.com/pthm-cable/nebula/pipeline"
	"github.com/pthm-cable/nebula/telemetry"
)

// Options configures a Loop.
type Options struct {
	// OnReady is called once, after every resource has been allocated.
	OnReady func()
	// Perf, if set, receives per-frame phase timings.
	Perf *telemetry.PerfCollector
	// NoiseSeed selects the turbulence field.
	NoiseSeed int64
}

// Loop owns the GPU-side state of one orb and ticks it every frame.
type Loop struct {
	backend Backend
	ctrl    *animation.Controller
	pipe    *pipeline.Pipeline
	cam     *camera.Camera
	drift   camera.Drift
	frame   *pipeline.Frame
	perf    *telemetry.PerfCollector

	step   float32
	time   float32
	frames int64

	cancelFrame  func()
	detachResize func()
	closed       bool
}

// New acquires the render context from host, uploads buf, and starts the
// frame callback. On failure nothing is left allocated and OnReady is not
// called.
func New(host Host, ctrl *animation.Controller, buf *particles.Buffer, cfg *config.Config, opts Options) (*Loop, error) {
	backend, err := host.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContextUnavailable, err)
	}
	if backend == nil {
		return nil, ErrContextUnavailable
	}
	if err := backend.Upload(buf); err != nil {
		return nil, errors.Join(fmt.Errorf("uploading particles: %w", err), backend.Release())
	}

	w, h, ratio := host.Size()
	l := &Loop{
		backend: backend,
		ctrl:    ctrl,
		pipe:    pipeline.New(buf, cfg.Pipeline, cfg.Glyph, opts.NoiseSeed),
		cam:     camera.New(cfg.Camera, w, h, ratio),
		drift:   camera.NewDrift(cfg.Drift),
		frame:   pipeline.NewFrame(buf.Count()),
		perf:    opts.Perf,
		step:    cfg.Drift.FrameStep,
	}
	if l.step <= 0 {
		l.step = 1.0 / 60
	}
	backend.Resize(w, h, l.cam.PixelRatio)

	l.detachResize = host.OnResize(l.resize)
	l.cancelFrame = host.RequestFrame(l.Tick)

	slog.Info("orb ready", "particles", buf.Count(), "width", w, "height", h, "pixel_ratio", l.cam.PixelRatio)
	if opts.OnReady != nil {
		opts.OnReady()
	}
	return l, nil
}

// Tick advances time by one nominal frame and draws it.
func (l *Loop) Tick() {
	if l.closed {
		return
	}
	if l.perf != nil {
		l.perf.StartTick()
		l.perf.StartPhase(telemetry.PhaseAnimate)
	}

	l.time += l.step
	l.frames++
	l.ctrl.Advance(l.step)
	l.drift.Apply(l.cam, l.time)

	snap := l.ctrl.Snapshot()
	u := pipeline.Uniforms{
		Time:       l.time,
		AudioLevel: snap.AudioLevel,
		Morph:      snap.Morph,
		Pulse:      snap.Pulse,
		Colors:     snap.Colors,
	}
	u.SetCamera(l.cam)

	if l.perf != nil {
		l.perf.StartPhase(telemetry.PhaseDeform)
	}
	l.pipe.Run(u, l.frame)

	if l.perf != nil {
		l.perf.StartPhase(telemetry.PhaseDraw)
	}
	if err := l.backend.Draw(l.frame); err != nil {
		slog.Warn("orb draw failed", "frame", l.frames, "error", err)
	}

	if l.perf != nil {
		l.perf.SetVisible(l.frame.VisibleCount())
		l.perf.EndTick()
	}
}

func (l *Loop) resize(w, h int, pixelRatio float32) {
	if l.closed {
		return
	}
	l.cam.Resize(w, h, pixelRatio)
	l.backend.Resize(w, h, l.cam.PixelRatio)
	slog.Debug("orb resized", "width", w, "height", h, "pixel_ratio", l.cam.PixelRatio)
}

// Time returns the accumulated animation time in seconds.
func (l *Loop) Time() float32 { return l.time }

// Frames returns how many frames have been ticked.
func (l *Loop) Frames() int64 { return l.frames }

// Frame returns the most recently evaluated frame.
func (l *Loop) Frame() *pipeline.Frame { return l.frame }

// Camera returns the loop's camera.
func (l *Loop) Camera() *camera.Camera { return l.cam }

// Reconfigure applies tunable constants from a reloaded config.
func (l *Loop) Reconfigure(cfg *config.Config) {
	l.pipe.Reconfigure(cfg.Pipeline, cfg.Glyph)
	l.drift = camera.NewDrift(cfg.Drift)
}

// Close stops the frame callback, releases GPU resources and detaches the
// resize observer, in that order. Later calls do nothing.
func (l *Loop) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true

	l.cancelFrame()
	l.pipe.Close()
	err := l.backend.Release()
	l.detachResize()

	slog.Info("orb closed", "frames", l.frames)
	return err
}
