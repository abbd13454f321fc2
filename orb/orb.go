// Package orb is the host-facing voice orb: give it a surface, then drive it
// with assistant state and audio level.
package orb

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/nebula/animation"
	"github.com/pthm-cable/nebula/config"
	"github.com/pthm-cable/nebula/particles"
	"github.com/pthm-cable/nebula/renderer"
	"github.com/pthm-cable/nebula/shapes"
	"github.com/pthm-cable/nebula/telemetry"
)

// State is the assistant state shown by the orb.
type State = animation.State

const (
	Idle       = animation.Idle
	Listening  = animation.Listening
	Processing = animation.Processing
	Speaking   = animation.Speaking
)

// Shape is a target formation for SetShape.
type Shape = shapes.Kind

const (
	Sphere = shapes.KindSphere
	Heart  = shapes.KindHeart
	Saturn = shapes.KindSaturn
	Torus  = shapes.KindTorus
	Spiral = shapes.KindSpiral
)

var (
	// ErrInvalidArgument reports a bad construction parameter.
	ErrInvalidArgument = shapes.ErrInvalidArgument
	// ErrRenderContextUnavailable reports that the host could not provide a
	// render context. No resources are held and OnReady was not called.
	ErrRenderContextUnavailable = renderer.ErrContextUnavailable
)

// Options configures New.
type Options struct {
	// Config overrides the global configuration.
	Config *config.Config
	// OnReady runs once after the orb is fully allocated.
	OnReady func()
	// Perf, if set, receives frame timings.
	Perf *telemetry.PerfCollector
}

// Orb is one mounted visualizer. Its methods must be called from the thread
// that drives the host's frames.
type Orb struct {
	ctrl *animation.Controller
	loop *renderer.Loop
}

// New builds the particle geometry and mounts it on host.
func New(host renderer.Host, opts Options) (*Orb, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	seed := cfg.Particles.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	buf, err := particles.New(cfg.Particles.Count, particles.ParamsFromConfig(cfg.Shapes), rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, fmt.Errorf("orb: %w", err)
	}
	ctrl, err := animation.New(cfg.Animation, cfg.Derived.Palettes)
	if err != nil {
		return nil, fmt.Errorf("orb: %w", err)
	}
	loop, err := renderer.New(host, ctrl, buf, cfg, renderer.Options{
		OnReady:   opts.OnReady,
		Perf:      opts.Perf,
		NoiseSeed: seed,
	})
	if err != nil {
		return nil, fmt.Errorf("orb: %w", err)
	}

	slog.Debug("orb mounted", "seed", seed, "particles", buf.Count(), "geometry_bytes", buf.Bytes())
	return &Orb{ctrl: ctrl, loop: loop}, nil
}

// SetState transitions to s.
func (o *Orb) SetState(s State) { o.ctrl.SetState(s) }

// SetShape overrides the state's shape until ClearShape.
func (o *Orb) SetShape(k Shape) { o.ctrl.SetShape(k) }

// ClearShape drops the override without reverting the shape.
func (o *Orb) ClearShape() { o.ctrl.ClearShape() }

// SetAudioLevel sets the audio level target, clamped to [0, 1].
func (o *Orb) SetAudioLevel(level float32) { o.ctrl.SetAudioLevel(level) }

// State returns the last requested state.
func (o *Orb) State() State { return o.ctrl.State() }

// Snapshot returns the current animated values.
func (o *Orb) Snapshot() animation.Snapshot { return o.ctrl.Snapshot() }

// Loop exposes the render loop, mostly for tools and tests.
func (o *Orb) Loop() *renderer.Loop { return o.loop }

// Reconfigure applies timings, palettes and pipeline constants from cfg.
// Particle count and shape parameters only take effect on a new Orb.
func (o *Orb) Reconfigure(cfg *config.Config) error {
	if err := o.ctrl.Reconfigure(cfg.Animation, cfg.Derived.Palettes); err != nil {
		return fmt.Errorf("orb: %w", err)
	}
	o.loop.Reconfigure(cfg)
	return nil
}

// Close unmounts the orb. It is safe to call more than once.
func (o *Orb) Close() error {
	return o.loop.Close()
}
