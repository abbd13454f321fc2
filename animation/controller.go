// Package animation maps assistant state to orb morph weights, palette and
// pulse, and eases all of them toward their targets every frame.
package animation

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/nebula/config"
	"github.com/pthm-cable/nebula/shapes"
	"github.com/pthm-cable/nebula/tween"
)

// State is the assistant state shown by the orb.
type State int

const (
	Idle State = iota
	Listening
	Processing
	Speaking
)

// NumStates is the number of assistant states.
const NumStates = 4

func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return config.StateNames[s]
}

// Valid reports whether s is a known state.
func (s State) Valid() bool { return s >= 0 && s < NumStates }

// ParseState converts a state name to a State.
func ParseState(name string) (State, error) {
	for i, n := range config.StateNames {
		if n == name {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown state %q: %w", name, shapes.ErrInvalidArgument)
}

// Snapshot is the animated part of the uniform state at one instant.
type Snapshot struct {
	AudioLevel float32
	Morph      [shapes.NumKinds]float32
	Pulse      float32
	Colors     [3]colorful.Color
}

// Controller is the orb state machine. It is not safe for concurrent use;
// the host drives it from the frame thread.
type Controller struct {
	cfg      config.AnimationConfig
	table    Table
	palettes [NumStates][3]colorful.Color

	state       State
	override    shapes.Kind
	hasOverride bool

	weights [shapes.NumKinds]tween.Tween[float32]
	pulse   tween.Tween[float32]
	colors  [3]tween.Tween[colorful.Color]
	audio   tween.Tween[float32]
}

// New creates a controller resting in Idle: sphere weight 1, idle palette,
// no pulse, silence.
func New(cfg config.AnimationConfig, palettes [NumStates][3]colorful.Color) (*Controller, error) {
	table, err := TableFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:      cfg,
		table:    table,
		palettes: palettes,
		state:    Idle,
		pulse:    tween.New[float32](0, tween.Float32),
		audio:    tween.New[float32](0, tween.Float32),
	}
	rest := table[Idle].Shape
	for _, k := range shapes.Kinds {
		c.weights[k] = tween.New(oneHot(k, rest), tween.Float32)
	}
	for j := range c.colors {
		c.colors[j] = tween.New(palettes[Idle][j], tween.Color)
	}
	return c, nil
}

// Reconfigure swaps in new timings and palettes. Running tweens keep their
// current course; the next transition uses the new values.
func (c *Controller) Reconfigure(cfg config.AnimationConfig, palettes [NumStates][3]colorful.Color) error {
	table, err := TableFromConfig(cfg)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.table = table
	c.palettes = palettes
	return nil
}

// State returns the last requested state.
func (c *Controller) State() State { return c.state }

// Override returns the active shape override, if any.
func (c *Controller) Override() (shapes.Kind, bool) { return c.override, c.hasOverride }

// SetState transitions to s. Morph weights follow the state's shape unless a
// shape override is set; palette and pulse always follow the state.
func (c *Controller) SetState(s State) {
	if !s.Valid() {
		slog.Warn("ignoring invalid orb state", "state", int(s))
		return
	}
	prev := c.state
	c.state = s
	tr := c.table[s]

	if !c.hasOverride {
		c.morphTo(tr.Shape, tr.Duration, tr.Ease)
	}

	for j := range c.colors {
		c.colors[j].To(c.palettes[s][j], c.cfg.ColorDuration, tween.OutCubic)
	}

	// Kill first so re-entering an oscillating state never stacks.
	c.pulse.Kill()
	if tr.Oscillate {
		c.pulse.Oscillate(0, 1, c.cfg.PulsePeriod, tween.InOutSine)
	} else {
		c.pulse.To(tr.Pulse, c.cfg.PulseDuration, tween.OutCubic)
	}

	slog.Debug("orb state", "from", prev.String(), "to", s.String(), "shape", tr.Shape.String(), "override", c.hasOverride)
}

// SetShape forces the orb toward kind regardless of state until cleared.
func (c *Controller) SetShape(kind shapes.Kind) {
	if !kind.Valid() {
		slog.Warn("ignoring invalid shape override", "shape", int(kind))
		return
	}
	c.override = kind
	c.hasOverride = true
	c.morphTo(kind, c.cfg.OverrideDuration, tween.InOutCubic)
	slog.Debug("orb shape override", "shape", kind.String())
}

// ClearShape drops the override. The current shape stays until the next
// SetState.
func (c *Controller) ClearShape() {
	c.hasOverride = false
}

// SetAudioLevel sets the audio target. The smoothed level reaches it over
// the configured smoothing time.
func (c *Controller) SetAudioLevel(level float32) {
	if math.IsNaN(float64(level)) || level < 0 {
		level = 0
	} else if level > 1 {
		level = 1
	}
	if level == c.audio.Target() {
		return
	}
	c.audio.To(level, c.cfg.AudioSmoothing, tween.OutCubic)
}

// Advance moves every tween forward by dt seconds.
func (c *Controller) Advance(dt float32) {
	for k := range c.weights {
		c.weights[k].Advance(dt)
	}
	c.pulse.Advance(dt)
	for j := range c.colors {
		c.colors[j].Advance(dt)
	}
	c.audio.Advance(dt)
}

// Snapshot copies the current animated values.
func (c *Controller) Snapshot() Snapshot {
	var s Snapshot
	s.AudioLevel = c.audio.Value()
	for k := range c.weights {
		s.Morph[k] = c.weights[k].Value()
	}
	s.Pulse = c.pulse.Value()
	for j := range c.colors {
		s.Colors[j] = c.colors[j].Value()
	}
	return s
}

// PulseOscillating reports whether the processing oscillator is running.
func (c *Controller) PulseOscillating() bool { return c.pulse.Looping() }

// Settled reports whether every non-looping tween has finished.
func (c *Controller) Settled() bool {
	for k := range c.weights {
		if c.weights[k].Active() {
			return false
		}
	}
	for j := range c.colors {
		if c.colors[j].Active() {
			return false
		}
	}
	if c.pulse.Active() && !c.pulse.Looping() {
		return false
	}
	return !c.audio.Active()
}

func (c *Controller) morphTo(kind shapes.Kind, duration float32, ease tween.Ease) {
	for _, k := range shapes.Kinds {
		c.weights[k].To(oneHot(k, kind), duration, ease)
	}
}

func oneHot(k, hot shapes.Kind) float32 {
	if k == hot {
		return 1
	}
	return 0
}
