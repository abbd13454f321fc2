// Package tween provides explicit eased tweens advanced by the caller.
//
// A Tween owns its current value, its target and its timing. Nothing is
// scheduled globally: the owner calls Advance once per frame.
package tween

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Ease maps normalized progress in [0,1] to eased progress in [0,1].
type Ease func(t float32) float32

// Linear is the identity easing.
func Linear(t float32) float32 { return t }

// OutCubic decelerates to the target.
func OutCubic(t float32) float32 {
	u := 1 - t
	return 1 - u*u*u
}

// InOutCubic accelerates then decelerates.
func InOutCubic(t float32) float32 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// InOutSine is a gentle symmetric ease, used for oscillation.
func InOutSine(t float32) float32 {
	return float32(-(math.Cos(math.Pi*float64(t)) - 1) / 2)
}

// EaseByName resolves an easing name used in config files.
func EaseByName(name string) (Ease, error) {
	switch name {
	case "linear":
		return Linear, nil
	case "out", "out_cubic":
		return OutCubic, nil
	case "in_out", "in_out_cubic":
		return InOutCubic, nil
	case "in_out_sine":
		return InOutSine, nil
	}
	return nil, fmt.Errorf("unknown ease %q", name)
}

// Loop selects what happens when a tween reaches its target.
type Loop int

const (
	// Once stops at the target.
	Once Loop = iota
	// Yoyo reverses direction forever.
	Yoyo
)

// Lerp interpolates between a and b by t in [0,1].
type Lerp[T any] func(a, b T, t float32) T

// Tween eases a value of type T toward a target.
type Tween[T any] struct {
	lerp     Lerp[T]
	ease     Ease
	loop     Loop
	from     T
	to       T
	value    T
	duration float32
	elapsed  float32
	active   bool

	// Yoyo bounds; legs alternate between them after the first leg.
	lo, hi T
	up     bool // current leg heads to hi
}

// New returns an idle tween resting at initial.
func New[T any](initial T, lerp Lerp[T]) Tween[T] {
	return Tween[T]{
		lerp:  lerp,
		ease:  Linear,
		from:  initial,
		to:    initial,
		value: initial,
	}
}

// Value returns the current value.
func (tw *Tween[T]) Value() T { return tw.value }

// Target returns the value the current leg is heading to.
func (tw *Tween[T]) Target() T { return tw.to }

// Active reports whether the tween is still moving.
func (tw *Tween[T]) Active() bool { return tw.active }

// Looping reports whether an oscillation is running.
func (tw *Tween[T]) Looping() bool { return tw.active && tw.loop == Yoyo }

// Progress returns the eased progress of the current leg.
func (tw *Tween[T]) Progress() float32 {
	if !tw.active || tw.duration <= 0 {
		return 1
	}
	return tw.ease(clamp01(tw.elapsed / tw.duration))
}

// To starts a new tween from the current value toward target. Any tween in
// flight is discarded.
func (tw *Tween[T]) To(target T, duration float32, ease Ease) {
	tw.from = tw.value
	tw.to = target
	tw.loop = Once
	tw.elapsed = 0
	tw.duration = duration
	tw.ease = orLinear(ease)
	tw.active = true
	if !(duration > 0) {
		tw.value = target
		tw.active = false
	}
}

// Oscillate discards any tween in flight and starts an endless yoyo between
// lo and hi. The first leg runs from the current value to hi; every later
// leg takes halfPeriod and alternates direction.
func (tw *Tween[T]) Oscillate(lo, hi T, halfPeriod float32, ease Ease) {
	tw.lo, tw.hi = lo, hi
	tw.from = tw.value
	tw.to = hi
	tw.up = true
	tw.loop = Yoyo
	tw.elapsed = 0
	tw.duration = halfPeriod
	tw.ease = orLinear(ease)
	tw.active = halfPeriod > 0
}

// Set snaps to v and stops.
func (tw *Tween[T]) Set(v T) {
	tw.from, tw.to, tw.value = v, v, v
	tw.elapsed = 0
	tw.active = false
	tw.loop = Once
}

// Kill stops the tween where it is.
func (tw *Tween[T]) Kill() {
	tw.active = false
	tw.loop = Once
	tw.from = tw.value
	tw.to = tw.value
}

// Advance moves the tween forward by dt seconds.
func (tw *Tween[T]) Advance(dt float32) {
	if !tw.active || !(dt > 0) {
		return
	}
	tw.elapsed += dt
	for tw.elapsed >= tw.duration {
		if tw.loop != Yoyo {
			tw.value = tw.to
			tw.active = false
			return
		}
		// Flip to the next leg and carry the overshoot.
		tw.elapsed -= tw.duration
		tw.from = tw.to
		if tw.up {
			tw.to = tw.lo
		} else {
			tw.to = tw.hi
		}
		tw.up = !tw.up
	}
	tw.value = tw.lerp(tw.from, tw.to, tw.Progress())
}

func orLinear(e Ease) Ease {
	if e == nil {
		return Linear
	}
	return e
}

func clamp01(t float32) float32 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Float32 interpolates scalars without leaving [min(a,b), max(a,b)].
func Float32(a, b, t float32) float32 {
	v := a*(1-t) + b*t
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Color interpolates colors in RGB space.
func Color(a, b colorful.Color, t float32) colorful.Color {
	return a.BlendRgb(b, float64(t))
}
