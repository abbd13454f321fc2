package animation

import (
	"fmt"

	"github.com/pthm-cable/nebula/config"
	"github.com/pthm-cable/nebula/shapes"
	"github.com/pthm-cable/nebula/tween"
)

// Transition describes what entering a state does to the orb.
type Transition struct {
	Shape     shapes.Kind
	Duration  float32
	Ease      tween.Ease
	Pulse     float32
	Oscillate bool
}

// Table holds one transition per state.
type Table [NumStates]Transition

// TableFromConfig builds the transition table. The state to shape mapping is
// fixed here; timings come from config.
func TableFromConfig(c config.AnimationConfig) (Table, error) {
	var t Table
	for s := State(0); s < NumStates; s++ {
		var tc config.TransitionConfig
		var tr Transition
		switch s {
		case Idle:
			tc, tr = c.Idle, Transition{Shape: shapes.KindSphere}
		case Listening:
			tc, tr = c.Listening, Transition{Shape: shapes.KindTorus}
		case Processing:
			tc, tr = c.Processing, Transition{Shape: shapes.KindSpiral, Oscillate: true}
		case Speaking:
			tc, tr = c.Speaking, Transition{Shape: shapes.KindSaturn}
		}

		ease, err := tween.EaseByName(tc.Ease)
		if err != nil {
			return Table{}, fmt.Errorf("animation.%s: %w", s, err)
		}
		if !(tc.Duration > 0) {
			return Table{}, fmt.Errorf("animation.%s: duration %v: %w", s, tc.Duration, shapes.ErrInvalidArgument)
		}
		tr.Duration = tc.Duration
		tr.Ease = ease
		tr.Pulse = tc.Pulse
		t[s] = tr
	}
	return t, nil
}
