package camera

import (
	"math"

	"github.com/pthm-cable/nebula/config"
)

// Drift is the slow rotation the orb always has, independent of state.
// Yaw grows without bound; pitch and roll sway around zero.
type Drift struct {
	cfg config.DriftConfig
}

// NewDrift creates a drift from config.
func NewDrift(cfg config.DriftConfig) Drift {
	return Drift{cfg: cfg}
}

// At returns the orientation at time t.
func (d Drift) At(t float32) (yaw, pitch, roll float32) {
	yaw = d.cfg.YawSpeed * t
	pitch = d.cfg.PitchAmplitude * float32(math.Sin(float64(d.cfg.PitchSpeed*t)))
	roll = d.cfg.RollAmplitude * float32(math.Sin(float64(d.cfg.RollSpeed*t)))
	return yaw, pitch, roll
}

// Apply sets the camera orientation for time t.
func (d Drift) Apply(c *Camera, t float32) {
	c.SetOrientation(d.At(t))
}
