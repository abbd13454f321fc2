// Package config provides configuration loading and access for the orb.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// State names used as palette keys. They match animation.State.String().
var StateNames = [...]string{"idle", "listening", "processing", "speaking"}

// Config holds all orb configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Particles ParticlesConfig `yaml:"particles"`
	Shapes    ShapesConfig    `yaml:"shapes"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Glyph     GlyphConfig     `yaml:"glyph"`
	Camera    CameraConfig    `yaml:"camera"`
	Drift     DriftConfig     `yaml:"drift"`
	Animation AnimationConfig `yaml:"animation"`
	Audio     AudioConfig     `yaml:"audio"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int  `yaml:"width"`
	Height    int  `yaml:"height"`
	TargetFPS int  `yaml:"target_fps"`
	HighDPI   bool `yaml:"high_dpi"`
}

// ParticlesConfig holds particle buffer construction parameters.
type ParticlesConfig struct {
	Count int   `yaml:"count"`
	Seed  int64 `yaml:"seed"` // RNG seed for jitter and per-particle seeds (0 = time-based)
}

// ShapesConfig holds the parameters of the five target shapes.
type ShapesConfig struct {
	SphereRadius float32 `yaml:"sphere_radius"`
	HeartScale   float32 `yaml:"heart_scale"`
	PlanetRadius float32 `yaml:"planet_radius"`
	RingRadius   float32 `yaml:"ring_radius"`
	TorusRadius  float32 `yaml:"torus_radius"`
	TubeRadius   float32 `yaml:"tube_radius"`
	SpiralRadius float32 `yaml:"spiral_radius"`
	SpiralHeight float32 `yaml:"spiral_height"`
}

// PipelineConfig holds the deformation constants. These are tuned for visual
// feel; nothing derives them.
type PipelineConfig struct {
	NoiseFrequency  float32 `yaml:"noise_frequency"`  // Spatial frequency of the turbulence field
	NoiseTimeScale  float32 `yaml:"noise_time_scale"` // Drift of the field through time
	TurbulenceBase  float32 `yaml:"turbulence_base"`  // Displacement amplitude at silence
	TurbulenceAudio float32 `yaml:"turbulence_audio"` // Extra amplitude at full audio level
	BreathSpeed     float32 `yaml:"breath_speed"`     // Breathing angular speed (rad/s)
	BreathAmount    float32 `yaml:"breath_amount"`    // Breathing scale amplitude
	BreathAudio     float32 `yaml:"breath_audio"`     // Audio multiplier on breathing
	PulseScale      float32 `yaml:"pulse_scale"`      // Radial scale per unit pulse
	SizeK           float32 `yaml:"size_k"`           // Point size numerator (pixels at unit depth)
	SizeAudio       float32 `yaml:"size_audio"`       // Point size growth at full audio level
	Workers         int     `yaml:"workers"`          // Worker goroutines (0 = GOMAXPROCS)
	ParallelMinimum int     `yaml:"parallel_minimum"` // Below this particle count run single-threaded
}

// GlyphConfig holds the soft point glyph parameters.
type GlyphConfig struct {
	TextureSize  int     `yaml:"texture_size"`
	FalloffPower float32 `yaml:"falloff_power"` // Exponent of the edge falloff curve
	CoreBoost    float32 `yaml:"core_boost"`    // Additive brightness near the center
	CoreRadius   float32 `yaml:"core_radius"`   // Normalized radius of the boosted core
	FadeNear     float32 `yaml:"fade_near"`     // View depth with no fade
	FadeFar      float32 `yaml:"fade_far"`      // View depth at maximum fade
	FadeMin      float32 `yaml:"fade_min"`      // Brightness floor for the farthest particles
}

// CameraConfig holds the orb camera parameters.
type CameraConfig struct {
	FovY      float32 `yaml:"fov_y"`     // Degrees
	Distance  float32 `yaml:"distance"`  // Eye distance from the orb center
	Elevation float32 `yaml:"elevation"` // Degrees above the equatorial plane
	Near      float32 `yaml:"near"`
	Far       float32 `yaml:"far"`
}

// DriftConfig holds the slow idle rotation applied every frame.
type DriftConfig struct {
	YawSpeed       float32 `yaml:"yaw_speed"` // rad/s, monotonic
	PitchAmplitude float32 `yaml:"pitch_amplitude"`
	PitchSpeed     float32 `yaml:"pitch_speed"`
	RollAmplitude  float32 `yaml:"roll_amplitude"`
	RollSpeed      float32 `yaml:"roll_speed"`
	FrameStep      float32 `yaml:"frame_step"` // Seconds added to the clock per frame
}

// TransitionConfig describes how one state drives the orb.
type TransitionConfig struct {
	Duration float32 `yaml:"duration"` // Shape morph duration in seconds
	Ease     string  `yaml:"ease"`     // "in_out" or "out"
	Pulse    float32 `yaml:"pulse"`    // Settled pulse value (ignored when oscillating)
}

// AnimationConfig holds the state machine timings and palettes.
type AnimationConfig struct {
	Idle             TransitionConfig    `yaml:"idle"`
	Listening        TransitionConfig    `yaml:"listening"`
	Processing       TransitionConfig    `yaml:"processing"`
	Speaking         TransitionConfig    `yaml:"speaking"`
	PulseDuration    float32             `yaml:"pulse_duration"`    // Ease time for static pulse targets
	PulsePeriod      float32             `yaml:"pulse_period"`      // Half-cycle of the processing oscillator
	ColorDuration    float32             `yaml:"color_duration"`    // Palette transition time
	OverrideDuration float32             `yaml:"override_duration"` // Shape override morph time
	AudioSmoothing   float32             `yaml:"audio_smoothing"`   // Audio level ease time
	Palettes         map[string][]string `yaml:"palettes"`          // state name -> three hex colors
}

// AudioConfig holds the audio level meter parameters.
type AudioConfig struct {
	SampleRate int     `yaml:"sample_rate"`
	WindowSize int     `yaml:"window_size"` // FFT window in samples
	MinDB      float64 `yaml:"min_db"`      // Magnitude mapped to level 0
	MaxDB      float64 `yaml:"max_db"`      // Magnitude mapped to level 1
	VoiceHz    float64 `yaml:"voice_hz"`    // Carrier of the synthetic voice
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow  int     `yaml:"perf_window"`  // Frames averaged per perf sample
	LogInterval float64 `yaml:"log_interval"` // Seconds between perf log lines
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Palettes [4][3]colorful.Color // indexed like StateNames
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Set replaces the global configuration. Used by the hot-reload watcher.
func Set(cfg *Config) {
	global = cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	if c.Particles.Count <= 0 {
		return fmt.Errorf("particles.count must be positive, got %d", c.Particles.Count)
	}
	if c.Pipeline.ParallelMinimum <= 0 {
		c.Pipeline.ParallelMinimum = 2048
	}
	if c.Drift.FrameStep <= 0 {
		c.Drift.FrameStep = 1.0 / 60
	}
	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 60
	}


	for i, name := range StateNames {
		hexes, ok := c.Animation.Palettes[name]
		if !ok {
			return fmt.Errorf("animation.palettes: missing palette for %q", name)
		}
		if len(hexes) != 3 {
			return fmt.Errorf("animation.palettes.%s: want 3 colors, got %d", name, len(hexes))
		}
		for j, h := range hexes {
			col, err := colorful.Hex(h)
			if err != nil {
				return fmt.Errorf("animation.palettes.%s[%d]: %w", name, j, err)
			}
			c.Derived.Palettes[i][j] = col
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
