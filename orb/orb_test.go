package orb

import (
	"errors"
	"testing"

	"github.com/pthm-cable/nebula/config"
	"github.com/pthm-cable/nebula/renderer"
)

func init() {
	config.MustInit("")
}

func smallConfig() *config.Config {
	cfg := *config.Cfg()
	cfg.Particles.Count = 1200
	cfg.Particles.Seed = 99
	return &cfg
}

func TestLifecycle(t *testing.T) {
	host := renderer.NewManualHost(400, 400, 1)
	ready := 0
	o, err := New(host, Options{Config: smallConfig(), OnReady: func() { ready++ }})
	if err != nil {
		t.Fatal(err)
	}

	o.SetState(Listening)
	o.SetAudioLevel(0.4)
	host.Step(120)

	s := o.Snapshot()
	if s.Morph[Torus] <= 0.95 {
		t.Errorf("expected torus weight > 0.95 after 2s of listening, got %f", s.Morph[Torus])
	}
	if s.AudioLevel != 0.4 {
		t.Errorf("expected audio level 0.4, got %f", s.AudioLevel)
	}

	if err := o.Close(); err != nil {
		t.Fatal(err)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if ready != 1 {
		t.Errorf("expected OnReady once, got %d", ready)
	}
	if host.Scheduled() || host.Observed() {
		t.Error("expected host callbacks detached after Close")
	}
}

func TestShapeOverrideThroughFacade(t *testing.T) {
	host := renderer.NewManualHost(400, 400, 1)
	o, err := New(host, Options{Config: smallConfig()})
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	o.SetState(Speaking)
	o.SetShape(Heart)
	host.Step(120)
	if w := o.Snapshot().Morph[Heart]; w < 0.999 {
		t.Errorf("expected heart override, weight %f", w)
	}
	o.ClearShape()
	o.SetState(Idle)
	host.Step(120)
	if w := o.Snapshot().Morph[Sphere]; w < 0.999 {
		t.Errorf("expected sphere after clearing override and returning to idle, weight %f", w)
	}
}

func TestRenderContextUnavailable(t *testing.T) {
	host := renderer.NewManualHost(400, 400, 1)
	host.OpenErr = errors.New("webgl disabled")
	ready := false

	_, err := New(host, Options{Config: smallConfig(), OnReady: func() { ready = true }})
	if !errors.Is(err, ErrRenderContextUnavailable) {
		t.Fatalf("expected ErrRenderContextUnavailable, got %v", err)
	}
	if ready {
		t.Error("OnReady must not run")
	}
}

func TestInvalidParticleCount(t *testing.T) {
	cfg := smallConfig()
	cfg.Particles.Count = 0
	host := renderer.NewManualHost(400, 400, 1)

	_, err := New(host, Options{Config: cfg})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if len(host.Events()) != 0 {
		t.Errorf("expected host untouched, got events %v", host.Events())
	}
}

func TestReconfigure(t *testing.T) {
	host := renderer.NewManualHost(400, 400, 1)
	o, err := New(host, Options{Config: smallConfig()})
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	cfg := smallConfig()
	cfg.Animation.Speaking.Ease = "bogus"
	if err := o.Reconfigure(cfg); err == nil {
		t.Error("expected error for unknown ease")
	}
	if err := o.Reconfigure(smallConfig()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
