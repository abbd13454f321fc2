package renderer

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/pthm-cable/nebula/animation"
	"github.com/pthm-cable/nebula/config"
	"github.com/pthm-cable/nebula/particles"
	"github.com/pthm-cable/nebula/pipeline"
	"github.com/pthm-cable/nebula/telemetry"
)

func init() {
	config.MustInit("")
}

type fixture struct {
	host *ManualHost
	ctrl *animation.Controller
	buf  *particles.Buffer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cfg := config.Cfg()
	buf, err := particles.New(1500, particles.ParamsFromConfig(cfg.Shapes), rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatal(err)
	}
	ctrl, err := animation.New(cfg.Animation, cfg.Derived.Palettes)
	if err != nil {
		t.Fatal(err)
	}
	return fixture{host: NewManualHost(640, 480, 1), ctrl: ctrl, buf: buf}
}

func (fx fixture) open(t *testing.T, opts Options) *Loop {
	t.Helper()
	l, err := New(fx.host, fx.ctrl, fx.buf, config.Cfg(), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

func TestOnReadyCalledOnce(t *testing.T) {
	fx := newFixture(t)
	calls := 0
	l := fx.open(t, Options{OnReady: func() { calls++ }})
	defer l.Close()

	fx.host.Step(10)
	fx.host.Resize(800, 600, 2)
	fx.host.Step(10)

	if calls != 1 {
		t.Errorf("expected OnReady once, got %d", calls)
	}
	if fx.host.Backend().Uploads() != 1 {
		t.Errorf("expected a single upload, got %d", fx.host.Backend().Uploads())
	}
}

func TestContextUnavailable(t *testing.T) {
	fx := newFixture(t)
	fx.host.OpenErr = errors.New("no gl")
	ready := false

	l, err := New(fx.host, fx.ctrl, fx.buf, config.Cfg(), Options{OnReady: func() { ready = true }})
	if !errors.Is(err, ErrContextUnavailable) {
		t.Fatalf("expected ErrContextUnavailable, got %v", err)
	}
	if l != nil {
		t.Error("expected no loop on failure")
	}
	if ready {
		t.Error("OnReady must not run when the context is unavailable")
	}
	if fx.host.Scheduled() || fx.host.Observed() || fx.host.Backend() != nil {
		t.Error("expected no frame callback, observer or backend after failure")
	}
}

// failingBackend rejects the upload and the cleanup that follows it.
type failingBackend struct {
	uploadErr, releaseErr error
	released              bool
}

func (b *failingBackend) Upload(*particles.Buffer) error { return b.uploadErr }
func (b *failingBackend) Resize(int, int, float32) {}
func (b *failingBackend) Draw(*pipeline.Frame) error { return nil }
func (b *failingBackend) Release() error {
	b.released = true
	return b.releaseErr
}

type failingHost struct {
	*ManualHost
	backend *failingBackend
}

func (h failingHost) Open() (Backend, error) { return h.backend, nil }

func TestUploadFailureReportsReleaseError(t *testing.T) {
	fx := newFixture(t)
	uploadErr := errors.New("out of memory")
	releaseErr := errors.New("lost context")
	host := failingHost{ManualHost: fx.host, backend: &failingBackend{uploadErr: uploadErr, releaseErr: releaseErr}}
	ready := false

	l, err := New(host, fx.ctrl, fx.buf, config.Cfg(), Options{OnReady: func() { ready = true }})
	if l != nil || ready {
		t.Fatal("expected no loop and no OnReady after a failed upload")
	}
	if !errors.Is(err, uploadErr) {
		t.Errorf("expected the upload error, got %v", err)
	}
	if !errors.Is(err, releaseErr) {
		t.Errorf("expected the release error to be joined, got %v", err)
	}
	if !host.backend.released {
		t.Error("expected the backend to be released after a failed upload")
	}
	if fx.host.Scheduled() || fx.host.Observed() {
		t.Error("expected no frame callback or observer after a failed upload")
	}
}

func TestTeardownOrderAndIdempotence(t *testing.T) {
	fx := newFixture(t)
	l := fx.open(t, Options{})
	fx.host.Step(3)

	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	want := []string{"open", "upload", "observe_resize", "request_frame", "cancel_frame", "release", "detach_resize"}
	if got := fx.host.Events(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if fx.host.Step(5) != 0 {
		t.Error("expected no frames after Close")
	}
	if !fx.host.Backend().Released() {
		t.Error("expected backend released")
	}
}

func TestTickAdvancesFixedStep(t *testing.T) {
	fx := newFixture(t)
	l := fx.open(t, Options{})
	defer l.Close()

	prev := l.Time()
	for i := 0; i < 120; i++ {
		fx.host.Step(1)
		if l.Time() <= prev {
			t.Fatalf("time not monotonic at frame %d: %f <= %f", i, l.Time(), prev)
		}
		prev = l.Time()
	}
	if l.Frames() != 120 {
		t.Errorf("expected 120 frames, got %d", l.Frames())
	}
	if d := l.Time() - 2; d > 1e-3 || d < -1e-3 {
		t.Errorf("expected ~2s after 120 frames, got %f", l.Time())
	}
	if fx.host.Backend().Draws() != 120 {
		t.Errorf("expected one draw per frame, got %d", fx.host.Backend().Draws())
	}
	if fx.host.Backend().LastVisible() == 0 {
		t.Error("expected visible particles")
	}
}

func TestTickDrivesController(t *testing.T) {
	fx := newFixture(t)
	l := fx.open(t, Options{})
	defer l.Close()

	fx.ctrl.SetState(animation.Listening)
	fx.host.Step(120)

	if !fx.ctrl.Settled() {
		t.Error("expected controller to settle after 2s of frames")
	}
}

func TestResizeDoesNotRebuild(t *testing.T) {
	fx := newFixture(t)
	l := fx.open(t, Options{})
	defer l.Close()

	frame := l.Frame()
	fx.host.Resize(1024, 512, 3)
	fx.host.Step(1)

	if l.Frame() != frame {
		t.Error("resize must not reallocate the frame")
	}
	if fx.host.Backend().Uploads() != 1 {
		t.Error("resize must not re-upload particles")
	}
	w, h, ratio := fx.host.Backend().Viewport()
	if w != 1024 || h != 512 || ratio != 2 {
		t.Errorf("expected backend viewport 1024x512 @2, got %dx%d @%f", w, h, ratio)
	}
	if a := l.Camera().Aspect(); a != 2 {
		t.Errorf("expected aspect 2, got %f", a)
	}
}

func TestPerfPhasesRecorded(t *testing.T) {
	fx := newFixture(t)
	perf := telemetry.NewPerfCollector(10)
	l := fx.open(t, Options{Perf: perf})
	defer l.Close()

	fx.host.Step(5)
	stats := perf.Stats()
	for _, phase := range telemetry.Phases {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("expected phase %q recorded", phase)
		}
	}
	if stats.AvgVisible == 0 {
		t.Error("expected visible count recorded")
	}
}

func TestSplat(t *testing.T) {
	fx := newFixture(t)
	l := fx.open(t, Options{})
	fx.host.Step(1)

	img := fx.host.Backend().Splat()
	if img == nil {
		t.Fatal("expected an image after drawing")
	}
	if img.Bounds().Dx() != 640 || img.Bounds().Dy() != 480 {
		t.Errorf("unexpected image size %v", img.Bounds())
	}
	l.Close()
	if fx.host.Backend().Splat() != nil {
		t.Error("expected no image after release")
	}
}
