package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/nebula/config"
)

func testConfig() config.CameraConfig {
	return config.CameraConfig{FovY: 45, Distance: 4, Elevation: 0, Near: 0.1, Far: 100}
}

func TestNew(t *testing.T) {
	cam := New(testConfig(), 800, 600, 1)

	if cam.ViewportW != 800 || cam.ViewportH != 600 {
		t.Errorf("expected viewport 800x600, got %fx%f", cam.ViewportW, cam.ViewportH)
	}
	if math.Abs(float64(cam.Aspect())-800.0/600.0) > 1e-6 {
		t.Errorf("expected aspect 4/3, got %f", cam.Aspect())
	}
}

func TestOriginProjectsToCenter(t *testing.T) {
	cam := New(testConfig(), 1280, 720, 1)

	sx, sy, depth, ok := cam.Project(mgl32.Vec3{})
	if !ok {
		t.Fatal("origin should be in front of the camera")
	}
	if math.Abs(float64(sx-640)) > 0.01 || math.Abs(float64(sy-360)) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
	if math.Abs(float64(depth-4)) > 1e-4 {
		t.Errorf("expected depth 4, got %f", depth)
	}
}

func TestScreenYGrowsDownward(t *testing.T) {
	cam := New(testConfig(), 1280, 720, 1)

	_, yUp, _, _ := cam.Project(mgl32.Vec3{0, 1, 0})
	_, yDown, _, _ := cam.Project(mgl32.Vec3{0, -1, 0})
	if yUp >= yDown {
		t.Errorf("expected +y above -y on screen, got %f vs %f", yUp, yDown)
	}
}

func TestNearerPointsHaveSmallerDepth(t *testing.T) {
	cam := New(testConfig(), 800, 800, 1)

	_, _, near, _ := cam.Project(mgl32.Vec3{0, 0, 1})
	_, _, far, _ := cam.Project(mgl32.Vec3{0, 0, -1})
	if near >= far {
		t.Errorf("expected point toward the eye to be nearer: %f vs %f", near, far)
	}
}

func TestBehindEyeRejected(t *testing.T) {
	cam := New(testConfig(), 800, 800, 1)

	if _, _, _, ok := cam.Project(mgl32.Vec3{0, 0, 10}); ok {
		t.Error("point behind the eye should be rejected")
	}
}

func TestResizeKeepsCenter(t *testing.T) {
	cam := New(testConfig(), 800, 600, 1)
	cam.Resize(400, 400, 2)

	if cam.ViewportW != 800 || cam.ViewportH != 800 {
		t.Errorf("expected framebuffer 800x800 at ratio 2, got %fx%f", cam.ViewportW, cam.ViewportH)
	}
	sx, sy, _, _ := cam.Project(mgl32.Vec3{})
	if math.Abs(float64(sx-400)) > 0.01 || math.Abs(float64(sy-400)) > 0.01 {
		t.Errorf("expected center (400, 400), got (%f, %f)", sx, sy)
	}
}

func TestPixelRatioClamp(t *testing.T) {
	cam := New(testConfig(), 100, 100, 3)
	if cam.PixelRatio != MaxPixelRatio {
		t.Errorf("expected pixel ratio clamped to %d, got %f", MaxPixelRatio, cam.PixelRatio)
	}
	cam.Resize(0, 0, 0)
	if cam.PixelRatio != 1 || cam.ViewportW != 1 || cam.ViewportH != 1 {
		t.Errorf("expected degenerate resize to clamp to 1x1 at ratio 1, got %fx%f @%f",
			cam.ViewportW, cam.ViewportH, cam.PixelRatio)
	}
}

func TestReset(t *testing.T) {
	cam := New(testConfig(), 800, 600, 1)
	cam.SetOrientation(1, 2, 3)
	cam.Distance = 10

	cam.Reset()

	if cam.Yaw != 0 || cam.Pitch != 0 || cam.Roll != 0 {
		t.Errorf("expected zero orientation, got (%f, %f, %f)", cam.Yaw, cam.Pitch, cam.Roll)
	}
	if cam.Distance != 4 {
		t.Errorf("expected distance 4, got %f", cam.Distance)
	}
}

func TestResetConvertsDegrees(t *testing.T) {
	cfg := testConfig()
	cfg.Elevation = 18
	cam := New(cfg, 800, 600, 1)

	if math.Abs(float64(cam.FovY)-math.Pi/4) > 1e-6 {
		t.Errorf("expected fov pi/4 rad, got %f", cam.FovY)
	}
	if math.Abs(float64(cam.Elevation)-18*math.Pi/180) > 1e-6 {
		t.Errorf("expected elevation 18 deg in rad, got %f", cam.Elevation)
	}
}

func TestDrift(t *testing.T) {
	d := NewDrift(config.DriftConfig{
		YawSpeed: 0.1, PitchAmplitude: 0.2, PitchSpeed: 0.5, RollAmplitude: 0.1, RollSpeed: 0.3,
	})

	var prevYaw float32 = -1
	for i := 0; i < 1000; i++ {
		yaw, pitch, roll := d.At(float32(i) * 0.1)
		if yaw <= prevYaw {
			t.Fatalf("yaw must grow monotonically: %f after %f", yaw, prevYaw)
		}
		prevYaw = yaw
		if math.Abs(float64(pitch)) > 0.2+1e-6 || math.Abs(float64(roll)) > 0.1+1e-6 {
			t.Fatalf("pitch/roll exceeded amplitude: %f %f", pitch, roll)
		}
	}
}

func TestYawRotatesAroundVertical(t *testing.T) {
	cam := New(testConfig(), 800, 800, 1)
	cam.SetOrientation(math.Pi/2, 0, 0)

	// A point on +x swings to -z (away from the eye) after a quarter turn.
	_, _, depth, _ := cam.Project(mgl32.Vec3{1, 0, 0})
	if math.Abs(float64(depth-5)) > 1e-4 {
		t.Errorf("expected depth 5 after quarter yaw, got %f", depth)
	}
}
