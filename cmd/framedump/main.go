// Frame dump tool - settles the orb in one state and writes a frame to PNG.
//
// Usage: go run ./cmd/framedump -state speaking -out speaking.png
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nebula/animation"
	"github.com/pthm-cable/nebula/config"
	"github.com/pthm-cable/nebula/orb"
	"github.com/pthm-cable/nebula/renderer"
	"github.com/pthm-cable/nebula/shapes"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	stateName := flag.String("state", "idle", "State to settle in (idle, listening, processing, speaking)")
	shapeName := flag.String("shape", "", "Optional shape override (sphere, heart, saturn, torus, spiral)")
	audioLevel := flag.Float64("audio", 0, "Audio level 0..1")
	settle := flag.Float64("settle", 2, "Seconds of animation before capture")
	outPath := flag.String("out", "orb.png", "Output PNG path")
	width := flag.Int("width", 512, "Render width")
	height := flag.Int("height", 512, "Render height")
	software := flag.Bool("software", false, "Rasterize on the CPU without opening a window")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	cfg.Screen.Width, cfg.Screen.Height = *width, *height

	state, err := animation.ParseState(*stateName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	var shape *orb.Shape
	if *shapeName != "" {
		k, err := shapes.ParseKind(*shapeName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		shape = &k
	}

	frames := int(float32(*settle) / cfg.Drift.FrameStep)
	drive := func(o *orb.Orb) {
		o.SetState(state)
		if shape != nil {
			o.SetShape(*shape)
		}
		o.SetAudioLevel(float32(*audioLevel))
	}

	if *software {
		err = dumpSoftware(cfg, drive, frames, *outPath)
	} else {
		err = dumpRaylib(cfg, drive, frames, *outPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Orb rendered to: %s (%dx%d, %s)\n", *outPath, *width, *height, *stateName)
}

func dumpSoftware(cfg *config.Config, drive func(*orb.Orb), frames int, outPath string) error {
	host := renderer.NewManualHost(cfg.Screen.Width, cfg.Screen.Height, 1)
	o, err := orb.New(host, orb.Options{Config: cfg})
	if err != nil {
		return err
	}
	defer o.Close()

	drive(o)
	host.Step(max(frames, 1))

	img := host.Backend().Splat()
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

func dumpRaylib(cfg *config.Config, drive func(*orb.Orb), frames int, outPath string) error {
	screen := cfg.Screen
	screen.HighDPI = false
	win := renderer.NewWindow(screen, cfg.Glyph, "Frame Dump").Hidden()
	defer win.Close()

	o, err := orb.New(win, orb.Options{Config: cfg})
	if err != nil {
		return err
	}
	defer o.Close()
	drive(o)

	// Create render texture
	target := rl.LoadRenderTexture(int32(screen.Width), int32(screen.Height))
	defer rl.UnloadRenderTexture(target)

	// Every settle frame is drawn so the capture sees a steady state.
	for i := 0; i < max(frames, 1); i++ {
		rl.BeginTextureMode(target)
		rl.ClearBackground(rl.Black)
		o.Loop().Tick()
		rl.EndTextureMode()
	}

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)
	ok := rl.ExportImage(*img, outPath)
	rl.UnloadImage(img)
	if !ok {
		return fmt.Errorf("failed to export %s", outPath)
	}
	slog.Debug("frame exported", "frames", frames, "visible", o.Loop().Frame().VisibleCount())
	return nil
}
