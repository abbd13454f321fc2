// Voice orb demo - drives the orb from a control panel or a scripted
// headless run.
//
// Usage: go run ./cmd/orb [-config orb.yaml] [-watch] [-headless -max-frames 600]
package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/nebula/audio"
	"github.com/pthm-cable/nebula/config"
	"github.com/pthm-cable/nebula/orb"
	"github.com/pthm-cable/nebula/renderer"
	"github.com/pthm-cable/nebula/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	watch := flag.Bool("watch", false, "Reload the config file when it changes")
	headless := flag.Bool("headless", false, "Run without a window, cycling through the states")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited, headless defaults to 600)")
	outputDir := flag.String("output-dir", "", "Output directory for perf/event CSV logs and config snapshot")
	mute := flag.Bool("mute", false, "Do not open the audio device")
	debug := flag.Bool("debug", false, "Log at debug level")

	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if out != nil {
		slog.Info("writing telemetry", "dir", out.Dir())
	}
	if err := out.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var reloads <-chan *config.Config
	if *watch && *configPath != "" {
		reloads, err = config.Watch(ctx, *configPath)
		if err != nil {
			slog.Error("failed to watch config", "error", err)
			os.Exit(1)
		}
	}

	d := &demo{
		cfg:     cfg,
		out:     out,
		perf:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		reloads: reloads,
	}
	d.setupAudio(!*mute && !*headless)

	if *headless {
		frames := *maxFrames
		if frames <= 0 {
			frames = 600
		}
		err = d.runHeadless(ctx, frames)
	} else {
		err = d.runWindow(ctx, *maxFrames)
	}
	if err != nil {
		slog.Error("orb demo failed", "error", err)
		os.Exit(1)
	}
}

// demo holds everything shared by the windowed and headless runs.
type demo struct {
	cfg     *config.Config
	out     *telemetry.OutputManager
	perf    *telemetry.PerfCollector
	reloads <-chan *config.Config

	orb *orb.Orb

	// Audio: the voice plays while speaking; the meter reads it back.
	voice   *beep.Ctrl
	meter   *audio.Meter
	live    bool // samples arrive from the speaker goroutine
	scratch [][2]float64

	manualLevel float32
	useVoice    bool
	lastLog     float32
}

func (d *demo) setupAudio(live bool) {
	sr := beep.SampleRate(d.cfg.Audio.SampleRate)
	v := audio.NewVoice(sr, d.cfg.Audio.VoiceHz, rand.New(rand.NewSource(time.Now().UnixNano())))
	d.voice = &beep.Ctrl{Streamer: v, Paused: true}
	d.meter = audio.NewMeter(d.cfg.Audio, d.voice)
	d.useVoice = true

	if !live {
		d.scratch = make([][2]float64, sr.N(time.Second/60))
		return
	}
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		slog.Warn("audio device unavailable, metering silently", "error", err)
		d.scratch = make([][2]float64, sr.N(time.Second/60))
		return
	}
	speaker.Play(d.meter)
	d.live = true
}

func (d *demo) closeAudio() {
	if d.live {
		speaker.Close()
	}
}

// setState forwards to the orb and gates the voice on speaking.
func (d *demo) setState(s orb.State) {
	d.orb.SetState(s)
	paused := s != orb.Speaking
	if d.live {
		speaker.Lock()
		d.voice.Paused = paused
		speaker.Unlock()
	} else {
		d.voice.Paused = paused
	}
	if paused {
		d.meter.Reset()
	}
	d.event("state", s.String())
}

func (d *demo) setShape(k orb.Shape) {
	d.orb.SetShape(k)
	d.event("shape", k.String())
}

func (d *demo) clearShape() {
	d.orb.ClearShape()
	d.event("clear_shape", "")
}

func (d *demo) event(kind, value string) {
	loop := d.orb.Loop()
	e := telemetry.StateEvent{Frame: loop.Frames(), Time: loop.Time(), Kind: kind, Value: value}
	if err := d.out.WriteEvent(e); err != nil {
		slog.Warn("failed to write event", "error", err)
	}
}

// beforeFrame runs ahead of each orb tick: config reloads and audio level.
func (d *demo) beforeFrame() {
	select {
	case next, ok := <-d.reloads:
		if ok {
			if err := d.orb.Reconfigure(next); err != nil {
				slog.Warn("config reload rejected", "error", err)
			} else {
				config.Set(next)
				d.cfg = next
			}
		}
	default:
	}

	if !d.live && d.scratch != nil {
		d.meter.Stream(d.scratch)
	}
	if d.useVoice && d.orb.State() == orb.Speaking {
		d.orb.SetAudioLevel(d.meter.Level())
	} else {
		d.orb.SetAudioLevel(d.manualLevel)
	}
}

// afterFrame logs and records perf stats on the configured interval.
func (d *demo) afterFrame() {
	loop := d.orb.Loop()
	if float64(loop.Time()-d.lastLog) < d.cfg.Telemetry.LogInterval {
		return
	}
	d.lastLog = loop.Time()
	stats := d.perf.Stats()
	slog.Info("perf", "frame", loop.Frames(), "state", d.orb.State().String(), "stats", stats)
	if err := d.out.WritePerf(stats, loop.Frames()); err != nil {
		slog.Warn("failed to write perf", "error", err)
	}
}

func (d *demo) runWindow(ctx context.Context, maxFrames int) error {
	win := renderer.NewWindow(d.cfg.Screen, d.cfg.Glyph, "Nebula")
	defer win.Close()

	o, err := orb.New(win, orb.Options{
		OnReady: func() { slog.Info("orb ready", "mode", "window") },
		Perf:    d.perf,
	})
	if err != nil {
		return err
	}
	defer o.Close()
	d.orb = o
	defer d.closeAudio()

	p := newPanel(d)
	win.SetOverlay(p.draw)

	for n := 0; maxFrames <= 0 || n < maxFrames; n++ {
		if ctx.Err() != nil {
			break
		}
		d.beforeFrame()
		d.perf.RecordFrame()
		if !win.Step() {
			break
		}
		d.afterFrame()
	}
	return nil
}

// headlessScript is the state sequence cycled by headless runs.
var headlessScript = []orb.State{orb.Listening, orb.Processing, orb.Speaking, orb.Idle}

func (d *demo) runHeadless(ctx context.Context, frames int) error {
	host := renderer.NewManualHost(d.cfg.Screen.Width, d.cfg.Screen.Height, 1)
	o, err := orb.New(host, orb.Options{
		OnReady: func() { slog.Info("orb ready", "mode", "headless") },
		Perf:    d.perf,
	})
	if err != nil {
		return err
	}
	defer o.Close()
	d.orb = o

	framesPerState := int(2 / d.cfg.Drift.FrameStep)
	slog.Info("starting headless run", "frames", frames, "frames_per_state", framesPerState)

	for n := 0; n < frames; n++ {
		if ctx.Err() != nil {
			break
		}
		if n%framesPerState == 0 {
			d.setState(headlessScript[(n/framesPerState)%len(headlessScript)])
		}
		d.beforeFrame()
		d.perf.RecordFrame()
		host.Step(1)
		d.afterFrame()
	}

	slog.Info("headless run finished", "frames", o.Loop().Frames(), "visible", host.Backend().LastVisible())
	return nil
}
