package renderer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nebula/config"
	"github.com/pthm-cable/nebula/particles"
	"github.com/pthm-cable/nebula/pipeline"
)

// RaylibBackend draws each particle as a textured soft glyph with additive
// blending. It must be used from the thread that owns the raylib window.
type RaylibBackend struct {
	glyphCfg config.GlyphConfig
	glyph    rl.Texture2D
	src      rl.Rectangle
	backdrop Backdrop

	initialized bool
}

// NewRaylibBackend creates a backend. Nothing is loaded until Upload.
func NewRaylibBackend(glyph config.GlyphConfig) *RaylibBackend {
	return &RaylibBackend{glyphCfg: glyph}
}

// Upload bakes the glyph texture. Particle attributes stay in main memory
// where the pipeline evaluates them.
func (r *RaylibBackend) Upload(buf *particles.Buffer) error {
	if r.initialized {
		return nil
	}

	img := rl.NewImageFromImage(pipeline.GlyphImage(r.glyphCfg))
	r.glyph = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(r.glyph, rl.FilterBilinear)

	r.src = rl.Rectangle{Width: float32(r.glyph.Width), Height: float32(r.glyph.Height)}
	r.backdrop.Init()
	r.initialized = true

	slog.Debug("orb glyph loaded", "texture_size", r.glyph.Width, "particle_bytes", buf.Bytes())
	return nil
}

// Resize is a no-op; raylib tracks the window size itself.
func (r *RaylibBackend) Resize(w, h int, pixelRatio float32) {}

// Draw renders all visible particles into the current render target.
// Callers own BeginDrawing/EndDrawing or BeginTextureMode/EndTextureMode.
func (r *RaylibBackend) Draw(f *pipeline.Frame) error {
	if !r.initialized {
		return nil
	}

	// Frames are in framebuffer pixels; raylib draws in logical pixels.
	inv := float32(1)
	if f.PixelRatio > 0 {
		inv = 1 / f.PixelRatio
	}

	r.backdrop.Draw(f.ViewportW, f.ViewportH, f.PixelRatio, f.Tint, f.Energy)

	rl.BeginBlendMode(rl.BlendAdditive)
	for i := 0; i < f.Len(); i++ {
		if !f.Visible[i] {
			continue
		}
		size := f.Size[i] * inv
		if size < 0.5 {
			continue
		}
		dst := rl.Rectangle{
			X:      f.X[i]*inv - size/2,
			Y:      f.Y[i]*inv - size/2,
			Width:  size,
			Height: size,
		}
		tint := rl.Color{
			R: unit8(f.R[i]),
			G: unit8(f.G[i]),
			B: unit8(f.B[i]),
			A: unit8(f.A[i]),
		}
		rl.DrawTexturePro(r.glyph, r.src, dst, rl.Vector2{}, 0, tint)
	}
	rl.EndBlendMode()
	return nil
}

// Release unloads the glyph texture and the backdrop shader.
func (r *RaylibBackend) Release() error {
	if r.initialized {
		rl.UnloadTexture(r.glyph)
		r.backdrop.Unload()
		r.initialized = false
	}
	return nil
}

func unit8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
