package pipeline

import (
	"image"
	"image/color"
	"math"

	"github.com/pthm-cable/nebula/config"
)

// GlyphIntensity returns the brightness of the point glyph at normalized
// radius r (0 center, 1 edge). It is zero at and beyond the edge and falls
// off as a power curve with an extra core boost near the center. The sum is
// divided by its peak (1 + CoreBoost) so the core stays a peak rather than
// saturating into a flat disc.
func GlyphIntensity(r float32, cfg config.GlyphConfig) float32 {
	if r >= 1 || math.IsNaN(float64(r)) {
		return 0
	}
	if r < 0 {
		r = 0
	}
	v := float32(math.Pow(float64(1-r), float64(cfg.FalloffPower)))
	if cfg.CoreRadius > 0 && r < cfg.CoreRadius {
		v += cfg.CoreBoost * (1 - smoothstep(0, cfg.CoreRadius, r))
	}
	return v / (1 + max(cfg.CoreBoost, 0))
}

// DepthFade dims particles behind the orb center. It is 1 up to FadeNear and
// eases down to FadeMin at FadeFar.
func DepthFade(depth float32, cfg config.GlyphConfig) float32 {
	if cfg.FadeFar <= cfg.FadeNear {
		return 1
	}
	t := smoothstep(cfg.FadeNear, cfg.FadeFar, depth)
	return 1 - t*(1-cfg.FadeMin)
}

// GlyphImage bakes the glyph into a white square image whose alpha carries
// the intensity.
func GlyphImage(cfg config.GlyphConfig) *image.NRGBA {
	size := max(cfg.TextureSize, 2)
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	half := float32(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := (float32(x) + 0.5 - half) / half
			dy := (float32(y) + 0.5 - half) / half
			r := float32(math.Sqrt(float64(dx*dx + dy*dy)))
			a := GlyphIntensity(r, cfg)
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: uint8(a*255 + 0.5)})
		}
	}
	return img
}

func smoothstep(e0, e1, x float32) float32 {
	t := clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}
