package pipeline

import (
	"math"
	"testing"

	"github.com/pthm-cable/nebula/config"
)

func TestGlyphIntensity(t *testing.T) {
	cfg := config.Cfg().Glyph

	if v := GlyphIntensity(0, cfg); v != 1 {
		t.Errorf("expected full intensity at center, got %f", v)
	}
	for _, r := range []float32{1, 1.2, 5} {
		if v := GlyphIntensity(r, cfg); v != 0 {
			t.Errorf("expected transparent at r=%f, got %f", r, v)
		}
	}

	prev := float32(2)
	for i := 0; i <= 100; i++ {
		r := float32(i) / 100
		v := GlyphIntensity(r, cfg)
		if v > prev {
			t.Fatalf("intensity increased at r=%f: %f > %f", r, v, prev)
		}
		prev = v
	}
}

func TestGlyphFalloffIsNotLinear(t *testing.T) {
	cfg := config.Cfg().Glyph
	cfg.CoreBoost = 0

	v := GlyphIntensity(0.5, cfg)
	want := float32(math.Pow(0.5, float64(cfg.FalloffPower)))
	if math.Abs(float64(v-want)) > 1e-5 {
		t.Errorf("expected power falloff %f at half radius, got %f", want, v)
	}
	if v >= 0.5 {
		t.Errorf("expected falloff steeper than linear, got %f", v)
	}
}

func TestCoreBoost(t *testing.T) {
	cfg := config.Cfg().Glyph
	plain := cfg
	plain.CoreBoost = 0

	r := cfg.CoreRadius / 2
	// Normalized, the boost shows up relative to the halo.
	outside := (cfg.CoreRadius + 1) / 2
	if GlyphIntensity(r, cfg)/GlyphIntensity(outside, cfg) <= GlyphIntensity(r, plain)/GlyphIntensity(outside, plain) {
		t.Error("expected core boost to brighten the center relative to the halo")
	}
	want := GlyphIntensity(outside, plain) / (1 + cfg.CoreBoost)
	if d := math.Abs(float64(GlyphIntensity(outside, cfg) - want)); d > 1e-6 {
		t.Errorf("expected only normalization outside the core, got %f want %f", GlyphIntensity(outside, cfg), want)
	}
}

func TestCoreHasNoPlateau(t *testing.T) {
	cfg := config.Cfg().Glyph
	cfg.CoreBoost = 2

	prev := GlyphIntensity(0, cfg)
	for i := 1; i <= 8; i++ {
		r := cfg.CoreRadius * float32(i) / 8
		v := GlyphIntensity(r, cfg)
		if v >= prev {
			t.Fatalf("expected strictly falling intensity in the core at r=%f: %f >= %f", r, v, prev)
		}
		prev = v
	}
}

func TestDepthFade(t *testing.T) {
	cfg := config.Cfg().Glyph

	if v := DepthFade(cfg.FadeNear-1, cfg); v != 1 {
		t.Errorf("expected no fade in front, got %f", v)
	}
	if v := DepthFade(cfg.FadeFar+1, cfg); math.Abs(float64(v-cfg.FadeMin)) > 1e-6 {
		t.Errorf("expected floor %f behind, got %f", cfg.FadeMin, v)
	}
	mid := DepthFade((cfg.FadeNear+cfg.FadeFar)/2, cfg)
	if mid >= 1 || mid <= cfg.FadeMin {
		t.Errorf("expected partial fade mid-range, got %f", mid)
	}
}

func TestGlyphImage(t *testing.T) {
	cfg := config.Cfg().Glyph
	img := GlyphImage(cfg)

	size := cfg.TextureSize
	if img.Bounds().Dx() != size || img.Bounds().Dy() != size {
		t.Fatalf("expected %dx%d image, got %v", size, size, img.Bounds())
	}
	if a := img.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("expected transparent corner, got alpha %d", a)
	}
	center := img.NRGBAAt(size/2, size/2).A
	if center < 240 {
		t.Errorf("expected near-opaque center, got alpha %d", center)
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if a := img.NRGBAAt(x, y).A; a > center {
				t.Fatalf("pixel (%d,%d) alpha %d brighter than center %d", x, y, a, center)
			}
		}
	}
}
