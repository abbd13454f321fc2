package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

const backdropFS = `#version 330
in vec2 fragTexCoord;
out vec4 finalColor;

uniform vec2 resolution;
uniform vec3 tint;
uniform float energy;

void main() {
    vec2 uv = gl_FragCoord.xy / resolution - 0.5;
    uv.x *= resolution.x / resolution.y;
    float d = length(uv);
    float halo = exp(-d * d * 9.0) * (0.10 + energy * 0.18);
    finalColor = vec4(tint * halo, 1.0);
}
`

// Backdrop draws a soft halo behind the orb in the current base color,
// brightening with audio.
type Backdrop struct {
	shader        rl.Shader
	resolutionLoc int32
	tintLoc       int32
	energyLoc     int32

	initialized bool
}

// Init compiles the shader (must be called after the raylib window exists).
func (b *Backdrop) Init() {
	if b.initialized {
		return
	}
	b.shader = rl.LoadShaderFromMemory("", backdropFS)
	b.resolutionLoc = rl.GetShaderLocation(b.shader, "resolution")
	b.tintLoc = rl.GetShaderLocation(b.shader, "tint")
	b.energyLoc = rl.GetShaderLocation(b.shader, "energy")
	b.initialized = true
}

// Draw fills a w×h framebuffer with the halo. pixelRatio converts to the
// logical coordinates raylib draws in.
func (b *Backdrop) Draw(w, h, pixelRatio float32, tint [3]float32, energy float32) {
	if !b.initialized || pixelRatio <= 0 {
		return
	}

	rl.SetShaderValue(b.shader, b.resolutionLoc, []float32{w, h}, rl.ShaderUniformVec2)
	rl.SetShaderValue(b.shader, b.tintLoc, tint[:], rl.ShaderUniformVec3)
	rl.SetShaderValue(b.shader, b.energyLoc, []float32{energy}, rl.ShaderUniformFloat)

	rl.BeginShaderMode(b.shader)
	rl.DrawRectangle(0, 0, int32(w/pixelRatio), int32(h/pixelRatio), rl.White)
	rl.EndShaderMode()
}

// Unload frees resources.
func (b *Backdrop) Unload() {
	if b.initialized {
		rl.UnloadShader(b.shader)
		b.initialized = false
	}
}
