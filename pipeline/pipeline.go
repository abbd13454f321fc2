// Package pipeline turns the particle buffer and the per-frame uniforms into
// screen-space points. Each particle goes through blend, turbulence,
// breathing, projection and color, in that order.
package pipeline

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/pthm-cable/nebula/camera"
	"github.com/pthm-cable/nebula/config"
	"github.com/pthm-cable/nebula/particles"
	"github.com/pthm-cable/nebula/shapes"
)

// Decorrelation offsets for the three turbulence samples.
var (
	noiseOffsetY = mgl32.Vec3{31.416, 47.853, 12.793}
	noiseOffsetZ = mgl32.Vec3{-19.71, 5.117, 63.29}
)

// Color drift. The two mix factors oscillate at unrelated rates so the
// palette wanders independently of the shape.
const (
	mixDistFreq   = 2.4
	mixAngleFreq  = 1.0
	mixTimeFreq   = 0.45
	mix2DistFreq  = 1.7
	mix2AngleFreq = 2.0
	mix2TimeFreq  = -0.31
	mix2Weight    = 0.6 // share of the second factor in the toward-C blend
	mix2Audio     = 0.4 // share of audio level in the toward-C blend
)

// Size and alpha seed shaping.
const (
	sizeSeedBase  = 0.7
	sizeSeedRange = 0.6
	alphaBase     = 0.5
	alphaSeed     = 0.5
)

// Uniforms is the per-frame state read by every particle. It is passed by
// value so the workers see one consistent snapshot.
type Uniforms struct {
	Time       float32
	AudioLevel float32
	Morph      [shapes.NumKinds]float32
	Pulse      float32
	Colors     [3]colorful.Color

	ModelView  mgl32.Mat4
	Projection mgl32.Mat4
	ViewportW  float32
	ViewportH  float32
	PixelRatio float32
}

// SetCamera fills the camera-derived fields of u.
func (u *Uniforms) SetCamera(c *camera.Camera) {
	u.ModelView = c.ModelView()
	u.Projection = c.Projection()
	u.ViewportW = c.ViewportW
	u.ViewportH = c.ViewportH
	u.PixelRatio = c.PixelRatio
}

// Frame holds one evaluated frame in structure-of-arrays form. Coordinates
// and sizes are framebuffer pixels.
type Frame struct {
	X, Y    []float32
	Depth   []float32
	Size    []float32
	R, G, B []float32
	A       []float32
	Visible []bool

	ViewportW, ViewportH float32
	PixelRatio           float32

	// Base palette color and audio level, for backdrop effects
	Tint   [3]float32
	Energy float32
}

// NewFrame allocates a frame for n particles.
func NewFrame(n int) *Frame {
	return &Frame{
		X:       make([]float32, n),
		Y:       make([]float32, n),
		Depth:   make([]float32, n),
		Size:    make([]float32, n),
		R:       make([]float32, n),
		G:       make([]float32, n),
		B:       make([]float32, n),
		A:       make([]float32, n),
		Visible: make([]bool, n),
	}
}

// Len returns the particle count.
func (f *Frame) Len() int { return len(f.X) }

// VisibleCount returns how many particles will be drawn.
func (f *Frame) VisibleCount() int {
	n := 0
	for _, v := range f.Visible {
		if v {
			n++
		}
	}
	return n
}

// Pipeline evaluates frames for one particle buffer. Run must not be called
// concurrently with itself or Close.
type Pipeline struct {
	buf   *particles.Buffer
	cfg   config.PipelineConfig
	glyph config.GlyphConfig
	noise opensimplex.Noise32

	blended  []float32 // flat xyz after the blend stage
	parallel *parallelState
}

// New creates a pipeline over buf. noiseSeed selects the turbulence field.
func New(buf *particles.Buffer, cfg config.PipelineConfig, glyph config.GlyphConfig, noiseSeed int64) *Pipeline {
	return &Pipeline{
		buf:      buf,
		cfg:      cfg,
		glyph:    glyph,
		noise:    opensimplex.New32(noiseSeed),
		blended:  make([]float32, buf.Count()*3),
		parallel: newParallelState(cfg.Workers),
	}
}

// Reconfigure swaps the tunable constants. Geometry is untouched.
func (p *Pipeline) Reconfigure(cfg config.PipelineConfig, glyph config.GlyphConfig) {
	p.cfg = cfg
	p.glyph = glyph
}

// Count returns the particle count.
func (p *Pipeline) Count() int { return p.buf.Count() }

// Run evaluates every particle into f.
func (p *Pipeline) Run(u Uniforms, f *Frame) {
	f.ViewportW, f.ViewportH, f.PixelRatio = u.ViewportW, u.ViewportH, u.PixelRatio
	fs := p.prepare(u)
	f.Tint, f.Energy = fs.colors[0], u.AudioLevel

	n := p.buf.Count()
	if n < p.cfg.ParallelMinimum || p.parallel.numWorkers == 1 {
		p.computeChunk(0, n, &fs, f)
		return
	}
	p.computeParallel(n, &fs, f)
}

// Close stops the worker goroutines. It is safe to call more than once.
func (p *Pipeline) Close() {
	p.parallel.stopWorkers()
}

// frameState is Uniforms with everything per-frame precomputed.
type frameState struct {
	u Uniforms

	amp        float32 // turbulence amplitude
	noiseShift float32 // time term of the noise coordinate
	breathAmp  float32
	pulseScale float32
	sizeScale  float32 // K · audio growth · pixel ratio
	colors     [3][3]float32
}

func (p *Pipeline) prepare(u Uniforms) frameState {
	fs := frameState{u: u}
	fs.amp = p.cfg.TurbulenceBase + u.AudioLevel*p.cfg.TurbulenceAudio
	fs.noiseShift = u.Time * p.cfg.NoiseTimeScale
	fs.breathAmp = p.cfg.BreathAmount * (1 + u.AudioLevel*p.cfg.BreathAudio)
	fs.pulseScale = u.Pulse * p.cfg.PulseScale
	fs.sizeScale = p.cfg.SizeK * (1 + u.AudioLevel*p.cfg.SizeAudio) * u.PixelRatio
	for j, c := range u.Colors {
		fs.colors[j] = [3]float32{float32(c.R), float32(c.G), float32(c.B)}
	}
	return fs
}

// blend writes Σ w_k · layer_k into the blended buffer for [i0, i1).
func (p *Pipeline) blend(i0, i1 int, morph *[shapes.NumKinds]float32) {
	dst := p.blended[i0*3 : i1*3]
	clear(dst)
	y := blas32.Vector{N: len(dst), Inc: 1, Data: dst}
	for _, k := range shapes.Kinds {
		w := morph[k]
		if w == 0 {
			continue
		}
		x := blas32.Vector{N: len(dst), Inc: 1, Data: p.buf.Layer(k)[i0*3 : i1*3]}
		blas32.Axpy(w, x, y)
	}
}

func (p *Pipeline) computeChunk(i0, i1 int, fs *frameState, f *Frame) {
	u := &fs.u
	p.blend(i0, i1, &u.Morph)

	freq := p.cfg.NoiseFrequency
	for i := i0; i < i1; i++ {
		seed := p.buf.Seed(i)
		pos := mgl32.Vec3{p.blended[i*3], p.blended[i*3+1], p.blended[i*3+2]}

		// Turbulence
		shift := fs.noiseShift + seed*2*math.Pi
		q := pos.Mul(freq).Add(mgl32.Vec3{shift, shift, shift})
		pos = pos.Add(mgl32.Vec3{
			p.noise.Eval3(q[0], q[1], q[2]),
			p.noise.Eval3(q[0]+noiseOffsetY[0], q[1]+noiseOffsetY[1], q[2]+noiseOffsetY[2]),
			p.noise.Eval3(q[0]+noiseOffsetZ[0], q[1]+noiseOffsetZ[1], q[2]+noiseOffsetZ[2]),
		}.Mul(fs.amp))

		// Breathing
		breath := sin32(u.Time*p.cfg.BreathSpeed+seed*math.Pi) * fs.breathAmp
		pos = pos.Mul(1 + breath + fs.pulseScale)

		if !finite3(pos) {
			hide(f, i)
			continue
		}

		// Projection
		sx, sy, depth, ok := camera.ProjectWith(u.ModelView, u.Projection, u.ViewportW, u.ViewportH, pos)
		if !ok {
			hide(f, i)
			continue
		}
		size := fs.sizeScale / depth * (sizeSeedBase + seed*sizeSeedRange)

		// Color
		r, g, b := mixColor(fs, pos, u.Time, u.AudioLevel)
		a := (alphaBase + seed*alphaSeed) * DepthFade(depth, p.glyph)

		if !finite(sx) || !finite(sy) || !finite(size) || !finite(r) || !finite(g) || !finite(b) || !finite(a) {
			hide(f, i)
			continue
		}

		f.X[i], f.Y[i], f.Depth[i], f.Size[i] = sx, sy, depth, size
		f.R[i], f.G[i], f.B[i], f.A[i] = r, g, b, a
		f.Visible[i] = true
	}
}

func mixColor(fs *frameState, pos mgl32.Vec3, t, audio float32) (r, g, b float32) {
	dist := pos.Len()
	angle := float32(math.Atan2(float64(pos[2]), float64(pos[0])))

	m1 := 0.5 + 0.5*sin32(dist*mixDistFreq+angle*mixAngleFreq+t*mixTimeFreq)
	m2 := 0.5 + 0.5*sin32(dist*mix2DistFreq+angle*mix2AngleFreq+t*mix2TimeFreq)
	toC := clamp01(m2*mix2Weight + audio*mix2Audio)

	ca, cb, cc := &fs.colors[0], &fs.colors[1], &fs.colors[2]
	r = lerp(lerp(ca[0], cb[0], m1), cc[0], toC)
	g = lerp(lerp(ca[1], cb[1], m1), cc[1], toC)
	b = lerp(lerp(ca[2], cb[2], m1), cc[2], toC)
	return r, g, b
}

func hide(f *Frame, i int) {
	f.Visible[i] = false
	f.Size[i] = 0
	f.A[i] = 0
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func sin32(x float32) float32 { return float32(math.Sin(float64(x))) }

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finite3(v mgl32.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}
