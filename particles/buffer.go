// Package particles holds the immutable per-particle attribute store.
package particles

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/nebula/config"
	"github.com/pthm-cable/nebula/shapes"
)

// Buffer stores one position per shape and one seed per particle. It is built
// once and never written again; accessors hand out the backing slices for
// upload and blending, and callers must treat them as read-only.
//
// Positions are stored flat (x0, y0, z0, x1, ...) so that a whole layer can
// be fed to BLAS routines and GPU uploads without conversion.
type Buffer struct {
	count  int
	seeds  []float32
	layers [shapes.NumKinds][]float32
}

// ParamsFromConfig converts the shapes config section.
func ParamsFromConfig(c config.ShapesConfig) shapes.Params {
	return shapes.Params{
		SphereRadius: c.SphereRadius,
		HeartScale:   c.HeartScale,
		PlanetRadius: c.PlanetRadius,
		RingRadius:   c.RingRadius,
		TorusRadius:  c.TorusRadius,
		TubeRadius:   c.TubeRadius,
		SpiralRadius: c.SpiralRadius,
		SpiralHeight: c.SpiralHeight,
	}
}

// New generates all five shapes for count particles. rng drives both the
// shape jitter and the per-particle seeds.
func New(count int, p shapes.Params, rng *rand.Rand) (*Buffer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("particle buffer: count %d: %w", count, shapes.ErrInvalidArgument)
	}

	b := &Buffer{
		count: count,
		seeds: make([]float32, count),
	}
	for i := range b.seeds {
		b.seeds[i] = rng.Float32()
	}

	for _, kind := range shapes.Kinds {
		pts, err := shapes.Generate(kind, count, p, rng)
		if err != nil {
			return nil, fmt.Errorf("particle buffer: %w", err)
		}
		b.layers[kind] = flatten(pts)
	}
	return b, nil
}

func flatten(pts []mgl32.Vec3) []float32 {
	out := make([]float32, len(pts)*3)
	for i, p := range pts {
		out[i*3] = p[0]
		out[i*3+1] = p[1]
		out[i*3+2] = p[2]
	}
	return out
}

// Count returns the fixed particle count.
func (b *Buffer) Count() int { return b.count }

// Seed returns the seed of particle i.
func (b *Buffer) Seed(i int) float32 { return b.seeds[i] }

// Seeds returns the seed array. Read-only.
func (b *Buffer) Seeds() []float32 { return b.seeds }

// Layer returns the flat positions of one shape. Read-only.
func (b *Buffer) Layer(kind shapes.Kind) []float32 { return b.layers[kind] }

// Position returns particle i's position in the given shape.
func (b *Buffer) Position(kind shapes.Kind, i int) mgl32.Vec3 {
	l := b.layers[kind]
	return mgl32.Vec3{l[i*3], l[i*3+1], l[i*3+2]}
}

// Bytes returns the approximate resident size of the buffer.
func (b *Buffer) Bytes() int {
	return 4 * (len(b.seeds) + shapes.NumKinds*b.count*3)
}
