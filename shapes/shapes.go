// Package shapes generates the point clouds the orb morphs between.
//
// Every generator is a pure function of its count, its size parameters and
// the supplied random source. Randomness only adds secondary jitter; the
// topology of each cloud is fixed by the particle index.
package shapes

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidArgument is returned for non-positive counts or sizes.
var ErrInvalidArgument = errors.New("invalid argument")

// Kind identifies one of the target shapes.
type Kind int

const (
	KindSphere Kind = iota
	KindHeart
	KindSaturn
	KindTorus
	KindSpiral
)

// NumKinds is the number of target shapes.
const NumKinds = 5

// Kinds lists every shape in index order.
var Kinds = [NumKinds]Kind{KindSphere, KindHeart, KindSaturn, KindTorus, KindSpiral}

var kindNames = [NumKinds]string{"sphere", "heart", "saturn", "torus", "spiral"}

func (k Kind) String() string {
	if k < 0 || int(k) >= NumKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k names a known shape.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < NumKinds
}

// ParseKind converts a shape name to a Kind.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q: %w", s, ErrInvalidArgument)
}

// Saturn splits its particles between planet and ring.
const (
	planetFraction = 0.4
	planetFlatten  = 0.95 // vertical squash of the planet
	ringHalfWidth  = 0.2
	ringThickness  = 0.02
)

// Params holds the size parameters of all shapes.
type Params struct {
	SphereRadius float32
	HeartScale   float32
	PlanetRadius float32
	RingRadius   float32
	TorusRadius  float32
	TubeRadius   float32
	SpiralRadius float32
	SpiralHeight float32
}

// Generate builds the point cloud for kind.
func Generate(kind Kind, count int, p Params, rng *rand.Rand) ([]mgl32.Vec3, error) {
	switch kind {
	case KindSphere:
		return Sphere(count, p.SphereRadius, rng)
	case KindHeart:
		return Heart(count, p.HeartScale, rng)
	case KindSaturn:
		return Saturn(count, p.PlanetRadius, p.RingRadius, rng)
	case KindTorus:
		return Torus(count, p.TorusRadius, p.TubeRadius, rng)
	case KindSpiral:
		return Spiral(count, p.SpiralRadius, p.SpiralHeight, rng)
	}
	return nil, fmt.Errorf("generating %v: %w", kind, ErrInvalidArgument)
}

func checkArgs(shape string, count int, sizes ...float32) error {
	if count <= 0 {
		return fmt.Errorf("%s: count %d: %w", shape, count, ErrInvalidArgument)
	}
	for _, s := range sizes {
		if !(s > 0) {
			return fmt.Errorf("%s: size %v: %w", shape, s, ErrInvalidArgument)
		}
	}
	return nil
}

// Sphere distributes count points over a sphere surface with the golden-angle
// spiral, radius jittered by up to ±10%.
func Sphere(count int, radius float32, rng *rand.Rand) ([]mgl32.Vec3, error) {
	if err := checkArgs("sphere", count, radius); err != nil {
		return nil, err
	}
	pts := make([]mgl32.Vec3, count)
	for i := range pts {
		r := radius * (1 + (rng.Float32()-0.5)*0.2)
		pts[i] = fibonacciPoint(i, count, r)
	}
	return pts, nil
}

// fibonacciPoint returns point i of an equal-area spiral of n points.
func fibonacciPoint(i, n int, r float32) mgl32.Vec3 {
	phi := math.Acos(-1 + 2*float64(i)/float64(n))
	theta := math.Sqrt(float64(n)*math.Pi) * phi
	sinPhi := math.Sin(phi)
	return mgl32.Vec3{
		r * float32(math.Cos(theta)*sinPhi),
		r * float32(math.Sin(theta)*sinPhi),
		r * float32(math.Cos(phi)),
	}
}

// Heart sweeps the classic parametric heart curve once around, with a thin
// random depth band and a small volume jitter on every axis.
func Heart(count int, scale float32, rng *rand.Rand) ([]mgl32.Vec3, error) {
	if err := checkArgs("heart", count, scale); err != nil {
		return nil, err
	}
	s := scale / 16
	pts := make([]mgl32.Vec3, count)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / float64(count)
		sin := math.Sin(t)
		x := 16 * sin * sin * sin
		y := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
		z := (rng.Float32() - 0.5) * 0.3 * scale

		pts[i] = mgl32.Vec3{
			float32(x)*s + jitter(rng, 0.04*scale),
			float32(y)*s + jitter(rng, 0.04*scale),
			z + jitter(rng, 0.04*scale),
		}
	}
	return pts, nil
}

// Saturn puts 40% of the points on a slightly flattened planet and the rest
// on a thin flat ring of width ±0.2 around ringRadius.
func Saturn(count int, planetRadius, ringRadius float32, rng *rand.Rand) ([]mgl32.Vec3, error) {
	if err := checkArgs("saturn", count, planetRadius, ringRadius); err != nil {
		return nil, err
	}
	planet := int(float64(count) * planetFraction)
	pts := make([]mgl32.Vec3, count)
	for i := 0; i < planet; i++ {
		p := fibonacciPoint(i, planet, planetRadius)
		p[1] *= planetFlatten
		pts[i] = p
	}
	for i := planet; i < count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		r := ringRadius + (rng.Float32()*2-1)*ringHalfWidth
		pts[i] = mgl32.Vec3{
			r * float32(math.Cos(angle)),
			(rng.Float32() - 0.5) * ringThickness,
			r * float32(math.Sin(angle)),
		}
	}
	return pts, nil
}

// Torus lays points on a torus in the xz plane. The ring angle sweeps once
// across the index; the tube angle is random.
func Torus(count int, radius, tubeRadius float32, rng *rand.Rand) ([]mgl32.Vec3, error) {
	if err := checkArgs("torus", count, radius, tubeRadius); err != nil {
		return nil, err
	}
	pts := make([]mgl32.Vec3, count)
	for i := range pts {
		u := 2 * math.Pi * float64(i) / float64(count)
		v := rng.Float64() * 2 * math.Pi
		ring := float64(radius) + float64(tubeRadius)*math.Cos(v)
		pts[i] = mgl32.Vec3{
			float32(ring * math.Cos(u)),
			tubeRadius * float32(math.Sin(v)),
			float32(ring * math.Sin(u)),
		}
	}
	return pts, nil
}

// spiralTurns is the number of helix revolutions.
const spiralTurns = 4

// Spiral builds a 4-turn helix whose radius grows linearly from the bottom to
// the top, spanning [-height/2, height/2].
func Spiral(count int, radius, height float32, rng *rand.Rand) ([]mgl32.Vec3, error) {
	if err := checkArgs("spiral", count, radius, height); err != nil {
		return nil, err
	}
	pts := make([]mgl32.Vec3, count)
	denom := float64(count - 1)
	if denom == 0 {
		denom = 1
	}
	for i := range pts {
		t := float64(i) / denom
		a := t * spiralTurns * 2 * math.Pi
		r := float64(radius) * t
		pts[i] = mgl32.Vec3{
			float32(r*math.Cos(a)) + jitter(rng, 0.03),
			-height/2 + float32(t)*height + jitter(rng, 0.03),
			float32(r*math.Sin(a)) + jitter(rng, 0.03),
		}
	}
	return pts, nil
}

// jitter returns a uniform offset in [-amount, amount).
func jitter(rng *rand.Rand, amount float32) float32 {
	return (rng.Float32()*2 - 1) * amount
}
