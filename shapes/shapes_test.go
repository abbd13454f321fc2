package shapes

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/stat"
)

const testCount = 40000

func radii(pts []mgl32.Vec3) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = float64(p.Len())
	}
	return out
}

func TestSphereRadiusBounds(t *testing.T) {
	pts, err := Sphere(testCount, 1, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Sphere: %v", err)
	}
	if len(pts) != testCount {
		t.Fatalf("expected %d points, got %d", testCount, len(pts))
	}
	for i, p := range pts {
		d := p.Len()
		if d < 0.9-1e-5 || d > 1.1+1e-5 {
			t.Fatalf("point %d at distance %f outside [0.9, 1.1]", i, d)
		}
	}

	mean := stat.Mean(radii(pts), nil)
	if math.Abs(mean-1) > 0.01 {
		t.Errorf("expected mean radius ~1, got %f", mean)
	}
}

func TestSphereIsEqualArea(t *testing.T) {
	pts, err := Sphere(testCount, 1, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatal(err)
	}
	// Equal-area sampling puts half the points in each hemisphere.
	var upper int
	for _, p := range pts {
		if p.Z() > 0 {
			upper++
		}
	}
	frac := float64(upper) / testCount
	if math.Abs(frac-0.5) > 0.01 {
		t.Errorf("expected half the points above the equator, got %f", frac)
	}
}

func TestGeneratorsRepeatStatistics(t *testing.T) {
	p := Params{
		SphereRadius: 1, HeartScale: 1,
		PlanetRadius: 0.6, RingRadius: 1.3,
		TorusRadius: 0.9, TubeRadius: 0.3,
		SpiralRadius: 1.1, SpiralHeight: 2,
	}
	for _, kind := range Kinds {
		a, err := Generate(kind, 5000, p, rand.New(rand.NewSource(10)))
		if err != nil {
			t.Fatalf("%v: %v", kind, err)
		}
		b, err := Generate(kind, 5000, p, rand.New(rand.NewSource(99)))
		if err != nil {
			t.Fatalf("%v: %v", kind, err)
		}
		ma := stat.Mean(radii(a), nil)
		mb := stat.Mean(radii(b), nil)
		if math.Abs(ma-mb) > 0.02 {
			t.Errorf("%v: mean radius differs across seeds: %f vs %f", kind, ma, mb)
		}
	}
}

func TestSameSeedSameCloud(t *testing.T) {
	a, _ := Heart(1000, 1, rand.New(rand.NewSource(5)))
	b, _ := Heart(1000, 1, rand.New(rand.NewSource(5)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs for identical seeds", i)
		}
	}
}

func TestTorusTubeInvariant(t *testing.T) {
	const radius, tube = 0.9, 0.3
	pts, err := Torus(testCount, radius, tube, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range pts {
		ring := math.Hypot(float64(p.X()), float64(p.Z()))
		if math.Abs(ring-radius) > tube+1e-5 {
			t.Fatalf("point %d off the tube: ring distance %f", i, ring)
		}
	}
}

func TestSaturnSplit(t *testing.T) {
	pts, err := Saturn(testCount, 0.6, 1.3, rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatal(err)
	}

	var planet, ring int
	for _, p := range pts {
		if math.Abs(float64(p.Len())-0.6) < 0.05 {
			planet++
		}
		flat := math.Hypot(float64(p.X()), float64(p.Z()))
		if math.Abs(flat-1.3) < 0.3 && math.Abs(float64(p.Y())) < 0.05 {
			ring++
		}
	}

	planetFrac := float64(planet) / testCount
	ringFrac := float64(ring) / testCount
	if math.Abs(planetFrac-0.4) > 0.01 {
		t.Errorf("expected ~40%% planet points, got %.3f", planetFrac)
	}
	if math.Abs(ringFrac-0.6) > 0.01 {
		t.Errorf("expected ~60%% ring points, got %.3f", ringFrac)
	}
}

func TestSpiralHeightSpan(t *testing.T) {
	const height = 2.0
	pts, err := Spiral(testCount, 1.1, height, rand.New(rand.NewSource(6)))
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := float32(math.Inf(1)), float32(math.Inf(-1))
	for _, p := range pts {
		lo = min(lo, p.Y())
		hi = max(hi, p.Y())
	}
	if lo < -height/2-0.031 || hi > height/2+0.031 {
		t.Errorf("spiral height span [%f, %f] exceeds ±%f plus jitter", lo, hi, height/2)
	}
	// Radius grows with the index.
	first := math.Hypot(float64(pts[10].X()), float64(pts[10].Z()))
	last := math.Hypot(float64(pts[testCount-10].X()), float64(pts[testCount-10].Z()))
	if last <= first {
		t.Errorf("expected radius to grow along the spiral: first %f last %f", first, last)
	}
}

func TestHeartBounds(t *testing.T) {
	pts, err := Heart(testCount, 1, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range pts {
		if math.Abs(float64(p.X())) > 1.05 || math.Abs(float64(p.Z())) > 0.2 {
			t.Fatalf("heart point %d out of bounds: %v", i, p)
		}
	}
}

func TestInvalidArguments(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := []struct {
		name string
		fn   func() error
	}{
		{"sphere zero count", func() error { _, err := Sphere(0, 1, rng); return err }},
		{"sphere negative radius", func() error { _, err := Sphere(10, -1, rng); return err }},
		{"heart negative count", func() error { _, err := Heart(-5, 1, rng); return err }},
		{"saturn zero ring", func() error { _, err := Saturn(10, 0.6, 0, rng); return err }},
		{"torus zero tube", func() error { _, err := Torus(10, 1, 0, rng); return err }},
		{"spiral nan height", func() error { _, err := Spiral(10, 1, float32(math.NaN()), rng); return err }},
		{"unknown kind", func() error { _, err := Generate(Kind(9), 10, Params{}, rng); return err }},
	}
	for _, tc := range cases {
		if err := tc.fn(); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v", tc.name, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("cube"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for unknown shape, got %v", err)
	}
}
