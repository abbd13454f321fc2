// Package audio turns a sound stream into the 0..1 level the orb reacts to.
package audio

import (
	"math"
	"sync"

	"github.com/gopxl/beep"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/pthm-cable/nebula/config"
)

const minWindow = 32

// Meter passes a stream through unchanged while keeping its most recent
// window of samples. Level reads that window in the frequency domain.
//
// Stream runs on the speaker goroutine; Level is meant for the frame thread.
type Meter struct {
	src          beep.Streamer
	minDB, maxDB float64

	mu     sync.Mutex
	ring   []float64
	next   int
	filled int

	// Frame-thread scratch
	fft    *fourier.FFT
	seq    []float64
	coeffs []complex128
}

// NewMeter wraps src. A nil src makes the meter a sink that callers feed
// through Write.
func NewMeter(cfg config.AudioConfig, src beep.Streamer) *Meter {
	n := max(cfg.WindowSize, minWindow)
	minDB, maxDB := cfg.MinDB, cfg.MaxDB
	if maxDB <= minDB {
		minDB, maxDB = -100, -30
	}
	return &Meter{
		src:   src,
		minDB: minDB,
		maxDB: maxDB,
		ring:  make([]float64, n),
		fft:   fourier.NewFFT(n),
		seq:   make([]float64, n),
	}
}

// Stream implements beep.Streamer.
func (m *Meter) Stream(samples [][2]float64) (n int, ok bool) {
	if m.src == nil {
		clear(samples)
		return len(samples), true
	}
	n, ok = m.src.Stream(samples)
	m.Write(samples[:n])
	return n, ok
}

// Err implements beep.Streamer.
func (m *Meter) Err() error {
	if m.src == nil {
		return nil
	}
	return m.src.Err()
}

// Write records stereo samples, mixed down to mono.
func (m *Meter) Write(samples [][2]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range samples {
		m.ring[m.next] = (s[0] + s[1]) / 2
		m.next = (m.next + 1) % len(m.ring)
	}
	m.filled = min(m.filled+len(samples), len(m.ring))
}

// Reset forgets all recorded samples.
func (m *Meter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.ring)
	m.next, m.filled = 0, 0
}

// Level returns the mean of the Blackman-windowed spectrum, each bin
// converted to decibels and mapped from [minDB, maxDB] onto [0, 1].
// Silence and an empty meter read 0.
func (m *Meter) Level() float32 {
	m.mu.Lock()
	if m.filled == 0 {
		m.mu.Unlock()
		return 0
	}
	// Oldest sample first.
	n := copy(m.seq, m.ring[m.next:])
	copy(m.seq[n:], m.ring[:m.next])
	m.mu.Unlock()

	window.Blackman(m.seq)
	m.coeffs = m.fft.Coefficients(m.coeffs, m.seq)

	scale := 1 / float64(len(m.seq))
	span := m.maxDB - m.minDB
	var sum float64
	for _, c := range m.coeffs {
		mag := math.Hypot(real(c), imag(c)) * scale
		if mag <= 0 {
			continue
		}
		db := 20 * math.Log10(mag)
		sum += math.Max(0, math.Min(1, (db-m.minDB)/span))
	}
	return float32(sum / float64(len(m.coeffs)))
}
