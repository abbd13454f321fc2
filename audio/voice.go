package audio

import (
	"math"
	"math/rand"

	"github.com/gopxl/beep"
)

// Voice is a crude speech stand-in: a few harmonics of a pitch that wobbles,
// breathy noise, and a syllable-rate amplitude envelope with pauses.
type Voice struct {
	sr    beep.SampleRate
	pitch float64
	rng   *rand.Rand

	pos   int
	phase float64
}

// Syllable shaping.
const (
	syllableHz   = 4.2
	phraseHz     = 0.35
	vibratoHz    = 5.5
	vibratoDepth = 0.03
	noiseMix     = 0.15
	voiceGain    = 0.3
)

// NewVoice creates a voice at the given base pitch.
func NewVoice(sr beep.SampleRate, pitch float64, rng *rand.Rand) *Voice {
	return &Voice{sr: sr, pitch: pitch, rng: rng}
}

func (v *Voice) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(v.pos) / float64(v.sr)

		freq := v.pitch * (1 + vibratoDepth*math.Sin(2*math.Pi*vibratoHz*t))
		v.phase += freq / float64(v.sr)
		if v.phase >= 1 {
			v.phase -= math.Floor(v.phase)
		}

		var tone float64
		for h := 1; h <= 4; h++ {
			tone += math.Sin(2*math.Pi*v.phase*float64(h)) / float64(h)
		}
		tone += noiseMix * (v.rng.Float64()*2 - 1)

		syllable := math.Max(0, math.Sin(2*math.Pi*syllableHz*t))
		phrase := math.Max(0, math.Sin(2*math.Pi*phraseHz*t)+0.3)
		s := voiceGain * tone * syllable * math.Min(phrase, 1)

		samples[i][0] = s
		samples[i][1] = s
		v.pos++
	}
	return len(samples), true
}

func (v *Voice) Err() error {
	return nil
}
