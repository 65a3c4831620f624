package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/field-medic/injury"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// Clip timings
const (
	stepNoteDuration   = 90 * time.Millisecond
	stepAttack         = 5 * time.Millisecond
	stepRelease        = 60 * time.Millisecond
	healedNoteDuration = 140 * time.Millisecond
	healedAttack       = 8 * time.Millisecond
	healedRelease      = 100 * time.Millisecond
	clickDuration      = 30 * time.Millisecond
)

// oscillator generates raw audio waves
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a new oscillator for wave generation
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies linear attack and release to a stream
type envelope struct {
	streamer     beep.Streamer
	position     int
	attack       int
	release      int
	totalSamples int
}

// NewEnvelope shapes s with an attack ramp and a release tail within duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:     s,
		attack:       rate.N(attack),
		release:      rate.N(release),
		totalSamples: rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	releaseStart := e.totalSamples - e.release
	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if e.release > 0 && e.position >= releaseStart {
			vol = float64(e.totalSamples-e.position) / float64(e.release)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales linear gain; zero gain is silent since log2(0) is -Inf
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

func note(freq float64, d, attack, release time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewEnvelope(NewOscillator(freq, d, wave, rate), d, attack, release, rate)
}

// createStepSound is a short rising two-note chime for a completed treatment step
func createStepSound(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		note(659.25, stepNoteDuration, stepAttack, stepRelease, WaveSine, rate), // E5
		note(987.77, stepNoteDuration, stepAttack, stepRelease, WaveSine, rate), // B5
	)
}

// createHealedSound is a major arpeggio with an octave overtone on the last note
func createHealedSound(rate beep.SampleRate) beep.Streamer {
	last := beep.Mix(
		newVolume(note(1046.50, 2*healedNoteDuration, healedAttack, 2*healedRelease, WaveSine, rate), 0.7), // C6
		newVolume(note(2093.00, 2*healedNoteDuration, healedAttack, 2*healedRelease, WaveSine, rate), 0.3),
	)
	return beep.Seq(
		note(523.25, healedNoteDuration, healedAttack, healedRelease, WaveSquare, rate), // C5
		note(659.25, healedNoteDuration, healedAttack, healedRelease, WaveSquare, rate), // E5
		note(783.99, healedNoteDuration, healedAttack, healedRelease, WaveSquare, rate), // G5
		last,
	)
}

// createClickSound is a short noise burst for clips without a dedicated effect
func createClickSound(rate beep.SampleRate) beep.Streamer {
	return note(0, clickDuration, 0, clickDuration/2, WaveNoise, rate)
}

// Clip returns the streamer for a named clip at the configured gain
func Clip(name string, cfg Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	var s beep.Streamer
	switch name {
	case injury.SoundStepComplete:
		s = createStepSound(rate)
	case injury.SoundCompletelyHealed:
		s = createHealedSound(rate)
	default:
		s = createClickSound(rate)
	}
	return newVolume(s, cfg.clipVolume(name))
}
