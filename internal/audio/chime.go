// Package audio plays a short chime when the cloud switches template.
package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/coreman2200/particlecloud/internal/gesture"
)

const SampleRate = beep.SampleRate(44100)

const (
	lowHz    = 660.0
	highHz   = 990.0
	lowDur   = 90 * time.Millisecond
	highDur  = 140 * time.Millisecond
	attack   = 5 * time.Millisecond
	release  = 60 * time.Millisecond
	buzzHz   = 110.0
	buzzDur  = 250 * time.Millisecond
	buzzGain = 0.4
)

// Speaker is the output device; the beep speaker package satisfies it
// through Open.
type Speaker interface {
	Play(s ...beep.Streamer)
}

type deviceSpeaker struct{}

func (deviceSpeaker) Play(s ...beep.Streamer) { speaker.Play(s...) }

// Chime is a status sink that sounds on accepted switches and once when the
// gesture source becomes unavailable.
type Chime struct {
	sp     Speaker
	volume float64

	mu     sync.Mutex
	buzzed bool
}

// Open initializes the default audio device.
func Open(volume float64) (*Chime, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	return New(deviceSpeaker{}, volume), nil
}

func New(sp Speaker, volume float64) *Chime { return &Chime{sp: sp, volume: volume} }

func (c *Chime) Name() string { return "audio" }

func (c *Chime) Status(st gesture.Status) {
	switch st.Kind {
	case gesture.StatusSwitched:
		if s, err := Switch(SampleRate, c.volume); err == nil {
			c.sp.Play(s)
		}
	case gesture.StatusUnavailable:
		c.mu.Lock()
		first := !c.buzzed
		c.buzzed = true
		c.mu.Unlock()
		if !first {
			return
		}
		if s, err := Buzz(SampleRate, c.volume); err == nil {
			c.sp.Play(s)
		}
	}
}

// Switch is a rising two-note chime.
func Switch(rate beep.SampleRate, volume float64) (beep.Streamer, error) {
	lo, err := Tone(lowHz, lowDur, rate)
	if err != nil {
		return nil, err
	}
	hi, err := Tone(highHz, highDur, rate)
	if err != nil {
		return nil, err
	}
	return Gain(beep.Seq(
		Shape(lo, lowDur, attack, release, rate),
		Shape(hi, highDur, attack, release, rate),
	), volume), nil
}

// Buzz is a low warning tone.
func Buzz(rate beep.SampleRate, volume float64) (beep.Streamer, error) {
	t, err := Tone(buzzHz, buzzDur, rate)
	if err != nil {
		return nil, err
	}
	return Gain(Shape(t, buzzDur, attack, release, rate), volume*buzzGain), nil
}

// Tone is a sine at freq lasting d. freq must stay below half the rate.
func Tone(freq float64, d time.Duration, rate beep.SampleRate) (beep.Streamer, error) {
	sine, err := generators.SineTone(rate, freq)
	if err != nil {
		return nil, fmt.Errorf("tone %vHz: %w", freq, err)
	}
	return beep.Take(rate.N(d), sine), nil
}

type shape struct {
	s   beep.Streamer
	pos int

	att, rel, total int
}

// Shape applies a linear attack and release over a stream of length d.
func Shape(s beep.Streamer, d, att, rel time.Duration, rate beep.SampleRate) beep.Streamer {
	return &shape{s: s, att: rate.N(att), rel: rate.N(rel), total: rate.N(d)}
}

func (e *shape) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := 0; i < n; i++ {
		g := 1.0
		if e.att > 0 && e.pos < e.att {
			g = float64(e.pos) / float64(e.att)
		}
		if left := e.total - e.pos; e.rel > 0 && left < e.rel {
			g = math.Min(g, math.Max(0, float64(left)/float64(e.rel)))
		}
		samples[i][0] *= g
		samples[i][1] *= g
		e.pos++
	}
	return n, ok
}

func (e *shape) Err() error { return e.s.Err() }

// Gain scales s linearly; zero or less is silent.
func Gain(s beep.Streamer, g float64) beep.Streamer {
	if g <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(g)}
}
