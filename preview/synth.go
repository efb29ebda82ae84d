// Package preview renders engine events to audio with a deliberately small
// fixed-voice synth, so the arpeggiator can be heard without external gear.
package preview

import (
	"math"

	arp "github.com/rolandzwaga/krate-audio-sub018"
	"github.com/viterin/vek/vek32"
)

const (
	attackSeconds  = 0.002
	releaseSeconds = 0.040
	silenceLevel   = 1e-4
	defaultGain    = 0.25
)

// Synth is a per-pitch sine voice bank. One voice per MIDI pitch keeps voice
// allocation trivial: a note-on (re)triggers the pitch's voice, a note-off
// releases it.
type Synth struct {
	sampleRate float64
	attack     float32
	release    float32
	gain       float32
	voices     [128]voice
	mono       []float32
}

type voice struct {
	phase  float64
	level  float32
	target float32
	gated  bool
	sounds bool
}

func NewSynth(sampleRate float64) *Synth {
	return &Synth{
		sampleRate: sampleRate,
		attack:     float32(1 / (attackSeconds * sampleRate)),
		release:    float32(1 / (releaseSeconds * sampleRate)),
		gain:       defaultGain,
	}
}

// SetGain sets the master gain applied to the rendered block.
func (s *Synth) SetGain(gain float32) {
	if gain < 0 {
		gain = 0
	}
	s.gain = gain
}

func pitchHz(pitch byte) float64 {
	return 440 * math.Pow(2, (float64(pitch)-69)/12)
}

func (s *Synth) noteOn(pitch, velocity byte) {
	v := &s.voices[pitch]
	if !v.sounds {
		v.phase = 0
		v.level = 0
	}
	v.target = float32(velocity) / 127
	v.gated = true
	v.sounds = true
}

func (s *Synth) noteOff(pitch byte) {
	s.voices[pitch].gated = false
}

// Render synthesizes nframes samples into out (interleaved stereo, length
// 2*nframes), consuming events at their frame offsets. Events must be sorted
// by frame, which is how the engine returns them.
func (s *Synth) Render(events []arp.Event, out []float32, nframes int) {
	if cap(s.mono) < nframes {
		s.mono = make([]float32, nframes)
	}
	mono := s.mono[:nframes]
	vek32.Zeros_Into(mono, nframes)

	next := 0
	for frame := 0; frame < nframes; frame++ {
		for next < len(events) && events[next].Frame <= frame {
			ev := events[next]
			next++
			if ev.On {
				s.noteOn(ev.Pitch, ev.Velocity)
			} else {
				s.noteOff(ev.Pitch)
			}
		}
		var sum float32
		for p := range s.voices {
			v := &s.voices[p]
			if !v.sounds {
				continue
			}
			if v.gated {
				v.level += s.attack * v.target
				if v.level > v.target {
					v.level = v.target
				}
			} else {
				v.level -= s.release
				if v.level < silenceLevel {
					v.level = 0
					v.sounds = false
					continue
				}
			}
			sum += v.level * float32(math.Sin(2*math.Pi*v.phase))
			v.phase += pitchHz(byte(p)) / s.sampleRate
			if v.phase >= 1 {
				v.phase -= 1
			}
		}
		mono[frame] = sum
	}

	vek32.MulNumber_Inplace(mono, s.gain)
	for i, v := range mono {
		out[2*i] = v
		out[2*i+1] = v
	}
}

// Active reports how many voices are currently sounding.
func (s *Synth) Active() int {
	n := 0
	for p := range s.voices {
		if s.voices[p].sounds {
			n++
		}
	}
	return n
}
