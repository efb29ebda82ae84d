// Package arp implements a deterministic, sample-accurate MIDI arpeggiator
// engine driven by a fixed-size audio-block callback. The engine consumes
// held-note events and a parameter snapshot per block and emits an ordered
// list of note-on/note-off events with in-block sample offsets; it has no
// awareness of synthesis.
package arp

const (
	// MaxLaneSteps is the fixed capacity of every pattern lane.
	MaxLaneSteps = 32

	// MaxEventsPerBlock is the fixed capacity of the per-block output buffer.
	// Worst case: 16 held notes expanded over 4 octaves in chord mode, plus
	// overlapping terminations from the prior step.
	MaxEventsPerBlock = 128

	// MaxRatchet is the maximum number of sub-steps a step can subdivide into.
	MaxRatchet = 4

	// MaxHeldNotes is the capacity of the held and latched note sets.
	MaxHeldNotes = 16
)

// Event is one note-on or note-off produced by the engine. Frame is the
// sample offset relative to the start of the block that produced it.
type Event struct {
	Pitch    byte
	Velocity byte
	On       bool
	Frame    int
}

// NoteEvent is an incoming note-on/note-off from the host integration, with
// its sample offset relative to the start of the current block.
type NoteEvent struct {
	Frame    int
	On       bool
	Pitch    byte
	Velocity byte
}

// ProcessContext feeds per-block inputs to the engine. NextEvent returns the
// next incoming note event not later than the given frame; FinishBlock tells
// the context how many frames were consumed, so it can rebase its internal
// clock. BPM returns the host tempo, ok = false when the host provides none.
type ProcessContext interface {
	NextEvent(frame int) (event NoteEvent, ok bool)
	FinishBlock(frame int)
	BPM() (bpm float64, ok bool)
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampFloat32(value, min, max float32) float32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
