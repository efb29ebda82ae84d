package arp

// Mode is the traversal order the selector applies to the effective note set.
type Mode uint8

const (
	ModeUp Mode = iota
	ModeDown
	ModeUpDown
	ModeDownUp
	ModeConverge
	ModeDiverge
	ModeRandom
	ModeWalk
	ModeAsPlayed
	ModeChord
	NumModes
)

// OctaveMode controls how the traversal expands across the octave range.
type OctaveMode uint8

const (
	// OctaveSequential finishes a full pass of the pattern in one octave
	// before advancing to the next.
	OctaveSequential OctaveMode = iota
	// OctaveInterleaved advances the octave round-robin on every step.
	OctaveInterleaved
)

// SelectedNote is one pitch the current step should play.
type SelectedNote struct {
	Pitch    byte
	Velocity byte
}

// Selector computes the pitches for the next step from the effective note
// set. Random and Walk draw from the selector's own fixed-seed stream, so the
// overlay and humanize streams keep their consumption schedules regardless of
// the sequencing mode.
type Selector struct {
	rng     Stream
	phase   int
	walkPos int
	octave  int
	notes   [MaxHeldNotes]HeldNote
}

func NewSelector() Selector {
	return Selector{rng: NewStream(SelectorSeed)}
}

// Rewind restarts the traversal and the octave cursor without touching the
// random stream.
func (s *Selector) Rewind() {
	s.phase = 0
	s.walkPos = 0
	s.octave = 0
}

// Reset rewinds the traversal and restores the random stream to its seed.
func (s *Selector) Reset() {
	s.Rewind()
	s.rng.Reseed()
}

func convergeIndex(k, n int) int {
	if k%2 == 0 {
		return k / 2
	}
	return n - 1 - k/2
}

func (s *Selector) cycleLength(mode Mode, n int) int {
	switch mode {
	case ModeChord:
		return 1
	case ModeUpDown, ModeDownUp:
		if n > 2 {
			return 2*n - 2
		}
		return n
	default:
		return n
	}
}

func (s *Selector) traversalIndex(mode Mode, n int) int {
	switch mode {
	case ModeUp, ModeAsPlayed:
		return s.phase
	case ModeDown:
		return n - 1 - s.phase
	case ModeUpDown:
		if s.phase < n {
			return s.phase
		}
		return 2*n - 2 - s.phase
	case ModeDownUp:
		if s.phase < n {
			return n - 1 - s.phase
		}
		return s.phase - (n - 1)
	case ModeConverge:
		return convergeIndex(s.phase, n)
	case ModeDiverge:
		return convergeIndex(n-1-s.phase, n)
	case ModeRandom:
		return s.rng.NextIntn(n)
	case ModeWalk:
		if s.rng.NextUint64()&1 == 0 {
			s.walkPos--
		} else {
			s.walkPos++
		}
		s.walkPos = clampInt(s.walkPos, 0, n-1)
		return s.walkPos
	default:
		return s.phase
	}
}

// Next advances the selector by one step and writes the selected pitches into
// dst, returning the count. notes is the effective held∪latched set; it is
// copied and ordered internally, so the caller's slice is left untouched.
func (s *Selector) Next(notes []HeldNote, mode Mode, octaveRange int, octaveMode OctaveMode, dst []SelectedNote) int {
	n := copy(s.notes[:], notes)
	if n == 0 {
		return 0
	}
	octaveRange = clampInt(octaveRange, 1, 4)

	// pitch ascending for every mode except as-played, which keeps the order
	// of arrival
	less := func(a, b HeldNote) bool { return a.Pitch < b.Pitch }
	if mode == ModeAsPlayed {
		less = func(a, b HeldNote) bool { return a.Order < b.Order }
	}
	for i := 1; i < n; i++ {
		for j := i; j > 0 && less(s.notes[j], s.notes[j-1]); j-- {
			s.notes[j], s.notes[j-1] = s.notes[j-1], s.notes[j]
		}
	}

	cycle := s.cycleLength(mode, n)
	if s.phase >= cycle {
		s.phase = 0
	}
	if s.octave >= octaveRange {
		s.octave = 0
	}

	count := 0
	emit := func(note HeldNote) {
		if count >= len(dst) {
			return
		}
		pitch := clampInt(int(note.Pitch)+12*s.octave, 0, 127)
		dst[count] = SelectedNote{Pitch: byte(pitch), Velocity: note.Velocity}
		count++
	}
	if mode == ModeChord {
		for i := 0; i < n; i++ {
			emit(s.notes[i])
		}
	} else {
		emit(s.notes[clampInt(s.traversalIndex(mode, n), 0, n-1)])
	}

	s.phase++
	wrapped := s.phase >= cycle
	if wrapped {
		s.phase = 0
	}
	switch octaveMode {
	case OctaveInterleaved:
		s.octave = (s.octave + 1) % octaveRange
	default:
		if wrapped {
			s.octave = (s.octave + 1) % octaveRange
		}
	}
	return count
}
