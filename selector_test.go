package arp_test

import (
	"testing"

	arp "github.com/rolandzwaga/krate-audio-sub018"
)

func chord(ps ...byte) []arp.HeldNote {
	notes := make([]arp.HeldNote, len(ps))
	for i, p := range ps {
		notes[i] = arp.HeldNote{Pitch: p, Velocity: 100, Order: uint32(i + 1)}
	}
	return notes
}

func run(s *arp.Selector, notes []arp.HeldNote, mode arp.Mode, octRange int, octMode arp.OctaveMode, steps int) []byte {
	var dst [arp.MaxHeldNotes]arp.SelectedNote
	var out []byte
	for i := 0; i < steps; i++ {
		n := s.Next(notes, mode, octRange, octMode, dst[:])
		for k := 0; k < n; k++ {
			out = append(out, dst[k].Pitch)
		}
	}
	return out
}

func TestSelectorTraversalOrders(t *testing.T) {
	notes := chord(64, 60, 67) // deliberately unsorted
	for _, tc := range []struct {
		name string
		mode arp.Mode
		want []byte
	}{
		{"up", arp.ModeUp, []byte{60, 64, 67, 60, 64, 67}},
		{"down", arp.ModeDown, []byte{67, 64, 60, 67, 64, 60}},
		{"updown", arp.ModeUpDown, []byte{60, 64, 67, 64, 60, 64}},
		{"downup", arp.ModeDownUp, []byte{67, 64, 60, 64, 67, 64}},
		{"converge", arp.ModeConverge, []byte{60, 67, 64, 60, 67, 64}},
		{"diverge", arp.ModeDiverge, []byte{64, 67, 60, 64, 67, 60}},
		{"asplayed", arp.ModeAsPlayed, []byte{64, 60, 67, 64, 60, 67}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := arp.NewSelector()
			got := run(&s, notes, tc.mode, 1, arp.OctaveSequential, 6)
			if !equalBytes(got, tc.want) {
				t.Errorf("sequence = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSelectorChordEmitsAll(t *testing.T) {
	s := arp.NewSelector()
	got := run(&s, chord(60, 64, 67), arp.ModeChord, 1, arp.OctaveSequential, 2)
	if !equalBytes(got, []byte{60, 64, 67, 60, 64, 67}) {
		t.Errorf("chord sequence = %v", got)
	}
}

func TestSelectorOctaveSequential(t *testing.T) {
	s := arp.NewSelector()
	got := run(&s, chord(60, 64), arp.ModeUp, 2, arp.OctaveSequential, 6)
	want := []byte{60, 64, 72, 76, 60, 64}
	if !equalBytes(got, want) {
		t.Errorf("sequence = %v, want %v", got, want)
	}
}

func TestSelectorOctaveInterleaved(t *testing.T) {
	s := arp.NewSelector()
	got := run(&s, chord(60, 64, 67), arp.ModeUp, 2, arp.OctaveInterleaved, 6)
	want := []byte{60, 76, 67, 72, 64, 79}
	if !equalBytes(got, want) {
		t.Errorf("sequence = %v, want %v", got, want)
	}
}

func TestSelectorOctaveClampsPitch(t *testing.T) {
	s := arp.NewSelector()
	got := run(&s, chord(120), arp.ModeUp, 4, arp.OctaveInterleaved, 4)
	for _, p := range got {
		if p > 127 {
			t.Fatalf("pitch %d above MIDI range", p)
		}
	}
	if got[1] != 127 {
		t.Errorf("octave-shifted pitch = %d, want clamp to 127", got[1])
	}
}

func TestSelectorRandomDeterministic(t *testing.T) {
	a := arp.NewSelector()
	b := arp.NewSelector()
	notes := chord(60, 62, 64, 65, 67)
	ga := run(&a, notes, arp.ModeRandom, 1, arp.OctaveSequential, 64)
	gb := run(&b, notes, arp.ModeRandom, 1, arp.OctaveSequential, 64)
	if !equalBytes(ga, gb) {
		t.Fatal("fresh selectors produced different random traversals")
	}
	for _, p := range ga {
		if p < 60 || p > 67 {
			t.Fatalf("random pick %d outside the held set", p)
		}
	}
}

func TestSelectorWalkMovesByOne(t *testing.T) {
	s := arp.NewSelector()
	notes := chord(60, 62, 64, 65, 67)
	got := run(&s, notes, arp.ModeWalk, 1, arp.OctaveSequential, 200)
	index := func(p byte) int {
		for i, n := range []byte{60, 62, 64, 65, 67} {
			if n == p {
				return i
			}
		}
		t.Fatalf("walk pick %d outside the held set", p)
		return -1
	}
	prev := index(got[0])
	for _, p := range got[1:] {
		cur := index(p)
		if d := cur - prev; d < -1 || d > 1 {
			t.Fatalf("walk jumped from index %d to %d", prev, cur)
		}
		prev = cur
	}
}

func TestSelectorResetRestoresRandomSequence(t *testing.T) {
	s := arp.NewSelector()
	notes := chord(60, 62, 64, 65)
	first := run(&s, notes, arp.ModeRandom, 1, arp.OctaveSequential, 32)
	s.Reset()
	second := run(&s, notes, arp.ModeRandom, 1, arp.OctaveSequential, 32)
	if !equalBytes(first, second) {
		t.Fatal("random traversal not reproducible after reset")
	}
}

func TestSelectorRewindKeepsStream(t *testing.T) {
	s := arp.NewSelector()
	notes := chord(60, 62, 64, 65)
	first := run(&s, notes, arp.ModeRandom, 1, arp.OctaveSequential, 8)
	s.Rewind()
	second := run(&s, notes, arp.ModeRandom, 1, arp.OctaveSequential, 8)
	if equalBytes(first, second) {
		t.Fatal("rewind unexpectedly reset the random stream")
	}
}

func TestSelectorShrinkingChord(t *testing.T) {
	s := arp.NewSelector()
	var dst [arp.MaxHeldNotes]arp.SelectedNote
	full := chord(60, 64, 67, 71)
	for i := 0; i < 3; i++ {
		s.Next(full, arp.ModeUp, 1, arp.OctaveSequential, dst[:])
	}
	// phase is now 3; the set shrinks under it
	if n := s.Next(chord(60, 64), arp.ModeUp, 1, arp.OctaveSequential, dst[:]); n != 1 {
		t.Fatalf("emitted %d notes, want 1", n)
	}
	if dst[0].Pitch != 60 && dst[0].Pitch != 64 {
		t.Fatalf("pick %d outside the shrunken set", dst[0].Pitch)
	}
}

func TestSelectorEmptySet(t *testing.T) {
	s := arp.NewSelector()
	var dst [arp.MaxHeldNotes]arp.SelectedNote
	if n := s.Next(nil, arp.ModeUp, 1, arp.OctaveSequential, dst[:]); n != 0 {
		t.Fatalf("emitted %d notes from an empty set", n)
	}
}
