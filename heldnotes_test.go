package arp_test

import (
	"testing"

	arp "github.com/rolandzwaga/krate-audio-sub018"
)

func effective(h *arp.HeldNotes) []arp.HeldNote {
	var buf [arp.MaxHeldNotes]arp.HeldNote
	n := h.Effective(buf[:])
	return buf[:n]
}

func pitches(notes []arp.HeldNote) []byte {
	p := make([]byte, len(notes))
	for i, n := range notes {
		p[i] = n.Pitch
	}
	return p
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestHeldNotesBasic(t *testing.T) {
	var h arp.HeldNotes
	h.NoteOn(60, 100)
	h.NoteOn(64, 90)
	if got := pitches(effective(&h)); !equalBytes(got, []byte{60, 64}) {
		t.Fatalf("effective = %v, want [60 64]", got)
	}
	h.NoteOff(60)
	if got := pitches(effective(&h)); !equalBytes(got, []byte{64}) {
		t.Fatalf("effective after release = %v, want [64]", got)
	}
	h.NoteOff(64)
	if !h.Empty() {
		t.Fatal("set not empty after releasing all notes")
	}
}

func TestHeldNotesRepeatRefreshesVelocity(t *testing.T) {
	var h arp.HeldNotes
	h.NoteOn(60, 100)
	h.NoteOn(64, 90)
	h.NoteOn(60, 40)
	notes := effective(&h)
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}
	if notes[0].Pitch != 60 || notes[0].Velocity != 40 {
		t.Errorf("repeated note = %+v, want pitch 60 velocity 40", notes[0])
	}
	if notes[0].Order >= notes[1].Order {
		t.Error("repeat changed the hold order")
	}
}

func TestHeldNotesCapacity(t *testing.T) {
	var h arp.HeldNotes
	for p := byte(0); p < arp.MaxHeldNotes+4; p++ {
		h.NoteOn(36+p, 100)
	}
	if n := len(effective(&h)); n != arp.MaxHeldNotes {
		t.Fatalf("effective size = %d, want %d", n, arp.MaxHeldNotes)
	}
}

func TestLatchHoldKeepsReleasedNotes(t *testing.T) {
	var h arp.HeldNotes
	h.SetLatchMode(arp.LatchHold)
	h.NoteOn(60, 100)
	h.NoteOn(64, 100)
	h.NoteOff(60)
	h.NoteOff(64)
	if got := pitches(effective(&h)); !equalBytes(got, []byte{60, 64}) {
		t.Fatalf("latched set = %v, want [60 64]", got)
	}
}

func TestLatchHoldNewChordReplaces(t *testing.T) {
	var h arp.HeldNotes
	h.SetLatchMode(arp.LatchHold)
	h.NoteOn(60, 100)
	h.NoteOff(60)
	// all keys up, so the next note-on starts a fresh chord
	h.NoteOn(67, 100)
	if got := pitches(effective(&h)); !equalBytes(got, []byte{67}) {
		t.Fatalf("effective = %v, want [67]", got)
	}
}

func TestLatchAddAccumulates(t *testing.T) {
	var h arp.HeldNotes
	h.SetLatchMode(arp.LatchAdd)
	h.NoteOn(60, 100)
	h.NoteOff(60)
	h.NoteOn(67, 100)
	h.NoteOff(67)
	if got := pitches(effective(&h)); !equalBytes(got, []byte{60, 67}) {
		t.Fatalf("effective = %v, want [60 67]", got)
	}
	h.ClearLatch()
	if !h.Empty() {
		t.Fatal("set not empty after clearing latch")
	}
}

func TestSetLatchModeCapturesHeld(t *testing.T) {
	var h arp.HeldNotes
	h.NoteOn(48, 100)
	h.SetLatchMode(arp.LatchHold)
	h.NoteOff(48)
	if got := pitches(effective(&h)); !equalBytes(got, []byte{48}) {
		t.Fatalf("effective = %v, want [48]", got)
	}
	h.SetLatchMode(arp.LatchOff)
	if !h.Empty() {
		t.Fatal("latched note survived turning the latch off")
	}
}

func TestEffectiveNoDuplicates(t *testing.T) {
	var h arp.HeldNotes
	h.SetLatchMode(arp.LatchAdd)
	h.NoteOn(60, 100)
	h.NoteOff(60) // now latched
	h.NoteOn(60, 80) // pressed again while latched
	if got := pitches(effective(&h)); !equalBytes(got, []byte{60}) {
		t.Fatalf("effective = %v, want [60]", got)
	}
}
