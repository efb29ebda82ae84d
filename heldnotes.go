package arp

// LatchMode controls what happens to notes after their key is released.
type LatchMode uint8

const (
	// LatchOff keeps only physically-held notes.
	LatchOff LatchMode = iota
	// LatchHold keeps released notes until a new chord is started or the
	// latch is cleared.
	LatchHold
	// LatchAdd keeps released notes indefinitely until the latch is cleared.
	LatchAdd
)

// HeldNote is one entry of the held or latched set. Order is a monotonic
// counter assigned at note-on, so as-played traversal can reconstruct the
// order of arrival.
type HeldNote struct {
	Pitch    byte
	Velocity byte
	Order    uint32
}

// HeldNotes tracks physically-held notes plus an independently preserved
// latched set. The effective set fed to the selector is the union of the two.
// Capacity is fixed; note-ons past capacity are silently dropped.
type HeldNotes struct {
	held       [MaxHeldNotes]HeldNote
	numHeld    int
	latched    [MaxHeldNotes]HeldNote
	numLatched int
	order      uint32
	mode       LatchMode
}

func (h *HeldNotes) findHeld(pitch byte) int {
	for i := 0; i < h.numHeld; i++ {
		if h.held[i].Pitch == pitch {
			return i
		}
	}
	return -1
}

func (h *HeldNotes) findLatched(pitch byte) int {
	for i := 0; i < h.numLatched; i++ {
		if h.latched[i].Pitch == pitch {
			return i
		}
	}
	return -1
}

// NoteOn adds a note to the physically-held set. A repeated pitch refreshes
// the velocity but keeps its original hold order. Under Hold latch, starting
// a new chord (a note-on while no keys are physically held) replaces the
// latched set.
func (h *HeldNotes) NoteOn(pitch, velocity byte) {
	if i := h.findHeld(pitch); i >= 0 {
		h.held[i].Velocity = velocity
		return
	}
	if h.mode == LatchHold && h.numHeld == 0 {
		h.numLatched = 0
	}
	if i := h.findLatched(pitch); i >= 0 {
		// re-pressing a latched note refreshes it in place
		h.latched[i].Velocity = velocity
	}
	if h.numHeld >= MaxHeldNotes {
		return
	}
	h.order++
	h.held[h.numHeld] = HeldNote{Pitch: pitch, Velocity: velocity, Order: h.order}
	h.numHeld++
}

// NoteOff removes a note from the physically-held set. Under Hold or Add
// latch the note persists in the latched set until the latch is cleared.
func (h *HeldNotes) NoteOff(pitch byte) {
	i := h.findHeld(pitch)
	if i < 0 {
		return
	}
	n := h.held[i]
	copy(h.held[i:], h.held[i+1:h.numHeld])
	h.numHeld--
	if h.mode == LatchOff {
		return
	}
	if h.findLatched(pitch) < 0 && h.numLatched < MaxHeldNotes {
		h.latched[h.numLatched] = n
		h.numLatched++
	}
}

// SetLatchMode switches latch behaviour and rebuilds the latched set: turning
// latch off discards it, turning it on captures the currently-held notes so a
// later release keeps them sounding.
func (h *HeldNotes) SetLatchMode(mode LatchMode) {
	if mode == h.mode {
		return
	}
	h.mode = mode
	if mode == LatchOff {
		h.numLatched = 0
		return
	}
	for i := 0; i < h.numHeld && h.numLatched < MaxHeldNotes; i++ {
		if h.findLatched(h.held[i].Pitch) < 0 {
			h.latched[h.numLatched] = h.held[i]
			h.numLatched++
		}
	}
}

func (h *HeldNotes) LatchMode() LatchMode {
	return h.mode
}

// ClearLatch empties the latched set; physically-held notes are unaffected.
func (h *HeldNotes) ClearLatch() {
	h.numLatched = 0
}

// Clear empties both sets.
func (h *HeldNotes) Clear() {
	h.numHeld = 0
	h.numLatched = 0
}

// Effective writes the held∪latched set into dst and returns the number of
// entries. dst must have room for MaxHeldNotes entries.
func (h *HeldNotes) Effective(dst []HeldNote) int {
	n := copy(dst, h.held[:h.numHeld])
	for i := 0; i < h.numLatched && n < len(dst); i++ {
		if h.findHeld(h.latched[i].Pitch) < 0 {
			dst[n] = h.latched[i]
			n++
		}
	}
	return n
}

// Empty reports whether the effective set has no notes.
func (h *HeldNotes) Empty() bool {
	return h.numHeld == 0 && h.numLatched == 0
}
