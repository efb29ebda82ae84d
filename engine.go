package arp

// accentVelocityBoost is added to the scaled velocity of accented steps,
// before the humanize offset.
const accentVelocityBoost = 20

// scheduleCapacity bounds the queue of note-ons/offs that have been decided
// but land in a later block (ratchet sub-steps, gates longer than the block).
const scheduleCapacity = 2 * MaxEventsPerBlock

// Engine is the arpeggiator orchestrator. It owns the held-note buffer, the
// note selector, the six pattern lanes, the generative overlay, the humanizer
// and the transport state. Per audio block it advances a sample counter,
// detects step boundaries and runs the step evaluation for each boundary,
// appending events to a fixed-capacity output buffer.
//
// Process is driven by a single audio thread. Everything reachable through
// Controls is safe to touch from a control thread; all other mutating methods
// must be called between blocks.
type Engine struct {
	sampleRate float64
	controls   Controls
	params     Parameters

	held       HeldNotes
	selector   Selector
	overlay    Overlay
	overlayRng Stream
	humanizer  Humanizer

	velocityLane  Lane[float32]
	gateLane      Lane[float32]
	pitchLane     Lane[int]
	modifierLane  Lane[StepFlags]
	ratchetLane   Lane[int]
	conditionLane Lane[int]

	conditions ConditionEvaluator

	// StepGate is the externally-defined rhythmic gating predicate: steps for
	// which it returns false are evaluated silently (lanes advance, humanizer
	// draws are consumed, nothing is emitted). nil means every step is active.
	StepGate func(step int) bool

	enabled          bool
	running          bool
	firstStepPending bool
	samplePos        int
	stepLen          int
	swingUp          bool
	stepCount        int

	// schedule holds decided-but-not-yet-due events, frames relative to the
	// current block start. active counts emitted note-ons per pitch so a stop
	// can terminate exactly what is sounding.
	schedule     [scheduleCapacity]Event
	numScheduled int
	active       [128]int8

	events    [MaxEventsPerBlock]Event
	numEvents int

	noteBuf   [MaxHeldNotes]HeldNote
	selectBuf [MaxHeldNotes]SelectedNote
}

// NewEngine creates an engine for the given sample rate. conditions may be
// nil, in which case every trigger condition fires.
func NewEngine(sampleRate float64, conditions ConditionEvaluator) *Engine {
	if conditions == nil {
		conditions = AlwaysCondition
	}
	e := &Engine{
		sampleRate: sampleRate,
		selector:   NewSelector(),
		overlay:    NewOverlay(),
		overlayRng: NewStream(OverlaySeed),
		humanizer:  NewHumanizer(),
		conditions: conditions,

		velocityLane:  NewLane[float32](1),
		gateLane:      NewLane[float32](1),
		pitchLane:     NewLane[int](0),
		modifierLane:  NewLane[StepFlags](0),
		ratchetLane:   NewLane[int](1),
		conditionLane: NewLane[int](ConditionAlways),
	}
	e.controls.init()
	e.params = e.controls.Parameters()
	return e
}

// Controls returns the cross-thread control surface.
func (e *Engine) Controls() *Controls {
	return &e.controls
}

func (e *Engine) VelocityLane() *Lane[float32]   { return &e.velocityLane }
func (e *Engine) GateLane() *Lane[float32]       { return &e.gateLane }
func (e *Engine) PitchLane() *Lane[int]          { return &e.pitchLane }
func (e *Engine) ModifierLane() *Lane[StepFlags] { return &e.modifierLane }
func (e *Engine) RatchetLane() *Lane[int]        { return &e.ratchetLane }
func (e *Engine) ConditionLane() *Lane[int]      { return &e.conditionLane }

// ClearLatch drops the latched note set. Call between blocks.
func (e *Engine) ClearLatch() {
	e.held.ClearLatch()
}

// Reset clears the transport state, queues note-offs for anything sounding,
// reseeds both pseudorandom streams and rewinds all lane cursors. The
// held-note buffer and the overlay contents survive: they are musical state,
// not transport state.
func (e *Engine) Reset() {
	e.queueTerminations()
	e.resetTransport()
}

func (e *Engine) resetTransport() {
	e.samplePos = 0
	e.stepLen = 0
	e.swingUp = false
	e.stepCount = 0
	e.firstStepPending = true
	e.overlayRng.Reseed()
	e.humanizer.Reseed()
	e.selector.Reset()
	e.velocityLane.Rewind()
	e.gateLane.Rewind()
	e.pitchLane.Rewind()
	e.modifierLane.Rewind()
	e.ratchetLane.Rewind()
	e.conditionLane.Rewind()
}

// Process consumes the block's note events from ctx, runs the step machinery
// for nframes samples and returns the emitted events ordered by offset. The
// returned slice is valid until the next Process call.
func (e *Engine) Process(nframes int, ctx ProcessContext) []Event {
	e.numEvents = 0
	bpm := 0.0
	if b, ok := ctx.BPM(); ok {
		bpm = b
	}
	e.beginBlock()

	frame := 0
	ev, evOk := ctx.NextEvent(frame)
	for frame < nframes {
		for evOk && ev.Frame <= frame {
			e.handleNoteEvent(ev)
			ev, evOk = ctx.NextEvent(frame)
		}
		if e.running && e.enabled {
			if e.firstStepPending {
				e.firstStepPending = false
				e.samplePos = 0
				e.stepLen = e.swungStepLength(bpm)
				e.evaluateStep(frame)
			} else if e.samplePos >= e.stepLen {
				e.samplePos -= e.stepLen
				e.stepLen = e.swungStepLength(bpm)
				e.evaluateStep(frame)
			}
		}
		next := nframes
		if evOk && ev.Frame > frame && ev.Frame < next {
			next = ev.Frame
		}
		if e.running && e.enabled {
			if d := e.stepLen - e.samplePos; d > 0 && frame+d < next {
				next = frame + d
			}
		}
		if next <= frame {
			next = frame + 1
		}
		if e.running && e.enabled {
			e.samplePos += next - frame
		}
		frame = next
	}
	ctx.FinishBlock(nframes)
	e.drainSchedule(nframes)
	e.sortEvents()
	return e.events[:e.numEvents]
}

func (e *Engine) beginBlock() {
	e.params = e.controls.Parameters()
	e.held.SetLatchMode(e.params.Latch)
	if e.controls.takeDice() {
		e.overlay.Roll(&e.overlayRng, e.conditions.NumCodes())
	}
	enabled := e.controls.Enabled()
	if e.enabled && !enabled {
		e.queueTerminations()
	}
	e.enabled = enabled

	running := e.controls.Running()
	if running && !e.running {
		e.resetTransport()
	} else if !running && e.running {
		e.stopNow()
	}
	e.running = running
}

// stopNow implements the Playing→Stopped edge: timing state is cleared and a
// note-off is scheduled at offset zero for every engine-originated sounding
// note. Held notes and the overlay are untouched, so a restart resumes the
// same chord and pattern.
func (e *Engine) stopNow() {
	e.samplePos = 0
	e.stepLen = 0
	e.swingUp = false
	e.firstStepPending = false
	e.queueTerminations()
}

// queueTerminations replaces the whole schedule with note-offs for currently
// sounding pitches. Note-ons that were decided but not yet emitted are
// dropped along with their note-offs.
func (e *Engine) queueTerminations() {
	e.numScheduled = 0
	for pitch := 0; pitch < 128; pitch++ {
		// the active count itself drops only when the off is emitted
		for k := int8(0); k < e.active[pitch]; k++ {
			e.scheduleEvent(Event{Pitch: byte(pitch), On: false, Frame: 0})
		}
	}
}

func (e *Engine) handleNoteEvent(ev NoteEvent) {
	if ev.On && ev.Velocity > 0 {
		wasEmpty := e.held.Empty()
		e.held.NoteOn(ev.Pitch, ev.Velocity)
		if wasEmpty && e.params.Retrigger == RetriggerNote && e.running {
			// a fresh chord restarts the traversal and fires without waiting
			// out the rest of the current interval
			e.selector.Rewind()
			e.firstStepPending = true
		}
	} else {
		e.held.NoteOff(ev.Pitch)
	}
}

func (e *Engine) swungStepLength(bpm float64) int {
	base := e.params.StepSamples(e.sampleRate, bpm)
	s := e.params.Swing / 100
	f := 1 + s
	if e.swingUp {
		f = 1 - s
	}
	e.swingUp = !e.swingUp
	n := int(float64(base)*f + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

// evaluateStep runs the step evaluation algorithm for one detected boundary
// at the given in-block frame.
func (e *Engine) evaluateStep(frame int) {
	stepIndex := e.stepCount
	e.stepCount++

	// capture the producing index of each overlay-relevant lane before any
	// lane advances; the lanes may have different lengths, hence different
	// current indices
	velIdx := e.velocityLane.PeekIndex()
	gateIdx := e.gateLane.PeekIndex()
	ratchetIdx := e.ratchetLane.PeekIndex()
	condIdx := e.conditionLane.PeekIndex()

	n := e.held.Effective(e.noteBuf[:])
	count := 0
	if n > 0 {
		count = e.selector.Next(e.noteBuf[:n], e.params.Mode, e.params.OctaveRange, e.params.OctaveMode, e.selectBuf[:])
	}
	velScale := e.velocityLane.Advance()
	gateScale := e.gateLane.Advance()
	pitchOffset := e.pitchLane.Advance()
	flags := e.modifierLane.Advance()
	ratchet := e.ratchetLane.Advance()
	condition := e.conditionLane.Advance()

	b := e.params.Spice
	velScale = Blend(velScale, e.overlay.Velocity(velIdx), b)
	gateScale = Blend(gateScale, e.overlay.Gate(gateIdx), b)
	ratchet = BlendRatchet(ratchet, e.overlay.Ratchet(ratchetIdx), b)
	condition = BlendCondition(condition, e.overlay.Condition(condIdx), b)

	// every skip path consumes exactly the three draws an emitting step
	// would, keeping the jitter stream position independent of gating
	if e.StepGate != nil && !e.StepGate(stepIndex) {
		e.humanizer.Skip()
		return
	}
	if !e.conditions.Evaluate(condition) {
		e.humanizer.Skip()
		return
	}
	if flags&FlagRest != 0 {
		e.humanizer.Skip()
		return
	}
	if flags&FlagTie != 0 {
		e.humanizer.Skip()
		e.extendPendingOffs(frame, e.stepLen)
		return
	}
	if count == 0 {
		e.humanizer.Skip()
		return
	}

	jitter := e.humanizer.Next(e.params.Humanize, e.sampleRate)

	subCount := ratchet
	subLen := e.stepLen / subCount
	if subLen < 1 {
		subLen = 1
	}
	gate := float64(gateScale) * e.params.GatePercent / 100 * float64(subLen)
	gate *= float64(jitter.GateRatio)
	gateSamples := int(gate + 0.5)
	if gateSamples < 1 {
		gateSamples = 1
	}

	// early jitter cannot be honored causally, so timing offsets never pull
	// an onset before its boundary. This keeps the output independent of
	// where block borders happen to fall.
	firstOnset := frame + jitter.TimingSamples
	if firstOnset < frame {
		firstOnset = frame
	}
	if flags&FlagSlide != 0 {
		// legato: whatever is still sounding runs right up to the new onset
		e.retargetPendingOffs(frame, firstOnset)
	}

	// when the following step ties or slides, the last hit of this step must
	// still be sounding at the boundary for that step to take it over
	nextFlags := e.modifierLane.At(e.modifierLane.PeekIndex())
	holdToBoundary := nextFlags&(FlagTie|FlagSlide) != 0

	for sub := 0; sub < subCount; sub++ {
		onset := frame + sub*subLen
		if sub == 0 {
			onset = firstOnset
		}
		gateLen := gateSamples
		if holdToBoundary && sub == subCount-1 {
			gateLen = frame + e.stepLen - onset
		}
		for i := 0; i < count; i++ {
			note := e.selectBuf[i]
			pitch := clampInt(int(note.Pitch)+pitchOffset, 0, 127)
			vel := float64(note.Velocity) * float64(velScale)
			if flags&FlagAccent != 0 {
				vel += accentVelocityBoost
			}
			if sub == 0 {
				vel += float64(jitter.Velocity)
			}
			velocity := byte(clampInt(int(vel+0.5), 1, 127))
			e.scheduleNote(byte(pitch), velocity, onset, gateLen)
		}
	}
}

// scheduleNote queues a note-on/note-off pair. A pending note-off for the
// same pitch that would otherwise overlap the new onset is pulled back to the
// onset, so the same pitch never sounds twice at once.
func (e *Engine) scheduleNote(pitch, velocity byte, onset, gateSamples int) {
	if gateSamples < 1 {
		gateSamples = 1
	}
	for i := 0; i < e.numScheduled; i++ {
		s := &e.schedule[i]
		if !s.On && s.Pitch == pitch && s.Frame > onset {
			s.Frame = onset
		}
	}
	e.scheduleEvent(Event{Pitch: pitch, Velocity: velocity, On: true, Frame: onset})
	e.scheduleEvent(Event{Pitch: pitch, On: false, Frame: onset + gateSamples})
}

func (e *Engine) scheduleEvent(ev Event) {
	if e.numScheduled >= scheduleCapacity {
		return
	}
	e.schedule[e.numScheduled] = ev
	e.numScheduled++
}

// extendPendingOffs pushes scheduled note-offs at or after the boundary
// further out. Offs before the boundary were due earlier in the block and are
// not part of the held note.
func (e *Engine) extendPendingOffs(boundary, samples int) {
	for i := 0; i < e.numScheduled; i++ {
		if !e.schedule[i].On && e.schedule[i].Frame >= boundary {
			e.schedule[i].Frame += samples
		}
	}
}

func (e *Engine) retargetPendingOffs(boundary, onset int) {
	for i := 0; i < e.numScheduled; i++ {
		if !e.schedule[i].On && e.schedule[i].Frame >= boundary && e.schedule[i].Frame < onset {
			e.schedule[i].Frame = onset
		}
	}
}

// drainSchedule emits every scheduled event that falls inside this block and
// rebases the rest to the next block.
func (e *Engine) drainSchedule(nframes int) {
	kept := 0
	for i := 0; i < e.numScheduled; i++ {
		ev := e.schedule[i]
		if ev.Frame < nframes {
			e.emit(ev)
		} else {
			ev.Frame -= nframes
			e.schedule[kept] = ev
			kept++
		}
	}
	e.numScheduled = kept
}

// emit appends to the block's output buffer, silently truncating when the
// fixed capacity is exceeded.
func (e *Engine) emit(ev Event) {
	if e.numEvents >= MaxEventsPerBlock {
		return
	}
	if ev.On {
		if e.active[ev.Pitch] < 127 {
			e.active[ev.Pitch]++
		}
	} else if e.active[ev.Pitch] > 0 {
		e.active[ev.Pitch]--
	}
	e.events[e.numEvents] = ev
	e.numEvents++
}

// sortEvents orders the output buffer by frame, note-offs before note-ons at
// equal offsets. Insertion sort: the buffer is small and mostly ordered, and
// the block path must not allocate.
func (e *Engine) sortEvents() {
	for i := 1; i < e.numEvents; i++ {
		for j := i; j > 0 && eventBefore(e.events[j], e.events[j-1]); j-- {
			e.events[j], e.events[j-1] = e.events[j-1], e.events[j]
		}
	}
}

func eventBefore(a, b Event) bool {
	if a.Frame != b.Frame {
		return a.Frame < b.Frame
	}
	return !a.On && b.On
}
