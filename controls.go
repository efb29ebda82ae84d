package arp

import (
	"math"
	"sync/atomic"
)

type atomicFloat64 struct {
	bits atomic.Uint64
}

func (f *atomicFloat64) Store(v float64) { f.bits.Store(math.Float64bits(v)) }
func (f *atomicFloat64) Load() float64   { return math.Float64frombits(f.bits.Load()) }

type atomicFloat32 struct {
	bits atomic.Uint32
}

func (f *atomicFloat32) Store(v float32) { f.bits.Store(math.Float32bits(v)) }
func (f *atomicFloat32) Load() float32   { return math.Float32frombits(f.bits.Load()) }

// Controls is the cross-thread surface of the engine. Every parameter is a
// plain shared scalar with single-writer/single-reader semantics: the control
// thread stores, the engine thread loads one snapshot per block. No
// cross-field transactional consistency is provided; a momentarily stale
// combination is tolerated.
//
// The dice trigger is the only resource mutated by both parties: the control
// thread raises it, the engine consumes it exactly once via atomic
// test-and-clear.
type Controls struct {
	mode        atomic.Uint32
	octaveRange atomic.Int32
	octaveMode  atomic.Uint32
	tempoSync   atomic.Bool
	syncNote    atomic.Uint32
	rateHz      atomicFloat64
	gatePercent atomicFloat64
	swing       atomicFloat64
	latch       atomic.Uint32
	retrigger   atomic.Uint32
	spice       atomicFloat32
	humanize    atomicFloat32

	dice    atomic.Bool
	enabled atomic.Bool
	running atomic.Bool
}

func (c *Controls) init() {
	c.SetParameters(DefaultParameters())
	c.enabled.Store(true)
}

// SetParameters publishes a full snapshot, field by field.
func (c *Controls) SetParameters(p Parameters) {
	p.Clamp()
	c.mode.Store(uint32(p.Mode))
	c.octaveRange.Store(int32(p.OctaveRange))
	c.octaveMode.Store(uint32(p.OctaveMode))
	c.tempoSync.Store(p.TempoSync)
	c.syncNote.Store(uint32(p.SyncNote))
	c.rateHz.Store(p.RateHz)
	c.gatePercent.Store(p.GatePercent)
	c.swing.Store(p.Swing)
	c.latch.Store(uint32(p.Latch))
	c.retrigger.Store(uint32(p.Retrigger))
	c.spice.Store(p.Spice)
	c.humanize.Store(p.Humanize)
}

// Parameters assembles the current snapshot. Engine thread only.
func (c *Controls) Parameters() Parameters {
	p := Parameters{
		Mode:        Mode(c.mode.Load()),
		OctaveRange: int(c.octaveRange.Load()),
		OctaveMode:  OctaveMode(c.octaveMode.Load()),
		TempoSync:   c.tempoSync.Load(),
		SyncNote:    NoteValue(c.syncNote.Load()),
		RateHz:      c.rateHz.Load(),
		GatePercent: c.gatePercent.Load(),
		Swing:       c.swing.Load(),
		Latch:       LatchMode(c.latch.Load()),
		Retrigger:   RetriggerMode(c.retrigger.Load()),
		Spice:       c.spice.Load(),
		Humanize:    c.humanize.Load(),
	}
	p.Clamp()
	return p
}

// TriggerDice raises the one-shot regeneration flag. Raising it again before
// the engine has consumed it coalesces into a single regeneration.
func (c *Controls) TriggerDice() {
	c.dice.Store(true)
}

func (c *Controls) takeDice() bool {
	return c.dice.CompareAndSwap(true, false)
}

// SetEnabled turns event emission on or off. Disabling while notes sound
// queues the necessary terminations instead of dropping them.
func (c *Controls) SetEnabled(enabled bool) {
	c.enabled.Store(enabled)
}

func (c *Controls) Enabled() bool {
	return c.enabled.Load()
}

// SetRunning switches the transport between Stopped and Playing.
func (c *Controls) SetRunning(running bool) {
	c.running.Store(running)
}

func (c *Controls) Running() bool {
	return c.running.Load()
}
