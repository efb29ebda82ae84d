package arp

// Humanize jitter ceilings at amount 1.0.
const (
	humanizeTimingSeconds = 0.020
	humanizeVelocityMax   = 15
	humanizeGateMax       = 0.10
)

// StepJitter is the per-step humanize result: a timing offset in samples, a
// velocity offset, and a multiplicative gate ratio.
type StepJitter struct {
	TimingSamples int
	Velocity      int
	GateRatio     float32
}

// Humanizer derives three per-step offsets from its own fixed-seed stream.
// Exactly three draws are consumed on every evaluated step, including steps
// that end up emitting nothing, so the stream position depends only on the
// number of steps, never on which branch a step took.
type Humanizer struct {
	rng Stream
}

func NewHumanizer() Humanizer {
	return Humanizer{rng: NewStream(HumanizeSeed)}
}

// Reseed rewinds the jitter stream to its fixed initial seed.
func (h *Humanizer) Reseed() {
	h.rng.Reseed()
}

// Next consumes exactly three draws and scales them by amount. Amount 0
// yields exactly zero offsets and a gate ratio of 1 while still consuming
// the draws.
func (h *Humanizer) Next(amount float32, sampleRate float64) StepJitter {
	t := h.rng.NextSigned()
	v := h.rng.NextSigned()
	g := h.rng.NextSigned()
	amount = clampFloat32(amount, 0, 1)
	if amount == 0 {
		return StepJitter{GateRatio: 1}
	}
	return StepJitter{
		TimingSamples: int(float64(t*amount) * humanizeTimingSeconds * sampleRate),
		Velocity:      int(v * amount * humanizeVelocityMax),
		GateRatio:     1 + g*amount*humanizeGateMax,
	}
}

// Skip consumes the step's three draws and discards them. Gated-out steps
// call this so the stream position stays identical to an emitting run.
func (h *Humanizer) Skip() {
	h.rng.NextSigned()
	h.rng.NextSigned()
	h.rng.NextSigned()
}
