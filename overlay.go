package arp

// Overlay is the generative value layer ("spice") blended against the live
// lane values. Its four arrays are shaped like the matching lanes and indexed
// by each lane's own captured step index, which may differ across lanes under
// polymetric configuration.
//
// The overlay is generative state, not transport state: it survives engine
// reset and is never persisted. A fresh overlay holds identity values, so a
// full blend with an unrolled overlay is a no-op.
type Overlay struct {
	velocity  [MaxLaneSteps]float32
	gate      [MaxLaneSteps]float32
	ratchet   [MaxLaneSteps]int
	condition [MaxLaneSteps]int
}

func NewOverlay() Overlay {
	var o Overlay
	for i := 0; i < MaxLaneSteps; i++ {
		o.velocity[i] = 1
		o.gate[i] = 1
		o.ratchet[i] = 1
		o.condition[i] = ConditionAlways
	}
	return o
}

// Roll regenerates all four arrays in one bounded call: 128 draws total, no
// allocation. This is the only place overlay state changes. numCodes is the
// size of the trigger-condition enumeration.
func (o *Overlay) Roll(rng *Stream, numCodes int) {
	if numCodes < 1 {
		numCodes = 1
	}
	for i := 0; i < MaxLaneSteps; i++ {
		o.velocity[i] = rng.NextUnsigned()
	}
	for i := 0; i < MaxLaneSteps; i++ {
		o.gate[i] = rng.NextUnsigned()
	}
	for i := 0; i < MaxLaneSteps; i++ {
		o.ratchet[i] = 1 + rng.NextIntn(MaxRatchet)
	}
	for i := 0; i < MaxLaneSteps; i++ {
		o.condition[i] = rng.NextIntn(numCodes)
	}
}

func (o *Overlay) Velocity(step int) float32 {
	return o.velocity[clampInt(step, 0, MaxLaneSteps-1)]
}

func (o *Overlay) Gate(step int) float32 {
	return o.gate[clampInt(step, 0, MaxLaneSteps-1)]
}

func (o *Overlay) Ratchet(step int) int {
	return o.ratchet[clampInt(step, 0, MaxLaneSteps-1)]
}

func (o *Overlay) Condition(step int) int {
	return o.condition[clampInt(step, 0, MaxLaneSteps-1)]
}

// Blend interpolates a live lane value towards its overlay counterpart.
// amount 0 returns live unchanged; amount 1 returns the overlay value.
func Blend(live, overlay, amount float32) float32 {
	return live + (overlay-live)*amount
}

// BlendRatchet interpolates like Blend, then rounds to the nearest integer
// clamped to [1, MaxRatchet].
func BlendRatchet(live, overlay int, amount float32) int {
	v := Blend(float32(live), float32(overlay), amount)
	return clampInt(int(v+0.5), 1, MaxRatchet)
}

// BlendCondition is a discrete selector, not an interpolation: the overlay
// condition code takes over wholesale once amount reaches 0.5.
func BlendCondition(live, overlay int, amount float32) int {
	if amount >= 0.5 {
		return overlay
	}
	return live
}
