package arp_test

import (
	"testing"

	arp "github.com/rolandzwaga/krate-audio-sub018"
)

func TestOverlayIdentity(t *testing.T) {
	o := arp.NewOverlay()
	for i := 0; i < arp.MaxLaneSteps; i++ {
		if o.Velocity(i) != 1 || o.Gate(i) != 1 || o.Ratchet(i) != 1 || o.Condition(i) != arp.ConditionAlways {
			t.Fatalf("step %d not identity: vel=%v gate=%v ratchet=%d cond=%d",
				i, o.Velocity(i), o.Gate(i), o.Ratchet(i), o.Condition(i))
		}
	}
}

func TestOverlayRollDeterministic(t *testing.T) {
	ra := arp.NewStream(arp.OverlaySeed)
	rb := arp.NewStream(arp.OverlaySeed)
	a := arp.NewOverlay()
	b := arp.NewOverlay()
	a.Roll(&ra, 8)
	b.Roll(&rb, 8)
	for i := 0; i < arp.MaxLaneSteps; i++ {
		if a.Velocity(i) != b.Velocity(i) || a.Gate(i) != b.Gate(i) ||
			a.Ratchet(i) != b.Ratchet(i) || a.Condition(i) != b.Condition(i) {
			t.Fatalf("step %d differs between identically seeded rolls", i)
		}
	}
}

func TestOverlayRerollChangesMostSlots(t *testing.T) {
	rng := arp.NewStream(arp.OverlaySeed)
	a := arp.NewOverlay()
	b := arp.NewOverlay()
	a.Roll(&rng, 8)
	b.Roll(&rng, 8)
	changed := 0
	for i := 0; i < arp.MaxLaneSteps; i++ {
		if a.Velocity(i) != b.Velocity(i) {
			changed++
		}
		if a.Gate(i) != b.Gate(i) {
			changed++
		}
		if a.Ratchet(i) != b.Ratchet(i) {
			changed++
		}
		if a.Condition(i) != b.Condition(i) {
			changed++
		}
	}
	// float slots virtually always change; the small integer ranges collide
	// often, so the threshold is well below 4*32
	if changed < 64 {
		t.Errorf("only %d of 128 slots changed between rolls", changed)
	}
}

func TestOverlayRollRanges(t *testing.T) {
	rng := arp.NewStream(arp.OverlaySeed)
	o := arp.NewOverlay()
	o.Roll(&rng, 5)
	for i := 0; i < arp.MaxLaneSteps; i++ {
		if v := o.Velocity(i); v < 0 || v >= 1 {
			t.Errorf("velocity[%d] = %v out of [0,1)", i, v)
		}
		if g := o.Gate(i); g < 0 || g >= 1 {
			t.Errorf("gate[%d] = %v out of [0,1)", i, g)
		}
		if r := o.Ratchet(i); r < 1 || r > arp.MaxRatchet {
			t.Errorf("ratchet[%d] = %d out of [1,%d]", i, r, arp.MaxRatchet)
		}
		if c := o.Condition(i); c < 0 || c >= 5 {
			t.Errorf("condition[%d] = %d out of [0,5)", i, c)
		}
	}
}

func TestBlendEndpoints(t *testing.T) {
	if got := arp.Blend(0.8, 0.3, 0); got != 0.8 {
		t.Errorf("blend at 0 = %v, want live value", got)
	}
	if got := arp.Blend(0.8, 0.3, 1); got != 0.3 {
		t.Errorf("blend at 1 = %v, want overlay value", got)
	}
	if got := arp.Blend(0, 1, 0.25); got != 0.25 {
		t.Errorf("blend(0,1,0.25) = %v", got)
	}
}

func TestBlendRatchet(t *testing.T) {
	for _, tc := range []struct {
		live, overlay int
		amount        float32
		want          int
	}{
		{1, 4, 0, 1},
		{1, 4, 1, 4},
		{1, 3, 0.5, 2},
		{2, 4, 0.3, 3}, // 2.6 rounds to 3
		{1, 1, 0.7, 1},
	} {
		if got := arp.BlendRatchet(tc.live, tc.overlay, tc.amount); got != tc.want {
			t.Errorf("BlendRatchet(%d,%d,%v) = %d, want %d",
				tc.live, tc.overlay, tc.amount, got, tc.want)
		}
	}
}

func TestBlendCondition(t *testing.T) {
	if got := arp.BlendCondition(2, 5, 0.49); got != 2 {
		t.Errorf("below threshold = %d, want live code", got)
	}
	if got := arp.BlendCondition(2, 5, 0.5); got != 5 {
		t.Errorf("at threshold = %d, want overlay code", got)
	}
}
