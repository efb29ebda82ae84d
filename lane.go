package arp

// Lane is a fixed-capacity per-step value sequence with an independently
// configurable active length, enabling polymetric relationships across lanes,
// and an advancing, wrapping read cursor.
//
// The step index that produced a given Advance result must be captured with
// PeekIndex before calling Advance; it is never inferred from the
// post-advance position, because the active length may change between calls.
type Lane[T any] struct {
	values [MaxLaneSteps]T
	length int
	pos    int
}

// NewLane returns a lane of length MaxLaneSteps with every slot set to fill.
func NewLane[T any](fill T) Lane[T] {
	var l Lane[T]
	l.length = MaxLaneSteps
	for i := range l.values {
		l.values[i] = fill
	}
	return l
}

// SetLength clamps n to [1, MaxLaneSteps] and re-clamps the cursor so that
// pos < length always holds.
func (l *Lane[T]) SetLength(n int) {
	l.length = clampInt(n, 1, MaxLaneSteps)
	if l.pos >= l.length {
		l.pos = 0
	}
}

func (l *Lane[T]) Length() int {
	return l.length
}

// PeekIndex returns the step index the next Advance call will read.
func (l *Lane[T]) PeekIndex() int {
	return l.pos
}

// Advance returns the value at the current cursor, then moves the cursor one
// step forward, wrapping at the active length.
func (l *Lane[T]) Advance() T {
	v := l.values[l.pos]
	l.pos = (l.pos + 1) % l.length
	return v
}

// Set writes a value; out-of-range indices are clamped.
func (l *Lane[T]) Set(i int, v T) {
	l.values[clampInt(i, 0, MaxLaneSteps-1)] = v
}

// At reads a value; out-of-range indices are clamped.
func (l *Lane[T]) At(i int) T {
	return l.values[clampInt(i, 0, MaxLaneSteps-1)]
}

// Rewind moves the cursor back to step zero. Values and length are kept.
func (l *Lane[T]) Rewind() {
	l.pos = 0
}

// StepFlags are the per-step modifiers carried by the modifier lane.
type StepFlags uint8

const (
	// FlagRest silences the step without stopping lane advancement.
	FlagRest StepFlags = 1 << iota
	// FlagTie extends the currently-sounding note instead of retriggering.
	FlagTie
	// FlagAccent raises the emitted velocity.
	FlagAccent
	// FlagSlide joins the previous note to this one without a gap.
	FlagSlide
)
