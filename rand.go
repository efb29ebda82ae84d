package arp

// Fixed seeds for the two engine-owned streams and the selector stream. The
// values are arbitrary but must never change: presets reproduce identically
// only because every reset returns the streams to these exact states.
const (
	OverlaySeed  uint64 = 0x9D2C5680F4A7C159
	HumanizeSeed uint64 = 0x6C62272E07BB0142
	SelectorSeed uint64 = 0xB5297A4D3F84D5B5
)

// Stream is a small deterministic generator (SplitMix64) behind a
// next-value interface. The zero value is not usable; construct with
// NewStream. Reseed returns the stream to its initial state, which is how
// the engine guarantees reproducible output after a stop.
type Stream struct {
	seed  uint64
	state uint64
}

func NewStream(seed uint64) Stream {
	return Stream{seed: seed, state: seed}
}

// Reseed restores the initial seed, rewinding the stream to its first draw.
func (s *Stream) Reseed() {
	s.state = s.seed
}

func (s *Stream) NextUint64() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// NextUnsigned returns a uniform value in [0,1).
func (s *Stream) NextUnsigned() float32 {
	return float32(s.NextUint64()>>40) / (1 << 24)
}

// NextSigned returns a uniform value in [-1,1).
func (s *Stream) NextSigned() float32 {
	return s.NextUnsigned()*2 - 1
}

// NextIntn returns a uniform value in [0,n). n must be positive.
func (s *Stream) NextIntn(n int) int {
	return int(s.NextUint64() % uint64(n))
}
