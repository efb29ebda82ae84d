package preview

import (
	"encoding/binary"
	"math"

	arp "github.com/rolandzwaga/krate-audio-sub018"
)

// Stream drives the engine from an audio pull clock and renders the result,
// implementing io.Reader in the interleaved stereo float32 LE format the oto
// package plays. Each Read advances the engine by the corresponding number of
// frames, so the audio device is the only clock.
type Stream struct {
	engine *arp.Engine
	ctx    arp.ProcessContext
	synth  *Synth
	buf    []float32
}

func NewStream(engine *arp.Engine, ctx arp.ProcessContext, synth *Synth) *Stream {
	return &Stream{engine: engine, ctx: ctx, synth: synth}
}

func (s *Stream) Read(p []byte) (int, error) {
	// 8 bytes per stereo float32 frame
	nframes := len(p) / 8
	if nframes == 0 {
		return 0, nil
	}
	if cap(s.buf) < 2*nframes {
		s.buf = make([]float32, 2*nframes)
	}
	buf := s.buf[:2*nframes]
	events := s.engine.Process(nframes, s.ctx)
	s.synth.Render(events, buf, nframes)
	for i, v := range buf {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
	return nframes * 8, nil
}
