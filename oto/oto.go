// Package oto plays a float32 stereo stream through the system audio device.
package oto

import (
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"
)

// Context wraps the process-wide audio context.
type Context struct {
	ctx        *oto.Context
	sampleRate int
}

// NewContext initializes the audio device for stereo float32 output at the
// given sample rate and blocks until the device is ready.
func NewContext(sampleRate int) (*Context, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{ctx: ctx, sampleRate: sampleRate}, nil
}

// Play starts pulling interleaved float32 LE samples from r. The returned
// player must be closed to stop playback.
func (c *Context) Play(r io.Reader) *oto.Player {
	player := c.ctx.NewPlayer(r)
	// 100ms of buffered stereo float32 audio
	player.SetBufferSize(c.sampleRate / 10 * 8)
	player.Play()
	return player
}
