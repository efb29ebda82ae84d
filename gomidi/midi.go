// Package gomidi connects the arpeggiator engine to hardware MIDI ports. The
// input side adapts an rtmidi input stream to the engine's block-relative
// frame clock; the output side sends emitted events to an output port.
package gomidi

import (
	"errors"
	"fmt"
	"strings"

	arp "github.com/rolandzwaga/krate-audio-sub018"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

type (
	// Context receives note messages from an rtmidi input device and serves
	// them to the engine as block-relative frame events. It implements
	// arp.ProcessContext.
	Context struct {
		driver             *rtmididrv.Driver
		sampleRate         int
		currentIn          drivers.In
		inputDevices       []Device
		devicesInitialized bool
		events             chan timestampedMsg
		eventsBuf          []timestampedMsg
		eventIndex         int
		startFrame         int
		startFrameSet      bool
	}

	// Device is one enumerable MIDI input.
	Device struct {
		context *Context
		in      drivers.In
	}

	timestampedMsg struct {
		frame int
		msg   midi.Message
	}
)

// NewContext opens the rtmidi driver. The sample rate is needed to convert
// the driver's millisecond timestamps to frames. A failed driver open is not
// an error: the context simply has no devices.
func NewContext(sampleRate int) *Context {
	c := Context{
		sampleRate: sampleRate,
		events:     make(chan timestampedMsg, 1024),
	}
	c.driver, _ = rtmididrv.New()
	return &c
}

// InputDevices iterates over the available MIDI inputs.
func (c *Context) InputDevices(yield func(Device) bool) {
	if c.devicesInitialized {
		for _, device := range c.inputDevices {
			if !yield(device) {
				break
			}
		}
		return
	}
	if c.driver == nil {
		return
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return
	}
	for _, in := range ins {
		device := Device{context: c, in: in}
		c.inputDevices = append(c.inputDevices, device)
		if !yield(device) {
			break
		}
	}
	c.devicesInitialized = true
}

// Open starts listening on the device, closing the previously open one.
func (d Device) Open() error {
	if d.context.currentIn == d.in {
		return nil
	}
	if d.context.driver == nil {
		return errors.New("no driver available")
	}
	if d.context.HasDeviceOpen() {
		d.context.currentIn.Close()
	}
	d.context.currentIn = d.in
	if err := d.in.Open(); err != nil {
		d.context.currentIn = nil
		return fmt.Errorf("opening MIDI input failed: %w", err)
	}
	if _, err := midi.ListenTo(d.in, d.context.handleMessage); err != nil {
		d.in.Close()
		d.context.currentIn = nil
		return fmt.Errorf("listening to MIDI input failed: %w", err)
	}
	return nil
}

func (d Device) String() string {
	return d.in.String()
}

// TryToOpenBy opens the first input whose name starts with namePrefix, or the
// first input at all when takeFirst is set. Returns the opened device name.
func (c *Context) TryToOpenBy(namePrefix string, takeFirst bool) (string, error) {
	if namePrefix == "" && !takeFirst {
		return "", nil
	}
	var opened string
	var openErr error
	c.InputDevices(func(device Device) bool {
		if takeFirst || strings.HasPrefix(device.String(), namePrefix) {
			openErr = device.Open()
			opened = device.String()
			return false
		}
		return true
	})
	if opened == "" {
		if takeFirst {
			return "", errors.New("no MIDI inputs found")
		}
		return "", fmt.Errorf("no MIDI input starting with %q", namePrefix)
	}
	return opened, openErr
}

func (c *Context) HasDeviceOpen() bool {
	return c.currentIn != nil && c.currentIn.IsOpen()
}

func (c *Context) Close() {
	if c.driver == nil {
		return
	}
	if c.currentIn != nil && c.currentIn.IsOpen() {
		c.currentIn.Close()
	}
	c.driver.Close()
}

func (c *Context) handleMessage(msg midi.Message, timestampms int32) {
	m := timestampedMsg{
		frame: int(int64(timestampms) * int64(c.sampleRate) / 1000),
		msg:   msg,
	}
	// if the channel is full, just drop the message
	select {
	case c.events <- m:
	default:
	}
}

// NextEvent implements arp.ProcessContext. It drains the channel into an
// internal buffer and returns the next note message, with its frame converted
// to the engine's block-relative clock.
func (c *Context) NextEvent(frame int) (event arp.NoteEvent, ok bool) {
F:
	for {
		select {
		case msg := <-c.events:
			c.eventsBuf = append(c.eventsBuf, msg)
			if !c.startFrameSet {
				c.startFrame = msg.frame
				c.startFrameSet = true
			}
		default:
			break F
		}
	}
	if c.eventIndex > 0 {
		// the engine consumes an event only once the render clock has passed
		// it, so delta measures how late we are; nudge the clock towards the
		// incoming timestamps to keep latency bounded
		delta := frame + c.startFrame - c.eventsBuf[c.eventIndex-1].frame
		c.startFrame -= delta / 5
	}
	for c.eventIndex < len(c.eventsBuf) {
		var channel, key, velocity uint8
		m := c.eventsBuf[c.eventIndex]
		f := m.frame - c.startFrame
		c.eventIndex++
		isNoteOn := m.msg.GetNoteOn(&channel, &key, &velocity)
		isNoteOff := !isNoteOn && m.msg.GetNoteOff(&channel, &key, &velocity)
		if isNoteOn || isNoteOff {
			return arp.NoteEvent{
				Frame:    f,
				On:       isNoteOn,
				Pitch:    key,
				Velocity: velocity,
			}, true
		}
	}
	c.eventIndex = len(c.eventsBuf) + 1
	return arp.NoteEvent{}, false
}

// FinishBlock implements arp.ProcessContext, rebasing buffered events to the
// next block and keeping the one looked-ahead event the engine did not
// consume.
func (c *Context) FinishBlock(frame int) {
	c.startFrame += frame
	if c.eventIndex > 0 {
		copy(c.eventsBuf, c.eventsBuf[c.eventIndex-1:])
		c.eventsBuf = c.eventsBuf[:len(c.eventsBuf)-c.eventIndex+1]
		if len(c.eventsBuf) > 0 {
			// events waited unconsumed, so the render clock runs ahead of the
			// input timestamps; pull it back gradually
			delta := c.startFrame - c.eventsBuf[0].frame
			c.startFrame -= delta / 5
		}
	}
	c.eventIndex = 0
}

// BPM implements arp.ProcessContext. Hardware input carries no tempo; the
// engine falls back to its free-running rate unless a wrapper supplies one.
func (c *Context) BPM() (bpm float64, ok bool) {
	return 0, false
}
