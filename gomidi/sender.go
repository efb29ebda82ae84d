package gomidi

import (
	"fmt"
	"strings"

	arp "github.com/rolandzwaga/krate-audio-sub018"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Sender forwards engine events to a MIDI output port on a fixed channel.
type Sender struct {
	out     drivers.Out
	send    func(midi.Message) error
	channel uint8
}

// NewSender opens the first output port whose name starts with namePrefix; an
// empty prefix takes the first port available.
func NewSender(namePrefix string, channel uint8) (*Sender, error) {
	if channel > 15 {
		channel = 15
	}
	var out drivers.Out
	outs := midi.GetOutPorts()
	if len(outs) == 0 {
		return nil, fmt.Errorf("no MIDI outputs found")
	}
	for _, o := range outs {
		if strings.HasPrefix(o.String(), namePrefix) {
			out = o
			break
		}
	}
	if out == nil {
		return nil, fmt.Errorf("no MIDI output starting with %q", namePrefix)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("opening MIDI output %q failed: %w", out.String(), err)
	}
	return &Sender{out: out, send: send, channel: channel}, nil
}

func (s *Sender) String() string {
	return s.out.String()
}

// Send transmits one engine event. The event's frame offset is ignored: the
// caller owns the timing and calls Send when the event is due.
func (s *Sender) Send(ev arp.Event) error {
	var msg midi.Message
	if ev.On {
		msg = midi.NoteOn(s.channel, ev.Pitch, ev.Velocity)
	} else {
		msg = midi.NoteOff(s.channel, ev.Pitch)
	}
	if err := s.send(msg); err != nil {
		return fmt.Errorf("sending MIDI event failed: %w", err)
	}
	return nil
}

func (s *Sender) Close() error {
	return s.out.Close()
}
