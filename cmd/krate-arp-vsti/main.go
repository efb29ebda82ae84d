//go:build plugin

package main

import (
	arp "github.com/rolandzwaga/krate-audio-sub018"
	"github.com/rolandzwaga/krate-audio-sub018/preview"
	"pipelined.dev/audio/vst2"
)

const (
	PLUGIN_ID   = 0x4b724172 // 'KrAr'
	PLUGIN_NAME = "krate-arp"
)

// VSTIProcessContext adapts the host's MIDI event queue and transport to the
// engine's per-block contract. Events arrive via ProcessEventsFunc before the
// audio callback and are cleared when the block finishes.
type VSTIProcessContext struct {
	events     []vst2.MIDIEvent
	eventIndex int
	host       vst2.Host
}

func (c *VSTIProcessContext) NextEvent(frame int) (event arp.NoteEvent, ok bool) {
	for c.eventIndex < len(c.events) {
		ev := c.events[c.eventIndex]
		c.eventIndex++
		switch {
		case ev.Data[0] >= 0x80 && ev.Data[0] < 0x90:
			return arp.NoteEvent{Frame: int(ev.DeltaFrames), On: false, Pitch: ev.Data[1], Velocity: ev.Data[2]}, true
		case ev.Data[0] >= 0x90 && ev.Data[0] < 0xA0:
			return arp.NoteEvent{Frame: int(ev.DeltaFrames), On: true, Pitch: ev.Data[1], Velocity: ev.Data[2]}, true
		default:
			// ignore all other MIDI messages
		}
	}
	return arp.NoteEvent{}, false
}

func (c *VSTIProcessContext) FinishBlock(frame int) {
	c.events = c.events[:0] // reset buffer, but keep the allocated memory
	c.eventIndex = 0
}

func (c *VSTIProcessContext) BPM() (bpm float64, ok bool) {
	timeInfo := c.host.GetTimeInfo(vst2.TempoValid)
	if timeInfo == nil || timeInfo.Flags&vst2.TempoValid == 0 || timeInfo.Tempo == 0 {
		return 0, false
	}
	return timeInfo.Tempo, true
}

func init() {
	var (
		version = int32(100)
	)
	vst2.PluginAllocator = func(h vst2.Host) (vst2.Plugin, vst2.Dispatcher) {
		sampleRate := 44100.0
		engine := arp.NewEngine(sampleRate, nil)
		engine.Controls().SetRunning(true)
		synth := preview.NewSynth(sampleRate)
		context := VSTIProcessContext{host: h}
		var buf []float32
		return vst2.Plugin{
				UniqueID:       PLUGIN_ID,
				Version:        version,
				InputChannels:  0,
				OutputChannels: 2,
				Name:           PLUGIN_NAME,
				Vendor:         "rolandzwaga/krate",
				Category:       vst2.PluginCategorySynth,
				Flags:          vst2.PluginIsSynth,
				ProcessFloatFunc: func(in, out vst2.FloatBuffer) {
					left := out.Channel(0)
					right := out.Channel(1)
					if len(buf) < 2*out.Frames {
						buf = append(buf, make([]float32, 2*out.Frames-len(buf))...)
					}
					buf = buf[:2*out.Frames]
					events := engine.Process(out.Frames, &context)
					synth.Render(events, buf, out.Frames)
					for i := 0; i < out.Frames; i++ {
						left[i], right[i] = buf[2*i], buf[2*i+1]
					}
				},
			}, vst2.Dispatcher{
				CanDoFunc: func(pcds vst2.PluginCanDoString) vst2.CanDoResponse {
					switch pcds {
					case vst2.PluginCanReceiveEvents, vst2.PluginCanReceiveMIDIEvent, vst2.PluginCanReceiveTimeInfo:
						return vst2.YesCanDo
					}
					return vst2.NoCanDo
				},
				ProcessEventsFunc: func(ev *vst2.EventsPtr) {
					for i := 0; i < ev.NumEvents(); i++ {
						a := ev.Event(i)
						switch v := a.(type) {
						case *vst2.MIDIEvent:
							context.events = append(context.events, *v)
						}
					}
				},
				GetChunkFunc: func(isPreset bool) []byte {
					data, err := arp.SaveParameters(engine.Controls().Parameters())
					if err != nil {
						return nil
					}
					return data
				},
				SetChunkFunc: func(data []byte, isPreset bool) {
					if params, err := arp.LoadParameters(data); err == nil {
						engine.Controls().SetParameters(params)
					}
				},
			}

	}
}

func main() {}
