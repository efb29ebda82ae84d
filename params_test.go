package arp_test

import (
	"testing"

	arp "github.com/rolandzwaga/krate-audio-sub018"
)

func TestStepSamplesTempoSync(t *testing.T) {
	p := arp.DefaultParameters()
	p.TempoSync = true
	p.SyncNote = arp.NoteEighth
	if got := p.StepSamples(44100, 120); got != 11025 {
		t.Errorf("eighth at 120 BPM / 44.1kHz = %d samples, want 11025", got)
	}
	p.SyncNote = arp.NoteQuarter
	if got := p.StepSamples(48000, 100); got != 28800 {
		t.Errorf("quarter at 100 BPM / 48kHz = %d samples, want 28800", got)
	}
}

func TestStepSamplesFreeRate(t *testing.T) {
	p := arp.DefaultParameters()
	p.TempoSync = false
	p.RateHz = 8
	if got := p.StepSamples(44100, 120); got != 5513 {
		t.Errorf("8 Hz at 44.1kHz = %d samples, want 5513", got)
	}
}

func TestNoteValueBeats(t *testing.T) {
	for _, tc := range []struct {
		note arp.NoteValue
		want float64
	}{
		{arp.NoteWhole, 4},
		{arp.NoteQuarter, 1},
		{arp.NoteEighth, 0.5},
		{arp.NoteSixteenth, 0.25},
	} {
		if got := tc.note.Beats(); got != tc.want {
			t.Errorf("%v beats = %v, want %v", tc.note, got, tc.want)
		}
	}
}

func TestParametersClamp(t *testing.T) {
	p := arp.Parameters{
		Mode:        arp.Mode(200),
		OctaveRange: 9,
		RateHz:      -3,
		GatePercent: 400,
		Swing:       150,
		Spice:       2,
		Humanize:    -1,
	}
	p.Clamp()
	if p.Mode >= arp.NumModes {
		t.Errorf("mode not clamped: %d", p.Mode)
	}
	if p.OctaveRange < 1 || p.OctaveRange > 4 {
		t.Errorf("octave range not clamped: %d", p.OctaveRange)
	}
	if p.RateHz <= 0 {
		t.Errorf("rate not clamped: %v", p.RateHz)
	}
	if p.GatePercent < 1 || p.GatePercent > 200 {
		t.Errorf("gate not clamped: %v", p.GatePercent)
	}
	if p.Swing < 0 || p.Swing > 75 {
		t.Errorf("swing not clamped: %v", p.Swing)
	}
	if p.Spice < 0 || p.Spice > 1 {
		t.Errorf("spice not clamped: %v", p.Spice)
	}
	if p.Humanize < 0 || p.Humanize > 1 {
		t.Errorf("humanize not clamped: %v", p.Humanize)
	}
}

func TestLoadParametersPartialYAML(t *testing.T) {
	p, err := arp.LoadParameters([]byte("mode: 2\nswing: 30\n"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Mode != arp.ModeUpDown {
		t.Errorf("mode = %d, want %d", p.Mode, arp.ModeUpDown)
	}
	if p.Swing != 30 {
		t.Errorf("swing = %v, want 30", p.Swing)
	}
	// omitted fields keep their defaults
	def := arp.DefaultParameters()
	if p.GatePercent != def.GatePercent || p.RateHz != def.RateHz || p.SyncNote != def.SyncNote {
		t.Errorf("omitted fields not defaulted: %+v", p)
	}
}

func TestLoadParametersJSON(t *testing.T) {
	p, err := arp.LoadParameters([]byte(`{"mode": 1, "gatepercent": 50}`))
	if err != nil {
		t.Fatal(err)
	}
	if p.Mode != arp.ModeDown || p.GatePercent != 50 {
		t.Errorf("parsed %+v", p)
	}
}

func TestLoadParametersGarbage(t *testing.T) {
	if _, err := arp.LoadParameters([]byte("{{{not a preset")); err == nil {
		t.Fatal("expected an error for malformed input")
	}
}

func TestParametersRoundTrip(t *testing.T) {
	want := arp.DefaultParameters()
	want.Mode = arp.ModeConverge
	want.OctaveRange = 3
	want.Swing = 20
	want.Spice = 0.5
	data, err := arp.SaveParameters(want)
	if err != nil {
		t.Fatal(err)
	}
	got, err := arp.LoadParameters(data)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("round trip changed parameters:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestLoadParametersClampsOutOfRange(t *testing.T) {
	p, err := arp.LoadParameters([]byte("octaverange: 12\nswing: 200\n"))
	if err != nil {
		t.Fatal(err)
	}
	if p.OctaveRange != 4 {
		t.Errorf("octave range = %d, want clamp to 4", p.OctaveRange)
	}
	if p.Swing != 75 {
		t.Errorf("swing = %v, want clamp to 75", p.Swing)
	}
}
