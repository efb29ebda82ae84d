package arp

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// NoteValue is the rhythmic subdivision used when the engine is tempo-synced.
type NoteValue uint8

const (
	NoteWhole NoteValue = iota
	NoteHalf
	NoteQuarter
	NoteEighth
	NoteSixteenth
	NoteThirtySecond
	NoteQuarterTriplet
	NoteEighthTriplet
	NoteSixteenthTriplet
	NoteDottedQuarter
	NoteDottedEighth
	NoteDottedSixteenth
	NumNoteValues
)

var noteValueBeats = [NumNoteValues]float64{
	4.0,
	2.0,
	1.0,
	0.5,
	0.25,
	0.125,
	1.0 * 2 / 3,
	0.5 * 2 / 3,
	0.25 * 2 / 3,
	1.0 * 3 / 2,
	0.5 * 3 / 2,
	0.25 * 3 / 2,
}

// Beats returns the length of the note value in quarter-note beats.
func (n NoteValue) Beats() float64 {
	if n >= NumNoteValues {
		n = NoteEighth
	}
	return noteValueBeats[n]
}

// RetriggerMode controls whether the sequence restarts when a new chord is
// started after all notes were released.
type RetriggerMode uint8

const (
	RetriggerOff RetriggerMode = iota
	RetriggerNote
)

// Parameters is the engine parameter snapshot read once per block. It is the
// only persisted state of the engine; the held-note buffer, overlay contents
// and lane cursors are always recreated fresh on load. The field list is
// append-only: presets saved by older versions simply leave newer fields at
// their defaults.
type Parameters struct {
	Mode        Mode          `yaml:"mode" json:"mode"`
	OctaveRange int           `yaml:"octaverange" json:"octaverange"`
	OctaveMode  OctaveMode    `yaml:"octavemode" json:"octavemode"`
	TempoSync   bool          `yaml:"temposync" json:"temposync"`
	SyncNote    NoteValue     `yaml:"syncnote" json:"syncnote"`
	RateHz      float64       `yaml:"ratehz" json:"ratehz"`
	GatePercent float64       `yaml:"gatepercent" json:"gatepercent"`
	Swing       float64       `yaml:"swing" json:"swing"`
	Latch       LatchMode     `yaml:"latch" json:"latch"`
	Retrigger   RetriggerMode `yaml:"retrigger" json:"retrigger"`
	Spice       float32       `yaml:"spice" json:"spice"`
	Humanize    float32       `yaml:"humanize" json:"humanize"`
}

// DefaultParameters returns the documented defaults: a tempo-synced eighth
// note pattern going up one octave, no swing, no latch, no randomization.
func DefaultParameters() Parameters {
	return Parameters{
		Mode:        ModeUp,
		OctaveRange: 1,
		OctaveMode:  OctaveSequential,
		TempoSync:   true,
		SyncNote:    NoteEighth,
		RateHz:      8,
		GatePercent: 80,
		Swing:       0,
		Latch:       LatchOff,
		Retrigger:   RetriggerNote,
		Spice:       0,
		Humanize:    0,
	}
}

// Clamp silently pulls every field to its nearest valid value. There are no
// recoverable parameter errors: invalid input is corrected, never rejected.
func (p *Parameters) Clamp() {
	if p.Mode >= NumModes {
		p.Mode = ModeUp
	}
	p.OctaveRange = clampInt(p.OctaveRange, 1, 4)
	if p.OctaveMode > OctaveInterleaved {
		p.OctaveMode = OctaveSequential
	}
	if p.SyncNote >= NumNoteValues {
		p.SyncNote = NoteEighth
	}
	p.RateHz = clampFloat(p.RateHz, 0.1, 50)
	p.GatePercent = clampFloat(p.GatePercent, 1, 200)
	p.Swing = clampFloat(p.Swing, 0, 75)
	if p.Latch > LatchAdd {
		p.Latch = LatchOff
	}
	if p.Retrigger > RetriggerNote {
		p.Retrigger = RetriggerOff
	}
	p.Spice = clampFloat32(p.Spice, 0, 1)
	p.Humanize = clampFloat32(p.Humanize, 0, 1)
}

// StepSamples returns the nominal step duration in samples, before swing.
// Tempo-synced steps follow the host BPM; free-running steps follow RateHz.
func (p *Parameters) StepSamples(sampleRate, bpm float64) int {
	if p.TempoSync && bpm > 0 {
		return int(sampleRate*60/bpm*p.SyncNote.Beats() + 0.5)
	}
	return int(sampleRate/p.RateHz + 0.5)
}

// LoadParameters parses a preset in JSON or YAML form. Fields missing from
// the data keep their defaults; every parsed field is clamped.
func LoadParameters(data []byte) (Parameters, error) {
	p := DefaultParameters()
	if errJSON := json.Unmarshal(data, &p); errJSON != nil {
		if errYaml := yaml.Unmarshal(data, &p); errYaml != nil {
			return DefaultParameters(), fmt.Errorf("preset could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	p.Clamp()
	return p, nil
}

// SaveParameters serializes the snapshot as YAML.
func SaveParameters(p Parameters) ([]byte, error) {
	data, err := yaml.Marshal(&p)
	if err != nil {
		return nil, fmt.Errorf("marshaling preset failed: %w", err)
	}
	return data, nil
}
