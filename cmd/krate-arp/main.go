package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	arp "github.com/rolandzwaga/krate-audio-sub018"
	"github.com/rolandzwaga/krate-audio-sub018/gomidi"
	"github.com/rolandzwaga/krate-audio-sub018/oto"
	"github.com/rolandzwaga/krate-audio-sub018/preview"
	"github.com/rolandzwaga/krate-audio-sub018/version"
)

const blockSize = 256

func main() {
	presetFile := flag.String("preset", "", "Load engine parameters from a .yml or .json preset file.")
	inPrefix := flag.String("in", "", "Open the first MIDI input whose name starts with this prefix. By default, the first input found is used.")
	outPrefix := flag.String("out", "", "Forward events to the first MIDI output whose name starts with this prefix instead of previewing them.")
	channel := flag.Int("channel", 0, "MIDI channel (0-15) for forwarded events.")
	bpm := flag.Float64("bpm", 120, "Tempo for tempo-synced step lengths.")
	sampleRate := flag.Int("samplerate", 44100, "Engine sample rate.")
	versionFlag := flag.Bool("v", false, "Print version.")
	help := flag.Bool("h", false, "Show help.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if *help {
		flag.Usage()
		os.Exit(0)
	}

	params := arp.DefaultParameters()
	if *presetFile != "" {
		data, err := os.ReadFile(*presetFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not read preset %v: %v\n", *presetFile, err)
			os.Exit(1)
		}
		params, err = arp.LoadParameters(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not parse preset %v: %v\n", *presetFile, err)
			os.Exit(1)
		}
	}

	engine := arp.NewEngine(float64(*sampleRate), nil)
	engine.Controls().SetParameters(params)
	engine.Controls().SetRunning(true)

	midiIn := gomidi.NewContext(*sampleRate)
	defer midiIn.Close()
	name, err := midiIn.TryToOpenBy(*inPrefix, *inPrefix == "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open MIDI input: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "listening on %v\n", name)

	ctx := &tempoContext{ProcessContext: midiIn, bpm: *bpm}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	if *outPrefix != "" {
		sender, err := gomidi.NewSender(*outPrefix, uint8(*channel))
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not open MIDI output: %v\n", err)
			os.Exit(1)
		}
		defer sender.Close()
		fmt.Fprintf(os.Stderr, "sending to %v\n", sender)
		forward(engine, ctx, sender, *sampleRate, interrupt)
		return
	}

	audio, err := oto.NewContext(*sampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not acquire audio output: %v\n", err)
		os.Exit(1)
	}
	player := audio.Play(preview.NewStream(engine, ctx, preview.NewSynth(float64(*sampleRate))))
	defer player.Close()
	<-interrupt
}

// forward runs the engine on a wall-clock block loop and sends each event
// when it comes due.
func forward(engine *arp.Engine, ctx arp.ProcessContext, sender *gomidi.Sender, sampleRate int, interrupt chan os.Signal) {
	blockDur := time.Duration(float64(blockSize) / float64(sampleRate) * float64(time.Second))
	blockStart := time.Now()
	ticker := time.NewTicker(blockDur)
	defer ticker.Stop()
	for {
		select {
		case <-interrupt:
			// a last stopped block flushes note-offs for anything sounding
			engine.Controls().SetRunning(false)
			for _, ev := range engine.Process(blockSize, ctx) {
				sender.Send(ev)
			}
			return
		case <-ticker.C:
			for _, ev := range engine.Process(blockSize, ctx) {
				due := blockStart.Add(time.Duration(float64(ev.Frame) / float64(sampleRate) * float64(time.Second)))
				if d := time.Until(due); d > 0 {
					time.Sleep(d)
				}
				if err := sender.Send(ev); err != nil {
					fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
				}
			}
			blockStart = blockStart.Add(blockDur)
		}
	}
}

// tempoContext supplies a fixed tempo on top of a MIDI input context, which
// itself carries none.
type tempoContext struct {
	arp.ProcessContext
	bpm float64
}

func (c *tempoContext) BPM() (float64, bool) {
	return c.bpm, c.bpm > 0
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Arpeggiate live MIDI input, to a MIDI output or a built-in preview synth.\nUsage:\n")
	flag.PrintDefaults()
}
