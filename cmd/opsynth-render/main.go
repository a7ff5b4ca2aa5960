// Command opsynth-render is a minimal demo driver for the operator-graph
// engine: it builds a single-voice wave-oscillator Program from flags
// and either writes it to a WAV file or plays it live, following the
// teacher's cmd/play_mml flag-parsing shape.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cbegin/opsynth-go"
	"github.com/cbegin/opsynth-go/internal/audio"
	"github.com/cbegin/opsynth-go/internal/program"
	"github.com/cbegin/opsynth-go/internal/wavelut"
	"github.com/cbegin/opsynth-go/internal/wavewriter"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		wave       = flag.String("wave", "sin", "oscillator waveform: sin|tri|saw|sqr")
		freq       = flag.Float64("freq", 440, "carrier frequency in Hz")
		amp        = flag.Float64("amp", 0.8, "carrier amplitude")
		durationMs = flag.Float64("duration", 2000, "note duration in ms")
		stereo     = flag.Bool("stereo", true, "write the WAV file in stereo (live playback is always stereo)")
		outPath    = flag.String("out", "", "write a WAV file to this path instead of playing live")
		play       = flag.Bool("play", false, "play live instead of (or in addition to) writing a file")
	)
	flag.Parse()

	w, err := parseWave(*wave)
	if err != nil {
		log.Fatal(err)
	}

	op := program.NewWaveOscOp(0, w, *freq, *amp, *durationMs)
	ev := program.ProgramEvent{
		VoiceID: 0,
		Voice:   &program.VoiceData{CarrierOpID: 0},
		OpData:  []program.OperatorData{op},
	}
	prog := program.NewBuilder().
		SetCounts(1, 1, 0).
		SetAmpMult(1).
		AddEvent(ev).
		Build()

	if *outPath == "" && !*play {
		*play = true
	}

	if *outPath != "" {
		samples, err := opsynth.RunFor(&prog, uint32(*sampleRate), *stereo, opsynth.DefaultOptions())
		if err != nil {
			log.Fatal(err)
		}
		channels := 1
		if *stereo {
			channels = 2
		}
		data := wavewriter.EncodePCM16LE(samples, channels, *sampleRate)
		if err := os.WriteFile(*outPath, data, 0o644); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s (%d frames)\n", *outPath, len(samples)/channels)
	}

	if *play {
		gen, err := opsynth.Create(&prog, uint32(*sampleRate), opsynth.DefaultOptions())
		if err != nil {
			log.Fatal(err)
		}
		pl, err := audio.NewPlayer(*sampleRate, gen)
		if err != nil {
			log.Fatal(err)
		}
		pl.Play()
		for pl.IsPlaying() {
			time.Sleep(50 * time.Millisecond)
		}
		if err := pl.Stop(); err != nil {
			log.Fatal(err)
		}
	}
}

func parseWave(name string) (wavelut.Wave, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sin":
		return wavelut.Sin, nil
	case "tri":
		return wavelut.Tri, nil
	case "saw":
		return wavelut.Saw, nil
	case "sqr":
		return wavelut.Sqr, nil
	default:
		return 0, fmt.Errorf("invalid -wave %q (expected sin|tri|saw|sqr)", name)
	}
}
