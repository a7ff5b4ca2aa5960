// Package opsynth is the public entry point for the operator-graph
// synthesis engine: it wraps internal/engine.Generator behind a small
// create/run API, following the teacher's own root-package-wraps-the-
// internals shape (mmlfm.Player wrapping its internal engines).
package opsynth

import (
	"github.com/cbegin/opsynth-go/internal/engine"
	"github.com/cbegin/opsynth-go/internal/obslog"
	"github.com/cbegin/opsynth-go/internal/program"
)

// Re-exported so callers can build a Program without importing the
// internal package directly.
type (
	Program       = program.Program
	ProgramEvent  = program.ProgramEvent
	OperatorData  = program.OperatorData
	VoiceData     = program.VoiceData
	ModulatorList = program.ModulatorList
	Mode          = program.Mode
)

const AmpDivVoices = program.AmpDivVoices

// Options configures a Generator beyond what the Program itself fixes.
type Options struct {
	MaxNestDepth int
	Logger       obslog.Logger
}

// DefaultOptions returns the default construction options.
func DefaultOptions() Options {
	return Options(engine.DefaultOptions())
}

// Generator renders a Program to PCM. There is no explicit destroy step;
// a Generator holds no resources beyond Go-managed memory and is
// reclaimed by the garbage collector once dropped.
type Generator struct {
	g *engine.Generator
}

// Create builds a Generator for prog at the given sample rate. prog is
// borrowed for the Generator's lifetime.
func Create(prog *Program, sampleRate uint32, opts Options) (*Generator, error) {
	g, err := engine.New(prog, sampleRate, engine.Options(opts))
	if err != nil {
		return nil, err
	}
	return &Generator{g: g}, nil
}

// Run renders up to bufLen frames into out (bufLen*2 int16 samples when
// stereo, bufLen when mono), returning whether the signal is still
// ongoing and how many frames were written.
func (gen *Generator) Run(out []int16, bufLen int, stereo bool) (ongoing bool, outLen int) {
	return gen.g.Run(out, bufLen, stereo)
}

// RunFor renders an entire Program to completion and returns the full
// interleaved PCM buffer, one call at a time in engine.BufLen-sized
// chunks internally.
func RunFor(prog *Program, sampleRate uint32, stereo bool, opts Options) ([]int16, error) {
	gen, err := Create(prog, sampleRate, opts)
	if err != nil {
		return nil, err
	}
	channels := 1
	if stereo {
		channels = 2
	}
	const chunk = engine.BufLen
	buf := make([]int16, chunk*channels)
	var all []int16
	for {
		ongoing, n := gen.Run(buf, chunk, stereo)
		all = append(all, buf[:n*channels]...)
		if !ongoing {
			break
		}
	}
	return all, nil
}
