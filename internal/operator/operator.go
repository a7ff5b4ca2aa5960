// Package operator defines the per-operator runtime state shared by the
// four operator variants (amp-only, noise, wave oscillator, random
// segment) and the mixing rules used to combine a modulator's output
// into its consumer's buffer. The recursive traversal itself
// (run_block's cycle guard, time limiting and buffer-arena slicing)
// lives in the engine package, which owns the operator table and the
// arena both must share; this package holds the per-operator data and
// the pure per-sample math.
package operator

import (
	"math"

	"github.com/cbegin/opsynth-go/internal/line"
	"github.com/cbegin/opsynth-go/internal/noiseg"
	"github.com/cbegin/opsynth-go/internal/param"
	"github.com/cbegin/opsynth-go/internal/phasor"
	"github.com/cbegin/opsynth-go/internal/program"
	"github.com/cbegin/opsynth-go/internal/rasg"
	"github.com/cbegin/opsynth-go/internal/wavelut"
	"github.com/cbegin/opsynth-go/internal/wosc"
)

// Type re-exports program.OpType so callers working with the runtime
// table don't need to import program just to branch on it.
type Type = program.OpType

const (
	Amp       = program.OpAmp
	Noise     = program.OpNoise
	WaveOsc   = program.OpWaveOsc
	RandomSeg = program.OpRandomSeg
)

// Op is one operator's full runtime state: the common fields shared by
// every variant (time, amp, pan, modulator-list references) plus the
// variant-specific oscillator state. Only the fields relevant to Type
// are meaningful at any time; the others keep the defaults Reset gave
// them until the operator is re-typed by a later event.
type Op struct {
	ID      uint32
	Type    Type
	Init    bool // ON_INIT: prepare_op has run at least once
	Visited bool // cycle guard, set/cleared around recursive entry
	TimeInf bool
	Time    int64 // samples remaining; meaningless when TimeInf

	Amp param.Param // composite amp parameter, all variants
	Pan line.Line    // carrier pan, meaningful on voice carriers

	// Oscillator-only fields (WaveOsc / RandomSeg).
	Freq  param.Param
	PMAmp line.Line // scales the pm/self-modulation feedback contribution

	Wave *wavelut.Table
	Osc  *wosc.WOsc

	RasGState *rasg.RasG

	Ph  phasor.Phasor
	Cyc phasor.Cyclor

	Noise *noiseg.NoiseG

	PMods, FPMods param.ModulatorList // phase mod, freq-scaled phase mod
	CAMods        param.ModulatorList // carrier/channel-AM modulators
	APMods        param.ModulatorList // additional pan modulators
	SelfMod       bool                // PMods/FPMods references this operator's own id
}

// Reset zeroes an operator's runtime state and installs the
// type-dispatched defaults: sine wave for wave oscillators, default
// RasG options, blank modulator-list references everywhere. This is the
// "prepare_op" step of event handling, run once the first time an
// operator id is referenced.
func Reset(id uint32, srate uint32) *Op {
	o := &Op{ID: id, Init: true, Amp: param.New(0)}
	o.Wave = wavelut.Get(wavelut.Sin)
	o.Osc = wosc.New(o.Wave)
	o.RasGState = rasg.New(rasg.DefaultOptions(), line.ShapeLin)
	o.Ph = phasor.NewPhasor(srate)
	o.Cyc = phasor.NewCyclor(srate)
	o.Noise = noiseg.New(noiseg.White)
	return o
}

// Mix combines a sub-function's raw output (in, scaled by amp) into out
// according to the (waveEnv, layer) mixing mode described in spec.md
// §4.8:
//
//	waveEnv=false, layer=false: out[i]  = in[i]*amp[i]
//	waveEnv=false, layer=true:  out[i] += in[i]*amp[i]
//	waveEnv=true,  layer=false: out[i]  = in[i]*amp[i]/2 + |amp[i]/2|
//	waveEnv=true,  layer=true:  out[i] *= in[i]*amp[i]/2 + |amp[i]/2|
func Mix(out, in, amp []float64, waveEnv, layer bool) {
	n := len(out)
	switch {
	case !waveEnv && !layer:
		for i := 0; i < n; i++ {
			out[i] = in[i] * amp[i]
		}
	case !waveEnv && layer:
		for i := 0; i < n; i++ {
			out[i] += in[i] * amp[i]
		}
	case waveEnv && !layer:
		for i := 0; i < n; i++ {
			a := amp[i] / 2
			out[i] = in[i]*a + math.Abs(a)
		}
	default: // waveEnv && layer
		for i := 0; i < n; i++ {
			a := amp[i] / 2
			out[i] *= in[i]*a + math.Abs(a)
		}
	}
}

// Ones fills buf with 1.0, used as the "in" buffer for amp-only
// operators (output = 1.0 * amp).
func Ones(buf []float64) {
	for i := range buf {
		buf[i] = 1
	}
}
