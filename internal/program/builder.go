package program

import (
	"github.com/cbegin/opsynth-go/internal/line"
	"github.com/cbegin/opsynth-go/internal/wavelut"
)

// NewWaveOscOp builds a minimal, fully-initialized OperatorData for a
// wave oscillator carrier: constant frequency (Hz) and amplitude, an
// explicit duration, default (blank) modulator lists.
func NewWaveOscOp(id uint32, wave wavelut.Wave, freqHz, amp float64, durationMs float64) OperatorData {
	return OperatorData{
		ID:     id,
		Params: PType | PTime | PAmp | PFreq | PWaveOrMode,
		Type:   OpWaveOsc,
		Time:   Time{Ms: durationMs, Flags: TimeSet},
		Wave:   wave,
		Amp:    line.New(amp),
		Freq:   line.New(freqHz),
	}
}

// Builder assembles a Program value by value, without a text-format
// parser: callers construct OperatorData/ProgramEvent values directly
// (or via the small helpers below) the way the teacher's own tests build
// mml.Score/mml.Event fixtures directly rather than going through a
// parser.
type Builder struct {
	p Program
}

// NewBuilder starts an empty Program builder.
func NewBuilder() *Builder {
	return &Builder{p: Program{AmpMult: 1}}
}

// SetCounts sizes the voice/operator tables and nesting depth the
// Generator will allocate for.
func (b *Builder) SetCounts(voiceCount, opCount, opNestDepth int) *Builder {
	b.p.VoiceCount = voiceCount
	b.p.OpCount = opCount
	b.p.OpNestDepth = opNestDepth
	return b
}

// SetMode sets the program-wide mode flags.
func (b *Builder) SetMode(mode Mode) *Builder {
	b.p.Mode = mode
	return b
}

// SetAmpMult sets the global amplitude multiplier.
func (b *Builder) SetAmpMult(mult float64) *Builder {
	b.p.AmpMult = mult
	return b
}

// AddEvent appends a fully-formed ProgramEvent.
func (b *Builder) AddEvent(ev ProgramEvent) *Builder {
	b.p.Events = append(b.p.Events, ev)
	return b
}

// Build returns the assembled Program.
func (b *Builder) Build() Program {
	return b.p
}

// NewConstAmp builds a constant-valued Line suitable for an Amp/Amp2/Pan
// field.
func NewConstAmp(v float64) line.Line {
	return line.New(v)
}

// NewRampLine builds a Line that ramps from v0 to vt over durationSamples
// using the given shape.
func NewRampLine(v0, vt float64, durationSamples int64, shape line.Shape) line.Line {
	return line.Line{V0: v0, Vt: vt, End: durationSamples, Shape: shape, Flags: line.Goal | line.State | line.Goal}
}
