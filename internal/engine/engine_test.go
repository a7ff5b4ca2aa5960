package engine

import (
	"math"
	"testing"

	"github.com/cbegin/opsynth-go/internal/obslog"
	"github.com/cbegin/opsynth-go/internal/program"
	"github.com/cbegin/opsynth-go/internal/wavelut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const srate = 44100

func singleSineProgram(freqHz, amp, durationMs float64) program.Program {
	op := program.NewWaveOscOp(0, wavelut.Sin, freqHz, amp, durationMs)
	ev := program.ProgramEvent{
		VoiceID: 0,
		Voice:   &program.VoiceData{CarrierOpID: 0},
		OpData:  []program.OperatorData{op},
	}
	return program.NewBuilder().SetCounts(1, 1, 0).AddEvent(ev).Build()
}

func renderAll(t *testing.T, g *Generator, stereo bool) []int16 {
	t.Helper()
	channels := 1
	if stereo {
		channels = 2
	}
	var all []int16
	buf := make([]int16, 256*channels)
	for {
		ongoing, n := g.Run(buf, 256, stereo)
		all = append(all, buf[:n*channels]...)
		if !ongoing {
			break
		}
		if len(all) > srate*10*channels {
			t.Fatal("render did not terminate")
		}
	}
	return all
}

// Scenario: single sine at 440Hz, mono, should produce roughly
// durationMs worth of samples and stay in range.
func TestSingleSine440Hz(t *testing.T) {
	prog := singleSineProgram(440, 1.0, 100)
	g, err := New(&prog, srate, DefaultOptions())
	require.NoError(t, err)

	samples := renderAll(t, g, false)
	wantLen := int(100 * srate / 1000)
	assert.InDelta(t, wantLen, len(samples), float64(srate)/1000+2)

	for _, s := range samples {
		assert.True(t, s <= 32767 && s >= -32768)
	}

	sawNonZero := false
	for _, s := range samples {
		if s != 0 {
			sawNonZero = true
			break
		}
	}
	assert.True(t, sawNonZero, "expected audible signal, got silence")
}

// Spec property: Determinism. Two Generators built from the same
// Program must produce byte-identical output.
func TestDeterminism(t *testing.T) {
	prog1 := singleSineProgram(440, 0.8, 50)
	prog2 := singleSineProgram(440, 0.8, 50)

	g1, err := New(&prog1, srate, DefaultOptions())
	require.NoError(t, err)
	g2, err := New(&prog2, srate, DefaultOptions())
	require.NoError(t, err)

	s1 := renderAll(t, g1, true)
	s2 := renderAll(t, g2, true)
	assert.Equal(t, s1, s2)
}

// Spec property: Totality. Run must always terminate (return ongoing ==
// false eventually) even for an empty program.
func TestEmptyProgramEndsImmediately(t *testing.T) {
	prog := program.NewBuilder().SetCounts(0, 0, 0).Build()
	g, err := New(&prog, srate, DefaultOptions())
	require.NoError(t, err)

	out := make([]int16, 256)
	ongoing, n := g.Run(out, 256, false)
	assert.False(t, ongoing)
	assert.Equal(t, 0, n)
}

// Spec property: Silence tail. Once a voice's duration is exhausted, no
// further nonzero samples should appear for it; subsequent Run calls
// report !ongoing.
func TestSilenceTailAfterDuration(t *testing.T) {
	prog := singleSineProgram(220, 1.0, 10)
	g, err := New(&prog, srate, DefaultOptions())
	require.NoError(t, err)

	samples := renderAll(t, g, false)
	wantLen := int(10 * srate / 1000)
	assert.InDelta(t, wantLen, len(samples), float64(srate)/1000+2)

	out := make([]int16, 64)
	ongoing, n := g.Run(out, 64, false)
	assert.False(t, ongoing)
	assert.Equal(t, 0, n)
}

// Spec property: Amplitude bound. Output samples must always be
// representable as int16 (no overflow/wraparound), even with amp > 1.
func TestAmplitudeBoundClamps(t *testing.T) {
	prog := singleSineProgram(440, 5.0, 20)
	g, err := New(&prog, srate, DefaultOptions())
	require.NoError(t, err)

	samples := renderAll(t, g, false)
	for _, s := range samples {
		assert.True(t, s <= 32767 && s >= -32768)
	}
}

// Two-voice unison with AmpDivVoices set renders to completion with every
// sample inside the int16 range.
func TestTwoVoiceAmpDivVoices(t *testing.T) {
	op0 := program.NewWaveOscOp(0, wavelut.Sin, 440, 1.0, 50)
	op1 := program.NewWaveOscOp(1, wavelut.Sin, 440, 1.0, 50)
	ev0 := program.ProgramEvent{VoiceID: 0, Voice: &program.VoiceData{CarrierOpID: 0}, OpData: []program.OperatorData{op0}}
	ev1 := program.ProgramEvent{VoiceID: 1, Voice: &program.VoiceData{CarrierOpID: 1}, OpData: []program.OperatorData{op1}}
	prog := program.NewBuilder().
		SetCounts(2, 2, 0).
		SetMode(program.AmpDivVoices).
		AddEvent(ev0).
		AddEvent(ev1).
		Build()

	g, err := New(&prog, srate, DefaultOptions())
	require.NoError(t, err)
	samples := renderAll(t, g, false)
	for _, s := range samples {
		assert.True(t, s <= 32767 && s >= -32768)
	}
}

// Spec property: Cycle safety. A self-referential PMods list must not
// hang or panic; it should still produce bounded, finite output.
func TestSelfModulationDoesNotHang(t *testing.T) {
	op := program.NewWaveOscOp(0, wavelut.Sin, 220, 1.0, 20)
	op.Params |= program.PPMods
	op.PMods = program.ModulatorList{IDs: []uint32{0}}
	ev := program.ProgramEvent{VoiceID: 0, Voice: &program.VoiceData{CarrierOpID: 0}, OpData: []program.OperatorData{op}}
	prog := program.NewBuilder().SetCounts(1, 1, 1).AddEvent(ev).Build()

	logger := obslog.NewCapturing()
	g, err := New(&prog, srate, Options{Logger: logger})
	require.NoError(t, err)
	samples := renderAll(t, g, false)
	for _, s := range samples {
		assert.False(t, math.IsNaN(float64(s)))
	}
	assert.NotEmpty(t, logger.Warnings, "expected a cycle-detection warning")
}

// Spec glossary: "Implicit time: a modulator's duration is inherited
// from its carrier." An operator updated with TimeImplicit in the same
// event that assigns a voice must inherit that voice's carrier's
// resolved duration, not sit at zero length.
func TestImplicitTimeInheritsCarrierDuration(t *testing.T) {
	carrier := program.NewWaveOscOp(0, wavelut.Sin, 440, 1.0, 40)
	carrier.Params |= program.PAMods
	carrier.AMods = program.ModulatorList{IDs: []uint32{1}}

	mod := program.OperatorData{
		ID:     1,
		Params: program.PType | program.PTime | program.PAmp,
		Type:   program.OpAmp,
		Time:   program.Time{Flags: program.TimeImplicit},
		Amp:    program.NewConstAmp(0.5),
	}

	ev := program.ProgramEvent{
		VoiceID: 0,
		Voice:   &program.VoiceData{CarrierOpID: 0},
		OpData:  []program.OperatorData{carrier, mod},
	}
	prog := program.NewBuilder().SetCounts(1, 2, 1).AddEvent(ev).Build()

	g, err := New(&prog, srate, DefaultOptions())
	require.NoError(t, err)

	g.applyEvent(&g.prog.Events[0])

	wantSamples := msToSamples(40, srate)
	modOp := g.ops[1]
	require.NotNil(t, modOp)
	assert.False(t, modOp.TimeInf)
	assert.Equal(t, wantSamples, modOp.Time)
}

// An implicit-time operator declared in an event that carries no voice
// assignment has no carrier to inherit from; it should stay audible
// (TimeInf) rather than collapse to zero length.
func TestImplicitTimeWithoutVoiceStaysAudible(t *testing.T) {
	mod := program.OperatorData{
		ID:     0,
		Params: program.PType | program.PTime | program.PAmp,
		Type:   program.OpAmp,
		Time:   program.Time{Flags: program.TimeImplicit},
		Amp:    program.NewConstAmp(0.5),
	}
	ev := program.ProgramEvent{VoiceID: program.NoID, OpData: []program.OperatorData{mod}}
	prog := program.NewBuilder().SetCounts(0, 1, 0).AddEvent(ev).Build()

	g, err := New(&prog, srate, DefaultOptions())
	require.NoError(t, err)

	g.applyEvent(&g.prog.Events[0])

	modOp := g.ops[0]
	require.NotNil(t, modOp)
	assert.True(t, modOp.TimeInf)
}

func TestNestDepthExceededFailsConstruction(t *testing.T) {
	prog := program.NewBuilder().SetCounts(1, 1, 300).Build()
	_, err := New(&prog, srate, DefaultOptions())
	assert.ErrorIs(t, err, ErrNestDepthExceeded)
}

// Spec property: Time accounting. An event with a nonzero WaitMs should
// shift when the carrier starts, delaying the onset of nonzero output
// by roughly that many samples.
func TestEventWaitDelaysOnset(t *testing.T) {
	op := program.NewWaveOscOp(0, wavelut.Sin, 440, 1.0, 50)
	ev := program.ProgramEvent{
		WaitMs:  10,
		VoiceID: 0,
		Voice:   &program.VoiceData{CarrierOpID: 0},
		OpData:  []program.OperatorData{op},
	}
	prog := program.NewBuilder().SetCounts(1, 1, 0).AddEvent(ev).Build()
	g, err := New(&prog, srate, DefaultOptions())
	require.NoError(t, err)

	samples := renderAll(t, g, false)
	waitSamples := int(10 * srate / 1000)
	for i := 0; i < waitSamples; i++ {
		assert.Equal(t, int16(0), samples[i], "expected silence during wait at sample %d", i)
	}
}
