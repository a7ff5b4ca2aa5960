// Package wosc implements the wave oscillator: phase-in, sample-out,
// reconstructing a band-limited waveform by differentiating a
// pre-integrated lookup table (PILUT) rather than sampling the naive
// table directly.
package wosc

import "github.com/cbegin/opsynth-go/internal/wavelut"

// selfModStep is the phase-unit span treated as "one sample back" when
// seeding prev_Is/prev_s on reset; it only affects the very first
// sample after a wave or phase discontinuity, not steady-state output.
const selfModStep = 1 << 16

// WOsc is a single wave oscillator's differentiation state.
type WOsc struct {
	Table *wavelut.Table

	prevPhase uint32
	prevIs    float64
	prevS     float64
	needReset bool

	// 1-pole + 1-zero feedback smoothing state for self-modulation.
	fbZeroIn  float64
	fbPoleOut float64
}

// New builds a WOsc for the given wave table; it always starts needing a
// reset on its first Run.
func New(t *wavelut.Table) *WOsc {
	return &WOsc{Table: t, needReset: true}
}

// SetWave swaps the oscillator's wave table, requiring a reset before the
// next Run.
func (w *WOsc) SetWave(t *wavelut.Table) {
	w.Table = t
	w.needReset = true
}

func (w *WOsc) reset(phase0 uint32) {
	priorPhase := phase0 - selfModStep
	w.prevIs = wavelut.GetHerp(w.Table, priorPhase)
	is0 := wavelut.GetHerp(w.Table, phase0)
	w.prevS = (is0-w.prevIs)*(w.Table.DVScale/float64(selfModStep)) + w.Table.DVOffset
	w.prevPhase = priorPhase
	w.needReset = false
}

// Run fills out with one sample per entry in phaseBuf, differentiating
// the PILUT between consecutive phase values.
func (w *WOsc) Run(out []float64, phaseBuf []uint32) {
	n := len(phaseBuf)
	if n == 0 {
		return
	}
	if w.needReset {
		w.reset(phaseBuf[0])
	}
	for i := 0; i < n; i++ {
		phase := phaseBuf[i]
		diff := int32(phase - w.prevPhase)
		if diff == 0 {
			out[i] = w.prevS
			continue
		}
		is := wavelut.GetHerp(w.Table, phase)
		s := (is-w.prevIs)*(w.Table.DVScale/float64(diff)) + w.Table.DVOffset
		w.prevIs = is
		w.prevS = s
		w.prevPhase = phase
		out[i] = s
	}
}

// RunSelfMod behaves like Run, but feeds each output sample back into the
// next sample's phase through a 1-pole + 1-zero smoothing filter on
// (s + prev_s), scaled per-sample by fbAmp. phaseBuf is mutated in place
// with the added feedback offset, matching how an operator's own phase
// buffer is perturbed by its self-modulation before oscillation.
func (w *WOsc) RunSelfMod(out []float64, phaseBuf []uint32, fbAmp []float64) {
	n := len(phaseBuf)
	if n == 0 {
		return
	}
	if w.needReset {
		w.reset(phaseBuf[0])
	}
	for i := 0; i < n; i++ {
		x := w.prevS + w.prevS // twice the last sample; the zero stage below adds the previous x, giving (s + prev_s)
		// one-pole + one-zero: y = 0.5*(x + x_prev_zero) - 0.5*y_prev_pole
		y := 0.5*(x+w.fbZeroIn) - 0.5*w.fbPoleOut
		w.fbZeroIn = x
		w.fbPoleOut = y

		fbPhase := uint32(int32(y * fbAmp[i] * float64(int32(1)<<20)))
		phase := phaseBuf[i] + fbPhase
		phaseBuf[i] = phase

		diff := int32(phase - w.prevPhase)
		if diff == 0 {
			out[i] = w.prevS
			continue
		}
		is := wavelut.GetHerp(w.Table, phase)
		s := (is-w.prevIs)*(w.Table.DVScale/float64(diff)) + w.Table.DVOffset
		w.prevIs = is
		w.prevS = s
		w.prevPhase = phase
		out[i] = s
	}
}
