// Package phasor implements the per-sample 32-bit phase accumulator
// (Phasor) and its 64-bit cycle-counting extension (Cyclor) used to
// drive oscillators and random-segment generators.
package phasor

import "math"

// HUMMID is the geometric mean of 20 Hz and 20000 Hz, used as the
// reference frequency for frequency-proportional phase modulation.
const HUMMID = 632.4555

// Phasor is a 32-bit phase accumulator.
type Phasor struct {
	Phase uint32
	Coeff float64 // UINT32_MAX / srate
}

// NewPhasor builds a Phasor calibrated for the given sample rate.
func NewPhasor(srate uint32) Phasor {
	return Phasor{Coeff: float64(math.MaxUint32) / float64(srate)}
}

func roundToInt64(x float64) int64 {
	return int64(math.Round(x))
}

// Fill advances the phase accumulator for len(phaseOut) samples, writing
// the resulting 32-bit phase for each. pm and fpm are optional
// phase-modulation inputs (phase-proportional and frequency-proportional,
// respectively); either or both may be nil.
func (p *Phasor) Fill(phaseOut []uint32, freq, pm, fpm []float64) {
	n := len(phaseOut)
	for i := 0; i < n; i++ {
		inc := uint32(roundToInt64(p.Coeff * freq[i]))
		p.Phase += inc

		var ofsF float64
		switch {
		case pm != nil && fpm != nil:
			ofsF = pm[i] + fpm[i]*freq[i]/HUMMID
		case pm != nil:
			ofsF = pm[i]
		case fpm != nil:
			ofsF = fpm[i] * freq[i] / HUMMID
		default:
			phaseOut[i] = p.Phase
			continue
		}
		ofs := int32(roundToInt64(float64(math.MaxInt32) * ofsF))
		phaseOut[i] = uint32(ofs) + p.Phase
	}
}

// Cyclor extends Phasor to 64 bits: the upper 32 bits track an integer
// cycle count, the lower 32 the sub-cycle phase.
type Cyclor struct {
	Acc    uint64 // high32 = cycle count, low32 = phase
	Coeff  float64
	Rate2x bool // doubles cycle advance relative to phase
}

// NewCyclor builds a Cyclor calibrated for the given sample rate.
func NewCyclor(srate uint32) Cyclor {
	return Cyclor{Coeff: float64(math.MaxUint32) / float64(srate)}
}

// Cycle returns the current integer cycle count.
func (c *Cyclor) Cycle() uint32 { return uint32(c.Acc >> 32) }

// Phase returns the current sub-cycle phase.
func (c *Cyclor) Phase() uint32 { return uint32(c.Acc) }

// Fill advances the cycle/phase accumulator for len(phaseOut) samples.
// cycleOut may be nil, in which case only phases are written.
func (c *Cyclor) Fill(cycleOut []uint32, phaseOut []uint32, freq, pm, fpm []float64) {
	n := len(phaseOut)
	for i := 0; i < n; i++ {
		inc := uint64(roundToInt64(c.Coeff * freq[i]))
		if c.Rate2x {
			inc *= 2
		}
		c.Acc += inc

		var ofsF float64
		switch {
		case pm != nil && fpm != nil:
			ofsF = pm[i] + fpm[i]*freq[i]/HUMMID
		case pm != nil:
			ofsF = pm[i]
		case fpm != nil:
			ofsF = fpm[i] * freq[i] / HUMMID
		}
		ofs := int32(roundToInt64(float64(math.MaxInt32) * ofsF))
		phase := uint32(c.Acc) + uint32(ofs)
		phaseOut[i] = phase
		if cycleOut != nil {
			cycleOut[i] = uint32(c.Acc >> 32)
		}
	}
}
