package engine

import (
	"math"

	"github.com/cbegin/opsynth-go/internal/program"
	"github.com/cbegin/opsynth-go/internal/voice"
)

// Run renders up to bufLen frames into out, following spec.md §4.10.
// out must hold bufLen*(stereo?2:1) int16 samples. It returns whether
// the signal is still ongoing (more samples would be produced by a
// further call) and how many frames were actually written.
func (g *Generator) Run(out []int16, bufLen int, stereo bool) (ongoing bool, outLen int) {
	channels := 1
	if stereo {
		channels = 2
	}
	for i := range out[:bufLen*channels] {
		out[i] = 0
	}

	written := 0
	for written < bufLen {
		if g.eventPos >= len(g.prog.Events) && !g.anyVoiceActive() {
			break
		}
		step := g.nextStep(bufLen - written)
		if step == 0 {
			g.fireDueEvents()
			step = g.nextStep(bufLen - written)
			if step == 0 {
				break
			}
		}
		if g.eventPos >= len(g.prog.Events) {
			// no event left to fire: end the block where the longest
			// remaining voice ends, so the frame count stops with the sound.
			longest := int64(0)
			for i := g.startVoice; i < len(g.voices); i++ {
				if d := g.voices[i].Duration; d > longest {
					longest = d
				}
			}
			if longest < int64(step) {
				step = int(longest)
			}
		}
		g.renderVoices(step)
		g.writeMix(out[written*channels:], step, stereo)
		written += step
		g.waitRemaining -= int64(step)
		if g.waitRemaining <= 0 {
			g.fireDueEvents()
		}
	}

	ongoing = g.eventPos < len(g.prog.Events) || g.anyVoiceActive()
	if !ongoing && !g.finalChecked {
		g.finalCheck()
		g.finalChecked = true
	}
	return ongoing, written
}

// nextStep returns how many frames can be rendered before either the
// requested budget is exhausted or the next pending event fires,
// whichever is smaller.
func (g *Generator) nextStep(remaining int) int {
	step := remaining
	if step > BufLen {
		step = BufLen
	}
	if g.eventPos < len(g.prog.Events) {
		if g.waitRemaining < int64(step) {
			step = int(g.waitRemaining)
		}
	}
	return step
}

// fireDueEvents applies every pending event (and any immediately
// following it with zero wait) in program order.
func (g *Generator) fireDueEvents() {
	for g.eventPos < len(g.prog.Events) && g.waitRemaining <= 0 {
		ev := &g.prog.Events[g.eventPos]
		g.applyEvent(ev)
		g.eventPos++
		if g.eventPos < len(g.prog.Events) {
			g.primeWait(g.eventPos)
		}
	}
}

func (g *Generator) anyVoiceActive() bool {
	for i := g.startVoice; i < len(g.voices); i++ {
		if g.voices[i].Duration > 0 {
			return true
		}
	}
	return false
}

// renderVoices runs every active voice for up to step frames, mixing
// into g.mixL/g.mixR (cleared at the start of this call).
func (g *Generator) renderVoices(step int) {
	zero(g.mixL[:step])
	zero(g.mixR[:step])

	activeCount := 0
	for i := g.startVoice; i < len(g.voices); i++ {
		if g.voices[i].Duration > 0 {
			activeCount++
		}
	}
	ampScale := voice.AmpScale(g.prog.AmpMult, g.prog.Mode&program.AmpDivVoices != 0, activeCount)

	for i := g.startVoice; i < len(g.voices); i++ {
		vn := g.voices[i]
		if vn.Duration <= 0 {
			continue
		}
		n := step
		if int64(n) > vn.Duration {
			n = int(vn.Duration)
		}

		carrierOut := g.bufsAt(0).raw[:n]
		g.runBlock(vn.CarrOpID, 0, carrierOut, nil, false, false)

		panBuf := g.bufsAt(0).pm[:n] // reuse depth-0's pm slot; depth-0's own oscillator work has already completed by the time pan is evaluated
		carr := g.ops[vn.CarrOpID]
		if carr != nil {
			carr.Pan.Run(panBuf, nil)
		} else {
			zero(panBuf)
		}

		if carr != nil && len(carr.CAMods.IDs) > 0 {
			camBuf := g.bufsAt(0).mod[:n]
			for i, mid := range carr.CAMods.IDs {
				g.runBlock(mid, 1, camBuf, carrierOut, true, i > 0)
			}
			for i := range carrierOut {
				carrierOut[i] *= camBuf[i]
			}
		}
		if carr != nil && len(carr.APMods.IDs) > 0 {
			apBuf := g.bufsAt(0).rpar[:n]
			for i, mid := range carr.APMods.IDs {
				g.runBlock(mid, 1, apBuf, carrierOut, false, i > 0)
			}
			for i := range panBuf {
				panBuf[i] += apBuf[i]
			}
		}

		voice.Mix(g.mixL[:n], g.mixR[:n], carrierOut, panBuf, ampScale)

		vn.Duration -= int64(n)
	}

	for g.startVoice < len(g.voices) && g.voices[g.startVoice].Duration <= 0 && g.voices[g.startVoice].Init {
		g.startVoice++
	}
}

// writeMix clamps the stereo mix buffers to [-1,1] and writes them as
// int16 PCM, averaging to mono when stereo is false.
func (g *Generator) writeMix(out []int16, n int, stereo bool) {
	for i := 0; i < n; i++ {
		l := clamp(g.mixL[i])
		r := clamp(g.mixR[i])
		if stereo {
			out[i*2] = toInt16(l)
			out[i*2+1] = toInt16(r)
		} else {
			out[i] = toInt16((l + r) / 2)
		}
	}
}

func clamp(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

func toInt16(s float64) int16 {
	return int16(math.Round(s * 32767))
}

// finalCheck emits a warning for every voice slot that never received a
// carrier operator assignment (Init never set), matching spec.md §7's "uninitialized voice at signal end"
// policy: it logs and does not fail the run.
func (g *Generator) finalCheck() {
	for i, vn := range g.voices {
		if !vn.Init && !g.uninitWarned[uint32(i)] {
			g.log.Warnf("voice %d was never initialized", i)
			g.uninitWarned[uint32(i)] = true
		}
	}
}
