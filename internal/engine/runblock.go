package engine

import (
	"github.com/cbegin/opsynth-go/internal/operator"
	"github.com/cbegin/opsynth-go/internal/param"
)

// makeRunBlock returns a param.RunBlockFunc bound to the given nesting
// depth, so ParamWithRange.Eval can recurse into the operator graph
// without operator/param importing engine.
func (g *Generator) makeRunBlock(depth int) param.RunBlockFunc {
	return func(opID uint32, buf []float64, freq []float64, waveEnv, layer bool) {
		g.runBlock(opID, depth, buf, freq, waveEnv, layer)
	}
}

// runBlock is the recursive evaluator described in spec.md §4.8: cycle
// guard, time limiting, type dispatch and mixing, all sharing the
// nesting level's 7-buffer scratch slice.
func (g *Generator) runBlock(id uint32, depth int, out []float64, freqParent []float64, waveEnv, layer bool) {
	n := len(out)
	op := g.ops[id]
	if op == nil || !op.Init {
		if !layer {
			zero(out)
		}
		return
	}
	if op.Visited {
		if !g.cycleWarned {
			g.log.Warnf("cycle detected at operator %d; yielding silence for this block", id)
			g.cycleWarned = true
		}
		if !layer {
			zero(out)
		}
		return
	}
	op.Visited = true
	defer func() { op.Visited = false }()

	effLen := n
	if !op.TimeInf && op.Time < int64(n) {
		effLen = int(op.Time)
		if !layer {
			zero(out[effLen:])
		}
	}
	if effLen <= 0 {
		if !layer {
			zero(out)
		}
		op.Time = 0
		return
	}

	workOut := out[:effLen]
	bufs := g.bufsAt(depth)
	amp := bufs.amp[:effLen]
	rpar := bufs.rpar[:effLen]
	mod := bufs.mod[:effLen]
	raw := bufs.raw[:effLen]
	childRun := g.makeRunBlock(depth + 1)

	switch op.Type {
	case operator.Amp:
		op.Amp.Eval(amp, rpar, mod, freqParent, nil, childRun)
		operator.Ones(raw)
		operator.Mix(workOut, raw, amp, waveEnv, layer)

	case operator.Noise:
		op.Amp.Eval(amp, rpar, mod, freqParent, nil, childRun)
		op.Noise.Run(raw)
		operator.Mix(workOut, raw, amp, waveEnv, layer)

	case operator.WaveOsc:
		freqBuf := bufs.freq[:effLen]
		op.Freq.Eval(freqBuf, rpar, mod, freqParent, nil, childRun)

		pmBuf, fpmBuf := g.evalPMods(op, depth, effLen, freqBuf, childRun)

		phaseBuf := g.phaseBufAt(depth)[:effLen]
		op.Ph.Fill(phaseBuf, freqBuf, pmBuf, fpmBuf)

		op.Amp.Eval(amp, rpar, mod, freqBuf, nil, childRun)

		if op.SelfMod {
			fb := bufs.pm[:effLen] // pm slot already consumed above if pmods existed; reuse for fb scale when self-mod has no external pmods
			op.PMAmp.Run(fb, nil)
			op.Osc.RunSelfMod(raw, phaseBuf, fb)
		} else {
			op.Osc.Run(raw, phaseBuf)
		}
		operator.Mix(workOut, raw, amp, waveEnv, layer)

	case operator.RandomSeg:
		freqBuf := bufs.freq[:effLen]
		op.Freq.Eval(freqBuf, rpar, mod, freqParent, nil, childRun)

		pmBuf, fpmBuf := g.evalPMods(op, depth, effLen, freqBuf, childRun)

		cycleBuf := g.cycleBufAt(depth)[:effLen]
		phaseBuf := g.phaseBufAt(depth)[:effLen]
		op.Cyc.Fill(cycleBuf, phaseBuf, freqBuf, pmBuf, fpmBuf)

		op.Amp.Eval(amp, rpar, mod, freqBuf, nil, childRun)

		if op.SelfMod {
			fb := bufs.pm[:effLen]
			op.PMAmp.Run(fb, nil)
			op.RasGState.RunSelfMod(raw, cycleBuf, phaseBuf, fb)
		} else {
			op.RasGState.Run(raw, cycleBuf, phaseBuf)
		}
		operator.Mix(workOut, raw, amp, waveEnv, layer)
	}

	op.Time -= int64(effLen)
}

// evalPMods evaluates an oscillator's phase-modulator and
// frequency-scaled-phase-modulator lists into the level's pm/fpm scratch
// buffers, returning nil for either that has no modulators (Phasor.Fill
// treats a nil component as absent).
func (g *Generator) evalPMods(op *operator.Op, depth, n int, freqBuf []float64, childRun param.RunBlockFunc) (pm, fpm []float64) {
	bufs := g.bufsAt(depth)
	if len(op.PMods.IDs) > 0 {
		pm = bufs.pm[:n]
		for i, mid := range op.PMods.IDs {
			g.runBlock(mid, depth+1, pm, freqBuf, false, i > 0)
		}
	}
	if len(op.FPMods.IDs) > 0 {
		fpm = bufs.fpm[:n]
		for i, mid := range op.FPMods.IDs {
			g.runBlock(mid, depth+1, fpm, freqBuf, false, i > 0)
		}
	}
	return pm, fpm
}

func zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}
