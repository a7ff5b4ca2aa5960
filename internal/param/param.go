// Package param implements ParamWithRange: a composite parameter made of
// a main value trajectory, an optional second-boundary trajectory, and
// two modulator lists (value-range and additive) that are recursively
// evaluated through the operator graph.
package param

import "github.com/cbegin/opsynth-go/internal/line"

// ModulatorList is an immutable, borrowed list of operator ids. The zero
// value (nil IDs) is the shared blank list used when a parameter has no
// modulators of a given kind.
type ModulatorList struct {
	IDs []uint32
}

// Blank is the empty modulator list.
var Blank = ModulatorList{}

// RunBlockFunc recursively evaluates one modulator operator into buf,
// mixing according to waveEnv/layer exactly as spec.md's run_block
// mixing rules describe. It is supplied by the engine package at call
// time to avoid an import cycle (ParamWithRange evaluation recurses into
// the very operator graph that embeds it).
type RunBlockFunc func(opID uint32, buf []float64, freq []float64, waveEnv, layer bool)

// Param is a composite {par, r_par, mods, r_mods} parameter.
type Param struct {
	Par   line.Line
	RPar  line.Line
	Mods  ModulatorList
	RMods ModulatorList
}

// New builds a constant Param with no modulators.
func New(v float64) Param {
	return Param{Par: line.New(v)}
}

// Eval evaluates the parameter for one block into buf. rParScratch and
// modScratch must each have length >= len(buf); they are caller-owned
// slices of the generator's buffer arena, following the same
// disjoint-slice-per-nesting-level discipline run_block uses elsewhere.
// freq is the parent operator's already-computed frequency buffer,
// threaded through so ratio-based modulator frequencies can reference it;
// it may be nil when not applicable. mulbuf, if non-nil, multiplies the
// main trajectory's output (Line_run's optional mulbuf argument).
func (p *Param) Eval(buf, rParScratch, modScratch []float64, freq, mulbuf []float64, runBlock RunBlockFunc) {
	n := len(buf)
	p.Par.Run(buf, mulbuf)

	if len(p.RMods.IDs) > 0 {
		p.RPar.Run(rParScratch[:n], mulbuf)
		for i, id := range p.RMods.IDs {
			runBlock(id, modScratch[:n], freq, true, i > 0)
		}
		for i := 0; i < n; i++ {
			buf[i] += (rParScratch[i] - buf[i]) * modScratch[i]
		}
	} else {
		p.RPar.Skip(int64(n))
	}

	for _, id := range p.Mods.IDs {
		runBlock(id, buf, freq, false, true)
	}
}
