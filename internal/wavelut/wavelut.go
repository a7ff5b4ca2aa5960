// Package wavelut implements precomputed wave lookup tables and their
// pre-integrated counterparts (PILUTs), used by oscillators to
// reconstruct band-limited waveforms by differentiating an integral
// rather than sampling the raw (alias-prone) waveform directly.
package wavelut

import (
	"math"
	"sync"
)

// Wave identifies one of the supported oscillator waveforms.
type Wave uint8

const (
	Sin Wave = iota
	Tri
	Saw
	Sqr
	waveCount
)

// LUTLen is the table length; a power of two so the top bits of a
// 32-bit phase index it directly.
const LUTLen = 1024

const lutShift = 32 - 10 // log2(LUTLen) == 10

// Table holds one waveform's naive samples and its pre-integrated
// counterpart, plus the calibration constants needed to reconstruct the
// waveform by differencing PILUT samples.
type Table struct {
	Wave     Wave
	Naive    [LUTLen]float64
	PILUT    []float64 // length LUTLen+3; the last 3 entries continue the integral into the next cycle
	DVScale  float64
	DVOffset float64
	PhaseAdj float64 // fraction of a cycle; rawFunc is sampled at phase+PhaseAdj
}

func rawFunc(w Wave) func(p float64) float64 {
	switch w {
	case Sin:
		return func(p float64) float64 { return math.Sin(2 * math.Pi * p) }
	case Tri:
		return func(p float64) float64 {
			// 0 at p=0, 1 at p=0.25, 0 at p=0.5, -1 at p=0.75, 0 at p=1.
			switch {
			case p < 0.25:
				return 4 * p
			case p < 0.75:
				return 2 - 4*p
			default:
				return 4*p - 4
			}
		}
	case Saw:
		return func(p float64) float64 { return 2*p - 1 }
	case Sqr:
		return func(p float64) float64 {
			if p < 0.5 {
				return 1
			}
			return -1
		}
	default:
		return func(p float64) float64 { return 0 }
	}
}

func phaseAdjFor(w Wave) float64 {
	switch w {
	case Saw:
		// raw saw is -1 at p=0; shifting by half a cycle makes the
		// logical phase-0 sample land on raw's zero crossing.
		return 0.5
	default:
		return 0
	}
}

func frac(x float64) float64 {
	x -= math.Floor(x)
	return x
}

func buildTable(w Wave) *Table {
	t := &Table{Wave: w, PhaseAdj: phaseAdjFor(w)}
	f := rawFunc(w)
	for i := 0; i < LUTLen; i++ {
		p := frac(float64(i)/LUTLen + t.PhaseAdj)
		t.Naive[i] = f(p)
	}

	// Mean of the naive table over one cycle. Sampled on this grid the
	// saw is not exactly zero-mean (-1/LUTLen), so the mean is removed
	// before integrating and given back through DVOffset below.
	mean := 0.0
	for i := 0; i < LUTLen; i++ {
		mean += t.Naive[i]
	}
	mean /= LUTLen

	// Cumulative integral of the mean-removed table, scaled per unit
	// phase (0..1 over one cycle), padded by 3 extra samples that
	// continue the integral into the next cycle. GetHerp itself wraps
	// its indices modulo LUTLen and reads only the first LUTLen entries.
	pilut := make([]float64, LUTLen+3)
	acc := 0.0
	for i := 0; i < LUTLen; i++ {
		pilut[i] = acc
		acc += (t.Naive[i] - mean) / LUTLen
	}
	for i := 0; i < 3; i++ {
		pilut[LUTLen+i] = acc + pilut[i]
	}
	t.PILUT = pilut

	// With the mean removed the integral returns to its starting value
	// after one period. DVScale undoes the 1/LUTLen normalization folded
	// into the integral above, converting a difference of two PILUT
	// samples (separated by a 32-bit phase delta) back into a
	// naive-amplitude-scale derivative estimate; DVOffset restores the
	// removed mean.
	t.DVScale = float64(uint64(1) << 32)
	t.DVOffset = mean
	return t
}

var (
	tablesOnce sync.Once
	tables     [waveCount]*Table
)

// Init lazily builds all wave tables exactly once; safe to call
// concurrently and redundantly. Get calls it on every lookup, so table
// build cost is paid once per process, on the first lookup, regardless
// of how many Generators are created.
func Init() {
	tablesOnce.Do(func() {
		for w := Wave(0); w < waveCount; w++ {
			tables[w] = buildTable(w)
		}
	})
}

// Get returns the shared table for w, building all tables on first use.
func Get(w Wave) *Table {
	Init()
	return tables[w]
}

// GetLerp linearly interpolates between the two naive-LUT samples
// bracketing the top bits of a 32-bit phase.
func GetLerp(t *Table, phase32 uint32) float64 {
	idx := phase32 >> lutShift
	fracBits := phase32 << (32 - lutShift) >> (32 - lutShift)
	x := float64(fracBits) / float64(uint32(1)<<lutShift)
	a := t.Naive[idx]
	b := t.Naive[(idx+1)%LUTLen]
	return a + (b-a)*x
}

// GetHerp performs 4-point Hermite interpolation over the PILUT,
// addressed the same way as GetLerp, for differentiation-quality
// reconstruction.
func GetHerp(t *Table, phase32 uint32) float64 {
	idx := phase32 >> lutShift
	fracBits := phase32 << (32 - lutShift) >> (32 - lutShift)
	x := float64(fracBits) / float64(uint32(1)<<lutShift)

	p := t.PILUT
	n := LUTLen
	im1 := (int(idx) - 1 + n) % n
	i0 := int(idx)
	i1 := (int(idx) + 1) % n
	i2 := (int(idx) + 2) % n

	ym1, y0, y1, y2 := p[im1], p[i0], p[i1], p[i2]
	return hermite4(ym1, y0, y1, y2, x)
}

// hermite4 is the classic 4-point, 3rd-order Catmull-Rom style Hermite
// interpolation kernel over samples at relative positions -1,0,1,2.
func hermite4(ym1, y0, y1, y2, x float64) float64 {
	c0 := y0
	c1 := 0.5 * (y1 - ym1)
	c2 := ym1 - 2.5*y0 + 2*y1 - 0.5*y2
	c3 := 0.5*(y2-ym1) + 1.5*(y0-y1)
	return ((c3*x+c2)*x+c1)*x + c0
}
