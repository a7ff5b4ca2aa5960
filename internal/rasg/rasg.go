// Package rasg implements the random-segment generator: each cycle
// selects two pseudo-random endpoints via a stateless hash of the cycle
// number, then renders a Line-shaped segment between them.
package rasg

import (
	"math"

	"github.com/cbegin/opsynth-go/internal/line"
)

// Mode selects which endpoint-selection function a RasG uses.
type Mode uint8

const (
	ModeURand Mode = iota
	ModeGauss
	ModeBin
	ModeTern
	ModeFixed
	ModeAddRec
)

// Flags are modifier bits that reshape the rendered segment.
type Flags uint8

const (
	HalfShape Flags = 1 << iota // sort endpoints: sawtooth-like asymmetry
	Square                      // square values, preserving sign
	ZigZag                      // swap endpoints on alternating cycles
	Violet                      // high-pass via differencing consecutive cycles
	Perlin                      // reserved, currently a no-op
)

// Options configures endpoint selection.
type Options struct {
	Mode  Mode
	Flags Flags
	Level uint8   // used by bin/fixed
	Alpha float64 // used by addrec; 0 means the golden-ratio default
}

// DefaultOptions returns urand mode with no modifier flags.
func DefaultOptions() Options {
	return Options{Mode: ModeURand, Alpha: goldenFrac}
}

const goldenFrac = 0.6180339887498949

// ranfast32 is a stateless integer hash (splitmix-style finalizer): the
// same n always maps to the same pseudo-random value, with no RNG state
// to seed or advance.
func ranfast32(n uint32) uint32 {
	n += 0x9E3779B9
	n ^= n >> 16
	n *= 0x85EBCA6B
	n ^= n >> 13
	n *= 0xC2B2AE35
	n ^= n >> 16
	return n
}

// signedUnit maps a hash output to a float in [-1, 1].
func signedUnit(h uint32) float64 {
	return float64(int32(h)) / float64(math.MaxInt32)
}

// RasG holds the per-operator runtime state of a random-segment
// generator: the configured endpoint mode, the self-modulation feedback
// filter, and the endpoint/violet-history needed across cycle
// boundaries.
type RasG struct {
	Opts  Options
	Shape line.Shape

	curCycle   uint32
	haveCycle  bool
	a, b       float64
	prevA      float64
	havePrevA  bool

	fbZeroIn  float64
	fbPoleOut float64
}

// New builds a RasG with the given options and Line shape for segment
// rendering.
func New(opts Options, shape line.Shape) *RasG {
	return &RasG{Opts: opts, Shape: shape}
}

func (r *RasG) endpoints(n uint32) (float64, float64) {
	var a, b float64
	switch r.Opts.Mode {
	case ModeURand:
		a = signedUnit(ranfast32(n))
		b = signedUnit(ranfast32(n + 1))
	case ModeGauss:
		sat := func(u1, u2 uint32) float64 {
			g := (signedUnit(u1) + signedUnit(u2)) / 2
			const k = 1.5
			return math.Tanh(k*g) / math.Tanh(k)
		}
		a = sat(ranfast32(n), ranfast32(n+1000003))
		b = sat(ranfast32(n+1), ranfast32(n+1000004))
	case ModeBin:
		level := r.Opts.Level
		if level < 5 {
			level = 5
		}
		bit := func(h uint32) float64 {
			v := 1.0
			if (h>>level)&1 == 1 {
				v = -1.0
			}
			if n%2 == 0 {
				v += 0.05
			} else {
				v -= 0.05
			}
			return v
		}
		a = bit(ranfast32(n))
		b = bit(ranfast32(n + 1))
	case ModeTern:
		tern := func(m uint32) float64 {
			if m%2 == 0 {
				return 0
			}
			if ranfast32(m)&1 == 0 {
				return 1
			}
			return -1
		}
		a = tern(n)
		b = tern(n + 1)
	case ModeFixed:
		blend := float64(r.Opts.Level) / 9.0
		if blend > 1 {
			blend = 1
		}
		det := func(m uint32) float64 {
			if m%2 == 0 {
				return 1
			}
			return -1
		}
		a = blend*det(n) + (1-blend)*signedUnit(ranfast32(n))
		b = blend*det(n+1) + (1-blend)*signedUnit(ranfast32(n+1))
	case ModeAddRec:
		alpha := r.Opts.Alpha
		if alpha == 0 {
			alpha = goldenFrac
		}
		frac := func(x float64) float64 { return x - math.Floor(x) }
		a = 2*frac(float64(n)*alpha) - 1
		b = 2*frac(float64(n+1)*alpha) - 1
	}

	if r.Opts.Flags&Violet != 0 {
		if r.havePrevA {
			d := a - r.prevA
			r.prevA = a
			a = d
		} else {
			r.prevA = a
			r.havePrevA = true
		}
	}
	if r.Opts.Flags&Square != 0 {
		square := func(v float64) float64 {
			sign := 1.0
			if v < 0 {
				sign = -1
			}
			return sign * v * v
		}
		a, b = square(a), square(b)
	}
	if r.Opts.Flags&HalfShape != 0 && a > b {
		a, b = b, a
	}
	if r.Opts.Flags&ZigZag != 0 && n%2 == 1 {
		a, b = b, a
	}
	return a, b
}

// Run renders one sample per (cycle, phase) pair: a cycle change selects
// new endpoints; the phase within the cycle drives the configured Line
// shape between them.
func (r *RasG) Run(out []float64, cycleBuf, phaseBuf []uint32) {
	for i := range out {
		n := cycleBuf[i]
		if !r.haveCycle || n != r.curCycle {
			r.a, r.b = r.endpoints(n)
			r.curCycle = n
			r.haveCycle = true
		}
		t := float64(phaseBuf[i]) / float64(uint64(1)<<32)
		out[i] = line.ValueAt(r.Shape, r.a, r.b, t)
	}
}

// RunSelfMod behaves like Run but perturbs phaseBuf per sample with
// feedback from the previous output sample, smoothed through the same
// 1-pole + 1-zero filter WOsc uses for self-modulation.
func (r *RasG) RunSelfMod(out []float64, cycleBuf, phaseBuf []uint32, fbAmp []float64) {
	var prevS float64
	for i := range out {
		x := prevS + prevS
		y := 0.5*(x+r.fbZeroIn) - 0.5*r.fbPoleOut
		r.fbZeroIn = x
		r.fbPoleOut = y

		fb := uint32(int32(y * fbAmp[i] * float64(int32(1)<<20)))
		phaseBuf[i] += fb

		n := cycleBuf[i]
		if !r.haveCycle || n != r.curCycle {
			r.a, r.b = r.endpoints(n)
			r.curCycle = n
			r.haveCycle = true
		}
		t := float64(phaseBuf[i]) / float64(uint64(1)<<32)
		s := line.ValueAt(r.Shape, r.a, r.b, t)
		out[i] = s
		prevS = s
	}
}
