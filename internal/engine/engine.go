// Package engine implements the Generator: the top-level driver that
// owns the buffer arena, the operator and voice runtime tables, and the
// event cursor, and that recursively evaluates the modulation graph into
// mixed, clamped int16 PCM.
package engine

import (
	"errors"

	"github.com/cbegin/opsynth-go/internal/obslog"
	"github.com/cbegin/opsynth-go/internal/operator"
	"github.com/cbegin/opsynth-go/internal/program"
	"github.com/cbegin/opsynth-go/internal/voice"
)

// BufLen is the fixed sample-chunk size for block-based recursion.
const BufLen = 1024

// bufsPerLevel is the number of scratch buffers a single nesting level
// needs: raw (this operator's own oscillator/noise output before
// mixing), freq, amp, rpar (value-range second-boundary scratch), mod
// (modulator accumulation scratch), pm and fpm (phase-modulation sum
// buffers).
const bufsPerLevel = 7

// maxNestDepth is the hard ceiling on Program.OpNestDepth; exceeding it
// fails construction, per spec.md §7.
const maxNestDepth = 255

var (
	// ErrNestDepthExceeded is returned by New when a Program declares a
	// nesting depth beyond maxNestDepth (or the Options override).
	ErrNestDepthExceeded = errors.New("engine: program nesting depth exceeds configured maximum")
)

// Options configures a Generator beyond what the Program itself fixes.
type Options struct {
	// MaxNestDepth overrides the default 255 ceiling; zero means use the
	// default.
	MaxNestDepth int
	Logger       obslog.Logger
}

// DefaultOptions returns the default construction options: a 255-level
// nesting ceiling and a stderr warn-level logger.
func DefaultOptions() Options {
	return Options{MaxNestDepth: maxNestDepth, Logger: obslog.NewDefault()}
}

// Generator is the operator-graph interpreter.
type Generator struct {
	prog  *program.Program
	srate uint32
	log   obslog.Logger

	ops    []*operator.Op
	voices []*voice.Voice

	genBufs   [][]float64 // (1+OpNestDepth)*bufsPerLevel buffers, length BufLen each
	phaseBufs [][]uint32  // one per level
	cycleBufs [][]uint32  // one per level

	mixL, mixR []float64 // BufLen each

	eventPos      int
	waitRemaining int64   // samples left to wait before the next pending event fires
	waitCarry     float64 // ms->samples rounding carry for wait times

	startVoice int // index of the first not-yet-completed voice

	cycleWarned    bool
	uninitWarned   map[uint32]bool
	finalChecked   bool
}

// New allocates a Generator for prog at the given sample rate. prog is
// borrowed for the Generator's lifetime and must not be mutated by the
// caller afterward.
func New(prog *program.Program, srate uint32, opts Options) (*Generator, error) {
	ceiling := opts.MaxNestDepth
	if ceiling == 0 {
		ceiling = maxNestDepth
	}
	if prog.OpNestDepth > ceiling {
		return nil, ErrNestDepthExceeded
	}
	logger := opts.Logger
	if logger == nil {
		logger = obslog.NewDefault()
	}

	levels := prog.OpNestDepth + 1
	g := &Generator{
		prog:         prog,
		srate:        srate,
		log:          logger,
		ops:          make([]*operator.Op, prog.OpCount),
		voices:       make([]*voice.Voice, prog.VoiceCount),
		genBufs:      make([][]float64, levels*bufsPerLevel),
		phaseBufs:    make([][]uint32, levels),
		cycleBufs:    make([][]uint32, levels),
		mixL:         make([]float64, BufLen),
		mixR:         make([]float64, BufLen),
		uninitWarned: make(map[uint32]bool),
	}
	for i := range g.genBufs {
		g.genBufs[i] = make([]float64, BufLen)
	}
	for i := range g.phaseBufs {
		g.phaseBufs[i] = make([]uint32, BufLen)
		g.cycleBufs[i] = make([]uint32, BufLen)
	}
	for i := range g.voices {
		g.voices[i] = &voice.Voice{FreqBufID: -1}
	}
	if len(prog.Events) > 0 {
		g.primeWait(0)
	}
	return g, nil
}

type levelBufs struct {
	raw, freq, amp, rpar, mod, pm, fpm []float64
}

func (g *Generator) bufsAt(depth int) levelBufs {
	base := depth * bufsPerLevel
	b := g.genBufs[base : base+bufsPerLevel]
	return levelBufs{raw: b[0], freq: b[1], amp: b[2], rpar: b[3], mod: b[4], pm: b[5], fpm: b[6]}
}

func (g *Generator) phaseBufAt(depth int) []uint32 { return g.phaseBufs[depth] }
func (g *Generator) cycleBufAt(depth int) []uint32 { return g.cycleBufs[depth] }

func msToSamples(ms float64, srate uint32) int64 {
	return int64(ms*float64(srate)/1000 + 0.5)
}

// primeWait computes the sample-accurate wait before prog.Events[idx]
// fires, carrying the ms->samples rounding remainder forward across
// events the way a fixed-point accumulator would.
func (g *Generator) primeWait(idx int) {
	ev := g.prog.Events[idx]
	samplesF := ev.WaitMs*float64(g.srate)/1000 + g.waitCarry
	n := int64(samplesF)
	g.waitCarry = samplesF - float64(n)
	g.waitRemaining = n
}
