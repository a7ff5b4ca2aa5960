package wosc

import (
	"math"
	"testing"

	"github.com/cbegin/opsynth-go/internal/phasor"
	"github.com/cbegin/opsynth-go/internal/wavelut"
)

// TestPILUTReconstruction covers spec property 10: for a steady-frequency
// WOsc at one LUT-sample per step or slower, output matches the naive
// LUT within a bounded error.
func TestPILUTReconstruction(t *testing.T) {
	const srate = 44100
	freqHz := float64(srate) / wavelut.LUTLen // one LUT sample per step
	tbl := wavelut.Get(wavelut.Sin)

	ph := phasor.NewPhasor(srate)
	freq := make([]float64, 2048)
	for i := range freq {
		freq[i] = freqHz
	}
	phaseBuf := make([]uint32, len(freq))
	ph.Fill(phaseBuf, freq, nil, nil)

	osc := New(tbl)
	out := make([]float64, len(phaseBuf))
	osc.Run(out, phaseBuf)

	maxErr := 0.0
	// skip the first few samples while the differentiator's history is
	// still warming up.
	for i := 8; i < len(out); i++ {
		want := wavelut.GetLerp(tbl, phaseBuf[i])
		if d := math.Abs(out[i] - want); d > maxErr {
			maxErr = d
		}
	}
	if maxErr > 0.25 {
		t.Fatalf("PILUT reconstruction error too large: %v", maxErr)
	}
}

func TestRunZeroPhaseDiffReusesPreviousSample(t *testing.T) {
	tbl := wavelut.Get(wavelut.Tri)
	osc := New(tbl)
	phaseBuf := []uint32{1000, 1000, 1000}
	out := make([]float64, 3)
	osc.Run(out, phaseBuf)
	if out[1] != out[0] || out[2] != out[0] {
		t.Fatalf("zero phase diff should repeat prior sample, got %v", out)
	}
}
