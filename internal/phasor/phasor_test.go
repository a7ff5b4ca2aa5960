package phasor

import "testing"

// TestRoundTripConstantFreq covers spec property 9: running a Phasor at
// a constant freq = srate/k for k samples returns to the starting phase
// modulo 2^32.
func TestRoundTripConstantFreq(t *testing.T) {
	const srate = 44100
	const k = 100
	p := NewPhasor(srate)
	start := p.Phase

	freq := make([]float64, k)
	for i := range freq {
		freq[i] = float64(srate) / float64(k)
	}
	out := make([]uint32, k)
	p.Fill(out, freq, nil, nil)

	if p.Phase != start {
		// allow up to one unit of rounding slip per sample (k in all)
		// since inc is computed via round(), not exact integer division.
		diff := int64(p.Phase) - int64(start)
		if diff < -int64(k) || diff > int64(k) {
			t.Fatalf("phase drift too large: start=%d end=%d", start, p.Phase)
		}
	}
}

func TestFillNoModInputsLeavesPhaseBareAccumulation(t *testing.T) {
	p := NewPhasor(1000)
	freq := []float64{100, 100, 100}
	out := make([]uint32, 3)
	p.Fill(out, freq, nil, nil)
	if out[2] <= out[0] {
		t.Fatalf("phase should monotonically accumulate without wraparound here, got %v", out)
	}
}

func TestCyclorRate2xDoublesCycleAdvance(t *testing.T) {
	a := NewCyclor(1000)
	b := NewCyclor(1000)
	b.Rate2x = true

	freq := make([]float64, 50)
	for i := range freq {
		freq[i] = 100
	}
	phaseA := make([]uint32, 50)
	phaseB := make([]uint32, 50)
	a.Fill(nil, phaseA, freq, nil, nil)
	b.Fill(nil, phaseB, freq, nil, nil)

	if b.Acc>>32 < a.Acc>>32 {
		t.Fatalf("rate2x cyclor should advance cycle count at least as fast: a=%d b=%d", a.Acc>>32, b.Acc>>32)
	}
}
