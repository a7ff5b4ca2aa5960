package line

import "testing"

func TestRunConstantWhenNoGoal(t *testing.T) {
	l := New(0.5)
	buf := make([]float64, 8)
	l.Run(buf, nil)
	for i, v := range buf {
		if v != 0.5 {
			t.Fatalf("buf[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestRunLinearReachesTarget(t *testing.T) {
	l := Line{V0: 0, Vt: 1, End: 4, Shape: ShapeLin, Flags: Goal}
	buf := make([]float64, 4)
	l.Run(buf, nil)
	if buf[0] != 0 {
		t.Fatalf("buf[0] = %v, want 0", buf[0])
	}
	if l.Flags&Goal != 0 {
		t.Fatalf("Goal flag should clear once pos reaches end")
	}
	if l.V0 != l.Vt {
		t.Fatalf("v0 (%v) should equal vt (%v) after finish", l.V0, l.Vt)
	}

	// subsequent run yields the constant vt
	tail := make([]float64, 2)
	l.Run(tail, nil)
	for _, v := range tail {
		if v != 1 {
			t.Fatalf("tail sample = %v, want 1 (constant vt)", v)
		}
	}
}

func TestRunMulbuf(t *testing.T) {
	l := New(2)
	buf := make([]float64, 3)
	mul := []float64{1, 2, 3}
	l.Run(buf, mul)
	want := []float64{2, 4, 6}
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestGetStopsAtEnd(t *testing.T) {
	l := Line{V0: 0, Vt: 1, End: 3, Shape: ShapeLin, Flags: Goal}
	buf := make([]float64, 8)
	n := l.Get(buf, nil)
	if n != 3 {
		t.Fatalf("Get returned %d, want 3", n)
	}
	if !l.Done() {
		t.Fatalf("line should be finished after Get consumed the whole trajectory")
	}
}

func TestSkipEquivalentToRunForPosAdvance(t *testing.T) {
	a := Line{V0: 0, Vt: 1, End: 10, Shape: ShapeCos, Flags: Goal}
	b := a

	buf := make([]float64, 6)
	a.Run(buf, nil)

	b.Skip(6)

	if a.Pos != b.Pos {
		t.Fatalf("pos diverged: run=%d skip=%d", a.Pos, b.Pos)
	}
	if a.Flags != b.Flags {
		t.Fatalf("flags diverged: run=%v skip=%v", a.Flags, b.Flags)
	}
}

func TestCopyTimeIfNewKeepsExistingEnd(t *testing.T) {
	l := Line{V0: 0, Vt: 1, Pos: 4, End: 10, Shape: ShapeLin, Flags: Goal}
	incoming := Line{V0: 5, Vt: 9, End: 999, Shape: ShapeExp, Flags: Goal | TimeIfNew}
	l.Copy(incoming)
	if l.End != 10 || l.Pos != 4 {
		t.Fatalf("TimeIfNew should preserve existing pos/end, got pos=%d end=%d", l.Pos, l.End)
	}
	if l.V0 != 5 || l.Shape != ShapeExp {
		t.Fatalf("Copy should still adopt non-time fields from incoming")
	}
}

func TestShapesMonotonic(t *testing.T) {
	for _, sh := range []Shape{ShapeLin, ShapeCos, ShapeExp, ShapeLog, ShapeXpe, ShapeLge} {
		prev := -1.0
		for i := 0; i <= 100; i++ {
			t0 := float64(i) / 100
			v := valueAt(sh, 0, 1, t0)
			if v < prev-1e-9 {
				t.Fatalf("shape %v not monotonic at t=%v: v=%v prev=%v", sh, t0, v, prev)
			}
			prev = v
		}
		if v0 := valueAt(sh, 0, 1, 0); v0 != 0 {
			t.Fatalf("shape %v should match v0 at t=0, got %v", sh, v0)
		}
		if v1 := valueAt(sh, 0, 1, 1); v1 != 1 {
			t.Fatalf("shape %v should match vt at t=1, got %v", sh, v1)
		}
	}
}
