// Package line implements value trajectories: a start value ramping to a
// target value over a fixed number of samples, following one of a small
// set of named shapes.
package line

// Flags describe which fields of a Line are active and how they behave
// across a copy from a newly-arriving Line onto a running one.
type Flags uint16

const (
	// State indicates v0 holds an explicit value rather than the
	// trajectory's carried-over final value.
	State Flags = 1 << iota
	// StateRatio indicates v0 is a modulator-to-carrier ratio, not an
	// absolute value.
	StateRatio
	// Goal indicates vt/End describe an active trajectory; when clear,
	// the Line is a constant at v0.
	Goal
	// GoalRatio indicates vt is a modulator-to-carrier ratio.
	GoalRatio
	// Type indicates Shape was explicitly set by this update.
	Type
	// Time indicates End was explicitly set by this update.
	Time
	// TimeIfNew means: keep the existing End if one is already active;
	// otherwise adopt the incoming value.
	TimeIfNew
)

// Line is a time-parameterized value trajectory.
type Line struct {
	V0    float64
	Vt    float64
	Pos   int64
	End   int64
	Shape Shape
	Flags Flags
}

// New builds a constant Line at v.
func New(v float64) Line {
	return Line{V0: v, Vt: v, Shape: ShapeLin}
}

// finished reports whether the trajectory has reached its end.
func (l *Line) finished() bool {
	return l.Flags&Goal == 0 || l.Pos >= l.End
}

// finalize clears Goal/Time and snaps v0 to vt once pos reaches end.
func (l *Line) finalize() {
	if l.Flags&Goal != 0 && l.Pos >= l.End {
		l.Flags &^= Goal | Time
		l.V0 = l.Vt
	}
}

// Run fills buf with exactly len(buf) samples, advancing pos accordingly.
// If mulbuf is non-nil it is multiplied element-wise into the output.
// When Goal is not set the constant v0 is written for the whole buffer.
func (l *Line) Run(buf []float64, mulbuf []float64) {
	n := len(buf)
	if l.Flags&Goal == 0 {
		for i := 0; i < n; i++ {
			v := l.V0
			if mulbuf != nil {
				v *= mulbuf[i]
			}
			buf[i] = v
		}
		return
	}
	i := 0
	for ; i < n; i++ {
		if l.Pos >= l.End {
			break
		}
		t := float64(l.Pos) / float64(l.End)
		v := valueAt(l.Shape, l.V0, l.Vt, t)
		if mulbuf != nil {
			v *= mulbuf[i]
		}
		buf[i] = v
		l.Pos++
	}
	l.finalize()
	for ; i < n; i++ {
		v := l.V0
		if mulbuf != nil {
			v *= mulbuf[i]
		}
		buf[i] = v
	}
}

// Get fills up to len(buf) samples but stops at the end of the
// trajectory, returning the number of samples actually written. Unlike
// Run, Get does not pad the remainder with the constant tail value.
func (l *Line) Get(buf []float64, mulbuf []float64) int {
	if l.Flags&Goal == 0 {
		return 0
	}
	n := len(buf)
	i := 0
	for ; i < n; i++ {
		if l.Pos >= l.End {
			break
		}
		t := float64(l.Pos) / float64(l.End)
		v := valueAt(l.Shape, l.V0, l.Vt, t)
		if mulbuf != nil {
			v *= mulbuf[i]
		}
		buf[i] = v
		l.Pos++
	}
	l.finalize()
	return i
}

// Skip advances pos by skipLen samples without writing output, performing
// the same end-of-trajectory finalization Run/Get would. It is
// equivalent, for the purposes of pos advancement and finalization, to
// calling Run/Get over the same span and discarding the written samples.
func (l *Line) Skip(skipLen int64) {
	if l.Flags&Goal == 0 {
		return
	}
	l.Pos += skipLen
	if l.Pos > l.End {
		l.Pos = l.End
	}
	l.finalize()
}

// Done reports whether the trajectory has completed (or was never
// active) and subsequent reads yield the constant v0.
func (l *Line) Done() bool {
	return l.finished()
}

// Copy assigns src onto the receiver, honoring StateRatio/GoalRatio
// (which always persist across a copy, carried on src) and TimeIfNew
// (which, when set on src, keeps the receiver's existing End instead of
// adopting src's).
func (l *Line) Copy(src Line) {
	keepTime := src.Flags&TimeIfNew != 0 && l.Flags&Goal != 0 && !l.finished()
	prevEnd := l.End
	prevPos := l.Pos
	*l = src
	if keepTime {
		l.End = prevEnd
		l.Pos = prevPos
	}
}
