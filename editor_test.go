package spline

import (
	"errors"
	"math"
	"testing"
)

type recordingRenderer struct {
	redraws   int
	committed []*BPoly
	reverted  []*BPoly
}

func (r *recordingRenderer) Redraw(*BPoly) { r.redraws++ }
func (r *recordingRenderer) Committed(c *BPoly) { r.committed = append(r.committed, c) }
func (r *recordingRenderer) Reverted(c *BPoly) { r.reverted = append(r.reverted, c) }

func newTestEditor(t *testing.T, opts ...Option) (*Editor, *recordingRenderer) {
	t.Helper()
	r := &recordingRenderer{}
	e := NewEditor(append([]Option{WithRenderer(r)}, opts...)...)
	if err := e.Load(threeKnots(t)); err != nil {
		t.Fatal(err)
	}
	return e, r
}

func TestEditorNoCurve(t *testing.T) {
	e := NewEditor()
	if _, err := e.BeginDrag(); !errors.Is(err, ErrNoCurve) {
		t.Errorf("got %v, want ErrNoCurve", err)
	}
	if err := e.RemoveKnot(0); !errors.Is(err, ErrNoCurve) {
		t.Errorf("got %v, want ErrNoCurve", err)
	}
	if err := e.Load(nil); !errors.Is(err, ErrNoCurve) {
		t.Errorf("got %v, want ErrNoCurve", err)
	}
}

func TestSessionCommit(t *testing.T) {
	e, r := newTestEditor(t)
	before := e.Current()

	s, err := e.BeginDrag()
	if err != nil {
		t.Fatal(err)
	}
	if s.ID() == "" {
		t.Error("session has no id")
	}
	for _, dy := range []float64{0.2, 0.6, 1} {
		if err := s.Apply(KnotTarget(1), Vec(0, dy)); err != nil {
			t.Fatal(err)
		}
	}
	if r.redraws != 3 {
		t.Errorf("got %d redraws, want 3", r.redraws)
	}
	// Nothing outside the session changes until it ends.
	if e.Current() != before || !before.Equal(threeKnots(t)) {
		t.Error("current curve changed during the gesture")
	}
	if e.Undoable() {
		t.Error("undo possible during a gesture")
	}

	changed, err := s.End()
	if err != nil || !changed {
		t.Fatalf("got %v, %v, want true", changed, err)
	}
	if !s.Closed() || e.Active() != nil {
		t.Error("session still active after End")
	}
	pt, _ := e.Current().KnotPoint(1)
	diff(t, Pt(1, 1), pt)
	if len(r.committed) != 2 || r.committed[1] != e.Current() {
		t.Errorf("got %d commits, want 2", len(r.committed))
	}

	if err := s.Apply(KnotTarget(1), Vec(0, 1)); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("got %v, want ErrSessionClosed", err)
	}
	if _, err := s.End(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("got %v, want ErrSessionClosed", err)
	}
}

func TestSessionNoop(t *testing.T) {
	e, r := newTestEditor(t)
	s, err := e.BeginDrag()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(KnotTarget(1), Vec(0, 1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(KnotTarget(1), Vec(0, 0)); err != nil {
		t.Fatal(err)
	}
	changed, err := s.End()
	if err != nil || changed {
		t.Fatalf("got %v, %v, want false", changed, err)
	}
	if e.Undoable() || len(r.committed) != 1 {
		t.Error("empty gesture was recorded")
	}
}

func TestSessionCancel(t *testing.T) {
	e, r := newTestEditor(t)
	before := e.Current()
	s, _ := e.BeginDrag()
	if err := s.Apply(ControlTarget(0, SecondCP), Vec(0, 3)); err != nil {
		t.Fatal(err)
	}
	if err := s.Cancel(); err != nil {
		t.Fatal(err)
	}
	if e.Current() != before || e.Undoable() {
		t.Error("cancelled gesture left a trace")
	}
	if len(r.reverted) != 1 || !r.reverted[0].Equal(before) {
		t.Error("renderer was not reverted to the snapshot")
	}
	if err := s.Cancel(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("got %v, want ErrSessionClosed", err)
	}
}

func TestSingleActiveSession(t *testing.T) {
	e, _ := newTestEditor(t)
	s, err := e.BeginDrag()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.BeginDrag(); !errors.Is(err, ErrSessionActive) {
		t.Errorf("got %v, want ErrSessionActive", err)
	}
	if err := e.InsertKnot(0.5); !errors.Is(err, ErrSessionActive) {
		t.Errorf("got %v, want ErrSessionActive", err)
	}
	if _, err := e.Undo(); !errors.Is(err, ErrSessionActive) {
		t.Errorf("got %v, want ErrSessionActive", err)
	}
	if err := e.Load(threeKnots(t)); !errors.Is(err, ErrSessionActive) {
		t.Errorf("got %v, want ErrSessionActive", err)
	}
	s.Cancel()
	if _, err := e.BeginDrag(); err != nil {
		t.Errorf("could not start a new gesture: %v", err)
	}
}

func TestSessionC1Setting(t *testing.T) {
	e, _ := newTestEditor(t, WithC1(false))
	if e.C1() {
		t.Fatal("C1 still on")
	}
	s, _ := e.BeginDrag()
	if err := s.Apply(ControlTarget(1, FirstCP), Vec(0, 1)); err != nil {
		t.Fatal(err)
	}
	// Without C1 the coupled control point stays where it was.
	if v, _ := s.Working().Coefficient(SecondCP, 0); v != 0 {
		t.Errorf("coupled control point moved to %v", v)
	}
	s.Cancel()

	e.SetC1(true)
	s, _ = e.BeginDrag()
	if err := s.Apply(ControlTarget(1, FirstCP), Vec(0, 1)); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Working().Coefficient(SecondCP, 0); v != -1 {
		t.Errorf("got coupled control point %v, want -1", v)
	}
}

func TestSessionSnapping(t *testing.T) {
	p := mustNew(t, Cubic, []float64{0, 1, 2}, [][]float64{{0, 0.5}, {0.2, 0.7}, {0.4, 0.5}, {0.5, 0.3}})
	e := NewEditor(WithSnapping(true), WithSnapThreshold(0.01))
	if err := e.Load(p); err != nil {
		t.Fatal(err)
	}
	s, _ := e.BeginDrag()
	// 0.5 + 0.195 lands close to the existing value 0.7.
	if err := s.Apply(KnotTarget(1), Vec(0, 0.195)); err != nil {
		t.Fatal(err)
	}
	pt, _ := s.Working().KnotPoint(1)
	assertClose(t, pt.Y, 0.7, 1e-12)

	// Zero is always a snap target.
	if err := s.Apply(ControlTarget(0, FirstCP), Vec(0, -0.195)); err != nil {
		t.Fatal(err)
	}
	v, _ := s.Working().Coefficient(FirstCP, 0)
	assertClose(t, v, 0, 1e-12)
}

func TestEditorUndoRedo(t *testing.T) {
	e, r := newTestEditor(t)
	original := e.Current()

	if err := e.InsertKnot(0.5); err != nil {
		t.Fatal(err)
	}
	if e.Current().KnotCount() != 4 {
		t.Fatalf("got %d knots, want 4", e.Current().KnotCount())
	}
	if err := e.RemoveKnot(0); err != nil {
		t.Fatal(err)
	}
	afterRemove := e.Current()

	c, err := e.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if c.KnotCount() != 4 || e.Current() != c {
		t.Errorf("got %d knots after undo, want 4", c.KnotCount())
	}
	if _, err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if e.Current() != original {
		t.Error("undo did not restore the loaded curve")
	}
	if _, err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("got %v, want ErrNothingToUndo", err)
	}

	e.Redo()
	c, err = e.Redo()
	if err != nil {
		t.Fatal(err)
	}
	if c != afterRemove {
		t.Error("redo did not restore the latest edit")
	}
	if len(r.reverted) != 4 {
		t.Errorf("got %d reverts, want 4", len(r.reverted))
	}
	if e.Redoable() {
		t.Error("redo possible at the latest state")
	}
}

func TestEditorHistorySize(t *testing.T) {
	e, _ := newTestEditor(t, WithHistorySize(2))
	for _, x := range []float64{0.5, 0.25, 1.5} {
		if err := e.InsertKnot(x); err != nil {
			t.Fatal(err)
		}
	}
	n := 0
	for e.Undoable() {
		if _, err := e.Undo(); err != nil {
			t.Fatal(err)
		}
		n++
	}
	if n != 1 {
		t.Errorf("undid %d steps, want 1", n)
	}
}

func TestEditorNoopEdit(t *testing.T) {
	e, r := newTestEditor(t)
	if err := e.InsertKnot(1); err != nil {
		t.Fatal(err)
	}
	if e.Undoable() || len(r.committed) != 1 {
		t.Error("inserting an existing knot was recorded")
	}
	if err := e.InsertKnot(5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("got %v, want ErrOutOfRange", err)
	}
}

func TestDragNeedsCubic(t *testing.T) {
	e := NewEditor()
	if err := e.Load(mustNew(t, Linear, []float64{0, 1}, [][]float64{{0}, {1}})); err != nil {
		t.Fatal(err)
	}
	if _, err := e.BeginDrag(); !errors.Is(err, ErrUnsupportedDegree) {
		t.Errorf("got %v, want ErrUnsupportedDegree", err)
	}
	if e.Active() != nil {
		t.Error("failed drag left a session behind")
	}
}

func TestSessionNeighbouringKnotsDoNotCross(t *testing.T) {
	e := NewEditor()
	p, err := Flat(Cubic, []float64{0, 1, 2, 3}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Load(p); err != nil {
		t.Fatal(err)
	}
	s, err := e.BeginDrag()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(KnotTarget(1), Vec(10, 0)); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(KnotTarget(2), Vec(-10, 0)); err != nil {
		t.Fatal(err)
	}
	// Moving the first knot again is bounded by the second's new position.
	if err := s.Apply(KnotTarget(1), Vec(10, 0)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.End(); err != nil {
		t.Fatal(err)
	}

	got := e.Current()
	x := got.Knots()
	assertClose(t, x[1], 2-DefaultEpsilon, 1e-12)
	assertClose(t, x[2], 2, 1e-12)
	if _, err := New(Cubic, x, got.Coefficients()); err != nil {
		t.Errorf("committed curve is invalid: %v", err)
	}
	if q, err := got.WidthRatio(1); err != nil || q <= 0 {
		t.Errorf("got width ratio %v, %v", q, err)
	}
}

func TestSessionRejectsNonFiniteDelta(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		delta  Vec2
	}{
		{"knot NaN x", KnotTarget(1), Vec(math.NaN(), 0)},
		{"knot Inf y", KnotTarget(1), Vec(0, math.Inf(1))},
		{"control point NaN", ControlTarget(0, FirstCP), Vec(0, math.NaN())},
		{"control point -Inf", ControlTarget(1, SecondCP), Vec(0, math.Inf(-1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, r := newTestEditor(t)
			s, err := e.BeginDrag()
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Apply(tt.target, tt.delta); !errors.Is(err, ErrNonFinite) {
				t.Errorf("got %v, want ErrNonFinite", err)
			}
			if r.redraws != 0 {
				t.Error("rejected move was redrawn")
			}
			committed, err := s.End()
			if err != nil {
				t.Fatal(err)
			}
			if committed || e.Undoable() {
				t.Error("rejected move was committed")
			}
		})
	}
}

func TestSessionSnapsBackToStartingValue(t *testing.T) {
	e, _ := newTestEditor(t, WithSnapping(true))
	s, err := e.BeginDrag()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(KnotTarget(1), Vec(0, DefaultSnapThreshold/2)); err != nil {
		t.Fatal(err)
	}
	if y := s.Working().Coefficients()[0][1]; y != 0 {
		t.Errorf("got knot value %v, want it snapped back to 0", y)
	}
	if committed, err := s.End(); err != nil || committed {
		t.Errorf("End() = %v, %v; want nothing committed", committed, err)
	}
}
