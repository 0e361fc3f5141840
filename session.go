package spline

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// HandleKind distinguishes the two kinds of draggable handles of a curve.
type HandleKind int

const (
	KnotHandle HandleKind = iota
	ControlHandle
)

// Target names the handle a drag step applies to.
type Target struct {
	Kind HandleKind
	// Segment is the segment of a control point. Unused for knots.
	Segment int
	// Index is the knot number for knots, and FirstCP or SecondCP for
	// control points.
	Index int
}

// KnotTarget returns the target for knot i.
func KnotTarget(i int) Target {
	return Target{Kind: KnotHandle, Index: i}
}

// ControlTarget returns the target for control point k of segment seg.
func ControlTarget(seg, k int) Target {
	return Target{Kind: ControlHandle, Segment: seg, Index: k}
}

func (t Target) String() string {
	if t.Kind == KnotHandle {
		return fmt.Sprintf("knot %d", t.Index)
	}
	return fmt.Sprintf("control point %d of segment %d", t.Index, t.Segment)
}

// Session is one drag gesture of an [Editor].
//
// A session snapshots the editor's current curve when it begins and works on
// a private copy. Each call to Apply recomputes the working copy from the
// snapshot and the total delta of the gesture so far. Nothing outside the
// session changes until End commits the working copy.
type Session struct {
	id       string
	editor   *Editor
	snapshot *BPoly
	working  *BPoly
	mover    *Mover
	c1       bool
	snap     bool
	grid     []float64
	closed   bool
	steps    int
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Snapshot returns the curve as it was when the gesture began.
func (s *Session) Snapshot() *BPoly { return s.snapshot }

// Working returns the live working copy. It changes with every Apply.
func (s *Session) Working() *BPoly { return s.working }

// Closed reports whether the session has ended or was cancelled.
func (s *Session) Closed() bool { return s.closed }

// Apply moves target by delta, relative to the state at the start of the
// gesture, and asks the renderer to redraw.
//
// With snapping enabled, the dragged value is attracted to the values of
// all knots and control points at the start of the gesture, and to zero.
func (s *Session) Apply(target Target, delta Vec2) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := checkDelta(delta); err != nil {
		return fmt.Errorf("move %s: %w", target, err)
	}
	var err error
	switch target.Kind {
	case KnotHandle:
		if pt, perr := s.snapshot.KnotPoint(target.Index); perr == nil {
			delta.Y = s.snapDelta(pt.Y, delta.Y)
		}
		err = s.mover.MoveKnot(target.Index, delta, s.c1)
	case ControlHandle:
		if pt, perr := s.snapshot.Point(target.Segment, target.Index); perr == nil {
			delta.Y = s.snapDelta(pt.Y, delta.Y)
		}
		err = s.mover.MoveControlPoint(target.Segment, target.Index, delta, s.c1)
	default:
		err = fmt.Errorf("%w: unknown handle kind %d", ErrOutOfRange, target.Kind)
	}
	if err != nil {
		return fmt.Errorf("move %s: %w", target, err)
	}
	s.steps++
	s.editor.renderer.Redraw(s.working)
	return nil
}

// snapDelta adjusts the vertical delta dy of a value starting at orig so
// that it lands on a nearby grid value.
func (s *Session) snapDelta(orig, dy float64) float64 {
	if !s.snap {
		return dy
	}
	return SnapToValue(orig+dy, s.grid, s.editor.snapThreshold) - orig
}

// End finishes the gesture. If the working copy differs from the snapshot it
// becomes the editor's current curve and is recorded in the history, and
// End reports true. A gesture that changed nothing leaves no trace.
func (s *Session) End() (bool, error) {
	if s.closed {
		return false, ErrSessionClosed
	}
	s.closed = true
	s.editor.session = nil
	if s.working.Equal(s.snapshot) {
		s.editor.logger.Debug("discarded empty gesture", slog.String("session", s.id), slog.Int("steps", s.steps))
		return false, nil
	}
	s.editor.commit(s.working)
	s.editor.logger.Debug("committed gesture",
		slog.String("session", s.id),
		slog.Int("steps", s.steps),
		slog.Int("knots", s.working.KnotCount()))
	return true, nil
}

// Cancel abandons the gesture and restores the snapshot on the renderer.
func (s *Session) Cancel() error {
	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	s.editor.session = nil
	s.editor.renderer.Reverted(s.snapshot)
	s.editor.logger.Debug("cancelled gesture", slog.String("session", s.id), slog.Int("steps", s.steps))
	return nil
}

func newSession(e *Editor) (*Session, error) {
	snapshot := e.current.Copy()
	working := e.current.Copy()
	mover, err := NewMover(snapshot, working)
	if err != nil {
		return nil, err
	}
	mover.Epsilon = e.epsilon
	s := &Session{
		id:       uuid.NewString(),
		editor:   e,
		snapshot: snapshot,
		working:  working,
		mover:    mover,
		c1:       e.c1,
		snap:     e.snapping,
	}
	if s.snap {
		s.grid = append(snapshot.values(), 0)
	}
	return s, nil
}
