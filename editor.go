package spline

import (
	"fmt"
	"log/slog"
)

// Editor holds the curve being edited together with its undo history.
//
// An Editor has at most one active [Session]. The current curve is never
// mutated: every edit produces a new curve which is recorded in the history.
// An Editor is not safe for concurrent use.
type Editor struct {
	history  *History[*BPoly]
	current  *BPoly
	session  *Session
	renderer Renderer
	logger   *slog.Logger

	epsilon       float64
	snapThreshold float64
	c1            bool
	snapping      bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithRenderer sets the collaborator notified of curve changes.
func WithRenderer(r Renderer) Option {
	return func(e *Editor) { e.renderer = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithHistorySize bounds the undo and redo directions of the history.
func WithHistorySize(n int) Option {
	return func(e *Editor) { e.history = NewHistory[*BPoly](n) }
}

// WithEpsilon sets the minimum knot spacing kept while dragging.
func WithEpsilon(eps float64) Option {
	return func(e *Editor) { e.epsilon = eps }
}

func WithSnapThreshold(d float64) Option {
	return func(e *Editor) { e.snapThreshold = d }
}

// WithC1 selects whether drags keep the first derivative continuous.
// It is on by default.
func WithC1(on bool) Option {
	return func(e *Editor) { e.c1 = on }
}

// WithSnapping selects whether dragged values snap to existing ones.
func WithSnapping(on bool) Option {
	return func(e *Editor) { e.snapping = on }
}

// NewEditor returns an editor without a curve.
func NewEditor(opts ...Option) *Editor {
	e := &Editor{
		history:       NewHistory[*BPoly](DefaultHistorySize),
		renderer:      NopRenderer{},
		logger:        slog.New(slog.DiscardHandler),
		epsilon:       DefaultEpsilon,
		snapThreshold: DefaultSnapThreshold,
		c1:            true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Current returns the current curve, or nil if none was loaded.
func (e *Editor) Current() *BPoly { return e.current }

// Active returns the active session, or nil.
func (e *Editor) Active() *Session { return e.session }

func (e *Editor) C1() bool { return e.c1 }
func (e *Editor) SetC1(on bool) { e.c1 = on }
func (e *Editor) Snapping() bool { return e.snapping }
func (e *Editor) SetSnapping(on bool) { e.snapping = on }

func (e *Editor) Undoable() bool { return e.session == nil && e.history.Undoable() }
func (e *Editor) Redoable() bool { return e.session == nil && e.history.Redoable() }

// Load replaces the edited curve and starts a fresh history with it.
func (e *Editor) Load(c *BPoly) error {
	if c == nil {
		return ErrNoCurve
	}
	if e.session != nil {
		return ErrSessionActive
	}
	e.history.Clear()
	e.commit(c.Copy())
	e.logger.Debug("loaded curve", slog.Int("knots", c.KnotCount()), slog.String("degree", c.Degree().String()))
	return nil
}

// BeginDrag starts a drag gesture on the current curve. Only cubic curves
// can be dragged.
func (e *Editor) BeginDrag() (*Session, error) {
	if e.current == nil {
		return nil, ErrNoCurve
	}
	if e.session != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionActive, e.session.id)
	}
	s, err := newSession(e)
	if err != nil {
		return nil, err
	}
	e.session = s
	return s, nil
}

// RemoveKnot removes knot i from the current curve as one undoable edit.
func (e *Editor) RemoveKnot(i int) error {
	return e.edit(func(c *BPoly) (*BPoly, error) { return c.RemoveKnot(i) })
}

// InsertKnot adds a knot at time x without changing the curve's shape.
func (e *Editor) InsertKnot(x float64) error {
	return e.edit(func(c *BPoly) (*BPoly, error) { return c.InsertKnot(x) })
}

func (e *Editor) edit(fn func(*BPoly) (*BPoly, error)) error {
	if e.current == nil {
		return ErrNoCurve
	}
	if e.session != nil {
		return ErrSessionActive
	}
	next, err := fn(e.current)
	if err != nil {
		return err
	}
	if next.Equal(e.current) {
		return nil
	}
	e.commit(next)
	return nil
}

// Undo restores the previous curve.
func (e *Editor) Undo() (*BPoly, error) {
	if e.session != nil {
		return nil, ErrSessionActive
	}
	c, err := e.history.Undo()
	if err != nil {
		return nil, err
	}
	e.revert(c)
	return c, nil
}

// Redo restores the most recently undone curve.
func (e *Editor) Redo() (*BPoly, error) {
	if e.session != nil {
		return nil, ErrSessionActive
	}
	c, err := e.history.Redo()
	if err != nil {
		return nil, err
	}
	e.revert(c)
	return c, nil
}

func (e *Editor) commit(c *BPoly) {
	e.history.Capture(c)
	e.current = c
	e.renderer.Committed(c)
}

func (e *Editor) revert(c *BPoly) {
	e.current = c
	e.renderer.Reverted(c)
}
