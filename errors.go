package spline

import "errors"

var (
	// ErrOutOfRange is returned for segment, knot or control point indices
	// beyond the structural bounds of a curve.
	ErrOutOfRange = errors.New("index out of range")
	// ErrUnsupportedDegree is returned when an operation is not defined for
	// a curve's degree, or when a curve is too small for it (removing the
	// knot of a single-segment curve).
	ErrUnsupportedDegree = errors.New("unsupported degree")
	// ErrDivisionByZero is returned by [BPoly.WidthRatio] for the last
	// segment, which has no right neighbour.
	ErrDivisionByZero = errors.New("no neighbouring segment")
	ErrShape          = errors.New("malformed coefficient matrix")
	ErrNotIncreasing  = errors.New("knots are not strictly increasing")
	ErrDiscontinuous  = errors.New("segments do not join")
	ErrNonFinite      = errors.New("non-finite value")

	ErrEmptyHistory  = errors.New("history is empty")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")

	ErrSessionActive = errors.New("an edit session is already active")
	ErrSessionClosed = errors.New("edit session is closed")
	ErrNoCurve       = errors.New("no curve loaded")

	ErrTooFewSamples = errors.New("need at least two distinct samples")
)
