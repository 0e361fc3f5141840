// Package spline provides piecewise polynomial curves for motion editing and
// the algorithms needed to edit them interactively.
//
// A motion is a trajectory y(x) over time, stored as a [BPoly]: a piecewise
// polynomial in Bernstein form whose segments share their end values. The
// knots of the curve are at strictly increasing times; between two knots the
// segment's shape is given by its interior control values. For cubic curves
// these are the familiar two handles of a Bézier segment, sitting at one and
// two thirds of the segment's duration.
//
// # Editing
//
// An [Editor] owns the current curve and an undo history of earlier
// versions. A drag gesture is a [Session]: it starts from a snapshot of the
// current curve, applies a sequence of moves to a private working copy and
// either commits the result as one undoable step or is cancelled without a
// trace. Every move is expressed relative to the snapshot, so repeating a
// move is harmless and intermediate positions of a gesture never accumulate.
//
// The actual constraint solving is done by [Mover]. Knots can be moved in
// time and value, but never closer than [DefaultEpsilon] to their
// neighbours. Control points only move in value. With C1 continuity enabled,
// moving a control point rebalances its counterpart on the other side of the
// shared knot so that the slope across the knot does not jump. The first and
// last control points of a curve have no counterpart and are always free.
//
// Structural edits, [BPoly.InsertKnot] and [BPoly.RemoveKnot], return new
// curves and are recorded by the Editor like gestures. Inserting a knot
// splits a segment with de Casteljau's algorithm and does not change the
// curve's shape.
//
// # Rendering
//
// The package does not draw anything. Hosts implement [Renderer] to be told
// when the curve changes, and use [BPoly.Segments] to obtain each segment as
// a [CubicBez] in data space. [MapRect] maps data space onto an image.
//
// # Interchange
//
// Curves serialize to JSON in Bernstein form. Curves in power basis, as
// produced by many spline fitting tools, are converted on input, see
// [FromPowerBasis]. [Fit] turns a recorded trajectory of samples into a
// smooth cubic curve with few knots.
//
// # Literature
//
//   - [A Primer on Bézier Curves]
//   - [Monotone Piecewise Cubic Interpolation] by Fritsch and Carlson
//
// [A Primer on Bézier Curves]: https://pomax.github.io/bezierinfo/
// [Monotone Piecewise Cubic Interpolation]: https://doi.org/10.1137/0717021
package spline
