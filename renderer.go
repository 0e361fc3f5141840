package spline

// Renderer is notified whenever the curve shown by an [Editor] changes.
// Implementations translate the curve into whatever the host displays.
type Renderer interface {
	// Redraw is called after every step of a drag gesture with the
	// gesture's working copy. The curve must not be retained past the
	// call; it keeps changing until the gesture ends.
	Redraw(working *BPoly)
	// Committed is called with a new current curve: after a gesture or a
	// structural edit was recorded, and after loading a curve.
	Committed(curve *BPoly)
	// Reverted is called when the current curve was restored without a new
	// edit: after a cancelled gesture, undo and redo.
	Reverted(curve *BPoly)
}

// NopRenderer ignores all notifications.
type NopRenderer struct{}

func (NopRenderer) Redraw(*BPoly)    {}
func (NopRenderer) Committed(*BPoly) {}
func (NopRenderer) Reverted(*BPoly)  {}
