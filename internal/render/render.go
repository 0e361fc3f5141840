// Package render draws motion curves into PNG images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strconv"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/being-motion/spline"
)

const (
	margin     = 24.0
	handleSize = 6.0
)

var (
	background = color.White
	curveColor = color.RGBA{0x1f, 0x4e, 0xa8, 0xff}
	knotColor  = color.Black
	ctrlColor  = color.RGBA{0xd0, 0x50, 0x20, 0xff}
	gridColor  = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
)

// Options control what Draw puts into the image besides the curve.
type Options struct {
	// Handles draws knots, control points and the lines joining them.
	Handles bool
	// Labels writes the time of every knot below the plot.
	Labels bool
}

var (
	faceOnce sync.Once
	face     font.Face
	faceErr  error
)

func labelFace() (font.Face, error) {
	faceOnce.Do(func() {
		f, err := truetype.Parse(gomono.TTF)
		if err != nil {
			faceErr = fmt.Errorf("failed to parse font: %w", err)
			return
		}
		face = truetype.NewFace(f, &truetype.Options{
			Size:    10,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	})
	return face, faceErr
}

// Viewport returns the transform from the curve's data space to an image of
// the given size. The curve's control box, padded by a tenth of its extent,
// fills the image minus a fixed margin.
func Viewport(curve *spline.BPoly, width, height int) spline.Affine {
	box := curve.ControlBox()
	dx, dy := box.Width()/10, box.Height()/10
	if dy == 0 {
		dy = 1
	}
	box = box.Inflate(dx, dy)
	to := spline.Rect{X0: margin, Y0: margin, X1: float64(width) - margin, Y1: float64(height) - margin}
	return spline.MapRect(box, to)
}

// DataDelta converts a drag of d pixels on a width×height image of curve
// into the same drag in the curve's data space.
func DataDelta(curve *spline.BPoly, width, height int, d spline.Vec2) (spline.Vec2, error) {
	if width <= 2*margin || height <= 2*margin {
		return spline.Vec2{}, fmt.Errorf("image size %dx%d too small", width, height)
	}
	inv := Viewport(curve, width, height).Invert()
	if inv.IsNaN() {
		return spline.Vec2{}, fmt.Errorf("viewport of %dx%d image is not invertible", width, height)
	}
	return inv.TransformVec(d), nil
}

// HandleAt returns the handle drawn under pixel pt of a width×height image
// of curve. Knots take precedence over control points.
func HandleAt(curve *spline.BPoly, width, height int, pt spline.Point) (spline.Target, bool) {
	aff := Viewport(curve, width, height)
	under := func(p spline.Point) bool {
		p = p.Transform(aff)
		return spline.NewRectFromPoints(p, p).Inflate(handleSize/2, handleSize/2).Contains(pt)
	}
	for i := range curve.KnotCount() {
		if k, _ := curve.KnotPoint(i); under(k) {
			return spline.KnotTarget(i), true
		}
	}
	if curve.Degree() == spline.Linear {
		return spline.Target{}, false
	}
	for seg := range curve.SegmentCount() {
		for k := spline.FirstCP; k <= spline.SecondCP; k++ {
			if k == spline.SecondCP && curve.Degree() != spline.Cubic {
				break
			}
			if p, err := curve.Point(seg, k); err == nil && under(p) {
				return spline.ControlTarget(seg, k), true
			}
		}
	}
	return spline.Target{}, false
}

// Draw renders curve onto a new width×height context.
func Draw(curve *spline.BPoly, width, height int, opts Options) (*gg.Context, error) {
	if width <= 2*margin || height <= 2*margin {
		return nil, fmt.Errorf("image size %dx%d too small", width, height)
	}
	aff := Viewport(curve, width, height)
	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.Clear()

	// Vertical grid line at every knot.
	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	for i := range curve.KnotCount() {
		k, _ := curve.KnotPoint(i)
		x := k.Transform(aff).X
		dc.DrawLine(x, margin/2, x, float64(height)-margin/2)
		dc.Stroke()
	}

	dc.SetColor(curveColor)
	dc.SetLineWidth(2)
	for seg, c := range curve.Segments() {
		p0, p1, p2, p3 := c.P0.Transform(aff), c.P1.Transform(aff), c.P2.Transform(aff), c.P3.Transform(aff)
		if seg == 0 {
			dc.MoveTo(p0.X, p0.Y)
		}
		dc.CubicTo(p1.X, p1.Y, p2.X, p2.Y, p3.X, p3.Y)
	}
	dc.Stroke()

	if opts.Handles {
		drawHandles(dc, curve, aff)
	}
	if opts.Labels {
		if err := drawLabels(dc, curve, aff, height); err != nil {
			return nil, err
		}
	}
	return dc, nil
}

func drawHandles(dc *gg.Context, curve *spline.BPoly, aff spline.Affine) {
	if curve.Degree() == spline.Linear {
		return
	}
	dc.SetLineWidth(1)
	for seg := range curve.SegmentCount() {
		k0, _ := curve.Point(seg, spline.Knot)
		k1, _ := curve.KnotPoint(seg + 1)
		first, _ := curve.Point(seg, spline.FirstCP)
		last := first
		if curve.Degree() == spline.Cubic {
			last, _ = curve.Point(seg, spline.SecondCP)
		}
		k0, k1 = k0.Transform(aff), k1.Transform(aff)
		first, last = first.Transform(aff), last.Transform(aff)

		dc.SetColor(ctrlColor)
		dc.DrawLine(k0.X, k0.Y, first.X, first.Y)
		dc.DrawLine(last.X, last.Y, k1.X, k1.Y)
		dc.Stroke()
		dc.DrawCircle(first.X, first.Y, handleSize/2)
		dc.DrawCircle(last.X, last.Y, handleSize/2)
		dc.Fill()
	}
	dc.SetColor(knotColor)
	for i := range curve.KnotCount() {
		k, _ := curve.KnotPoint(i)
		k = k.Transform(aff)
		dc.DrawRectangle(k.X-handleSize/2, k.Y-handleSize/2, handleSize, handleSize)
		dc.Fill()
	}
}

func drawLabels(dc *gg.Context, curve *spline.BPoly, aff spline.Affine, height int) error {
	f, err := labelFace()
	if err != nil {
		return err
	}
	dc.SetFontFace(f)
	dc.SetColor(knotColor)
	for i := range curve.KnotCount() {
		k, _ := curve.KnotPoint(i)
		x := k.Transform(aff).X
		dc.DrawStringAnchored(strconv.FormatFloat(k.X, 'g', 4, 64), x, float64(height)-margin/4, 0.5, 0)
	}
	return nil
}

// Image renders curve with handles and labels.
func Image(curve *spline.BPoly, width, height int) (image.Image, error) {
	dc, err := Draw(curve, width, height, Options{Handles: true, Labels: true})
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// SavePNG renders curve with handles and labels into a PNG file.
func SavePNG(path string, curve *spline.BPoly, width, height int) error {
	dc, err := Draw(curve, width, height, Options{Handles: true, Labels: true})
	if err != nil {
		return err
	}
	return dc.SavePNG(path)
}

// Renderer draws the curves of an editor. Drag steps are drawn into memory
// only; committed and reverted curves are also written to Path.
//
// Renderer is safe for concurrent use.
type Renderer struct {
	Path          string
	Width, Height int
	Logger        *slog.Logger

	mu     sync.Mutex
	last   image.Image
	frames int
}

var _ spline.Renderer = (*Renderer)(nil)

func (r *Renderer) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

func (r *Renderer) draw(curve *spline.BPoly) *gg.Context {
	dc, err := Draw(curve, r.Width, r.Height, Options{Handles: true, Labels: true})
	if err != nil {
		r.logger().Warn("failed to draw curve", "error", err)
		return nil
	}
	r.mu.Lock()
	r.last = dc.Image()
	r.frames++
	r.mu.Unlock()
	return dc
}

func (r *Renderer) Redraw(working *spline.BPoly) {
	r.draw(working)
}

func (r *Renderer) Committed(curve *spline.BPoly) { r.write(curve) }
func (r *Renderer) Reverted(curve *spline.BPoly)  { r.write(curve) }

func (r *Renderer) write(curve *spline.BPoly) {
	dc := r.draw(curve)
	if dc == nil || r.Path == "" {
		return
	}
	if err := dc.SavePNG(r.Path); err != nil {
		r.logger().Error("failed to write image", "path", r.Path, "error", err)
		return
	}
	r.logger().Debug("wrote image", "path", r.Path)
}

// Last returns the most recently drawn image, or nil.
func (r *Renderer) Last() image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Frames returns the number of images drawn so far.
func (r *Renderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}
