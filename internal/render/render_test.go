package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/being-motion/spline"
)

func testCurve(t *testing.T) *spline.BPoly {
	t.Helper()
	curve, err := spline.New(spline.Cubic, []float64{0, 1, 3}, [][]float64{
		{0, 2},
		{1, 3},
		{1, 1},
		{2, 0},
	})
	require.NoError(t, err)
	return curve
}

func isBackground(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func countInk(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !isBackground(img.At(x, y)) {
				n++
			}
		}
	}
	return n
}

func TestViewport(t *testing.T) {
	curve := testCurve(t)
	aff := Viewport(curve, 200, 100)

	box := curve.ControlBox()
	lo := spline.Pt(box.X0, box.Y0).Transform(aff)
	hi := spline.Pt(box.X1, box.Y1).Transform(aff)
	for _, p := range []spline.Point{lo, hi} {
		assert.GreaterOrEqual(t, p.X, margin)
		assert.LessOrEqual(t, p.X, 200-margin)
		assert.GreaterOrEqual(t, p.Y, margin)
		assert.LessOrEqual(t, p.Y, 100-margin)
	}
	// Larger values are drawn higher up.
	assert.Less(t, hi.Y, lo.Y)
	assert.Less(t, lo.X, hi.X)
}

func TestViewportFlat(t *testing.T) {
	curve, err := spline.Flat(spline.Cubic, []float64{0, 1}, 5)
	require.NoError(t, err)
	aff := Viewport(curve, 100, 100)
	p := spline.Pt(0.5, 5).Transform(aff)
	assert.InDelta(t, 50, p.Y, 1e-9)
	assert.False(t, aff.IsNaN())
}

func TestDataDelta(t *testing.T) {
	curve := testCurve(t)
	aff := Viewport(curve, 400, 300)
	from := spline.Pt(1, 2)
	to := spline.Pt(1.5, 1)

	d, err := DataDelta(curve, 400, 300, to.Transform(aff).Sub(from.Transform(aff)))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, d.X, 1e-9)
	assert.InDelta(t, -1, d.Y, 1e-9)

	// Dragging up the image raises the value.
	d, err = DataDelta(curve, 400, 300, spline.Vec(0, -10))
	require.NoError(t, err)
	assert.Greater(t, d.Y, 0.0)

	_, err = DataDelta(curve, 40, 300, spline.Vec(1, 1))
	assert.Error(t, err)
}

func TestHandleAt(t *testing.T) {
	curve := testCurve(t)
	aff := Viewport(curve, 400, 300)

	k, _ := curve.KnotPoint(1)
	got, ok := HandleAt(curve, 400, 300, k.Transform(aff).Translate(spline.Vec(1, -1)))
	require.True(t, ok)
	assert.Equal(t, spline.KnotTarget(1), got)

	cp, _ := curve.Point(1, spline.SecondCP)
	got, ok = HandleAt(curve, 400, 300, cp.Transform(aff))
	require.True(t, ok)
	assert.Equal(t, spline.ControlTarget(1, spline.SecondCP), got)

	_, ok = HandleAt(curve, 400, 300, spline.Pt(1, 1))
	assert.False(t, ok)
}

func TestImage(t *testing.T) {
	img, err := Image(testCurve(t), 320, 200)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 320, 200), img.Bounds())
	assert.Positive(t, countInk(img))
}

func TestDrawOptions(t *testing.T) {
	curve := testCurve(t)
	plain, err := Draw(curve, 320, 200, Options{})
	require.NoError(t, err)
	full, err := Draw(curve, 320, 200, Options{Handles: true, Labels: true})
	require.NoError(t, err)
	assert.Greater(t, countInk(full.Image()), countInk(plain.Image()))
}

func TestDrawTooSmall(t *testing.T) {
	_, err := Draw(testCurve(t), 10, 200, Options{})
	assert.Error(t, err)
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curve.png")
	require.NoError(t, SavePNG(path, testCurve(t), 160, 120))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 160, 120), img.Bounds())
}

func TestRendererWithEditor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.png")
	r := &Renderer{Path: path, Width: 160, Height: 120}
	e := spline.NewEditor(spline.WithRenderer(r))
	require.NoError(t, e.Load(testCurve(t)))
	assert.Equal(t, 1, r.Frames())
	_, err := os.Stat(path)
	require.NoError(t, err)

	s, err := e.BeginDrag()
	require.NoError(t, err)
	require.NoError(t, s.Apply(spline.ControlTarget(0, spline.FirstCP), spline.Vec(0, 0.5)))
	assert.Equal(t, 2, r.Frames())
	changed, err := s.End()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 3, r.Frames())
	assert.NotNil(t, r.Last())
}

func TestRendererInvalidSize(t *testing.T) {
	r := &Renderer{Width: 1, Height: 1}
	r.Committed(testCurve(t))
	assert.Nil(t, r.Last())
	assert.Zero(t, r.Frames())
}
