package selection

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/canvas-history-mcp/internal/raster"
)

// pattern returns a w×h buffer whose every pixel is distinct, including
// translucent ones.
func pattern(t *testing.T, w, h int) *image.NRGBA {
	t.Helper()
	img := raster.New(w, h, raster.Transparent)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 7), uint8(y * 11), uint8(x + y), uint8(1 + (x*y)%255)})
		}
	}
	return img
}

func TestDefineFromPath_RoundTrip(t *testing.T) {
	policies := []struct {
		name string
		fill color.NRGBA
	}{
		{"transparent", raster.Transparent},
		{"background", raster.White},
		{"secondary", color.NRGBA{10, 20, 30, 255}},
	}
	paths := []struct {
		name string
		path raster.Path
	}{
		{"rect", raster.RectPath(image.Rect(5, 5, 15, 15))},
		{"polygon", raster.PolygonPath([]image.Point{{2, 2}, {18, 4}, {10, 19}})},
		{"clipped", raster.RectPath(image.Rect(-5, -5, 8, 8))},
	}

	for _, pc := range policies {
		for _, pp := range paths {
			t.Run(pc.name+"/"+pp.name, func(t *testing.T) {
				canvas := pattern(t, 20, 20)
				before := raster.Clone(canvas)
				m := New()

				ok, err := m.DefineFromPath(canvas, pp.path, pc.fill)
				require.NoError(t, err)
				require.True(t, ok)
				require.NoError(t, m.MergeAndDeactivate(canvas))

				assert.True(t, raster.Equal(before, canvas), "round trip must be bit-exact")
				assert.Equal(t, Inactive, m.State())
			})
		}
	}
}

func TestDefineFromPath_Degenerate(t *testing.T) {
	canvas := pattern(t, 20, 20)
	before := raster.Clone(canvas)
	m := New()
	require.NoError(t, m.Begin(raster.RectPath(image.Rect(3, 3, 3, 3))))

	for _, p := range []raster.Path{
		raster.RectPath(image.Rect(3, 3, 3, 3)),
		raster.PolygonPath([]image.Point{{0, 0}, {5, 5}, {10, 10}}),
		raster.RectPath(image.Rect(30, 30, 40, 40)),
	} {
		ok, err := m.DefineFromPath(canvas, p, raster.White)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	assert.Equal(t, Inactive, m.State())
	assert.True(t, raster.Equal(before, canvas))
}

func TestDefineFromPath_VacatesSource(t *testing.T) {
	canvas := raster.New(20, 20, raster.Black)
	m := New()

	ok, err := m.DefineFromPath(canvas, raster.RectPath(image.Rect(5, 5, 15, 15)), raster.Transparent)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, raster.Transparent, canvas.NRGBAAt(5, 5))
	assert.Equal(t, raster.Transparent, canvas.NRGBAAt(14, 14))
	assert.Equal(t, raster.Black, canvas.NRGBAAt(4, 4))
	assert.Equal(t, image.Rect(5, 5, 15, 15), m.Source())
	assert.Equal(t, image.Rect(5, 5, 15, 15), m.Bounds())

	content, err := m.Content()
	require.NoError(t, err)
	assert.Equal(t, image.Pt(10, 10), content.Bounds().Size())
	assert.Equal(t, raster.Black, content.NRGBAAt(0, 0))
}

func TestDefineFromPath_PolygonContentIsMasked(t *testing.T) {
	canvas := raster.New(20, 20, raster.Black)
	m := New()

	ok, err := m.DefineFromPath(canvas, raster.PolygonPath([]image.Point{{0, 0}, {10, 0}, {0, 10}}), raster.White)
	require.NoError(t, err)
	require.True(t, ok)

	content, err := m.Content()
	require.NoError(t, err)
	assert.Equal(t, raster.Black, content.NRGBAAt(1, 1))
	assert.Equal(t, raster.Transparent, content.NRGBAAt(8, 8), "pixels outside the shape stay behind")
	assert.Equal(t, raster.Black, canvas.NRGBAAt(8, 8))
	assert.Equal(t, raster.White, canvas.NRGBAAt(1, 1))
}

func TestDefineFromPath_AlreadyActive(t *testing.T) {
	canvas := raster.New(20, 20, raster.Black)
	m := New()
	_, err := m.DefineFromPath(canvas, raster.RectPath(image.Rect(0, 0, 5, 5)), raster.White)
	require.NoError(t, err)

	_, err = m.DefineFromPath(canvas, raster.RectPath(image.Rect(6, 6, 9, 9)), raster.White)
	assert.ErrorIs(t, err, ErrSelectionActive)
	assert.ErrorIs(t, m.Begin(raster.RectPath(image.Rect(6, 6, 9, 9))), ErrSelectionActive)
	assert.ErrorIs(t, m.ImportContent(raster.New(2, 2, raster.White), image.Point{}), ErrSelectionActive)
}

// Select a 10x10 rectangle at (5,5), drag it by (3,3), merge.
func TestDragAndMerge(t *testing.T) {
	canvas := raster.New(30, 30, raster.Black)
	red := color.NRGBA{255, 0, 0, 255}
	raster.Fill(canvas, image.Rect(5, 5, 15, 15), red)
	m := New()

	ok, err := m.DefineFromPath(canvas, raster.RectPath(image.Rect(5, 5, 15, 15)), raster.Transparent)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, m.Drag(1, 1))
	require.NoError(t, m.Drag(3, 3))
	assert.Equal(t, image.Rect(8, 8, 18, 18), m.Bounds())
	assert.Equal(t, raster.Transparent, canvas.NRGBAAt(10, 10), "dragging must not touch the canvas")

	require.NoError(t, m.CommitDrag())
	offset, delta := m.Offset()
	assert.Equal(t, image.Pt(3, 3), offset)
	assert.Equal(t, image.Point{}, delta)

	require.NoError(t, m.MergeAndDeactivate(canvas))

	for y := 8; y < 18; y++ {
		for x := 8; x < 18; x++ {
			require.Equal(t, red, canvas.NRGBAAt(x, y), "(%d,%d)", x, y)
		}
	}
	for _, p := range []image.Point{{5, 5}, {7, 7}, {5, 14}, {14, 5}} {
		assert.Equal(t, raster.Transparent, canvas.NRGBAAt(p.X, p.Y), "vacated %v", p)
	}
}

func TestResetDrag(t *testing.T) {
	canvas := raster.New(30, 30, raster.Black)
	m := New()
	_, err := m.DefineFromPath(canvas, raster.RectPath(image.Rect(5, 5, 15, 15)), raster.Transparent)
	require.NoError(t, err)

	require.NoError(t, m.Drag(4, 4))
	m.ResetDrag()

	assert.Equal(t, image.Rect(5, 5, 15, 15), m.Bounds())
}

func TestImportContent(t *testing.T) {
	canvas := raster.New(20, 20, raster.White)
	half := color.NRGBA{0, 0, 0, 128}
	m := New()

	buf := raster.New(4, 4, half)
	require.NoError(t, m.ImportContent(buf, image.Pt(2, 2)))
	buf.SetNRGBA(0, 0, raster.White)

	assert.True(t, m.IsActive())
	assert.Equal(t, image.Rect(2, 2, 6, 6), m.Bounds())
	assert.True(t, m.Source().Empty())

	require.NoError(t, m.Drag(10, 0))
	require.NoError(t, m.CommitDrag())
	require.NoError(t, m.MergeAndDeactivate(canvas))

	got := canvas.NRGBAAt(12, 2)
	assert.Equal(t, uint8(255), got.A, "imported content is composited over")
	assert.InDelta(t, 127, int(got.R), 2)
	assert.Equal(t, raster.White, canvas.NRGBAAt(2, 2))

	assert.Error(t, New().ImportContent(raster.New(0, 0, raster.White), image.Point{}))
}

func TestInactiveErrors(t *testing.T) {
	m := New()
	canvas := raster.New(5, 5, raster.White)

	_, err := m.Content()
	assert.ErrorIs(t, err, ErrNoActiveSelection)
	assert.ErrorIs(t, m.Drag(1, 1), ErrNoActiveSelection)
	assert.ErrorIs(t, m.CommitDrag(), ErrNoActiveSelection)
	assert.ErrorIs(t, m.MergeAndDeactivate(canvas), ErrNoActiveSelection)

	require.NoError(t, m.Begin(raster.RectPath(image.Rect(0, 0, 3, 3))))
	_, err = m.Content()
	assert.ErrorIs(t, err, ErrNoActiveSelection, "a region being defined has no content yet")
}

func TestDraw(t *testing.T) {
	canvas := raster.New(30, 30, raster.Black)
	raster.Fill(canvas, image.Rect(5, 5, 15, 15), raster.White)
	m := New()
	_, err := m.DefineFromPath(canvas, raster.RectPath(image.Rect(5, 5, 15, 15)), raster.Black)
	require.NoError(t, err)
	require.NoError(t, m.Drag(10, 10))

	view := raster.Clone(canvas)
	m.Draw(view)

	assert.Equal(t, raster.White, view.NRGBAAt(20, 20), "content is drawn at its dragged position")
	assert.NotEqual(t, raster.Black, view.NRGBAAt(25, 20), "outline is drawn around it")
	assert.Equal(t, raster.Black, canvas.NRGBAAt(20, 20), "Draw must not touch the canvas")
}

func TestPolicy(t *testing.T) {
	bg := raster.White
	sec := color.NRGBA{1, 2, 3, 255}

	assert.Equal(t, raster.Transparent, PolicyTransparent.Resolve(bg, sec))
	assert.Equal(t, bg, PolicyBackground.Resolve(bg, sec))
	assert.Equal(t, sec, PolicySecondary.Resolve(bg, sec))

	p, err := ParsePolicy("Secondary")
	require.NoError(t, err)
	assert.Equal(t, PolicySecondary, p)

	_, err = ParsePolicy("checkerboard")
	assert.Error(t, err)

	text, err := PolicyBackground.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "background", string(text))
}
