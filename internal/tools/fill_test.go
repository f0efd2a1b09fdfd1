package tools

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/canvas-history-mcp/internal/raster"
	"github.com/ironsheep/canvas-history-mcp/internal/tool"
)

// walled returns a white 10×10 buffer split by a black column at x=5.
func walled(t *testing.T) *image.NRGBA {
	t.Helper()
	img := raster.New(10, 10, raster.White)
	raster.Fill(img, image.Rect(5, 0, 6, 10), raster.Black)
	return img
}

func countColor(img *image.NRGBA, c color.NRGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y) == c {
				n++
			}
		}
	}
	return n
}

func TestFill_StopsAtBoundary(t *testing.T) {
	ec, rec := newContext(t, 0, 0, walled(t))

	apply(t, ec, &Fill{Tolerance: 0.1}, gesture(image.Pt(1, 1)))

	c := ec.Canvas.Committed()
	require.Len(t, rec.ops, 1)
	assert.Equal(t, 50, countColor(c, red))
	assert.Equal(t, raster.Black, c.NRGBAAt(5, 3))
	assert.Equal(t, raster.White, c.NRGBAAt(8, 3))
}

func TestFill_SeedOutsideCanvas(t *testing.T) {
	ec, rec := newContext(t, 10, 10, nil)

	_, err := tool.NewSession(&Fill{}).Apply(ec, gesture(image.Pt(10, 3)))

	assert.Error(t, err)
	assert.Empty(t, rec.ops)
}

func TestFill_PreviewStopsAtCap(t *testing.T) {
	ec, rec := newContext(t, 0, 0, walled(t))
	asked := 0
	ec.Confirm = func(string) bool { asked++; return true }

	ok := tool.NewSession(&Fill{Tolerance: 0.1, MaxPixels: 10}).Preview(ec, gesture(image.Pt(1, 1)))

	require.True(t, ok)
	assert.Zero(t, asked)
	assert.Equal(t, 10, countColor(ec.Canvas.Live(), red))
	assert.Zero(t, countColor(ec.Canvas.Committed(), red))
	assert.Empty(t, rec.ops)
}

func TestFill_AbortLeavesCommitted(t *testing.T) {
	ec, rec := newContext(t, 0, 0, walled(t))
	before := ec.Canvas.Committed()
	ec.Confirm = func(string) bool { return false }

	_, err := tool.NewSession(&Fill{Tolerance: 0.1, MaxPixels: 10}).Apply(ec, gesture(image.Pt(1, 1)))

	assert.ErrorIs(t, err, ErrFillAborted)
	assert.Empty(t, rec.ops)
	assert.True(t, raster.Equal(before, ec.Canvas.Committed()))
	assert.True(t, raster.Equal(before, ec.Canvas.Live()))
}

func TestFill_ContinueAfterCap(t *testing.T) {
	ec, _ := newContext(t, 0, 0, walled(t))
	asked := 0
	ec.Confirm = func(string) bool { asked++; return true }

	apply(t, ec, &Fill{Tolerance: 0.1, MaxPixels: 10}, gesture(image.Pt(1, 1)))

	assert.GreaterOrEqual(t, asked, 1)
	assert.Equal(t, 50, countColor(ec.Canvas.Committed(), red))
}

func TestFill_ReplayIgnoresCap(t *testing.T) {
	ec, _ := newContext(t, 0, 0, walled(t))
	ec.Confirm = func(string) bool { return true }
	fill := &Fill{Tolerance: 0.1, MaxPixels: 10}
	op := apply(t, ec, fill, gesture(image.Pt(8, 8)))

	other, _ := newContext(t, 0, 0, walled(t))
	require.NoError(t, tool.Replay(other, fill, op))

	assert.True(t, raster.Equal(ec.Canvas.Committed(), other.Canvas.Committed()))
	assert.Equal(t, 40, countColor(other.Canvas.Committed(), red))
}
