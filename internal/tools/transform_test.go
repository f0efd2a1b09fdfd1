package tools

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/canvas-history-mcp/internal/operation"
	"github.com/ironsheep/canvas-history-mcp/internal/raster"
	"github.com/ironsheep/canvas-history-mcp/internal/tool"
)

// halves returns a w×h buffer, red on the left half and white on the right.
func halves(t *testing.T, w, h int) *image.NRGBA {
	t.Helper()
	img := raster.New(w, h, raster.White)
	raster.Fill(img, image.Rect(0, 0, w/2, h), red)
	return img
}

func TestTransform_Sizes(t *testing.T) {
	tests := []struct {
		name string
		tool *Transform
		g    tool.Gesture
		want image.Point
	}{
		{"scale by settings", &Transform{Kind: operation.TransformScale, Width: 20, Height: 5}, gesture(), image.Pt(20, 5)},
		{"scale keeps aspect", &Transform{Kind: operation.TransformScale, Width: 5}, gesture(), image.Pt(5, 10)},
		{"scale from gesture", &Transform{Kind: operation.TransformScale}, gesture(image.Pt(0, 0), image.Pt(7, 3)), image.Pt(7, 3)},
		{"rotate 90", &Transform{Kind: operation.TransformRotate, Angle: 90}, gesture(), image.Pt(20, 10)},
		{"crop", &Transform{Kind: operation.TransformCrop}, gesture(image.Pt(6, 8), image.Pt(2, 2)), image.Pt(4, 6)},
		{"flip", &Transform{Kind: operation.TransformFlip, FlipV: true}, gesture(), image.Pt(10, 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec, rec := newContext(t, 0, 0, halves(t, 10, 20))

			apply(t, ec, tt.tool, tt.g)

			require.Len(t, rec.ops, 1)
			assert.Equal(t, tt.want, ec.Canvas.Size())
			assert.Equal(t, tt.want, ec.Canvas.Live().Bounds().Size())
		})
	}
}

func TestTransform_FlipH(t *testing.T) {
	ec, _ := newContext(t, 0, 0, halves(t, 10, 10))

	apply(t, ec, &Transform{Kind: operation.TransformFlip, FlipH: true}, gesture())

	c := ec.Canvas.Committed()
	assert.Equal(t, raster.White, c.NRGBAAt(1, 5))
	assert.Equal(t, red, c.NRGBAAt(8, 5))
}

func TestTransform_Skew(t *testing.T) {
	ec, _ := newContext(t, 10, 10, nil)

	apply(t, ec, &Transform{Kind: operation.TransformSkew, SkewX: 45}, gesture())

	assert.Greater(t, ec.Canvas.Size().X, 10)
	assert.Equal(t, 10, ec.Canvas.Size().Y)
}

func TestTransform_PreviewKeepsCommittedSize(t *testing.T) {
	ec, _ := newContext(t, 10, 10, nil)

	ok := tool.NewSession(&Transform{Kind: operation.TransformScale, Width: 30, Height: 30}).Preview(ec, gesture())

	require.True(t, ok)
	assert.Equal(t, image.Pt(30, 30), ec.Canvas.Live().Bounds().Size())
	assert.Equal(t, image.Pt(10, 10), ec.Canvas.Size())
}

func TestTransform_Invalid(t *testing.T) {
	tests := []struct {
		name string
		tool *Transform
		g    tool.Gesture
	}{
		{"unknown kind", &Transform{Kind: "warp"}, gesture()},
		{"scale without size", &Transform{Kind: operation.TransformScale}, gesture()},
		{"crop with one point", &Transform{Kind: operation.TransformCrop}, gesture(image.Pt(1, 1))},
		{"crop outside", &Transform{Kind: operation.TransformCrop}, gesture(image.Pt(50, 50), image.Pt(60, 60))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec, rec := newContext(t, 10, 10, nil)

			_, err := tool.NewSession(tt.tool).Apply(ec, tt.g)

			assert.Error(t, err)
			assert.Empty(t, rec.ops)
			assert.Equal(t, image.Pt(10, 10), ec.Canvas.Live().Bounds().Size())
		})
	}
}
