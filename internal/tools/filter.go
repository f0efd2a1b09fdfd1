package tools

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/canvas-history-mcp/internal/operation"
	"github.com/ironsheep/canvas-history-mcp/internal/raster"
	"github.com/ironsheep/canvas-history-mcp/internal/tool"
)

// Filter applies an image filter to the canvas. A gesture of two or more
// points limits it to the rectangle they span.
//
// Amount means:
//   - blur: Gaussian radius in pixels
//   - brightness: relative change, -1 to 1
//   - edges: high threshold (0-255); the low threshold is a third of it
//
// and is ignored by the other kinds.
type Filter struct {
	Kind   operation.FilterKind `json:"kind"`
	Amount float64              `json:"amount"`
}

func (f *Filter) ID() operation.ToolID { return operation.ToolFilter }

func (f *Filter) BuildOperation(ec *tool.EditContext, g tool.Gesture) (operation.Operation, error) {
	if _, ok := filters[f.Kind]; !ok {
		return operation.Operation{}, fmt.Errorf("unknown filter: %q", f.Kind)
	}
	var region image.Rectangle
	if len(g.Points) >= 2 {
		region = image.Rectangle{Min: g.First(), Max: g.Last()}.Canon()
	}
	return operation.New(f.ID(), operation.Filter{Kind: f.Kind, Amount: f.Amount, Region: region}), nil
}

func (f *Filter) DoToolOperation(ec *tool.EditContext, op operation.Operation) error {
	p, err := params[operation.Filter](f, op)
	if err != nil {
		return err
	}
	fn, ok := filters[p.Kind]
	if !ok {
		return fmt.Errorf("unknown filter: %q", p.Kind)
	}

	live := ec.Canvas.Live()
	r := live.Bounds()
	if !p.Region.Empty() {
		r = p.Region.Intersect(r)
	}
	if r.Empty() {
		return tool.ErrNoChange
	}

	ec.Canvas.WriteScratch(fn(raster.Crop(live, r), p.Amount))
	defer ec.Canvas.ClearScratch()
	return ec.Canvas.CompositeScratchIntoLive(raster.BlendReplace, r.Min)
}

func (f *Filter) ReplayOperation(ec *tool.EditContext, op operation.Operation) error {
	return f.DoToolOperation(ec, op)
}

type filterFunc func(src *image.NRGBA, amount float64) *image.NRGBA

// The bild filters read straight-alpha bytes through raster.ToBild and
// write a new buffer, so the source is never modified.
var filters = map[operation.FilterKind]filterFunc{
	operation.FilterBlur: func(src *image.NRGBA, amount float64) *image.NRGBA {
		if amount <= 0 {
			amount = 2
		}
		return raster.FromBild(blur.Gaussian(raster.ToBild(src), amount))
	},
	operation.FilterSharpen: func(src *image.NRGBA, _ float64) *image.NRGBA {
		return raster.FromBild(effect.Sharpen(raster.ToBild(src)))
	},
	operation.FilterGrayscale: func(src *image.NRGBA, _ float64) *image.NRGBA {
		return raster.FromBild(effect.Grayscale(raster.ToBild(src)))
	},
	operation.FilterInvert: func(src *image.NRGBA, _ float64) *image.NRGBA {
		return raster.FromBild(effect.Invert(raster.ToBild(src)))
	},
	operation.FilterBrightness: func(src *image.NRGBA, amount float64) *image.NRGBA {
		return raster.FromBild(adjust.Brightness(raster.ToBild(src), max(-1, min(amount, 1))))
	},
	operation.FilterEdges: func(src *image.NRGBA, amount float64) *image.NRGBA {
		high := 150
		if amount > 0 {
			high = int(min(amount, 255))
		}
		return raster.EdgeDetect(src, high/3, high)
	},
}
