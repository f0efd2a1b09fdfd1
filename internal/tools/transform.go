package tools

import (
	"fmt"
	"image"

	bildtransform "github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/canvas-history-mcp/internal/operation"
	"github.com/ironsheep/canvas-history-mcp/internal/raster"
	"github.com/ironsheep/canvas-history-mcp/internal/tool"
)

// Transform deforms the whole canvas. The result may differ in size from
// the canvas; it is staged in scratch and becomes the new live surface.
//
// For scale and crop the gesture supplies the geometry when the settings
// don't: scale takes its size from the last point, crop the rectangle
// spanned by the first and last points.
type Transform struct {
	Kind   operation.TransformKind `json:"kind"`
	Width  int                     `json:"width"`
	Height int                     `json:"height"`
	// Angle is in degrees, counter-clockwise.
	Angle float64 `json:"angle"`
	// SkewX and SkewY are shear angles in degrees.
	SkewX float64 `json:"skew_x"`
	SkewY float64 `json:"skew_y"`
	FlipH bool    `json:"flip_h"`
	FlipV bool    `json:"flip_v"`
}

func (t *Transform) ID() operation.ToolID { return operation.ToolTransform }

func (t *Transform) BuildOperation(ec *tool.EditContext, g tool.Gesture) (operation.Operation, error) {
	p := operation.Transform{
		Kind:       t.Kind,
		Width:      t.Width,
		Height:     t.Height,
		Angle:      t.Angle,
		SkewX:      t.SkewX,
		SkewY:      t.SkewY,
		FlipH:      t.FlipH,
		FlipV:      t.FlipV,
		Background: ec.Palette.Background,
	}
	switch t.Kind {
	case operation.TransformScale:
		if p.Width <= 0 && p.Height <= 0 {
			if len(g.Points) == 0 {
				return operation.Operation{}, fmt.Errorf("scale needs a size")
			}
			p.Width, p.Height = g.Last().X, g.Last().Y
		}
	case operation.TransformCrop:
		if len(g.Points) < 2 {
			return operation.Operation{}, fmt.Errorf("crop needs two points")
		}
		p.Rect = image.Rectangle{Min: g.First(), Max: g.Last()}.Canon()
	case operation.TransformRotate, operation.TransformSkew, operation.TransformFlip:
	default:
		return operation.Operation{}, fmt.Errorf("unknown transform: %q", t.Kind)
	}
	return operation.New(t.ID(), p), nil
}

func (t *Transform) DoToolOperation(ec *tool.EditContext, op operation.Operation) error {
	p, err := params[operation.Transform](t, op)
	if err != nil {
		return err
	}
	out, err := applyTransform(ec.Canvas.Live(), p)
	if err != nil {
		return err
	}

	ec.Canvas.WriteScratch(out)
	defer ec.Canvas.ClearScratch()
	ec.Canvas.ReplaceLive(raster.New(out.Bounds().Dx(), out.Bounds().Dy(), raster.Transparent))
	return ec.Canvas.CompositeScratchIntoLive(raster.BlendReplace, image.Point{})
}

func (t *Transform) ReplayOperation(ec *tool.EditContext, op operation.Operation) error {
	return t.DoToolOperation(ec, op)
}

func applyTransform(src *image.NRGBA, p operation.Transform) (*image.NRGBA, error) {
	switch p.Kind {
	case operation.TransformScale:
		if p.Width < 0 || p.Height < 0 || (p.Width == 0 && p.Height == 0) {
			return nil, fmt.Errorf("invalid scale size %dx%d", p.Width, p.Height)
		}
		// imaging keeps the aspect ratio when one side is 0.
		return imaging.Resize(src, p.Width, p.Height, imaging.Lanczos), nil

	case operation.TransformRotate:
		return imaging.Rotate(src, p.Angle, p.Background), nil

	case operation.TransformCrop:
		r := p.Rect.Intersect(src.Bounds())
		if r.Empty() {
			return nil, fmt.Errorf("crop rectangle %v is outside the canvas", p.Rect)
		}
		return imaging.Crop(src, r), nil

	case operation.TransformSkew:
		out := raster.ToBild(src)
		if p.SkewX != 0 {
			out = bildtransform.ShearH(out, p.SkewX)
		}
		if p.SkewY != 0 {
			out = bildtransform.ShearV(out, p.SkewY)
		}
		return raster.Clone(raster.FromBild(out)), nil

	case operation.TransformFlip:
		out := src
		if p.FlipH {
			out = imaging.FlipH(out)
		}
		if p.FlipV {
			out = imaging.FlipV(out)
		}
		return raster.Clone(out), nil

	default:
		return nil, fmt.Errorf("unknown transform: %q", p.Kind)
	}
}
