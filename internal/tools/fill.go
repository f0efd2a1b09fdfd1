package tools

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/canvas-history-mcp/internal/operation"
	"github.com/ironsheep/canvas-history-mcp/internal/raster"
	"github.com/ironsheep/canvas-history-mcp/internal/tool"
)

// ErrFillAborted is returned when the user declines to continue a flood
// fill that reached its pixel cap.
var ErrFillAborted = errors.New("flood fill aborted")

// Fill flood-fills the contiguous area around the clicked pixel whose colors
// lie within Tolerance (CIE Lab distance) of it.
//
// Every MaxPixels pixels a final fill asks through EditContext.Confirm
// whether to go on. A preview stops quietly at the cap; a replay never stops.
type Fill struct {
	Tolerance float64 `json:"tolerance"`
	MaxPixels int     `json:"max_pixels"`
}

func (f *Fill) ID() operation.ToolID { return operation.ToolFill }

func (f *Fill) BuildOperation(ec *tool.EditContext, g tool.Gesture) (operation.Operation, error) {
	if len(g.Points) == 0 {
		return operation.Operation{}, errNoPoints
	}
	seed := g.Last()
	if !seed.In(image.Rectangle{Max: ec.Canvas.Size()}) {
		return operation.Operation{}, fmt.Errorf("fill seed %v is outside the canvas", seed)
	}
	return operation.New(f.ID(), operation.Fill{
		Seed:      seed,
		Color:     ec.Palette.Main,
		Tolerance: f.Tolerance,
		MaxPixels: f.MaxPixels,
	}), nil
}

func (f *Fill) DoToolOperation(ec *tool.EditContext, op operation.Operation) error {
	p, err := params[operation.Fill](f, op)
	if err != nil {
		return err
	}
	ask := func(n int) bool {
		if op.Preview {
			return false
		}
		return ec.Ask(fmt.Sprintf("Flood fill has covered %d pixels. Continue?", n))
	}
	done, err := floodFill(ec.Canvas.Live(), p, ask)
	if errors.Is(err, ErrFillAborted) && op.Preview {
		return nil
	}
	if err != nil {
		return err
	}
	ec.Log().Debug("flood fill", "pixels", done)
	return nil
}

func (f *Fill) ReplayOperation(ec *tool.EditContext, op operation.Operation) error {
	p, err := params[operation.Fill](f, op)
	if err != nil {
		return err
	}
	p.MaxPixels = 0
	_, err = floodFill(ec.Canvas.Live(), p, nil)
	return err
}

// floodFill paints the 4-connected region around p.Seed. Each time another
// p.MaxPixels pixels have been painted, cont is asked whether to go on; a
// false answer returns ErrFillAborted with img partly painted.
func floodFill(img *image.NRGBA, p operation.Fill, cont func(painted int) bool) (int, error) {
	b := img.Bounds()
	if !p.Seed.In(b) {
		return 0, fmt.Errorf("fill seed %v is outside the canvas", p.Seed)
	}
	target := img.NRGBAAt(p.Seed.X, p.Seed.Y)
	w := b.Dx()
	visited := make([]bool, w*b.Dy())
	stack := []image.Point{p.Seed}
	visited[(p.Seed.Y-b.Min.Y)*w+p.Seed.X-b.Min.X] = true

	painted := 0
	for len(stack) > 0 {
		pt := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		img.SetNRGBA(pt.X, pt.Y, p.Color)
		painted++

		if p.MaxPixels > 0 && painted%p.MaxPixels == 0 && len(stack) > 0 {
			if cont == nil || !cont(painted) {
				return painted, ErrFillAborted
			}
		}

		for _, d := range [4]image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			n := pt.Add(d)
			if !n.In(b) {
				continue
			}
			i := (n.Y-b.Min.Y)*w + n.X - b.Min.X
			if visited[i] {
				continue
			}
			if raster.Distance(img.NRGBAAt(n.X, n.Y), target) > p.Tolerance {
				continue
			}
			visited[i] = true
			stack = append(stack, n)
		}
	}
	return painted, nil
}
