package tools

import (
	"image"

	"github.com/ironsheep/canvas-history-mcp/internal/operation"
	"github.com/ironsheep/canvas-history-mcp/internal/raster"
	"github.com/ironsheep/canvas-history-mcp/internal/tool"
)

// paintStroke renders s into scratch and composites it into live.
func paintStroke(ec *tool.EditContext, s operation.Stroke) error {
	if len(s.Points) == 0 {
		return errNoPoints
	}
	mask := raster.StrokeMask(s.Points, s.Width, s.Closed, s.Filled)
	ec.Canvas.WriteScratch(raster.Tint(mask, s.Color))
	defer ec.Canvas.ClearScratch()
	return ec.Canvas.CompositeScratchIntoLive(s.Mode, mask.Bounds().Min)
}

// Pencil draws a freehand polyline through every gesture point.
type Pencil struct {
	Width float64          `json:"width"`
	Mode  raster.BlendMode `json:"mode"`
}

func (p *Pencil) ID() operation.ToolID { return operation.ToolPencil }

func (p *Pencil) BuildOperation(ec *tool.EditContext, g tool.Gesture) (operation.Operation, error) {
	if len(g.Points) == 0 {
		return operation.Operation{}, errNoPoints
	}
	return operation.New(p.ID(), operation.Stroke{
		Points: g.Points,
		Color:  ec.Palette.Main,
		Width:  p.Width,
		Mode:   p.Mode,
	}), nil
}

func (p *Pencil) DoToolOperation(ec *tool.EditContext, op operation.Operation) error {
	s, err := params[operation.Stroke](p, op)
	if err != nil {
		return err
	}
	return paintStroke(ec, s)
}

func (p *Pencil) ReplayOperation(ec *tool.EditContext, op operation.Operation) error {
	return p.DoToolOperation(ec, op)
}

// Eraser clears alpha along the gesture.
type Eraser struct {
	Width float64 `json:"width"`
}

func (e *Eraser) ID() operation.ToolID { return operation.ToolEraser }

func (e *Eraser) BuildOperation(ec *tool.EditContext, g tool.Gesture) (operation.Operation, error) {
	if len(g.Points) == 0 {
		return operation.Operation{}, errNoPoints
	}
	return operation.New(e.ID(), operation.Stroke{
		Points: g.Points,
		Color:  raster.Black,
		Width:  e.Width,
		Mode:   raster.BlendErase,
	}), nil
}

func (e *Eraser) DoToolOperation(ec *tool.EditContext, op operation.Operation) error {
	s, err := params[operation.Stroke](e, op)
	if err != nil {
		return err
	}
	return paintStroke(ec, s)
}

func (e *Eraser) ReplayOperation(ec *tool.EditContext, op operation.Operation) error {
	return e.DoToolOperation(ec, op)
}

// Line draws a straight segment from the first to the last gesture point.
type Line struct {
	Width float64          `json:"width"`
	Mode  raster.BlendMode `json:"mode"`
}

func (l *Line) ID() operation.ToolID { return operation.ToolLine }

func (l *Line) BuildOperation(ec *tool.EditContext, g tool.Gesture) (operation.Operation, error) {
	if len(g.Points) == 0 {
		return operation.Operation{}, errNoPoints
	}
	return operation.New(l.ID(), operation.Stroke{
		Points: []image.Point{g.First(), g.Last()},
		Color:  ec.Palette.Main,
		Width:  l.Width,
		Mode:   l.Mode,
	}), nil
}

func (l *Line) DoToolOperation(ec *tool.EditContext, op operation.Operation) error {
	s, err := params[operation.Stroke](l, op)
	if err != nil {
		return err
	}
	return paintStroke(ec, s)
}

func (l *Line) ReplayOperation(ec *tool.EditContext, op operation.Operation) error {
	return l.DoToolOperation(ec, op)
}

// Rectangle draws the outline (or, with Filled, the whole area) of the
// rectangle spanned by the first and last gesture points.
type Rectangle struct {
	Width  float64          `json:"width"`
	Filled bool             `json:"filled"`
	Mode   raster.BlendMode `json:"mode"`
}

func (r *Rectangle) ID() operation.ToolID { return operation.ToolRectangle }

func (r *Rectangle) BuildOperation(ec *tool.EditContext, g tool.Gesture) (operation.Operation, error) {
	if len(g.Points) == 0 {
		return operation.Operation{}, errNoPoints
	}
	rect := image.Rectangle{Min: g.First(), Max: g.Last()}.Canon()
	return operation.New(r.ID(), operation.Stroke{
		Points: []image.Point{rect.Min, {X: rect.Max.X, Y: rect.Min.Y}, rect.Max, {X: rect.Min.X, Y: rect.Max.Y}},
		Color:  ec.Palette.Main,
		Width:  r.Width,
		Mode:   r.Mode,
		Closed: true,
		Filled: r.Filled,
	}), nil
}

func (r *Rectangle) DoToolOperation(ec *tool.EditContext, op operation.Operation) error {
	s, err := params[operation.Stroke](r, op)
	if err != nil {
		return err
	}
	return paintStroke(ec, s)
}

func (r *Rectangle) ReplayOperation(ec *tool.EditContext, op operation.Operation) error {
	return r.DoToolOperation(ec, op)
}
