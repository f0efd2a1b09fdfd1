package tools

import (
	"fmt"
	"image"

	"github.com/ironsheep/canvas-history-mcp/internal/operation"
	"github.com/ironsheep/canvas-history-mcp/internal/raster"
	"github.com/ironsheep/canvas-history-mcp/internal/selection"
	"github.com/ironsheep/canvas-history-mcp/internal/tool"
)

// defineRegion is shared by the two selection tools. A preview only shows
// the outline; the final operation detaches the pixels from live.
func defineRegion(ec *tool.EditContext, p operation.SelectionDefine, preview bool) error {
	if preview {
		return ec.Selection.Begin(p.Path)
	}
	ok, err := ec.Selection.DefineFromPath(ec.Canvas.Live(), p.Path, p.Replacement)
	if err != nil {
		return err
	}
	if !ok {
		return tool.ErrNoChange
	}
	return nil
}

func cancelDefining(ec *tool.EditContext) {
	if ec.Selection.State() == selection.Defining {
		ec.Selection.Reset()
	}
}

// RectSelect selects the rectangle spanned by the first and last gesture
// points.
type RectSelect struct {
	Policy selection.Policy `json:"policy"`
}

func (r *RectSelect) ID() operation.ToolID { return operation.ToolRectSelect }
func (r *RectSelect) SelectionTool()       {}
func (r *RectSelect) DefinesRegion()       {}

func (r *RectSelect) BuildOperation(ec *tool.EditContext, g tool.Gesture) (operation.Operation, error) {
	if len(g.Points) == 0 {
		return operation.Operation{}, errNoPoints
	}
	return operation.New(r.ID(), operation.SelectionDefine{
		Path:        raster.RectPath(image.Rectangle{Min: g.First(), Max: g.Last()}),
		Policy:      r.Policy,
		Replacement: r.Policy.Resolve(ec.Palette.Background, ec.Palette.Secondary),
	}), nil
}

func (r *RectSelect) DoToolOperation(ec *tool.EditContext, op operation.Operation) error {
	p, err := params[operation.SelectionDefine](r, op)
	if err != nil {
		return err
	}
	return defineRegion(ec, p, op.Preview)
}

func (r *RectSelect) ReplayOperation(ec *tool.EditContext, op operation.Operation) error {
	return r.DoToolOperation(ec, op.WithPreview(false))
}

func (r *RectSelect) CancelOperation(ec *tool.EditContext) { cancelDefining(ec) }

// FreeSelect selects the polygon traced by the gesture.
type FreeSelect struct {
	Policy selection.Policy `json:"policy"`
}

func (f *FreeSelect) ID() operation.ToolID { return operation.ToolFreeSelect }
func (f *FreeSelect) SelectionTool()       {}
func (f *FreeSelect) DefinesRegion()       {}

func (f *FreeSelect) BuildOperation(ec *tool.EditContext, g tool.Gesture) (operation.Operation, error) {
	if len(g.Points) == 0 {
		return operation.Operation{}, errNoPoints
	}
	return operation.New(f.ID(), operation.SelectionDefine{
		Path:        raster.PolygonPath(g.Points),
		Policy:      f.Policy,
		Replacement: f.Policy.Resolve(ec.Palette.Background, ec.Palette.Secondary),
	}), nil
}

func (f *FreeSelect) DoToolOperation(ec *tool.EditContext, op operation.Operation) error {
	p, err := params[operation.SelectionDefine](f, op)
	if err != nil {
		return err
	}
	return defineRegion(ec, p, op.Preview)
}

func (f *FreeSelect) ReplayOperation(ec *tool.EditContext, op operation.Operation) error {
	return f.DoToolOperation(ec, op.WithPreview(false))
}

func (f *FreeSelect) CancelOperation(ec *tool.EditContext) { cancelDefining(ec) }

// Move drags the floating region by the distance between the first and last
// gesture points. Canvas buffers are untouched until the region is merged.
type Move struct{}

func (m *Move) ID() operation.ToolID { return operation.ToolMove }
func (m *Move) SelectionTool()       {}

func (m *Move) BuildOperation(ec *tool.EditContext, g tool.Gesture) (operation.Operation, error) {
	if len(g.Points) == 0 {
		return operation.Operation{}, errNoPoints
	}
	if !ec.Selection.IsActive() {
		return operation.Operation{}, selection.ErrNoActiveSelection
	}
	d := g.Last().Sub(g.First())
	return operation.New(m.ID(), operation.SelectionDrag{DX: d.X, DY: d.Y}), nil
}

func (m *Move) DoToolOperation(ec *tool.EditContext, op operation.Operation) error {
	p, err := params[operation.SelectionDrag](m, op)
	if err != nil {
		return err
	}
	if err := ec.Selection.Drag(p.DX, p.DY); err != nil {
		return err
	}
	if op.Preview {
		return nil
	}
	return ec.Selection.CommitDrag()
}

func (m *Move) ReplayOperation(ec *tool.EditContext, op operation.Operation) error {
	return m.DoToolOperation(ec, op.WithPreview(false))
}

func (m *Move) CancelOperation(ec *tool.EditContext) { ec.Selection.ResetDrag() }

// SelectionApply merges the floating region back into the canvas.
type SelectionApply struct{}

func (a *SelectionApply) ID() operation.ToolID { return operation.ToolSelectionApply }
func (a *SelectionApply) SelectionTool()       {}

func (a *SelectionApply) BuildOperation(ec *tool.EditContext, _ tool.Gesture) (operation.Operation, error) {
	if !ec.Selection.IsActive() {
		return operation.Operation{}, selection.ErrNoActiveSelection
	}
	return operation.New(a.ID(), operation.SelectionMerge{}), nil
}

func (a *SelectionApply) DoToolOperation(ec *tool.EditContext, op operation.Operation) error {
	if _, err := params[operation.SelectionMerge](a, op); err != nil {
		return err
	}
	if op.Preview {
		if !ec.Selection.IsActive() {
			return selection.ErrNoActiveSelection
		}
		ec.Selection.Paint(ec.Canvas.Live())
		return nil
	}
	return ec.Selection.MergeAndDeactivate(ec.Canvas.Live())
}

func (a *SelectionApply) ReplayOperation(ec *tool.EditContext, op operation.Operation) error {
	return a.DoToolOperation(ec, op.WithPreview(false))
}

// Import places external pixels on the canvas as a floating region. Pending
// holds the pixels for the next gesture, which supplies the position.
type Import struct {
	Pending *image.NRGBA `json:"-"`
}

func (i *Import) ID() operation.ToolID { return operation.ToolImport }
func (i *Import) SelectionTool()       {}
func (i *Import) DefinesRegion()       {}

func (i *Import) BuildOperation(ec *tool.EditContext, g tool.Gesture) (operation.Operation, error) {
	if raster.IsEmpty(i.Pending) {
		return operation.Operation{}, fmt.Errorf("nothing to import")
	}
	return operation.New(i.ID(), operation.Import{Buffer: i.Pending, At: g.Last()}), nil
}

func (i *Import) DoToolOperation(ec *tool.EditContext, op operation.Operation) error {
	p, err := params[operation.Import](i, op)
	if err != nil {
		return err
	}
	if raster.IsEmpty(p.Buffer) {
		return fmt.Errorf("nothing to import")
	}
	if op.Preview {
		raster.Composite(ec.Canvas.Live(), p.Buffer, p.At, raster.BlendNormal)
		return nil
	}
	return ec.Selection.ImportContent(p.Buffer, p.At)
}

func (i *Import) ReplayOperation(ec *tool.EditContext, op operation.Operation) error {
	return i.DoToolOperation(ec, op.WithPreview(false))
}
