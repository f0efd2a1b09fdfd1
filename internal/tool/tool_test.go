package tool

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/canvas-history-mcp/internal/canvas"
	"github.com/ironsheep/canvas-history-mcp/internal/operation"
	"github.com/ironsheep/canvas-history-mcp/internal/raster"
	"github.com/ironsheep/canvas-history-mcp/internal/selection"
)

// dotTool paints the gesture's points in the main color.
type dotTool struct {
	failDo     bool
	failBuild  bool
	failReplay bool
	calls      int
	cancelled  int
}

func (d *dotTool) ID() operation.ToolID { return "dot" }

func (d *dotTool) BuildOperation(ec *EditContext, g Gesture) (operation.Operation, error) {
	if d.failBuild {
		return operation.Operation{}, errors.New("bad input")
	}
	return operation.New(d.ID(), operation.Stroke{Points: g.Points, Color: ec.Palette.Main}), nil
}

func (d *dotTool) DoToolOperation(ec *EditContext, op operation.Operation) error {
	d.calls++
	s, err := operation.As[operation.Stroke](op)
	if err != nil {
		return err
	}
	for _, p := range s.Points {
		ec.Canvas.Live().SetNRGBA(p.X, p.Y, s.Color)
	}
	if d.failDo {
		return errors.New("render failed")
	}
	return nil
}

func (d *dotTool) ReplayOperation(ec *EditContext, op operation.Operation) error {
	if d.failReplay {
		ec.Canvas.Live().SetNRGBA(0, 0, raster.Black)
		return errors.New("replay failed")
	}
	return d.DoToolOperation(ec, op)
}

func (d *dotTool) CancelOperation(ec *EditContext) { d.cancelled++ }

// recorder folds live into committed and keeps what it was given.
type recorder struct {
	cv   *canvas.State
	ops  []operation.Operation
	fail bool
}

func (r *recorder) AddOperation(op operation.Operation) error {
	if r.fail {
		return errors.New("rejected")
	}
	r.cv.CommitLive()
	r.ops = append(r.ops, op)
	return nil
}

func newContext(t *testing.T) (*EditContext, *recorder) {
	t.Helper()
	cv := canvas.New(canvas.DefaultOptions())
	require.NoError(t, cv.RestoreFromSnapshot(canvas.Snapshot{Width: 10, Height: 10, Background: raster.White}))
	rec := &recorder{cv: cv}
	return &EditContext{
		Canvas:    cv,
		Selection: selection.New(),
		Recorder:  rec,
		Palette:   Palette{Main: raster.Black, Secondary: raster.White, Background: raster.White},
	}, rec
}

func gesture(pts ...image.Point) Gesture {
	return Gesture{Points: pts}
}

func TestSession_PreviewNonContamination(t *testing.T) {
	ec, rec := newContext(t)
	tl := &dotTool{}
	s := NewSession(tl)
	before := ec.Canvas.Committed()

	for i := 0; i < 5; i++ {
		assert.True(t, s.Preview(ec, gesture(image.Pt(i, i))))
		assert.True(t, raster.Equal(before, ec.Canvas.Committed()))
	}
	assert.True(t, s.InProgress())
	assert.Equal(t, raster.White, ec.Canvas.Live().NRGBAAt(0, 0), "each preview starts from committed")
	assert.Equal(t, raster.Black, ec.Canvas.Live().NRGBAAt(4, 4))

	op, err := s.Apply(ec, gesture(image.Pt(7, 7)))
	require.NoError(t, err)

	assert.False(t, op.Preview)
	assert.Equal(t, Committed, s.Phase())
	require.Len(t, rec.ops, 1)
	committed := ec.Canvas.Committed()
	assert.Equal(t, raster.Black, committed.NRGBAAt(7, 7))
	assert.Equal(t, raster.White, committed.NRGBAAt(4, 4))
}

func TestSession_PreviewFailureAbsorbed(t *testing.T) {
	ec, rec := newContext(t)
	tl := &dotTool{failDo: true}
	s := NewSession(tl)

	assert.False(t, s.Preview(ec, gesture(image.Pt(2, 2))))
	assert.Equal(t, raster.White, ec.Canvas.Live().NRGBAAt(2, 2), "a failed preview leaves no trace")

	tl.failDo, tl.failBuild = false, true
	assert.False(t, s.Preview(ec, gesture(image.Pt(2, 2))))
	assert.Empty(t, rec.ops)
}

func TestSession_ApplyFailureLeavesCommitted(t *testing.T) {
	ec, rec := newContext(t)
	tl := &dotTool{failDo: true}
	s := NewSession(tl)
	before := ec.Canvas.Committed()

	_, err := s.Apply(ec, gesture(image.Pt(3, 3)))

	require.Error(t, err)
	assert.True(t, raster.Equal(before, ec.Canvas.Committed()))
	assert.True(t, raster.Equal(before, ec.Canvas.Live()))
	assert.Empty(t, rec.ops)
	assert.Equal(t, Idle, s.Phase())
	assert.Equal(t, 1, tl.cancelled)
}

func TestSession_RecorderFailure(t *testing.T) {
	ec, rec := newContext(t)
	rec.fail = true
	s := NewSession(&dotTool{})

	_, err := s.Apply(ec, gesture(image.Pt(3, 3)))

	require.Error(t, err)
	assert.Equal(t, raster.White, ec.Canvas.Committed().NRGBAAt(3, 3))
	assert.Equal(t, raster.White, ec.Canvas.Live().NRGBAAt(3, 3))
}

func TestSession_BuildFailure(t *testing.T) {
	ec, _ := newContext(t)
	s := NewSession(&dotTool{failBuild: true})

	_, err := s.Apply(ec, gesture())
	assert.ErrorContains(t, err, "bad input")
}

func TestSession_Cancel(t *testing.T) {
	ec, rec := newContext(t)
	tl := &dotTool{}
	s := NewSession(tl)
	s.Preview(ec, gesture(image.Pt(1, 1)))

	s.Cancel(ec)

	assert.Equal(t, Cancelled, s.Phase())
	assert.False(t, s.InProgress())
	assert.Equal(t, 1, tl.cancelled)
	assert.Equal(t, raster.White, ec.Canvas.Live().NRGBAAt(1, 1))
	assert.Empty(t, rec.ops)
}

func TestSession_ApplyOperation_WrongTool(t *testing.T) {
	ec, _ := newContext(t)
	s := NewSession(&dotTool{})

	err := s.ApplyOperation(ec, operation.New("other", operation.Stroke{}))
	assert.ErrorIs(t, err, ErrWrongTool)
}

func TestCommit(t *testing.T) {
	ec, rec := newContext(t)
	tl := &dotTool{}
	op := operation.New("dot", operation.Stroke{Points: []image.Point{{5, 5}}, Color: raster.Black})

	require.NoError(t, Commit(ec, tl, op.WithPreview(true)))

	assert.Equal(t, raster.Black, ec.Canvas.Committed().NRGBAAt(5, 5))
	assert.Empty(t, rec.ops, "Commit does not record")

	tl.failDo = true
	before := ec.Canvas.Committed()
	assert.Error(t, Commit(ec, tl, operation.New("dot", operation.Stroke{Points: []image.Point{{6, 6}}})))
	assert.True(t, raster.Equal(before, ec.Canvas.Committed()))
}

func TestReplay(t *testing.T) {
	ec, _ := newContext(t)
	tl := &dotTool{}
	op := operation.New("dot", operation.Stroke{Points: []image.Point{{2, 3}}, Color: raster.Black})

	require.NoError(t, Replay(ec, tl, op))
	assert.Equal(t, raster.Black, ec.Canvas.Committed().NRGBAAt(2, 3))

	tl.failReplay = true
	before := ec.Canvas.Committed()
	assert.Error(t, Replay(ec, tl, op))
	assert.True(t, raster.Equal(before, ec.Canvas.Committed()))
	assert.True(t, raster.Equal(before, ec.Canvas.Live()))

	assert.ErrorIs(t, Replay(ec, tl, operation.New("other", operation.Stroke{})), ErrWrongTool)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(&dotTool{})

	tl, err := r.Lookup("dot")
	require.NoError(t, err)
	assert.Equal(t, operation.ToolID("dot"), tl.ID())

	_, err = r.Lookup("airbrush")
	var unknown *operation.UnknownToolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, operation.ToolID("airbrush"), unknown.Tool)

	assert.Error(t, r.Register(&dotTool{}))
	assert.Equal(t, []operation.ToolID{"dot"}, r.IDs())

	r.Unregister("dot")
	_, err = r.Lookup("dot")
	assert.Error(t, err)
}

func TestEditContext_Defaults(t *testing.T) {
	ec := &EditContext{}
	assert.False(t, ec.Ask("continue?"))
	assert.NotNil(t, ec.Log())

	ec.Confirm = func(string) bool { return true }
	assert.True(t, ec.Ask("continue?"))
}

func TestGesture(t *testing.T) {
	g := gesture(image.Pt(1, 2), image.Pt(3, 4))
	assert.Equal(t, image.Pt(1, 2), g.First())
	assert.Equal(t, image.Pt(3, 4), g.Last())
	assert.Equal(t, image.Point{}, gesture().Last())
}

// noopTool reports every final operation as a no-op.
type noopTool struct{ dotTool }

func (n *noopTool) ID() operation.ToolID { return "dot" }

func (n *noopTool) DoToolOperation(ec *EditContext, op operation.Operation) error {
	if op.Preview {
		return nil
	}
	return ErrNoChange
}

func TestSession_NoChangeIsSilent(t *testing.T) {
	ec, rec := newContext(t)
	s := NewSession(&noopTool{})

	op, err := s.Apply(ec, gesture(image.Pt(1, 1)))

	require.NoError(t, err)
	assert.Equal(t, operation.Operation{}, op)
	assert.Empty(t, rec.ops)
	assert.Equal(t, Idle, s.Phase())
	assert.ErrorIs(t, s.ApplyOperation(ec, operation.New("dot", operation.Stroke{})), ErrNoChange)
	assert.NoError(t, Commit(ec, &noopTool{}, operation.New("dot", operation.Stroke{})))
}
