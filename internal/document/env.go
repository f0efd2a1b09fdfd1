package document

import (
	"image"

	"github.com/ironsheep/canvas-history-mcp/internal/canvas"
	"github.com/ironsheep/canvas-history-mcp/internal/operation"
	"github.com/ironsheep/canvas-history-mcp/internal/tool"
)

// recorder hands final operations to history.
type recorder struct{ d *Document }

func (r recorder) AddOperation(op operation.Operation) error {
	return r.d.hist.AddOperation(env{r.d}, op)
}

// env is the view of a Document that history works against.
type env struct{ d *Document }

func (e env) GestureInProgress() bool { return e.d.session.InProgress() }

func (e env) CancelGesture() { e.d.session.Cancel(e.d.editContext()) }

func (e env) FoldLive() { e.d.canvas.CommitLive() }

func (e env) Committed() *image.NRGBA { return e.d.canvas.Committed() }

func (e env) SelectionActive() bool { return e.d.sel.IsActive() }

// RestoreSnapshot also drops the floating region: restore points never hold
// one, and replay recreates it from the recorded operations.
func (e env) RestoreSnapshot(s canvas.Snapshot) error {
	e.d.sel.Reset()
	return e.d.canvas.RestoreFromSnapshot(s)
}

func (e env) ReplayOperation(op operation.Operation) error {
	t, err := e.d.registry.Lookup(op.Tool)
	if err != nil {
		return err
	}
	return tool.Replay(e.d.editContext(), t, op)
}

// ApplyOperation redoes a recorded operation. It was approved when it was
// first applied, so any question the tool asks is answered yes.
func (e env) ApplyOperation(op operation.Operation) error {
	t, err := e.d.registry.Lookup(op.Tool)
	if err != nil {
		return err
	}
	ec := e.d.editContext()
	ec.Confirm = approve
	return tool.Commit(ec, t, op)
}

func approve(string) bool { return true }

func (e env) Warn(msg string) { e.d.warn(msg) }
