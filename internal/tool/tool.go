// Package tool defines the contract every editing tool implements and the
// session state machine that drives it:
//
//	Idle -> Previewing -> Committed
//	                   -> Cancelled
//
// A tool never holds on to document state. Each call receives an
// [EditContext] that is valid for that call only.
package tool

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"

	"github.com/ironsheep/canvas-history-mcp/internal/canvas"
	"github.com/ironsheep/canvas-history-mcp/internal/operation"
	"github.com/ironsheep/canvas-history-mcp/internal/selection"
)

var (
	// ErrWrongTool is returned when a tool is handed another tool's
	// operation.
	ErrWrongTool = errors.New("operation belongs to a different tool")

	// ErrNoChange is returned by DoToolOperation when the gesture turned
	// out to be a no-op, such as a double click with a selection tool.
	// Nothing is recorded and no error is reported to the user.
	ErrNoChange = errors.New("operation changes nothing")
)

// Gesture is the pointer input of one gesture, in canvas coordinates and
// event order.
type Gesture struct {
	Points []image.Point `json:"points"`
}

// First returns the first point, or the zero point for an empty gesture.
func (g Gesture) First() image.Point {
	if len(g.Points) == 0 {
		return image.Point{}
	}
	return g.Points[0]
}

// Last returns the last point, or the zero point for an empty gesture.
func (g Gesture) Last() image.Point {
	if len(g.Points) == 0 {
		return image.Point{}
	}
	return g.Points[len(g.Points)-1]
}

// Palette holds the document's current colors.
type Palette struct {
	Main       color.NRGBA `json:"main"`
	Secondary  color.NRGBA `json:"secondary"`
	Background color.NRGBA `json:"background"`
}

// Recorder stores a final operation. It folds live into committed as part
// of recording.
type Recorder interface {
	AddOperation(op operation.Operation) error
}

// EditContext is what a tool may touch during one call.
type EditContext struct {
	Canvas    *canvas.State
	Selection *selection.Manager
	Recorder  Recorder
	Palette   Palette
	// Confirm asks the user a continue-or-abort question. nil answers
	// abort.
	Confirm func(question string) bool
	Logger  *slog.Logger
}

// Ask forwards question to Confirm.
func (ec *EditContext) Ask(question string) bool {
	if ec.Confirm == nil {
		return false
	}
	return ec.Confirm(question)
}

// Log returns the context's logger, or one that discards everything.
func (ec *EditContext) Log() *slog.Logger {
	if ec.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return ec.Logger
}

// Tool is implemented by every editing tool.
type Tool interface {
	// ID names the tool; it tags the operations the tool builds.
	ID() operation.ToolID

	// BuildOperation turns gesture input into an operation. It has no side
	// effects.
	BuildOperation(ec *EditContext, g Gesture) (operation.Operation, error)

	// DoToolOperation renders op into live (and scratch). Live has been
	// reset from committed before the call, so repeated calls with the same
	// operation give the same result. When op.Preview is set the tool must
	// leave selection state as a later final call expects to find it.
	DoToolOperation(ec *EditContext, op operation.Operation) error

	// ReplayOperation is the non-interactive form of DoToolOperation used
	// when rebuilding from history. It never prompts.
	ReplayOperation(ec *EditContext, op operation.Operation) error
}

// Canceler is implemented by tools that keep state outside the canvas
// buffers during a gesture.
type Canceler interface {
	CancelOperation(ec *EditContext)
}

// SelectionTool is implemented by tools that work on the floating region.
// Switching to any other tool merges the region first.
type SelectionTool interface {
	Tool
	SelectionTool()
}

// RegionDefiner is implemented by tools that create a new floating region.
// An existing region is merged before they start.
type RegionDefiner interface {
	Tool
	DefinesRegion()
}

// CheckTool reports ErrWrongTool unless op was built by t.
func CheckTool(t Tool, op operation.Operation) error {
	if op.Tool != t.ID() {
		return fmt.Errorf("%w: %s cannot run %q", ErrWrongTool, t.ID(), op.Tool)
	}
	return nil
}

// Commit runs op through t and folds the result into committed without
// recording it. Redo uses it. On failure committed is unchanged.
func Commit(ec *EditContext, t Tool, op operation.Operation) error {
	if err := CheckTool(t, op); err != nil {
		return err
	}
	ec.Canvas.DiscardLive()
	if err := t.DoToolOperation(ec, op.WithPreview(false)); err != nil {
		ec.Canvas.DiscardLive()
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return fmt.Errorf("failed to apply %s: %w", op, err)
	}
	ec.Canvas.CommitLive()
	return nil
}

// Replay re-runs a recorded op through t's replay entry point and commits
// the result. On failure committed is unchanged.
func Replay(ec *EditContext, t Tool, op operation.Operation) error {
	if err := CheckTool(t, op); err != nil {
		return err
	}
	ec.Canvas.DiscardLive()
	if err := t.ReplayOperation(ec, op.WithPreview(false)); err != nil {
		ec.Canvas.DiscardLive()
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return fmt.Errorf("failed to replay %s: %w", op, err)
	}
	ec.Canvas.CommitLive()
	return nil
}
