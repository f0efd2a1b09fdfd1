package history

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/ironsheep/canvas-history-mcp/internal/canvas"
	"github.com/ironsheep/canvas-history-mcp/internal/operation"
	"github.com/ironsheep/canvas-history-mcp/internal/raster"
)

var (
	// ErrPreviewOperation is returned when recording an in-progress edit.
	ErrPreviewOperation = errors.New("preview operations cannot be recorded")

	// ErrSnapshotOperation is returned when a snapshot is passed to
	// AddOperation instead of AddSnapshot.
	ErrSnapshotOperation = errors.New("snapshots must be added with AddSnapshot")
)

// Env is the document state history works against. It is passed to each
// call and never retained.
type Env interface {
	// GestureInProgress reports whether the active tool is mid-gesture.
	GestureInProgress() bool
	// CancelGesture abandons the gesture in progress.
	CancelGesture()
	// FoldLive copies the live surface into the committed buffer.
	FoldLive()
	// Committed returns a copy of the committed buffer.
	Committed() *image.NRGBA
	// SelectionActive reports whether a region is floating.
	SelectionActive() bool
	// RestoreSnapshot resets the canvas (and drops any region) to s.
	RestoreSnapshot(s canvas.Snapshot) error
	// ReplayOperation re-runs op non-interactively and commits the result.
	ReplayOperation(op operation.Operation) error
	// ApplyOperation runs op through the tool protocol's commit path
	// without recording it.
	ApplyOperation(op operation.Operation) error
	// Warn surfaces a message to the user.
	Warn(msg string)
}

// Options tunes the retention policies.
type Options struct {
	// CheckpointInterval is the number of operations between automatic
	// checkpoints. 0 disables them.
	CheckpointInterval int
	// MaxCheckpoints caps how many checkpoints are kept; older ones are
	// dropped first. 0 means no limit.
	MaxCheckpoints int
	// MaxSnapshots caps how many snapshot operations the undo stack keeps.
	// 0 means no limit.
	MaxSnapshots int
	// Logger receives debug and warning output. nil discards it.
	Logger *slog.Logger
}

// DefaultOptions returns the retention policies used when none are
// configured.
func DefaultOptions() Options {
	return Options{CheckpointInterval: 20, MaxCheckpoints: 8, MaxSnapshots: 10}
}

type entry struct {
	op         operation.Operation
	checkpoint *image.NRGBA
}

// savedMarker remembers which operation was on top of the undo stack when
// the document was last persisted. A zero id with valid set means the base
// snapshot itself.
type savedMarker struct {
	valid bool
	id    ulid.ULID
}

// History is the undo/redo log of one document.
type History struct {
	base   operation.Operation
	undo   []entry
	redo   []entry
	saved  savedMarker
	opts   Options
	logger *slog.Logger
}

// RebuildReport describes what RebuildFromHistory did.
type RebuildReport struct {
	// Cut is the index of the undo entry the canvas was restored from, or -1
	// for the base snapshot.
	Cut int
	// Replayed counts operations replayed after the cut.
	Replayed int
	// Skipped lists operations that failed to replay and were dropped.
	Skipped []operation.Operation
}

// New creates a History whose base is initial. The initial state counts as
// saved.
func New(initial canvas.Snapshot, opts Options) (*History, error) {
	base := operation.NewSnapshot(initial)
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create history: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &History{
		base:   base,
		saved:  savedMarker{valid: true},
		opts:   opts,
		logger: logger,
	}, nil
}

// AddOperation records a final edit: the live surface is folded into
// committed, the operation appended, and the redo stack cleared.
func (h *History) AddOperation(env Env, op operation.Operation) error {
	switch {
	case op.Preview:
		return ErrPreviewOperation
	case op.IsSnapshot():
		return ErrSnapshotOperation
	}
	if err := op.Validate(); err != nil {
		return err
	}

	env.FoldLive()
	h.undo = append(h.undo, entry{op: op})
	h.redo = nil
	h.maybeCheckpoint(env)
	return nil
}

// AddSnapshot appends a snapshot of buf, marks the document saved and
// applies the pruning policy. buf is cloned.
func (h *History) AddSnapshot(env Env, buf *image.NRGBA) error {
	op, err := h.pushSnapshot(buf)
	if err != nil {
		return err
	}
	h.saved = savedMarker{valid: true, id: op.ID}
	h.prune()
	return nil
}

// Flatten appends a snapshot of the committed buffer without changing
// whether the document counts as saved.
func (h *History) Flatten(env Env) error {
	wasSaved := h.IsSaved()
	op, err := h.pushSnapshot(env.Committed())
	if err != nil {
		return err
	}
	if wasSaved {
		h.saved = savedMarker{valid: true, id: op.ID}
	}
	h.prune()
	return nil
}

func (h *History) pushSnapshot(buf *image.NRGBA) (operation.Operation, error) {
	if raster.IsEmpty(buf) {
		return operation.Operation{}, canvas.ErrInvalidSnapshot
	}
	size := buf.Bounds().Size()
	op := operation.NewSnapshot(canvas.Snapshot{
		Buffer:     buf,
		Width:      size.X,
		Height:     size.Y,
		Background: h.background(),
	})
	h.undo = append(h.undo, entry{op: op})
	return op, nil
}

// TryUndo cancels the gesture in progress if there is one. Otherwise it
// moves the newest operation to the redo stack and rebuilds the canvas.
func (h *History) TryUndo(env Env) error {
	if env.GestureInProgress() {
		env.CancelGesture()
		return nil
	}
	if len(h.undo) == 0 {
		return nil
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, top)

	if _, err := h.RebuildFromHistory(env); err != nil {
		return fmt.Errorf("failed to undo %s: %w", top.op, err)
	}
	return nil
}

// TryRedo re-applies the newest undone operation. Snapshots restore the
// canvas directly; edits go through env.ApplyOperation. The rest of the redo
// stack is kept. If re-applying fails the operation stays on the redo stack.
func (h *History) TryRedo(env Env) error {
	if len(h.redo) == 0 {
		return nil
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]

	var err error
	if e.op.IsSnapshot() {
		snap, _ := operation.As[operation.Snapshot](e.op)
		err = env.RestoreSnapshot(snap.State)
	} else {
		err = env.ApplyOperation(e.op)
	}
	if err != nil {
		h.redo = append(h.redo, e)
		return fmt.Errorf("failed to redo %s: %w", e.op, err)
	}
	h.undo = append(h.undo, e)
	return nil
}

// CanUndo reports whether TryUndo would do anything.
func (h *History) CanUndo(env Env) bool {
	return len(h.undo) > 0 || env.GestureInProgress()
}

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// RebuildFromHistory restores the canvas from the newest snapshot or
// checkpoint on the undo stack (or the base snapshot) and replays every
// later operation. Entries at or before the cut are left alone. Operations
// that fail to replay, such as ones naming an unknown tool, are reported
// through env.Warn, skipped and dropped from the stack.
func (h *History) RebuildFromHistory(env Env) (RebuildReport, error) {
	report := RebuildReport{Cut: -1}
	for i := len(h.undo) - 1; i >= 0; i-- {
		if h.undo[i].op.IsSnapshot() || h.undo[i].checkpoint != nil {
			report.Cut = i
			break
		}
	}

	if err := env.RestoreSnapshot(h.restorePoint(report.Cut)); err != nil {
		return report, fmt.Errorf("failed to restore snapshot: %w", err)
	}

	kept := h.undo[:report.Cut+1]
	tail := append([]entry(nil), h.undo[report.Cut+1:]...)
	for _, e := range tail {
		if err := env.ReplayOperation(e.op); err != nil {
			msg := fmt.Sprintf("skipped %s while rebuilding: %v", e.op, err)
			h.logger.Warn("replay failed", "op", e.op.String(), "error", err)
			env.Warn(msg)
			report.Skipped = append(report.Skipped, e.op)
			continue
		}
		report.Replayed++
		kept = append(kept, e)
	}
	h.undo = kept

	h.logger.Debug("history rebuilt", "cut", report.Cut, "replayed", report.Replayed, "skipped", len(report.Skipped))
	return report, nil
}

// restorePoint returns the snapshot at undo index cut, or the base.
func (h *History) restorePoint(cut int) canvas.Snapshot {
	if cut < 0 {
		snap, _ := operation.As[operation.Snapshot](h.base)
		return snap.State
	}
	e := h.undo[cut]
	if e.op.IsSnapshot() {
		snap, _ := operation.As[operation.Snapshot](e.op)
		return snap.State
	}
	size := e.checkpoint.Bounds().Size()
	return canvas.Snapshot{Buffer: e.checkpoint, Width: size.X, Height: size.Y, Background: h.background()}
}

// background is the background color of the newest snapshot.
func (h *History) background() color.NRGBA {
	for i := len(h.undo) - 1; i >= 0; i-- {
		if h.undo[i].op.IsSnapshot() {
			snap, _ := operation.As[operation.Snapshot](h.undo[i].op)
			return snap.State.Background
		}
	}
	snap, _ := operation.As[operation.Snapshot](h.base)
	return snap.State.Background
}

// IsSaved reports whether committed matches what was last persisted.
func (h *History) IsSaved() bool {
	if !h.saved.valid {
		return false
	}
	var top ulid.ULID
	if len(h.undo) > 0 {
		top = h.undo[len(h.undo)-1].op.ID
	}
	return top == h.saved.id
}

// MarkUnsaved forgets the last save point.
func (h *History) MarkUnsaved() {
	h.saved = savedMarker{}
}

// UndoStack returns the operations on the undo stack, oldest first.
func (h *History) UndoStack() []operation.Operation {
	return ops(h.undo)
}

// RedoStack returns the operations on the redo stack; the next to be redone
// is last.
func (h *History) RedoStack() []operation.Operation {
	return ops(h.redo)
}

func ops(entries []entry) []operation.Operation {
	out := make([]operation.Operation, len(entries))
	for i, e := range entries {
		out[i] = e.op
	}
	return out
}

// Len returns the number of operations on the undo stack.
func (h *History) Len() int {
	return len(h.undo)
}

// Base returns the snapshot undo cannot go past.
func (h *History) Base() canvas.Snapshot {
	snap, _ := operation.As[operation.Snapshot](h.base)
	return snap.State
}

// Clear drops both stacks. The base snapshot is kept.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
	h.saved = savedMarker{}
}
