// Package operation defines the immutable records that history stores: one
// per committed tool edit, or a full raster snapshot.
//
// An Operation is a tagged variant. Tool names the tool that produced it and
// selects the replay entry point; Params holds the tool family's typed
// parameters. The snapshot variant is tagged with ToolNone.
package operation

import (
	"errors"
	"fmt"
	"image"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ironsheep/canvas-history-mcp/internal/canvas"
	"github.com/ironsheep/canvas-history-mcp/internal/raster"
)

// ToolID identifies the tool that produced an operation.
type ToolID string

// ToolNone tags a snapshot operation.
const ToolNone ToolID = ""

const (
	ToolPencil         ToolID = "pencil"
	ToolEraser         ToolID = "eraser"
	ToolLine           ToolID = "line"
	ToolRectangle      ToolID = "rectangle"
	ToolFill           ToolID = "fill"
	ToolFilter         ToolID = "filter"
	ToolTransform      ToolID = "transform"
	ToolRectSelect     ToolID = "rect_select"
	ToolFreeSelect     ToolID = "free_select"
	ToolMove           ToolID = "move"
	ToolSelectionApply ToolID = "selection_apply"
	ToolImport         ToolID = "import"
)

// ErrInvalidOperation is returned by Validate.
var ErrInvalidOperation = errors.New("invalid operation")

// UnknownToolError reports an operation whose tool is not registered. During
// a rebuild it is recoverable: the operation is skipped.
type UnknownToolError struct {
	Tool ToolID
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %q", string(e.Tool))
}

// Operation is one entry of the edit history.
type Operation struct {
	ID      ulid.ULID `json:"id"`
	Tool    ToolID    `json:"tool"`
	Preview bool      `json:"preview"`
	Params  Params    `json:"params"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// newID returns a ULID that sorts after every ID previously returned.
func newID() ulid.ULID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
}

// New creates a final (non-preview) operation. params is deep-copied so the
// caller may keep using its slices and buffers.
func New(tool ToolID, params Params) Operation {
	if params != nil {
		params = params.clone()
	}
	return Operation{ID: newID(), Tool: tool, Params: params}
}

// NewSnapshot creates a snapshot operation from s. The buffer is cloned.
func NewSnapshot(s canvas.Snapshot) Operation {
	return New(ToolNone, Snapshot{State: s})
}

// IsSnapshot reports whether op carries a full raster.
func (op Operation) IsSnapshot() bool {
	return op.Tool == ToolNone
}

// WithPreview returns a copy of op with the preview flag set to preview.
// The copy shares the ID: it is the same logical edit.
func (op Operation) WithPreview(preview bool) Operation {
	op.Preview = preview
	return op
}

// Validate checks the pairing between Tool and Params: a snapshot must carry
// a restorable raster, and only a snapshot may carry one.
func (op Operation) Validate() error {
	snap, isSnap := op.Params.(Snapshot)
	switch {
	case op.Tool == ToolNone && !isSnap:
		return fmt.Errorf("%w: snapshot without raster", ErrInvalidOperation)
	case op.Tool == ToolNone && !snap.State.Valid():
		return fmt.Errorf("%w: %w", ErrInvalidOperation, canvas.ErrInvalidSnapshot)
	case op.Tool != ToolNone && isSnap:
		return fmt.Errorf("%w: tool %q carries a snapshot", ErrInvalidOperation, op.Tool)
	case op.Tool != ToolNone && op.Params == nil:
		return fmt.Errorf("%w: tool %q has no parameters", ErrInvalidOperation, op.Tool)
	}
	return nil
}

func (op Operation) String() string {
	name := string(op.Tool)
	if op.IsSnapshot() {
		name = "snapshot"
	}
	if op.Preview {
		return fmt.Sprintf("%s(%s, preview)", name, op.ID)
	}
	return fmt.Sprintf("%s(%s)", name, op.ID)
}

// As returns op's parameters as the variant T, or an error naming the
// mismatch.
func As[T Params](op Operation) (T, error) {
	p, ok := op.Params.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: tool %q expects %T parameters, got %T", ErrInvalidOperation, op.Tool, zero, op.Params)
	}
	return p, nil
}

func clonePoints(pts []image.Point) []image.Point {
	if pts == nil {
		return nil
	}
	return append([]image.Point(nil), pts...)
}

func cloneSnapshot(s canvas.Snapshot) canvas.Snapshot {
	s.Buffer = raster.Clone(s.Buffer)
	return s
}
