package canvas

import (
	"errors"
	"image"
	"image/color"

	"github.com/ironsheep/canvas-history-mcp/internal/raster"
)

var (
	// ErrInvalidSnapshot is returned for a snapshot that carries neither
	// pixels nor a usable size.
	ErrInvalidSnapshot = errors.New("invalid snapshot: no buffer and no valid size")

	// ErrNoScratch is returned when compositing an empty scratch buffer.
	ErrNoScratch = errors.New("scratch buffer is empty")

	// ErrNoDocument is the panic value for buffer transitions attempted
	// while no document is open.
	ErrNoDocument = errors.New("no document is open")
)

// Snapshot is a self-sufficient starting point for the canvas: either a
// complete pixel buffer or a size plus the background color to fill it with.
type Snapshot struct {
	Buffer     *image.NRGBA
	Width      int
	Height     int
	Background color.NRGBA
}

// Valid reports whether s can be restored.
func (s Snapshot) Valid() bool {
	if !raster.IsEmpty(s.Buffer) {
		return true
	}
	return s.Width > 0 && s.Height > 0
}

// Size returns the dimensions the restored canvas will have.
func (s Snapshot) Size() image.Point {
	if !raster.IsEmpty(s.Buffer) {
		return s.Buffer.Bounds().Size()
	}
	return image.Pt(s.Width, s.Height)
}

// Overlay is drawn on top of the live surface by [State.Render] without
// becoming part of it, such as a floating selection.
type Overlay interface {
	Draw(dst *image.NRGBA)
}

// State holds the committed, live and scratch buffers of one document.
type State struct {
	committed  *image.NRGBA
	live       *image.NRGBA
	scratch    *image.NRGBA
	background color.NRGBA
	view       Viewport
}

// New creates a State with no open document.
func New(opts Options) *State {
	return &State{view: newViewport(opts)}
}

// RestoreFromSnapshot replaces committed with the snapshot's buffer (cloned)
// or, when it has none, with a Width×Height buffer of its background color.
// Live is rebuilt from committed and scratch is cleared.
func (s *State) RestoreFromSnapshot(snap Snapshot) error {
	if !snap.Valid() {
		return ErrInvalidSnapshot
	}
	if !raster.IsEmpty(snap.Buffer) {
		s.committed = raster.Clone(snap.Buffer)
	} else {
		s.committed = raster.New(snap.Width, snap.Height, snap.Background)
	}
	s.background = snap.Background
	s.live = raster.Clone(s.committed)
	s.scratch = nil
	s.view.setContent(s.committed.Bounds().Size())
	return nil
}

// Close drops all buffers. Afterwards the State behaves as if no document
// had ever been opened.
func (s *State) Close() {
	s.committed = nil
	s.live = nil
	s.scratch = nil
	s.view.setContent(image.Point{})
}

// IsOpen reports whether a document is loaded.
func (s *State) IsOpen() bool {
	return s.committed != nil
}

// CommitLive copies live into committed. It is the only way committed
// changes outside of history restores.
func (s *State) CommitLive() {
	s.mustBeOpen()
	s.committed = raster.Clone(s.live)
	s.view.setContent(s.committed.Bounds().Size())
}

// DiscardLive restores live from committed, dropping any preview.
func (s *State) DiscardLive() {
	s.mustBeOpen()
	s.live = raster.Clone(s.committed)
}

func (s *State) mustBeOpen() {
	if !s.IsOpen() {
		panic(ErrNoDocument)
	}
}

// Live returns the live surface itself. Callers may draw into it for the
// duration of one tool call and must not keep the reference.
func (s *State) Live() *image.NRGBA {
	return s.live
}

// ReplaceLive makes buf the live surface, taking ownership of it. Transforms
// whose output differs in size from committed use it.
func (s *State) ReplaceLive(buf *image.NRGBA) {
	s.mustBeOpen()
	s.live = buf
}

// Committed returns a copy of the committed buffer, or nil when no document
// is open.
func (s *State) Committed() *image.NRGBA {
	return raster.Clone(s.committed)
}

// Size returns the committed buffer's dimensions.
func (s *State) Size() image.Point {
	if s.committed == nil {
		return image.Point{}
	}
	return s.committed.Bounds().Size()
}

// Background returns the color recorded by the last restored snapshot.
func (s *State) Background() color.NRGBA {
	return s.background
}

// WriteScratch makes buf the scratch buffer, taking ownership of it.
func (s *State) WriteScratch(buf *image.NRGBA) {
	s.scratch = buf
}

// ReadScratch returns the scratch buffer and whether it holds anything.
func (s *State) ReadScratch() (*image.NRGBA, bool) {
	if raster.IsEmpty(s.scratch) {
		return nil, false
	}
	return s.scratch, true
}

// ClearScratch releases the scratch buffer.
func (s *State) ClearScratch() {
	s.scratch = nil
}

// CompositeScratchIntoLive paints scratch onto live with its top-left corner
// at offset.
func (s *State) CompositeScratchIntoLive(mode raster.BlendMode, offset image.Point) error {
	s.mustBeOpen()
	if raster.IsEmpty(s.scratch) {
		return ErrNoScratch
	}
	raster.Composite(s.live, s.scratch, offset, mode)
	return nil
}

// Render returns a copy of live with overlays drawn on top in order.
func (s *State) Render(overlays ...Overlay) *image.NRGBA {
	out := raster.Clone(s.live)
	if out == nil {
		return nil
	}
	for _, o := range overlays {
		if o != nil {
			o.Draw(out)
		}
	}
	return out
}
