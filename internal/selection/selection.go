// Package selection manages the single floating region of a document: pixels
// detached from the canvas (or imported from outside) that can be dragged
// around and merged back.
package selection

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/ironsheep/canvas-history-mcp/internal/raster"
)

var (
	// ErrNoActiveSelection is returned when an operation needs detached
	// content but the region is not active.
	ErrNoActiveSelection = errors.New("no active selection")

	// ErrSelectionActive is returned when starting a new region while one
	// is already active.
	ErrSelectionActive = errors.New("a selection is already active")
)

// State is the lifecycle stage of the region.
type State int

const (
	Inactive State = iota
	Defining
	Active
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Defining:
		return "defining"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var outlineColor = color.NRGBA{R: 0, G: 120, B: 215, A: 200}

// Manager owns the region's content buffer, shape and placement.
//
// The content is drawn at origin + offset + delta, where origin is where the
// pixels came from, offset the sum of finished drags and delta the drag in
// progress.
type Manager struct {
	state   State
	path    raster.Path
	source  image.Rectangle
	content *image.NRGBA
	mask    *image.Alpha
	origin  image.Point
	offset  image.Point
	delta   image.Point
}

// New returns an inactive Manager.
func New() *Manager {
	return &Manager{}
}

// State returns the lifecycle stage.
func (m *Manager) State() State {
	return m.state
}

// IsActive reports whether detached content exists.
func (m *Manager) IsActive() bool {
	return m.state == Active
}

// Begin starts defining a region along path. Only an outline is shown; no
// pixels move until DefineFromPath.
func (m *Manager) Begin(path raster.Path) error {
	if m.state == Active {
		return ErrSelectionActive
	}
	m.state = Defining
	m.path = path.Clone()
	return nil
}

// DefineFromPath detaches the pixels of target under path into the region
// and paints replacement where they were. A degenerate path is not an error:
// the region goes back to inactive and false is returned.
func (m *Manager) DefineFromPath(target *image.NRGBA, path raster.Path, replacement color.NRGBA) (bool, error) {
	if m.state == Active {
		return false, ErrSelectionActive
	}
	r := path.Bounds().Intersect(target.Bounds())
	if path.IsDegenerate() || r.Empty() {
		m.Reset()
		return false, nil
	}

	mask := path.Mask().SubImage(r).(*image.Alpha)
	content := raster.Crop(target, r)
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			if mask.AlphaAt(r.Min.X+x, r.Min.Y+y).A < 128 {
				i := content.PixOffset(x, y)
				clear(content.Pix[i : i+4])
			}
		}
	}
	raster.FillMasked(target, mask, r.Min, replacement)

	m.state = Active
	m.path = path.Clone()
	m.source = r
	m.content = content
	m.mask = mask
	m.origin = r.Min
	m.offset = image.Point{}
	m.delta = image.Point{}
	return true, nil
}

// ImportContent creates an active region from external pixels placed with
// their top-left corner at at. buf is cloned.
func (m *Manager) ImportContent(buf *image.NRGBA, at image.Point) error {
	if m.state == Active {
		return ErrSelectionActive
	}
	if raster.IsEmpty(buf) {
		return fmt.Errorf("cannot import an empty buffer")
	}
	content := raster.Clone(buf)
	m.state = Active
	m.path = raster.RectPath(content.Bounds().Add(at))
	m.source = image.Rectangle{}
	m.content = content
	m.mask = nil
	m.origin = at
	m.offset = image.Point{}
	m.delta = image.Point{}
	return nil
}

// Drag sets the in-progress drag delta. Canvas buffers are not touched.
func (m *Manager) Drag(dx, dy int) error {
	if m.state != Active {
		return ErrNoActiveSelection
	}
	m.delta = image.Pt(dx, dy)
	return nil
}

// ResetDrag drops the in-progress drag delta.
func (m *Manager) ResetDrag() {
	m.delta = image.Point{}
}

// CommitDrag folds the drag delta into the region's offset.
func (m *Manager) CommitDrag() error {
	if m.state != Active {
		return ErrNoActiveSelection
	}
	m.offset = m.offset.Add(m.delta)
	m.delta = image.Point{}
	return nil
}

// MergeAndDeactivate paints the content onto target at its current position
// and releases the region. Detached pixels are copied back exactly through
// their shape mask; imported content is composited with source-over.
func (m *Manager) MergeAndDeactivate(target *image.NRGBA) error {
	if m.state != Active {
		return ErrNoActiveSelection
	}
	m.Paint(target)
	m.Reset()
	return nil
}

// Paint draws the content onto dst at its current position without
// changing the region.
func (m *Manager) Paint(dst *image.NRGBA) {
	if m.state != Active {
		return
	}
	at := m.Position()
	if m.mask != nil {
		raster.CompositeMasked(dst, m.content, m.mask, at)
		return
	}
	raster.Composite(dst, m.content, at, raster.BlendNormal)
}

// Draw implements canvas.Overlay: the floating content plus an outline, or
// just the outline while the region is being defined.
func (m *Manager) Draw(dst *image.NRGBA) {
	var outline raster.Path
	switch m.state {
	case Defining:
		outline = m.path
	case Active:
		m.Paint(dst)
		outline = m.path.Translate(m.Position().Sub(m.origin))
	default:
		return
	}
	mask := outline.Outline()
	raster.Composite(dst, raster.Tint(mask, outlineColor), mask.Bounds().Min, raster.BlendNormal)
}

// Reset returns the region to inactive and releases its buffers.
func (m *Manager) Reset() {
	*m = Manager{}
}

// Content returns a copy of the detached pixels.
func (m *Manager) Content() (*image.NRGBA, error) {
	if m.state != Active {
		return nil, ErrNoActiveSelection
	}
	return raster.Clone(m.content), nil
}

// Position is where the content's top-left corner is currently drawn.
func (m *Manager) Position() image.Point {
	return m.origin.Add(m.offset).Add(m.delta)
}

// Bounds is the canvas rectangle the content currently covers.
func (m *Manager) Bounds() image.Rectangle {
	if m.state != Active {
		return image.Rectangle{}
	}
	return m.content.Bounds().Sub(m.content.Bounds().Min).Add(m.Position())
}

// Offset returns the committed offset and the drag in progress.
func (m *Manager) Offset() (offset, delta image.Point) {
	return m.offset, m.delta
}

// Source is the canvas rectangle the content was detached from. It is empty
// for imported content.
func (m *Manager) Source() image.Rectangle {
	return m.source
}

// Path returns a copy of the path that defines the region.
func (m *Manager) Path() raster.Path {
	return m.path.Clone()
}
