package canvas

import (
	"image"
	"math"
)

// Options configures a State.
type Options struct {
	MinZoom float64
	MaxZoom float64
}

// DefaultOptions returns the zoom limits used when none are configured.
func DefaultOptions() Options {
	return Options{MinZoom: 0.05, MaxZoom: 32}
}

// Viewport maps between view space (what the user points at) and canvas
// space. Zoom is a ratio of view pixels per canvas pixel; scroll is the
// canvas-space point shown at the view's top-left corner.
type Viewport struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Zoom    float64 `json:"zoom"`
	ScrollX int     `json:"scroll_x"`
	ScrollY int     `json:"scroll_y"`

	minZoom float64
	maxZoom float64
	content image.Point
}

func newViewport(opts Options) Viewport {
	def := DefaultOptions()
	if opts.MinZoom <= 0 {
		opts.MinZoom = def.MinZoom
	}
	if opts.MaxZoom < opts.MinZoom {
		opts.MaxZoom = max(def.MaxZoom, opts.MinZoom)
	}
	return Viewport{Zoom: 1, minZoom: opts.MinZoom, maxZoom: opts.MaxZoom}
}

func (v *Viewport) setContent(size image.Point) {
	v.content = size
	v.clampScroll()
}

// maxScroll is content - viewport/zoom per axis, never negative.
func (v *Viewport) maxScroll() image.Point {
	mx := v.content.X - int(math.Floor(float64(v.Width)/v.Zoom))
	my := v.content.Y - int(math.Floor(float64(v.Height)/v.Zoom))
	return image.Pt(max(mx, 0), max(my, 0))
}

func (v *Viewport) clampScroll() {
	m := v.maxScroll()
	v.ScrollX = min(max(v.ScrollX, 0), m.X)
	v.ScrollY = min(max(v.ScrollY, 0), m.Y)
}

// Viewport returns the current view mapping.
func (s *State) Viewport() Viewport {
	return s.view
}

// SetViewport sets the size of the view in view pixels.
func (s *State) SetViewport(width, height int) {
	s.view.Width = max(width, 0)
	s.view.Height = max(height, 0)
	s.view.clampScroll()
}

// SetZoom sets the zoom ratio, clamped to the configured limits, and
// returns the value actually applied.
func (s *State) SetZoom(zoom float64) float64 {
	if math.IsNaN(zoom) || zoom <= 0 {
		zoom = 1
	}
	s.view.Zoom = min(max(zoom, s.view.minZoom), s.view.maxZoom)
	s.view.clampScroll()
	return s.view.Zoom
}

// SetScroll sets the canvas-space scroll offset, clamped to
// [0, content - viewport/zoom].
func (s *State) SetScroll(x, y int) image.Point {
	s.view.ScrollX = x
	s.view.ScrollY = y
	s.view.clampScroll()
	return image.Pt(s.view.ScrollX, s.view.ScrollY)
}

// ToCanvasCoords converts a view-space point to canvas space.
func (s *State) ToCanvasCoords(vx, vy int) image.Point {
	v := s.view
	return image.Pt(
		int(math.Floor(float64(vx)/v.Zoom))+v.ScrollX,
		int(math.Floor(float64(vy)/v.Zoom))+v.ScrollY,
	)
}

// ToViewCoords converts a canvas-space point to view space.
func (s *State) ToViewCoords(cx, cy int) image.Point {
	v := s.view
	return image.Pt(
		int(math.Floor(float64(cx-v.ScrollX)*v.Zoom)),
		int(math.Floor(float64(cy-v.ScrollY)*v.Zoom)),
	)
}
