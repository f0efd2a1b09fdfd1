package operation

import (
	"image"
	"image/color"

	"github.com/ironsheep/canvas-history-mcp/internal/canvas"
	"github.com/ironsheep/canvas-history-mcp/internal/raster"
	"github.com/ironsheep/canvas-history-mcp/internal/selection"
)

// Params is the closed set of operation parameter variants.
type Params interface {
	// Variant names the variant.
	Variant() string
	clone() Params
}

// Snapshot is a complete raster: a self-sufficient replay starting point.
type Snapshot struct {
	State canvas.Snapshot `json:"-"`
}

// Stroke is a polyline painted with a round brush. Pencil, line, rectangle
// and eraser produce it.
type Stroke struct {
	Points []image.Point    `json:"points"`
	Color  color.NRGBA      `json:"color"`
	Width  float64          `json:"width"`
	Mode   raster.BlendMode `json:"mode"`
	Closed bool             `json:"closed,omitempty"`
	Filled bool             `json:"filled,omitempty"`
}

// Fill is a flood fill from Seed over pixels within Tolerance of the seed
// color. MaxPixels caps the region; 0 means no cap.
type Fill struct {
	Seed      image.Point `json:"seed"`
	Color     color.NRGBA `json:"color"`
	Tolerance float64     `json:"tolerance"`
	MaxPixels int         `json:"max_pixels"`
}

// FilterKind selects an image filter.
type FilterKind string

const (
	FilterBlur       FilterKind = "blur"
	FilterSharpen    FilterKind = "sharpen"
	FilterGrayscale  FilterKind = "grayscale"
	FilterInvert     FilterKind = "invert"
	FilterBrightness FilterKind = "brightness"
	FilterEdges      FilterKind = "edges"
)

// Filter applies a whole-image filter, optionally limited to Region.
type Filter struct {
	Kind   FilterKind      `json:"kind"`
	Amount float64         `json:"amount"`
	Region image.Rectangle `json:"region"`
}

// TransformKind selects a geometric transform.
type TransformKind string

const (
	TransformScale  TransformKind = "scale"
	TransformRotate TransformKind = "rotate"
	TransformCrop   TransformKind = "crop"
	TransformSkew   TransformKind = "skew"
	TransformFlip   TransformKind = "flip"
)

// Transform deforms the whole canvas. Which fields matter depends on Kind.
type Transform struct {
	Kind       TransformKind   `json:"kind"`
	Width      int             `json:"width,omitempty"`
	Height     int             `json:"height,omitempty"`
	Angle      float64         `json:"angle,omitempty"`
	Rect       image.Rectangle `json:"rect,omitempty"`
	SkewX      float64         `json:"skew_x,omitempty"`
	SkewY      float64         `json:"skew_y,omitempty"`
	FlipH      bool            `json:"flip_h,omitempty"`
	FlipV      bool            `json:"flip_v,omitempty"`
	Background color.NRGBA     `json:"background"`
}

// SelectionDefine detaches the pixels under Path. Replacement is the color
// Policy resolved to when the operation was built, so replay does not depend
// on the palette at replay time.
type SelectionDefine struct {
	Path        raster.Path      `json:"path"`
	Policy      selection.Policy `json:"policy"`
	Replacement color.NRGBA      `json:"replacement"`
}

// SelectionDrag moves the active region by DX, DY.
type SelectionDrag struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// SelectionMerge paints the active region back onto the canvas.
type SelectionMerge struct{}

// Import creates a floating region from external pixels.
type Import struct {
	Buffer *image.NRGBA `json:"-"`
	At     image.Point  `json:"at"`
}

func (Snapshot) Variant() string { return "snapshot" }
func (Stroke) Variant() string { return "stroke" }
func (Fill) Variant() string { return "fill" }
func (Filter) Variant() string { return "filter" }
func (Transform) Variant() string { return "transform" }
func (SelectionDefine) Variant() string { return "selection_define" }
func (SelectionDrag) Variant() string { return "selection_drag" }
func (SelectionMerge) Variant() string { return "selection_merge" }
func (Import) Variant() string { return "import" }

func (p Snapshot) clone() Params {
	return Snapshot{State: cloneSnapshot(p.State)}
}

func (p Stroke) clone() Params {
	p.Points = clonePoints(p.Points)
	return p
}

func (p Fill) clone() Params      { return p }
func (p Filter) clone() Params    { return p }
func (p Transform) clone() Params { return p }

func (p SelectionDefine) clone() Params {
	p.Path = p.Path.Clone()
	return p
}

func (p SelectionDrag) clone() Params  { return p }
func (p SelectionMerge) clone() Params { return p }

func (p Import) clone() Params {
	p.Buffer = raster.Clone(p.Buffer)
	return p
}
