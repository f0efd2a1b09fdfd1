package raster

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// Path describes a closed region of the canvas: either an axis-aligned
// rectangle or a polygon through pixel corners. When Points is non-empty the
// polygon wins and Rect is ignored.
type Path struct {
	Rect   image.Rectangle `json:"rect"`
	Points []image.Point   `json:"points,omitempty"`
}

// RectPath returns a rectangular path.
func RectPath(r image.Rectangle) Path {
	return Path{Rect: r.Canon()}
}

// PolygonPath returns a polygon path. The points are copied.
func PolygonPath(points []image.Point) Path {
	return Path{Points: append([]image.Point(nil), points...)}
}

// Clone returns a deep copy of p.
func (p Path) Clone() Path {
	return Path{Rect: p.Rect, Points: append([]image.Point(nil), p.Points...)}
}

// IsPolygon reports whether p is described by vertices.
func (p Path) IsPolygon() bool {
	return len(p.Points) > 0
}

// Bounds returns the smallest rectangle containing p.
func (p Path) Bounds() image.Rectangle {
	if !p.IsPolygon() {
		return p.Rect.Canon()
	}
	r := image.Rectangle{Min: p.Points[0], Max: p.Points[0]}
	for _, pt := range p.Points[1:] {
		r.Min.X = min(r.Min.X, pt.X)
		r.Min.Y = min(r.Min.Y, pt.Y)
		r.Max.X = max(r.Max.X, pt.X)
		r.Max.Y = max(r.Max.Y, pt.Y)
	}
	return r
}

// Area returns the enclosed area in square pixels. Self-intersecting polygons
// report the absolute shoelace area.
func (p Path) Area() float64 {
	if !p.IsPolygon() {
		r := p.Rect.Canon()
		return float64(r.Dx() * r.Dy())
	}
	if len(p.Points) < 3 {
		return 0
	}
	var sum int
	for i, a := range p.Points {
		b := p.Points[(i+1)%len(p.Points)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(float64(sum)) / 2
}

// IsDegenerate reports whether p encloses no pixels, such as the zero-size
// rectangle produced by a double click.
func (p Path) IsDegenerate() bool {
	return p.Bounds().Empty() || p.Area() == 0
}

// Translate returns p moved by d.
func (p Path) Translate(d image.Point) Path {
	out := Path{Rect: p.Rect.Add(d)}
	if p.IsPolygon() {
		out.Points = make([]image.Point, len(p.Points))
		for i, pt := range p.Points {
			out.Points[i] = pt.Add(d)
		}
	}
	return out
}

// Mask rasterizes p into a binary mask covering p.Bounds(). The mask's bounds
// are in canvas coordinates. Pixels whose coverage is at least half are set
// to 255, all others to 0.
func (p Path) Mask() *image.Alpha {
	b := p.Bounds()
	mask := image.NewAlpha(b)
	if b.Empty() {
		return mask
	}
	if !p.IsPolygon() {
		for i := range mask.Pix {
			mask.Pix[i] = 255
		}
		return mask
	}

	z := vector.NewRasterizer(b.Dx(), b.Dy())
	first := p.Points[0].Sub(b.Min)
	z.MoveTo(float32(first.X), float32(first.Y))
	for _, pt := range p.Points[1:] {
		q := pt.Sub(b.Min)
		z.LineTo(float32(q.X), float32(q.Y))
	}
	z.ClosePath()

	coverage := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	z.Draw(coverage, coverage.Bounds(), image.Opaque, image.Point{})
	for i, a := range coverage.Pix {
		if a >= 128 {
			mask.Pix[i] = 255
		}
	}
	return mask
}

// Outline rasterizes the border of p as a one-pixel anti-aliased stroke, for
// previews of a selection being defined.
func (p Path) Outline() *image.Alpha {
	pts := p.Points
	if !p.IsPolygon() {
		r := p.Rect.Canon()
		pts = []image.Point{r.Min, {X: r.Max.X, Y: r.Min.Y}, r.Max, {X: r.Min.X, Y: r.Max.Y}}
	}
	return StrokeMask(pts, 1, true, false)
}

// drawPolygon rasterizes one closed polygon given in dst-local float
// coordinates and accumulates it into dst with source-over. Only the
// polygon's bounding box is rasterized.
func drawPolygon(dst *image.Alpha, pts [][2]float64) {
	if len(pts) < 3 {
		return
	}
	minX, minY := pts[0][0], pts[0][1]
	maxX, maxY := minX, minY
	for _, pt := range pts[1:] {
		minX, maxX = math.Min(minX, pt[0]), math.Max(maxX, pt[0])
		minY, maxY = math.Min(minY, pt[1]), math.Max(maxY, pt[1])
	}
	bb := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
	bb = bb.Intersect(dst.Bounds())
	if bb.Empty() {
		return
	}

	z := vector.NewRasterizer(bb.Dx(), bb.Dy())
	z.DrawOp = draw.Over
	ox, oy := float64(bb.Min.X), float64(bb.Min.Y)
	z.MoveTo(float32(pts[0][0]-ox), float32(pts[0][1]-oy))
	for _, pt := range pts[1:] {
		z.LineTo(float32(pt[0]-ox), float32(pt[1]-oy))
	}
	z.ClosePath()
	z.Draw(dst, bb, image.Opaque, image.Point{})
}
