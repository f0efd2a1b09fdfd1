package raster

import (
	"image"
	"image/color"
	"math"
)

// circleSegments controls how round stroke joints and caps are.
const circleSegments = 16

// StrokeMask rasterizes a polyline of the given width into an anti-aliased
// coverage mask whose bounds are in canvas coordinates. Segments get round
// joins and caps. A closed stroke also connects the last point to the first;
// a filled stroke additionally covers the interior of the polygon.
//
// A single point produces a round dot of the stroke's width. An empty point
// list produces an empty mask.
func StrokeMask(points []image.Point, width float64, closed, filled bool) *image.Alpha {
	if len(points) == 0 {
		return image.NewAlpha(image.Rectangle{})
	}
	if width < 1 {
		width = 1
	}
	half := width / 2
	pad := int(math.Ceil(half)) + 1

	b := Path{Points: points}.Bounds()
	b = image.Rect(b.Min.X-pad, b.Min.Y-pad, b.Max.X+pad, b.Max.Y+pad)
	mask := image.NewAlpha(b)
	local := make([][2]float64, len(points))
	for i, pt := range points {
		// Stroke centerlines run through pixel centers.
		local[i] = [2]float64{float64(pt.X-b.Min.X) + 0.5, float64(pt.Y-b.Min.Y) + 0.5}
	}

	// vector.Rasterizer draws relative to the destination bounds' origin, so
	// rasterize into a 0-origin view that aliases mask's pixels.
	view := &image.Alpha{Pix: mask.Pix, Stride: mask.Stride, Rect: image.Rect(0, 0, b.Dx(), b.Dy())}

	if filled && len(local) >= 3 {
		drawPolygon(view, local)
	}
	n := len(local)
	segs := n - 1
	if closed && n > 2 {
		segs = n
	}
	for i := 0; i < segs; i++ {
		drawPolygon(view, segmentQuad(local[i], local[(i+1)%n], half))
	}
	for _, c := range local {
		drawPolygon(view, circle(c, half))
	}
	return mask
}

// segmentQuad returns the rectangle of half-width h around segment a-b.
func segmentQuad(a, b [2]float64, h float64) [][2]float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l := math.Hypot(dx, dy)
	if l == 0 {
		return nil
	}
	nx, ny := -dy/l*h, dx/l*h
	return [][2]float64{
		{a[0] + nx, a[1] + ny},
		{b[0] + nx, b[1] + ny},
		{b[0] - nx, b[1] - ny},
		{a[0] - nx, a[1] - ny},
	}
}

func circle(c [2]float64, r float64) [][2]float64 {
	pts := make([][2]float64, circleSegments)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = [2]float64{c[0] + r*math.Cos(t), c[1] + r*math.Sin(t)}
	}
	return pts
}

// Tint turns a coverage mask into a color layer: every pixel takes c with its
// alpha scaled by the mask coverage. The layer is 0-origin; its placement on
// the canvas is the mask's Min.
func Tint(mask *image.Alpha, c color.NRGBA) *image.NRGBA {
	b := mask.Bounds()
	layer := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			cov := uint32(mask.AlphaAt(b.Min.X+x, b.Min.Y+y).A)
			if cov == 0 {
				continue
			}
			i := layer.PixOffset(x, y)
			layer.Pix[i+0] = c.R
			layer.Pix[i+1] = c.G
			layer.Pix[i+2] = c.B
			layer.Pix[i+3] = uint8((uint32(c.A)*cov + 127) / 255)
		}
	}
	return layer
}
