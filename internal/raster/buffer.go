package raster

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// New allocates a width×height buffer filled with c.
func New(width, height int, c color.NRGBA) *image.NRGBA {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return imaging.New(width, height, c)
}

// Clone returns a deep copy of img rebased to a (0,0) origin.
// A nil image clones to nil.
func Clone(img image.Image) *image.NRGBA {
	if img == nil {
		return nil
	}
	if n, ok := img.(*image.NRGBA); ok && n == nil {
		return nil
	}
	return imaging.Clone(img)
}

// IsEmpty reports whether img is nil or has no pixels.
func IsEmpty(img *image.NRGBA) bool {
	return img == nil || img.Bounds().Empty()
}

// Equal reports whether a and b have the same size and identical pixel bytes.
func Equal(a, b *image.NRGBA) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	w := a.Bounds().Dx() * 4
	for y := 0; y < a.Bounds().Dy(); y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w]
		rb := b.Pix[y*b.Stride : y*b.Stride+w]
		if !bytes.Equal(ra, rb) {
			return false
		}
	}
	return true
}

// Fill paints r (clipped to img) with c, replacing what was there.
func Fill(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Pix[i+0] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
			i += 4
		}
	}
}

// FillMasked replaces the pixels of img covered by mask with c. The mask's
// top-left corner is placed at at; coverage of 50% or more counts as set.
func FillMasked(img *image.NRGBA, mask *image.Alpha, at image.Point, c color.NRGBA) {
	mb := mask.Bounds()
	r := mb.Sub(mb.Min).Add(at).Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if mask.AlphaAt(mb.Min.X+x-at.X, mb.Min.Y+y-at.Y).A < 128 {
				continue
			}
			i := img.PixOffset(x, y)
			img.Pix[i+0] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
		}
	}
}

// Crop copies r out of img into a new 0-origin buffer. r is clipped to img.
func Crop(img *image.NRGBA, r image.Rectangle) *image.NRGBA {
	return imaging.Crop(img, r)
}

// Paste returns a copy of dst with src pasted at pos (pixels replaced).
func Paste(dst, src *image.NRGBA, pos image.Point) *image.NRGBA {
	return imaging.Paste(dst, src, pos)
}

// asBild exposes NRGBA storage as the straight-alpha *image.RGBA that bild
// expects, without copying.
func asBild(img *image.NRGBA) *image.RGBA {
	return &image.RGBA{Pix: img.Pix, Stride: img.Stride, Rect: img.Rect}
}

// fromBild reinterprets a bild result as NRGBA, without copying.
func fromBild(img *image.RGBA) *image.NRGBA {
	return &image.NRGBA{Pix: img.Pix, Stride: img.Stride, Rect: img.Rect}
}

// FromBild converts the output of a bild filter to an NRGBA buffer.
func FromBild(img *image.RGBA) *image.NRGBA {
	return fromBild(img)
}

// ToBild exposes an NRGBA buffer to a bild filter.
func ToBild(img *image.NRGBA) *image.RGBA {
	return asBild(img)
}
