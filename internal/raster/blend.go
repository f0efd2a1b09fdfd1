package raster

import (
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/blend"
)

// BlendMode selects how a source buffer is combined with a destination.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendReplace
	BlendErase
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendAdd
	BlendDifference
)

var blendNames = map[BlendMode]string{
	BlendNormal:     "normal",
	BlendReplace:    "replace",
	BlendErase:      "erase",
	BlendMultiply:   "multiply",
	BlendScreen:     "screen",
	BlendOverlay:    "overlay",
	BlendDarken:     "darken",
	BlendLighten:    "lighten",
	BlendAdd:        "add",
	BlendDifference: "difference",
}

func (m BlendMode) String() string {
	if s, ok := blendNames[m]; ok {
		return s
	}
	return fmt.Sprintf("BlendMode(%d)", int(m))
}

// ParseBlendMode maps a mode name to its BlendMode. The empty string is normal.
func ParseBlendMode(s string) (BlendMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return BlendNormal, nil
	}
	for m, name := range blendNames {
		if name == s {
			return m, nil
		}
	}
	return BlendNormal, fmt.Errorf("unknown blend mode: %s", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m BlendMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *BlendMode) UnmarshalText(text []byte) error {
	v, err := ParseBlendMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

type bildBlend func(bg, fg image.Image) *image.RGBA

var bildModes = map[BlendMode]bildBlend{
	BlendMultiply:   blend.Multiply,
	BlendScreen:     blend.Screen,
	BlendOverlay:    blend.Overlay,
	BlendDarken:     blend.Darken,
	BlendLighten:    blend.Lighten,
	BlendAdd:        blend.Add,
	BlendDifference: blend.Difference,
}

// Composite paints src onto dst with its top-left corner at at, using mode.
// Only the overlapping area is touched; src is never modified.
func Composite(dst, src *image.NRGBA, at image.Point, mode BlendMode) {
	sb := src.Bounds()
	r := sb.Sub(sb.Min).Add(at).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	sp := sb.Min.Add(r.Min.Sub(at))

	switch mode {
	case BlendReplace:
		copyRect(dst, src, r, sp)
	case BlendNormal:
		over(dst, src, r, sp)
	case BlendErase:
		erase(dst, src, r, sp)
	default:
		fn, ok := bildModes[mode]
		if !ok {
			over(dst, src, r, sp)
			return
		}
		bg := Crop(dst, r)
		fg := Crop(src, image.Rectangle{Min: sp, Max: sp.Add(r.Size())})
		out := fromBild(fn(asBild(bg), asBild(fg)))
		copyRect(dst, out, r, image.Point{})
	}
}

// CompositeMasked copies src onto dst through a binary mask, both positioned
// with their top-left corners at at. Pixels with mask coverage of 50% or more
// are replaced by the source bytes exactly; the rest are left untouched.
func CompositeMasked(dst, src *image.NRGBA, mask *image.Alpha, at image.Point) {
	sb := src.Bounds()
	mb := mask.Bounds()
	r := sb.Sub(sb.Min).Add(at).Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if mask.AlphaAt(mb.Min.X+x-at.X, mb.Min.Y+y-at.Y).A < 128 {
				continue
			}
			si := src.PixOffset(sb.Min.X+x-at.X, sb.Min.Y+y-at.Y)
			di := dst.PixOffset(x, y)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
}

// copyRect copies the r-sized area of src starting at sp into r of dst.
func copyRect(dst, src *image.NRGBA, r image.Rectangle, sp image.Point) {
	n := r.Dx() * 4
	for y := 0; y < r.Dy(); y++ {
		di := dst.PixOffset(r.Min.X, r.Min.Y+y)
		si := src.PixOffset(sp.X, sp.Y+y)
		copy(dst.Pix[di:di+n], src.Pix[si:si+n])
	}
}

// over is the straight-alpha Porter-Duff source-over operator. Fully opaque
// source pixels replace the destination and fully transparent ones leave it
// untouched, byte for byte.
func over(dst, src *image.NRGBA, r image.Rectangle, sp image.Point) {
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			si := src.PixOffset(sp.X+x, sp.Y+y)
			sa := uint32(src.Pix[si+3])
			if sa == 0 {
				continue
			}
			di := dst.PixOffset(r.Min.X+x, r.Min.Y+y)
			if sa == 255 {
				copy(dst.Pix[di:di+4], src.Pix[si:si+4])
				continue
			}
			da := uint32(dst.Pix[di+3]) * (255 - sa) / 255
			oa := sa + da
			for c := 0; c < 3; c++ {
				sc := uint32(src.Pix[si+c])
				dc := uint32(dst.Pix[di+c])
				dst.Pix[di+c] = uint8((sc*sa + dc*da + oa/2) / oa)
			}
			dst.Pix[di+3] = uint8(oa)
		}
	}
}

// erase lowers destination alpha in proportion to source alpha.
func erase(dst, src *image.NRGBA, r image.Rectangle, sp image.Point) {
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			sa := uint32(src.Pix[src.PixOffset(sp.X+x, sp.Y+y)+3])
			if sa == 0 {
				continue
			}
			i := dst.PixOffset(r.Min.X+x, r.Min.Y+y) + 3
			da := uint32(dst.Pix[i])
			dst.Pix[i] = uint8((da*(255-sa) + 127) / 255)
		}
	}
}
