// Package raster provides the pixel-level building blocks shared by the canvas,
// selection and tool packages.
//
// Every buffer handled by the editing engine is an *image.NRGBA whose bounds
// start at (0,0). Colors are non-premultiplied 8-bit RGBA. Helpers in this
// package never retain the buffers passed to them; functions that return a
// buffer always return a fresh allocation the caller owns.
//
// # Coordinate System
//
// Canvas coordinates are 0-based with the origin at the top-left corner:
//   - X increases rightward, Y increases downward
//   - For rectangles, Min is inclusive and Max is exclusive
//   - Polygon vertices lie on pixel corners, so a pixel (x, y) covers the
//     unit square [x, x+1) × [y, y+1)
//
// # Blending
//
// BlendReplace and BlendNormal map onto image/draw's Src and Over operators.
// BlendErase lowers destination alpha by the source alpha. The remaining modes
// (multiply, screen, overlay, darken, lighten, add, difference) are delegated
// to github.com/anthonynsimon/bild/blend, which treats the channels of its
// *image.RGBA arguments as straight (non-premultiplied) values; asBild and
// fromBild reinterpret NRGBA storage accordingly without copying.
//
// # Masks
//
// Path and stroke masks are rasterized with golang.org/x/image/vector.
// Selection masks are binarized (coverage >= 50% becomes fully selected) so
// that detaching and re-merging a region reproduces the original pixels
// exactly. Stroke masks keep their anti-aliased coverage.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Coordinates outside image bounds
//   - Malformed hex color strings
//   - File I/O errors during image loading or saving
//   - Encoding errors during PNG output
package raster
