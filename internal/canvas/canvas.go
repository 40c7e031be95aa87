// Package canvas holds the drawing primitives used by the zone renderers.
// Everything draws onto an 8-bit *image.Gray.
package canvas

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/hey-codes/paperterm/internal/fonts"
)

// Gray values used across the dashboard.
const (
	Black  uint8 = 0
	Dark   uint8 = 64
	Medium uint8 = 128
	Light  uint8 = 192
	White  uint8 = 255
)

// New returns a w×h white canvas.
func New(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	Fill(img, img.Rect, White)
	return img
}

// Fill paints r with v. r is clipped to dst.
func Fill(dst *image.Gray, r image.Rectangle, v uint8) {
	draw.Draw(dst, r, image.NewUniform(color.Gray{Y: v}), image.Point{}, draw.Src)
}

// Outline draws a border of the given thickness along the inside of r. A
// border thicker than r fills r.
func Outline(dst *image.Gray, r image.Rectangle, thickness int, v uint8) {
	if thickness <= 0 || r.Empty() {
		return
	}
	t := thickness
	for _, side := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t),
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y),
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		Fill(dst, side.Intersect(r), v)
	}
}

// HLine draws a horizontal line spanning [x0, x1) whose top edge is y.
func HLine(dst *image.Gray, x0, x1, y, thickness int, v uint8) {
	Fill(dst, image.Rect(x0, y, x1, y+thickness), v)
}

// VLine draws a vertical line spanning [y0, y1) whose left edge is x.
func VLine(dst *image.Gray, x, y0, y1, thickness int, v uint8) {
	Fill(dst, image.Rect(x, y0, x+thickness, y1), v)
}

// Text draws s with its line box's top-left corner at (x, y) and returns
// the advance width.
func Text(dst draw.Image, face font.Face, x, y int, s string, v uint8) int {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Gray{Y: v}),
		Face: face,
		Dot:  fixed.P(x, y+fonts.Ascent(face)),
	}
	d.DrawString(s)
	return (d.Dot.X - fixed.I(x)).Ceil()
}

// TextCentered draws s centered inside r. s is not truncated.
func TextCentered(dst draw.Image, face font.Face, r image.Rectangle, s string, v uint8) {
	w, h := fonts.Measure(face, s)
	x := r.Min.X + (r.Dx()-w)/2
	y := r.Min.Y + (r.Dy()-h)/2
	Text(dst, face, x, y, s, v)
}

// TextFit draws s centered inside r when its line box fits r and reports
// whether it did.
func TextFit(dst draw.Image, face font.Face, r image.Rectangle, s string, v uint8) bool {
	w, h := fonts.Measure(face, s)
	if s == "" || w > r.Dx() || h > r.Dy() {
		return false
	}
	Text(dst, face, r.Min.X+(r.Dx()-w)/2, r.Min.Y+(r.Dy()-h)/2, s, v)
	return true
}

// TextRight draws s so that its advance ends at right, with the line top
// at y.
func TextRight(dst draw.Image, face font.Face, right, y int, s string, v uint8) {
	w, _ := fonts.Measure(face, s)
	Text(dst, face, right-w, y, s, v)
}

// Paste copies src onto dst with src's top-left corner at pt.
func Paste(dst *image.Gray, src image.Image, pt image.Point) {
	b := src.Bounds()
	draw.Draw(dst, image.Rectangle{Min: pt, Max: pt.Add(b.Size())}, src, b.Min, draw.Src)
}

// InkBounds returns the smallest rectangle containing every pixel of img
// that differs from paper. ok is false for a blank image.
func InkBounds(img *image.Gray, paper uint8) (r image.Rectangle, ok bool) {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i, px := range row {
			if px == paper {
				continue
			}
			x := b.Min.X + i
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}
