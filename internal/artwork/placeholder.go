package artwork

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Placeholder renders a w×h light gray panel with caption wrapped and
// centered in dark gray.
func Placeholder(w, h int, face font.Face, caption string) *image.Gray {
	if w <= 0 || h <= 0 {
		return image.NewGray(image.Rectangle{})
	}
	dc := gg.NewContext(w, h)
	dc.SetColor(color.Gray{Y: 0xc0})
	dc.Clear()

	dc.SetColor(color.Gray{Y: 0x80})
	dc.SetLineWidth(2)
	dc.DrawRectangle(12, 12, float64(w-24), float64(h-24))
	dc.Stroke()

	if face != nil && caption != "" {
		dc.SetFontFace(face)
		dc.SetColor(color.Gray{Y: 0x40})
		dc.DrawStringWrapped(caption, float64(w)/2, float64(h)/2, 0.5, 0.5, float64(w-80), 1.4, gg.AlignCenter)
	}

	src := dc.Image()
	out := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Rect, src, src.Bounds().Min, draw.Src)
	return out
}
