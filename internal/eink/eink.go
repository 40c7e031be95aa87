// Package eink reduces arbitrary images to the small set of gray levels an
// e-ink panel can show.
//
// The pipeline runs in a fixed order: aspect-preserving Lanczos resize,
// grayscale, centered paste onto a white target, a mild unsharp mask,
// contrast around the mean, then optional Floyd–Steinberg dithering to N
// evenly spaced levels.
package eink

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register the webp decoder for artwork files
)

var (
	// ErrEmptyImage is returned for a nil or zero-sized source.
	ErrEmptyImage = errors.New("eink: empty image")
	// ErrInvalidTarget is returned for a non-positive target size.
	ErrInvalidTarget = errors.New("eink: invalid target size")
	// ErrTooLarge is returned for a source above MaxSourcePixels.
	ErrTooLarge = errors.New("eink: source image too large")
)

// MaxSourcePixels caps the pixel count of a source decoded from a file.
const MaxSourcePixels = 8192 * 8192

// Unsharp mask parameters tuned to undo resampling blur without halos.
const (
	sharpenSigma     = 0.5
	sharpenPercent   = 50
	sharpenThreshold = 2
)

// Options controls one reduction.
type Options struct {
	Width      int
	Height     int
	Contrast   float64 // 1 leaves contrast unchanged
	Dither     bool
	GrayLevels int // clamped to [2, 256]
}

// DefaultOptions returns the panel defaults for a w×h target.
func DefaultOptions(w, h int) Options {
	return Options{Width: w, Height: h, Contrast: 1.25, Dither: true, GrayLevels: 16}
}

// Reduce converts src into a Width×Height grayscale image. The source is
// scaled to fit entirely inside the target and centered on white; it is
// never cropped.
func Reduce(src image.Image, opts Options) (*image.Gray, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidTarget, opts.Width, opts.Height)
	}
	if src == nil || src.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	nw, nh := FitSize(src.Bounds().Dx(), src.Bounds().Dy(), opts.Width, opts.Height)
	resized := imaging.Resize(src, nw, nh, imaging.Lanczos)
	gray := imaging.Grayscale(resized)

	bg := imaging.New(opts.Width, opts.Height, color.White)
	offset := image.Pt((opts.Width-nw)/2, (opts.Height-nh)/2)
	img := imaging.Overlay(bg, gray, offset, 1.0)

	img = unsharp(img, sharpenSigma, sharpenPercent, sharpenThreshold)
	if opts.Contrast != 1 {
		img = contrast(img, opts.Contrast)
	}

	out := toGray(img)
	if opts.Dither {
		out = Dither(out, opts.GrayLevels)
	}
	return out, nil
}

// CheckSize reads the image header from r and rejects images with more
// than MaxSourcePixels pixels. No pixel data is decoded.
func CheckSize(r io.Reader) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("eink: decode header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Config{}, "", fmt.Errorf("%w: %dx%d", ErrEmptyImage, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return image.Config{}, "", fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}
	return cfg, format, nil
}

// ReduceFile decodes the image at path (honoring EXIF orientation) and
// reduces it. The header is checked against MaxSourcePixels first.
func ReduceFile(path string, opts Options) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("eink: open %s: %w", path, err)
	}
	_, _, err = CheckSize(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("eink: %s: %w", path, err)
	}

	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("eink: decode %s: %w", path, err)
	}
	return Reduce(src, opts)
}

// FitSize returns the largest size with the source aspect ratio that fits
// inside tw×th. Upscaling is allowed; each side is at least 1px.
func FitSize(sw, sh, tw, th int) (w, h int) {
	scale := math.Min(float64(tw)/float64(sw), float64(th)/float64(sh))
	w = int(float64(sw) * scale)
	h = int(float64(sh) * scale)
	w = min(max(w, 1), tw)
	h = min(max(h, 1), th)
	return w, h
}

// Palette returns n evenly spaced gray levels from black to white.
func Palette(n int) color.Palette {
	n = min(max(n, 2), 256)
	p := make(color.Palette, n)
	for i := range p {
		p[i] = color.Gray{Y: uint8(math.Round(float64(i) * 255 / float64(n-1)))}
	}
	return p
}

// Dither error-diffuses src down to levels gray values.
func Dither(src *image.Gray, levels int) *image.Gray {
	pal := Palette(levels)
	b := src.Bounds()
	pm := image.NewPaletted(b, pal)
	draw.FloydSteinberg.Draw(pm, b, src, b.Min)

	lut := make([]uint8, len(pal))
	for i, c := range pal {
		lut[i] = c.(color.Gray).Y
	}
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Pix[out.PixOffset(x, y)] = lut[pm.ColorIndexAt(x, y)]
		}
	}
	return out
}

// unsharp sharpens img by adding back percent of its difference from a
// gaussian blur wherever that difference reaches threshold.
func unsharp(img *image.NRGBA, sigma float64, percent, threshold int) *image.NRGBA {
	blurred := imaging.Blur(img, sigma)
	out := imaging.Clone(img)
	for i := 0; i+3 < len(out.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			orig := int(img.Pix[i+c])
			diff := orig - int(blurred.Pix[i+c])
			if diff < threshold && -diff < threshold {
				continue
			}
			out.Pix[i+c] = clamp(orig + diff*percent/100)
		}
	}
	return out
}

// contrast scales every channel away from the mean luminance by factor.
func contrast(img *image.NRGBA, factor float64) *image.NRGBA {
	mean := math.Floor(meanLuma(img) + 0.5)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		adj := func(v uint8) uint8 {
			return clamp(int(math.Round(mean + (float64(v)-mean)*factor)))
		}
		return color.NRGBA{R: adj(c.R), G: adj(c.G), B: adj(c.B), A: c.A}
	})
}

func meanLuma(img *image.NRGBA) float64 {
	var sum float64
	n := 0
	for i := 0; i+3 < len(img.Pix); i += 4 {
		sum += 0.299*float64(img.Pix[i]) + 0.587*float64(img.Pix[i+1]) + 0.114*float64(img.Pix[i+2])
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func toGray(img *image.NRGBA) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
